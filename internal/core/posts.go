package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mdobak/go-xerrors"
	"github.com/mejova/bloggy/internal/filter"
	"github.com/mejova/bloggy/internal/utils/databaseutils"
	"github.com/mejova/bloggy/internal/utils/stringutils"
	"github.com/mejova/bloggy/models"
)

func scanPost(rows *sql.Rows) (*models.Post, error) {
	var post = &models.Post{}

	if err := rows.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		pq.Array(&post.Tags),
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return post, nil
}

func (c *Core) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	insertSQL := `
		INSERT INTO posts (title, content, tags, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, content, tags, author_id, created_at, updated_at
	`

	now := time.Now()
	newPost, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanPost,
		post.Title, post.Content, pq.Array(stringutils.NormalizeTags(post.Tags)), post.AuthorID, now, now)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return newPost, nil
}

func (c *Core) GetPostByID(ctx context.Context, postID int64) (*models.Post, error) {
	query := `
		SELECT id, title, content, tags, author_id, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	post, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanPost, postID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return post, nil
}

func (c *Core) UpdatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		UPDATE posts
		SET title = $1, content = $2, tags = $3, updated_at = $4
		WHERE id = $5
		RETURNING id, title, content, tags, author_id, created_at, updated_at
	`

	updatedPost, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanPost,
		post.Title, post.Content, pq.Array(stringutils.NormalizeTags(post.Tags)), time.Now(), post.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return updatedPost, nil
}

func (c *Core) DeletePost(ctx context.Context, postID int64) error {
	query := `
		DELETE FROM posts
		WHERE id = $1
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, query, postID)
	if err != nil {
		return xerrors.New(err)
	}

	if affected == 0 {
		return xerrors.New(NoRecordFound)
	}

	return nil
}

// GetPosts lists posts newest first. authorID filters by author when
// non-zero; search matches title, content, any tag, or the author's
// username, case-insensitively and literally. Both filters compose with
// AND. The LEFT JOIN keeps posts whose author record was deleted in the
// listing; their NULL username simply never matches the search.
func (c *Core) GetPosts(ctx context.Context, filters filter.Filter, search string, authorID int64) ([]*models.Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.tags, p.author_id, p.created_at, p.updated_at
		FROM posts p LEFT JOIN users u ON u.id = p.author_id
		WHERE ($1 = 0 OR p.author_id = $1)
		AND ($2 = '' OR p.title ILIKE '%' || $2 || '%'
			OR p.content ILIKE '%' || $2 || '%'
			OR u.username ILIKE '%' || $2 || '%'
			OR EXISTS (SELECT 1 FROM unnest(p.tags) AS t WHERE t ILIKE '%' || $2 || '%'))
		ORDER BY p.created_at DESC
		LIMIT $3 OFFSET $4
	`

	posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanPost,
		authorID, stringutils.EscapeLike(search), filters.Limit, filters.Offset)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return posts, nil
}

func (c *Core) GetPostsByIdList(ctx context.Context, postIdList []int64) ([]*models.Post, error) {
	if len(postIdList) == 0 {
		return []*models.Post{}, nil
	}

	placeholders, args := stringutils.INClause(postIdList)
	query := fmt.Sprintf(`
		SELECT id, title, content, tags, author_id, created_at, updated_at
		FROM posts
		WHERE id in (%s)
	`, strings.Join(placeholders, ", "))

	posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanPost, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return posts, nil
}
