package core

import (
	"context"
	"database/sql"

	"github.com/mdobak/go-xerrors"
	"github.com/mejova/bloggy/internal/utils/databaseutils"
	"github.com/mejova/bloggy/models"
)

var ErrSelfFollow = xerrors.Message("Users cannot follow themselves")

// Follow subscribes followerID to targetID's new posts. Idempotent: a
// repeated follow is a no-op. The target is not checked for existence.
func (c *Core) Follow(ctx context.Context, followerID, targetID int64) error {
	if followerID == targetID {
		return xerrors.New(ErrSelfFollow)
	}

	insertSQL := `
		INSERT INTO followers (user_id, follower_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, follower_id) DO NOTHING
	`

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, targetID, followerID); err != nil {
		return xerrors.New(err)
	}

	return nil
}

// Unfollow removes the subscription. Removing a non-member is a no-op.
func (c *Core) Unfollow(ctx context.Context, followerID, targetID int64) error {
	deleteSQL := `
		DELETE FROM followers
		WHERE user_id = $1 AND follower_id = $2
	`

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSQL, targetID, followerID); err != nil {
		return xerrors.New(err)
	}

	return nil
}

func (c *Core) IsFollowing(ctx context.Context, followerID, targetID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM followers WHERE user_id = $1 AND follower_id = $2
		)
	`

	isFollowing, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (bool, error) {
		var following bool
		if err := rows.Scan(&following); err != nil {
			return false, xerrors.New(err)
		}
		return following, nil
	}, targetID, followerID)

	if err != nil {
		return false, xerrors.New(err)
	}

	return isFollowing, nil
}

// FollowingList resolves the users that followerID subscribes to. Dangling
// follows of deleted users are filtered out by the join.
func (c *Core) FollowingList(ctx context.Context, followerID int64) ([]models.UserSummary, error) {
	query := `
		SELECT u.id, u.username
		FROM users u JOIN followers f ON u.id = f.user_id
		WHERE f.follower_id = $1
		ORDER BY u.username
	`

	following, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (models.UserSummary, error) {
		var summary models.UserSummary
		if err := rows.Scan(&summary.ID, &summary.Username); err != nil {
			return models.UserSummary{}, xerrors.New(err)
		}
		return summary, nil
	}, followerID)

	if err != nil {
		return nil, xerrors.New(err)
	}

	return following, nil
}

// FollowerIDs is the inverted read used by the notification fan-out: every
// user subscribed to the given author.
func (c *Core) FollowerIDs(ctx context.Context, authorID int64) ([]int64, error) {
	query := `
		SELECT follower_id
		FROM followers
		WHERE user_id = $1
	`

	followerIDs, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (int64, error) {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, xerrors.New(err)
		}
		return id, nil
	}, authorID)

	if err != nil {
		return nil, xerrors.New(err)
	}

	return followerIDs, nil
}
