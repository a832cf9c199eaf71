package core

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/mejova/bloggy/internal/auth"
	"github.com/mejova/bloggy/internal/filter"
	"github.com/mejova/bloggy/internal/utils/databaseutils"
	"github.com/mejova/bloggy/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCore connects to the database named by BLOGGY_TEST_DB_DSN, or
// skips the test when none is configured.
func newTestCore(t *testing.T) *Core {
	t.Helper()

	dsn := os.Getenv("BLOGGY_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("Skipping test - no database connection configured")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sqlTemplate := databaseutils.NewSQLTemplate(db, 3*time.Second)
	session := databaseutils.NewSession(db)

	return NewCore(db, log, sqlTemplate, session)
}

// createTestUser inserts a user with a unique handle so tests do not
// collide across runs.
func createTestUser(t *testing.T, c *Core, prefix string) *auth.User {
	t.Helper()

	suffix := time.Now().UnixNano()
	user := &auth.User{
		Username: fmt.Sprintf("%s-%d", prefix, suffix),
		Email:    fmt.Sprintf("%s-%d@example.com", prefix, suffix),
	}
	require.NoError(t, user.SetPassword("test-password"))
	require.NoError(t, c.CreateNewUser(context.Background(), user))

	return user
}

func TestFollowLifecycle(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	alice := createTestUser(t, c, "alice")
	bob := createTestUser(t, c, "bob")

	following, err := c.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, c.Follow(ctx, alice.ID, bob.ID))

	following, err = c.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Idempotent: the second follow must not add a second edge.
	require.NoError(t, c.Follow(ctx, alice.ID, bob.ID))
	followingList, err := c.FollowingList(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.UserSummary{{ID: bob.ID, Username: bob.Username}}, followingList)

	require.NoError(t, c.Unfollow(ctx, alice.ID, bob.ID))
	following, err = c.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	// Removing a non-member is a no-op, not an error.
	require.NoError(t, c.Unfollow(ctx, alice.ID, bob.ID))
}

func TestSelfFollowIsRejected(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	alice := createTestUser(t, c, "alice")

	err := c.Follow(ctx, alice.ID, alice.ID)
	require.ErrorIs(t, err, ErrSelfFollow)

	following, err := c.IsFollowing(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowNonexistentUserSucceedsSilently(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	alice := createTestUser(t, c, "alice")
	const ghostID = int64(1<<62 - 1)

	require.NoError(t, c.Follow(ctx, alice.ID, ghostID))

	// The edge exists, but resolving through the users table hides it.
	following, err := c.IsFollowing(ctx, alice.ID, ghostID)
	require.NoError(t, err)
	assert.True(t, following)

	followingList, err := c.FollowingList(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, followingList)

	require.NoError(t, c.Unfollow(ctx, alice.ID, ghostID))
}

func TestFollowerIDsInvertsTheRelation(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	author := createTestUser(t, c, "author")
	bob := createTestUser(t, c, "bob")
	carol := createTestUser(t, c, "carol")

	require.NoError(t, c.Follow(ctx, bob.ID, author.ID))
	require.NoError(t, c.Follow(ctx, carol.ID, author.ID))

	followerIDs, err := c.FollowerIDs(ctx, author.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{bob.ID, carol.ID}, followerIDs)
}

func TestNotificationLifecycle(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	author := createTestUser(t, c, "author")
	bob := createTestUser(t, c, "bob")
	carol := createTestUser(t, c, "carol")

	post, err := c.CreatePost(ctx, &models.Post{
		Title:    "Hi",
		Content:  "hello world",
		Tags:     []string{"intro"},
		AuthorID: author.ID,
	})
	require.NoError(t, err)

	require.NoError(t, c.CreateNotifications(ctx, post.ID, []int64{bob.ID, carol.ID}))

	bobNotifications, err := c.NotificationsByRecipient(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobNotifications, 1)
	assert.Equal(t, post.ID, bobNotifications[0].PostID)
	assert.False(t, bobNotifications[0].Seen)

	// Marking bob's notifications seen must not touch carol's.
	require.NoError(t, c.MarkAllSeen(ctx, bob.ID))

	bobNotifications, err = c.NotificationsByRecipient(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobNotifications, 1)
	assert.True(t, bobNotifications[0].Seen)

	carolNotifications, err := c.NotificationsByRecipient(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, carolNotifications, 1)
	assert.False(t, carolNotifications[0].Seen)

	// MarkAllSeen with nothing unseen still succeeds.
	require.NoError(t, c.MarkAllSeen(ctx, bob.ID))
}

func TestGetPostsSearchAndOrdering(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	author := createTestUser(t, c, "author")

	marker := fmt.Sprintf("zxq%d", time.Now().UnixNano())

	titleMatch, err := c.CreatePost(ctx, &models.Post{
		Title: "Learning " + marker, Content: "body", AuthorID: author.ID,
	})
	require.NoError(t, err)

	// Keep created_at strictly increasing so the ordering check below
	// cannot hit a timestamp tie.
	time.Sleep(time.Millisecond)

	tagMatch, err := c.CreatePost(ctx, &models.Post{
		Title: "Another day", Content: "body", Tags: []string{marker}, AuthorID: author.ID,
	})
	require.NoError(t, err)

	_, err = c.CreatePost(ctx, &models.Post{
		Title: "Unrelated", Content: "body", AuthorID: author.ID,
	})
	require.NoError(t, err)

	// Case-insensitive substring over title, content, tags, author name.
	posts, err := c.GetPosts(ctx, filter.NewFilter(20, 0), marker, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Newest first.
	assert.Equal(t, tagMatch.ID, posts[0].ID)
	assert.Equal(t, titleMatch.ID, posts[1].ID)
	assert.False(t, posts[0].CreatedAt.Before(posts[1].CreatedAt))

	// Author filter composes with AND.
	posts, err = c.GetPosts(ctx, filter.NewFilter(20, 0), marker, author.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	posts, err = c.GetPosts(ctx, filter.NewFilter(20, 0), marker, author.ID+1)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestGetPostsListsPostsOfDeletedAuthors(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	author := createTestUser(t, c, "author")
	marker := fmt.Sprintf("zxq%d", time.Now().UnixNano())

	post, err := c.CreatePost(ctx, &models.Post{
		Title: "Orphaned " + marker, Content: "body", AuthorID: author.ID,
	})
	require.NoError(t, err)

	require.NoError(t, c.DeleteUser(ctx, author.ID))

	// The post stays in listings after its author record is gone.
	posts, err := c.GetPosts(ctx, filter.NewFilter(20, 0), marker, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)

	posts, err = c.GetPosts(ctx, filter.NewFilter(20, 0), "", author.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
}

func TestGetPostsSearchTreatsWildcardsLiterally(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	author := createTestUser(t, c, "author")
	marker := fmt.Sprintf("zxq%d", time.Now().UnixNano())

	literal, err := c.CreatePost(ctx, &models.Post{
		Title: marker + " is 100% done", Content: "body", AuthorID: author.ID,
	})
	require.NoError(t, err)

	// Would also match "100% done" if % acted as a wildcard.
	_, err = c.CreatePost(ctx, &models.Post{
		Title: marker + " is 100x done", Content: "body", AuthorID: author.ID,
	})
	require.NoError(t, err)

	posts, err := c.GetPosts(ctx, filter.NewFilter(20, 0), "100% done", author.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, literal.ID, posts[0].ID)

	// An underscore matches itself, not any single character.
	posts, err = c.GetPosts(ctx, filter.NewFilter(20, 0), "100_ done", author.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestTagsAreNormalizedOnCreate(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	author := createTestUser(t, c, "author")

	post, err := c.CreatePost(ctx, &models.Post{
		Title:    "Tagged",
		Content:  "body",
		Tags:     []string{" Go ", "WEB", ""},
		AuthorID: author.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "web"}, post.Tags)
}

func TestOwnershipGuardLeavesPostUnchanged(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	author := createTestUser(t, c, "author")
	stranger := createTestUser(t, c, "stranger")

	post, err := c.CreatePost(ctx, &models.Post{
		Title: "Mine", Content: "body", AuthorID: author.ID,
	})
	require.NoError(t, err)

	// The handler-level guard consults these predicates before touching
	// the store; a failed guard means no store call at all.
	require.False(t, post.DeletableBy(stranger))
	require.False(t, post.EditableBy(stranger))

	fetched, err := c.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", fetched.Title)
}
