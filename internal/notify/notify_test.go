package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mejova/bloggy/internal/auth"
	"github.com/mejova/bloggy/internal/live"
	"github.com/mejova/bloggy/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFollowers struct {
	followers map[int64][]int64
	err       error
}

func (f *fakeFollowers) FollowerIDs(_ context.Context, authorID int64) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.followers[authorID], nil
}

type fakeSink struct {
	created map[int64][]int64 // postID -> recipients
	err     error
}

func (f *fakeSink) CreateNotifications(_ context.Context, postID int64, recipientIDs []int64) error {
	if f.err != nil {
		return f.err
	}
	if f.created == nil {
		f.created = make(map[int64][]int64)
	}
	f.created[postID] = append(f.created[postID], recipientIDs...)
	return nil
}

type fakePublisher struct {
	published map[int64][]live.Message // userID -> messages
	outcome   live.Outcome
}

func (f *fakePublisher) Publish(userID int64, message live.Message) live.Outcome {
	if f.published == nil {
		f.published = make(map[int64][]live.Message)
	}
	f.published[userID] = append(f.published[userID], message)
	return f.outcome
}

func newTestNotifier(followers *fakeFollowers, sink *fakeSink, publisher *fakePublisher) *Notifier {
	return New(&Args{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Followers: followers,
		Sink:      sink,
		Publisher: publisher,
	})
}

func testPostAndAuthor() (*models.Post, *auth.User) {
	author := &auth.User{ID: 1, Username: "bob"}
	post := &models.Post{
		ID:        7,
		Title:     "Hi",
		Content:   "...",
		Tags:      []string{"intro"},
		AuthorID:  author.ID,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	return post, author
}

func TestFanOutCreatesOneNotificationPerFollower(t *testing.T) {
	followers := &fakeFollowers{followers: map[int64][]int64{1: {2, 3}}}
	sink := &fakeSink{}
	publisher := &fakePublisher{outcome: live.DeliveredLive}

	post, author := testPostAndAuthor()
	newTestNotifier(followers, sink, publisher).FanOut(context.Background(), post, author)

	require.Contains(t, sink.created, post.ID)
	assert.ElementsMatch(t, []int64{2, 3}, sink.created[post.ID])
}

func TestFanOutPublishesNewPostEventToEachFollower(t *testing.T) {
	followers := &fakeFollowers{followers: map[int64][]int64{1: {2, 3}}}
	sink := &fakeSink{}
	publisher := &fakePublisher{outcome: live.DeliveredLive}

	post, author := testPostAndAuthor()
	newTestNotifier(followers, sink, publisher).FanOut(context.Background(), post, author)

	require.Len(t, publisher.published, 2)
	for _, userID := range []int64{2, 3} {
		messages := publisher.published[userID]
		require.Len(t, messages, 1)
		assert.Equal(t, "new_post", messages[0].Event)

		event, ok := messages[0].Data.(live.NewPostEvent)
		require.True(t, ok)
		assert.Equal(t, post.ID, event.PostID)
		assert.Equal(t, "Hi", event.Title)
		assert.Equal(t, "bob", event.Author)
		assert.True(t, post.CreatedAt.Equal(event.CreatedAt))
	}
}

func TestFanOutWithNoFollowersDoesNothing(t *testing.T) {
	followers := &fakeFollowers{followers: map[int64][]int64{}}
	sink := &fakeSink{}
	publisher := &fakePublisher{outcome: live.DeliveredLive}

	post, author := testPostAndAuthor()
	newTestNotifier(followers, sink, publisher).FanOut(context.Background(), post, author)

	assert.Empty(t, sink.created)
	assert.Empty(t, publisher.published)
}

func TestFanOutAbortsWhenPersistenceFails(t *testing.T) {
	followers := &fakeFollowers{followers: map[int64][]int64{1: {2}}}
	sink := &fakeSink{err: errors.New("insert failed")}
	publisher := &fakePublisher{outcome: live.DeliveredLive}

	post, author := testPostAndAuthor()
	newTestNotifier(followers, sink, publisher).FanOut(context.Background(), post, author)

	// Durable write failed, so no live event may go out.
	assert.Empty(t, publisher.published)
}

func TestFanOutAbortsWhenFollowerLookupFails(t *testing.T) {
	followers := &fakeFollowers{err: errors.New("query failed")}
	sink := &fakeSink{}
	publisher := &fakePublisher{outcome: live.DeliveredLive}

	post, author := testPostAndAuthor()
	newTestNotifier(followers, sink, publisher).FanOut(context.Background(), post, author)

	assert.Empty(t, sink.created)
	assert.Empty(t, publisher.published)
}

func TestFanOutPersistsEvenWhenNobodyIsConnected(t *testing.T) {
	followers := &fakeFollowers{followers: map[int64][]int64{1: {2}}}
	sink := &fakeSink{}
	publisher := &fakePublisher{outcome: live.NoActiveSession}

	post, author := testPostAndAuthor()
	newTestNotifier(followers, sink, publisher).FanOut(context.Background(), post, author)

	require.Contains(t, sink.created, post.ID)
	assert.ElementsMatch(t, []int64{2}, sink.created[post.ID])
}
