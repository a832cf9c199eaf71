// Package notify fans a newly created post out to the author's followers:
// one durable notification record per follower, then a best-effort live
// push to whoever is connected. The durable write always runs first so a
// live-delivery failure can never lose a notification.
package notify

import (
	"context"
	"log/slog"

	"github.com/mdobak/go-xerrors"
	"github.com/mejova/bloggy/internal/auth"
	"github.com/mejova/bloggy/internal/live"
	"github.com/mejova/bloggy/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FollowerSource resolves the inverted subscription relation.
type FollowerSource interface {
	FollowerIDs(ctx context.Context, authorID int64) ([]int64, error)
}

// NotificationSink persists the durable notification records.
type NotificationSink interface {
	CreateNotifications(ctx context.Context, postID int64, recipientIDs []int64) error
}

// Publisher pushes an event to a user's connected sessions.
type Publisher interface {
	Publish(userID int64, message live.Message) live.Outcome
}

var (
	notificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bloggy_notifications_created_total",
		Help: "durable notification records written by the fan-out",
	})
	liveDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloggy_live_deliveries_total",
		Help: "live push attempts by outcome",
	}, []string{"outcome"})
)

type Notifier struct {
	log       *slog.Logger
	followers FollowerSource
	sink      NotificationSink
	publisher Publisher
}

type Args struct {
	Logger    *slog.Logger
	Followers FollowerSource
	Sink      NotificationSink
	Publisher Publisher
}

func New(args *Args) *Notifier {
	return &Notifier{
		log:       args.Logger,
		followers: args.Followers,
		sink:      args.Sink,
		publisher: args.Publisher,
	}
}

// FanOut notifies every follower of the post's author. Best-effort: the
// post is already committed when this runs, so failures are logged and
// swallowed rather than surfaced to the creating request.
func (n *Notifier) FanOut(ctx context.Context, post *models.Post, author *auth.User) {
	followerIDs, err := n.followers.FollowerIDs(ctx, author.ID)
	if err != nil {
		n.log.Error("fan-out aborted: resolving followers failed",
			"post_id", post.ID, "author_id", author.ID, "stack", xerrors.Sprint(err))
		return
	}

	if len(followerIDs) == 0 {
		return
	}

	if err := n.sink.CreateNotifications(ctx, post.ID, followerIDs); err != nil {
		n.log.Error("fan-out aborted: persisting notifications failed",
			"post_id", post.ID, "follower_count", len(followerIDs), "stack", xerrors.Sprint(err))
		return
	}
	notificationsCreated.Add(float64(len(followerIDs)))

	message := live.Message{
		Event: "new_post",
		Data: live.NewPostEvent{
			PostID:    post.ID,
			Title:     post.Title,
			Author:    author.Username,
			CreatedAt: post.CreatedAt,
		},
	}

	for _, followerID := range followerIDs {
		outcome := n.publisher.Publish(followerID, message)
		liveDeliveries.WithLabelValues(outcome.String()).Inc()
	}

	n.log.Debug("fan-out complete", "post_id", post.ID, "follower_count", len(followerIDs))
}
