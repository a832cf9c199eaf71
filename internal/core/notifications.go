package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/mejova/bloggy/internal/utils/databaseutils"
	"github.com/mejova/bloggy/models"
)

// CreateNotifications persists one unseen notification per recipient for
// the given post, in a single multi-row insert.
func (c *Core) CreateNotifications(ctx context.Context, postID int64, recipientIDs []int64) error {
	if len(recipientIDs) == 0 {
		return nil
	}

	// The statement will look like:
	// INSERT INTO notifications (recipient_id, post_id) VALUES ($1, $2), ($3, $4), ...
	valueStrings := make([]string, 0, len(recipientIDs))
	valueArgs := make([]any, 0, len(recipientIDs)*2)
	for i, recipientID := range recipientIDs {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		valueArgs = append(valueArgs, recipientID, postID)
	}

	insertSQL := fmt.Sprintf(`
		INSERT INTO notifications (recipient_id, post_id)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, valueArgs...); err != nil {
		return xerrors.New(err)
	}

	return nil
}

func (c *Core) NotificationsByRecipient(ctx context.Context, recipientID int64) ([]*models.Notification, error) {
	query := `
		SELECT id, recipient_id, post_id, seen, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`

	notifications, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*models.Notification, error) {
		var notification = &models.Notification{}
		if err := rows.Scan(
			&notification.ID,
			&notification.RecipientID,
			&notification.PostID,
			&notification.Seen,
			&notification.CreatedAt,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return notification, nil
	}, recipientID)

	if err != nil {
		return nil, xerrors.New(err)
	}

	return notifications, nil
}

// MarkAllSeen flips every unseen notification of the recipient. Succeeds
// unconditionally, affecting zero rows when there is nothing unseen.
func (c *Core) MarkAllSeen(ctx context.Context, recipientID int64) error {
	query := `
		UPDATE notifications
		SET seen = true
		WHERE recipient_id = $1 AND seen = false
	`

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, query, recipientID); err != nil {
		return xerrors.New(err)
	}

	return nil
}
