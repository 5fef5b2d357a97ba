package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/questlog/internal/model"
)

// CreateNotification inserts a broadcast row and returns its ID.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) (int64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (client_id, kind, quest_id, focus, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.ClientID, string(n.Kind), n.QuestID, boolToInt(n.Focus), n.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading notification id: %w", err)
	}
	return id, nil
}

// GetNotificationsAfter returns rows with ID above afterID that were not
// sent by excludeClient, oldest first.
func (s *SQLiteStore) GetNotificationsAfter(
	ctx context.Context,
	afterID int64,
	excludeClient string,
) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, client_id, kind, quest_id, focus, created_at
		FROM notifications
		WHERE id > ? AND client_id != ?
		ORDER BY id ASC`,
		afterID, excludeClient,
	)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var (
			n        model.Notification
			kind     string
			focusInt int
		)
		if err := rows.Scan(&n.ID, &n.ClientID, &kind, &n.QuestID, &focusInt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Kind = model.NotificationKind(kind)
		n.Focus = focusInt != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

// LatestNotificationID returns the highest notification ID, or 0 when empty.
func (s *SQLiteStore) LatestNotificationID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.db.GetContext(ctx, &id,
		"SELECT COALESCE(MAX(id), 0) FROM notifications"); err != nil {
		return 0, fmt.Errorf("reading latest notification id: %w", err)
	}
	return id, nil
}

// PruneNotifications keeps only the newest keep rows.
func (s *SQLiteStore) PruneNotifications(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE id <= (SELECT COALESCE(MAX(id), 0) FROM notifications) - ?`,
		keep,
	)
	if err != nil {
		return fmt.Errorf("pruning notifications: %w", err)
	}
	return nil
}
