package db

import (
	"context"

	"github.com/meddispatch/backend/internal/model"
)

func (db *Postgres) InsertNotification(ctx context.Context, userID int64, userType model.UserType, kind model.NotificationKind, body string) error {
	query := `
		INSERT INTO notifications (user_id, user_type, kind, body, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := db.Pool.Exec(ctx, query, userID, userType, kind, body)
	return err
}

func (db *Postgres) ListNotifications(ctx context.Context, userID int64, userType model.UserType) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, user_type, kind, body, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND user_type = $2
		ORDER BY created_at DESC
	`
	rows, err := db.Pool.Query(ctx, query, userID, userType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.UserType, &n.Kind, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkNotificationRead flags a recipient's own notification as read.
func (db *Postgres) MarkNotificationRead(ctx context.Context, notificationID, userID int64) (bool, error) {
	query := `
		UPDATE notifications
		SET read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL
	`
	tag, err := db.Pool.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// HasRecentNotification dedupes repeated compliance reminders.
func (db *Postgres) HasRecentNotification(ctx context.Context, userID int64, kind model.NotificationKind, withinDays int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND kind = $2
			  AND created_at >= NOW() - ($3 || ' days')::interval
		)
	`
	var exists bool
	if err := db.Pool.QueryRow(ctx, query, userID, kind, withinDays).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
