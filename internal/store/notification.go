package store

import (
	"context"

	"civicgrid.app/core/core/db"
	"civicgrid.app/core/internal/model"
)

type notificationStore struct {
	q db.Querier
}

func (s *notificationStore) Create(ctx context.Context, n *model.Notification) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, kind, title, body, read)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING created_at`,
		n.ID, n.UserID, n.Kind, n.Title, n.Body)
	return row.Scan(&n.CreatedAt)
}

func (s *notificationStore) ListByUser(ctx context.Context, userID int64, limit int32) ([]model.Notification, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, user_id, kind, title, body, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *notificationStore) MarkRead(ctx context.Context, id int64, userID int64) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
