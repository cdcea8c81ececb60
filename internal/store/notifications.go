package store

import (
	"context"
	"database/sql"

	"github.com/01moynul/medistore/internal/models"
)

const notificationColumns = "id, user_id, order_id, message, link, is_read, created_at"

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	now := s.now()
	query := `INSERT INTO notifications (user_id, order_id, message, link, is_read, created_at)
	          VALUES (?, ?, ?, ?, 0, ?)`

	res, err := s.q.ExecContext(ctx, query, n.UserID, n.OrderID, n.Message, n.Link, now)
	if err != nil {
		return mapErr(err)
	}
	if n.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	n.CreatedAt = now
	return nil
}

func scanNotification(sc scanner) (*models.Notification, error) {
	var (
		n       models.Notification
		orderID sql.NullInt64
		link    sql.NullString
	)
	if err := sc.Scan(&n.ID, &n.UserID, &orderID, &n.Message, &link, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	if orderID.Valid {
		n.OrderID = &orderID.Int64
	}
	n.Link = nullString(link)
	return &n, nil
}

func (s *Store) GetNotification(ctx context.Context, id int64) (*models.Notification, error) {
	return scanNotification(s.q.QueryRowContext(ctx, "SELECT "+notificationColumns+" FROM notifications WHERE id = ?", id))
}

func (s *Store) ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	query := "SELECT " + notificationColumns + ` FROM notifications
	          WHERE user_id = ?
	          ORDER BY is_read ASC, created_at DESC, id DESC
	          LIMIT ?`

	rows, err := s.q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	return mapErr(err)
}
