package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository persists the notifications table. Entries are
// append-only; delivery always writes a row regardless of whether a live
// socket also receives the event immediately.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts a new unread notification for userID.
func (r *NotificationRepository) Create(ctx context.Context, userID uuid.UUID, kind string, fromUserID, gameID *uuid.UUID) (Notification, error) {
	n := Notification{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       kind,
		FromUserID: fromUserID,
		GameID:     gameID,
		CreatedAt:  time.Now().UTC(),
		Status:     NotificationUnread,
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, from_user_id, game_id, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.UserID, n.Type, n.FromUserID, n.GameID, n.CreatedAt, n.Status)
	return n, err
}

// ListForUser returns a user's notification history, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, from_user_id, game_id, created_at, status
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.FromUserID, &n.GameID, &n.CreatedAt, &n.Status); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead transitions a single notification to read, scoped to its
// owner so one user cannot mark another's notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications SET status = $1 WHERE id = $2 AND user_id = $3
	`, NotificationRead, notificationID, userID)
	return err
}

// CountUnread is used by the notifications-list endpoint's badge count.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND status = $2
	`, userID, NotificationUnread).Scan(&count)
	return count, err
}
