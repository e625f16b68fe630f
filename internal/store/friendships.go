package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendshipRepository persists the friendships table. Acceptance creates
// two accepted rows (one in each direction), so IsAccepted must use a
// get-many + non-empty predicate rather than get-single.
type FriendshipRepository struct {
	pool *pgxpool.Pool
}

func NewFriendshipRepository(pool *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{pool: pool}
}

// RequestFriendship inserts a pending row from -> to, if one does not
// already exist ("insert-if-absent" semantics).
func (r *FriendshipRepository) RequestFriendship(ctx context.Context, from, to uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id, status, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`, from, to, FriendshipPending, time.Now().UTC())
	return err
}

// Accept creates the bidirectional accepted pair for a and b.
func (r *FriendshipRepository) Accept(ctx context.Context, a, b uuid.UUID) error {
	now := time.Now().UTC()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, pair := range [][2]uuid.UUID{{a, b}, {b, a}} {
		_, err = tx.Exec(ctx, `
			INSERT INTO friendships (user_id, friend_id, status, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, friend_id) DO UPDATE SET status = $3
		`, pair[0], pair[1], FriendshipAccepted, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// IsAccepted reports whether an accepted friendship row exists in either
// direction between a and b. It tolerates the bidirectional-row model by
// checking both rows, not just one.
func (r *FriendshipRepository) IsAccepted(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM friendships
		WHERE status = $1 AND (
			(user_id = $2 AND friend_id = $3) OR
			(user_id = $3 AND friend_id = $2)
		)
	`, FriendshipAccepted, a, b).Scan(&count)
	return count > 0, err
}

// ListFor lists every friendship row whose user_id is userID, whatever its
// status; rows where userID appears only as friend_id are not included.
func (r *FriendshipRepository) ListFor(ctx context.Context, userID uuid.UUID) ([]Friendship, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, friend_id, status, created_at
		FROM friendships WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Friendship
	for rows.Next() {
		var f Friendship
		if err := rows.Scan(&f.UserID, &f.FriendID, &f.Status, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
