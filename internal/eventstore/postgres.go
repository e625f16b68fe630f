package eventstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists events into the game_events table. Sequence
// numbers come from a per-game row in game_event_counters, incremented by
// `INSERT ... ON CONFLICT DO UPDATE ... RETURNING` inside the append's
// transaction; the row lock that update takes keeps them gap-free even if two processes ever raced on the same gameId (in
// normal operation the hub's single-writer queue already prevents that).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already-connected pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, gameID uuid.UUID, eventType string, actorID uuid.UUID, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Event{}, err
	}
	defer tx.Rollback(ctx)

	var seq int64
	err = tx.QueryRow(ctx, `
		INSERT INTO game_event_counters (game_id, next_seq)
		VALUES ($1, 1)
		ON CONFLICT (game_id) DO UPDATE SET next_seq = game_event_counters.next_seq + 1
		RETURNING next_seq - 1
	`, gameID).Scan(&seq)
	if err != nil {
		return Event{}, err
	}

	createdAt := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		INSERT INTO game_events (game_id, seq, type, actor_user_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, gameID, seq, eventType, actorID, raw, createdAt)
	if err != nil {
		return Event{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Event{}, err
	}

	return Event{
		GameID:    gameID,
		Seq:       seq,
		Type:      eventType,
		ActorID:   actorID,
		Payload:   raw,
		CreatedAt: createdAt,
	}, nil
}

func (s *PostgresStore) Load(ctx context.Context, gameID uuid.UUID, fromSeq int64) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, seq, type, actor_user_id, payload, created_at
		FROM game_events
		WHERE game_id = $1 AND seq >= $2
		ORDER BY seq ASC
	`, gameID, fromSeq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.GameID, &ev.Seq, &ev.Type, &ev.ActorID, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
