// Package eventstore persists every state-changing command against a game
// as an append-only, gap-free sequence, so GameState can be rebuilt
// exactly by replaying events from seq 0.
package eventstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one committed command plus enough context to replay it.
type Event struct {
	GameID    uuid.UUID       `json:"gameId"`
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	ActorID   uuid.UUID       `json:"actorUserId"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store is the append-only persistence boundary. Implementations must
// assign seq numbers gap-free per gameId.
type Store interface {
	// Append persists event with the next sequence number for its
	// GameID and returns the event as stored (with Seq and CreatedAt
	// filled in).
	Append(ctx context.Context, gameID uuid.UUID, eventType string, actorID uuid.UUID, payload any) (Event, error)

	// Load returns every event for gameID in seq order, starting from
	// fromSeq (inclusive).
	Load(ctx context.Context, gameID uuid.UUID, fromSeq int64) ([]Event, error)
}
