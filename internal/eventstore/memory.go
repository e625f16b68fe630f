package eventstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by unit tests. It is safe for
// concurrent use across
// games; within one game, callers are expected to serialize appends
// themselves (the hub's per-game queue already does this), matching how
// the Postgres-backed store relies on a per-game ordering rather than a
// global lock.
type MemoryStore struct {
	mu     sync.Mutex
	events map[uuid.UUID][]Event
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[uuid.UUID][]Event)}
}

func (s *MemoryStore) Append(ctx context.Context, gameID uuid.UUID, eventType string, actorID uuid.UUID, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := int64(len(s.events[gameID]))
	ev := Event{
		GameID:    gameID,
		Seq:       seq,
		Type:      eventType,
		ActorID:   actorID,
		Payload:   raw,
		CreatedAt: time.Now(),
	}
	s.events[gameID] = append(s.events[gameID], ev)
	return ev, nil
}

func (s *MemoryStore) Load(ctx context.Context, gameID uuid.UUID, fromSeq int64) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.events[gameID]
	if fromSeq >= int64(len(all)) {
		return nil, nil
	}
	out := make([]Event, len(all)-int(fromSeq))
	copy(out, all[fromSeq:])
	return out, nil
}
