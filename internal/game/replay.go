package game

import (
	"encoding/json"
	"fmt"

	"github.com/fivecrowns/server/internal/eventstore"
	"github.com/fivecrowns/server/internal/wire"
	"github.com/google/uuid"
)

// Rehydrate rebuilds a GameState for gameID by replaying events in seq
// order against a freshly-seeded state. userIDs must list the seats in
// the order they joined.
func Rehydrate(gameID uuid.UUID, userIDs []uuid.UUID, seed int64, events []eventstore.Event) (*GameState, error) {
	g := New(gameID, userIDs, seed)
	for _, ev := range events {
		if err := applyEvent(g, ev); err != nil {
			return nil, fmt.Errorf("replay seq %d (%s): %w", ev.Seq, ev.Type, err)
		}
	}
	return g, nil
}

func applyEvent(g *GameState, ev eventstore.Event) error {
	switch ev.Type {
	case wire.CmdStartGame:
		return g.StartGame()
	case wire.CmdDraw:
		var p wire.DrawPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return err
		}
		if p.Source == wire.DrawFromDiscard {
			return g.DrawFromDiscard(ev.ActorID)
		}
		return g.DrawFromStock(ev.ActorID)
	case wire.CmdLayMelds:
		var p wire.LayMeldsPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return err
		}
		return g.LayMelds(ev.ActorID, p.Melds)
	case wire.CmdLayOff:
		var p wire.LayOffPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return err
		}
		return g.LayOff(ev.ActorID, p.TargetPlayerIdx, p.MeldIdx, p.Cards)
	case wire.CmdDiscard:
		var p wire.DiscardPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return err
		}
		return g.Discard(ev.ActorID, p.Card)
	case wire.CmdGoOut:
		var p wire.GoOutPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return err
		}
		return g.GoOut(ev.ActorID, p.Melds, p.Discard)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
}
