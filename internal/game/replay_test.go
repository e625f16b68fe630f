package game

import (
	"context"
	"testing"

	"github.com/fivecrowns/server/internal/eventstore"
	"github.com/fivecrowns/server/internal/wire"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestReplayReproducesLiveState checks that replaying the event log from
// seq 0 reproduces the live in-memory state.
func TestReplayReproducesLiveState(t *testing.T) {
	ctx := context.Background()
	store := eventstore.NewMemoryStore()
	gameID := uuid.New()
	p0, p1 := uuid.New(), uuid.New()

	g := New(gameID, []uuid.UUID{p0, p1}, 99)
	require.NoError(t, g.StartGame())
	_, err := store.Append(ctx, gameID, wire.CmdStartGame, p0, struct{}{})
	require.NoError(t, err)

	require.NoError(t, g.DrawFromStock(p0))
	_, err = store.Append(ctx, gameID, wire.CmdDraw, p0, wire.DrawPayload{Source: wire.DrawFromStock})
	require.NoError(t, err)

	card := g.Players[0].Hand[0]
	require.NoError(t, g.Discard(p0, card))
	_, err = store.Append(ctx, gameID, wire.CmdDiscard, p0, wire.DiscardPayload{Card: card})
	require.NoError(t, err)

	require.NoError(t, g.DrawFromStock(p1))
	_, err = store.Append(ctx, gameID, wire.CmdDraw, p1, wire.DrawPayload{Source: wire.DrawFromStock})
	require.NoError(t, err)

	events, err := store.Load(ctx, gameID, 0)
	require.NoError(t, err)

	replayed, err := Rehydrate(gameID, []uuid.UUID{p0, p1}, 99, events)
	require.NoError(t, err)

	require.Equal(t, g.RoundNumber, replayed.RoundNumber)
	require.Equal(t, g.TurnIndex, replayed.TurnIndex)
	require.Equal(t, g.TurnPhase, replayed.TurnPhase)
	require.Equal(t, g.Players[0].Hand, replayed.Players[0].Hand)
	require.Equal(t, g.Players[1].Hand, replayed.Players[1].Hand)
	require.Equal(t, g.DeckStock, replayed.DeckStock)
	require.Equal(t, g.DiscardPile, replayed.DiscardPile)
}
