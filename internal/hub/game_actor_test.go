package hub

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fivecrowns/server/internal/eventstore"
	"github.com/fivecrowns/server/internal/game"
	"github.com/fivecrowns/server/internal/wire"
)

func newTestActor(t *testing.T) (*gameActor, uuid.UUID, uuid.UUID) {
	t.Helper()

	p0, p1 := uuid.New(), uuid.New()
	gameID := uuid.New()
	state := game.New(gameID, []uuid.UUID{p0, p1}, 42)
	require.NoError(t, state.StartGame())

	log := logrus.New()
	log.SetOutput(io.Discard)
	h := &Hub{
		conns:     make(map[*Connection]bool),
		userConns: make(map[uuid.UUID]map[*Connection]bool),
		games:     make(map[uuid.UUID]*gameActor),
		events:    eventstore.NewMemoryStore(),
		log:       log,
	}

	actor := newGameActor(h, state)
	h.games[gameID] = actor
	return actor, p0, p1
}

func TestGameActorSubmitAppliesCommandAndPersistsEvent(t *testing.T) {
	actor, p0, _ := newTestActor(t)

	payload, err := json.Marshal(wire.DrawPayload{Source: wire.DrawFromStock})
	require.NoError(t, err)

	err = actor.submit(command{
		actorID: p0,
		kind:    wire.CmdDraw,
		payload: payload,
	})
	require.NoError(t, err)
	require.Equal(t, game.MustDiscard, actor.state.TurnPhase)

	events, err := actor.hub.events.Load(context.Background(), actor.gameID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, wire.CmdDraw, events[0].Type)
	require.Equal(t, p0, events[0].ActorID)
}

func TestGameActorSubmitRejectsWrongPlayer(t *testing.T) {
	actor, _, p1 := newTestActor(t)

	payload, err := json.Marshal(wire.DrawPayload{Source: wire.DrawFromStock})
	require.NoError(t, err)

	err = actor.submit(command{
		actorID: p1,
		kind:    wire.CmdDraw,
		payload: payload,
	})
	require.Error(t, err)
	re, ok := game.AsRuleError(err)
	require.True(t, ok)
	require.Equal(t, game.CodeNotYourTurn, re.Code)
}

func TestGameActorProjectReflectsCurrentState(t *testing.T) {
	actor, p0, _ := newTestActor(t)

	proj, err := actor.project(p0)
	require.NoError(t, err)
	require.Equal(t, 3, len(proj.YourHand))
	require.Equal(t, game.MustDraw, proj.TurnPhase)
}
