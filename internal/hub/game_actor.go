package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fivecrowns/server/internal/game"
	"github.com/fivecrowns/server/internal/store"
	"github.com/fivecrowns/server/internal/wire"
)

// command is one inbound request enqueued onto a gameActor. response
// carries back the error (if any) so the dispatch goroutine can reply to
// only the issuing socket, never broadcast.
type command struct {
	actorID   uuid.UUID
	clientSeq int64
	kind      string
	payload   json.RawMessage
	response  chan error
}

// projectRequest asks the actor's own goroutine for a read-only
// projection, so GameState is never touched from outside its owning
// queue even for reads.
type projectRequest struct {
	userID   uuid.UUID
	response chan projectResult
}

type projectResult struct {
	proj game.Projection
	err  error
}

// gameActor owns one game's authoritative GameState and drains commands
// off a single channel so all of its state transitions execute
// sequentially, never observed concurrently.
type gameActor struct {
	gameID   uuid.UUID
	state    *game.GameState
	inbox    chan command
	projects chan projectRequest
	done     chan struct{}
	hub      *Hub
	log      *logrus.Entry
}

func newGameActor(h *Hub, state *game.GameState) *gameActor {
	a := &gameActor{
		gameID:   state.GameID,
		state:    state,
		inbox:    make(chan command, 128),
		projects: make(chan projectRequest, 128),
		done:     make(chan struct{}),
		hub:      h,
		log:      h.log.WithField("gameId", state.GameID),
	}
	go a.run()
	return a
}

func (a *gameActor) run() {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithField("panic", r).Error("game actor panicked, queue terminated")
		}
	}()

	for {
		select {
		case cmd := <-a.inbox:
			err := a.handle(cmd)
			if cmd.response != nil {
				cmd.response <- err
			}
		case req := <-a.projects:
			proj, err := a.state.Project(req.userID)
			req.response <- projectResult{proj: proj, err: err}
		case <-a.done:
			return
		}
	}
}

// project asks the actor's goroutine for a read-only projection of its
// current state for userID.
func (a *gameActor) project(userID uuid.UUID) (game.Projection, error) {
	req := projectRequest{userID: userID, response: make(chan projectResult, 1)}
	select {
	case a.projects <- req:
	case <-a.done:
		return game.Projection{}, game.NewRuleError(game.CodeGameNotActive, "game queue has shut down")
	}
	res := <-req.response
	return res.proj, res.err
}

// submit enqueues cmd and blocks for its result. Ordering within one
// socket's commands, and across sockets for the same game, is
// arrival-at-the-channel order.
func (a *gameActor) submit(cmd command) error {
	cmd.response = make(chan error, 1)
	select {
	case a.inbox <- cmd:
	case <-a.done:
		return game.NewRuleError(game.CodeGameNotActive, "game queue has shut down")
	}
	return <-cmd.response
}

func (a *gameActor) handle(cmd command) error {
	ctx := context.Background()
	statusBefore := a.state.Status

	var mutate func() error
	switch cmd.kind {
	case wire.CmdStartGame:
		mutate = a.state.StartGame
	case wire.CmdDraw:
		var p wire.DrawPayload
		if err := json.Unmarshal(cmd.payload, &p); err != nil {
			return err
		}
		mutate = func() error {
			if p.Source == wire.DrawFromDiscard {
				return a.state.DrawFromDiscard(cmd.actorID)
			}
			return a.state.DrawFromStock(cmd.actorID)
		}
	case wire.CmdLayMelds:
		var p wire.LayMeldsPayload
		if err := json.Unmarshal(cmd.payload, &p); err != nil {
			return err
		}
		mutate = func() error { return a.state.LayMelds(cmd.actorID, p.Melds) }
	case wire.CmdLayOff:
		var p wire.LayOffPayload
		if err := json.Unmarshal(cmd.payload, &p); err != nil {
			return err
		}
		mutate = func() error {
			return a.state.LayOff(cmd.actorID, p.TargetPlayerIdx, p.MeldIdx, p.Cards)
		}
	case wire.CmdDiscard:
		var p wire.DiscardPayload
		if err := json.Unmarshal(cmd.payload, &p); err != nil {
			return err
		}
		mutate = func() error { return a.state.Discard(cmd.actorID, p.Card) }
	case wire.CmdGoOut:
		var p wire.GoOutPayload
		if err := json.Unmarshal(cmd.payload, &p); err != nil {
			return err
		}
		mutate = func() error { return a.state.GoOut(cmd.actorID, p.Melds, p.Discard) }
	default:
		return game.NewRuleError(game.CodeUnknownType, "unknown command kind")
	}

	if err := mutate(); err != nil {
		return err
	}

	const appendAttempts = 3
	const appendBackoff = 50 * time.Millisecond
	var appendErr error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(appendBackoff << (attempt - 1))
		}
		if _, appendErr = a.hub.events.Append(ctx, a.gameID, cmd.kind, cmd.actorID, cmd.payload); appendErr == nil {
			break
		}
		a.log.WithError(appendErr).WithField("attempt", attempt+1).Warn("event append failed")
	}
	if appendErr != nil {
		a.log.WithError(appendErr).Error("event append failed after validated command")
		return game.NewRuleError(game.CodeServerRetry, "failed to persist event")
	}

	if a.state.Status != statusBefore && a.hub.gameRepo != nil {
		if err := a.hub.gameRepo.SetStatus(ctx, a.gameID, store.GameStatus(a.state.Status)); err != nil {
			a.log.WithError(err).Warn("failed to persist game status transition")
		}
	}

	a.hub.broadcastState(a.gameID, a.state)
	return nil
}

func (a *gameActor) stop() {
	close(a.done)
}
