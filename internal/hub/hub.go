package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fivecrowns/server/internal/auth"
	"github.com/fivecrowns/server/internal/eventstore"
	"github.com/fivecrowns/server/internal/game"
	"github.com/fivecrowns/server/internal/store"
	"github.com/fivecrowns/server/internal/wire"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub is the connection multiplexer: it owns every live socket, the
// in-memory GameState actor for each active game, and the notification
// fan-out to offline-tolerant userIds.
type Hub struct {
	mu        sync.RWMutex
	conns     map[*Connection]bool
	userConns map[uuid.UUID]map[*Connection]bool
	games     map[uuid.UUID]*gameActor

	sessions   *auth.SessionMinter
	events     eventstore.Store
	gameRepo   *store.GameRepository
	notifyRepo *store.NotificationRepository

	// redisClient, when non-nil, receives a short summary (gameId,
	// roundNumber, turnIndex) of every committed command on channel
	// game:<gameId>. Nothing in this server subscribes to that channel.
	redisClient *redis.Client

	log *logrus.Logger
}

// New builds a Hub wired to its collaborators. redisClient may be nil,
// in which case fan-out is local-process only.
func New(sessions *auth.SessionMinter, events eventstore.Store, gameRepo *store.GameRepository, notifyRepo *store.NotificationRepository, redisClient *redis.Client, log *logrus.Logger) *Hub {
	return &Hub{
		conns:       make(map[*Connection]bool),
		userConns:   make(map[uuid.UUID]map[*Connection]bool),
		games:       make(map[uuid.UUID]*gameActor),
		sessions:    sessions,
		events:      events,
		gameRepo:    gameRepo,
		notifyRepo:  notifyRepo,
		redisClient: redisClient,
		log:         log,
	}
}

// ServeWS upgrades an HTTP request to a websocket and hands it off to a
// new Connection. Mount at the socket route of the REST router.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := newConnection(h, conn)
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()

	go c.Serve()
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, c)
	if userID, authed := c.identity(); authed {
		delete(h.userConns[userID], c)
		if len(h.userConns[userID]) == 0 {
			delete(h.userConns, userID)
		}
	}
}

// dispatch routes one decoded envelope from an authenticated (or
// hello-in-flight) connection.
func (h *Hub) dispatch(c *Connection, env wire.Envelope) {
	switch env.Type {
	case wire.CmdHello:
		h.handleHello(c, env)
	case wire.CmdJoinGame:
		h.handleJoinGame(c, env)
	case wire.CmdLeaveGame:
		h.handleLeaveGame(c, env)
	default:
		h.handleGameCommand(c, env)
	}
}

func (h *Hub) handleHello(c *Connection, env wire.Envelope) {
	var p wire.HelloPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		c.sendError("", wire.ErrorPayload{Code: "unauthenticated", InReplyToSeq: env.ClientSeq})
		return
	}

	userID, err := h.sessions.Validate(p.Token)
	if err != nil {
		c.sendError("", wire.ErrorPayload{Code: "unauthenticated", InReplyToSeq: env.ClientSeq})
		c.conn.Close()
		return
	}

	c.authenticate(userID)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	h.mu.Lock()
	if h.userConns[userID] == nil {
		h.userConns[userID] = make(map[*Connection]bool)
	}
	h.userConns[userID][c] = true
	h.mu.Unlock()

	c.pushEnvelope(wire.EvtHello, map[string]any{"userId": userID, "inReplyToSeq": env.ClientSeq})
}

func (h *Hub) handleJoinGame(c *Connection, env wire.Envelope) {
	var p wire.JoinGamePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		c.sendError("", wire.ErrorPayload{Code: "not_found", InReplyToSeq: env.ClientSeq})
		return
	}
	gameID, err := uuid.Parse(p.GameID)
	if err != nil {
		c.sendError("", wire.ErrorPayload{Code: "not_found", InReplyToSeq: env.ClientSeq})
		return
	}

	userID, _ := c.identity()
	ctx := context.Background()
	isMember, err := h.gameRepo.IsMember(ctx, gameID, userID)
	if err != nil || !isMember {
		c.sendError("", wire.ErrorPayload{Code: "not_in_game", InReplyToSeq: env.ClientSeq})
		return
	}

	actor, err := h.loadOrStartActor(ctx, gameID)
	if err != nil {
		c.sendError("", wire.ErrorPayload{Code: "game_not_active", Message: err.Error(), InReplyToSeq: env.ClientSeq})
		return
	}

	c.subscribe(gameID)

	proj, err := actor.project(userID)
	if err != nil {
		c.sendError("", wire.ErrorPayload{Code: "not_in_game", InReplyToSeq: env.ClientSeq})
		return
	}
	c.pushEnvelope(wire.EvtState, proj)
}

func (h *Hub) handleLeaveGame(c *Connection, env wire.Envelope) {
	var p wire.JoinGamePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return
	}
	gameID, err := uuid.Parse(p.GameID)
	if err != nil {
		return
	}
	c.unsubscribe(gameID)
}

// gameCommandTypes is the set of cmd.* tags handleGameCommand knows how
// to route to a gameActor. Anything else reaching dispatch's default
// case is a genuinely unrecognized type, not a missing gameId.
var gameCommandTypes = map[string]bool{
	wire.CmdStartGame: true,
	wire.CmdDraw:      true,
	wire.CmdLayMelds:  true,
	wire.CmdLayOff:    true,
	wire.CmdDiscard:   true,
	wire.CmdGoOut:     true,
}

// handleGameCommand routes a cmd.draw/layMelds/layOff/discard/goOut/
// startGame request to the owning game's single-writer actor. Errors are
// returned only to the issuing socket.
func (h *Hub) handleGameCommand(c *Connection, env wire.Envelope) {
	if !gameCommandTypes[env.Type] {
		c.sendError("", wire.ErrorPayload{Code: "unknown_type", InReplyToSeq: env.ClientSeq})
		return
	}

	gameID, err := uuid.Parse(env.GameID)
	if err != nil {
		c.sendError("", wire.ErrorPayload{Code: "not_found", InReplyToSeq: env.ClientSeq})
		return
	}
	if !c.isSubscribed(gameID) {
		c.sendError("", wire.ErrorPayload{Code: "not_in_game", InReplyToSeq: env.ClientSeq})
		return
	}

	h.mu.RLock()
	actor, ok := h.games[gameID]
	h.mu.RUnlock()
	if !ok {
		c.sendError("", wire.ErrorPayload{Code: "game_not_active", InReplyToSeq: env.ClientSeq})
		return
	}

	userID, _ := c.identity()
	err = actor.submit(command{
		actorID:   userID,
		clientSeq: env.ClientSeq,
		kind:      env.Type,
		payload:   env.Payload,
	})
	if err != nil {
		code := "game_not_active"
		if re, ok := game.AsRuleError(err); ok {
			code = string(re.Code)
		}
		c.sendError("", wire.ErrorPayload{Code: code, Message: err.Error(), InReplyToSeq: env.ClientSeq})
	}
}

// loadOrStartActor returns the running actor for gameID, rehydrating it
// from the event log on first access.
func (h *Hub) loadOrStartActor(ctx context.Context, gameID uuid.UUID) (*gameActor, error) {
	h.mu.RLock()
	actor, ok := h.games[gameID]
	h.mu.RUnlock()
	if ok {
		return actor, nil
	}

	row, err := h.gameRepo.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	members, err := h.gameRepo.Members(ctx, gameID)
	if err != nil {
		return nil, err
	}
	userIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}

	events, err := h.events.Load(ctx, gameID, 0)
	if err != nil {
		return nil, err
	}

	var state *game.GameState
	if len(events) == 0 {
		state = game.New(gameID, userIDs, row.RNGSeed)
	} else {
		state, err = game.Rehydrate(gameID, userIDs, row.RNGSeed, events)
		if err != nil {
			return nil, err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.games[gameID]; ok {
		return existing, nil
	}
	actor = newGameActor(h, state)
	h.games[gameID] = actor
	return actor, nil
}

// CurrentTurnUserID resolves the userId of the player whose turn it
// currently is, read from the owning gameActor's authoritative state
// (rehydrating the actor if it isn't already running). requesterID must
// be a member of the game; it's only used to build requesterID's own
// projection, which every member is entitled to.
func (h *Hub) CurrentTurnUserID(ctx context.Context, gameID, requesterID uuid.UUID) (uuid.UUID, error) {
	actor, err := h.loadOrStartActor(ctx, gameID)
	if err != nil {
		return uuid.Nil, err
	}
	proj, err := actor.project(requesterID)
	if err != nil {
		return uuid.Nil, err
	}
	for _, p := range proj.Players {
		if p.Seat == proj.TurnIndex {
			return p.UserID, nil
		}
	}
	return uuid.Nil, game.NewRuleError(game.CodeNotFound, "no player seated at the current turn index")
}

// broadcastState sends the post-command projection to every subscribed
// socket, one per viewer, preserving command order: this call happens
// synchronously inside the actor's single-writer loop, so the snapshot
// after command k is always sent before the snapshot after command k+1.
func (h *Hub) broadcastState(gameID uuid.UUID, state *game.GameState) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		userID, authed := c.identity()
		if !authed || !c.isSubscribed(gameID) {
			continue
		}
		proj, err := state.Project(userID)
		if err != nil {
			continue
		}
		c.pushEnvelope(wire.EvtState, proj)
	}

	if h.redisClient != nil {
		round, turn := state.RoundNumber, state.TurnIndex
		go h.publishCrossInstance(gameID, round, turn)
	}
}

func (h *Hub) publishCrossInstance(gameID uuid.UUID, roundNumber, turnIndex int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	body, err := json.Marshal(map[string]any{"gameId": gameID, "roundNumber": roundNumber, "turnIndex": turnIndex})
	if err != nil {
		return
	}
	if err := h.redisClient.Publish(ctx, "game:"+gameID.String(), body).Err(); err != nil {
		h.log.WithError(err).Warn("redis publish failed")
	}
}

// Shutdown stops every game actor. Callers should have already drained
// in-flight HTTP/WS acceptance before calling this.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, actor := range h.games {
		actor.stop()
	}
}
