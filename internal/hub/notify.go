package hub

import (
	"context"

	"github.com/google/uuid"

	"github.com/fivecrowns/server/internal/store"
	"github.com/fivecrowns/server/internal/wire"
)

// Notify delivers an out-of-band notification to userID. It always
// persists a row so a later-connecting client can fetch history, and
// additionally pushes it immediately to every live socket the user holds
// right now. Notifications never touch a game's command queue.
func (h *Hub) Notify(ctx context.Context, userID uuid.UUID, kind wire.NotificationKind, fromUserID, gameID *uuid.UUID) error {
	n, err := h.notifyRepo.Create(ctx, userID, string(kind), fromUserID, gameID)
	if err != nil {
		return err
	}

	h.mu.RLock()
	sockets := h.userConns[userID]
	h.mu.RUnlock()
	if len(sockets) == 0 {
		return nil
	}

	payload := wire.NotificationPayload{
		ID:        n.ID.String(),
		Kind:      kind,
		CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if fromUserID != nil {
		payload.FromUserID = fromUserID.String()
	}
	if gameID != nil {
		payload.GameID = gameID.String()
	}

	for c := range sockets {
		c.pushEnvelope(wire.EvtNotification, payload)
	}
	return nil
}

// NotifyGameDeleted pushes an evt.gameDeleted to every member currently
// subscribed to gameID, then unsubscribes them. Called by the REST
// facade's delete-game handler after a Lobby game is removed.
func (h *Hub) NotifyGameDeleted(gameID uuid.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		if !c.isSubscribed(gameID) {
			continue
		}
		c.pushEnvelope(wire.EvtGameDeleted, map[string]string{"gameId": gameID.String()})
		c.unsubscribe(gameID)
	}
}

// Nudge delivers a gameNudge notification from senderID to targetID for
// both nudge variants: lobby-nudge (guest -> host) and turn-nudge (any
// member -> current turn holder). It does not check the game's status or
// the sender's role itself; the REST nudge handlers do. It never mutates
// GameState.
func (h *Hub) Nudge(ctx context.Context, game store.GameRow, senderID uuid.UUID, targetID uuid.UUID) error {
	return h.Notify(ctx, targetID, wire.NotifyGameNudge, &senderID, &game.ID)
}
