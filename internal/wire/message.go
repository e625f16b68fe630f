// Package wire defines the tagged JSON message envelopes exchanged over
// the game socket: cmd.* requests from clients, evt.* pushes from the
// server.
package wire

import (
	"encoding/json"

	"github.com/fivecrowns/server/internal/cards"
)

// Command names clients send.
const (
	CmdHello       = "cmd.hello"
	CmdJoinGame    = "cmd.joinGame"
	CmdStartGame   = "cmd.startGame"
	CmdDraw        = "cmd.draw"
	CmdLayMelds    = "cmd.layMelds"
	CmdLayOff      = "cmd.layOff"
	CmdDiscard     = "cmd.discard"
	CmdGoOut       = "cmd.goOut"
	CmdLeaveGame   = "cmd.leaveGame"
)

// Event names the server pushes.
const (
	EvtHello        = "evt.hello"
	EvtState        = "evt.state"
	EvtError        = "evt.error"
	EvtNotification = "evt.notification"
	EvtGameDeleted  = "evt.gameDeleted"
)

// Envelope is the shape every inbound socket message shares: a type tag
// and a client-assigned sequence number echoed back for correlation.
type Envelope struct {
	Type      string          `json:"type"`
	GameID    string          `json:"gameId,omitempty"`
	ClientSeq int64           `json:"clientSeq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// HelloPayload authenticates the socket.
type HelloPayload struct {
	Token string `json:"token"`
}

// JoinGamePayload subscribes the socket to a game's fan-out set.
type JoinGamePayload struct {
	GameID string `json:"gameId"`
}

// DrawSource distinguishes the two legal draw sources.
type DrawSource string

const (
	DrawFromStock   DrawSource = "stock"
	DrawFromDiscard DrawSource = "discard"
)

// DrawPayload requests a draw from stock or discard.
type DrawPayload struct {
	Source DrawSource `json:"source"`
}

// LayMeldsPayload lays down one or more melds from the hand.
type LayMeldsPayload struct {
	Melds [][]cards.Card `json:"melds"`
}

// LayOffPayload extends an existing meld belonging to any player.
type LayOffPayload struct {
	TargetPlayerIdx int          `json:"targetPlayerIdx"`
	MeldIdx         int          `json:"meldIdx"`
	Cards           []cards.Card `json:"cards"`
}

// DiscardPayload discards a single card, ending the turn.
type DiscardPayload struct {
	Card cards.Card `json:"card"`
}

// GoOutPayload atomically melds and discards to end the round.
type GoOutPayload struct {
	Melds   [][]cards.Card `json:"melds"`
	Discard cards.Card     `json:"discard"`
}

// ErrorPayload is returned only to the issuing socket, never broadcast.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message,omitempty"`
	InReplyToSeq int64  `json:"inReplyToSeq,omitempty"`
}

// NotificationKind enumerates out-of-band notification types delivered
// regardless of which game a user is viewing.
type NotificationKind string

const (
	NotifyGameInvitation NotificationKind = "gameInvitation"
	NotifyGameDeleted    NotificationKind = "gameDeleted"
	NotifyFriendRequest  NotificationKind = "friendRequest"
	NotifyFriendAccepted NotificationKind = "friendAccepted"
	NotifyFriendBlocked  NotificationKind = "friendBlocked"
	NotifyGameNudge      NotificationKind = "gameNudge"
)

// NotificationPayload is the body of an evt.notification push.
type NotificationPayload struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"kind"`
	FromUserID string           `json:"fromUserId,omitempty"`
	GameID     string           `json:"gameId,omitempty"`
	CreatedAt  string           `json:"createdAt"`
}
