// Package hub is the realtime connection multiplexer: it authenticates
// sockets, routes per-player commands into the per-game rules engine,
// fans out projected state to subscribers, and delivers out-of-band
// notifications regardless of which game a user is viewing.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fivecrowns/server/internal/wire"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536

	// unauthenticatedGrace bounds how long a socket may sit open before
	// sending cmd.hello.
	unauthenticatedGrace = 5 * time.Second
)

// Connection is one logical reader/writer pair over a single websocket.
// A user may hold several of these concurrently (multiple devices); each
// receives the same fan-out.
//
// userID/authed/subscribed are read from readPump's own goroutine and
// from every gameActor's goroutine that broadcasts a projection (plus
// the REST-handler goroutine behind NotifyGameDeleted), so they're
// guarded by mu rather than left to the hub's map-level lock: h.mu
// protects the hub's own maps, not a connection's fields, and an
// RLock on h.mu gives no exclusion against an unlocked writer.
type Connection struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	log  *logrus.Entry

	mu         sync.Mutex
	userID     uuid.UUID
	authed     bool
	subscribed map[uuid.UUID]bool
}

func newConnection(h *Hub, conn *websocket.Conn) *Connection {
	return &Connection{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, 64),
		log:        h.log.WithField("component", "connection"),
		subscribed: make(map[uuid.UUID]bool),
	}
}

// authenticate records the validated session's userID, marking the
// connection authed.
func (c *Connection) authenticate(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.authed = true
}

// identity returns the connection's userID and whether cmd.hello has
// completed.
func (c *Connection) identity() (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.authed
}

// subscribe adds gameID to the set this connection receives evt.state
// pushes for.
func (c *Connection) subscribe(gameID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed[gameID] = true
}

// unsubscribe removes gameID from the connection's fan-out set.
func (c *Connection) unsubscribe(gameID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribed, gameID)
}

// isSubscribed reports whether the connection currently receives
// pushes for gameID.
func (c *Connection) isSubscribed(gameID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribed[gameID]
}

// Serve runs the connection's read and write pumps until the socket
// closes, then unregisters it from the hub. Call in its own goroutine.
func (c *Connection) Serve() {
	go c.writePump()
	c.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(unauthenticatedGrace))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("socket read error")
			}
			return
		}

		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.sendError("", wire.ErrorPayload{Code: "unknown_type", Message: "malformed envelope"})
			continue
		}

		if _, authed := c.identity(); !authed && env.Type != wire.CmdHello {
			c.sendError("", wire.ErrorPayload{Code: "unauthenticated"})
			continue
		}

		c.hub.dispatch(c, env)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// push enqueues an already-encoded envelope, dropping it if the socket's
// buffer is full rather than blocking the hub's dispatch loop.
func (c *Connection) push(msg []byte) {
	select {
	case c.send <- msg:
	default:
		c.log.Warn("send buffer full, dropping message")
	}
}

func (c *Connection) pushEnvelope(typ string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		c.log.WithError(err).Error("failed to marshal outbound payload")
		return
	}
	env := wire.Envelope{Type: typ, Payload: body}
	data, err := json.Marshal(env)
	if err != nil {
		c.log.WithError(err).Error("failed to marshal outbound envelope")
		return
	}
	c.push(data)
}

func (c *Connection) sendError(code string, payload wire.ErrorPayload) {
	if payload.Code == "" {
		payload.Code = code
	}
	c.pushEnvelope(wire.EvtError, payload)
}
