package realtime

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Websocket timing and size limits.
const (
	// writeWait is the deadline for a single outbound frame.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before being dropped.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxInboundBytes caps one client frame.
	maxInboundBytes = 4 << 10
	// sendBuffer is the per-session outbound queue; overflow evicts the session.
	sendBuffer = 256
)

// Client is one websocket session owned by an authenticated user.
type Client struct {
	// UserID is the authenticated owner; a user may hold many sessions.
	UserID string
	// Send is the outbound queue drained by WritePump.
	Send chan []byte

	hub  *Hub
	conn *websocket.Conn

	// rooms tracks joined rooms for cleanup on drop. Guarded by the hub lock.
	rooms map[string]struct{}
}

// NewClient wraps an upgraded connection. conn may be nil in tests that only
// exercise the hub registry.
func NewClient(userID string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
		hub:    hub,
		conn:   conn,
		rooms:  make(map[string]struct{}),
	}
}

// ReadPump consumes inbound frames and hands them to handler. It owns the
// connection's read side and unregisters the session when the peer goes away.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("user_id", c.UserID).Msg("ws read error")
			}
			return
		}
		handler(c, message)
	}
}

// WritePump drains the send queue to the connection and keeps the peer alive
// with pings. It exits when the hub closes Send or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply queues a frame to this session only. Delivery goes through the hub
// so a concurrent eviction cannot close the channel mid-send; frames to a
// dropped session or a full buffer are discarded.
func (c *Client) reply(payload []byte) {
	c.hub.Reply(c, payload)
}
