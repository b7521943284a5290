package realtime

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/talentscout/talentscout-server/internal/domain"
)

var (
	// wsSessions gauges the number of connected websocket sessions.
	wsSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_sessions",
			Help: "Current number of connected websocket sessions.",
		},
	)

	// wsEvents counts delivered realtime events by type.
	wsEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_delivered_total",
			Help: "Total realtime events delivered to sessions.",
		},
		[]string{"type"},
	)

	// wsEvicted counts sessions dropped for not draining their buffer.
	wsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_sessions_evicted_total",
			Help: "Total websocket sessions evicted as slow consumers.",
		},
	)

	metricsOnce sync.Once
)

func registerMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(wsSessions, wsEvents, wsEvicted)
	})
}

// delivery is one marshaled event with its routing: either a room fan-out or
// a set of target users.
type delivery struct {
	eventType string
	roomID    string
	userIDs   []string
	payload   []byte
}

// Hub is the session registry and event router. One session is one websocket
// connection; a user may hold several sessions (tabs, devices) and every
// session receives that user's events. Room membership is per session and
// join is idempotent.
//
// Registry mutation takes the write lock; fan-out runs on Run's loop, holds
// the read lock, and never blocks on a session. A session whose buffer is
// full is evicted. A session's send channel is only ever closed under the
// write lock, so any send performed under either lock cannot race the close.
type Hub struct {
	broadcast chan delivery

	mu           sync.RWMutex
	sessions     map[*Client]struct{}
	userSessions map[string]map[*Client]struct{}
	roomSessions map[string]map[*Client]struct{}
}

// NewHub constructs a Hub. Call Run before publishing.
func NewHub() *Hub {
	registerMetrics()
	return &Hub{
		broadcast:    make(chan delivery, 256),
		sessions:     make(map[*Client]struct{}),
		userSessions: make(map[string]map[*Client]struct{}),
		roomSessions: make(map[string]map[*Client]struct{}),
	}
}

// Run drains the delivery queue until ctx is canceled, then closes every
// session's send channel so write pumps terminate.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.sessions {
				h.dropLocked(c)
			}
			h.mu.Unlock()
			return

		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

// Register adds a connected session to the registry. Registration is
// synchronous: when it returns, the session is visible to joins and
// deliveries.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.sessions[c] = struct{}{}
	if h.userSessions[c.UserID] == nil {
		h.userSessions[c.UserID] = make(map[*Client]struct{})
	}
	h.userSessions[c.UserID][c] = struct{}{}
	h.mu.Unlock()
	wsSessions.Set(float64(h.Len()))
	log.Debug().Str("user_id", c.UserID).Msg("ws session registered")
}

// Unregister removes a session and closes its send channel. Safe to call for
// a session that is already gone.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
	wsSessions.Set(float64(h.Len()))
	log.Debug().Str("user_id", c.UserID).Msg("ws session unregistered")
}

// JoinRoom subscribes a session to a match room. Joining twice is a no-op.
func (h *Hub) JoinRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[c]; !ok {
		return
	}
	if h.roomSessions[roomID] == nil {
		h.roomSessions[roomID] = make(map[*Client]struct{})
	}
	h.roomSessions[roomID][c] = struct{}{}
	c.rooms[roomID] = struct{}{}
}

// LeaveRoom unsubscribes a session from a match room. Unknown rooms are
// ignored.
func (h *Hub) LeaveRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, roomID)
}

// Reply queues a frame to one session. Holding the read lock keeps the send
// channel open for the duration of the send; unknown sessions and full
// buffers drop the frame.
func (h *Hub) Reply(c *Client, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sessions[c]; !ok {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}

// InRoom reports whether the session is currently joined to the room.
func (h *Hub) InRoom(c *Client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.roomSessions[roomID][c]
	return ok
}

// Len reports the number of registered sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// RoomLen reports the number of sessions joined to a room.
func (h *Hub) RoomLen(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.roomSessions[roomID])
}

// PublishMatchEvent sends a match event to every session of both
// participants. Users with no sessions are skipped silently.
func (h *Hub) PublishMatchEvent(m domain.Match, athleteUserID, recruiterUserID string) {
	h.enqueue(delivery{
		eventType: EventMatch,
		userIDs:   []string{athleteUserID, recruiterUserID},
		payload:   marshalMatchEvent(m),
	})
}

// PublishChatMessage sends a message event to every session joined to the
// message's room.
func (h *Hub) PublishChatMessage(msg domain.Message) {
	h.enqueue(delivery{
		eventType: EventMessage,
		roomID:    msg.MatchID,
		payload:   marshalMessageEvent(msg),
	})
}

// enqueue hands a delivery to the Run loop without ever blocking the
// publisher. If the hub queue itself is full the event is dropped.
func (h *Hub) enqueue(d delivery) {
	select {
	case h.broadcast <- d:
	default:
		log.Warn().Str("event", d.eventType).Msg("ws hub queue full, event dropped")
	}
}

func (h *Hub) deliver(d delivery) {
	var evicted []*Client

	h.mu.RLock()
	targets := make(map[*Client]struct{})
	if d.roomID != "" {
		for c := range h.roomSessions[d.roomID] {
			targets[c] = struct{}{}
		}
	}
	for _, uid := range d.userIDs {
		for c := range h.userSessions[uid] {
			targets[c] = struct{}{}
		}
	}
	for c := range targets {
		select {
		case c.Send <- d.payload:
			wsEvents.WithLabelValues(d.eventType).Inc()
		default:
			evicted = append(evicted, c)
		}
	}
	h.mu.RUnlock()

	if len(evicted) > 0 {
		h.mu.Lock()
		for _, c := range evicted {
			if _, ok := h.sessions[c]; ok {
				wsEvicted.Inc()
				log.Warn().Str("user_id", c.UserID).Msg("ws session evicted: send buffer full")
				h.dropLocked(c)
			}
		}
		h.mu.Unlock()
		wsSessions.Set(float64(h.Len()))
	}
}

// dropLocked removes a session from every registry map and closes its send
// channel. Caller holds the write lock.
func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.sessions[c]; !ok {
		return
	}
	for roomID := range c.rooms {
		h.leaveLocked(c, roomID)
	}
	us := h.userSessions[c.UserID]
	delete(us, c)
	if len(us) == 0 {
		delete(h.userSessions, c.UserID)
	}
	delete(h.sessions, c)
	close(c.Send)
}

func (h *Hub) leaveLocked(c *Client, roomID string) {
	rs, ok := h.roomSessions[roomID]
	if !ok {
		return
	}
	delete(rs, c)
	if len(rs) == 0 {
		delete(h.roomSessions, roomID)
	}
	delete(c.rooms, roomID)
}
