package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/talentscout/talentscout-server/internal/auth"
	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/services"
	"github.com/talentscout/talentscout-server/internal/sysutil"
)

// frameTimeout bounds the database work triggered by one inbound frame.
const frameTimeout = 10 * time.Second

// TokenParser verifies an access token and returns its claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// ChatSender persists a chat message on behalf of a socket frame.
type ChatSender interface {
	Append(ctx context.Context, senderUserID, matchID, text string) (*domain.Message, error)
}

// MatchDirectory resolves matches and participant membership for room joins.
type MatchDirectory interface {
	Get(ctx context.Context, matchID string) (*domain.Match, error)
	IsParticipant(ctx context.Context, userID string, m *domain.Match) (bool, error)
}

// clientFrame is one inbound websocket frame. Action is join, leave, or
// message; RoomID is the match ID; Text carries the message body.
type clientFrame struct {
	Action string `json:"action"`
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

// WSHandler upgrades authenticated clients onto the hub and routes their
// frames.
type WSHandler struct {
	Hub     *Hub
	Tokens  TokenParser
	Chat    ChatSender
	Matches MatchDirectory

	upgrader websocket.Upgrader
}

// NewWSHandler constructs the websocket endpoint handler. Origin checking is
// left to the CORS posture of the surrounding router.
func NewWSHandler(hub *Hub, tokens TokenParser, chat ChatSender, matches MatchDirectory) *WSHandler {
	return &WSHandler{
		Hub:     hub,
		Tokens:  tokens,
		Chat:    chat,
		Matches: matches,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handle is the GET /ws endpoint. The access token comes from the
// Authorization header or, for browser websocket clients that cannot set
// headers, the token query parameter. An optional room parameter joins the
// session to a match room immediately after registration.
func (h *WSHandler) Handle(c *gin.Context) {
	token := sysutil.FirstNonEmpty(bearerToken(c.GetHeader("Authorization")), c.Query("token"))
	claims, err := h.Tokens.Parse(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "invalid or missing token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Debug().Err(err).Msg("ws upgrade failed")
		return
	}

	client := NewClient(claims.UserID, h.Hub, conn)
	h.Hub.Register(client)

	if room := c.Query("room"); room != "" {
		h.join(client, room)
	}

	go client.WritePump()
	go client.ReadPump(h.route)
}

// route dispatches one inbound frame.
func (h *WSHandler) route(c *Client, raw []byte) {
	var f clientFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		c.reply(marshalErrorEvent("bad_frame", "frame is not valid JSON"))
		return
	}

	switch f.Action {
	case "join":
		h.join(c, f.RoomID)
	case "leave":
		h.Hub.LeaveRoom(c, f.RoomID)
	case "message":
		h.message(c, f.RoomID, f.Text)
	default:
		c.reply(marshalErrorEvent("bad_frame", "unknown action"))
	}
}

// join subscribes the session to a room after checking the caller is a
// participant of the backing match.
func (h *WSHandler) join(c *Client, roomID string) {
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	m, err := h.Matches.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			c.reply(marshalErrorEvent("not_found", "match not found"))
			return
		}
		c.reply(marshalErrorEvent("internal", "could not join room"))
		return
	}
	ok, err := h.Matches.IsParticipant(ctx, c.UserID, m)
	if err != nil {
		c.reply(marshalErrorEvent("internal", "could not join room"))
		return
	}
	if !ok {
		c.reply(marshalErrorEvent("forbidden", "not a participant of this match"))
		return
	}
	h.Hub.JoinRoom(c, roomID)
}

// message persists the text and fans it out to the room. The broadcast runs
// only after the append succeeded.
func (h *WSHandler) message(c *Client, roomID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	msg, err := h.Chat.Append(ctx, c.UserID, roomID, text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			c.reply(marshalErrorEvent("validation", "message text is empty"))
		case errors.Is(err, services.ErrMessageTooLong):
			c.reply(marshalErrorEvent("validation", "message text too long"))
		case errors.Is(err, services.ErrMatchNotFound):
			c.reply(marshalErrorEvent("not_found", "match not found"))
		case errors.Is(err, services.ErrNotParticipant):
			c.reply(marshalErrorEvent("forbidden", "not a participant of this match"))
		default:
			c.reply(marshalErrorEvent("internal", "could not send message"))
		}
		return
	}
	h.Hub.PublishChatMessage(*msg)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
