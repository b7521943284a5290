// Chat HTTP handlers.
//
// This file exposes REST endpoints for match room messages:
//   - POST /matches/{id}/messages   (append one message to the room)
//   - GET  /matches/{id}/messages   (list paginated history, ETag support)
//
// Handlers are transport-thin:
//   - validate & normalize inputs (line endings, length)
//   - delegate to the ChatService
//   - implement conditional responses (ETag) and idempotency semantics
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (user, match, key), the handler returns that recorded
// message and sets `Idempotency-Replayed: true`. This makes mobile retries of
// sends safe.
package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
	"github.com/talentscout/talentscout-server/internal/services"
)

//
// DTOs
//

// PostChatMessageRequest is the JSON payload for sending a message.
type PostChatMessageRequest struct {
	// Text is the message body. It must be non-empty after trimming.
	Text string `json:"text" binding:"required,min=1" example:"Great highlight reel. Are you free to talk this week?"`
}

// PostChatMessageResponse is the JSON envelope for an appended message.
type PostChatMessageResponse struct {
	Message *domain.Message `json:"message"`
}

// ListChatMessagesResponse contains a page of room messages and pagination
// metadata. Messages are in send order (ascending sequence).
type ListChatMessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeText normalizes user text for consistent downstream behavior:
// CRLF/CR → LF, runs of 3+ LFs collapsed to two, surrounding space trimmed.
func sanitizeText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// chatDB exposes the concrete service's DB handle for idempotency bookkeeping.
// Interface-backed fakes in tests simply skip that path.
func (h *Handlers) chatDB() *gorm.DB {
	if svc, ok := h.chatSvc.(*services.ChatService); ok {
		return svc.DB
	}
	return nil
}

// idempotencyKey reads the validated Idempotency-Key header, if any.
func idempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}

//
// Handlers
//

// PostChatMessage godoc
// @ID          postChatMessage
// @Summary     Send a message
// @Description Appends a message to the match room. Both participants of the match may write.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       id               path    string  true  "Match ID (UUID)"  format(uuid)
// @Param       body             body    handlers.PostChatMessageRequest  true  "Message payload"
// @Success     201  {object}  handlers.PostChatMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Match not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /matches/{id}/messages [post]
func (h *Handlers) PostChatMessage(c *gin.Context) {
	ctx := c.Request.Context()
	matchID := c.Param("id")

	if _, err := uuid.Parse(matchID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "match id must be a UUID")
		return
	}

	var req PostChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}
	text := sanitizeText(req.Text)
	if text == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}

	currentUser := userID(c)

	// Idempotency (replay path).
	idemKey := idempotencyKey(c)
	if idemKey != "" {
		if db := h.chatDB(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, currentUser, matchID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetMessage(db, rec.MessageID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusCreated, PostChatMessageResponse{Message: prev})
					return
				}
			}
		}
	}

	m, err := h.chatSvc.Append(ctx, currentUser, matchID, text)
	if err != nil {
		switch err {
		case services.ErrMatchNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "match not found")
		case services.ErrNotParticipant:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not a participant of this match")
		case services.ErrEmptyMessage:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		case services.ErrMessageTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text too long")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSendFailed, err.Error())
		}
		return
	}

	// Broadcast only after the append is durable.
	if h.notifier != nil {
		h.notifier.PublishChatMessage(*m)
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if db := h.chatDB(); db != nil {
			_, _ = repo.CreateIdempotency(ctx, db, currentUser, matchID, idemKey, m.ID, http.StatusCreated, 24*time.Hour)
		}
	}

	ok(c, http.StatusCreated, PostChatMessageResponse{Message: m})
}

// ListChatMessages godoc
// @ID          listChatMessages
// @Summary     List room messages
// @Description Returns a paginated page of the room history in send order.
// @Tags        Chat
// @Produce     json
// @Param       id         path   string  true  "Match ID (UUID)"  format(uuid)
// @Param       page       query  int     false "Page number"      minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"   minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListChatMessagesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Match not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /matches/{id}/messages [get]
func (h *Handlers) ListChatMessages(c *gin.Context) {
	ctx := c.Request.Context()
	matchID := c.Param("id")

	if _, err := uuid.Parse(matchID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "match id must be a UUID")
		return
	}

	// Authorize before touching the history: stats would otherwise leak
	// message counts for rooms the caller is not part of.
	m, err := h.matchSvc.Get(ctx, matchID)
	if err != nil {
		if err == services.ErrMatchNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "match not found")
		} else {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	isPart, err := h.matchSvc.IsParticipant(ctx, userID(c), m)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if !isPart {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not a participant of this match")
		return
	}

	// ETag pre-check (best effort): count + max sequence identify the history.
	if count, maxSeq, err := h.chatSvc.Stats(ctx, matchID); err == nil {
		etag := fmt.Sprintf(`W/"messages:%s:%d:%d"`, matchID, count, maxSeq)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	page, pageSize := clampPagination(c)

	items, total, err := h.chatSvc.HistoryPage(ctx, userID(c), matchID, page, pageSize)
	if err != nil {
		switch err {
		case services.ErrMatchNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "match not found")
		case services.ErrNotParticipant:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not a participant of this match")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, ListChatMessagesResponse{
		Messages:   items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}
