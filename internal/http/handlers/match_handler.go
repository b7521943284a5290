// Match HTTP handlers.
//
// This file exposes REST endpoints for the match lifecycle:
//   - POST  /matches              (recruiter opens a pending match)
//   - GET   /matches              (caller's matches, newest first)
//   - GET   /matches/{id}         (single match, participants only)
//   - PATCH /matches/{id}/status  (resolve pending → accepted|declined)
//
// Resolution is atomic: exactly one of two concurrent transitions succeeds
// and the loser receives 409 with the match left untouched.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/services"
)

//
// DTOs
//

// CreateMatchRequest is the JSON payload for opening a match.
type CreateMatchRequest struct {
	AthleteID   string `json:"athlete_id"   binding:"required" format:"uuid"`
	RecruiterID string `json:"recruiter_id" binding:"required" format:"uuid"`
}

// UpdateMatchStatusRequest is the JSON payload for resolving a match.
type UpdateMatchStatusRequest struct {
	Status string `json:"status" binding:"required" example:"accepted"`
}

// ListMatchesResponse wraps the caller's matches.
type ListMatchesResponse struct {
	Matches []domain.Match `json:"matches"`
}

//
// Handlers
//

// CreateMatch godoc
// @ID          createMatch
// @Summary     Open a match
// @Description Creates a pending match between an athlete and the caller's recruiter profile.
// @Tags        Matches
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateMatchRequest  true  "Match pair"
// @Success     201  {object}  domain.Match
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Caller does not own the recruiter profile"
// @Failure     404  {object}  handlers.ErrorResponse  "Athlete or recruiter not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Match already exists for this pair"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /matches [post]
func (h *Handlers) CreateMatch(c *gin.Context) {
	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "athlete_id and recruiter_id are required")
		return
	}
	if _, err := uuid.Parse(req.AthleteID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "athlete_id must be a UUID")
		return
	}
	if _, err := uuid.Parse(req.RecruiterID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recruiter_id must be a UUID")
		return
	}

	m, err := h.matchSvc.Create(c.Request.Context(), userID(c), req.AthleteID, req.RecruiterID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAthleteNotFound),
			errors.Is(err, services.ErrRecruiterNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrNotParticipant):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "caller does not own the recruiter profile")
		case errors.Is(err, services.ErrDuplicateMatch):
			fail(c, http.StatusConflict, ErrCodeConflict, "match already exists for this pair")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, m)
}

// ListMatches godoc
// @ID          listMatches
// @Summary     List my matches
// @Description Returns every match the caller participates in, newest first.
// @Tags        Matches
// @Produce     json
// @Success     200  {object}  handlers.ListMatchesResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /matches [get]
func (h *Handlers) ListMatches(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	items, err := h.matchSvc.ListForUser(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListMatchesResponse{Matches: items})
}

// GetMatch godoc
// @ID          getMatch
// @Summary     Get one match
// @Description Returns a single match; only its participants may read it.
// @Tags        Matches
// @Produce     json
// @Param       id  path  string  true  "Match ID (UUID)"  format(uuid)
// @Success     200  {object}  domain.Match
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Match not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /matches/{id} [get]
func (h *Handlers) GetMatch(c *gin.Context) {
	ctx := c.Request.Context()
	m, err := h.matchSvc.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "match not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	isPart, err := h.matchSvc.IsParticipant(ctx, userID(c), m)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if !isPart {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not a participant of this match")
		return
	}
	ok(c, http.StatusOK, m)
}

// UpdateMatchStatus godoc
// @ID          updateMatchStatus
// @Summary     Resolve a match
// @Description Moves a pending match to accepted or declined. Terminal states are final:
// @Description a second transition returns 409 and leaves the match unchanged.
// @Tags        Matches
// @Accept      json
// @Produce     json
// @Param       id    path  string                                true  "Match ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateMatchStatusRequest  true  "Target status"
// @Success     200  {object}  domain.Match
// @Failure     400  {object}  handlers.ErrorResponse  "Status must be accepted or declined"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Match not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Match already resolved"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /matches/{id}/status [patch]
func (h *Handlers) UpdateMatchStatus(c *gin.Context) {
	var req UpdateMatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}

	m, err := h.matchSvc.SetStatus(c.Request.Context(), userID(c), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be accepted or declined")
		case errors.Is(err, services.ErrMatchNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "match not found")
		case errors.Is(err, services.ErrNotParticipant):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not a participant of this match")
		case errors.Is(err, services.ErrMatchResolved):
			fail(c, http.StatusConflict, ErrCodeMatchResolved, "match already resolved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, m)
}
