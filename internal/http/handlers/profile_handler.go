// Profile HTTP handlers.
//
// This file exposes REST endpoints for athlete and recruiter profiles:
//   - GET   /athletes             (paginated directory)
//   - GET   /athletes/search      (free-text discovery)
//   - GET   /athletes/{id}        (single profile + owner name)
//   - PATCH /athletes/{id}        (owner-only update)
//   - GET   /recruiters/{id}
//   - PATCH /recruiters/{id}
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talentscout/talentscout-server/internal/services"
	"github.com/talentscout/talentscout-server/internal/utils"
)

//
// DTOs
//

// UpdateAthleteRequest is the JSON payload for editing an athlete profile.
type UpdateAthleteRequest struct {
	Sport    string `json:"sport"    binding:"required,min=1,max=64" example:"Soccer"`
	Position string `json:"position,omitempty" example:"Forward"`
	Bio      string `json:"bio,omitempty"`
}

// UpdateRecruiterRequest is the JSON payload for editing a recruiter profile.
type UpdateRecruiterRequest struct {
	Company string `json:"company" binding:"required,min=1,max=255" example:"Acme Sports"`
	Bio     string `json:"bio,omitempty"`
}

// ListAthletesResponse wraps a page of athlete profiles.
type ListAthletesResponse struct {
	Athletes   []services.AthleteView `json:"athletes"`
	Pagination Pagination             `json:"pagination"`
}

// SearchAthletesResponse wraps ranked discovery results.
type SearchAthletesResponse struct {
	Athletes []services.AthleteView `json:"athletes"`
}

//
// Handlers
//

// ListAthletes godoc
// @ID          listAthletes
// @Summary     List athletes
// @Description Returns a paginated directory of athlete profiles with owner names.
// @Tags        Profiles
// @Produce     json
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListAthletesResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /athletes [get]
func (h *Handlers) ListAthletes(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.profileSvc.ListAthletesPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListAthletesResponse{
		Athletes:   items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// SearchAthletes godoc
// @ID          searchAthletes
// @Summary     Search athletes
// @Description Ranks athletes against a free-text query (name, sport, position, bio).
// @Tags        Profiles
// @Produce     json
// @Param       q      query  string  true   "Query text"
// @Param       limit  query  int     false  "Max results"  default(10)
// @Success     200  {object}  handlers.SearchAthletesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing query"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /athletes/search [get]
func (h *Handlers) SearchAthletes(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter q is required")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 10)

	items, err := h.profileSvc.SearchAthletes(c.Request.Context(), q, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, SearchAthletesResponse{Athletes: items})
}

// GetAthlete godoc
// @ID          getAthlete
// @Summary     Get one athlete
// @Tags        Profiles
// @Produce     json
// @Param       id  path  string  true  "Athlete ID (UUID)"  format(uuid)
// @Success     200  {object}  services.AthleteView
// @Failure     404  {object}  handlers.ErrorResponse  "Athlete not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /athletes/{id} [get]
func (h *Handlers) GetAthlete(c *gin.Context) {
	v, err := h.profileSvc.GetAthlete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrAthleteNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "athlete not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, v)
}

// UpdateAthlete godoc
// @ID          updateAthlete
// @Summary     Update my athlete profile
// @Description Updates the athlete profile; only the owning user may edit it.
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       id    path  string                          true  "Athlete ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateAthleteRequest  true  "Profile fields"
// @Success     200  {object}  services.AthleteView
// @Failure     400  {object}  handlers.ErrorResponse  "Sport required"
// @Failure     404  {object}  handlers.ErrorResponse  "Athlete not found or not owned by caller"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /athletes/{id} [patch]
func (h *Handlers) UpdateAthlete(c *gin.Context) {
	var req UpdateAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sport is required")
		return
	}
	v, err := h.profileSvc.UpdateAthlete(c.Request.Context(), userID(c), c.Param("id"), req.Sport, req.Position, req.Bio)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSportRequired):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sport is required")
		case errors.Is(err, services.ErrAthleteNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "athlete not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, v)
}

// GetRecruiter godoc
// @ID          getRecruiter
// @Summary     Get one recruiter
// @Tags        Profiles
// @Produce     json
// @Param       id  path  string  true  "Recruiter ID (UUID)"  format(uuid)
// @Success     200  {object}  services.RecruiterView
// @Failure     404  {object}  handlers.ErrorResponse  "Recruiter not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /recruiters/{id} [get]
func (h *Handlers) GetRecruiter(c *gin.Context) {
	v, err := h.profileSvc.GetRecruiter(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrRecruiterNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "recruiter not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, v)
}

// UpdateRecruiter godoc
// @ID          updateRecruiter
// @Summary     Update my recruiter profile
// @Description Updates the recruiter profile; only the owning user may edit it.
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       id    path  string                            true  "Recruiter ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateRecruiterRequest  true  "Profile fields"
// @Success     200  {object}  services.RecruiterView
// @Failure     400  {object}  handlers.ErrorResponse  "Company required"
// @Failure     404  {object}  handlers.ErrorResponse  "Recruiter not found or not owned by caller"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /recruiters/{id} [patch]
func (h *Handlers) UpdateRecruiter(c *gin.Context) {
	var req UpdateRecruiterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "company is required")
		return
	}
	v, err := h.profileSvc.UpdateRecruiter(c.Request.Context(), userID(c), c.Param("id"), req.Company, req.Bio)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCompanyRequired):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "company is required")
		case errors.Is(err, services.ErrRecruiterNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "recruiter not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, v)
}
