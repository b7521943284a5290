// Account HTTP handlers.
//
// This file exposes REST endpoints for registration and login:
//   - POST /auth/signup   (create account + role profile, returns token)
//   - POST /auth/login    (verify credentials, returns token)
//   - GET  /me            (current account)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/services"
)

//
// DTOs
//

// SignupRequest is the JSON payload for creating an account. Sport and
// Position apply to the athlete role; Company applies to the recruiter role.
type SignupRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=255" example:"Liam Carter"`
	Email    string `json:"email"    binding:"required"               example:"liam@example.com"`
	Password string `json:"password" binding:"required"               example:"s3cret-pass"`
	Role     string `json:"role"     binding:"required"               example:"athlete"`
	Sport    string `json:"sport,omitempty"    example:"Soccer"`
	Position string `json:"position,omitempty" example:"Forward"`
	Company  string `json:"company,omitempty"  example:"Acme Sports"`
	Bio      string `json:"bio,omitempty"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required" example:"liam@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// AuthResponse carries the account and its access token.
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

//
// Handlers
//

// Signup godoc
// @ID          signup
// @Summary     Register an account
// @Description Creates a user with an athlete or recruiter profile and returns an access token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SignupRequest  true  "Registration payload"
// @Success     201  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, email, password, and role are required")
		return
	}

	user, token, err := h.authSvc.Signup(c.Request.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Sport:    req.Sport,
		Position: req.Position,
		Company:  req.Company,
		Bio:      req.Bio,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		case errors.Is(err, services.ErrInvalidRole),
			errors.Is(err, services.ErrWeakPassword),
			errors.Is(err, services.ErrSportRequired),
			errors.Is(err, services.ErrCompanyRequired),
			errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies an email/password pair and returns an access token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
// @Success     200  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed payload"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	user, token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Description Returns the authenticated user's account.
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Account gone"
// @Router      /me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	user, err := h.authSvc.Get(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, user)
}
