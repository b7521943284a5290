// Package handlers provides HTTP handler implementations for the public API.
//
// This file wires the handler set to its service contracts. Handlers are
// transport-thin: they validate input, call application services, and
// translate results into HTTP responses. Business rules (authorization,
// state transitions, ordering) live in the services package.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/talentscout/talentscout-server/internal/billing"
	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/services"
	"github.com/talentscout/talentscout-server/internal/utils"
)

//
// Service contracts (context-aware)
//

// AuthService defines account operations consumed by HTTP handlers.
type AuthService interface {
	// Signup registers an account with its role profile; returns user + token.
	Signup(ctx context.Context, in services.SignupInput) (*domain.User, string, error)
	// Login verifies credentials; returns user + token.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// Get returns the account with the given ID.
	Get(ctx context.Context, id string) (*domain.User, error)
}

// ProfileService defines profile reads, updates, and discovery search.
type ProfileService interface {
	GetAthlete(ctx context.Context, id string) (*services.AthleteView, error)
	GetRecruiter(ctx context.Context, id string) (*services.RecruiterView, error)
	ListAthletesPage(ctx context.Context, page, pageSize int) ([]services.AthleteView, int64, error)
	UpdateAthlete(ctx context.Context, callerUserID, athleteID, sport, position, bio string) (*services.AthleteView, error)
	UpdateRecruiter(ctx context.Context, callerUserID, recruiterID, company, bio string) (*services.RecruiterView, error)
	SearchAthletes(ctx context.Context, query string, k int) ([]services.AthleteView, error)
}

// MatchService defines match lifecycle operations.
type MatchService interface {
	// Create opens a pending match; caller must own the recruiter profile.
	Create(ctx context.Context, callerUserID, athleteID, recruiterID string) (*domain.Match, error)
	// SetStatus resolves a pending match to accepted or declined.
	SetStatus(ctx context.Context, callerUserID, matchID, status string) (*domain.Match, error)
	// Get returns a match by ID.
	Get(ctx context.Context, matchID string) (*domain.Match, error)
	// ListForUser returns the caller's matches through their profile.
	ListForUser(ctx context.Context, userID string) ([]domain.Match, error)
	// IsParticipant reports whether the user owns a side of the match.
	IsParticipant(ctx context.Context, userID string, m *domain.Match) (bool, error)
}

// ChatService defines room message operations.
type ChatService interface {
	// Append persists one message; sender must be a participant.
	Append(ctx context.Context, senderUserID, matchID, text string) (*domain.Message, error)
	// HistoryPage returns a page of the room history in send order.
	HistoryPage(ctx context.Context, callerUserID, matchID string, page, pageSize int) ([]domain.Message, int64, error)
	// Stats returns message count and max sequence for conditional requests.
	Stats(ctx context.Context, matchID string) (int64, uint64, error)
}

// BillingService defines the subscription checkout flow.
type BillingService interface {
	StartCheckout(ctx context.Context, userID string) (*billing.CheckoutSession, error)
	Confirm(ctx context.Context, userID string) error
}

// Notifier fans realtime chat events out after persistence; nil disables it.
type Notifier interface {
	PublishChatMessage(msg domain.Message)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for accounts, profiles, matches, chat,
// and billing. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	authSvc    AuthService
	profileSvc ProfileService
	matchSvc   MatchService
	chatSvc    ChatService
	billingSvc BillingService
	notifier   Notifier
}

// New constructs a Handlers instance bound to the given services.
func New(authSvc AuthService, profileSvc ProfileService, matchSvc MatchService, chatSvc ChatService, billingSvc BillingService, notifier Notifier) *Handlers {
	return &Handlers{
		authSvc:    authSvc,
		profileSvc: profileSvc,
		matchSvc:   matchSvc,
		chatSvc:    chatSvc,
		billingSvc: billingSvc,
		notifier:   notifier,
	}
}

// userID extracts the authenticated user id from Gin context (set by the auth
// middleware). If absent, it falls back to the "X-User-ID" header (tests use
// it). An empty return means the request is unauthenticated.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		return c.GetHeader("X-User-ID")
	}
	return ""
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses page/page_size from query parameters, applies sane
// defaults and caps, and returns the validated (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

func paginationMeta(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
