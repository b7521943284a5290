// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/auth"
	"github.com/talentscout/talentscout-server/internal/billing"
	"github.com/talentscout/talentscout-server/internal/config"
	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/http/handlers"
	"github.com/talentscout/talentscout-server/internal/http/middleware"
	"github.com/talentscout/talentscout-server/internal/realtime"
	"github.com/talentscout/talentscout-server/internal/repo"
	"github.com/talentscout/talentscout-server/internal/search"
	"github.com/talentscout/talentscout-server/internal/services"
)

// repoShim adapts the repository free functions to the service repo
// interfaces. This keeps services decoupled from the concrete repo package
// while reusing existing functions. A single shim satisfies every service
// contract because the method sets overlap (GetUser, GetMatch, ...).
type repoShim struct{}

// CreateUser proxies repo.CreateUser.
func (repoShim) CreateUser(ctx context.Context, db *gorm.DB, name, email, passwordHash, role string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, name, email, passwordHash, role)
}

// GetUser proxies repo.GetUser.
func (repoShim) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

// GetUserByEmail proxies repo.GetUserByEmail.
func (repoShim) GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, db, email)
}

// MarkSubscribed proxies repo.MarkSubscribed.
func (repoShim) MarkSubscribed(ctx context.Context, db *gorm.DB, id string, subscribed bool) error {
	return repo.MarkSubscribed(ctx, db, id, subscribed)
}

// CreateAthlete proxies repo.CreateAthlete.
func (repoShim) CreateAthlete(ctx context.Context, db *gorm.DB, userID, sport, position, bio string) (*domain.Athlete, error) {
	return repo.CreateAthlete(ctx, db, userID, sport, position, bio)
}

// CreateRecruiter proxies repo.CreateRecruiter.
func (repoShim) CreateRecruiter(ctx context.Context, db *gorm.DB, userID, company, bio string) (*domain.Recruiter, error) {
	return repo.CreateRecruiter(ctx, db, userID, company, bio)
}

// GetAthlete proxies repo.GetAthlete.
func (repoShim) GetAthlete(ctx context.Context, db *gorm.DB, id string) (*domain.Athlete, error) {
	return repo.GetAthlete(ctx, db, id)
}

// GetRecruiter proxies repo.GetRecruiter.
func (repoShim) GetRecruiter(ctx context.Context, db *gorm.DB, id string) (*domain.Recruiter, error) {
	return repo.GetRecruiter(ctx, db, id)
}

// GetAthleteByUser proxies repo.GetAthleteByUser.
func (repoShim) GetAthleteByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Athlete, error) {
	return repo.GetAthleteByUser(ctx, db, userID)
}

// GetRecruiterByUser proxies repo.GetRecruiterByUser.
func (repoShim) GetRecruiterByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Recruiter, error) {
	return repo.GetRecruiterByUser(ctx, db, userID)
}

// CountAthletes proxies repo.CountAthletes (pagination support).
func (repoShim) CountAthletes(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountAthletes(ctx, db)
}

// ListAthletesPage proxies repo.ListAthletesPage (pagination support).
func (repoShim) ListAthletesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Athlete, error) {
	return repo.ListAthletesPage(ctx, db, offset, limit)
}

// ListAthletes proxies repo.ListAthletes (catalog rebuilds).
func (repoShim) ListAthletes(ctx context.Context, db *gorm.DB) ([]domain.Athlete, error) {
	return repo.ListAthletes(ctx, db)
}

// UpdateAthlete proxies repo.UpdateAthlete.
func (repoShim) UpdateAthlete(ctx context.Context, db *gorm.DB, id, userID, sport, position, bio string) error {
	return repo.UpdateAthlete(ctx, db, id, userID, sport, position, bio)
}

// UpdateRecruiter proxies repo.UpdateRecruiter.
func (repoShim) UpdateRecruiter(ctx context.Context, db *gorm.DB, id, userID, company, bio string) error {
	return repo.UpdateRecruiter(ctx, db, id, userID, company, bio)
}

// CreateMatch proxies repo.CreateMatch.
func (repoShim) CreateMatch(ctx context.Context, db *gorm.DB, athleteID, recruiterID string) (*domain.Match, error) {
	return repo.CreateMatch(ctx, db, athleteID, recruiterID)
}

// GetMatch proxies repo.GetMatch.
func (repoShim) GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error) {
	return repo.GetMatch(ctx, db, id)
}

// TransitionMatchStatus proxies repo.TransitionMatchStatus.
func (repoShim) TransitionMatchStatus(ctx context.Context, db *gorm.DB, id, newStatus string) (*domain.Match, error) {
	return repo.TransitionMatchStatus(ctx, db, id, newStatus)
}

// ListMatchesForAthlete proxies repo.ListMatchesForAthlete.
func (repoShim) ListMatchesForAthlete(ctx context.Context, db *gorm.DB, athleteID string) ([]domain.Match, error) {
	return repo.ListMatchesForAthlete(ctx, db, athleteID)
}

// ListMatchesForRecruiter proxies repo.ListMatchesForRecruiter.
func (repoShim) ListMatchesForRecruiter(ctx context.Context, db *gorm.DB, recruiterID string) ([]domain.Match, error) {
	return repo.ListMatchesForRecruiter(ctx, db, recruiterID)
}

// CreateMessage proxies repo.CreateMessage.
func (repoShim) CreateMessage(db *gorm.DB, matchID, senderID, text string) (*domain.Message, error) {
	return repo.CreateMessage(db, matchID, senderID, text)
}

// ListMessages proxies repo.ListMessages.
func (repoShim) ListMessages(db *gorm.DB, matchID string, limit int) ([]domain.Message, error) {
	return repo.ListMessages(db, matchID, limit)
}

// CountMessages proxies repo.CountMessages (pagination support).
func (repoShim) CountMessages(db *gorm.DB, matchID string) (int64, error) {
	return repo.CountMessages(db, matchID)
}

// ListMessagesPage proxies repo.ListMessagesPage (pagination support).
func (repoShim) ListMessagesPage(db *gorm.DB, matchID string, offset, limit int) ([]domain.Message, error) {
	return repo.ListMessagesPage(db, matchID, offset, limit)
}

// MessagesStats proxies repo.MessagesStats (conditional requests).
func (repoShim) MessagesStats(ctx context.Context, db *gorm.DB, matchID string) (int64, uint64, error) {
	return repo.MessagesStats(ctx, db, matchID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter, gzip (websocket and metrics excluded)
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, catalog *search.Catalog, hub *realtime.Hub, tokens *auth.Manager, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB); gzip responses except upgrades/metrics
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws", "/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, matchID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, matchID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (disabled by default outside dev)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/hub/catalog
	authSvc := services.NewAuthService(db, repoShim{}, tokens)
	profileSvc := services.NewProfileService(db, repoShim{}, catalog)
	matchSvc := services.NewMatchService(db, repoShim{}, hub)
	chatSvc := services.NewChatService(db, repoShim{})
	billingSvc := services.NewBillingService(db, repoShim{}, &billing.HostedProvider{BaseURL: cfg.BillingBaseURL})

	h := handlers.New(authSvc, profileSvc, matchSvc, chatSvc, billingSvc, hub)
	ws := realtime.NewWSHandler(hub, tokens, chatSvc, matchSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Accounts (no token required)
		api.POST("/auth/signup", h.Signup)
		api.POST("/auth/login", h.Login)

		// Realtime relay; the handler authenticates the token itself so
		// browser clients can pass it as a query parameter.
		api.GET("/ws", ws.Handle)

		authed := api.Group("", middleware.Auth(tokens))
		{
			authed.GET("/me", h.Me)

			// Profiles
			authed.GET("/athletes", h.ListAthletes)
			authed.GET("/athletes/search", h.SearchAthletes)
			authed.GET("/athletes/:id", h.GetAthlete)
			authed.PATCH("/athletes/:id", h.UpdateAthlete)
			authed.GET("/recruiters/:id", h.GetRecruiter)
			authed.PATCH("/recruiters/:id", h.UpdateRecruiter)

			// Matches
			authed.POST("/matches", h.CreateMatch)
			authed.GET("/matches", h.ListMatches)
			authed.GET("/matches/:id", h.GetMatch)
			authed.PATCH("/matches/:id/status", h.UpdateMatchStatus)

			// Messages
			authed.GET("/matches/:id/messages", h.ListChatMessages)
			authed.POST("/matches/:id/messages", h.PostChatMessage)

			// Billing
			authed.POST("/billing/checkout", h.StartCheckout)
			authed.POST("/billing/confirm", h.ConfirmSubscription)
		}
	}
}

// BuildCatalog fills the discovery catalog from the athlete profiles
// currently in the database. Call it once at startup before serving traffic;
// profile updates keep the catalog fresh afterwards.
func BuildCatalog(ctx context.Context, db *gorm.DB, catalog *search.Catalog) error {
	return services.NewProfileService(db, repoShim{}, catalog).RebuildCatalog(ctx)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
