// Command server runs the TalentScout backend: the REST API, the websocket
// notification relay, and the SQLite-backed persistence layer.
//
// Configuration comes from the environment (optionally via a .env file); see
// internal/config for the full variable list.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/talentscout/talentscout-server/internal/auth"
	"github.com/talentscout/talentscout-server/internal/config"
	httpapi "github.com/talentscout/talentscout-server/internal/http"
	"github.com/talentscout/talentscout-server/internal/observability"
	"github.com/talentscout/talentscout-server/internal/realtime"
	"github.com/talentscout/talentscout-server/internal/repo"
	"github.com/talentscout/talentscout-server/internal/search"
	"github.com/talentscout/talentscout-server/internal/seed"
	"github.com/talentscout/talentscout-server/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin failed")
		}
	}

	if cfg.SeedDemo {
		if err := seed.Run(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("seed demo data failed")
		}
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	if err != nil {
		log.Fatal().Err(err).Msg("token manager setup failed")
	}

	hub := realtime.NewHub()
	go hub.Run(ctx)

	catalog := search.NewCatalog()
	if err := httpapi.BuildCatalog(ctx, db, catalog); err != nil {
		// Discovery degrades to empty results until the next profile update.
		log.Warn().Err(err).Msg("initial catalog build failed")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, catalog, hub, tokens, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
