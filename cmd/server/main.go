// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/dramalog/internal/api"
	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/authz"
	"github.com/tomtom215/dramalog/internal/cache"
	"github.com/tomtom215/dramalog/internal/catalog"
	"github.com/tomtom215/dramalog/internal/config"
	"github.com/tomtom215/dramalog/internal/forum"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/profiles"
	"github.com/tomtom215/dramalog/internal/reviews"
	"github.com/tomtom215/dramalog/internal/supervisor"
	"github.com/tomtom215/dramalog/internal/supervisor/services"
	"github.com/tomtom215/dramalog/internal/watchlist"
	ws "github.com/tomtom215/dramalog/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("data_dir", cfg.Store.Path).
		Bool("in_memory", cfg.Store.InMemory).
		Msg("Starting Dramalog with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Server stopped")
}

func run(cfg *config.Config) error {
	db, err := gateway.OpenBadger(&cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()

	blobs, err := gateway.NewFSBlobStore(cfg.Blob.Root, cfg.Blob.PublicURL)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}
	breaker := gateway.NewBreaker("document-store", gateway.NewBadgerStore(db, blobs))

	hub := ws.NewHub()
	resolver := profiles.NewResolver(breaker).WithCache(cache.NewLRU[string, models.Profile](5000, 5*time.Minute))
	profileService := profiles.NewService(breaker, cfg.Blob.MaxUploadBytes)
	profileService.OnChange(resolver.Invalidate)

	tokens, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("jwt manager: %w", err)
	}
	provider := auth.NewProvider(breaker, profileService, tokens, auth.NewBadgerSessionStore(db), cfg.Security)
	limiter := auth.NewLoginLimiter(cfg.Security.LoginRatePerMinute)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return fmt.Errorf("authorization policy: %w", err)
	}

	if cfg.Security.AdminEmail == "" {
		logging.Warn().Msg("ADMIN_EMAIL is not set; no account can edit the catalog")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(api.Deps{
		Config:    cfg,
		Catalog:   catalog.NewService(breaker),
		Reviews:   reviews.NewEngine(breaker, resolver, hub, reviews.WithMaxTextLength(cfg.Reviews.MaxTextLength)),
		Watchlist: watchlist.NewManager(breaker),
		Forum:     forum.NewEngine(breaker, resolver, hub),
		Profiles:  profileService,
		Auth:      provider,
		Enforcer:  enforcer,
		Hub:       hub,
		Limiter:   limiter,
		Breaker:   breaker,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler).Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if !cfg.Store.InMemory {
		tree.AddDataService(services.NewStoreGCService(db, cfg.Store.GCInterval, cfg.Store.GCDiscardRatio))
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddAPIService(services.NewLimiterCleanupService(limiter, 5*time.Minute))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)
	logging.Info().Msg("Supervisor tree started")

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
		serveErr = <-errCh
	case serveErr = <-errCh:
		logging.Error().Err(serveErr).Msg("Supervisor tree stopped unexpectedly")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("Could not build unstopped service report")
	}
	for _, svc := range report {
		logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
	}

	if serveErr != nil && ctx.Err() == nil {
		return serveErr
	}
	return nil
}
