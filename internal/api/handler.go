// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"time"

	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/authz"
	"github.com/tomtom215/dramalog/internal/catalog"
	"github.com/tomtom215/dramalog/internal/config"
	"github.com/tomtom215/dramalog/internal/forum"
	"github.com/tomtom215/dramalog/internal/middleware"
	"github.com/tomtom215/dramalog/internal/profiles"
	"github.com/tomtom215/dramalog/internal/reviews"
	"github.com/tomtom215/dramalog/internal/watchlist"
	"github.com/tomtom215/dramalog/internal/websocket"
)

// maxPages bounds ?pages= so a single request cannot ask for the whole store.
const maxPages = 50

// BreakerState reports a circuit breaker's state name.
type BreakerState interface {
	State() string
}

// Deps are the services the HTTP layer calls into.
type Deps struct {
	Config    *config.Config
	Catalog   *catalog.Service
	Reviews   *reviews.Engine
	Watchlist *watchlist.Manager
	Forum     *forum.Engine
	Profiles  *profiles.Service
	Auth      *auth.Provider
	Enforcer  *authz.Enforcer
	Hub       *websocket.Hub

	// Optional
	Limiter *auth.LoginLimiter
	Perf    *middleware.PerformanceMonitor
	Breaker BreakerState
}

// Handler serves the HTTP API.
type Handler struct {
	cfg       *config.Config
	catalog   *catalog.Service
	reviews   *reviews.Engine
	watchlist *watchlist.Manager
	forum     *forum.Engine
	profiles  *profiles.Service
	auth      *auth.Provider
	authMW    *auth.Middleware
	authzMW   *authz.Middleware
	hub       *websocket.Hub
	limiter   *auth.LoginLimiter
	perf      *middleware.PerformanceMonitor
	breaker   BreakerState
	startTime time.Time
}

// NewHandler creates a Handler. A nil Limiter or Perf is replaced with a
// default one.
func NewHandler(d Deps) *Handler {
	limiter := d.Limiter
	if limiter == nil {
		limiter = auth.NewLoginLimiter(d.Config.Security.LoginRatePerMinute)
	}
	perf := d.Perf
	if perf == nil {
		perf = middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowRequestThreshold)
	}

	return &Handler{
		cfg:       d.Config,
		catalog:   d.Catalog,
		reviews:   d.Reviews,
		watchlist: d.Watchlist,
		forum:     d.Forum,
		profiles:  d.Profiles,
		auth:      d.Auth,
		authMW:    auth.NewMiddleware(d.Auth),
		authzMW:   authz.NewMiddleware(d.Enforcer),
		hub:       d.Hub,
		limiter:   limiter,
		perf:      perf,
		breaker:   d.Breaker,
		startTime: time.Now(),
	}
}

func (h *Handler) catalogPageSize() int {
	if h.cfg.Catalog.PageSize > 0 {
		return h.cfg.Catalog.PageSize
	}
	return catalog.CatalogPageSize
}

func (h *Handler) forumPageSize() int {
	if h.cfg.Forum.PageSize > 0 {
		return h.cfg.Forum.PageSize
	}
	return catalog.ForumPageSize
}
