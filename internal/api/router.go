// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/dramalog/internal/middleware"
)

// Rate limit divisors per route group, applied to security.rate_limit_reqs.
const (
	readLimitDivisor   = 1
	writeLimitDivisor  = 2
	authLimitDivisor   = 4
	uploadLimitDivisor = 10
)

// Router builds the chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for h.
func NewRouter(h *Handler) *Router {
	return &Router{
		handler:       h,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFromSecurity(h.cfg.Security)),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Global middleware, outermost first
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMetrics)
	r.Use(h.perf.Middleware)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound("no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "method not allowed")
	})

	// Infrastructure
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.With(h.authMW.Optional).Get("/ws", h.WebSocket)
	r.Handle("/blobs/*", router.blobHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Compress(5, "application/json"))

		// Authentication
		r.Route("/auth", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit(authLimitDivisor))
			r.Post("/signup", h.SignUp)
			r.With(h.limiter.Middleware).Post("/login", h.Login)
			r.With(h.authMW.Optional).Post("/logout", h.Logout)
			r.With(h.authMW.Authenticate).Get("/me", h.Me)
		})

		// Catalog and reviews
		r.Route("/dramas", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimit(readLimitDivisor))
				r.Get("/", h.ListDramas)
				r.Get("/{id}", h.GetDrama)
				r.Get("/{id}/cast", h.DramaCast)
				r.Get("/{id}/related", h.RelatedDramas)
				r.With(h.authMW.Optional).Get("/{id}/reviews", h.LoadReviews)
			})
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimit(writeLimitDivisor))
				r.Use(h.authMW.Authenticate)
				r.Use(h.authzMW.RequirePermission)
				r.Post("/{id}/reviews", h.SubmitReview)
				r.Put("/{id}/reviews", h.UpdateReview)
				r.Delete("/{id}/reviews", h.RemoveReview)
			})
		})
		r.With(router.chiMiddleware.RateLimit(readLimitDivisor)).Get("/actors/{id}", h.GetActor)

		// Signed-in user's own data
		r.Route("/me", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit(writeLimitDivisor))
			r.Use(h.authMW.Authenticate)
			r.Use(h.authzMW.RequirePermission)
			r.Get("/watchlist", h.GetWatchlist)
			r.Put("/watchlist/{dramaId}", h.AddToWatchlist)
			r.Delete("/watchlist/{dramaId}", h.RemoveFromWatchlist)
			r.Put("/username", h.UpdateUserName)
			r.With(router.chiMiddleware.RateLimit(uploadLimitDivisor)).Post("/avatar", h.UploadAvatar)
		})

		// Forum
		r.Route("/boards/{board}/articles", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimit(readLimitDivisor)).Get("/", h.ListArticles)
			r.With(
				router.chiMiddleware.RateLimit(writeLimitDivisor),
				h.authMW.Authenticate,
				h.authzMW.RequirePermission,
			).Post("/", h.CreateArticle)
		})
		r.Route("/articles/{id}", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimit(readLimitDivisor)).Get("/", h.GetArticle)
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimit(writeLimitDivisor))
				r.Use(h.authMW.Authenticate)
				r.Use(h.authzMW.RequirePermission)
				r.Put("/", h.EditArticle)
				r.Delete("/", h.DeleteArticle)
				r.Post("/comments", h.PostComment)
				r.Put("/comments/{cid}", h.EditComment)
				r.Delete("/comments/{cid}", h.DeleteComment)
			})
		})

		// Administration
		r.Route("/admin", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit(writeLimitDivisor))
			r.Use(h.authMW.Authenticate)
			r.Use(h.authzMW.RequirePermission)
			r.Put("/dramas/{id}", h.PutDrama)
			r.Put("/actors/{id}", h.PutActor)
			r.Get("/stats", h.AdminStats)
		})
	})

	return r
}

// blobHandler serves uploaded files from the blob root. Directory listings
// are not served.
func (router *Router) blobHandler() http.Handler {
	fs := http.StripPrefix("/blobs/", http.FileServer(http.Dir(router.handler.cfg.Blob.Root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blobs/" || strings.HasSuffix(r.URL.Path, "/") {
			NewResponseWriter(w, r).NotFound("no such blob")
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		fs.ServeHTTP(w, r)
	})
}
