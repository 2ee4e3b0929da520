// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package authz

import (
	"net/http"

	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/metrics"
)

// Middleware authorizes requests from the principal attached by
// auth.Middleware.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// RequirePermission authorizes the request path with the action derived from
// the HTTP method. It must run after auth.Middleware.Authenticate.
func (m *Middleware) RequirePermission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := auth.PrincipalFromContext(r.Context())
		if principal == nil {
			auth.WriteError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.Enforce(principal.Role, r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			auth.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "authorization failed")
			return
		}

		metrics.RecordAuthEvent("authorize", allowed)
		if !allowed {
			logging.Ctx(r.Context()).Warn().
				Str("role", principal.Role).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("permission denied")
			auth.WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}
