// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dramalog/internal/logging"
)

// TokenCookieName is the cookie the token is read from when no
// Authorization header is sent.
const TokenCookieName = "token"

// Middleware attaches the signed-in principal to requests.
type Middleware struct {
	provider *Provider
}

// NewMiddleware creates authentication middleware backed by provider.
func NewMiddleware(provider *Provider) *Middleware {
	return &Middleware{provider: provider}
}

// Authenticate rejects requests without a valid token and live session
// with 401 AUTH_REQUIRED.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			writeAuthRequired(w, err.Error())
			return
		}

		ctx, err := m.attach(r.Context(), token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("token rejected")
			writeAuthRequired(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the principal when a valid token is present and passes
// the request through unchanged otherwise.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx, err := m.attach(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) attach(ctx context.Context, token string) (context.Context, error) {
	principal, claims, err := m.provider.Verify(ctx, token)
	if err != nil {
		return ctx, err
	}
	ctx = ContextWithPrincipal(ctx, principal)
	ctx = context.WithValue(ctx, claimsContextKey, claims)
	ctx = logging.ContextWithUserID(ctx, principal.ID)
	return ctx, nil
}

// extractToken reads the bearer token from the Authorization header or the
// token cookie.
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie(TokenCookieName)
		if err != nil || cookie.Value == "" {
			return "", fmt.Errorf("missing token")
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header")
	}

	return parts[1], nil
}

// ClientIP returns the host part of r.RemoteAddr. chi's RealIP middleware
// has already applied X-Forwarded-For when it ran.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteError writes a JSON error envelope with the given status and code.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("failed to encode auth error")
	}
}

func writeAuthRequired(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="dramalog"`)
	WriteError(w, http.StatusUnauthorized, "AUTH_REQUIRED", message)
}
