// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MeResponse is the signed-in user with their profile.
type MeResponse struct {
	auth.Principal
	Profile *models.User `json:"profile"`
}

// SignUp registers an account. It does not sign the user in.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	principal, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.UserName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(principal)
}

// Login issues a token and also sets it as an HttpOnly cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	ctx := r.Context()
	if auth.ClientIPFromContext(ctx) == "" {
		ctx = auth.ContextWithClientIP(ctx, auth.ClientIP(r))
	}

	token, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	http.SetCookie(w, h.tokenCookie(r, token.AccessToken, token.ExpiresAt))
	NewResponseWriter(w, r).Success(token)
}

// Logout revokes the caller's session, if any, and clears the cookie.
// It succeeds for anonymous callers.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		if err := h.auth.SignOut(r.Context(), claims.SessionID()); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	http.SetCookie(w, h.tokenCookie(r, "", time.Unix(0, 0)))
	NewResponseWriter(w, r).NoContent()
}

// Me returns the signed-in principal and their profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		writeDomainError(w, r, apperr.ErrSignInRequired)
		return
	}

	user, err := h.profiles.Get(r.Context(), principal.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(MeResponse{Principal: *principal, Profile: user})
}

func (h *Handler) tokenCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil || h.cfg.Server.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}
