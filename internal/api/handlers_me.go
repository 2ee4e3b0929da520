// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/watchlist"
)

// avatarField is the multipart form field carrying the avatar image.
const avatarField = "avatar"

// multipartOverhead allows for boundaries and part headers on top of the
// image itself.
const multipartOverhead = 64 << 10

// WatchlistResponse is the caller's saved drama ids, optionally resolved.
type WatchlistResponse struct {
	DramaList []string       `json:"dramaList"`
	Dramas    []models.Drama `json:"dramas,omitempty"`
}

func watchlistResponse(list watchlist.List) WatchlistResponse {
	ids := list.IDs()
	if ids == nil {
		ids = []string{}
	}
	return WatchlistResponse{DramaList: ids}
}

// GetWatchlist returns the caller's watchlist with each saved drama resolved.
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	list, err := h.watchlist.Get(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	dramas, err := h.watchlist.Dramas(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := watchlistResponse(list)
	resp.Dramas = dramas
	NewResponseWriter(w, r).Success(resp)
}

// AddToWatchlist saves a drama. Saving it twice is not an error.
func (h *Handler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.watchlist.Add(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "dramaId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(watchlistResponse(list))
}

// RemoveFromWatchlist drops a saved drama.
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.watchlist.Remove(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "dramaId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(watchlistResponse(list))
}

type userNameRequest struct {
	UserName string `json:"userName"`
}

// UpdateUserName changes the caller's display name.
func (h *Handler) UpdateUserName(w http.ResponseWriter, r *http.Request) {
	var req userNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	user, err := h.profiles.UpdateUserName(r.Context(), auth.UserIDFromContext(r.Context()), req.UserName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(user)
}

// UploadAvatar streams the "avatar" part of a multipart form into blob
// storage. The image type is detected by the profile service.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Blob.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Blob.MaxUploadBytes+multipartOverhead)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		writeDomainError(w, r, apperr.Invalid(avatarField, "expected multipart/form-data"))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeDomainError(w, r, apperr.Invalid(avatarField, "missing %q file field", avatarField))
			return
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeDomainError(w, r, apperr.Invalid(avatarField, "file exceeds %d bytes", h.cfg.Blob.MaxUploadBytes))
				return
			}
			writeDomainError(w, r, apperr.Invalid(avatarField, "malformed multipart body"))
			return
		}
		if part.FormName() != avatarField {
			_ = part.Close()
			continue
		}

		url, err := h.profiles.UploadAvatar(r.Context(), auth.UserIDFromContext(r.Context()), part)
		_ = part.Close()
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				err = apperr.Invalid(avatarField, "file exceeds %d bytes", h.cfg.Blob.MaxUploadBytes)
			}
			writeDomainError(w, r, err)
			return
		}
		NewResponseWriter(w, r).Created(map[string]string{"avatar": url})
		return
	}
}
