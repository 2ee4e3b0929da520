// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/reviews"
)

// LoadReviews returns a drama's reviews. A signed-in caller's own review is
// split out as "mine".
func (h *Handler) LoadReviews(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviews.LoadReviews(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(result)
}

// reviewRequest decodes a review body. The drama id always comes from the path.
func reviewRequest(w http.ResponseWriter, r *http.Request) (reviews.SubmitRequest, error) {
	var req reviews.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return req, err
	}
	req.DramaID = chi.URLParam(r, "id")
	return req, nil
}

// SubmitReview creates or replaces the caller's review.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	req, err := reviewRequest(w, r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.reviews.SubmitReview(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(result)
}

// UpdateReview edits the caller's existing review.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	req, err := reviewRequest(w, r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.reviews.UpdateReview(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(result)
}

// RemoveReview deletes the caller's review and returns the refreshed list.
func (h *Handler) RemoveReview(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviews.RemoveReview(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(result)
}
