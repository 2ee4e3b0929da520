// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/catalog"
	"github.com/tomtom215/dramalog/internal/models"
)

// catalogFilter builds a catalog filter from the query string.
//
// Query parameters:
//   - type: drama type or "all"
//   - genre, year, platform: repeated or comma separated
//   - sort: newest, highest-rated, year-desc, year-asc
//   - q: title search
func catalogFilter(r *http.Request) (catalog.Filter, error) {
	years, err := queryInts(r, "year")
	if err != nil {
		return catalog.Filter{}, err
	}
	q := r.URL.Query()
	return catalog.Filter{
		Type:      q.Get("type"),
		Genres:    queryValues(r, "genre"),
		Years:     years,
		Platforms: queryValues(r, "platform"),
		Sort:      catalog.ParseSort(q.Get("sort")),
		Query:     q.Get("q"),
	}, nil
}

// ListDramas returns the first ?pages= pages of the filtered catalog.
func (h *Handler) ListDramas(w http.ResponseWriter, r *http.Request) {
	filter, err := catalogFilter(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	dramas, err := h.catalog.ListDramas(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	pageSize := h.catalogPageSize()
	browser := catalog.NewBrowser(dramas, pageSize, catalog.Options{NewestYear: h.cfg.Catalog.NewestYear})
	browser.SetFilter(filter)

	pages := getPagesParam(r, maxPages)
	for browser.Pages() < pages {
		if !browser.LoadMore() {
			break
		}
	}

	NewResponseWriter(w, r).SuccessWithPagination(browser.Visible(), &PaginationMeta{
		Pages:    browser.Pages(),
		PageSize: pageSize,
		Total:    browser.Total(),
		HasMore:  browser.HasMore(),
	})
}

// GetDrama returns one drama.
func (h *Handler) GetDrama(w http.ResponseWriter, r *http.Request) {
	drama, err := h.catalog.GetDrama(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(drama)
}

// DramaCast returns the actors of a drama.
func (h *Handler) DramaCast(w http.ResponseWriter, r *http.Request) {
	cast, err := h.catalog.CastOf(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if cast == nil {
		cast = []models.Actor{}
	}
	NewResponseWriter(w, r).Success(cast)
}

// RelatedDramas returns the dramas sharing cast with a drama.
func (h *Handler) RelatedDramas(w http.ResponseWriter, r *http.Request) {
	related, err := h.catalog.RelatedByCast(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if related == nil {
		related = []models.Drama{}
	}
	NewResponseWriter(w, r).Success(related)
}

// GetActor returns one actor.
func (h *Handler) GetActor(w http.ResponseWriter, r *http.Request) {
	actor, err := h.catalog.GetActor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(actor)
}

// PutDrama creates or replaces a drama. The path id wins over the body.
func (h *Handler) PutDrama(w http.ResponseWriter, r *http.Request) {
	var drama models.Drama
	if err := decodeJSON(w, r, &drama); err != nil {
		writeDomainError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if drama.ID != "" && drama.ID != id {
		writeDomainError(w, r, apperr.Invalid("id", "body id %q does not match path", drama.ID))
		return
	}
	drama.ID = id

	stored, err := h.catalog.PutDrama(r.Context(), drama)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logFor(r).Info().Str("drama_id", id).Str("admin_id", auth.UserIDFromContext(r.Context())).Msg("admin stored drama")
	NewResponseWriter(w, r).Success(stored)
}

// PutActor creates or replaces an actor.
func (h *Handler) PutActor(w http.ResponseWriter, r *http.Request) {
	var actor models.Actor
	if err := decodeJSON(w, r, &actor); err != nil {
		writeDomainError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if actor.ID != "" && actor.ID != id {
		writeDomainError(w, r, apperr.Invalid("id", "body id %q does not match path", actor.ID))
		return
	}
	actor.ID = id

	stored, err := h.catalog.PutActor(r.Context(), actor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logFor(r).Info().Str("actor_id", id).Str("admin_id", auth.UserIDFromContext(r.Context())).Msg("admin stored actor")
	NewResponseWriter(w, r).Success(stored)
}
