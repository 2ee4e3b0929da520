// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/catalog"
	"github.com/tomtom215/dramalog/internal/forum"
	"github.com/tomtom215/dramalog/internal/models"
)

// StaleHeader marks a response served from the last good copy after a
// failed store read.
const StaleHeader = "X-Dramalog-Stale"

// servesStale reports whether a cached copy may stand in after err. Only
// server-side failures qualify; a missing article is never masked.
func servesStale(err error) bool {
	return classifyError(err).status >= http.StatusInternalServerError
}

type commentRequest struct {
	Text string `json:"text"`
}

// ListArticles returns the first ?pages= pages of a board, newest first.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.forum.LoadThread(r.Context(), chi.URLParam(r, "board"))
	if err != nil {
		if articles == nil || !servesStale(err) {
			writeDomainError(w, r, err)
			return
		}
		logFor(r).Warn().Err(err).Msg("serving cached board")
		w.Header().Set(StaleHeader, "true")
	}
	if articles == nil {
		articles = []models.ArticleView{}
	}

	pageSize := h.forumPageSize()
	pages := getPagesParam(r, maxPages)
	NewResponseWriter(w, r).SuccessWithPagination(catalog.Paginate(articles, pages, pageSize), &PaginationMeta{
		Pages:    pages,
		PageSize: pageSize,
		Total:    len(articles),
		HasMore:  catalog.HasMore(len(articles), pages, pageSize),
	})
}

// GetArticle returns an article with its floor-numbered comments.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	thread, err := h.forum.LoadArticle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if thread == nil || !servesStale(err) {
			writeDomainError(w, r, err)
			return
		}
		logFor(r).Warn().Err(err).Msg("serving cached article")
		w.Header().Set(StaleHeader, "true")
	}
	NewResponseWriter(w, r).Success(thread)
}

// CreateArticle posts a new article on a board.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req forum.ArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	thread, err := h.forum.CreateArticle(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "board"), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(thread)
}

// EditArticle changes the caller's own article.
func (h *Handler) EditArticle(w http.ResponseWriter, r *http.Request) {
	var req forum.ArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	thread, err := h.forum.EditArticle(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(thread)
}

// DeleteArticle removes the caller's own article and its comments.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.forum.DeleteArticle(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// PostComment appends a comment. Floor references in the text must point
// at existing floors.
func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	thread, err := h.forum.PostComment(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(thread)
}

// EditComment changes the caller's own comment.
func (h *Handler) EditComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	thread, err := h.forum.EditComment(r.Context(), auth.UserIDFromContext(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "cid"), req.Text)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(thread)
}

// DeleteComment removes the caller's own comment. Later floors renumber.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	thread, err := h.forum.DeleteComment(r.Context(), auth.UserIDFromContext(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "cid"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(thread)
}
