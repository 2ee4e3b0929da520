// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package reviews joins a drama's reviews with reviewer profiles, splits
// the caller's own review from everyone else's and keeps the drama's mean
// rating in step with its reviews.
//
// A drama holds at most one review per user: the review document is keyed
// by the user id under dramas/{dramaId}/reviews.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/events"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/metrics"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/profiles"
	"github.com/tomtom215/dramalog/internal/validation"
)

// DefaultMaxTextLength is the longest written review, in characters.
const DefaultMaxTextLength = 50

// ErrNotFound is returned by UpdateReview when the caller has no review.
var ErrNotFound = fmt.Errorf("review: %w", apperr.ErrNotFound)

// SubmitRequest is a new or edited review.
type SubmitRequest struct {
	DramaID string `json:"dramaId"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Text    string `json:"writtenReview"`
}

// Result is a drama's reviews as seen by one caller.
type Result struct {
	DramaID string              `json:"dramaId"`
	Rating  string              `json:"rating"`
	Count   int                 `json:"count"`
	All     []models.ReviewView `json:"all"`
	Others  []models.ReviewView `json:"others"`
	Mine    *models.ReviewView  `json:"mine"`
}

// Engine loads and writes reviews.
type Engine struct {
	gw            gateway.Gateway
	resolver      *profiles.Resolver
	publisher     events.Publisher
	maxTextLength int
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxTextLength overrides DefaultMaxTextLength.
func WithMaxTextLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTextLength = n
		}
	}
}

// WithClock overrides the review timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a review engine. publisher may be nil.
func NewEngine(gw gateway.Gateway, resolver *profiles.Resolver, publisher events.Publisher, opts ...Option) *Engine {
	if publisher == nil {
		publisher = events.Nop{}
	}
	e := &Engine{
		gw:            gw,
		resolver:      resolver,
		publisher:     publisher,
		maxTextLength: DefaultMaxTextLength,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func reviewsPath(dramaID string) string {
	return gateway.Join("dramas", dramaID, "reviews")
}

func reviewPath(dramaID, userID string) string {
	return gateway.Join("dramas", dramaID, "reviews", userID)
}

// LoadReviews returns the reviews of a drama joined with reviewer profiles.
// userID may be empty for signed-out callers, in which case Mine is nil.
//
// The mean rating is recomputed from the loaded reviews and written back to
// the drama when it differs from the stored value.
func (e *Engine) LoadReviews(ctx context.Context, dramaID, userID string) (*Result, error) {
	if dramaID == "" {
		return nil, apperr.Invalid("dramaId", "drama id is required")
	}
	log := logging.CtxWith(ctx).Str("drama_id", dramaID).Logger()

	drama, err := e.gw.GetDocument(ctx, gateway.Join("dramas", dramaID))
	if err != nil {
		log.Error().Err(err).Msg("failed to load drama for reviews")
		return nil, err
	}
	if drama == nil {
		return nil, apperr.NotFound("drama", dramaID)
	}

	docs, err := e.gw.GetCollection(ctx, reviewsPath(dramaID))
	if err != nil {
		log.Error().Err(err).Msg("failed to load reviews")
		return nil, err
	}
	all, err := gateway.DecodeAll[models.Review](docs)
	if err != nil {
		return nil, err
	}
	for i := range all {
		// The document key is authoritative for ownership.
		all[i].UserID = docs[i].ID
		all[i].DramaID = dramaID
	}

	userIDs := make([]string, len(all))
	for i, r := range all {
		userIDs[i] = r.UserID
	}
	profileByID, err := e.resolver.Resolve(ctx, userIDs)
	if err != nil {
		log.Error().Err(err).Msg("failed to join reviewer profiles")
		return nil, err
	}

	result := &Result{
		DramaID: dramaID,
		Count:   len(all),
		All:     make([]models.ReviewView, 0, len(all)),
		Others:  make([]models.ReviewView, 0, len(all)),
	}
	for _, r := range all {
		p := profileByID[r.UserID]
		result.All = append(result.All, models.ReviewView{Review: r, UserName: p.UserName, Avatar: p.Avatar})
	}
	sort.SliceStable(result.All, func(i, j int) bool { return result.All[i].Date > result.All[j].Date })
	for i := range result.All {
		view := result.All[i]
		if userID != "" && view.UserID == userID {
			result.Mine = &view
			continue
		}
		result.Others = append(result.Others, view)
	}

	result.Rating = MeanRating(all)
	stored, _ := drama.Data["rating"].(string)
	if stored != result.Rating {
		if err := e.gw.UpdateDocument(ctx, gateway.Join("dramas", dramaID), map[string]any{"rating": result.Rating}); err != nil {
			log.Error().Err(err).Str("rating", result.Rating).Msg("failed to persist mean rating")
			return nil, err
		}
		metrics.RecordRatingRecompute()
		log.Debug().Str("from", stored).Str("to", result.Rating).Int("reviews", result.Count).Msg("mean rating updated")
	}

	return result, nil
}

// MeanRating returns the mean of the ratings rounded half-up to one
// decimal and formatted with one decimal place. It returns the empty string
// when there are no reviews.
func MeanRating(reviews []models.Review) string {
	if len(reviews) == 0 {
		return ""
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return fmt.Sprintf("%.1f", math.Floor(mean*10+0.5)/10)
}

func (e *Engine) validate(req *SubmitRequest) error {
	if req.DramaID == "" {
		return apperr.Invalid("dramaId", "drama id is required")
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return verr
	}
	if n := utf8.RuneCountInString(req.Text); n > e.maxTextLength {
		return apperr.Invalid("writtenReview", "review must be at most %d characters, got %d", e.maxTextLength, n)
	}
	return nil
}

// SubmitReview creates or replaces the caller's review and returns the
// refreshed reviews.
func (e *Engine) SubmitReview(ctx context.Context, userID string, req SubmitRequest) (*Result, error) {
	if userID == "" {
		return nil, apperr.ErrSignInRequired
	}
	if err := e.validate(&req); err != nil {
		return nil, err
	}

	drama, err := e.gw.GetDocument(ctx, gateway.Join("dramas", req.DramaID))
	if err != nil {
		return nil, err
	}
	if drama == nil {
		return nil, apperr.NotFound("drama", req.DramaID)
	}

	review := models.Review{
		DramaID:       req.DramaID,
		UserID:        userID,
		Rating:        req.Rating,
		WrittenReview: req.Text,
		Date:          e.now().UnixMilli(),
	}
	if err := e.gw.SetDocument(ctx, reviewPath(req.DramaID, userID), review, false); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("drama_id", req.DramaID).Msg("failed to submit review")
		return nil, err
	}
	metrics.RecordReviewOperation("submit")

	return e.reloadAndPublish(ctx, req.DramaID, userID)
}

// UpdateReview changes the rating and text of the caller's existing review.
func (e *Engine) UpdateReview(ctx context.Context, userID string, req SubmitRequest) (*Result, error) {
	if userID == "" {
		return nil, apperr.ErrSignInRequired
	}
	if err := e.validate(&req); err != nil {
		return nil, err
	}

	err := e.gw.UpdateDocument(ctx, reviewPath(req.DramaID, userID), map[string]any{
		"rating":        req.Rating,
		"writtenReview": req.Text,
		"date":          e.now().UnixMilli(),
	})
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("drama_id", req.DramaID).Msg("failed to update review")
		return nil, err
	}
	metrics.RecordReviewOperation("update")

	return e.reloadAndPublish(ctx, req.DramaID, userID)
}

// RemoveReview deletes the caller's review. Removing a review that does not
// exist is not an error.
func (e *Engine) RemoveReview(ctx context.Context, userID, dramaID string) (*Result, error) {
	if userID == "" {
		return nil, apperr.ErrSignInRequired
	}
	if dramaID == "" {
		return nil, apperr.Invalid("dramaId", "drama id is required")
	}

	if err := e.gw.DeleteDocument(ctx, reviewPath(dramaID, userID)); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("drama_id", dramaID).Msg("failed to remove review")
		return nil, err
	}
	metrics.RecordReviewOperation("remove")

	return e.reloadAndPublish(ctx, dramaID, userID)
}

func (e *Engine) reloadAndPublish(ctx context.Context, dramaID, userID string) (*Result, error) {
	result, err := e.LoadReviews(ctx, dramaID, userID)
	if err != nil {
		return nil, err
	}
	e.publisher.Publish(events.TypeReviewUpdated, events.ReviewUpdated{
		DramaID:     dramaID,
		Rating:      result.Rating,
		ReviewCount: result.Count,
	})
	return result, nil
}
