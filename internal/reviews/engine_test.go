// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package reviews

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/events"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/gateway/gatewaytest"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/profiles"
	"github.com/tomtom215/dramalog/internal/validation"
)

type fixture struct {
	store    *gateway.BadgerStore
	faulty   *gatewaytest.Faulty
	engine   *Engine
	recorder *events.Recorder
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: gatewaytest.NewStore(t), recorder: &events.Recorder{}, clock: time.UnixMilli(1700000000000)}
	gatewaytest.Seed(t, f.store, map[string]any{
		"dramas/d1": models.Drama{ID: "d1", Title: "Signal", Year: 2016, Type: models.TypeKoreanDrama},
		"users/u1":  models.User{ID: "u1", UserName: "mina"},
		"users/u2":  models.User{ID: "u2", UserName: "jun"},
		"users/u3":  models.User{ID: "u3", UserName: "sora"},
	})
	f.faulty = gatewaytest.NewFaulty(f.store)
	f.engine = NewEngine(f.faulty, profiles.NewResolver(f.faulty), f.recorder, WithClock(func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}))
	return f
}

func (f *fixture) storedRating(t *testing.T) string {
	t.Helper()
	doc, err := f.store.GetDocument(context.Background(), "dramas/d1")
	if err != nil || doc == nil {
		t.Fatalf("GetDocument(d1) = %v, %v", doc, err)
	}
	rating, _ := doc.Data["rating"].(string)
	return rating
}

func TestMeanRating(t *testing.T) {
	tests := []struct {
		ratings []int
		want    string
	}{
		{nil, ""},
		{[]int{5}, "5.0"},
		{[]int{3, 4, 5}, "4.0"},
		{[]int{4, 5}, "4.5"},
		{[]int{4, 4, 5}, "4.3"},
		{[]int{3, 4, 4, 4}, "3.8"},
		{[]int{1, 2}, "1.5"},
		{[]int{1, 1, 2}, "1.3"},
	}
	for _, tt := range tests {
		reviews := make([]models.Review, len(tt.ratings))
		for i, r := range tt.ratings {
			reviews[i] = models.Review{Rating: r}
		}
		if got := MeanRating(reviews); got != tt.want {
			t.Errorf("MeanRating(%v) = %q, want %q", tt.ratings, got, tt.want)
		}
	}
}

func TestLoadReviews_SplitsMineAndPersistsMean(t *testing.T) {
	f := newFixture(t)
	gatewaytest.Seed(t, f.store, map[string]any{
		"dramas/d1/reviews/u1": models.Review{Rating: 3, Date: 100},
		"dramas/d1/reviews/u2": models.Review{Rating: 4, Date: 300},
		"dramas/d1/reviews/u3": models.Review{Rating: 5, Date: 200},
	})

	result, err := f.engine.LoadReviews(context.Background(), "d1", "u1")
	if err != nil {
		t.Fatalf("LoadReviews() error = %v", err)
	}
	if result.Rating != "4.0" || result.Count != 3 {
		t.Errorf("Rating = %q, Count = %d; want 4.0 and 3", result.Rating, result.Count)
	}
	if result.Mine == nil || result.Mine.UserID != "u1" || result.Mine.UserName != "mina" {
		t.Errorf("Mine = %+v", result.Mine)
	}
	if len(result.Others) != 2 || result.Others[0].UserID != "u2" || result.Others[1].UserID != "u3" {
		t.Errorf("Others = %+v, want u2 then u3 by date", result.Others)
	}
	if result.Others[0].UserName != "jun" {
		t.Errorf("Others[0].UserName = %q, want jun", result.Others[0].UserName)
	}
	if got := f.storedRating(t); got != "4.0" {
		t.Errorf("stored rating = %q, want 4.0", got)
	}
}

func TestLoadReviews_SignedOut(t *testing.T) {
	f := newFixture(t)
	gatewaytest.Seed(t, f.store, map[string]any{"dramas/d1/reviews/u1": models.Review{Rating: 4}})

	result, err := f.engine.LoadReviews(context.Background(), "d1", "")
	if err != nil {
		t.Fatalf("LoadReviews() error = %v", err)
	}
	if result.Mine != nil || len(result.Others) != 1 {
		t.Errorf("signed-out result = %+v", result)
	}
}

func TestLoadReviews_NoReviewsClearsRating(t *testing.T) {
	f := newFixture(t)
	_ = f.store.UpdateDocument(context.Background(), "dramas/d1", map[string]any{"rating": "3.0"})

	result, err := f.engine.LoadReviews(context.Background(), "d1", "u1")
	if err != nil {
		t.Fatalf("LoadReviews() error = %v", err)
	}
	if result.Rating != "" || result.Count != 0 || result.Mine != nil {
		t.Errorf("empty result = %+v", result)
	}
	if got := f.storedRating(t); got != "" {
		t.Errorf("stored rating = %q, want cleared", got)
	}
}

func TestSubmitReview_RecomputesMean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.engine.SubmitReview(ctx, "u1", SubmitRequest{DramaID: "d1", Rating: 5, Text: "perfect"})
	if err != nil {
		t.Fatalf("SubmitReview() error = %v", err)
	}
	if result.Rating != "5.0" || f.storedRating(t) != "5.0" {
		t.Fatalf("after first review rating = %q, stored %q", result.Rating, f.storedRating(t))
	}

	result, err = f.engine.SubmitReview(ctx, "u2", SubmitRequest{DramaID: "d1", Rating: 3})
	if err != nil {
		t.Fatalf("SubmitReview() error = %v", err)
	}
	if result.Rating != "4.0" || f.storedRating(t) != "4.0" {
		t.Errorf("after second review rating = %q, stored %q", result.Rating, f.storedRating(t))
	}
	if result.Mine == nil || result.Mine.Rating != 3 || len(result.Others) != 1 {
		t.Errorf("result for u2 = %+v", result)
	}

	event, ok := f.recorder.Last(events.TypeReviewUpdated)
	if !ok {
		t.Fatal("no review_updated event published")
	}
	if data := event.Data.(events.ReviewUpdated); data.Rating != "4.0" || data.ReviewCount != 2 {
		t.Errorf("event data = %+v", data)
	}
}

func TestSubmitReview_OnePerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.engine.SubmitReview(ctx, "u1", SubmitRequest{DramaID: "d1", Rating: 2}); err != nil {
		t.Fatalf("SubmitReview() error = %v", err)
	}
	result, err := f.engine.SubmitReview(ctx, "u1", SubmitRequest{DramaID: "d1", Rating: 4, Text: "changed my mind"})
	if err != nil {
		t.Fatalf("SubmitReview() error = %v", err)
	}
	if result.Count != 1 || result.Rating != "4.0" || result.Mine.WrittenReview != "changed my mind" {
		t.Errorf("result = %+v", result)
	}
}

func TestSubmitReview_RejectsBeforeRemoteCalls(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		req     SubmitRequest
		wantErr func(error) bool
	}{
		{
			name:    "signed out",
			req:     SubmitRequest{DramaID: "d1", Rating: 4},
			wantErr: func(err error) bool { return errors.Is(err, apperr.ErrSignInRequired) },
		},
		{
			name:   "missing rating",
			userID: "u1",
			req:    SubmitRequest{DramaID: "d1"},
			wantErr: func(err error) bool {
				var verr *validation.RequestValidationError
				return errors.As(err, &verr) && verr.Errors()[0].Field() == "rating"
			},
		},
		{
			name:   "rating out of range",
			userID: "u1",
			req:    SubmitRequest{DramaID: "d1", Rating: 6},
			wantErr: func(err error) bool {
				var verr *validation.RequestValidationError
				return errors.As(err, &verr)
			},
		},
		{
			name:    "text too long",
			userID:  "u1",
			req:     SubmitRequest{DramaID: "d1", Rating: 4, Text: strings.Repeat("가", 51)},
			wantErr: apperr.IsValidation,
		},
		{
			name:    "missing drama id",
			userID:  "u1",
			req:     SubmitRequest{Rating: 4},
			wantErr: apperr.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.engine.SubmitReview(context.Background(), tt.userID, tt.req)
			if !tt.wantErr(err) {
				t.Fatalf("SubmitReview() error = %v", err)
			}
			if calls := f.faulty.Calls(); len(calls) != 0 {
				t.Errorf("expected no remote calls, got %v", calls)
			}
		})
	}
}

func TestSubmitReview_AcceptsFiftyCharacters(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.SubmitReview(context.Background(), "u1", SubmitRequest{DramaID: "d1", Rating: 4, Text: strings.Repeat("가", 50)})
	if err != nil {
		t.Errorf("SubmitReview() error = %v", err)
	}
}

func TestSubmitReview_UnknownDrama(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.SubmitReview(context.Background(), "u1", SubmitRequest{DramaID: "nope", Rating: 4})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("SubmitReview() error = %v, want ErrNotFound", err)
	}
	if f.faulty.Writes() != 0 {
		t.Error("no review should be written for an unknown drama")
	}
}

func TestUpdateReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.engine.UpdateReview(ctx, "u1", SubmitRequest{DramaID: "d1", Rating: 3}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateReview(no review) error = %v, want ErrNotFound", err)
	}

	_, _ = f.engine.SubmitReview(ctx, "u1", SubmitRequest{DramaID: "d1", Rating: 5})
	_, _ = f.engine.SubmitReview(ctx, "u2", SubmitRequest{DramaID: "d1", Rating: 5})

	result, err := f.engine.UpdateReview(ctx, "u1", SubmitRequest{DramaID: "d1", Rating: 2, Text: "worse on rewatch"})
	if err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}
	if result.Rating != "3.5" || result.Mine.Rating != 2 || result.Mine.WrittenReview != "worse on rewatch" {
		t.Errorf("UpdateReview() = %+v", result)
	}
	// The edit is the newest review.
	if result.All[0].UserID != "u1" {
		t.Errorf("All[0] = %s, want u1", result.All[0].UserID)
	}
}

func TestRemoveReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.engine.SubmitReview(ctx, "u1", SubmitRequest{DramaID: "d1", Rating: 5})
	_, _ = f.engine.SubmitReview(ctx, "u2", SubmitRequest{DramaID: "d1", Rating: 2})

	result, err := f.engine.RemoveReview(ctx, "u2", "d1")
	if err != nil {
		t.Fatalf("RemoveReview() error = %v", err)
	}
	if result.Rating != "5.0" || result.Mine != nil || result.Count != 1 {
		t.Errorf("after removal = %+v", result)
	}

	// Removing again is a no-op.
	if _, err := f.engine.RemoveReview(ctx, "u2", "d1"); err != nil {
		t.Errorf("RemoveReview(again) error = %v", err)
	}

	result, err = f.engine.RemoveReview(ctx, "u1", "d1")
	if err != nil {
		t.Fatalf("RemoveReview(last) error = %v", err)
	}
	if result.Rating != "" || f.storedRating(t) != "" {
		t.Errorf("rating after last removal = %q, stored %q", result.Rating, f.storedRating(t))
	}
}

func TestLoadReviews_ProfileFailure(t *testing.T) {
	f := newFixture(t)
	gatewaytest.Seed(t, f.store, map[string]any{"dramas/d1/reviews/u1": models.Review{Rating: 4}})
	f.faulty.FailOn("get", "users/")

	result, err := f.engine.LoadReviews(context.Background(), "d1", "u1")
	if err == nil || result != nil {
		t.Fatalf("LoadReviews() = %+v, %v; want failure and no result", result, err)
	}
	if f.faulty.Writes() != 0 {
		t.Error("a failed join must not persist a rating")
	}
}
