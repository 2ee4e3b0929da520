// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/gateway/gatewaytest"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/validation"
)

func seedCatalog(t *testing.T) *Service {
	t.Helper()
	store := gatewaytest.NewStore(t)
	gatewaytest.Seed(t, store, map[string]any{
		"dramas/d1": models.Drama{ID: "d1", Title: "Signal", Year: 2016, Type: models.TypeKoreanDrama, Rating: "4.5"},
		"dramas/d2": models.Drama{ID: "d2", Title: "Stranger", Year: 2017, Type: models.TypeKoreanDrama},
		"dramas/d3": models.Drama{ID: "d3", Title: "Kingdom", Year: 2019, Type: models.TypeKoreanDrama},
		"dramas/d4": models.Drama{ID: "d4", Title: "Alone", Year: 2020, Type: models.TypeTaiwanDrama},
		"actors/a1": models.Actor{ID: "a1", Name: "Cho Jin-woong", Dramas: []string{"d1", "d3"}},
		"actors/a2": models.Actor{ID: "a2", Name: "Kim Hye-soo", Dramas: []string{"d1", "d2", "d3", "gone"}},
		"actors/a3": models.Actor{ID: "a3", Name: "Other", Dramas: []string{"d4"}},
	})
	return NewService(store)
}

func TestService_ListAndGet(t *testing.T) {
	svc := seedCatalog(t)
	ctx := context.Background()

	dramas, err := svc.ListDramas(ctx)
	if err != nil {
		t.Fatalf("ListDramas() error = %v", err)
	}
	if len(dramas) != 4 || dramas[0].ID != "d1" {
		t.Errorf("ListDramas() = %v", ids(dramas))
	}

	d, err := svc.GetDrama(ctx, "d1")
	if err != nil || d.Title != "Signal" {
		t.Fatalf("GetDrama() = %+v, %v", d, err)
	}

	if _, err := svc.GetDrama(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetDrama(missing) error = %v, want ErrNotFound", err)
	}
}

func TestService_PutDramaKeepsRating(t *testing.T) {
	svc := seedCatalog(t)
	ctx := context.Background()

	_, err := svc.PutDrama(ctx, models.Drama{ID: "d1", Title: "Signal (2016)", Year: 2016, Type: models.TypeKoreanDrama, Rating: "1.0"})
	if err != nil {
		t.Fatalf("PutDrama() error = %v", err)
	}
	d, _ := svc.GetDrama(ctx, "d1")
	if d.Title != "Signal (2016)" || d.Rating != "4.5" {
		t.Errorf("stored drama = %+v, want new title and rating 4.5", d)
	}

	created, err := svc.PutDrama(ctx, models.Drama{ID: "d9", Title: "New", Year: 2024, Type: models.TypeChinaDrama, Rating: "5.0"})
	if err != nil {
		t.Fatalf("PutDrama(new) error = %v", err)
	}
	if created.Rating != "" {
		t.Errorf("new drama rating = %q, want empty", created.Rating)
	}
}

func TestService_PutDramaValidates(t *testing.T) {
	svc := seedCatalog(t)

	_, err := svc.PutDrama(context.Background(), models.Drama{ID: "d9", Title: "", Year: 2024, Type: "SpanishDrama"})
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("PutDrama() error = %v, want RequestValidationError", err)
	}
	if len(verr.Errors()) != 2 {
		t.Errorf("expected title and type errors, got %v", verr)
	}

	if _, err := svc.PutDrama(context.Background(), models.Drama{Title: "x", Year: 2020, Type: models.TypeKoreanDrama}); !apperr.IsValidation(err) {
		t.Errorf("PutDrama(no id) error = %v, want validation error", err)
	}
}

func TestService_CastAndRelated(t *testing.T) {
	svc := seedCatalog(t)
	ctx := context.Background()

	cast, err := svc.CastOf(ctx, "d3")
	if err != nil {
		t.Fatalf("CastOf() error = %v", err)
	}
	if len(cast) != 2 || cast[0].ID != "a1" || cast[1].ID != "a2" {
		t.Errorf("CastOf(d3) = %+v", cast)
	}

	related, err := svc.RelatedByCast(ctx, "d1")
	if err != nil {
		t.Fatalf("RelatedByCast() error = %v", err)
	}
	// a1 reaches d3 first, a2 then adds d2; the dangling id is skipped.
	if got := ids(related); len(got) != 2 || got[0] != "d3" || got[1] != "d2" {
		t.Errorf("RelatedByCast(d1) = %v, want [d3 d2]", got)
	}
}

func TestService_StoreFailure(t *testing.T) {
	faulty := gatewaytest.NewFaulty(gatewaytest.NewStore(t))
	faulty.FailOn("", "dramas")
	svc := NewService(faulty)

	_, err := svc.ListDramas(context.Background())
	var ge *gateway.Error
	if !errors.As(err, &ge) {
		t.Errorf("ListDramas() error = %v, want *gateway.Error", err)
	}
}
