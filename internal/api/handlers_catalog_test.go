// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/dramalog/internal/config"
	"github.com/tomtom215/dramalog/internal/models"
)

func dramaIDs(dramas []models.Drama) []string {
	ids := make([]string, len(dramas))
	for i, d := range dramas {
		ids[i] = d.ID
	}
	return ids
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, func(_ *config.Config, d *Deps) { d.Breaker = stubBreaker("closed") })

	env := s.expect(http.MethodGet, "/health", nil, "", http.StatusOK)
	var status HealthStatus
	env.decode(t, &status)
	if status.Status != "healthy" || status.StoreBreaker != "closed" {
		t.Errorf("health = %+v", status)
	}
	if env.Meta == nil || env.Meta.RequestID == "" {
		t.Error("expected request id in meta")
	}
}

func TestHealth_OpenBreakerIsDegraded(t *testing.T) {
	s := newTestServer(t, func(_ *config.Config, d *Deps) { d.Breaker = stubBreaker("open") })

	env := s.expect(http.MethodGet, "/health", nil, "", http.StatusServiceUnavailable)
	var status HealthStatus
	env.decode(t, &status)
	if status.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", status.Status)
	}
}

func TestListDramas(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
		total   int
		hasMore bool
	}{
		{"first page", "", []string{"d1", "d2"}, 3, true},
		{"two pages", "?pages=2", []string{"d1", "d2", "d3"}, 3, false},
		{"pages clamps low", "?pages=0", []string{"d1", "d2"}, 3, true},
		{"type", "?type=JapaneseDrama", []string{"d3"}, 1, false},
		{"type all", "?type=all&pages=9", []string{"d1", "d2", "d3"}, 3, false},
		{"genre list", "?genre=thriller&pages=2", []string{"d1", "d3"}, 2, false},
		{"platform repeated", "?platform=Disney%2B&platform=Other", []string{"d2"}, 1, false},
		{"year", "?year=2016,2018", []string{"d1", "d3"}, 2, false},
		{"year desc", "?sort=year-desc&pages=2", []string{"d2", "d3", "d1"}, 3, false},
		{"newest", "?sort=newest", []string{"d2"}, 1, false},
		{"search", "?q=SIGNAL", []string{"d1"}, 1, false},
		{"unknown sort ignored", "?sort=sideways&pages=2", []string{"d1", "d2", "d3"}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := s.expect(http.MethodGet, "/api/v1/dramas"+tt.query, nil, "", http.StatusOK)

			var dramas []models.Drama
			env.decode(t, &dramas)
			got := dramaIDs(dramas)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", got, tt.wantIDs)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Fatalf("ids = %v, want %v", got, tt.wantIDs)
				}
			}

			p := env.Meta.Pagination
			if p == nil {
				t.Fatal("missing pagination meta")
			}
			if p.Total != tt.total || p.HasMore != tt.hasMore || p.PageSize != 2 {
				t.Errorf("pagination = %+v, want total %d has_more %v", *p, tt.total, tt.hasMore)
			}
		})
	}
}

func TestListDramas_RejectsBadYear(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"?year=abc", "?year=2016,soon", "?year=2016&year=x"} {
		t.Run(query, func(t *testing.T) {
			env := s.expect(http.MethodGet, "/api/v1/dramas"+query, nil, "", http.StatusBadRequest)
			if env.code() != ErrCodeValidation {
				t.Fatalf("code = %q, want %s", env.code(), ErrCodeValidation)
			}
			details, ok := env.Error.Details.(map[string]interface{})
			if !ok || details["field"] != "year" {
				t.Errorf("details = %#v, want field year", env.Error.Details)
			}
		})
	}
}

func TestGetDrama(t *testing.T) {
	s := newTestServer(t)

	env := s.expect(http.MethodGet, "/api/v1/dramas/d1", nil, "", http.StatusOK)
	var drama models.Drama
	env.decode(t, &drama)
	if drama.EnglishTitle != "Signal" {
		t.Errorf("EnglishTitle = %q", drama.EnglishTitle)
	}

	env = s.expect(http.MethodGet, "/api/v1/dramas/nope", nil, "", http.StatusNotFound)
	if env.Success || env.code() != ErrCodeNotFound {
		t.Errorf("missing drama response = %+v", env.Error)
	}
}

func TestCastAndRelated(t *testing.T) {
	s := newTestServer(t)

	env := s.expect(http.MethodGet, "/api/v1/dramas/d1/cast", nil, "", http.StatusOK)
	var cast []models.Actor
	env.decode(t, &cast)
	if len(cast) != 1 || cast[0].ID != "a1" {
		t.Errorf("cast = %+v", cast)
	}

	env = s.expect(http.MethodGet, "/api/v1/dramas/d3/cast", nil, "", http.StatusOK)
	if string(env.Data) != "[]" {
		t.Errorf("empty cast data = %s, want []", env.Data)
	}

	env = s.expect(http.MethodGet, "/api/v1/dramas/d1/related", nil, "", http.StatusOK)
	var related []models.Drama
	env.decode(t, &related)
	if ids := dramaIDs(related); len(ids) != 1 || ids[0] != "d2" {
		t.Errorf("related = %v, want [d2]", ids)
	}

	env = s.expect(http.MethodGet, "/api/v1/actors/a1", nil, "", http.StatusOK)
	var actor models.Actor
	env.decode(t, &actor)
	if actor.EnglishName != "Cho Jin-woong" {
		t.Errorf("actor = %+v", actor)
	}
	s.expect(http.MethodGet, "/api/v1/actors/a9", nil, "", http.StatusNotFound)
}

func TestAdminCatalogEdits(t *testing.T) {
	s := newTestServer(t)
	admin := s.signIn(adminEmail, "admin")
	member := s.signIn(memberEmail, "mina")

	drama := map[string]any{
		"title": "Stranger", "englishTitle": "Stranger", "year": 2017,
		"type": "KoreanDrama", "platform": []string{"Netflix"},
	}

	env := s.expect(http.MethodPut, "/api/v1/admin/dramas/d9", drama, "", http.StatusUnauthorized)
	if env.code() != ErrCodeAuthRequired {
		t.Errorf("anonymous code = %q", env.code())
	}
	env = s.expect(http.MethodPut, "/api/v1/admin/dramas/d9", drama, member, http.StatusForbidden)
	if env.code() != ErrCodeForbidden {
		t.Errorf("member code = %q", env.code())
	}

	env = s.expect(http.MethodPut, "/api/v1/admin/dramas/d9", drama, admin, http.StatusOK)
	var stored models.Drama
	env.decode(t, &stored)
	if stored.ID != "d9" {
		t.Errorf("stored id = %q, want path id", stored.ID)
	}
	s.expect(http.MethodGet, "/api/v1/dramas/d9", nil, "", http.StatusOK)

	mismatch := map[string]any{"id": "other", "title": "x", "year": 2017, "type": "KoreanDrama"}
	s.expect(http.MethodPut, "/api/v1/admin/dramas/d9", mismatch, admin, http.StatusBadRequest)

	invalid := map[string]any{"title": "x", "year": 2017, "type": "MartianDrama"}
	env = s.expect(http.MethodPut, "/api/v1/admin/dramas/d9", invalid, admin, http.StatusBadRequest)
	if env.code() != ErrCodeValidation {
		t.Errorf("invalid drama code = %q", env.code())
	}

	actor := map[string]any{"name": "Bae Doona", "dramas": []string{"d9"}}
	s.expect(http.MethodPut, "/api/v1/admin/actors/a2", actor, admin, http.StatusOK)
	env = s.expect(http.MethodGet, "/api/v1/dramas/d9/cast", nil, "", http.StatusOK)
	var cast []models.Actor
	env.decode(t, &cast)
	if len(cast) != 1 || cast[0].ID != "a2" {
		t.Errorf("cast after admin put = %+v", cast)
	}
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t)
	admin := s.signIn(adminEmail, "admin")

	s.expect(http.MethodGet, "/api/v1/dramas", nil, "", http.StatusOK)

	env := s.expect(http.MethodGet, "/api/v1/admin/stats", nil, admin, http.StatusOK)
	var stats AdminStats
	env.decode(t, &stats)
	if len(stats.Endpoints) == 0 {
		t.Error("expected endpoint stats after traffic")
	}
}
