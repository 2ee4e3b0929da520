// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/metrics"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	var capturedID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = logging.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	responseID := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("Response X-Request-ID is not a valid UUID: %v", err)
	}
	if capturedID != responseID {
		t.Errorf("Context ID (%s) doesn't match response header ID (%s)", capturedID, responseID)
	}
}

func TestRequestID_UpstreamID(t *testing.T) {
	tests := []struct {
		name     string
		upstream string
		keep     bool
	}{
		{"kept", "edge-1234", true},
		{"too long", strings.Repeat("a", 65), false},
		{"control characters", "bad\nid", false},
		{"spaces", "has space", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.upstream)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if (got == tt.upstream) != tt.keep {
				t.Errorf("X-Request-ID = %q, keep upstream = %v", got, tt.keep)
			}
		})
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/dramas/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/dramas/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"d1", "d2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dramas/"+id, nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("request counter delta = %v, want 2", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should only be sent over TLS")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS expected behind TLS proxy")
	}
}

func TestPerformanceMonitor_Stats(t *testing.T) {
	pm := NewPerformanceMonitor(10, time.Second)
	for _, d := range []int64{10, 20, 30, 40} {
		pm.Record(RequestSample{Route: "/api/v1/dramas", Method: http.MethodGet, DurationMS: d})
	}
	pm.Record(RequestSample{Route: "/health", Method: http.MethodGet, DurationMS: 1})

	stats := pm.Stats()
	if len(stats) != 2 {
		t.Fatalf("Stats() len = %d, want 2", len(stats))
	}
	top := stats[0]
	if top.Endpoint != "GET /api/v1/dramas" || top.RequestCount != 4 {
		t.Errorf("top = %+v", top)
	}
	if top.AvgDuration != 25 || top.P50Duration != 20 || top.MaxDuration != 40 {
		t.Errorf("durations = %+v", top)
	}
}

func TestPerformanceMonitor_WindowEviction(t *testing.T) {
	pm := NewPerformanceMonitor(2, time.Second)
	pm.Record(RequestSample{Route: "/a", Method: http.MethodGet})
	pm.Record(RequestSample{Route: "/b", Method: http.MethodGet})
	pm.Record(RequestSample{Route: "/c", Method: http.MethodGet})

	for _, s := range pm.Stats() {
		if s.Endpoint == "GET /a" {
			t.Error("oldest sample should be evicted")
		}
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	pm := NewPerformanceMonitor(10, time.Second)
	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/api/v1/actors/{id}", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/actors/a1", nil))

	stats := pm.Stats()
	if len(stats) != 1 || stats[0].Endpoint != "GET /api/v1/actors/{id}" {
		t.Errorf("Stats() = %+v", stats)
	}
}
