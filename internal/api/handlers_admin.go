// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/dramalog/internal/middleware"
)

// AdminStats is the /api/v1/admin/stats payload.
type AdminStats struct {
	UptimeSeconds float64                    `json:"uptime_seconds"`
	StoreBreaker  string                     `json:"store_breaker,omitempty"`
	WSClients     int                        `json:"ws_clients"`
	Endpoints     []middleware.EndpointStats `json:"endpoints"`
}

// AdminStats reports per-endpoint latency and runtime state.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats := AdminStats{
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Endpoints:     h.perf.Stats(),
	}
	if stats.Endpoints == nil {
		stats.Endpoints = []middleware.EndpointStats{}
	}
	if h.hub != nil {
		stats.WSClients = h.hub.GetClientCount()
	}
	if h.breaker != nil {
		stats.StoreBreaker = h.breaker.State()
	}
	NewResponseWriter(w, r).Success(stats)
}
