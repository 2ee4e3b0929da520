// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status        string  `json:"status"` // "healthy" or "degraded"
	Version       string  `json:"version,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	StoreBreaker  string  `json:"store_breaker,omitempty"`
	WSClients     int     `json:"ws_clients"`
}

// Version is set at build time.
var Version = "dev"

// Health reports liveness. It answers 503 while the store breaker is open so
// load balancers can drain the instance.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:        "healthy",
		Version:       Version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		status.WSClients = h.hub.GetClientCount()
	}
	if h.breaker != nil {
		status.StoreBreaker = h.breaker.State()
	}

	rw := NewResponseWriter(w, r)
	if status.StoreBreaker == "open" {
		status.Status = "degraded"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: status, Meta: rw.meta()})
		return
	}
	rw.Success(status)
}
