// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package metrics exposes Prometheus instrumentation for Dramalog:
// API latency and throughput, document store operations, the store circuit
// breaker, domain activity (reviews, comments, watchlists), WebSocket
// connections and identity events.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Document Store Metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "collection", "result"}, // result: "success", "error"
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	BlobUploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blob_upload_bytes_total",
			Help: "Total number of bytes written to blob storage",
		},
	)

	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_gc_runs_total",
			Help: "Total number of value log GC passes",
		},
		[]string{"result"}, // result: "rewritten", "nothing", "error"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Domain Metrics
	ReviewsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_operations_total",
			Help: "Total number of review submissions, updates and removals",
		},
		[]string{"operation"}, // "submit", "update", "remove"
	)

	RatingRecomputations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drama_rating_recomputations_total",
			Help: "Total number of drama mean rating recomputations",
		},
	)

	ForumOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_operations_total",
			Help: "Total number of forum write operations",
		},
		[]string{"operation"}, // "post_comment", "edit_comment", "delete_comment", "create_article", ...
	)

	ForumRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_rejections_total",
			Help: "Total number of forum writes rejected before reaching the store",
		},
		[]string{"reason"}, // "invalid_floor", "empty", "forbidden", "sign_in"
	)

	WatchlistChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_changes_total",
			Help: "Total number of watchlist add and remove operations",
		},
		[]string{"operation"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages broadcast",
		},
		[]string{"type"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped because the broadcast queue was full",
		},
	)

	// Identity Metrics
	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Total number of identity events",
		},
		[]string{"event", "result"}, // event: "sign_up", "sign_in", "sign_out"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreOperation records a document store operation against a collection.
func RecordStoreOperation(operation, collection string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(operation, collection, result).Inc()
	StoreOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
}

// RecordBlobUpload records the size of an uploaded blob.
func RecordBlobUpload(bytes int64) {
	BlobUploadBytes.Add(float64(bytes))
}

// RecordStoreGC records the outcome of a value log GC pass.
func RecordStoreGC(result string) {
	StoreGCRuns.WithLabelValues(result).Inc()
}

// RecordReviewOperation records a review write.
func RecordReviewOperation(operation string) {
	ReviewsSubmitted.WithLabelValues(operation).Inc()
}

// RecordRatingRecompute records a mean rating recomputation.
func RecordRatingRecompute() {
	RatingRecomputations.Inc()
}

// RecordForumOperation records a successful forum write.
func RecordForumOperation(operation string) {
	ForumOperations.WithLabelValues(operation).Inc()
}

// RecordForumRejection records a forum write rejected before any store call.
func RecordForumRejection(reason string) {
	ForumRejections.WithLabelValues(reason).Inc()
}

// RecordWatchlistChange records a watchlist add or remove.
func RecordWatchlistChange(operation string) {
	WatchlistChanges.WithLabelValues(operation).Inc()
}

// RecordWSMessage records a broadcast WebSocket message by type.
func RecordWSMessage(messageType string) {
	WSMessagesSent.WithLabelValues(messageType).Inc()
}

// RecordAuthEvent records an identity event.
func RecordAuthEvent(event string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthEvents.WithLabelValues(event, result).Inc()
}
