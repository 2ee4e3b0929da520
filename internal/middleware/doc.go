// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

/*
Package middleware provides chi-compatible HTTP middleware shared by the API
router.

Components:

  - RequestID: assigns or propagates X-Request-ID and seeds the logging context
  - PrometheusMetrics: request count, latency and in-flight gauges keyed by
    chi route pattern
  - SecurityHeaders: CSP, frame, sniffing and referrer headers
  - PerformanceMonitor: sliding window of request latencies with per-route
    percentiles, served on the admin stats endpoint

Usage:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)
*/
package middleware
