// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package main is the entry point for the Dramalog server.
//
// Dramalog serves a drama catalog with ratings and reviews, per-user
// watchlists and profiles, and per-category discussion boards. Clients talk
// to a JSON API under /api/v1 and receive live updates over /ws.
//
// # Startup
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Logging: zerolog, plus an slog bridge for the supervisor
//  3. Store: BadgerDB behind a circuit-broken document gateway
//  4. Engines: catalog, reviews, watchlist, forum and profiles
//  5. Authentication: JWT with Badger-backed sessions, casbin RBAC
//  6. HTTP server: chi router with CORS, rate limits and metrics
//  7. Supervisor tree: store GC, websocket hub, HTTP server
//
// # Configuration
//
// Required:
//   - JWT_SECRET: 32+ character signing secret
//
// Common:
//   - HTTP_PORT, HTTP_HOST
//   - DATA_DIR, STORE_IN_MEMORY
//   - BLOB_ROOT, BLOB_PUBLIC_URL
//   - ADMIN_EMAIL: account granted the admin role on sign-up
//   - CORS_ORIGINS: comma-separated allowed origins
//   - LOG_LEVEL, LOG_FORMAT
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests, websocket clients are closed, and services that fail
// to stop in time are logged before exit.
package main
