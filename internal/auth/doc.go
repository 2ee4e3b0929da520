// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

/*
Package auth provides the session and identity layer.

The built-in Provider registers accounts with bcrypt password hashes, signs
users in with HS256 JWTs and tracks every issued token as a session in a
SessionStore. A token is only accepted while its session exists, so signing
out revokes it immediately.

Key Components:

  - Identity: the interface domain code consumes (current user, sign-in,
    sign-out, change notifications)
  - Provider: the built-in Identity backed by the document gateway
  - JWTManager: token generation and validation using HMAC-SHA256
  - SessionStore: MemorySessionStore for tests, BadgerSessionStore for servers
  - Middleware: Authenticate and Optional chi-compatible middleware
  - LoginLimiter: per-IP token bucket for the sign-in endpoint

Usage Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    log.Fatal(err)
	}
	provider := auth.NewProvider(gw, profileService, jwtManager,
	    auth.NewBadgerSessionStore(db), cfg.Security)
	mw := auth.NewMiddleware(provider)
	r.With(mw.Authenticate).Get("/api/v1/me/watchlist", handler)
*/
package auth
