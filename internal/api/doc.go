// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

/*
Package api provides the HTTP API on a chi router.

Every JSON response uses one envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "pagination": {...}}
	}

Errors set success to false and carry {code, message, details}. Domain errors
are translated in one place (writeDomainError) so handlers only decide what to
call, not how failures look on the wire.

Route groups:

  - /health, /metrics, /ws: infrastructure
  - /api/v1/auth: sign-up, login, logout, me (login is throttled per IP)
  - /api/v1/dramas, /api/v1/actors: public catalog reads
  - /api/v1/me: watchlist and profile (authenticated)
  - /api/v1/boards, /api/v1/articles: forum (reads public, writes authenticated)
  - /api/v1/admin: catalog editing (admin role, enforced by Casbin)
*/
package api
