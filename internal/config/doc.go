// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

/*
Package config provides centralized configuration management for Dramalog.

Configuration is layered with Koanf v2: struct defaults first, then an optional
YAML file, then environment variables. The result is validated before it is
returned, and every validation error names the environment variable to fix.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, ENVIRONMENT

Document store:
  - DATA_DIR: BadgerDB directory (default: /data/dramalog)
  - STORE_IN_MEMORY: Use an in-memory store (default: false)
  - STORE_GC_INTERVAL, STORE_GC_DISCARD_RATIO

Blob storage:
  - BLOB_ROOT, BLOB_PUBLIC_URL, BLOB_MAX_UPLOAD_BYTES

Security:
  - JWT_SECRET (required, 32+ characters)
  - SESSION_TIMEOUT (default: 24h)
  - ADMIN_EMAIL: Account that receives the admin role at sign-up
  - RATE_LIMIT_REQS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - LOGIN_RATE_PER_MINUTE
  - CORS_ORIGINS: Comma-separated list

Catalog and forum:
  - CATALOG_PAGE_SIZE (default: 12)
  - CATALOG_NEWEST_YEAR (default: 2023)
  - FORUM_PAGE_SIZE (default: 15)
  - REVIEW_MAX_LENGTH (default: 50)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
