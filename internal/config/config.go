// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// config file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	store, err := gateway.OpenBadgerStore(&cfg.Store)
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Blob     BlobConfig     `koanf:"blob"`
	Security SecurityConfig `koanf:"security"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Forum    ForumConfig    `koanf:"forum"`
	Reviews  ReviewsConfig  `koanf:"reviews"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// StoreConfig holds document store settings.
//
// Environment Variables:
//   - DATA_DIR: BadgerDB directory (default: /data/dramalog)
//   - STORE_IN_MEMORY: Run BadgerDB without persistence (default: false)
//   - STORE_GC_INTERVAL: Value log GC interval (default: 10m)
//   - STORE_GC_DISCARD_RATIO: Value log GC discard ratio (default: 0.5)
type StoreConfig struct {
	Path           string        `koanf:"path"`
	InMemory       bool          `koanf:"in_memory"`
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`
}

// BlobConfig holds blob storage settings for uploaded images.
type BlobConfig struct {
	// Root is the directory blobs are written to.
	Root string `koanf:"root"`

	// PublicURL is the URL prefix returned for uploaded blobs.
	// The server mounts Root under /blobs, so the default points there.
	PublicURL string `koanf:"public_url"`

	// MaxUploadBytes caps a single upload.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// SecurityConfig holds authentication and authorization settings
type SecurityConfig struct {
	JWTSecret          string        `koanf:"jwt_secret"`
	SessionTimeout     time.Duration `koanf:"session_timeout"`
	AdminEmail         string        `koanf:"admin_email"`
	RateLimitReqs      int           `koanf:"rate_limit_reqs"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled  bool          `koanf:"rate_limit_disabled"`
	LoginRatePerMinute int           `koanf:"login_rate_per_minute"`
	CORSOrigins        []string      `koanf:"cors_origins"`
}

// CatalogConfig holds drama catalog browsing settings.
type CatalogConfig struct {
	PageSize int `koanf:"page_size"`

	// NewestYear is the release year the "newest" option restricts to.
	NewestYear int `koanf:"newest_year"`
}

// ForumConfig holds forum browsing settings.
type ForumConfig struct {
	PageSize int `koanf:"page_size"`
}

// ReviewsConfig holds review submission limits.
type ReviewsConfig struct {
	MaxTextLength int `koanf:"max_text_length"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load builds the configuration using Koanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
