// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "a-very-long-test-secret-with-more-than-32-chars"

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Catalog.PageSize != 12 {
		t.Errorf("Catalog.PageSize = %d, want 12", cfg.Catalog.PageSize)
	}
	if cfg.Forum.PageSize != 15 {
		t.Errorf("Forum.PageSize = %d, want 15", cfg.Forum.PageSize)
	}
	if cfg.Reviews.MaxTextLength != 50 {
		t.Errorf("Reviews.MaxTextLength = %d, want 50", cfg.Reviews.MaxTextLength)
	}
	if cfg.Security.SessionTimeout != 24*time.Hour {
		t.Errorf("Security.SessionTimeout = %v, want 24h", cfg.Security.SessionTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DATA_DIR", "store.path"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"CATALOG_NEWEST_YEAR", "catalog.newest_year"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CATALOG_PAGE_SIZE", "24")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Catalog.PageSize != 24 {
		t.Errorf("Catalog.PageSize = %d, want 24", cfg.Catalog.PageSize)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7070
forum:
  page_size: 30
security:
  jwt_secret: ` + testSecret + `
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Forum.PageSize != 30 {
		t.Errorf("Forum.PageSize = %d, want 30", cfg.Forum.PageSize)
	}
	if cfg.Catalog.PageSize != 12 {
		t.Errorf("Catalog.PageSize = %d, want default 12", cfg.Catalog.PageSize)
	}
}

func TestLoadWithKoanf_MissingSecret(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("LoadWithKoanf() expected error for missing JWT_SECRET")
	}
}
