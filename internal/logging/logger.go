// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package logging provides centralized zerolog-based logging for Dramalog.
//
//   - JSON output for production, console output for development
//   - Context-aware logging with request ID propagation
//   - An slog adapter for libraries that require *slog.Logger (suture)
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("Server starting")
//	logging.Error().Err(err).Str("drama_id", id).Msg("Failed to load reviews")
//	logging.Ctx(ctx).Info().Msg("Request processed")
//
// Always terminate log chains with .Msg() or .Send().
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every line written by the global logger.
const ServiceName = "dramalog"

// Config holds logging configuration.
type Config struct {
	Level     string    // trace, debug, info, warn, error, disabled
	Format    string    // json or console
	Caller    bool      // add file:line
	Timestamp bool      // add a "time" field
	Output    io.Writer // default os.Stderr
}

// DefaultConfig is what the package runs with before Init is called.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Timestamp: true, Output: os.Stderr}
}

var global atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log during startup, before main calls Init
func init() {
	Init(DefaultConfig())
}

// Init replaces the global logger. It may be called again to reconfigure.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	ctx := zerolog.New(out).With().Str("service", ServiceName)
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	global.Store(&logger)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	return *global.Load()
}

// SetLogger installs l as the global logger. Tests use it with NewTestLogger.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout zerolog
func SetLogger(l zerolog.Logger) {
	global.Store(&l)
}

// With starts a child logger context from the global logger.
func With() zerolog.Context { return global.Load().With() }

func Debug() *zerolog.Event { return global.Load().Debug() }
func Info() *zerolog.Event  { return global.Load().Info() }
func Warn() *zerolog.Event  { return global.Load().Warn() }
func Error() *zerolog.Event { return global.Load().Error() }

// Fatal logs and then calls os.Exit(1).
func Fatal() *zerolog.Event { return global.Load().Fatal() }

// WithComponent returns a child logger tagged with component.
//
//	hubLogger := logging.WithComponent("websocket-hub")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// NewTestLogger writes JSON lines to w without the service field, so tests
// can assert on exact output.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
