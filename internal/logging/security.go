// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityLogger logs identity events with sensitive values masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: WithComponent("auth")}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// LogSignUp logs a new account registration.
func (l *SecurityLogger) LogSignUp(userID, email string) {
	l.logger.Info().
		Str("event", "sign_up").
		Str("user_id", userID).
		Str("email", SanitizeEmail(email)).
		Msg("account created")
}

// LogSignIn logs a successful sign-in.
func (l *SecurityLogger) LogSignIn(userID, sessionID, ip string) {
	l.logger.Info().
		Str("event", "sign_in").
		Str("user_id", userID).
		Str("session_id", SanitizeToken(sessionID)).
		Str("ip", ip).
		Msg("user signed in")
}

// LogSignInFailure logs a rejected sign-in attempt.
func (l *SecurityLogger) LogSignInFailure(email, ip, reason string) {
	l.logger.Warn().
		Str("event", "sign_in_failed").
		Str("email", SanitizeEmail(email)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("sign-in rejected")
}

// LogSignOut logs a sign-out.
func (l *SecurityLogger) LogSignOut(userID, sessionID string) {
	l.logger.Info().
		Str("event", "sign_out").
		Str("user_id", userID).
		Str("session_id", SanitizeToken(sessionID)).
		Msg("user signed out")
}

// SanitizeToken masks a token, showing only first and last 4 characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeEmail masks the local part of an email address.
// Example: "john.doe@example.com" -> "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

// SanitizeLogValue strips control characters from user-supplied values
// and truncates them, preventing log injection.
func SanitizeLogValue(value string) string {
	const maxLen = 200
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, value)
	if len(cleaned) > maxLen {
		return cleaned[:maxLen] + "..."
	}
	return cleaned
}
