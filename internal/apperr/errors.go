// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package apperr defines the error kinds shared by the domain engines.
//
// Three kinds are surfaced to callers:
//   - remote I/O failures, reported by the gateway package as *gateway.Error
//   - validation failures, reported as *ValidationError before any remote call
//   - missing sign-in, reported as ErrSignInRequired before any remote call
//
// None of them are retried automatically.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrSignInRequired is returned when an operation needs a signed-in user.
	ErrSignInRequired = errors.New("must sign in")

	// ErrForbidden is returned when a signed-in user acts on something they do not own.
	ErrForbidden = errors.New("not allowed")

	// ErrNotFound is returned when the target of an operation does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError is a user-facing rejection of invalid input.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid creates a ValidationError for field.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFound wraps ErrNotFound with the kind of entity that is missing.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}
