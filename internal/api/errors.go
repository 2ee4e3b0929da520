// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/validation"
)

// errorResponse is the wire form of a domain error.
type errorResponse struct {
	status  int
	code    string
	message string
	details interface{}
}

// classifyError maps a domain error to its HTTP status and code. Caller
// mistakes are checked before remote I/O failures, since a remote
// not-found is wrapped in *gateway.Error too.
func classifyError(err error) errorResponse {
	var reqErr *validation.RequestValidationError
	if errors.As(err, &reqErr) {
		apiErr := reqErr.ToAPIError()
		return errorResponse{http.StatusBadRequest, ErrCodeValidation, apiErr.Message, apiErr.Details}
	}

	var fieldErr *apperr.ValidationError
	if errors.As(err, &fieldErr) {
		var details interface{}
		if fieldErr.Field != "" {
			details = map[string]string{"field": fieldErr.Field}
		}
		return errorResponse{http.StatusBadRequest, ErrCodeValidation, fieldErr.Error(), details}
	}

	switch {
	case errors.Is(err, apperr.ErrSignInRequired):
		return errorResponse{status: http.StatusUnauthorized, code: ErrCodeAuthRequired, message: "sign in required"}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errorResponse{status: http.StatusUnauthorized, code: ErrCodeInvalidCredentials, message: err.Error()}
	case errors.Is(err, auth.ErrEmailTaken):
		return errorResponse{status: http.StatusConflict, code: ErrCodeConflict, message: err.Error()}
	case errors.Is(err, apperr.ErrForbidden):
		return errorResponse{status: http.StatusForbidden, code: ErrCodeForbidden, message: "you may only change your own posts"}
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, gateway.ErrNotFound):
		return errorResponse{status: http.StatusNotFound, code: ErrCodeNotFound, message: err.Error()}
	case errors.Is(err, gateway.ErrInvalidPath):
		return errorResponse{status: http.StatusBadRequest, code: ErrCodeBadRequest, message: "invalid identifier"}
	case errors.Is(err, gateway.ErrUnavailable):
		return errorResponse{status: http.StatusServiceUnavailable, code: ErrCodeServiceUnavailable, message: "document store temporarily unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return errorResponse{status: http.StatusGatewayTimeout, code: ErrCodeStore, message: "document store timed out"}
	}

	var storeErr *gateway.Error
	if errors.As(err, &storeErr) {
		return errorResponse{status: http.StatusBadGateway, code: ErrCodeStore, message: "document store request failed"}
	}

	return errorResponse{status: http.StatusInternalServerError, code: ErrCodeInternalError, message: "internal error"}
}

// writeDomainError logs err and writes its classified response. Server-side
// failures log at error level and caller mistakes at debug.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	resp := classifyError(err)

	event := logFor(r).Debug()
	if resp.status >= http.StatusInternalServerError {
		event = logFor(r).Error()
	}
	event.Err(err).Int("status", resp.status).Str("code", resp.code).Msg("request failed")

	NewResponseWriter(w, r).ErrorWithDetails(resp.status, resp.code, resp.message, resp.details)
}
