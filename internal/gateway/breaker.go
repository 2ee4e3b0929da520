// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/metrics"
)

// Breaker wraps a Gateway with a circuit breaker.
//
// Configuration:
//   - Max 3 requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
//
// Absent documents and invalid paths are caller errors and never count as
// failures. While open, every call fails with ErrUnavailable.
type Breaker struct {
	inner Gateway
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

// NewBreaker wraps inner in a circuit breaker reported under name.
func NewBreaker(name string, inner Gateway) *Breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: isSuccessful,

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Breaker{inner: inner, cb: cb, name: name}
}

// State returns the breaker state name: closed, half-open or open.
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

func (b *Breaker) execute(op, path string, fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		logging.Warn().Err(err).Str("op", op).Str("path", path).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, &Error{Op: op, Path: path, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}

	if isSuccessful(err) {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return result, wrap(op, path, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
	return nil, wrap(op, path, err)
}

// GetCollection runs the wrapped GetCollection through the breaker.
func (b *Breaker) GetCollection(ctx context.Context, path string) ([]Document, error) {
	result, err := b.execute("get_collection", path, func() (any, error) {
		return b.inner.GetCollection(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Document), nil
}

// GetDocument runs the wrapped GetDocument through the breaker.
func (b *Breaker) GetDocument(ctx context.Context, path string) (*Document, error) {
	result, err := b.execute("get", path, func() (any, error) {
		return b.inner.GetDocument(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Document), nil
}

// QueryCollection runs the wrapped QueryCollection through the breaker.
func (b *Breaker) QueryCollection(ctx context.Context, path string, filter Filter) ([]Document, error) {
	result, err := b.execute("query", path, func() (any, error) {
		return b.inner.QueryCollection(ctx, path, filter)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Document), nil
}

// SetDocument runs the wrapped SetDocument through the breaker.
func (b *Breaker) SetDocument(ctx context.Context, path string, data any, merge bool) error {
	_, err := b.execute("set", path, func() (any, error) {
		return nil, b.inner.SetDocument(ctx, path, data, merge)
	})
	return err
}

// UpdateDocument runs the wrapped UpdateDocument through the breaker.
func (b *Breaker) UpdateDocument(ctx context.Context, path string, fields map[string]any) error {
	_, err := b.execute("update", path, func() (any, error) {
		return nil, b.inner.UpdateDocument(ctx, path, fields)
	})
	return err
}

// DeleteDocument runs the wrapped DeleteDocument through the breaker.
func (b *Breaker) DeleteDocument(ctx context.Context, path string) error {
	_, err := b.execute("delete", path, func() (any, error) {
		return nil, b.inner.DeleteDocument(ctx, path)
	})
	return err
}

// UploadBlob runs the wrapped UploadBlob through the breaker and returns
// the blob URL.
func (b *Breaker) UploadBlob(ctx context.Context, path string, r io.Reader) (string, error) {
	result, err := b.execute("upload", path, func() (any, error) {
		return b.inner.UploadBlob(ctx, path, r)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// isSuccessful reports whether err leaves the store healthy.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidPath) ||
		errors.Is(err, context.Canceled)
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
