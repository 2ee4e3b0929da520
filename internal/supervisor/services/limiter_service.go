// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package services

import (
	"context"
	"time"
)

// LimiterJanitor evicts idle per-key state. Satisfied by *auth.LoginLimiter.
type LimiterJanitor interface {
	Run(ctx context.Context, interval time.Duration)
}

// LimiterCleanupService runs a limiter's cleanup loop under the supervisor.
type LimiterCleanupService struct {
	limiter  LimiterJanitor
	interval time.Duration
}

// NewLimiterCleanupService creates the service. A non-positive interval
// means 5 minutes.
func NewLimiterCleanupService(limiter LimiterJanitor, interval time.Duration) *LimiterCleanupService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &LimiterCleanupService{limiter: limiter, interval: interval}
}

// Serve implements suture.Service.
func (l *LimiterCleanupService) Serve(ctx context.Context) error {
	l.limiter.Run(ctx, l.interval)
	return ctx.Err()
}

func (l *LimiterCleanupService) String() string {
	return "login-limiter-cleanup"
}
