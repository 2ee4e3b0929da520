// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/dramalog/internal/metrics"
)

// LoginLimiter throttles sign-in attempts per client IP with a token bucket.
type LoginLimiter struct {
	limiters map[string]*rateLimiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	maxIdle  time.Duration
	now      func() time.Time
}

// rateLimiterEntry wraps a rate limiter with last access time
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter allows perMinute attempts per IP, refilled evenly across
// the minute. perMinute <= 0 disables throttling.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	l := &LoginLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		burst:    perMinute,
		maxIdle:  time.Hour,
		now:      time.Now,
	}
	if perMinute > 0 {
		l.rate = rate.Every(time.Minute / time.Duration(perMinute))
	} else {
		l.rate = rate.Inf
	}
	return l
}

// Allow checks if an attempt from ip is allowed.
func (l *LoginLimiter) Allow(ip string) bool {
	if l.rate == rate.Inf {
		return true
	}

	l.mu.Lock()
	entry, exists := l.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	now := l.now()
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Cleanup removes limiters that have been idle longer than an hour.
func (l *LoginLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := l.now().Add(-l.maxIdle)
	removed := 0
	for ip, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, ip)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (l *LoginLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

// Middleware rejects throttled requests with 429 and records the client IP
// in the request context for security logging.
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !l.Allow(ip) {
			metrics.RecordAuthEvent("sign_in_throttled", false)
			w.Header().Set("Retry-After", "60")
			WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many sign-in attempts")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClientIP(r.Context(), ip)))
	})
}
