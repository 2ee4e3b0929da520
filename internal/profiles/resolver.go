// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package profiles reads and updates user profile documents and joins
// profile display data onto reviews, articles and comments.
package profiles

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/dramalog/internal/cache"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/models"
)

// UsersCollection holds user profile documents.
const UsersCollection = "users"

// UnknownUserName is shown for authors whose profile no longer exists.
const UnknownUserName = "Unknown user"

// DefaultConcurrency bounds parallel profile fetches.
const DefaultConcurrency = 8

// Resolver fetches profiles for display joins.
type Resolver struct {
	gw    gateway.Gateway
	limit int
	cache *cache.LRU[string, models.Profile]
}

// NewResolver creates a resolver with DefaultConcurrency.
func NewResolver(gw gateway.Gateway) *Resolver {
	return &Resolver{gw: gw, limit: DefaultConcurrency}
}

// WithConcurrency returns a copy limited to n parallel fetches.
func (r *Resolver) WithConcurrency(n int) *Resolver {
	if n < 1 {
		n = 1
	}
	return &Resolver{gw: r.gw, limit: n, cache: r.cache}
}

// WithCache returns a copy that serves repeat lookups from c. Placeholders
// for missing profiles are never cached.
func (r *Resolver) WithCache(c *cache.LRU[string, models.Profile]) *Resolver {
	return &Resolver{gw: r.gw, limit: r.limit, cache: c}
}

// Invalidate drops the cached profile of userID.
func (r *Resolver) Invalidate(userID string) {
	if r.cache != nil {
		r.cache.Remove(userID)
	}
}

// Resolve fetches the profiles for ids concurrently. Duplicate ids are
// fetched once. The result holds an entry for every requested id; missing
// profiles get UnknownUserName. Resolve returns only after every fetch has
// finished, and any failure fails the whole call.
func (r *Resolver) Resolve(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	out := make(map[string]models.Profile, len(ids))
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if r.cache != nil {
			if p, ok := r.cache.Get(id); ok {
				out[id] = p
				continue
			}
		}
		unique = append(unique, id)
	}

	results := make([]models.Profile, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i, id := range unique {
		g.Go(func() error {
			p, err := r.fetch(gctx, id)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, id := range unique {
		out[id] = results[i]
	}
	return out, nil
}

func (r *Resolver) fetch(ctx context.Context, id string) (models.Profile, error) {
	doc, err := r.gw.GetDocument(ctx, gateway.Join(UsersCollection, id))
	if err != nil {
		return models.Profile{}, err
	}
	if doc == nil {
		return models.Profile{ID: id, UserName: UnknownUserName}, nil
	}
	user, err := gateway.DecodeAs[models.User](doc)
	if err != nil {
		return models.Profile{}, err
	}
	p := user.Profile()
	if r.cache != nil {
		r.cache.Add(id, p)
	}
	return p, nil
}
