// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package watchlist keeps a user's saved dramas in the dramaList field of
// their profile document.
//
// Every change writes the whole list back with a merge. Concurrent changes
// from two sessions of the same user are last-writer-wins.
package watchlist

import (
	"context"
	"fmt"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/metrics"
	"github.com/tomtom215/dramalog/internal/models"
)

// ErrDramaNotFound is returned by Add for ids with no drama document.
var ErrDramaNotFound = fmt.Errorf("drama: %w", apperr.ErrNotFound)

// Manager reads and writes watchlists.
type Manager struct {
	gw gateway.Gateway
}

// NewManager creates a watchlist manager.
func NewManager(gw gateway.Gateway) *Manager {
	return &Manager{gw: gw}
}

func userPath(userID string) string {
	return gateway.Join("users", userID)
}

// Get returns the user's watchlist.
func (m *Manager) Get(ctx context.Context, userID string) (List, error) {
	if userID == "" {
		return List{}, apperr.ErrSignInRequired
	}
	return m.load(ctx, userID)
}

func (m *Manager) load(ctx context.Context, userID string) (List, error) {
	doc, err := m.gw.GetDocument(ctx, userPath(userID))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to load watchlist")
		return List{}, err
	}
	if doc == nil {
		return List{}, apperr.NotFound("user", userID)
	}
	user, err := gateway.DecodeAs[models.User](doc)
	if err != nil {
		return List{}, err
	}
	return NewList(user.DramaList), nil
}

func (m *Manager) save(ctx context.Context, userID string, list List) error {
	err := m.gw.SetDocument(ctx, userPath(userID), map[string]any{"dramaList": list.IDs()}, true)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("size", list.Len()).Msg("failed to save watchlist")
	}
	return err
}

// Add saves dramaID to the user's watchlist. Adding a saved drama is a
// no-op that still returns the current list.
func (m *Manager) Add(ctx context.Context, userID, dramaID string) (List, error) {
	if userID == "" {
		return List{}, apperr.ErrSignInRequired
	}
	if dramaID == "" {
		return List{}, apperr.Invalid("dramaId", "drama id is required")
	}

	drama, err := m.gw.GetDocument(ctx, gateway.Join("dramas", dramaID))
	if err != nil {
		return List{}, err
	}
	if drama == nil {
		return List{}, ErrDramaNotFound
	}

	list, err := m.load(ctx, userID)
	if err != nil {
		return List{}, err
	}
	if list.Contains(dramaID) {
		return list, nil
	}
	list = list.Add(dramaID)
	if err := m.save(ctx, userID, list); err != nil {
		return List{}, err
	}
	metrics.RecordWatchlistChange("add")
	return list, nil
}

// Remove drops dramaID from the user's watchlist. Removing an id that is not
// saved is a no-op.
func (m *Manager) Remove(ctx context.Context, userID, dramaID string) (List, error) {
	if userID == "" {
		return List{}, apperr.ErrSignInRequired
	}

	list, err := m.load(ctx, userID)
	if err != nil {
		return List{}, err
	}
	if !list.Contains(dramaID) {
		return list, nil
	}
	list = list.Remove(dramaID)
	if err := m.save(ctx, userID, list); err != nil {
		return List{}, err
	}
	metrics.RecordWatchlistChange("remove")
	return list, nil
}

// Dramas resolves the user's watchlist into drama records in list order.
// Saved ids whose drama no longer exists are skipped.
func (m *Manager) Dramas(ctx context.Context, userID string) ([]models.Drama, error) {
	list, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	dramas := make([]models.Drama, 0, list.Len())
	for _, id := range list.IDs() {
		doc, err := m.gw.GetDocument(ctx, gateway.Join("dramas", id))
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		d, err := gateway.DecodeAs[models.Drama](doc)
		if err != nil {
			return nil, err
		}
		dramas = append(dramas, *d)
	}
	return dramas, nil
}
