// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package catalog filters, sorts and pages the drama catalog, and reads and
// writes catalog documents (dramas and actors) through the gateway.
//
// Apply, Paginate and Browser never touch the network; they operate on a
// drama set that Service has already fetched.
package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/validation"
)

// Collections
const (
	DramasCollection = "dramas"
	ActorsCollection = "actors"
)

// maxConcurrentFetches bounds parallel drama fetches in RelatedByCast.
const maxConcurrentFetches = 8

// Service reads and writes catalog documents.
type Service struct {
	gw gateway.Gateway
}

// NewService creates a catalog service.
func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// ListDramas fetches the full catalog in store order.
func (s *Service) ListDramas(ctx context.Context) ([]models.Drama, error) {
	docs, err := s.gw.GetCollection(ctx, DramasCollection)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to list dramas")
		return nil, err
	}
	return gateway.DecodeAll[models.Drama](docs)
}

// GetDrama fetches one drama.
func (s *Service) GetDrama(ctx context.Context, id string) (*models.Drama, error) {
	if id == "" {
		return nil, apperr.Invalid("id", "drama id is required")
	}
	doc, err := s.gw.GetDocument(ctx, gateway.Join(DramasCollection, id))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("drama_id", id).Msg("failed to get drama")
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("drama", id)
	}
	return gateway.DecodeAs[models.Drama](doc)
}

// PutDrama creates or replaces a drama. The stored rating is derived from
// reviews and always carried over from the existing document.
func (s *Service) PutDrama(ctx context.Context, drama models.Drama) (*models.Drama, error) {
	if drama.ID == "" {
		return nil, apperr.Invalid("id", "drama id is required")
	}
	if verr := validation.ValidateStruct(&drama); verr != nil {
		return nil, verr
	}

	path := gateway.Join(DramasCollection, drama.ID)
	existing, err := s.gw.GetDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	drama.Rating = ""
	if existing != nil {
		if rating, ok := existing.Data["rating"].(string); ok {
			drama.Rating = rating
		}
	}

	if err := s.gw.SetDocument(ctx, path, drama, false); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("drama_id", drama.ID).Msg("failed to store drama")
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("drama_id", drama.ID).Bool("created", existing == nil).Msg("drama stored")
	return &drama, nil
}

// PutActor creates or replaces an actor.
func (s *Service) PutActor(ctx context.Context, actor models.Actor) (*models.Actor, error) {
	if actor.ID == "" {
		return nil, apperr.Invalid("id", "actor id is required")
	}
	if verr := validation.ValidateStruct(&actor); verr != nil {
		return nil, verr
	}
	if actor.Dramas == nil {
		actor.Dramas = []string{}
	}

	if err := s.gw.SetDocument(ctx, gateway.Join(ActorsCollection, actor.ID), actor, false); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("actor_id", actor.ID).Msg("failed to store actor")
		return nil, err
	}
	return &actor, nil
}

// GetActor fetches one actor.
func (s *Service) GetActor(ctx context.Context, id string) (*models.Actor, error) {
	if id == "" {
		return nil, apperr.Invalid("id", "actor id is required")
	}
	doc, err := s.gw.GetDocument(ctx, gateway.Join(ActorsCollection, id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("actor", id)
	}
	return gateway.DecodeAs[models.Actor](doc)
}

// CastOf returns the actors appearing in a drama.
func (s *Service) CastOf(ctx context.Context, dramaID string) ([]models.Actor, error) {
	docs, err := s.gw.QueryCollection(ctx, ActorsCollection, gateway.Filter{
		Field: "dramas",
		Op:    gateway.OpArrayContains,
		Value: dramaID,
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("drama_id", dramaID).Msg("failed to query cast")
		return nil, err
	}
	return gateway.DecodeAll[models.Actor](docs)
}

// RelatedByCast returns other dramas sharing at least one actor with
// dramaID, in the order they are first reached through the cast. Ids that
// no longer resolve to a drama are skipped.
func (s *Service) RelatedByCast(ctx context.Context, dramaID string) ([]models.Drama, error) {
	cast, err := s.CastOf(ctx, dramaID)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{dramaID: true}
	var ids []string
	for _, actor := range cast {
		for _, id := range actor.Dramas {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	found := make([]*models.Drama, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, id := range ids {
		g.Go(func() error {
			doc, err := s.gw.GetDocument(gctx, gateway.Join(DramasCollection, id))
			if err != nil {
				return err
			}
			if doc == nil {
				return nil
			}
			d, err := gateway.DecodeAs[models.Drama](doc)
			if err != nil {
				return fmt.Errorf("related drama %s: %w", id, err)
			}
			found[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("drama_id", dramaID).Msg("failed to resolve related dramas")
		return nil, err
	}

	related := make([]models.Drama, 0, len(ids))
	for _, d := range found {
		if d != nil {
			related = append(related, *d)
		}
	}
	return related, nil
}
