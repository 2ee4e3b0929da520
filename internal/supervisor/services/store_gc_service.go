// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/metrics"
)

// ValueLogCollector is the GC subset of *badger.DB.
type ValueLogCollector interface {
	RunValueLogGC(discardRatio float64) error
}

// StoreGCService periodically reclaims space in the document store's value
// log. Do not run it against an in-memory store.
type StoreGCService struct {
	db           ValueLogCollector
	interval     time.Duration
	discardRatio float64
}

// NewStoreGCService creates the service. Non-positive arguments fall back to
// a 10 minute interval and a 0.5 discard ratio.
func NewStoreGCService(db ValueLogCollector, interval time.Duration, discardRatio float64) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = 0.5
	}
	return &StoreGCService{db: db, interval: interval, discardRatio: discardRatio}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(); err != nil {
				return err
			}
		}
	}
}

// RunOnce collects until badger reports nothing left to rewrite and returns
// the number of files rewritten.
func (s *StoreGCService) RunOnce() error {
	rewritten := 0
	for {
		err := s.db.RunValueLogGC(s.discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			metrics.RecordStoreGC("error")
			return fmt.Errorf("value log gc: %w", err)
		}
		rewritten++
	}

	if rewritten == 0 {
		metrics.RecordStoreGC("nothing")
		return nil
	}
	metrics.RecordStoreGC("rewritten")
	logging.Debug().Int("files", rewritten).Msg("Value log GC complete")
	return nil
}

func (s *StoreGCService) String() string {
	return "store-gc"
}
