// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package catalog

import (
	"sync"

	"github.com/tomtom215/dramalog/internal/models"
)

// Page sizes
const (
	CatalogPageSize = 12
	ForumPageSize   = 15
)

// Paginate returns the first pages*pageSize items. A page count below one
// is treated as one.
func Paginate[T any](items []T, pages, pageSize int) []T {
	if pages < 1 {
		pages = 1
	}
	if pageSize < 1 {
		pageSize = CatalogPageSize
	}
	n := pages * pageSize
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// HasMore reports whether items extend past the first pages*pageSize.
func HasMore(total, pages, pageSize int) bool {
	if pages < 1 {
		pages = 1
	}
	return pages*pageSize < total
}

// Browser holds one viewer's catalog state: the fetched set, the active
// filter and how many pages are revealed. The page count only grows,
// except that a changed filter resets it to one.
type Browser struct {
	mu       sync.RWMutex
	dramas   []models.Drama
	filter   Filter
	opts     Options
	pageSize int
	pages    int
	view     []models.Drama
}

// NewBrowser creates a browser over an already fetched drama set.
func NewBrowser(dramas []models.Drama, pageSize int, opts Options) *Browser {
	if pageSize < 1 {
		pageSize = CatalogPageSize
	}
	b := &Browser{
		dramas:   dramas,
		opts:     opts,
		pageSize: pageSize,
		pages:    1,
	}
	b.view = Apply(dramas, b.filter, opts)
	return b
}

// SetFilter applies f. It reports false and keeps the page count when f
// equals the current filter.
func (b *Browser) SetFilter(f Filter) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f.Equal(b.filter) {
		return false
	}
	b.filter = f
	b.view = Apply(b.dramas, f, b.opts)
	b.pages = 1
	return true
}

// LoadMore reveals one more page. It reports false when everything is
// already visible.
func (b *Browser) LoadMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !HasMore(len(b.view), b.pages, b.pageSize) {
		return false
	}
	b.pages++
	return true
}

// Filter returns the active filter.
func (b *Browser) Filter() Filter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter
}

// Pages returns the number of revealed pages.
func (b *Browser) Pages() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pages
}

// Total returns the size of the filtered view.
func (b *Browser) Total() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.view)
}

// Visible returns the revealed part of the filtered view.
func (b *Browser) Visible() []models.Drama {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Paginate(b.view, b.pages, b.pageSize)
}

// HasMore reports whether LoadMore would reveal anything.
func (b *Browser) HasMore() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return HasMore(len(b.view), b.pages, b.pageSize)
}
