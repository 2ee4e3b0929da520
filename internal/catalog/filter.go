// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package catalog

import (
	"sort"
	"strings"

	"github.com/tomtom215/dramalog/internal/models"
)

// SortKey selects the catalog ordering.
type SortKey string

const (
	SortNone         SortKey = "none"
	SortNewest       SortKey = "newest"
	SortHighestRated SortKey = "highest-rated"
	SortYearDesc     SortKey = "year-desc"
	SortYearAsc      SortKey = "year-asc"
)

// ParseSort maps a query value to a SortKey. Unknown values mean SortNone.
func ParseSort(s string) SortKey {
	switch k := SortKey(s); k {
	case SortNewest, SortHighestRated, SortYearDesc, SortYearAsc:
		return k
	default:
		return SortNone
	}
}

// DefaultNewestYear is the year the newest option restricts to when no
// year is configured.
const DefaultNewestYear = 2023

// Filter is the user's current catalog selection.
type Filter struct {
	// Type is a drama type or "all". Empty and unknown values mean all.
	Type      string
	Genres    []string
	Years     []int
	Platforms []string
	Sort      SortKey
	Query     string
}

// Options carries catalog settings that are not part of the selection.
type Options struct {
	// NewestYear is the only year kept by SortNewest.
	NewestYear int
}

// Equal reports whether two filters select the same view.
func (f Filter) Equal(other Filter) bool {
	return f.Type == other.Type &&
		f.Sort == other.Sort &&
		f.Query == other.Query &&
		equalSlices(f.Genres, other.Genres) &&
		equalSlices(f.Years, other.Years) &&
		equalSlices(f.Platforms, other.Platforms)
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Apply returns the filtered and sorted subset of dramas. The input slice is
// never modified and the result keeps fetch order unless a sort is active.
//
// Steps, in order: type, genre/year/platform, the newest-year restriction,
// sort, then the free-text query.
func Apply(dramas []models.Drama, f Filter, opts Options) []models.Drama {
	dramaType, typed := models.ParseDramaType(f.Type)

	newestYear := opts.NewestYear
	if newestYear == 0 {
		newestYear = DefaultNewestYear
	}

	out := make([]models.Drama, 0, len(dramas))
	for i := range dramas {
		d := &dramas[i]
		if typed && d.Type != dramaType {
			continue
		}
		if !matchGenre(d, f.Genres) || !matchYear(d, f.Years) || !matchPlatform(d, f.Platforms) {
			continue
		}
		if f.Sort == SortNewest && d.Year != newestYear {
			continue
		}
		out = append(out, *d)
	}

	switch f.Sort {
	case SortYearDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	case SortYearAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	case SortHighestRated:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RatingValue() > out[j].RatingValue() })
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	if query == "" {
		return out
	}
	matched := out[:0]
	for _, d := range out {
		if strings.Contains(strings.ToLower(d.EnglishTitle), query) || strings.Contains(strings.ToLower(d.Title), query) {
			matched = append(matched, d)
		}
	}
	return matched
}

func matchGenre(d *models.Drama, genres []string) bool {
	if len(genres) == 0 {
		return true
	}
	for _, g := range genres {
		if g != "" && strings.Contains(d.Genre, g) {
			return true
		}
	}
	return false
}

func matchYear(d *models.Drama, years []int) bool {
	if len(years) == 0 {
		return true
	}
	for _, y := range years {
		if d.Year == y {
			return true
		}
	}
	return false
}

func matchPlatform(d *models.Drama, platforms []string) bool {
	if len(platforms) == 0 {
		return true
	}
	for _, p := range platforms {
		if d.HasPlatform(p) {
			return true
		}
	}
	return false
}
