// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package models defines the entities stored in the document store and
// returned by the HTTP API: dramas, reviews, user profiles, actors, and
// forum articles with their comments.
//
// JSON field names follow the document schema (camelCase) so a record read
// from the store can be returned to clients unchanged.
package models

import (
	"strconv"
	"strings"
)

// DramaType identifies the regional category of a drama. Forum boards use
// the same value space.
type DramaType string

// Drama types
const (
	TypeTaiwanDrama   DramaType = "TaiwanDrama"
	TypeKoreanDrama   DramaType = "KoreanDrama"
	TypeJapaneseDrama DramaType = "JapaneseDrama"
	TypeAmericanDrama DramaType = "AmericanDrama"
	TypeChinaDrama    DramaType = "ChinaDrama"
)

// TypeAll is the filter sentinel that matches every drama type.
const TypeAll = "all"

// DramaTypes lists every valid drama type in display order.
var DramaTypes = []DramaType{
	TypeTaiwanDrama,
	TypeKoreanDrama,
	TypeJapaneseDrama,
	TypeAmericanDrama,
	TypeChinaDrama,
}

// Valid reports whether t is one of the known drama types.
func (t DramaType) Valid() bool {
	for _, known := range DramaTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseDramaType returns the DramaType for s and whether it is known.
func ParseDramaType(s string) (DramaType, bool) {
	t := DramaType(s)
	return t, t.Valid()
}

// Drama is one television series in the catalog.
//
// Rating is derived: it is the mean of the drama's review ratings formatted
// with one decimal ("4.0"), or empty when the drama has no reviews. It is
// written only by the review engine.
type Drama struct {
	ID               string    `json:"id"`
	Title            string    `json:"title" validate:"required,max=200"`
	EnglishTitle     string    `json:"englishTitle" validate:"max=200"`
	Year             int       `json:"year" validate:"gte=1900,lte=3000"`
	Genre            string    `json:"genre" validate:"max=200"`
	Type             DramaType `json:"type" validate:"required,drama_type"`
	Platform         []string  `json:"platform"`
	Rating           string    `json:"rating,omitempty"`
	Episodes         int       `json:"episodes" validate:"gte=0"`
	Story            string    `json:"story"`
	Director         string    `json:"director"`
	Screenwriter     string    `json:"screenwriter"`
	ReleaseDate      string    `json:"releaseDate"`
	ImageURL         string    `json:"imageURL" validate:"omitempty,url"`
	SoundtrackURL    string    `json:"soundtrackURL" validate:"omitempty,url"`
	RelatedVideoURLs []string  `json:"relatedVideoURLs" validate:"dive,url"`
}

// RatingValue parses Rating as a number. Missing or malformed ratings are 0.
func (d *Drama) RatingValue() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(d.Rating), 64)
	if err != nil {
		return 0
	}
	return v
}

// HasPlatform reports whether the drama streams on the given platform.
func (d *Drama) HasPlatform(platform string) bool {
	for _, p := range d.Platform {
		if p == platform {
			return true
		}
	}
	return false
}
