// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestParseDramaType(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"KoreanDrama", true},
		{"ChinaDrama", true},
		{"all", false},
		{"koreandrama", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if _, ok := ParseDramaType(tt.input); ok != tt.want {
				t.Errorf("ParseDramaType(%q) ok = %v, want %v", tt.input, ok, tt.want)
			}
		})
	}
}

func TestDrama_RatingValue(t *testing.T) {
	tests := []struct {
		rating string
		want   float64
	}{
		{"4.0", 4.0},
		{" 3.5 ", 3.5},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		d := Drama{Rating: tt.rating}
		if got := d.RatingValue(); got != tt.want {
			t.Errorf("RatingValue(%q) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestReviewView_FlattensReview(t *testing.T) {
	view := ReviewView{
		Review:   Review{DramaID: "d1", UserID: "u1", Rating: 5, Date: 1700000000000},
		UserName: "mina",
	}

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if fields["userId"] != "u1" || fields["userName"] != "mina" {
		t.Errorf("expected flattened review fields, got %v", fields)
	}
	if _, ok := fields["avatar"]; ok {
		t.Error("empty avatar should be omitted")
	}
}

func TestFloorLabel(t *testing.T) {
	if got := FloorLabel(3); got != "B3" {
		t.Errorf("FloorLabel(3) = %q, want B3", got)
	}
}
