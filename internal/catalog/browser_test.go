// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package catalog

import (
	"testing"

	"github.com/tomtom215/dramalog/internal/models"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 30)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name     string
		pages    int
		pageSize int
		want     int
	}{
		{name: "first page", pages: 1, pageSize: 12, want: 12},
		{name: "two pages", pages: 2, pageSize: 12, want: 24},
		{name: "past the end", pages: 3, pageSize: 12, want: 30},
		{name: "zero pages is one", pages: 0, pageSize: 15, want: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Paginate(items, tt.pages, tt.pageSize)); got != tt.want {
				t.Errorf("len(Paginate()) = %d, want %d", got, tt.want)
			}
		})
	}

	if got := Paginate([]int{}, 2, 12); len(got) != 0 {
		t.Errorf("Paginate(empty) = %v", got)
	}
}

func TestBrowser_LoadMoreAndReset(t *testing.T) {
	b := NewBrowser(twentyDramas(), 6, Options{NewestYear: 2023})

	if got := len(b.Visible()); got != 6 {
		t.Fatalf("initial Visible() = %d, want 6", got)
	}
	for i := 0; i < 3; i++ {
		if !b.LoadMore() {
			t.Fatalf("LoadMore() #%d = false", i+1)
		}
	}
	if b.Pages() != 4 || len(b.Visible()) != 20 {
		t.Fatalf("after 3 LoadMore: pages=%d visible=%d", b.Pages(), len(b.Visible()))
	}
	if b.HasMore() || b.LoadMore() {
		t.Error("LoadMore() should stop once everything is visible")
	}
	if b.Pages() != 4 {
		t.Errorf("Pages() = %d, want 4", b.Pages())
	}

	// Same filter keeps the page count.
	if b.SetFilter(Filter{}) {
		t.Error("SetFilter(same) reported a change")
	}
	if b.Pages() != 4 {
		t.Errorf("Pages() after same filter = %d, want 4", b.Pages())
	}

	// A new filter resets to one page.
	if !b.SetFilter(Filter{Type: string(models.TypeKoreanDrama)}) {
		t.Error("SetFilter(new) reported no change")
	}
	if b.Pages() != 1 || b.Total() != 5 {
		t.Errorf("after filter change: pages=%d total=%d, want 1 and 5", b.Pages(), b.Total())
	}
	if b.HasMore() {
		t.Error("five results fit on one page of six")
	}
}

func TestFilter_Equal(t *testing.T) {
	a := Filter{Type: "KoreanDrama", Genres: []string{"romance"}, Years: []int{2020}}
	b := Filter{Type: "KoreanDrama", Genres: []string{"romance"}, Years: []int{2020}}
	if !a.Equal(b) {
		t.Error("identical filters should be equal")
	}
	b.Years = []int{2021}
	if a.Equal(b) {
		t.Error("filters with different years should differ")
	}
}
