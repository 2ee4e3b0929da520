// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package watchlist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/gateway/gatewaytest"
	"github.com/tomtom215/dramalog/internal/models"
)

func TestList(t *testing.T) {
	l := NewList([]string{"a", "b", "a"})
	if fmt.Sprint(l.IDs()) != "[a b]" {
		t.Fatalf("NewList() = %v, want [a b]", l.IDs())
	}

	added := l.Add("c").Add("a")
	if fmt.Sprint(added.IDs()) != "[a b c]" {
		t.Errorf("Add() = %v, want [a b c]", added.IDs())
	}
	if l.Len() != 2 {
		t.Error("Add() modified the original list")
	}

	removed := added.Remove("b").Remove("missing")
	if fmt.Sprint(removed.IDs()) != "[a c]" || removed.Contains("b") {
		t.Errorf("Remove() = %v, want [a c]", removed.IDs())
	}

	var zero List
	if zero.Len() != 0 || zero.Contains("a") || len(zero.Remove("a").IDs()) != 0 {
		t.Error("zero List should behave as empty")
	}
}

func newManager(t *testing.T) (*Manager, *gatewaytest.Faulty) {
	t.Helper()
	store := gatewaytest.NewStore(t)
	gatewaytest.Seed(t, store, map[string]any{
		"dramas/d1": models.Drama{ID: "d1", Title: "Signal"},
		"dramas/d2": models.Drama{ID: "d2", Title: "Kingdom"},
		"dramas/d3": models.Drama{ID: "d3", Title: "Alone"},
		"users/u1":  models.User{ID: "u1", UserName: "mina", Email: "mina@example.com", DramaList: []string{}},
	})
	faulty := gatewaytest.NewFaulty(store)
	return NewManager(faulty), faulty
}

func TestManager_AddIsIdempotent(t *testing.T) {
	m, faulty := newManager(t)
	ctx := context.Background()

	if _, err := m.Add(ctx, "u1", "d2"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	faulty.Reset()
	list, err := m.Add(ctx, "u1", "d2")
	if err != nil {
		t.Fatalf("Add(again) error = %v", err)
	}
	if fmt.Sprint(list.IDs()) != "[d2]" {
		t.Errorf("list = %v, want [d2]", list.IDs())
	}
	if faulty.Writes() != 0 {
		t.Error("adding a saved drama should not write")
	}

	stored, _ := m.Get(ctx, "u1")
	if fmt.Sprint(stored.IDs()) != "[d2]" {
		t.Errorf("stored = %v, want [d2]", stored.IDs())
	}
}

func TestManager_RemoveTwice(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, _ = m.Add(ctx, "u1", "d1")
	_, _ = m.Add(ctx, "u1", "d3")

	for i := 0; i < 2; i++ {
		list, err := m.Remove(ctx, "u1", "d1")
		if err != nil {
			t.Fatalf("Remove() #%d error = %v", i+1, err)
		}
		if fmt.Sprint(list.IDs()) != "[d3]" {
			t.Errorf("Remove() #%d = %v, want [d3]", i+1, list.IDs())
		}
	}
}

func TestManager_KeepsOtherProfileFields(t *testing.T) {
	m, faulty := newManager(t)
	ctx := context.Background()

	if _, err := m.Add(ctx, "u1", "d1"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	doc, err := faulty.GetDocument(ctx, "users/u1")
	if err != nil || doc == nil {
		t.Fatalf("GetDocument() = %v, %v", doc, err)
	}
	if doc.Data["userName"] != "mina" || doc.Data["email"] != "mina@example.com" {
		t.Errorf("merge lost profile fields: %v", doc.Data)
	}
}

func TestManager_Errors(t *testing.T) {
	m, faulty := newManager(t)
	ctx := context.Background()

	if _, err := m.Add(ctx, "", "d1"); !errors.Is(err, apperr.ErrSignInRequired) {
		t.Errorf("Add(signed out) error = %v", err)
	}
	if _, err := m.Remove(ctx, "", "d1"); !errors.Is(err, apperr.ErrSignInRequired) {
		t.Errorf("Remove(signed out) error = %v", err)
	}
	if _, err := m.Get(ctx, ""); !errors.Is(err, apperr.ErrSignInRequired) {
		t.Errorf("Get(signed out) error = %v", err)
	}
	if len(faulty.Calls()) != 0 {
		t.Errorf("signed-out calls reached the store: %v", faulty.Calls())
	}

	if _, err := m.Add(ctx, "u1", "nope"); !errors.Is(err, ErrDramaNotFound) {
		t.Errorf("Add(unknown drama) error = %v, want ErrDramaNotFound", err)
	}

	faulty.FailOn("set", "users/")
	if _, err := m.Add(ctx, "u1", "d1"); !errors.Is(err, gatewaytest.ErrInjected) {
		t.Errorf("Add(store failure) error = %v", err)
	}
}

func TestManager_Dramas(t *testing.T) {
	m, faulty := newManager(t)
	ctx := context.Background()

	_, _ = m.Add(ctx, "u1", "d3")
	_, _ = m.Add(ctx, "u1", "d1")
	_ = faulty.DeleteDocument(ctx, "dramas/d3")

	dramas, err := m.Dramas(ctx, "u1")
	if err != nil {
		t.Fatalf("Dramas() error = %v", err)
	}
	if len(dramas) != 1 || dramas[0].ID != "d1" {
		t.Errorf("Dramas() = %+v, want only d1", dramas)
	}
}
