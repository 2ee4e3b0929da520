// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package gatewaytest provides gateway implementations for tests: an
// in-memory Badger store and a wrapper that injects failures.
package gatewaytest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/dramalog/internal/gateway"
)

// ErrInjected is the default failure returned by a Faulty gateway.
var ErrInjected = errors.New("injected failure")

// NewStore returns a BadgerStore over an in-memory database and a blob store
// rooted in a temporary directory. Both are released when the test ends.
func NewStore(t testing.TB) *gateway.BadgerStore {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	blobs, err := gateway.NewFSBlobStore(t.TempDir(), "/blobs")
	if err != nil {
		t.Fatalf("create blob store: %v", err)
	}
	return gateway.NewBadgerStore(db, blobs)
}

// Seed writes documents keyed by path, failing the test on error.
func Seed(t testing.TB, g gateway.Gateway, docs map[string]any) {
	t.Helper()
	for path, data := range docs {
		if err := g.SetDocument(context.Background(), path, data, false); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}
}

// Call records one operation seen by a Faulty gateway.
type Call struct {
	Op   string
	Path string
}

type rule struct {
	op     string
	prefix string
	err    error
}

// Faulty wraps a Gateway, records every call and fails the ones matching a
// registered rule.
type Faulty struct {
	inner gateway.Gateway

	mu    sync.Mutex
	rules []rule
	calls []Call
}

// NewFaulty wraps inner.
func NewFaulty(inner gateway.Gateway) *Faulty {
	return &Faulty{inner: inner}
}

// FailOn makes operations named op on paths starting with prefix fail with
// ErrInjected. An empty op matches every operation.
func (f *Faulty) FailOn(op, prefix string) {
	f.FailWith(op, prefix, ErrInjected)
}

// FailWith is FailOn with a custom error.
func (f *Faulty) FailWith(op, prefix string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{op: op, prefix: prefix, err: err})
}

// Heal removes every failure rule.
func (f *Faulty) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = nil
}

// Calls returns the operations seen so far.
func (f *Faulty) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Writes returns the number of mutating calls seen so far.
func (f *Faulty) Writes() int {
	n := 0
	for _, c := range f.Calls() {
		switch c.Op {
		case "set", "update", "delete", "upload":
			n++
		}
	}
	return n
}

// Reset clears the recorded calls.
func (f *Faulty) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *Faulty) check(op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Path: path})
	for _, r := range f.rules {
		if (r.op == "" || r.op == op) && strings.HasPrefix(path, r.prefix) {
			return &gateway.Error{Op: op, Path: path, Err: r.err}
		}
	}
	return nil
}

func (f *Faulty) GetCollection(ctx context.Context, path string) ([]gateway.Document, error) {
	if err := f.check("get_collection", path); err != nil {
		return nil, err
	}
	return f.inner.GetCollection(ctx, path)
}

func (f *Faulty) GetDocument(ctx context.Context, path string) (*gateway.Document, error) {
	if err := f.check("get", path); err != nil {
		return nil, err
	}
	return f.inner.GetDocument(ctx, path)
}

func (f *Faulty) QueryCollection(ctx context.Context, path string, filter gateway.Filter) ([]gateway.Document, error) {
	if err := f.check("query", path); err != nil {
		return nil, err
	}
	return f.inner.QueryCollection(ctx, path, filter)
}

func (f *Faulty) SetDocument(ctx context.Context, path string, data any, merge bool) error {
	if err := f.check("set", path); err != nil {
		return err
	}
	return f.inner.SetDocument(ctx, path, data, merge)
}

func (f *Faulty) UpdateDocument(ctx context.Context, path string, fields map[string]any) error {
	if err := f.check("update", path); err != nil {
		return err
	}
	return f.inner.UpdateDocument(ctx, path, fields)
}

func (f *Faulty) DeleteDocument(ctx context.Context, path string) error {
	if err := f.check("delete", path); err != nil {
		return err
	}
	return f.inner.DeleteDocument(ctx, path)
}

func (f *Faulty) UploadBlob(ctx context.Context, path string, r io.Reader) (string, error) {
	if err := f.check("upload", path); err != nil {
		return "", err
	}
	return f.inner.UploadBlob(ctx, path, r)
}
