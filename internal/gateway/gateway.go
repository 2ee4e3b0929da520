// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package gateway is the document and blob persistence boundary.
//
// Documents live at slash-separated paths that alternate collection and
// document segments ("dramas/d1/reviews/u1"). Collections are read as their
// direct children only; nested sub-collections are never returned with
// their parent.
//
// Every failure returned by a Gateway is a *Error carrying the operation and
// path. Callers classify it with errors.Is against ErrNotFound, ErrInvalidPath
// and ErrUnavailable. Nothing in this package retries.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrNotFound is returned by UpdateDocument when the document is absent.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidPath is returned for paths with empty segments or the wrong
	// collection/document parity.
	ErrInvalidPath = errors.New("invalid path")

	// ErrUnavailable is returned while the store circuit breaker is open.
	ErrUnavailable = errors.New("store unavailable")
)

// Op is a query filter operator.
type Op string

const (
	// OpEquals matches documents whose field equals the value.
	OpEquals Op = "=="

	// OpArrayContains matches documents whose array field holds the value.
	OpArrayContains Op = "array-contains"
)

// Filter selects documents in QueryCollection.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Document is a stored document and its location.
type Document struct {
	ID   string
	Path string
	Data map[string]any
}

// Gateway is the remote data contract used by the domain engines.
type Gateway interface {
	// GetCollection returns the direct children of a collection in key order.
	GetCollection(ctx context.Context, path string) ([]Document, error)

	// GetDocument returns nil, nil when the document does not exist.
	GetDocument(ctx context.Context, path string) (*Document, error)

	QueryCollection(ctx context.Context, path string, filter Filter) ([]Document, error)

	// SetDocument writes data. With merge, top-level fields are merged into
	// any existing document; without it the document is replaced.
	SetDocument(ctx context.Context, path string, data any, merge bool) error

	// UpdateDocument merges fields into an existing document.
	UpdateDocument(ctx context.Context, path string, fields map[string]any) error

	// DeleteDocument removes a document. Missing documents are not an error.
	DeleteDocument(ctx context.Context, path string) error

	// UploadBlob stores the content at path and returns its public URL.
	UploadBlob(ctx context.Context, path string, r io.Reader) (string, error)
}

// Error describes a failed gateway operation.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return err
	}
	return &Error{Op: op, Path: path, Err: err}
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// splitPath validates a path and reports whether it names a document.
func splitPath(path string) ([]string, bool, error) {
	if path == "" {
		return nil, false, ErrInvalidPath
	}
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			return nil, false, ErrInvalidPath
		}
	}
	return segments, len(segments)%2 == 0, nil
}

func documentPath(path string) ([]string, error) {
	segments, isDoc, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if !isDoc {
		return nil, fmt.Errorf("%w: %q is a collection", ErrInvalidPath, path)
	}
	return segments, nil
}

func collectionPath(path string) error {
	_, isDoc, err := splitPath(path)
	if err != nil {
		return err
	}
	if isDoc {
		return fmt.Errorf("%w: %q is a document", ErrInvalidPath, path)
	}
	return nil
}

// CollectionOf returns the innermost collection name of a path, used as a
// metrics label.
func CollectionOf(path string) string {
	segments := strings.Split(path, "/")
	if len(segments)%2 == 0 {
		segments = segments[:len(segments)-1]
	}
	return segments[len(segments)-1]
}
