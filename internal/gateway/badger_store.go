// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/dramalog/internal/metrics"
)

// Key prefix for documents
const docKeyPrefix = "doc:"

// BlobStore persists binary content and returns its public URL.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader) (string, error)
}

// BadgerStore implements Gateway on top of a BadgerDB instance.
//
// Each document is one key ("doc:" + path) holding the JSON-encoded fields.
// Read-modify-write operations run inside a single update transaction, so
// concurrent merges on the same document serialize through Badger's
// conflict detection.
type BadgerStore struct {
	db    *badger.DB
	blobs BlobStore
}

// NewBadgerStore creates a document store. blobs may be nil, in which case
// UploadBlob fails.
func NewBadgerStore(db *badger.DB, blobs BlobStore) *BadgerStore {
	return &BadgerStore{db: db, blobs: blobs}
}

// DB returns the underlying database so other stores can share it.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

func docKey(path string) []byte {
	return []byte(docKeyPrefix + path)
}

func (s *BadgerStore) observe(op, path string, start time.Time, err error) {
	metrics.RecordStoreOperation(op, CollectionOf(path), time.Since(start), err)
}

// GetCollection returns direct children of the collection at path.
func (s *BadgerStore) GetCollection(ctx context.Context, path string) (docs []Document, err error) {
	start := time.Now()
	defer func() { s.observe("get_collection", path, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, wrap("get_collection", path, err)
	}
	if err := collectionPath(path); err != nil {
		return nil, wrap("get_collection", path, err)
	}

	docs, err = s.scan(ctx, path, nil)
	return docs, wrap("get_collection", path, err)
}

// QueryCollection returns direct children of the collection matching filter.
func (s *BadgerStore) QueryCollection(ctx context.Context, path string, filter Filter) (docs []Document, err error) {
	start := time.Now()
	defer func() { s.observe("query", path, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, wrap("query", path, err)
	}
	if err := collectionPath(path); err != nil {
		return nil, wrap("query", path, err)
	}
	if filter.Op != OpEquals && filter.Op != OpArrayContains {
		return nil, wrap("query", path, fmt.Errorf("unsupported filter op %q", filter.Op))
	}

	docs, err = s.scan(ctx, path, &filter)
	return docs, wrap("query", path, err)
}

func (s *BadgerStore) scan(ctx context.Context, path string, filter *Filter) ([]Document, error) {
	docs := make([]Document, 0)
	prefix := docKey(path + "/")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			id := string(item.Key()[len(prefix):])
			if strings.Contains(id, "/") {
				continue // nested sub-collection
			}

			var fields map[string]any
			if err := item.Value(func(val []byte) error {
				var decodeErr error
				fields, decodeErr = decodeFields(val)
				return decodeErr
			}); err != nil {
				return err
			}

			if filter != nil && !matches(fields, *filter) {
				continue
			}
			docs = append(docs, Document{ID: id, Path: path + "/" + id, Data: fields})
		}
		return nil
	})
	return docs, err
}

// GetDocument returns the document at path, or nil when absent.
func (s *BadgerStore) GetDocument(ctx context.Context, path string) (doc *Document, err error) {
	start := time.Now()
	defer func() { s.observe("get", path, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, wrap("get", path, err)
	}
	segments, err := documentPath(path)
	if err != nil {
		return nil, wrap("get", path, err)
	}

	var fields map[string]any
	err = s.db.View(func(txn *badger.Txn) error {
		var readErr error
		fields, readErr = readFields(txn, path)
		return readErr
	})
	if err != nil {
		return nil, wrap("get", path, err)
	}
	if fields == nil {
		return nil, nil
	}
	return &Document{ID: segments[len(segments)-1], Path: path, Data: fields}, nil
}

// readFields returns nil fields when the document is absent.
func readFields(txn *badger.Txn, path string) (map[string]any, error) {
	item, err := txn.Get(docKey(path))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	err = item.Value(func(val []byte) error {
		var decodeErr error
		fields, decodeErr = decodeFields(val)
		return decodeErr
	})
	return fields, err
}

func writeFields(txn *badger.Txn, path string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return txn.Set(docKey(path), data)
}

// SetDocument writes a document, merging top-level fields when merge is set.
func (s *BadgerStore) SetDocument(ctx context.Context, path string, data any, merge bool) (err error) {
	start := time.Now()
	defer func() { s.observe("set", path, start, err) }()

	if err := ctx.Err(); err != nil {
		return wrap("set", path, err)
	}
	if _, err := documentPath(path); err != nil {
		return wrap("set", path, err)
	}
	fields, err := Encode(data)
	if err != nil {
		return wrap("set", path, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if !merge {
			return writeFields(txn, path, fields)
		}
		existing, err := readFields(txn, path)
		if err != nil {
			return err
		}
		return writeFields(txn, path, mergeFields(existing, fields))
	})
	return wrap("set", path, err)
}

// UpdateDocument merges fields into an existing document.
func (s *BadgerStore) UpdateDocument(ctx context.Context, path string, fields map[string]any) (err error) {
	start := time.Now()
	defer func() { s.observe("update", path, start, err) }()

	if err := ctx.Err(); err != nil {
		return wrap("update", path, err)
	}
	if _, err := documentPath(path); err != nil {
		return wrap("update", path, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		existing, err := readFields(txn, path)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
		return writeFields(txn, path, mergeFields(existing, fields))
	})
	return wrap("update", path, err)
}

// DeleteDocument removes the document at path. Documents in its
// sub-collections are left in place.
func (s *BadgerStore) DeleteDocument(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { s.observe("delete", path, start, err) }()

	if err := ctx.Err(); err != nil {
		return wrap("delete", path, err)
	}
	if _, err := documentPath(path); err != nil {
		return wrap("delete", path, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(docKey(path)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	return wrap("delete", path, err)
}

// UploadBlob delegates to the configured blob store.
func (s *BadgerStore) UploadBlob(ctx context.Context, path string, r io.Reader) (url string, err error) {
	start := time.Now()
	defer func() { s.observe("upload", path, start, err) }()

	if s.blobs == nil {
		return "", wrap("upload", path, errors.New("no blob store configured"))
	}
	url, err = s.blobs.Put(ctx, path, r)
	return url, wrap("upload", path, err)
}

func mergeFields(existing, fields map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(fields))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}
