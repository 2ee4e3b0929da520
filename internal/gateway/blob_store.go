// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package gateway

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomtom215/dramalog/internal/metrics"
)

// FSBlobStore writes blobs below a root directory and serves them under a
// public URL prefix.
type FSBlobStore struct {
	root      string
	publicURL string
}

// NewFSBlobStore creates the root directory if needed.
func NewFSBlobStore(root, publicURL string) (*FSBlobStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSBlobStore{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Root returns the directory blobs are written to.
func (s *FSBlobStore) Root() string {
	return s.root
}

// Put writes r to path atomically and returns the public URL.
func (s *FSBlobStore) Put(ctx context.Context, path string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, _, err := splitPath(path); err != nil {
		return "", err
	}

	target := filepath.Join(s.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q escapes blob root", ErrInvalidPath, path)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("commit blob: %w", err)
	}

	metrics.RecordBlobUpload(n)
	return s.publicURL + "/" + path, nil
}
