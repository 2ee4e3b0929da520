// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package gateway

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Encode converts a typed value into document fields.
func Encode(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return decodeFields(data)
}

// DecodeAs converts a document into T. The document ID is exposed as the
// "id" field when the stored data does not carry one.
func DecodeAs[T any](doc *Document) (*T, error) {
	fields := doc.Data
	if _, ok := fields["id"]; !ok {
		fields = make(map[string]any, len(doc.Data)+1)
		for k, v := range doc.Data {
			fields[k] = v
		}
		fields["id"] = doc.ID
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.Path, err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.Path, err)
	}
	return &out, nil
}

// DecodeAll converts every document into T, preserving order.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for i := range docs {
		v, err := DecodeAs[T](&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// decodeFields keeps numbers as json.Number so integers such as epoch
// milliseconds survive a round trip unchanged.
func decodeFields(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// valuesEqual compares two field values by their JSON form.
func valuesEqual(a, b any) bool {
	ja, err := json.Marshal(a)
	if err != nil {
		return false
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

func matches(fields map[string]any, f Filter) bool {
	value, ok := fields[f.Field]
	if !ok {
		return false
	}
	switch f.Op {
	case OpEquals:
		return valuesEqual(value, f.Value)
	case OpArrayContains:
		items, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if valuesEqual(item, f.Value) {
				return true
			}
		}
	}
	return false
}
