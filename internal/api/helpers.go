// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/logging"
)

// maxBodyBytes caps JSON request bodies. Avatar uploads use the blob limit.
const maxBodyBytes = 1 << 20

func logFor(r *http.Request) *zerolog.Logger {
	return logging.Ctx(r.Context())
}

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Invalid("body", "request body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return apperr.Invalid("body", "request body is empty")
		default:
			return apperr.Invalid("body", "malformed JSON: %s", logging.SanitizeLogValue(err.Error()))
		}
	}
	return nil
}

func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getPagesParam reads the pages query parameter, clamped to [1, limit].
func getPagesParam(r *http.Request, limit int) int {
	pages := getIntParam(r, "pages", 1)
	if pages < 1 {
		pages = 1
	}
	if limit > 0 && pages > limit {
		pages = limit
	}
	return pages
}

// queryValues collects a multi-valued parameter. Both repeated keys
// (?genre=a&genre=b) and comma lists (?genre=a,b) are accepted.
func queryValues(r *http.Request, key string) []string {
	var result []string
	for _, raw := range r.URL.Query()[key] {
		result = append(result, parseCommaSeparated(raw)...)
	}
	return result
}

// queryInts is queryValues for integers. A value that is not an integer is a
// validation error on key.
func queryInts(r *http.Request, key string) ([]int, error) {
	var result []int
	for _, raw := range r.URL.Query()[key] {
		nums, err := parseCommaSeparatedInts(raw)
		if err != nil {
			return nil, apperr.Invalid(key, "%s", err.Error())
		}
		result = append(result, nums...)
	}
	return result, nil
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseCommaSeparatedInts(value string) ([]int, error) {
	var result []int
	for _, part := range parseCommaSeparated(value) {
		num, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", part)
		}
		result = append(result, num)
	}
	return result, nil
}
