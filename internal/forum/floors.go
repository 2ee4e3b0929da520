// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package forum

import (
	"regexp"
	"strconv"

	"github.com/tomtom215/dramalog/internal/apperr"
)

// floorRef matches back-references such as "B3" that start a word.
var floorRef = regexp.MustCompile(`\bB(\d+)`)

// FloorRef is one back-reference found in comment text.
type FloorRef struct {
	Token string // as written, e.g. "B03"
	Floor int    // -1 when the number does not fit an int
}

// ParseFloorRefs returns every floor reference in text, in order.
func ParseFloorRefs(text string) []FloorRef {
	matches := floorRef.FindAllStringSubmatch(text, -1)
	refs := make([]FloorRef, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = -1
		}
		refs = append(refs, FloorRef{Token: m[0], Floor: n})
	}
	return refs
}

// ValidateFloorRefs rejects text referencing a floor outside 1..count.
func ValidateFloorRefs(text string, count int) error {
	for _, ref := range ParseFloorRefs(text) {
		if ref.Floor < 1 || ref.Floor > count {
			return apperr.Invalid("text", "floor %s does not exist", ref.Token)
		}
	}
	return nil
}
