// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package watchlist

// List is an ordered set of drama ids. The zero value is an empty list.
// Methods never modify the receiver's backing array in place, so a List
// copied from a profile document can be changed safely.
type List struct {
	ids []string
}

// NewList builds a list from stored ids, dropping duplicates and keeping the
// first occurrence of each.
func NewList(ids []string) List {
	var l List
	for _, id := range ids {
		l = l.Add(id)
	}
	return l
}

// Contains reports whether id is in the list.
func (l List) Contains(id string) bool {
	for _, existing := range l.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Add returns the list with id appended. Adding an id already present
// returns the list unchanged.
func (l List) Add(id string) List {
	if id == "" || l.Contains(id) {
		return l
	}
	ids := make([]string, len(l.ids), len(l.ids)+1)
	copy(ids, l.ids)
	return List{ids: append(ids, id)}
}

// Remove returns the list without any occurrence of id.
func (l List) Remove(id string) List {
	ids := make([]string, 0, len(l.ids))
	for _, existing := range l.ids {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	return List{ids: ids}
}

// IDs returns the ids in display order.
func (l List) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// Len returns the number of ids.
func (l List) Len() int {
	return len(l.ids)
}
