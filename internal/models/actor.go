// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package models

// Actor is a cast member. Dramas lists the ids of every drama they appear in
// and is used to cross-link dramas that share cast.
type Actor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required,max=100"`
	EnglishName string   `json:"englishName" validate:"max=100"`
	AvatarURL   string   `json:"avatarURL" validate:"omitempty,url"`
	Dramas      []string `json:"dramas"`
}

// AppearsIn reports whether the actor is credited on the drama.
func (a *Actor) AppearsIn(dramaID string) bool {
	for _, id := range a.Dramas {
		if id == dramaID {
			return true
		}
	}
	return false
}
