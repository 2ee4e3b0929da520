// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package models

// Role constants. These align with the Casbin policy in internal/authz.
const (
	// RoleUser is the default role for signed-up accounts.
	RoleUser = "user"

	// RoleAdmin may edit catalog data.
	RoleAdmin = "admin"
)

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User is a profile document stored at users/{id}.
//
// DramaList is the user's watchlist. It never holds duplicate ids and its
// order is the display order.
type User struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	UserName         string   `json:"userName"`
	Avatar           string   `json:"avatar,omitempty"`
	RegistrationDate int64    `json:"registrationDate"` // epoch milliseconds
	DramaList        []string `json:"dramaList"`
}

// Profile is the public part of a user, used when joining reviews, articles
// and comments with their authors.
type Profile struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Avatar   string `json:"avatar,omitempty"`
}

// Profile returns the public part of u.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, UserName: u.UserName, Avatar: u.Avatar}
}
