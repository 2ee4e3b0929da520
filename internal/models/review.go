// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package models

// Review is one user's rating of a drama. It is stored at
// dramas/{dramaId}/reviews/{userId}, so a user has at most one review per drama.
type Review struct {
	DramaID       string `json:"dramaId"`
	UserID        string `json:"userId"`
	Rating        int    `json:"rating"`
	WrittenReview string `json:"writtenReview"`
	Date          int64  `json:"date"` // epoch milliseconds
}

// ReviewView is a review joined with its author's profile.
type ReviewView struct {
	Review
	UserName string `json:"userName"`
	Avatar   string `json:"avatar,omitempty"`
}
