// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package models

import "strconv"

// Article is a forum post on a board. CommentsNum is derived from the live
// count of the article's comments and is rewritten on every comment change.
type Article struct {
	ID          string    `json:"id"`
	Board       DramaType `json:"board"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	AuthorID    string    `json:"authorId"`
	Content     string    `json:"content"` // HTML
	Date        int64     `json:"date"`    // epoch milliseconds
	CommentsNum int       `json:"commentsNum"`
}

// ArticleView is an article joined with its author's display name.
type ArticleView struct {
	Article
	AuthorName   string `json:"authorName"`
	AuthorAvatar string `json:"authorAvatar,omitempty"`
	Excerpt      string `json:"excerpt,omitempty"` // plain-text preview of Content
}

// Comment is a reply on an article. Text may reference earlier floors with
// tokens of the form B<n>.
type Comment struct {
	ID       string `json:"id"`
	AuthorID string `json:"authorId"`
	Date     int64  `json:"date"` // epoch milliseconds
	Text     string `json:"text"`
}

// CommentView is a comment joined with its author and numbered by floor.
// Floor is the 1-based chronological position within the thread.
type CommentView struct {
	Comment
	AuthorName   string `json:"authorName"`
	AuthorAvatar string `json:"authorAvatar,omitempty"`
	Floor        int    `json:"floor"`
	FloorLabel   string `json:"floorLabel"`
}

// FloorLabel formats a floor number as it appears in comment text ("B3").
func FloorLabel(floor int) string {
	return "B" + strconv.Itoa(floor)
}
