// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package events defines the change notifications the domain engines emit
// and the Publisher they emit them through. The websocket hub is the
// production Publisher.
package events

import "sync"

// Event types
const (
	TypeReviewUpdated  = "review_updated"
	TypeCommentPosted  = "comment_posted"
	TypeCommentDeleted = "comment_deleted"
	TypeArticlePosted  = "article_posted"
)

// Publisher receives domain events. Publish must not block.
type Publisher interface {
	Publish(eventType string, data interface{})
}

// ReviewUpdated is published after a drama's reviews change.
type ReviewUpdated struct {
	DramaID     string `json:"dramaId"`
	Rating      string `json:"rating"`
	ReviewCount int    `json:"reviewCount"`
}

// CommentChanged is published after a comment is posted or deleted.
type CommentChanged struct {
	ArticleID   string `json:"articleId"`
	CommentID   string `json:"commentId"`
	CommentsNum int    `json:"commentsNum"`
}

// ArticlePosted is published after an article is created.
type ArticlePosted struct {
	ArticleID string `json:"articleId"`
	Board     string `json:"board"`
	Title     string `json:"title"`
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(string, interface{}) {}

// Event is one published event captured by a Recorder.
type Event struct {
	Type string
	Data interface{}
}

// Recorder keeps published events in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(eventType string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Type: eventType, Data: data})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last returns the most recent event of eventType.
func (r *Recorder) Last(eventType string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == eventType {
			return r.events[i], true
		}
	}
	return Event{}, false
}
