// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

/*
Package websocket provides the realtime event stream.

The Hub fans domain events out to every connected browser. It implements
events.Publisher, so the review and forum engines publish into it without
knowing about websockets.

Message format:

	{"type": "review_updated", "data": {"dramaId": "d1", "rating": "4.0", "reviewCount": 3}}
	{"type": "comment_posted", "data": {"articleId": "a1", "commentId": "c9", "commentsNum": 4}}

Clients may send {"type": "ping"} and receive {"type": "pong"}.

Lifecycle:

The hub runs under the messaging supervisor through RunWithContext. When the
context is canceled every client channel is closed, which makes each write
pump send a close frame and exit.

Ordering:

RunWithContext checks shutdown first, then register/unregister, then
broadcasts. Clients are iterated in ascending id order, so every client
sees messages in the same order.
*/
package websocket
