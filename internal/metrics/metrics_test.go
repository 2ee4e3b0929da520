// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStoreOperation(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		collection string
		err        error
		result     string
	}{
		{name: "successful get", operation: "get", collection: "dramas", result: "success"},
		{name: "failed set", operation: "set", collection: "users", err: errors.New("disk full"), result: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := StoreOperations.WithLabelValues(tt.operation, tt.collection, tt.result)
			before := testutil.ToFloat64(counter)

			RecordStoreOperation(tt.operation, tt.collection, 3*time.Millisecond, tt.err)

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("counter delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/v1/dramas", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/v1/dramas", "200", 20*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("counter delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordAuthEvent(t *testing.T) {
	failure := AuthEvents.WithLabelValues("sign_in", "failure")
	before := testutil.ToFloat64(failure)

	RecordAuthEvent("sign_in", false)

	if got := testutil.ToFloat64(failure) - before; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
}

func TestDomainCounters(t *testing.T) {
	RecordReviewOperation("submit")
	RecordForumOperation("post_comment")
	RecordForumRejection("invalid_floor")
	RecordWatchlistChange("add")
	RecordWSMessage("review_updated")
	RecordRatingRecompute()
	RecordBlobUpload(512)
	RecordStoreGC("nothing")

	checks := map[string]float64{
		"reviews":   testutil.ToFloat64(ReviewsSubmitted.WithLabelValues("submit")),
		"forum":     testutil.ToFloat64(ForumOperations.WithLabelValues("post_comment")),
		"rejection": testutil.ToFloat64(ForumRejections.WithLabelValues("invalid_floor")),
		"watchlist": testutil.ToFloat64(WatchlistChanges.WithLabelValues("add")),
		"ws":        testutil.ToFloat64(WSMessagesSent.WithLabelValues("review_updated")),
		"recompute": testutil.ToFloat64(RatingRecomputations),
		"blob":      testutil.ToFloat64(BlobUploadBytes),
		"gc":        testutil.ToFloat64(StoreGCRuns.WithLabelValues("nothing")),
	}
	for name, value := range checks {
		if value < 1 {
			t.Errorf("%s counter = %v, want >= 1", name, value)
		}
	}
}
