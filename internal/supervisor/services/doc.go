// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package services adapts the server's long-running components to
// suture.Service so the supervisor tree can start, restart and stop them.
//
// Each wrapper implements Serve(ctx) error and String() string. Serve blocks
// until ctx is canceled and returns ctx.Err(), or returns an error the tree
// should treat as a crash.
package services
