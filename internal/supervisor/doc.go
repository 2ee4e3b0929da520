// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

/*
Package supervisor runs the long-lived parts of the server under a suture v4
supervisor tree.

Layout:

	dramalog (root)
	├── data-layer       store value-log GC
	├── messaging-layer  websocket hub
	└── api-layer        HTTP server, login limiter cleanup

A crashing service is restarted by its own layer with backoff; the other
layers keep running. Supervisor events are logged through sutureslog into
the zerolog logger (see logging.NewSlogLogger).

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewStoreGCService(db, 10*time.Minute, 0.5))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	errCh := tree.ServeBackground(ctx)
*/
package supervisor
