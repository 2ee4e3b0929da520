// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/dramalog/internal/auth"
	"github.com/tomtom215/dramalog/internal/authz"
	"github.com/tomtom215/dramalog/internal/catalog"
	"github.com/tomtom215/dramalog/internal/config"
	"github.com/tomtom215/dramalog/internal/forum"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/gateway/gatewaytest"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/profiles"
	"github.com/tomtom215/dramalog/internal/reviews"
	"github.com/tomtom215/dramalog/internal/watchlist"
	"github.com/tomtom215/dramalog/internal/websocket"
)

const (
	testSecret    = "api-test-secret-that-is-long-enough-for-hs256"
	testOrigin    = "http://dramalog.test"
	adminEmail    = "admin@example.com"
	memberEmail   = "mina@example.com"
	otherEmail    = "jun@example.com"
	validPassword = "correct horse battery"
)

// testClock advances one second per call so stored dates are strictly ordered.
func testClock() func() time.Time {
	var ticks atomic.Int64
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		return base.Add(time.Duration(ticks.Add(1)) * time.Second)
	}
}

type stubBreaker string

func (s stubBreaker) State() string { return string(s) }

type testServer struct {
	t       *testing.T
	cfg     *config.Config
	store   *gateway.BadgerStore
	hub     *websocket.Hub
	handler http.Handler
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Environment: "development"},
		Blob: config.BlobConfig{
			Root:           t.TempDir(),
			PublicURL:      "/blobs",
			MaxUploadBytes: 1 << 10,
		},
		Security: config.SecurityConfig{
			JWTSecret:         testSecret,
			SessionTimeout:    time.Hour,
			AdminEmail:        adminEmail,
			RateLimitDisabled: true,
			CORSOrigins:       []string{testOrigin},
		},
		Catalog: config.CatalogConfig{PageSize: 2, NewestYear: 2023},
		Forum:   config.ForumConfig{PageSize: 2},
		Reviews: config.ReviewsConfig{MaxTextLength: 50},
	}
}

func seedCatalog(t *testing.T, store gateway.Gateway) {
	t.Helper()
	gatewaytest.Seed(t, store, map[string]any{
		"dramas/d1": models.Drama{ID: "d1", Title: "시그널", EnglishTitle: "Signal", Year: 2016, Genre: "thriller",
			Type: models.TypeKoreanDrama, Platform: []string{"Netflix"}},
		"dramas/d2": models.Drama{ID: "d2", Title: "무빙", EnglishTitle: "Moving", Year: 2023, Genre: "action",
			Type: models.TypeKoreanDrama, Platform: []string{"Disney+"}},
		"dramas/d3": models.Drama{ID: "d3", Title: "アンナチュラル", EnglishTitle: "Unnatural", Year: 2018, Genre: "thriller",
			Type: models.TypeJapaneseDrama, Platform: []string{"Netflix"}},
		"actors/a1": models.Actor{ID: "a1", Name: "조진웅", EnglishName: "Cho Jin-woong", Dramas: []string{"d1", "d2"}},
	})
}

// newTestServer wires the full API over an in-memory store with the hub running.
func newTestServer(t *testing.T, mutate ...func(*config.Config, *Deps)) *testServer {
	t.Helper()

	cfg := testConfig(t)
	store := gatewaytest.NewStore(t)
	seedCatalog(t, store)

	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	resolver := profiles.NewResolver(store)
	profileService := profiles.NewService(store, cfg.Blob.MaxUploadBytes)

	deps := Deps{
		Config:    cfg,
		Catalog:   catalog.NewService(store),
		Reviews:   reviews.NewEngine(store, resolver, hub, reviews.WithMaxTextLength(cfg.Reviews.MaxTextLength)),
		Watchlist: watchlist.NewManager(store),
		Forum:     forum.NewEngine(store, resolver, hub, forum.WithClock(testClock())),
		Profiles:  profileService,
		Hub:       hub,
	}
	for _, fn := range mutate {
		fn(cfg, &deps)
	}

	tokens, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	deps.Auth = auth.NewProvider(store, profileService, tokens, auth.NewMemorySessionStore(), cfg.Security,
		auth.WithBcryptCost(bcrypt.MinCost))

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	deps.Enforcer = enforcer

	return &testServer{
		t:       t,
		cfg:     cfg,
		store:   store,
		hub:     hub,
		handler: NewRouter(NewHandler(deps)).Setup(),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (e envelope) decode(t *testing.T, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(e.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
}

func (e envelope) code() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Code
}

// request builds a request. A string body is sent verbatim, anything else
// is JSON encoded.
func newRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (s *testServer) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: decode response %q: %v", req.Method, req.URL.Path, rec.Body.String(), err)
		}
	}
	return rec, env
}

func (s *testServer) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	return s.serve(newRequest(s.t, method, path, body, token))
}

// expect fails the test unless the response has the wanted status.
func (s *testServer) expect(method, path string, body interface{}, token string, status int) envelope {
	s.t.Helper()
	rec, env := s.do(method, path, body, token)
	if rec.Code != status {
		s.t.Fatalf("%s %s status = %d, want %d; body %s", method, path, rec.Code, status, rec.Body.String())
	}
	return env
}

// signIn registers an account and returns its access token.
func (s *testServer) signIn(email, userName string) string {
	s.t.Helper()
	s.expect(http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email": email, "password": validPassword, "userName": userName,
	}, "", http.StatusCreated)

	env := s.expect(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": email, "password": validPassword,
	}, "", http.StatusOK)

	var token auth.Token
	env.decode(s.t, &token)
	if token.AccessToken == "" {
		s.t.Fatal("login returned an empty token")
	}
	return token.AccessToken
}
