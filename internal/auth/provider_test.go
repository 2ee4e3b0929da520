// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/dramalog/internal/config"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/gateway/gatewaytest"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/profiles"
	"github.com/tomtom215/dramalog/internal/validation"
)

type providerFixture struct {
	provider *Provider
	gw       gateway.Gateway
	sessions *MemorySessionStore
}

func newTestProvider(t *testing.T) *providerFixture {
	t.Helper()
	store := gatewaytest.NewStore(t)
	cfg := config.SecurityConfig{
		JWTSecret:      testSecret,
		SessionTimeout: time.Hour,
		AdminEmail:     "Admin@Example.com",
	}
	tokens, err := NewJWTManager(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	sessions := NewMemorySessionStore()
	p := NewProvider(store, profiles.NewService(store, 0), tokens, sessions, cfg, WithBcryptCost(bcrypt.MinCost))
	return &providerFixture{provider: p, gw: store, sessions: sessions}
}

func TestProvider_SignUpCreatesAccountAndProfile(t *testing.T) {
	f := newTestProvider(t)
	ctx := context.Background()

	p, err := f.provider.SignUp(ctx, "  Lee@Example.com ", "password123", "Lee")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if p.ID == "" || p.Email != "lee@example.com" || p.Role != models.RoleUser {
		t.Errorf("SignUp() = %+v", p)
	}

	doc, err := f.gw.GetDocument(ctx, gateway.Join(profiles.UsersCollection, p.ID))
	if err != nil || doc == nil {
		t.Fatalf("profile document = %v, %v", doc, err)
	}
	user, err := gateway.DecodeAs[models.User](doc)
	if err != nil {
		t.Fatal(err)
	}
	if user.UserName != "Lee" || user.RegistrationDate == 0 || user.DramaList == nil || len(user.DramaList) != 0 {
		t.Errorf("profile = %+v", user)
	}

	acct, err := f.gw.GetDocument(ctx, gateway.Join(AccountsCollection, emailKey("lee@example.com")))
	if err != nil || acct == nil {
		t.Fatalf("account document = %v, %v", acct, err)
	}
	if acct.Data["passwordHash"] == "password123" {
		t.Error("password stored in plain text")
	}
}

func TestProvider_SignUpDuplicateEmail(t *testing.T) {
	f := newTestProvider(t)
	ctx := context.Background()

	if _, err := f.provider.SignUp(ctx, "lee@example.com", "password123", "Lee"); err != nil {
		t.Fatal(err)
	}
	_, err := f.provider.SignUp(ctx, "LEE@example.com", "password456", "Lee2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("SignUp() error = %v, want ErrEmailTaken", err)
	}
}

func TestProvider_SignUpValidation(t *testing.T) {
	f := newTestProvider(t)
	tests := []struct {
		name     string
		email    string
		password string
		userName string
		field    string
	}{
		{"bad email", "not-an-email", "password123", "Lee", "email"},
		{"short password", "a@example.com", "short", "Lee", "password"},
		{"blank name", "a@example.com", "password123", "   ", "userName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.provider.SignUp(context.Background(), tt.email, tt.password, tt.userName)
			var verr *validation.RequestValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("SignUp() error = %v, want validation error", err)
			}
			if verr.Errors()[0].Field() != tt.field {
				t.Errorf("field = %q, want %q", verr.Errors()[0].Field(), tt.field)
			}
		})
	}
}

func TestProvider_AdminEmailGetsAdminRole(t *testing.T) {
	f := newTestProvider(t)
	p, err := f.provider.SignUp(context.Background(), "admin@example.com", "password123", "Admin")
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsAdmin() {
		t.Errorf("Role = %q, want admin", p.Role)
	}
}

func TestProvider_SignInAndVerify(t *testing.T) {
	f := newTestProvider(t)
	ctx := context.Background()
	signedUp, _ := f.provider.SignUp(ctx, "lee@example.com", "password123", "Lee")

	token, err := f.provider.SignIn(ctx, "lee@example.com", "password123")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if token.TokenType != "Bearer" || token.User.ID != signedUp.ID {
		t.Errorf("SignIn() = %+v", token)
	}

	p, claims, err := f.provider.Verify(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if p.ID != signedUp.ID || claims.SessionID() != token.SessionID {
		t.Errorf("Verify() = %+v, %+v", p, claims)
	}
}

func TestProvider_SignInRejectsBadCredentials(t *testing.T) {
	f := newTestProvider(t)
	ctx := context.Background()
	_, _ = f.provider.SignUp(ctx, "lee@example.com", "password123", "Lee")

	if _, err := f.provider.SignIn(ctx, "lee@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := f.provider.SignIn(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v", err)
	}
	if f.sessions.Len() != 0 {
		t.Errorf("sessions = %d, want 0", f.sessions.Len())
	}
}

func TestProvider_SignOutRevokesToken(t *testing.T) {
	f := newTestProvider(t)
	ctx := context.Background()
	_, _ = f.provider.SignUp(ctx, "lee@example.com", "password123", "Lee")
	token, _ := f.provider.SignIn(ctx, "lee@example.com", "password123")

	if err := f.provider.SignOut(ctx, token.SessionID); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, _, err := f.provider.Verify(ctx, token.AccessToken); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Verify() after sign-out error = %v, want ErrSessionNotFound", err)
	}
	if err := f.provider.SignOut(ctx, token.SessionID); err != nil {
		t.Errorf("repeated SignOut() error = %v", err)
	}
}

func TestProvider_Subscribe(t *testing.T) {
	f := newTestProvider(t)
	ctx := context.Background()
	signedUp, _ := f.provider.SignUp(ctx, "lee@example.com", "password123", "Lee")

	var got []StateChange
	unsubscribe := f.provider.Subscribe(func(c StateChange) { got = append(got, c) })

	token, _ := f.provider.SignIn(ctx, "lee@example.com", "password123")
	_ = f.provider.SignOut(ctx, token.SessionID)
	unsubscribe()
	_, _ = f.provider.SignIn(ctx, "lee@example.com", "password123")

	want := []StateChange{
		{Kind: StateSignedIn, UserID: signedUp.ID},
		{Kind: StateSignedOut, UserID: signedUp.ID},
	}
	if len(got) != len(want) {
		t.Fatalf("changes = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestProvider_CurrentUser(t *testing.T) {
	f := newTestProvider(t)
	if f.provider.CurrentUser(context.Background()) != nil {
		t.Error("CurrentUser() should be nil without a principal")
	}
	p := &Principal{ID: "u1"}
	if got := f.provider.CurrentUser(ContextWithPrincipal(context.Background(), p)); got != p {
		t.Errorf("CurrentUser() = %v, want %v", got, p)
	}
}

func TestProvider_SignUpStoreFailure(t *testing.T) {
	store := gatewaytest.NewStore(t)
	faulty := gatewaytest.NewFaulty(store)
	faulty.FailOn("set", "users")
	cfg := config.SecurityConfig{JWTSecret: testSecret}
	tokens, _ := NewJWTManager(&cfg)
	p := NewProvider(faulty, profiles.NewService(faulty, 0), tokens, NewMemorySessionStore(), cfg, WithBcryptCost(bcrypt.MinCost))

	_, err := p.SignUp(context.Background(), "lee@example.com", "password123", "Lee")
	if !errors.Is(err, gatewaytest.ErrInjected) {
		t.Fatalf("SignUp() error = %v, want injected failure", err)
	}
	acct, _ := store.GetDocument(context.Background(), gateway.Join(AccountsCollection, emailKey("lee@example.com")))
	if acct != nil {
		t.Error("account should not be stored when the profile write fails")
	}
}
