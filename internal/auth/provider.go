// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/config"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/metrics"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/profiles"
	"github.com/tomtom215/dramalog/internal/validation"
)

// AccountsCollection holds one credential document per email address.
const AccountsCollection = "accounts"

var (
	// ErrEmailTaken is returned by SignUp when the email already has an account.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials is returned by SignIn for an unknown email or a
	// wrong password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Principal is the signed-in user as seen by domain code.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the principal may edit catalog data.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	SessionID   string    `json:"session_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Principal `json:"user"`
}

// StateKind identifies an identity transition.
type StateKind string

const (
	StateSignedIn  StateKind = "signed_in"
	StateSignedOut StateKind = "signed_out"
)

// StateChange is delivered to observers after every sign-in and sign-out.
type StateChange struct {
	Kind   StateKind
	UserID string
}

// Identity is the identity service consumed by the HTTP layer.
type Identity interface {
	// CurrentUser returns the principal attached to ctx, or nil.
	CurrentUser(ctx context.Context) *Principal
	SignIn(ctx context.Context, email, password string) (*Token, error)
	SignOut(ctx context.Context, sessionID string) error
	// Subscribe registers fn for state changes. The returned func removes it.
	Subscribe(fn func(StateChange)) (unsubscribe func())
}

// Account is the credential document stored at accounts/{emailKey}.
type Account struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"`
	CreatedAt    int64  `json:"createdAt"` // epoch milliseconds
}

// SignUpRequest carries the sign-up form.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	UserName string `json:"userName" validate:"notblank,max=30"`
}

// Provider is the built-in Identity implementation.
type Provider struct {
	gw         gateway.Gateway
	profiles   *profiles.Service
	tokens     *JWTManager
	sessions   SessionStore
	adminEmail string
	secLog     *logging.SecurityLogger
	bcryptCost int
	now        func() time.Time

	mu        sync.RWMutex
	observers map[int]func(StateChange)
	nextObsID int
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.bcryptCost = cost }
}

// NewProvider creates the identity provider.
func NewProvider(gw gateway.Gateway, profileService *profiles.Service, tokens *JWTManager, sessions SessionStore, cfg config.SecurityConfig, opts ...Option) *Provider {
	p := &Provider{
		gw:         gw,
		profiles:   profileService,
		tokens:     tokens,
		sessions:   sessions,
		adminEmail: normalizeEmail(cfg.AdminEmail),
		secLog:     logging.NewSecurityLogger(),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		observers:  make(map[int]func(StateChange)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailKey maps an email to a path-safe document id.
func emailKey(email string) string {
	sum := sha256.Sum256([]byte(normalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

func (p *Provider) accountPath(email string) string {
	return gateway.Join(AccountsCollection, emailKey(email))
}

// SignUp registers a new account and creates its profile document.
func (p *Provider) SignUp(ctx context.Context, email, password, userName string) (*Principal, error) {
	req := SignUpRequest{Email: strings.TrimSpace(email), Password: password, UserName: userName}
	if verr := validation.ValidateStruct(req); verr != nil {
		metrics.RecordAuthEvent("sign_up", false)
		return nil, verr
	}

	path := p.accountPath(req.Email)
	existing, err := p.gw.GetDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.RecordAuthEvent("sign_up", false)
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), p.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := models.RoleUser
	if p.adminEmail != "" && normalizeEmail(req.Email) == p.adminEmail {
		role = models.RoleAdmin
	}

	account := Account{
		UserID:       uuid.NewString(),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    p.now().UnixMilli(),
	}

	if _, err := p.profiles.Create(ctx, account.UserID, account.Email, req.UserName); err != nil {
		return nil, err
	}
	if err := p.gw.SetDocument(ctx, path, account, false); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("user_id", account.UserID).Msg("failed to store account")
		return nil, err
	}

	metrics.RecordAuthEvent("sign_up", true)
	p.secLog.LogSignUp(account.UserID, account.Email)
	return &Principal{ID: account.UserID, Email: account.Email, Role: account.Role}, nil
}

// SignIn verifies the password and issues a token bound to a new session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Token, error) {
	ip := ClientIPFromContext(ctx)
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Invalid("email", "email and password are required")
	}

	doc, err := p.gw.GetDocument(ctx, p.accountPath(email))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		p.rejectSignIn(email, ip, "unknown email")
		return nil, ErrInvalidCredentials
	}
	account, err := gateway.DecodeAs[Account](doc)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		p.rejectSignIn(email, ip, "wrong password")
		return nil, ErrInvalidCredentials
	}

	issuedAt := p.now()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    account.UserID,
		Email:     account.Email,
		Role:      account.Role,
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(p.tokens.Timeout()),
	}
	if err := p.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	principal := session.Principal()
	signed, err := p.tokens.GenerateToken(*principal, session.ID, issuedAt, session.ExpiresAt)
	if err != nil {
		_ = p.sessions.Delete(ctx, session.ID)
		return nil, err
	}

	metrics.RecordAuthEvent("sign_in", true)
	p.secLog.LogSignIn(account.UserID, session.ID, ip)
	p.notify(StateChange{Kind: StateSignedIn, UserID: account.UserID})

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		SessionID:   session.ID,
		ExpiresAt:   session.ExpiresAt,
		User:        *principal,
	}, nil
}

func (p *Provider) rejectSignIn(email, ip, reason string) {
	metrics.RecordAuthEvent("sign_in", false)
	p.secLog.LogSignInFailure(email, ip, reason)
}

// SignOut deletes the session, which revokes its token. Unknown sessions are
// ignored.
func (p *Provider) SignOut(ctx context.Context, sessionID string) error {
	session, err := p.sessions.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
		return p.sessions.Delete(ctx, sessionID)
	}
	if err != nil {
		return err
	}

	if err := p.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	metrics.RecordAuthEvent("sign_out", true)
	p.secLog.LogSignOut(session.UserID, sessionID)
	p.notify(StateChange{Kind: StateSignedOut, UserID: session.UserID})
	return nil
}

// Verify resolves a bearer token to its principal. The token must be valid
// and its session must still exist.
func (p *Provider) Verify(ctx context.Context, token string) (*Principal, *Claims, error) {
	claims, err := p.tokens.ValidateToken(token)
	if err != nil {
		return nil, nil, err
	}
	session, err := p.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		return nil, nil, err
	}
	if session.UserID != claims.UserID {
		return nil, nil, fmt.Errorf("session does not belong to token subject")
	}
	return session.Principal(), claims, nil
}

// CurrentUser returns the principal attached to ctx by the middleware.
func (p *Provider) CurrentUser(ctx context.Context) *Principal {
	return PrincipalFromContext(ctx)
}

// Subscribe registers fn for sign-in and sign-out notifications.
func (p *Provider) Subscribe(fn func(StateChange)) func() {
	p.mu.Lock()
	id := p.nextObsID
	p.nextObsID++
	p.observers[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.observers, id)
			p.mu.Unlock()
		})
	}
}

func (p *Provider) notify(change StateChange) {
	p.mu.RLock()
	fns := make([]func(StateChange), 0, len(p.observers))
	for _, fn := range p.observers {
		fns = append(fns, fn)
	}
	p.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}

var _ Identity = (*Provider)(nil)
