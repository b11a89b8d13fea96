package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campuspaws/internal/config"
	"campuspaws/internal/database"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is the only error login surfaces for a wrong
	// password; it never says which part was wrong.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// ErrNotMockUser signals that the email is outside the development
	// credential table, so the next authenticator should try.
	ErrNotMockUser = errors.New("auth: not a mock user")

	ErrNotAuthenticated = errors.New("auth: not authenticated")
	ErrSessionExpired   = errors.New("auth: session expired")
)

// Identity is a resolved caller: who they are and what they may do.
type Identity struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   Role
}

// Session is an issued login token with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticator is one login strategy. Implementations report
// ErrNotMockUser (or ErrSessionNotFound via Identify) to let a chained
// fallback take over.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Logout(ctx context.Context, token string) error
	Identify(ctx context.Context, token string) (Identity, error)
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// New assembles the authenticator for the configured mode. Mock mode
// puts the development credential table in front of the real provider;
// production runs the provider alone.
func New(logger *slog.Logger, cfg config.AuthConfig, db ProviderStore) Authenticator {
	provider := NewProvider(logger, cfg, db)
	if cfg.MockMode {
		return NewChain(NewMock(cfg.SessionExpiresIn), provider)
	}
	return provider
}

// Chain tries the mock table first and falls through to the provider
// only when the email is not a mock user. A wrong password for a mock
// email fails immediately; it never leaks into a provider attempt.
type Chain struct {
	mock     *Mock
	provider *Provider
}

func NewChain(mock *Mock, provider *Provider) *Chain {
	return &Chain{mock: mock, provider: provider}
}

func (c *Chain) Login(ctx context.Context, email, password string) (Session, error) {
	session, err := c.mock.Login(ctx, email, password)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrNotMockUser) {
		return Session{}, err
	}
	return c.provider.Login(ctx, email, password)
}

func (c *Chain) Logout(ctx context.Context, token string) error {
	if err := c.mock.Logout(ctx, token); err == nil {
		return nil
	}
	return c.provider.Logout(ctx, token)
}

func (c *Chain) Identify(ctx context.Context, token string) (Identity, error) {
	identity, err := c.mock.Identify(ctx, token)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, ErrNotAuthenticated) {
		return Identity{}, err
	}
	return c.provider.Identify(ctx, token)
}

// Register always goes to the real provider; the mock table is fixed.
func (c *Chain) Register(ctx context.Context, input RegisterInput) (database.User, error) {
	return c.provider.Register(ctx, input)
}
