package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campuspaws/internal/config"
	"campuspaws/internal/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ProviderStore is the slice of the database the real authenticator
// uses.
type ProviderStore interface {
	CreateUser(ctx context.Context, params database.CreateUserParams) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	AddTeamMember(ctx context.Context, userID uuid.UUID, team string) error
	CreateSession(ctx context.Context, params database.CreateSessionParams) (database.Session, error)
	GetSessionByToken(ctx context.Context, token string) (database.Session, error)
	DeleteSessionByToken(ctx context.Context, token string) error
}

// Provider authenticates against stored users with bcrypt hashes and
// database-backed sessions.
type Provider struct {
	logger *slog.Logger
	cfg    config.AuthConfig
	db     ProviderStore
}

func NewProvider(logger *slog.Logger, cfg config.AuthConfig, db ProviderStore) *Provider {
	return &Provider{logger: logger, cfg: cfg, db: db}
}

func (p *Provider) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := p.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return Session{}, err
	}

	session, err := p.db.CreateSession(ctx, database.CreateSessionParams{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(p.cfg.SessionExpiresIn),
	})
	if err != nil {
		return Session{}, err
	}

	return Session{Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

func (p *Provider) Logout(ctx context.Context, token string) error {
	return p.db.DeleteSessionByToken(ctx, token)
}

func (p *Provider) Identify(ctx context.Context, token string) (Identity, error) {
	session, err := p.db.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return Identity{}, ErrNotAuthenticated
		}
		return Identity{}, err
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		if err := p.db.DeleteSessionByToken(ctx, token); err != nil {
			p.logger.Warn("failed to delete expired session", "error", err)
		}
		return Identity{}, ErrSessionExpired
	}

	user, err := p.db.GetUserByID(ctx, session.UserID)
	if err != nil {
		return Identity{}, err
	}

	role, err := p.roleFor(ctx, user.ID)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   role,
	}, nil
}

// roleFor derives the role from team membership. Admin wins over
// volunteer when a user is in both; no team at all means public.
func (p *Provider) roleFor(ctx context.Context, userID uuid.UUID) (Role, error) {
	teams, err := p.db.ListTeamsForUser(ctx, userID)
	if err != nil {
		return RolePublic, err
	}

	role := RolePublic
	for _, team := range teams {
		switch team {
		case p.cfg.AdminTeam:
			return RoleAdmin, nil
		case p.cfg.VolunteerTeam:
			role = RoleVolunteer
		}
	}
	return role, nil
}

type RegisterInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// Register creates the user and places them on the volunteer team. The
// admin team is only ever joined by hand.
func (p *Provider) Register(ctx context.Context, input RegisterInput) (database.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return database.User{}, err
	}

	user, err := p.db.CreateUser(ctx, database.CreateUserParams{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return user, err
	}

	if err := p.db.AddTeamMember(ctx, user.ID, p.cfg.VolunteerTeam); err != nil {
		return user, err
	}
	return user, nil
}
