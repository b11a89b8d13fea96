package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// mockUser is one entry of the fixed development credential table.
// Passwords are plaintext on purpose; this table never exists in
// production.
type mockUser struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Password string
	Role     Role
}

func mockUsers() []mockUser {
	return []mockUser{
		{
			ID:       uuid.MustParse("9f1b5c00-0000-4000-8000-000000000001"),
			Name:     "Dev Admin",
			Email:    "admin@ccf.dev",
			Password: "admin123",
			Role:     RoleAdmin,
		},
		{
			ID:       uuid.MustParse("9f1b5c00-0000-4000-8000-000000000002"),
			Name:     "Dev Volunteer",
			Email:    "volunteer@ccf.dev",
			Password: "volunteer123",
			Role:     RoleVolunteer,
		},
		{
			ID:       uuid.MustParse("9f1b5c00-0000-4000-8000-000000000003"),
			Name:     "Dev Visitor",
			Email:    "visitor@ccf.dev",
			Password: "visitor123",
			Role:     RolePublic,
		},
	}
}

// Mock authenticates against the fixed table and holds its sessions in
// memory. Restarting the process logs every mock session out.
type Mock struct {
	expiresIn time.Duration
	users     map[string]mockUser

	mu       sync.Mutex
	sessions map[string]mockSession
}

type mockSession struct {
	user      mockUser
	expiresAt time.Time
}

func NewMock(expiresIn time.Duration) *Mock {
	users := make(map[string]mockUser)
	for _, user := range mockUsers() {
		users[user.Email] = user
	}
	return &Mock{
		expiresIn: expiresIn,
		users:     users,
		sessions:  make(map[string]mockSession),
	}
}

// Login resolves the email against the table. A known email with a bad
// password fails with ErrInvalidCredentials right here; only an unknown
// email returns ErrNotMockUser for the fallback.
func (m *Mock) Login(ctx context.Context, email, password string) (Session, error) {
	user, ok := m.users[email]
	if !ok {
		return Session{}, ErrNotMockUser
	}
	if user.Password != password {
		return Session{}, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return Session{}, err
	}
	expiresAt := time.Now().UTC().Add(m.expiresIn)

	m.mu.Lock()
	m.sessions[token] = mockSession{user: user, expiresAt: expiresAt}
	m.mu.Unlock()

	return Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (m *Mock) Logout(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return ErrNotAuthenticated
	}
	delete(m.sessions, token)
	return nil
}

func (m *Mock) Identify(ctx context.Context, token string) (Identity, error) {
	m.mu.Lock()
	session, ok := m.sessions[token]
	m.mu.Unlock()

	if !ok {
		return Identity{}, ErrNotAuthenticated
	}
	if time.Now().UTC().After(session.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return Identity{}, ErrSessionExpired
	}

	return Identity{
		UserID: session.user.ID,
		Name:   session.user.Name,
		Email:  session.user.Email,
		Role:   session.user.Role,
	}, nil
}
