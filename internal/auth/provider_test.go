package auth

import (
	"context"
	"testing"
	"time"

	"campuspaws/internal/config"
	"campuspaws/internal/database"
	"campuspaws/internal/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeProviderStore struct {
	usersByEmail map[string]database.User
	usersByID    map[uuid.UUID]database.User
	teams        map[uuid.UUID][]string
	sessions     map[string]database.Session
}

func newFakeProviderStore() *fakeProviderStore {
	return &fakeProviderStore{
		usersByEmail: make(map[string]database.User),
		usersByID:    make(map[uuid.UUID]database.User),
		teams:        make(map[uuid.UUID][]string),
		sessions:     make(map[string]database.Session),
	}
}

func (f *fakeProviderStore) addUser(email, password string, teams ...string) database.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := database.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: string(hash),
	}
	f.usersByEmail[email] = user
	f.usersByID[user.ID] = user
	f.teams[user.ID] = teams
	return user
}

func (f *fakeProviderStore) CreateUser(ctx context.Context, params database.CreateUserParams) (database.User, error) {
	user := database.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
	}
	f.usersByEmail[user.Email] = user
	f.usersByID[user.ID] = user
	return user, nil
}

func (f *fakeProviderStore) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	user, ok := f.usersByID[id]
	if !ok {
		return database.User{}, database.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeProviderStore) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return database.User{}, database.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeProviderStore) ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return f.teams[userID], nil
}

func (f *fakeProviderStore) AddTeamMember(ctx context.Context, userID uuid.UUID, team string) error {
	f.teams[userID] = append(f.teams[userID], team)
	return nil
}

func (f *fakeProviderStore) CreateSession(ctx context.Context, params database.CreateSessionParams) (database.Session, error) {
	session := database.Session{
		ID:        uuid.New(),
		Token:     params.Token,
		UserID:    params.UserID,
		ExpiresAt: params.ExpiresAt,
	}
	f.sessions[session.Token] = session
	return session, nil
}

func (f *fakeProviderStore) GetSessionByToken(ctx context.Context, token string) (database.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return database.Session{}, database.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeProviderStore) DeleteSessionByToken(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		MockMode:         false,
		SessionExpiresIn: time.Hour,
		AdminTeam:        "admins",
		VolunteerTeam:    "volunteers",
	}
}

func TestProviderLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeProviderStore()
	store.addUser("vol@example.com", "secret-password", "volunteers")
	provider := NewProvider(logger.Discard(), testAuthConfig(), store)

	t.Run("valid credentials", func(t *testing.T) {
		session, err := provider.Login(ctx, "vol@example.com", "secret-password")
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := provider.Login(ctx, "vol@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := provider.Login(ctx, "ghost@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestProviderRoleDerivation(t *testing.T) {
	ctx := context.Background()
	store := newFakeProviderStore()
	provider := NewProvider(logger.Discard(), testAuthConfig(), store)

	login := func(t *testing.T, email string) Identity {
		t.Helper()
		session, err := provider.Login(ctx, email, "pw-longenough")
		require.NoError(t, err)
		identity, err := provider.Identify(ctx, session.Token)
		require.NoError(t, err)
		return identity
	}

	store.addUser("none@example.com", "pw-longenough")
	store.addUser("vol@example.com", "pw-longenough", "volunteers")
	store.addUser("both@example.com", "pw-longenough", "volunteers", "admins")

	assert.Equal(t, RolePublic, login(t, "none@example.com").Role)
	assert.Equal(t, RoleVolunteer, login(t, "vol@example.com").Role)
	// Admin wins when the user is on both teams.
	assert.Equal(t, RoleAdmin, login(t, "both@example.com").Role)
}

func TestProviderExpiredSession(t *testing.T) {
	ctx := context.Background()
	store := newFakeProviderStore()
	cfg := testAuthConfig()
	cfg.SessionExpiresIn = -time.Minute
	provider := NewProvider(logger.Discard(), cfg, store)

	store.addUser("vol@example.com", "pw-longenough", "volunteers")
	session, err := provider.Login(ctx, "vol@example.com", "pw-longenough")
	require.NoError(t, err)

	_, err = provider.Identify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestProviderRegister(t *testing.T) {
	ctx := context.Background()
	store := newFakeProviderStore()
	provider := NewProvider(logger.Discard(), testAuthConfig(), store)

	user, err := provider.Register(ctx, RegisterInput{
		Name:     "New Volunteer",
		Email:    "new@example.com",
		Password: "pw-longenough",
	})
	require.NoError(t, err)
	assert.Contains(t, store.teams[user.ID], "volunteers")

	// The stored hash must verify against the original password.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw-longenough")))
}

func TestChainLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeProviderStore()
	store.addUser("real@example.com", "real-password", "volunteers")
	chain := NewChain(NewMock(time.Hour), NewProvider(logger.Discard(), testAuthConfig(), store))

	t.Run("mock email resolves in the mock table", func(t *testing.T) {
		session, err := chain.Login(ctx, "admin@ccf.dev", "admin123")
		require.NoError(t, err)

		identity, err := chain.Identify(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, identity.Role)
	})

	t.Run("wrong mock password never reaches the provider", func(t *testing.T) {
		_, err := chain.Login(ctx, "admin@ccf.dev", "real-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("non-mock email falls through to the provider", func(t *testing.T) {
		session, err := chain.Login(ctx, "real@example.com", "real-password")
		require.NoError(t, err)

		identity, err := chain.Identify(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, "real@example.com", identity.Email)
		assert.Equal(t, RoleVolunteer, identity.Role)
	})
}
