package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogin(t *testing.T) {
	ctx := context.Background()
	mock := NewMock(time.Hour)

	t.Run("valid credentials issue a session", func(t *testing.T) {
		session, err := mock.Login(ctx, "admin@ccf.dev", "admin123")
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.True(t, session.ExpiresAt.After(time.Now()))

		identity, err := mock.Identify(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin@ccf.dev", identity.Email)
		assert.Equal(t, RoleAdmin, identity.Role)
	})

	t.Run("wrong password for a known email fails immediately", func(t *testing.T) {
		_, err := mock.Login(ctx, "admin@ccf.dev", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "Invalid credentials", err.Error())
	})

	t.Run("unknown email defers to the next authenticator", func(t *testing.T) {
		_, err := mock.Login(ctx, "someone@example.com", "whatever")
		assert.ErrorIs(t, err, ErrNotMockUser)
	})

	t.Run("volunteer entry maps to the volunteer role", func(t *testing.T) {
		session, err := mock.Login(ctx, "volunteer@ccf.dev", "volunteer123")
		require.NoError(t, err)

		identity, err := mock.Identify(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, RoleVolunteer, identity.Role)
	})
}

func TestMockLogout(t *testing.T) {
	ctx := context.Background()
	mock := NewMock(time.Hour)

	session, err := mock.Login(ctx, "visitor@ccf.dev", "visitor123")
	require.NoError(t, err)

	require.NoError(t, mock.Logout(ctx, session.Token))

	_, err = mock.Identify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.ErrorIs(t, mock.Logout(ctx, session.Token), ErrNotAuthenticated)
}

func TestMockSessionExpiry(t *testing.T) {
	ctx := context.Background()
	mock := NewMock(-time.Minute)

	session, err := mock.Login(ctx, "admin@ccf.dev", "admin123")
	require.NoError(t, err)

	_, err = mock.Identify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}
