package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"campuspaws/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	identities map[string]auth.Identity
}

func (f *fakeAuthenticator) Login(ctx context.Context, email, password string) (auth.Session, error) {
	return auth.Session{}, auth.ErrInvalidCredentials
}

func (f *fakeAuthenticator) Logout(ctx context.Context, token string) error {
	return nil
}

func (f *fakeAuthenticator) Identify(ctx context.Context, token string) (auth.Identity, error) {
	identity, ok := f.identities[token]
	if !ok {
		return auth.Identity{}, auth.ErrNotAuthenticated
	}
	return identity, nil
}

func newAuthTestApp(identities map[string]auth.Identity) *fiber.App {
	s := &Server{auth: &fakeAuthenticator{identities: identities}}

	app := fiber.New()
	app.Use(s.Authenticate())
	app.Get("/me", s.RequireAuthenticated(), func(c *fiber.Ctx) error {
		identity, _ := currentIdentity(c)
		return c.JSON(fiber.Map{"email": identity.Email})
	})
	app.Get("/roster", s.RequireRole(auth.RoleVolunteer), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRequireAuthenticatedAcceptsAnyIdentity(t *testing.T) {
	app := newAuthTestApp(map[string]auth.Identity{
		"visitor-token": {UserID: uuid.New(), Email: "visitor@ccf.dev", Role: auth.RolePublic},
	})

	resp := get(t, app, "/me", "visitor-token")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The same caller still sits below the volunteer floor elsewhere.
	resp = get(t, app, "/roster", "visitor-token")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireAuthenticatedRejectsAnonymous(t *testing.T) {
	app := newAuthTestApp(nil)

	resp := get(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = get(t, app, "/me", "no-such-token")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleAllowsSufficientRank(t *testing.T) {
	app := newAuthTestApp(map[string]auth.Identity{
		"admin-token": {UserID: uuid.New(), Email: "admin@ccf.dev", Role: auth.RoleAdmin},
	})

	resp := get(t, app, "/roster", "admin-token")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
