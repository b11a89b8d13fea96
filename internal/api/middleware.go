package api

import (
	"errors"
	"strings"

	"campuspaws/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// Authenticate resolves the bearer token into an identity when one is
// present. Missing or bad tokens leave the request anonymous; the role
// check decides whether that is enough.
func (s *Server) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}

		identity, err := s.auth.Identify(c.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrNotAuthenticated) || errors.Is(err, auth.ErrSessionExpired) {
				return c.Next()
			}
			return fail(c, err)
		}

		c.Locals(identityLocal, identity)
		return c.Next()
	}
}

// RequireRole gates a route on the role hierarchy. Anonymous callers
// hold the public role.
func (s *Server) RequireRole(required auth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := currentIdentity(c)
		if !ok && required != auth.RolePublic {
			return respondError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if !auth.CheckRole(identity.Role, required) {
			return respondError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireAuthenticated gates a route on having an identity at all,
// with no role floor. Profile endpoints use it: a public-role login
// still owns its own identity.
func (s *Server) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := currentIdentity(c); !ok {
			return respondError(c, fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}

func currentIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(identityLocal).(auth.Identity)
	if !ok {
		return auth.Identity{Role: auth.RolePublic}, false
	}
	return identity, true
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return c.Cookies("session_token")
}
