package api

import (
	"errors"
	"strings"
	"time"

	"campuspaws/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return respondError(c, fiber.StatusBadRequest, "email and password are required")
	}

	if err := s.limiter.CheckLogin(c.Context(), email); err != nil {
		return fail(c, err)
	}

	session, err := s.auth.Login(c.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return respondError(c, fiber.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		}
		s.logger.Error("login failed", "email", email, "error", err)
		return fail(c, err)
	}

	if err := s.limiter.ResetLogin(c.Context(), email); err != nil {
		s.logger.Warn("failed to reset login attempts", "error", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "session_token",
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) Logout(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return respondError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if err := s.auth.Logout(c.Context(), token); err != nil && !errors.Is(err, auth.ErrNotAuthenticated) {
		return fail(c, err)
	}

	c.ClearCookie("session_token")
	return c.JSON(fiber.Map{"status": "logged out"})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) HandleRegister(c *fiber.Ctx) error {
	registrar, ok := s.auth.(Registrar)
	if !ok {
		return respondError(c, fiber.StatusNotImplemented, "registration is not available")
	}

	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if strings.TrimSpace(req.Name) == "" || email == "" {
		return respondError(c, fiber.StatusBadRequest, "name and email are required")
	}
	if len(req.Password) < 8 {
		return respondError(c, fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	if err := s.limiter.CheckRegister(c.Context(), email); err != nil {
		return fail(c, err)
	}

	user, err := registrar.Register(c.Context(), auth.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

func (s *Server) Me(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "authentication required")
	}
	return c.JSON(fiber.Map{
		"id":    identity.UserID,
		"name":  identity.Name,
		"email": identity.Email,
		"role":  identity.Role,
	})
}
