package api

import (
	"errors"

	"campuspaws/internal/database"
	"campuspaws/internal/ratelimit"
	"campuspaws/internal/validator"

	"github.com/gofiber/fiber/v2"
)

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// fail maps domain errors to HTTP statuses. Unmapped errors become an
// opaque 500; internals never leak into the response body.
func fail(c *fiber.Ctx, err error) error {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	}

	switch {
	case errors.Is(err, database.ErrAnimalNotFound),
		errors.Is(err, database.ErrTaskNotFound),
		errors.Is(err, database.ErrMedicalRecordNotFound),
		errors.Is(err, database.ErrNotificationNotFound),
		errors.Is(err, database.ErrTerritoryNotFound),
		errors.Is(err, database.ErrUserNotFound):
		return respondError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, ratelimit.ErrTooManyAttempts):
		return respondError(c, fiber.StatusTooManyRequests, "too many attempts, try again later")
	default:
		return respondError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func paginated(c *fiber.Ctx, items any, total int, meta any) error {
	return c.JSON(fiber.Map{
		"items":      items,
		"total":      total,
		"pagination": meta,
	})
}
