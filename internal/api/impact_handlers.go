package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) ImpactSummary(c *fiber.Ctx) error {
	since := time.Now().UTC().AddDate(0, 0, -30)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "invalid since, expected RFC3339")
		}
		since = parsed
	}

	summary, err := s.impact.Summarize(c.Context(), since)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}

func (s *Server) RecentActivity(c *fiber.Ctx) error {
	activities, err := s.impact.RecentActivity(c.Context(), c.QueryInt("limit"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"items": activities})
}

func (s *Server) ImportAnimals(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "csv file is required")
	}
	file, err := header.Open()
	if err != nil {
		return fail(c, err)
	}
	defer file.Close()

	summary, err := s.importer.ImportAnimals(c.Context(), file)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(summary)
}
