package api

import (
	"campuspaws/internal/territories"
	"campuspaws/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) ListTerritories(c *fiber.Ctx) error {
	volunteer, err := queryOptionalUUID(c, "volunteer")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid volunteer")
	}

	result, err := s.territories.List(c.Context(), territories.ListFilter{
		Area:      queryOptional(c, "area"),
		Volunteer: volunteer,
		Limit:     c.QueryInt("limit"),
		Offset:    c.QueryInt("offset"),
	})
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, result.Items, result.Total, result.Pagination)
}

func (s *Server) GetTerritory(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid territory id")
	}

	territory, err := s.territories.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if territory == nil {
		return respondError(c, fiber.StatusNotFound, "territory not found")
	}
	return c.JSON(territory)
}

type createTerritoryRequest struct {
	Name               string      `json:"name"`
	Area               string      `json:"area"`
	Description        string      `json:"description"`
	AssignedVolunteers []uuid.UUID `json:"assignedVolunteers"`
}

func (s *Server) CreateTerritory(c *fiber.Ctx) error {
	var req createTerritoryRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	territory, err := s.territories.Create(c.Context(), territories.CreateInput{
		Name:               req.Name,
		Area:               req.Area,
		Description:        req.Description,
		AssignedVolunteers: req.AssignedVolunteers,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(territory)
}

type updateTerritoryRequest struct {
	Name               *string      `json:"name"`
	Area               *string      `json:"area"`
	Description        *string      `json:"description"`
	AssignedVolunteers *[]uuid.UUID `json:"assignedVolunteers"`
}

func (s *Server) UpdateTerritory(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid territory id")
	}

	var req updateTerritoryRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	territory, err := s.territories.Update(c.Context(), id, territories.UpdateInput{
		Name:               util.FromPtr(req.Name),
		Area:               util.FromPtr(req.Area),
		Description:        util.FromPtr(req.Description),
		AssignedVolunteers: util.FromPtr(req.AssignedVolunteers),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(territory)
}

func (s *Server) DeleteTerritory(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid territory id")
	}
	if err := s.territories.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) AssignTerritoryVolunteer(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid territory id")
	}
	volunteerID, err := pathID(c, "volunteerID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid volunteer id")
	}

	territory, err := s.territories.AssignVolunteer(c.Context(), id, volunteerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(territory)
}

func (s *Server) UnassignTerritoryVolunteer(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid territory id")
	}
	volunteerID, err := pathID(c, "volunteerID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid volunteer id")
	}

	territory, err := s.territories.UnassignVolunteer(c.Context(), id, volunteerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(territory)
}
