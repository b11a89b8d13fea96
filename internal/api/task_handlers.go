package api

import (
	"time"

	"campuspaws/internal/database"
	"campuspaws/internal/tasks"
	"campuspaws/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) ListTasks(c *fiber.Ctx) error {
	assignedTo, err := queryOptionalUUID(c, "assignedTo")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid assignedTo")
	}
	animalID, err := queryOptionalUUID(c, "animalId")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid animalId")
	}
	territoryID, err := queryOptionalUUID(c, "territoryId")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid territoryId")
	}

	filter := tasks.ListFilter{
		AssignedTo:  assignedTo,
		Completed:   queryOptionalBool(c, "completed"),
		AnimalID:    animalID,
		TerritoryID: territoryID,
		Limit:       c.QueryInt("limit"),
		Offset:      c.QueryInt("offset"),
	}
	if priority := c.Query("priority"); priority != "" {
		filter.Priority = util.Some(database.Priority(priority))
	}
	if dueBefore := c.Query("dueBefore"); dueBefore != "" {
		cutoff, err := time.Parse(time.RFC3339, dueBefore)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "invalid dueBefore, expected RFC3339")
		}
		filter.DueBefore = util.Some(cutoff)
	}
	if c.Query("order") == "desc" {
		filter.Order = database.OrderByDESC
	}

	result, err := s.tasks.List(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, result.Items, result.Total, result.Pagination)
}

func (s *Server) ListMyTasks(c *fiber.Ctx) error {
	identity, _ := currentIdentity(c)
	result, err := s.tasks.ListForVolunteer(c.Context(), identity.UserID, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, result.Items, result.Total, result.Pagination)
}

func (s *Server) GetTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid task id")
	}

	task, err := s.tasks.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if task == nil {
		return respondError(c, fiber.StatusNotFound, "task not found")
	}
	return c.JSON(task)
}

type createTaskRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Type             string     `json:"type"`
	Priority         string     `json:"priority"`
	AnimalID         *uuid.UUID `json:"animalId"`
	TerritoryID      *uuid.UUID `json:"territoryId"`
	AssignedTo       uuid.UUID  `json:"assignedTo"`
	ScheduledDate    time.Time  `json:"scheduledDate"`
	SkipNotification bool       `json:"skipNotification"`
}

func (s *Server) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	identity, _ := currentIdentity(c)
	task, err := s.tasks.Create(c.Context(), tasks.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		Type:             database.TaskType(req.Type),
		Priority:         database.Priority(req.Priority),
		AnimalID:         util.FromPtr(req.AnimalID),
		TerritoryID:      util.FromPtr(req.TerritoryID),
		AssignedTo:       req.AssignedTo,
		CreatedBy:        identity.UserID,
		ScheduledDate:    req.ScheduledDate,
		SkipNotification: req.SkipNotification,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

type updateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Priority      *string    `json:"priority"`
	AssignedTo    *uuid.UUID `json:"assignedTo"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

func (s *Server) UpdateTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid task id")
	}

	var req updateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	input := tasks.UpdateInput{
		Title:         util.FromPtr(req.Title),
		Description:   util.FromPtr(req.Description),
		AssignedTo:    util.FromPtr(req.AssignedTo),
		ScheduledDate: util.FromPtr(req.ScheduledDate),
	}
	if req.Priority != nil {
		input.Priority = util.Some(database.Priority(*req.Priority))
	}

	task, err := s.tasks.Update(c.Context(), id, input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(task)
}

// CompleteTask marks the task done. The task creator gets notified, not
// the completer.
func (s *Server) CompleteTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid task id")
	}

	existing, err := s.tasks.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if existing == nil {
		return respondError(c, fiber.StatusNotFound, "task not found")
	}

	task, err := s.tasks.Complete(c.Context(), id, existing.CreatedBy)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(task)
}

func (s *Server) DeleteTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid task id")
	}
	if err := s.tasks.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
