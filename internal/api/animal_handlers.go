package api

import (
	"campuspaws/internal/animals"
	"campuspaws/internal/database"
	"campuspaws/internal/storage"
	"campuspaws/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func pathID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

func queryOptional(c *fiber.Ctx, name string) util.Optional[string] {
	if value := c.Query(name); value != "" {
		return util.Some(value)
	}
	return util.None[string]()
}

func queryOptionalUUID(c *fiber.Ctx, name string) (util.Optional[uuid.UUID], error) {
	value := c.Query(name)
	if value == "" {
		return util.None[uuid.UUID](), nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return util.None[uuid.UUID](), err
	}
	return util.Some(id), nil
}

func queryOptionalBool(c *fiber.Ctx, name string) util.Optional[bool] {
	switch c.Query(name) {
	case "true", "1":
		return util.Some(true)
	case "false", "0":
		return util.Some(false)
	default:
		return util.None[bool]()
	}
}

func (s *Server) ListAnimals(c *fiber.Ctx) error {
	feederID, err := queryOptionalUUID(c, "feederId")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid feederId")
	}

	filter := animals.ListFilter{
		Area:     queryOptional(c, "area"),
		FeederID: feederID,
		Limit:    c.QueryInt("limit"),
		Offset:   c.QueryInt("offset"),
	}
	if species := c.Query("species"); species != "" {
		filter.Species = util.Some(database.Species(species))
	}
	if status := c.Query("status"); status != "" {
		filter.Status = util.Some(database.HealthStatus(status))
	}

	result, err := s.animals.List(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, result.Items, result.Total, result.Pagination)
}

func (s *Server) ListAnimalsNeedingAttention(c *fiber.Ctx) error {
	result, err := s.animals.ListNeedingAttention(c.Context(), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, result.Items, result.Total, result.Pagination)
}

func (s *Server) GetAnimal(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid animal id")
	}

	animal, err := s.animals.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if animal == nil {
		return respondError(c, fiber.StatusNotFound, "animal not found")
	}
	return c.JSON(animal)
}

type createAnimalRequest struct {
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Age       int        `json:"age"`
	Breed     string     `json:"breed"`
	Area      string     `json:"area"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	FeederID  *uuid.UUID `json:"feederId"`
	PackID    *uuid.UUID `json:"packId"`
	Status    string     `json:"status"`
}

func (s *Server) CreateAnimal(c *fiber.Ctx) error {
	var req createAnimalRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	animal, err := s.animals.Create(c.Context(), animals.CreateInput{
		Name:      req.Name,
		Species:   database.Species(req.Species),
		Age:       req.Age,
		Breed:     req.Breed,
		Area:      req.Area,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		FeederID:  util.FromPtr(req.FeederID),
		PackID:    util.FromPtr(req.PackID),
		Status:    database.HealthStatus(req.Status),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(animal)
}

type updateAnimalRequest struct {
	Name      *string    `json:"name"`
	Age       *int       `json:"age"`
	Breed     *string    `json:"breed"`
	Area      *string    `json:"area"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	FeederID  *uuid.UUID `json:"feederId"`
	PackID    *uuid.UUID `json:"packId"`
	Status    *string    `json:"status"`
}

func (s *Server) UpdateAnimal(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid animal id")
	}

	var req updateAnimalRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	input := animals.UpdateInput{
		Name:      util.FromPtr(req.Name),
		Age:       util.FromPtr(req.Age),
		Breed:     util.FromPtr(req.Breed),
		Area:      util.FromPtr(req.Area),
		Latitude:  util.FromPtr(req.Latitude),
		Longitude: util.FromPtr(req.Longitude),
		FeederID:  util.FromPtr(req.FeederID),
		PackID:    util.FromPtr(req.PackID),
	}
	if req.Status != nil {
		input.Status = util.Some(database.HealthStatus(*req.Status))
	}

	animal, err := s.animals.Update(c.Context(), id, input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(animal)
}

func (s *Server) DeleteAnimal(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid animal id")
	}
	if err := s.animals.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) UploadAnimalPhoto(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid animal id")
	}

	identity, _ := currentIdentity(c)
	if err := s.limiter.CheckUpload(c.Context(), identity.UserID.String()); err != nil {
		return fail(c, err)
	}

	header, err := c.FormFile("photo")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "photo file is required")
	}
	file, err := header.Open()
	if err != nil {
		return fail(c, err)
	}
	defer file.Close()

	key, err := s.storage.Store(c.Context(), storage.CategoryAnimalPhoto, id, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		return fail(c, err)
	}

	animal, err := s.animals.AddPhoto(c.Context(), id, key)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(animal)
}
