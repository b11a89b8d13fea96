package api

import (
	"time"

	"campuspaws/internal/database"
	"campuspaws/internal/medical"
	"campuspaws/internal/storage"
	"campuspaws/internal/territories"
	"campuspaws/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) ListMedicalRecords(c *fiber.Ctx) error {
	animalID, err := queryOptionalUUID(c, "animalId")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid animalId")
	}

	filter := medical.ListFilter{
		AnimalID:         animalID,
		FollowUpRequired: queryOptionalBool(c, "followUpRequired"),
		Limit:            c.QueryInt("limit"),
		Offset:           c.QueryInt("offset"),
	}
	if recordType := c.Query("type"); recordType != "" {
		filter.Type = util.Some(database.MedicalRecordType(recordType))
	}

	result, err := s.medical.List(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, result.Items, result.Total, result.Pagination)
}

func (s *Server) ListAnimalMedicalRecords(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid animal id")
	}

	result, err := s.medical.ListByAnimal(c.Context(), id, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, result.Items, result.Total, result.Pagination)
}

func (s *Server) GetMedicalRecord(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid record id")
	}

	record, err := s.medical.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if record == nil {
		return respondError(c, fiber.StatusNotFound, "medical record not found")
	}
	return c.JSON(record)
}

type createMedicalRecordRequest struct {
	AnimalID         uuid.UUID  `json:"animalId"`
	Type             string     `json:"type"`
	Description      string     `json:"description"`
	Veterinarian     *string    `json:"veterinarian"`
	Medications      []string   `json:"medications"`
	FollowUpRequired bool       `json:"followUpRequired"`
	FollowUpDate     *time.Time `json:"followUpDate"`
	SkipNotification bool       `json:"skipNotification"`
}

func (s *Server) CreateMedicalRecord(c *fiber.Ctx) error {
	var req createMedicalRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	animal, err := s.animals.Get(c.Context(), req.AnimalID)
	if err != nil {
		return fail(c, err)
	}
	if animal == nil {
		return respondError(c, fiber.StatusNotFound, "animal not found")
	}

	identity, _ := currentIdentity(c)
	recipients, err := s.candidateCaretakers(c, animal)
	if err != nil {
		return fail(c, err)
	}

	record, err := s.medical.Create(c.Context(), medical.CreateInput{
		AnimalID:            req.AnimalID,
		Type:                database.MedicalRecordType(req.Type),
		Description:         req.Description,
		Veterinarian:        util.FromPtr(req.Veterinarian),
		Medications:         req.Medications,
		FollowUpRequired:    req.FollowUpRequired,
		FollowUpDate:        util.FromPtr(req.FollowUpDate),
		CreatedBy:           identity.UserID,
		CandidateRecipients: recipients,
		SkipNotification:    req.SkipNotification,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// candidateCaretakers resolves who might care about a record for this
// animal: the current feeder first, then volunteers assigned to the
// animal's area. Order matters; follow-ups go to the head of the list.
func (s *Server) candidateCaretakers(c *fiber.Ctx, animal *database.Animal) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	var recipients []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}

	if animal.CurrentFeederID.IsSet {
		add(animal.CurrentFeederID.Val)
	}

	result, err := s.territories.List(c.Context(), territories.ListFilter{
		Area:  util.Some(animal.Area),
		Limit: 50,
	})
	if err != nil {
		return recipients, err
	}
	for _, territory := range result.Items {
		for _, volunteerID := range territory.AssignedVolunteers {
			add(volunteerID)
		}
	}
	return recipients, nil
}

type updateMedicalRecordRequest struct {
	Description      *string    `json:"description"`
	Veterinarian     *string    `json:"veterinarian"`
	Medications      *[]string  `json:"medications"`
	FollowUpRequired *bool      `json:"followUpRequired"`
	FollowUpDate     *time.Time `json:"followUpDate"`
	ClearFollowUp    bool       `json:"clearFollowUpDate"`
}

func (s *Server) UpdateMedicalRecord(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid record id")
	}

	var req updateMedicalRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	input := medical.UpdateInput{
		Description:      util.FromPtr(req.Description),
		Veterinarian:     util.FromPtr(req.Veterinarian),
		Medications:      util.FromPtr(req.Medications),
		FollowUpRequired: util.FromPtr(req.FollowUpRequired),
	}
	if req.FollowUpDate != nil {
		input.FollowUpDate = util.Some(util.Some(*req.FollowUpDate))
	} else if req.ClearFollowUp {
		input.FollowUpDate = util.Some(util.None[time.Time]())
	}

	record, err := s.medical.Update(c.Context(), id, input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(record)
}

func (s *Server) DeleteMedicalRecord(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid record id")
	}
	if err := s.medical.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) UploadMedicalDocument(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid record id")
	}

	identity, _ := currentIdentity(c)
	if err := s.limiter.CheckUpload(c.Context(), identity.UserID.String()); err != nil {
		return fail(c, err)
	}

	header, err := c.FormFile("document")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "document file is required")
	}
	file, err := header.Open()
	if err != nil {
		return fail(c, err)
	}
	defer file.Close()

	key, err := s.storage.Store(c.Context(), storage.CategoryMedicalDocument, id, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		return fail(c, err)
	}

	record, err := s.medical.AddDocument(c.Context(), id, key)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}
