package medical

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campuspaws/internal/database"
	"campuspaws/internal/events"
	"campuspaws/internal/pagination"
	"campuspaws/internal/util"
	"campuspaws/internal/validator"

	"github.com/google/uuid"
)

type Store interface {
	CreateMedicalRecord(ctx context.Context, params database.CreateMedicalRecordParams) (database.MedicalRecord, error)
	GetMedicalRecordByID(ctx context.Context, id uuid.UUID) (database.MedicalRecord, error)
	ListMedicalRecords(ctx context.Context, params database.ListMedicalRecordsParams) ([]database.MedicalRecord, error)
	CountMedicalRecords(ctx context.Context, params database.ListMedicalRecordsParams) (int, error)
	UpdateMedicalRecordByID(ctx context.Context, id uuid.UUID, params database.UpdateMedicalRecordParams) error
	DeleteMedicalRecordByID(ctx context.Context, id uuid.UUID) error
}

type Manager struct {
	logger   *slog.Logger
	db       Store
	validate *validator.Validator
	bus      *events.Bus
}

func NewManager(logger *slog.Logger, db Store, validate *validator.Validator, bus *events.Bus) Manager {
	return Manager{logger: logger, db: db, validate: validate, bus: bus}
}

type CreateInput struct {
	AnimalID         uuid.UUID                  `validate:"required"`
	Type             database.MedicalRecordType `validate:"required,oneof=checkup vaccination treatment emergency"`
	Description      string                     `validate:"required,max=5000"`
	Veterinarian     util.Optional[string]
	Medications      []string
	DocumentKeys     []string
	FollowUpRequired bool
	FollowUpDate     util.Optional[time.Time]
	CreatedBy        uuid.UUID `validate:"required"`

	// CandidateRecipients are the caretakers who may be alerted about
	// this record. Dispatch decisions happen downstream.
	CandidateRecipients []uuid.UUID

	SkipNotification bool
}

// Create persists the record, then emits a created event carrying the
// candidate recipients. The record is stored before any alerting runs,
// so alert failures can never lose medical data.
func (m *Manager) Create(ctx context.Context, input CreateInput) (database.MedicalRecord, error) {
	if err := m.validate.Validate(input); err != nil {
		return database.MedicalRecord{}, err
	}
	// A follow-up date without the flag is a contradiction we refuse to
	// store rather than silently reinterpret.
	if input.FollowUpDate.IsSet && !input.FollowUpRequired {
		return database.MedicalRecord{}, validator.NewFieldError("FollowUpDate", "requires follow_up_required to be set")
	}

	record, err := m.db.CreateMedicalRecord(ctx, database.CreateMedicalRecordParams{
		AnimalID:         input.AnimalID,
		Type:             input.Type,
		Description:      input.Description,
		Veterinarian:     input.Veterinarian,
		Medications:      input.Medications,
		DocumentKeys:     input.DocumentKeys,
		FollowUpRequired: input.FollowUpRequired,
		FollowUpDate:     input.FollowUpDate,
		CreatedBy:        input.CreatedBy,
	})
	if err != nil {
		return record, err
	}

	if !input.SkipNotification {
		m.bus.Emit(ctx, events.Event{
			Kind:                events.KindMedicalRecordCreated,
			MedicalRecord:       &record,
			CandidateRecipients: input.CandidateRecipients,
		})
	}

	return record, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*database.MedicalRecord, error) {
	record, err := m.db.GetMedicalRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrMedicalRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

type ListFilter struct {
	AnimalID         util.Optional[uuid.UUID]
	Type             util.Optional[database.MedicalRecordType]
	FollowUpRequired util.Optional[bool]
	FollowUpDue      util.Optional[time.Time]
	Limit            int
	Offset           int
}

type ListResult struct {
	Items      []database.MedicalRecord
	Total      int
	Pagination pagination.Meta
}

func (m *Manager) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	page := pagination.Normalize(filter.Limit, filter.Offset)
	params := database.ListMedicalRecordsParams{
		AnimalID:         filter.AnimalID,
		Type:             filter.Type,
		FollowUpRequired: filter.FollowUpRequired,
		FollowUpDue:      filter.FollowUpDue,
		Limit:            page.Limit,
		Offset:           page.Offset,
	}

	total, err := m.db.CountMedicalRecords(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	items, err := m.db.ListMedicalRecords(ctx, params)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Items:      items,
		Total:      total,
		Pagination: pagination.NewMeta(total, page.Limit, page.Offset),
	}, nil
}

// ListByAnimal is the animal profile timeline, newest entries first.
func (m *Manager) ListByAnimal(ctx context.Context, animalID uuid.UUID, limit, offset int) (ListResult, error) {
	return m.List(ctx, ListFilter{
		AnimalID: util.Some(animalID),
		Limit:    limit,
		Offset:   offset,
	})
}

// ListFollowUpsDue returns records whose follow-up is flagged and due on
// or before the cutoff. The reminder daemon drives this.
func (m *Manager) ListFollowUpsDue(ctx context.Context, cutoff time.Time, limit, offset int) (ListResult, error) {
	return m.List(ctx, ListFilter{
		FollowUpRequired: util.Some(true),
		FollowUpDue:      util.Some(cutoff),
		Limit:            limit,
		Offset:           offset,
	})
}

type UpdateInput struct {
	Description      util.Optional[string]
	Veterinarian     util.Optional[string]
	Medications      util.Optional[[]string]
	DocumentKeys     util.Optional[[]string]
	FollowUpRequired util.Optional[bool]
	FollowUpDate     util.Optional[util.Optional[time.Time]]
}

func (m *Manager) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (database.MedicalRecord, error) {
	if input.FollowUpDate.IsSet && input.FollowUpDate.Val.IsSet {
		required := true
		if input.FollowUpRequired.IsSet {
			required = input.FollowUpRequired.Val
		} else {
			current, err := m.db.GetMedicalRecordByID(ctx, id)
			if err != nil {
				return database.MedicalRecord{}, err
			}
			required = current.FollowUpRequired
		}
		if !required {
			return database.MedicalRecord{}, validator.NewFieldError("FollowUpDate", "requires follow_up_required to be set")
		}
	}

	if err := m.db.UpdateMedicalRecordByID(ctx, id, database.UpdateMedicalRecordParams{
		Description:      input.Description,
		Veterinarian:     input.Veterinarian,
		Medications:      input.Medications,
		DocumentKeys:     input.DocumentKeys,
		FollowUpRequired: input.FollowUpRequired,
		FollowUpDate:     input.FollowUpDate,
	}); err != nil {
		return database.MedicalRecord{}, err
	}
	return m.db.GetMedicalRecordByID(ctx, id)
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.db.DeleteMedicalRecordByID(ctx, id)
}

// AddDocument appends a storage key to the record's document set.
func (m *Manager) AddDocument(ctx context.Context, id uuid.UUID, key string) (database.MedicalRecord, error) {
	record, err := m.db.GetMedicalRecordByID(ctx, id)
	if err != nil {
		return database.MedicalRecord{}, err
	}
	keys := append(append([]string{}, record.DocumentKeys...), key)
	return m.Update(ctx, id, UpdateInput{DocumentKeys: util.Some(keys)})
}
