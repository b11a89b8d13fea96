package territories

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

type Store interface {
	CreateTerritory(ctx context.Context, params database.CreateTerritoryParams) (database.Territory, error)
	GetTerritoryByID(ctx context.Context, id uuid.UUID) (database.Territory, error)
	ListTerritories(ctx context.Context, params database.ListTerritoriesParams) ([]database.Territory, error)
	CountTerritories(ctx context.Context, params database.ListTerritoriesParams) (int, error)
	UpdateTerritoryByID(ctx context.Context, id uuid.UUID, params database.UpdateTerritoryParams) error
	DeleteTerritoryByID(ctx context.Context, id uuid.UUID) error
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
	Name               string `validate:"required,max=100"`
	Area               string `validate:"required,max=100"`
	Description        string `validate:"max=2000"`
	AssignedVolunteers []uuid.UUID
}

func (m *Manager) Create(ctx context.Context, input CreateInput) (database.Territory, error) {
	if err := m.validate.Validate(input); err != nil {
		return database.Territory{}, err
	}

	return m.db.CreateTerritory(ctx, database.CreateTerritoryParams{
		Name:               input.Name,
		Area:               input.Area,
		Description:        input.Description,
		AssignedVolunteers: input.AssignedVolunteers,
	})
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*database.Territory, error) {
	territory, err := m.db.GetTerritoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrTerritoryNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &territory, nil
}

type ListFilter struct {
	Area      util.Optional[string]
	Volunteer util.Optional[uuid.UUID]
	Limit     int
	Offset    int
}

type ListResult struct {
	Items      []database.Territory
	Total      int
	Pagination pagination.Meta
}

func (m *Manager) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	page := pagination.Normalize(filter.Limit, filter.Offset)
	params := database.ListTerritoriesParams{
		Area:      filter.Area,
		Volunteer: filter.Volunteer,
		Limit:     page.Limit,
		Offset:    page.Offset,
	}

	total, err := m.db.CountTerritories(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	items, err := m.db.ListTerritories(ctx, params)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Items:      items,
		Total:      total,
		Pagination: pagination.NewMeta(total, page.Limit, page.Offset),
	}, nil
}

type UpdateInput struct {
	Name               util.Optional[string]
	Area               util.Optional[string]
	Description        util.Optional[string]
	AssignedVolunteers util.Optional[[]uuid.UUID]
}

func (m *Manager) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (database.Territory, error) {
	if input.Name.IsSet && input.Name.Val == "" {
		return database.Territory{}, validator.NewFieldError("Name", "is required")
	}

	if err := m.db.UpdateTerritoryByID(ctx, id, database.UpdateTerritoryParams{
		Name:               input.Name,
		Area:               input.Area,
		Description:        input.Description,
		AssignedVolunteers: input.AssignedVolunteers,
	}); err != nil {
		return database.Territory{}, err
	}
	return m.db.GetTerritoryByID(ctx, id)
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.db.DeleteTerritoryByID(ctx, id)
}

// AssignVolunteer adds the volunteer to the territory roster, ignoring
// duplicates.
func (m *Manager) AssignVolunteer(ctx context.Context, id, volunteerID uuid.UUID) (database.Territory, error) {
	territory, err := m.db.GetTerritoryByID(ctx, id)
	if err != nil {
		return database.Territory{}, err
	}
	for _, existing := range territory.AssignedVolunteers {
		if existing == volunteerID {
			return territory, nil
		}
	}
	roster := append(append([]uuid.UUID{}, territory.AssignedVolunteers...), volunteerID)
	return m.Update(ctx, id, UpdateInput{AssignedVolunteers: util.Some(roster)})
}

// UnassignVolunteer removes the volunteer from the roster if present.
func (m *Manager) UnassignVolunteer(ctx context.Context, id, volunteerID uuid.UUID) (database.Territory, error) {
	territory, err := m.db.GetTerritoryByID(ctx, id)
	if err != nil {
		return database.Territory{}, err
	}
	roster := make([]uuid.UUID, 0, len(territory.AssignedVolunteers))
	for _, existing := range territory.AssignedVolunteers {
		if existing != volunteerID {
			roster = append(roster, existing)
		}
	}
	if len(roster) == len(territory.AssignedVolunteers) {
		return territory, nil
	}
	return m.Update(ctx, id, UpdateInput{AssignedVolunteers: util.Some(roster)})
}
