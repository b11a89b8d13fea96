package tasks

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
	CreateTask(ctx context.Context, params database.CreateTaskParams) (database.Task, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (database.Task, error)
	ListTasks(ctx context.Context, params database.ListTasksParams) ([]database.Task, error)
	CountTasks(ctx context.Context, params database.ListTasksParams) (int, error)
	UpdateTaskByID(ctx context.Context, id uuid.UUID, params database.UpdateTaskParams) error
	DeleteTaskByID(ctx context.Context, id uuid.UUID) error
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
	Title         string            `validate:"required,max=200"`
	Description   string            `validate:"max=2000"`
	Type          database.TaskType `validate:"required,oneof=feeding medical rescue vaccination other"`
	Priority      database.Priority `validate:"required,oneof=low medium high urgent"`
	AnimalID      util.Optional[uuid.UUID]
	TerritoryID   util.Optional[uuid.UUID]
	AssignedTo    uuid.UUID `validate:"required"`
	CreatedBy     uuid.UUID `validate:"required"`
	ScheduledDate time.Time `validate:"required"`

	// SkipNotification suppresses the task_assigned dispatch. The task is
	// created either way.
	SkipNotification bool
}

// Create persists the task and then emits a task-created event. Event
// handling cannot fail the creation: the task is already stored by the
// time the bus sees it.
func (m *Manager) Create(ctx context.Context, input CreateInput) (database.Task, error) {
	if err := m.validate.Validate(input); err != nil {
		return database.Task{}, err
	}

	task, err := m.db.CreateTask(ctx, database.CreateTaskParams{
		Title:         input.Title,
		Description:   input.Description,
		Type:          input.Type,
		Priority:      input.Priority,
		AnimalID:      input.AnimalID,
		TerritoryID:   input.TerritoryID,
		AssignedTo:    input.AssignedTo,
		CreatedBy:     input.CreatedBy,
		ScheduledDate: input.ScheduledDate,
	})
	if err != nil {
		return task, err
	}

	if !input.SkipNotification && task.AssignedTo != uuid.Nil {
		m.bus.Emit(ctx, events.Event{Kind: events.KindTaskCreated, Task: &task})
	}

	return task, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*database.Task, error) {
	task, err := m.db.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

type ListFilter struct {
	AssignedTo  util.Optional[uuid.UUID]
	Completed   util.Optional[bool]
	AnimalID    util.Optional[uuid.UUID]
	TerritoryID util.Optional[uuid.UUID]
	Priority    util.Optional[database.Priority]
	DueBefore   util.Optional[time.Time]
	Order       database.OrderBy
	Limit       int
	Offset      int
}

type ListResult struct {
	Items      []database.Task
	Total      int
	Pagination pagination.Meta
}

func (m *Manager) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	page := pagination.Normalize(filter.Limit, filter.Offset)
	params := database.ListTasksParams{
		AssignedTo:  filter.AssignedTo,
		Completed:   filter.Completed,
		AnimalID:    filter.AnimalID,
		TerritoryID: filter.TerritoryID,
		Priority:    filter.Priority,
		DueBefore:   filter.DueBefore,
		Order:       filter.Order,
		Limit:       page.Limit,
		Offset:      page.Offset,
	}

	total, err := m.db.CountTasks(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	items, err := m.db.ListTasks(ctx, params)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Items:      items,
		Total:      total,
		Pagination: pagination.NewMeta(total, page.Limit, page.Offset),
	}, nil
}

// ListForVolunteer returns the volunteer's open tasks, soonest first.
func (m *Manager) ListForVolunteer(ctx context.Context, volunteerID uuid.UUID, limit, offset int) (ListResult, error) {
	return m.List(ctx, ListFilter{
		AssignedTo: util.Some(volunteerID),
		Completed:  util.Some(false),
		Limit:      limit,
		Offset:     offset,
	})
}

type UpdateInput struct {
	Title         util.Optional[string]
	Description   util.Optional[string]
	Priority      util.Optional[database.Priority]
	AssignedTo    util.Optional[uuid.UUID]
	ScheduledDate util.Optional[time.Time]
}

func (m *Manager) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (database.Task, error) {
	if input.Priority.IsSet {
		switch input.Priority.Val {
		case database.PriorityLow, database.PriorityMedium, database.PriorityHigh, database.PriorityUrgent:
		default:
			return database.Task{}, validator.NewFieldError("Priority", "must be one of: low medium high urgent")
		}
	}

	if err := m.db.UpdateTaskByID(ctx, id, database.UpdateTaskParams{
		Title:         input.Title,
		Description:   input.Description,
		Priority:      input.Priority,
		AssignedTo:    input.AssignedTo,
		ScheduledDate: input.ScheduledDate,
	}); err != nil {
		return database.Task{}, err
	}
	return m.db.GetTaskByID(ctx, id)
}

// Complete marks the task done, stamping completed_at alongside the flag
// so the two can never disagree, then notifies notifyUserID (usually the
// assigner).
func (m *Manager) Complete(ctx context.Context, id uuid.UUID, notifyUserID uuid.UUID) (database.Task, error) {
	task, err := m.db.GetTaskByID(ctx, id)
	if err != nil {
		return database.Task{}, err
	}
	if task.Completed {
		return task, nil
	}

	now := time.Now().UTC()
	if err := m.db.UpdateTaskByID(ctx, id, database.UpdateTaskParams{
		Completed:   util.Some(true),
		CompletedAt: util.Some(util.Some(now)),
	}); err != nil {
		return database.Task{}, err
	}

	task, err = m.db.GetTaskByID(ctx, id)
	if err != nil {
		return database.Task{}, err
	}

	if notifyUserID != uuid.Nil {
		m.bus.Emit(ctx, events.Event{
			Kind:         events.KindTaskCompleted,
			Task:         &task,
			NotifyUserID: notifyUserID,
		})
	}

	return task, nil
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.db.DeleteTaskByID(ctx, id)
}
