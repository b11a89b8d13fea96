package database

// Compound indexes on tbl_task (see migrations):
//   idx_task_assigned_completed (assigned_to, completed)
//   idx_task_animal (animal_id)
//   idx_task_territory (territory_id)
//   idx_task_scheduled (scheduled_date)
// assigned_to must come before completed in the predicate list; a completed
// filter without an assignee falls back to idx_task_scheduled ordering only.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campuspaws/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TaskType string

const (
	TaskTypeFeeding     TaskType = "feeding"
	TaskTypeMedical     TaskType = "medical"
	TaskTypeRescue      TaskType = "rescue"
	TaskTypeVaccination TaskType = "vaccination"
	TaskTypeOther       TaskType = "other"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Task struct {
	ID            uuid.UUID                `json:"id"`
	Title         string                   `json:"title"`
	Description   string                   `json:"description"`
	Type          TaskType                 `json:"type"`
	Priority      Priority                 `json:"priority"`
	AnimalID      util.Optional[uuid.UUID] `json:"animalId"`
	TerritoryID   util.Optional[uuid.UUID] `json:"territoryId"`
	AssignedTo    uuid.UUID                `json:"assignedTo"`
	CreatedBy     uuid.UUID                `json:"createdBy"`
	ScheduledDate time.Time                `json:"scheduledDate"`
	Completed     bool                     `json:"completed"`
	CompletedAt   util.Optional[time.Time] `json:"completedAt"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

const taskColumns = `id, title, description, type, priority, animal_id, territory_id, assigned_to, created_by, scheduled_date, completed, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Type, &t.Priority,
		&t.AnimalID, &t.TerritoryID, &t.AssignedTo, &t.CreatedBy, &t.ScheduledDate,
		&t.Completed, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

type CreateTaskParams struct {
	Title         string
	Description   string
	Type          TaskType
	Priority      Priority
	AnimalID      util.Optional[uuid.UUID]
	TerritoryID   util.Optional[uuid.UUID]
	AssignedTo    uuid.UUID
	CreatedBy     uuid.UUID
	ScheduledDate time.Time
}

func (db *Database) CreateTask(ctx context.Context, params CreateTaskParams) (Task, error) {
	now := time.Now().UTC()
	task := Task{
		ID:            uuid.New(),
		Title:         params.Title,
		Description:   params.Description,
		Type:          params.Type,
		Priority:      params.Priority,
		AnimalID:      params.AnimalID,
		TerritoryID:   params.TerritoryID,
		AssignedTo:    params.AssignedTo,
		CreatedBy:     params.CreatedBy,
		ScheduledDate: params.ScheduledDate,
		Completed:     false,
		CompletedAt:   util.None[time.Time](),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_task (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		task.ID, task.Title, task.Description, task.Type, task.Priority,
		task.AnimalID, task.TerritoryID, task.AssignedTo, task.CreatedBy,
		task.ScheduledDate, task.Completed, task.CompletedAt, task.CreatedAt, task.UpdatedAt); err != nil {
		return task, fmt.Errorf("database: failed to insert task (title=%s): %w", task.Title, err)
	}
	return task, nil
}

func (db *Database) GetTaskByID(ctx context.Context, id uuid.UUID) (Task, error) {
	task, err := scanTask(db.Pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tbl_task WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task, ErrTaskNotFound
		}
		return task, fmt.Errorf("database: failed to scan task: %w", err)
	}
	return task, nil
}

type ListTasksParams struct {
	AssignedTo  util.Optional[uuid.UUID]
	Completed   util.Optional[bool]
	AnimalID    util.Optional[uuid.UUID]
	TerritoryID util.Optional[uuid.UUID]
	Priority    util.Optional[Priority]
	DueBefore   util.Optional[time.Time]
	Order       OrderBy
	Limit       int
	Offset      int
}

func (lt ListTasksParams) where() (string, []any) {
	var clause strings.Builder
	var args []any
	argNum := 1

	// assigned_to leads idx_task_assigned_completed.
	if lt.AssignedTo.IsSet {
		clause.WriteString(fmt.Sprintf(" AND assigned_to = $%d", argNum))
		args = append(args, lt.AssignedTo.Val)
		argNum++
	}
	if lt.Completed.IsSet {
		clause.WriteString(fmt.Sprintf(" AND completed = $%d", argNum))
		args = append(args, lt.Completed.Val)
		argNum++
	}
	if lt.AnimalID.IsSet {
		clause.WriteString(fmt.Sprintf(" AND animal_id = $%d", argNum))
		args = append(args, lt.AnimalID.Val)
		argNum++
	}
	if lt.TerritoryID.IsSet {
		clause.WriteString(fmt.Sprintf(" AND territory_id = $%d", argNum))
		args = append(args, lt.TerritoryID.Val)
		argNum++
	}
	if lt.Priority.IsSet {
		clause.WriteString(fmt.Sprintf(" AND priority = $%d", argNum))
		args = append(args, lt.Priority.Val)
		argNum++
	}
	if lt.DueBefore.IsSet {
		clause.WriteString(fmt.Sprintf(" AND scheduled_date <= $%d", argNum))
		args = append(args, lt.DueBefore.Val)
		argNum++
	}
	return clause.String(), args
}

func (lt ListTasksParams) indexMatched() bool {
	if lt.Completed.IsSet && !lt.AssignedTo.IsSet {
		return false
	}
	if lt.Priority.IsSet {
		return false
	}
	return true
}

// ListTasks orders by scheduled date, soonest first unless DESC is
// requested.
func (db *Database) ListTasks(ctx context.Context, params ListTasksParams) ([]Task, error) {
	if !params.indexMatched() {
		db.logIndexDegrade("tbl_task", "filters outside (assigned_to, completed) prefix")
	}

	clause, args := params.where()
	query := `SELECT ` + taskColumns + ` FROM tbl_task WHERE 1=1` + clause +
		fmt.Sprintf(" ORDER BY scheduled_date %s LIMIT $%d OFFSET $%d", params.Order.SQL(), len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("database: failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func (db *Database) CountTasks(ctx context.Context, params ListTasksParams) (int, error) {
	clause, args := params.where()

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tbl_task WHERE 1=1`+clause, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("database: failed to count tasks: %w", err)
	}
	return total, nil
}

type UpdateTaskParams struct {
	Title         util.Optional[string]
	Description   util.Optional[string]
	Priority      util.Optional[Priority]
	AssignedTo    util.Optional[uuid.UUID]
	ScheduledDate util.Optional[time.Time]
	Completed     util.Optional[bool]
	CompletedAt   util.Optional[util.Optional[time.Time]]
}

func (db *Database) UpdateTaskByID(ctx context.Context, id uuid.UUID, params UpdateTaskParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_task SET `)
	var args []any
	argNum := 1

	set := func(column string, value any) {
		query.WriteString(fmt.Sprintf("%s = $%d, ", column, argNum))
		args = append(args, value)
		argNum++
	}

	if params.Title.IsSet {
		set("title", params.Title.Val)
	}
	if params.Description.IsSet {
		set("description", params.Description.Val)
	}
	if params.Priority.IsSet {
		set("priority", params.Priority.Val)
	}
	if params.AssignedTo.IsSet {
		set("assigned_to", params.AssignedTo.Val)
	}
	if params.ScheduledDate.IsSet {
		set("scheduled_date", params.ScheduledDate.Val)
	}
	if params.Completed.IsSet {
		set("completed", params.Completed.Val)
	}
	if params.CompletedAt.IsSet {
		set("completed_at", params.CompletedAt.Val)
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update task (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (db *Database) DeleteTaskByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_task WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete task (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
