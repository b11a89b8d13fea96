package database

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

type Territory struct {
	ID                 uuid.UUID   `json:"id"`
	Name               string      `json:"name"`
	Area               string      `json:"area"`
	Description        string      `json:"description"`
	AssignedVolunteers []uuid.UUID `json:"assignedVolunteers"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

const territoryColumns = `id, name, area, description, assigned_volunteers, created_at, updated_at`

func scanTerritory(row pgx.Row) (Territory, error) {
	var t Territory
	err := row.Scan(&t.ID, &t.Name, &t.Area, &t.Description, &t.AssignedVolunteers, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

type CreateTerritoryParams struct {
	Name               string
	Area               string
	Description        string
	AssignedVolunteers []uuid.UUID
}

func (db *Database) CreateTerritory(ctx context.Context, params CreateTerritoryParams) (Territory, error) {
	now := time.Now().UTC()
	territory := Territory{
		ID:                 uuid.New(),
		Name:               params.Name,
		Area:               params.Area,
		Description:        params.Description,
		AssignedVolunteers: params.AssignedVolunteers,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_territory (`+territoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		territory.ID, territory.Name, territory.Area, territory.Description,
		territory.AssignedVolunteers, territory.CreatedAt, territory.UpdatedAt); err != nil {
		return territory, fmt.Errorf("database: failed to insert territory (name=%s): %w", territory.Name, err)
	}
	return territory, nil
}

func (db *Database) GetTerritoryByID(ctx context.Context, id uuid.UUID) (Territory, error) {
	territory, err := scanTerritory(db.Pool.QueryRow(ctx, `SELECT `+territoryColumns+` FROM tbl_territory WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return territory, ErrTerritoryNotFound
		}
		return territory, fmt.Errorf("database: failed to scan territory: %w", err)
	}
	return territory, nil
}

type ListTerritoriesParams struct {
	Area      util.Optional[string]
	Volunteer util.Optional[uuid.UUID]
	Limit     int
	Offset    int
}

func (lt ListTerritoriesParams) where() (string, []any) {
	var clause strings.Builder
	var args []any
	argNum := 1

	if lt.Area.IsSet {
		clause.WriteString(fmt.Sprintf(" AND area = $%d", argNum))
		args = append(args, lt.Area.Val)
		argNum++
	}
	if lt.Volunteer.IsSet {
		clause.WriteString(fmt.Sprintf(" AND $%d = ANY(assigned_volunteers)", argNum))
		args = append(args, lt.Volunteer.Val)
		argNum++
	}
	return clause.String(), args
}

func (db *Database) ListTerritories(ctx context.Context, params ListTerritoriesParams) ([]Territory, error) {
	clause, args := params.where()
	query := `SELECT ` + territoryColumns + ` FROM tbl_territory WHERE 1=1` + clause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list territories: %w", err)
	}
	defer rows.Close()

	var territories []Territory
	for rows.Next() {
		territory, err := scanTerritory(rows)
		if err != nil {
			return nil, fmt.Errorf("database: failed to scan territory: %w", err)
		}
		territories = append(territories, territory)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate territories: %w", err)
	}
	return territories, nil
}

func (db *Database) CountTerritories(ctx context.Context, params ListTerritoriesParams) (int, error) {
	clause, args := params.where()

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tbl_territory WHERE 1=1`+clause, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("database: failed to count territories: %w", err)
	}
	return total, nil
}

type UpdateTerritoryParams struct {
	Name               util.Optional[string]
	Area               util.Optional[string]
	Description        util.Optional[string]
	AssignedVolunteers util.Optional[[]uuid.UUID]
}

func (db *Database) UpdateTerritoryByID(ctx context.Context, id uuid.UUID, params UpdateTerritoryParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_territory SET `)
	var args []any
	argNum := 1

	set := func(column string, value any) {
		query.WriteString(fmt.Sprintf("%s = $%d, ", column, argNum))
		args = append(args, value)
		argNum++
	}

	if params.Name.IsSet {
		set("name", params.Name.Val)
	}
	if params.Area.IsSet {
		set("area", params.Area.Val)
	}
	if params.Description.IsSet {
		set("description", params.Description.Val)
	}
	if params.AssignedVolunteers.IsSet {
		set("assigned_volunteers", params.AssignedVolunteers.Val)
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update territory (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTerritoryNotFound
	}
	return nil
}

func (db *Database) DeleteTerritoryByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_territory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete territory (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTerritoryNotFound
	}
	return nil
}
