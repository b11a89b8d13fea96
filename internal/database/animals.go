package database

// Compound indexes on tbl_animal (see migrations):
//   idx_animal_species_status (species, status)
//   idx_animal_area (area)
//   idx_animal_feeder (current_feeder_id)
// List queries append predicates in that prefix order; anything else scans.

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

type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

type HealthStatus string

const (
	HealthStatusHealthy        HealthStatus = "healthy"
	HealthStatusNeedsAttention HealthStatus = "needs_attention"
	HealthStatusUnderTreatment HealthStatus = "under_treatment"
)

type Animal struct {
	ID              uuid.UUID                `json:"id"`
	Name            string                   `json:"name"`
	Species         Species                  `json:"species"`
	Age             int                      `json:"age"`
	Breed           string                   `json:"breed"`
	Area            string                   `json:"area"`
	Latitude        float64                  `json:"latitude"`
	Longitude       float64                  `json:"longitude"`
	CurrentFeederID util.Optional[uuid.UUID] `json:"currentFeederId"`
	PackID          util.Optional[uuid.UUID] `json:"packId"`
	PhotoKeys       []string                 `json:"photoKeys"`
	Status          HealthStatus             `json:"status"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

const animalColumns = `id, name, species, age, breed, area, latitude, longitude, current_feeder_id, pack_id, photo_keys, status, created_at, updated_at`

func scanAnimal(row pgx.Row) (Animal, error) {
	var a Animal
	err := row.Scan(&a.ID, &a.Name, &a.Species, &a.Age, &a.Breed, &a.Area,
		&a.Latitude, &a.Longitude, &a.CurrentFeederID, &a.PackID, &a.PhotoKeys,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

type CreateAnimalParams struct {
	Name            string
	Species         Species
	Age             int
	Breed           string
	Area            string
	Latitude        float64
	Longitude       float64
	CurrentFeederID util.Optional[uuid.UUID]
	PackID          util.Optional[uuid.UUID]
	PhotoKeys       []string
	Status          HealthStatus
}

func (db *Database) CreateAnimal(ctx context.Context, params CreateAnimalParams) (Animal, error) {
	now := time.Now().UTC()
	animal := Animal{
		ID:              uuid.New(),
		Name:            params.Name,
		Species:         params.Species,
		Age:             params.Age,
		Breed:           params.Breed,
		Area:            params.Area,
		Latitude:        params.Latitude,
		Longitude:       params.Longitude,
		CurrentFeederID: params.CurrentFeederID,
		PackID:          params.PackID,
		PhotoKeys:       params.PhotoKeys,
		Status:          params.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_animal (`+animalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		animal.ID, animal.Name, animal.Species, animal.Age, animal.Breed, animal.Area,
		animal.Latitude, animal.Longitude, animal.CurrentFeederID, animal.PackID,
		animal.PhotoKeys, animal.Status, animal.CreatedAt, animal.UpdatedAt); err != nil {
		return animal, fmt.Errorf("database: failed to insert animal (name=%s): %w", animal.Name, err)
	}
	return animal, nil
}

func (db *Database) GetAnimalByID(ctx context.Context, id uuid.UUID) (Animal, error) {
	animal, err := scanAnimal(db.Pool.QueryRow(ctx, `SELECT `+animalColumns+` FROM tbl_animal WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return animal, ErrAnimalNotFound
		}
		return animal, fmt.Errorf("database: failed to scan animal: %w", err)
	}
	return animal, nil
}

type ListAnimalsParams struct {
	Species         util.Optional[Species]
	Status          util.Optional[HealthStatus]
	Area            util.Optional[string]
	CurrentFeederID util.Optional[uuid.UUID]
	Limit           int
	Offset          int
}

func (la ListAnimalsParams) where() (string, []any) {
	var clause strings.Builder
	var args []any
	argNum := 1

	// Predicate order follows idx_animal_species_status.
	if la.Species.IsSet {
		clause.WriteString(fmt.Sprintf(" AND species = $%d", argNum))
		args = append(args, la.Species.Val)
		argNum++
	}
	if la.Status.IsSet {
		clause.WriteString(fmt.Sprintf(" AND status = $%d", argNum))
		args = append(args, la.Status.Val)
		argNum++
	}
	if la.Area.IsSet {
		clause.WriteString(fmt.Sprintf(" AND area = $%d", argNum))
		args = append(args, la.Area.Val)
		argNum++
	}
	if la.CurrentFeederID.IsSet {
		clause.WriteString(fmt.Sprintf(" AND current_feeder_id = $%d", argNum))
		args = append(args, la.CurrentFeederID.Val)
		argNum++
	}
	return clause.String(), args
}

// indexMatched reports whether the filter set maps onto a declared index
// prefix. Status without species falls off idx_animal_species_status.
func (la ListAnimalsParams) indexMatched() bool {
	if la.Status.IsSet && !la.Species.IsSet {
		return false
	}
	return true
}

func (db *Database) ListAnimals(ctx context.Context, params ListAnimalsParams) ([]Animal, error) {
	if !params.indexMatched() {
		db.logIndexDegrade("tbl_animal", "status without species")
	}

	clause, args := params.where()
	query := `SELECT ` + animalColumns + ` FROM tbl_animal WHERE 1=1` + clause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list animals: %w", err)
	}
	defer rows.Close()

	var animals []Animal
	for rows.Next() {
		animal, err := scanAnimal(rows)
		if err != nil {
			return nil, fmt.Errorf("database: failed to scan animal: %w", err)
		}
		animals = append(animals, animal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate animals: %w", err)
	}
	return animals, nil
}

// CountAnimals counts rows matching the same filters as ListAnimals,
// ignoring Limit/Offset.
func (db *Database) CountAnimals(ctx context.Context, params ListAnimalsParams) (int, error) {
	clause, args := params.where()

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tbl_animal WHERE 1=1`+clause, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("database: failed to count animals: %w", err)
	}
	return total, nil
}

type UpdateAnimalParams struct {
	Name            util.Optional[string]
	Age             util.Optional[int]
	Breed           util.Optional[string]
	Area            util.Optional[string]
	Latitude        util.Optional[float64]
	Longitude       util.Optional[float64]
	CurrentFeederID util.Optional[uuid.UUID]
	PackID          util.Optional[uuid.UUID]
	PhotoKeys       util.Optional[[]string]
	Status          util.Optional[HealthStatus]
}

func (db *Database) UpdateAnimalByID(ctx context.Context, id uuid.UUID, params UpdateAnimalParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_animal SET `)
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
	if params.Age.IsSet {
		set("age", params.Age.Val)
	}
	if params.Breed.IsSet {
		set("breed", params.Breed.Val)
	}
	if params.Area.IsSet {
		set("area", params.Area.Val)
	}
	if params.Latitude.IsSet {
		set("latitude", params.Latitude.Val)
	}
	if params.Longitude.IsSet {
		set("longitude", params.Longitude.Val)
	}
	if params.CurrentFeederID.IsSet {
		set("current_feeder_id", params.CurrentFeederID.Val)
	}
	if params.PackID.IsSet {
		set("pack_id", params.PackID.Val)
	}
	if params.PhotoKeys.IsSet {
		set("photo_keys", params.PhotoKeys.Val)
	}
	if params.Status.IsSet {
		set("status", params.Status.Val)
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update animal (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAnimalNotFound
	}
	return nil
}

func (db *Database) DeleteAnimalByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_animal WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete animal (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAnimalNotFound
	}
	return nil
}
