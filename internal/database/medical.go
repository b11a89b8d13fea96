package database

// Compound indexes on tbl_medical_record (see migrations):
//   idx_medical_animal_type (animal_id, type)
//   idx_medical_followup (follow_up_required, follow_up_date)
// animal_id must come before type in the predicate list.

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

type MedicalRecordType string

const (
	MedicalRecordTypeCheckup     MedicalRecordType = "checkup"
	MedicalRecordTypeVaccination MedicalRecordType = "vaccination"
	MedicalRecordTypeTreatment   MedicalRecordType = "treatment"
	MedicalRecordTypeEmergency   MedicalRecordType = "emergency"
)

type MedicalRecord struct {
	ID               uuid.UUID                `json:"id"`
	AnimalID         uuid.UUID                `json:"animalId"`
	Type             MedicalRecordType        `json:"type"`
	Description      string                   `json:"description"`
	Veterinarian     util.Optional[string]    `json:"veterinarian"`
	Medications      []string                 `json:"medications"`
	DocumentKeys     []string                 `json:"documentKeys"`
	FollowUpRequired bool                     `json:"followUpRequired"`
	FollowUpDate     util.Optional[time.Time] `json:"followUpDate"`
	CreatedBy        uuid.UUID                `json:"createdBy"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

const medicalColumns = `id, animal_id, type, description, veterinarian, medications, document_keys, follow_up_required, follow_up_date, created_by, created_at, updated_at`

func scanMedicalRecord(row pgx.Row) (MedicalRecord, error) {
	var r MedicalRecord
	err := row.Scan(&r.ID, &r.AnimalID, &r.Type, &r.Description, &r.Veterinarian,
		&r.Medications, &r.DocumentKeys, &r.FollowUpRequired, &r.FollowUpDate,
		&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

type CreateMedicalRecordParams struct {
	AnimalID         uuid.UUID
	Type             MedicalRecordType
	Description      string
	Veterinarian     util.Optional[string]
	Medications      []string
	DocumentKeys     []string
	FollowUpRequired bool
	FollowUpDate     util.Optional[time.Time]
	CreatedBy        uuid.UUID
}

func (db *Database) CreateMedicalRecord(ctx context.Context, params CreateMedicalRecordParams) (MedicalRecord, error) {
	now := time.Now().UTC()
	record := MedicalRecord{
		ID:               uuid.New(),
		AnimalID:         params.AnimalID,
		Type:             params.Type,
		Description:      params.Description,
		Veterinarian:     params.Veterinarian,
		Medications:      params.Medications,
		DocumentKeys:     params.DocumentKeys,
		FollowUpRequired: params.FollowUpRequired,
		FollowUpDate:     params.FollowUpDate,
		CreatedBy:        params.CreatedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_medical_record (`+medicalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		record.ID, record.AnimalID, record.Type, record.Description, record.Veterinarian,
		record.Medications, record.DocumentKeys, record.FollowUpRequired, record.FollowUpDate,
		record.CreatedBy, record.CreatedAt, record.UpdatedAt); err != nil {
		return record, fmt.Errorf("database: failed to insert medical record (animal_id=%s): %w", record.AnimalID, err)
	}
	return record, nil
}

func (db *Database) GetMedicalRecordByID(ctx context.Context, id uuid.UUID) (MedicalRecord, error) {
	record, err := scanMedicalRecord(db.Pool.QueryRow(ctx, `SELECT `+medicalColumns+` FROM tbl_medical_record WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return record, ErrMedicalRecordNotFound
		}
		return record, fmt.Errorf("database: failed to scan medical record: %w", err)
	}
	return record, nil
}

type ListMedicalRecordsParams struct {
	AnimalID         util.Optional[uuid.UUID]
	Type             util.Optional[MedicalRecordType]
	FollowUpRequired util.Optional[bool]
	FollowUpDue      util.Optional[time.Time]
	Limit            int
	Offset           int
}

func (lm ListMedicalRecordsParams) where() (string, []any) {
	var clause strings.Builder
	var args []any
	argNum := 1

	// animal_id leads idx_medical_animal_type.
	if lm.AnimalID.IsSet {
		clause.WriteString(fmt.Sprintf(" AND animal_id = $%d", argNum))
		args = append(args, lm.AnimalID.Val)
		argNum++
	}
	if lm.Type.IsSet {
		clause.WriteString(fmt.Sprintf(" AND type = $%d", argNum))
		args = append(args, lm.Type.Val)
		argNum++
	}
	if lm.FollowUpRequired.IsSet {
		clause.WriteString(fmt.Sprintf(" AND follow_up_required = $%d", argNum))
		args = append(args, lm.FollowUpRequired.Val)
		argNum++
	}
	if lm.FollowUpDue.IsSet {
		clause.WriteString(fmt.Sprintf(" AND follow_up_date <= $%d", argNum))
		args = append(args, lm.FollowUpDue.Val)
		argNum++
	}
	return clause.String(), args
}

func (lm ListMedicalRecordsParams) indexMatched() bool {
	if lm.Type.IsSet && !lm.AnimalID.IsSet {
		return false
	}
	return true
}

func (db *Database) ListMedicalRecords(ctx context.Context, params ListMedicalRecordsParams) ([]MedicalRecord, error) {
	if !params.indexMatched() {
		db.logIndexDegrade("tbl_medical_record", "type without animal_id")
	}

	clause, args := params.where()
	query := `SELECT ` + medicalColumns + ` FROM tbl_medical_record WHERE 1=1` + clause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list medical records: %w", err)
	}
	defer rows.Close()

	var records []MedicalRecord
	for rows.Next() {
		record, err := scanMedicalRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("database: failed to scan medical record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate medical records: %w", err)
	}
	return records, nil
}

func (db *Database) CountMedicalRecords(ctx context.Context, params ListMedicalRecordsParams) (int, error) {
	clause, args := params.where()

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tbl_medical_record WHERE 1=1`+clause, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("database: failed to count medical records: %w", err)
	}
	return total, nil
}

type UpdateMedicalRecordParams struct {
	Description      util.Optional[string]
	Veterinarian     util.Optional[string]
	Medications      util.Optional[[]string]
	DocumentKeys     util.Optional[[]string]
	FollowUpRequired util.Optional[bool]
	FollowUpDate     util.Optional[util.Optional[time.Time]]
}

func (db *Database) UpdateMedicalRecordByID(ctx context.Context, id uuid.UUID, params UpdateMedicalRecordParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_medical_record SET `)
	var args []any
	argNum := 1

	set := func(column string, value any) {
		query.WriteString(fmt.Sprintf("%s = $%d, ", column, argNum))
		args = append(args, value)
		argNum++
	}

	if params.Description.IsSet {
		set("description", params.Description.Val)
	}
	if params.Veterinarian.IsSet {
		set("veterinarian", params.Veterinarian.Val)
	}
	if params.Medications.IsSet {
		set("medications", params.Medications.Val)
	}
	if params.DocumentKeys.IsSet {
		set("document_keys", params.DocumentKeys.Val)
	}
	if params.FollowUpRequired.IsSet {
		set("follow_up_required", params.FollowUpRequired.Val)
	}
	if params.FollowUpDate.IsSet {
		set("follow_up_date", params.FollowUpDate.Val)
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update medical record (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMedicalRecordNotFound
	}
	return nil
}

func (db *Database) DeleteMedicalRecordByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_medical_record WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete medical record (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMedicalRecordNotFound
	}
	return nil
}
