package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Aggregate queries backing the impact dashboard. These read across
// collections; they have no Create/Update counterpart except the activity
// feed.

func (db *Database) CountAnimalsByStatus(ctx context.Context) (map[HealthStatus]int, error) {
	rows, err := db.Pool.Query(ctx, `SELECT status, COUNT(*) FROM tbl_animal GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("database: failed to count animals by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[HealthStatus]int)
	for rows.Next() {
		var status HealthStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("database: failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate status counts: %w", err)
	}
	return counts, nil
}

func (db *Database) CountCompletedTasksSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tbl_task WHERE completed = TRUE AND completed_at >= $1`, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("database: failed to count completed tasks: %w", err)
	}
	return total, nil
}

func (db *Database) CountMedicalRecordsByType(ctx context.Context, since time.Time) (map[MedicalRecordType]int, error) {
	rows, err := db.Pool.Query(ctx, `SELECT type, COUNT(*) FROM tbl_medical_record WHERE created_at >= $1 GROUP BY type`, since)
	if err != nil {
		return nil, fmt.Errorf("database: failed to count medical records by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[MedicalRecordType]int)
	for rows.Next() {
		var recordType MedicalRecordType
		var count int
		if err := rows.Scan(&recordType, &count); err != nil {
			return nil, fmt.Errorf("database: failed to scan type count: %w", err)
		}
		counts[recordType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate type counts: %w", err)
	}
	return counts, nil
}

type RecentActivity struct {
	ID        uuid.UUID `json:"id"`
	ActorID   uuid.UUID `json:"actorId"`
	Kind      string    `json:"kind"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateRecentActivityParams struct {
	ActorID uuid.UUID
	Kind    string
	Summary string
}

func (db *Database) CreateRecentActivity(ctx context.Context, params CreateRecentActivityParams) (RecentActivity, error) {
	activity := RecentActivity{
		ID:        uuid.New(),
		ActorID:   params.ActorID,
		Kind:      params.Kind,
		Summary:   params.Summary,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_recent_activity (id, actor_id, kind, summary, created_at) VALUES ($1, $2, $3, $4, $5)`,
		activity.ID, activity.ActorID, activity.Kind, activity.Summary, activity.CreatedAt); err != nil {
		return activity, fmt.Errorf("database: failed to insert recent activity: %w", err)
	}
	return activity, nil
}

func (db *Database) ListRecentActivities(ctx context.Context, limit int) ([]RecentActivity, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, actor_id, kind, summary, created_at FROM tbl_recent_activity ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list recent activities: %w", err)
	}
	defer rows.Close()

	var activities []RecentActivity
	for rows.Next() {
		var activity RecentActivity
		if err := rows.Scan(&activity.ID, &activity.ActorID, &activity.Kind, &activity.Summary, &activity.CreatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan recent activity: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate recent activities: %w", err)
	}
	return activities, nil
}
