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

// NotificationPreferences is one row per user, created lazily with
// defaults on first access.
type NotificationPreferences struct {
	UserID           uuid.UUID `json:"userId"`
	EmailEnabled     bool      `json:"emailEnabled"`
	TaskAlerts       bool      `json:"taskAlerts"`
	MedicalAlerts    bool      `json:"medicalAlerts"`
	VolunteerUpdates bool      `json:"volunteerUpdates"`
	SystemUpdates    bool      `json:"systemUpdates"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

const preferencesColumns = `user_id, email_enabled, task_alerts, medical_alerts, volunteer_updates, system_updates, created_at, updated_at`

func (db *Database) GetNotificationPreferences(ctx context.Context, userID uuid.UUID) (NotificationPreferences, error) {
	var p NotificationPreferences
	err := db.Pool.QueryRow(ctx, `SELECT `+preferencesColumns+` FROM tbl_notification_preferences WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.EmailEnabled, &p.TaskAlerts, &p.MedicalAlerts,
			&p.VolunteerUpdates, &p.SystemUpdates, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrPreferencesNotFound
		}
		return p, fmt.Errorf("database: failed to scan notification preferences: %w", err)
	}
	return p, nil
}

// CreateNotificationPreferences inserts the default row. All categories
// start enabled.
func (db *Database) CreateNotificationPreferences(ctx context.Context, userID uuid.UUID) (NotificationPreferences, error) {
	now := time.Now().UTC()
	p := NotificationPreferences{
		UserID:           userID,
		EmailEnabled:     true,
		TaskAlerts:       true,
		MedicalAlerts:    true,
		VolunteerUpdates: true,
		SystemUpdates:    true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_notification_preferences (`+preferencesColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.UserID, p.EmailEnabled, p.TaskAlerts, p.MedicalAlerts,
		p.VolunteerUpdates, p.SystemUpdates, p.CreatedAt, p.UpdatedAt); err != nil {
		return p, fmt.Errorf("database: failed to insert notification preferences (user_id=%s): %w", userID, err)
	}
	return p, nil
}

type UpdateNotificationPreferencesParams struct {
	EmailEnabled     util.Optional[bool]
	TaskAlerts       util.Optional[bool]
	MedicalAlerts    util.Optional[bool]
	VolunteerUpdates util.Optional[bool]
	SystemUpdates    util.Optional[bool]
}

func (db *Database) UpdateNotificationPreferencesByUserID(ctx context.Context, userID uuid.UUID, params UpdateNotificationPreferencesParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_notification_preferences SET `)
	var args []any
	argNum := 1

	set := func(column string, value any) {
		query.WriteString(fmt.Sprintf("%s = $%d, ", column, argNum))
		args = append(args, value)
		argNum++
	}

	if params.EmailEnabled.IsSet {
		set("email_enabled", params.EmailEnabled.Val)
	}
	if params.TaskAlerts.IsSet {
		set("task_alerts", params.TaskAlerts.Val)
	}
	if params.MedicalAlerts.IsSet {
		set("medical_alerts", params.MedicalAlerts.Val)
	}
	if params.VolunteerUpdates.IsSet {
		set("volunteer_updates", params.VolunteerUpdates.Val)
	}
	if params.SystemUpdates.IsSet {
		set("system_updates", params.SystemUpdates.Val)
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE user_id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), userID)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update notification preferences (user_id=%s): %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPreferencesNotFound
	}
	return nil
}
