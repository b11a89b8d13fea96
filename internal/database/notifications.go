package database

// Compound index on tbl_notification (see migrations):
//   idx_notification_recipient_read_type_priority (recipient_id, read, type, priority)
//   idx_notification_expires (expires_at)
// Filter precedence is read, then type, then priority, always behind
// recipient_id.

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

type NotificationType string

const (
	NotificationTypeTaskAssigned    NotificationType = "task_assigned"
	NotificationTypeTaskCompleted   NotificationType = "task_completed"
	NotificationTypeTaskReminder    NotificationType = "task_reminder"
	NotificationTypeMedicalAlert    NotificationType = "medical_alert"
	NotificationTypeMedicalFollowup NotificationType = "medical_followup"
	NotificationTypeVolunteerUpdate NotificationType = "volunteer_update"
	NotificationTypeSystem          NotificationType = "system"
)

type RelatedEntityType string

const (
	RelatedEntityAnimal RelatedEntityType = "animal"
	RelatedEntityTask   RelatedEntityType = "task"
)

type Notification struct {
	ID                uuid.UUID                        `json:"id"`
	RecipientID       uuid.UUID                        `json:"recipientId"`
	Type              NotificationType                 `json:"type"`
	Title             string                           `json:"title"`
	Message           string                           `json:"message"`
	Priority          Priority                         `json:"priority"`
	Read              bool                             `json:"read"`
	ReadAt            util.Optional[time.Time]         `json:"readAt"`
	RelatedEntityID   util.Optional[uuid.UUID]         `json:"relatedEntityId"`
	RelatedEntityType util.Optional[RelatedEntityType] `json:"relatedEntityType"`
	ActionURL         string                           `json:"actionUrl"`
	ExpiresAt         util.Optional[time.Time]         `json:"expiresAt"`
	CreatedAt         time.Time                        `json:"createdAt"`
	UpdatedAt         time.Time                        `json:"updatedAt"`
}

const notificationColumns = `id, recipient_id, type, title, message, priority, read, read_at, related_entity_id, related_entity_type, action_url, expires_at, created_at, updated_at`

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message,
		&n.Priority, &n.Read, &n.ReadAt, &n.RelatedEntityID, &n.RelatedEntityType,
		&n.ActionURL, &n.ExpiresAt, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

type CreateNotificationParams struct {
	RecipientID       uuid.UUID
	Type              NotificationType
	Title             string
	Message           string
	Priority          Priority
	RelatedEntityID   util.Optional[uuid.UUID]
	RelatedEntityType util.Optional[RelatedEntityType]
	ActionURL         string
	ExpiresAt         util.Optional[time.Time]
}

func (db *Database) CreateNotification(ctx context.Context, params CreateNotificationParams) (Notification, error) {
	now := time.Now().UTC()
	notification := Notification{
		ID:                uuid.New(),
		RecipientID:       params.RecipientID,
		Type:              params.Type,
		Title:             params.Title,
		Message:           params.Message,
		Priority:          params.Priority,
		Read:              false,
		ReadAt:            util.None[time.Time](),
		RelatedEntityID:   params.RelatedEntityID,
		RelatedEntityType: params.RelatedEntityType,
		ActionURL:         params.ActionURL,
		ExpiresAt:         params.ExpiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_notification (`+notificationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		notification.ID, notification.RecipientID, notification.Type, notification.Title,
		notification.Message, notification.Priority, notification.Read, notification.ReadAt,
		notification.RelatedEntityID, notification.RelatedEntityType, notification.ActionURL,
		notification.ExpiresAt, notification.CreatedAt, notification.UpdatedAt); err != nil {
		return notification, fmt.Errorf("database: failed to insert notification (recipient_id=%s): %w", notification.RecipientID, err)
	}
	return notification, nil
}

func (db *Database) GetNotificationByID(ctx context.Context, id uuid.UUID) (Notification, error) {
	notification, err := scanNotification(db.Pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM tbl_notification WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification, ErrNotificationNotFound
		}
		return notification, fmt.Errorf("database: failed to scan notification: %w", err)
	}
	return notification, nil
}

type ListNotificationsParams struct {
	RecipientID util.Optional[uuid.UUID]
	Read        util.Optional[bool]
	Type        util.Optional[NotificationType]
	Priority    util.Optional[Priority]
	Limit       int
	Offset      int
}

func (ln ListNotificationsParams) where() (string, []any) {
	var clause strings.Builder
	var args []any
	argNum := 1

	// Predicate order follows the (recipient_id, read, type, priority) index.
	if ln.RecipientID.IsSet {
		clause.WriteString(fmt.Sprintf(" AND recipient_id = $%d", argNum))
		args = append(args, ln.RecipientID.Val)
		argNum++
	}
	if ln.Read.IsSet {
		clause.WriteString(fmt.Sprintf(" AND read = $%d", argNum))
		args = append(args, ln.Read.Val)
		argNum++
	}
	if ln.Type.IsSet {
		clause.WriteString(fmt.Sprintf(" AND type = $%d", argNum))
		args = append(args, ln.Type.Val)
		argNum++
	}
	if ln.Priority.IsSet {
		clause.WriteString(fmt.Sprintf(" AND priority = $%d", argNum))
		args = append(args, ln.Priority.Val)
		argNum++
	}
	return clause.String(), args
}

func (ln ListNotificationsParams) indexMatched() bool {
	if !ln.RecipientID.IsSet {
		return !ln.Read.IsSet && !ln.Type.IsSet && !ln.Priority.IsSet
	}
	// Skipping read while filtering type/priority leaves the index prefix.
	if !ln.Read.IsSet && (ln.Type.IsSet || ln.Priority.IsSet) {
		return false
	}
	if !ln.Type.IsSet && ln.Priority.IsSet {
		return false
	}
	return true
}

// ListNotifications orders newest-first, always.
func (db *Database) ListNotifications(ctx context.Context, params ListNotificationsParams) ([]Notification, error) {
	if !params.indexMatched() {
		db.logIndexDegrade("tbl_notification", "filters outside (recipient_id, read, type, priority) prefix")
	}

	clause, args := params.where()
	query := `SELECT ` + notificationColumns + ` FROM tbl_notification WHERE 1=1` + clause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("database: failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// CountNotifications issues a count-only query; it never fetches rows.
func (db *Database) CountNotifications(ctx context.Context, params ListNotificationsParams) (int, error) {
	clause, args := params.where()

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tbl_notification WHERE 1=1`+clause, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("database: failed to count notifications: %w", err)
	}
	return total, nil
}

type UpdateNotificationParams struct {
	Read   util.Optional[bool]
	ReadAt util.Optional[time.Time]
}

func (db *Database) UpdateNotificationByID(ctx context.Context, id uuid.UUID, params UpdateNotificationParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_notification SET `)
	var args []any
	argNum := 1

	if params.Read.IsSet {
		query.WriteString(fmt.Sprintf("read = $%d, ", argNum))
		args = append(args, params.Read.Val)
		argNum++
	}
	if params.ReadAt.IsSet {
		query.WriteString(fmt.Sprintf("read_at = $%d, ", argNum))
		args = append(args, params.ReadAt.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update notification (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (db *Database) DeleteNotificationByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_notification WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete notification (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteExpiredNotifications removes at most batchSize notifications whose
// expiry has passed, returning how many went. Callers loop until zero.
func (db *Database) DeleteExpiredNotifications(ctx context.Context, before time.Time, batchSize int) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_notification WHERE id IN (
		SELECT id FROM tbl_notification WHERE expires_at IS NOT NULL AND expires_at < $1 LIMIT $2
	)`, before, batchSize)
	if err != nil {
		return 0, fmt.Errorf("database: failed to delete expired notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
