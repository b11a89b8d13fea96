package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campuspaws/internal/database"
	"campuspaws/internal/pagination"
	"campuspaws/internal/util"
	"campuspaws/internal/validator"

	"github.com/google/uuid"
)

// expiredSweepBatch bounds one round of the expiry sweep so the delete
// never locks the table for long.
const expiredSweepBatch = 500

type Store interface {
	CreateNotification(ctx context.Context, params database.CreateNotificationParams) (database.Notification, error)
	GetNotificationByID(ctx context.Context, id uuid.UUID) (database.Notification, error)
	ListNotifications(ctx context.Context, params database.ListNotificationsParams) ([]database.Notification, error)
	CountNotifications(ctx context.Context, params database.ListNotificationsParams) (int, error)
	UpdateNotificationByID(ctx context.Context, id uuid.UUID, params database.UpdateNotificationParams) error
	DeleteNotificationByID(ctx context.Context, id uuid.UUID) error
	DeleteExpiredNotifications(ctx context.Context, before time.Time, batchSize int) (int64, error)
	GetNotificationPreferences(ctx context.Context, userID uuid.UUID) (database.NotificationPreferences, error)
	CreateNotificationPreferences(ctx context.Context, userID uuid.UUID) (database.NotificationPreferences, error)
	UpdateNotificationPreferencesByUserID(ctx context.Context, userID uuid.UUID, params database.UpdateNotificationPreferencesParams) error
}

type Manager struct {
	logger       *slog.Logger
	db           Store
	validate     *validator.Validator
	cache        UnreadCache
	markAllBatch int
}

func NewManager(logger *slog.Logger, db Store, validate *validator.Validator, cache UnreadCache, markAllBatch int) Manager {
	if markAllBatch <= 0 {
		markAllBatch = 20
	}
	return Manager{logger: logger, db: db, validate: validate, cache: cache, markAllBatch: markAllBatch}
}

type CreateInput struct {
	RecipientID       uuid.UUID                 `validate:"required"`
	Type              database.NotificationType `validate:"required,oneof=task_assigned task_completed task_reminder medical_alert medical_followup volunteer_update system"`
	Title             string                    `validate:"required,max=200"`
	Message           string                    `validate:"max=2000"`
	Priority          database.Priority         `validate:"required,oneof=low medium high urgent"`
	RelatedEntityID   util.Optional[uuid.UUID]
	RelatedEntityType util.Optional[database.RelatedEntityType]
	ActionURL         string
	ExpiresAt         util.Optional[time.Time]
}

func (m *Manager) Create(ctx context.Context, input CreateInput) (database.Notification, error) {
	if err := m.validate.Validate(input); err != nil {
		return database.Notification{}, err
	}

	notification, err := m.db.CreateNotification(ctx, database.CreateNotificationParams{
		RecipientID:       input.RecipientID,
		Type:              input.Type,
		Title:             input.Title,
		Message:           input.Message,
		Priority:          input.Priority,
		RelatedEntityID:   input.RelatedEntityID,
		RelatedEntityType: input.RelatedEntityType,
		ActionURL:         input.ActionURL,
		ExpiresAt:         input.ExpiresAt,
	})
	if err != nil {
		return notification, err
	}

	if m.cache != nil {
		m.cache.Invalidate(ctx, input.RecipientID)
	}
	return notification, nil
}

type ListFilter struct {
	Read     util.Optional[bool]
	Type     util.Optional[database.NotificationType]
	Priority util.Optional[database.Priority]
	Limit    int
	Offset   int
}

type ListResult struct {
	Items      []database.Notification
	Total      int
	Pagination pagination.Meta
}

// ListForUser is always scoped to one recipient; there is no cross-user
// listing surface.
func (m *Manager) ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter) (ListResult, error) {
	page := pagination.Normalize(filter.Limit, filter.Offset)
	params := database.ListNotificationsParams{
		RecipientID: util.Some(userID),
		Read:        filter.Read,
		Type:        filter.Type,
		Priority:    filter.Priority,
		Limit:       page.Limit,
		Offset:      page.Offset,
	}

	total, err := m.db.CountNotifications(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	items, err := m.db.ListNotifications(ctx, params)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Items:      items,
		Total:      total,
		Pagination: pagination.NewMeta(total, page.Limit, page.Offset),
	}, nil
}

// UnreadCount issues a count-only query; unread rows are never fetched
// just to be counted. The redis counter absorbs badge polling.
func (m *Manager) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.cache != nil {
		if count, ok := m.cache.Get(ctx, userID); ok {
			return count, nil
		}
	}

	count, err := m.db.CountNotifications(ctx, database.ListNotificationsParams{
		RecipientID: util.Some(userID),
		Read:        util.Some(false),
	})
	if err != nil {
		return 0, err
	}

	if m.cache != nil {
		m.cache.Set(ctx, userID, count)
	}
	return count, nil
}

// MarkReadFor marks a notification read on behalf of its recipient.
// Someone else's notification looks like it does not exist.
func (m *Manager) MarkReadFor(ctx context.Context, id, userID uuid.UUID) (database.Notification, error) {
	notification, err := m.db.GetNotificationByID(ctx, id)
	if err != nil {
		return database.Notification{}, err
	}
	if notification.RecipientID != userID {
		return database.Notification{}, database.ErrNotificationNotFound
	}
	return m.markRead(ctx, notification)
}

// MarkRead is idempotent: re-marking a read notification keeps its
// original read_at.
func (m *Manager) MarkRead(ctx context.Context, id uuid.UUID) (database.Notification, error) {
	notification, err := m.db.GetNotificationByID(ctx, id)
	if err != nil {
		return database.Notification{}, err
	}
	return m.markRead(ctx, notification)
}

func (m *Manager) markRead(ctx context.Context, notification database.Notification) (database.Notification, error) {
	if notification.Read {
		return notification, nil
	}

	now := time.Now().UTC()
	if err := m.db.UpdateNotificationByID(ctx, notification.ID, database.UpdateNotificationParams{
		Read:   util.Some(true),
		ReadAt: util.Some(now),
	}); err != nil {
		return database.Notification{}, err
	}

	notification.Read = true
	notification.ReadAt = util.Some(now)
	notification.UpdatedAt = now

	if m.cache != nil {
		m.cache.Invalidate(ctx, notification.RecipientID)
	}
	return notification, nil
}

// MarkAllRead marks at most one batch of the user's unread notifications
// per call and reports how many it touched plus how many remain. A
// failure on one notification does not stop the rest of the batch.
func (m *Manager) MarkAllRead(ctx context.Context, userID uuid.UUID) (marked int, remaining int, err error) {
	unread, err := m.db.ListNotifications(ctx, database.ListNotificationsParams{
		RecipientID: util.Some(userID),
		Read:        util.Some(false),
		Limit:       m.markAllBatch,
	})
	if err != nil {
		return 0, 0, err
	}

	now := time.Now().UTC()
	for _, notification := range unread {
		if err := m.db.UpdateNotificationByID(ctx, notification.ID, database.UpdateNotificationParams{
			Read:   util.Some(true),
			ReadAt: util.Some(now),
		}); err != nil {
			m.logger.Warn("failed to mark notification read", "notification_id", notification.ID, "error", err)
			continue
		}
		marked++
	}

	if m.cache != nil {
		m.cache.Invalidate(ctx, userID)
	}

	remaining, err = m.db.CountNotifications(ctx, database.ListNotificationsParams{
		RecipientID: util.Some(userID),
		Read:        util.Some(false),
	})
	if err != nil {
		return marked, 0, err
	}
	return marked, remaining, nil
}

// DeleteFor removes a notification on behalf of its recipient, with the
// same not-found masking as MarkReadFor.
func (m *Manager) DeleteFor(ctx context.Context, id, userID uuid.UUID) error {
	notification, err := m.db.GetNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if notification.RecipientID != userID {
		return database.ErrNotificationNotFound
	}
	if err := m.db.DeleteNotificationByID(ctx, id); err != nil {
		return err
	}
	if m.cache != nil {
		m.cache.Invalidate(ctx, userID)
	}
	return nil
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	notification, err := m.db.GetNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if err := m.db.DeleteNotificationByID(ctx, id); err != nil {
		return err
	}
	if m.cache != nil {
		m.cache.Invalidate(ctx, notification.RecipientID)
	}
	return nil
}

// DeleteExpired sweeps expired notifications in bounded batches until
// none remain, returning the total removed.
func (m *Manager) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	var total int64
	for {
		deleted, err := m.db.DeleteExpiredNotifications(ctx, now, expiredSweepBatch)
		if err != nil {
			return total, err
		}
		total += deleted
		if deleted == 0 {
			return total, nil
		}
	}
}

// Preferences returns the user's row, creating the all-enabled default
// on first access.
func (m *Manager) Preferences(ctx context.Context, userID uuid.UUID) (database.NotificationPreferences, error) {
	prefs, err := m.db.GetNotificationPreferences(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrPreferencesNotFound) {
			return m.db.CreateNotificationPreferences(ctx, userID)
		}
		return prefs, err
	}
	return prefs, nil
}

type UpdatePreferencesInput struct {
	EmailEnabled     util.Optional[bool]
	TaskAlerts       util.Optional[bool]
	MedicalAlerts    util.Optional[bool]
	VolunteerUpdates util.Optional[bool]
	SystemUpdates    util.Optional[bool]
}

func (m *Manager) UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (database.NotificationPreferences, error) {
	// Ensure the row exists before a partial update.
	if _, err := m.Preferences(ctx, userID); err != nil {
		return database.NotificationPreferences{}, err
	}

	if err := m.db.UpdateNotificationPreferencesByUserID(ctx, userID, database.UpdateNotificationPreferencesParams{
		EmailEnabled:     input.EmailEnabled,
		TaskAlerts:       input.TaskAlerts,
		MedicalAlerts:    input.MedicalAlerts,
		VolunteerUpdates: input.VolunteerUpdates,
		SystemUpdates:    input.SystemUpdates,
	}); err != nil {
		return database.NotificationPreferences{}, err
	}
	return m.db.GetNotificationPreferences(ctx, userID)
}
