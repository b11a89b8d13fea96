package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campuspaws/internal/animals"
	"campuspaws/internal/database"
	"campuspaws/internal/medical"
	"campuspaws/internal/notifications"
	"campuspaws/internal/tasks"
	"campuspaws/internal/util"

	"github.com/google/uuid"
)

// reminderWindow is how far ahead the scan looks for due tasks and
// medical follow-ups.
const reminderWindow = 24 * time.Hour

// ReminderTask scans for open tasks due within the window and reminds
// their assignees, and for medical follow-ups coming due and reminds the
// animal's current feeder. Reminders are deduplicated per item per day
// so a short scan interval never double-pings anyone.
func ReminderTask(logger *slog.Logger, taskManager *tasks.Manager, medicalManager *medical.Manager, animalManager *animals.Manager, notificationManager *notifications.Manager, interval time.Duration) Func {
	reminded := make(map[string]struct{})

	return func(ctx context.Context, name string) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("reminder task started", "task", name, "interval", interval)

		for {
			select {
			case <-ctx.Done():
				logger.Info("reminder task shutting down", "task", name)
				return nil
			case <-ticker.C:
				pruneReminded(reminded, time.Now().UTC().Format("2006-01-02"))
				if err := remindDueTasks(ctx, logger, taskManager, notificationManager, reminded); err != nil {
					logger.Error("task reminder scan failed", "error", err)
				}
				if err := remindDueFollowUps(ctx, logger, medicalManager, animalManager, notificationManager, reminded); err != nil {
					logger.Error("follow-up reminder scan failed", "error", err)
				}
			}
		}
	}
}

// pruneReminded drops dedupe keys from previous days. Keys embed the
// scan date as their last segment, so the map never holds more than one
// day of reminders.
func pruneReminded(reminded map[string]struct{}, today string) {
	for key := range reminded {
		if !strings.HasSuffix(key, ":"+today) {
			delete(reminded, key)
		}
	}
}

func remindDueTasks(ctx context.Context, logger *slog.Logger, taskManager *tasks.Manager, notificationManager *notifications.Manager, reminded map[string]struct{}) error {
	now := time.Now().UTC()
	cutoff := now.Add(reminderWindow)

	for offset := 0; ; {
		result, err := taskManager.List(ctx, tasks.ListFilter{
			Completed: util.Some(false),
			DueBefore: util.Some(cutoff),
			Limit:     100,
			Offset:    offset,
		})
		if err != nil {
			return err
		}
		if len(result.Items) == 0 {
			return nil
		}

		for _, task := range result.Items {
			if task.AssignedTo == uuid.Nil {
				continue
			}
			dedupeKey := fmt.Sprintf("%s:%s", task.ID, now.Format("2006-01-02"))
			if _, ok := reminded[dedupeKey]; ok {
				continue
			}

			if _, err := notificationManager.Create(ctx, notifications.CreateInput{
				RecipientID:       task.AssignedTo,
				Type:              database.NotificationTypeTaskReminder,
				Title:             fmt.Sprintf("Reminder: %s", task.Title),
				Message:           fmt.Sprintf("The task %q is due on %s.", task.Title, task.ScheduledDate.Format("Mon, 02 Jan 2006")),
				Priority:          task.Priority,
				RelatedEntityID:   util.Some(task.ID),
				RelatedEntityType: util.Some(database.RelatedEntityTask),
				ActionURL:         fmt.Sprintf("/tasks/%s", task.ID),
				ExpiresAt:         util.Some(task.ScheduledDate.Add(7 * 24 * time.Hour)),
			}); err != nil {
				logger.Error("failed to create task reminder", "task_id", task.ID, "error", err)
				continue
			}
			reminded[dedupeKey] = struct{}{}
		}

		offset += len(result.Items)
		if !result.Pagination.HasMore {
			return nil
		}
	}
}

func remindDueFollowUps(ctx context.Context, logger *slog.Logger, medicalManager *medical.Manager, animalManager *animals.Manager, notificationManager *notifications.Manager, reminded map[string]struct{}) error {
	now := time.Now().UTC()
	cutoff := now.Add(reminderWindow)

	for offset := 0; ; {
		result, err := medicalManager.ListFollowUpsDue(ctx, cutoff, 100, offset)
		if err != nil {
			return err
		}
		if len(result.Items) == 0 {
			return nil
		}

		for _, record := range result.Items {
			dedupeKey := fmt.Sprintf("followup:%s:%s", record.ID, now.Format("2006-01-02"))
			if _, ok := reminded[dedupeKey]; ok {
				continue
			}

			animal, err := animalManager.Get(ctx, record.AnimalID)
			if err != nil {
				logger.Error("failed to resolve animal for follow-up reminder", "record_id", record.ID, "error", err)
				continue
			}
			// No feeder on record means nobody owns the visit yet; the
			// dashboard follow-up list still surfaces it.
			if animal == nil || !animal.CurrentFeederID.IsSet {
				continue
			}

			message := fmt.Sprintf("%s has a follow-up visit coming up", animal.Name)
			if record.FollowUpDate.IsSet {
				message = fmt.Sprintf("%s has a follow-up visit due on %s.", animal.Name, record.FollowUpDate.Val.Format("Mon, 02 Jan 2006"))
			}

			if _, err := notificationManager.Create(ctx, notifications.CreateInput{
				RecipientID:       animal.CurrentFeederID.Val,
				Type:              database.NotificationTypeMedicalFollowup,
				Title:             fmt.Sprintf("Follow-up due: %s", animal.Name),
				Message:           message,
				Priority:          database.PriorityMedium,
				RelatedEntityID:   util.Some(record.AnimalID),
				RelatedEntityType: util.Some(database.RelatedEntityAnimal),
				ActionURL:         fmt.Sprintf("/animals/%s", record.AnimalID),
				ExpiresAt:         util.Some(cutoff.Add(7 * 24 * time.Hour)),
			}); err != nil {
				logger.Error("failed to create follow-up reminder", "record_id", record.ID, "error", err)
				continue
			}
			reminded[dedupeKey] = struct{}{}
		}

		offset += len(result.Items)
		if !result.Pagination.HasMore {
			return nil
		}
	}
}
