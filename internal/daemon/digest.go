package daemon

import (
	"context"
	"log/slog"
	"time"

	"campuspaws/internal/database"
	"campuspaws/internal/impact"
	"campuspaws/internal/notifications"
)

const digestUserPage = 100

// DigestTask emails every opted-in user a daily summary built from the
// activity feed. A quiet day produces no digest at all.
func DigestTask(logger *slog.Logger, db *database.Database, impactManager *impact.Manager, notificationManager *notifications.Manager, mailer notifications.Mailer) Func {
	return func(ctx context.Context, name string) error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		logger.Info("digest task started", "task", name)

		for {
			select {
			case <-ctx.Done():
				logger.Info("digest task shutting down", "task", name)
				return nil
			case <-ticker.C:
				if err := sendDigests(ctx, logger, db, impactManager, notificationManager, mailer); err != nil {
					logger.Error("digest run failed", "error", err)
				}
			}
		}
	}
}

func sendDigests(ctx context.Context, logger *slog.Logger, db *database.Database, impactManager *impact.Manager, notificationManager *notifications.Manager, mailer notifications.Mailer) error {
	activities, err := impactManager.RecentActivity(ctx, 20)
	if err != nil {
		return err
	}
	if len(activities) == 0 {
		return nil
	}

	items := make([]notifications.DigestItem, 0, len(activities))
	for _, activity := range activities {
		items = append(items, notifications.DigestItem{
			Title:   activity.Kind,
			Summary: activity.Summary,
		})
	}

	for offset := 0; ; offset += digestUserPage {
		users, err := db.ListUsers(ctx, digestUserPage, offset)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return nil
		}

		for _, user := range users {
			prefs, err := notificationManager.Preferences(ctx, user.ID)
			if err != nil {
				logger.Error("failed to load digest preferences", "user_id", user.ID, "error", err)
				continue
			}
			if !prefs.SystemUpdates || !prefs.EmailEnabled {
				continue
			}

			email, err := notifications.RenderEmail(database.NotificationTypeSystem, notifications.EmailParams{
				RecipientName: user.Name,
				DigestItems:   items,
			})
			if err != nil {
				logger.Error("failed to render digest", "user_id", user.ID, "error", err)
				continue
			}
			if err := mailer.Send(ctx, user.Email, email); err != nil {
				logger.Error("failed to send digest", "to", user.Email, "error", err)
			}
		}
	}
}
