package daemon

import (
	"context"
	"log/slog"
	"time"

	"campuspaws/internal/database"
	"campuspaws/internal/notifications"
)

// CleanupTask sweeps expired notifications and sessions on an interval.
// Sweep errors are logged and retried on the next tick; the daemon never
// crashes over them.
func CleanupTask(logger *slog.Logger, db *database.Database, manager *notifications.Manager, interval time.Duration) Func {
	return func(ctx context.Context, name string) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("cleanup task started", "task", name, "interval", interval)

		for {
			select {
			case <-ctx.Done():
				logger.Info("cleanup task shutting down", "task", name)
				return nil
			case <-ticker.C:
				deleted, err := manager.DeleteExpired(ctx)
				if err != nil {
					logger.Error("failed to sweep expired notifications", "error", err)
				} else if deleted > 0 {
					logger.Info("swept expired notifications", "deleted", deleted)
				}

				sessions, err := db.DeleteExpiredSessions(ctx, time.Now().UTC())
				if err != nil {
					logger.Error("failed to sweep expired sessions", "error", err)
				} else if sessions > 0 {
					logger.Info("swept expired sessions", "deleted", sessions)
				}
			}
		}
	}
}
