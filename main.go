package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"campuspaws/internal/animals"
	"campuspaws/internal/api"
	"campuspaws/internal/auth"
	"campuspaws/internal/config"
	"campuspaws/internal/daemon"
	"campuspaws/internal/database"
	"campuspaws/internal/events"
	"campuspaws/internal/impact"
	"campuspaws/internal/importer"
	"campuspaws/internal/logger"
	"campuspaws/internal/medical"
	"campuspaws/internal/notifications"
	"campuspaws/internal/ratelimit"
	"campuspaws/internal/storage"
	"campuspaws/internal/tasks"
	"campuspaws/internal/territories"
	"campuspaws/internal/validator"

	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.NewConfig()
	log := logger.New(cfg)

	db := database.NewDatabase(log)
	if err := db.Connect(ctx, cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	fileStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	validate := validator.New()
	bus := events.NewBus(log)

	animalManager := animals.NewManager(log, db, validate)
	taskManager := tasks.NewManager(log, db, validate, bus)
	medicalManager := medical.NewManager(log, db, validate, bus)
	territoryManager := territories.NewManager(log, db, validate)
	impactManager := impact.NewManager(log, db)

	unreadCache := notifications.NewRedisUnreadCache(log, redisClient, cfg.Notifications.UnreadCacheTTL)
	notificationManager := notifications.NewManager(log, db, validate, unreadCache, cfg.Notifications.MarkAllBatch)

	mailer := notifications.NewLogMailer(log)
	bus.Subscribe(notifications.NewConsumer(log, &notificationManager, db, mailer))
	bus.Subscribe(impact.NewRecorder(log, &impactManager))

	authenticator := auth.New(log, cfg.Auth, db)
	limiter := ratelimit.NewLimiter(redisClient)
	csvImporter := importer.New(log, &animalManager)

	daemons := daemon.NewManager(log)
	daemons.Add("cleanup", daemon.CleanupTask(log, db, &notificationManager, cfg.Notifications.CleanupInterval))
	daemons.Add("reminders", daemon.ReminderTask(log, &taskManager, &medicalManager, &animalManager, &notificationManager, cfg.Notifications.ReminderInterval))
	daemons.Add("digest", daemon.DigestTask(log, db, &impactManager, &notificationManager, mailer))
	daemons.Start(ctx)

	server := api.NewServer(api.Deps{
		Logger:        log,
		Config:        cfg,
		DB:            db,
		Auth:          authenticator,
		Limiter:       limiter,
		Storage:       fileStorage,
		Animals:       &animalManager,
		Tasks:         &taskManager,
		Medical:       &medicalManager,
		Territories:   &territoryManager,
		Notifications: &notificationManager,
		Impact:        &impactManager,
		Importer:      csvImporter,
	})

	app := server.Router()

	errCh := make(chan error, 1)
	go func() {
		addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
		log.Info("server listening", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	daemons.Wait()
	return nil
}
