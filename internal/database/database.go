package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderBy int

const (
	OrderByASC OrderBy = iota
	OrderByDESC
)

func (o OrderBy) SQL() string {
	if o == OrderByASC {
		return "ASC"
	}
	return "DESC"
}

var (
	ErrAnimalNotFound        = errors.New("animal not found")
	ErrTaskNotFound          = errors.New("task not found")
	ErrMedicalRecordNotFound = errors.New("medical record not found")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrPreferencesNotFound   = errors.New("notification preferences not found")
	ErrTerritoryNotFound     = errors.New("territory not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrSessionNotFound       = errors.New("session not found")
)

// Database wraps the pgx pool. One instance is constructed in main and
// handed to every manager; there are no package-level clients.
type Database struct {
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDatabase(logger *slog.Logger) *Database {
	return &Database{logger: logger}
}

func (db *Database) Connect(ctx context.Context, connString string) error {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("unable to parse database configuration: %w", err)
	}

	db.Pool, err = pgxpool.New(ctx, config.ConnString())
	if err != nil {
		return fmt.Errorf("unable to create database pool: %w", err)
	}

	return nil
}

func (db *Database) Close() {
	db.Pool.Close()
}

func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// logIndexDegrade records filter combinations that fall outside the
// declared compound-index prefixes. The query still runs, it just scans.
func (db *Database) logIndexDegrade(collection string, filters string) {
	if db.logger == nil {
		return
	}
	db.logger.Debug("query does not match a declared index prefix",
		"collection", collection,
		"filters", filters,
	)
}
