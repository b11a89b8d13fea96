package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"campuspaws/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

func main() {
	var (
		command = flag.String("command", "", "Migration command: up, down, version, force, create")
		steps   = flag.Int("steps", 0, "Number of migration steps (for up/down)")
		version = flag.Int("version", 0, "Migration version (for force)")
		name    = flag.String("name", "", "Migration name (for create)")
	)
	flag.Parse()

	if *command == "" {
		fmt.Println("Usage: go run cmd/migrate/main.go -command [up|down|version|force|create] [options]")
		fmt.Println("  -steps N    number of steps for up/down")
		fmt.Println("  -version N  version number for force")
		fmt.Println("  -name NAME  migration name for create")
		os.Exit(1)
	}

	if *command == "create" {
		if *name == "" {
			log.Fatal("migration name required for create")
		}
		createMigration(*name)
		return
	}

	cfg := config.NewConfig()

	db, err := sql.Open("postgres", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		log.Fatalf("failed to create migration instance: %v", err)
	}
	defer m.Close()

	switch *command {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migration up failed: %v", err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no migrations to apply")
		} else {
			fmt.Println("migrations applied")
		}

	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Steps(-1)
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migration down failed: %v", err)
		}
		fmt.Println("migrations rolled back")

	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("current version: %d (dirty=%v)\n", v, dirty)

	case "force":
		if *version == 0 {
			log.Fatal("version number required for force")
		}
		if err := m.Force(*version); err != nil {
			log.Fatalf("force failed: %v", err)
		}
		fmt.Printf("version forced to %d\n", *version)

	default:
		log.Fatalf("unknown command: %s", *command)
	}
}

func createMigration(name string) {
	next := nextMigrationNumber()
	for _, direction := range []string{"up", "down"} {
		path := fmt.Sprintf("migrations/%06d_%s.%s.sql", next, name, direction)
		if err := os.WriteFile(path, []byte("-- "+direction+"\n"), 0o644); err != nil {
			log.Fatalf("failed to create %s: %v", path, err)
		}
		fmt.Println("created", path)
	}
}

func nextMigrationNumber() int {
	entries, err := filepath.Glob("migrations/*.up.sql")
	if err != nil {
		log.Fatalf("failed to list migrations: %v", err)
	}

	max := 0
	for _, entry := range entries {
		base := filepath.Base(entry)
		prefix, _, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(prefix); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}
