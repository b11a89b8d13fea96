package impact

import (
	"context"
	"log/slog"
	"time"

	"campuspaws/internal/database"

	"github.com/google/uuid"
)

type Store interface {
	CountAnimalsByStatus(ctx context.Context) (map[database.HealthStatus]int, error)
	CountCompletedTasksSince(ctx context.Context, since time.Time) (int, error)
	CountMedicalRecordsByType(ctx context.Context, since time.Time) (map[database.MedicalRecordType]int, error)
	CreateRecentActivity(ctx context.Context, params database.CreateRecentActivityParams) (database.RecentActivity, error)
	ListRecentActivities(ctx context.Context, limit int) ([]database.RecentActivity, error)
}

type Manager struct {
	logger *slog.Logger
	db     Store
}

func NewManager(logger *slog.Logger, db Store) Manager {
	return Manager{logger: logger, db: db}
}

// Summary is the public impact dashboard payload.
type Summary struct {
	TotalAnimals      int                                `json:"totalAnimals"`
	AnimalsByStatus   map[database.HealthStatus]int      `json:"animalsByStatus"`
	TasksCompleted    int                                `json:"tasksCompleted"`
	MedicalByType     map[database.MedicalRecordType]int `json:"medicalByType"`
	Vaccinations      int                                `json:"vaccinations"`
	EmergenciesTended int                                `json:"emergenciesTended"`
	Since             time.Time                          `json:"since"`
	GeneratedAt       time.Time                          `json:"generatedAt"`
}

// Summarize aggregates activity since the cutoff. Animal status counts
// are point-in-time; task and medical counts are windowed.
func (m *Manager) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	byStatus, err := m.db.CountAnimalsByStatus(ctx)
	if err != nil {
		return Summary{}, err
	}
	completed, err := m.db.CountCompletedTasksSince(ctx, since)
	if err != nil {
		return Summary{}, err
	}
	byType, err := m.db.CountMedicalRecordsByType(ctx, since)
	if err != nil {
		return Summary{}, err
	}

	total := 0
	for _, count := range byStatus {
		total += count
	}

	return Summary{
		TotalAnimals:      total,
		AnimalsByStatus:   byStatus,
		TasksCompleted:    completed,
		MedicalByType:     byType,
		Vaccinations:      byType[database.MedicalRecordTypeVaccination],
		EmergenciesTended: byType[database.MedicalRecordTypeEmergency],
		Since:             since,
		GeneratedAt:       time.Now().UTC(),
	}, nil
}

// RecordActivity appends to the public activity feed. Feed failures are
// logged and swallowed: the feed is cosmetic, the triggering operation
// is not.
func (m *Manager) RecordActivity(ctx context.Context, actorID uuid.UUID, kind, summary string) {
	if _, err := m.db.CreateRecentActivity(ctx, database.CreateRecentActivityParams{
		ActorID: actorID,
		Kind:    kind,
		Summary: summary,
	}); err != nil {
		m.logger.Warn("failed to record activity", "kind", kind, "error", err)
	}
}

func (m *Manager) RecentActivity(ctx context.Context, limit int) ([]database.RecentActivity, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return m.db.ListRecentActivities(ctx, limit)
}
