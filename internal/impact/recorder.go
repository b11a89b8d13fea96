package impact

import (
	"context"
	"fmt"
	"log/slog"

	"campuspaws/internal/database"
	"campuspaws/internal/events"
)

// Recorder feeds the public activity stream from record events. It sits
// on the bus next to the notification consumer, so every persisted
// mutation that raises an event also lands on the dashboard feed.
type Recorder struct {
	logger  *slog.Logger
	manager *Manager
}

func NewRecorder(logger *slog.Logger, manager *Manager) *Recorder {
	return &Recorder{logger: logger, manager: manager}
}

func (r *Recorder) HandleEvent(ctx context.Context, event events.Event) {
	switch event.Kind {
	case events.KindTaskCreated:
		if event.Task == nil {
			return
		}
		r.manager.RecordActivity(ctx, event.Task.CreatedBy, string(event.Kind),
			fmt.Sprintf("New task: %s", event.Task.Title))
	case events.KindTaskCompleted:
		if event.Task == nil {
			return
		}
		r.manager.RecordActivity(ctx, event.Task.AssignedTo, string(event.Kind),
			fmt.Sprintf("Task completed: %s", event.Task.Title))
	case events.KindMedicalRecordCreated:
		if event.MedicalRecord == nil {
			return
		}
		r.manager.RecordActivity(ctx, event.MedicalRecord.CreatedBy, string(event.Kind),
			medicalSummary(event.MedicalRecord.Type))
	default:
		r.logger.Debug("ignoring event", "kind", event.Kind)
	}
}

// medicalSummary keeps the public feed free of per-animal medical
// detail; only the kind of care is shown.
func medicalSummary(recordType database.MedicalRecordType) string {
	switch recordType {
	case database.MedicalRecordTypeEmergency:
		return "An emergency case was attended"
	case database.MedicalRecordTypeTreatment:
		return "A treatment was administered"
	case database.MedicalRecordTypeVaccination:
		return "A vaccination was given"
	default:
		return "A checkup was logged"
	}
}
