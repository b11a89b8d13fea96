package events

import (
	"context"
	"log/slog"

	"campuspaws/internal/database"

	"github.com/google/uuid"
)

type Kind string

const (
	KindMedicalRecordCreated Kind = "medical_record.created"
	KindTaskCreated          Kind = "task.created"
	KindTaskCompleted        Kind = "task.completed"
)

// Event is emitted after a record mutation has been persisted. Only the
// fields relevant to the kind are populated.
type Event struct {
	Kind Kind

	MedicalRecord *database.MedicalRecord
	Task          *database.Task

	// CandidateRecipients are the caretakers considered for a medical
	// alert fan-out.
	CandidateRecipients []uuid.UUID

	// NotifyUserID is who to tell about a completed task, typically the
	// assigner rather than the completer.
	NotifyUserID uuid.UUID
}

type Handler interface {
	HandleEvent(ctx context.Context, event Event)
}

// Bus is a synchronous in-process dispatcher. Emit never reports failure
// to the caller: a record mutation must succeed even when every handler
// fails, so handler errors and panics stop at the bus.
type Bus struct {
	logger   *slog.Logger
	handlers []Handler
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

func (b *Bus) Subscribe(handler Handler) {
	b.handlers = append(b.handlers, handler)
}

func (b *Bus) Emit(ctx context.Context, event Event) {
	for _, handler := range b.handlers {
		b.dispatch(ctx, handler, event)
	}
}

func (b *Bus) dispatch(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "kind", event.Kind, "panic", r)
		}
	}()
	handler.HandleEvent(ctx, event)
}
