package impact

import (
	"context"
	"testing"

	"campuspaws/internal/database"
	"campuspaws/internal/events"
	"campuspaws/internal/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder() (*Recorder, *fakeStore) {
	store := &fakeStore{}
	manager := NewManager(logger.Discard(), store)
	return NewRecorder(logger.Discard(), &manager), store
}

func TestRecorderFeedsTaskCompletion(t *testing.T) {
	recorder, store := newTestRecorder()

	completer := uuid.New()
	recorder.HandleEvent(context.Background(), events.Event{
		Kind: events.KindTaskCompleted,
		Task: &database.Task{
			ID:         uuid.New(),
			Title:      "Evening feeding round",
			AssignedTo: completer,
		},
		NotifyUserID: uuid.New(),
	})

	require.Len(t, store.activities, 1)
	assert.Equal(t, "task.completed", store.activities[0].Kind)
	assert.Equal(t, completer, store.activities[0].ActorID)
	assert.Contains(t, store.activities[0].Summary, "Evening feeding round")
}

func TestRecorderFeedsTaskCreation(t *testing.T) {
	recorder, store := newTestRecorder()

	creator := uuid.New()
	recorder.HandleEvent(context.Background(), events.Event{
		Kind: events.KindTaskCreated,
		Task: &database.Task{ID: uuid.New(), Title: "Vet transport", CreatedBy: creator},
	})

	require.Len(t, store.activities, 1)
	assert.Equal(t, "task.created", store.activities[0].Kind)
	assert.Equal(t, creator, store.activities[0].ActorID)
}

func TestRecorderKeepsMedicalDetailOffTheFeed(t *testing.T) {
	recorder, store := newTestRecorder()

	recorder.HandleEvent(context.Background(), events.Event{
		Kind: events.KindMedicalRecordCreated,
		MedicalRecord: &database.MedicalRecord{
			ID:          uuid.New(),
			AnimalID:    uuid.New(),
			Type:        database.MedicalRecordTypeEmergency,
			Description: "Deep laceration on left hind leg",
			CreatedBy:   uuid.New(),
		},
	})

	require.Len(t, store.activities, 1)
	assert.Equal(t, "An emergency case was attended", store.activities[0].Summary)
	assert.NotContains(t, store.activities[0].Summary, "laceration")
}

func TestRecorderIgnoresEmptyPayloads(t *testing.T) {
	recorder, store := newTestRecorder()
	ctx := context.Background()

	recorder.HandleEvent(ctx, events.Event{Kind: events.KindTaskCompleted})
	recorder.HandleEvent(ctx, events.Event{Kind: events.KindMedicalRecordCreated})
	recorder.HandleEvent(ctx, events.Event{Kind: events.Kind("animal.sneezed")})

	assert.Empty(t, store.activities)
}
