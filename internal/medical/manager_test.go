package medical

import (
	"context"
	"testing"
	"time"

	"campuspaws/internal/database"
	"campuspaws/internal/events"
	"campuspaws/internal/logger"
	"campuspaws/internal/util"
	"campuspaws/internal/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records map[uuid.UUID]database.MedicalRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[uuid.UUID]database.MedicalRecord)}
}

func (f *fakeStore) CreateMedicalRecord(ctx context.Context, params database.CreateMedicalRecordParams) (database.MedicalRecord, error) {
	now := time.Now().UTC()
	record := database.MedicalRecord{
		ID:               uuid.New(),
		AnimalID:         params.AnimalID,
		Type:             params.Type,
		Description:      params.Description,
		Veterinarian:     params.Veterinarian,
		Medications:      params.Medications,
		DocumentKeys:     params.DocumentKeys,
		FollowUpRequired: params.FollowUpRequired,
		FollowUpDate:     params.FollowUpDate,
		CreatedBy:        params.CreatedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.records[record.ID] = record
	return record, nil
}

func (f *fakeStore) GetMedicalRecordByID(ctx context.Context, id uuid.UUID) (database.MedicalRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return database.MedicalRecord{}, database.ErrMedicalRecordNotFound
	}
	return record, nil
}

func (f *fakeStore) matching(params database.ListMedicalRecordsParams) []database.MedicalRecord {
	var out []database.MedicalRecord
	for _, record := range f.records {
		if params.AnimalID.IsSet && record.AnimalID != params.AnimalID.Val {
			continue
		}
		if params.Type.IsSet && record.Type != params.Type.Val {
			continue
		}
		if params.FollowUpRequired.IsSet && record.FollowUpRequired != params.FollowUpRequired.Val {
			continue
		}
		if params.FollowUpDue.IsSet {
			if !record.FollowUpDate.IsSet || record.FollowUpDate.Val.After(params.FollowUpDue.Val) {
				continue
			}
		}
		out = append(out, record)
	}
	return out
}

func (f *fakeStore) ListMedicalRecords(ctx context.Context, params database.ListMedicalRecordsParams) ([]database.MedicalRecord, error) {
	out := f.matching(params)
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (f *fakeStore) CountMedicalRecords(ctx context.Context, params database.ListMedicalRecordsParams) (int, error) {
	return len(f.matching(params)), nil
}

func (f *fakeStore) UpdateMedicalRecordByID(ctx context.Context, id uuid.UUID, params database.UpdateMedicalRecordParams) error {
	record, ok := f.records[id]
	if !ok {
		return database.ErrMedicalRecordNotFound
	}
	if params.Description.IsSet {
		record.Description = params.Description.Val
	}
	if params.Veterinarian.IsSet {
		record.Veterinarian = util.Some(params.Veterinarian.Val)
	}
	if params.Medications.IsSet {
		record.Medications = params.Medications.Val
	}
	if params.DocumentKeys.IsSet {
		record.DocumentKeys = params.DocumentKeys.Val
	}
	if params.FollowUpRequired.IsSet {
		record.FollowUpRequired = params.FollowUpRequired.Val
	}
	if params.FollowUpDate.IsSet {
		record.FollowUpDate = params.FollowUpDate.Val
	}
	record.UpdatedAt = time.Now().UTC()
	f.records[id] = record
	return nil
}

func (f *fakeStore) DeleteMedicalRecordByID(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.records[id]; !ok {
		return database.ErrMedicalRecordNotFound
	}
	delete(f.records, id)
	return nil
}

type recordingHandler struct {
	events []events.Event
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event events.Event) {
	h.events = append(h.events, event)
}

func newTestManager(store *fakeStore) (Manager, *recordingHandler) {
	bus := events.NewBus(logger.Discard())
	handler := &recordingHandler{}
	bus.Subscribe(handler)
	return NewManager(logger.Discard(), store, validator.New(), bus), handler
}

func validInput() CreateInput {
	return CreateInput{
		AnimalID:    uuid.New(),
		Type:        database.MedicalRecordTypeCheckup,
		Description: "Routine checkup, all clear",
		CreatedBy:   uuid.New(),
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and emits with candidate recipients", func(t *testing.T) {
		store := newFakeStore()
		manager, handler := newTestManager(store)

		candidates := []uuid.UUID{uuid.New(), uuid.New()}
		input := validInput()
		input.CandidateRecipients = candidates

		record, err := manager.Create(ctx, input)
		require.NoError(t, err)
		assert.Contains(t, store.records, record.ID)

		require.Len(t, handler.events, 1)
		assert.Equal(t, events.KindMedicalRecordCreated, handler.events[0].Kind)
		assert.Equal(t, record.ID, handler.events[0].MedicalRecord.ID)
		assert.Equal(t, candidates, handler.events[0].CandidateRecipients)
	})

	t.Run("follow-up date without the flag is rejected", func(t *testing.T) {
		store := newFakeStore()
		manager, _ := newTestManager(store)

		input := validInput()
		input.FollowUpDate = util.Some(time.Now().UTC().Add(48 * time.Hour))

		_, err := manager.Create(ctx, input)
		assert.True(t, validator.IsValidationError(err))
		assert.Empty(t, store.records)
	})

	t.Run("follow-up date with the flag is stored", func(t *testing.T) {
		store := newFakeStore()
		manager, _ := newTestManager(store)

		due := time.Now().UTC().Add(48 * time.Hour)
		input := validInput()
		input.FollowUpRequired = true
		input.FollowUpDate = util.Some(due)

		record, err := manager.Create(ctx, input)
		require.NoError(t, err)
		assert.True(t, record.FollowUpRequired)
		assert.Equal(t, due, record.FollowUpDate.Val)
	})

	t.Run("skip notification suppresses the event", func(t *testing.T) {
		store := newFakeStore()
		manager, handler := newTestManager(store)

		input := validInput()
		input.SkipNotification = true

		_, err := manager.Create(ctx, input)
		require.NoError(t, err)
		assert.Empty(t, handler.events)
	})

	t.Run("unknown record type rejected", func(t *testing.T) {
		manager, _ := newTestManager(newFakeStore())

		input := validInput()
		input.Type = database.MedicalRecordType("exorcism")

		_, err := manager.Create(ctx, input)
		assert.True(t, validator.IsValidationError(err))
	})
}

func TestUpdateFollowUpInvariant(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	manager, _ := newTestManager(store)

	record, err := manager.Create(ctx, validInput())
	require.NoError(t, err)

	t.Run("date without the flag on a flagless record", func(t *testing.T) {
		_, err := manager.Update(ctx, record.ID, UpdateInput{
			FollowUpDate: util.Some(util.Some(time.Now().UTC().Add(time.Hour))),
		})
		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("date and flag together", func(t *testing.T) {
		due := time.Now().UTC().Add(time.Hour)
		updated, err := manager.Update(ctx, record.ID, UpdateInput{
			FollowUpRequired: util.Some(true),
			FollowUpDate:     util.Some(util.Some(due)),
		})
		require.NoError(t, err)
		assert.True(t, updated.FollowUpRequired)
		assert.Equal(t, due, updated.FollowUpDate.Val)
	})

	t.Run("date alone once the flag is already set", func(t *testing.T) {
		due := time.Now().UTC().Add(96 * time.Hour)
		updated, err := manager.Update(ctx, record.ID, UpdateInput{
			FollowUpDate: util.Some(util.Some(due)),
		})
		require.NoError(t, err)
		assert.Equal(t, due, updated.FollowUpDate.Val)
	})

	t.Run("clearing the date never needs the flag", func(t *testing.T) {
		updated, err := manager.Update(ctx, record.ID, UpdateInput{
			FollowUpRequired: util.Some(false),
			FollowUpDate:     util.Some(util.None[time.Time]()),
		})
		require.NoError(t, err)
		assert.False(t, updated.FollowUpRequired)
		assert.False(t, updated.FollowUpDate.IsSet)
	})
}

func TestListFollowUpsDue(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	manager, _ := newTestManager(store)

	now := time.Now().UTC()

	due := validInput()
	due.FollowUpRequired = true
	due.FollowUpDate = util.Some(now.Add(12 * time.Hour))
	dueRecord, err := manager.Create(ctx, due)
	require.NoError(t, err)

	later := validInput()
	later.FollowUpRequired = true
	later.FollowUpDate = util.Some(now.Add(90 * 24 * time.Hour))
	_, err = manager.Create(ctx, later)
	require.NoError(t, err)

	_, err = manager.Create(ctx, validInput())
	require.NoError(t, err)

	result, err := manager.ListFollowUpsDue(ctx, now.Add(24*time.Hour), 10, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, dueRecord.ID, result.Items[0].ID)
}

func TestAddDocument(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	manager, _ := newTestManager(store)

	input := validInput()
	input.DocumentKeys = []string{"documents/a.pdf"}
	record, err := manager.Create(ctx, input)
	require.NoError(t, err)

	updated, err := manager.AddDocument(ctx, record.ID, "documents/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"documents/a.pdf", "documents/b.pdf"}, updated.DocumentKeys)
}
