package notifications

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"campuspaws/internal/database"
	"campuspaws/internal/logger"
	"campuspaws/internal/util"
	"campuspaws/internal/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	notifications map[uuid.UUID]database.Notification
	preferences   map[uuid.UUID]database.NotificationPreferences

	// failUpdates makes UpdateNotificationByID fail for the listed IDs.
	failUpdates map[uuid.UUID]bool

	updateCalls int
	sweepSizes  []int
	// sweepCounts is consumed one entry per DeleteExpiredNotifications call.
	sweepCounts []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notifications: make(map[uuid.UUID]database.Notification),
		preferences:   make(map[uuid.UUID]database.NotificationPreferences),
		failUpdates:   make(map[uuid.UUID]bool),
	}
}

func (f *fakeStore) add(recipientID uuid.UUID, read bool) database.Notification {
	n := database.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        database.NotificationTypeTaskAssigned,
		Title:       "New task",
		Priority:    database.PriorityMedium,
		Read:        read,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if read {
		n.ReadAt = util.Some(time.Now().UTC().Add(-time.Hour))
	}
	f.notifications[n.ID] = n
	return n
}

func (f *fakeStore) matching(params database.ListNotificationsParams) []database.Notification {
	var out []database.Notification
	for _, n := range f.notifications {
		if params.RecipientID.IsSet && n.RecipientID != params.RecipientID.Val {
			continue
		}
		if params.Read.IsSet && n.Read != params.Read.Val {
			continue
		}
		if params.Type.IsSet && n.Type != params.Type.Val {
			continue
		}
		if params.Priority.IsSet && n.Priority != params.Priority.Val {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeStore) CreateNotification(ctx context.Context, params database.CreateNotificationParams) (database.Notification, error) {
	n := database.Notification{
		ID:          uuid.New(),
		RecipientID: params.RecipientID,
		Type:        params.Type,
		Title:       params.Title,
		Message:     params.Message,
		Priority:    params.Priority,
		ActionURL:   params.ActionURL,
		ExpiresAt:   params.ExpiresAt,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	f.notifications[n.ID] = n
	return n, nil
}

func (f *fakeStore) GetNotificationByID(ctx context.Context, id uuid.UUID) (database.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return database.Notification{}, database.ErrNotificationNotFound
	}
	return n, nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, params database.ListNotificationsParams) ([]database.Notification, error) {
	out := f.matching(params)
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (f *fakeStore) CountNotifications(ctx context.Context, params database.ListNotificationsParams) (int, error) {
	return len(f.matching(params)), nil
}

func (f *fakeStore) UpdateNotificationByID(ctx context.Context, id uuid.UUID, params database.UpdateNotificationParams) error {
	f.updateCalls++
	if f.failUpdates[id] {
		return errors.New("update failed")
	}
	n, ok := f.notifications[id]
	if !ok {
		return database.ErrNotificationNotFound
	}
	if params.Read.IsSet {
		n.Read = params.Read.Val
	}
	if params.ReadAt.IsSet {
		n.ReadAt = util.Some(params.ReadAt.Val)
	}
	n.UpdatedAt = time.Now().UTC()
	f.notifications[id] = n
	return nil
}

func (f *fakeStore) DeleteNotificationByID(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.notifications[id]; !ok {
		return database.ErrNotificationNotFound
	}
	delete(f.notifications, id)
	return nil
}

func (f *fakeStore) DeleteExpiredNotifications(ctx context.Context, before time.Time, batchSize int) (int64, error) {
	f.sweepSizes = append(f.sweepSizes, batchSize)
	if len(f.sweepCounts) == 0 {
		return 0, nil
	}
	count := f.sweepCounts[0]
	f.sweepCounts = f.sweepCounts[1:]
	return count, nil
}

func (f *fakeStore) GetNotificationPreferences(ctx context.Context, userID uuid.UUID) (database.NotificationPreferences, error) {
	p, ok := f.preferences[userID]
	if !ok {
		return database.NotificationPreferences{}, database.ErrPreferencesNotFound
	}
	return p, nil
}

func (f *fakeStore) CreateNotificationPreferences(ctx context.Context, userID uuid.UUID) (database.NotificationPreferences, error) {
	p := database.NotificationPreferences{
		UserID:           userID,
		EmailEnabled:     true,
		TaskAlerts:       true,
		MedicalAlerts:    true,
		VolunteerUpdates: true,
		SystemUpdates:    true,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	f.preferences[userID] = p
	return p, nil
}

func (f *fakeStore) UpdateNotificationPreferencesByUserID(ctx context.Context, userID uuid.UUID, params database.UpdateNotificationPreferencesParams) error {
	p, ok := f.preferences[userID]
	if !ok {
		return database.ErrPreferencesNotFound
	}
	if params.EmailEnabled.IsSet {
		p.EmailEnabled = params.EmailEnabled.Val
	}
	if params.TaskAlerts.IsSet {
		p.TaskAlerts = params.TaskAlerts.Val
	}
	if params.MedicalAlerts.IsSet {
		p.MedicalAlerts = params.MedicalAlerts.Val
	}
	if params.VolunteerUpdates.IsSet {
		p.VolunteerUpdates = params.VolunteerUpdates.Val
	}
	if params.SystemUpdates.IsSet {
		p.SystemUpdates = params.SystemUpdates.Val
	}
	f.preferences[userID] = p
	return nil
}

type fakeCache struct {
	counts      map[uuid.UUID]int
	gets, sets  int
	invalidates int
}

func newFakeCache() *fakeCache {
	return &fakeCache{counts: make(map[uuid.UUID]int)}
}

func (c *fakeCache) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	c.gets++
	count, ok := c.counts[userID]
	return count, ok
}

func (c *fakeCache) Set(ctx context.Context, userID uuid.UUID, count int) {
	c.sets++
	c.counts[userID] = count
}

func (c *fakeCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	c.invalidates++
	delete(c.counts, userID)
}

func newTestManager(store *fakeStore, cache UnreadCache) Manager {
	return NewManager(logger.Discard(), store, validator.New(), cache, 20)
}

func TestUnreadCount(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("miss counts unread only and fills the cache", func(t *testing.T) {
		store := newFakeStore()
		cache := newFakeCache()
		manager := newTestManager(store, cache)

		store.add(userID, false)
		store.add(userID, false)
		store.add(userID, true)
		store.add(uuid.New(), false)

		count, err := manager.UnreadCount(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("hit skips the store", func(t *testing.T) {
		store := newFakeStore()
		cache := newFakeCache()
		cache.counts[userID] = 7
		manager := newTestManager(store, cache)

		count, err := manager.UnreadCount(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 7, count)
		assert.Zero(t, cache.sets)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cache := newFakeCache()
	manager := newTestManager(store, cache)
	userID := uuid.New()

	t.Run("marks and stamps read_at", func(t *testing.T) {
		n := store.add(userID, false)

		marked, err := manager.MarkRead(ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, marked.Read)
		assert.True(t, marked.ReadAt.IsSet)
		assert.Equal(t, 1, cache.invalidates)
	})

	t.Run("re-marking keeps the original read_at", func(t *testing.T) {
		n := store.add(userID, true)
		originalReadAt := n.ReadAt

		marked, err := manager.MarkRead(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, originalReadAt, marked.ReadAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := manager.MarkRead(ctx, uuid.New())
		assert.ErrorIs(t, err, database.ErrNotificationNotFound)
	})
}

func TestMarkReadForMasksForeignNotifications(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	manager := newTestManager(store, newFakeCache())

	owner := uuid.New()
	other := uuid.New()
	n := store.add(owner, false)

	_, err := manager.MarkReadFor(ctx, n.ID, other)
	assert.ErrorIs(t, err, database.ErrNotificationNotFound)
	assert.False(t, store.notifications[n.ID].Read)

	marked, err := manager.MarkReadFor(ctx, n.ID, owner)
	require.NoError(t, err)
	assert.True(t, marked.Read)
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("touches at most one batch", func(t *testing.T) {
		store := newFakeStore()
		cache := newFakeCache()
		manager := newTestManager(store, cache)

		for i := 0; i < 25; i++ {
			store.add(userID, false)
		}

		marked, remaining, err := manager.MarkAllRead(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 20, marked)
		assert.Equal(t, 5, remaining)
		assert.Equal(t, 20, store.updateCalls)
		assert.Equal(t, 1, cache.invalidates)
	})

	t.Run("one failure does not stop the batch", func(t *testing.T) {
		store := newFakeStore()
		manager := newTestManager(store, newFakeCache())

		broken := store.add(userID, false)
		store.failUpdates[broken.ID] = true
		for i := 0; i < 4; i++ {
			store.add(userID, false)
		}

		marked, remaining, err := manager.MarkAllRead(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 4, marked)
		assert.Equal(t, 1, remaining)
	})

	t.Run("nothing unread", func(t *testing.T) {
		store := newFakeStore()
		manager := newTestManager(store, newFakeCache())
		store.add(userID, true)

		marked, remaining, err := manager.MarkAllRead(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, marked)
		assert.Zero(t, remaining)
	})
}

func TestDeleteForMasksForeignNotifications(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	manager := newTestManager(store, newFakeCache())

	owner := uuid.New()
	n := store.add(owner, false)

	err := manager.DeleteFor(ctx, n.ID, uuid.New())
	assert.ErrorIs(t, err, database.ErrNotificationNotFound)
	assert.Contains(t, store.notifications, n.ID)

	require.NoError(t, manager.DeleteFor(ctx, n.ID, owner))
	assert.NotContains(t, store.notifications, n.ID)
}

func TestListForUserScopesToRecipient(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	manager := newTestManager(store, newFakeCache())

	userID := uuid.New()
	store.add(userID, false)
	store.add(userID, true)
	store.add(uuid.New(), false)

	result, err := manager.ListForUser(ctx, userID, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Len(t, result.Items, 2)
	for _, n := range result.Items {
		assert.Equal(t, userID, n.RecipientID)
	}

	unread, err := manager.ListForUser(ctx, userID, ListFilter{Read: util.Some(false)})
	require.NoError(t, err)
	assert.Equal(t, 1, unread.Total)
}

func TestDeleteExpiredLoopsUntilEmpty(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.sweepCounts = []int64{500, 500, 120}
	manager := newTestManager(store, newFakeCache())

	total, err := manager.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1120), total)
	// Three full batches plus the final empty round.
	assert.Equal(t, []int{500, 500, 500, 500}, store.sweepSizes)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	manager := newTestManager(store, newFakeCache())
	userID := uuid.New()

	t.Run("first access creates the all-enabled default", func(t *testing.T) {
		prefs, err := manager.Preferences(ctx, userID)
		require.NoError(t, err)
		assert.True(t, prefs.EmailEnabled)
		assert.True(t, prefs.TaskAlerts)
		assert.True(t, prefs.MedicalAlerts)
		assert.True(t, prefs.VolunteerUpdates)
		assert.True(t, prefs.SystemUpdates)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		prefs, err := manager.UpdatePreferences(ctx, userID, UpdatePreferencesInput{
			MedicalAlerts: util.Some(false),
		})
		require.NoError(t, err)
		assert.False(t, prefs.MedicalAlerts)
		assert.True(t, prefs.TaskAlerts)
	})

	t.Run("update creates the row when missing", func(t *testing.T) {
		newUser := uuid.New()
		prefs, err := manager.UpdatePreferences(ctx, newUser, UpdatePreferencesInput{
			EmailEnabled: util.Some(false),
		})
		require.NoError(t, err)
		assert.False(t, prefs.EmailEnabled)
		assert.True(t, prefs.SystemUpdates)
	})
}

func TestCreateInvalidatesUnreadCache(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cache := newFakeCache()
	manager := newTestManager(store, cache)

	userID := uuid.New()
	cache.counts[userID] = 3

	_, err := manager.Create(ctx, CreateInput{
		RecipientID: userID,
		Type:        database.NotificationTypeTaskAssigned,
		Title:       "New task assigned",
		Priority:    database.PriorityMedium,
	})
	require.NoError(t, err)
	assert.NotContains(t, cache.counts, userID)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(newFakeStore(), newFakeCache())

	_, err := manager.Create(ctx, CreateInput{
		RecipientID: uuid.New(),
		Type:        database.NotificationType("carrier_pigeon"),
		Title:       "Nope",
		Priority:    database.PriorityLow,
	})
	assert.Error(t, err)
}
