package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"campuspaws/internal/animals"
	"campuspaws/internal/database"
	"campuspaws/internal/logger"
	"campuspaws/internal/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	animals map[uuid.UUID]database.Animal
}

func newFakeStore() *fakeStore {
	return &fakeStore{animals: make(map[uuid.UUID]database.Animal)}
}

func (f *fakeStore) CreateAnimal(ctx context.Context, params database.CreateAnimalParams) (database.Animal, error) {
	now := time.Now().UTC()
	animal := database.Animal{
		ID:        uuid.New(),
		Name:      params.Name,
		Species:   params.Species,
		Age:       params.Age,
		Breed:     params.Breed,
		Area:      params.Area,
		Latitude:  params.Latitude,
		Longitude: params.Longitude,
		Status:    params.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.animals[animal.ID] = animal
	return animal, nil
}

func (f *fakeStore) GetAnimalByID(ctx context.Context, id uuid.UUID) (database.Animal, error) {
	return database.Animal{}, database.ErrAnimalNotFound
}

func (f *fakeStore) ListAnimals(ctx context.Context, params database.ListAnimalsParams) ([]database.Animal, error) {
	return nil, nil
}

func (f *fakeStore) CountAnimals(ctx context.Context, params database.ListAnimalsParams) (int, error) {
	return 0, nil
}

func (f *fakeStore) UpdateAnimalByID(ctx context.Context, id uuid.UUID, params database.UpdateAnimalParams) error {
	return nil
}

func (f *fakeStore) DeleteAnimalByID(ctx context.Context, id uuid.UUID) error {
	return nil
}

func newTestImporter(store *fakeStore) *Importer {
	manager := animals.NewManager(logger.Discard(), store, validator.New())
	return New(logger.Discard(), &manager)
}

const header = "name,species,age,breed,area,latitude,longitude,status\n"

func TestImportAnimals(t *testing.T) {
	ctx := context.Background()

	t.Run("clean file imports every row", func(t *testing.T) {
		store := newFakeStore()
		importer := newTestImporter(store)

		input := header +
			"Bruno,dog,4,indie,north-gate,12.9352,77.6059,healthy\n" +
			"Masala,cat,2,common,library,12.9361,77.6068,needs_attention\n"

		summary, err := importer.ImportAnimals(ctx, strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Imported)
		assert.Zero(t, summary.Failed)
		assert.Empty(t, summary.Errors)
		assert.Len(t, store.animals, 2)
	})

	t.Run("bad rows are skipped with their line numbers", func(t *testing.T) {
		store := newFakeStore()
		importer := newTestImporter(store)

		input := header +
			"Bruno,dog,4,indie,north-gate,12.9352,77.6059,healthy\n" +
			"Ghost,dog,not-a-number,indie,library,12.93,77.60,healthy\n" +
			"Laika,parrot,3,,hostel-block,12.93,77.60,healthy\n" +
			"Chai,cat,1,common,north-gate,12.9350,77.6061,healthy\n"

		summary, err := importer.ImportAnimals(ctx, strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Imported)
		assert.Equal(t, 2, summary.Failed)

		require.Len(t, summary.Errors, 2)
		assert.Equal(t, 3, summary.Errors[0].Line)
		assert.Contains(t, summary.Errors[0].Message, "age")
		assert.Equal(t, 4, summary.Errors[1].Line)
	})

	t.Run("wrong header aborts the import", func(t *testing.T) {
		importer := newTestImporter(newFakeStore())

		_, err := importer.ImportAnimals(ctx, strings.NewReader(
			"nickname,species,age,breed,area,latitude,longitude,status\nBruno,dog,4,,x,1,1,healthy\n"))
		assert.Error(t, err)
	})

	t.Run("header casing and padding are forgiven", func(t *testing.T) {
		store := newFakeStore()
		importer := newTestImporter(store)

		input := "Name, Species, Age, Breed, Area, Latitude, Longitude, Status\n" +
			"Bruno, dog, 4, indie, north-gate, 12.9352, 77.6059, healthy\n"

		summary, err := importer.ImportAnimals(ctx, strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Imported)
	})

	t.Run("empty file after header", func(t *testing.T) {
		importer := newTestImporter(newFakeStore())

		summary, err := importer.ImportAnimals(ctx, strings.NewReader(header))
		require.NoError(t, err)
		assert.Zero(t, summary.Imported)
		assert.Zero(t, summary.Failed)
	})
}
