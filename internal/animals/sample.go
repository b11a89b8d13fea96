package animals

import (
	"time"

	"campuspaws/internal/database"
	"campuspaws/internal/util"

	"github.com/google/uuid"
)

// Bundled fallback dataset for the public browse page. Served unchanged
// when the store is down; never written back.
func sampleAnimals() []database.Animal {
	base := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	return []database.Animal{
		{
			ID:        uuid.MustParse("0c2a1f66-8a3d-4d4e-9f3b-111111111111"),
			Name:      "Bruno",
			Species:   database.SpeciesDog,
			Age:       4,
			Breed:     "indie",
			Area:      "north-gate",
			Latitude:  12.9352,
			Longitude: 77.6059,
			PhotoKeys: []string{"samples/bruno.jpg"},
			Status:    database.HealthStatusHealthy,
			CreatedAt: base,
			UpdatedAt: base,
		},
		{
			ID:        uuid.MustParse("0c2a1f66-8a3d-4d4e-9f3b-222222222222"),
			Name:      "Masala",
			Species:   database.SpeciesCat,
			Age:       2,
			Breed:     "common",
			Area:      "library",
			Latitude:  12.9361,
			Longitude: 77.6068,
			PhotoKeys: []string{"samples/masala.jpg"},
			Status:    database.HealthStatusNeedsAttention,
			CreatedAt: base.Add(24 * time.Hour),
			UpdatedAt: base.Add(24 * time.Hour),
		},
		{
			ID:        uuid.MustParse("0c2a1f66-8a3d-4d4e-9f3b-333333333333"),
			Name:      "Laika",
			Species:   database.SpeciesDog,
			Age:       7,
			Breed:     "labrador",
			Area:      "hostel-block",
			Latitude:  12.9344,
			Longitude: 77.6041,
			PackID:    util.Some(uuid.MustParse("0c2a1f66-8a3d-4d4e-9f3b-aaaaaaaaaaaa")),
			PhotoKeys: []string{"samples/laika.jpg"},
			Status:    database.HealthStatusUnderTreatment,
			CreatedAt: base.Add(48 * time.Hour),
			UpdatedAt: base.Add(48 * time.Hour),
		},
		{
			ID:        uuid.MustParse("0c2a1f66-8a3d-4d4e-9f3b-444444444444"),
			Name:      "Chai",
			Species:   database.SpeciesCat,
			Age:       1,
			Breed:     "common",
			Area:      "north-gate",
			Latitude:  12.9350,
			Longitude: 77.6061,
			PhotoKeys: nil,
			Status:    database.HealthStatusHealthy,
			CreatedAt: base.Add(72 * time.Hour),
			UpdatedAt: base.Add(72 * time.Hour),
		},
	}
}
