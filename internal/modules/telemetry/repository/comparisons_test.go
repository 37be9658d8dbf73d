package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"stationwatch/internal/modules/telemetry/outlier"
	"stationwatch/internal/modules/telemetry/types"
)

func TestComparisons_CRUD(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	c := types.Comparison{
		ID:   "cmp-1",
		Name: "Valley temperatures",
		Sensors: []outlier.SensorIdentity{
			alphaTemp,
			{StationKey: "beta", SensorType: "temperature", SensorModel: "DS18B20"},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}

	if err := repo.CreateComparison(ctx, c); err != nil {
		t.Fatalf("CreateComparison: %v", err)
	}

	got, err := repo.GetComparison(ctx, "cmp-1")
	if err != nil {
		t.Fatalf("GetComparison: %v", err)
	}
	if got.Name != c.Name || len(got.Sensors) != 2 || got.Sensors[1].SensorModel != "DS18B20" {
		t.Errorf("GetComparison = %+v; want %+v", got, c)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v; want %v", got.CreatedAt, created)
	}

	c.Name = "Renamed"
	c.Sensors = c.Sensors[:1]
	c.UpdatedAt = created.Add(time.Hour)
	if err := repo.UpdateComparison(ctx, c); err != nil {
		t.Fatalf("UpdateComparison: %v", err)
	}

	list, err := repo.ListComparisons(ctx)
	if err != nil {
		t.Fatalf("ListComparisons: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Renamed" || len(list[0].Sensors) != 1 {
		t.Fatalf("ListComparisons = %+v", list)
	}
	if !list[0].UpdatedAt.Equal(created.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v", list[0].UpdatedAt)
	}

	if err := repo.DeleteComparison(ctx, "cmp-1"); err != nil {
		t.Fatalf("DeleteComparison: %v", err)
	}
	if _, err := repo.GetComparison(ctx, "cmp-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetComparison after delete err = %v; want ErrNotFound", err)
	}
}

func TestComparisons_MissingIDs(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.UpdateComparison(ctx, types.Comparison{ID: "ghost", UpdatedAt: time.Now()}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateComparison err = %v; want ErrNotFound", err)
	}
	if err := repo.DeleteComparison(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteComparison err = %v; want ErrNotFound", err)
	}

	list, err := repo.ListComparisons(ctx)
	if err != nil {
		t.Fatalf("ListComparisons: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("ListComparisons = %v; want empty non-nil slice", list)
	}
}
