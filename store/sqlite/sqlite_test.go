package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/demand-engine/forecast"
	"github.com/warp/demand-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	run := forecast.RunRecord{
		ID:           "run-1",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		DataPath:     "data.csv",
		HolidaysPath: "holidays.csv",
		Horizon:      7,
		ModelName:    "linear",
		Metrics:      map[string]float64{"mae": 1.5, "mse": 3.2, "r2": 0.8},
		RowCount:     2,
	}
	rows := []forecast.ForecastRow{
		{Day: forecast.NewDay(2024, time.March, 9), WarehouseID: "W01", ProductID: "P002", PredictedQuantity: 3},
		{Day: forecast.NewDay(2024, time.March, 8), WarehouseID: "W01", ProductID: "P001", PredictedQuantity: 5.25},
	}
	require.NoError(t, s.SaveRun(ctx, run, rows))

	got, err := s.Run(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, run.DataPath, got.DataPath)
	assert.Equal(t, run.HolidaysPath, got.HolidaysPath)
	assert.Equal(t, run.Horizon, got.Horizon)
	assert.Equal(t, run.ModelName, got.ModelName)
	assert.Equal(t, run.Metrics, got.Metrics)
	assert.Equal(t, run.RowCount, got.RowCount)

	stored, err := s.ForecastsForRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	// Ordered by (product, warehouse, day).
	assert.Equal(t, "P001", stored[0].ProductID)
	assert.Equal(t, 5.25, stored[0].PredictedQuantity)
	assert.True(t, stored[0].Day.Equal(forecast.NewDay(2024, time.March, 8)))
	assert.Equal(t, "P002", stored[1].ProductID)
}

func TestStore_RunsNewestFirst(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := forecast.RunRecord{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			ModelName: "knn",
			Metrics:   map[string]float64{},
		}
		require.NoError(t, s.SaveRun(ctx, run, nil))
	}

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-a", runs[2].ID)
}

func TestStore_NotFound(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Run(ctx, "missing")
	assert.ErrorIs(t, err, forecast.ErrRunNotFound)

	_, err = s.ForecastsForRun(ctx, "missing")
	assert.ErrorIs(t, err, forecast.ErrRunNotFound)
}

func TestStore_DuplicateRunIDRejected(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	run := forecast.RunRecord{ID: "run-1", CreatedAt: time.Now(), Metrics: map[string]float64{}}
	require.NoError(t, s.SaveRun(ctx, run, nil))
	assert.Error(t, s.SaveRun(ctx, run, nil))
}
