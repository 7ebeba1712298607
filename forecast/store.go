/*
store.go - Persistence interfaces for forecast runs

PURPOSE:
  Interface-first persistence: the engine defines what it needs stored,
  implementations live elsewhere (store/sqlite for production, store/memory
  for tests and dev servers).

SEE ALSO:
  - ../store/sqlite: SQLite implementation
  - ../store/memory: In-memory implementation
*/
package forecast

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run ID does not exist in the store.
var ErrRunNotFound = errors.New("run not found")

// RunRecord describes one completed pipeline run.
type RunRecord struct {
	ID           string
	CreatedAt    time.Time
	DataPath     string
	HolidaysPath string
	Horizon      int

	// ModelName is the model family that produced the forecasts.
	ModelName string

	// Metrics holds the chosen model's held-out evaluation (mae, mse, r2).
	Metrics map[string]float64

	// RowCount is the number of forecast rows the run produced.
	RowCount int
}

// Store persists forecast runs and their output rows.
type Store interface {
	// SaveRun persists a run record together with its forecast rows.
	SaveRun(ctx context.Context, run RunRecord, rows []ForecastRow) error

	// Run returns a single run record by ID (ErrRunNotFound if absent).
	Run(ctx context.Context, id string) (RunRecord, error)

	// Runs lists all run records, most recent first.
	Runs(ctx context.Context) ([]RunRecord, error)

	// ForecastsForRun returns a run's forecast rows sorted by
	// (product, warehouse, day). ErrRunNotFound if the run is absent.
	ForecastsForRun(ctx context.Context, id string) ([]ForecastRow, error)

	Close() error
}
