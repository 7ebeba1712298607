/*
Package sqlite provides a SQLite-backed implementation of forecast.Store.

PURPOSE:
  Persists pipeline runs and their forecast rows so the server can serve
  historical forecasts without re-running the pipeline. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  runs:      One row per pipeline run (model, metrics, input paths)
  forecasts: One row per (run, entity, forecasted day)

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging): multiple readers
  don't block and crash recovery is cleaner.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - forecast/store.go: Interface definition
  - store/memory:      In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/demand-engine/forecast"
)

// Store implements forecast.Store using SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	created_at    TIMESTAMP NOT NULL,
	data_path     TEXT NOT NULL,
	holidays_path TEXT NOT NULL,
	horizon       INTEGER NOT NULL,
	model_name    TEXT NOT NULL,
	metrics_json  TEXT NOT NULL,
	row_count     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS forecasts (
	run_id             TEXT NOT NULL REFERENCES runs(id),
	day                TEXT NOT NULL,
	warehouse_id       TEXT NOT NULL,
	product_id         TEXT NOT NULL,
	predicted_quantity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_forecasts_run ON forecasts(run_id, product_id, warehouse_id, day);
`

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveRun(ctx context.Context, run forecast.RunRecord, rows []forecast.ForecastRow) error {
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, data_path, holidays_path, horizon, model_name, metrics_json, row_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.DataPath, run.HolidaysPath, run.Horizon,
		run.ModelName, string(metrics), run.RowCount)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO forecasts (run_id, day, warehouse_id, product_id, predicted_quantity)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, run.ID, row.Day.String(), row.WarehouseID,
			row.ProductID, row.PredictedQuantity); err != nil {
			return fmt.Errorf("failed to insert forecast row: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) Run(ctx context.Context, id string) (forecast.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, data_path, holidays_path, horizon, model_name, metrics_json, row_count
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return forecast.RunRecord{}, forecast.ErrRunNotFound
	}
	return run, err
}

func (s *Store) Runs(ctx context.Context) ([]forecast.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, data_path, holidays_path, horizon, model_name, metrics_json, row_count
		FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []forecast.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) ForecastsForRun(ctx context.Context, id string) ([]forecast.ForecastRow, error) {
	if _, err := s.Run(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT day, warehouse_id, product_id, predicted_quantity
		FROM forecasts WHERE run_id = ?
		ORDER BY product_id, warehouse_id, day`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var out []forecast.ForecastRow
	for rows.Next() {
		var (
			day string
			fr  forecast.ForecastRow
		)
		if err := rows.Scan(&day, &fr.WarehouseID, &fr.ProductID, &fr.PredictedQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan forecast row: %w", err)
		}
		fr.Day, err = forecast.ParseDay(day)
		if err != nil {
			return nil, fmt.Errorf("corrupt day in forecasts table: %w", err)
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (forecast.RunRecord, error) {
	var (
		run     forecast.RunRecord
		metrics string
	)
	err := row.Scan(&run.ID, &run.CreatedAt, &run.DataPath, &run.HolidaysPath,
		&run.Horizon, &run.ModelName, &metrics, &run.RowCount)
	if err != nil {
		return forecast.RunRecord{}, err
	}
	if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
		return forecast.RunRecord{}, fmt.Errorf("corrupt metrics for run %s: %w", run.ID, err)
	}
	return run, nil
}
