// Package memory provides an in-memory Store implementation for tests and
// development servers.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/demand-engine/forecast"
)

// Store keeps runs and forecast rows in process memory. Safe for
// concurrent use.
type Store struct {
	mu        sync.RWMutex
	runs      map[string]forecast.RunRecord
	forecasts map[string][]forecast.ForecastRow
	order     []string // run IDs, insertion order
}

func New() *Store {
	return &Store{
		runs:      make(map[string]forecast.RunRecord),
		forecasts: make(map[string][]forecast.ForecastRow),
	}
}

func (s *Store) SaveRun(_ context.Context, run forecast.RunRecord, rows []forecast.ForecastRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = run
	copied := make([]forecast.ForecastRow, len(rows))
	copy(copied, rows)
	s.forecasts[run.ID] = copied
	return nil
}

func (s *Store) Run(_ context.Context, id string) (forecast.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return forecast.RunRecord{}, forecast.ErrRunNotFound
	}
	return run, nil
}

func (s *Store) Runs(_ context.Context) ([]forecast.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]forecast.RunRecord, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out, nil
}

func (s *Store) ForecastsForRun(_ context.Context, id string) ([]forecast.ForecastRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.forecasts[id]
	if !ok {
		return nil, forecast.ErrRunNotFound
	}
	out := make([]forecast.ForecastRow, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		return a.Day.Before(b.Day)
	})
	return out, nil
}

func (s *Store) Close() error { return nil }
