/*
simulate.go - Recursive multi-step forecast simulation

PURPOSE:
  Walks each entity forward day-by-day for a fixed horizon. Every step
  assembles a feature vector from the entity's rolling state, invokes the
  external model, floors the prediction at zero, records it, and folds it
  back into state so the next step sees it. Once the horizon advances past
  7 steps, lag7 starts reading the simulator's own earlier predictions.

STATE MACHINE:
  EntityState = { bounded FIFO window (cap 7), all known quantities by day
  (actual, then predicted), last holiday day, entity codes }. Step is the
  pure-ish transition (state, date) -> (new state, forecast row), which
  keeps a single step unit-testable in isolation.

FAILURE ISOLATION:
  Per-entity failures (unknown category, missing history, bad model
  output) are logged and skip the remainder of THAT entity's horizon.
  Sibling entities are unaffected. Steps completed before the failure
  are kept, except that state-construction failures yield zero rows.

CONCURRENCY:
  Entities are independent, so the simulator fans them out across a
  bounded worker pool. The registry and calendar are read-only during the
  run; each entity's state and output are private to its worker. Output
  is sorted (entity, day) before returning so results are deterministic
  regardless of worker interleaving.

SEE ALSO:
  - features.go: The historical rows that seed each entity's state
  - model.go:    The Predict contract
  - errors.go:   The per-entity error taxonomy
*/
package forecast

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DefaultHorizon is the number of future days forecast per entity when the
// simulator is not configured otherwise.
const DefaultHorizon = 7

// Simulator generates recursive multi-step forecasts for every entity in
// the historical feature set.
type Simulator struct {
	Model    Model
	Registry *Registry
	Calendar *HolidayCalendar

	// Horizon is the number of days to forecast (default 7).
	Horizon int

	// Workers bounds parallelism across entities (default NumCPU).
	Workers int

	Logger *zap.Logger
}

// Run forecasts Horizon days past lastDay for every entity present in the
// historical feature rows. Entities that fail contribute their completed
// steps only; they never abort the run.
func (s *Simulator) Run(history []FeatureRow, lastDay Day) ([]ForecastRow, error) {
	if s.Model == nil || s.Registry == nil {
		return nil, fmt.Errorf("simulator requires a model and a fitted registry")
	}
	horizon := s.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	groups := groupByEntity(history)
	if len(groups) == 0 {
		return nil, nil
	}
	if workers > len(groups) {
		workers = len(groups)
	}

	var (
		mu   sync.Mutex
		out  []ForecastRow
		wg   sync.WaitGroup
		work = make(chan []FeatureRow)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for series := range work {
				rows := s.runEntity(series, lastDay, horizon, logger)
				if len(rows) > 0 {
					mu.Lock()
					out = append(out, rows...)
					mu.Unlock()
				}
			}
		}()
	}
	for _, series := range groups {
		work <- series
	}
	close(work)
	wg.Wait()

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

// runEntity simulates one entity's horizon, returning completed steps.
func (s *Simulator) runEntity(series []FeatureRow, lastDay Day, horizon int, logger *zap.Logger) []ForecastRow {
	entity := series[0].Entity
	state, err := NewEntityState(entity, series, s.Registry)
	if err != nil {
		logger.Warn("skipping entity",
			zap.String("product", entity.ProductID),
			zap.String("warehouse", entity.WarehouseID),
			zap.Error(err))
		return nil
	}

	rows := make([]ForecastRow, 0, horizon)
	for step := 1; step <= horizon; step++ {
		row, err := state.Step(lastDay.AddDays(step), s.Model, s.Registry, s.Calendar)
		if err != nil {
			logger.Warn("abandoning entity forecast",
				zap.String("product", entity.ProductID),
				zap.String("warehouse", entity.WarehouseID),
				zap.Int("completed_steps", step-1),
				zap.Error(err))
			break
		}
		rows = append(rows, row)
	}
	return rows
}

// groupByEntity splits feature rows into per-entity chronological series.
func groupByEntity(history []FeatureRow) [][]FeatureRow {
	byEntity := make(map[EntityKey][]FeatureRow)
	var order []EntityKey
	for _, row := range history {
		if _, ok := byEntity[row.Entity]; !ok {
			order = append(order, row.Entity)
		}
		byEntity[row.Entity] = append(byEntity[row.Entity], row)
	}
	groups := make([][]FeatureRow, 0, len(order))
	for _, key := range order {
		series := byEntity[key]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Day.Before(series[j].Day)
		})
		groups = append(groups, series)
	}
	return groups
}

// =============================================================================
// ENTITY STATE - Rolling forecast state for one entity
// =============================================================================

// EntityState is the rolling forecast state for a single entity during one
// simulation run. Created fresh from the tail of the entity's historical
// feature rows, advanced by Step, discarded when the horizon completes.
type EntityState struct {
	Entity        EntityKey
	ProductCode   int
	WarehouseCode int

	// window holds the up-to-7 most recent quantities in chronological
	// order: actual history first, progressively replaced by predictions.
	window []float64

	// quantities indexes every known value by day - historical actuals
	// seeded at construction, predictions added as steps complete. lag7
	// reads from here, so it crosses over from actual to predicted data
	// once the horizon passes 7 steps.
	quantities map[Day]float64

	lastHoliday Day
	hasHoliday  bool
}

// NewEntityState builds rolling state from an entity's chronological
// feature rows. Fails with ErrInsufficientHistory when the entity has no
// eligible rows, or ErrUnknownCategory when the entity was never seen by
// the fitted registry.
func NewEntityState(entity EntityKey, series []FeatureRow, registry *Registry) (*EntityState, error) {
	if len(series) == 0 {
		return nil, &InsufficientHistoryError{Entity: entity}
	}
	productCode, err := registry.Products.Encode(entity.ProductID)
	if err != nil {
		return nil, err
	}
	warehouseCode, err := registry.Warehouses.Encode(entity.WarehouseID)
	if err != nil {
		return nil, err
	}

	st := &EntityState{
		Entity:        entity,
		ProductCode:   productCode,
		WarehouseCode: warehouseCode,
		quantities:    make(map[Day]float64, len(series)),
	}
	for _, row := range series {
		st.quantities[row.Day] = row.Quantity
		if row.IsHoliday == 1 {
			st.lastHoliday = row.Day
			st.hasHoliday = true
		}
	}
	tail := series
	if len(tail) > lagWindow {
		tail = tail[len(tail)-lagWindow:]
	}
	for _, row := range tail {
		st.window = append(st.window, row.Quantity)
	}
	return st, nil
}

// WindowLen reports the current rolling window occupancy (never above 7).
func (st *EntityState) WindowLen() int { return len(st.window) }

// Step advances the state by one day: assembles the feature row for date,
// predicts, floors at zero, records the prediction, and pushes it into the
// rolling window. Returns the forecast row with decoded entity labels.
func (st *EntityState) Step(date Day, model Model, registry *Registry, calendar *HolidayCalendar) (ForecastRow, error) {
	var (
		label     string
		isHoliday int
	)
	if calendar != nil {
		if l, ok := calendar.Label(date); ok {
			label = l
			isHoliday = 1
			st.lastHoliday = date
			st.hasHoliday = true
		}
	}
	holidayType, err := registry.EncodeHoliday(label)
	if err != nil {
		return ForecastRow{}, err
	}

	daysSince := 0.0
	if st.hasHoliday {
		daysSince = float64(date.Sub(st.lastHoliday))
	}
	isWeekend := 0
	if date.IsWeekend() {
		isWeekend = 1
	}

	row := FeatureRow{
		Entity:           st.Entity,
		ProductCode:      st.ProductCode,
		WarehouseCode:    st.WarehouseCode,
		Day:              date,
		Lag1:             st.window[len(st.window)-1],
		Lag7:             st.quantities[date.AddDays(-lagWindow)],
		RollingMean7:     mean(st.window),
		DayOfWeek:        date.DayOfWeek(),
		Month:            int(date.Month()),
		IsWeekend:        isWeekend,
		IsHoliday:        isHoliday,
		HolidayType:      holidayType,
		DaysSinceHoliday: daysSince,
	}

	preds, err := model.Predict([]FeatureRow{row})
	if err != nil {
		return ForecastRow{}, &PredictionError{Entity: st.Entity, Day: date, Reason: err.Error()}
	}
	if len(preds) != 1 {
		return ForecastRow{}, &PredictionError{Entity: st.Entity, Day: date,
			Reason: fmt.Sprintf("expected 1 prediction, got %d", len(preds))}
	}
	pred := preds[0]
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		return ForecastRow{}, &PredictionError{Entity: st.Entity, Day: date, Reason: "non-finite prediction"}
	}
	// Demand cannot be negative.
	pred = math.Max(0, pred)

	st.quantities[date] = pred
	st.window = append(st.window, pred)
	if len(st.window) > lagWindow {
		st.window = st.window[1:]
	}

	product, err := registry.Products.Decode(st.ProductCode)
	if err != nil {
		return ForecastRow{}, err
	}
	warehouse, err := registry.Warehouses.Decode(st.WarehouseCode)
	if err != nil {
		return ForecastRow{}, err
	}
	return ForecastRow{
		Day:               date,
		WarehouseID:       warehouse,
		ProductID:         product,
		PredictedQuantity: pred,
	}, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
