package forecast_test

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/demand-engine/forecast"
)

// constModel always predicts the same value and records the feature rows
// it was asked about.
type constModel struct {
	value float64

	mu   sync.Mutex
	seen []forecast.FeatureRow
}

func (m *constModel) Predict(rows []forecast.FeatureRow) ([]float64, error) {
	m.mu.Lock()
	m.seen = append(m.seen, rows...)
	m.mu.Unlock()
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = m.value
	}
	return out, nil
}

// flakyModel succeeds a fixed number of times, then returns NaN.
type flakyModel struct {
	mu    sync.Mutex
	calls int
	good  int
}

func (m *flakyModel) Predict(rows []forecast.FeatureRow) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	bad := m.calls > m.good
	m.mu.Unlock()
	if bad {
		return []float64{math.NaN()}, nil
	}
	return []float64{5}, nil
}

// historyFor builds feature rows (and registry/last day) for entities with
// flat zero demand over enough days to satisfy the warm-up rule.
func historyFor(t *testing.T, products ...string) ([]forecast.FeatureRow, *forecast.Registry, forecast.Day) {
	t.Helper()
	start := day(2024, time.June, 1)
	const days = 14
	var txs []forecast.Transaction
	for _, p := range products {
		txs = append(txs,
			forecast.Transaction{Day: start, ProductID: p, WarehouseID: "W1"},
			forecast.Transaction{Day: start.AddDays(days - 1), ProductID: p, WarehouseID: "W1"})
	}
	panel, err := forecast.Densify(txs, nil)
	require.NoError(t, err)
	reg := forecast.FitRegistry(panel)
	rows, err := forecast.BuildFeatures(panel, reg)
	require.NoError(t, err)
	return rows, reg, start.AddDays(days - 1)
}

func TestSimulator_ConstantModelHorizon7(t *testing.T) {
	history, reg, lastDay := historyFor(t, "A")
	model := &constModel{value: 5}

	sim := &forecast.Simulator{Model: model, Registry: reg, Horizon: 7}
	rows, err := sim.Run(history, lastDay)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	for i, row := range rows {
		assert.Equal(t, 5.0, row.PredictedQuantity)
		assert.True(t, row.Day.Equal(lastDay.AddDays(i+1)))
		assert.Equal(t, "A", row.ProductID)
		assert.Equal(t, "W1", row.WarehouseID)
	}
}

func TestSimulator_Lag7CrossesOverToPredictions(t *testing.T) {
	// With an all-zero history, lag7 reads historical zeros through step
	// 7; at step 8 it must read the simulator's own step-1 prediction.
	history, reg, lastDay := historyFor(t, "A")
	model := &constModel{value: 5}

	sim := &forecast.Simulator{Model: model, Registry: reg, Horizon: 8, Workers: 1}
	rows, err := sim.Run(history, lastDay)
	require.NoError(t, err)
	require.Len(t, rows, 8)

	require.Len(t, model.seen, 8)
	for step, fr := range model.seen[:7] {
		assert.Equal(t, 0.0, fr.Lag7, "step %d", step+1)
	}
	assert.Equal(t, 5.0, model.seen[7].Lag7)

	// lag1 feeds back immediately: from step 2 onward it is the prior
	// prediction.
	assert.Equal(t, 0.0, model.seen[0].Lag1)
	assert.Equal(t, 5.0, model.seen[1].Lag1)
}

func TestSimulator_NegativePredictionsFloorAtZero(t *testing.T) {
	history, reg, lastDay := historyFor(t, "A")
	sim := &forecast.Simulator{Model: &constModel{value: -3}, Registry: reg}

	rows, err := sim.Run(history, lastDay)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	for _, row := range rows {
		assert.Equal(t, 0.0, row.PredictedQuantity)
	}
}

func TestSimulator_UnknownEntitySkippedOthersComplete(t *testing.T) {
	// GIVEN: History containing an entity the registry never saw
	// THEN:  That entity yields zero rows; the known entity's horizon is
	//        complete.
	history, reg, lastDay := historyFor(t, "A")
	foreign := make([]forecast.FeatureRow, len(history))
	copy(foreign, history)
	for i := range foreign {
		foreign[i].Entity = forecast.EntityKey{ProductID: "GHOST", WarehouseID: "W1"}
	}
	combined := append(history, foreign...)

	sim := &forecast.Simulator{Model: &constModel{value: 2}, Registry: reg, Horizon: 7}
	rows, err := sim.Run(combined, lastDay)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	for _, row := range rows {
		assert.Equal(t, "A", row.ProductID)
	}
}

func TestSimulator_PredictionFailureStopsAtLastGoodStep(t *testing.T) {
	history, reg, lastDay := historyFor(t, "A")
	sim := &forecast.Simulator{Model: &flakyModel{good: 3}, Registry: reg, Horizon: 7, Workers: 1}

	rows, err := sim.Run(history, lastDay)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSimulator_ParallelMatchesSequential(t *testing.T) {
	history, reg, lastDay := historyFor(t, "A", "B", "C", "D")
	sequential := &forecast.Simulator{Model: &constModel{value: 4}, Registry: reg, Workers: 1}
	parallel := &forecast.Simulator{Model: &constModel{value: 4}, Registry: reg, Workers: 4}

	seqRows, err := sequential.Run(history, lastDay)
	require.NoError(t, err)
	parRows, err := parallel.Run(history, lastDay)
	require.NoError(t, err)
	assert.Equal(t, seqRows, parRows)
}

func TestSimulator_RequiresModelAndRegistry(t *testing.T) {
	sim := &forecast.Simulator{}
	_, err := sim.Run(nil, day(2024, time.June, 1))
	assert.Error(t, err)
}

// =============================================================================
// ENTITY STATE - Single-step unit tests
// =============================================================================

func stateFor(t *testing.T) (*forecast.EntityState, *forecast.Registry, forecast.Day) {
	t.Helper()
	history, reg, lastDay := historyFor(t, "A")
	st, err := forecast.NewEntityState(history[0].Entity, history, reg)
	require.NoError(t, err)
	return st, reg, lastDay
}

func TestEntityState_WindowNeverExceedsSeven(t *testing.T) {
	st, reg, lastDay := stateFor(t)
	model := &constModel{value: 1}

	for step := 1; step <= 20; step++ {
		_, err := st.Step(lastDay.AddDays(step), model, reg, nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, st.WindowLen(), 7, "step %d", step)
	}
}

func TestEntityState_UnknownHolidayLabelFails(t *testing.T) {
	st, reg, lastDay := stateFor(t)

	// The fitted registry has no labels beyond the sentinel; a label it
	// never saw must fail rather than be silently bucketed.
	cal := forecast.NewHolidayCalendar()
	cal.Add(lastDay.AddDays(2), "Surprise_Festival")

	model := &constModel{value: 1}
	_, err := st.Step(lastDay.AddDays(1), model, reg, cal)
	require.NoError(t, err)

	_, err = st.Step(lastDay.AddDays(2), model, reg, cal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, forecast.ErrUnknownCategory))
}

func TestEntityState_HolidayDistanceResetsAtForecastHoliday(t *testing.T) {
	// Fit a registry that knows the label, then cross the same holiday
	// during simulation: distance drops to 0 on the day and counts up
	// after it.
	start := day(2024, time.June, 1)
	const days = 14
	txs := []forecast.Transaction{
		{Day: start, ProductID: "A", WarehouseID: "W1"},
		{Day: start.AddDays(days - 1), ProductID: "A", WarehouseID: "W1"},
	}
	cal := forecast.NewHolidayCalendar()
	cal.Add(start.AddDays(10), "Festival")

	panel, err := forecast.Densify(txs, cal)
	require.NoError(t, err)
	reg := forecast.FitRegistry(panel)
	history, err := forecast.BuildFeatures(panel, reg)
	require.NoError(t, err)
	lastDay := start.AddDays(days - 1)

	cal.Add(lastDay.AddDays(3), "Festival")
	st, err := forecast.NewEntityState(history[0].Entity, history, reg)
	require.NoError(t, err)

	model := &constModel{value: 1}
	for step := 1; step <= 5; step++ {
		_, err := st.Step(lastDay.AddDays(step), model, reg, cal)
		require.NoError(t, err)
	}

	require.Len(t, model.seen, 5)
	// Steps 1-2 measure from the historical holiday (day index 10).
	assert.Equal(t, float64(lastDay.AddDays(1).Sub(start.AddDays(10))), model.seen[0].DaysSinceHoliday)
	assert.Equal(t, float64(lastDay.AddDays(2).Sub(start.AddDays(10))), model.seen[1].DaysSinceHoliday)
	assert.Equal(t, 0.0, model.seen[2].DaysSinceHoliday)
	assert.Equal(t, 1, model.seen[2].IsHoliday)
	assert.Equal(t, 1.0, model.seen[3].DaysSinceHoliday)
	assert.Equal(t, 2.0, model.seen[4].DaysSinceHoliday)
}

func TestEntityState_NoHistory(t *testing.T) {
	_, reg, _ := historyFor(t, "A")
	_, err := forecast.NewEntityState(forecast.EntityKey{ProductID: "A", WarehouseID: "W1"}, nil, reg)
	assert.True(t, errors.Is(err, forecast.ErrInsufficientHistory))
}
