package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/demand-engine/forecast"
	"github.com/warp/demand-engine/models"
)

func testRegistry() *forecast.Registry {
	return &forecast.Registry{
		Products:   forecast.FitEncoder("product", []string{"A", "B"}),
		Warehouses: forecast.FitEncoder("warehouse", []string{"W1"}),
		Holidays:   forecast.FitEncoder("holiday", []string{forecast.NoHoliday}),
	}
}

// lagRows builds feature rows whose quantity is a fixed affine function of
// lag1, so a linear fit can recover it exactly.
func lagRows(lags []float64) ([]forecast.FeatureRow, []float64) {
	rows := make([]forecast.FeatureRow, len(lags))
	targets := make([]float64, len(lags))
	for i, lag := range lags {
		rows[i] = forecast.FeatureRow{Lag1: lag, Month: 1, Quantity: 2*lag + 3}
		targets[i] = rows[i].Quantity
	}
	return rows, targets
}

func TestLinear_RecoversAffineRelation(t *testing.T) {
	train, targets := lagRows([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	m := models.NewLinear(testRegistry(), 0)
	require.NoError(t, m.Fit(train, targets))

	test, want := lagRows([]float64{2.5, 11})
	got, err := m.Predict(test)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, want[0], got[0], 1e-3)
	assert.InDelta(t, want[1], got[1], 1e-3)
}

func TestLinear_PredictBeforeFit(t *testing.T) {
	m := models.NewLinear(testRegistry(), 0)
	_, err := m.Predict([]forecast.FeatureRow{{}})
	assert.Error(t, err)
}

func TestKNN_NearestNeighborExact(t *testing.T) {
	// k=1 on a test row identical to a training row returns that row's
	// target exactly.
	train := []forecast.FeatureRow{
		{Lag1: 0, Month: 1}, {Lag1: 10, Month: 1}, {Lag1: 20, Month: 1},
	}
	targets := []float64{5, 50, 500}
	m := models.NewKNN(testRegistry(), 1)
	require.NoError(t, m.Fit(train, targets))

	got, err := m.Predict([]forecast.FeatureRow{{Lag1: 10, Month: 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{50}, got)
}

func TestKNN_AveragesNeighbors(t *testing.T) {
	train := []forecast.FeatureRow{
		{Lag1: 0, Month: 1}, {Lag1: 1, Month: 1}, {Lag1: 100, Month: 1},
	}
	m := models.NewKNN(testRegistry(), 2)
	require.NoError(t, m.Fit(train, []float64{10, 20, 900}))

	got, err := m.Predict([]forecast.FeatureRow{{Lag1: 0.4, Month: 1}})
	require.NoError(t, err)
	assert.InDelta(t, 15.0, got[0], 1e-9)
}

func TestBaselines(t *testing.T) {
	rows := []forecast.FeatureRow{{Lag7: 4, RollingMean7: 2.5}}

	sn := models.NewSeasonalNaive()
	got, err := sn.Predict(rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, got)

	ma := models.NewMovingAverage()
	got, err = ma.Predict(rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, got)
}

// failingModel always errors out of Fit.
type failingModel struct{}

func (failingModel) Name() string                       { return "failing" }
func (failingModel) Policy() forecast.CategoricalPolicy { return forecast.PassThrough }
func (failingModel) Fit([]forecast.FeatureRow, []float64) error {
	return errors.New("synthetic failure")
}
func (failingModel) Predict([]forecast.FeatureRow) ([]float64, error) {
	return nil, errors.New("synthetic failure")
}

func TestTrainer_SkipsFailingFamily(t *testing.T) {
	train := []forecast.FeatureRow{{Lag7: 1, Quantity: 1}, {Lag7: 2, Quantity: 2}}
	test := []forecast.FeatureRow{{Lag7: 3, Quantity: 3}}

	trainer := models.NewTrainer([]forecast.TrainableModel{
		failingModel{},
		models.NewSeasonalNaive(),
	}, nil)
	results, err := trainer.TrainAndEvaluate(train, test)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "seasonal_naive", results[0].Name)
	assert.Zero(t, results[0].Metrics.MAE)
}

func TestTrainer_AllFamiliesFail(t *testing.T) {
	trainer := models.NewTrainer([]forecast.TrainableModel{failingModel{}}, nil)
	_, err := trainer.TrainAndEvaluate(
		[]forecast.FeatureRow{{Quantity: 1}},
		[]forecast.FeatureRow{{Quantity: 1}})
	assert.Error(t, err)
}

func TestTrainer_EmptySets(t *testing.T) {
	trainer := models.NewTrainer([]forecast.TrainableModel{models.NewSeasonalNaive()}, nil)
	_, err := trainer.TrainAndEvaluate(nil, []forecast.FeatureRow{{}})
	assert.Error(t, err)
}

func TestBest_PicksLowestMAE(t *testing.T) {
	results := []models.Result{
		{Name: "a", Metrics: models.Metrics{MAE: 3}},
		{Name: "b", Metrics: models.Metrics{MAE: 1}},
		{Name: "c", Metrics: models.Metrics{MAE: 2}},
	}
	best, err := models.Best(results)
	require.NoError(t, err)
	assert.Equal(t, "b", best.Name)

	_, err = models.Best(nil)
	assert.Error(t, err)
}
