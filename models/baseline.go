package models

import (
	"github.com/warp/demand-engine/forecast"
)

// =============================================================================
// BASELINES - Trivial models every real family must beat
// =============================================================================

// SeasonalNaive predicts the quantity observed exactly one week earlier
// (the lag7 feature). No fitting required.
type SeasonalNaive struct{}

func NewSeasonalNaive() *SeasonalNaive { return &SeasonalNaive{} }

func (m *SeasonalNaive) Name() string                      { return "seasonal_naive" }
func (m *SeasonalNaive) Policy() forecast.CategoricalPolicy { return forecast.PassThrough }

func (m *SeasonalNaive) Fit(rows []forecast.FeatureRow, targets []float64) error { return nil }

func (m *SeasonalNaive) Predict(rows []forecast.FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Lag7
	}
	return out, nil
}

// MovingAverage predicts the trailing 7-day mean (the rolling_mean7
// feature). No fitting required.
type MovingAverage struct{}

func NewMovingAverage() *MovingAverage { return &MovingAverage{} }

func (m *MovingAverage) Name() string                      { return "moving_average" }
func (m *MovingAverage) Policy() forecast.CategoricalPolicy { return forecast.PassThrough }

func (m *MovingAverage) Fit(rows []forecast.FeatureRow, targets []float64) error { return nil }

func (m *MovingAverage) Predict(rows []forecast.FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.RollingMean7
	}
	return out, nil
}
