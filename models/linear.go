package models

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/warp/demand-engine/forecast"
)

// =============================================================================
// LINEAR - Ridge-regularized least squares
// =============================================================================

// Linear is an ordinary-least-squares regressor with a small ridge term for
// numerical stability. Categorical codes carry no ordinal meaning, so the
// family uses ManualCodeConversion: every categorical column is one-hot
// expanded before fitting.
type Linear struct {
	sizes encoderSizes
	ridge float64

	mu      sync.RWMutex
	weights []float64 // includes trailing bias term
}

// NewLinear builds an unfitted linear model bound to the registry's
// categorical domain sizes.
func NewLinear(registry *forecast.Registry, ridge float64) *Linear {
	if ridge <= 0 {
		ridge = 1e-6
	}
	return &Linear{sizes: sizesFrom(registry), ridge: ridge}
}

func (m *Linear) Name() string                       { return "linear" }
func (m *Linear) Policy() forecast.CategoricalPolicy { return forecast.ManualCodeConversion }

// Fit solves the ridge problem min ||Xw - y||^2 + ridge*||w||^2 via the
// augmented least-squares system [X; sqrt(ridge)*I] w = [y; 0], which is
// always full rank and solvable by QR.
func (m *Linear) Fit(rows []forecast.FeatureRow, targets []float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("linear: empty training set")
	}
	if len(rows) != len(targets) {
		return fmt.Errorf("linear: %d rows vs %d targets", len(rows), len(targets))
	}

	d := m.sizes.width() + 1 // trailing bias column
	n := len(rows)
	X := mat.NewDense(n+d, d, nil)
	y := mat.NewVecDense(n+d, nil)
	for i, row := range rows {
		v := designVector(row, forecast.ManualCodeConversion, m.sizes)
		for j, x := range v {
			X.Set(i, j, x)
		}
		X.Set(i, d-1, 1)
		y.SetVec(i, targets[i])
	}
	sqrtRidge := math.Sqrt(m.ridge)
	for j := 0; j < d; j++ {
		X.Set(n+j, j, sqrtRidge)
	}

	var w mat.VecDense
	if err := w.SolveVec(X, y); err != nil {
		return fmt.Errorf("linear: solve failed: %w", err)
	}

	weights := make([]float64, d)
	for j := 0; j < d; j++ {
		weights[j] = w.AtVec(j)
	}
	m.mu.Lock()
	m.weights = weights
	m.mu.Unlock()
	return nil
}

func (m *Linear) Predict(rows []forecast.FeatureRow) ([]float64, error) {
	m.mu.RLock()
	weights := m.weights
	m.mu.RUnlock()
	if weights == nil {
		return nil, fmt.Errorf("linear: model not fitted")
	}

	out := make([]float64, len(rows))
	for i, row := range rows {
		v := designVector(row, forecast.ManualCodeConversion, m.sizes)
		sum := weights[len(weights)-1] // bias
		for j, x := range v {
			sum += weights[j] * x
		}
		out[i] = sum
	}
	return out, nil
}
