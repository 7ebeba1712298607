package models

import (
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/warp/demand-engine/forecast"
)

// =============================================================================
// KNN - k-nearest-neighbours regressor
// =============================================================================

// KNN predicts the mean target of the k training rows nearest in Euclidean
// distance. Categorical codes are one-hot expanded (ManualCodeConversion)
// so that distance between two different codes is constant rather than
// proportional to their arbitrary numeric gap.
type KNN struct {
	k     int
	sizes encoderSizes

	mu      sync.RWMutex
	train   [][]float64
	targets []float64
}

// NewKNN builds an unfitted KNN model (k defaults to 5).
func NewKNN(registry *forecast.Registry, k int) *KNN {
	if k <= 0 {
		k = 5
	}
	return &KNN{k: k, sizes: sizesFrom(registry)}
}

func (m *KNN) Name() string                       { return "knn" }
func (m *KNN) Policy() forecast.CategoricalPolicy { return forecast.ManualCodeConversion }

func (m *KNN) Fit(rows []forecast.FeatureRow, targets []float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("knn: empty training set")
	}
	if len(rows) != len(targets) {
		return fmt.Errorf("knn: %d rows vs %d targets", len(rows), len(targets))
	}
	train := designMatrix(rows, forecast.ManualCodeConversion, m.sizes)
	copied := make([]float64, len(targets))
	copy(copied, targets)

	m.mu.Lock()
	m.train = train
	m.targets = copied
	m.mu.Unlock()
	return nil
}

func (m *KNN) Predict(rows []forecast.FeatureRow) ([]float64, error) {
	m.mu.RLock()
	train, targets := m.train, m.targets
	m.mu.RUnlock()
	if train == nil {
		return nil, fmt.Errorf("knn: model not fitted")
	}

	k := m.k
	if k > len(train) {
		k = len(train)
	}

	out := make([]float64, len(rows))
	dists := make([]float64, len(train))
	idx := make([]int, len(train))
	for i, row := range rows {
		v := designVector(row, forecast.ManualCodeConversion, m.sizes)
		for j, t := range train {
			dists[j] = floats.Distance(v, t, 2)
			idx[j] = j
		}
		sort.Slice(idx, func(a, b int) bool { return dists[idx[a]] < dists[idx[b]] })

		sum := 0.0
		for _, j := range idx[:k] {
			sum += targets[j]
		}
		out[i] = sum / float64(k)
	}
	return out, nil
}
