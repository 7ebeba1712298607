package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics are the held-out evaluation scores for one model family.
type Metrics struct {
	MAE float64 `json:"mae"`
	MSE float64 `json:"mse"`
	R2  float64 `json:"r2"`
}

// Evaluate scores predictions against actuals.
func Evaluate(actual, predicted []float64) (Metrics, error) {
	if len(actual) != len(predicted) {
		return Metrics{}, fmt.Errorf("length mismatch: %d actual vs %d predicted", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return Metrics{}, fmt.Errorf("empty evaluation set")
	}

	resid := make([]float64, len(predicted))
	copy(resid, predicted)
	floats.Sub(resid, actual)

	var mae, mse float64
	for _, r := range resid {
		mae += math.Abs(r)
		mse += r * r
	}
	n := float64(len(resid))
	mae /= n
	mse /= n

	// R^2 = 1 - SS_res / SS_tot. A constant actual series has no variance
	// to explain; report 0 rather than dividing by zero.
	mean := stat.Mean(actual, nil)
	var ssTot float64
	for _, a := range actual {
		ssTot += (a - mean) * (a - mean)
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - (mse*n)/ssTot
	}
	return Metrics{MAE: mae, MSE: mse, R2: r2}, nil
}

func (m Metrics) String() string {
	return fmt.Sprintf("mae=%.4f mse=%.4f r2=%.4f", m.MAE, m.MSE, m.R2)
}

// Map returns the metrics as a name->value map for persistence.
func (m Metrics) Map() map[string]float64 {
	return map[string]float64{"mae": m.MAE, "mse": m.MSE, "r2": m.R2}
}
