package models

import (
	"fmt"

	"github.com/warp/demand-engine/forecast"
)

// =============================================================================
// FACTORY - Config names to model families
// =============================================================================

// Options carries the per-family hyperparameters the config file exposes.
type Options struct {
	// KNNNeighbors is k for the knn family (default 5).
	KNNNeighbors int

	// Ridge is the regularization strength for the linear family
	// (default 1e-6).
	Ridge float64
}

// Known family names accepted by FromNames.
var FamilyNames = []string{"linear", "knn", "seasonal_naive", "moving_average"}

// FromNames builds model families from their config names. The registry is
// needed by families that one-hot expand categorical codes. An unknown
// name is an error; an empty name list yields every known family.
func FromNames(names []string, registry *forecast.Registry, opts Options) ([]forecast.TrainableModel, error) {
	if len(names) == 0 {
		names = FamilyNames
	}
	families := make([]forecast.TrainableModel, 0, len(names))
	for _, name := range names {
		switch name {
		case "linear":
			families = append(families, NewLinear(registry, opts.Ridge))
		case "knn":
			families = append(families, NewKNN(registry, opts.KNNNeighbors))
		case "seasonal_naive":
			families = append(families, NewSeasonalNaive())
		case "moving_average":
			families = append(families, NewMovingAverage())
		default:
			return nil, fmt.Errorf("unknown model family %q (known: %v)", name, FamilyNames)
		}
	}
	return families, nil
}
