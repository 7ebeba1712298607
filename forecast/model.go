/*
model.go - External model contract

PURPOSE:
  The engine trains nothing itself. It hands feature rows to any model
  satisfying the Predict contract and consumes one non-negative scalar
  per row. Model families live in the models package; this file defines
  only the boundary.

CATEGORICAL HANDLING:
  Model families differ in how they want categorical columns presented.
  Rather than branching on concrete model types inside the pipeline,
  each family declares a CategoricalPolicy and applies it uniformly
  before prediction. The feature builder stays model-agnostic.

SEE ALSO:
  - simulate.go:       Invokes Predict step by step
  - ../models:         Concrete model families and the trainer
*/
package forecast

// Model is the prediction contract consumed by the simulator. Predict
// returns exactly one scalar per input row, in order. Implementations
// must be safe for concurrent calls; the simulator may predict for
// multiple entities in parallel.
type Model interface {
	Predict(rows []FeatureRow) ([]float64, error)
}

// TrainableModel extends Model with fitting, for the training/evaluation
// pass. X and y must have equal length.
type TrainableModel interface {
	Model
	Fit(rows []FeatureRow, targets []float64) error
	Name() string
	Policy() CategoricalPolicy
}

// =============================================================================
// CATEGORICAL POLICY - How a model family wants categorical columns
// =============================================================================

// CategoricalPolicy selects how categorical feature columns are presented
// to a model family.
type CategoricalPolicy int

const (
	// NativeCategoryAware: the model consumes integer codes and treats
	// them as categories itself.
	NativeCategoryAware CategoricalPolicy = iota

	// ManualCodeConversion: categorical codes are expanded (one-hot)
	// before the model sees them.
	ManualCodeConversion

	// PassThrough: the model ignores dtype distinctions entirely.
	PassThrough
)

func (p CategoricalPolicy) String() string {
	switch p {
	case NativeCategoryAware:
		return "native"
	case ManualCodeConversion:
		return "manual"
	case PassThrough:
		return "passthrough"
	default:
		return "unknown"
	}
}
