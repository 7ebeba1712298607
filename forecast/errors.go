/*
errors.go - Centralized error types for the forecasting engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  Callers match with errors.Is / errors.As; structured errors carry the
  context needed for per-entity failure logging.

ERROR CATEGORIES:
  1. Encoding errors   - Unknown categories, out-of-range codes
  2. History errors    - Entities with no usable feature rows
  3. Prediction errors - Invalid model output (NaN, wrong row count)
  4. Input errors      - Empty or unusable pipeline input

POLICY:
  Encoding, history and prediction errors are per-entity: the simulator
  logs them and moves on to the next entity. Input errors are fatal to
  the run.

SEE ALSO:
  - encoder.go:  Raises ErrUnknownCategory / ErrCodeOutOfRange
  - simulate.go: Raises ErrInsufficientHistory / ErrModelPrediction
*/
package forecast

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownCategory is returned when encoding a value that was not
	// present in the encoder's fitted domain. There is no implicit
	// "unknown" bucket.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrCodeOutOfRange is returned when decoding a code >= the fitted
	// domain size.
	ErrCodeOutOfRange = errors.New("code out of range")

	// ErrInsufficientHistory is returned when an entity has zero eligible
	// feature rows and therefore no usable rolling state.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrModelPrediction is returned when the external model fails or
	// produces invalid output (NaN, wrong row count).
	ErrModelPrediction = errors.New("model prediction failed")

	// ErrEmptyInput is returned when the pipeline receives no transactions.
	ErrEmptyInput = errors.New("no input transactions")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownCategoryError identifies the domain and value that failed to encode.
type UnknownCategoryError struct {
	Domain string // "product", "warehouse", "holiday"
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s category %q", e.Domain, e.Value)
}

func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }

// OutOfRangeError identifies the code that failed to decode.
type OutOfRangeError struct {
	Domain string
	Code   int
	Size   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s code %d out of range (domain size %d)", e.Domain, e.Code, e.Size)
}

func (e *OutOfRangeError) Unwrap() error { return ErrCodeOutOfRange }

// InsufficientHistoryError reports an entity that cannot be forecast.
type InsufficientHistoryError struct {
	Entity EntityKey
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("entity %s has no eligible feature rows", e.Entity)
}

func (e *InsufficientHistoryError) Unwrap() error { return ErrInsufficientHistory }

// PredictionError reports an invalid model response for an entity step.
type PredictionError struct {
	Entity EntityKey
	Day    Day
	Reason string
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed for %s at %s: %s", e.Entity, e.Day, e.Reason)
}

func (e *PredictionError) Unwrap() error { return ErrModelPrediction }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsEntityError reports whether the error is a per-entity failure that the
// simulator should log and skip rather than abort the whole run.
func IsEntityError(err error) bool {
	return errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrInsufficientHistory) ||
		errors.Is(err, ErrModelPrediction)
}
