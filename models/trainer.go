/*
Package models provides the concrete model families and the trainer.

PURPOSE:
  The forecast engine only knows the Predict contract; this package
  supplies implementations of it and the single-pass train/evaluate
  harness that picks the family to forecast with.

MODEL FAMILIES:
  linear          Ridge-regularized least squares (gonum/mat)
  knn             k-nearest-neighbours regressor (gonum/floats)
  seasonal_naive  Predicts last week's quantity
  moving_average  Predicts the trailing 7-day mean

CATEGORICAL HANDLING:
  Each family declares a CategoricalPolicy; prepare.go applies it when
  building design matrices. The feature pipeline itself never branches
  on model type.

TRAINING FLOW:
  split := forecast.TemporalSplit(features, 0.2)
  trainer := models.NewTrainer(familyList, logger)
  results, _ := trainer.TrainAndEvaluate(train, test)
  best, _ := models.Best(results)

SEE ALSO:
  - factory.go:          Builds family lists from config names
  - ../forecast/model.go: The contract this package implements
*/
package models

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/warp/demand-engine/forecast"
)

// Result pairs a fitted model with its held-out evaluation.
type Result struct {
	Name    string
	Metrics Metrics
	Model   forecast.TrainableModel
}

// Trainer fits and evaluates a set of model families on the same temporal
// split. A family that fails to train is logged and skipped; it never
// aborts the others.
type Trainer struct {
	models []forecast.TrainableModel
	logger *zap.Logger
}

func NewTrainer(families []forecast.TrainableModel, logger *zap.Logger) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{models: families, logger: logger}
}

// TrainAndEvaluate fits every family on the training rows and scores it on
// the test rows. Returns an error only when no family could be evaluated.
func (t *Trainer) TrainAndEvaluate(train, test []forecast.FeatureRow) ([]Result, error) {
	if len(train) == 0 || len(test) == 0 {
		return nil, fmt.Errorf("trainer: empty train (%d) or test (%d) set", len(train), len(test))
	}
	yTrain := forecast.Targets(train)
	yTest := forecast.Targets(test)

	var results []Result
	for _, m := range t.models {
		t.logger.Info("training model", zap.String("model", m.Name()),
			zap.String("categorical_policy", m.Policy().String()))

		if err := m.Fit(train, yTrain); err != nil {
			t.logger.Error("training failed", zap.String("model", m.Name()), zap.Error(err))
			continue
		}
		preds, err := m.Predict(test)
		if err != nil {
			t.logger.Error("evaluation predict failed", zap.String("model", m.Name()), zap.Error(err))
			continue
		}
		metrics, err := Evaluate(yTest, preds)
		if err != nil {
			t.logger.Error("evaluation failed", zap.String("model", m.Name()), zap.Error(err))
			continue
		}
		t.logger.Info("model evaluated", zap.String("model", m.Name()),
			zap.Float64("mae", metrics.MAE), zap.Float64("mse", metrics.MSE),
			zap.Float64("r2", metrics.R2))
		results = append(results, Result{Name: m.Name(), Metrics: metrics, Model: m})
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("trainer: every model family failed")
	}
	return results, nil
}

// Best returns the result with the lowest mean absolute error.
func Best(results []Result) (Result, error) {
	if len(results) == 0 {
		return Result{}, fmt.Errorf("no results to choose from")
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Metrics.MAE < best.Metrics.MAE {
			best = r
		}
	}
	return best, nil
}
