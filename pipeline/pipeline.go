/*
Package pipeline orchestrates the end-to-end forecasting run.

PURPOSE:
  Wires the stages together in their only valid order:

    load -> densify -> fit encoders -> build features -> temporal split
         -> train & evaluate -> pick best -> simulate horizon
         -> write CSV -> persist run

  Each stage fully consumes its input before the next starts; the run is
  a single-threaded batch computation (the simulator parallelizes across
  entities internally).

FAILURE SEMANTICS:
  Input and training failures abort the run - no meaningful forecast can
  proceed without them. Per-entity simulation failures are logged inside
  the simulator and never abort the run.

SEE ALSO:
  - ../cmd/forecast: Batch CLI entry point
  - ../api:          Serves runs over HTTP
*/
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/demand-engine/config"
	"github.com/warp/demand-engine/forecast"
	"github.com/warp/demand-engine/ingest"
	"github.com/warp/demand-engine/models"
)

// Pipeline runs the full forecasting flow. Store is optional; when set,
// every completed run is persisted.
type Pipeline struct {
	Config *config.Config
	Logger *zap.Logger
	Store  forecast.Store
}

// Result is the outcome of one pipeline run.
type Result struct {
	Run       forecast.RunRecord
	Forecasts []forecast.ForecastRow
	Training  []models.Result
}

// Run executes the pipeline using the configured input paths.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	logger := p.logger()

	logger.Info("loading input",
		zap.String("data", p.Config.Inputs.Data),
		zap.String("holidays", p.Config.Inputs.Holidays))
	txs, err := ingest.LoadTransactions(p.Config.Inputs.Data)
	if err != nil {
		return nil, err
	}
	calendar, err := ingest.LoadHolidays(p.Config.Inputs.Holidays)
	if err != nil {
		return nil, err
	}
	return p.RunWith(ctx, txs, calendar)
}

// RunWith executes the pipeline on already-loaded data. Used by tests and
// the demo endpoint.
func (p *Pipeline) RunWith(ctx context.Context, txs []forecast.Transaction, calendar *forecast.HolidayCalendar) (*Result, error) {
	logger := p.logger()
	cfg := p.Config

	panel, err := forecast.Densify(txs, calendar)
	if err != nil {
		return nil, fmt.Errorf("densify: %w", err)
	}
	logger.Info("panel densified",
		zap.Int("transactions", len(txs)),
		zap.Int("panel_rows", len(panel)))

	registry := forecast.FitRegistry(panel)
	features, err := forecast.BuildFeatures(panel, registry)
	if err != nil {
		return nil, fmt.Errorf("feature build: %w", err)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("feature build: no entity has enough history to model")
	}
	logger.Info("features built", zap.Int("feature_rows", len(features)))

	train, test := forecast.TemporalSplit(features, cfg.TestFraction)

	families, err := models.FromNames(cfg.Models.Enabled, registry, models.Options{
		KNNNeighbors: cfg.Models.KNNNeighbors,
		Ridge:        cfg.Models.Ridge,
	})
	if err != nil {
		return nil, err
	}
	trainer := models.NewTrainer(families, logger)
	results, err := trainer.TrainAndEvaluate(train, test)
	if err != nil {
		return nil, err
	}
	best, err := models.Best(results)
	if err != nil {
		return nil, err
	}
	logger.Info("selected model", zap.String("model", best.Name),
		zap.Float64("mae", best.Metrics.MAE))

	lastDay := features[0].Day
	for _, row := range features {
		if row.Day.After(lastDay) {
			lastDay = row.Day
		}
	}

	sim := &forecast.Simulator{
		Model:    best.Model,
		Registry: registry,
		Calendar: calendar,
		Horizon:  cfg.Horizon,
		Logger:   logger,
	}
	forecasts, err := sim.Run(features, lastDay)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	logger.Info("simulation complete", zap.Int("forecast_rows", len(forecasts)))

	if cfg.Output != "" {
		if err := ingest.WriteForecastsFile(cfg.Output, forecasts); err != nil {
			return nil, err
		}
		logger.Info("forecasts written", zap.String("path", cfg.Output))
	}

	run := forecast.RunRecord{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		DataPath:     cfg.Inputs.Data,
		HolidaysPath: cfg.Inputs.Holidays,
		Horizon:      cfg.Horizon,
		ModelName:    best.Name,
		Metrics:      best.Metrics.Map(),
		RowCount:     len(forecasts),
	}
	if p.Store != nil {
		if err := p.Store.SaveRun(ctx, run, forecasts); err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
	}

	return &Result{Run: run, Forecasts: forecasts, Training: results}, nil
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
