/*
main.go - Batch forecasting CLI

PURPOSE:
  Runs the full pipeline once: load transactions and holidays, build
  features, train and pick a model, simulate the horizon, write the
  forecast CSV, and (when a database is configured) persist the run.

FLAGS:
  -data      Path to the transactions CSV (required)
  -holidays  Path to the holidays CSV (required)
  -output    Forecast CSV output path (default from config)
  -config    Optional YAML config file
  -horizon   Days to forecast (overrides config)
  -db        SQLite path for run persistence ("" disables)

EXIT CODES:
  0 on success; 1 when input loading, training, or output writing fails.
  Per-entity simulation failures are logged, not fatal.

SEE ALSO:
  - cmd/server: Long-running HTTP service
  - pipeline:   The orchestrated stages
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/warp/demand-engine/config"
	"github.com/warp/demand-engine/forecast"
	"github.com/warp/demand-engine/pipeline"
	"github.com/warp/demand-engine/store/sqlite"
)

func main() {
	dataPath := flag.String("data", "", "path to transactions CSV")
	holidaysPath := flag.String("holidays", "", "path to holidays CSV")
	outputPath := flag.String("output", "", "forecast CSV output path")
	configPath := flag.String("config", "", "optional YAML config file")
	horizon := flag.Int("horizon", 0, "days to forecast (overrides config)")
	dbPath := flag.String("db", "", "SQLite database for run persistence (empty disables)")
	flag.Parse()

	if *dataPath == "" || *holidaysPath == "" {
		fmt.Fprintln(os.Stderr, "usage: forecast -data transactions.csv -holidays holidays.csv [-output out.csv]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg.Inputs.Data = *dataPath
	cfg.Inputs.Holidays = *holidaysPath
	if *outputPath != "" {
		cfg.Output = *outputPath
	}
	if *horizon > 0 {
		cfg.Horizon = *horizon
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var store forecast.Store
	if *dbPath != "" {
		store, err = sqlite.New(*dbPath)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer store.Close()
	}

	p := &pipeline.Pipeline{Config: cfg, Logger: logger, Store: store}
	result, err := p.Run(context.Background())
	if err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("forecast complete",
		zap.String("model", result.Run.ModelName),
		zap.Int("rows", result.Run.RowCount),
		zap.String("output", cfg.Output))
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zcfg.Build()
}
