/*
main.go - Forecast service entry point

PURPOSE:
  Starts the demand forecast HTTP service: serves stored runs, triggers
  pipeline runs on demand, and optionally re-forecasts on a cron
  schedule. Handles configuration, dependency wiring, and graceful
  shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load config
  2. Open the SQLite store
  3. Create the API handler and router
  4. Start the cron scheduler (if configured)
  5. Serve HTTP with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler and close the database

EXAMPLES:
  ./server -config config.yaml
  ./server -db ":memory:" -port 3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Cron-driven re-forecasting
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/demand-engine/api"
	"github.com/warp/demand-engine/config"
	"github.com/warp/demand-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(cfg.Database)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	handler := api.NewHandler(store, cfg, logger)
	router := api.NewRouter(handler)

	scheduler, err := api.NewScheduler(handler)
	if err != nil {
		logger.Fatal("failed to configure scheduler", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // pipeline runs are served synchronously
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zcfg.Build()
}
