/*
scheduler.go - Cron-driven forecast refresh

PURPOSE:
  Re-runs the forecasting pipeline on a cron schedule so the stored
  forecasts track the latest input files without manual triggering.
  Typical schedule: nightly after the day's transactions land.

CONFIGURATION:
  server.schedule in the config file - a standard 5-field cron
  expression. Empty disables the scheduler entirely.

SEE ALSO:
  - handlers.go: TriggerRun (manual equivalent)
  - config:      server.schedule
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/warp/demand-engine/pipeline"
)

// Scheduler re-runs the pipeline on a cron schedule.
type Scheduler struct {
	handler *Handler
	cron    *cron.Cron
	logger  *zap.Logger
}

// NewScheduler builds a scheduler from the handler's config. Returns an
// error for an invalid cron expression; a nil Scheduler (no error) when
// scheduling is disabled.
func NewScheduler(h *Handler) (*Scheduler, error) {
	spec := h.Config.Server.Schedule
	if spec == "" {
		return nil, nil
	}

	s := &Scheduler{handler: h, cron: cron.New(), logger: h.Logger}
	if _, err := s.cron.AddFunc(spec, s.refresh); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins scheduled execution.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started", zap.String("schedule", s.handler.Config.Server.Schedule))
	s.cron.Start()
}

// Stop halts the scheduler, waiting for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Minute):
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) refresh() {
	s.logger.Info("scheduled forecast refresh starting")
	p := &pipeline.Pipeline{Config: s.handler.Config, Logger: s.logger, Store: s.handler.Store}
	result, err := p.Run(context.Background())
	if err != nil {
		s.logger.Error("scheduled forecast refresh failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled forecast refresh complete",
		zap.String("run", result.Run.ID),
		zap.Int("rows", result.Run.RowCount))
}
