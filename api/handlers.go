/*
handlers.go - HTTP API handlers for the demand forecast service

PURPOSE:
  Exposes stored forecast runs and pipeline triggering over REST. Handles
  HTTP request/response and JSON serialization; all forecasting logic
  lives in the pipeline and forecast packages.

ENDPOINTS:
  GET  /api/health               Liveness probe
  GET  /api/runs                 List run records, newest first
  GET  /api/runs/{id}            One run record
  GET  /api/runs/{id}/forecasts  A run's forecast rows (?format=csv for
                                 the delimited output table)
  POST /api/runs                 Trigger a pipeline run on the configured
                                 input files
  POST /api/demo                 Run the pipeline on a seeded synthetic
                                 dataset (dev aid)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: invalid input
  - 404: run not found
  - 500: pipeline or storage failures

SEE ALSO:
  - server.go:    Router setup and middleware
  - scheduler.go: Cron-driven re-forecasting
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/demand-engine/config"
	"github.com/warp/demand-engine/forecast"
	"github.com/warp/demand-engine/ingest"
	"github.com/warp/demand-engine/pipeline"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  forecast.Store
	Config *config.Config
	Logger *zap.Logger
}

// NewHandler creates a handler backed by the given store and config.
func NewHandler(store forecast.Store, cfg *config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Store: store, Config: cfg, Logger: logger}
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type runResponse struct {
	ID        string             `json:"id"`
	CreatedAt string             `json:"created_at"`
	Horizon   int                `json:"horizon"`
	ModelName string             `json:"model_name"`
	Metrics   map[string]float64 `json:"metrics"`
	RowCount  int                `json:"row_count"`
}

type forecastResponse struct {
	Day               string  `json:"day"`
	WarehouseID       string  `json:"warehouse_id"`
	ProductID         string  `json:"product_id"`
	PredictedQuantity float64 `json:"predicted_quantity"`
}

func toRunResponse(run forecast.RunRecord) runResponse {
	return runResponse{
		ID:        run.ID,
		CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Horizon:   run.Horizon,
		ModelName: run.ModelName,
		Metrics:   run.Metrics,
		RowCount:  run.RowCount,
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListRuns returns all run records, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.Runs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunResponse(run))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetRun returns a single run record.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.Run(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, forecast.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, toRunResponse(run))
}

// GetRunForecasts returns a run's forecast rows as JSON, or as the
// delimited output table when ?format=csv.
func (h *Handler) GetRunForecasts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rows, err := h.Store.ForecastsForRun(r.Context(), id)
	if errors.Is(err, forecast.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="forecasts_`+id+`.csv"`)
		if err := ingest.WriteForecasts(w, rows); err != nil {
			h.Logger.Error("streaming csv failed", zap.String("run", id), zap.Error(err))
		}
		return
	}

	out := make([]forecastResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, forecastResponse{
			Day:               row.Day.String(),
			WarehouseID:       row.WarehouseID,
			ProductID:         row.ProductID,
			PredictedQuantity: row.PredictedQuantity,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// TriggerRun executes the pipeline on the configured input files.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if h.Config.Inputs.Data == "" || h.Config.Inputs.Holidays == "" {
		respondError(w, http.StatusBadRequest, errors.New("no input files configured"))
		return
	}
	p := &pipeline.Pipeline{Config: h.Config, Logger: h.Logger, Store: h.Store}
	result, err := p.Run(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRunResponse(result.Run))
}

// RunDemo executes the pipeline on a seeded synthetic dataset without
// touching the configured input files or output path.
func (h *Handler) RunDemo(w http.ResponseWriter, r *http.Request) {
	txs, calendar := ingest.Synthetic(ingest.SyntheticConfig{Seed: 42})

	demoCfg := *h.Config
	demoCfg.Output = "" // demo runs are persisted, not written to disk
	demoCfg.Inputs.Data = "synthetic"
	demoCfg.Inputs.Holidays = "synthetic"

	p := &pipeline.Pipeline{Config: &demoCfg, Logger: h.Logger, Store: h.Store}
	result, err := p.RunWith(r.Context(), txs, calendar)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRunResponse(result.Run))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
