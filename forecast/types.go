/*
Package forecast provides the core demand forecasting engine.

PURPOSE:
  This package contains the domain-agnostic pieces of the forecasting
  pipeline: densifying sparse transactions into a complete (entity, day)
  panel, deriving causally-correct temporal features, and simulating
  demand forward day-by-day where each prediction feeds the next.

KEY CONCEPTS IN THIS FILE (types.go):
  - EntityKey: A (product, warehouse) pair, the unit of independent modeling
  - Transaction: A raw sales record, immutable after ingestion
  - PanelRow: One row of the densified (entity, day) grid
  - FeatureRow: A panel row enriched with lag/rolling/calendar features
  - ForecastRow: One predicted (entity, day) output row

DESIGN PRINCIPLES:
  1. Causality: No feature at day t may read quantity at day >= t
  2. Fit-once encoders: Categorical codes are assigned once and reused
     unchanged at forecast time (see encoder.go)
  3. Per-entity isolation: A failing entity never blocks its siblings
  4. Precision: Monetary amounts use decimal.Decimal

PIPELINE:
  transactions -> Densify -> BuildFeatures -> (model training) ->
  Simulator.Run -> []ForecastRow

SEE ALSO:
  - panel.go:    Densification
  - features.go: Feature engineering
  - simulate.go: Recursive forecast simulation
  - encoder.go:  Categorical encoding
*/
package forecast

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTITY - (product, warehouse) pair
// =============================================================================

// EntityKey identifies one independently-modeled time series.
type EntityKey struct {
	ProductID   string
	WarehouseID string
}

func (k EntityKey) String() string { return k.ProductID + "@" + k.WarehouseID }

// =============================================================================
// TRANSACTION - Raw input record
// =============================================================================

// Transaction is a single historical sales record. Transactions are
// normalized at ingestion and never mutated afterwards.
type Transaction struct {
	Day         Day
	ProductID   string
	WarehouseID string
	Quantity    float64
	Amount      decimal.Decimal
}

// Entity returns the transaction's (product, warehouse) key.
func (t Transaction) Entity() EntityKey {
	return EntityKey{ProductID: t.ProductID, WarehouseID: t.WarehouseID}
}

// =============================================================================
// PANEL ROW - Densified (entity, day) grid cell
// =============================================================================

// PanelRow is one cell of the dense panel: every observed entity appears
// exactly once per calendar day of the shared date axis. Quantity and
// Amount are zero where no transaction occurred. HolidayLabel is empty
// unless the day is a listed holiday.
type PanelRow struct {
	Entity       EntityKey
	Day          Day
	Quantity     float64
	Amount       decimal.Decimal
	HolidayLabel string
}

// IsHoliday reports whether the row's day carries a holiday label.
func (r PanelRow) IsHoliday() bool { return r.HolidayLabel != "" }

// =============================================================================
// FEATURE ROW - Model input
// =============================================================================

// FeatureRow is a panel row plus its entity's trailing history. A feature
// row only exists where lag1, lag7 and rolling_mean7 are all defined, which
// requires at least 7 prior consecutive panel days for the entity.
type FeatureRow struct {
	Entity        EntityKey
	ProductCode   int
	WarehouseCode int
	Day           Day

	// Target
	Quantity float64

	// Temporal features (all strictly causal)
	Lag1         float64
	Lag7         float64
	RollingMean7 float64

	// Calendar features
	DayOfWeek int // Sunday=0 ... Saturday=6
	Month     int
	IsWeekend int

	// Holiday features
	IsHoliday        int
	HolidayType      int
	DaysSinceHoliday float64
}

// Feature column order of the model contract. Every model receives feature
// vectors in exactly this order.
var FeatureColumns = []string{
	"product_id",
	"warehouse_id",
	"lag1",
	"lag7",
	"rolling_mean7",
	"day_of_week",
	"month",
	"is_weekend",
	"is_holiday",
	"holiday_type",
	"days_since_holiday",
}

// CategoricalColumns marks which of FeatureColumns hold categorical codes
// rather than continuous values. Models that distinguish dtypes (see
// CategoricalPolicy) treat these specially.
var CategoricalColumns = map[string]bool{
	"product_id":   true,
	"warehouse_id": true,
	"day_of_week":  true,
	"month":        true,
	"holiday_type": true,
}

// Vector returns the row's features in FeatureColumns order.
func (r FeatureRow) Vector() []float64 {
	return []float64{
		float64(r.ProductCode),
		float64(r.WarehouseCode),
		r.Lag1,
		r.Lag7,
		r.RollingMean7,
		float64(r.DayOfWeek),
		float64(r.Month),
		float64(r.IsWeekend),
		float64(r.IsHoliday),
		float64(r.HolidayType),
		r.DaysSinceHoliday,
	}
}

// =============================================================================
// FORECAST ROW - Simulator output
// =============================================================================

// ForecastRow is one predicted (entity, day) pair. Product and warehouse
// are decoded back to their original labels through the same encoder
// registry used for encoding.
type ForecastRow struct {
	Day               Day
	WarehouseID       string
	ProductID         string
	PredictedQuantity float64
}
