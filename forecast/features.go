/*
features.go - Temporal feature engineering

PURPOSE:
  Derives lag, rolling, calendar and holiday features per entity time
  series from the dense panel, with strict temporal causality: no feature
  at day t reads quantity at day t or later.

FEATURES:
  lag1, lag7          quantity 1 and 7 days prior
  rolling_mean7       mean of the <=7 days strictly preceding t
                      (minimum period 1; never includes day t)
  day_of_week         Sunday=0 ... Saturday=6
  month               1..12
  is_weekend          day_of_week in {0, 6}
  is_holiday          1 iff the day carries a holiday label
  holiday_type        encoded label, No_Holiday sentinel otherwise
  days_since_holiday  whole days since the entity's most recent holiday
                      on or before t (0 on a holiday, 0 when none yet)

WARM-UP EXCLUSION:
  A feature row is retained only where lag1, lag7 and rolling_mean7 are
  all defined. This discards exactly the first 7 calendar days of each
  entity's panel coverage - excluded, never imputed.

SEE ALSO:
  - panel.go:    Produces the (sorted) input panel
  - encoder.go:  Provides the categorical codes
  - simulate.go: Applies the same feature definitions forward in time
*/
package forecast

import (
	"fmt"
	"sort"
)

const lagWindow = 7

// BuildFeatures computes feature rows from the dense panel using the fitted
// registry. The panel is expected in Densify's (entity, day) order; it is
// re-sorted defensively since lag computation depends on it.
func BuildFeatures(panel []PanelRow, registry *Registry) ([]FeatureRow, error) {
	sorted := make([]PanelRow, len(panel))
	copy(sorted, panel)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Entity.ProductID != b.Entity.ProductID {
			return a.Entity.ProductID < b.Entity.ProductID
		}
		if a.Entity.WarehouseID != b.Entity.WarehouseID {
			return a.Entity.WarehouseID < b.Entity.WarehouseID
		}
		return a.Day.Before(b.Day)
	})

	var features []FeatureRow
	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].Entity == sorted[start].Entity {
			end++
		}
		rows, err := buildEntityFeatures(sorted[start:end], registry)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", sorted[start].Entity, err)
		}
		features = append(features, rows...)
		start = end
	}
	return features, nil
}

// buildEntityFeatures walks one entity's chronological series.
func buildEntityFeatures(series []PanelRow, registry *Registry) ([]FeatureRow, error) {
	entity := series[0].Entity
	productCode, err := registry.Products.Encode(entity.ProductID)
	if err != nil {
		return nil, err
	}
	warehouseCode, err := registry.Warehouses.Encode(entity.WarehouseID)
	if err != nil {
		return nil, err
	}

	var (
		rows        []FeatureRow
		lastHoliday Day
		hasHoliday  bool
	)
	for i, row := range series {
		if row.IsHoliday() {
			lastHoliday = row.Day
			hasHoliday = true
		}

		// Warm-up: lag7 undefined until 7 prior days exist.
		if i < lagWindow {
			continue
		}

		holidayType, err := registry.EncodeHoliday(row.HolidayLabel)
		if err != nil {
			return nil, err
		}

		isHoliday := 0
		if row.IsHoliday() {
			isHoliday = 1
		}
		isWeekend := 0
		if row.Day.IsWeekend() {
			isWeekend = 1
		}
		daysSince := 0.0
		if hasHoliday {
			daysSince = float64(row.Day.Sub(lastHoliday))
		}

		rows = append(rows, FeatureRow{
			Entity:           entity,
			ProductCode:      productCode,
			WarehouseCode:    warehouseCode,
			Day:              row.Day,
			Quantity:         row.Quantity,
			Lag1:             series[i-1].Quantity,
			Lag7:             series[i-lagWindow].Quantity,
			RollingMean7:     trailingMean(series, i),
			DayOfWeek:        row.Day.DayOfWeek(),
			Month:            int(row.Day.Month()),
			IsWeekend:        isWeekend,
			IsHoliday:        isHoliday,
			HolidayType:      holidayType,
			DaysSinceHoliday: daysSince,
		})
	}
	return rows, nil
}

// trailingMean averages the up-to-7 quantities strictly preceding index i.
func trailingMean(series []PanelRow, i int) float64 {
	from := i - lagWindow
	if from < 0 {
		from = 0
	}
	window := series[from:i]
	sum := 0.0
	for _, r := range window {
		sum += r.Quantity
	}
	return sum / float64(len(window))
}

// =============================================================================
// TEMPORAL SPLIT - Chronological train/test partition
// =============================================================================

// TemporalSplit partitions feature rows chronologically: the earliest
// (1-testFraction) of rows become the training set, the remainder the test
// set. Rows are never shuffled; shuffling a time series would leak future
// information into training.
func TemporalSplit(rows []FeatureRow, testFraction float64) (train, test []FeatureRow) {
	if !(testFraction > 0 && testFraction < 1) { // also rejects NaN
		testFraction = 0.2
	}
	sorted := make([]FeatureRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Day.Before(sorted[j].Day)
	})
	cut := int(float64(len(sorted)) * (1 - testFraction))
	return sorted[:cut], sorted[cut:]
}

// Targets extracts the quantity column from feature rows.
func Targets(rows []FeatureRow) []float64 {
	y := make([]float64, len(rows))
	for i, r := range rows {
		y[i] = r.Quantity
	}
	return y
}
