package models

import (
	"github.com/warp/demand-engine/forecast"
)

// =============================================================================
// DESIGN MATRIX - CategoricalPolicy application
// =============================================================================

// encoderSizes snapshots the categorical domain widths a design matrix
// needs. Fixed sizes keep train-time and forecast-time matrices aligned.
type encoderSizes struct {
	products   int
	warehouses int
	holidays   int
}

func sizesFrom(registry *forecast.Registry) encoderSizes {
	return encoderSizes{
		products:   registry.Products.Size(),
		warehouses: registry.Warehouses.Size(),
		holidays:   registry.Holidays.Size(),
	}
}

const (
	dowWidth   = 7
	monthWidth = 12
	// continuous columns: lag1, lag7, rolling_mean7, is_weekend,
	// is_holiday, days_since_holiday
	continuousWidth = 6
)

func (s encoderSizes) width() int {
	return s.products + s.warehouses + dowWidth + monthWidth + s.holidays + continuousWidth
}

// designVector presents one feature row under the given policy.
// ManualCodeConversion expands each categorical code into a one-hot block;
// the other policies hand the raw vector through (integer codes included),
// leaving categorical interpretation to the model itself.
func designVector(row forecast.FeatureRow, policy forecast.CategoricalPolicy, sizes encoderSizes) []float64 {
	if policy != forecast.ManualCodeConversion {
		return row.Vector()
	}

	v := make([]float64, sizes.width())
	off := 0
	off = oneHot(v, off, sizes.products, row.ProductCode)
	off = oneHot(v, off, sizes.warehouses, row.WarehouseCode)
	off = oneHot(v, off, dowWidth, row.DayOfWeek)
	off = oneHot(v, off, monthWidth, row.Month-1)
	off = oneHot(v, off, sizes.holidays, row.HolidayType)
	v[off] = row.Lag1
	v[off+1] = row.Lag7
	v[off+2] = row.RollingMean7
	v[off+3] = float64(row.IsWeekend)
	v[off+4] = float64(row.IsHoliday)
	v[off+5] = row.DaysSinceHoliday
	return v
}

// oneHot sets the hot index within a block and returns the next offset.
// Codes outside the block (possible only with a mismatched registry) leave
// the block cold rather than panicking.
func oneHot(v []float64, off, width, code int) int {
	if code >= 0 && code < width {
		v[off+code] = 1
	}
	return off + width
}

func designMatrix(rows []forecast.FeatureRow, policy forecast.CategoricalPolicy, sizes encoderSizes) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = designVector(row, policy, sizes)
	}
	return out
}
