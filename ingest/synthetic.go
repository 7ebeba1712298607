package ingest

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/demand-engine/forecast"
)

// =============================================================================
// SYNTHETIC DATA - Seeded demo/test dataset
// =============================================================================

// SyntheticConfig controls the generated dataset. Zero values fall back to
// a small but realistic default: 3 products x 2 warehouses over 60 days
// with a weekly demand cycle and a couple of holidays.
type SyntheticConfig struct {
	Products   int
	Warehouses int
	Days       int
	Start      forecast.Day
	Seed       int64
}

func (c SyntheticConfig) withDefaults() SyntheticConfig {
	if c.Products <= 0 {
		c.Products = 3
	}
	if c.Warehouses <= 0 {
		c.Warehouses = 2
	}
	if c.Days <= 0 {
		c.Days = 60
	}
	if c.Start.IsZero() {
		c.Start = forecast.NewDay(2024, time.January, 1)
	}
	return c
}

// Synthetic generates a seeded transaction history and holiday calendar.
// Demand follows a weekly cycle with noise, so lag7 is genuinely
// informative and model comparisons on the data are meaningful.
func Synthetic(cfg SyntheticConfig) ([]forecast.Transaction, *forecast.HolidayCalendar) {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	cal := forecast.NewHolidayCalendar()
	if cfg.Days >= 20 {
		cal.Add(cfg.Start.AddDays(14), "Founders_Day")
		cal.Add(cfg.Start.AddDays(cfg.Days-10), "Mid_Season_Sale")
	}

	var txs []forecast.Transaction
	for p := 0; p < cfg.Products; p++ {
		product := fmt.Sprintf("P%03d", p+1)
		unitPrice := decimal.NewFromFloat(4.5 + float64(p)*1.25)
		for w := 0; w < cfg.Warehouses; w++ {
			warehouse := fmt.Sprintf("W%02d", w+1)
			base := 8.0 + float64(p*3+w)
			for d := 0; d < cfg.Days; d++ {
				day := cfg.Start.AddDays(d)
				weekly := 4 * math.Sin(2*math.Pi*float64(d%7)/7)
				qty := base + weekly + rng.NormFloat64()*2
				if cal.IsHoliday(day) {
					qty *= 1.8
				}
				qty = math.Max(0, math.Round(qty))
				// Sparse input: zero-demand days are simply absent, the
				// densifier restores them.
				if qty == 0 {
					continue
				}
				txs = append(txs, forecast.Transaction{
					Day:         day,
					ProductID:   product,
					WarehouseID: warehouse,
					Quantity:    qty,
					Amount:      unitPrice.Mul(decimal.NewFromFloat(qty)),
				})
			}
		}
	}
	return txs, cal
}
