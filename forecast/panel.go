/*
panel.go - Panel densification

PURPOSE:
  Expands raw sparse transactions into a complete (entity, calendar-day)
  grid. Every entity observed anywhere in the raw data appears exactly
  once per day of the SHARED date axis [min(day), max(day)] across all
  entities - no duplicates, no gaps. Days without activity get explicit
  zero quantity and amount.

ALGORITHM:
  1. Collect the distinct (product, warehouse) pairs
  2. Compute the global min/max day
  3. Form the Cartesian product pairs x days
  4. Left-join transactions by (entity, day), zero-filling misses;
     multiple transactions on one (entity, day) are summed
  5. Left-join holiday labels by day only (holidays are global)

ORDERING:
  The output is sorted by entity (product, then warehouse), then day.
  Downstream lag computation depends on this ordering.

SEE ALSO:
  - features.go: Consumes the dense panel
*/
package forecast

import (
	"sort"

	"github.com/shopspring/decimal"
)

type panelKey struct {
	entity EntityKey
	day    Day
}

// Densify expands raw transactions into the dense panel. The calendar may
// be nil when no holiday table is available. Returns ErrEmptyInput when
// there are no transactions to span a date axis.
func Densify(txs []Transaction, calendar *HolidayCalendar) ([]PanelRow, error) {
	if len(txs) == 0 {
		return nil, ErrEmptyInput
	}

	// Distinct entities and the shared date axis.
	entities := make(map[EntityKey]bool)
	minDay, maxDay := txs[0].Day, txs[0].Day
	for _, tx := range txs {
		entities[tx.Entity()] = true
		if tx.Day.Before(minDay) {
			minDay = tx.Day
		}
		if tx.Day.After(maxDay) {
			maxDay = tx.Day
		}
	}

	keys := make([]EntityKey, 0, len(entities))
	for k := range entities {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		return keys[i].WarehouseID < keys[j].WarehouseID
	})

	// Aggregate observed activity; duplicate (entity, day) records sum.
	type activity struct {
		quantity float64
		amount   decimal.Decimal
	}
	observed := make(map[panelKey]activity, len(txs))
	for _, tx := range txs {
		k := panelKey{entity: tx.Entity(), day: tx.Day}
		a := observed[k]
		a.quantity += tx.Quantity
		a.amount = a.amount.Add(tx.Amount)
		observed[k] = a
	}

	days := DaysBetween(minDay, maxDay) + 1
	panel := make([]PanelRow, 0, len(keys)*days)
	for _, entity := range keys {
		for day := minDay; !day.After(maxDay); day = day.AddDays(1) {
			row := PanelRow{Entity: entity, Day: day}
			if a, ok := observed[panelKey{entity: entity, day: day}]; ok {
				row.Quantity = a.quantity
				row.Amount = a.amount
			}
			if calendar != nil {
				if label, ok := calendar.Label(day); ok {
					row.HolidayLabel = label
				}
			}
			panel = append(panel, row)
		}
	}
	return panel, nil
}
