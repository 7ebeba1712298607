/*
encoder.go - Categorical encoder registry

PURPOSE:
  Bidirectional string <-> integer-code mappings for the categorical
  domains (product, warehouse, holiday label). Encoders are fitted
  exactly once, on the training panel, and the identical fitted instance
  is reused at forecast time. Refitting at inference time would silently
  remap codes and corrupt predictions, so the API makes refitting
  impossible: FitEncoder is the only constructor and there is no Fit
  method on a built encoder.

CODE ASSIGNMENT:
  Codes are contiguous integers starting at 0, assigned in lexicographic
  order of the distinct fitted values. Lexicographic order is chosen over
  first-seen order so the mapping is reproducible regardless of input
  row order.

CONCURRENCY:
  A fitted Encoder/Registry is immutable and safe for concurrent reads.

SEE ALSO:
  - errors.go:   ErrUnknownCategory, ErrCodeOutOfRange
  - features.go: Encodes the training panel
  - simulate.go: Encodes (and decodes) at forecast time
*/
package forecast

import "sort"

// NoHoliday is the sentinel holiday label encoded for non-holiday days.
// It is force-included in the holiday encoder's domain at fit time so that
// training and inference share one code space.
const NoHoliday = "No_Holiday"

// =============================================================================
// ENCODER - One categorical domain
// =============================================================================

// Encoder maps the distinct values of one categorical domain to contiguous
// integer codes. Fitted once at construction, immutable afterwards.
type Encoder struct {
	domain string
	codes  map[string]int
	values []string
}

// FitEncoder builds an encoder over the distinct values in the input.
// The domain name is used only in error messages.
func FitEncoder(domain string, values []string) *Encoder {
	seen := make(map[string]bool, len(values))
	distinct := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	sort.Strings(distinct)

	codes := make(map[string]int, len(distinct))
	for i, v := range distinct {
		codes[v] = i
	}
	return &Encoder{domain: domain, codes: codes, values: distinct}
}

// Encode returns the code for a fitted value.
func (e *Encoder) Encode(v string) (int, error) {
	code, ok := e.codes[v]
	if !ok {
		return 0, &UnknownCategoryError{Domain: e.domain, Value: v}
	}
	return code, nil
}

// Decode returns the value for a code.
func (e *Encoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.values) {
		return "", &OutOfRangeError{Domain: e.domain, Code: code, Size: len(e.values)}
	}
	return e.values[code], nil
}

// Size returns the number of fitted values.
func (e *Encoder) Size() int { return len(e.values) }

// Values returns the fitted domain in code order.
func (e *Encoder) Values() []string {
	out := make([]string, len(e.values))
	copy(out, e.values)
	return out
}

// =============================================================================
// REGISTRY - All categorical domains of the pipeline
// =============================================================================

// Registry bundles the three encoders the pipeline needs. It is fitted from
// the training panel and then shared read-only between feature building and
// forecast simulation.
type Registry struct {
	Products   *Encoder
	Warehouses *Encoder
	Holidays   *Encoder
}

// FitRegistry fits all encoders from the densified training panel. The
// holiday domain always includes the NoHoliday sentinel.
func FitRegistry(panel []PanelRow) *Registry {
	products := make([]string, 0, len(panel))
	warehouses := make([]string, 0, len(panel))
	holidays := []string{NoHoliday}
	for _, row := range panel {
		products = append(products, row.Entity.ProductID)
		warehouses = append(warehouses, row.Entity.WarehouseID)
		if row.HolidayLabel != "" {
			holidays = append(holidays, row.HolidayLabel)
		}
	}
	return &Registry{
		Products:   FitEncoder("product", products),
		Warehouses: FitEncoder("warehouse", warehouses),
		Holidays:   FitEncoder("holiday", holidays),
	}
}

// EncodeHoliday encodes a holiday label, substituting the NoHoliday
// sentinel for empty labels.
func (r *Registry) EncodeHoliday(label string) (int, error) {
	if label == "" {
		label = NoHoliday
	}
	return r.Holidays.Encode(label)
}
