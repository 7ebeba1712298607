package forecast

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Calendar-day time point (the panel's time axis is day-granular)
// =============================================================================

// Day is a calendar day normalized to UTC midnight. All Day values produced
// by the constructors share the same normalization, so Day is safe to use
// as a map key and to compare with ==.
type Day struct {
	t time.Time
}

// NewDay constructs a Day from calendar components.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates an arbitrary time to its UTC calendar day.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return NewDay(u.Year(), u.Month(), u.Day())
}

// ParseDay parses a "2006-01-02" formatted date.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Comparison
func (d Day) Before(other Day) bool { return d.t.Before(other.t) }
func (d Day) After(other Day) bool  { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool  { return d.t.Equal(other.t) }
func (d Day) IsZero() bool          { return d.t.IsZero() }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

// Sub returns the number of whole days from other to d.
func (d Day) Sub(other Day) int { return int(d.t.Sub(other.t).Hours() / 24) }

// Properties
func (d Day) Year() int             { return d.t.Year() }
func (d Day) Month() time.Month     { return d.t.Month() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }
func (d Day) Time() time.Time       { return d.t }

// DayOfWeek returns the day of week with Sunday = 0 ... Saturday = 6,
// matching time.Weekday's numbering.
func (d Day) DayOfWeek() int {
	return int(d.t.Weekday())
}

// IsWeekend reports whether the day is a Saturday or Sunday.
func (d Day) IsWeekend() bool {
	dow := d.DayOfWeek()
	return dow == 0 || dow == 6
}

func (d Day) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns the number of whole days from 'from' to 'to'.
func DaysBetween(from, to Day) int { return to.Sub(from) }

// =============================================================================
// HOLIDAY CALENDAR - Shared date -> label mapping (not per-entity)
// =============================================================================

// HolidayCalendar maps calendar days to holiday labels. Holidays apply
// uniformly across all entities.
type HolidayCalendar struct {
	labels map[Day]string
}

func NewHolidayCalendar() *HolidayCalendar {
	return &HolidayCalendar{labels: make(map[Day]string)}
}

// Add registers a holiday label for a day. Adding the same day twice keeps
// the last label.
func (c *HolidayCalendar) Add(day Day, label string) {
	c.labels[day] = label
}

// Label returns the holiday label for a day, if any.
func (c *HolidayCalendar) Label(day Day) (string, bool) {
	label, ok := c.labels[day]
	return label, ok
}

// IsHoliday reports whether the day is a listed holiday.
func (c *HolidayCalendar) IsHoliday(day Day) bool {
	_, ok := c.labels[day]
	return ok
}

// Labels returns the distinct holiday labels in the calendar.
func (c *HolidayCalendar) Labels() []string {
	seen := make(map[string]bool, len(c.labels))
	var out []string
	for _, label := range c.labels {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}

// Len returns the number of holiday days.
func (c *HolidayCalendar) Len() int { return len(c.labels) }
