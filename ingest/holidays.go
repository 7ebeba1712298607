package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/warp/demand-engine/forecast"
)

var holidayHeader = []string{"day", "holiday_label"}

// LoadHolidays reads the holiday table from a CSV file.
func LoadHolidays(path string) (*forecast.HolidayCalendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holidays file %s: %w", path, err)
	}
	defer f.Close()
	cal, err := ReadHolidays(f)
	if err != nil {
		return nil, fmt.Errorf("holidays file %s: %w", path, err)
	}
	return cal, nil
}

// ReadHolidays parses the holiday table from a reader. An empty table
// (header only) is valid: not every dataset spans a holiday.
func ReadHolidays(r io.Reader) (*forecast.HolidayCalendar, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	if err := validateHeader(records[0], holidayHeader); err != nil {
		return nil, err
	}

	cal := forecast.NewHolidayCalendar()
	for i, record := range records[1:] {
		line := i + 2
		if len(record) != len(holidayHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", line, len(holidayHeader), len(record))
		}
		day, err := forecast.ParseDay(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		label := strings.TrimSpace(record[1])
		if label == "" {
			return nil, fmt.Errorf("row %d: empty holiday label", line)
		}
		cal.Add(day, label)
	}
	return cal, nil
}
