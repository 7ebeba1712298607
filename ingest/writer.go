package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/warp/demand-engine/forecast"
)

var forecastHeader = []string{"day", "warehouse_id", "product_id", "predicted_quantity"}

// WriteForecasts streams the forecast output table as CSV.
func WriteForecasts(w io.Writer, rows []forecast.ForecastRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(forecastHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Day.String(),
			row.WarehouseID,
			row.ProductID,
			strconv.FormatFloat(row.PredictedQuantity, 'f', 4, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteForecastsFile writes the forecast table to a file, creating parent
// directories as needed.
func WriteForecastsFile(path string, rows []forecast.ForecastRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteForecasts(f, rows); err != nil {
		return err
	}
	return f.Close()
}
