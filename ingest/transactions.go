/*
Package ingest provides the I/O layer around the forecast engine.

PURPOSE:
  Loads the transaction and holiday tables from delimited text, writes
  the forecast output table, and generates synthetic datasets for tests
  and demos. All parsing failures carry the offending row number.

FILE FORMATS:
  transactions: day,product_id,warehouse_id,quantity,amount
  holidays:     day,holiday_label
  forecasts:    day,warehouse_id,product_id,predicted_quantity
  (days formatted 2006-01-02)

SEE ALSO:
  - ../forecast: The engine consuming/producing these tables
*/
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/demand-engine/forecast"
)

var transactionHeader = []string{"day", "product_id", "warehouse_id", "quantity", "amount"}

// LoadTransactions reads the transaction table from a CSV file.
func LoadTransactions(path string) ([]forecast.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transactions file %s: %w", path, err)
	}
	defer f.Close()
	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("transactions file %s: %w", path, err)
	}
	return txs, nil
}

// ReadTransactions parses the transaction table from a reader.
func ReadTransactions(r io.Reader) ([]forecast.Transaction, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("need a header and at least one data row")
	}
	if err := validateHeader(records[0], transactionHeader); err != nil {
		return nil, err
	}

	txs := make([]forecast.Transaction, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		if len(record) != len(transactionHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", line, len(transactionHeader), len(record))
		}
		day, err := forecast.ParseDay(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		quantity, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity %q: %w", line, record[3], err)
		}
		amount, err := decimal.NewFromString(record[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid amount %q: %w", line, record[4], err)
		}
		txs = append(txs, forecast.Transaction{
			Day:         day,
			ProductID:   strings.TrimSpace(record[1]),
			WarehouseID: strings.TrimSpace(record[2]),
			Quantity:    quantity,
			Amount:      amount,
		})
	}
	return txs, nil
}

func validateHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("header mismatch: expected %v, got %v", want, got)
	}
	for i := range want {
		if strings.TrimSpace(strings.ToLower(got[i])) != want[i] {
			return fmt.Errorf("header mismatch: expected %v, got %v", want, got)
		}
	}
	return nil
}
