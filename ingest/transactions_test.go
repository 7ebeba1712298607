package ingest_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/demand-engine/forecast"
	"github.com/warp/demand-engine/ingest"
)

func TestReadTransactions(t *testing.T) {
	in := strings.Join([]string{
		"day,product_id,warehouse_id,quantity,amount",
		"2024-03-01,P001,W01,5,22.50",
		"2024-03-02,P002,W02,1.5,6.75",
	}, "\n")

	txs, err := ingest.ReadTransactions(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, forecast.NewDay(2024, time.March, 1), txs[0].Day)
	assert.Equal(t, "P001", txs[0].ProductID)
	assert.Equal(t, "W01", txs[0].WarehouseID)
	assert.Equal(t, 5.0, txs[0].Quantity)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromFloat(22.50)))
	assert.Equal(t, 1.5, txs[1].Quantity)
}

func TestReadTransactions_BadRowsCarryLineNumbers(t *testing.T) {
	cases := []struct {
		name string
		row  string
		want string
	}{
		{"bad day", "01/03/2024,P001,W01,5,1.0", "row 2"},
		{"bad quantity", "2024-03-01,P001,W01,five,1.0", "row 2"},
		{"bad amount", "2024-03-01,P001,W01,5,abc", "row 2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := "day,product_id,warehouse_id,quantity,amount\n" + tc.row
			_, err := ingest.ReadTransactions(strings.NewReader(in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestReadTransactions_HeaderValidation(t *testing.T) {
	_, err := ingest.ReadTransactions(strings.NewReader("a,b,c,d,e\n2024-03-01,P,W,1,1"))
	assert.Error(t, err)

	// Case and surrounding whitespace are tolerated.
	in := "Day, Product_ID ,WAREHOUSE_ID,Quantity,Amount\n2024-03-01,P,W,1,1"
	txs, err := ingest.ReadTransactions(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestReadTransactions_EmptyTable(t *testing.T) {
	_, err := ingest.ReadTransactions(strings.NewReader("day,product_id,warehouse_id,quantity,amount\n"))
	assert.Error(t, err)
}

func TestReadHolidays(t *testing.T) {
	in := strings.Join([]string{
		"day,holiday_label",
		"2024-12-25,Christmas",
		"2024-01-01,New_Year",
	}, "\n")

	cal, err := ingest.ReadHolidays(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, cal.Len())
	label, ok := cal.Label(forecast.NewDay(2024, time.December, 25))
	require.True(t, ok)
	assert.Equal(t, "Christmas", label)
}

func TestReadHolidays_HeaderOnlyIsValid(t *testing.T) {
	cal, err := ingest.ReadHolidays(strings.NewReader("day,holiday_label\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cal.Len())
}

func TestReadHolidays_EmptyLabelRejected(t *testing.T) {
	_, err := ingest.ReadHolidays(strings.NewReader("day,holiday_label\n2024-12-25,  "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}
