package forecast_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/demand-engine/forecast"
)

func TestEncoder_RoundTrip(t *testing.T) {
	enc := forecast.FitEncoder("product", []string{"banana", "apple", "cherry", "apple"})

	require.Equal(t, 3, enc.Size())
	for _, v := range enc.Values() {
		code, err := enc.Encode(v)
		require.NoError(t, err)
		decoded, err := enc.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}
}

func TestEncoder_LexicographicCodes(t *testing.T) {
	// Codes must not depend on input order.
	a := forecast.FitEncoder("product", []string{"zebra", "apple", "mango"})
	b := forecast.FitEncoder("product", []string{"mango", "zebra", "apple"})

	for _, v := range []string{"apple", "mango", "zebra"} {
		codeA, err := a.Encode(v)
		require.NoError(t, err)
		codeB, err := b.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, codeA, codeB, v)
	}

	code, _ := a.Encode("apple")
	assert.Equal(t, 0, code)
	code, _ = a.Encode("zebra")
	assert.Equal(t, 2, code)
}

func TestEncoder_UnknownCategory(t *testing.T) {
	enc := forecast.FitEncoder("warehouse", []string{"W01", "W02"})

	_, err := enc.Encode("W99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, forecast.ErrUnknownCategory))

	var unknown *forecast.UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "warehouse", unknown.Domain)
	assert.Equal(t, "W99", unknown.Value)
}

func TestEncoder_DecodeOutOfRange(t *testing.T) {
	enc := forecast.FitEncoder("holiday", []string{"Christmas"})

	_, err := enc.Decode(1)
	assert.True(t, errors.Is(err, forecast.ErrCodeOutOfRange))
	_, err = enc.Decode(-1)
	assert.True(t, errors.Is(err, forecast.ErrCodeOutOfRange))
}

func TestFitRegistry_IncludesNoHolidaySentinel(t *testing.T) {
	panel := []forecast.PanelRow{
		{Entity: forecast.EntityKey{ProductID: "A", WarehouseID: "W1"}, Day: day(2024, 1, 1)},
		{Entity: forecast.EntityKey{ProductID: "A", WarehouseID: "W1"}, Day: day(2024, 1, 2), HolidayLabel: "Christmas"},
	}
	reg := forecast.FitRegistry(panel)

	code, err := reg.EncodeHoliday("")
	require.NoError(t, err)
	decoded, err := reg.Holidays.Decode(code)
	require.NoError(t, err)
	assert.Equal(t, forecast.NoHoliday, decoded)

	_, err = reg.Holidays.Encode("Christmas")
	assert.NoError(t, err)
}
