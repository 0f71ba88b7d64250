package scenario

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupInterpolation(t *testing.T) {
	table := NewPriceTable("electricity_prices", map[int]float64{2025: 0.20, 2035: 0.10})

	cases := []struct {
		year int
		want float64
	}{
		{2025, 0.20},
		{2030, 0.15}, // linear midpoint
		{2035, 0.10},
		{2040, 0.10}, // clamp beyond last projection
		{2020, 0.20}, // clamp before first projection
		{2027, 0.18},
	}
	for _, tc := range cases {
		got, err := table.Lookup(tc.year)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, got, 1e-9, "year %d", tc.year)
	}
}

func TestLookupExactYears(t *testing.T) {
	table := NewPriceTable("diesel_prices", map[int]float64{2025: 1.70, 2026: 1.75, 2030: 2.00})
	got, err := table.Lookup(2026)
	require.NoError(t, err)
	assert.InDelta(t, 1.75, got, 1e-9)
}

func TestLookupEmptyTable(t *testing.T) {
	var table PriceTable
	_, err := table.Lookup(2025)
	var mde *MissingDataError
	require.True(t, errors.As(err, &mde))
	assert.Equal(t, 2025, mde.Year)
}

func TestLookupSingleEntry(t *testing.T) {
	table := Constant("battery_prices", 2025, 120)
	for _, year := range []int{2020, 2025, 2040} {
		got, err := table.Lookup(year)
		require.NoError(t, err)
		assert.InDelta(t, 120, got, 1e-9)
	}
}

func TestScaled(t *testing.T) {
	table := NewPriceTable("diesel_prices", map[int]float64{2025: 2.0})
	scaled := table.Scaled(1.2)
	got, err := scaled.Lookup(2025)
	require.NoError(t, err)
	assert.InDelta(t, 2.4, got, 1e-9)
	// The original table is untouched.
	orig, _ := table.Lookup(2025)
	assert.InDelta(t, 2.0, orig, 1e-9)
}

func TestPriceTableJSONRoundTrip(t *testing.T) {
	table := NewPriceTable("electricity_prices", map[int]float64{2025: 0.20, 2030: 0.15})
	data, err := json.Marshal(table)
	require.NoError(t, err)

	var decoded PriceTable
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, table.ToMap(), decoded.ToMap())
}

func TestPriceTableJSONBadYear(t *testing.T) {
	var decoded PriceTable
	err := json.Unmarshal([]byte(`{"soon": 1.5}`), &decoded)
	assert.Error(t, err)
}
