package tco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcost/trucktco/core/scenario"
)

func TestCalculateTotalsAndComponents(t *testing.T) {
	s := testScenario()
	res, err := New().Calculate(s)
	require.NoError(t, err)

	assert.Equal(t, "urban-delivery", res.ScenarioName)
	assert.Equal(t, 2025, res.StartYear)
	assert.Equal(t, 2035, res.EndYear)
	require.Len(t, res.ElectricAnnual.Rows, 11)
	require.Len(t, res.DieselAnnual.Rows, 11)

	// Every row carries the full component breakdown and a consistent total.
	for _, row := range res.ElectricAnnual.Rows {
		sum := 0.0
		for _, c := range ComponentOrder {
			v, ok := row.Costs[c]
			require.True(t, ok, "component %s missing in %d", c, row.Year)
			sum += v
		}
		assert.InDelta(t, row.Total, sum, 1e-9)
	}

	assert.InDelta(t, 20400, res.DieselAnnual.Rows[0].Costs[Energy], 1e-9)
	assert.InDelta(t, 7200, res.ElectricAnnual.Rows[0].Costs[Energy], 1e-9)
}

func TestCalculateIsIdempotent(t *testing.T) {
	s := testScenario()
	calc := New()

	first, err := calc.Calculate(s)
	require.NoError(t, err)
	second, err := calc.Calculate(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculateLeavesScenarioUntouched(t *testing.T) {
	s := testScenario()
	before := s.AnnualMileageKm
	_, err := New().Calculate(s)
	require.NoError(t, err)
	assert.Equal(t, before, s.AnnualMileageKm)
}

func TestParityReached(t *testing.T) {
	// Electric costs 150000 more upfront and saves 16000 and up per year on
	// energy and maintenance, so the crossover lands nine years in.
	s := testScenario()
	res, err := New().Calculate(s)
	require.NoError(t, err)

	require.NotNil(t, res.ParityYear)
	assert.Equal(t, 2033, *res.ParityYear)
	assert.False(t, res.ParityImmediate)
}

func TestParityNeverReached(t *testing.T) {
	s := testScenario()
	s.ElectricityPrices = scenario.NewPriceTable("electricity_prices", map[int]float64{2025: 1.50})
	s.Maintenance.ElectricPerKm = 0.20

	res, err := New().Calculate(s)
	require.NoError(t, err)
	assert.Nil(t, res.ParityYear)
	assert.False(t, res.ParityImmediate)
	assert.Greater(t, res.ElectricTotalTCO, res.DieselTotalTCO)
}

func TestParityImmediate(t *testing.T) {
	s := testScenario()
	s.Electric.PurchasePrice = 200000

	res, err := New().Calculate(s)
	require.NoError(t, err)
	assert.Nil(t, res.ParityYear)
	assert.True(t, res.ParityImmediate)
}

func TestDiscountingReducesLaterYears(t *testing.T) {
	s := testScenario()
	s.DiscountRate = 0.05

	res, err := New().Calculate(s)
	require.NoError(t, err)

	undiscounted := testScenario()
	base, err := New().Calculate(undiscounted)
	require.NoError(t, err)

	// Year 0 is unaffected by discounting, later years shrink.
	assert.InDelta(t, base.DieselDiscounted.Rows[0].Total, res.DieselDiscounted.Rows[0].Total, 1e-9)
	assert.Less(t, res.DieselDiscounted.Rows[5].Total, base.DieselDiscounted.Rows[5].Total)
	assert.Less(t, res.DieselTotalTCO, base.DieselTotalTCO)
}

func TestLCODZeroDiscount(t *testing.T) {
	s := testScenario()
	res, err := New().Calculate(s)
	require.NoError(t, err)

	km := float64(s.AnalysisYears()) * s.AnnualMileageKm
	assert.InDelta(t, res.ElectricTotalTCO/km, res.LCODElectric, 1e-9)
	assert.InDelta(t, res.DieselTotalTCO/km, res.LCODDiesel, 1e-9)
	assert.Greater(t, res.LCODElectric, 0.0)
}

func TestLCODZeroMileage(t *testing.T) {
	s := testScenario()
	s.AnnualMileageKm = 0

	res, err := New().Calculate(s)
	require.NoError(t, err)
	assert.Zero(t, res.LCODElectric)
	assert.Zero(t, res.LCODDiesel)
}

func TestCalculateRejectsInvalidScenario(t *testing.T) {
	s := testScenario()
	s.EndYear = 2024

	_, err := New().Calculate(s)
	var verr *scenario.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCalculateAbortsWithContext(t *testing.T) {
	// A battery replacement without projected pack prices cannot be costed;
	// the failure names the vehicle, component and year.
	s := testScenario()
	s.BatteryReplacement = scenario.BatteryReplacement{
		Enabled: true, Mode: scenario.ReplacementFixedYear, Year: 2027,
	}
	s.BatteryPrices = scenario.NewPriceTable("battery_prices", nil)

	_, err := New().Calculate(s)
	require.Error(t, err)
	var verr *scenario.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCalculationErrorContext(t *testing.T) {
	cerr := &CalculationError{
		Vehicle:   "e-truck",
		Component: Energy,
		Year:      2030,
		Err:       assert.AnError,
	}
	assert.Contains(t, cerr.Error(), "e-truck")
	assert.Contains(t, cerr.Error(), "energy")
	assert.Contains(t, cerr.Error(), "2030")
	assert.ErrorIs(t, cerr, assert.AnError)
}
