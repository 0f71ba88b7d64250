package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcost/trucktco/core/model"
	"github.com/fleetcost/trucktco/core/scenario"
)

const scenarioYAML = `
name: urban-delivery
start_year: 2025
end_year: 2035
discount_rate: 0.04
financing:
  method: cash
annual_mileage_km: 40000
electric:
  name: e-truck
  purchase_price: 400000
  lifespan_years: 15
  battery_capacity_kwh: 300
  energy_consumption_kwh_per_km: 0.9
diesel:
  name: d-truck
  purchase_price: 250000
  lifespan_years: 15
  fuel_consumption_l_per_100km: 30
  co2_emission_factor_kg_per_l: 2.68
electricity_prices:
  "2025": 0.20
  "2035": 0.10
diesel_prices:
  "2025": 1.70
maintenance:
  electric_per_km: 0.08
  diesel_per_km: 0.15
`

func TestLoadScenarioYAML(t *testing.T) {
	path := writeFile(t, "scenario.yaml", scenarioYAML)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "urban-delivery", s.Name)
	assert.Equal(t, 2025, s.StartYear)
	assert.InDelta(t, 0.04, s.DiscountRate, 1e-9)
	assert.InDelta(t, 400000, s.Electric.PurchasePrice, 1e-9)

	price, err := s.ElectricityPrices.Lookup(2030)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, price, 1e-9)
}

func TestLoadScenarioInvalid(t *testing.T) {
	path := writeFile(t, "scenario.yaml", "name: broken\nstart_year: 2030\nend_year: 2025\n")
	_, err := LoadScenario(path)
	var verr *scenario.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestScenarioRoundTrip(t *testing.T) {
	path := writeFile(t, "scenario.yaml", scenarioYAML)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	for _, name := range []string{"copy.yaml", "copy.json"} {
		out := filepath.Join(t.TempDir(), name)
		require.NoError(t, SaveScenario(out, s))

		loaded, err := LoadScenario(out)
		require.NoError(t, err)
		assert.Equal(t, s, loaded, name)
	}
}

func TestSaveScenarioUnsupportedFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "scenario.toml")
	s := scenario.Scenario{
		Name:      "x",
		StartYear: 2025, EndYear: 2030,
		AnnualMileageKm: 1000,
		Financing:       scenario.Financing{Method: scenario.FinancingCash},
		Electric:        model.ElectricTruck{Name: "e", PurchasePrice: 1, LifespanYears: 1, BatteryCapacityKWh: 1, ConsumptionKWhPerKm: 1},
		Diesel:          model.DieselTruck{Name: "d", PurchasePrice: 1, LifespanYears: 1, ConsumptionLPer100Km: 1},
	}
	require.Error(t, SaveScenario(out, s))
}
