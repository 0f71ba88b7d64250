package scenario

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcost/trucktco/core/model"
)

// valid returns a scenario passing every validation rule, for tests to break
// one field at a time.
func valid() Scenario {
	return Scenario{
		Name:            "urban-delivery",
		StartYear:       2025,
		EndYear:         2035,
		DiscountRate:    0.05,
		InflationRate:   0.025,
		Financing:       Financing{Method: FinancingLoan, LoanTermYears: 5, InterestRate: 0.05, DownPaymentPct: 0.2},
		AnnualMileageKm: 40000,
		Electric: model.ElectricTruck{
			Name:                "e-truck",
			PurchasePrice:       400000,
			LifespanYears:       15,
			BatteryCapacityKWh:  300,
			ConsumptionKWhPerKm: 0.9,
		},
		Diesel: model.DieselTruck{
			Name:                 "d-truck",
			PurchasePrice:        250000,
			LifespanYears:        15,
			ConsumptionLPer100Km: 30,
			CO2KgPerLitre:        2.68,
		},
		ElectricityPrices: NewPriceTable("electricity_prices", map[int]float64{2025: 0.20, 2035: 0.10}),
		DieselPrices:      NewPriceTable("diesel_prices", map[int]float64{2025: 1.70}),
		BatteryPrices:     NewPriceTable("battery_prices", map[int]float64{2025: 150, 2035: 80}),
		Infrastructure:    Infrastructure{ChargerCost: 40000, InstallCost: 10000, LifespanYears: 10},
		Maintenance:       MaintenanceCosts{ElectricPerKm: 0.08, DieselPerKm: 0.15},
		Insurance:         InsuranceCosts{ElectricRate: 0.04, DieselRate: 0.035},
		Registration:      RegistrationCosts{AnnualCost: 800},
		BatteryReplacement: BatteryReplacement{
			Enabled:           true,
			Mode:              ReplacementThreshold,
			ThresholdFraction: 0.7,
		},
	}
}

func TestValidateOK(t *testing.T) {
	s := valid()
	require.NoError(t, s.Validate())
}

func TestValidateMissingFields(t *testing.T) {
	s := valid()
	s.Name = ""
	s.Electric.PurchasePrice = 0
	err := s.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := map[string]bool{}
	for _, e := range verr.Errs {
		var mfe *MissingFieldError
		if errors.As(e, &mfe) {
			fields[mfe.Field] = true
		}
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["electric.purchase_price"])
}

func TestValidateYearOrder(t *testing.T) {
	s := valid()
	s.EndYear = s.StartYear
	err := s.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	var rerr *RangeError
	require.True(t, errors.As(verr.Errs[0], &rerr))
	assert.Equal(t, "end_year", rerr.Field)
}

func TestValidateRateBounds(t *testing.T) {
	for _, tc := range []struct {
		name string
		mod  func(*Scenario)
	}{
		{"discount high", func(s *Scenario) { s.DiscountRate = 0.25 }},
		{"discount negative", func(s *Scenario) { s.DiscountRate = -0.01 }},
		{"inflation high", func(s *Scenario) { s.InflationRate = 0.2 }},
		{"down payment", func(s *Scenario) { s.Financing.DownPaymentPct = 1.5 }},
		{"mileage negative", func(s *Scenario) { s.AnnualMileageKm = -1 }},
		{"threshold", func(s *Scenario) { s.BatteryReplacement.ThresholdFraction = 1.0 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mod(&s)
			err := s.Validate()
			require.Error(t, err)
			var rerr *RangeError
			assert.True(t, errors.As(err, &rerr), "expected RangeError, got %v", err)
		})
	}
}

func TestValidateZeroMileageAllowed(t *testing.T) {
	s := valid()
	s.AnnualMileageKm = 0
	assert.NoError(t, s.Validate())
}

func TestValidateEmptyPriceTables(t *testing.T) {
	s := valid()
	s.ElectricityPrices = PriceTable{}
	s.DieselPrices = PriceTable{}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "electricity_prices")
	assert.Contains(t, err.Error(), "diesel_prices")
}

func TestValidateFixedReplacementYearBounds(t *testing.T) {
	s := valid()
	s.BatteryReplacement.Mode = ReplacementFixedYear
	s.BatteryReplacement.Year = s.EndYear + 3
	err := s.Validate()
	require.Error(t, err)
	var rerr *RangeError
	assert.True(t, errors.As(err, &rerr))
}

func TestValidateReplacementRequiresBatteryPrices(t *testing.T) {
	s := valid()
	s.BatteryPrices = PriceTable{}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "battery_prices")
}

func TestValidateLevyRatesRequiredWhenEnabled(t *testing.T) {
	s := valid()
	s.CarbonTax.Enabled = true
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carbon_tax.rates")
}

func TestWithModifications(t *testing.T) {
	base := valid()
	require.NoError(t, base.Validate())

	derived, err := base.WithModifications(
		SetName("high-mileage"),
		ScaleAnnualMileage(1.2),
		ScaleDieselPrices(1.2),
	)
	require.NoError(t, err)
	assert.Equal(t, "high-mileage", derived.Name)
	assert.InDelta(t, 48000, derived.AnnualMileageKm, 1e-9)

	price, err := derived.DieselPrices.Lookup(2025)
	require.NoError(t, err)
	assert.InDelta(t, 1.70*1.2, price, 1e-9)

	// The baseline is untouched.
	assert.InDelta(t, 40000, base.AnnualMileageKm, 1e-9)
	orig, _ := base.DieselPrices.Lookup(2025)
	assert.InDelta(t, 1.70, orig, 1e-9)
}

func TestWithModificationsRevalidates(t *testing.T) {
	base := valid()
	_, err := base.WithModifications(SetDiscountRate(0.5))
	require.Error(t, err)
	var rerr *RangeError
	assert.True(t, errors.As(err, &rerr))
}

func TestScenarioJSONRoundTrip(t *testing.T) {
	s := valid()
	require.NoError(t, s.Validate())

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Scenario
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NoError(t, decoded.Validate())

	assert.Equal(t, s.Name, decoded.Name)
	assert.Equal(t, s.ElectricityPrices.ToMap(), decoded.ElectricityPrices.ToMap())
	assert.Equal(t, s.BatteryPrices.ToMap(), decoded.BatteryPrices.ToMap())
	assert.Equal(t, s.Electric, decoded.Electric)
	assert.Equal(t, s.Diesel, decoded.Diesel)
	assert.Equal(t, s.Financing, decoded.Financing)
}
