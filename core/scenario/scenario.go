// Package scenario defines the validated input model for a TCO comparison
// run: the analysis window, economic assumptions, the two truck
// specifications and every year-indexed price projection.
package scenario

import (
	"github.com/fleetcost/trucktco/core/model"
)

// Financing methods.
const (
	FinancingCash = "cash"
	FinancingLoan = "loan"
)

// Battery replacement trigger modes.
const (
	ReplacementFixedYear = "fixed-year"
	ReplacementThreshold = "capacity-threshold"
)

// Financing describes how the vehicle purchase is paid for.
type Financing struct {
	Method         string  `json:"method"`
	LoanTermYears  int     `json:"loan_term_years"`
	InterestRate   float64 `json:"interest_rate"`
	DownPaymentPct float64 `json:"down_payment_pct"`
}

// Infrastructure holds charging infrastructure costs, electric only.
type Infrastructure struct {
	ChargerCost   float64 `json:"charger_cost"`
	InstallCost   float64 `json:"install_cost"`
	LifespanYears int     `json:"lifespan_years"`
	// MaintenanceRate is an annual charge as a fraction of the upfront cost.
	MaintenanceRate float64 `json:"maintenance_rate"`
}

// MaintenanceCosts carries the per-powertrain cost per kilometre and an
// annual real-increase rate compounded from the start year.
type MaintenanceCosts struct {
	ElectricPerKm      float64 `json:"electric_per_km"`
	DieselPerKm        float64 `json:"diesel_per_km"`
	AnnualIncreaseRate float64 `json:"annual_increase_rate"`
}

// InsuranceCosts expresses insurance as an annual rate applied to the
// depreciated vehicle value.
type InsuranceCosts struct {
	ElectricRate float64 `json:"electric_rate"`
	DieselRate   float64 `json:"diesel_rate"`
}

// RegistrationCosts is a flat annual fee with an optional increase rate.
type RegistrationCosts struct {
	AnnualCost         float64 `json:"annual_cost"`
	AnnualIncreaseRate float64 `json:"annual_increase_rate"`
}

// BatteryReplacement configures if and when the battery pack is replaced.
type BatteryReplacement struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"`
	// ThresholdFraction triggers replacement in capacity-threshold mode when
	// remaining capacity drops below it.
	ThresholdFraction float64 `json:"threshold_fraction"`
	// Year is the calendar year of replacement in fixed-year mode.
	Year int `json:"year"`
}

// LevyPolicy is a year-indexed charge that can be toggled, used for the
// carbon tax and the road user charge.
type LevyPolicy struct {
	Enabled bool       `json:"enabled"`
	Rates   PriceTable `json:"rates"`
}

// Scenario holds every input of one electric-versus-diesel comparison run.
// It is treated as immutable once Validate has succeeded; derived scenarios
// are produced through WithModifications.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`

	DiscountRate  float64   `json:"discount_rate"`
	InflationRate float64   `json:"inflation_rate"`
	Financing     Financing `json:"financing"`

	AnnualMileageKm float64 `json:"annual_mileage_km"`

	Electric model.ElectricTruck `json:"electric"`
	Diesel   model.DieselTruck   `json:"diesel"`

	ElectricityPrices PriceTable `json:"electricity_prices"` // $/kWh
	DieselPrices      PriceTable `json:"diesel_prices"`      // $/L
	BatteryPrices     PriceTable `json:"battery_prices"`     // $/kWh pack cost

	Infrastructure     Infrastructure     `json:"infrastructure"`
	Maintenance        MaintenanceCosts   `json:"maintenance"`
	Insurance          InsuranceCosts     `json:"insurance"`
	Registration       RegistrationCosts  `json:"registration"`
	BatteryReplacement BatteryReplacement `json:"battery_replacement"`

	CarbonTax      LevyPolicy `json:"carbon_tax"`
	RoadUserCharge LevyPolicy `json:"road_user_charge"`
}

// AnalysisYears is the number of years in the inclusive analysis window.
func (s Scenario) AnalysisYears() int { return s.EndYear - s.StartYear + 1 }

// Years lists the calendar years of the analysis window in order.
func (s Scenario) Years() []int {
	years := make([]int, 0, s.AnalysisYears())
	for y := s.StartYear; y <= s.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// Validate checks every construction rule and returns a ValidationError
// aggregating all violations, or nil. It also normalizes internal table
// names so lookup errors can identify their source.
func (s *Scenario) Validate() error {
	s.normalize()

	var errs []error
	add := func(err error) { errs = append(errs, err) }

	if s.Name == "" {
		add(&MissingFieldError{Field: "name"})
	}
	if s.StartYear == 0 {
		add(&MissingFieldError{Field: "start_year"})
	}
	if s.EndYear == 0 {
		add(&MissingFieldError{Field: "end_year"})
	}
	if s.StartYear != 0 && s.EndYear != 0 && s.EndYear <= s.StartYear {
		add(&RangeError{Field: "end_year", Value: float64(s.EndYear),
			Message: "must be greater than start_year"})
	}

	if s.DiscountRate < 0 || s.DiscountRate > 0.2 {
		add(&RangeError{Field: "discount_rate", Value: s.DiscountRate, Min: 0, Max: 0.2})
	}
	if s.InflationRate < 0 || s.InflationRate > 0.1 {
		add(&RangeError{Field: "inflation_rate", Value: s.InflationRate, Min: 0, Max: 0.1})
	}
	// Zero mileage is a degenerate but valid scenario; only negatives are
	// rejected.
	if s.AnnualMileageKm < 0 {
		add(&RangeError{Field: "annual_mileage_km", Value: s.AnnualMileageKm,
			Message: "must not be negative"})
	}

	s.validateFinancing(add)
	s.validateVehicles(add)
	s.validatePrices(add)
	s.validateCosts(add)
	s.validateBatteryReplacement(add)

	if len(errs) > 0 {
		return &ValidationError{Errs: errs}
	}
	return nil
}

func (s *Scenario) validateFinancing(add func(error)) {
	switch s.Financing.Method {
	case FinancingCash:
	case FinancingLoan:
		if s.Financing.LoanTermYears <= 0 {
			add(&RangeError{Field: "financing.loan_term_years",
				Value: float64(s.Financing.LoanTermYears), Message: "must be positive for loan financing"})
		}
		if s.Financing.InterestRate < 0 {
			add(&RangeError{Field: "financing.interest_rate",
				Value: s.Financing.InterestRate, Message: "must not be negative"})
		}
		if s.Financing.DownPaymentPct < 0 || s.Financing.DownPaymentPct > 1 {
			add(&RangeError{Field: "financing.down_payment_pct",
				Value: s.Financing.DownPaymentPct, Min: 0, Max: 1})
		}
	case "":
		add(&MissingFieldError{Field: "financing.method"})
	default:
		add(&RangeError{Field: "financing.method", Message: "must be cash or loan"})
	}
}

func (s *Scenario) validateVehicles(add func(error)) {
	if s.Electric.PurchasePrice <= 0 {
		add(&MissingFieldError{Field: "electric.purchase_price"})
	}
	if s.Electric.ConsumptionKWhPerKm <= 0 {
		add(&MissingFieldError{Field: "electric.energy_consumption_kwh_per_km"})
	}
	if s.Electric.BatteryCapacityKWh <= 0 {
		add(&MissingFieldError{Field: "electric.battery_capacity_kwh"})
	}
	if s.Electric.LifespanYears <= 0 {
		add(&MissingFieldError{Field: "electric.lifespan_years"})
	}
	if s.Diesel.PurchasePrice <= 0 {
		add(&MissingFieldError{Field: "diesel.purchase_price"})
	}
	if s.Diesel.ConsumptionLPer100Km <= 0 {
		add(&MissingFieldError{Field: "diesel.fuel_consumption_l_per_100km"})
	}
	if s.Diesel.LifespanYears <= 0 {
		add(&MissingFieldError{Field: "diesel.lifespan_years"})
	}
}

func (s *Scenario) validatePrices(add func(error)) {
	if s.ElectricityPrices.Len() == 0 {
		add(&MissingFieldError{Field: "electricity_prices"})
	}
	if s.DieselPrices.Len() == 0 {
		add(&MissingFieldError{Field: "diesel_prices"})
	}
	if s.CarbonTax.Enabled && s.CarbonTax.Rates.Len() == 0 {
		add(&MissingFieldError{Field: "carbon_tax.rates"})
	}
	if s.RoadUserCharge.Enabled && s.RoadUserCharge.Rates.Len() == 0 {
		add(&MissingFieldError{Field: "road_user_charge.rates"})
	}
}

func (s *Scenario) validateCosts(add func(error)) {
	if s.Infrastructure.ChargerCost < 0 || s.Infrastructure.InstallCost < 0 {
		add(&RangeError{Field: "infrastructure", Message: "costs must not be negative"})
	}
	upfront := s.Infrastructure.ChargerCost + s.Infrastructure.InstallCost
	if upfront > 0 && s.Infrastructure.LifespanYears <= 0 {
		add(&RangeError{Field: "infrastructure.lifespan_years",
			Value: float64(s.Infrastructure.LifespanYears), Message: "must be positive when charger costs are set"})
	}
	if s.Maintenance.ElectricPerKm < 0 || s.Maintenance.DieselPerKm < 0 {
		add(&RangeError{Field: "maintenance", Message: "cost per km must not be negative"})
	}
	if s.Insurance.ElectricRate < 0 || s.Insurance.DieselRate < 0 {
		add(&RangeError{Field: "insurance", Message: "rates must not be negative"})
	}
	if s.Registration.AnnualCost < 0 {
		add(&RangeError{Field: "registration.annual_cost",
			Value: s.Registration.AnnualCost, Message: "must not be negative"})
	}
}

func (s *Scenario) validateBatteryReplacement(add func(error)) {
	if !s.BatteryReplacement.Enabled {
		return
	}
	switch s.BatteryReplacement.Mode {
	case ReplacementFixedYear:
		y := s.BatteryReplacement.Year
		if y < s.StartYear || y > s.EndYear {
			add(&RangeError{Field: "battery_replacement.year", Value: float64(y),
				Min: float64(s.StartYear), Max: float64(s.EndYear)})
		}
	case ReplacementThreshold:
		f := s.BatteryReplacement.ThresholdFraction
		if f <= 0 || f >= 1 {
			add(&RangeError{Field: "battery_replacement.threshold_fraction",
				Value: f, Min: 0, Max: 1})
		}
	case "":
		add(&MissingFieldError{Field: "battery_replacement.mode"})
	default:
		add(&RangeError{Field: "battery_replacement.mode",
			Message: "must be fixed-year or capacity-threshold"})
	}
	if s.BatteryPrices.Len() == 0 {
		add(&MissingFieldError{Field: "battery_prices"})
	}
}

// normalize stamps table names so lookup failures name their source even when
// the scenario was decoded from JSON or YAML.
func (s *Scenario) normalize() {
	s.ElectricityPrices.name = "electricity_prices"
	s.DieselPrices.name = "diesel_prices"
	s.BatteryPrices.name = "battery_prices"
	s.CarbonTax.Rates.name = "carbon_tax.rates"
	s.RoadUserCharge.Rates.name = "road_user_charge.rates"
}
