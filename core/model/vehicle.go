package model

import (
	"fmt"
	"math"
	"sort"
)

// Powertrain identifies the closed set of vehicle kinds the engine compares.
type Powertrain int

const (
	Electric Powertrain = iota
	Diesel
)

func (p Powertrain) String() string {
	switch p {
	case Electric:
		return "electric"
	case Diesel:
		return "diesel"
	default:
		return fmt.Sprintf("powertrain(%d)", int(p))
	}
}

// Default degradation model parameters, overridable per truck.
const (
	DefaultCycleLife         = 2000
	DefaultCalendarLifeYears = 18

	cycleAgingWeight    = 0.7
	calendarAgingWeight = 0.3
)

// depreciationFloor is how much of the purchase price is lost over a full
// lifespan under the default residual model.
const depreciationFloor = 0.9

// AgePoint maps a vehicle age in years to a fraction of the purchase price.
type AgePoint struct {
	AgeYears float64 `json:"age_years"`
	Fraction float64 `json:"fraction"`
}

// AgeCurve is an ordered sequence of age/fraction pairs used for residual
// value projections. An empty curve falls back to the default linear model.
type AgeCurve []AgePoint

// NewAgeCurve returns a curve sorted by age.
func NewAgeCurve(points []AgePoint) AgeCurve {
	c := make(AgeCurve, len(points))
	copy(c, points)
	sort.Slice(c, func(i, j int) bool { return c[i].AgeYears < c[j].AgeYears })
	return c
}

// Fraction interpolates the curve at the given age, clamping to the boundary
// entries outside the projected range.
func (c AgeCurve) Fraction(ageYears float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if ageYears <= c[0].AgeYears {
		return c[0].Fraction
	}
	last := c[len(c)-1]
	if ageYears >= last.AgeYears {
		return last.Fraction
	}
	i := sort.Search(len(c), func(i int) bool { return c[i].AgeYears >= ageYears })
	lo, hi := c[i-1], c[i]
	f := (ageYears - lo.AgeYears) / (hi.AgeYears - lo.AgeYears)
	return lo.Fraction + f*(hi.Fraction-lo.Fraction)
}

// Truck is the capability set shared by both powertrains. Cost components
// accept it and type-switch for powertrain-specific behaviour; the set of
// implementations is fixed to ElectricTruck and DieselTruck.
type Truck interface {
	Kind() Powertrain
	Price() float64
	// EnergyConsumption returns the energy used over the given distance in
	// the powertrain's native unit (kWh for electric, litres for diesel).
	EnergyConsumption(distanceKm float64) float64
	// EnergyCost prices the consumption over distanceKm at the given unit
	// price. The price for the year is looked up by the caller; the truck
	// knows nothing about scenario price tables.
	EnergyCost(distanceKm, unitPrice float64) float64
	// ResidualValue estimates the resale value at the given age.
	ResidualValue(ageYears float64) float64
	// ResidualFraction is ResidualValue as a fraction of the purchase price.
	ResidualFraction(ageYears float64) float64
}

// ElectricTruck is a battery-electric truck specification.
type ElectricTruck struct {
	Name                 string  `json:"name"`
	PurchasePrice        float64 `json:"purchase_price"`
	LifespanYears        int     `json:"lifespan_years"`
	BatteryCapacityKWh   float64 `json:"battery_capacity_kwh"`
	ConsumptionKWhPerKm  float64 `json:"energy_consumption_kwh_per_km"`
	BatteryWarrantyYears int     `json:"battery_warranty_years"`
	// CycleLife is the number of equivalent full cycles before the cycle
	// aging term saturates. Zero means DefaultCycleLife.
	CycleLife float64 `json:"cycle_life"`
	// CalendarLifeYears bounds the calendar aging term. Zero means
	// DefaultCalendarLifeYears.
	CalendarLifeYears float64 `json:"calendar_life_years"`
	// Residual is an optional age-indexed residual value projection.
	Residual AgeCurve `json:"residual_value_curve,omitempty"`
}

func (t ElectricTruck) Kind() Powertrain { return Electric }
func (t ElectricTruck) Price() float64   { return t.PurchasePrice }

func (t ElectricTruck) EnergyConsumption(distanceKm float64) float64 {
	return distanceKm * t.ConsumptionKWhPerKm
}

func (t ElectricTruck) EnergyCost(distanceKm, unitPrice float64) float64 {
	return t.EnergyConsumption(distanceKm) * unitPrice
}

func (t ElectricTruck) ResidualFraction(ageYears float64) float64 {
	return residualFraction(t.Residual, ageYears, t.LifespanYears)
}

func (t ElectricTruck) ResidualValue(ageYears float64) float64 {
	return t.PurchasePrice * t.ResidualFraction(ageYears)
}

// BatteryDegradation estimates the remaining capacity fraction after the
// given age and accumulated mileage. It combines cycle aging (energy
// throughput over total cycle energy) and calendar aging, each clamped to
// [0,1] before weighting.
func (t ElectricTruck) BatteryDegradation(ageYears, totalMileageKm float64) float64 {
	cycleLife := t.CycleLife
	if cycleLife <= 0 {
		cycleLife = DefaultCycleLife
	}
	calendarLife := t.CalendarLifeYears
	if calendarLife <= 0 {
		calendarLife = DefaultCalendarLifeYears
	}
	throughputKWh := totalMileageKm * t.ConsumptionKWhPerKm
	cycle := math.Min(1, throughputKWh/(t.BatteryCapacityKWh*cycleLife))
	calendar := math.Min(1, ageYears/calendarLife)
	return math.Max(0, 1-(cycleAgingWeight*cycle+calendarAgingWeight*calendar))
}

// DieselTruck is a conventional diesel truck specification.
type DieselTruck struct {
	Name                 string  `json:"name"`
	PurchasePrice        float64 `json:"purchase_price"`
	LifespanYears        int     `json:"lifespan_years"`
	ConsumptionLPer100Km float64 `json:"fuel_consumption_l_per_100km"`
	// CO2KgPerLitre feeds the optional carbon tax component.
	CO2KgPerLitre float64  `json:"co2_emission_factor_kg_per_l"`
	Residual      AgeCurve `json:"residual_value_curve,omitempty"`
}

func (t DieselTruck) Kind() Powertrain { return Diesel }
func (t DieselTruck) Price() float64   { return t.PurchasePrice }

func (t DieselTruck) EnergyConsumption(distanceKm float64) float64 {
	return distanceKm * t.ConsumptionLPer100Km / 100
}

func (t DieselTruck) EnergyCost(distanceKm, unitPrice float64) float64 {
	return t.EnergyConsumption(distanceKm) * unitPrice
}

func (t DieselTruck) ResidualFraction(ageYears float64) float64 {
	return residualFraction(t.Residual, ageYears, t.LifespanYears)
}

func (t DieselTruck) ResidualValue(ageYears float64) float64 {
	return t.PurchasePrice * t.ResidualFraction(ageYears)
}

// residualFraction uses the projection curve when supplied and otherwise a
// linear depreciation towards 10% of the purchase price at end of lifespan.
func residualFraction(curve AgeCurve, ageYears float64, lifespanYears int) float64 {
	if len(curve) > 0 {
		return curve.Fraction(ageYears)
	}
	if lifespanYears <= 0 {
		return 0
	}
	return math.Max(0, 1-(ageYears/float64(lifespanYears))*depreciationFloor)
}
