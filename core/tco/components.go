package tco

import (
	"fmt"
	"math"

	"github.com/fleetcost/trucktco/core/model"
	"github.com/fleetcost/trucktco/core/scenario"
)

// runCtx carries the per-vehicle state of one Calculate invocation. Cost
// functions are pure over it: same context and year index, same cost.
type runCtx struct {
	s     *scenario.Scenario
	truck model.Truck
	// replacementIdx is the zero-based analysis year of the battery
	// replacement, or -1 when no replacement occurs in the window.
	replacementIdx int
}

// costFunc computes one component's cost for the analysis year at yearIdx
// (0 = start year). Functions return exactly 0, not an error, for years or
// vehicles outside their applicable range.
type costFunc func(rc *runCtx, yearIdx int) (float64, error)

// costFuncs is the closed dispatch table; adding a cost category means adding
// a Component constant and one entry here.
var costFuncs = map[Component]costFunc{
	Acquisition:        acquisitionCost,
	Energy:             energyCost,
	Maintenance:        maintenanceCost,
	Infrastructure:     infrastructureCost,
	BatteryReplacement: batteryReplacementCost,
	Insurance:          insuranceCost,
	Registration:       registrationCost,
	CarbonTax:          carbonTaxCost,
	RoadUserCharge:     roadUserChargeCost,
	ResidualValue:      residualValueCost,
}

// acquisitionCost charges the full price upfront for cash purchases, or a
// down payment plus equal annuity payments over the loan term. A zero
// interest rate degenerates the annuity into straight-line payments instead
// of dividing by zero.
func acquisitionCost(rc *runCtx, yearIdx int) (float64, error) {
	price := rc.truck.Price()
	fin := rc.s.Financing

	if fin.Method == scenario.FinancingCash {
		if yearIdx == 0 {
			return price, nil
		}
		return 0, nil
	}

	cost := 0.0
	if yearIdx == 0 {
		cost += price * fin.DownPaymentPct
	}
	if yearIdx >= 0 && yearIdx < fin.LoanTermYears {
		loan := price * (1 - fin.DownPaymentPct)
		n := float64(fin.LoanTermYears)
		if fin.InterestRate == 0 {
			cost += loan / n
		} else {
			r := fin.InterestRate
			growth := math.Pow(1+r, n)
			cost += loan * r * growth / (growth - 1)
		}
	}
	return cost, nil
}

func energyCost(rc *runCtx, yearIdx int) (float64, error) {
	year := rc.s.StartYear + yearIdx
	var table scenario.PriceTable
	if rc.truck.Kind() == model.Electric {
		table = rc.s.ElectricityPrices
	} else {
		table = rc.s.DieselPrices
	}
	price, err := table.Lookup(year)
	if err != nil {
		return 0, err
	}
	return rc.truck.EnergyCost(rc.s.AnnualMileageKm, price), nil
}

func maintenanceCost(rc *runCtx, yearIdx int) (float64, error) {
	perKm := rc.s.Maintenance.DieselPerKm
	if rc.truck.Kind() == model.Electric {
		perKm = rc.s.Maintenance.ElectricPerKm
	}
	perKm *= math.Pow(1+rc.s.Maintenance.AnnualIncreaseRate, float64(yearIdx))
	return rc.s.AnnualMileageKm * perKm, nil
}

// infrastructureCost amortizes charger hardware and installation over the
// charger lifespan, plus the annual maintenance charge while the charger is
// in service. Diesel trucks and years past the lifespan cost nothing.
func infrastructureCost(rc *runCtx, yearIdx int) (float64, error) {
	if rc.truck.Kind() != model.Electric {
		return 0, nil
	}
	infra := rc.s.Infrastructure
	upfront := infra.ChargerCost + infra.InstallCost
	if upfront <= 0 || infra.LifespanYears <= 0 || yearIdx >= infra.LifespanYears {
		return 0, nil
	}
	return upfront/float64(infra.LifespanYears) + upfront*infra.MaintenanceRate, nil
}

func batteryReplacementCost(rc *runCtx, yearIdx int) (float64, error) {
	if rc.truck.Kind() != model.Electric || rc.replacementIdx < 0 || yearIdx != rc.replacementIdx {
		return 0, nil
	}
	ev, ok := rc.truck.(model.ElectricTruck)
	if !ok {
		return 0, fmt.Errorf("battery replacement on non-electric truck %q", rc.truck.Kind())
	}
	year := rc.s.StartYear + yearIdx
	pricePerKWh, err := rc.s.BatteryPrices.Lookup(year)
	if err != nil {
		return 0, err
	}
	return ev.BatteryCapacityKWh * pricePerKWh, nil
}

// insuranceCost applies the powertrain's rate to the depreciated vehicle
// value, mirroring the residual value curve.
func insuranceCost(rc *runCtx, yearIdx int) (float64, error) {
	rate := rc.s.Insurance.DieselRate
	if rc.truck.Kind() == model.Electric {
		rate = rc.s.Insurance.ElectricRate
	}
	return rc.truck.Price() * rc.truck.ResidualFraction(float64(yearIdx)) * rate, nil
}

func registrationCost(rc *runCtx, yearIdx int) (float64, error) {
	reg := rc.s.Registration
	return reg.AnnualCost * math.Pow(1+reg.AnnualIncreaseRate, float64(yearIdx)), nil
}

// carbonTaxCost charges diesel emissions at the year's rate per tonne CO2e.
func carbonTaxCost(rc *runCtx, yearIdx int) (float64, error) {
	if !rc.s.CarbonTax.Enabled || rc.truck.Kind() != model.Diesel {
		return 0, nil
	}
	dv, ok := rc.truck.(model.DieselTruck)
	if !ok {
		return 0, fmt.Errorf("carbon tax on non-diesel truck %q", rc.truck.Kind())
	}
	year := rc.s.StartYear + yearIdx
	rate, err := rc.s.CarbonTax.Rates.Lookup(year)
	if err != nil {
		return 0, err
	}
	fuelL := dv.EnergyConsumption(rc.s.AnnualMileageKm)
	tonnesCO2 := fuelL * dv.CO2KgPerLitre / 1000
	return tonnesCO2 * rate, nil
}

func roadUserChargeCost(rc *runCtx, yearIdx int) (float64, error) {
	if !rc.s.RoadUserCharge.Enabled {
		return 0, nil
	}
	year := rc.s.StartYear + yearIdx
	rate, err := rc.s.RoadUserCharge.Rates.Lookup(year)
	if err != nil {
		return 0, err
	}
	return rc.s.AnnualMileageKm * rate, nil
}

// residualValueCost recovers the resale value as a negative cost in the
// terminal year only.
func residualValueCost(rc *runCtx, yearIdx int) (float64, error) {
	if yearIdx != rc.s.AnalysisYears()-1 {
		return 0, nil
	}
	age := float64(rc.s.EndYear - rc.s.StartYear)
	return -rc.truck.ResidualValue(age), nil
}

// batteryReplacementIdx resolves the analysis year of the battery
// replacement, or -1 when disabled or never triggered in the window. In
// threshold mode it scans forward computing end-of-year degradation until
// remaining capacity drops below the threshold.
func batteryReplacementIdx(s *scenario.Scenario, ev model.ElectricTruck) int {
	policy := s.BatteryReplacement
	if !policy.Enabled {
		return -1
	}
	switch policy.Mode {
	case scenario.ReplacementFixedYear:
		idx := policy.Year - s.StartYear
		if idx >= 0 && idx < s.AnalysisYears() {
			return idx
		}
	case scenario.ReplacementThreshold:
		for idx := 0; idx < s.AnalysisYears(); idx++ {
			ageEnd := float64(idx + 1)
			kmEnd := ageEnd * s.AnnualMileageKm
			if ev.BatteryDegradation(ageEnd, kmEnd) < policy.ThresholdFraction {
				return idx
			}
		}
	}
	return -1
}
