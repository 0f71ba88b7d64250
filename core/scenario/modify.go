package scenario

import "github.com/fleetcost/trucktco/core/model"

// Mod mutates a scenario copy inside WithModifications.
type Mod func(*Scenario)

// WithModifications returns a deep copy of the scenario with the given
// modifications applied and re-validated. The receiver is never touched, so
// a validated scenario stays valid.
func (s Scenario) WithModifications(mods ...Mod) (Scenario, error) {
	out := s.clone()
	for _, mod := range mods {
		mod(&out)
	}
	if err := out.Validate(); err != nil {
		return Scenario{}, err
	}
	return out, nil
}

func (s Scenario) clone() Scenario {
	out := s
	out.ElectricityPrices = s.ElectricityPrices.Scaled(1)
	out.DieselPrices = s.DieselPrices.Scaled(1)
	out.BatteryPrices = s.BatteryPrices.Scaled(1)
	out.CarbonTax.Rates = s.CarbonTax.Rates.Scaled(1)
	out.RoadUserCharge.Rates = s.RoadUserCharge.Rates.Scaled(1)
	out.Electric.Residual = cloneCurve(s.Electric.Residual)
	out.Diesel.Residual = cloneCurve(s.Diesel.Residual)
	return out
}

func cloneCurve(c model.AgeCurve) model.AgeCurve {
	if c == nil {
		return nil
	}
	out := make(model.AgeCurve, len(c))
	copy(out, c)
	return out
}

// SetName renames the derived scenario.
func SetName(name string) Mod {
	return func(s *Scenario) { s.Name = name }
}

// SetAnnualMileage replaces the annual mileage.
func SetAnnualMileage(km float64) Mod {
	return func(s *Scenario) { s.AnnualMileageKm = km }
}

// SetDiscountRate replaces the discount rate.
func SetDiscountRate(rate float64) Mod {
	return func(s *Scenario) { s.DiscountRate = rate }
}

// ScaleElectricityPrices multiplies every electricity price by f.
func ScaleElectricityPrices(f float64) Mod {
	return func(s *Scenario) { s.ElectricityPrices = s.ElectricityPrices.Scaled(f) }
}

// ScaleDieselPrices multiplies every diesel price by f.
func ScaleDieselPrices(f float64) Mod {
	return func(s *Scenario) { s.DieselPrices = s.DieselPrices.Scaled(f) }
}

// ScaleBatteryPrices multiplies every battery pack price by f.
func ScaleBatteryPrices(f float64) Mod {
	return func(s *Scenario) { s.BatteryPrices = s.BatteryPrices.Scaled(f) }
}

// ScaleAnnualMileage multiplies the annual mileage by f.
func ScaleAnnualMileage(f float64) Mod {
	return func(s *Scenario) { s.AnnualMileageKm *= f }
}

// ScaleDiscountRate multiplies the discount rate by f.
func ScaleDiscountRate(f float64) Mod {
	return func(s *Scenario) { s.DiscountRate *= f }
}
