package tco

import "gonum.org/v1/gonum/floats"

// Component names one cost category of the annual cost breakdown.
type Component string

const (
	Acquisition        Component = "acquisition"
	Energy             Component = "energy"
	Maintenance        Component = "maintenance"
	Infrastructure     Component = "infrastructure"
	BatteryReplacement Component = "battery_replacement"
	Insurance          Component = "insurance"
	Registration       Component = "registration"
	CarbonTax          Component = "carbon_tax"
	RoadUserCharge     Component = "road_user_charge"
	// ResidualValue is last so the negative terminal-year recovery closes
	// the breakdown.
	ResidualValue Component = "residual_value"
)

// ComponentOrder is the fixed evaluation and reporting order.
var ComponentOrder = []Component{
	Acquisition,
	Energy,
	Maintenance,
	Infrastructure,
	BatteryReplacement,
	Insurance,
	Registration,
	CarbonTax,
	RoadUserCharge,
	ResidualValue,
}

// AnnualCosts is the per-year cost breakdown for one vehicle. Residual value
// appears as a negative entry in the terminal year.
type AnnualCosts struct {
	Year  int                   `json:"year"`
	Costs map[Component]float64 `json:"costs"`
	Total float64               `json:"total"`
}

// CostTable is the full annual cost table for one vehicle, undiscounted or
// discounted depending on where it appears in the Result.
type CostTable struct {
	Vehicle string        `json:"vehicle"`
	Rows    []AnnualCosts `json:"rows"`
}

// Totals returns the per-year total column.
func (t CostTable) Totals() []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Total
	}
	return out
}

// TotalSum is the sum of the total column.
func (t CostTable) TotalSum() float64 {
	return floats.Sum(t.Totals())
}

// CumulativeTotals is the running sum of the total column.
func (t CostTable) CumulativeTotals() []float64 {
	totals := t.Totals()
	out := make([]float64, len(totals))
	floats.CumSum(out, totals)
	return out
}

// SensitivityRow reports how the discounted electric-minus-diesel gap moves
// when one parameter is varied down and up from the baseline.
type SensitivityRow struct {
	Parameter string  `json:"parameter"`
	LowDelta  float64 `json:"low_delta"`
	HighDelta float64 `json:"high_delta"`
}

// Result is the complete output of one TCO comparison. It is returned by
// value and shares no mutable state with the calculator.
type Result struct {
	ScenarioName string `json:"scenario_name"`
	StartYear    int    `json:"start_year"`
	EndYear      int    `json:"end_year"`

	ElectricAnnual CostTable `json:"electric_annual"`
	DieselAnnual   CostTable `json:"diesel_annual"`

	ElectricDiscounted CostTable `json:"electric_total"`
	DieselDiscounted   CostTable `json:"diesel_total"`

	ElectricTotalTCO float64 `json:"electric_total_tco"`
	DieselTotalTCO   float64 `json:"diesel_total_tco"`

	// ParityYear is the first year the cumulative discounted electric cost
	// falls to or below diesel's, nil when never reached in the window.
	ParityYear *int `json:"parity_year"`
	// ParityImmediate flags scenarios where electric is already at or below
	// diesel in the first year, in which case ParityYear is nil rather than
	// a misleading start year.
	ParityImmediate bool `json:"parity_immediate"`

	LCODElectric float64 `json:"lcod_electric"`
	LCODDiesel   float64 `json:"lcod_diesel"`

	Sensitivity []SensitivityRow `json:"sensitivity,omitempty"`
}
