// Package tco assembles annual cost tables for a battery-electric and a
// diesel truck under one scenario, discounts them, and derives the parity
// year and the levelized cost of driving.
package tco

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/fleetcost/trucktco/core/logger"
	"github.com/fleetcost/trucktco/core/model"
	"github.com/fleetcost/trucktco/core/scenario"
)

// Calculator runs the stateless TCO pipeline. The zero value is not usable;
// construct with New.
type Calculator struct {
	log logger.Logger
}

// New returns a silent Calculator.
func New() *Calculator { return &Calculator{log: logger.Nop{}} }

// NewWithLogger returns a Calculator that reports progress on log.
func NewWithLogger(log logger.Logger) *Calculator {
	if log == nil {
		log = logger.Nop{}
	}
	return &Calculator{log: log}
}

// Calculate runs the full pipeline for one scenario: build both trucks,
// assemble every cost component per year, discount, then derive totals,
// parity year and LCOD. Any data error aborts the call; no partial result is
// returned. Calls are pure, so concurrent callers need no coordination.
func (c *Calculator) Calculate(s scenario.Scenario) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	c.log.Debugf("calculating scenario %q over %d years", s.Name, s.AnalysisYears())

	ev := s.Electric
	dv := s.Diesel

	electricAnnual, err := c.buildTable(&s, ev, batteryReplacementIdx(&s, ev))
	if err != nil {
		return Result{}, err
	}
	dieselAnnual, err := c.buildTable(&s, dv, -1)
	if err != nil {
		return Result{}, err
	}

	electricDisc := discountTable(electricAnnual, s.DiscountRate)
	dieselDisc := discountTable(dieselAnnual, s.DiscountRate)

	res := Result{
		ScenarioName:       s.Name,
		StartYear:          s.StartYear,
		EndYear:            s.EndYear,
		ElectricAnnual:     electricAnnual,
		DieselAnnual:       dieselAnnual,
		ElectricDiscounted: electricDisc,
		DieselDiscounted:   dieselDisc,
		ElectricTotalTCO:   electricDisc.TotalSum(),
		DieselTotalTCO:     dieselDisc.TotalSum(),
	}

	res.ParityYear, res.ParityImmediate = parityYear(
		s.StartYear, electricDisc.CumulativeTotals(), dieselDisc.CumulativeTotals())

	discountedKm := discountedDistance(s)
	res.LCODElectric = lcod(res.ElectricTotalTCO, discountedKm)
	res.LCODDiesel = lcod(res.DieselTotalTCO, discountedKm)

	return res, nil
}

func (c *Calculator) buildTable(s *scenario.Scenario, truck model.Truck, replacementIdx int) (CostTable, error) {
	rc := &runCtx{s: s, truck: truck, replacementIdx: replacementIdx}
	table := CostTable{
		Vehicle: truck.Kind().String(),
		Rows:    make([]AnnualCosts, 0, s.AnalysisYears()),
	}
	for idx, year := range s.Years() {
		row := AnnualCosts{Year: year, Costs: make(map[Component]float64, len(ComponentOrder))}
		for _, comp := range ComponentOrder {
			cost, err := costFuncs[comp](rc, idx)
			if err != nil {
				return CostTable{}, &CalculationError{
					Vehicle:   table.Vehicle,
					Component: comp,
					Year:      year,
					Err:       err,
				}
			}
			row.Costs[comp] = cost
			row.Total += cost
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// discountTable applies 1/(1+rate)^(year-start) to every component column
// and the total, returning a new table.
func discountTable(t CostTable, rate float64) CostTable {
	out := CostTable{Vehicle: t.Vehicle, Rows: make([]AnnualCosts, len(t.Rows))}
	for i, row := range t.Rows {
		factor := discountFactor(rate, i)
		disc := AnnualCosts{Year: row.Year, Costs: make(map[Component]float64, len(row.Costs))}
		for comp, cost := range row.Costs {
			disc.Costs[comp] = cost * factor
		}
		disc.Total = row.Total * factor
		out.Rows[i] = disc
	}
	return out
}

func discountFactor(rate float64, yearIdx int) float64 {
	return 1 / math.Pow(1+rate, float64(yearIdx))
}

// parityYear scans cumulative discounted totals for the first year electric
// is at or below diesel. When electric already starts at or below diesel the
// comparison is flagged immediate and no parity year is reported.
func parityYear(startYear int, electricCum, dieselCum []float64) (*int, bool) {
	if len(electricCum) == 0 {
		return nil, false
	}
	if electricCum[0] <= dieselCum[0] {
		return nil, true
	}
	for i := 1; i < len(electricCum); i++ {
		if electricCum[i] <= dieselCum[i] {
			year := startYear + i
			return &year, false
		}
	}
	return nil, false
}

// discountedDistance is the present-value-weighted total distance, using the
// same discount factors as the cost tables.
func discountedDistance(s scenario.Scenario) float64 {
	factors := make([]float64, s.AnalysisYears())
	for i := range factors {
		factors[i] = s.AnnualMileageKm * discountFactor(s.DiscountRate, i)
	}
	return floats.Sum(factors)
}

// lcod divides discounted cost by discounted distance. A zero-mileage
// scenario is degenerate but valid and yields 0 rather than dividing by zero.
func lcod(totalDiscounted, discountedKm float64) float64 {
	if discountedKm == 0 {
		return 0
	}
	return totalDiscounted / discountedKm
}
