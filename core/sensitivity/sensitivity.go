// Package sensitivity sweeps one scenario parameter at a time and reports
// how the discounted electric-minus-diesel gap reacts, producing the rows a
// tornado chart is drawn from.
package sensitivity

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fleetcost/trucktco/core/logger"
	"github.com/fleetcost/trucktco/core/scenario"
	"github.com/fleetcost/trucktco/core/tco"
)

// DefaultVariation is the relative swing applied in each direction when the
// caller does not ask for a specific one.
const DefaultVariation = 0.20

// Parameter names accepted by Analyze.
const (
	ParamAnnualMileage    = "annual_mileage"
	ParamDiscountRate     = "discount_rate"
	ParamElectricityPrice = "electricity_price"
	ParamDieselPrice      = "diesel_price"
	ParamBatteryPrice     = "battery_price"
)

// scalers maps a parameter name to the scenario modification that scales it
// by a factor. Every sweep varies exactly one of these, all else held equal.
var scalers = map[string]func(factor float64) scenario.Mod{
	ParamAnnualMileage:    scenario.ScaleAnnualMileage,
	ParamDiscountRate:     scenario.ScaleDiscountRate,
	ParamElectricityPrice: scenario.ScaleElectricityPrices,
	ParamDieselPrice:      scenario.ScaleDieselPrices,
	ParamBatteryPrice:     scenario.ScaleBatteryPrices,
}

// DefaultParameters returns the supported parameter names in stable order.
func DefaultParameters() []string {
	names := make([]string, 0, len(scalers))
	for name := range scalers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownParameterError reports a sweep request for a parameter the analyzer
// has no scaler for.
type UnknownParameterError struct {
	Parameter string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("sensitivity: unknown parameter %q", e.Parameter)
}

// Analyzer runs one-at-a-time parameter sweeps against a calculator.
type Analyzer struct {
	calc *tco.Calculator
	log  logger.Logger
}

// New returns a silent Analyzer using calc for every run.
func New(calc *tco.Calculator) *Analyzer {
	return &Analyzer{calc: calc, log: logger.Nop{}}
}

// NewWithLogger returns an Analyzer that reports each sweep on log.
func NewWithLogger(calc *tco.Calculator, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop{}
	}
	return &Analyzer{calc: calc, log: log}
}

// Analyze varies each named parameter by ±variation around base and records
// the change of the discounted electric-minus-diesel gap against the
// baseline run. Parameters sweep concurrently; rows come back in the order
// the parameters were requested, not in completion order. An empty params
// slice sweeps every supported parameter; variation <= 0 uses
// DefaultVariation.
func (a *Analyzer) Analyze(base scenario.Scenario, params []string, variation float64) ([]tco.SensitivityRow, error) {
	if len(params) == 0 {
		params = DefaultParameters()
	}
	if variation <= 0 {
		variation = DefaultVariation
	}
	for _, name := range params {
		if _, ok := scalers[name]; !ok {
			return nil, &UnknownParameterError{Parameter: name}
		}
	}

	baseline, err := a.calc.Calculate(base)
	if err != nil {
		return nil, fmt.Errorf("sensitivity baseline: %w", err)
	}
	baseGap := baseline.ElectricTotalTCO - baseline.DieselTotalTCO

	rows := make([]tco.SensitivityRow, len(params))
	errs := make([]error, len(params))

	var wg sync.WaitGroup
	for i, name := range params {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			low, err := a.gapDelta(base, name, 1-variation, baseGap)
			if err != nil {
				errs[i] = err
				return
			}
			high, err := a.gapDelta(base, name, 1+variation, baseGap)
			if err != nil {
				errs[i] = err
				return
			}
			rows[i] = tco.SensitivityRow{Parameter: name, LowDelta: low, HighDelta: high}
			a.log.Debugf("sensitivity %s: low %.2f high %.2f", name, low, high)
		}(i, name)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (a *Analyzer) gapDelta(base scenario.Scenario, name string, factor, baseGap float64) (float64, error) {
	mod, err := base.WithModifications(
		scenario.SetName(fmt.Sprintf("%s/%s@%.2f", base.Name, name, factor)),
		scalers[name](factor),
	)
	if err != nil {
		return 0, fmt.Errorf("sensitivity %s x%.2f: %w", name, factor, err)
	}
	res, err := a.calc.Calculate(mod)
	if err != nil {
		return 0, fmt.Errorf("sensitivity %s x%.2f: %w", name, factor, err)
	}
	return (res.ElectricTotalTCO - res.DieselTotalTCO) - baseGap, nil
}
