// Package metrics defines the observability boundary of the comparison
// engine: run records emitted after each calculation and the sink interfaces
// the infra adapters implement.
package metrics

import (
	"time"

	"github.com/fleetcost/trucktco/core/tco"
)

// Parity outcome labels attached to run records.
const (
	ParityNone      = "none"
	ParityImmediate = "immediate"
	ParityReached   = "reached"
)

// RunRecord captures one completed comparison run for observability. The
// engine itself never creates these; the caller assembles one from the
// Result after Calculate returns, keeping the calculation path pure.
type RunRecord struct {
	RunID        string
	Scenario     string
	StartYear    int
	EndYear      int
	ElectricTCO  float64
	DieselTCO    float64
	LCODElectric float64
	LCODDiesel   float64
	Parity       string
	ParityYear   int
	Duration     time.Duration
	Time         time.Time
}

// ParityLabel derives the run record label from a result.
func ParityLabel(res tco.Result) string {
	switch {
	case res.ParityImmediate:
		return ParityImmediate
	case res.ParityYear != nil:
		return ParityReached
	default:
		return ParityNone
	}
}

// ResultSink records completed comparison runs.
type ResultSink interface {
	RecordRun(rec RunRecord) error
}

// SensitivityRecorder records the sweep rows attached to a run.
type SensitivityRecorder interface {
	RecordSensitivity(runID, scenarioName string, rows []tco.SensitivityRow) error
}

// NopSink implements ResultSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error { return nil }

func (NopSink) RecordSensitivity(string, string, []tco.SensitivityRow) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`

	InfluxEnabled bool   `json:"influx_enabled"`
	InfluxURL     string `json:"influx_url"`
	InfluxToken   string `json:"influx_token"`
	InfluxOrg     string `json:"influx_org"`
	InfluxBucket  string `json:"influx_bucket"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}
