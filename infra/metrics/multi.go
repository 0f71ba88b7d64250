package metrics

import (
	coremetrics "github.com/fleetcost/trucktco/core/metrics"
	"github.com/fleetcost/trucktco/core/tco"
)

// MultiSink fans run records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.ResultSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.ResultSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(rec coremetrics.RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordSensitivity forwards sweep rows to the sinks that accept them.
func (m *MultiSink) RecordSensitivity(runID, scenarioName string, rows []tco.SensitivityRow) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SensitivityRecorder); ok {
			if err := rec.RecordSensitivity(runID, scenarioName, rows); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases every sink that holds resources, such as the Influx client.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		CloseSink(s)
	}
}

// CloseSink closes a sink when it has something to release.
func CloseSink(s coremetrics.ResultSink) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}
