package metrics

import (
	"testing"

	coremetrics "github.com/fleetcost/trucktco/core/metrics"
	"github.com/fleetcost/trucktco/core/tco"
)

type recordSink struct {
	runs   int
	sweeps int
}

func (r *recordSink) RecordRun(coremetrics.RunRecord) error {
	r.runs++
	return nil
}

func (r *recordSink) RecordSensitivity(string, string, []tco.SensitivityRow) error {
	r.sweeps++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, coremetrics.NopSink{})
	if err := m.RecordRun(coremetrics.RunRecord{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordSensitivity("run-1", "urban-delivery", nil); err != nil {
		t.Fatalf("record sensitivity: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 || s1.sweeps != 1 || s2.sweeps != 1 {
		t.Fatalf("records not forwarded: %+v %+v", s1, s2)
	}
}

type closableSink struct {
	recordSink
	closed int
}

func (c *closableSink) Close() { c.closed++ }

func TestCloseSinkForwardsThroughMultiSink(t *testing.T) {
	c1 := &closableSink{}
	c2 := &closableSink{}
	m := NewMultiSink(c1, coremetrics.NopSink{}, c2)
	CloseSink(m)
	if c1.closed != 1 || c2.closed != 1 {
		t.Fatalf("close not forwarded: %d %d", c1.closed, c2.closed)
	}
}

func TestCloseSinkIgnoresPlainSinks(t *testing.T) {
	CloseSink(coremetrics.NopSink{})
	CloseSink(&recordSink{})
}

func TestNewSinkDefaultsToNop(t *testing.T) {
	sink, err := NewSink(coremetrics.Config{})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", sink)
	}
}
