// Package metrics provides the Prometheus and InfluxDB adapters behind the
// core ResultSink interface.
package metrics

import (
	coremetrics "github.com/fleetcost/trucktco/core/metrics"
)

// NewSink assembles the configured sinks. No sink enabled yields a NopSink,
// one yields it directly, several are fanned out through a MultiSink.
func NewSink(cfg coremetrics.Config) (coremetrics.ResultSink, error) {
	var sinks []coremetrics.ResultSink
	if cfg.PrometheusEnabled {
		prom, err := NewPromSink(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(
			cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
