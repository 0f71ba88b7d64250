package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/fleetcost/trucktco/core/metrics"
)

// PromSink records comparison runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	total    *prometheus.GaugeVec
	lcod     *prometheus.GaugeVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using
// cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.ResultSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.ResultSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tco_runs_total",
		Help: "Total number of completed comparison runs",
	}, []string{"scenario", "parity"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tco_run_duration_seconds",
		Help:    "Wall time of one comparison run",
		Buckets: prometheus.DefBuckets,
	})
	total := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tco_total_cost",
		Help: "Discounted total cost of ownership of the last run",
	}, []string{"scenario", "vehicle"})
	lcod := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tco_levelized_cost_per_km",
		Help: "Levelized cost of driving of the last run",
	}, []string{"scenario", "vehicle"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(total); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			total = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(lcod); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			lcod = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, duration: duration, total: total, lcod: lcod}, nil
}

// RecordRun increments the run counter and snapshots the run's headline
// numbers.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.WithLabelValues(rec.Scenario, rec.Parity).Inc()
	s.duration.Observe(rec.Duration.Seconds())
	s.total.WithLabelValues(rec.Scenario, "electric").Set(rec.ElectricTCO)
	s.total.WithLabelValues(rec.Scenario, "diesel").Set(rec.DieselTCO)
	s.lcod.WithLabelValues(rec.Scenario, "electric").Set(rec.LCODElectric)
	s.lcod.WithLabelValues(rec.Scenario, "diesel").Set(rec.LCODDiesel)
	return nil
}
