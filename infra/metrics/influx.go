package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/fleetcost/trucktco/core/metrics"
	"github.com/fleetcost/trucktco/core/tco"
	"github.com/fleetcost/trucktco/infra/logger"
)

// InfluxSink writes run records to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.ResultSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run record as a single measurement point.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("tco_run").
		AddTag("run_id", rec.RunID).
		AddTag("scenario", rec.Scenario).
		AddTag("parity", rec.Parity).
		AddField("start_year", rec.StartYear).
		AddField("end_year", rec.EndYear).
		AddField("electric_total", round3(rec.ElectricTCO)).
		AddField("diesel_total", round3(rec.DieselTCO)).
		AddField("lcod_electric", round3(rec.LCODElectric)).
		AddField("lcod_diesel", round3(rec.LCODDiesel)).
		AddField("duration_ms", rec.Duration.Milliseconds()).
		SetTime(rec.Time)
	if rec.ParityYear != 0 {
		p.AddField("parity_year", rec.ParityYear)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSensitivity writes one point per sweep row so tornado charts can be
// rebuilt from the bucket.
func (s *InfluxSink) RecordSensitivity(runID, scenarioName string, rows []tco.SensitivityRow) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	now := time.Now()
	for _, row := range rows {
		p := write.NewPointWithMeasurement("tco_sensitivity").
			AddTag("run_id", runID).
			AddTag("scenario", scenarioName).
			AddTag("parameter", row.Parameter).
			AddField("low_delta", round3(row.LowDelta)).
			AddField("high_delta", round3(row.HighDelta)).
			SetTime(now)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
