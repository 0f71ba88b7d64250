// Package compare exposes the comparison engine over HTTP for the UI layer.
package compare

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fleetcost/trucktco/core/logger"
	"github.com/fleetcost/trucktco/core/metrics"
	"github.com/fleetcost/trucktco/core/scenario"
	"github.com/fleetcost/trucktco/core/sensitivity"
	"github.com/fleetcost/trucktco/core/tco"
)

// Calculator is the engine surface the handler needs; both the plain and the
// cached calculator satisfy it.
type Calculator interface {
	Calculate(s scenario.Scenario) (tco.Result, error)
}

// NewCalculateHandler returns an HTTP handler running a comparison via
// POST /api/tco/calculate. The request body is a scenario in its JSON form;
// the ?sensitivity=true query attaches a default parameter sweep to the
// result. Every successful run is recorded on the sink.
func NewCalculateHandler(calc Calculator, analyzer *sensitivity.Analyzer, sink metrics.ResultSink, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var s scenario.Scenario
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid scenario payload: "+err.Error())
			return
		}

		started := time.Now()
		res, err := calc.Calculate(s)
		if err != nil {
			status := http.StatusInternalServerError
			var verr *scenario.ValidationError
			if errors.As(err, &verr) {
				status = http.StatusBadRequest
			}
			log.Warnf("calculate %q failed: %v", s.Name, err)
			writeError(w, status, err.Error())
			return
		}
		elapsed := time.Since(started)

		if r.URL.Query().Get("sensitivity") == "true" && analyzer != nil {
			rows, err := analyzer.Analyze(s, nil, 0)
			if err != nil {
				log.Warnf("sensitivity for %q failed: %v", s.Name, err)
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			res.Sensitivity = rows
		}

		if err := recordRun(sink, uuid.NewString(), res, elapsed); err != nil {
			log.Warnf("record run for %q: %v", s.Name, err)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// recordRun pushes the finished run, and its sweep when present, onto the
// sink.
func recordRun(sink metrics.ResultSink, runID string, res tco.Result, elapsed time.Duration) error {
	rec := metrics.RunRecord{
		RunID:        runID,
		Scenario:     res.ScenarioName,
		StartYear:    res.StartYear,
		EndYear:      res.EndYear,
		ElectricTCO:  res.ElectricTotalTCO,
		DieselTCO:    res.DieselTotalTCO,
		LCODElectric: res.LCODElectric,
		LCODDiesel:   res.LCODDiesel,
		Parity:       metrics.ParityLabel(res),
		Duration:     elapsed,
		Time:         time.Now().UTC(),
	}
	if res.ParityYear != nil {
		rec.ParityYear = *res.ParityYear
	}
	if err := sink.RecordRun(rec); err != nil {
		return err
	}
	if len(res.Sensitivity) > 0 {
		if rc, ok := sink.(metrics.SensitivityRecorder); ok {
			return rc.RecordSensitivity(runID, res.ScenarioName, res.Sensitivity)
		}
	}
	return nil
}

// NewParametersHandler lists the parameters a sensitivity sweep accepts via
// GET /api/tco/parameters.
func NewParametersHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(sensitivity.DefaultParameters()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// NewHealthHandler reports liveness via GET /healthz.
func NewHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

// NewMux wires every handler onto a fresh ServeMux.
func NewMux(calc Calculator, analyzer *sensitivity.Analyzer, sink metrics.ResultSink, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/tco/calculate", NewCalculateHandler(calc, analyzer, sink, log))
	mux.Handle("/api/tco/parameters", NewParametersHandler())
	mux.Handle("/healthz", NewHealthHandler())
	return mux
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
