package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fleetcost/trucktco/config"
	coremetrics "github.com/fleetcost/trucktco/core/metrics"
	"github.com/fleetcost/trucktco/core/scenario"
	"github.com/fleetcost/trucktco/core/sensitivity"
	"github.com/fleetcost/trucktco/core/tco"
	"github.com/fleetcost/trucktco/infra/logger"
	inframetrics "github.com/fleetcost/trucktco/infra/metrics"
	"github.com/fleetcost/trucktco/infra/mqtt"
	"github.com/fleetcost/trucktco/pkg/export"
)

var (
	scenarioPath    string
	outputFormat    string
	outputPath      string
	withSensitivity bool
	publishResult   bool
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Run one comparison and print the result",
	RunE:  runCalculate,
}

func init() {
	calculateCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file (yaml or json)")
	calculateCmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or csv")
	calculateCmd.Flags().StringVar(&outputPath, "out", "", "write output to file instead of stdout")
	calculateCmd.Flags().BoolVar(&withSensitivity, "sensitivity", false, "attach a parameter sweep to the result")
	calculateCmd.Flags().BoolVar(&publishResult, "publish", false, "publish the result to the configured MQTT broker")
	_ = calculateCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(calculateCmd)
}

func runCalculate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("calculate-command")

	s, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	calc := tco.NewWithLogger(log)
	engine := newEngine(cfg, calc)

	started := time.Now()
	res, err := engine.Calculate(s)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	if withSensitivity {
		rows, err := sensitivity.NewWithLogger(calc, log).
			Analyze(s, cfg.Sensitivity.Parameters, cfg.Sensitivity.Variation)
		if err != nil {
			return err
		}
		res.Sensitivity = rows
	}

	runID := uuid.NewString()
	if publishResult && cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("mqtt publisher: %w", err)
		}
		defer pub.Close()
		if runID, err = pub.PublishResult(res); err != nil {
			return err
		}
	}

	if err := recordRun(cfg.Metrics, runID, res, elapsed); err != nil {
		log.Warnf("record run: %v", err)
	}

	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}
	defer closeOut()

	switch outputFormat {
	case "json":
		return export.WriteJSON(out, res)
	case "csv":
		return export.WriteCSV(out, res)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}

// newEngine wraps the calculator with the memoization layer when enabled.
func newEngine(cfg *config.Config, calc *tco.Calculator) interface {
	Calculate(scenario.Scenario) (tco.Result, error)
} {
	if cfg.Cache.Enabled {
		return tco.NewCached(calc, cfg.Cache.MaxEntries)
	}
	return calc
}

func recordRun(cfg coremetrics.Config, runID string, res tco.Result, elapsed time.Duration) error {
	sink, err := inframetrics.NewSink(cfg)
	if err != nil {
		return err
	}
	defer inframetrics.CloseSink(sink)
	rec := coremetrics.RunRecord{
		RunID:        runID,
		Scenario:     res.ScenarioName,
		StartYear:    res.StartYear,
		EndYear:      res.EndYear,
		ElectricTCO:  res.ElectricTotalTCO,
		DieselTCO:    res.DieselTotalTCO,
		LCODElectric: res.LCODElectric,
		LCODDiesel:   res.LCODDiesel,
		Parity:       coremetrics.ParityLabel(res),
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
		if rc, ok := sink.(coremetrics.SensitivityRecorder); ok {
			return rc.RecordSensitivity(runID, res.ScenarioName, res.Sensitivity)
		}
	}
	return nil
}

func openOutput() (io.Writer, func(), error) {
	if outputPath == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
