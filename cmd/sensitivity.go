package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetcost/trucktco/config"
	"github.com/fleetcost/trucktco/core/sensitivity"
	"github.com/fleetcost/trucktco/core/tco"
	"github.com/fleetcost/trucktco/infra/logger"
	"github.com/fleetcost/trucktco/pkg/export"
)

var (
	sweepScenarioPath string
	sweepVariation    float64
	sweepParams       []string
)

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Sweep scenario parameters and report the cost-gap deltas",
	RunE:  runSensitivity,
}

func init() {
	sensitivityCmd.Flags().StringVarP(&sweepScenarioPath, "scenario", "s", "", "scenario file (yaml or json)")
	sensitivityCmd.Flags().Float64Var(&sweepVariation, "variation", 0, "relative swing per direction (default from config)")
	sensitivityCmd.Flags().StringSliceVar(&sweepParams, "params", nil, "parameters to sweep (default: all)")
	_ = sensitivityCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(sensitivityCmd)
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("sensitivity-command")

	s, err := config.LoadScenario(sweepScenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	variation := sweepVariation
	if variation == 0 {
		variation = cfg.Sensitivity.Variation
	}
	params := sweepParams
	if len(params) == 0 {
		params = cfg.Sensitivity.Parameters
	}

	rows, err := sensitivity.NewWithLogger(tco.NewWithLogger(log), log).
		Analyze(s, params, variation)
	if err != nil {
		return err
	}
	return export.WriteSensitivityCSV(cmd.OutOrStdout(), rows)
}
