package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/codedsim/sim"
	"github.com/inference-sim/codedsim/sim/report"
	"github.com/inference-sim/codedsim/sim/store"
)

var (
	compareSolvers []string // Solvers to compare
	compareSkipRun bool     // Report saved results only
	compareConfig  string   // Sweep YAML providing the parameter list
	comparePreset  string   // Built-in parameter list
)

// compareCmd runs several solvers over one parameter list and prints their
// normalised load and delay side by side
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare solvers over a parameter sweep",
	Run: func(cmd *cobra.Command, args []string) {
		sweepConfigPath, sweepPreset = compareConfig, comparePreset
		cfg, err := sweepConfigFromFlags()
		if err != nil {
			logrus.Fatalf("Invalid comparison: %v", err)
		}
		if cfg.ResultsDir == "" {
			logrus.Fatalf("compare reads saved results: --results-dir must not be empty")
		}
		ctx, stop := signalContext()
		defer stop()
		collector, shutdown := startMetrics(metricsAddr)
		defer shutdown()

		names, err := runComparison(ctx, cfg, compareSolvers, !compareSkipRun, collector)
		if err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}
		series, err := report.Collect(store.New(cfg.ResultsDir), names, cfg.Parameters)
		if err != nil {
			logrus.Fatalf("Collecting results failed: %v", err)
		}
		if err := report.Write(os.Stdout, series); err != nil {
			logrus.Fatalf("Writing report failed: %v", err)
		}
	},
}

// runComparison sweeps cfg once per solver when run is set and returns the
// solvers' result directory names. Per-entry failures are logged by the
// sweep and do not stop the comparison; cancellation does.
func runComparison(ctx context.Context, cfg *SweepConfig, solvers []string, run bool, collector sim.MetricsCollector) ([]string, error) {
	names := make([]string, 0, len(solvers))
	for _, name := range solvers {
		name = strings.TrimSpace(name)
		c := *cfg
		c.Solver = name
		if err := c.Validate(); err != nil {
			return nil, err
		}
		s, err := sim.NewSolver(name, c.SolverConfig(nil))
		if err != nil {
			return nil, err
		}
		names = append(names, s.Name())
		if !run {
			continue
		}
		rs, err := runSweep(ctx, &c, nil, collector)
		if rs == nil {
			return nil, err
		}
		logrus.Info(describe(rs))
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	return names, nil
}

func init() {
	compareCmd.Flags().StringSliceVar(&compareSolvers, "solvers", []string{"random", "heuristic"}, "Comma-separated solvers to compare")
	compareCmd.Flags().BoolVar(&compareSkipRun, "no-run", false, "Report saved results without simulating")
	compareCmd.Flags().StringVar(&compareConfig, "config", "", "Path to sweep YAML file providing the parameter list")
	compareCmd.Flags().StringVar(&comparePreset, "preset", "", "Built-in parameter list (partitioning, load-delay)")

	rootCmd.AddCommand(compareCmd)
}
