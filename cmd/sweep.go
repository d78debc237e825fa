package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/codedsim/sim"
	"github.com/inference-sim/codedsim/sim/solver"
	"github.com/inference-sim/codedsim/sim/trace"
)

var (
	sweepConfigPath string // Sweep YAML file
	sweepPreset     string // Built-in parameter list
)

// sweepCmd simulates a list of parameter sets with one solver
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Simulate a parameter sweep from a YAML file or a preset",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := sweepConfigFromFlags()
		if err != nil {
			logrus.Fatalf("Invalid sweep: %v", err)
		}
		ctx, stop := signalContext()
		defer stop()
		collector, shutdown := startMetrics(metricsAddr)
		defer shutdown()

		st := searchTrace()
		rs, err := runSweep(ctx, cfg, st, collector)
		if rs == nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		if perr := printSweep(os.Stdout, rs); perr != nil {
			logrus.Errorf("writing report: %v", perr)
		}
		printTrace(os.Stdout, st)
		if errors.Is(err, context.Canceled) {
			logrus.Warnf("Sweep interrupted after %d of %d entries", len(rs.Results), len(cfg.Parameters))
			os.Exit(130)
		}
	},
}

// sweepConfigFromFlags loads --config, or builds a config from --preset and
// the shared flags.
func sweepConfigFromFlags() (*SweepConfig, error) {
	switch {
	case sweepConfigPath != "" && sweepPreset != "":
		return nil, fmt.Errorf("--config and --preset are mutually exclusive")
	case sweepConfigPath != "":
		return LoadSweepConfig(sweepConfigPath)
	case sweepPreset != "":
		params, err := PresetParameters(sweepPreset)
		if err != nil {
			return nil, err
		}
		return presetSweepConfig(params), nil
	}
	return nil, fmt.Errorf("one of --config or --preset is required")
}

// presetSweepConfig applies the shared flags to a preset parameter list.
func presetSweepConfig(params []sim.Parameters) *SweepConfig {
	cfg := &SweepConfig{
		Solver:     solverName,
		Assignment: assignmentKind,
		Seed:       seed,
		Trials:     numTrials,
		Runs:       numRuns,
		Workers:    workers,
		ResultsDir: resultsDir,
		Parameters: params,
		Heuristic: HeuristicConfig{
			MaxIterations:    maxIterations,
			MaxStale:         maxStale,
			Scenarios:        scenarios,
			HybridIterations: hybridIterations,
			RefineRounds:     refineRounds,
			RefineBudget:     refineBudget,
		},
	}
	if numStragglers >= 0 {
		n := numStragglers
		cfg.Stragglers = &n
	}
	return cfg
}

// runSweep simulates every entry of cfg. The returned set is nil only when
// the sweep could not start.
func runSweep(ctx context.Context, cfg *SweepConfig, st *trace.SearchTrace, collector sim.MetricsCollector) (*sim.ResultSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := solver.New(cfg.Solver, cfg.SolverConfig(st))
	if err != nil {
		return nil, err
	}
	simulator := sim.NewSimulator(cfg.SimulatorConfig(), s, openStore(cfg.ResultsDir), sim.WithMetrics(collector))
	logrus.Infof("Sweeping %d parameter sets with %s (%d trials each)", len(cfg.Parameters), s.Name(), cfg.Trials)
	return simulator.SimulateParameterList(ctx, cfg.Parameters)
}

func init() {
	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "", "Path to sweep YAML file")
	sweepCmd.Flags().StringVar(&sweepPreset, "preset", "", "Built-in sweep (partitioning, load-delay)")

	rootCmd.AddCommand(sweepCmd)
}
