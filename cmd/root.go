package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/codedsim/sim"
	_ "github.com/inference-sim/codedsim/sim/assignment"
	"github.com/inference-sim/codedsim/sim/metrics"
	"github.com/inference-sim/codedsim/sim/solver"
	"github.com/inference-sim/codedsim/sim/store"
	"github.com/inference-sim/codedsim/sim/trace"
)

var (
	// CLI flags shared by every command
	logLevel       string // Log verbosity level
	seed           int64  // Master seed for solver draws and trials
	resultsDir     string // Root of the result store ("" disables caching)
	solverName     string // Solver used by simulate, sweep and solve
	assignmentKind string // Assignment implementation (dense, sparse)
	numTrials      int    // Monte-Carlo trials per run
	numStragglers  int    // Servers left out of every trial (-1 selects K - q)
	numRuns        int    // Independent solver draws per entry
	workers        int    // Trial workers (0 selects GOMAXPROCS)
	metricsAddr    string // Address serving Prometheus metrics ("" disables)
	traceLevel     string // Heuristic move trace level (none, moves)

	// Heuristic search knobs
	maxIterations    int // Candidate moves per heuristic search
	maxStale         int // Non-improving candidates before the search stops
	scenarios        int // Sampled finished-server sets in the objective
	hybridIterations int // Refinement budget of the hybrid solver
	refineRounds     int // Extra refine-then-evaluate rounds per run
	refineBudget     int // Candidate moves per refinement round

	// Single-instance parameters for simulate and solve
	rowsPerBatch      int     // Coded rows per batch
	numServers        int     // K
	decodingGroupSize int     // q
	numOutputs        int     // N
	serverStorage     float64 // mu
	numPartitions     int     // T
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "codedsim",
	Short: "Monte-Carlo simulator for partitioned coded computation with stragglers",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s (valid: none, moves)", traceLevel)
		}
		if !sim.ValidAssignmentKinds[assignmentKind] {
			logrus.Fatalf("Invalid assignment kind: %s (valid: dense, sparse)", assignmentKind)
		}
	},
}

// simulateCmd evaluates one parameter set given on the command line
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate one parameter set",
	Run: func(cmd *cobra.Command, args []string) {
		p, err := flagParameters()
		if err != nil {
			logrus.Fatalf("Invalid parameters: %v", err)
		}
		ctx, stop := signalContext()
		defer stop()
		collector, shutdown := startMetrics(metricsAddr)
		defer shutdown()

		st := searchTrace()
		s := newSimulator(simulatorConfig(), mustSolver(solverName, st), openStore(resultsDir), collector)

		startTime := time.Now()
		res, err := s.Simulate(ctx, p)
		if err != nil {
			logrus.Fatalf("Simulation of %s failed: %v", p.Identifier(), err)
		}
		printResult(os.Stdout, res)
		printTrace(os.Stdout, st)
		logrus.Infof("Simulation complete in %.2fs.", time.Since(startTime).Seconds())
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// flagParameters builds Parameters from the single-instance flags.
func flagParameters() (sim.Parameters, error) {
	return sim.NewParameters(rowsPerBatch, numServers, decodingGroupSize, numOutputs, serverStorage, numPartitions)
}

func solverConfig(st *trace.SearchTrace) sim.SolverConfig {
	return sim.SolverConfig{
		AssignmentKind:   assignmentKind,
		MaxIterations:    maxIterations,
		MaxStale:         maxStale,
		Scenarios:        scenarios,
		HybridIterations: hybridIterations,
		Trace:            st,
	}
}

func simulatorConfig() sim.SimulatorConfig {
	return sim.SimulatorConfig{
		NumTrials:      numTrials,
		NumStragglers:  numStragglers,
		NumRuns:        numRuns,
		Workers:        workers,
		Seed:           seed,
		RefineRounds:   refineRounds,
		RefineBudget:   refineBudget,
		Persist:        resultsDir != "",
		AssignmentKind: assignmentKind,
	}
}

// mustSolver constructs the named solver or exits.
func mustSolver(name string, st *trace.SearchTrace) sim.Solver {
	s, err := solver.New(name, solverConfig(st))
	if err != nil {
		logrus.Fatalf("Invalid solver: %v (valid: random, heuristic, hybrid)", err)
	}
	return s
}

// searchTrace returns a trace for --trace-level, or nil when tracing is off.
func searchTrace() *trace.SearchTrace {
	if trace.TraceLevel(traceLevel) != trace.TraceLevelMoves {
		return nil
	}
	return trace.NewSearchTrace(trace.TraceConfig{Level: trace.TraceLevelMoves})
}

// openStore returns the result store under dir, or nil when dir is empty.
func openStore(dir string) sim.ResultStore {
	if dir == "" {
		return nil
	}
	return store.New(dir)
}

func newSimulator(cfg sim.SimulatorConfig, s sim.Solver, rs sim.ResultStore, collector sim.MetricsCollector) *sim.Simulator {
	if cfg.NumTrials <= 0 {
		logrus.Fatalf("--trials must be positive, got %d", cfg.NumTrials)
	}
	return sim.NewSimulator(cfg, s, rs, sim.WithMetrics(collector))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM. A sweep
// stops at the next entry boundary; finished entries stay persisted.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// startMetrics serves Prometheus metrics on addr while a command runs. An
// empty addr returns a no-op collector.
func startMetrics(addr string) (sim.MetricsCollector, func()) {
	if addr == "" {
		return sim.NopMetrics{}, func() {}
	}
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg, "")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("metrics server on %s: %v", addr, err)
		}
	}()
	logrus.Infof("Serving metrics on http://%s/metrics", addr)
	return collector, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// init sets up CLI flags and subcommands
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	pf.Int64Var(&seed, "seed", 42, "Master seed for solver draws and trials")
	pf.StringVar(&resultsDir, "results-dir", "results", "Directory for cached assignments and result tables (empty disables)")
	pf.StringVar(&solverName, "solver", "random", "Solver (random, heuristic, hybrid)")
	pf.StringVar(&assignmentKind, "assignment", sim.DefaultAssignmentKind, "Assignment implementation (dense, sparse)")
	pf.IntVar(&numTrials, "trials", 1000, "Monte-Carlo trials per run")
	pf.IntVar(&numStragglers, "stragglers", sim.DefaultStragglers, "Servers left out of every trial (-1 selects K - q)")
	pf.IntVar(&numRuns, "runs", 1, "Independent solver draws per parameter set")
	pf.IntVar(&workers, "workers", 0, "Trial workers (0 selects GOMAXPROCS)")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running (e.g. :9090)")
	pf.StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Heuristic move trace level (none, moves)")

	pf.IntVar(&maxIterations, "max-iterations", solver.DefaultMaxIterations, "Candidate moves per heuristic search")
	pf.IntVar(&maxStale, "max-stale", solver.DefaultMaxStale, "Consecutive non-improving candidates before a search stops")
	pf.IntVar(&scenarios, "scenarios", solver.DefaultScenarios, "Sampled finished-server sets in the heuristic objective")
	pf.IntVar(&hybridIterations, "hybrid-iterations", solver.DefaultHybridIterations, "Refinement budget of the hybrid solver")
	pf.IntVar(&refineRounds, "refine-rounds", 0, "Extra refine-then-evaluate rounds per run (heuristic and hybrid)")
	pf.IntVar(&refineBudget, "refine-budget", 0, "Candidate moves per refinement round (0 selects the solver default)")

	for _, c := range []*cobra.Command{simulateCmd, solveCmd} {
		c.Flags().IntVar(&rowsPerBatch, "rows-per-batch", 250, "Coded rows per batch")
		c.Flags().IntVar(&numServers, "servers", 9, "Number of servers (K)")
		c.Flags().IntVar(&decodingGroupSize, "q", 6, "Decoding group size (q)")
		c.Flags().IntVar(&numOutputs, "outputs", 6, "Number of outputs (N)")
		c.Flags().Float64Var(&serverStorage, "mu", 1.0/3, "Fraction of coded rows stored per server (mu)")
		c.Flags().IntVar(&numPartitions, "partitions", 10, "Number of partitions (T)")
	}

	// Attach subcommands to `root`
	rootCmd.AddCommand(simulateCmd)
}

// describe renders a one-line failure count for a result set.
func describe(rs *sim.ResultSet) string {
	failed := len(rs.Failed())
	return fmt.Sprintf("%s: %d of %d entries succeeded", rs.Name, len(rs.Results)-failed, len(rs.Results))
}
