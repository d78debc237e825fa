// sim/simulator.go
package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// DefaultStragglers selects K - q stragglers per trial.
const DefaultStragglers = -1

// SimulatorConfig groups Monte-Carlo evaluation parameters.
type SimulatorConfig struct {
	NumTrials      int    // trials per run (must be > 0)
	NumStragglers  int    // servers left out of every trial; DefaultStragglers selects K - q
	NumRuns        int    // independent solver draws per entry (default 1)
	Workers        int    // trial workers (default GOMAXPROCS)
	Seed           int64  // master seed for solver draws and trials
	RefineRounds   int    // extra refine-then-evaluate rounds for solvers implementing Refiner
	RefineBudget   int    // refinement budget per round
	Persist        bool   // write per-trial tables to the store
	AssignmentKind string // assignment implementation for loaded assignments
}

// Option configures optional Simulator collaborators.
type Option func(*Simulator)

// WithScorer replaces the DefaultScorer.
func WithScorer(sc Scorer) Option {
	return func(sim *Simulator) { sim.scorer = sc }
}

// WithMetrics sets the metrics collector. Defaults to NopMetrics.
func WithMetrics(m MetricsCollector) Option {
	return func(sim *Simulator) { sim.metrics = m }
}

// Simulator evaluates assignments produced by one Solver under random
// straggler scenarios. A nil store disables caching and persistence.
type Simulator struct {
	cfg     SimulatorConfig
	solver  Solver
	store   ResultStore
	scorer  Scorer
	metrics MetricsCollector
}

// NewSimulator creates a Simulator. Panics if solver is nil or NumTrials is
// not positive.
func NewSimulator(cfg SimulatorConfig, solver Solver, store ResultStore, opts ...Option) *Simulator {
	if solver == nil {
		panic("NewSimulator: solver must not be nil")
	}
	if cfg.NumTrials <= 0 {
		panic(fmt.Sprintf("NewSimulator: NumTrials must be > 0, got %d", cfg.NumTrials))
	}
	if cfg.NumRuns <= 0 {
		cfg.NumRuns = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	sim := &Simulator{
		cfg:     cfg,
		solver:  solver,
		store:   store,
		scorer:  DefaultScorer{},
		metrics: NopMetrics{},
	}
	for _, opt := range opts {
		opt(sim)
	}
	return sim
}

// Stragglers returns the number of servers left out of every trial for p.
func (sim *Simulator) Stragglers(p Parameters) int {
	if sim.cfg.NumStragglers < 0 {
		return p.NumServers - p.DecodingGroupSize
	}
	return sim.cfg.NumStragglers
}

// AssignmentKey returns the store key of run r's assignment.
func AssignmentKey(identifier string, run, runs int) string {
	if runs <= 1 {
		return identifier
	}
	return fmt.Sprintf("%s_r%d", identifier, run)
}

// Simulate evaluates one Parameters entry: it obtains one assignment per
// run (cached or freshly solved), runs NumTrials trials against each, and
// summarises every reported trial.
func (sim *Simulator) Simulate(ctx context.Context, p Parameters) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	design, err := NewBatchDesign(p)
	if err != nil {
		return nil, err
	}
	stragglers := sim.Stragglers(p)
	if stragglers < 0 || stragglers >= p.NumServers {
		return nil, fmt.Errorf("%s: %d stragglers leave no finished server out of %d", p.Identifier(), stragglers, p.NumServers)
	}

	id := p.Identifier()
	rng := NewPartitionedRNG(NewSimulationKey(sim.cfg.Seed))
	samples := make([]TrialSample, 0, sim.cfg.NumTrials*sim.cfg.NumRuns)
	for run := 0; run < sim.cfg.NumRuns; run++ {
		key := AssignmentKey(id, run, sim.cfg.NumRuns)
		a, err := sim.obtainAssignment(p, key, rng.Seed(SubsystemSolver(id, run)))
		if err != nil {
			return nil, err
		}
		runSamples, err := sim.evaluateRun(ctx, p, design, a, key, run, rng, p.NumServers-stragglers)
		if err != nil {
			return nil, err
		}
		samples = append(samples, runSamples...)
	}

	res := NewResult(p, sim.solver.Name(), sim.cfg.NumTrials, sim.cfg.NumRuns, samples)
	if sim.cfg.Persist && sim.store != nil {
		if err := sim.store.SaveResult(res); err != nil {
			return nil, fmt.Errorf("%s: saving result: %w", id, err)
		}
	}
	return res, nil
}

// evaluateRun runs the trial batches of one run. With RefineRounds > 0 and a
// Refiner solver, every round after the first refines the assignment before
// its batch; refinement completes before any trial reads the assignment.
// The last round's batch is reported.
func (sim *Simulator) evaluateRun(ctx context.Context, p Parameters, design *BatchDesign, a Assignment,
	key string, run int, rng *PartitionedRNG, finished int) ([]TrialSample, error) {
	id := p.Identifier()
	refiner, canRefine := sim.solver.(Refiner)
	rounds := 1
	if canRefine {
		rounds += sim.cfg.RefineRounds
	}

	var samples []TrialSample
	for round := 0; round < rounds; round++ {
		if round > 0 {
			moves, err := refiner.Refine(a, p, rng.Seed(SubsystemRefine(id, run, round)), sim.cfg.RefineBudget)
			if err != nil {
				return nil, fmt.Errorf("%s: refining: %w", id, err)
			}
			sim.metrics.RecordRefineMoves(sim.solver.Name(), moves)
			if moves > 0 && sim.store != nil {
				if err := sim.store.SaveAssignment(sim.solver.Name(), key, a); err != nil {
					return nil, fmt.Errorf("%s: saving refined assignment: %w", id, err)
				}
			}
			logrus.Debugf("%s run %d round %d: %d refinement moves", id, run, round, moves)
		}
		tb := &trialBatch{
			params:   p,
			design:   design,
			assign:   a,
			scorer:   sim.scorer,
			finished: finished,
			seed: func(trial int) int64 {
				return rng.Seed(SubsystemTrial(id, run, round, trial))
			},
		}
		var err error
		samples, err = runTrials(ctx, tb, sim.cfg.NumTrials, sim.cfg.Workers)
		if err != nil {
			return nil, err
		}
		sim.metrics.RecordTrials(sim.solver.Name(), len(samples))
		if rounds > 1 {
			logrus.Debugf("%s run %d round %d: mean load %.4f", id, run, round, Summarize(loads(samples)).Mean)
		}
	}
	return samples, nil
}

// obtainAssignment loads the cached assignment for key or solves and caches
// a new one. A cached assignment that does not fit p is reported as corrupt.
func (sim *Simulator) obtainAssignment(p Parameters, key string, seed int64) (Assignment, error) {
	name := sim.solver.Name()
	if sim.store != nil {
		a, err := sim.store.LoadAssignment(name, key, sim.cfg.AssignmentKind)
		switch {
		case err == nil:
			if verr := VerifyAssignment(a, p); verr != nil {
				return nil, fmt.Errorf("cached assignment %s/%s: %v: %w", name, key, verr, ErrCorrupt)
			}
			logrus.Debugf("loaded cached assignment %s/%s", name, key)
			return a, nil
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}

	start := time.Now()
	a, err := sim.solver.Solve(p, seed)
	if err != nil {
		return nil, err
	}
	sim.metrics.RecordSolve(name, time.Since(start).Seconds())
	if err := VerifyAssignment(a, p); err != nil {
		return nil, fmt.Errorf("solver %s produced an invalid assignment for %s: %w", name, key, err)
	}
	if sim.store != nil {
		if err := sim.store.SaveAssignment(name, key, a); err != nil {
			return nil, fmt.Errorf("saving assignment %s/%s: %w", name, key, err)
		}
	}
	return a, nil
}

// SimulateParameterList simulates every entry in order. A failing entry is
// logged, recorded in its Result.Err and does not stop the sweep. ctx is
// checked between entries; on cancellation the results gathered so far are
// returned together with ctx's error. The returned error combines every
// per-entry failure.
func (sim *Simulator) SimulateParameterList(ctx context.Context, params []Parameters) (*ResultSet, error) {
	name := sim.solver.Name()
	set := &ResultSet{Name: name, Results: make([]*Result, 0, len(params))}
	var errs error
	for i, p := range params {
		if err := ctx.Err(); err != nil {
			logrus.Warnf("sweep stopped before entry %d/%d (%s)", i+1, len(params), p.Identifier())
			return set, multierr.Append(errs, err)
		}
		start := time.Now()
		res, err := sim.Simulate(ctx, p)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			if ctx.Err() != nil {
				return set, multierr.Append(errs, ctx.Err())
			}
			logrus.Warnf("[%d/%d] %s with %s failed: %v", i+1, len(params), p.Identifier(), name, err)
			sim.metrics.RecordEntry(name, OutcomeFailed, elapsed)
			set.Results = append(set.Results, &Result{Identifier: p.Identifier(), Parameters: p, Solver: name, Err: err})
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.Identifier(), err))
			continue
		}
		logrus.Infof("[%d/%d] %s with %s: load mean=%.4f delay mean=%.4f (%.2fs)",
			i+1, len(params), p.Identifier(), name, res.Load.Mean, res.Delay.Mean, elapsed)
		sim.metrics.RecordEntry(name, OutcomeSucceeded, elapsed)
		set.Results = append(set.Results, res)
	}
	return set, errs
}

func loads(samples []TrialSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Load
	}
	return out
}
