// Package metrics provides a Prometheus-backed sim.MetricsCollector.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/codedsim/sim"
)

// PrometheusCollector implements sim.MetricsCollector backed by Prometheus.
// Metrics are registered on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	trials        *prometheus.CounterVec
	solveDuration *prometheus.HistogramVec
	refineMoves   *prometheus.CounterVec
	entries       *prometheus.CounterVec
	entryDuration *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ sim.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "codedsim" if empty)
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "codedsim"
	}
	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.trials = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "simulator",
			Name:      "trials_total",
			Help:      "Monte-Carlo trials evaluated, by solver.",
		}, []string{"solver"})

		p.solveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "solver",
			Name:      "solve_duration_seconds",
			Help:      "Time spent constructing assignments, by solver.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"solver"})

		p.refineMoves = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "solver",
			Name:      "refine_moves_total",
			Help:      "Improving moves applied between trial batches, by solver.",
		}, []string{"solver"})

		p.entries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "sweep",
			Name:      "entries_total",
			Help:      "Parameter entries processed, by solver and outcome.",
		}, []string{"solver", "outcome"})

		p.entryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "sweep",
			Name:      "entry_duration_seconds",
			Help:      "Wall time per parameter entry, by solver.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"solver"})

		p.reg.MustRegister(p.trials, p.solveDuration, p.refineMoves, p.entries, p.entryDuration)
	})
}

// RecordTrials implements sim.MetricsCollector.
func (p *PrometheusCollector) RecordTrials(solver string, n int) {
	p.ensureRegistered()
	p.trials.WithLabelValues(solver).Add(float64(n))
}

// RecordSolve implements sim.MetricsCollector.
func (p *PrometheusCollector) RecordSolve(solver string, seconds float64) {
	p.ensureRegistered()
	p.solveDuration.WithLabelValues(solver).Observe(seconds)
}

// RecordRefineMoves implements sim.MetricsCollector.
func (p *PrometheusCollector) RecordRefineMoves(solver string, moves int) {
	p.ensureRegistered()
	p.refineMoves.WithLabelValues(solver).Add(float64(moves))
}

// RecordEntry implements sim.MetricsCollector.
func (p *PrometheusCollector) RecordEntry(solver, outcome string, seconds float64) {
	p.ensureRegistered()
	p.entries.WithLabelValues(solver, outcome).Inc()
	p.entryDuration.WithLabelValues(solver).Observe(seconds)
}
