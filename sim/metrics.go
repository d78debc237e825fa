// Sweep instrumentation. The Prometheus implementation lives in sim/metrics.

package sim

// MetricsCollector receives simulator instrumentation.
type MetricsCollector interface {
	RecordTrials(solver string, n int)
	RecordSolve(solver string, seconds float64)
	RecordRefineMoves(solver string, moves int)
	RecordEntry(solver, outcome string, seconds float64)
}

// Entry outcomes reported to RecordEntry.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// NopMetrics discards every measurement.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ MetricsCollector = (*NopMetrics)(nil)

// RecordTrials discards the trial count.
func (NopMetrics) RecordTrials(string, int) {}

// RecordSolve discards the solve duration.
func (NopMetrics) RecordSolve(string, float64) {}

// RecordRefineMoves discards the refinement move count.
func (NopMetrics) RecordRefineMoves(string, int) {}

// RecordEntry discards the entry outcome.
func (NopMetrics) RecordEntry(string, string, float64) {}
