package sim

import "fmt"

// TrialSample is the outcome of one Monte-Carlo trial.
type TrialSample struct {
	Load    float64
	Delay   float64
	Encode  float64
	Reduce  float64
	Covered int // partitions covered by the finished servers
}

// Result bundles the outputs of simulating one Parameters entry.
type Result struct {
	Identifier string
	Parameters Parameters
	Solver     string
	NumTrials  int // trials per run
	NumRuns    int // independent solver draws

	Load   Summary
	Delay  Summary
	Encode Summary
	Reduce Summary

	// Samples holds every reported trial in (run, trial) order.
	Samples []TrialSample

	// Err is set when the entry failed inside a parameter sweep.
	Err error
}

// NewResult constructs a Result from samples and computes its summaries.
func NewResult(p Parameters, solver string, numTrials, numRuns int, samples []TrialSample) *Result {
	r := &Result{
		Identifier: p.Identifier(),
		Parameters: p,
		Solver:     solver,
		NumTrials:  numTrials,
		NumRuns:    numRuns,
		Samples:    samples,
	}
	r.Summarize()
	return r
}

// Summarize recomputes Load, Delay, Encode and Reduce from Samples.
func (r *Result) Summarize() {
	n := len(r.Samples)
	load, delay := make([]float64, n), make([]float64, n)
	encode, reduce := make([]float64, n), make([]float64, n)
	for i, s := range r.Samples {
		load[i], delay[i], encode[i], reduce[i] = s.Load, s.Delay, s.Encode, s.Reduce
	}
	r.Load = Summarize(load)
	r.Delay = Summarize(delay)
	r.Encode = Summarize(encode)
	r.Reduce = Summarize(reduce)
}

// Metric names a summarised column. The names are shared with the CSV
// result files.
type Metric string

const (
	MetricLoad   Metric = "load"
	MetricDelay  Metric = "delay"
	MetricEncode Metric = "encode"
	MetricReduce Metric = "reduce"
)

// Summary returns the summary for metric m.
func (r *Result) Summary(m Metric) (Summary, error) {
	switch m {
	case MetricLoad:
		return r.Load, nil
	case MetricDelay:
		return r.Delay, nil
	case MetricEncode:
		return r.Encode, nil
	case MetricReduce:
		return r.Reduce, nil
	}
	return Summary{}, fmt.Errorf("unknown metric %q", m)
}

// ResultSet is a named collection of results in input order.
type ResultSet struct {
	Name    string
	Results []*Result
}

// Series holds per-entry summaries as parallel arrays indexed like the input
// parameter list.
type Series struct {
	Mean []float64
	Min  []float64
	Max  []float64
}

// Series returns the summaries of metric m for every entry. Failed entries
// contribute zeros so indices stay aligned with the input list.
func (rs *ResultSet) Series(m Metric) (Series, error) {
	s := Series{
		Mean: make([]float64, len(rs.Results)),
		Min:  make([]float64, len(rs.Results)),
		Max:  make([]float64, len(rs.Results)),
	}
	for i, r := range rs.Results {
		if r.Err != nil {
			continue
		}
		sum, err := r.Summary(m)
		if err != nil {
			return Series{}, err
		}
		s.Mean[i], s.Min[i], s.Max[i] = sum.Mean, sum.Min, sum.Max
	}
	return s, nil
}

// Failed returns the entries whose Err is set.
func (rs *ResultSet) Failed() []*Result {
	var out []*Result
	for _, r := range rs.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
