package trace

// TraceSummary aggregates statistics from a SearchTrace.
type TraceSummary struct {
	Searches         int
	TotalMoves       int
	TotalImprovement int
	MeanImprovement  float64
	MaxImprovement   int
	MovesPerSearch   map[string]int // identifier → applied moves
}

// Summarize computes aggregate statistics from a SearchTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SearchTrace) *TraceSummary {
	summary := &TraceSummary{
		MovesPerSearch: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.Searches = st.Searches
	summary.TotalMoves = len(st.Moves)
	for _, m := range st.Moves {
		imp := m.Improvement()
		summary.TotalImprovement += imp
		if imp > summary.MaxImprovement {
			summary.MaxImprovement = imp
		}
		summary.MovesPerSearch[m.Identifier]++
	}
	if summary.TotalMoves > 0 {
		summary.MeanImprovement = float64(summary.TotalImprovement) / float64(summary.TotalMoves)
	}

	return summary
}
