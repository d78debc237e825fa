package sim

// TrialScore holds the measurements of one trial.
type TrialScore struct {
	Load   float64 // rows communicated beyond the multicast baseline
	Delay  float64 // Encode + Reduce
	Encode float64 // extra encoding work for rows no finished server holds
	Reduce float64 // reduce-phase work
}

// Scorer turns the partitions covered by the finished servers into a load
// and delay measurement. covered is sorted and holds no duplicates.
type Scorer interface {
	Score(p Parameters, covered []int) TrialScore
}

// DefaultScorer charges every uncovered coded row once per output at code
// rate q/K, so full coverage costs no load. Delay is the computational delay
// unit for the reduce phase plus a share of it proportional to the uncovered
// fraction of partitions for the encode phase.
type DefaultScorer struct{}

// Score implements Scorer for DefaultScorer.
func (DefaultScorer) Score(p Parameters, covered []int) TrialScore {
	uncoveredRows := p.NumCodedRows()
	for _, part := range covered {
		uncoveredRows -= p.RowsPerPartition(part)
	}
	uncovered := p.NumPartitions - len(covered)
	rate := float64(p.DecodingGroupSize) / float64(p.NumServers)
	unit := p.ComputationalDelay()

	score := TrialScore{
		Load:   float64(p.NumOutputs) * rate * float64(uncoveredRows),
		Encode: unit * float64(uncovered) / float64(p.NumPartitions),
		Reduce: unit,
	}
	score.Delay = score.Encode + score.Reduce
	return score
}
