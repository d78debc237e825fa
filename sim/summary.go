package sim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the {mean, min, max} triple reported per metric.
type Summary struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Summarize computes the mean, min and max of data. Empty input returns the
// zero Summary. The mean is taken over data in slice order, so callers that
// need reproducible output keep samples in a fixed order.
func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	return Summary{
		Mean: stat.Mean(data, nil),
		Min:  floats.Min(data),
		Max:  floats.Max(data),
	}
}
