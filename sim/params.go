package sim

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

// integerTolerance bounds how far mu*q may be from an integer and still be
// treated as one.
const integerTolerance = 1e-9

// Size limits of a constructible instance. Larger designs are reported as
// infeasible instead of being allocated.
const (
	MaxBatches   = 1 << 20
	MaxCodedRows = 1 << 40
)

// Parameters describes one problem instance. Values are immutable once built;
// every derived quantity is computed on demand.
type Parameters struct {
	RowsPerBatch      int     `yaml:"rows_per_batch"`      // coded rows stored in every batch
	NumServers        int     `yaml:"num_servers"`         // K
	DecodingGroupSize int     `yaml:"decoding_group_size"` // q: servers waited for
	NumOutputs        int     `yaml:"num_outputs"`         // N
	ServerStorage     float64 `yaml:"server_storage"`      // mu, fraction of coded rows per server
	NumPartitions     int     `yaml:"num_partitions"`      // T
}

// NewParameters builds Parameters and validates them.
func NewParameters(rowsPerBatch, numServers, q, numOutputs int, serverStorage float64, numPartitions int) (Parameters, error) {
	p := Parameters{
		RowsPerBatch:      rowsPerBatch,
		NumServers:        numServers,
		DecodingGroupSize: q,
		NumOutputs:        numOutputs,
		ServerStorage:     serverStorage,
		NumPartitions:     numPartitions,
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// FixedComplexityParameters builds parameters for a fixed per-server workload:
// q = round(codeRate*K) and mu = muq/q. Batch and partition sizes are rounded
// down to whole rows; the uneven remainder is spread by RowsPerPartition.
func FixedComplexityParameters(rowsPerServer, rowsPerPartition, numServers int, codeRate float64, muq int) (Parameters, error) {
	q := int(math.Round(codeRate * float64(numServers)))
	if q <= 0 || q > numServers {
		return Parameters{}, fmt.Errorf("code rate %v with %d servers gives decoding group size %d", codeRate, numServers, q)
	}
	if muq <= 0 || muq > q {
		return Parameters{}, fmt.Errorf("muq must be in [1, %d], got %d", q, muq)
	}
	if rowsPerPartition <= 0 {
		return Parameters{}, fmt.Errorf("rows per partition must be positive, got %d", rowsPerPartition)
	}
	perServer, ok1 := binomial(numServers-1, muq-1)
	batches, ok2 := binomial(numServers, muq)
	if !ok1 || !ok2 || batches > MaxBatches {
		return Parameters{}, fmt.Errorf("C(%d, %d) batches exceed %d: %w", numServers, muq, MaxBatches, ErrInfeasible)
	}
	rowsPerBatch := max(1, rowsPerServer/perServer)
	codedRows, ok := mulChecked(rowsPerBatch, batches)
	if !ok {
		return Parameters{}, fmt.Errorf("%d coded rows per batch over %d batches exceed %d: %w", rowsPerBatch, batches, MaxCodedRows, ErrInfeasible)
	}
	numPartitions := max(1, codedRows/rowsPerPartition)
	return NewParameters(rowsPerBatch, numServers, q, q, float64(muq)/float64(q), numPartitions)
}

// Validate checks structural constraints. Whether a placement exists is a
// separate question answered by the solvers.
func (p Parameters) Validate() error {
	switch {
	case p.RowsPerBatch <= 0:
		return fmt.Errorf("rows_per_batch must be positive, got %d", p.RowsPerBatch)
	case p.NumServers <= 0:
		return fmt.Errorf("num_servers must be positive, got %d", p.NumServers)
	case p.DecodingGroupSize <= 0 || p.DecodingGroupSize > p.NumServers:
		return fmt.Errorf("decoding_group_size must be in [1, %d], got %d", p.NumServers, p.DecodingGroupSize)
	case p.NumOutputs <= 0:
		return fmt.Errorf("num_outputs must be positive, got %d", p.NumOutputs)
	case math.IsNaN(p.ServerStorage) || p.ServerStorage <= 0 || p.ServerStorage > 1:
		return fmt.Errorf("server_storage must be in (0, 1], got %v", p.ServerStorage)
	case p.NumPartitions <= 0:
		return fmt.Errorf("num_partitions must be positive, got %d", p.NumPartitions)
	}
	return nil
}

// ServersPerBatch returns mu*q rounded to the nearest integer.
func (p Parameters) ServersPerBatch() int {
	return int(math.Round(p.ServerStorage * float64(p.DecodingGroupSize)))
}

// ServersPerBatchExact reports whether mu*q is a positive integer.
func (p Parameters) ServersPerBatchExact() bool {
	muq := p.ServerStorage * float64(p.DecodingGroupSize)
	return p.ServersPerBatch() >= 1 && math.Abs(muq-math.Round(muq)) <= integerTolerance
}

// NumBatches returns C(K, mu*q), or 0 when the design does not exist or has
// more than MaxBatches batches.
func (p Parameters) NumBatches() int {
	r := p.ServersPerBatch()
	if r < 1 || r > p.NumServers {
		return 0
	}
	n, ok := binomial(p.NumServers, r)
	if !ok || n > MaxBatches {
		return 0
	}
	return n
}

// BatchesPerServer returns C(K-1, mu*q-1), or 0 when NumBatches is 0.
func (p Parameters) BatchesPerServer() int {
	if p.NumBatches() == 0 {
		return 0
	}
	n, _ := binomial(p.NumServers-1, p.ServersPerBatch()-1)
	return n
}

// NumCodedRows returns the total number of coded rows over all batches, or 0
// when there is no design or the total exceeds MaxCodedRows.
func (p Parameters) NumCodedRows() int {
	n, ok := mulChecked(p.RowsPerBatch, p.NumBatches())
	if !ok {
		return 0
	}
	return n
}

// NumSourceRows returns the number of uncoded rows at code rate q/K.
func (p Parameters) NumSourceRows() int {
	return p.DecodingGroupSize * p.NumCodedRows() / p.NumServers
}

// RowsPerPartition returns the number of coded rows in partition part. The
// first NumCodedRows mod T partitions carry one extra row.
func (p Parameters) RowsPerPartition(part int) int {
	if part < 0 || part >= p.NumPartitions {
		return 0
	}
	coded := p.NumCodedRows()
	rows := coded / p.NumPartitions
	if part < coded%p.NumPartitions {
		rows++
	}
	return rows
}

// NumMulticasts returns C(q, mu*q+1), the number of multicast groups among
// the decoding group, or 0 when it does not fit in an int.
func (p Parameters) NumMulticasts() int {
	r := p.ServersPerBatch()
	if r < 1 || r+1 > p.DecodingGroupSize {
		return 0
	}
	n, _ := binomial(p.DecodingGroupSize, r+1)
	return n
}

// UnpartitionedLoad returns the normalised communication load of the coded
// scheme without partitioning: (1/(mu*q)) * (1 - mu*q/q).
func (p Parameters) UnpartitionedLoad() float64 {
	r := float64(p.ServersPerBatch())
	if r < 1 {
		return 0
	}
	return (1 / r) * (1 - r/float64(p.DecodingGroupSize))
}

// ComputationalDelay returns the delay unit: the expected q-th order
// statistic of K unit exponential service times, scaled by rows per server.
func (p Parameters) ComputationalDelay() float64 {
	rowsPerServer := float64(p.RowsPerBatch) * float64(p.BatchesPerServer())
	return (harmonic(p.NumServers) - harmonic(p.NumServers-p.DecodingGroupSize)) * rowsPerServer
}

// Identifier returns a deterministic key encoding every field. Distinct
// parameters always yield distinct identifiers.
func (p Parameters) Identifier() string {
	return fmt.Sprintf("b%d_K%d_q%d_N%d_mu%s_T%d",
		p.RowsPerBatch, p.NumServers, p.DecodingGroupSize, p.NumOutputs,
		strconv.FormatFloat(p.ServerStorage, 'g', -1, 64), p.NumPartitions)
}

// String implements fmt.Stringer.
func (p Parameters) String() string {
	return p.Identifier()
}

func harmonic(n int) float64 {
	h := 0.0
	for i := 1; i <= n; i++ {
		h += 1 / float64(i)
	}
	return h
}

// binomial returns C(n, k). ok is false when the value does not fit in an int.
func binomial(n, k int) (c int, ok bool) {
	if k < 0 || k > n {
		return 0, true
	}
	k = min(k, n-k)
	v := uint64(1)
	for i := 0; i < k; i++ {
		// C(n, i+1) = C(n, i) * (n-i) / (i+1) is exact at every step.
		hi, lo := bits.Mul64(v, uint64(n-i))
		if hi >= uint64(i+1) {
			return 0, false
		}
		v, _ = bits.Div64(hi, lo, uint64(i+1))
	}
	if v > math.MaxInt {
		return 0, false
	}
	return int(v), true
}

// mulChecked returns a*b for non-negative a and b. ok is false when either
// factor is negative or the product exceeds MaxCodedRows.
func mulChecked(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > MaxCodedRows {
		return 0, false
	}
	return int(lo), true
}
