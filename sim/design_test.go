package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatchDesign_LexicographicSubsets(t *testing.T) {
	// GIVEN K=4 servers and mu*q=2
	p, err := NewParameters(1, 4, 4, 1, 0.5, 1)
	require.NoError(t, err)

	// WHEN the design is built
	d, err := NewBatchDesign(p)
	require.NoError(t, err)

	// THEN batch b sits on the b-th 2-subset in lexicographic order
	want := [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	require.Equal(t, len(want), d.NumBatches())
	for b, servers := range want {
		assert.Equal(t, servers, d.Servers(b), "batch %d", b)
	}
	assert.Equal(t, 4, d.NumServers())
}

func TestNewBatchDesign_EveryServerStoresSameNumberOfBatches(t *testing.T) {
	p, err := NewParameters(1, 9, 6, 6, 1.0/3, 1)
	require.NoError(t, err)
	d, err := NewBatchDesign(p)
	require.NoError(t, err)

	for k := 0; k < d.NumServers(); k++ {
		assert.Len(t, d.Batches(k), p.BatchesPerServer(), "server %d", k)
	}
	assert.Equal(t, p.NumBatches(), d.NumBatches())
}

func TestNewBatchDesign_Infeasible(t *testing.T) {
	// mu < 1/q leaves every batch without a server
	p, err := NewParameters(1, 9, 6, 6, 0.1, 1)
	require.NoError(t, err)
	_, err = NewBatchDesign(p)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestBatchDesign_BatchesAt(t *testing.T) {
	p, err := NewParameters(1, 4, 4, 1, 0.5, 1)
	require.NoError(t, err)
	d, err := NewBatchDesign(p)
	require.NoError(t, err)

	// servers 0 and 3 together hold every batch except {1,2}
	assert.Equal(t, []int{0, 1, 2, 4, 5}, d.BatchesAt([]int{3, 0}))
	// duplicates do not change the result
	assert.Equal(t, d.BatchesAt([]int{0}), d.BatchesAt([]int{0, 0}))
	assert.Empty(t, d.BatchesAt(nil))
}
