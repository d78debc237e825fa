package sim

import (
	"context"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"
)

// trialOutcome carries one trial's sample from a worker to the collector.
type trialOutcome struct {
	index  int
	sample TrialSample
}

// trialBatch is the read-only state shared by the workers of one batch.
type trialBatch struct {
	params   Parameters
	design   *BatchDesign
	assign   Assignment
	scorer   Scorer
	finished int                   // servers that finish per trial
	seed     func(trial int) int64 // per-trial RNG seed, pure
}

// evaluate runs trial i: draw the finished servers, collect the batches they
// store, and score the partitions those batches cover.
func (tb *trialBatch) evaluate(i int) TrialSample {
	rng := rand.New(rand.NewSource(tb.seed(i)))
	servers := rng.Perm(tb.design.NumServers())[:tb.finished]
	covered := tb.assign.BatchUnion(tb.design.BatchesAt(servers))
	score := tb.scorer.Score(tb.params, covered)
	return TrialSample{
		Load:    score.Load,
		Delay:   score.Delay,
		Encode:  score.Encode,
		Reduce:  score.Reduce,
		Covered: len(covered),
	}
}

// runTrials evaluates n trials on a pool of workers. Tasks flow through one
// channel and outcomes through another to a single collector that stores
// each sample at its trial index, so the result does not depend on which
// worker ran which trial.
func runTrials(ctx context.Context, tb *trialBatch, n, workers int) ([]TrialSample, error) {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	tasks := make(chan int)
	outcomes := make(chan trialOutcome, workers)

	g.Go(func() error {
		defer close(tasks)
		for i := 0; i < n; i++ {
			select {
			case tasks <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for i := range tasks {
				select {
				case outcomes <- trialOutcome{index: i, sample: tb.evaluate(i)}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	samples := make([]TrialSample, n)
	for o := range outcomes {
		samples[o.index] = o.sample
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}
