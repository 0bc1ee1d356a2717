package strategy

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/population"
)

// LayerStats summarises one age layer's fitness distribution.
type LayerStats struct {
	Layer       int
	Size        int
	Best, Worst fitness.Vector
	MeanScalar  float64
}

// Analyze snapshots every layer's fitness distribution in parallel, one
// goroutine per layer, mirroring the spec's allowance that the per-layer
// statistics scan may run concurrently with itself (never with mutation of
// the population it reads).
func Analyze(pop *population.Population, eval Evaluator) ([]LayerStats, error) {
	out := make([]LayerStats, pop.Layers())
	g, _ := errgroup.WithContext(context.Background())

	for l := 0; l < pop.Layers(); l++ {
		l := l
		g.Go(func() error {
			n := pop.LayerSize(l)
			stats := LayerStats{Layer: l, Size: n}
			var sum float64
			for i := 0; i < n; i++ {
				ind, err := pop.At(l, i)
				if err != nil {
					continue
				}
				f := eval.Fast(ind)
				sum += f.Scalar()
				if stats.Best == nil || f.Greater(stats.Best) {
					stats.Best = f
				}
				if stats.Worst == nil || f.Less(stats.Worst) {
					stats.Worst = f
				}
			}
			if n > 0 {
				stats.MeanScalar = sum / float64(n)
			}
			out[l] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
