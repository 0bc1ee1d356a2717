package variation

import (
	"math/rand/v2"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
)

// FastEval is the cheap pre-selection evaluator brood recombination uses to
// rank its candidates; hosts typically wire this to Evaluator.Fast.
type FastEval func(*genome.Genome) fitness.Vector

// Brood runs the given crossover scheme k+1 times between a and b (the
// seed offspring plus k extra candidates), fast-evaluates all k+1, and
// returns the fittest one along with the total number of candidates
// produced — per the spec's explicit brood-count accounting, callers must
// attribute k+1 to the crossovers statistic, not just k.
func Brood(kind CrossoverKind, a, b *genome.Genome, r *rand.Rand, k int, fast FastEval) (*genome.Genome, int, error) {
	best, err := Crossover(kind, a, b, r)
	if err != nil {
		return nil, 0, err
	}
	bestFit := fast(best)
	total := 1
	for i := 0; i < k; i++ {
		cand, err := Crossover(kind, a, b, r)
		if err != nil {
			return nil, total, err
		}
		total++
		f := fast(cand)
		if f.Greater(bestFit) {
			best, bestFit = cand, f
		}
	}
	return best, total, nil
}
