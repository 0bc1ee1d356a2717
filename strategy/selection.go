package strategy

import (
	"math/rand/v2"

	"github.com/morinim/vita-sub001/population"
)

// ring builds the candidate index set around anchor.Index within a layer of
// size n: mateZone consecutive slots either side (wrapping), or the whole
// layer when mateZone == 0 or mateZone >= n (panmictic mating).
func ring(n, anchor, mateZone int) []int {
	if mateZone <= 0 || mateZone >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, 0, 2*mateZone+1)
	for d := -mateZone; d <= mateZone; d++ {
		i := ((anchor+d)%n + n) % n
		idx = append(idx, i)
	}
	return idx
}

// TournamentSelector runs size-k tournaments within a mate-zone ring around
// the anchor, once for each parent slot plus a trailing weakest-of-ring
// slot the driver can reuse as the default replacement target.
type TournamentSelector struct {
	Size     int
	MateZone int
}

func (s TournamentSelector) Select(pop *population.Population, anchor Coordinate, eval Evaluator, r *rand.Rand) []Coordinate {
	n := pop.LayerSize(anchor.Layer)
	candidates := ring(n, anchor.Index, s.MateZone)

	pick := func() Coordinate {
		k := s.Size
		if k > len(candidates) {
			k = len(candidates)
		}
		best := candidates[r.IntN(len(candidates))]
		bestInd, _ := pop.At(anchor.Layer, best)
		bestFit := eval.Fast(bestInd)
		// Small-k insertion-style tournament: draw k-1 more and keep the
		// fittest, cheaper than sorting for the tournament sizes this
		// engine actually uses (single digits).
		for i := 1; i < k; i++ {
			idx := candidates[r.IntN(len(candidates))]
			ind, _ := pop.At(anchor.Layer, idx)
			f := eval.Fast(ind)
			if f.Greater(bestFit) {
				best, bestFit = idx, f
			}
		}
		return Coordinate{Layer: anchor.Layer, Index: best}
	}

	mom := pick()
	dad := pick()

	// worst-of-ring, for replacement strategies that reuse this selector's
	// output as their displacement target.
	worst := candidates[0]
	worstInd, _ := pop.At(anchor.Layer, worst)
	worstFit := eval.Fast(worstInd)
	for _, idx := range candidates[1:] {
		ind, _ := pop.At(anchor.Layer, idx)
		f := eval.Fast(ind)
		if f.Less(worstFit) {
			worst, worstFit = idx, f
		}
	}

	return []Coordinate{mom, dad, {Layer: anchor.Layer, Index: worst}}
}

// ALPSSelector chooses both parents from the anchor's own layer with
// probability PSameLayer, and otherwise draws the second parent uniformly
// at random from the layer directly below, so genetic material can migrate
// upward one layer at a time. Age plays no part in the choice: an
// individual whose age exceeds its layer's maximum is picked like any
// other.
type ALPSSelector struct {
	Inner      Selector
	PSameLayer float64
}

func (s ALPSSelector) Select(pop *population.Population, anchor Coordinate, eval Evaluator, r *rand.Rand) []Coordinate {
	picks := s.Inner.Select(pop, anchor, eval, r)
	if r.Float64() < s.PSameLayer || anchor.Layer == 0 {
		return picks
	}

	// Re-draw the second parent uniformly at random from the layer directly
	// below.
	otherLayer := anchor.Layer - 1
	n := pop.LayerSize(otherLayer)
	if n == 0 {
		return picks
	}
	idx := r.IntN(n)
	picks[1] = Coordinate{Layer: otherLayer, Index: idx}
	return picks
}

// RandomSelector ignores fitness entirely and draws uniformly at random
// from the mate zone; useful as a baseline/control in experiments and for
// statistical tests of selection pressure (its pressure is, by
// construction, zero).
type RandomSelector struct {
	MateZone int
}

func (s RandomSelector) Select(pop *population.Population, anchor Coordinate, eval Evaluator, r *rand.Rand) []Coordinate {
	n := pop.LayerSize(anchor.Layer)
	candidates := ring(n, anchor.Index, s.MateZone)
	pick := func() Coordinate {
		return Coordinate{Layer: anchor.Layer, Index: candidates[r.IntN(len(candidates))]}
	}
	return []Coordinate{pick(), pick(), pick()}
}
