package strategy

import (
	"math/rand/v2"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/population"
)

// TournamentReplacer targets the worst of the coordinates Selector
// returned (by convention, the last one) — the classic steady-state
// "replace the worst of a sub-tournament" rule. With elitism, offspring
// only overwrites it when strictly fitter; without elitism, replacement
// is unconditional.
type TournamentReplacer struct{}

func (TournamentReplacer) Replace(pop *population.Population, anchor Coordinate, picks []Coordinate, offspring *genome.Genome, offspringFit fitness.Vector, eval Evaluator, r *rand.Rand, elitism bool) {
	target := anchor
	if len(picks) > 0 {
		target = picks[len(picks)-1]
	}
	current, err := pop.At(target.Layer, target.Index)
	if err != nil {
		return
	}
	if !elitism {
		_ = pop.Set(target.Layer, target.Index, offspring)
		return
	}
	if offspringFit.Greater(eval.Fast(current)) {
		_ = pop.Set(target.Layer, target.Index, offspring)
	}
}

// FamilyCompetitionReplacer pits offspring against its own two parents
// (picks[0] and picks[1], the "mom"/"dad" convention Selector.Select
// documents) rather than the population at large. With elitism, offspring
// replaces the worse parent iff strictly better. Without elitism, it
// applies probabilistic crowding: offspring replaces the worse parent with
// probability 1 - f_worse/(f_worse + f_off), and failing that, tries the
// better parent with the symmetric probability.
type FamilyCompetitionReplacer struct{}

func (FamilyCompetitionReplacer) Replace(pop *population.Population, anchor Coordinate, picks []Coordinate, offspring *genome.Genome, offspringFit fitness.Vector, eval Evaluator, r *rand.Rand, elitism bool) {
	if len(picks) < 2 {
		return
	}
	mom, dad := picks[0], picks[1]
	momInd, err := pop.At(mom.Layer, mom.Index)
	if err != nil {
		return
	}
	dadInd, err := pop.At(dad.Layer, dad.Index)
	if err != nil {
		return
	}
	momFit, dadFit := eval.Fast(momInd), eval.Fast(dadInd)

	worse, worseFit, better, betterFit := mom, momFit, dad, dadFit
	if dadFit.Less(momFit) {
		worse, worseFit, better, betterFit = dad, dadFit, mom, momFit
	}

	if elitism {
		if offspringFit.Greater(worseFit) {
			_ = pop.Set(worse.Layer, worse.Index, offspring)
		}
		return
	}

	if r.Float64() < crowdingProb(worseFit.Scalar(), offspringFit.Scalar()) {
		_ = pop.Set(worse.Layer, worse.Index, offspring)
		return
	}
	if r.Float64() < crowdingProb(betterFit.Scalar(), offspringFit.Scalar()) {
		_ = pop.Set(better.Layer, better.Index, offspring)
	}
}

// crowdingProb is the probabilistic-crowding replacement probability for a
// parent scoring fParent against an offspring scoring fOff.
func crowdingProb(fParent, fOff float64) float64 {
	denom := fParent + fOff
	if denom == 0 {
		return 0.5
	}
	return 1 - fParent/denom
}

// ALPSReplacer implements the age-layered insertion rule: the offspring is
// tried in the anchor's layer first and moves up one layer at a time while
// its age exceeds that layer's maximum. If the target layer is full, the
// incoming individual displaces the layer's weakest member unless it is
// less fit than that member, and the displaced member then recurses into
// the next layer up — the "try_add_to_layer" cascade of the design.
type ALPSReplacer struct{}

func (ALPSReplacer) Replace(pop *population.Population, anchor Coordinate, picks []Coordinate, offspring *genome.Genome, offspringFit fitness.Vector, eval Evaluator, r *rand.Rand, elitism bool) {
	tryAddToLayer(pop, anchor.Layer, offspring, offspringFit, eval)
}

// tryAddToLayer inserts ind into layer l, recursing upward on overflow.
// Individuals pushed off the top layer are simply discarded, since the top
// layer has no age ceiling and therefore no "next layer" to cascade into.
func tryAddToLayer(pop *population.Population, l int, ind *genome.Genome, indFit fitness.Vector, eval Evaluator) {
	if l >= pop.Layers() {
		return
	}
	if pop.IsAgedOut(l, ind) {
		if l+1 < pop.Layers() {
			tryAddToLayer(pop, l+1, ind, indFit, eval)
		}
		return
	}
	if uint(pop.LayerSize(l)) < pop.LayerCapacity(l) {
		_ = pop.Append(l, ind)
		return
	}

	worstIdx, worstFit := -1, fitness.Vector(nil)
	for i := 0; i < pop.LayerSize(l); i++ {
		cand, _ := pop.At(l, i)
		f := eval.Fast(cand)
		if worstIdx == -1 || f.Less(worstFit) {
			worstIdx, worstFit = i, f
		}
	}
	if worstIdx == -1 {
		_ = pop.Append(l, ind)
		return
	}
	if indFit.Less(worstFit) {
		return
	}
	evicted, _ := pop.At(l, worstIdx)
	_ = pop.Set(l, worstIdx, ind)
	if l+1 < pop.Layers() {
		tryAddToLayer(pop, l+1, evicted, eval.Fast(evicted), eval)
	}
}

// ParetoReplacer replaces the anchor individual when offspring is not
// Pareto-dominated by it, giving every non-dominated offspring a chance to
// enter the population even when no single objective improved — the
// multi-objective analogue of TournamentReplacer.
type ParetoReplacer struct{}

func (ParetoReplacer) Replace(pop *population.Population, anchor Coordinate, picks []Coordinate, offspring *genome.Genome, offspringFit fitness.Vector, eval Evaluator, r *rand.Rand, elitism bool) {
	current, err := pop.At(anchor.Layer, anchor.Index)
	if err != nil {
		return
	}
	currentFit := eval.Fast(current)
	if fitness.Dominates(currentFit, offspringFit) {
		return
	}
	_ = pop.Set(anchor.Layer, anchor.Index, offspring)
}
