package strategy

import (
	"math/rand/v2"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/symbol"
	"github.com/morinim/vita-sub001/variation"
)

// BaseRecombiner implements the standard MEP recombination: with
// probability PCross, cross mom and dad (optionally via brood
// recombination) then mutate the result and run hereditary-repulsion
// repair; otherwise clone one parent and mutate it.
type BaseRecombiner struct {
	Kind       variation.CrossoverKind
	PCross     float64
	PMutation  float64
	ActiveOnly bool
	Brood      int // 0 disables brood recombination
	Repulsion  bool
}

func (b BaseRecombiner) Recombine(parents []*genome.Genome, ss *symbol.Set, eval Evaluator, r *rand.Rand) (*genome.Genome, Stats) {
	mom, dad := parents[0], parents[1]
	var stats Stats

	if r.Float64() >= b.PCross {
		off := mom.Clone()
		stats.Mutations = variation.Mutate(off, ss, r, b.PMutation, b.ActiveOnly)
		return off, stats
	}

	var off *genome.Genome
	var err error
	if b.Brood > 0 {
		off, stats.Crossovers, err = variation.Brood(b.Kind, mom, dad, r, b.Brood, func(g *genome.Genome) fitness.Vector {
			return eval.Fast(g)
		})
	} else {
		off, err = variation.Crossover(b.Kind, mom, dad, r)
		stats.Crossovers = 1
	}
	if err != nil {
		off = mom.Clone()
	}

	stats.Mutations += variation.Mutate(off, ss, r, b.PMutation, b.ActiveOnly)

	if b.Repulsion {
		stats.Repulsed = variation.HereditaryRepulsion(off, mom, dad, ss, r, b.PMutation)
	}

	return off, stats
}

// DERecombiner is a plug-in point for a differential-evolution-style
// recombination over real-valued genomes, matching the spec's explicit
// note that the strategy triad must admit such a plug-in even though a
// concrete real-vector representation is out of scope for the core. It
// delegates to a host-supplied function and otherwise behaves like
// BaseRecombiner so a host can drop it in without touching the driver.
type DERecombiner struct {
	Plug func(parents []*genome.Genome, ss *symbol.Set, r *rand.Rand) (*genome.Genome, Stats)
}

func (d DERecombiner) Recombine(parents []*genome.Genome, ss *symbol.Set, eval Evaluator, r *rand.Rand) (*genome.Genome, Stats) {
	if d.Plug == nil {
		return parents[0].Clone(), Stats{}
	}
	return d.Plug(parents, ss, r)
}
