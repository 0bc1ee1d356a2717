// Package strategy assembles selection, recombination and replacement into
// the steady-state generational loop, including the ALPS-specific
// after-generation layer bookkeeping. Selector, Recombiner and Replacer
// are small interfaces in the spirit of cbarrick/evo's Genome/Population
// split, so a host can swap any one of the three without touching the
// driver.
package strategy

import (
	"math/rand/v2"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/population"
	"github.com/morinim/vita-sub001/symbol"
)

// Coordinate addresses one individual by (layer, index).
type Coordinate struct {
	Layer, Index int
}

// Evaluator computes the fitness of a genome. Fast is a cheaper
// approximation used for brood pre-selection (it may simply call Evaluate);
// Clear invalidates any evaluator-owned cache when the symbol set or
// environment changes underfoot (e.g. after ADF insertion).
type Evaluator interface {
	Evaluate(g *genome.Genome) fitness.Vector
	Fast(g *genome.Genome) fitness.Vector
	Clear()
}

// Selector picks the parents (and, where relevant, a displacement target)
// for the individual at anchor. It returns a non-empty slice of coordinates
// into pop; convention: index 0 and 1 are the two parents ("mom" and
// "dad"), and for selectors also used for replacement the last element is
// the weakest candidate considered.
type Selector interface {
	Select(pop *population.Population, anchor Coordinate, eval Evaluator, r *rand.Rand) []Coordinate
}

// Recombiner produces a single offspring from the parents Selector chose.
type Recombiner interface {
	Recombine(parents []*genome.Genome, ss *symbol.Set, eval Evaluator, r *rand.Rand) (*genome.Genome, Stats)
}

// Replacer decides whether and where offspring replaces an existing
// individual, mutating pop in place. picks is whatever Selector.Select
// returned for this same individual (conventionally mom, dad, and —
// when the selector computes one — a trailing worst-of-ring candidate),
// so a Replacer that needs the selected family (not just the sweep
// position anchor) has it without recomputing it. elitism gates the
// strict-improvement branch spec §4.7 describes for both the tournament
// and family-competition replacers; without it, replacement happens
// unconditionally or per a probabilistic-crowding rule.
type Replacer interface {
	Replace(pop *population.Population, anchor Coordinate, picks []Coordinate, offspring *genome.Genome, offspringFit fitness.Vector, eval Evaluator, r *rand.Rand, elitism bool)
}

// Stats accumulates the per-recombination-call counters the spec's summary
// tracks: how many crossovers and mutations actually fired during one
// Recombine call (brood recombination can report more than one crossover).
type Stats struct {
	Crossovers int
	Mutations  int
	Repulsed   bool
}
