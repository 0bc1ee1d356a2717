package strategy

import (
	"log/slog"
	"math/rand/v2"

	"go.uber.org/ratelimit"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/population"
	"github.com/morinim/vita-sub001/symbol"
)

// StopCondition reports whether the driver should halt, given the current
// generation count, the best fitness seen so far, and how many generations
// have elapsed since the last improvement.
type StopCondition func(generation int, best fitness.Vector, stuckFor int) bool

// MaxGenerations halts once generation reaches max.
func MaxGenerations(max int) StopCondition {
	return func(generation int, _ fitness.Vector, _ int) bool { return generation >= max }
}

// FitnessThreshold halts once best reaches or exceeds threshold.
func FitnessThreshold(threshold fitness.Vector) StopCondition {
	return func(_ int, best fitness.Vector, _ int) bool { return !best.Less(threshold) }
}

// MaxStuckTime halts once max generations have passed without the best
// fitness improving. max == 0 disables this condition.
func MaxStuckTime(max int) StopCondition {
	return func(_ int, _ fitness.Vector, stuckFor int) bool { return max > 0 && stuckFor >= max }
}

// Driver runs the steady-state generational loop over a layered
// population: one select→recombine→replace step per individual per
// generation, followed by aging and (for ALPS populations) layer
// maintenance.
type Driver struct {
	Pop         *population.Population
	Symbols     *symbol.Set
	Eval        Evaluator
	Select      Selector
	Recombine   Recombiner
	Replace     Replacer
	Rand        *rand.Rand
	AgeGap      uint
	CodeLength  int
	PatchLength int
	Elitism     bool
	Stop        []StopCondition

	log     *slog.Logger
	limiter ratelimit.Limiter

	Generation int
	Best       fitness.Vector
	StuckFor   int
	Mutations  int
	Crossovers int
}

// WithLogger attaches a structured logger the driver reports progress to.
func (d *Driver) WithLogger(l *slog.Logger) *Driver {
	d.log = l
	return d
}

// WithGenerationLimiter paces the loop to at most the limiter's rate,
// letting a long-running host cap generations/sec instead of hot-looping.
func (d *Driver) WithGenerationLimiter(l ratelimit.Limiter) *Driver {
	d.limiter = l
	return d
}

// Step performs one select→recombine→replace pass over every individual
// in every layer, i.e. one generation's worth of reproduction.
func (d *Driver) Step() {
	for l := 0; l < d.Pop.Layers(); l++ {
		n := d.Pop.LayerSize(l)
		for i := 0; i < n; i++ {
			anchor := Coordinate{Layer: l, Index: i}
			picks := d.Select.Select(d.Pop, anchor, d.Eval, d.Rand)
			if len(picks) < 2 {
				continue
			}
			mom, _ := d.Pop.At(picks[0].Layer, picks[0].Index)
			dad, _ := d.Pop.At(picks[1].Layer, picks[1].Index)
			offspring, stats := d.Recombine.Recombine([]*genome.Genome{mom, dad}, d.Symbols, d.Eval, d.Rand)
			d.Mutations += stats.Mutations
			d.Crossovers += stats.Crossovers

			offFit := d.Eval.Evaluate(offspring)
			d.Replace.Replace(d.Pop, anchor, picks, offspring, offFit, d.Eval, d.Rand, d.Elitism)

			if d.Best == nil || offFit.Greater(d.Best) {
				d.Best = offFit.Clone()
				d.StuckFor = 0
			}
		}
	}

	d.Pop.IncAge()
	d.AfterGen()
	d.Generation++
	if d.Best != nil {
		d.StuckFor++
	}

	if d.log != nil {
		d.log.Info("generation complete",
			"generation", d.Generation,
			"best", d.Best,
			"mutations", d.Mutations,
			"crossovers", d.Crossovers,
		)
	}
}

// AfterGen performs ALPS's every-age-gap-generations layer maintenance: it
// reinitialises layer 0 with fresh random individuals and pushes its
// previous occupants into layer 1 and upward via the same displacement
// cascade replacement uses. It never adds a layer; with AgeGap == 0 or a
// single layer it does nothing.
func (d *Driver) AfterGen() {
	if d.AgeGap == 0 || d.Pop.Layers() <= 1 {
		return
	}
	if uint(d.Generation+1)%d.AgeGap != 0 {
		return
	}

	evicted := make([]*genome.Genome, 0, d.Pop.LayerSize(0))
	for i := 0; i < d.Pop.LayerSize(0); i++ {
		ind, _ := d.Pop.At(0, i)
		evicted = append(evicted, ind)
	}
	fresh := make([]*genome.Genome, 0, d.Pop.LayerCapacity(0))
	for uint(len(fresh)) < d.Pop.LayerCapacity(0) {
		g, err := genome.NewRandom(d.CodeLength, d.PatchLength, d.Symbols, d.Rand)
		if err != nil {
			break
		}
		fresh = append(fresh, g)
	}
	_ = d.Pop.InitLayer(0, fresh)

	for _, ind := range evicted {
		tryAddToLayer(d.Pop, 1, ind, d.Eval.Fast(ind), d.Eval)
	}
}

// Run steps the driver until any configured StopCondition is satisfied.
func (d *Driver) Run() {
	for {
		if d.limiter != nil {
			d.limiter.Take()
		}
		d.Step()
		for _, cond := range d.Stop {
			if cond(d.Generation, d.Best, d.StuckFor) {
				return
			}
		}
	}
}
