package strategy

import (
	"math/rand/v2"
	"testing"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/population"
	"github.com/morinim/vita-sub001/symbol"
)

// scoreEval scores a genome by its ActiveSize, giving every test a cheap,
// deterministic fitness landscape without needing a real interpreter.
type scoreEval struct {
	overrides map[*genome.Genome]float64
	clears    int
}

func (e *scoreEval) score(g *genome.Genome) float64 {
	if e.overrides != nil {
		if v, ok := e.overrides[g]; ok {
			return v
		}
	}
	return float64(g.ActiveSize())
}

func (e *scoreEval) Evaluate(g *genome.Genome) fitness.Vector { return fitness.Vector{e.score(g)} }
func (e *scoreEval) Fast(g *genome.Genome) fitness.Vector     { return fitness.Vector{e.score(g)} }
func (e *scoreEval) Clear()                                   { e.clears++ }

func testSet() *symbol.Set {
	ss := symbol.New()
	ss.Insert(symbol.NewTerminal("X", 0, 10, func(f symbol.ArgFetcher) symbol.Value { return symbol.Some(1) }))
	ss.Insert(symbol.NewFunction("ADD", 0, []symbol.Category{0, 0}, 10, true, func(f symbol.ArgFetcher) symbol.Value {
		a, b := f.FetchArg(0), f.FetchArg(1)
		return symbol.Some(a.Data + b.Data)
	}))
	return ss
}

func newR(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^7)) }

func fillLayer(t *testing.T, pop *population.Population, l, n int, ss *symbol.Set, r *rand.Rand) []*genome.Genome {
	t.Helper()
	inds := make([]*genome.Genome, n)
	for i := 0; i < n; i++ {
		g, err := genome.NewRandom(10, 2, ss, r)
		if err != nil {
			t.Fatalf("NewRandom: %v", err)
		}
		inds[i] = g
	}
	if err := pop.InitLayer(l, inds); err != nil {
		t.Fatalf("InitLayer: %v", err)
	}
	return inds
}

func TestTournamentSelectorPrefersFitter(t *testing.T) {
	ss := testSet()
	r := newR(1)
	pop := population.New(20, 10)
	inds := fillLayer(t, pop, 0, 20, ss, r)

	eval := &scoreEval{overrides: map[*genome.Genome]float64{}}
	for i, g := range inds {
		eval.overrides[g] = float64(i) // strictly increasing fitness by index
	}

	sel := TournamentSelector{Size: 8, MateZone: 0}
	anchor := Coordinate{Layer: 0, Index: 0}

	var totalWinnerIdx int
	const trials = 500
	for i := 0; i < trials; i++ {
		picks := sel.Select(pop, anchor, eval, r)
		if len(picks) != 3 {
			t.Fatalf("expected 3 coordinates, got %d", len(picks))
		}
		totalWinnerIdx += picks[0].Index
	}
	meanWinner := float64(totalWinnerIdx) / trials
	// With a large tournament size over a monotonically increasing fitness
	// landscape, the mean winning index should sit well above the
	// population's midpoint (9.5).
	if meanWinner < 12 {
		t.Errorf("expected tournament selection pressure to favor high-index (fitter) individuals, mean winner index = %f", meanWinner)
	}
}

func TestALPSSelectorStaysSameLayerAtLayerZero(t *testing.T) {
	ss := testSet()
	r := newR(2)
	pop := population.New(5, 10)
	pop.AddLayer(5)
	fillLayer(t, pop, 0, 5, ss, r)
	fillLayer(t, pop, 1, 5, ss, r)

	eval := &scoreEval{}
	sel := ALPSSelector{Inner: TournamentSelector{Size: 2}, PSameLayer: 0.0}
	anchor := Coordinate{Layer: 0, Index: 0}
	for i := 0; i < 50; i++ {
		picks := sel.Select(pop, anchor, eval, r)
		for _, p := range picks {
			if p.Layer != 0 {
				t.Fatalf("layer-0 anchor must never draw from another layer, got %+v", p)
			}
		}
	}
}

func TestALPSSelectorMigratesFromLayerBelow(t *testing.T) {
	ss := testSet()
	r := newR(3)
	pop := population.New(5, 10)
	pop.AddLayer(5)
	pop.AddLayer(5)
	fillLayer(t, pop, 0, 5, ss, r)
	fillLayer(t, pop, 1, 5, ss, r)
	fillLayer(t, pop, 2, 5, ss, r)

	eval := &scoreEval{}
	sel := ALPSSelector{Inner: TournamentSelector{Size: 2}, PSameLayer: 0.0}
	anchor := Coordinate{Layer: 2, Index: 0}

	for i := 0; i < 50; i++ {
		picks := sel.Select(pop, anchor, eval, r)
		if picks[1].Layer != anchor.Layer-1 {
			t.Fatalf("expected migration to draw deterministically from the layer directly below (%d), got %d", anchor.Layer-1, picks[1].Layer)
		}
	}
}

func TestTournamentReplacerOnlyReplacesOnImprovement(t *testing.T) {
	ss := testSet()
	r := newR(4)
	pop := population.New(2, 10)
	fillLayer(t, pop, 0, 2, ss, r)

	current, _ := pop.At(0, 0)
	eval := &scoreEval{overrides: map[*genome.Genome]float64{current: 5}}
	offspring, _ := genome.NewRandom(10, 2, ss, r)

	rep := TournamentReplacer{}
	picks := []Coordinate{{0, 0}}
	rep.Replace(pop, Coordinate{0, 0}, picks, offspring, fitness.Vector{3}, eval, r, true)
	if got, _ := pop.At(0, 0); got != current {
		t.Fatalf("expected no replacement when offspring is worse")
	}

	rep.Replace(pop, Coordinate{0, 0}, picks, offspring, fitness.Vector{9}, eval, r, true)
	if got, _ := pop.At(0, 0); got != offspring {
		t.Fatalf("expected replacement when offspring is fitter")
	}
}

func TestTournamentReplacerWithoutElitismReplacesUnconditionally(t *testing.T) {
	ss := testSet()
	r := newR(4)
	pop := population.New(2, 10)
	fillLayer(t, pop, 0, 2, ss, r)

	current, _ := pop.At(0, 0)
	eval := &scoreEval{overrides: map[*genome.Genome]float64{current: 5}}
	offspring, _ := genome.NewRandom(10, 2, ss, r)

	rep := TournamentReplacer{}
	picks := []Coordinate{{0, 0}}
	rep.Replace(pop, Coordinate{0, 0}, picks, offspring, fitness.Vector{3}, eval, r, false)
	if got, _ := pop.At(0, 0); got != offspring {
		t.Fatalf("expected unconditional replacement without elitism, even though offspring is worse")
	}
}

func TestFamilyCompetitionReplacerRequiresBeatingWorstParent(t *testing.T) {
	ss := testSet()
	r := newR(5)
	pop := population.New(3, 10)
	fillLayer(t, pop, 0, 3, ss, r)

	mom, _ := pop.At(0, 0)
	dad, _ := pop.At(0, 1)
	eval := &scoreEval{overrides: map[*genome.Genome]float64{mom: 10, dad: 2}}
	offspring, _ := genome.NewRandom(10, 2, ss, r)

	rep := FamilyCompetitionReplacer{}
	picks := []Coordinate{{0, 0}, {0, 1}}
	rep.Replace(pop, Coordinate{0, 2}, picks, offspring, fitness.Vector{1}, eval, r, true)
	if got, _ := pop.At(0, 1); got == offspring {
		t.Fatalf("offspring worse than both parents must not replace the worse parent")
	}

	// A tie with the worst parent (dad=2) must not replace: elitism requires
	// strict improvement.
	rep.Replace(pop, Coordinate{0, 2}, picks, offspring, fitness.Vector{2}, eval, r, true)
	if got, _ := pop.At(0, 1); got == offspring {
		t.Fatalf("offspring merely tying the worst parent must not replace it under elitism")
	}

	rep.Replace(pop, Coordinate{0, 2}, picks, offspring, fitness.Vector{5}, eval, r, true)
	if got, _ := pop.At(0, 1); got != offspring {
		t.Fatalf("offspring beating the worst parent (dad=2) should replace it")
	}
}

func TestFamilyCompetitionReplacerNonElitismIsProbabilisticCrowding(t *testing.T) {
	ss := testSet()
	r := newR(5)
	pop := population.New(3, 10)
	fillLayer(t, pop, 0, 3, ss, r)

	mom, _ := pop.At(0, 0)
	dad, _ := pop.At(0, 1)
	eval := &scoreEval{overrides: map[*genome.Genome]float64{mom: 10, dad: 0}}
	offspring, _ := genome.NewRandom(10, 2, ss, r)

	rep := FamilyCompetitionReplacer{}
	picks := []Coordinate{{0, 0}, {0, 1}}

	replaced := 0
	for i := 0; i < 100; i++ {
		_ = pop.Set(0, 1, dad)
		rep.Replace(pop, Coordinate{0, 2}, picks, offspring, fitness.Vector{10}, eval, r, false)
		if got, _ := pop.At(0, 1); got == offspring {
			replaced++
		}
	}
	// fDad=0, fOff=10 -> crowdingProb = 1 - 0/10 = 1: dad should be replaced
	// on every trial.
	if replaced != 100 {
		t.Fatalf("expected probabilistic crowding to always replace a zero-fitness worse parent against a strictly fitter offspring, replaced %d/100", replaced)
	}
}

func TestALPSReplacerCascadesOnOverflow(t *testing.T) {
	ss := testSet()
	r := newR(6)
	pop := population.New(1, 10) // layer 0 capacity 1
	pop.AddLayer(1)              // layer 1 capacity 1, top layer, unbounded age
	fillLayer(t, pop, 0, 1, ss, r)
	fillLayer(t, pop, 1, 1, ss, r)

	incumbent0, _ := pop.At(0, 0)
	incumbent1, _ := pop.At(1, 0)
	eval := &scoreEval{overrides: map[*genome.Genome]float64{
		incumbent0: 1,
		incumbent1: 1,
	}}

	offspring, _ := genome.NewRandom(10, 2, ss, r)
	eval.overrides[offspring] = 100

	rep := ALPSReplacer{}
	rep.Replace(pop, Coordinate{Layer: 0, Index: 0}, nil, offspring, fitness.Vector{100}, eval, r, true)

	got0, _ := pop.At(0, 0)
	if got0 != offspring {
		t.Fatalf("expected fitter offspring to displace layer 0's incumbent")
	}
	got1, _ := pop.At(1, 0)
	if got1 != incumbent0 {
		t.Fatalf("expected displaced layer-0 incumbent to cascade up into layer 1, got %v", got1)
	}
}

func TestALPSReplacerRespectsAgeCeiling(t *testing.T) {
	ss := testSet()
	r := newR(7)
	pop := population.New(2, 3) // layer 0 max age = 3 (single layer -> top, unbounded though)
	pop.AddLayer(2)             // now layer 0 is not top: max age 3
	fillLayer(t, pop, 0, 1, ss, r)
	ind, _ := pop.At(0, 0)
	ind.SetAge(10) // already aged out of layer 0 (max age 3)

	eval := &scoreEval{}
	tryAddToLayer(pop, 0, ind, eval.Fast(ind), eval)
	// The aged-out individual is not added to layer 0 again; it should have
	// been pushed to layer 1 instead.
	size1 := pop.LayerSize(1)
	if size1 == 0 {
		t.Fatalf("expected an aged-out individual to cascade into layer 1")
	}
}

func TestParetoReplacerSkipsWhenDominated(t *testing.T) {
	ss := testSet()
	r := newR(8)
	pop := population.New(1, 10)
	fillLayer(t, pop, 0, 1, ss, r)
	current, _ := pop.At(0, 0)
	eval := &scoreEval{overrides: map[*genome.Genome]float64{current: 0}}

	offspring, _ := genome.NewRandom(10, 2, ss, r)

	rep := ParetoReplacer{}
	eval.overrides[current] = 5
	// offspring's fitness (1) is strictly worse -> current dominates it.
	rep.Replace(pop, Coordinate{0, 0}, nil, offspring, fitness.Vector{1}, eval, r, true)
	if got, _ := pop.At(0, 0); got == offspring {
		t.Fatalf("dominated offspring must not replace anchor")
	}

	rep.Replace(pop, Coordinate{0, 0}, nil, offspring, fitness.Vector{9}, eval, r, true)
	if got, _ := pop.At(0, 0); got != offspring {
		t.Fatalf("non-dominated (better) offspring should replace anchor")
	}
}

func TestDriverStepAdvancesGeneration(t *testing.T) {
	ss := testSet()
	r := newR(9)
	pop := population.New(6, 4)
	fillLayer(t, pop, 0, 6, ss, r)

	eval := &scoreEval{}
	d := &Driver{
		Pop:         pop,
		Symbols:     ss,
		Eval:        eval,
		Select:      TournamentSelector{Size: 2, MateZone: 0},
		Recombine:   BaseRecombiner{Kind: 2 /* TwoPoint */, PCross: 1.0, PMutation: 0.1},
		Replace:     TournamentReplacer{},
		Rand:        r,
		AgeGap:      4,
		CodeLength:  10,
		PatchLength: 2,
		Elitism:     true,
	}
	d.Step()
	if d.Generation != 1 {
		t.Fatalf("expected Generation==1 after one Step, got %d", d.Generation)
	}
}

func TestDriverRunRespectsMaxGenerations(t *testing.T) {
	ss := testSet()
	r := newR(10)
	pop := population.New(6, 4)
	fillLayer(t, pop, 0, 6, ss, r)

	eval := &scoreEval{}
	d := &Driver{
		Pop:         pop,
		Symbols:     ss,
		Eval:        eval,
		Select:      TournamentSelector{Size: 2, MateZone: 0},
		Recombine:   BaseRecombiner{Kind: 2, PCross: 1.0, PMutation: 0.1},
		Replace:     TournamentReplacer{},
		Rand:        r,
		AgeGap:      0,
		CodeLength:  10,
		PatchLength: 2,
		Elitism:     true,
		Stop:        []StopCondition{MaxGenerations(3)},
	}
	d.Run()
	if d.Generation != 3 {
		t.Fatalf("expected Run to stop exactly at generation 3, got %d", d.Generation)
	}
}

func TestAnalyzeSummarizesEachLayer(t *testing.T) {
	ss := testSet()
	r := newR(11)
	pop := population.New(4, 10)
	pop.AddLayer(4)
	fillLayer(t, pop, 0, 4, ss, r)
	fillLayer(t, pop, 1, 4, ss, r)

	eval := &scoreEval{}
	stats, err := Analyze(pop, eval)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 layers, got %d", len(stats))
	}
	for _, s := range stats {
		if s.Size != 4 {
			t.Fatalf("expected layer size 4, got %d", s.Size)
		}
		if s.Best == nil || s.Worst == nil {
			t.Fatalf("expected Best/Worst to be populated")
		}
	}
}
