package variation

import (
	"math/rand/v2"
	"testing"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/symbol"
)

func testSet() *symbol.Set {
	ss := symbol.New()
	ss.Insert(symbol.NewTerminal("X", 0, 10, func(f symbol.ArgFetcher) symbol.Value { return symbol.Some(1) }))
	ss.Insert(symbol.NewFunction("ADD", 0, []symbol.Category{0, 0}, 10, true, func(f symbol.ArgFetcher) symbol.Value {
		a, b := f.FetchArg(0), f.FetchArg(1)
		return symbol.Some(a.Data + b.Data)
	}))
	return ss
}

func newR(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^42)) }

func TestCrossoverPreservesShape(t *testing.T) {
	ss := testSet()
	r := newR(1)
	a, _ := genome.NewRandom(30, 6, ss, r)
	b, _ := genome.NewRandom(30, 6, ss, r)

	for _, kind := range []CrossoverKind{Uniform, OnePoint, TwoPoint, Tree} {
		off, err := Crossover(kind, a, b, r)
		if err != nil {
			t.Fatalf("Crossover(%v): %v", kind, err)
		}
		if !off.SameShape(a) {
			t.Fatalf("Crossover(%v) changed shape", kind)
		}
		if err := off.Validate(); err != nil {
			t.Fatalf("Crossover(%v) produced invalid genome: %v", kind, err)
		}
	}
}

func TestCrossoverRejectsShapeMismatch(t *testing.T) {
	ss := testSet()
	r := newR(2)
	a, _ := genome.NewRandom(10, 2, ss, r)
	b, _ := genome.NewRandom(12, 2, ss, r)
	if _, err := Crossover(TwoPoint, a, b, r); err != genome.ErrShapeMismatch {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestCrossoverDistanceStatistics(t *testing.T) {
	ss := testSet()
	r := newR(3)
	const trials = 300
	var totalRatio float64
	for i := 0; i < trials; i++ {
		a, _ := genome.NewRandom(20, 4, ss, r)
		b, _ := genome.NewRandom(20, 4, ss, r)
		off, err := Crossover(TwoPoint, a, b, r)
		if err != nil {
			t.Fatalf("Crossover: %v", err)
		}
		d, _ := genome.Distance(a, off)
		totalLoci := a.CodeLength() * a.Categories()
		totalRatio += float64(d) / float64(totalLoci)
	}
	mean := totalRatio / trials
	if mean < 0.30 || mean > 0.70 {
		t.Errorf("mean crossover distance ratio = %f, expected roughly around 0.5", mean)
	}
}

func TestMutateRateStatistics(t *testing.T) {
	// Mutate counts only genes that actually change. With a parametric
	// terminal in place of X a redrawn gene almost never equals the old
	// one, so the changed fraction tracks pMutation.
	ss := symbol.New()
	ss.Insert(symbol.NewParametricTerminal("C", 0, 10,
		func(r *rand.Rand) symbol.Value { return symbol.Some(r.Float64()) },
		func(f symbol.ArgFetcher) symbol.Value { return f.FetchParam() }))
	ss.Insert(symbol.NewFunction("ADD", 0, []symbol.Category{0, 0}, 10, true, func(f symbol.ArgFetcher) symbol.Value {
		a, b := f.FetchArg(0), f.FetchArg(1)
		return symbol.Some(a.Data + b.Data)
	}))
	r := newR(4)
	g, _ := genome.NewRandom(50, 10, ss, r)
	before := make([]genome.Gene, 0)
	for _, l := range g.ActiveLoci() {
		gene, _ := g.At(l)
		before = append(before, gene)
	}

	const trials = 4000
	changed := 0
	total := 0
	for i := 0; i < trials; i++ {
		g2, _ := genome.NewRandom(50, 10, ss, r)
		n := Mutate(g2, ss, r, 0.5, true)
		changed += n
		total += len(g2.ActiveLoci())
	}
	rate := float64(changed) / float64(total)
	if rate < 0.40 || rate > 0.60 {
		t.Errorf("observed mutation rate %f, expected close to 0.5", rate)
	}
	_ = before
}

func TestHereditaryRepulsionWithIdenticalParents(t *testing.T) {
	ss := testSet()
	r := newR(5)
	a, _ := genome.NewRandom(15, 3, ss, r)
	b := a.Clone() // identical parents -> crossover alone can't diverge

	off, err := Crossover(TwoPoint, a, b, r)
	if err != nil {
		t.Fatalf("Crossover: %v", err)
	}
	HereditaryRepulsion(off, a, b, ss, r, 0.3)
	// With identical parents, repulsion should usually (not always, given
	// the retry cap) produce a distinct signature.
	if off.Signature() == a.Signature() {
		t.Logf("repulsion exhausted its retry cap without diverging from an identical-parent pair; acceptable degenerate case")
	}
}

func TestBroodReportsKPlusOneCandidates(t *testing.T) {
	ss := testSet()
	r := newR(6)
	a, _ := genome.NewRandom(15, 3, ss, r)
	b, _ := genome.NewRandom(15, 3, ss, r)

	fast := func(g *genome.Genome) fitness.Vector {
		return fitness.Vector{float64(g.ActiveSize())}
	}
	_, total, err := Brood(TwoPoint, a, b, r, 3, fast)
	if err != nil {
		t.Fatalf("Brood: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected 4 total candidates (k=3 -> k+1=4), got %d", total)
	}
}
