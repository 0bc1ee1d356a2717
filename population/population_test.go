package population

import (
	"math/rand/v2"
	"testing"

	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/symbol"
)

func testSet() *symbol.Set {
	ss := symbol.New()
	ss.Insert(symbol.NewTerminal("X", 0, 1, func(f symbol.ArgFetcher) symbol.Value { return symbol.Some(1) }))
	return ss
}

func newGenome(t *testing.T) *genome.Genome {
	t.Helper()
	g, err := genome.NewRandom(6, 1, testSet(), rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	return g
}

func TestMaxAgeSchedule(t *testing.T) {
	const gap = 10
	cases := []struct {
		layer, top uint
		want       uint
	}{
		{0, 3, gap},
		{1, 3, 2 * gap},
		{2, 3, 4 * gap},
		{3, 3, ^uint(0)}, // top layer unbounded
	}
	for _, c := range cases {
		if got := MaxAge(c.layer, c.top, gap); got != c.want {
			t.Errorf("MaxAge(%d,%d,%d) = %d, want %d", c.layer, c.top, gap, got, c.want)
		}
	}
}

func TestNewAndAppend(t *testing.T) {
	p := New(3, 10)
	if p.Layers() != 1 {
		t.Fatalf("expected 1 layer, got %d", p.Layers())
	}
	g := newGenome(t)
	if err := p.Append(0, g); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if p.LayerSize(0) != 1 || p.Individuals() != 1 {
		t.Fatalf("unexpected sizes after Append")
	}
}

func TestAppendRejectsOverCapacity(t *testing.T) {
	p := New(1, 10)
	if err := p.Append(0, newGenome(t)); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := p.Append(0, newGenome(t)); err == nil {
		t.Fatalf("expected error appending beyond layer capacity")
	}
}

func TestAddLayerAndIndexing(t *testing.T) {
	p := New(2, 10)
	idx := p.AddLayer(4)
	if idx != 1 {
		t.Fatalf("expected new layer index 1, got %d", idx)
	}
	if p.Layers() != 2 {
		t.Fatalf("expected 2 layers, got %d", p.Layers())
	}
	if p.LayerCapacity(1) != 4 {
		t.Fatalf("expected layer 1 capacity 4, got %d", p.LayerCapacity(1))
	}
}

func TestInitLayerAndAt(t *testing.T) {
	p := New(2, 10)
	g1, g2 := newGenome(t), newGenome(t)
	if err := p.InitLayer(0, []*genome.Genome{g1, g2}); err != nil {
		t.Fatalf("InitLayer: %v", err)
	}
	got, err := p.At(0, 1)
	if err != nil || got != g2 {
		t.Fatalf("At(0,1) = %v, %v; want g2", got, err)
	}
}

func TestRemoveAt(t *testing.T) {
	p := New(3, 10)
	g1, g2, g3 := newGenome(t), newGenome(t), newGenome(t)
	_ = p.InitLayer(0, []*genome.Genome{g1, g2, g3})
	if err := p.RemoveAt(0, 1); err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if p.LayerSize(0) != 2 {
		t.Fatalf("expected size 2 after RemoveAt, got %d", p.LayerSize(0))
	}
	remaining, _ := p.At(0, 1)
	if remaining != g3 {
		t.Fatalf("expected g3 to shift into slot 1 after removal")
	}
}

func TestIncAgeAndIsAgedOut(t *testing.T) {
	p := New(1, 5) // single layer is also the top layer -> unbounded age
	g := newGenome(t)
	_ = p.Append(0, g)
	for i := 0; i < 100; i++ {
		p.IncAge()
	}
	if g.Age() != 100 {
		t.Fatalf("expected age 100, got %d", g.Age())
	}
	if p.IsAgedOut(0, g) {
		t.Fatalf("single-layer population's only layer is the top layer and should never age out")
	}
}

func TestIsAgedOutNonTopLayer(t *testing.T) {
	p := New(2, 5)
	p.AddLayer(2)
	g := newGenome(t)
	_ = p.Append(0, g)
	for i := 0; i < 6; i++ {
		g.IncAge()
	}
	if !p.IsAgedOut(0, g) {
		t.Fatalf("expected individual older than layer-0's max age (%d) to be aged out", p.MaxAgeOf(0))
	}
}
