package summary

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/symbol"
)

func testSet() *symbol.Set {
	ss := symbol.New()
	ss.Insert(symbol.NewTerminal("X", 0, 1, func(f symbol.ArgFetcher) symbol.Value { return symbol.Some(1) }))
	return ss
}

func TestStatsInsertMatchesDirectComputation(t *testing.T) {
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	var s Stats
	for _, x := range samples {
		s = s.Insert(x)
	}

	wantMean, _, _ := Descriptive(samples)
	if diff := s.Mean() - wantMean; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Stats.Mean() = %f, want %f", s.Mean(), wantMean)
	}

	// Stats.Variance() is the population variance (divide by n); gonum's
	// Descriptive returns the unbiased sample variance (divide by n-1), so
	// compare against a directly computed population variance instead.
	var sumsq float64
	for _, x := range samples {
		d := x - wantMean
		sumsq += d * d
	}
	wantPopVariance := sumsq / float64(len(samples))
	if diff := s.Variance() - wantPopVariance; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Stats.Variance() = %f, want (population) %f", s.Variance(), wantPopVariance)
	}
	if s.Max() != 9 || s.Min() != 2 {
		t.Errorf("Max/Min = %f/%f, want 9/2", s.Max(), s.Min())
	}
	if s.Len() != len(samples) {
		t.Errorf("Len() = %d, want %d", s.Len(), len(samples))
	}
}

func TestStatsMergeMatchesSequentialInsert(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{10, 20, 30}

	var sa, sb, combined Stats
	for _, x := range a {
		sa = sa.Insert(x)
		combined = combined.Insert(x)
	}
	for _, x := range b {
		sb = sb.Insert(x)
		combined = combined.Insert(x)
	}

	merged := sa.Merge(sb)
	if diff := merged.Mean() - combined.Mean(); diff > 1e-9 || diff < -1e-9 {
		t.Errorf("merged mean %f != sequential mean %f", merged.Mean(), combined.Mean())
	}
	if merged.Len() != combined.Len() {
		t.Errorf("merged len %d != sequential len %d", merged.Len(), combined.Len())
	}
	if merged.Max() != combined.Max() || merged.Min() != combined.Min() {
		t.Errorf("merged max/min (%f/%f) != sequential (%f/%f)", merged.Max(), merged.Min(), combined.Max(), combined.Min())
	}
}

func TestTickUsesInjectedClock(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)
	mock.Add(5 * time.Second)
	s.Tick()
	if s.Elapsed != 5*time.Second {
		t.Fatalf("expected Elapsed == 5s, got %v", s.Elapsed)
	}
}

func TestSaveLoadRoundTripWithBest(t *testing.T) {
	ss := testSet()
	g, err := genome.NewRandom(6, 1, ss, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}

	mock := clock.NewMock()
	s := New(mock)
	mock.Add(2 * time.Second)
	s.Tick()
	s.Best = g
	s.BestFitness = fitness.Vector{1, 2, 3}
	s.Mutations = 7
	s.Crossovers = 3
	s.Gen = 42
	s.LastImprovement = 40

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(&buf, ss)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Elapsed != s.Elapsed {
		t.Errorf("Elapsed mismatch: got %v want %v", loaded.Elapsed, s.Elapsed)
	}
	if loaded.Mutations != 7 || loaded.Crossovers != 3 || loaded.Gen != 42 || loaded.LastImprovement != 40 {
		t.Errorf("counters mismatch after round trip: %+v", loaded)
	}
	if !loaded.BestFitness.Equal(s.BestFitness) {
		t.Errorf("BestFitness mismatch: got %v want %v", loaded.BestFitness, s.BestFitness)
	}
	if loaded.Best == nil || !genome.Equal(loaded.Best, g) {
		t.Errorf("expected round-tripped Best individual to equal the original")
	}
}

func TestSaveLoadRoundTripWithoutBest(t *testing.T) {
	ss := testSet()
	s := &Summary{Mutations: 1, Crossovers: 2, Gen: 5, LastImprovement: 5}

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf, ss)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Best != nil {
		t.Fatalf("expected no best individual when presence flag is 0, got %+v", loaded.Best)
	}
	if loaded.Mutations != 1 || loaded.Crossovers != 2 || loaded.Gen != 5 {
		t.Fatalf("counters mismatch: %+v", loaded)
	}
}

func TestDescriptiveOfEmptySamples(t *testing.T) {
	mean, variance, stddev := Descriptive(nil)
	if mean != 0 || variance != 0 || stddev != 0 {
		t.Fatalf("expected all-zero descriptive stats for empty input, got %f %f %f", mean, variance, stddev)
	}
}
