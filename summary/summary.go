// Package summary tracks a run's streaming statistics (best individual,
// mutation/crossover counters, elapsed time) and their textual
// serialization, generalising cbarrick/evo's online Stats to the
// lexicographic fitness.Vector this engine uses.
package summary

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"gonum.org/v1/gonum/stat"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/strategy"
	"github.com/morinim/vita-sub001/symbol"
)

// Stats is a Welford-style streaming collector over the scalar (primary)
// component of a fitness.Vector, ported from cbarrick/evo's Insert/Merge
// and widened to use gonum for the one-shot descriptive statistics an
// end-of-run report needs (gonum has no partial-aggregate Merge primitive,
// so the online moments stay hand-rolled).
type Stats struct {
	max, min float64
	mean     float64
	sumsq    float64
	n        float64
}

// Insert folds x into the running statistics.
func (s Stats) Insert(x float64) Stats {
	if s.n == 0 {
		s.max = math.Inf(-1)
		s.min = math.Inf(+1)
	}
	delta := x - s.mean
	newN := s.n + 1
	s.max = math.Max(s.max, x)
	s.min = math.Min(s.min, x)
	s.mean += delta / newN
	s.sumsq += delta * delta * (s.n / newN)
	s.n = newN
	return s
}

// Merge combines two independently accumulated Stats.
func (s Stats) Merge(t Stats) Stats {
	if s.n == 0 {
		return t
	}
	if t.n == 0 {
		return s
	}
	delta := t.mean - s.mean
	newN := s.n + t.n
	s.max = math.Max(s.max, t.max)
	s.min = math.Min(s.min, t.min)
	s.mean += delta * (t.n / newN)
	s.sumsq += t.sumsq + delta*delta*(s.n*t.n/newN)
	s.n = newN
	return s
}

func (s Stats) Max() float64  { return s.max }
func (s Stats) Min() float64  { return s.min }
func (s Stats) Mean() float64 { return s.mean }
func (s Stats) Len() int      { return int(s.n) }

// Variance returns the population variance (sum of squared deviations
// divided by n). gonum's stat.Variance, which Descriptive uses, divides by
// n-1 instead. The streaming accumulator keeps its own sumsq because gonum
// has no online Merge of partial aggregates.
func (s Stats) Variance() float64 {
	if s.n == 0 {
		return 0
	}
	return s.sumsq / s.n
}

func (s Stats) StdDeviation() float64 { return math.Sqrt(s.Variance()) }

// Descriptive recomputes mean/variance/stddev from raw samples via gonum,
// for an end-of-run report where the full sample set is available (as
// opposed to the streaming Stats used during the loop).
func Descriptive(samples []float64) (mean, variance, stddev float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	mean = stat.Mean(samples, nil)
	variance = stat.Variance(samples, nil)
	return mean, variance, math.Sqrt(variance)
}

// Summary is a run's final report: the best individual found, the
// layer-by-layer analyzer snapshot, and the counters spec §6 requires to
// be serialized.
type Summary struct {
	Gen             int
	Best            *genome.Genome
	BestFitness     fitness.Vector
	Mutations       int
	Crossovers      int
	LastImprovement int
	Elapsed         time.Duration
	Analyzer        []strategy.LayerStats

	clock clock.Clock
	start time.Time
}

// New creates a Summary whose elapsed-time accounting uses clk, so tests
// can advance time deterministically instead of sleeping; production
// callers pass clock.New().
func New(clk clock.Clock) *Summary {
	return &Summary{clock: clk, start: clk.Now()}
}

// Tick refreshes Elapsed from the injected clock.
func (s *Summary) Tick() {
	s.Elapsed = s.clock.Now().Sub(s.start)
}

// Save writes the textual serialization of spec §6: a presence flag, then
// (if present) the best individual followed by its fitness, then the run
// counters on a final line.
func (s *Summary) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if s.Best == nil {
		if _, err := fmt.Fprintln(bw, 0); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(bw, 1); err != nil {
			return err
		}
		if err := s.Best.Save(bw); err != nil {
			return err
		}
		if err := saveFitnessLine(bw, s.BestFitness); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "%d %d %d %d %d\n",
		s.Elapsed.Nanoseconds(), s.Mutations, s.Crossovers, s.Gen, s.LastImprovement); err != nil {
		return err
	}
	return bw.Flush()
}

// Load is the transactional inverse of Save: it parses into a scratch
// Summary and only returns it once the whole stream has been consumed
// successfully. ss resolves the opcodes of the serialized best
// individual, the same symbol set the run used.
func Load(r io.Reader, ss *symbol.Set) (*Summary, error) {
	br := bufio.NewScanner(r)
	br.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	readLine := func() (string, error) {
		if !br.Scan() {
			if err := br.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return br.Text(), nil
	}

	var present int
	line, err := readLine()
	if err != nil {
		return nil, fmt.Errorf("summary: load presence flag: %w", err)
	}
	if _, err := fmt.Sscanf(line, "%d", &present); err != nil {
		return nil, fmt.Errorf("summary: load presence flag: %w", err)
	}

	out := &Summary{}
	if present != 0 {
		g, err := genome.LoadLines(readLine, ss)
		if err != nil {
			return nil, fmt.Errorf("summary: load best individual: %w", err)
		}
		out.Best = g
		fitLine, err := readLine()
		if err != nil {
			return nil, fmt.Errorf("summary: load best fitness: %w", err)
		}
		f, err := parseFitnessLine(fitLine)
		if err != nil {
			return nil, fmt.Errorf("summary: load best fitness: %w", err)
		}
		out.BestFitness = f
	}

	line, err = readLine()
	if err != nil {
		return nil, fmt.Errorf("summary: load counters: %w", err)
	}
	var elapsedNs int64
	if _, err := fmt.Sscanf(line, "%d %d %d %d %d",
		&elapsedNs, &out.Mutations, &out.Crossovers, &out.Gen, &out.LastImprovement); err != nil {
		return nil, fmt.Errorf("summary: load counters: %w", err)
	}
	out.Elapsed = time.Duration(elapsedNs)
	return out, nil
}

func saveFitnessLine(w io.Writer, f fitness.Vector) error {
	for i, v := range f {
		sep := " "
		if i == 0 {
			sep = ""
		}
		if _, err := fmt.Fprintf(w, "%s%g", sep, v); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func parseFitnessLine(line string) (fitness.Vector, error) {
	if line == "" {
		return fitness.Vector{}, nil
	}
	var f fitness.Vector
	for _, field := range strings.Fields(line) {
		var v float64
		if _, err := fmt.Sscan(field, &v); err != nil {
			return nil, err
		}
		f = append(f, v)
	}
	return f, nil
}
