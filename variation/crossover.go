// Package variation implements the genetic operators: crossover, mutation,
// brood recombination, hereditary-repulsion repair and block/ADF
// discovery. Every operator here preserves the shape invariants of a
// genome and invalidates the signature of any genome it writes into.
package variation

import (
	"math/rand/v2"

	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/symbol"
)

// CrossoverKind selects one of the four documented crossover schemes. The
// source this engine is modelled on picks a scheme at compile time; here
// it is a runtime enum so a host (or strategy.BaseRecombiner) can choose
// among them per run.
type CrossoverKind int

const (
	// Uniform copies each locus from parent A or B with probability 1/2.
	Uniform CrossoverKind = iota
	// OnePoint copies a single random row cut; rows beyond it come from
	// the non-base parent.
	OnePoint
	// TwoPoint copies two random row cuts; rows inside the cut window
	// come from the non-base parent, outside it from the base parent.
	// This is the default scheme.
	TwoPoint
	// Tree copies the active descendants of a random active locus of the
	// other parent into a clone of the base parent.
	Tree
)

// Crossover produces one offspring of a and b using the given scheme.
// Offspring age is max(age(a), age(b)) regardless of scheme.
func Crossover(kind CrossoverKind, a, b *genome.Genome, r *rand.Rand) (*genome.Genome, error) {
	if !a.SameShape(b) {
		return nil, genome.ErrShapeMismatch
	}
	var off *genome.Genome
	switch kind {
	case Uniform:
		off = uniformX(a, b, r)
	case OnePoint:
		off = onePointX(a, b, r)
	case TwoPoint:
		off = twoPointX(a, b, r)
	case Tree:
		off = treeX(a, b, r)
	default:
		off = twoPointX(a, b, r)
	}
	off.SetAge(maxInt(a.Age(), b.Age()))
	return off, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// buildFromMask clones base and, for every row where fromOther returns
// true, overwrites that row's cells (all categories) with other's genes.
func buildFromMask(base, other *genome.Genome, fromOther func(row int) bool) *genome.Genome {
	off := base.Clone()
	for row := 0; row < base.CodeLength(); row++ {
		if !fromOther(row) {
			continue
		}
		for cat := 0; cat < base.Categories(); cat++ {
			l := genome.Locus{Row: row, Category: symbol.Category(cat)}
			gene, err := other.At(l)
			if err != nil {
				continue
			}
			_ = off.Set(l, gene)
		}
	}
	return off
}

func uniformX(a, b *genome.Genome, r *rand.Rand) *genome.Genome {
	off := a.Clone()
	for row := 0; row < a.CodeLength(); row++ {
		for cat := 0; cat < a.Categories(); cat++ {
			if r.IntN(2) == 0 {
				continue
			}
			l := genome.Locus{Row: row, Category: symbol.Category(cat)}
			gene, err := b.At(l)
			if err == nil {
				_ = off.Set(l, gene)
			}
		}
	}
	return off
}

func onePointX(a, b *genome.Genome, r *rand.Rand) *genome.Genome {
	base, other := a, b
	if r.IntN(2) == 1 {
		base, other = b, a
	}
	cut := 1 + r.IntN(base.CodeLength()-1)
	return buildFromMask(base, other, func(row int) bool { return row >= cut })
}

func twoPointX(a, b *genome.Genome, r *rand.Rand) *genome.Genome {
	base, other := a, b
	if r.IntN(2) == 1 {
		base, other = b, a
	}
	k1 := r.IntN(base.CodeLength())
	k2 := r.IntN(base.CodeLength())
	if k1 > k2 {
		k1, k2 = k2, k1
	}
	return buildFromMask(base, other, func(row int) bool { return row >= k1 && row < k2 })
}

func treeX(a, b *genome.Genome, r *rand.Rand) *genome.Genome {
	off := a.Clone()
	active := b.ActiveLoci()
	root := active[r.IntN(len(active))]
	for _, l := range b.ActiveLociFrom(root) {
		gene, err := b.At(l)
		if err == nil {
			_ = off.Set(l, gene)
		}
	}
	return off
}
