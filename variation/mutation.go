package variation

import (
	"math/rand/v2"

	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/symbol"
)

// Mutate replaces each active locus of g with a fresh random gene
// respecting its position with independent probability pMutation, writing
// in place. It returns the number of loci actually changed. When
// activeOnly is false, every locus of the genome (including introns) is
// eligible, matching the spec's "option: every locus".
func Mutate(g *genome.Genome, ss *symbol.Set, r *rand.Rand, pMutation float64, activeOnly bool) int {
	var loci []genome.Locus
	if activeOnly {
		loci = g.ActiveLoci()
	} else {
		loci = allLoci(g)
	}

	changed := 0
	for _, l := range loci {
		if r.Float64() >= pMutation {
			continue
		}
		fresh, err := genome.NewRandomGeneAt(ss, l, g.CodeLength(), g.PatchLength(), r)
		if err != nil {
			continue
		}
		before, _ := g.At(l)
		if err := g.Set(l, fresh); err == nil && !sameGene(before, fresh) {
			changed++
		}
	}
	return changed
}

func allLoci(g *genome.Genome) []genome.Locus {
	loci := make([]genome.Locus, 0, g.CodeLength()*g.Categories())
	for row := 0; row < g.CodeLength(); row++ {
		for cat := 0; cat < g.Categories(); cat++ {
			loci = append(loci, genome.Locus{Row: row, Category: symbol.Category(cat)})
		}
	}
	return loci
}

func sameGene(a, b genome.Gene) bool {
	if a.Sym.Opcode() != b.Sym.Opcode() {
		return false
	}
	if a.Sym.Parametric() {
		return a.Param == b.Param
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i] != b.Args[i] {
			return false
		}
	}
	return true
}

// maxHereditaryRepulsionRetries bounds the "while offspring.signature in
// {parentA, parentB}: mutate()" loop of the design, which the spec flags
// as unbounded under p_mutation == 0. Eight retries (the spec's own
// suggested figure) is the cap; beyond it the duplicate is accepted.
const maxHereditaryRepulsionRetries = 8

// HereditaryRepulsion mutates off in place until its signature differs
// from both parents' signatures, or the retry cap is reached. It reports
// whether repair actually had to run.
func HereditaryRepulsion(off, a, b *genome.Genome, ss *symbol.Set, r *rand.Rand, pMutation float64) bool {
	repulsed := false
	sigA, sigB := a.Signature(), b.Signature()
	for i := 0; i < maxHereditaryRepulsionRetries; i++ {
		sig := off.Signature()
		if sig != sigA && sig != sigB {
			return repulsed
		}
		repulsed = true
		Mutate(off, ss, r, pMutation, true)
	}
	return repulsed
}
