// Package genome implements the MEP genome: a fixed-shape rows×categories
// matrix of genes, its active-subtree iterator, signature hashing, and the
// random-construction procedure that guarantees well-formed expressions.
package genome

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/morinim/vita-sub001/symbol"
)

// Errors returned by genome operations. Invariant violations (backward or
// out-of-range argument reference, non-terminal patch row) are reported
// through Validate rather than panicking, so a host can audit a genome
// without crashing on programmer error in debug builds. Validate does not
// check that a function gene's argument count matches its symbol's arity.
var (
	ErrShapeMismatch = errors.New("genome: shape mismatch")
	ErrInvalidLocus  = errors.New("genome: locus out of bounds")
	ErrBadArgument   = errors.New("genome: argument index does not point strictly forward")
	ErrBadPatch      = errors.New("genome: patch-section row is not a terminal")
)

// Signature is the 128-bit hash of a genome's active subtree. Two genomes
// whose active subtrees are logically equivalent (same pre-order
// symbol+param+child sequence) share a Signature by construction.
type Signature [2]uint64

// Genome is a rectangular matrix of Genes plus a distinguished best locus
// identifying the root of the active program, and an age counter used by
// the age-layered population structure.
type Genome struct {
	rows, cats  int
	patchLength int
	cells       [][]Gene // cells[row][category]
	best        Locus
	age         int

	sigValid bool
	sig      Signature
}

// CodeLength returns the number of rows (e.Rows in the spec's notation).
func (g *Genome) CodeLength() int { return g.rows }

// Categories returns the number of categories.
func (g *Genome) Categories() int { return g.cats }

// PatchLength returns the length of the terminals-only tail section.
func (g *Genome) PatchLength() int { return g.patchLength }

// Best returns the locus of the active program's root.
func (g *Genome) Best() Locus { return g.best }

// SetBest changes the active root and invalidates the signature.
func (g *Genome) SetBest(l Locus) {
	g.best = l
	g.sigValid = false
}

// Age returns the genome's age counter.
func (g *Genome) Age() int { return g.age }

// SetAge overwrites the age counter (used by crossover offspring and by
// deserialisation).
func (g *Genome) SetAge(a int) { g.age = a }

// IncAge increments the age counter by one.
func (g *Genome) IncAge() { g.age++ }

// At returns a copy of the gene at locus l.
func (g *Genome) At(l Locus) (Gene, error) {
	if !g.inBounds(l) {
		return Gene{}, fmt.Errorf("%w: %v", ErrInvalidLocus, l)
	}
	return g.cells[l.Row][l.Category].clone(), nil
}

// Set overwrites the gene at locus l and invalidates the signature.
func (g *Genome) Set(l Locus, gene Gene) error {
	if !g.inBounds(l) {
		return fmt.Errorf("%w: %v", ErrInvalidLocus, l)
	}
	g.cells[l.Row][l.Category] = gene.clone()
	g.sigValid = false
	return nil
}

func (g *Genome) inBounds(l Locus) bool {
	return l.Row >= 0 && l.Row < g.rows && int(l.Category) >= 0 && int(l.Category) < g.cats
}

// allocate builds an empty rows x cats matrix.
func allocate(rows, cats, patchLength int) *Genome {
	cells := make([][]Gene, rows)
	for i := range cells {
		cells[i] = make([]Gene, cats)
	}
	return &Genome{rows: rows, cats: cats, patchLength: patchLength, cells: cells}
}

// NewRandom builds a random genome of the given shape. Rows before the
// patch section may hold functions or terminals of any registered
// category; the patch section (the last patchLength rows) holds terminals
// only, which guarantees every function's argument chain terminates.
// ss.EnoughTerminals() must hold, or NewRandom returns ErrNoTerminal.
func NewRandom(codeLength, patchLength int, ss *symbol.Set, r *rand.Rand) (*Genome, error) {
	if patchLength >= codeLength {
		return nil, fmt.Errorf("%w: patch_length (%d) must be < code_length (%d)", ErrShapeMismatch, patchLength, codeLength)
	}
	if !ss.EnoughTerminals() {
		return nil, symbol.ErrNoTerminal
	}

	cats := ss.Categories()
	g := allocate(codeLength, cats, patchLength)
	standardRows := codeLength - patchLength

	for row := 0; row < standardRows; row++ {
		for c := 0; c < cats; c++ {
			cat := symbol.Category(c)
			sym, ok := ss.Roulette(cat, r)
			if !ok {
				return nil, fmt.Errorf("%w: no symbol registered for category %d", symbol.ErrNoTerminal, c)
			}
			g.cells[row][c] = randomGene(sym, row, codeLength, r)
		}
	}
	for row := standardRows; row < codeLength; row++ {
		for c := 0; c < cats; c++ {
			cat := symbol.Category(c)
			sym, ok := ss.RouletteTerminal(cat, r)
			if !ok {
				return nil, fmt.Errorf("%w: no terminal registered for category %d", symbol.ErrNoTerminal, c)
			}
			g.cells[row][c] = randomGene(sym, row, codeLength, r)
		}
	}

	// The best locus defaults to row 0 of category 0, the conventional MEP
	// starting point; callers are free to move it after construction.
	g.best = Locus{Row: 0, Category: 0}
	return g, nil
}

func randomGene(sym *symbol.Symbol, row, codeLength int, r *rand.Rand) Gene {
	gene := Gene{Sym: sym}
	switch {
	case sym.Parametric():
		gene.Param = sym.NewParam(r)
	case sym.IsFunction():
		gene.Args = make([]int, sym.Arity())
		for i := range gene.Args {
			gene.Args[i] = row + 1 + r.IntN(codeLength-row-1)
		}
	}
	return gene
}

// Clone returns a deep, independent copy of g, including its age.
func (g *Genome) Clone() *Genome {
	c := allocate(g.rows, g.cats, g.patchLength)
	for row := range g.cells {
		for cat := range g.cells[row] {
			c.cells[row][cat] = g.cells[row][cat].clone()
		}
	}
	c.best = g.best
	c.age = g.age
	c.sigValid = g.sigValid
	c.sig = g.sig
	return c
}

// SameShape reports whether g and o have identical dimensions.
func (g *Genome) SameShape(o *Genome) bool {
	return g.rows == o.rows && g.cats == o.cats && g.patchLength == o.patchLength
}

// ActiveLoci returns every locus reachable from Best by following argument
// references, in ascending (row, category) order. The frontier is
// maintained as an ordered set so traversal order is stable across calls.
// The signature and the interpreter walk the subtree on their own and do
// not use this order.
func (g *Genome) ActiveLoci() []Locus {
	return g.ActiveLociFrom(g.best)
}

// ActiveLociFrom returns every locus reachable from root, in the same
// deterministic frontier order as ActiveLoci. It underlies tree crossover,
// which needs the active descendants of an arbitrary locus, not just of
// Best.
func (g *Genome) ActiveLociFrom(root Locus) []Locus {
	seen := make(map[Locus]bool)
	frontier := []Locus{root}
	seen[root] = true
	var order []Locus

	for len(frontier) > 0 {
		// pop the smallest pending locus
		minIdx := 0
		for i := 1; i < len(frontier); i++ {
			if frontier[i].Less(frontier[minIdx]) {
				minIdx = i
			}
		}
		l := frontier[minIdx]
		frontier = append(frontier[:minIdx], frontier[minIdx+1:]...)
		order = append(order, l)

		gene := g.cells[l.Row][l.Category]
		if gene.Sym.IsFunction() {
			for i, argRow := range gene.Args {
				argLoc := Locus{Row: argRow, Category: gene.Sym.ArgCategory(i)}
				if !seen[argLoc] {
					seen[argLoc] = true
					frontier = append(frontier, argLoc)
				}
			}
		}
	}
	return order
}

// ActiveSize returns the number of genes reachable from Best.
func (g *Genome) ActiveSize() int {
	return len(g.ActiveLoci())
}

// GetBlock returns a clone of g with Best moved to l, i.e. the program
// rooted at l. l's gene must be a function (a block), which the caller
// typically obtains from Blocks.
func (g *Genome) GetBlock(l Locus) (*Genome, error) {
	gene, err := g.At(l)
	if err != nil {
		return nil, err
	}
	if gene.Sym.IsTerminal() {
		return nil, fmt.Errorf("%w: locus %v is a terminal, not a block", ErrInvalidLocus, l)
	}
	c := g.Clone()
	c.SetBest(l)
	return c, nil
}

// Distance returns the number of loci at which a and b disagree. Both
// genomes must share shape.
func Distance(a, b *Genome) (int, error) {
	if !a.SameShape(b) {
		return 0, ErrShapeMismatch
	}
	n := 0
	for row := 0; row < a.rows; row++ {
		for cat := 0; cat < a.cats; cat++ {
			if !genesEqual(a.cells[row][cat], b.cells[row][cat]) {
				n++
			}
		}
	}
	return n, nil
}

func genesEqual(a, b Gene) bool {
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

// Equal reports whether two genomes of the same shape are identical
// cell-by-cell (not just equivalent on the active subtree).
func Equal(a, b *Genome) bool {
	d, err := Distance(a, b)
	return err == nil && d == 0 && a.best == b.best
}

// Validate audits the shape invariants of §3: every function gene's
// arguments point strictly forward, and every patch-section row is a
// terminal. It is the debug-mode is_valid() of the design.
func (g *Genome) Validate() error {
	standardRows := g.rows - g.patchLength
	for row := 0; row < g.rows; row++ {
		for cat := 0; cat < g.cats; cat++ {
			gene := g.cells[row][cat]
			if row >= standardRows && gene.Sym.IsFunction() {
				return fmt.Errorf("%w: row %d category %d", ErrBadPatch, row, cat)
			}
			if gene.Sym.IsFunction() {
				for _, argRow := range gene.Args {
					if argRow <= row || argRow >= g.rows {
						return fmt.Errorf("%w: row %d category %d argument %d", ErrBadArgument, row, cat, argRow)
					}
				}
			}
		}
	}
	return nil
}
