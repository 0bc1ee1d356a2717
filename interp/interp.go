// Package interp evaluates the active subtree of an MEP genome. Evaluation
// is lazily memoised per locus within a single Run, and referential
// transparency of symbols is assumed: memoisation is sound only if symbols
// are side-effect-free.
package interp

import (
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/symbol"
)

// Interp evaluates one genome. It implements symbol.ArgFetcher so a
// symbol's EvalFunc can pull its arguments (FetchArg), its own parameter
// (FetchParam), or — for an auto-defined function's body — the caller's
// arguments (FetchADFArg, which delegates to the parent interpreter).
type Interp struct {
	g      *genome.Genome
	parent *Interp
	ip     genome.Locus
	memo   map[genome.Locus]symbol.Value
}

// New creates an interpreter over g with no parent (a top-level program).
func New(g *genome.Genome) *Interp {
	return &Interp{g: g}
}

// NewChild creates an interpreter over an ADF's body genome, wiring parent
// so FetchADFArg resolves against the caller's arguments.
func NewChild(body *genome.Genome, parent *Interp) *Interp {
	return &Interp{g: body, parent: parent}
}

// Run clears the memoisation table, points the instruction pointer at the
// genome's best locus, and evaluates it.
func (in *Interp) Run() symbol.Value {
	in.memo = make(map[genome.Locus]symbol.Value)
	in.ip = in.g.Best()
	return in.evalAt(in.ip)
}

func (in *Interp) evalAt(l genome.Locus) symbol.Value {
	gene, err := in.g.At(l)
	if err != nil {
		return symbol.Empty
	}
	return gene.Sym.Eval(in)
}

// FetchArg retrieves the evaluated value of the i-th argument of the gene
// currently under the instruction pointer, memoising the result.
func (in *Interp) FetchArg(i int) symbol.Value {
	gene, err := in.g.At(in.ip)
	if err != nil || i >= len(gene.Args) {
		return symbol.Empty
	}
	argLoc := genome.Locus{Row: gene.Args[i], Category: gene.Sym.ArgCategory(i)}
	if v, ok := in.memo[argLoc]; ok {
		return v
	}
	saved := in.ip
	in.ip = argLoc
	v := in.evalAt(argLoc)
	in.ip = saved
	in.memo[argLoc] = v
	return v
}

// FetchParam returns the parameter carried by the gene currently under the
// instruction pointer; meaningful only for parametric terminals.
func (in *Interp) FetchParam() symbol.Value {
	gene, err := in.g.At(in.ip)
	if err != nil {
		return symbol.Empty
	}
	return gene.Param
}

// FetchADFArg delegates to the parent interpreter's FetchArg, resolving an
// ADF body's ARG_i references against the caller's actual arguments.
func (in *Interp) FetchADFArg(i int) symbol.Value {
	if in.parent == nil {
		return symbol.Empty
	}
	return in.parent.FetchArg(i)
}

// NewADFEval builds the EvalFunc an auto-defined-function symbol uses: it
// instantiates a child interpreter over body, parented on whichever
// interpreter is calling it, and runs it.
func NewADFEval(body *genome.Genome) symbol.EvalFunc {
	return func(f symbol.ArgFetcher) symbol.Value {
		parent, ok := f.(*Interp)
		if !ok {
			return symbol.Empty
		}
		return NewChild(body, parent).Run()
	}
}
