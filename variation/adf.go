package variation

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/interp"
	"github.com/morinim/vita-sub001/symbol"
)

// ErrBodyTooSmall is returned by Generalize when the candidate block's
// active size is below 2 — too small to be worth promoting to a reusable
// symbol.
var ErrBodyTooSmall = errors.New("variation: adf body active size below 2")

// ErrSelfReference is returned by Generalize when the candidate body would
// call back into a symbol still being registered, which would make the
// resulting ADF recursive.
var ErrSelfReference = errors.New("variation: adf body would reference itself")

// ADF is the result of generalising a block: a body genome rooted at the
// original block locus, with up to maxArgs active terminal loci replaced
// by the reserved ARG_i terminals.
type ADF struct {
	Body        *genome.Genome
	Substituted []genome.Locus
	ArgCats     []symbol.Category
	ResultCat   symbol.Category
}

// Blocks enumerates every active function locus of g — candidates for
// generalisation into an ADF.
func Blocks(g *genome.Genome) []genome.Locus {
	var blocks []genome.Locus
	for _, l := range g.ActiveLoci() {
		gene, err := g.At(l)
		if err == nil && gene.Sym.IsFunction() {
			blocks = append(blocks, l)
		}
	}
	return blocks
}

// Generalize extracts the block rooted at block, substituting up to
// maxArgs of its active terminal loci with ARG_0..ARG_{n-1}. building
// lists the opcodes of any ADF symbols currently being constructed in the
// same batch, so a set of ADFs generalised together cannot call each other
// recursively; pass nil for a single, independent call.
func Generalize(ss *symbol.Set, g *genome.Genome, block genome.Locus, maxArgs int, r *rand.Rand, building []symbol.Opcode) (*ADF, error) {
	body, err := g.GetBlock(block)
	if err != nil {
		return nil, err
	}
	if body.ActiveSize() < 2 {
		return nil, ErrBodyTooSmall
	}
	for _, op := range building {
		for _, l := range body.ActiveLoci() {
			gene, _ := body.At(l)
			if gene.Sym.Opcode() == op {
				return nil, fmt.Errorf("%w: opcode %d", ErrSelfReference, op)
			}
		}
	}

	var terminalLoci []genome.Locus
	for _, l := range body.ActiveLoci() {
		gene, _ := body.At(l)
		if gene.Sym.IsTerminal() {
			terminalLoci = append(terminalLoci, l)
		}
	}
	r.Shuffle(len(terminalLoci), func(i, j int) {
		terminalLoci[i], terminalLoci[j] = terminalLoci[j], terminalLoci[i]
	})

	n := maxArgs
	if n > len(terminalLoci) {
		n = len(terminalLoci)
	}
	substituted := make([]genome.Locus, n)
	argCats := make([]symbol.Category, n)
	copy(substituted, terminalLoci[:n])

	for i, l := range substituted {
		gene, _ := body.At(l)
		argCats[i] = gene.Sym.Category()
		_ = body.Set(l, genome.Gene{Sym: ss.Arg(i)})
	}

	return &ADF{
		Body:        body,
		Substituted: substituted,
		ArgCats:     argCats,
		ResultCat:   block.Category,
	}, nil
}

// NewSymbol wraps adf as an auto-defined function symbol (or, when
// len(adf.ArgCats) == 0, an auto-defined terminal — an ADT, evaluated with
// no arguments). The returned symbol is not yet registered; the caller
// inserts it into a symbol.Set with InsertADF.
func (adf *ADF) NewSymbol(name string, weight uint) *symbol.Symbol {
	eval := interp.NewADFEval(adf.Body)
	if len(adf.ArgCats) == 0 {
		return symbol.NewTerminal(name, adf.ResultCat, weight, eval)
	}
	return symbol.NewFunction(name, adf.ResultCat, adf.ArgCats, weight, false, eval)
}
