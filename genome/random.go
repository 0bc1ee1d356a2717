package genome

import (
	"fmt"
	"math/rand/v2"

	"github.com/morinim/vita-sub001/symbol"
)

// NewRandomGeneAt draws a fresh random gene appropriate for locus l within
// a genome of the given shape: rows in the patch section (row >=
// codeLength-patchLength) must receive a terminal; earlier rows may
// receive a function or a terminal. It is exported so variation.Mutate can
// replace a single locus without reaching into genome internals.
func NewRandomGeneAt(ss *symbol.Set, l Locus, codeLength, patchLength int, r *rand.Rand) (Gene, error) {
	standardRows := codeLength - patchLength
	var (
		sym *symbol.Symbol
		ok  bool
	)
	if l.Row >= standardRows {
		sym, ok = ss.RouletteTerminal(l.Category, r)
	} else {
		sym, ok = ss.Roulette(l.Category, r)
	}
	if !ok {
		return Gene{}, fmt.Errorf("%w: category %d at row %d", symbol.ErrNoTerminal, l.Category, l.Row)
	}
	return randomGene(sym, l.Row, codeLength, r), nil
}
