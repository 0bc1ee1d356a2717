package genome

import "github.com/morinim/vita-sub001/symbol"

// Gene is one cell of the genome tape: a reference to a Symbol plus either
// a parameter value (for parametric terminals) or an argument vector of
// row indices referring to later rows of the same genome.
type Gene struct {
	Sym   *symbol.Symbol
	Param symbol.Value
	Args  []int
}

// IsTerminal reports whether the gene's symbol is a terminal.
func (g Gene) IsTerminal() bool { return g.Sym.IsTerminal() }

// clone returns a gene with its own, independent Args slice.
func (g Gene) clone() Gene {
	if len(g.Args) == 0 {
		return g
	}
	args := make([]int, len(g.Args))
	copy(args, g.Args)
	g.Args = args
	return g
}
