package genome

import "github.com/morinim/vita-sub001/symbol"

// Locus is a (row, category) coordinate within a genome matrix.
type Locus struct {
	Row      int
	Category symbol.Category
}

// Less orders loci by row then category; it is the order the active-gene
// iterator visits the frontier in.
func (l Locus) Less(o Locus) bool {
	if l.Row != o.Row {
		return l.Row < o.Row
	}
	return l.Category < o.Category
}
