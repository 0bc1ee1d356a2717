package genome

import (
	"encoding/binary"
	"math"

	"github.com/twmb/murmur3"
)

// signatureSeed matches the seed the original implementation hashes with,
// preserved here purely so runs are reproducible against that lineage; it
// carries no semantic meaning beyond "a fixed seed".
const signatureSeed = 1973

// Signature returns the 128-bit hash of g's active subtree, computed on
// demand and cached until the next mutating call to Set or SetBest.
// Syntactically different but semantically equivalent genomes collide by
// design: the hash input is the pre-order stream of opcode+parameter (or
// opcode+recursively-packed arguments), never the raw row indices.
func (g *Genome) Signature() Signature {
	if g.sigValid {
		return g.sig
	}
	buf := make([]byte, 0, 64)
	buf = g.pack(buf, g.best)
	hi, lo := murmur3.SeedSum128(signatureSeed, signatureSeed, buf)
	g.sig = Signature{hi, lo}
	g.sigValid = true
	return g.sig
}

// pack appends the pre-order serialisation of the subtree rooted at l to
// buf and returns the extended slice.
func (g *Genome) pack(buf []byte, l Locus) []byte {
	gene := g.cells[l.Row][l.Category]
	var op [2]byte
	binary.LittleEndian.PutUint16(op[:], uint16(gene.Sym.Opcode()))
	buf = append(buf, op[:]...)

	if gene.Sym.Parametric() {
		var pb [9]byte
		if gene.Param.Ok {
			pb[0] = 1
			binary.LittleEndian.PutUint64(pb[1:], math.Float64bits(gene.Param.Data))
		}
		buf = append(buf, pb[:]...)
		return buf
	}

	if gene.Sym.IsFunction() {
		for i, argRow := range gene.Args {
			argLoc := Locus{Row: argRow, Category: gene.Sym.ArgCategory(i)}
			buf = g.pack(buf, argLoc)
		}
	}
	return buf
}
