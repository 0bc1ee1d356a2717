package genome

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/morinim/vita-sub001/symbol"
)

// Save writes the textual serialization of spec §6: "rows cats
// patch_length\n", then one
// line per gene in row-major order (opcode, then — for a parametric
// terminal — a presence flag and the parameter value, then — for a
// function — its argument row indices), followed by "age\n" and
// "best.row best.category\n".
func (g *Genome) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d %d\n", g.rows, g.cats, g.patchLength); err != nil {
		return err
	}
	for row := 0; row < g.rows; row++ {
		for cat := 0; cat < g.cats; cat++ {
			gene := g.cells[row][cat]
			if _, err := fmt.Fprintf(bw, "%d", gene.Sym.Opcode()); err != nil {
				return err
			}
			switch {
			case gene.Sym.Parametric():
				if gene.Param.Ok {
					if _, err := fmt.Fprintf(bw, " 1 %g", gene.Param.Data); err != nil {
						return err
					}
				} else if _, err := fmt.Fprint(bw, " 0"); err != nil {
					return err
				}
			case gene.Sym.IsFunction():
				for _, a := range gene.Args {
					if _, err := fmt.Fprintf(bw, " %d", a); err != nil {
						return err
					}
				}
			}
			if _, err := fmt.Fprintln(bw); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(bw, "%d\n", g.age); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "%d %d\n", g.best.Row, g.best.Category); err != nil {
		return err
	}
	return bw.Flush()
}

// Load reconstructs a Genome from the format Save produces, resolving
// opcodes against ss. Load is transactional: it builds into a scratch
// genome and only returns success once the entire stream parses cleanly.
func Load(r io.Reader, ss *symbol.Set) (*Genome, error) {
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

	return LoadLines(readLine, ss)
}

// LoadLines is the line-reader-driven core of Load, exposed so a caller
// that already owns a line scanner over a larger stream (summary.Load
// embeds a genome between other fields) can parse a genome without
// double-buffering the underlying io.Reader through a second bufio.Scanner.
func LoadLines(readLine func() (string, error), ss *symbol.Set) (*Genome, error) {
	line, err := readLine()
	if err != nil {
		return nil, fmt.Errorf("genome: load shape: %w", err)
	}
	var rows, cats, patchLength int
	if _, err := fmt.Sscanf(line, "%d %d %d", &rows, &cats, &patchLength); err != nil {
		return nil, fmt.Errorf("genome: load shape: %w", err)
	}

	g := allocate(rows, cats, patchLength)
	for row := 0; row < rows; row++ {
		for cat := 0; cat < cats; cat++ {
			line, err := readLine()
			if err != nil {
				return nil, fmt.Errorf("genome: load gene (%d,%d): %w", row, cat, err)
			}
			gene, err := parseGeneLine(line, ss)
			if err != nil {
				return nil, fmt.Errorf("genome: load gene (%d,%d): %w", row, cat, err)
			}
			g.cells[row][cat] = gene
		}
	}

	line, err = readLine()
	if err != nil {
		return nil, fmt.Errorf("genome: load age: %w", err)
	}
	if _, err := fmt.Sscanf(line, "%d", &g.age); err != nil {
		return nil, fmt.Errorf("genome: load age: %w", err)
	}

	line, err = readLine()
	if err != nil {
		return nil, fmt.Errorf("genome: load best locus: %w", err)
	}
	var bestRow, bestCat int
	if _, err := fmt.Sscanf(line, "%d %d", &bestRow, &bestCat); err != nil {
		return nil, fmt.Errorf("genome: load best locus: %w", err)
	}
	g.best = Locus{Row: bestRow, Category: symbol.Category(bestCat)}

	return g, nil
}

func parseGeneLine(line string, ss *symbol.Set) (Gene, error) {
	rest := strings.NewReader(line)
	var op uint16
	if _, err := fmt.Fscan(rest, &op); err != nil {
		return Gene{}, err
	}
	sym, ok := ss.Symbol(symbol.Opcode(op))
	if !ok {
		return Gene{}, fmt.Errorf("%w: unknown opcode %d", symbol.ErrNoTerminal, op)
	}

	gene := Gene{Sym: sym}
	switch {
	case sym.Parametric():
		var present int
		if _, err := fmt.Fscan(rest, &present); err != nil {
			return Gene{}, err
		}
		if present != 0 {
			var v float64
			if _, err := fmt.Fscan(rest, &v); err != nil {
				return Gene{}, err
			}
			gene.Param = symbol.Some(v)
		}
	case sym.IsFunction():
		args := make([]int, sym.Arity())
		for i := range args {
			if _, err := fmt.Fscan(rest, &args[i]); err != nil {
				return Gene{}, err
			}
		}
		gene.Args = args
	}
	return gene, nil
}
