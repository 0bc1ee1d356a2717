// Package arith is a minimal demonstration primitive set: ADD, ABS, a
// safe DIV and a parametric constant CONST, plus input variables added
// one at a time with RegisterVariable, enough to build the end-to-end
// scenarios of the specification (ABS(-X) == |X|, ADD(X,-X) == 0, DIV(X,0)
// is undefined) without committing the core to any concrete problem
// domain.
package arith

import (
	"math"
	"math/rand/v2"

	"github.com/morinim/vita-sub001/symbol"
)

// NumericCategory is the only category this demo set uses: every symbol
// here consumes and produces plain real numbers.
const NumericCategory symbol.Category = 0

// Register installs ADD, ABS and DIV (weight weightFunction) and the
// parametric terminal CONST, drawn uniformly from [-10, 10) (weight
// weightTerminal), into ss. It installs no variable; RegisterVariable does.
func Register(ss *symbol.Set, weightFunction, weightTerminal uint) {
	cat := NumericCategory

	ss.Insert(symbol.NewFunction("ADD", cat, []symbol.Category{cat, cat}, weightFunction, true,
		func(f symbol.ArgFetcher) symbol.Value {
			a, b := f.FetchArg(0), f.FetchArg(1)
			if !a.Ok || !b.Ok {
				return symbol.Empty
			}
			return symbol.Some(a.Data + b.Data)
		}))

	ss.Insert(symbol.NewFunction("ABS", cat, []symbol.Category{cat}, weightFunction, false,
		func(f symbol.ArgFetcher) symbol.Value {
			a := f.FetchArg(0)
			if !a.Ok {
				return symbol.Empty
			}
			return symbol.Some(math.Abs(a.Data))
		}))

	ss.Insert(symbol.NewFunction("DIV", cat, []symbol.Category{cat, cat}, weightFunction, false,
		func(f symbol.ArgFetcher) symbol.Value {
			a, b := f.FetchArg(0), f.FetchArg(1)
			if !a.Ok || !b.Ok || b.Data == 0 {
				return symbol.Empty
			}
			return symbol.Some(a.Data / b.Data)
		}))

	ss.Insert(symbol.NewParametricTerminal("CONST", cat, weightTerminal,
		func(r *rand.Rand) symbol.Value { return symbol.Some(r.Float64()*20 - 10) },
		func(f symbol.ArgFetcher) symbol.Value { return f.FetchParam() }))
}

// RegisterVariable adds a variable terminal named name, bound to row index
// varIndex into a caller-supplied input vector fetched via lookup.
func RegisterVariable(ss *symbol.Set, name string, varIndex int, weight uint, lookup func(varIndex int) float64) {
	ss.Insert(symbol.NewVariable(name, NumericCategory, varIndex, weight,
		func(f symbol.ArgFetcher) symbol.Value {
			return symbol.Some(lookup(varIndex))
		}))
}
