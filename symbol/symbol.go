// Package symbol implements the primitive alphabet of a Multi-Expression
// Programming genome: symbols, their categories, and the weighted-sampling
// SymbolSet that draws them for genome construction and mutation.
package symbol

import (
	"math/rand/v2"
)

// Category is a nonnegative type tag on values and on symbol arguments. A
// function may only consume arguments whose category matches its declared
// argument categories.
type Category uint

// Opcode uniquely identifies a Symbol within a Set, assigned monotonically
// on insertion.
type Opcode uint16

// Value is the result of evaluating a symbol. A Value with Ok == false is
// the empty/undefined result (e.g. division by zero); it propagates: any
// function receiving an empty argument must itself return empty.
type Value struct {
	Data float64
	Ok   bool
}

// Some wraps a defined result.
func Some(x float64) Value { return Value{Data: x, Ok: true} }

// Empty is the undefined value.
var Empty = Value{}

// ArgFetcher is the contract a Symbol's Eval function uses to pull the
// values of its arguments, its own parameter, or (for auto-defined
// functions) the caller's arguments. It is implemented by interp.Interp.
type ArgFetcher interface {
	FetchArg(i int) Value
	FetchParam() Value
	FetchADFArg(i int) Value
}

// EvalFunc computes the value of a symbol occurrence given a way to fetch
// its arguments/parameter. Symbols must be side-effect-free: the
// interpreter's memoisation is sound only under referential transparency.
type EvalFunc func(f ArgFetcher) Value

// InitParam draws a fresh parameter value for a parametric terminal.
type InitParam func(r *rand.Rand) Value

// Symbol is an immutable primitive: a terminal (arity 0) or a function.
// Terminals may be parametric (carrying a random init value) or bound to an
// input variable. Symbols are owned by a Set, which assigns their Opcode.
type Symbol struct {
	opcode      Opcode
	name        string
	category    Category
	arity       int
	weight      uint
	parametric  bool
	associative bool
	autoDefined bool
	variable    bool
	varIndex    int
	argCats     []Category
	eval        EvalFunc
	initParam   InitParam
}

// NewTerminal creates a non-parametric terminal, e.g. a constant.
func NewTerminal(name string, cat Category, weight uint, eval EvalFunc) *Symbol {
	return &Symbol{name: name, category: cat, weight: weight, eval: eval}
}

// NewVariable creates a terminal bound to the index-th input variable.
// Evaluation is left to the caller's eval function (typically an indexed
// lookup into a row of input data); the flag is exposed via IsVariable so
// hosts can special-case variable terminals (e.g. for symbolic regression
// reporting).
func NewVariable(name string, cat Category, index int, weight uint, eval EvalFunc) *Symbol {
	return &Symbol{name: name, category: cat, weight: weight, eval: eval, variable: true, varIndex: index}
}

// NewParametricTerminal creates a terminal that carries a random value drawn
// at genome-construction time by initParam and returned by FetchParam.
func NewParametricTerminal(name string, cat Category, weight uint, initParam InitParam, eval EvalFunc) *Symbol {
	return &Symbol{name: name, category: cat, weight: weight, parametric: true, initParam: initParam, eval: eval}
}

// NewFunction creates a function symbol of the given result category and
// per-argument categories. Arity is len(argCats).
func NewFunction(name string, cat Category, argCats []Category, weight uint, associative bool, eval EvalFunc) *Symbol {
	ac := make([]Category, len(argCats))
	copy(ac, argCats)
	return &Symbol{name: name, category: cat, arity: len(ac), weight: weight, associative: associative, argCats: ac, eval: eval}
}

// newAutoDefined tags a symbol (function or terminal) as auto-defined, so
// that SymbolSet.ResetADFWeights decays it over time.
func newAutoDefined(s *Symbol) *Symbol {
	s.autoDefined = true
	return s
}

func (s *Symbol) Opcode() Opcode        { return s.opcode }
func (s *Symbol) Name() string          { return s.name }
func (s *Symbol) Category() Category    { return s.category }
func (s *Symbol) Arity() int            { return s.arity }
func (s *Symbol) Weight() uint          { return s.weight }
func (s *Symbol) IsTerminal() bool      { return s.arity == 0 }
func (s *Symbol) IsFunction() bool      { return s.arity > 0 }
func (s *Symbol) Parametric() bool      { return s.parametric }
func (s *Symbol) Associative() bool     { return s.associative }
func (s *Symbol) AutoDefined() bool     { return s.autoDefined }
func (s *Symbol) IsVariable() bool      { return s.variable }
func (s *Symbol) VarIndex() int         { return s.varIndex }

// ArgCategory returns the category required of the i-th argument of a
// function symbol. It panics if s is a terminal or i is out of range,
// matching the programmer-error treatment of other arity violations.
func (s *Symbol) ArgCategory(i int) Category {
	return s.argCats[i]
}

// Eval computes the symbol's value using f to resolve arguments/parameter.
func (s *Symbol) Eval(f ArgFetcher) Value {
	return s.eval(f)
}

// NewParam draws a fresh parameter value; only meaningful when Parametric.
func (s *Symbol) NewParam(r *rand.Rand) Value {
	if s.initParam == nil {
		return Empty
	}
	return s.initParam(r)
}

func (s *Symbol) setWeight(w uint) { s.weight = w }
