// Package builtins is the PTC-Lisp runtime library: the collection, map,
// arithmetic, string, and predicate functions exposed in the top-level
// environment. It has no dependency on the evaluator package;
// higher-order functions (map, filter, reduce, ...) call back into the
// evaluator only through the Apply function supplied at registration
// time, keeping this package pure with respect to program-level state.
package builtins

import (
	"fmt"

	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// Apply invokes callee with args, using whatever dynamic ctx/memory/tool
// state the evaluator currently has in scope. It is how a higher-order
// builtin (map, filter, reduce, sort-by, ...) runs a closure or another
// builtin passed to it as an argument.
type Apply func(callee runtimevalue.Value, args []runtimevalue.Value) (runtimevalue.Value, error)

// Normal is a fixed-arity builtin function.
type Normal struct {
	Name  string
	Arity int
	Fn    func(args []runtimevalue.Value) (runtimevalue.Value, error)
}

func (b *Normal) Kind() runtimevalue.Kind { return runtimevalue.KindBuiltin }
func (b *Normal) Inspect() string         { return "#<builtin " + b.Name + ">" }
func (b *Normal) Hash() uint32            { return runtimevalue.HashString("builtin:" + b.Name) }
func (b *Normal) callableMarker()         {}

// Variadic folds Fn2 from the left: 0 args -> Identity; 1 arg ->
// Unary(x) if set, else x itself; 2+ args -> left fold over Fn2. `Unary`
// models named single-argument exceptions (e.g. unary `-` negates).
type Variadic struct {
	Name     string
	Identity runtimevalue.Value
	Fn2      func(a, b runtimevalue.Value) (runtimevalue.Value, error)
	Unary    func(a runtimevalue.Value) (runtimevalue.Value, error)
}

func (b *Variadic) Kind() runtimevalue.Kind { return runtimevalue.KindBuiltin }
func (b *Variadic) Inspect() string         { return "#<builtin " + b.Name + ">" }
func (b *Variadic) Hash() uint32            { return runtimevalue.HashString("builtin:" + b.Name) }
func (b *Variadic) callableMarker()         {}

// VariadicNonempty follows the same folding rule as Variadic but an
// empty argument list is an arity error.
type VariadicNonempty struct {
	Name  string
	Fn2   func(a, b runtimevalue.Value) (runtimevalue.Value, error)
	Unary func(a runtimevalue.Value) (runtimevalue.Value, error)
}

func (b *VariadicNonempty) Kind() runtimevalue.Kind { return runtimevalue.KindBuiltin }
func (b *VariadicNonempty) Inspect() string         { return "#<builtin " + b.Name + ">" }
func (b *VariadicNonempty) Hash() uint32            { return runtimevalue.HashString("builtin:" + b.Name) }
func (b *VariadicNonempty) callableMarker()         {}

// MultiArity dispatches on argument count, `range` being the canonical
// example.
type MultiArity struct {
	Name     string
	Arities  map[int]func(args []runtimevalue.Value) (runtimevalue.Value, error)
}

func (b *MultiArity) Kind() runtimevalue.Kind { return runtimevalue.KindBuiltin }
func (b *MultiArity) Inspect() string         { return "#<builtin " + b.Name + ">" }
func (b *MultiArity) Hash() uint32            { return runtimevalue.HashString("builtin:" + b.Name) }
func (b *MultiArity) callableMarker()         {}

// HostFunc is a variadic Go function receiving the whole argument slice
// at once. It backs where-predicates, all-of/any-of/none-of combinators,
// juxt's produced function, and variadic builtins such as str, concat,
// conj, zip, interleave, map and mapv.
type HostFunc struct {
	Name string
	Fn   func(args []runtimevalue.Value) (runtimevalue.Value, error)
}

func (b *HostFunc) Kind() runtimevalue.Kind { return runtimevalue.KindBuiltin }
func (b *HostFunc) Inspect() string         { return "#<builtin " + b.Name + ">" }
func (b *HostFunc) Hash() uint32            { return runtimevalue.HashString("builtin:" + b.Name) }
func (b *HostFunc) callableMarker()         {}

func inspectName(v runtimevalue.Value) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%s %s", v.Kind(), v.Inspect())
}
