package ast

import "github.com/ptclisp/ptclisp/internal/runtimevalue"

// CoreNode is any node the analyzer can produce; the evaluator's Eval
// switches exhaustively over these variants and no others.
type CoreNode interface {
	coreNode()
}

// CoreLiteral is a self-evaluating scalar.
type CoreLiteral struct{ Value runtimevalue.Value }

// CoreVectorLit evaluates each element in order, preserving order.
type CoreVectorLit struct{ Items []CoreNode }

// CorePair is one key/value slot of a map literal.
type CorePair struct{ Key, Value CoreNode }

// CoreMapLit evaluates keys-before-values, pairs in insertion order.
type CoreMapLit struct{ Pairs []CorePair }

// CoreSetLit evaluates each element in order.
type CoreSetLit struct{ Items []CoreNode }

// CoreVar looks up a lexical/top-level binding by name.
type CoreVar struct{ Name string }

// CoreCtx reads ctx[Key]; absent keys evaluate to nil, never an error.
type CoreCtx struct{ Key runtimevalue.Value }

// CoreMemory reads memory[Key].
type CoreMemory struct{ Key runtimevalue.Value }

// CoreTurnHistory is *1, *2, or *3.
type CoreTurnHistory struct{ N int }

// CoreBinding is one slot of a `let`, matched left to right.
type CoreBinding struct {
	Pattern Pattern
	Value   CoreNode
}

// CoreLet processes Bindings sequentially; each binding's env sees prior
// bindings, and Body is analysed/evaluated with all of them in scope.
type CoreLet struct {
	Bindings []CoreBinding
	Body     CoreNode
}

// CoreIf evaluates Cond, then Then or Else; only nil and false count as
// falsy.
type CoreIf struct{ Cond, Then, Else CoreNode }

// CoreFn captures the defining environment at evaluation time (producing a
// closure); Params are matched against call arguments positionally.
type CoreFn struct {
	Params []Pattern
	Body   CoreNode
}

// CoreDo discards every value but the last; nil if Exprs is empty.
type CoreDo struct{ Exprs []CoreNode }

// CoreAnd short-circuits, returning the value (not a boolean) that decided
// the result. `(and)` is defined as true.
type CoreAnd struct{ Exprs []CoreNode }

// CoreOr short-circuits. `(or)` is defined as nil.
type CoreOr struct{ Exprs []CoreNode }

// CoreCall evaluates Callee then each Args element left to right, then
// dispatches on the callee's callable kind.
type CoreCall struct {
	Callee CoreNode
	Args   []CoreNode
}

// CoreCallTool is `(call "name" args-map?)`: Args is nil when the call
// form supplied no argument map.
type CoreCallTool struct {
	Name string
	Args CoreNode // may be nil
}

// CoreCtxCall is the positional-argument tool form `(ctx/name args...)`.
type CoreCtxCall struct {
	ToolName string
	Args     []CoreNode
}

// WhereOp enumerates the comparison operators `where` supports.
type WhereOp string

const (
	WhereEq      WhereOp = "eq"
	WhereNotEq   WhereOp = "not_eq"
	WhereGt      WhereOp = "gt"
	WhereLt      WhereOp = "lt"
	WhereGte     WhereOp = "gte"
	WhereLte     WhereOp = "lte"
	WhereIncludes WhereOp = "includes"
	WhereIn      WhereOp = "in"
	WhereTruthy  WhereOp = "truthy"
)

// CoreWhere builds a unary predicate from a field path, an operator, and
// (for binary operators) a comparison value expression.
type CoreWhere struct {
	Path  []runtimevalue.Value // each segment a Keyword or String
	Op    WhereOp
	Value CoreNode // nil for the unary `truthy` operator
}

// PredCombinatorKind enumerates all-of/any-of/none-of.
type PredCombinatorKind string

const (
	PredAll  PredCombinatorKind = "all"
	PredAny  PredCombinatorKind = "any"
	PredNone PredCombinatorKind = "none"
)

// CorePredCombinator combines N unary predicates into one.
type CorePredCombinator struct {
	Kind  PredCombinatorKind
	Preds []CoreNode
}

// CoreJuxt is stored, not fused: it produces a function that applies
// every Fns element to the same arguments and collects a vector.
type CoreJuxt struct{ Fns []CoreNode }

// CoreDef binds Name in the top-level environment; rejected by the
// analyzer outside top-level scope.
type CoreDef struct {
	Name  string
	Value CoreNode
}

func (*CoreLiteral) coreNode()        {}
func (*CoreVectorLit) coreNode()      {}
func (*CoreMapLit) coreNode()         {}
func (*CoreSetLit) coreNode()         {}
func (*CoreVar) coreNode()            {}
func (*CoreCtx) coreNode()            {}
func (*CoreMemory) coreNode()         {}
func (*CoreTurnHistory) coreNode()    {}
func (*CoreLet) coreNode()            {}
func (*CoreIf) coreNode()             {}
func (*CoreFn) coreNode()             {}
func (*CoreDo) coreNode()             {}
func (*CoreAnd) coreNode()            {}
func (*CoreOr) coreNode()             {}
func (*CoreCall) coreNode()           {}
func (*CoreCallTool) coreNode()       {}
func (*CoreCtxCall) coreNode()        {}
func (*CoreWhere) coreNode()          {}
func (*CorePredCombinator) coreNode() {}
func (*CoreJuxt) coreNode()           {}
func (*CoreDef) coreNode()            {}
