// Package datakey walks a Core AST to compute every ctx key a program
// references, so a host can prune a large context map down to what the
// program actually touches before running it.
package datakey

import (
	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// keySet collects distinct keys by their Inspect() text. runtimevalue.Value
// is not itself comparable in general (Vector/PersistentMap/Set hold
// slices/pointers), but every key datakey actually collects is a literal
// scalar (keyword or string), which Inspect()'s text identifies uniquely.
type keySet struct {
	byText map[string]runtimevalue.Value
}

func newKeySet() *keySet { return &keySet{byText: make(map[string]runtimevalue.Value)} }

func (s *keySet) add(v runtimevalue.Value) {
	if v == nil {
		return
	}
	s.byText[v.Inspect()] = v
}

// Keys returns the collected set as a slice, in no particular order.
func (s *keySet) Keys() []runtimevalue.Value {
	out := make([]runtimevalue.Value, 0, len(s.byText))
	for _, v := range s.byText {
		out = append(out, v)
	}
	return out
}

// Extract walks core, returning every ctx key referenced anywhere,
// including inside nested closures, where-predicates, and combinators.
// Keys are reported exactly as the program wrote them: a keyword for
// `ctx/name` forms, a string where the analyzer produced one.
func Extract(core ast.CoreNode) []runtimevalue.Value {
	s := newKeySet()
	walk(core, s)
	return s.Keys()
}

func walk(n ast.CoreNode, s *keySet) {
	if n == nil {
		return
	}
	switch node := n.(type) {
	case *ast.CoreLiteral:
		// opaque leaf, nothing to recurse into.

	case *ast.CoreVectorLit:
		walkAll(node.Items, s)

	case *ast.CoreMapLit:
		for _, p := range node.Pairs {
			walk(p.Key, s)
			walk(p.Value, s)
		}

	case *ast.CoreSetLit:
		walkAll(node.Items, s)

	case *ast.CoreVar:
		// no ctx reference

	case *ast.CoreCtx:
		s.add(node.Key)

	case *ast.CoreMemory:
		// memory keys are a separate namespace, not ctx keys.

	case *ast.CoreTurnHistory:
		// reads the reserved ctx key turn-history-N at run time, but no
		// ctx/ reference names it, so it is not reported.

	case *ast.CoreLet:
		for _, b := range node.Bindings {
			walk(b.Value, s)
			walkPattern(b.Pattern, s)
		}
		walk(node.Body, s)

	case *ast.CoreIf:
		walk(node.Cond, s)
		walk(node.Then, s)
		walk(node.Else, s)

	case *ast.CoreFn:
		for _, p := range node.Params {
			walkPattern(p, s)
		}
		walk(node.Body, s)

	case *ast.CoreDo:
		walkAll(node.Exprs, s)

	case *ast.CoreAnd:
		walkAll(node.Exprs, s)

	case *ast.CoreOr:
		walkAll(node.Exprs, s)

	case *ast.CoreCall:
		walk(node.Callee, s)
		walkAll(node.Args, s)

	case *ast.CoreCallTool:
		walk(node.Args, s)

	case *ast.CoreCtxCall:
		walkAll(node.Args, s)

	case *ast.CoreWhere:
		// Path segments address fields of the row handed to the produced
		// predicate at call time, not ctx; nothing to collect there.
		walk(node.Value, s)

	case *ast.CorePredCombinator:
		walkAll(node.Preds, s)

	case *ast.CoreJuxt:
		walkAll(node.Fns, s)

	case *ast.CoreDef:
		walk(node.Value, s)
	}
}

func walkAll(nodes []ast.CoreNode, s *keySet) {
	for _, n := range nodes {
		walk(n, s)
	}
}

// walkPattern recurses into default-value expressions carried by
// destructuring patterns (`:or {k ctx/fallback}`), the one place a
// ctx reference can hide inside a binding form rather than an ordinary
// expression.
func walkPattern(p ast.Pattern, s *keySet) {
	switch pat := p.(type) {
	case *ast.PatternDestructureKeys:
		for _, def := range pat.Defaults {
			walk(def, s)
		}
	case *ast.PatternDestructureMap:
		for _, def := range pat.Defaults {
			walk(def, s)
		}
	case *ast.PatternDestructureAs:
		walkPattern(pat.Inner, s)
	case *ast.PatternDestructureSeq:
		for _, item := range pat.Items {
			walkPattern(item, s)
		}
	}
}
