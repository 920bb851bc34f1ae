package analyzer

import (
	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// Scope tracks whether the node being analysed may contain a top-level-only
// form (def, defn).
type Scope int

const (
	ScopeTop Scope = iota
	ScopeLexical
)

// actx is the context threaded through every analyze* call: the current
// scope, and whether `%`/`%N` placeholder symbols are legal here (only true
// inside the body of a short-fn being desugared).
type actx struct {
	scope            Scope
	allowPlaceholder bool
}

func (c actx) lexical() actx { c.scope = ScopeLexical; return c }

// Analyze lowers a Raw AST root into Core AST. A RawProgram (more than one
// top-level form) behaves like an implicit `do` at top-level scope, so a
// bare sequence of top-level `def`s is legal without wrapping them in `do`.
func Analyze(root ast.RawNode) (ast.CoreNode, error) {
	top := actx{scope: ScopeTop}
	if prog, ok := root.(*ast.RawProgram); ok {
		exprs := make([]ast.CoreNode, 0, len(prog.Forms))
		for _, f := range prog.Forms {
			n, err := analyzeExpr(f, top)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, n)
		}
		return &ast.CoreDo{Exprs: exprs}, nil
	}
	return analyzeExpr(root, top)
}

func analyzeExpr(node ast.RawNode, ctx actx) (ast.CoreNode, error) {
	switch n := node.(type) {
	case *ast.RawLiteral:
		return &ast.CoreLiteral{Value: n.Value}, nil

	case *ast.RawVector:
		items, err := analyzeExprs(n.Items, ctx)
		if err != nil {
			return nil, err
		}
		return &ast.CoreVectorLit{Items: items}, nil

	case *ast.RawMap:
		pairs := make([]ast.CorePair, 0, len(n.Pairs))
		for _, p := range n.Pairs {
			k, err := analyzeExpr(p.Key, ctx)
			if err != nil {
				return nil, err
			}
			v, err := analyzeExpr(p.Value, ctx)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, ast.CorePair{Key: k, Value: v})
		}
		return &ast.CoreMapLit{Pairs: pairs}, nil

	case *ast.RawSet:
		items, err := analyzeExprs(n.Items, ctx)
		if err != nil {
			return nil, err
		}
		return &ast.CoreSetLit{Items: items}, nil

	case *ast.RawSymbol:
		if n.Name == "%" {
			if !ctx.allowPlaceholder {
				return nil, errf(KindInvalidPlaceholder, "placeholder %s used outside a #() short-fn", n.Name)
			}
			return &ast.CoreVar{Name: "%1"}, nil
		}
		if isPlaceholderName(n.Name) {
			if !ctx.allowPlaceholder {
				return nil, errf(KindInvalidPlaceholder, "placeholder %s used outside a #() short-fn", n.Name)
			}
			return &ast.CoreVar{Name: n.Name}, nil
		}
		return &ast.CoreVar{Name: n.Name}, nil

	case *ast.RawNsSymbol:
		switch n.Namespace {
		case "ctx":
			return &ast.CoreCtx{Key: runtimevalue.Keyword{Name: n.Name}}, nil
		case "memory":
			return &ast.CoreMemory{Key: runtimevalue.Keyword{Name: n.Name}}, nil
		default:
			return nil, errf(KindInvalidForm, "unsupported namespace %q in %s/%s", n.Namespace, n.Namespace, n.Name)
		}

	case *ast.RawTurnHistory:
		return &ast.CoreTurnHistory{N: n.N}, nil

	case *ast.RawShortFn:
		return analyzeShortFn(n)

	case *ast.RawList:
		return analyzeList(n, ctx)

	case *ast.RawProgram:
		exprs, err := analyzeExprs(n.Forms, ctx)
		if err != nil {
			return nil, err
		}
		return &ast.CoreDo{Exprs: exprs}, nil
	}
	return nil, errf(KindInvalidForm, "unrecognized form")
}

func analyzeExprs(nodes []ast.RawNode, ctx actx) ([]ast.CoreNode, error) {
	out := make([]ast.CoreNode, 0, len(nodes))
	for _, n := range nodes {
		c, err := analyzeExpr(n, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// isPlaceholderName reports whether name has the shape "%" followed only
// by digits, the short-fn placeholder convention.
func isPlaceholderName(name string) bool {
	if len(name) < 2 || name[0] != '%' {
		return false
	}
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func asKeywordOrString(node ast.RawNode) (runtimevalue.Value, bool) {
	lit, ok := node.(*ast.RawLiteral)
	if !ok {
		return nil, false
	}
	switch lit.Value.(type) {
	case runtimevalue.Keyword, runtimevalue.String:
		return lit.Value, true
	}
	return nil, false
}

func isElseKeyword(node ast.RawNode) bool {
	lit, ok := node.(*ast.RawLiteral)
	if !ok {
		return false
	}
	kw, ok := lit.Value.(runtimevalue.Keyword)
	return ok && kw.Name == "else"
}

func asString(node ast.RawNode) (string, bool) {
	lit, ok := node.(*ast.RawLiteral)
	if !ok {
		return "", false
	}
	s, ok := lit.Value.(runtimevalue.String)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func asSymbolName(node ast.RawNode) (string, bool) {
	sym, ok := node.(*ast.RawSymbol)
	if !ok {
		return "", false
	}
	return sym.Name, true
}
