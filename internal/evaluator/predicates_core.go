package evaluator

import (
	"math/big"
	"strings"

	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/builtins"
	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// makeWhere evaluates a `where` form into a host unary predicate. The
// comparison value, if any, is evaluated once up front, not per row.
func (ev *Evaluator) makeWhere(n *ast.CoreWhere, env *Env) (runtimevalue.Value, error) {
	var cmp runtimevalue.Value
	if n.Value != nil {
		v, err := ev.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		cmp = v
	}
	path := n.Path
	op := n.Op
	return &builtins.HostFunc{
		Name: "where",
		Fn: func(args []runtimevalue.Value) (runtimevalue.Value, error) {
			if len(args) != 1 {
				return nil, evalerr.New(evalerr.ArityError, "where predicate expects 1 argument, got %d", len(args))
			}
			row := args[0]
			var field runtimevalue.Value = runtimevalue.NilValue
			if v, ok := builtins.FlexGetPath(row, path); ok {
				field = v
			}
			return runtimevalue.BoolOf(applyWhereOp(op, field, cmp)), nil
		},
	}, nil
}

func applyWhereOp(op ast.WhereOp, field, cmp runtimevalue.Value) bool {
	switch op {
	case ast.WhereTruthy:
		return runtimevalue.Truthy(field)
	case ast.WhereEq:
		return whereEqual(field, cmp)
	case ast.WhereNotEq:
		return !whereEqual(field, cmp)
	case ast.WhereGt, ast.WhereLt, ast.WhereGte, ast.WhereLte:
		return whereOrder(op, field, cmp)
	case ast.WhereIncludes:
		return whereIncludes(field, cmp)
	case ast.WhereIn:
		return whereIncludes(cmp, field)
	default:
		return false
	}
}

// whereEqual is nil-safe equality: nil = nil is true, any other
// comparison touching nil is false.
func whereEqual(a, b runtimevalue.Value) bool {
	aNil, bNil := isNilValue(a), isNilValue(b)
	if aNil || bNil {
		return aNil && bNil
	}
	return runtimevalue.Equal(a, b)
}

func whereOrder(op ast.WhereOp, a, b runtimevalue.Value) bool {
	if isNilValue(a) || isNilValue(b) {
		return false
	}
	cmp, ok := orderCompare(a, b)
	if !ok {
		return false
	}
	switch op {
	case ast.WhereGt:
		return cmp > 0
	case ast.WhereLt:
		return cmp < 0
	case ast.WhereGte:
		return cmp >= 0
	case ast.WhereLte:
		return cmp <= 0
	}
	return false
}

// orderCompare supports numeric and string-lexical ordering, the two
// comparable kinds the runtime library's own comparison builtins accept.
func orderCompare(a, b runtimevalue.Value) (int, bool) {
	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := stringValue(a)
	bs, bok := stringValue(b)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func numericValue(v runtimevalue.Value) (float64, bool) {
	switch n := v.(type) {
	case runtimevalue.Int:
		f, _ := new(big.Float).SetInt(n.Value).Float64()
		return f, true
	case runtimevalue.Float:
		return n.Value, true
	}
	return 0, false
}

func stringValue(v runtimevalue.Value) (string, bool) {
	switch s := v.(type) {
	case runtimevalue.String:
		return s.Value, true
	case runtimevalue.Keyword:
		return s.Name, true
	}
	return "", false
}

// whereIncludes: haystack may be a string (substring of needle's string
// form) or a collection (membership); `in`'s reversed argument order is
// handled by the caller.
func whereIncludes(haystack, needle runtimevalue.Value) bool {
	if s, ok := haystack.(runtimevalue.String); ok {
		if ns, ok := stringValue(needle); ok {
			return strings.Contains(s.Value, ns)
		}
		return false
	}
	switch coll := haystack.(type) {
	case runtimevalue.Vector:
		for _, item := range coll.Items() {
			if whereEqual(item, needle) {
				return true
			}
		}
		return false
	case *runtimevalue.Set:
		return coll.Contains(needle)
	case *runtimevalue.PersistentMap:
		_, ok := coll.Get(needle)
		return ok
	default:
		return false
	}
}

// makePredCombinator evaluates each operand predicate once, then returns
// a host unary function combining their results.
func (ev *Evaluator) makePredCombinator(n *ast.CorePredCombinator, env *Env) (runtimevalue.Value, error) {
	preds, err := ev.evalAll(n.Preds, env)
	if err != nil {
		return nil, err
	}
	kind := n.Kind
	return &builtins.HostFunc{
		Name: string(kind),
		Fn: func(args []runtimevalue.Value) (runtimevalue.Value, error) {
			switch kind {
			case ast.PredAll:
				for _, p := range preds {
					v, err := ev.callValue(p, args)
					if err != nil {
						return nil, err
					}
					if !runtimevalue.Truthy(v) {
						return runtimevalue.False, nil
					}
				}
				return runtimevalue.True, nil
			case ast.PredAny:
				for _, p := range preds {
					v, err := ev.callValue(p, args)
					if err != nil {
						return nil, err
					}
					if runtimevalue.Truthy(v) {
						return runtimevalue.True, nil
					}
				}
				return runtimevalue.False, nil
			case ast.PredNone:
				for _, p := range preds {
					v, err := ev.callValue(p, args)
					if err != nil {
						return nil, err
					}
					if runtimevalue.Truthy(v) {
						return runtimevalue.False, nil
					}
				}
				return runtimevalue.True, nil
			default:
				return nil, evalerr.New(evalerr.TypeError, "unknown predicate combinator %q", kind)
			}
		},
	}, nil
}

// makeJuxt evaluates each function expression once, then returns a host
// function applying all of them to the same arguments and collecting a
// vector of results.
func (ev *Evaluator) makeJuxt(n *ast.CoreJuxt, env *Env) (runtimevalue.Value, error) {
	fns, err := ev.evalAll(n.Fns, env)
	if err != nil {
		return nil, err
	}
	return &builtins.HostFunc{
		Name: "juxt",
		Fn: func(args []runtimevalue.Value) (runtimevalue.Value, error) {
			out := make([]runtimevalue.Value, len(fns))
			for i, fn := range fns {
				v, err := ev.callValue(fn, args)
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return runtimevalue.NewVector(out), nil
		},
	}, nil
}
