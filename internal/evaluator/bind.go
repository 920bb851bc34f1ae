package evaluator

import (
	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/builtins"
	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// bindPattern matches val against pat, defining every name the pattern
// introduces in env. defaultEnv is the environment `:or` default
// expressions are evaluated in; both callers pass the frame being
// populated, so a default sees the names bound before it.
func (ev *Evaluator) bindPattern(pat ast.Pattern, val runtimevalue.Value, env *Env, defaultEnv *Env) error {
	switch p := pat.(type) {
	case *ast.PatternVar:
		env.Define(p.Name, val)
		return nil

	case *ast.PatternDestructureKeys:
		for _, name := range p.Names {
			v, ok := builtins.FlexGet(val, runtimevalue.Keyword{Name: name})
			if def, hasDef := p.Defaults[name]; hasDef && (!ok || isNilValue(v)) {
				dv, err := ev.Eval(def, defaultEnv)
				if err != nil {
					return err
				}
				env.Define(name, dv)
				continue
			}
			if !ok {
				env.Define(name, runtimevalue.NilValue)
				continue
			}
			env.Define(name, v)
		}
		return nil

	case *ast.PatternDestructureMap:
		for _, name := range p.Names {
			v, ok := builtins.FlexGet(val, runtimevalue.Keyword{Name: name})
			if def, hasDef := p.Defaults[name]; hasDef && (!ok || isNilValue(v)) {
				dv, err := ev.Eval(def, defaultEnv)
				if err != nil {
					return err
				}
				env.Define(name, dv)
				continue
			}
			if !ok {
				env.Define(name, runtimevalue.NilValue)
				continue
			}
			env.Define(name, v)
		}
		for _, ren := range p.Renames {
			v, ok := builtins.FlexGet(val, runtimevalue.Keyword{Name: ren.Key})
			if def, hasDef := p.Defaults[ren.Binding]; hasDef && (!ok || isNilValue(v)) {
				dv, err := ev.Eval(def, defaultEnv)
				if err != nil {
					return err
				}
				env.Define(ren.Binding, dv)
				continue
			}
			if !ok {
				env.Define(ren.Binding, runtimevalue.NilValue)
				continue
			}
			env.Define(ren.Binding, v)
		}
		return nil

	case *ast.PatternDestructureAs:
		env.Define(p.Alias, val)
		return ev.bindPattern(p.Inner, val, env, defaultEnv)

	case *ast.PatternDestructureSeq:
		items := seqItems(val)
		for i, sub := range p.Items {
			var elem runtimevalue.Value = runtimevalue.NilValue
			if i < len(items) {
				elem = items[i]
			}
			if err := ev.bindPattern(sub, elem, env, defaultEnv); err != nil {
				return err
			}
		}
		if p.Rest != nil {
			var rest []runtimevalue.Value
			if len(items) > len(p.Items) {
				rest = items[len(p.Items):]
			}
			env.Define(p.Rest.Name, runtimevalue.NewVector(rest))
		}
		return nil

	default:
		return evalerr.New(evalerr.TypeError, "unsupported pattern shape")
	}
}

func isNilValue(v runtimevalue.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(runtimevalue.Nil)
	return ok
}

// seqItems views val as a sequence of elements for vector-destructuring
// purposes: vectors in element order, sets in their stored order, maps as
// [k v] pairs, nil as empty.
func seqItems(val runtimevalue.Value) []runtimevalue.Value {
	switch v := val.(type) {
	case runtimevalue.Vector:
		return v.Items()
	case *runtimevalue.Set:
		return v.Items()
	case *runtimevalue.PersistentMap:
		entries := v.Items()
		out := make([]runtimevalue.Value, len(entries))
		for i, e := range entries {
			out[i] = runtimevalue.NewVector([]runtimevalue.Value{e.Key, e.Value})
		}
		return out
	case runtimevalue.Nil:
		return nil
	default:
		return nil
	}
}
