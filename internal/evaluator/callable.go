package evaluator

import (
	"github.com/ptclisp/ptclisp/internal/builtins"
	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// callValue dispatches a call by the callee's concrete kind. It
// type-switches on concrete builtin wrapper types rather than asserting
// runtimevalue.Callable: Callable carries an unexported marker method,
// so types declared in package builtins can never actually satisfy it
// from outside that package; a type-switch sidesteps the issue entirely.
func (ev *Evaluator) callValue(callee runtimevalue.Value, args []runtimevalue.Value) (runtimevalue.Value, error) {
	switch fn := callee.(type) {
	case *Closure:
		return ev.callClosure(fn, args)

	case *builtins.Normal:
		if len(args) != fn.Arity {
			return nil, evalerr.ArityMismatchErr(fn.Name, fn.Arity, len(args))
		}
		return fn.Fn(args)

	case *builtins.Variadic:
		switch len(args) {
		case 0:
			return fn.Identity, nil
		case 1:
			if fn.Unary != nil {
				return fn.Unary(args[0])
			}
			return args[0], nil
		default:
			acc := args[0]
			for _, next := range args[1:] {
				v, err := fn.Fn2(acc, next)
				if err != nil {
					return nil, err
				}
				acc = v
			}
			return acc, nil
		}

	case *builtins.VariadicNonempty:
		switch len(args) {
		case 0:
			return nil, evalerr.New(evalerr.ArityError, "%s requires at least 1 argument", fn.Name)
		case 1:
			if fn.Unary != nil {
				return fn.Unary(args[0])
			}
			return args[0], nil
		default:
			acc := args[0]
			for _, next := range args[1:] {
				v, err := fn.Fn2(acc, next)
				if err != nil {
					return nil, err
				}
				acc = v
			}
			return acc, nil
		}

	case *builtins.MultiArity:
		impl, ok := fn.Arities[len(args)]
		if !ok {
			return nil, evalerr.New(evalerr.ArityError, "%s: no overload for %d argument(s)", fn.Name, len(args))
		}
		return impl(args)

	case *builtins.HostFunc:
		return fn.Fn(args)

	case runtimevalue.Keyword:
		return callKeyword(fn, args)

	default:
		return nil, evalerr.NotCallableErr(inspectValue(callee))
	}
}

// callClosure pattern-matches args into a fresh frame chained to the
// closure's captured environment. Arity is exact: there are no
// multi-arity or variadic closures.
func (ev *Evaluator) callClosure(c *Closure, args []runtimevalue.Value) (runtimevalue.Value, error) {
	if len(args) != len(c.Params) {
		return nil, evalerr.ArityMismatchErr(c.Inspect(), len(c.Params), len(args))
	}
	frame := NewChildEnv(c.Env)
	for i, p := range c.Params {
		if err := ev.bindPattern(p, args[i], frame, frame); err != nil {
			return nil, err
		}
	}
	return ev.Eval(c.Body, frame)
}

// callKeyword implements `(:k m)`/`(:k m default)`: a keyword used as
// callee acts as a flexible-key lookup against a map argument.
func callKeyword(k runtimevalue.Keyword, args []runtimevalue.Value) (runtimevalue.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, evalerr.InvalidKeywordCallErr(k.Inspect(), len(args))
	}
	v, ok := builtins.FlexGet(args[0], k)
	if ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return runtimevalue.NilValue, nil
}

func inspectValue(v runtimevalue.Value) string {
	if v == nil {
		return "nil"
	}
	return v.Inspect()
}
