package builtins

import (
	"math"
	"math/big"

	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

func asFloat(v V) (float64, bool) {
	switch n := v.(type) {
	case runtimevalue.Int:
		f := new(big.Float).SetInt(n.Value)
		out, _ := f.Float64()
		return out, true
	case runtimevalue.Float:
		return n.Value, true
	}
	return 0, false
}

func isNumber(v V) bool {
	switch v.(type) {
	case runtimevalue.Int, runtimevalue.Float:
		return true
	}
	return false
}

// numOp applies intFn when both operands are Int, floatFn otherwise
// (numeric promotion rule used across +, -, *, comparisons).
func numOp(name string, a, b V, intFn func(x, y *big.Int) *big.Int, floatFn func(x, y float64) float64) (V, error) {
	if !isNumber(a) {
		return nil, evalerr.TypeErr("number", inspectName(a))
	}
	if !isNumber(b) {
		return nil, evalerr.TypeErr("number", inspectName(b))
	}
	ai, aIsInt := a.(runtimevalue.Int)
	bi, bIsInt := b.(runtimevalue.Int)
	if aIsInt && bIsInt {
		return runtimevalue.Int{Value: intFn(ai.Value, bi.Value)}, nil
	}
	af, _ := asFloat(a)
	bf, _ := asFloat(b)
	return runtimevalue.Float{Value: floatFn(af, bf)}, nil
}

func registerArith(reg map[string]V) {
	reg["+"] = &Variadic{
		Name: "+", Identity: runtimevalue.IntFromInt64(0),
		Fn2: func(a, b V) (V, error) {
			return numOp("+", a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) }, func(x, y float64) float64 { return x + y })
		},
	}
	reg["*"] = &Variadic{
		Name: "*", Identity: runtimevalue.IntFromInt64(1),
		Fn2: func(a, b V) (V, error) {
			return numOp("*", a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) }, func(x, y float64) float64 { return x * y })
		},
	}
	reg["-"] = &VariadicNonempty{
		Name: "-",
		Fn2: func(a, b V) (V, error) {
			return numOp("-", a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) }, func(x, y float64) float64 { return x - y })
		},
		Unary: func(a V) (V, error) {
			switch n := a.(type) {
			case runtimevalue.Int:
				return runtimevalue.Int{Value: new(big.Int).Neg(n.Value)}, nil
			case runtimevalue.Float:
				return runtimevalue.Float{Value: -n.Value}, nil
			}
			return nil, evalerr.TypeErr("number", inspectName(a))
		},
	}
	reg["/"] = &Normal{Name: "/", Arity: 2, Fn: func(args []V) (V, error) {
		af, ok1 := asFloat(args[0])
		bf, ok2 := asFloat(args[1])
		if !ok1 {
			return nil, evalerr.TypeErr("number", inspectName(args[0]))
		}
		if !ok2 {
			return nil, evalerr.TypeErr("number", inspectName(args[1]))
		}
		if bf == 0 {
			return runtimevalue.Float{Value: math.NaN()}, nil
		}
		return runtimevalue.Float{Value: af / bf}, nil
	}}
	reg["mod"] = &Normal{Name: "mod", Arity: 2, Fn: func(args []V) (V, error) {
		ai, aok := args[0].(runtimevalue.Int)
		bi, bok := args[1].(runtimevalue.Int)
		if aok && bok {
			if bi.Value.Sign() == 0 {
				return nil, evalerr.New(evalerr.TypeError, "mod: division by zero")
			}
			m := new(big.Int).Mod(ai.Value, bi.Value)
			return runtimevalue.Int{Value: m}, nil
		}
		af, ok1 := asFloat(args[0])
		bf, ok2 := asFloat(args[1])
		if !ok1 || !ok2 {
			return nil, evalerr.TypeErr("number", inspectName(args[0]))
		}
		return runtimevalue.Float{Value: math.Mod(af, bf)}, nil
	}}
	reg["inc"] = &Normal{Name: "inc", Arity: 1, Fn: func(args []V) (V, error) {
		return numOp("inc", args[0], runtimevalue.IntFromInt64(1), func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) }, func(x, y float64) float64 { return x + y })
	}}
	reg["dec"] = &Normal{Name: "dec", Arity: 1, Fn: func(args []V) (V, error) {
		return numOp("dec", args[0], runtimevalue.IntFromInt64(1), func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) }, func(x, y float64) float64 { return x - y })
	}}
	reg["abs"] = &Normal{Name: "abs", Arity: 1, Fn: func(args []V) (V, error) {
		switch n := args[0].(type) {
		case runtimevalue.Int:
			return runtimevalue.Int{Value: new(big.Int).Abs(n.Value)}, nil
		case runtimevalue.Float:
			return runtimevalue.Float{Value: math.Abs(n.Value)}, nil
		}
		return nil, evalerr.TypeErr("number", inspectName(args[0]))
	}}
	reg["max"] = &VariadicNonempty{Name: "max", Fn2: func(a, b V) (V, error) {
		if numLess(a, b) {
			return b, nil
		}
		return a, nil
	}}
	reg["min"] = &VariadicNonempty{Name: "min", Fn2: func(a, b V) (V, error) {
		if numLess(b, a) {
			return b, nil
		}
		return a, nil
	}}

	reg["="] = &Normal{Name: "=", Arity: 2, Fn: func(args []V) (V, error) {
		return runtimevalue.BoolOf(runtimevalue.Equal(args[0], args[1])), nil
	}}
	reg["not="] = &Normal{Name: "not=", Arity: 2, Fn: func(args []V) (V, error) {
		return runtimevalue.BoolOf(!runtimevalue.Equal(args[0], args[1])), nil
	}}
	reg[">"] = &Normal{Name: ">", Arity: 2, Fn: func(args []V) (V, error) { return cmpBuiltin(args[0], args[1], func(c int) bool { return c > 0 }) }}
	reg["<"] = &Normal{Name: "<", Arity: 2, Fn: func(args []V) (V, error) { return cmpBuiltin(args[0], args[1], func(c int) bool { return c < 0 }) }}
	reg[">="] = &Normal{Name: ">=", Arity: 2, Fn: func(args []V) (V, error) { return cmpBuiltin(args[0], args[1], func(c int) bool { return c >= 0 }) }}
	reg["<="] = &Normal{Name: "<=", Arity: 2, Fn: func(args []V) (V, error) { return cmpBuiltin(args[0], args[1], func(c int) bool { return c <= 0 }) }}

	reg["not"] = &Normal{Name: "not", Arity: 1, Fn: func(args []V) (V, error) {
		return runtimevalue.BoolOf(!runtimevalue.Truthy(args[0])), nil
	}}
	reg["identity"] = &Normal{Name: "identity", Arity: 1, Fn: func(args []V) (V, error) { return args[0], nil }}
}

func numLess(a, b V) bool {
	ai, aIsInt := a.(runtimevalue.Int)
	bi, bIsInt := b.(runtimevalue.Int)
	if aIsInt && bIsInt {
		return ai.Value.Cmp(bi.Value) < 0
	}
	af, _ := asFloat(a)
	bf, _ := asFloat(b)
	return af < bf
}

func cmpBuiltin(a, b V, test func(int) bool) (V, error) {
	if !isNumber(a) || !isNumber(b) {
		// Strings compare lexically too, a small generalization
		// alongside numeric comparisons.
		as, aok := a.(runtimevalue.String)
		bs, bok := b.(runtimevalue.String)
		if aok && bok {
			switch {
			case as.Value < bs.Value:
				return runtimevalue.BoolOf(test(-1)), nil
			case as.Value > bs.Value:
				return runtimevalue.BoolOf(test(1)), nil
			default:
				return runtimevalue.BoolOf(test(0)), nil
			}
		}
		return nil, evalerr.TypeErr("number", inspectName(a))
	}
	ai, aIsInt := a.(runtimevalue.Int)
	bi, bIsInt := b.(runtimevalue.Int)
	if aIsInt && bIsInt {
		return runtimevalue.BoolOf(test(ai.Value.Cmp(bi.Value))), nil
	}
	af, _ := asFloat(a)
	bf, _ := asFloat(b)
	switch {
	case af < bf:
		return runtimevalue.BoolOf(test(-1)), nil
	case af > bf:
		return runtimevalue.BoolOf(test(1)), nil
	default:
		return runtimevalue.BoolOf(test(0)), nil
	}
}
