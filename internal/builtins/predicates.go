package builtins

import (
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

func registerPredicates(reg map[string]V) {
	typePred := func(name string, test func(V) bool) {
		reg[name] = &Normal{Name: name, Arity: 1, Fn: func(args []V) (V, error) {
			return runtimevalue.BoolOf(test(args[0])), nil
		}}
	}

	typePred("nil?", func(v V) bool { _, ok := v.(runtimevalue.Nil); return ok })
	typePred("some?", func(v V) bool { _, ok := v.(runtimevalue.Nil); return !ok })
	typePred("boolean?", func(v V) bool { _, ok := v.(runtimevalue.Bool); return ok })
	typePred("number?", func(v V) bool {
		switch v.(type) {
		case runtimevalue.Int, runtimevalue.Float:
			return true
		}
		return false
	})
	typePred("string?", func(v V) bool { _, ok := v.(runtimevalue.String); return ok })
	typePred("keyword?", func(v V) bool { _, ok := v.(runtimevalue.Keyword); return ok })
	typePred("vector?", func(v V) bool { _, ok := v.(runtimevalue.Vector); return ok })
	typePred("set?", func(v V) bool { _, ok := v.(*runtimevalue.Set); return ok })
	typePred("map?", func(v V) bool { _, ok := v.(*runtimevalue.PersistentMap); return ok })
	typePred("coll?", func(v V) bool {
		switch v.(type) {
		case runtimevalue.Vector, *runtimevalue.Set, *runtimevalue.PersistentMap:
			return true
		}
		return false
	})

	typePred("zero?", func(v V) bool { return numSign(v) == 0 })
	typePred("pos?", func(v V) bool { return numSign(v) > 0 })
	typePred("neg?", func(v V) bool { return numSign(v) < 0 })
	typePred("even?", func(v V) bool { return numParity(v) == 0 })
	typePred("odd?", func(v V) bool { return numParity(v) != 0 })

	reg["set"] = &Normal{Name: "set", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		return runtimevalue.SetFrom(items), nil
	}}
}

func numSign(v V) int {
	switch n := v.(type) {
	case runtimevalue.Int:
		return n.Value.Sign()
	case runtimevalue.Float:
		switch {
		case n.Value > 0:
			return 1
		case n.Value < 0:
			return -1
		default:
			return 0
		}
	}
	return 0
}

func numParity(v V) int {
	switch n := v.(type) {
	case runtimevalue.Int:
		return int(n.Value.Bit(0))
	case runtimevalue.Float:
		return int(n.Value) & 1
	}
	return 0
}
