package runtimevalue

import "math/big"

// Equal implements structural equality. Numbers compare across Int/Float
// by numeric value, matching the runtime library's `=`.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case Keyword:
		bv, ok := b.(Keyword)
		return ok && av.Name == bv.Name
	case Int:
		switch bv := b.(type) {
		case Int:
			return av.Value.Cmp(bv.Value) == 0
		case Float:
			f := new(big.Float).SetInt(av.Value)
			bf := big.NewFloat(bv.Value)
			return f.Cmp(bf) == 0
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Float:
			return av.Value == bv.Value
		case Int:
			return Equal(bv, av)
		}
		return false
	case Vector:
		bv, ok := b.(Vector)
		if !ok || len(av.items) != len(bv.items) {
			return false
		}
		for i := range av.items {
			if !Equal(av.items[i], bv.items[i]) {
				return false
			}
		}
		return true
	case *Set:
		bv, ok := b.(*Set)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, item := range av.Items() {
			if !bv.Contains(item) {
				return false
			}
		}
		return true
	case *PersistentMap:
		bv, ok := b.(*PersistentMap)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, entry := range av.Items() {
			other, found := bv.Get(entry.Key)
			if !found || !Equal(entry.Value, other) {
				return false
			}
		}
		return true
	default:
		return a.Kind() == b.Kind() && a.Inspect() == b.Inspect()
	}
}

// Truthy implements the truthiness rule: only nil and false are falsy,
// everything else (including 0, "", [], {}) is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case Nil:
		return false
	case Bool:
		return t.Value
	case nil:
		return false
	default:
		return true
	}
}
