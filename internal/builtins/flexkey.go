package builtins

import "github.com/ptclisp/ptclisp/internal/runtimevalue"

// FlexGet is the single flexible-key-access contract: try the key as
// given; if absent and the key is a keyword, try its string form; if
// absent and the key is a string, try it as a keyword; else report
// absent. Used by get/get-in/contains?/select-keys, by where's
// field-path lookup, and by every key-as-predicate builtin.
func FlexGet(coll runtimevalue.Value, key runtimevalue.Value) (runtimevalue.Value, bool) {
	m, ok := coll.(*runtimevalue.PersistentMap)
	if !ok {
		return nil, false
	}
	if v, ok := m.Get(key); ok {
		return v, true
	}
	switch k := key.(type) {
	case runtimevalue.Keyword:
		if v, ok := m.Get(runtimevalue.String{Value: k.Name}); ok {
			return v, true
		}
	case runtimevalue.String:
		if v, ok := m.Get(runtimevalue.Keyword{Name: k.Value}); ok {
			return v, true
		}
	}
	return nil, false
}

// FlexGetIndexed extends FlexGet to vectors (numeric index) so get-in paths
// can step through mixed map/vector structures.
func FlexGetIndexed(coll runtimevalue.Value, key runtimevalue.Value) (runtimevalue.Value, bool) {
	if v, ok := coll.(runtimevalue.Vector); ok {
		if idx, ok := asInt(key); ok {
			return v.Get(idx)
		}
		return nil, false
	}
	return FlexGet(coll, key)
}

// FlexGetPath walks path left to right through coll using flexible lookup
// at each step; returns (value, true) if every segment resolved.
func FlexGetPath(coll runtimevalue.Value, path []runtimevalue.Value) (runtimevalue.Value, bool) {
	cur := coll
	for _, seg := range path {
		v, ok := FlexGetIndexed(cur, seg)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
