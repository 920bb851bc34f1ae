package builtins

import (
	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

type V = runtimevalue.Value

// asSeq coerces coll into a flat []V for the sequence builtins. Vectors
// pass through directly; sets and maps iterate in their own
// stable-but-unspecified order, maps yielding each entry as a 2-element
// [k v] vector.
func asSeq(coll V) ([]V, bool) {
	switch c := coll.(type) {
	case runtimevalue.Vector:
		return append([]V(nil), c.Items()...), true
	case *runtimevalue.Set:
		return c.Items(), true
	case *runtimevalue.PersistentMap:
		items := c.Items()
		out := make([]V, len(items))
		for i, e := range items {
			out[i] = runtimevalue.NewVector([]V{e.Key, e.Value})
		}
		return out, true
	case runtimevalue.Nil:
		return nil, true
	}
	return nil, false
}

func mustSeq(coll V) ([]V, error) {
	s, ok := asSeq(coll)
	if !ok {
		return nil, evalerr.TypeErr("collection", inspectName(coll))
	}
	return s, nil
}

func vec(items []V) runtimevalue.Vector { return runtimevalue.NewVector(items) }

// asInt coerces an Int, or a Float truncated toward zero, into a native
// int, for indexing ops.
func asInt(v V) (int, bool) {
	switch n := v.(type) {
	case runtimevalue.Int:
		i, ok := n.Int64()
		if !ok {
			return 0, false
		}
		return int(i), true
	case runtimevalue.Float:
		return int(n.Value), true
	}
	return 0, false
}

func asString(v V) (string, bool) {
	s, ok := v.(runtimevalue.String)
	if !ok {
		return "", false
	}
	return s.Value, true
}
