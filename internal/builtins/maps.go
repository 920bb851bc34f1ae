package builtins

import (
	"sort"

	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

func asMap(v V) (*runtimevalue.PersistentMap, bool) {
	m, ok := v.(*runtimevalue.PersistentMap)
	return m, ok
}

// sortedKeys orders keys for deterministic output: by Inspect() text, a
// total order over the mixed-kind key universe.
func sortedKeys(m *runtimevalue.PersistentMap) []V {
	keys := m.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].Inspect() < keys[j].Inspect() })
	return keys
}

func registerMaps(reg map[string]V) {
	reg["get"] = &MultiArity{Name: "get", Arities: map[int]func([]V) (V, error){
		2: func(args []V) (V, error) {
			v, ok := FlexGetIndexed(args[0], args[1])
			if !ok {
				return runtimevalue.NilValue, nil
			}
			return v, nil
		},
		3: func(args []V) (V, error) {
			v, ok := FlexGetIndexed(args[0], args[1])
			if !ok {
				return args[2], nil
			}
			return v, nil
		},
	}}

	reg["get-in"] = &MultiArity{Name: "get-in", Arities: map[int]func([]V) (V, error){
		2: func(args []V) (V, error) {
			path, err := pathOf(args[1])
			if err != nil {
				return nil, err
			}
			v, ok := FlexGetPath(args[0], path)
			if !ok {
				return runtimevalue.NilValue, nil
			}
			return v, nil
		},
		3: func(args []V) (V, error) {
			path, err := pathOf(args[1])
			if err != nil {
				return nil, err
			}
			v, ok := FlexGetPath(args[0], path)
			if !ok {
				return args[2], nil
			}
			return v, nil
		},
	}}

	reg["assoc"] = &Normal{Name: "assoc", Arity: 3, Fn: func(args []V) (V, error) {
		return assocOne(args[0], args[1], args[2])
	}}

	reg["assoc-in"] = &Normal{Name: "assoc-in", Arity: 3, Fn: func(args []V) (V, error) {
		path, err := pathOf(args[1])
		if err != nil {
			return nil, err
		}
		return assocInPath(args[0], path, args[2])
	}}

	reg["dissoc"] = &Normal{Name: "dissoc", Arity: 2, Fn: func(args []V) (V, error) {
		m, ok := asMap(args[0])
		if !ok {
			return nil, evalerr.TypeErr("map", inspectName(args[0]))
		}
		return m.Remove(args[1]), nil
	}}

	reg["merge"] = &VariadicNonempty{Name: "merge", Fn2: func(a, b V) (V, error) {
		am, ok := asMap(a)
		if !ok {
			return nil, evalerr.TypeErr("map", inspectName(a))
		}
		bm, ok := asMap(b)
		if !ok {
			return nil, evalerr.TypeErr("map", inspectName(b))
		}
		return am.Merge(bm), nil
	}}

	reg["select-keys"] = &Normal{Name: "select-keys", Arity: 2, Fn: func(args []V) (V, error) {
		m, ok := asMap(args[0])
		if !ok {
			return nil, evalerr.TypeErr("map", inspectName(args[0]))
		}
		keys, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		out := runtimevalue.EmptyMap()
		for _, k := range keys {
			if v, ok := FlexGet(m, k); ok {
				out = out.Put(k, v)
			}
		}
		return out, nil
	}}

	reg["keys"] = &Normal{Name: "keys", Arity: 1, Fn: func(args []V) (V, error) {
		m, ok := asMap(args[0])
		if !ok {
			return nil, evalerr.TypeErr("map", inspectName(args[0]))
		}
		return vec(sortedKeys(m)), nil
	}}

	reg["vals"] = &Normal{Name: "vals", Arity: 1, Fn: func(args []V) (V, error) {
		m, ok := asMap(args[0])
		if !ok {
			return nil, evalerr.TypeErr("map", inspectName(args[0]))
		}
		keys := sortedKeys(m)
		out := make([]V, len(keys))
		for i, k := range keys {
			out[i], _ = m.Get(k)
		}
		return vec(out), nil
	}}

	reg["entries"] = &Normal{Name: "entries", Arity: 1, Fn: func(args []V) (V, error) {
		m, ok := asMap(args[0])
		if !ok {
			return nil, evalerr.TypeErr("map", inspectName(args[0]))
		}
		keys := sortedKeys(m)
		out := make([]V, len(keys))
		for i, k := range keys {
			val, _ := m.Get(k)
			out[i] = vec([]V{k, val})
		}
		return vec(out), nil
	}}
}

func pathOf(v V) ([]V, error) {
	items, err := mustSeq(v)
	if err != nil {
		return nil, evalerr.TypeErr("vector path", inspectName(v))
	}
	return items, nil
}

func assocOne(coll, key, val V) (V, error) {
	switch c := coll.(type) {
	case *runtimevalue.PersistentMap:
		return c.Put(key, val), nil
	case runtimevalue.Vector:
		idx, ok := asInt(key)
		if !ok {
			return nil, evalerr.TypeErr("integer index", inspectName(key))
		}
		out, ok := c.Assoc(idx, val)
		if !ok {
			return nil, evalerr.New(evalerr.TypeError, "assoc: index %d out of bounds for vector of length %d", idx, c.Len())
		}
		return out, nil
	}
	return nil, evalerr.TypeErr("map or vector", inspectName(coll))
}

// assocInPath creates intermediate maps on missing path segments;
// stepping through a non-map, non-vector value is a type error.
func assocInPath(coll V, path []V, val V) (V, error) {
	if len(path) == 0 {
		return val, nil
	}
	key := path[0]
	if len(path) == 1 {
		return assocOne(coll, key, val)
	}
	var child V
	switch c := coll.(type) {
	case *runtimevalue.PersistentMap:
		if v, ok := c.Get(key); ok {
			child = v
		} else {
			child = runtimevalue.EmptyMap()
		}
	case runtimevalue.Vector:
		idx, ok := asInt(key)
		if !ok {
			return nil, evalerr.TypeErr("integer index", inspectName(key))
		}
		v, ok := c.Get(idx)
		if !ok {
			return nil, evalerr.New(evalerr.TypeError, "assoc-in: index %d out of bounds", idx)
		}
		child = v
	case runtimevalue.Nil:
		child = runtimevalue.EmptyMap()
	default:
		return nil, evalerr.TypeErr("map or vector", inspectName(coll))
	}
	newChild, err := assocInPath(child, path[1:], val)
	if err != nil {
		return nil, err
	}
	if _, ok := coll.(runtimevalue.Nil); ok {
		coll = runtimevalue.EmptyMap()
	}
	return assocOne(coll, key, newChild)
}

// registerMapsApply wires the map builtins that need to invoke a callback
// argument (update, update-in, update-vals).
func registerMapsApply(reg map[string]V, apply Apply) {
	reg["update"] = &Normal{Name: "update", Arity: 3, Fn: func(args []V) (V, error) {
		cur, _ := FlexGetIndexed(args[0], args[1])
		if cur == nil {
			cur = runtimevalue.NilValue
		}
		next, err := apply(args[2], []V{cur})
		if err != nil {
			return nil, err
		}
		return assocOne(args[0], args[1], next)
	}}

	reg["update-in"] = &Normal{Name: "update-in", Arity: 3, Fn: func(args []V) (V, error) {
		path, err := pathOf(args[1])
		if err != nil {
			return nil, err
		}
		cur, ok := FlexGetPath(args[0], path)
		if !ok {
			cur = runtimevalue.NilValue
		}
		next, err := apply(args[2], []V{cur})
		if err != nil {
			return nil, err
		}
		return assocInPath(args[0], path, next)
	}}

	reg["update-vals"] = &Normal{Name: "update-vals", Arity: 2, Fn: func(args []V) (V, error) {
		m, ok := asMap(args[0])
		if !ok {
			return nil, evalerr.TypeErr("map", inspectName(args[0]))
		}
		out := m
		for _, e := range m.Items() {
			next, err := apply(args[1], []V{e.Value})
			if err != nil {
				return nil, err
			}
			out = out.Put(e.Key, next)
		}
		return out, nil
	}}
}
