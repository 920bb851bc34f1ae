package builtins

import (
	"math/big"
	"sort"

	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// keyFn builds the one-argument function a key-accepting higher-order
// builtin applies to each element: a callable is applied via apply; a
// keyword/string is a flexible field-path lookup (single segment, or the
// full path when allowPath lets a vector stand for one); a set tests
// membership, returning the matched element or nil.
func keyFn(v V, apply Apply, allowPath bool) (func(V) (V, error), error) {
	switch k := v.(type) {
	case runtimevalue.Keyword:
		return func(elem V) (V, error) {
			r, ok := FlexGetPath(elem, []V{k})
			if !ok {
				return runtimevalue.NilValue, nil
			}
			return r, nil
		}, nil
	case runtimevalue.String:
		return func(elem V) (V, error) {
			r, ok := FlexGetPath(elem, []V{k})
			if !ok {
				return runtimevalue.NilValue, nil
			}
			return r, nil
		}, nil
	case *runtimevalue.Set:
		return func(elem V) (V, error) { return k.AsPredicate(elem), nil }, nil
	case runtimevalue.Vector:
		if !allowPath {
			return nil, evalerr.TypeErr("keyword, string, set, or function", inspectName(v))
		}
		path := k.Items()
		return func(elem V) (V, error) {
			r, ok := FlexGetPath(elem, path)
			if !ok {
				return runtimevalue.NilValue, nil
			}
			return r, nil
		}, nil
	default:
		return func(elem V) (V, error) { return apply(v, []V{elem}) }, nil
	}
}

func registerCollections(reg map[string]V, apply Apply) {
	reg["count"] = &Normal{Name: "count", Arity: 1, Fn: func(args []V) (V, error) {
		n, err := collCount(args[0])
		if err != nil {
			return nil, err
		}
		return runtimevalue.IntFromInt64(int64(n)), nil
	}}

	reg["empty?"] = &Normal{Name: "empty?", Arity: 1, Fn: func(args []V) (V, error) {
		n, err := collCount(args[0])
		if err != nil {
			return nil, err
		}
		return runtimevalue.BoolOf(n == 0), nil
	}}

	reg["not-empty"] = &Normal{Name: "not-empty", Arity: 1, Fn: func(args []V) (V, error) {
		n, err := collCount(args[0])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return runtimevalue.NilValue, nil
		}
		return args[0], nil
	}}

	reg["seq"] = &Normal{Name: "seq", Arity: 1, Fn: func(args []V) (V, error) {
		items, ok := asSeq(args[0])
		if !ok {
			if s, ok := args[0].(runtimevalue.String); ok {
				items = stringSeq(s.Value)
			} else {
				return nil, evalerr.TypeErr("collection", inspectName(args[0]))
			}
		}
		if len(items) == 0 {
			return runtimevalue.NilValue, nil
		}
		return vec(items), nil
	}}

	reg["first"] = &Normal{Name: "first", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return runtimevalue.NilValue, nil
		}
		return items[0], nil
	}}

	reg["second"] = &Normal{Name: "second", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		if len(items) < 2 {
			return runtimevalue.NilValue, nil
		}
		return items[1], nil
	}}

	reg["last"] = &Normal{Name: "last", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return runtimevalue.NilValue, nil
		}
		return items[len(items)-1], nil
	}}

	reg["nth"] = &MultiArity{Name: "nth", Arities: map[int]func([]V) (V, error){
		2: func(args []V) (V, error) {
			items, err := mustSeq(args[0])
			if err != nil {
				return nil, err
			}
			idx, ok := asInt(args[1])
			if !ok || idx < 0 || idx >= len(items) {
				return runtimevalue.NilValue, nil
			}
			return items[idx], nil
		},
		3: func(args []V) (V, error) {
			items, err := mustSeq(args[0])
			if err != nil {
				return nil, err
			}
			idx, ok := asInt(args[1])
			if !ok || idx < 0 || idx >= len(items) {
				return args[2], nil
			}
			return items[idx], nil
		},
	}}

	reg["rest"] = &Normal{Name: "rest", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		if len(items) <= 1 {
			return runtimevalue.EmptyVector, nil
		}
		return vec(items[1:]), nil
	}}

	reg["next"] = &Normal{Name: "next", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		if len(items) <= 1 {
			return runtimevalue.NilValue, nil
		}
		return vec(items[1:]), nil
	}}

	reg["butlast"] = &Normal{Name: "butlast", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		if len(items) <= 1 {
			return runtimevalue.NilValue, nil
		}
		return vec(items[:len(items)-1]), nil
	}}

	reg["take"] = &Normal{Name: "take", Arity: 2, Fn: func(args []V) (V, error) {
		n, ok := asInt(args[0])
		if !ok {
			return nil, evalerr.TypeErr("integer", inspectName(args[0]))
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if n > len(items) {
			n = len(items)
		}
		return vec(items[:n]), nil
	}}

	reg["drop"] = &Normal{Name: "drop", Arity: 2, Fn: func(args []V) (V, error) {
		n, ok := asInt(args[0])
		if !ok {
			return nil, evalerr.TypeErr("integer", inspectName(args[0]))
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if n > len(items) {
			n = len(items)
		}
		return vec(items[n:]), nil
	}}

	reg["take-last"] = &Normal{Name: "take-last", Arity: 2, Fn: func(args []V) (V, error) {
		n, ok := asInt(args[0])
		if !ok {
			return nil, evalerr.TypeErr("integer", inspectName(args[0]))
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if n > len(items) {
			n = len(items)
		}
		return vec(items[len(items)-n:]), nil
	}}

	reg["drop-last"] = &Normal{Name: "drop-last", Arity: 2, Fn: func(args []V) (V, error) {
		n, ok := asInt(args[0])
		if !ok {
			return nil, evalerr.TypeErr("integer", inspectName(args[0]))
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if n > len(items) {
			n = len(items)
		}
		return vec(items[:len(items)-n]), nil
	}}

	reg["reverse"] = &Normal{Name: "reverse", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		out := make([]V, len(items))
		for i, it := range items {
			out[len(items)-1-i] = it
		}
		return vec(out), nil
	}}

	reg["concat"] = &HostFunc{Name: "concat", Fn: func(args []V) (V, error) {
		var out []V
		for _, a := range args {
			items, err := mustSeq(a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		}
		return vec(out), nil
	}}

	reg["conj"] = &HostFunc{Name: "conj", Fn: func(args []V) (V, error) {
		if len(args) == 0 {
			return runtimevalue.EmptyVector, nil
		}
		return conjAll(args[0], args[1:])
	}}

	reg["into"] = &Normal{Name: "into", Arity: 2, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		return conjAll(args[0], items)
	}}

	reg["flatten"] = &Normal{Name: "flatten", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		return vec(flattenItems(items)), nil
	}}

	reg["distinct"] = &Normal{Name: "distinct", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		var out []V
		for _, it := range items {
			if !containsEqual(out, it) {
				out = append(out, it)
			}
		}
		return vec(out), nil
	}}

	reg["frequencies"] = &Normal{Name: "frequencies", Arity: 1, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[0])
		if err != nil {
			return nil, err
		}
		out := runtimevalue.EmptyMap()
		for _, it := range items {
			cur, ok := out.Get(it)
			if !ok {
				out = out.Put(it, runtimevalue.IntFromInt64(1))
				continue
			}
			n, _ := cur.(runtimevalue.Int)
			out = out.Put(it, runtimevalue.Int{Value: new(big.Int).Add(n.Value, big.NewInt(1))})
		}
		return out, nil
	}}

	reg["zip"] = &HostFunc{Name: "zip", Fn: func(args []V) (V, error) {
		return zipColls(args)
	}}

	reg["interleave"] = &HostFunc{Name: "interleave", Fn: func(args []V) (V, error) {
		zipped, err := zipColls(args)
		if err != nil {
			return nil, err
		}
		var out []V
		for _, row := range zipped.(runtimevalue.Vector).Items() {
			out = append(out, row.(runtimevalue.Vector).Items()...)
		}
		return vec(out), nil
	}}

	reg["interpose"] = &Normal{Name: "interpose", Arity: 2, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		var out []V
		for i, it := range items {
			if i > 0 {
				out = append(out, args[0])
			}
			out = append(out, it)
		}
		return vec(out), nil
	}}

	reg["partition"] = &Normal{Name: "partition", Arity: 2, Fn: func(args []V) (V, error) {
		n, ok := asInt(args[0])
		if !ok || n <= 0 {
			return nil, evalerr.TypeErr("positive integer", inspectName(args[0]))
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		var out []V
		for i := 0; i+n <= len(items); i += n {
			out = append(out, vec(items[i:i+n]))
		}
		return vec(out), nil
	}}

	reg["contains?"] = &Normal{Name: "contains?", Arity: 2, Fn: func(args []V) (V, error) {
		switch c := args[0].(type) {
		case *runtimevalue.PersistentMap:
			_, ok := FlexGet(c, args[1])
			return runtimevalue.BoolOf(ok), nil
		case *runtimevalue.Set:
			return runtimevalue.BoolOf(c.Contains(args[1])), nil
		case runtimevalue.Vector:
			idx, ok := asInt(args[1])
			return runtimevalue.BoolOf(ok && idx >= 0 && idx < c.Len()), nil
		}
		return nil, evalerr.TypeErr("map, set, or vector", inspectName(args[0]))
	}}

	registerCollectionsApply(reg, apply)
}

// registerCollectionsApply wires every builtin whose behaviour requires
// invoking another callable (a closure, another builtin, or a key/set
// acting as a predicate) via apply.
func registerCollectionsApply(reg map[string]V, apply Apply) {
	reg["filter"] = &Normal{Name: "filter", Arity: 2, Fn: func(args []V) (V, error) {
		pred, err := keyFn(args[0], apply, false)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		var out []V
		for _, it := range items {
			r, err := pred(it)
			if err != nil {
				return nil, err
			}
			if runtimevalue.Truthy(r) {
				out = append(out, it)
			}
		}
		return vec(out), nil
	}}

	reg["remove"] = &Normal{Name: "remove", Arity: 2, Fn: func(args []V) (V, error) {
		pred, err := keyFn(args[0], apply, false)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		var out []V
		for _, it := range items {
			r, err := pred(it)
			if err != nil {
				return nil, err
			}
			if !runtimevalue.Truthy(r) {
				out = append(out, it)
			}
		}
		return vec(out), nil
	}}

	reg["find"] = &Normal{Name: "find", Arity: 2, Fn: func(args []V) (V, error) {
		pred, err := keyFn(args[0], apply, false)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			r, err := pred(it)
			if err != nil {
				return nil, err
			}
			if runtimevalue.Truthy(r) {
				return it, nil
			}
		}
		return runtimevalue.NilValue, nil
	}}

	mapImpl := func(name string) *HostFunc {
		return &HostFunc{Name: name, Fn: func(args []V) (V, error) {
			if len(args) < 2 {
				return nil, evalerr.New(evalerr.ArityError, "%s requires a function and at least one collection", name)
			}
			colls := make([][]V, len(args)-1)
			minLen := -1
			for i, c := range args[1:] {
				items, err := mustSeq(c)
				if err != nil {
					return nil, err
				}
				colls[i] = items
				if minLen == -1 || len(items) < minLen {
					minLen = len(items)
				}
			}
			var one func(V) (V, error)
			if len(colls) == 1 {
				f, err := keyFn(args[0], apply, false)
				if err != nil {
					return nil, err
				}
				one = f
			}
			out := make([]V, 0, minLen)
			for i := 0; i < minLen; i++ {
				callArgs := make([]V, len(colls))
				for j := range colls {
					callArgs[j] = colls[j][i]
				}
				var r V
				var err error
				if one != nil {
					r, err = one(callArgs[0])
				} else {
					r, err = apply(args[0], callArgs)
				}
				if err != nil {
					return nil, err
				}
				out = append(out, r)
			}
			return vec(out), nil
		}}
	}
	reg["map"] = mapImpl("map")
	reg["mapv"] = mapImpl("mapv")

	reg["mapcat"] = &Normal{Name: "mapcat", Arity: 2, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		var out []V
		for _, it := range items {
			r, err := apply(args[0], []V{it})
			if err != nil {
				return nil, err
			}
			sub, err := mustSeq(r)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return vec(out), nil
	}}

	reg["map-indexed"] = &Normal{Name: "map-indexed", Arity: 2, Fn: func(args []V) (V, error) {
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		out := make([]V, len(items))
		for i, it := range items {
			r, err := apply(args[0], []V{runtimevalue.IntFromInt64(int64(i)), it})
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return vec(out), nil
	}}

	reg["sort"] = &MultiArity{Name: "sort", Arities: map[int]func([]V) (V, error){
		1: func(args []V) (V, error) {
			items, err := mustSeq(args[0])
			if err != nil {
				return nil, err
			}
			out := append([]V(nil), items...)
			sort.SliceStable(out, func(i, j int) bool { return compareValues(out[i], out[j]) < 0 })
			return vec(out), nil
		},
		2: func(args []V) (V, error) {
			items, err := mustSeq(args[1])
			if err != nil {
				return nil, err
			}
			out := append([]V(nil), items...)
			var sortErr error
			sort.SliceStable(out, func(i, j int) bool {
				if sortErr != nil {
					return false
				}
				r, err := apply(args[0], []V{out[i], out[j]})
				if err != nil {
					sortErr = err
					return false
				}
				n, ok := asInt(r)
				if ok {
					return n < 0
				}
				return runtimevalue.Truthy(r)
			})
			if sortErr != nil {
				return nil, sortErr
			}
			return vec(out), nil
		},
	}}

	reg["sort-by"] = &Normal{Name: "sort-by", Arity: 2, Fn: func(args []V) (V, error) {
		keyf, err := keyFn(args[0], apply, true)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		type pair struct {
			key V
			val V
		}
		pairs := make([]pair, len(items))
		for i, it := range items {
			k, err := keyf(it)
			if err != nil {
				return nil, err
			}
			pairs[i] = pair{key: k, val: it}
		}
		sort.SliceStable(pairs, func(i, j int) bool { return compareValues(pairs[i].key, pairs[j].key) < 0 })
		out := make([]V, len(pairs))
		for i, p := range pairs {
			out[i] = p.val
		}
		return vec(out), nil
	}}

	reg["group-by"] = &Normal{Name: "group-by", Arity: 2, Fn: func(args []V) (V, error) {
		keyf, err := keyFn(args[0], apply, true)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		out := runtimevalue.EmptyMap()
		for _, it := range items {
			k, err := keyf(it)
			if err != nil {
				return nil, err
			}
			cur, ok := out.Get(k)
			var bucket runtimevalue.Vector
			if ok {
				bucket = cur.(runtimevalue.Vector)
			}
			out = out.Put(k, bucket.Conj(it))
		}
		return out, nil
	}}

	reg["distinct-by"] = &Normal{Name: "distinct-by", Arity: 2, Fn: func(args []V) (V, error) {
		keyf, err := keyFn(args[0], apply, true)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		var seen []V
		var out []V
		for _, it := range items {
			k, err := keyf(it)
			if err != nil {
				return nil, err
			}
			if !containsEqual(seen, k) {
				seen = append(seen, k)
				out = append(out, it)
			}
		}
		return vec(out), nil
	}}

	numericByAgg := func(name string, reduce func(acc float64, x float64) float64, init float64) *Normal {
		return &Normal{Name: name, Arity: 2, Fn: func(args []V) (V, error) {
			keyf, err := keyFn(args[0], apply, true)
			if err != nil {
				return nil, err
			}
			items, err := mustSeq(args[1])
			if err != nil {
				return nil, err
			}
			acc := init
			for _, it := range items {
				k, err := keyf(it)
				if err != nil {
					return nil, err
				}
				f, ok := asFloat(k)
				if !ok {
					return nil, evalerr.TypeErr("number", inspectName(k))
				}
				acc = reduce(acc, f)
			}
			return runtimevalue.Float{Value: acc}, nil
		}}
	}
	reg["sum-by"] = numericByAgg("sum-by", func(acc, x float64) float64 { return acc + x }, 0)

	reg["avg-by"] = &Normal{Name: "avg-by", Arity: 2, Fn: func(args []V) (V, error) {
		keyf, err := keyFn(args[0], apply, true)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return runtimevalue.NilValue, nil
		}
		var sum float64
		for _, it := range items {
			k, err := keyf(it)
			if err != nil {
				return nil, err
			}
			f, ok := asFloat(k)
			if !ok {
				return nil, evalerr.TypeErr("number", inspectName(k))
			}
			sum += f
		}
		return runtimevalue.Float{Value: sum / float64(len(items))}, nil
	}}

	extremeBy := func(name string, better func(candidate, current float64) bool) *Normal {
		return &Normal{Name: name, Arity: 2, Fn: func(args []V) (V, error) {
			keyf, err := keyFn(args[0], apply, true)
			if err != nil {
				return nil, err
			}
			items, err := mustSeq(args[1])
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				return runtimevalue.NilValue, nil
			}
			best := items[0]
			bestKey, err := keyf(best)
			if err != nil {
				return nil, err
			}
			bestF, ok := asFloat(bestKey)
			if !ok {
				return nil, evalerr.TypeErr("number", inspectName(bestKey))
			}
			for _, it := range items[1:] {
				k, err := keyf(it)
				if err != nil {
					return nil, err
				}
				f, ok := asFloat(k)
				if !ok {
					return nil, evalerr.TypeErr("number", inspectName(k))
				}
				if better(f, bestF) {
					best, bestF = it, f
				}
			}
			return best, nil
		}}
	}
	reg["min-by"] = extremeBy("min-by", func(candidate, current float64) bool { return candidate < current })
	reg["max-by"] = extremeBy("max-by", func(candidate, current float64) bool { return candidate > current })

	reg["some"] = &Normal{Name: "some", Arity: 2, Fn: func(args []V) (V, error) {
		pred, err := keyFn(args[0], apply, false)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			r, err := pred(it)
			if err != nil {
				return nil, err
			}
			if runtimevalue.Truthy(r) {
				return r, nil
			}
		}
		return runtimevalue.NilValue, nil
	}}

	reg["every?"] = &Normal{Name: "every?", Arity: 2, Fn: func(args []V) (V, error) {
		pred, err := keyFn(args[0], apply, false)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			r, err := pred(it)
			if err != nil {
				return nil, err
			}
			if !runtimevalue.Truthy(r) {
				return runtimevalue.False, nil
			}
		}
		return runtimevalue.True, nil
	}}

	reg["not-any?"] = &Normal{Name: "not-any?", Arity: 2, Fn: func(args []V) (V, error) {
		pred, err := keyFn(args[0], apply, false)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			r, err := pred(it)
			if err != nil {
				return nil, err
			}
			if runtimevalue.Truthy(r) {
				return runtimevalue.False, nil
			}
		}
		return runtimevalue.True, nil
	}}

	reg["take-while"] = &Normal{Name: "take-while", Arity: 2, Fn: func(args []V) (V, error) {
		pred, err := keyFn(args[0], apply, false)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		var out []V
		for _, it := range items {
			r, err := pred(it)
			if err != nil {
				return nil, err
			}
			if !runtimevalue.Truthy(r) {
				break
			}
			out = append(out, it)
		}
		return vec(out), nil
	}}

	reg["drop-while"] = &Normal{Name: "drop-while", Arity: 2, Fn: func(args []V) (V, error) {
		pred, err := keyFn(args[0], apply, false)
		if err != nil {
			return nil, err
		}
		items, err := mustSeq(args[1])
		if err != nil {
			return nil, err
		}
		i := 0
		for ; i < len(items); i++ {
			r, err := pred(items[i])
			if err != nil {
				return nil, err
			}
			if !runtimevalue.Truthy(r) {
				break
			}
		}
		return vec(items[i:]), nil
	}}

	reg["reduce"] = &MultiArity{Name: "reduce", Arities: map[int]func([]V) (V, error){
		2: func(args []V) (V, error) {
			items, err := mustSeq(args[1])
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				return runtimevalue.NilValue, nil
			}
			acc := items[0]
			for _, it := range items[1:] {
				acc, err = apply(args[0], []V{acc, it})
				if err != nil {
					return nil, err
				}
			}
			return acc, nil
		},
		3: func(args []V) (V, error) {
			items, err := mustSeq(args[2])
			if err != nil {
				return nil, err
			}
			acc := args[1]
			for _, it := range items {
				acc, err = apply(args[0], []V{acc, it})
				if err != nil {
					return nil, err
				}
			}
			return acc, nil
		},
	}}

	reg["range"] = &MultiArity{Name: "range", Arities: map[int]func([]V) (V, error){
		1: func(args []V) (V, error) { return rangeImpl(runtimevalue.IntFromInt64(0), args[0], runtimevalue.IntFromInt64(1)) },
		2: func(args []V) (V, error) { return rangeImpl(args[0], args[1], runtimevalue.IntFromInt64(1)) },
		3: func(args []V) (V, error) { return rangeImpl(args[0], args[1], args[2]) },
	}}
}

func collCount(v V) (int, error) {
	switch c := v.(type) {
	case runtimevalue.Nil:
		return 0, nil
	case runtimevalue.Vector:
		return c.Len(), nil
	case *runtimevalue.Set:
		return c.Len(), nil
	case *runtimevalue.PersistentMap:
		return c.Len(), nil
	case runtimevalue.String:
		return len([]rune(c.Value)), nil
	}
	return 0, evalerr.TypeErr("collection", inspectName(v))
}

func stringSeq(s string) []V {
	runes := []rune(s)
	out := make([]V, len(runes))
	for i, r := range runes {
		out[i] = runtimevalue.String{Value: string(r)}
	}
	return out
}

func containsEqual(haystack []V, v V) bool {
	for _, h := range haystack {
		if runtimevalue.Equal(h, v) {
			return true
		}
	}
	return false
}

func flattenItems(items []V) []V {
	var out []V
	for _, it := range items {
		if vecIt, ok := it.(runtimevalue.Vector); ok {
			out = append(out, flattenItems(vecIt.Items())...)
			continue
		}
		out = append(out, it)
	}
	return out
}

func conjAll(coll V, items []V) (V, error) {
	switch c := coll.(type) {
	case runtimevalue.Vector:
		out := c
		for _, it := range items {
			out = out.Conj(it)
		}
		return out, nil
	case *runtimevalue.Set:
		out := c
		for _, it := range items {
			out = out.Conj(it)
		}
		return out, nil
	case *runtimevalue.PersistentMap:
		out := c
		for _, it := range items {
			pair, ok := it.(runtimevalue.Vector)
			if !ok || pair.Len() != 2 {
				return nil, evalerr.TypeErr("[k v] pair", inspectName(it))
			}
			k, _ := pair.Get(0)
			v, _ := pair.Get(1)
			out = out.Put(k, v)
		}
		return out, nil
	case runtimevalue.Nil:
		return conjAll(runtimevalue.EmptyVector, items)
	}
	return nil, evalerr.TypeErr("vector, set, or map", inspectName(coll))
}

func zipColls(args []V) (V, error) {
	if len(args) == 0 {
		return runtimevalue.EmptyVector, nil
	}
	colls := make([][]V, len(args))
	minLen := -1
	for i, a := range args {
		items, err := mustSeq(a)
		if err != nil {
			return nil, err
		}
		colls[i] = items
		if minLen == -1 || len(items) < minLen {
			minLen = len(items)
		}
	}
	out := make([]V, minLen)
	for i := 0; i < minLen; i++ {
		row := make([]V, len(colls))
		for j := range colls {
			row[j] = colls[j][i]
		}
		out[i] = vec(row)
	}
	return vec(out), nil
}

func rangeImpl(startV, endV, stepV V) (V, error) {
	start, ok := asFloat(startV)
	if !ok {
		return nil, evalerr.TypeErr("number", inspectName(startV))
	}
	end, ok := asFloat(endV)
	if !ok {
		return nil, evalerr.TypeErr("number", inspectName(endV))
	}
	step, ok := asFloat(stepV)
	if !ok {
		return nil, evalerr.TypeErr("number", inspectName(stepV))
	}
	if step == 0 {
		return nil, evalerr.New(evalerr.TypeError, "range: step cannot be zero")
	}
	allInt := isIntValue(startV) && isIntValue(endV) && isIntValue(stepV)
	var out []V
	for cur := start; (step > 0 && cur < end) || (step < 0 && cur > end); cur += step {
		if allInt {
			out = append(out, runtimevalue.IntFromInt64(int64(cur)))
		} else {
			out = append(out, runtimevalue.Float{Value: cur})
		}
	}
	return vec(out), nil
}

func isIntValue(v V) bool {
	_, ok := v.(runtimevalue.Int)
	return ok
}

// compareValues is the total order used by sort/sort-by: numeric by
// value, string lexically,
// otherwise falls back to Inspect() text so mixed-kind collections still
// produce a stable (if arbitrary) order instead of panicking.
func compareValues(a, b V) int {
	if isNumber(a) && isNumber(b) {
		switch {
		case numLess(a, b):
			return -1
		case numLess(b, a):
			return 1
		default:
			return 0
		}
	}
	as, aok := a.(runtimevalue.String)
	bs, bok := b.(runtimevalue.String)
	if aok && bok {
		switch {
		case as.Value < bs.Value:
			return -1
		case as.Value > bs.Value:
			return 1
		default:
			return 0
		}
	}
	ai, bi := a.Inspect(), b.Inspect()
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}
