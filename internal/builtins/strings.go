package builtins

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// displayString renders a value the way `str` concatenates it: nil -> "",
// string -> its own content, keyword -> ":name" (str keeps the colon),
// everything else -> Inspect().
func displayString(v V) string {
	switch t := v.(type) {
	case runtimevalue.Nil:
		return ""
	case runtimevalue.String:
		return t.Value
	case runtimevalue.Keyword:
		return ":" + t.Name
	}
	return v.Inspect()
}

func registerStrings(reg map[string]V) {
	reg["str"] = &HostFunc{Name: "str", Fn: func(args []V) (V, error) {
		var b strings.Builder
		for _, a := range args {
			b.WriteString(displayString(a))
		}
		return runtimevalue.String{Value: b.String()}, nil
	}}

	reg["subs"] = &MultiArity{Name: "subs", Arities: map[int]func([]V) (V, error){
		2: func(args []V) (V, error) { return subsImpl(args[0], args[1], nil) },
		3: func(args []V) (V, error) { return subsImpl(args[0], args[1], args[2]) },
	}}

	reg["join"] = &MultiArity{Name: "join", Arities: map[int]func([]V) (V, error){
		1: func(args []V) (V, error) { return joinImpl("", args[0]) },
		2: func(args []V) (V, error) {
			sep, ok := asString(args[0])
			if !ok {
				return nil, evalerr.TypeErr("string", inspectName(args[0]))
			}
			return joinImpl(sep, args[1])
		},
	}}

	reg["split"] = &Normal{Name: "split", Arity: 2, Fn: func(args []V) (V, error) {
		s, ok := asString(args[0])
		if !ok {
			return nil, evalerr.TypeErr("string", inspectName(args[0]))
		}
		sep, ok := asString(args[1])
		if !ok {
			return nil, evalerr.TypeErr("string", inspectName(args[1]))
		}
		parts := strings.Split(s, sep)
		out := make([]V, len(parts))
		for i, p := range parts {
			out[i] = runtimevalue.String{Value: p}
		}
		return vec(out), nil
	}}

	reg["trim"] = &Normal{Name: "trim", Arity: 1, Fn: func(args []V) (V, error) {
		s, ok := asString(args[0])
		if !ok {
			return nil, evalerr.TypeErr("string", inspectName(args[0]))
		}
		return runtimevalue.String{Value: strings.TrimSpace(s)}, nil
	}}

	reg["replace"] = &Normal{Name: "replace", Arity: 3, Fn: func(args []V) (V, error) {
		s, ok := asString(args[0])
		if !ok {
			return nil, evalerr.TypeErr("string", inspectName(args[0]))
		}
		from, ok := asString(args[1])
		if !ok {
			return nil, evalerr.TypeErr("string", inspectName(args[1]))
		}
		to, ok := asString(args[2])
		if !ok {
			return nil, evalerr.TypeErr("string", inspectName(args[2]))
		}
		return runtimevalue.String{Value: strings.ReplaceAll(s, from, to)}, nil
	}}

	reg["parse-long"] = &Normal{Name: "parse-long", Arity: 1, Fn: func(args []V) (V, error) {
		s, ok := asString(args[0])
		if !ok {
			return runtimevalue.NilValue, nil
		}
		i, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return runtimevalue.NilValue, nil
		}
		return runtimevalue.Int{Value: i}, nil
	}}

	reg["parse-double"] = &Normal{Name: "parse-double", Arity: 1, Fn: func(args []V) (V, error) {
		s, ok := asString(args[0])
		if !ok {
			return runtimevalue.NilValue, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return runtimevalue.NilValue, nil
		}
		return runtimevalue.Float{Value: f}, nil
	}}
}

func subsImpl(sv, startV V, endV V) (V, error) {
	s, ok := asString(sv)
	if !ok {
		return nil, evalerr.TypeErr("string", inspectName(sv))
	}
	runes := []rune(s)
	start, ok := asInt(startV)
	if !ok {
		return nil, evalerr.TypeErr("integer", inspectName(startV))
	}
	end := len(runes)
	if endV != nil {
		e, ok := asInt(endV)
		if !ok {
			return nil, evalerr.TypeErr("integer", inspectName(endV))
		}
		end = e
	}
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return runtimevalue.String{Value: ""}, nil
	}
	return runtimevalue.String{Value: string(runes[start:end])}, nil
}

func joinImpl(sep string, coll V) (V, error) {
	items, err := mustSeq(coll)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = displayString(it)
	}
	return runtimevalue.String{Value: strings.Join(parts, sep)}, nil
}
