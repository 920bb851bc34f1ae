package ptclisp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ptclisp/ptclisp/internal/format"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
	"github.com/ptclisp/ptclisp/pkg/ptclisp"
)

func mustRun(t *testing.T, src string) ptclisp.Outcome {
	t.Helper()
	out, err := ptclisp.Run(src, nil, nil, nil)
	require.NoError(t, err)
	return out
}

func TestRunArithmetic(t *testing.T) {
	out := mustRun(t, `(+ 1 2 3)`)
	n, ok := out.Value.(runtimevalue.Int)
	require.True(t, ok)
	require.Equal(t, "6", n.Value.String())
}

func TestRunEmptyProgramIsNil(t *testing.T) {
	out := mustRun(t, ``)
	require.IsType(t, runtimevalue.Nil{}, out.Value)
}

func TestRunShortFnMapv(t *testing.T) {
	out := mustRun(t, `(mapv #(+ % 1) [1 2 3])`)
	v, ok := out.Value.(runtimevalue.Vector)
	require.True(t, ok)
	require.Equal(t, 3, v.Len())
	first, _ := v.Get(0)
	require.Equal(t, "2", first.(runtimevalue.Int).Value.String())
}

func TestRunShortFnNoPlaceholderIsZeroArg(t *testing.T) {
	out := mustRun(t, `(#(+ 40 2))`)
	require.Equal(t, "42", out.Value.(runtimevalue.Int).Value.String())
}

func TestRunDestructuringWithDefaults(t *testing.T) {
	out := mustRun(t, `(let [{:keys [a b] :or {b 10}} {:a 1}] (+ a b))`)
	require.Equal(t, "11", out.Value.(runtimevalue.Int).Value.String())
}

func TestRunDestructuringDefaultAppliesWhenKeyIsNil(t *testing.T) {
	out := mustRun(t, `(let [{:keys [a] :or {a 9}} {:a nil}] a)`)
	require.Equal(t, "9", out.Value.(runtimevalue.Int).Value.String())
}

func TestRunWhereSortByPipeline(t *testing.T) {
	src := `
	(->> [{:name "b" :age 30} {:name "a" :age 20} {:name "c" :age 40}]
	     (filter (where :age > 20))
	     (sort-by :age)
	     (mapv :name))
	`
	out := mustRun(t, src)
	v := out.Value.(runtimevalue.Vector)
	require.Equal(t, 2, v.Len())
	first, _ := v.Get(0)
	second, _ := v.Get(1)
	require.Equal(t, "b", first.(runtimevalue.String).Value)
	require.Equal(t, "c", second.(runtimevalue.String).Value)
}

func TestRunAndOrShortCircuit(t *testing.T) {
	require.Equal(t, runtimevalue.True, mustRun(t, `(and)`).Value)
	require.Equal(t, runtimevalue.NilValue, mustRun(t, `(or)`).Value)

	calls := 0
	toolExec := func(name string, args runtimevalue.Value, memory *runtimevalue.PersistentMap) (runtimevalue.Value, *runtimevalue.PersistentMap, error) {
		calls++
		return runtimevalue.False, memory, nil
	}
	out, err := ptclisp.Run(`(and false (ctx/touched))`, nil, nil, toolExec)
	require.NoError(t, err)
	require.Equal(t, runtimevalue.False, out.Value)
	require.Equal(t, 0, calls, "and must short-circuit before evaluating later terms")
}

func TestRunCondElseAndBareCondError(t *testing.T) {
	out := mustRun(t, `(cond false 1 :else 2)`)
	require.Equal(t, "2", out.Value.(runtimevalue.Int).Value.String())

	_, err := ptclisp.Run(`(cond)`, nil, nil, nil)
	require.Error(t, err)
}

func TestRunLetEmptyBindingsReturnsBody(t *testing.T) {
	out := mustRun(t, `(let [] 7)`)
	require.Equal(t, "7", out.Value.(runtimevalue.Int).Value.String())

	_, err := ptclisp.Run(`(let [a] a)`, nil, nil, nil)
	require.Error(t, err)
}

func TestRunCallToolReturn(t *testing.T) {
	toolExec := func(name string, args runtimevalue.Value, memory *runtimevalue.PersistentMap) (runtimevalue.Value, *runtimevalue.PersistentMap, error) {
		return args, memory, nil
	}
	out, err := ptclisp.Run(`(call "return" {:value 7})`, nil, nil, toolExec)
	require.NoError(t, err)
	m := out.Value.(*runtimevalue.PersistentMap)
	v, ok := m.Get(runtimevalue.Keyword{Name: "value"})
	require.True(t, ok)
	require.Equal(t, "7", v.(runtimevalue.Int).Value.String())
}

func TestRunCtxCallPositional(t *testing.T) {
	var gotName string
	var gotArgs runtimevalue.Value
	toolExec := func(name string, args runtimevalue.Value, memory *runtimevalue.PersistentMap) (runtimevalue.Value, *runtimevalue.PersistentMap, error) {
		gotName = name
		gotArgs = args
		return runtimevalue.IntFromInt64(99), memory, nil
	}
	out, err := ptclisp.Run(`(ctx/search "q" 5)`, nil, nil, toolExec)
	require.NoError(t, err)
	require.Equal(t, "search", gotName)
	args := gotArgs.(runtimevalue.Vector)
	require.Equal(t, 2, args.Len())
	require.Equal(t, "99", out.Value.(runtimevalue.Int).Value.String())
}

func TestRunMemoryThreadsBetweenToolCalls(t *testing.T) {
	toolExec := func(name string, args runtimevalue.Value, memory *runtimevalue.PersistentMap) (runtimevalue.Value, *runtimevalue.PersistentMap, error) {
		n, _ := memory.Get(runtimevalue.Keyword{Name: "count"})
		cur := int64(0)
		if n != nil {
			cur, _ = n.(runtimevalue.Int).Int64()
		}
		next := memory.Put(runtimevalue.Keyword{Name: "count"}, runtimevalue.IntFromInt64(cur+1))
		return runtimevalue.IntFromInt64(cur + 1), next, nil
	}
	mem := runtimevalue.EmptyMap().Put(runtimevalue.Keyword{Name: "count"}, runtimevalue.IntFromInt64(0))
	out, err := ptclisp.Run(`(do (ctx/bump) (ctx/bump) (ctx/bump))`, nil, mem, toolExec)
	require.NoError(t, err)
	require.Equal(t, "3", out.Value.(runtimevalue.Int).Value.String())
	v, _ := out.Memory.Get(runtimevalue.Keyword{Name: "count"})
	require.Equal(t, "3", v.(runtimevalue.Int).Value.String())
}

func TestRunCtxFlexibleKeyAccess(t *testing.T) {
	// ctx/a is analyzed with a literal Keyword key; flexible lookup still
	// finds a value stored under the equivalent string key.
	ctx := runtimevalue.EmptyMap().Put(runtimevalue.String{Value: "a"}, runtimevalue.IntFromInt64(1))
	out, err := ptclisp.Run(`ctx/a`, ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "1", out.Value.(runtimevalue.Int).Value.String())
}

func TestRunCtxAbsentKeyIsNil(t *testing.T) {
	out := mustRun(t, `ctx/missing`)
	require.Equal(t, runtimevalue.NilValue, out.Value)
}

func TestRunDefAndLetShadowing(t *testing.T) {
	ctx := runtimevalue.EmptyMap().Put(runtimevalue.Keyword{Name: "y"}, runtimevalue.IntFromInt64(1))
	out, err := ptclisp.Run(`(def x 10) (let [x 5] (+ x ctx/y))`, ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "6", out.Value.(runtimevalue.Int).Value.String())
}

func TestRunTurnHistoryFromReservedCtxKeys(t *testing.T) {
	ctx := runtimevalue.EmptyMap().Put(runtimevalue.Keyword{Name: "turn-history-1"}, runtimevalue.String{Value: "prior"})
	out, err := ptclisp.Run(`*1`, ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "prior", out.Value.(runtimevalue.String).Value)
}

func TestAnalyzeParseError(t *testing.T) {
	_, err := ptclisp.Analyze(`(+ 1 2`)
	require.Error(t, err)
	var verr *ptclisp.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAnalyzeMapOddElementsIsParseError(t *testing.T) {
	_, err := ptclisp.Analyze(`{:a}`)
	require.Error(t, err)
}

func TestDataKeysCoversNestedClosuresAndWhere(t *testing.T) {
	src := `
	(let [f (fn [] ctx/inner)]
	  (do
	    (filter (where :status = ctx/target-status) ctx/rows)
	    (f)))
	`
	keys, err := ptclisp.DataKeys(src)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, k := range keys {
		seen[k.Inspect()] = true
	}
	require.True(t, seen[":inner"])
	require.True(t, seen[":target-status"])
	require.True(t, seen[":rows"])
	// where's path segment (:status) addresses the row, not ctx.
	require.False(t, seen[":status"])
}

// Formatting a result and evaluating the rendered text again must yield a
// structurally equal value: Clojure-mode output is source-compatible.
func TestFormatRoundTripsThroughReader(t *testing.T) {
	sources := []string{
		`[1 2.5 "a\"b" :kw nil true]`,
		`{:b 2 :a 1}`,
		`#{1 2 3}`,
		`[[1 2] {:k [3 4]}]`,
	}
	for _, src := range sources {
		first := mustRun(t, src)
		rendered := format.Format(first.Value, format.Clojure, format.DefaultOptions())
		second, err := ptclisp.Run(rendered, nil, nil, nil)
		require.NoError(t, err, rendered)
		require.True(t, runtimevalue.Equal(first.Value, second.Value),
			"%s rendered as %s did not round-trip", src, rendered)
	}
}

func TestDataKeysEndToEndExampleFromShadowingScenario(t *testing.T) {
	keys, err := ptclisp.DataKeys(`(def x 10) (let [x 5] (+ x ctx/y))`)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, ":y", keys[0].Inspect())
}
