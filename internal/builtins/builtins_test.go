package builtins_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ptclisp/ptclisp/internal/builtins"
	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// testApply replicates the evaluator's callable dispatch for builtins'
// own callee arguments, without depending on the evaluator package
// (which itself depends on builtins).
func testApply(callee runtimevalue.Value, args []runtimevalue.Value) (runtimevalue.Value, error) {
	switch fn := callee.(type) {
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
		if len(args) == 0 {
			return nil, evalerr.New(evalerr.ArityError, "%s requires at least 1 argument", fn.Name)
		}
		if len(args) == 1 && fn.Unary != nil {
			return fn.Unary(args[0])
		}
		acc := args[0]
		var err error
		for _, next := range args[1:] {
			acc, err = fn.Fn2(acc, next)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	case *builtins.MultiArity:
		impl, ok := fn.Arities[len(args)]
		if !ok {
			return nil, evalerr.New(evalerr.ArityError, "%s: no overload for %d args", fn.Name, len(args))
		}
		return impl(args)
	case *builtins.HostFunc:
		return fn.Fn(args)
	case runtimevalue.Keyword:
		v, ok := builtins.FlexGet(args[0], fn)
		if !ok {
			return runtimevalue.NilValue, nil
		}
		return v, nil
	}
	return nil, evalerr.NotCallableErr(callee.Inspect())
}

func reg(t *testing.T) map[string]runtimevalue.Value {
	t.Helper()
	return builtins.Registry(testApply)
}

func call(t *testing.T, r map[string]runtimevalue.Value, name string, args ...runtimevalue.Value) runtimevalue.Value {
	t.Helper()
	v, err := testApply(r[name], args)
	require.NoError(t, err)
	return v
}

func kw(name string) runtimevalue.Keyword { return runtimevalue.Keyword{Name: name} }
func str(s string) runtimevalue.String    { return runtimevalue.String{Value: s} }
func i(n int64) runtimevalue.Int          { return runtimevalue.IntFromInt64(n) }

func TestFlexGetTriesKeywordThenStringForm(t *testing.T) {
	m1 := runtimevalue.EmptyMap().Put(kw("a"), i(1))
	m2 := runtimevalue.EmptyMap().Put(str("a"), i(1))

	v1, ok1 := builtins.FlexGet(m1, kw("a"))
	v2, ok2 := builtins.FlexGet(m1, str("a"))
	v3, ok3 := builtins.FlexGet(m2, kw("a"))

	require.True(t, ok1 && ok2 && ok3)
	require.Equal(t, i(1), v1)
	require.Equal(t, i(1), v2)
	require.Equal(t, i(1), v3)
}

func TestFlexGetAbsentReturnsFalse(t *testing.T) {
	m := runtimevalue.EmptyMap()
	_, ok := builtins.FlexGet(m, kw("missing"))
	require.False(t, ok)
}

func TestGetFlexibleKeyAccessContract(t *testing.T) {
	r := reg(t)
	mKw := runtimevalue.EmptyMap().Put(kw("a"), i(1))
	mStr := runtimevalue.EmptyMap().Put(str("a"), i(1))

	require.Equal(t, i(1), call(t, r, "get", mKw, kw("a")))
	require.Equal(t, i(1), call(t, r, "get", mStr, kw("a")))
	require.Equal(t, i(1), call(t, r, "get", mKw, str("a")))
}

func TestGetThreeArityDefault(t *testing.T) {
	r := reg(t)
	m := runtimevalue.EmptyMap()
	require.Equal(t, runtimevalue.NilValue, call(t, r, "get", m, kw("missing")))
	require.Equal(t, str("fallback"), call(t, r, "get", m, kw("missing"), str("fallback")))
}

func TestAssocInCreatesIntermediateMaps(t *testing.T) {
	r := reg(t)
	m := runtimevalue.EmptyMap()
	path := runtimevalue.NewVector([]runtimevalue.Value{kw("a"), kw("b")})
	out := call(t, r, "assoc-in", m, path, i(1))
	pm := out.(*runtimevalue.PersistentMap)
	inner, ok := pm.Get(kw("a"))
	require.True(t, ok)
	innerPm := inner.(*runtimevalue.PersistentMap)
	v, ok := innerPm.Get(kw("b"))
	require.True(t, ok)
	require.Equal(t, i(1), v)
}

func TestSetAsPredicateReturnsMemberOrNil(t *testing.T) {
	r := reg(t)
	set := runtimevalue.SetFrom([]runtimevalue.Value{i(1), i(2), i(3)})
	items := runtimevalue.NewVector([]runtimevalue.Value{i(1), i(2), i(4)})

	filtered := call(t, r, "filter", set, items)
	v := filtered.(runtimevalue.Vector)
	require.Equal(t, 2, v.Len())

	found := call(t, r, "some", set, runtimevalue.NewVector([]runtimevalue.Value{i(9), i(2)}))
	require.Equal(t, i(2), found)

	notFound := call(t, r, "some", set, runtimevalue.NewVector([]runtimevalue.Value{i(9), i(8)}))
	require.Equal(t, runtimevalue.NilValue, notFound)
}

func TestKeywordAsPredicateUsesFlexGet(t *testing.T) {
	r := reg(t)
	rows := runtimevalue.NewVector([]runtimevalue.Value{
		runtimevalue.EmptyMap().Put(kw("active"), runtimevalue.True),
		runtimevalue.EmptyMap().Put(kw("active"), runtimevalue.False),
	})
	filtered := call(t, r, "filter", kw("active"), rows)
	v := filtered.(runtimevalue.Vector)
	require.Equal(t, 1, v.Len())
}

func TestMapIterationYieldsKVPairs(t *testing.T) {
	r := reg(t)
	m := runtimevalue.EmptyMap().Put(kw("a"), i(1)).Put(kw("b"), i(2))
	identity := r["identity"]
	out := call(t, r, "map", identity, m)
	v := out.(runtimevalue.Vector)
	require.Equal(t, 2, v.Len())
	for idx := 0; idx < v.Len(); idx++ {
		entry, _ := v.Get(idx)
		pair := entry.(runtimevalue.Vector)
		require.Equal(t, 2, pair.Len())
	}
}

func TestVectorAsKeyRejectedForPlainPredicatePosition(t *testing.T) {
	r := reg(t)
	path := runtimevalue.NewVector([]runtimevalue.Value{kw("a"), kw("b")})
	rows := runtimevalue.NewVector([]runtimevalue.Value{runtimevalue.EmptyMap()})
	_, err := testApply(r["filter"], []runtimevalue.Value{path, rows})
	require.Error(t, err)
}

func TestVectorAsKeyAcceptedAsPathForSortBy(t *testing.T) {
	r := reg(t)
	path := runtimevalue.NewVector([]runtimevalue.Value{kw("a"), kw("b")})
	row1 := runtimevalue.EmptyMap().Put(kw("a"), runtimevalue.EmptyMap().Put(kw("b"), i(2)))
	row2 := runtimevalue.EmptyMap().Put(kw("a"), runtimevalue.EmptyMap().Put(kw("b"), i(1)))
	rows := runtimevalue.NewVector([]runtimevalue.Value{row1, row2})
	sorted := call(t, r, "sort-by", path, rows)
	v := sorted.(runtimevalue.Vector)
	first, _ := v.Get(0)
	require.Same(t, row2, first.(*runtimevalue.PersistentMap))
}

func TestReduceTwoArityUsesFirstElementAsInit(t *testing.T) {
	r := reg(t)
	plus := r["+"]
	out := call(t, r, "reduce", plus, runtimevalue.NewVector([]runtimevalue.Value{i(1), i(2), i(3)}))
	require.Equal(t, "6", out.(runtimevalue.Int).Value.String())
}

func TestReduceThreeArityExplicitInit(t *testing.T) {
	r := reg(t)
	plus := r["+"]
	out := call(t, r, "reduce", plus, i(10), runtimevalue.NewVector([]runtimevalue.Value{i(1), i(2), i(3)}))
	require.Equal(t, "16", out.(runtimevalue.Int).Value.String())
}

func TestReduceEmptyTwoArityIsNil(t *testing.T) {
	r := reg(t)
	plus := r["+"]
	out := call(t, r, "reduce", plus, runtimevalue.EmptyVector)
	require.Equal(t, runtimevalue.NilValue, out)
}

func TestArithVariadicIdentities(t *testing.T) {
	r := reg(t)
	require.Equal(t, "0", call(t, r, "+").(runtimevalue.Int).Value.String())
	require.Equal(t, "1", call(t, r, "*").(runtimevalue.Int).Value.String())
	require.Equal(t, "6", call(t, r, "+", i(1), i(2), i(3)).(runtimevalue.Int).Value.String())
}

func TestArithUnaryMinusNegates(t *testing.T) {
	r := reg(t)
	out := call(t, r, "-", i(5))
	require.Equal(t, "-5", out.(runtimevalue.Int).Value.String())
}

func TestArithMinusRequiresAtLeastOneArg(t *testing.T) {
	r := reg(t)
	_, err := testApply(r["-"], nil)
	require.Error(t, err)
}

func TestMaxMinVariadicNonempty(t *testing.T) {
	r := reg(t)
	require.Equal(t, i(3), call(t, r, "max", i(1), i(3), i(2)))
	require.Equal(t, i(1), call(t, r, "min", i(1), i(3), i(2)))
}

func TestStrDisplaysNilAsEmptyAndKeywordWithColon(t *testing.T) {
	r := reg(t)
	out := call(t, r, "str", runtimevalue.NilValue, kw("k"), str("x"))
	require.Equal(t, "x", out.(runtimevalue.String).Value[len(out.(runtimevalue.String).Value)-1:])
	require.Equal(t, ":kx", out.(runtimevalue.String).Value)
}

func TestSubsNegativeIndexClampedToZero(t *testing.T) {
	r := reg(t)
	out := call(t, r, "subs", str("hello"), i(-3))
	require.Equal(t, "hello", out.(runtimevalue.String).Value)
}

func TestSubsTwoAndThreeArity(t *testing.T) {
	r := reg(t)
	require.Equal(t, "llo", call(t, r, "subs", str("hello"), i(2)).(runtimevalue.String).Value)
	require.Equal(t, "ell", call(t, r, "subs", str("hello"), i(1), i(4)).(runtimevalue.String).Value)
}

func TestParseLongAndDoubleReturnNilOnFailure(t *testing.T) {
	r := reg(t)
	require.Equal(t, runtimevalue.NilValue, call(t, r, "parse-long", str("nope")))
	require.Equal(t, runtimevalue.NilValue, call(t, r, "parse-double", str("nope")))
	require.Equal(t, "42", call(t, r, "parse-long", str("42")).(runtimevalue.Int).Value.String())
}

func TestTypePredicates(t *testing.T) {
	r := reg(t)
	require.Equal(t, runtimevalue.True, call(t, r, "nil?", runtimevalue.NilValue))
	require.Equal(t, runtimevalue.False, call(t, r, "some?", runtimevalue.NilValue))
	require.Equal(t, runtimevalue.True, call(t, r, "keyword?", kw("a")))
	require.Equal(t, runtimevalue.True, call(t, r, "vector?", runtimevalue.EmptyVector))
	require.Equal(t, runtimevalue.True, call(t, r, "coll?", runtimevalue.EmptyVector))
	require.Equal(t, runtimevalue.False, call(t, r, "coll?", str("x")))
}

func TestNumericPredicates(t *testing.T) {
	r := reg(t)
	require.Equal(t, runtimevalue.True, call(t, r, "zero?", i(0)))
	require.Equal(t, runtimevalue.True, call(t, r, "pos?", i(1)))
	require.Equal(t, runtimevalue.True, call(t, r, "neg?", i(-1)))
	require.Equal(t, runtimevalue.True, call(t, r, "even?", i(4)))
	require.Equal(t, runtimevalue.True, call(t, r, "odd?", i(3)))
}

func TestKeysValsSortedByKey(t *testing.T) {
	r := reg(t)
	m := runtimevalue.EmptyMap().Put(kw("b"), i(2)).Put(kw("a"), i(1))
	keys := call(t, r, "keys", m).(runtimevalue.Vector)
	first, _ := keys.Get(0)
	require.Equal(t, "a", first.(runtimevalue.Keyword).Name)
}

func TestContainsQFlexibleKeyAccess(t *testing.T) {
	r := reg(t)
	m := runtimevalue.EmptyMap().Put(str("a"), i(1))
	require.Equal(t, runtimevalue.True, call(t, r, "contains?", m, kw("a")))
}
