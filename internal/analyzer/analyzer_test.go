package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ptclisp/ptclisp/internal/analyzer"
	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/reader"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

func mustAnalyze(t *testing.T, src string) ast.CoreNode {
	t.Helper()
	raw, err := reader.Parse(src)
	require.NoError(t, err)
	core, err := analyzer.Analyze(raw)
	require.NoError(t, err)
	return core
}

func analyzeErr(t *testing.T, src string) error {
	t.Helper()
	raw, err := reader.Parse(src)
	require.NoError(t, err)
	_, err = analyzer.Analyze(raw)
	require.Error(t, err)
	return err
}

func TestAnalyzeLiteralAndCollections(t *testing.T) {
	core := mustAnalyze(t, `[1 {:a 2} #{3}]`)
	vec, ok := core.(*ast.CoreVectorLit)
	require.True(t, ok)
	require.Len(t, vec.Items, 3)
	_, ok = vec.Items[1].(*ast.CoreMapLit)
	require.True(t, ok)
	_, ok = vec.Items[2].(*ast.CoreSetLit)
	require.True(t, ok)
}

func TestAnalyzeIfExactlyThreeArgs(t *testing.T) {
	core := mustAnalyze(t, `(if true 1 2)`)
	ifNode, ok := core.(*ast.CoreIf)
	require.True(t, ok)
	require.NotNil(t, ifNode.Else)

	err := analyzeErr(t, `(if true 1)`)
	aerr, ok := err.(*analyzer.Error)
	require.True(t, ok)
	require.Equal(t, analyzer.KindInvalidArity, aerr.Kind)
}

func TestAnalyzeWhenDesugarsToIfWithNilElse(t *testing.T) {
	core := mustAnalyze(t, `(when true 1)`)
	ifNode := core.(*ast.CoreIf)
	lit, ok := ifNode.Else.(*ast.CoreLiteral)
	require.True(t, ok)
	require.Equal(t, runtimevalue.NilValue, lit.Value)
}

func TestAnalyzeIfLetDesugarsToLetIf(t *testing.T) {
	core := mustAnalyze(t, `(if-let [x 1] x 2)`)
	let, ok := core.(*ast.CoreLet)
	require.True(t, ok)
	require.Len(t, let.Bindings, 1)
	_, ok = let.Body.(*ast.CoreIf)
	require.True(t, ok)
}

func TestAnalyzeIfLetRejectsDestructuringBinding(t *testing.T) {
	analyzeErr(t, `(if-let [{:keys [a]} {:a 1}] a 2)`)
}

func TestAnalyzeCondEmptyIsError(t *testing.T) {
	err := analyzeErr(t, `(cond)`)
	aerr := err.(*analyzer.Error)
	require.Equal(t, analyzer.KindInvalidCondForm, aerr.Kind)
}

func TestAnalyzeCondElseOnly(t *testing.T) {
	core := mustAnalyze(t, `(cond :else 1)`)
	lit, ok := core.(*ast.CoreLiteral)
	require.True(t, ok)
	_ = lit
}

func TestAnalyzeCondOddClausesIsError(t *testing.T) {
	analyzeErr(t, `(cond true)`)
}

func TestAnalyzeLetEvenBindingsRequired(t *testing.T) {
	core := mustAnalyze(t, `(let [a 1 b 2] (+ a b))`)
	let, ok := core.(*ast.CoreLet)
	require.True(t, ok)
	require.Len(t, let.Bindings, 2)

	analyzeErr(t, `(let [a] a)`)
}

func TestAnalyzeLetEmptyBindingsYieldsBody(t *testing.T) {
	core := mustAnalyze(t, `(let [] 42)`)
	let, ok := core.(*ast.CoreLet)
	require.True(t, ok)
	require.Empty(t, let.Bindings)
}

func TestAnalyzeDefRejectedInsideLet(t *testing.T) {
	err := analyzeErr(t, `(let [] (def x 1))`)
	aerr := err.(*analyzer.Error)
	require.Equal(t, analyzer.KindInvalidForm, aerr.Kind)
}

func TestAnalyzeDefAllowedAtTopLevel(t *testing.T) {
	core := mustAnalyze(t, `(def x 1)`)
	def, ok := core.(*ast.CoreDef)
	require.True(t, ok)
	require.Equal(t, "x", def.Name)
}

func TestAnalyzeDoPreservesTopLevelScope(t *testing.T) {
	core := mustAnalyze(t, `(do (def x 1))`)
	do, ok := core.(*ast.CoreDo)
	require.True(t, ok)
	_, ok = do.Exprs[0].(*ast.CoreDef)
	require.True(t, ok)
}

func TestAnalyzeDefnDesugarsToDefFn(t *testing.T) {
	core := mustAnalyze(t, `(defn double [x] (* 2 x))`)
	def, ok := core.(*ast.CoreDef)
	require.True(t, ok)
	require.Equal(t, "double", def.Name)
	_, ok = def.Value.(*ast.CoreFn)
	require.True(t, ok)
}

func TestAnalyzeDefnMultiArityRejected(t *testing.T) {
	analyzeErr(t, `(defn f ([x] x) ([x y] (+ x y)))`)
}

func TestAnalyzeComparisonRequiresExactlyTwoArgs(t *testing.T) {
	core := mustAnalyze(t, `(< 1 2)`)
	call, ok := core.(*ast.CoreCall)
	require.True(t, ok)
	v := call.Callee.(*ast.CoreVar)
	require.Equal(t, "<", v.Name)

	analyzeErr(t, `(< 1 2 3)`)
}

func TestAnalyzeThreadFirstNoSteps(t *testing.T) {
	core := mustAnalyze(t, `(-> 1)`)
	lit, ok := core.(*ast.CoreLiteral)
	require.True(t, ok)
	_ = lit
}

func TestAnalyzeThreadFirstInsertsAsSecondArg(t *testing.T) {
	core := mustAnalyze(t, `(-> {:a 1} (assoc :b 2))`)
	call, ok := core.(*ast.CoreCall)
	require.True(t, ok)
	require.Len(t, call.Args, 3)
}

func TestAnalyzeThreadLastAppendsAsLastArg(t *testing.T) {
	core := mustAnalyze(t, `(->> [1 2 3] (map inc))`)
	call, ok := core.(*ast.CoreCall)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
}

func TestAnalyzeThreadNonListStepWraps(t *testing.T) {
	core := mustAnalyze(t, `(-> 1 inc)`)
	call, ok := core.(*ast.CoreCall)
	require.True(t, ok)
	require.Len(t, call.Args, 1)
}

func TestAnalyzeWhereProducesCoreWhere(t *testing.T) {
	core := mustAnalyze(t, `(where :age > 5)`)
	w, ok := core.(*ast.CoreWhere)
	require.True(t, ok)
	require.Equal(t, ast.WhereGt, w.Op)
	require.NotNil(t, w.Value)
}

func TestAnalyzeWhereTruthyTakesNoValue(t *testing.T) {
	core := mustAnalyze(t, `(where :active truthy)`)
	w := core.(*ast.CoreWhere)
	require.Equal(t, ast.WhereTruthy, w.Op)
	require.Nil(t, w.Value)

	analyzeErr(t, `(where :active truthy 1)`)
}

func TestAnalyzeWhereUnknownOperator(t *testing.T) {
	err := analyzeErr(t, `(where :age frobnicate 1)`)
	aerr := err.(*analyzer.Error)
	require.Equal(t, analyzer.KindInvalidWhereOperator, aerr.Kind)
}

func TestAnalyzeWherePathVector(t *testing.T) {
	core := mustAnalyze(t, `(where [:a :b] = 1)`)
	w := core.(*ast.CoreWhere)
	require.Len(t, w.Path, 2)
}

func TestAnalyzePredCombinators(t *testing.T) {
	core := mustAnalyze(t, `(all-of (where :a truthy) (where :b truthy))`)
	pc, ok := core.(*ast.CorePredCombinator)
	require.True(t, ok)
	require.Equal(t, ast.PredAll, pc.Kind)
	require.Len(t, pc.Preds, 2)
}

func TestAnalyzeJuxtStoredUnfused(t *testing.T) {
	core := mustAnalyze(t, `(juxt first last)`)
	j, ok := core.(*ast.CoreJuxt)
	require.True(t, ok)
	require.Len(t, j.Fns, 2)
}

func TestAnalyzeCallToolRequiresStringName(t *testing.T) {
	core := mustAnalyze(t, `(call "my-tool" {:a 1})`)
	ct, ok := core.(*ast.CoreCallTool)
	require.True(t, ok)
	require.Equal(t, "my-tool", ct.Name)
	require.NotNil(t, ct.Args)

	err := analyzeErr(t, `(call my-tool {:a 1})`)
	aerr := err.(*analyzer.Error)
	require.Equal(t, analyzer.KindInvalidCallToolName, aerr.Kind)
}

func TestAnalyzeCallToolRejectsNonMapArgsShape(t *testing.T) {
	analyzeErr(t, `(call "tool" [1 2])`)
}

func TestAnalyzeCtxNamespaceCall(t *testing.T) {
	core := mustAnalyze(t, `(ctx/search "a" "b")`)
	cc, ok := core.(*ast.CoreCtxCall)
	require.True(t, ok)
	require.Equal(t, "search", cc.ToolName)
	require.Len(t, cc.Args, 2)
}

func TestAnalyzeUnsupportedNamespaceIsError(t *testing.T) {
	analyzeErr(t, `(foo/bar 1)`)
}

func TestAnalyzeReturnAndFailDesugarToCallTool(t *testing.T) {
	core := mustAnalyze(t, `(return 7)`)
	ct, ok := core.(*ast.CoreCallTool)
	require.True(t, ok)
	require.Equal(t, "return", ct.Name)

	core = mustAnalyze(t, `(fail "boom")`)
	ct = core.(*ast.CoreCallTool)
	require.Equal(t, "fail", ct.Name)
}

func TestAnalyzeShortFnRewritesPlaceholders(t *testing.T) {
	core := mustAnalyze(t, `#(+ % 1)`)
	fn, ok := core.(*ast.CoreFn)
	require.True(t, ok)
	require.Len(t, fn.Params, 1)
}

func TestAnalyzeShortFnMaxIndexDeterminesArity(t *testing.T) {
	core := mustAnalyze(t, `#(+ %1 %2 %3)`)
	fn := core.(*ast.CoreFn)
	require.Len(t, fn.Params, 3)
}

func TestAnalyzeShortFnNoPlaceholdersIsZeroArg(t *testing.T) {
	core := mustAnalyze(t, `#(+ 1 2)`)
	fn := core.(*ast.CoreFn)
	require.Empty(t, fn.Params)
}

func TestAnalyzePlaceholderIllegalOutsideShortFn(t *testing.T) {
	err := analyzeErr(t, `(+ % 1)`)
	aerr := err.(*analyzer.Error)
	require.Equal(t, analyzer.KindInvalidPlaceholder, aerr.Kind)
}

func TestAnalyzeDestructureKeysWithOr(t *testing.T) {
	core := mustAnalyze(t, `(let [{:keys [a b] :or {b 99}} {:a 1}] [a b])`)
	let := core.(*ast.CoreLet)
	pat, ok := let.Bindings[0].Pattern.(*ast.PatternDestructureKeys)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, pat.Names)
	require.Contains(t, pat.Defaults, "b")
}

func TestAnalyzeDestructureSeqWithRest(t *testing.T) {
	core := mustAnalyze(t, `(let [[a b & rest] [1 2 3 4]] rest)`)
	let := core.(*ast.CoreLet)
	pat, ok := let.Bindings[0].Pattern.(*ast.PatternDestructureSeq)
	require.True(t, ok)
	require.Len(t, pat.Items, 2)
	require.NotNil(t, pat.Rest)
	require.Equal(t, "rest", pat.Rest.Name)
}

func TestAnalyzeDestructureAsAlias(t *testing.T) {
	core := mustAnalyze(t, `(let [{:keys [a] :as whole} {:a 1}] whole)`)
	let := core.(*ast.CoreLet)
	pat, ok := let.Bindings[0].Pattern.(*ast.PatternDestructureAs)
	require.True(t, ok)
	require.Equal(t, "whole", pat.Alias)
}

func TestAnalyzeDestructureUnsupportedKeyIsError(t *testing.T) {
	err := analyzeErr(t, `(let [{:bogus [a]} {}] a)`)
	aerr := err.(*analyzer.Error)
	require.Equal(t, analyzer.KindUnsupportedPattern, aerr.Kind)
}

func TestAnalyzeFnBodyWrappedInDoWhenMultiple(t *testing.T) {
	core := mustAnalyze(t, `(fn [x] x x)`)
	fn := core.(*ast.CoreFn)
	_, ok := fn.Body.(*ast.CoreDo)
	require.True(t, ok)
}

func TestAnalyzeAndOrVariadic(t *testing.T) {
	core := mustAnalyze(t, `(and 1 2 3)`)
	and, ok := core.(*ast.CoreAnd)
	require.True(t, ok)
	require.Len(t, and.Exprs, 3)

	core = mustAnalyze(t, `(or)`)
	or, ok := core.(*ast.CoreOr)
	require.True(t, ok)
	require.Empty(t, or.Exprs)
}

func TestAnalyzeGenericCallFallsThroughToCoreCall(t *testing.T) {
	core := mustAnalyze(t, `(some-fn 1 2)`)
	call, ok := core.(*ast.CoreCall)
	require.True(t, ok)
	v := call.Callee.(*ast.CoreVar)
	require.Equal(t, "some-fn", v.Name)
}

func TestAnalyzeCtxAndMemoryVars(t *testing.T) {
	core := mustAnalyze(t, `ctx/name`)
	c, ok := core.(*ast.CoreCtx)
	require.True(t, ok)
	kw, ok := c.Key.(runtimevalue.Keyword)
	require.True(t, ok)
	require.Equal(t, "name", kw.Name)

	core = mustAnalyze(t, `memory/count`)
	m, ok := core.(*ast.CoreMemory)
	require.True(t, ok)
	kw, ok = m.Key.(runtimevalue.Keyword)
	require.True(t, ok)
	require.Equal(t, "count", kw.Name)
}

func TestAnalyzeTurnHistory(t *testing.T) {
	core := mustAnalyze(t, `*1`)
	th, ok := core.(*ast.CoreTurnHistory)
	require.True(t, ok)
	require.Equal(t, 1, th.N)
}

func TestAnalyzeDocstringDefRequiresStringLiteral(t *testing.T) {
	core := mustAnalyze(t, `(def x "a doc string" 1)`)
	def := core.(*ast.CoreDef)
	require.Equal(t, "x", def.Name)

	analyzeErr(t, `(def x 123 1)`)
}
