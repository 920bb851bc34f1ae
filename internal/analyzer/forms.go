package analyzer

import (
	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

var comparisonOps = map[string]bool{
	"=": true, "not=": true, ">": true, "<": true, ">=": true, "<=": true,
}

// analyzeList dispatches a parenthesised Raw form to a special form
// handler or, failing that, treats it as a call.
func analyzeList(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if len(list.Items) == 0 {
		return nil, errf(KindInvalidForm, "empty list is not a valid form")
	}
	head := list.Items[0]

	if sym, ok := head.(*ast.RawSymbol); ok {
		if comparisonOps[sym.Name] {
			return analyzeComparison(sym.Name, list, ctx)
		}
		switch sym.Name {
		case "let":
			return analyzeLet(list, ctx)
		case "if":
			return analyzeIf(list, ctx)
		case "when":
			return analyzeWhen(list, ctx)
		case "if-let":
			return analyzeIfLet(list, ctx, false)
		case "when-let":
			return analyzeIfLet(list, ctx, true)
		case "cond":
			return analyzeCond(list, ctx)
		case "fn":
			return analyzeFn(list, ctx)
		case "do":
			return analyzeDo(list, ctx)
		case "and":
			exprs, err := analyzeExprs(list.Items[1:], ctx)
			if err != nil {
				return nil, err
			}
			return &ast.CoreAnd{Exprs: exprs}, nil
		case "or":
			exprs, err := analyzeExprs(list.Items[1:], ctx)
			if err != nil {
				return nil, err
			}
			return &ast.CoreOr{Exprs: exprs}, nil
		case "->":
			return analyzeThread(list, ctx, "->")
		case "->>":
			return analyzeThread(list, ctx, "->>")
		case "where":
			return analyzeWhere(list, ctx)
		case "all-of":
			return analyzePredCombinator(list, ctx, ast.PredAll)
		case "any-of":
			return analyzePredCombinator(list, ctx, ast.PredAny)
		case "none-of":
			return analyzePredCombinator(list, ctx, ast.PredNone)
		case "juxt":
			fns, err := analyzeExprs(list.Items[1:], ctx)
			if err != nil {
				return nil, err
			}
			return &ast.CoreJuxt{Fns: fns}, nil
		case "call":
			return analyzeCall(list, ctx)
		case "return":
			return analyzeReturnFail(list, ctx, "return")
		case "fail":
			return analyzeReturnFail(list, ctx, "fail")
		case "def":
			return analyzeDef(list, ctx)
		case "defn":
			return analyzeDefn(list, ctx)
		}
	}

	if nsSym, ok := head.(*ast.RawNsSymbol); ok && nsSym.Namespace == "ctx" {
		args, err := analyzeExprs(list.Items[1:], ctx)
		if err != nil {
			return nil, err
		}
		return &ast.CoreCtxCall{ToolName: nsSym.Name, Args: args}, nil
	}

	callee, err := analyzeExpr(head, ctx)
	if err != nil {
		return nil, err
	}
	args, err := analyzeExprs(list.Items[1:], ctx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreCall{Callee: callee, Args: args}, nil
}

// analyzeLet handles `(let [p1 v1 p2 v2 ...] body...)`: bindings are
// processed left to right, each value analysed in the scope accumulated
// so far, and the body analysed in lexical scope with all bindings
// visible.
func analyzeLet(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if len(list.Items) < 2 {
		return nil, errf(KindInvalidForm, "let requires a binding vector")
	}
	bindVec, ok := list.Items[1].(*ast.RawVector)
	if !ok {
		return nil, errf(KindInvalidForm, "let bindings must be a vector")
	}
	if len(bindVec.Items)%2 != 0 {
		return nil, errf(KindInvalidForm, "let requires an even number of binding forms, got %d", len(bindVec.Items))
	}

	lexCtx := ctx.lexical()
	bindings := make([]ast.CoreBinding, 0, len(bindVec.Items)/2)
	for i := 0; i < len(bindVec.Items); i += 2 {
		// Value expressions see only the bindings accumulated so far, but
		// the pattern itself may reference prior bindings too (e.g. :or
		// default expressions), so both are analysed in lexical scope.
		valueCore, err := analyzeExpr(bindVec.Items[i+1], lexCtx)
		if err != nil {
			return nil, err
		}
		pat, err := analyzePattern(bindVec.Items[i], lexCtx)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.CoreBinding{Pattern: pat, Value: valueCore})
	}

	body, err := analyzeBody(list.Items[2:], lexCtx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreLet{Bindings: bindings, Body: body}, nil
}

func analyzeComparison(op string, list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if len(list.Items) != 3 {
		return nil, errf(KindInvalidArity, "%s requires exactly 2 arguments, got %d", op, len(list.Items)-1)
	}
	args, err := analyzeExprs(list.Items[1:], ctx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreCall{Callee: &ast.CoreVar{Name: op}, Args: args}, nil
}

func analyzeDo(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	exprs, err := analyzeExprs(list.Items[1:], ctx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreDo{Exprs: exprs}, nil
}

func analyzeIf(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if len(list.Items) != 4 {
		return nil, errf(KindInvalidArity, "if requires exactly 3 forms (cond then else), got %d", len(list.Items)-1)
	}
	cond, err := analyzeExpr(list.Items[1], ctx)
	if err != nil {
		return nil, err
	}
	then, err := analyzeExpr(list.Items[2], ctx)
	if err != nil {
		return nil, err
	}
	els, err := analyzeExpr(list.Items[3], ctx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreIf{Cond: cond, Then: then, Else: els}, nil
}

func analyzeWhen(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if len(list.Items) != 3 {
		return nil, errf(KindInvalidArity, "when requires exactly 2 forms (cond body), got %d", len(list.Items)-1)
	}
	cond, err := analyzeExpr(list.Items[1], ctx)
	if err != nil {
		return nil, err
	}
	body, err := analyzeExpr(list.Items[2], ctx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreIf{Cond: cond, Then: body, Else: &ast.CoreLiteral{Value: runtimevalue.NilValue}}, nil
}

// analyzeIfLet handles both if-let and when-let: `(if-let [n c] then else)`
// and `(when-let [n c] body)` (desugared to `(if-let [n c] body nil)`).
func analyzeIfLet(list *ast.RawList, ctx actx, isWhen bool) (ast.CoreNode, error) {
	name := "if-let"
	if isWhen {
		name = "when-let"
	}
	if !isWhen && len(list.Items) != 4 {
		return nil, errf(KindInvalidArity, "%s requires exactly 3 forms (binding then else), got %d", name, len(list.Items)-1)
	}
	if isWhen && len(list.Items) != 3 {
		return nil, errf(KindInvalidArity, "%s requires exactly 2 forms (binding body), got %d", name, len(list.Items)-1)
	}

	bindVec, ok := list.Items[1].(*ast.RawVector)
	if !ok || len(bindVec.Items) != 2 {
		return nil, errf(KindInvalidForm, "%s requires a single [name value] binding vector", name)
	}
	nameSym, ok := asSymbolName(bindVec.Items[0])
	if !ok {
		return nil, errf(KindUnsupportedPattern, "%s only supports a plain symbol binding, not destructuring", name)
	}
	valueCore, err := analyzeExpr(bindVec.Items[1], ctx)
	if err != nil {
		return nil, err
	}

	lexCtx := ctx.lexical()
	thenCore, err := analyzeExpr(list.Items[2], lexCtx)
	if err != nil {
		return nil, err
	}
	elseCore := ast.CoreNode(&ast.CoreLiteral{Value: runtimevalue.NilValue})
	if !isWhen {
		elseCore, err = analyzeExpr(list.Items[3], lexCtx)
		if err != nil {
			return nil, err
		}
	}

	return &ast.CoreLet{
		Bindings: []ast.CoreBinding{{Pattern: &ast.PatternVar{Name: nameSym}, Value: valueCore}},
		Body:     &ast.CoreIf{Cond: &ast.CoreVar{Name: nameSym}, Then: thenCore, Else: elseCore},
	}, nil
}

func analyzeCond(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	rest := list.Items[1:]
	if len(rest) == 0 {
		return nil, errf(KindInvalidCondForm, "cond requires at least one test/result clause")
	}
	if len(rest)%2 != 0 {
		return nil, errf(KindInvalidCondForm, "cond requires an even number of test/result forms")
	}

	type clause struct {
		test   ast.RawNode
		result ast.CoreNode
	}
	clauses := make([]clause, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		resultCore, err := analyzeExpr(rest[i+1], ctx)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause{test: rest[i], result: resultCore})
	}

	acc := ast.CoreNode(&ast.CoreLiteral{Value: runtimevalue.NilValue})
	for i := len(clauses) - 1; i >= 0; i-- {
		c := clauses[i]
		if isElseKeyword(c.test) {
			acc = c.result
			continue
		}
		testCore, err := analyzeExpr(c.test, ctx)
		if err != nil {
			return nil, err
		}
		acc = &ast.CoreIf{Cond: testCore, Then: c.result, Else: acc}
	}
	return acc, nil
}

func analyzeFn(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if len(list.Items) < 2 {
		return nil, errf(KindInvalidForm, "fn requires a parameter vector")
	}
	paramsRaw, ok := list.Items[1].(*ast.RawVector)
	if !ok {
		return nil, errf(KindInvalidForm, "fn parameters must be a vector")
	}
	params := make([]ast.Pattern, 0, len(paramsRaw.Items))
	for _, p := range paramsRaw.Items {
		pat, err := analyzePattern(p, ctx)
		if err != nil {
			return nil, err
		}
		params = append(params, pat)
	}
	body, err := analyzeBody(list.Items[2:], ctx.lexical())
	if err != nil {
		return nil, err
	}
	return &ast.CoreFn{Params: params, Body: body}, nil
}

// analyzeBody analyzes zero or more trailing body forms: empty becomes a
// nil literal, one form is used directly, more than one is wrapped in do.
func analyzeBody(forms []ast.RawNode, ctx actx) (ast.CoreNode, error) {
	switch len(forms) {
	case 0:
		return &ast.CoreLiteral{Value: runtimevalue.NilValue}, nil
	case 1:
		return analyzeExpr(forms[0], ctx)
	default:
		exprs, err := analyzeExprs(forms, ctx)
		if err != nil {
			return nil, err
		}
		return &ast.CoreDo{Exprs: exprs}, nil
	}
}

// analyzeThread desugars -> and ->> syntactically, before re-entering
// analyzeExpr on the fully-expanded form.
func analyzeThread(list *ast.RawList, ctx actx, kind string) (ast.CoreNode, error) {
	if len(list.Items) < 2 {
		return nil, errf(KindInvalidThreadForm, "%s requires at least a head expression", kind)
	}
	acc := list.Items[1]
	for _, step := range list.Items[2:] {
		if stepList, ok := step.(*ast.RawList); ok && len(stepList.Items) > 0 {
			newItems := make([]ast.RawNode, 0, len(stepList.Items)+1)
			if kind == "->" {
				newItems = append(newItems, stepList.Items[0], acc)
				newItems = append(newItems, stepList.Items[1:]...)
			} else {
				newItems = append(newItems, stepList.Items...)
				newItems = append(newItems, acc)
			}
			acc = &ast.RawList{Base: stepList.Base, Items: newItems}
		} else {
			acc = &ast.RawList{Base: ast.Base{At: step.Pos()}, Items: []ast.RawNode{step, acc}}
		}
	}
	return analyzeExpr(acc, ctx)
}

var whereOps = map[string]ast.WhereOp{
	"=":        ast.WhereEq,
	"not=":     ast.WhereNotEq,
	">":        ast.WhereGt,
	"<":        ast.WhereLt,
	">=":       ast.WhereGte,
	"<=":       ast.WhereLte,
	"includes": ast.WhereIncludes,
	"in":       ast.WhereIn,
	"truthy":   ast.WhereTruthy,
}

// analyzeWhere builds a field-path predicate `(where path op value?)`,
// where path is a keyword/string or a vector of them, and op is one of
// the comparison/membership/truthy tokens.
func analyzeWhere(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if len(list.Items) < 3 || len(list.Items) > 4 {
		return nil, errf(KindInvalidWhereForm, "where requires (where path op) or (where path op value)")
	}
	var path []runtimevalue.Value
	if vec, ok := list.Items[1].(*ast.RawVector); ok {
		for _, seg := range vec.Items {
			v, ok := asKeywordOrString(seg)
			if !ok {
				return nil, errf(KindInvalidWhereForm, "where path segments must be keywords or strings")
			}
			path = append(path, v)
		}
	} else if v, ok := asKeywordOrString(list.Items[1]); ok {
		path = []runtimevalue.Value{v}
	} else {
		return nil, errf(KindInvalidWhereForm, "where path must be a keyword, string, or vector of them")
	}

	opName, ok := asSymbolName(list.Items[2])
	if !ok {
		return nil, errf(KindInvalidWhereForm, "where operator must be a bare symbol")
	}
	op, ok := whereOps[opName]
	if !ok {
		return nil, errf(KindInvalidWhereOperator, "unrecognized where operator %q", opName)
	}

	if op == ast.WhereTruthy {
		if len(list.Items) != 3 {
			return nil, errf(KindInvalidWhereForm, "where truthy takes no comparison value")
		}
		return &ast.CoreWhere{Path: path, Op: op}, nil
	}
	if len(list.Items) != 4 {
		return nil, errf(KindInvalidWhereForm, "where %s requires a comparison value", opName)
	}
	valueCore, err := analyzeExpr(list.Items[3], ctx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreWhere{Path: path, Op: op, Value: valueCore}, nil
}

func analyzePredCombinator(list *ast.RawList, ctx actx, kind ast.PredCombinatorKind) (ast.CoreNode, error) {
	preds, err := analyzeExprs(list.Items[1:], ctx)
	if err != nil {
		return nil, err
	}
	return &ast.CorePredCombinator{Kind: kind, Preds: preds}, nil
}

// analyzeCall handles the explicit `(call "name" args-map?)` form. The
// second argument, if present, must look like it could produce a map: a
// structural best-effort check, since the analyzer cannot evaluate.
func analyzeCall(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if len(list.Items) < 2 || len(list.Items) > 3 {
		return nil, errf(KindInvalidArity, "call requires a tool name and an optional args map, got %d forms", len(list.Items)-1)
	}
	name, ok := asString(list.Items[1])
	if !ok {
		return nil, errf(KindInvalidCallToolName, "call requires a string literal tool name")
	}
	var argsCore ast.CoreNode
	if len(list.Items) == 3 {
		var err error
		argsCore, err = analyzeExpr(list.Items[2], ctx)
		if err != nil {
			return nil, err
		}
		if !looksLikeMap(argsCore) {
			return nil, errf(KindInvalidForm, "call args must evaluate to a map")
		}
	}
	return &ast.CoreCallTool{Name: name, Args: argsCore}, nil
}

// looksLikeMap rejects only Core node shapes that obviously cannot produce
// a map value; anything dynamic (a var, a call, a conditional, ...) is
// accepted since the analyzer cannot evaluate it to check.
func looksLikeMap(node ast.CoreNode) bool {
	switch node.(type) {
	case *ast.CoreVectorLit, *ast.CoreSetLit, *ast.CoreFn, *ast.CoreJuxt, *ast.CorePredCombinator, *ast.CoreWhere:
		return false
	case *ast.CoreLiteral:
		lit := node.(*ast.CoreLiteral)
		if _, ok := lit.Value.(runtimevalue.Nil); ok {
			return true
		}
		return false
	}
	return true
}

func analyzeReturnFail(list *ast.RawList, ctx actx, toolName string) (ast.CoreNode, error) {
	if len(list.Items) != 2 {
		return nil, errf(KindInvalidArity, "%s requires exactly 1 argument, got %d", toolName, len(list.Items)-1)
	}
	valueCore, err := analyzeExpr(list.Items[1], ctx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreCallTool{Name: toolName, Args: valueCore}, nil
}

func analyzeDef(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if ctx.scope != ScopeTop {
		return nil, errf(KindInvalidForm, "def is only allowed at top level, not inside lexical scope")
	}
	if len(list.Items) != 3 && len(list.Items) != 4 {
		return nil, errf(KindInvalidArity, "def requires (def name value) or (def name doc value)")
	}
	name, ok := asSymbolName(list.Items[1])
	if !ok {
		return nil, errf(KindInvalidForm, "def name must be a plain symbol")
	}
	valueRaw := list.Items[len(list.Items)-1]
	if len(list.Items) == 4 {
		if _, ok := asString(list.Items[2]); !ok {
			return nil, errf(KindInvalidForm, "def docstring must be a string literal")
		}
	}
	valueCore, err := analyzeExpr(valueRaw, ctx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreDef{Name: name, Value: valueCore}, nil
}

// analyzeDefn desugars `(defn name [params] body...)` into `(def name
// (fn [params] body...))`; multi-arity defn is not supported.
func analyzeDefn(list *ast.RawList, ctx actx) (ast.CoreNode, error) {
	if ctx.scope != ScopeTop {
		return nil, errf(KindInvalidForm, "defn is only allowed at top level, not inside lexical scope")
	}
	if len(list.Items) < 3 {
		return nil, errf(KindInvalidArity, "defn requires a name, a parameter vector, and a body")
	}
	name, ok := asSymbolName(list.Items[1])
	if !ok {
		return nil, errf(KindInvalidForm, "defn name must be a plain symbol")
	}
	paramsIdx := 2
	if _, ok := asString(list.Items[2]); ok {
		paramsIdx = 3
		if len(list.Items) < paramsIdx+1 {
			return nil, errf(KindInvalidArity, "defn requires a parameter vector after the docstring")
		}
	}
	paramsRaw, ok := list.Items[paramsIdx].(*ast.RawVector)
	if !ok {
		return nil, errf(KindInvalidForm, "multi-arity defn is not supported; use a single parameter vector")
	}
	params := make([]ast.Pattern, 0, len(paramsRaw.Items))
	for _, p := range paramsRaw.Items {
		pat, err := analyzePattern(p, ctx)
		if err != nil {
			return nil, err
		}
		params = append(params, pat)
	}
	body, err := analyzeBody(list.Items[paramsIdx+1:], ctx.lexical())
	if err != nil {
		return nil, err
	}
	return &ast.CoreDef{Name: name, Value: &ast.CoreFn{Params: params, Body: body}}, nil
}
