package analyzer

import "github.com/ptclisp/ptclisp/internal/ast"

// analyzeShortFn desugars `#(...)` into an (fn [%1 %2 ...] ...) form: it
// first scans the body for the highest placeholder index used (bare `%`
// counts as `%1`), synthesizes that many parameters, then analyzes the
// body with placeholders allowed.
func analyzeShortFn(sf *ast.RawShortFn) (ast.CoreNode, error) {
	maxIdx := scanMaxPlaceholder(sf.Body)
	params := make([]ast.Pattern, maxIdx)
	for i := 0; i < maxIdx; i++ {
		params[i] = &ast.PatternVar{Name: placeholderName(i + 1)}
	}
	bodyCtx := actx{scope: ScopeLexical, allowPlaceholder: true}
	body, err := analyzeExpr(sf.Body, bodyCtx)
	if err != nil {
		return nil, err
	}
	return &ast.CoreFn{Params: params, Body: body}, nil
}

func placeholderName(n int) string {
	digits := [...]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}
	if n < 10 {
		return "%" + string(digits[n])
	}
	// No short-fn realistically needs 10+ params, but don't silently
	// truncate if one does.
	buf := []byte{'%'}
	var tmp []byte
	for n > 0 {
		tmp = append(tmp, digits[n%10])
		n /= 10
	}
	for i := len(tmp) - 1; i >= 0; i-- {
		buf = append(buf, tmp[i])
	}
	return string(buf)
}

// scanMaxPlaceholder walks a Raw AST subtree looking for `%`/`%N` symbols,
// not descending into a nested short-fn (which scopes its own
// placeholders).
func scanMaxPlaceholder(node ast.RawNode) int {
	max := 0
	note := func(n int) {
		if n > max {
			max = n
		}
	}
	var walk func(ast.RawNode)
	walk = func(n ast.RawNode) {
		switch v := n.(type) {
		case *ast.RawSymbol:
			if v.Name == "%" {
				note(1)
			} else if isPlaceholderName(v.Name) {
				note(placeholderIndex(v.Name))
			}
		case *ast.RawVector:
			for _, it := range v.Items {
				walk(it)
			}
		case *ast.RawSet:
			for _, it := range v.Items {
				walk(it)
			}
		case *ast.RawMap:
			for _, p := range v.Pairs {
				walk(p.Key)
				walk(p.Value)
			}
		case *ast.RawList:
			for _, it := range v.Items {
				walk(it)
			}
		case *ast.RawProgram:
			for _, f := range v.Forms {
				walk(f)
			}
		case *ast.RawShortFn:
			// Nested short-fns own their own placeholders.
		}
	}
	walk(node)
	return max
}

func placeholderIndex(name string) int {
	n := 0
	for _, c := range name[1:] {
		n = n*10 + int(c-'0')
	}
	return n
}
