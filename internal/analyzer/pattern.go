package analyzer

import (
	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// analyzePattern lowers one binding-position Raw form into a Pattern: a
// plain symbol, a vector (sequential destructuring), or a map ({:keys
// [...]}, {:as x ...}, or key-rename form). Anything else is
// unsupported_pattern.
func analyzePattern(node ast.RawNode, ctx actx) (ast.Pattern, error) {
	switch n := node.(type) {
	case *ast.RawSymbol:
		return &ast.PatternVar{Name: n.Name}, nil

	case *ast.RawVector:
		return analyzeSeqPattern(n, ctx)

	case *ast.RawMap:
		return analyzeMapPattern(n, ctx)
	}
	return nil, errf(KindUnsupportedPattern, "unsupported binding pattern")
}

// analyzeSeqPattern handles `[a b & rest]`.
func analyzeSeqPattern(vec *ast.RawVector, ctx actx) (ast.Pattern, error) {
	items := make([]ast.Pattern, 0, len(vec.Items))
	var rest *ast.PatternVar
	for i := 0; i < len(vec.Items); i++ {
		if name, ok := asSymbolName(vec.Items[i]); ok && name == "&" {
			if i+1 != len(vec.Items)-1 {
				return nil, errf(KindUnsupportedPattern, "& rest must be the last binding")
			}
			restName, ok := asSymbolName(vec.Items[i+1])
			if !ok {
				return nil, errf(KindUnsupportedPattern, "& rest binding must be a plain symbol")
			}
			rest = &ast.PatternVar{Name: restName}
			break
		}
		p, err := analyzePattern(vec.Items[i], ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return &ast.PatternDestructureSeq{Items: items, Rest: rest}, nil
}

// analyzeMapPattern handles `{:keys [a b] :or {a 1}}`, `{a :x :or {a 1}}`
// renames, and `{:as whole ...}` aliasing, the three supported map
// destructuring shapes.
func analyzeMapPattern(m *ast.RawMap, ctx actx) (ast.Pattern, error) {
	var (
		keysNames []string
		renames   []ast.PatternRename
		defaults  map[string]ast.CoreNode
		alias     string
		hasAlias  bool
		hasKeys   bool
	)

	for _, pair := range m.Pairs {
		if kw, ok := pairKeyword(pair.Key); ok && kw == "keys" {
			hasKeys = true
			vec, ok := pair.Value.(*ast.RawVector)
			if !ok {
				return nil, errf(KindUnsupportedPattern, ":keys requires a vector of symbols")
			}
			for _, item := range vec.Items {
				name, ok := asSymbolName(item)
				if !ok {
					return nil, errf(KindUnsupportedPattern, ":keys entries must be plain symbols")
				}
				keysNames = append(keysNames, name)
			}
			continue
		}
		if kw, ok := pairKeyword(pair.Key); ok && kw == "as" {
			name, ok := asSymbolName(pair.Value)
			if !ok {
				return nil, errf(KindUnsupportedPattern, ":as requires a plain symbol")
			}
			alias = name
			hasAlias = true
			continue
		}
		if kw, ok := pairKeyword(pair.Key); ok && kw == "or" {
			orMap, ok := pair.Value.(*ast.RawMap)
			if !ok {
				return nil, errf(KindUnsupportedPattern, ":or requires a map of defaults")
			}
			if defaults == nil {
				defaults = make(map[string]ast.CoreNode)
			}
			for _, op := range orMap.Pairs {
				name, ok := asSymbolName(op.Key)
				if !ok {
					return nil, errf(KindUnsupportedPattern, ":or keys must be plain symbols")
				}
				valueCore, err := analyzeExpr(op.Value, ctx)
				if err != nil {
					return nil, err
				}
				defaults[name] = valueCore
			}
			continue
		}
		// A plain rename slot: local-name -> :key.
		localName, ok := asSymbolName(pair.Key)
		if !ok {
			return nil, errf(KindUnsupportedPattern, "unsupported map destructuring key")
		}
		keyName, ok := pairKeyword(pair.Value)
		if !ok {
			return nil, errf(KindUnsupportedPattern, "map destructuring rename value must be a keyword")
		}
		renames = append(renames, ast.PatternRename{Key: keyName, Binding: localName})
	}

	if defaults == nil {
		defaults = map[string]ast.CoreNode{}
	}

	var inner ast.Pattern
	switch {
	case hasKeys && len(renames) == 0:
		inner = &ast.PatternDestructureKeys{Names: keysNames, Defaults: defaults}
	case hasKeys || len(renames) > 0:
		inner = &ast.PatternDestructureMap{Names: keysNames, Renames: renames, Defaults: defaults}
	case hasAlias:
		inner = &ast.PatternDestructureKeys{Names: nil, Defaults: defaults}
	default:
		return nil, errf(KindUnsupportedPattern, "empty map destructuring pattern")
	}

	if hasAlias {
		return &ast.PatternDestructureAs{Alias: alias, Inner: inner}, nil
	}
	return inner, nil
}

// pairKeyword reports the name of node if it is a keyword literal; renamed
// map-destructuring values are required to be keywords, not strings.
func pairKeyword(node ast.RawNode) (string, bool) {
	lit, ok := node.(*ast.RawLiteral)
	if !ok {
		return "", false
	}
	kw, ok := lit.Value.(runtimevalue.Keyword)
	if !ok {
		return "", false
	}
	return kw.Name, true
}
