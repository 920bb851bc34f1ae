package evaluator

import (
	"strings"

	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// Closure is the user-closure callable shape: Body is evaluated in a
// fresh frame chained to Env, the environment captured at `fn`
// evaluation time. Capture is by reference, not copy, so mutually
// recursive top-level defns see each other.
type Closure struct {
	Params []ast.Pattern
	Body   ast.CoreNode
	Env    *Env
}

func (c *Closure) Kind() runtimevalue.Kind { return runtimevalue.KindClosure }

func (c *Closure) Inspect() string {
	names := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = patternDisplayName(p)
	}
	return "#fn[" + strings.Join(names, " ") + "]"
}

func (c *Closure) Hash() uint32 {
	return runtimevalue.HashString(c.Inspect())
}

func patternDisplayName(p ast.Pattern) string {
	switch pat := p.(type) {
	case *ast.PatternVar:
		return pat.Name
	case *ast.PatternDestructureAs:
		return pat.Alias
	default:
		return "_"
	}
}
