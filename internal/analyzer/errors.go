// Package analyzer lowers Raw AST (reader output) into Core AST: it
// resolves special forms, desugars sugar (threading, short-fns,
// if-let/when-let, defn, return/fail), validates shapes the evaluator
// should never have to check again, and enforces scope rules for def.
//
// Symbol *existence* is never checked here (unbound_var is a runtime
// error); the analyzer only validates syntactic shape, arity, and scope.
package analyzer

import "fmt"

// Error is the Analyzer's single error shape: a Kind drawn from a fixed
// taxonomy plus a human-readable message.
type Error struct {
	Kind string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

const (
	KindInvalidForm           = "invalid_form"
	KindInvalidArity          = "invalid_arity"
	KindInvalidWhereForm      = "invalid_where_form"
	KindInvalidWhereOperator  = "invalid_where_operator"
	KindInvalidCallToolName   = "invalid_call_tool_name"
	KindInvalidCondForm       = "invalid_cond_form"
	KindInvalidThreadForm     = "invalid_thread_form"
	KindUnsupportedPattern    = "unsupported_pattern"
	KindInvalidPlaceholder    = "invalid_placeholder"
)

func errf(kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
