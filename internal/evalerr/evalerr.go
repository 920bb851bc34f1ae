// Package evalerr is the runtime error shape shared by the evaluator and
// the runtime library, so a builtin can raise `type_error` or
// `arity_mismatch` without the runtime library importing the evaluator
// (which would cycle back to it).
package evalerr

import "fmt"

type Kind string

const (
	UnboundVar         Kind = "unbound_var"
	NotCallable        Kind = "not_callable"
	ArityMismatch      Kind = "arity_mismatch"
	TypeError          Kind = "type_error"
	ToolError          Kind = "tool_error"
	InvalidKeywordCall Kind = "invalid_keyword_call"
	ArityError         Kind = "arity_error"
	MaxDepthExceeded   Kind = "max_depth_exceeded"
)

// Error is the single runtime error shape: a Kind plus a Payload map of
// whatever structured fields that Kind calls for (expected/got for
// arity_mismatch and type_error, name/reason for tool_error, ...), and a
// rendered human-readable message.
type Error struct {
	Kind    Kind
	Msg     string
	Payload map[string]interface{}
}

func (e *Error) Error() string { return e.Msg }

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func UnboundVarErr(name string) *Error {
	return &Error{Kind: UnboundVar, Msg: fmt.Sprintf("unbound var: %s", name), Payload: map[string]interface{}{"name": name}}
}

func NotCallableErr(inspect string) *Error {
	return &Error{Kind: NotCallable, Msg: fmt.Sprintf("value is not callable: %s", inspect), Payload: map[string]interface{}{"value": inspect}}
}

func ArityMismatchErr(name string, expected, got int) *Error {
	return &Error{
		Kind:    ArityMismatch,
		Msg:     fmt.Sprintf("%s: expected %d argument(s), got %d", name, expected, got),
		Payload: map[string]interface{}{"expected": expected, "got": got},
	}
}

func TypeErr(expected, got string) *Error {
	return &Error{
		Kind:    TypeError,
		Msg:     fmt.Sprintf("type error: expected %s, got %s", expected, got),
		Payload: map[string]interface{}{"expected": expected, "got": got},
	}
}

func ToolErr(name, reason string) *Error {
	return &Error{Kind: ToolError, Msg: fmt.Sprintf("tool %q failed: %s", name, reason), Payload: map[string]interface{}{"name": name, "reason": reason}}
}

func InvalidKeywordCallErr(key string, argc int) *Error {
	return &Error{Kind: InvalidKeywordCall, Msg: fmt.Sprintf("keyword %s called with %d arguments", key, argc)}
}

func MaxDepthErr(limit int) *Error {
	return &Error{Kind: MaxDepthExceeded, Msg: fmt.Sprintf("max evaluation depth exceeded (limit %d)", limit), Payload: map[string]interface{}{"limit": limit}}
}
