// Package ptclisp is the embeddable entry point: parse, analyze, and
// evaluate one program against a host-supplied ctx map, memory map, and
// tool executor. It is a small facade over the internal pipeline; the
// external interface is a single synchronous Run call rather than an
// open-ended host-binding API.
package ptclisp

import (
	"fmt"

	"github.com/ptclisp/ptclisp/internal/analyzer"
	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/datakey"
	"github.com/ptclisp/ptclisp/internal/evaluator"
	"github.com/ptclisp/ptclisp/internal/reader"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// ToolExec is the host's synchronous tool callback. name is the tool
// name; args is the evaluated argument (a map for `call`, a vector for
// `ctx/name` positional calls); memory is the memory as of this call. It
// returns the tool's result value and, if the tool updates memory, the
// new memory (return the input memory unchanged when a tool only reads).
type ToolExec func(name string, args runtimevalue.Value, memory *runtimevalue.PersistentMap) (runtimevalue.Value, *runtimevalue.PersistentMap, error)

// Outcome is a Run's result: a value and the memory as of the last
// evaluated subexpression.
type Outcome struct {
	Value  runtimevalue.Value
	Memory *runtimevalue.PersistentMap
}

// ValidationError wraps a Reader/Analyzer failure: one shape, one
// message, fed back to the model as-is.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Run parses, analyzes, and evaluates source against ctx/memory,
// invoking toolExec for every `call`/`ctx/name` form the program
// executes. ctx and memory may be nil, treated as empty. On a runtime
// error the returned Outcome still carries the memory as of the last
// successful subexpression, so partial tool effects stay observable.
func Run(source string, ctx, memory *runtimevalue.PersistentMap, toolExec ToolExec) (Outcome, error) {
	core, err := Analyze(source)
	if err != nil {
		return Outcome{Memory: memory}, err
	}
	val, mem, err := evaluator.Run(core, ctx, memory, evaluator.ToolExec(toolExec))
	if err != nil {
		return Outcome{Memory: mem}, err
	}
	return Outcome{Value: val, Memory: mem}, nil
}

// Analyze runs the Reader and Analyzer only, returning the Core AST a
// subsequent Run (or DataKeys/Format) call would evaluate. Exposed
// separately so a host can extract data keys before committing to a full
// ctx map.
func Analyze(source string) (ast.CoreNode, error) {
	raw, err := reader.Parse(source)
	if err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("parse error: %v", err)}
	}
	core, err := analyzer.Analyze(raw)
	if err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("analysis error: %v", err)}
	}
	return core, nil
}

// DataKeys returns every ctx key a program references, for a host that
// wants to prune a large context map down to what the program actually
// touches before calling Run.
func DataKeys(source string) ([]runtimevalue.Value, error) {
	core, err := Analyze(source)
	if err != nil {
		return nil, err
	}
	return datakey.Extract(core), nil
}
