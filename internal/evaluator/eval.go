// Package evaluator is the tree-walking evaluator: it walks Core AST
// nodes, threads a lexical environment and a process-supplied memory
// map, and dispatches calls across every callable shape the runtime
// library and user closures produce.
package evaluator

import (
	"fmt"

	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/builtins"
	"github.com/ptclisp/ptclisp/internal/config"
	"github.com/ptclisp/ptclisp/internal/evalerr"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// ToolExec is the host callback backing `call` and `ctx/name` forms:
// given a tool name, its evaluated argument, and the memory as of the
// call, it returns the tool's value and the (possibly updated) memory.
type ToolExec func(name string, args runtimevalue.Value, memory *runtimevalue.PersistentMap) (runtimevalue.Value, *runtimevalue.PersistentMap, error)

// Evaluator holds the state threaded through one program's evaluation:
// ctx is immutable for the run's duration, memory is mutated only by
// tool calls. Memory is a single mutable cell rather than a value
// explicitly return-threaded through Eval, so that builtins.Apply's
// fixed (Value, error) signature can still observe tool-call side
// effects from inside a coerced closure.
type Evaluator struct {
	Ctx      *runtimevalue.PersistentMap
	Memory   *runtimevalue.PersistentMap
	ToolExec ToolExec
	depth    int
}

// New creates an Evaluator ready to run one program. ctx and memory may
// be nil, treated as empty maps.
func New(ctx, memory *runtimevalue.PersistentMap, toolExec ToolExec) *Evaluator {
	if ctx == nil {
		ctx = runtimevalue.EmptyMap()
	}
	if memory == nil {
		memory = runtimevalue.EmptyMap()
	}
	return &Evaluator{Ctx: ctx, Memory: memory, ToolExec: toolExec}
}

// Run evaluates a whole program in a fresh top-level environment seeded
// with the runtime library, returning the final memory alongside the
// result.
func Run(core ast.CoreNode, ctx, memory *runtimevalue.PersistentMap, toolExec ToolExec) (runtimevalue.Value, *runtimevalue.PersistentMap, error) {
	ev := New(ctx, memory, toolExec)
	env := NewEnv()
	for name, fn := range builtins.Registry(ev.apply) {
		env.Define(name, fn)
	}
	val, err := ev.Eval(core, env)
	return val, ev.Memory, err
}

// Eval is the recursive-descent evaluator over every Core AST node kind;
// it is the sole entry point both for top-level evaluation and for every
// nested subexpression.
func (ev *Evaluator) Eval(core ast.CoreNode, env *Env) (runtimevalue.Value, error) {
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.depth > config.MaxEvalDepth {
		return nil, evalerr.MaxDepthErr(config.MaxEvalDepth)
	}

	switch n := core.(type) {
	case *ast.CoreLiteral:
		return n.Value, nil

	case *ast.CoreVectorLit:
		items, err := ev.evalAll(n.Items, env)
		if err != nil {
			return nil, err
		}
		return runtimevalue.NewVector(items), nil

	case *ast.CoreMapLit:
		entries := make([]runtimevalue.MapEntry, 0, len(n.Pairs))
		for _, p := range n.Pairs {
			k, err := ev.Eval(p.Key, env)
			if err != nil {
				return nil, err
			}
			v, err := ev.Eval(p.Value, env)
			if err != nil {
				return nil, err
			}
			entries = append(entries, runtimevalue.MapEntry{Key: k, Value: v})
		}
		return runtimevalue.MapFrom(entries), nil

	case *ast.CoreSetLit:
		items, err := ev.evalAll(n.Items, env)
		if err != nil {
			return nil, err
		}
		return runtimevalue.SetFrom(items), nil

	case *ast.CoreVar:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, evalerr.UnboundVarErr(n.Name)
		}
		return v, nil

	case *ast.CoreCtx:
		return ctxLookup(ev.Ctx, n.Key), nil

	case *ast.CoreMemory:
		return ctxLookup(ev.Memory, n.Key), nil

	case *ast.CoreTurnHistory:
		return ctxLookup(ev.Ctx, runtimevalue.Keyword{Name: turnHistoryKey(n.N)}), nil

	case *ast.CoreLet:
		letEnv := NewChildEnv(env)
		for _, b := range n.Bindings {
			v, err := ev.Eval(b.Value, letEnv)
			if err != nil {
				return nil, err
			}
			if err := ev.bindPattern(b.Pattern, v, letEnv, letEnv); err != nil {
				return nil, err
			}
		}
		return ev.Eval(n.Body, letEnv)

	case *ast.CoreIf:
		cond, err := ev.Eval(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if runtimevalue.Truthy(cond) {
			return ev.Eval(n.Then, env)
		}
		if n.Else == nil {
			return runtimevalue.NilValue, nil
		}
		return ev.Eval(n.Else, env)

	case *ast.CoreFn:
		return &Closure{Params: n.Params, Body: n.Body, Env: env}, nil

	case *ast.CoreDo:
		if len(n.Exprs) == 0 {
			return runtimevalue.NilValue, nil
		}
		var result runtimevalue.Value = runtimevalue.NilValue
		for _, e := range n.Exprs {
			v, err := ev.Eval(e, env)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil

	case *ast.CoreAnd:
		if len(n.Exprs) == 0 {
			return runtimevalue.True, nil
		}
		var result runtimevalue.Value = runtimevalue.True
		for _, e := range n.Exprs {
			v, err := ev.Eval(e, env)
			if err != nil {
				return nil, err
			}
			result = v
			if !runtimevalue.Truthy(v) {
				return v, nil
			}
		}
		return result, nil

	case *ast.CoreOr:
		if len(n.Exprs) == 0 {
			return runtimevalue.NilValue, nil
		}
		var result runtimevalue.Value = runtimevalue.NilValue
		for _, e := range n.Exprs {
			v, err := ev.Eval(e, env)
			if err != nil {
				return nil, err
			}
			result = v
			if runtimevalue.Truthy(v) {
				return v, nil
			}
		}
		return result, nil

	case *ast.CoreCall:
		callee, err := ev.Eval(n.Callee, env)
		if err != nil {
			return nil, err
		}
		args, err := ev.evalAll(n.Args, env)
		if err != nil {
			return nil, err
		}
		return ev.callValue(callee, args)

	case *ast.CoreCallTool:
		var argVal runtimevalue.Value = runtimevalue.EmptyMap()
		if n.Args != nil {
			v, err := ev.Eval(n.Args, env)
			if err != nil {
				return nil, err
			}
			argVal = v
		}
		return ev.invokeTool(n.Name, argVal)

	case *ast.CoreCtxCall:
		args, err := ev.evalAll(n.Args, env)
		if err != nil {
			return nil, err
		}
		return ev.invokeTool(n.ToolName, runtimevalue.NewVector(args))

	case *ast.CoreWhere:
		return ev.makeWhere(n, env)

	case *ast.CorePredCombinator:
		return ev.makePredCombinator(n, env)

	case *ast.CoreJuxt:
		return ev.makeJuxt(n, env)

	case *ast.CoreDef:
		v, err := ev.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		env.Global().Define(n.Name, v)
		return v, nil

	default:
		return nil, evalerr.New(evalerr.TypeError, "eval: unhandled core node %T", core)
	}
}

func (ev *Evaluator) evalAll(nodes []ast.CoreNode, env *Env) ([]runtimevalue.Value, error) {
	out := make([]runtimevalue.Value, len(nodes))
	for i, n := range nodes {
		v, err := ev.Eval(n, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ctxLookup reads a ctx/memory entry: absent keys are nil, never an
// error, resolved via the same flexible key rule used throughout the
// runtime library.
func ctxLookup(m *runtimevalue.PersistentMap, key runtimevalue.Value) runtimevalue.Value {
	if v, ok := builtins.FlexGet(m, key); ok {
		return v
	}
	return runtimevalue.NilValue
}

func turnHistoryKey(n int) string {
	return fmt.Sprintf("turn-history-%d", n)
}

func (ev *Evaluator) invokeTool(name string, args runtimevalue.Value) (runtimevalue.Value, error) {
	if ev.ToolExec == nil {
		return nil, evalerr.ToolErr(name, "no tool executor configured")
	}
	v, mem, err := ev.ToolExec(name, args, ev.Memory)
	if err != nil {
		return nil, evalerr.ToolErr(name, err.Error())
	}
	if mem != nil {
		ev.Memory = mem
	}
	return v, nil
}

// apply implements builtins.Apply: it is how a higher-order builtin calls
// a closure, another builtin, or a keyword-as-predicate passed to it as
// an argument, reusing this evaluator's live ctx/memory/tool state.
func (ev *Evaluator) apply(callee runtimevalue.Value, args []runtimevalue.Value) (runtimevalue.Value, error) {
	return ev.callValue(callee, args)
}
