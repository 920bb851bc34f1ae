package evaluator

import (
	"sync"

	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// Env is a lexical frame chained to an outer frame. Lookup walks outward
// through the chain; Define always binds in the innermost frame.
type Env struct {
	mu    sync.RWMutex
	store map[string]runtimevalue.Value
	outer *Env
}

// NewEnv creates a fresh top-level frame with no outer link; one is made
// per program evaluation.
func NewEnv() *Env {
	return &Env{store: make(map[string]runtimevalue.Value)}
}

// NewChildEnv creates a frame enclosed by outer, the shape every let and
// fn-call introduces.
func NewChildEnv(outer *Env) *Env {
	e := NewEnv()
	e.outer = outer
	return e
}

// Get looks up name, walking outward through enclosing frames.
func (e *Env) Get(name string) (runtimevalue.Value, bool) {
	e.mu.RLock()
	v, ok := e.store[name]
	e.mu.RUnlock()
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return v, ok
}

// Define binds name in this frame, shadowing any binding of the same name
// in an enclosing frame.
func (e *Env) Define(name string, val runtimevalue.Value) {
	e.mu.Lock()
	e.store[name] = val
	e.mu.Unlock()
}

// Global walks to the outermost frame, the one `def` mutates.
func (e *Env) Global() *Env {
	cur := e
	for cur.outer != nil {
		cur = cur.outer
	}
	return cur
}
