// Package ast holds both AST layers of the pipeline: the Raw AST
// produced by the reader, and the Core AST produced by the analyzer and
// consumed exclusively by the evaluator.
package ast

import (
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
	"github.com/ptclisp/ptclisp/internal/token"
)

// RawNode is any node the reader can produce.
type RawNode interface {
	Pos() token.Pos
	rawNode()
}

// Base carries the source position every Raw AST node has; embed it to get
// RawNode.Pos() for free.
type Base struct{ At token.Pos }

func (b Base) Pos() token.Pos { return b.At }

// RawLiteral covers every scalar leaf: nil, bool, integer, float,
// string, keyword. The value universe is identical for literal leaves
// and runtime values, so a literal just carries its already-built Value.
type RawLiteral struct {
	Base
	Value runtimevalue.Value
}

// RawVector is a `[...]` literal.
type RawVector struct {
	Base
	Items []RawNode
}

// RawPair is one key/value slot of a `{...}` map literal, in source order.
type RawPair struct {
	Key   RawNode
	Value RawNode
}

// RawMap is a `{...}` literal; Pairs preserves source order and has already
// been checked for even element count by the reader.
type RawMap struct {
	Base
	Pairs []RawPair
}

// RawSet is a `#{...}` literal.
type RawSet struct {
	Base
	Items []RawNode
}

// RawSymbol is a plain (non-namespaced) symbol.
type RawSymbol struct {
	Base
	Name string
}

// RawNsSymbol is a namespaced symbol, e.g. ctx/foo or m/inc.
type RawNsSymbol struct {
	Base
	Namespace string
	Name      string
}

// RawTurnHistory is *1, *2, or *3.
type RawTurnHistory struct {
	Base
	N int
}

// RawShortFn is a #(...) short-fn literal; Body is analysed only after
// placeholder desugaring rewrites it into an (fn [...] ...) form.
type RawShortFn struct {
	Base
	Body RawNode
}

// RawList is a parenthesised form: a function call or special form,
// disambiguated later by the analyzer.
type RawList struct {
	Base
	Items []RawNode
}

// RawProgram wraps more than one top-level form. A source with exactly one
// top-level form produces that form directly; empty input produces nil.
type RawProgram struct {
	Base
	Forms []RawNode
}

// NewNilAt builds the nil literal the reader returns for empty input.
func NewNilAt(pos token.Pos) *RawLiteral {
	return &RawLiteral{Base: Base{At: pos}, Value: runtimevalue.NilValue}
}

func (*RawLiteral) rawNode()     {}
func (*RawVector) rawNode()      {}
func (*RawMap) rawNode()         {}
func (*RawSet) rawNode()         {}
func (*RawSymbol) rawNode()      {}
func (*RawNsSymbol) rawNode()    {}
func (*RawTurnHistory) rawNode() {}
func (*RawShortFn) rawNode()     {}
func (*RawList) rawNode()        {}
func (*RawProgram) rawNode()     {}
