package builtins

import "github.com/ptclisp/ptclisp/internal/runtimevalue"

// Registry builds the full runtime-library environment: every name below
// is installed into the program's top-level frame before evaluation
// starts. apply is supplied by the evaluator so higher-order builtins
// can invoke a closure, another builtin, or (via keyFn) a keyword/set
// acting as a predicate, without this package importing the evaluator.
func Registry(apply Apply) map[string]runtimevalue.Value {
	reg := make(map[string]runtimevalue.Value)
	registerArith(reg)
	registerPredicates(reg)
	registerStrings(reg)
	registerMaps(reg)
	registerMapsApply(reg, apply)
	registerCollections(reg, apply)
	return reg
}
