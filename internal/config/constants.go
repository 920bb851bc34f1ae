// Package config holds the small set of tunables shared across the
// reader, analyzer, evaluator, and formatter.
package config

// MaxEvalDepth bounds recursive-descent Eval nesting so a runaway or
// adversarial program fails with a runtime error instead of crashing the
// host process with a Go stack overflow.
const MaxEvalDepth = 4000

// DefaultFormatLimit is the default max number of collection elements the
// formatter renders before truncating with "...".
const DefaultFormatLimit = 64

// DefaultPrintableLimit is the default max string byte length the
// formatter renders before truncating with "...".
const DefaultPrintableLimit = 4096

// Reserved tool names carrying the program outcome.
const (
	ReturnToolName = "return"
	FailToolName   = "fail"
)
