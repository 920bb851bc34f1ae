// Package format renders runtime values back to text: either host-debug
// shape for diagnostics, or the Clojure-style rendering a tool-using
// program's feedback loop actually reads.
package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ptclisp/ptclisp/internal/config"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// Mode selects the rendering rules.
type Mode int

const (
	// Clojure renders nil/true/false, `:kw`, JSON-escaped strings, and
	// `[a b c]`/`{k1 v1 k2 v2}` collection literals, the shape an LLM
	// driver feeds back into a subsequent turn.
	Clojure Mode = iota
	// HostDebug uses a Go-flavoured shape (`map[k:v]`, comma-separated
	// sequences, %q-quoted strings), for human diagnostics rather than
	// round-trippable source text.
	HostDebug
)

// Options bounds how much of a large value gets rendered.
type Options struct {
	// Limit caps the number of items rendered per collection; the rest
	// is elided as "...".
	Limit int
	// PrintableLimit caps string length in bytes before truncation.
	PrintableLimit int
}

// DefaultOptions matches internal/config's tunable defaults.
func DefaultOptions() Options {
	return Options{Limit: config.DefaultFormatLimit, PrintableLimit: config.DefaultPrintableLimit}
}

// Format renders v under mode with opts. Output is deterministic modulo
// truncation; maps are emitted with keys sorted for reproducibility.
func Format(v runtimevalue.Value, mode Mode, opts Options) string {
	var b strings.Builder
	writeValue(&b, v, mode, opts)
	return b.String()
}

func writeValue(b *strings.Builder, v runtimevalue.Value, mode Mode, opts Options) {
	if v == nil {
		b.WriteString("nil")
		return
	}
	switch val := v.(type) {
	case runtimevalue.Nil:
		b.WriteString("nil")
	case runtimevalue.Bool:
		b.WriteString(val.Inspect())
	case runtimevalue.Int:
		b.WriteString(val.Value.String())
	case runtimevalue.Float:
		b.WriteString(val.Inspect())
	case runtimevalue.String:
		writeString(b, val.Value, mode, opts)
	case runtimevalue.Keyword:
		b.WriteByte(':')
		b.WriteString(val.Name)
	case runtimevalue.Vector:
		writeSeq(b, "[", "]", val.Items(), mode, opts)
	case *runtimevalue.Set:
		writeSeq(b, "#{", "}", val.Items(), mode, opts)
	case *runtimevalue.PersistentMap:
		writeMap(b, val, mode, opts)
	default:
		// closures and builtin callables render via their own Inspect
		// (`#fn[p1 p2 …]` / `#<builtin name>`), identical in both modes.
		b.WriteString(v.Inspect())
	}
}

func writeString(b *strings.Builder, s string, mode Mode, opts Options) {
	truncated := false
	if opts.PrintableLimit > 0 && len(s) > opts.PrintableLimit {
		s = s[:opts.PrintableLimit]
		truncated = true
	}
	if truncated {
		s += "..."
	}
	if mode == HostDebug {
		fmt.Fprintf(b, "%q", s)
		return
	}
	encoded, err := json.Marshal(s)
	if err != nil {
		fmt.Fprintf(b, "%q", s)
		return
	}
	b.Write(encoded)
}

// itemSep per mode: Clojure-style is space-separated with no commas;
// host-debug follows Go's own comma-separated collection-literal
// convention, for readability in diagnostics rather than round-trippable
// program text.
func itemSep(mode Mode) string {
	if mode == HostDebug {
		return ", "
	}
	return " "
}

func writeSeq(b *strings.Builder, open, close string, items []runtimevalue.Value, mode Mode, opts Options) {
	b.WriteString(open)
	n := len(items)
	limited := n
	elided := false
	if opts.Limit > 0 && n > opts.Limit {
		limited = opts.Limit
		elided = true
	}
	sep := itemSep(mode)
	for i := 0; i < limited; i++ {
		if i > 0 {
			b.WriteString(sep)
		}
		writeValue(b, items[i], mode, opts)
	}
	if elided {
		if limited > 0 {
			b.WriteString(sep)
		}
		b.WriteString("...")
	}
	b.WriteString(close)
}

func writeMap(b *strings.Builder, m *runtimevalue.PersistentMap, mode Mode, opts Options) {
	entries := m.Items()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key.Inspect() < entries[j].Key.Inspect()
	})
	n := len(entries)
	limited := n
	elided := false
	if opts.Limit > 0 && n > opts.Limit {
		limited = opts.Limit
		elided = true
	}

	if mode == HostDebug {
		b.WriteString("map[")
		for i := 0; i < limited; i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, entries[i].Key, mode, opts)
			b.WriteByte(':')
			writeValue(b, entries[i].Value, mode, opts)
		}
		if elided {
			if limited > 0 {
				b.WriteByte(' ')
			}
			b.WriteString("...")
		}
		b.WriteByte(']')
		return
	}

	b.WriteByte('{')
	for i := 0; i < limited; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeValue(b, entries[i].Key, mode, opts)
		b.WriteByte(' ')
		writeValue(b, entries[i].Value, mode, opts)
	}
	if elided {
		if limited > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("...")
	}
	b.WriteByte('}')
}
