// Command ptclisp is the CLI harness around pkg/ptclisp: `run` evaluates
// a program against optional YAML ctx/memory fixtures, `fmt` re-renders
// a program's result value, `keys` prints its statically-extracted ctx
// keys.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/ptclisp/ptclisp/internal/config"
	"github.com/ptclisp/ptclisp/internal/format"
	"github.com/ptclisp/ptclisp/internal/hostdata"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
	"github.com/ptclisp/ptclisp/pkg/ptclisp"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "fmt":
		err = fmtCmd(os.Args[2:])
	case "keys":
		err = keysCmd(os.Args[2:])
	case "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptclisp: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  ptclisp run <file.ptc> [--ctx ctx.yaml] [--memory memory.yaml]")
	fmt.Fprintln(os.Stderr, "  ptclisp fmt <file.ptc>")
	fmt.Fprintln(os.Stderr, "  ptclisp keys <file.ptc>")
}

// flagArgs splits positional arguments from `--name value` flags.
func flagArgs(args []string) (positional []string, flags map[string]string) {
	flags = make(map[string]string)
	for i := 0; i < len(args); i++ {
		a := args[i]
		if len(a) > 2 && a[:2] == "--" {
			name := a[2:]
			if i+1 < len(args) {
				flags[name] = args[i+1]
				i++
				continue
			}
			flags[name] = ""
			continue
		}
		positional = append(positional, a)
	}
	return positional, flags
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// noopToolExec is the CLI's tool executor: it has no host to delegate
// to, so every tool call besides the reserved "return"/"fail" outcomes
// fails loudly rather than silently returning nil. "return"/"fail"
// stash their payload as the evaluation result, the convention the
// outer driver layer is expected to define.
func noopToolExec(name string, args runtimevalue.Value, memory *runtimevalue.PersistentMap) (runtimevalue.Value, *runtimevalue.PersistentMap, error) {
	switch name {
	case config.ReturnToolName, config.FailToolName:
		return args, memory, nil
	default:
		return nil, nil, fmt.Errorf("no tool executor configured for %q (CLI run has no host bindings)", name)
	}
}

func runCmd(args []string) error {
	positional, flags := flagArgs(args)
	if len(positional) != 1 {
		return fmt.Errorf("run requires exactly one source file")
	}
	src, err := readSource(positional[0])
	if err != nil {
		return err
	}
	ctx, err := hostdata.LoadFile(flags["ctx"])
	if err != nil {
		return err
	}
	memory, err := hostdata.LoadFile(flags["memory"])
	if err != nil {
		return err
	}
	outcome, err := ptclisp.Run(src, ctx, memory, noopToolExec)
	if err != nil {
		return err
	}
	printResult(format.Format(outcome.Value, format.Clojure, format.DefaultOptions()))
	return nil
}

func fmtCmd(args []string) error {
	positional, _ := flagArgs(args)
	if len(positional) != 1 {
		return fmt.Errorf("fmt requires exactly one source file")
	}
	src, err := readSource(positional[0])
	if err != nil {
		return err
	}
	// fmt evaluates with an empty ctx/memory and renders the resulting
	// value; the formatter operates on runtime values, not raw source
	// text. Programs that never reference ctx/memory/tools are the
	// common case this subcommand targets.
	outcome, err := ptclisp.Run(src, nil, nil, noopToolExec)
	if err != nil {
		return err
	}
	fmt.Println(format.Format(outcome.Value, format.Clojure, format.DefaultOptions()))
	return nil
}

func keysCmd(args []string) error {
	positional, _ := flagArgs(args)
	if len(positional) != 1 {
		return fmt.Errorf("keys requires exactly one source file")
	}
	src, err := readSource(positional[0])
	if err != nil {
		return err
	}
	keys, err := ptclisp.DataKeys(src)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k.Inspect())
	}
	return nil
}

// printResult colors the result when stdout is an interactive terminal;
// piped output stays plain so scripts consuming ptclisp's stdout don't
// have to strip escape codes.
func printResult(s string) {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Printf("\x1b[36m%s\x1b[0m\n", s)
		return
	}
	fmt.Println(s)
}
