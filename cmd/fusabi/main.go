// Command fusabi is the CLI front door onto pkg/fusabi: run/grind/repl,
// grounded on the teacher's cmd/funxy/main.go flag-based subcommand
// dispatch (BackendType-style flag parsing, magic-sniffing a file before
// deciding how to treat it).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/fusabi-lang/fusabi/internal/bytecode"
	"github.com/fusabi-lang/fusabi/internal/compiler"
	"github.com/fusabi-lang/fusabi/pkg/fusabi"
)

// frontend is the seam to an external lex/parse/infer pipeline (spec.md
// §1 keeps that out of this repo's scope). A build embedding Fusabi wires
// its own FrontEnd in here; stock `cmd/fusabi` has none, so any `.fsx`
// source input past the magic-sniff fails with a clear message rather
// than silently no-op'ing.
var frontend fusabi.FrontEnd

const (
	exitOK         = 0
	exitRuntime    = 1
	exitUsageError = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitUsageError
	}

	switch args[0] {
	case "run":
		return cmdRun(args[1:])
	case "grind":
		return cmdGrind(args[1:])
	case "repl":
		return cmdRepl(args[1:])
	default:
		usage()
		return exitUsageError
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fusabi <run|grind|repl> [args]")
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		usage()
		return exitUsageError
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fusabi run:", err)
		return exitUsageError
	}

	engine := fusabi.New(fusabi.DefaultConfig())

	var result error
	if bytecode.Sniff(data) {
		chunk, derr := bytecode.Deserialize(data)
		if derr != nil {
			fmt.Fprintln(os.Stderr, "fusabi run:", derr)
			return exitRuntime
		}
		_, result = engine.RunChunk(chunk)
	} else {
		if frontend == nil {
			fmt.Fprintln(os.Stderr, "fusabi run: no front end registered for source input (lexing/parsing is outside this module's scope); supply one via pkg/fusabi.FrontEnd")
			return exitUsageError
		}
		_, result = engine.Eval(string(data), frontend)
	}

	if result != nil {
		fmt.Fprintln(os.Stderr, "fusabi run:", result)
		return exitRuntime
	}
	return exitOK
}

func cmdGrind(args []string) int {
	fs := flag.NewFlagSet("grind", flag.ContinueOnError)
	dump := fs.Bool("dump", false, "print the disassembled chunk instead of writing a .fzb file")
	out := fs.String("o", "", "output .fzb path (default: input with .fzb extension)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		usage()
		return exitUsageError
	}
	path := fs.Arg(0)

	if frontend == nil {
		fmt.Fprintln(os.Stderr, "fusabi grind: no front end registered for source input (lexing/parsing is outside this module's scope); supply one via pkg/fusabi.FrontEnd")
		return exitUsageError
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fusabi grind:", err)
		return exitUsageError
	}

	prog, err := frontend(string(source))
	if err != nil {
		fmt.Fprintln(os.Stderr, "fusabi grind:", err)
		return exitRuntime
	}

	chunk, err := compiler.CompileProgram(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fusabi grind:", err)
		return exitRuntime
	}

	if *dump {
		engine := fusabi.New(fusabi.DefaultConfig())
		fmt.Println(engine.Disassemble(chunk))
		return exitOK
	}

	outPath := *out
	if outPath == "" {
		outPath = trimExt(path) + ".fzb"
	}
	bytes, err := bytecode.Serialize(chunk)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fusabi grind:", err)
		return exitRuntime
	}
	if err := os.WriteFile(outPath, bytes, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "fusabi grind:", err)
		return exitRuntime
	}
	return exitOK
}

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		usage()
		return exitUsageError
	}
	if frontend == nil {
		fmt.Fprintln(os.Stderr, "fusabi repl: no front end registered (lexing/parsing is outside this module's scope); supply one via pkg/fusabi.FrontEnd")
		return exitUsageError
	}

	engine := fusabi.New(fusabi.DefaultConfig())
	scanner := bufio.NewScanner(os.Stdin)

	// Only show the prompt on a real interactive terminal; piped input (a
	// script fed to `fusabi repl` as stdin) shouldn't get prompt noise
	// interleaved with its output.
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	prompt := func() {
		if interactive {
			fmt.Fprint(os.Stdout, "fusabi> ")
		}
	}

	prompt()
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			prompt()
			continue
		}
		result, err := engine.Eval(line, frontend)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintln(os.Stdout, result.Display())
		}
		prompt()
	}
	if interactive {
		fmt.Fprintln(os.Stdout)
	}
	return exitOK
}

func trimExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
