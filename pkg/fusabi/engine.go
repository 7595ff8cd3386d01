// Package fusabi is the embedding API (spec.md §4.9): a host application
// constructs an Engine, registers host functions and globals, feeds it a
// compiled AST (lexing/parsing/inference are the caller's job — see
// FrontEnd below), and runs or calls into the resulting program. Grounded
// on the teacher's pkg/embed package: its VM wrapper / Bind registration
// idiom is kept, trimmed to the value.Value/heap.Heap types this repo's
// VM actually uses instead of the teacher's evaluator.Object tree.
package fusabi

import (
	"io"
	"log/slog"
	"os"

	"github.com/fusabi-lang/fusabi/internal/ast"
	"github.com/fusabi-lang/fusabi/internal/bytecode"
	"github.com/fusabi-lang/fusabi/internal/compiler"
	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/stdlib"
	"github.com/fusabi-lang/fusabi/internal/value"
	"github.com/fusabi-lang/fusabi/internal/vm"
)

// FrontEnd turns source text into the typed AST the compiler consumes.
// Lexing, parsing, and type inference live outside this module (spec.md
// §1's Out of scope) — a host supplies its own, or another layer of its
// stack's, and Eval just calls it.
type FrontEnd func(source string) (*ast.Program, error)

// DefaultConfig returns the Config New uses if the caller has no special
// requirements: GC on, default frame limit, stdout, default logger.
func DefaultConfig() Config {
	return Config{
		GCEnabled:    true,
		FrameLimit:   vm.DefaultFrameLimit,
		StdoutWriter: os.Stdout,
		Logger:       slog.Default(),
	}
}

// Config configures a new Engine (mirrors `Engine::new(config)`, spec.md
// §4.9). The zero Config disables GC (GCEnabled defaults false like any Go
// bool) — callers who just want sane defaults should start from
// DefaultConfig() rather than a bare Config{}.
type Config struct {
	// GCEnabled disables the heap's automatic collect-on-threshold trigger
	// when false, matching Heap.DisableAuto (debug/bench mode).
	GCEnabled bool
	// GCThresholdBytes overrides the heap's starting collection threshold;
	// zero keeps heap.MinThreshold.
	GCThresholdBytes uintptr
	// FrameLimit overrides vm.DefaultFrameLimit; zero keeps the default.
	FrameLimit int
	// StdoutWriter is where the Print stdlib/opcode surface writes;
	// defaults to os.Stdout.
	StdoutWriter io.Writer
	// Logger receives structured debug logs from the Engine itself (the
	// VM/compiler/serializer never log, per the teacher's silent-core
	// convention); defaults to slog.Default().
	Logger *slog.Logger
}

// Engine is one embeddable Fusabi runtime: a VM, its heap, its native
// registry, and the globals/stdlib bound into it. Not safe for concurrent
// use (spec.md §5).
type Engine struct {
	vm      *vm.VM
	heap    *heap.Heap
	natives *hostfn.Registry
	logger  *slog.Logger
	loader  FileLoader
	loads   *loadStack
}

// New constructs an Engine with the stdlib modules pre-registered.
func New(cfg Config) *Engine {
	h := heap.New()
	h.SetThreshold(cfg.GCThresholdBytes)
	if !cfg.GCEnabled {
		h.DisableAuto()
	}

	natives := hostfn.NewRegistry()
	machine := vm.New(h, natives)
	if cfg.FrameLimit > 0 {
		machine.FrameLimit = cfg.FrameLimit
	}
	if cfg.StdoutWriter != nil {
		machine.Stdout = cfg.StdoutWriter
	}

	stdlib.Register(natives, machine.Globals)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{vm: machine, heap: h, natives: natives, logger: logger}
}

// RegisterHost installs a host-implemented native function under name,
// reachable from guest code via heap.NativeFnObj once bound to a global
// (see Bind) — spec.md §4.5's re-entrant host-function contract.
func (e *Engine) RegisterHost(name string, arity int, fn func(caller hostfn.Caller, args []value.Value) (value.Value, error)) {
	e.natives.Register(hostfn.Native{Name: name, Arity: arity, Fn: fn})
	e.logger.Debug("registered host function", "name", name, "arity", arity)
}

// Bind exposes a previously-registered host function as a global so guest
// code can call it by name.
func (e *Engine) Bind(global, nativeName string, arity int) {
	e.vm.Globals[global] = value.ObjVal(heap.NewNativeFn(nativeName, arity))
}

// SetGlobal assigns a value directly into the Engine's global namespace.
func (e *Engine) SetGlobal(name string, v value.Value) {
	e.vm.Globals[name] = v
}

// GetGlobal reads a value out of the Engine's global namespace.
func (e *Engine) GetGlobal(name string) (value.Value, bool) {
	v, ok := e.vm.Globals[name]
	return v, ok
}

// Eval compiles source via front and runs the result to completion,
// sharing this Engine's globals and heap (spec.md §9 Open Question:
// Script.eval shares the calling Engine's globals — resolved that way
// here, see DESIGN.md).
func (e *Engine) Eval(source string, front FrontEnd) (value.Value, error) {
	prog, err := front(source)
	if err != nil {
		return value.Value{}, err
	}
	chunk, err := compiler.CompileProgram(prog)
	if err != nil {
		return value.Value{}, err
	}
	return e.RunChunk(chunk)
}

// RunChunk executes an already-compiled Chunk to completion.
func (e *Engine) RunChunk(chunk *bytecode.Chunk) (value.Value, error) {
	return e.vm.Run(chunk)
}

// Call invokes a callable Value (typically a global closure fetched via
// GetGlobal) with args, re-entering the VM exactly as a host native
// function's callback would.
func (e *Engine) Call(callee value.Value, args ...value.Value) (value.Value, error) {
	return e.vm.Call(callee, args)
}

// Disassemble renders chunk's bytecode for debugging (fusabi grind -dump).
func (e *Engine) Disassemble(chunk *bytecode.Chunk) string {
	return bytecode.Disassemble(chunk)
}

// Heap exposes the Engine's GC heap, mainly for diagnostics
// (BytesAllocated, LiveObjects, Collections).
func (e *Engine) Heap() *heap.Heap { return e.heap }

// SetLoader installs the FileLoader used to resolve `#load` directives.
func (e *Engine) SetLoader(l FileLoader) { e.loader = l }
