// Package vm implements the stack-based bytecode virtual machine (spec.md
// §4.3/§4.4): a fetch-decode-execute loop over call frames, re-entrant host
// calls, and a mark-and-sweep heap. Structure is grounded on the teacher's
// internal/vm/vm.go (VM struct, CallFrame, stack/frame layout); the opcode
// set and call semantics are rebuilt for Fusabi's curried call protocol and
// the tagged internal/value.Value representation instead of the teacher's
// evaluator.Object tree-walking model.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/fusabi-lang/fusabi/internal/ferr"
	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/token"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// DefaultFrameLimit and HardFrameLimit bound call-frame recursion depth
// (spec.md §4.4).
const (
	DefaultFrameLimit = 1024
	HardFrameLimit    = 4096
)

// Frame is one active call's bookkeeping: the closure it is executing, the
// instruction pointer into that closure's chunk, and the stack index where
// its locals begin.
type Frame struct {
	Closure  *heap.ClosureObj
	IP       int
	BaseSlot int
}

// VM is Fusabi's bytecode interpreter. It is not safe for concurrent use
// (spec.md §5 mandates single-threaded execution per Engine).
type VM struct {
	Stack   []value.Value
	Frames  []Frame
	Globals map[string]value.Value

	GCHeap  *heap.Heap
	Natives *hostfn.Registry

	// Stdout is where OpPrint writes; a host embedding the VM (pkg/fusabi's
	// Config.StdoutWriter) can redirect it, defaulting to os.Stdout.
	Stdout io.Writer

	openUpvalues *heap.Upvalue // head of a list sorted by descending Location

	FrameLimit int

	// currentSpan tracks the most recently executed instruction's
	// source location, used to stamp errors raised outside the main fetch
	// loop (e.g. inside a native function's callback).
	currentSpan token.Span
}

// New creates a VM sharing the given heap and native registry with its
// embedding Engine.
func New(h *heap.Heap, natives *hostfn.Registry) *VM {
	return &VM{
		Globals:    make(map[string]value.Value),
		GCHeap:     h,
		Natives:    natives,
		Stdout:     os.Stdout,
		FrameLimit: DefaultFrameLimit,
	}
}

// Push appends v to the operand stack.
func (vm *VM) Push(v value.Value) {
	vm.Stack = append(vm.Stack, v)
}

// Pop removes and returns the top of the operand stack.
func (vm *VM) Pop() value.Value {
	n := len(vm.Stack) - 1
	v := vm.Stack[n]
	vm.Stack = vm.Stack[:n]
	return v
}

// Peek returns the value distance slots from the top without removing it.
func (vm *VM) Peek(distance int) value.Value {
	return vm.Stack[len(vm.Stack)-1-distance]
}

// Roots returns every Value the GC must treat as a root: the operand stack,
// globals, every open upvalue, and every executing frame's bound closure
// (spec.md §4.2's root set definition).
func (vm *VM) Roots() []value.Value {
	roots := make([]value.Value, 0, len(vm.Stack)+len(vm.Globals)+len(vm.Frames))
	roots = append(roots, vm.Stack...)
	for _, g := range vm.Globals {
		roots = append(roots, g)
	}
	for _, f := range vm.Frames {
		if f.Closure != nil {
			roots = append(roots, value.ObjVal(f.Closure))
		}
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.Next {
		if uv.Location >= 0 && uv.Location < len(vm.Stack) {
			roots = append(roots, vm.Stack[uv.Location])
		} else {
			roots = append(roots, uv.Closed)
		}
	}
	return roots
}

// RootSet satisfies hostfn.Caller's RootSet method (the plain Roots() name is
// used above for the slice accessor itself, which existing helpers call
// directly; native functions reach the same data through this closure
// form so they can pass it straight to heap.Register).
func (vm *VM) RootSet() func() []value.Value {
	return vm.Roots
}

// register allocates obj onto the VM's heap, charging size and triggering
// collection against the VM's current root set if needed.
func (vm *VM) register(obj heap.Traceable, size uintptr) {
	vm.GCHeap.Register(obj, size, vm.Roots)
}

// Heap satisfies hostfn.Caller, giving native functions access to the VM's
// garbage-collected heap for allocating result values.
func (vm *VM) Heap() *heap.Heap { return vm.GCHeap }

// frame returns the currently executing call frame.
func (vm *VM) frame() *Frame {
	return &vm.Frames[len(vm.Frames)-1]
}

// runtimeErrorf builds a *ferr.RuntimeError carrying span and a message
// formatted from format and args.
func (vm *VM) runtimeErrorf(span token.Span, format string, args ...interface{}) error {
	return &ferr.RuntimeError{Span: span, Msg: fmt.Sprintf(format, args...)}
}
