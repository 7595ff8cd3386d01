package vm

import (
	"github.com/fusabi-lang/fusabi/internal/ferr"
	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/token"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// call implements the curried call protocol (spec.md §4.4): calling with
// exactly the remaining arity runs the callee to completion; calling with
// fewer args returns a partial-application handle; calling with more args
// applies the first batch, then recursively applies the remainder to
// whatever that produced.
func (vm *VM) call(callee value.Value, args []value.Value, span token.Span) (value.Value, error) {
	if !callee.IsObj() {
		return value.Value{}, &ferr.TypeError{Span: span, Msg: "value is not callable"}
	}

	switch callee := callee.AsObj().(type) {
	case *heap.ClosureObj:
		return vm.callClosure(callee, args, span)
	case *heap.NativeFnObj:
		return vm.callNative(callee, args, span)
	default:
		return value.Value{}, &ferr.TypeError{Span: span, Msg: "value is not callable"}
	}
}

func (vm *VM) callClosure(closure *heap.ClosureObj, args []value.Value, span token.Span) (value.Value, error) {
	total := len(closure.AppliedArgs) + len(args)
	arity := closure.Chunk.Arity

	switch {
	case total == arity:
		depthBefore := len(vm.Frames)
		if err := vm.pushFrame(closure, args, span); err != nil {
			return value.Value{}, err
		}
		return vm.runUntilDepth(depthBefore)

	case total < arity:
		partial := closure.WithMoreArgs(args)
		vm.register(partial, partial.Size())
		return value.ObjVal(partial), nil

	default: // total > arity: curried over-application
		take := arity - len(closure.AppliedArgs)
		first, rest := args[:take], args[take:]
		result, err := vm.callClosure(closure, first, span)
		if err != nil {
			return value.Value{}, err
		}
		return vm.call(result, rest, span)
	}
}

// CallClosure implements hostfn.Caller, letting a native function re-enter
// the VM (spec.md §4.6). It goes through the same curried call protocol as
// a guest call: fewer args than the remaining arity yield a partial
// application, more args are forwarded to the result.
func (vm *VM) CallClosure(closure *heap.ClosureObj, args []value.Value) (value.Value, error) {
	return vm.callClosure(closure, args, vm.currentSpan)
}

// Call is the embedding entry point (pkg/fusabi's Engine.Call, spec.md
// §4.9): invoke any callable Value — closure or native handle — from the
// host, through the same curried call protocol a guest script would use,
// converting an unchecked-accessor panic into a typed error the way Run
// does for top-level execution.
func (vm *VM) Call(callee value.Value, args []value.Value) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = vm.recoverToError(r)
		}
	}()
	return vm.call(callee, args, vm.currentSpan)
}

func (vm *VM) callNative(fn *heap.NativeFnObj, args []value.Value, span token.Span) (value.Value, error) {
	total := len(fn.AppliedArgs) + len(args)

	switch {
	case total == fn.Arity:
		native, ok := vm.Natives.Lookup(fn.Name)
		if !ok {
			return value.Value{}, &ferr.NameError{Span: span, Name: fn.Name}
		}
		full := make([]value.Value, 0, total)
		full = append(full, fn.AppliedArgs...)
		full = append(full, args...)
		prevSpan := vm.currentSpan
		vm.currentSpan = span
		stackBefore, framesBefore, upvaluesBefore := len(vm.Stack), len(vm.Frames), vm.openUpvalues
		result, err := native.Fn(vm, full)
		vm.currentSpan = prevSpan
		if err == nil && (len(vm.Stack) != stackBefore || len(vm.Frames) != framesBefore || vm.openUpvalues != upvaluesBefore) {
			err = &ferr.RuntimeError{Span: span, Msg: "host function left the VM stack, frame depth or open upvalues unbalanced"}
		}
		if err != nil {
			if _, already := err.(*ferr.HostError); !already {
				return value.Value{}, &ferr.HostError{Span: span, Name: fn.Name, Err: err}
			}
			return value.Value{}, err
		}
		return result, nil

	case total < fn.Arity:
		partial := fn.WithMoreArgs(args)
		vm.register(partial, partial.Size())
		return value.ObjVal(partial), nil

	default:
		take := fn.Arity - len(fn.AppliedArgs)
		first, rest := args[:take], args[take:]
		result, err := vm.callNative(fn, first, span)
		if err != nil {
			return value.Value{}, err
		}
		return vm.call(result, rest, span)
	}
}

// pushFrame grows the call-frame stack for an exact-arity invocation of
// closure, laying out its captured+supplied arguments followed by
// zero-initialized local slots (spec.md §4.4: frame limit default 1024,
// hard cap 4096).
func (vm *VM) pushFrame(closure *heap.ClosureObj, args []value.Value, span token.Span) error {
	limit := vm.FrameLimit
	if limit <= 0 || limit > HardFrameLimit {
		limit = HardFrameLimit
	}
	if len(vm.Frames) >= limit {
		return &ferr.StackOverflow{Span: span, Depth: len(vm.Frames) + 1, Limit: limit}
	}

	base := len(vm.Stack)
	full := make([]value.Value, 0, len(closure.AppliedArgs)+len(args))
	full = append(full, closure.AppliedArgs...)
	full = append(full, args...)
	for _, a := range full {
		vm.Push(a)
	}
	for i := len(full); i < closure.Chunk.LocalCount; i++ {
		vm.Push(value.UnitVal())
	}

	vm.Frames = append(vm.Frames, Frame{Closure: closure, IP: 0, BaseSlot: base})
	return nil
}
