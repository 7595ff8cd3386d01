package vm

import (
	"fmt"

	"github.com/fusabi-lang/fusabi/internal/bytecode"
	"github.com/fusabi-lang/fusabi/internal/ferr"
	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// Run compiles chunk into a zero-upvalue top-level closure and executes it
// to completion, returning its final value.
func (vm *VM) Run(chunk *bytecode.Chunk) (result value.Value, err error) {
	top := heap.NewClosure(chunk, nil)
	vm.register(top, top.Size())

	defer func() {
		if r := recover(); r != nil {
			err = vm.recoverToError(r)
		}
	}()

	return vm.call(value.ObjVal(top), nil, chunk.SpanAt(0))
}

// recoverToError converts a panic raised by an unchecked value accessor
// (value.TypeError) into the corresponding typed Fusabi error; any other
// panic is re-raised, since it indicates a genuine implementation bug
// rather than a guest-script-triggerable fault.
func (vm *VM) recoverToError(r interface{}) error {
	if te, ok := r.(*value.TypeError); ok {
		return &ferr.TypeError{Span: vm.currentSpan, Msg: te.Error()}
	}
	panic(r)
}

// runUntilDepth drives the fetch-decode-execute loop until the frame stack
// shrinks back to targetDepth, then returns the value left on the operand
// stack by the frame that just returned.
func (vm *VM) runUntilDepth(targetDepth int) (value.Value, error) {
	for len(vm.Frames) > targetDepth {
		if err := vm.step(); err != nil {
			return value.Value{}, err
		}
	}
	return vm.Pop(), nil
}

// step executes exactly one instruction in the current top frame.
func (vm *VM) step() error {
	f := vm.frame()
	chunk := f.Closure.Chunk
	span := chunk.SpanAt(f.IP)
	vm.currentSpan = span

	op := bytecode.Op(chunk.Code[f.IP])
	f.IP++

	switch op {
	case bytecode.OpLoadConst:
		idx := vm.readU16(f)
		vm.Push(vm.materializeConst(chunk.Constants[idx]))

	case bytecode.OpLoadUnit:
		vm.Push(value.UnitVal())
	case bytecode.OpLoadTrue:
		vm.Push(value.BoolVal(true))
	case bytecode.OpLoadFalse:
		vm.Push(value.BoolVal(false))

	case bytecode.OpPop:
		vm.Pop()
	case bytecode.OpPopBelow:
		n := int(vm.readU16(f))
		top := vm.Pop()
		idx := len(vm.Stack) - n
		vm.Stack = append(vm.Stack[:idx], top)
	case bytecode.OpDup:
		vm.Push(vm.Peek(0))

	case bytecode.OpLoadLocal:
		idx := int(vm.readU16(f))
		vm.Push(vm.Stack[f.BaseSlot+idx])
	case bytecode.OpStoreLocal:
		idx := int(vm.readU16(f))
		vm.Stack[f.BaseSlot+idx] = vm.Peek(0)

	case bytecode.OpLoadGlobal:
		idx := vm.readU16(f)
		name := chunk.Constants[idx].S
		g, ok := vm.Globals[name]
		if !ok {
			return &ferr.NameError{Span: span, Name: name}
		}
		vm.Push(g)
	case bytecode.OpStoreGlobal:
		idx := vm.readU16(f)
		name := chunk.Constants[idx].S
		vm.Globals[name] = vm.Peek(0)

	case bytecode.OpLoadUpvalue:
		idx := int(vm.readU16(f))
		uv := f.Closure.Upvalues[idx]
		if uv.IsOpen() {
			vm.Push(vm.Stack[uv.Location])
		} else {
			vm.Push(uv.Closed)
		}
	case bytecode.OpStoreUpvalue:
		idx := int(vm.readU16(f))
		uv := f.Closure.Upvalues[idx]
		v := vm.Peek(0)
		if uv.IsOpen() {
			vm.Stack[uv.Location] = v
		} else {
			uv.Closed = v
		}
	case bytecode.OpCloseUpvalue:
		idx := int(vm.readU16(f))
		vm.closeUpvalues(f.BaseSlot + idx)

	case bytecode.OpAdd:
		b, a := vm.Pop(), vm.Pop()
		v, err := numericOp('+', a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)
	case bytecode.OpSub:
		b, a := vm.Pop(), vm.Pop()
		v, err := numericOp('-', a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)
	case bytecode.OpMul:
		b, a := vm.Pop(), vm.Pop()
		v, err := numericOp('*', a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)
	case bytecode.OpDiv:
		b, a := vm.Pop(), vm.Pop()
		v, err := numericOp('/', a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)
	case bytecode.OpMod:
		b, a := vm.Pop(), vm.Pop()
		v, err := numericOp('%', a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)
	case bytecode.OpNeg:
		a := vm.Pop()
		if a.IsInt() {
			vm.Push(value.IntVal(-a.AsInt()))
		} else if a.IsFloat() {
			vm.Push(value.FloatVal(-a.AsFloat()))
		} else {
			return &ferr.TypeError{Span: span, Msg: "unary - requires Int or Float"}
		}
	case bytecode.OpConcat:
		b, a := vm.Pop(), vm.Pop()
		v, err := vm.concat(a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)

	case bytecode.OpEq:
		b, a := vm.Pop(), vm.Pop()
		vm.Push(value.BoolVal(a.Eq(b)))
	case bytecode.OpNe:
		b, a := vm.Pop(), vm.Pop()
		vm.Push(value.BoolVal(!a.Eq(b)))
	case bytecode.OpLt:
		b, a := vm.Pop(), vm.Pop()
		v, err := compareOp("<", a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)
	case bytecode.OpLe:
		b, a := vm.Pop(), vm.Pop()
		v, err := compareOp("<=", a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)
	case bytecode.OpGt:
		b, a := vm.Pop(), vm.Pop()
		v, err := compareOp(">", a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)
	case bytecode.OpGe:
		b, a := vm.Pop(), vm.Pop()
		v, err := compareOp(">=", a, b, span)
		if err != nil {
			return err
		}
		vm.Push(v)

	case bytecode.OpNot:
		a := vm.Pop()
		vm.Push(value.BoolVal(!a.AsBool()))
	case bytecode.OpAnd:
		b, a := vm.Pop(), vm.Pop()
		vm.Push(value.BoolVal(a.AsBool() && b.AsBool()))
	case bytecode.OpOr:
		b, a := vm.Pop(), vm.Pop()
		vm.Push(value.BoolVal(a.AsBool() || b.AsBool()))

	case bytecode.OpJump:
		target := vm.readU16(f)
		f.IP = int(target)
	case bytecode.OpJumpIfFalse:
		target := vm.readU16(f)
		if !vm.Pop().AsBool() {
			f.IP = int(target)
		}
	case bytecode.OpJumpIfTrue:
		target := vm.readU16(f)
		if vm.Pop().AsBool() {
			f.IP = int(target)
		}

	case bytecode.OpCall:
		argc := int(vm.readU16(f))
		args := make([]value.Value, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = vm.Pop()
		}
		callee := vm.Pop()
		result, err := vm.call(callee, args, span)
		if err != nil {
			return err
		}
		vm.Push(result)
	case bytecode.OpTailCall:
		// Executed as an ordinary call; Go's own call stack backs the VM's
		// recursion instead of a reused frame, bounded by the same frame
		// limit check (see DESIGN.md: tail calls are not specially
		// optimized).
		argc := int(vm.readU16(f))
		args := make([]value.Value, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = vm.Pop()
		}
		callee := vm.Pop()
		result, err := vm.call(callee, args, span)
		if err != nil {
			return err
		}
		vm.Push(result)
	case bytecode.OpReturn:
		result := vm.Pop()
		vm.closeUpvalues(f.BaseSlot)
		vm.Stack = vm.Stack[:f.BaseSlot]
		vm.Frames = vm.Frames[:len(vm.Frames)-1]
		vm.Push(result)

	case bytecode.OpMakeClosure:
		idx := int(vm.readU16(f))
		sub := chunk.Constants[idx].S // the compiler stores the nested chunk's unique name; resolved via a side-table it also emits
		nested := vm.lookupNestedChunk(chunk, sub)
		upvalues := make([]*heap.Upvalue, len(nested.Upvalues))
		for i, desc := range nested.Upvalues {
			if desc.IsLocal {
				upvalues[i] = vm.captureUpvalue(f.BaseSlot + desc.Index)
			} else {
				upvalues[i] = f.Closure.Upvalues[desc.Index]
			}
		}
		closure := heap.NewClosure(nested, upvalues)
		vm.register(closure, closure.Size())
		vm.Push(value.ObjVal(closure))

	case bytecode.OpMakeTuple:
		n := int(vm.readU16(f))
		elems := vm.popN(n)
		t := heap.NewTuple(elems)
		vm.register(t, t.Size())
		vm.Push(value.ObjVal(t))
	case bytecode.OpMakeList:
		n := int(vm.readU16(f))
		elems := vm.popN(n)
		l := heap.FromSlice(elems)
		vm.registerList(l)
		vm.Push(value.ObjVal(l))
	case bytecode.OpMakeArray:
		n := int(vm.readU16(f))
		elems := vm.popN(n)
		a := heap.NewArray(elems)
		vm.register(a, a.Size())
		vm.Push(value.ObjVal(a))
	case bytecode.OpMakeRecord:
		// Operand layout: field count, followed by that many field-name
		// constant-pool indices (one u16 each), emitted right after the
		// opcode. Field values are already on the stack in declaration
		// order, pushed by the operand expressions.
		n := int(vm.readU16(f))
		names := make([]string, n)
		for i := 0; i < n; i++ {
			names[i] = chunk.Constants[vm.readU16(f)].S
		}
		values := vm.popN(n)
		r := heap.NewRecord(names, values)
		vm.register(r, r.Size())
		vm.Push(value.ObjVal(r))
	case bytecode.OpExtendRecord:
		idx := vm.readU16(f)
		name := chunk.Constants[idx].S
		v := vm.Pop()
		base := vm.Pop()
		rec, ok := base.AsObj().(*heap.RecordObj)
		if !ok {
			return &ferr.TypeError{Span: span, Msg: "record update base is not a Record"}
		}
		updated := rec.With(name, v)
		vm.register(updated, updated.Size())
		vm.Push(value.ObjVal(updated))
	case bytecode.OpMakeVariant:
		idx := vm.readU16(f)
		ctor := chunk.Constants[idx].S
		hasPayload := vm.Pop().AsBool()
		var payload value.Value
		if hasPayload {
			payload = vm.Pop()
		}
		variant := heap.NewVariant(ctor, payload, hasPayload)
		vm.register(variant, variant.Size())
		vm.Push(value.ObjVal(variant))

	case bytecode.OpGetField:
		idx := vm.readU16(f)
		name := chunk.Constants[idx].S
		rec, ok := vm.Pop().AsObj().(*heap.RecordObj)
		if !ok {
			return &ferr.TypeError{Span: span, Msg: "field access on non-Record"}
		}
		v, found := rec.Get(name)
		if !found {
			return &ferr.RuntimeError{Span: span, Msg: fmt.Sprintf("record has no field %q", name)}
		}
		vm.Push(v)
	case bytecode.OpTupleGet:
		idx := int(vm.readU16(f))
		tup, ok := vm.Pop().AsObj().(*heap.TupleObj)
		if !ok {
			return &ferr.TypeError{Span: span, Msg: "tuple index on non-Tuple"}
		}
		if idx < 0 || idx >= len(tup.Elements) {
			return &ferr.RuntimeError{Span: span, Msg: "tuple index out of range"}
		}
		vm.Push(tup.Elements[idx])
	case bytecode.OpGetIndex:
		idx := vm.Pop()
		arr, ok := vm.Pop().AsObj().(*heap.ArrayObj)
		if !ok {
			return &ferr.TypeError{Span: span, Msg: "indexing on non-Array"}
		}
		i := int(idx.AsInt())
		if i < 0 || i >= len(arr.Elements) {
			return &ferr.RuntimeError{Span: span, Msg: "array index out of range"}
		}
		vm.Push(arr.Elements[i])
	case bytecode.OpSetIndex:
		v := vm.Pop()
		idx := vm.Pop()
		arr, ok := vm.Pop().AsObj().(*heap.ArrayObj)
		if !ok {
			return &ferr.TypeError{Span: span, Msg: "indexed assignment on non-Array"}
		}
		i := int(idx.AsInt())
		if i < 0 || i >= len(arr.Elements) {
			return &ferr.RuntimeError{Span: span, Msg: "array index out of range"}
		}
		arr.Elements[i] = v
		vm.Push(value.UnitVal())

	case bytecode.OpTagEq:
		// Consumes the tested value (the pattern compiler always reloads a
		// fresh copy of whatever it is testing via OP_LOAD_LOCAL, so these
		// test opcodes need not preserve it underneath their result).
		idx := vm.readU16(f)
		ctor := chunk.Constants[idx].S
		variant, ok := vm.Pop().AsObj().(*heap.VariantObj)
		vm.Push(value.BoolVal(ok && variant.Ctor == ctor))
	case bytecode.OpFieldMatch:
		idx := vm.readU16(f)
		name := chunk.Constants[idx].S
		rec, ok := vm.Pop().AsObj().(*heap.RecordObj)
		if !ok {
			return &ferr.TypeError{Span: span, Msg: "record pattern applied to non-Record"}
		}
		v, _ := rec.Get(name)
		vm.Push(v)
	case bytecode.OpListLen:
		l, ok := vm.Pop().AsObj().(*heap.ListObj)
		if !ok {
			return &ferr.TypeError{Span: span, Msg: "list pattern applied to non-List"}
		}
		vm.Push(value.IntVal(int64(l.Len)))
	case bytecode.OpListHead:
		l := vm.Pop().AsObj().(*heap.ListObj)
		vm.Push(l.Head)
	case bytecode.OpListTail:
		l := vm.Pop().AsObj().(*heap.ListObj)
		vm.Push(value.ObjVal(l.Tail))
	case bytecode.OpListIsNil:
		l, ok := vm.Pop().AsObj().(*heap.ListObj)
		vm.Push(value.BoolVal(ok && l.IsNil()))
	case bytecode.OpVariantPayload:
		variant, ok := vm.Pop().AsObj().(*heap.VariantObj)
		if !ok || !variant.HasPayload {
			vm.Push(value.UnitVal())
		} else {
			vm.Push(variant.Payload)
		}

	case bytecode.OpPrint:
		fmt.Fprintln(vm.Stdout, vm.Pop().Display())
		vm.Push(value.UnitVal())
	case bytecode.OpMatchFail:
		return &ferr.MatchFailure{Span: span, Subject: vm.Pop().Display()}
	case bytecode.OpHalt:
		// no-op marker; the outer loop stops because the frame it belongs
		// to is popped by the OP_RETURN that always precedes it in emitted
		// code.

	default:
		return &ferr.RuntimeError{Span: span, Msg: fmt.Sprintf("unimplemented opcode %s", op)}
	}

	return nil
}

func (vm *VM) readU16(f *Frame) uint16 {
	n := f.Closure.Chunk.ReadU16(f.IP)
	f.IP += 2
	return n
}

func (vm *VM) popN(n int) []value.Value {
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = vm.Pop()
	}
	return out
}

// materializeConst converts a constant-pool entry into a runtime Value,
// allocating a fresh heap.StringObj for string constants (spec.md §3's
// restricted constant pool never holds a live heap handle directly).
func (vm *VM) materializeConst(k bytecode.Const) value.Value {
	switch k.Tag {
	case bytecode.ConstUnit:
		return value.UnitVal()
	case bytecode.ConstBool:
		return value.BoolVal(k.B)
	case bytecode.ConstInt:
		return value.IntVal(k.I)
	case bytecode.ConstFloat:
		return value.FloatVal(k.F)
	case bytecode.ConstString:
		s := heap.NewString(k.S)
		vm.register(s, s.Size())
		return value.ObjVal(s)
	default:
		return value.UnitVal()
	}
}

// lookupNestedChunk resolves a nested function literal's chunk by name from
// the enclosing chunk's side-table of compiled sub-chunks.
func (vm *VM) lookupNestedChunk(chunk *bytecode.Chunk, name string) *bytecode.Chunk {
	for _, sub := range chunk.NestedChunks {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}
