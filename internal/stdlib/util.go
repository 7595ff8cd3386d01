package stdlib

import (
	"fmt"

	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// argInt/argString/argList/argArray/argRecord validate one positional
// argument's tag and return a Go-level value, or a plain error (the VM's
// callNative wraps anything a Native.Fn returns that isn't already a
// *ferr.HostError into one, per spec.md §4.5 step 6) — stdlib functions
// never panic on a bad argument, they report it the way any host boundary
// function would.
func argInt(args []value.Value, i int) (int64, error) {
	if i >= len(args) || !args[i].IsInt() {
		return 0, fmt.Errorf("argument %d: expected Int", i)
	}
	return args[i].AsInt(), nil
}

func argString(args []value.Value, i int) (string, error) {
	if i >= len(args) || !args[i].IsObj() {
		return "", fmt.Errorf("argument %d: expected String", i)
	}
	s, ok := args[i].AsObj().(*heap.StringObj)
	if !ok {
		return "", fmt.Errorf("argument %d: expected String", i)
	}
	return s.Data, nil
}

func argList(args []value.Value, i int) (*heap.ListObj, error) {
	if i >= len(args) || !args[i].IsObj() {
		return nil, fmt.Errorf("argument %d: expected List", i)
	}
	l, ok := args[i].AsObj().(*heap.ListObj)
	if !ok {
		return nil, fmt.Errorf("argument %d: expected List", i)
	}
	return l, nil
}

func argArray(args []value.Value, i int) (*heap.ArrayObj, error) {
	if i >= len(args) || !args[i].IsObj() {
		return nil, fmt.Errorf("argument %d: expected Array", i)
	}
	a, ok := args[i].AsObj().(*heap.ArrayObj)
	if !ok {
		return nil, fmt.Errorf("argument %d: expected Array", i)
	}
	return a, nil
}

func argRecord(args []value.Value, i int) (*heap.RecordObj, error) {
	if i >= len(args) || !args[i].IsObj() {
		return nil, fmt.Errorf("argument %d: expected Record", i)
	}
	r, ok := args[i].AsObj().(*heap.RecordObj)
	if !ok {
		return nil, fmt.Errorf("argument %d: expected Record", i)
	}
	return r, nil
}

func argVariant(args []value.Value, i int) (*heap.VariantObj, error) {
	if i >= len(args) || !args[i].IsObj() {
		return nil, fmt.Errorf("argument %d: expected a variant", i)
	}
	v, ok := args[i].AsObj().(*heap.VariantObj)
	if !ok {
		return nil, fmt.Errorf("argument %d: expected a variant", i)
	}
	return v, nil
}

func argCallable(args []value.Value, i int) (value.Value, error) {
	if i >= len(args) || !args[i].IsObj() {
		return value.Value{}, fmt.Errorf("argument %d: expected a function", i)
	}
	switch args[i].AsObj().(type) {
	case *heap.ClosureObj, *heap.NativeFnObj:
		return args[i], nil
	default:
		return value.Value{}, fmt.Errorf("argument %d: expected a function", i)
	}
}

// callFn re-enters the VM through the caller's CallClosure re-entry point
// when the callable is a user Closure, and through the caller's Call method
// (the VM's curried call protocol, which looks the native up in its
// registry) when it is a NativeFn — e.g. passing `List.length` itself as a
// callback. Both paths run synchronously on the same VM (spec.md §4.5).
func callFn(c hostfn.Caller, fn value.Value, args []value.Value) (value.Value, error) {
	switch callee := fn.AsObj().(type) {
	case *heap.ClosureObj:
		return c.CallClosure(callee, args)
	case *heap.NativeFnObj:
		if vc, ok := c.(interface {
			Call(value.Value, []value.Value) (value.Value, error)
		}); ok {
			return vc.Call(fn, args)
		}
		return value.Value{}, fmt.Errorf("native function %s cannot be used directly as a callback here", callee.Name)
	default:
		return value.Value{}, fmt.Errorf("value is not callable")
	}
}

// newString/newList/newArray/newRecord/newVariant allocate a heap object
// and register it with the caller's heap so it participates in GC like any
// VM-allocated value (spec.md §4.2's "every heap object the mutator can
// reach" contract extends to host-function allocations).
func newString(c hostfn.Caller, s string) value.Value {
	o := heap.NewString(s)
	c.Heap().Register(o, o.Size(), c.RootSet())
	return value.ObjVal(o)
}

func newList(c hostfn.Caller, elems []value.Value) value.Value {
	l := heap.FromSlice(elems)
	for cur := l; cur != nil && !cur.IsNil(); cur = cur.Tail {
		c.Heap().Register(cur, cur.Size(), c.RootSet())
	}
	return value.ObjVal(l)
}

func newArray(c hostfn.Caller, elems []value.Value) value.Value {
	a := heap.NewArray(elems)
	c.Heap().Register(a, a.Size(), c.RootSet())
	return value.ObjVal(a)
}

func newRecord(c hostfn.Caller, names []string, values []value.Value) value.Value {
	r := heap.NewRecord(names, values)
	c.Heap().Register(r, r.Size(), c.RootSet())
	return value.ObjVal(r)
}

func newVariant(c hostfn.Caller, ctor string, payload value.Value, hasPayload bool) value.Value {
	v := heap.NewVariant(ctor, payload, hasPayload)
	c.Heap().Register(v, v.Size(), c.RootSet())
	return value.ObjVal(v)
}

func some(c hostfn.Caller, v value.Value) value.Value { return newVariant(c, "Some", v, true) }
func none(c hostfn.Caller) value.Value                { return newVariant(c, "None", value.Value{}, false) }
func ok(c hostfn.Caller, v value.Value) value.Value    { return newVariant(c, "Ok", v, true) }
func errVariant(c hostfn.Caller, v value.Value) value.Value {
	return newVariant(c, "Err", v, true)
}
