package stdlib

import (
	"fmt"

	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// listEntries covers the cons-list operations SPEC_FULL.md §4.8 names and
// the spec.md §8 scenario 2 re-entrancy case (List.map calling back into a
// user closure for every element).
func listEntries() []entry {
	return []entry{
		{"map", hostfn.Native{Name: "List.map", Arity: 2, Fn: listMap}},
		{"filter", hostfn.Native{Name: "List.filter", Arity: 2, Fn: listFilter}},
		{"fold", hostfn.Native{Name: "List.fold", Arity: 3, Fn: listFold}},
		{"length", hostfn.Native{Name: "List.length", Arity: 1, Fn: listLength}},
		{"head", hostfn.Native{Name: "List.head", Arity: 1, Fn: listHead}},
		{"tail", hostfn.Native{Name: "List.tail", Arity: 1, Fn: listTail}},
		{"rev", hostfn.Native{Name: "List.rev", Arity: 1, Fn: listRev}},
		{"append", hostfn.Native{Name: "List.append", Arity: 2, Fn: listAppend}},
		{"isEmpty", hostfn.Native{Name: "List.isEmpty", Arity: 1, Fn: listIsEmpty}},
	}
}

func listMap(c hostfn.Caller, args []value.Value) (value.Value, error) {
	fn, err := argCallable(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	lst, err := argList(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	elems := lst.ToSlice()
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		mapped, err := callFn(c, fn, []value.Value{e})
		if err != nil {
			return value.Value{}, err
		}
		out[i] = mapped
	}
	return newList(c, out), nil
}

func listFilter(c hostfn.Caller, args []value.Value) (value.Value, error) {
	fn, err := argCallable(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	lst, err := argList(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	var out []value.Value
	for _, e := range lst.ToSlice() {
		keep, err := callFn(c, fn, []value.Value{e})
		if err != nil {
			return value.Value{}, err
		}
		if keep.Truthy() {
			out = append(out, e)
		}
	}
	return newList(c, out), nil
}

func listFold(c hostfn.Caller, args []value.Value) (value.Value, error) {
	fn, err := argCallable(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	acc := args[1]
	lst, err := argList(args, 2)
	if err != nil {
		return value.Value{}, err
	}
	for _, e := range lst.ToSlice() {
		acc, err = callFn(c, fn, []value.Value{acc, e})
		if err != nil {
			return value.Value{}, err
		}
	}
	return acc, nil
}

func listLength(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	lst, err := argList(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.IntVal(int64(lst.Len)), nil
}

func listHead(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	lst, err := argList(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	if lst.IsNil() {
		return value.Value{}, fmt.Errorf("List.head: empty list")
	}
	return lst.Head, nil
}

func listTail(c hostfn.Caller, args []value.Value) (value.Value, error) {
	lst, err := argList(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	if lst.IsNil() {
		return value.Value{}, fmt.Errorf("List.tail: empty list")
	}
	return value.ObjVal(lst.Tail), nil
}

func listRev(c hostfn.Caller, args []value.Value) (value.Value, error) {
	lst, err := argList(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	elems := lst.ToSlice()
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		out[len(elems)-1-i] = e
	}
	return newList(c, out), nil
}

func listAppend(c hostfn.Caller, args []value.Value) (value.Value, error) {
	a, err := argList(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	b, err := argList(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	out := append(a.ToSlice(), b.ToSlice()...)
	return newList(c, out), nil
}

func listIsEmpty(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	lst, err := argList(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.BoolVal(lst.IsNil()), nil
}
