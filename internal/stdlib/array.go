package stdlib

import (
	"fmt"

	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// arrayEntries covers the mutable fixed-size Array spec.md §3 distinguishes
// from the persistent List: get/set/length operate in place on the shared
// ArrayObj handle rather than allocating a new structure.
func arrayEntries() []entry {
	return []entry{
		{"make", hostfn.Native{Name: "Array.make", Arity: 2, Fn: arrayMake}},
		{"get", hostfn.Native{Name: "Array.get", Arity: 2, Fn: arrayGet}},
		{"set", hostfn.Native{Name: "Array.set", Arity: 3, Fn: arraySet}},
		{"length", hostfn.Native{Name: "Array.length", Arity: 1, Fn: arrayLength}},
		{"toList", hostfn.Native{Name: "Array.toList", Arity: 1, Fn: arrayToList}},
		{"ofList", hostfn.Native{Name: "Array.ofList", Arity: 1, Fn: arrayOfList}},
	}
}

func arrayMake(c hostfn.Caller, args []value.Value) (value.Value, error) {
	n, err := argInt(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	if n < 0 {
		return value.Value{}, fmt.Errorf("Array.make: negative length")
	}
	fill := args[1]
	elems := make([]value.Value, n)
	for i := range elems {
		elems[i] = fill
	}
	return newArray(c, elems), nil
}

func arrayGet(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	a, err := argArray(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	i, err := argInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	if i < 0 || int(i) >= len(a.Elements) {
		return value.Value{}, fmt.Errorf("Array.get: index %d out of bounds (length %d)", i, len(a.Elements))
	}
	return a.Elements[i], nil
}

func arraySet(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	a, err := argArray(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	i, err := argInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	if i < 0 || int(i) >= len(a.Elements) {
		return value.Value{}, fmt.Errorf("Array.set: index %d out of bounds (length %d)", i, len(a.Elements))
	}
	a.Elements[i] = args[2]
	return value.UnitVal(), nil
}

func arrayLength(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	a, err := argArray(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.IntVal(int64(len(a.Elements))), nil
}

func arrayToList(c hostfn.Caller, args []value.Value) (value.Value, error) {
	a, err := argArray(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return newList(c, append([]value.Value(nil), a.Elements...)), nil
}

func arrayOfList(c hostfn.Caller, args []value.Value) (value.Value, error) {
	lst, err := argList(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return newArray(c, lst.ToSlice()), nil
}
