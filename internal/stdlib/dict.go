package stdlib

import (
	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// dictEntries implements a persistent string-keyed Dict directly on top of
// heap.RecordObj: a dict and a record are both "a list of (name, value)
// pairs, copied on update" (internal/heap/objects.go's
// RecordObj.With already gives us the copy-on-write field-replace a
// persistent map needs), so Dict.set is just RecordObj.With and Dict.get is
// RecordObj.Get — no separate HAMT, no pack grounding for this one (see
// DESIGN.md).
func dictEntries() []entry {
	return []entry{
		{"empty", hostfn.Native{Name: "Dict.empty", Arity: 0, Fn: dictEmpty}},
		{"set", hostfn.Native{Name: "Dict.set", Arity: 3, Fn: dictSet}},
		{"get", hostfn.Native{Name: "Dict.get", Arity: 2, Fn: dictGet}},
		{"containsKey", hostfn.Native{Name: "Dict.containsKey", Arity: 2, Fn: dictContainsKey}},
		{"keys", hostfn.Native{Name: "Dict.keys", Arity: 1, Fn: dictKeys}},
	}
}

func dictEmpty(c hostfn.Caller, _ []value.Value) (value.Value, error) {
	return newRecord(c, nil, nil), nil
}

func dictSet(c hostfn.Caller, args []value.Value) (value.Value, error) {
	d, err := argRecord(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	key, err := argString(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	updated := d.With(key, args[2])
	c.Heap().Register(updated, updated.Size(), c.RootSet())
	return value.ObjVal(updated), nil
}

func dictGet(c hostfn.Caller, args []value.Value) (value.Value, error) {
	d, err := argRecord(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	key, err := argString(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	v, found := d.Get(key)
	if !found {
		return none(c), nil
	}
	return some(c, v), nil
}

func dictContainsKey(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	d, err := argRecord(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	key, err := argString(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	_, found := d.Get(key)
	return value.BoolVal(found), nil
}

func dictKeys(c hostfn.Caller, args []value.Value) (value.Value, error) {
	d, err := argRecord(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	out := make([]value.Value, len(d.Names))
	for i, name := range d.Names {
		out[i] = newString(c, name)
	}
	return newList(c, out), nil
}
