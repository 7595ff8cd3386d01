package stdlib

import (
	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// optionEntries/resultEntries expose the Option<'a>/Result<'a,'e> variant
// constructors and a small set of combinators as module fields, since the
// two types themselves are ordinary VariantObj values the compiler already
// knows how to pattern-match (spec.md §3's Variant value, not a bespoke
// representation).
func optionEntries() []entry {
	return []entry{
		{"some", hostfn.Native{Name: "Option.some", Arity: 1, Fn: optionSome}},
		{"none", hostfn.Native{Name: "Option.none", Arity: 0, Fn: optionNone}},
		{"isSome", hostfn.Native{Name: "Option.isSome", Arity: 1, Fn: optionIsSome}},
		{"map", hostfn.Native{Name: "Option.map", Arity: 2, Fn: optionMap}},
		{"withDefault", hostfn.Native{Name: "Option.withDefault", Arity: 2, Fn: optionWithDefault}},
	}
}

func resultEntries() []entry {
	return []entry{
		{"ok", hostfn.Native{Name: "Result.ok", Arity: 1, Fn: resultOk}},
		{"err", hostfn.Native{Name: "Result.err", Arity: 1, Fn: resultErr}},
		{"isOk", hostfn.Native{Name: "Result.isOk", Arity: 1, Fn: resultIsOk}},
		{"map", hostfn.Native{Name: "Result.map", Arity: 2, Fn: resultMap}},
	}
}

func optionSome(c hostfn.Caller, args []value.Value) (value.Value, error) {
	return some(c, args[0]), nil
}

func optionNone(c hostfn.Caller, _ []value.Value) (value.Value, error) {
	return none(c), nil
}

func optionIsSome(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	v, err := argVariant(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.BoolVal(v.Ctor == "Some"), nil
}

func optionMap(c hostfn.Caller, args []value.Value) (value.Value, error) {
	fn, err := argCallable(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	v, err := argVariant(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	if v.Ctor != "Some" {
		return none(c), nil
	}
	mapped, err := callFn(c, fn, []value.Value{v.Payload})
	if err != nil {
		return value.Value{}, err
	}
	return some(c, mapped), nil
}

func optionWithDefault(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	def := args[0]
	v, err := argVariant(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	if v.Ctor == "Some" {
		return v.Payload, nil
	}
	return def, nil
}

func resultOk(c hostfn.Caller, args []value.Value) (value.Value, error) {
	return ok(c, args[0]), nil
}

func resultErr(c hostfn.Caller, args []value.Value) (value.Value, error) {
	return errVariant(c, args[0]), nil
}

func resultIsOk(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	v, err := argVariant(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.BoolVal(v.Ctor == "Ok"), nil
}

func resultMap(c hostfn.Caller, args []value.Value) (value.Value, error) {
	fn, err := argCallable(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	v, err := argVariant(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	if v.Ctor != "Ok" {
		return errVariant(c, v.Payload), nil
	}
	mapped, err := callFn(c, fn, []value.Value{v.Payload})
	if err != nil {
		return value.Value{}, err
	}
	return ok(c, mapped), nil
}
