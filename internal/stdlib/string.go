package stdlib

import (
	"strings"

	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

func stringEntries() []entry {
	return []entry{
		{"length", hostfn.Native{Name: "String.length", Arity: 1, Fn: stringLength}},
		{"concat", hostfn.Native{Name: "String.concat", Arity: 2, Fn: stringConcat}},
		{"split", hostfn.Native{Name: "String.split", Arity: 2, Fn: stringSplit}},
		{"join", hostfn.Native{Name: "String.join", Arity: 2, Fn: stringJoin}},
		{"trim", hostfn.Native{Name: "String.trim", Arity: 1, Fn: stringTrim}},
		{"toUpper", hostfn.Native{Name: "String.toUpper", Arity: 1, Fn: stringToUpper}},
		{"toLower", hostfn.Native{Name: "String.toLower", Arity: 1, Fn: stringToLower}},
		{"contains", hostfn.Native{Name: "String.contains", Arity: 2, Fn: stringContains}},
	}
}

func stringLength(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.IntVal(int64(len([]rune(s)))), nil
}

func stringConcat(c hostfn.Caller, args []value.Value) (value.Value, error) {
	a, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	b, err := argString(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	return newString(c, a+b), nil
}

func stringSplit(c hostfn.Caller, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	sep, err := argString(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	parts := strings.Split(s, sep)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = newString(c, p)
	}
	return newList(c, out), nil
}

func stringJoin(c hostfn.Caller, args []value.Value) (value.Value, error) {
	sep, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	lst, err := argList(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	elems := lst.ToSlice()
	parts := make([]string, len(elems))
	for i := range elems {
		s, err := argString(elems, i)
		if err != nil {
			return value.Value{}, err
		}
		parts[i] = s
	}
	return newString(c, strings.Join(parts, sep)), nil
}

func stringTrim(c hostfn.Caller, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return newString(c, strings.TrimSpace(s)), nil
}

func stringToUpper(c hostfn.Caller, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return newString(c, strings.ToUpper(s)), nil
}

func stringToLower(c hostfn.Caller, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return newString(c, strings.ToLower(s)), nil
}

func stringContains(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	sub, err := argString(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	return value.BoolVal(strings.Contains(s, sub)), nil
}
