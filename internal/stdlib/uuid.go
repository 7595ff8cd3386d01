package stdlib

import (
	"github.com/google/uuid"

	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// uuidEntries wraps google/uuid's v4 generator and string-form validator.
func uuidEntries() []entry {
	return []entry{
		{"new", hostfn.Native{Name: "Uuid.new", Arity: 0, Fn: uuidNew}},
		{"isValid", hostfn.Native{Name: "Uuid.isValid", Arity: 1, Fn: uuidIsValid}},
	}
}

func uuidNew(c hostfn.Caller, _ []value.Value) (value.Value, error) {
	return newString(c, uuid.NewString()), nil
}

func uuidIsValid(_ hostfn.Caller, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	_, parseErr := uuid.Parse(s)
	return value.BoolVal(parseErr == nil), nil
}
