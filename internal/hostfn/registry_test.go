package hostfn

import (
	"testing"

	"github.com/fusabi-lang/fusabi/internal/value"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(Native{Name: "List.length", Arity: 1, Fn: func(_ Caller, args []value.Value) (value.Value, error) {
		return value.IntVal(0), nil
	}})

	n, ok := r.Lookup("List.length")
	if !ok {
		t.Fatalf("Lookup did not find a function registered under its own name")
	}
	if n.Arity != 1 {
		t.Fatalf("Arity = %d, want 1", n.Arity)
	}

	if _, ok := r.Lookup("List.nonexistent"); ok {
		t.Fatalf("Lookup reported a hit for a name never registered")
	}
}

func TestRegisterOverwritesSameName(t *testing.T) {
	r := NewRegistry()
	r.Register(Native{Name: "dup", Arity: 1})
	r.Register(Native{Name: "dup", Arity: 2})

	n, ok := r.Lookup("dup")
	if !ok {
		t.Fatalf("Lookup did not find the re-registered name")
	}
	if n.Arity != 2 {
		t.Fatalf("Arity = %d, want 2 (second Register should replace the first)", n.Arity)
	}
}

func TestNamesListsEveryRegisteredFunction(t *testing.T) {
	r := NewRegistry()
	r.Register(Native{Name: "a", Arity: 0})
	r.Register(Native{Name: "b", Arity: 0})

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("Names returned %d entries, want 2", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("Names missing an entry: %v", names)
	}
}
