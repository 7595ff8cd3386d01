// Package hostfn defines the re-entrant host-function protocol (spec.md
// §4.6): native functions receive the calling VM through a narrow Caller
// interface (so this package never imports internal/vm — internal/vm
// imports this package instead, avoiding a cycle) and may call back into
// Fusabi code via CallClosure, e.g. to invoke a user-supplied predicate
// passed to List.filter.
package hostfn

import (
	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// Caller is the subset of *vm.VM a native function needs: the ability to
// re-enter the VM to invoke a Fusabi closure, and access to the heap for
// allocating result values.
type Caller interface {
	// CallClosure invokes closure with args and runs it to completion,
	// returning its result. It must leave the VM's stack, frame count, and
	// open-upvalue chain exactly as they were before the call (spec.md §4.6
	// boundary invariant); the VM checks this when the native function
	// returns and reports any violation as a HostError.
	CallClosure(closure *heap.ClosureObj, args []value.Value) (value.Value, error)

	// Heap returns the VM's garbage-collected heap, for host functions that
	// allocate new heap objects (strings, lists, records, ...).
	Heap() *heap.Heap

	// RootSet returns the current GC root set, passed through to
	// Heap().Register by host functions that allocate.
	RootSet() func() []value.Value
}

// Native is the signature every registered host function implements.
type Native struct {
	Name  string
	Arity int
	Fn    func(caller Caller, args []value.Value) (value.Value, error)
}

// Registry holds every host function available to running scripts, keyed by
// qualified name (e.g. "List.map", "Http.get").
type Registry struct {
	fns map[string]Native
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Native)}
}

// Register adds or replaces a native function under its qualified name.
func (r *Registry) Register(n Native) {
	r.fns[n.Name] = n
}

// Lookup returns the native function registered under name.
func (r *Registry) Lookup(name string) (Native, bool) {
	n, ok := r.fns[name]
	return n, ok
}

// Names returns every registered qualified name, in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for n := range r.fns {
		names = append(names, n)
	}
	return names
}
