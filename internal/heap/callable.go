package heap

import (
	"fmt"
	"strings"

	"github.com/fusabi-lang/fusabi/internal/bytecode"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// ClosureObj pairs a compiled function body with the upvalue cells it
// captured at creation time (spec.md §3: "Closure: chunk reference, upvalue
// vector, arity, applied-args vector"). AppliedArgs accumulates arguments
// from partial application (spec.md §4.4 currying): calling a closure with
// fewer than Arity args returns a new ClosureObj over the same Chunk and
// Upvalues with AppliedArgs extended, rather than mutating this one.
type ClosureObj struct {
	Object
	Chunk       *bytecode.Chunk
	Upvalues    []*Upvalue
	AppliedArgs []value.Value
}

func NewClosure(chunk *bytecode.Chunk, upvalues []*Upvalue) *ClosureObj {
	return &ClosureObj{Object: Object{kind: "Closure"}, Chunk: chunk, Upvalues: upvalues}
}

// WithMoreArgs returns a new closure sharing this one's Chunk and Upvalues
// with args appended to AppliedArgs, implementing the partial-application
// half of the curried call protocol.
func (c *ClosureObj) WithMoreArgs(args []value.Value) *ClosureObj {
	applied := make([]value.Value, 0, len(c.AppliedArgs)+len(args))
	applied = append(applied, c.AppliedArgs...)
	applied = append(applied, args...)
	return &ClosureObj{Object: c.Object, Chunk: c.Chunk, Upvalues: c.Upvalues, AppliedArgs: applied}
}

// Remaining is how many more arguments this closure needs before it can run.
func (c *ClosureObj) Remaining() int {
	return c.Chunk.Arity - len(c.AppliedArgs)
}

func (c *ClosureObj) Kind() string { return "Closure" }
func (c *ClosureObj) Children() []value.Value {
	children := make([]value.Value, 0, len(c.Upvalues)+len(c.AppliedArgs))
	for _, uv := range c.Upvalues {
		if uv.IsOpen() {
			continue // open upvalues alias live stack slots, already roots via the VM stack
		}
		children = append(children, uv.Closed)
	}
	children = append(children, c.AppliedArgs...)
	return children
}
func (c *ClosureObj) Inspect() string {
	name := c.Chunk.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("<closure %s/%d>", name, c.Chunk.Arity)
}
func (c *ClosureObj) Equal(o value.HeapObject) bool { return o == value.HeapObject(c) }
func (c *ClosureObj) Size() uintptr                 { return uintptr(len(c.Upvalues)+len(c.AppliedArgs))*24 + 32 }

// NativeFnObj is a handle to a host-registered function: its qualified
// name, required arity, and any arguments accumulated by partial
// application (spec.md §3). The implementation itself is resolved by name
// through the VM's host-function registry at call time — this package
// deliberately holds no function pointer so internal/heap never needs to
// import the VM or hostfn packages.
type NativeFnObj struct {
	Object
	Name        string
	Arity       int
	AppliedArgs []value.Value
}

func NewNativeFn(name string, arity int) *NativeFnObj {
	return &NativeFnObj{Object: Object{kind: "NativeFn"}, Name: name, Arity: arity}
}

func (n *NativeFnObj) WithMoreArgs(args []value.Value) *NativeFnObj {
	applied := make([]value.Value, 0, len(n.AppliedArgs)+len(args))
	applied = append(applied, n.AppliedArgs...)
	applied = append(applied, args...)
	return &NativeFnObj{Object: n.Object, Name: n.Name, Arity: n.Arity, AppliedArgs: applied}
}

func (n *NativeFnObj) Remaining() int { return n.Arity - len(n.AppliedArgs) }

func (n *NativeFnObj) Kind() string            { return "NativeFn" }
func (n *NativeFnObj) Children() []value.Value { return n.AppliedArgs }
func (n *NativeFnObj) Inspect() string {
	parts := make([]string, len(n.AppliedArgs))
	for i, a := range n.AppliedArgs {
		parts[i] = a.Display()
	}
	if len(parts) == 0 {
		return fmt.Sprintf("<native %s/%d>", n.Name, n.Arity)
	}
	return fmt.Sprintf("<native %s/%d applied(%s)>", n.Name, n.Arity, strings.Join(parts, ", "))
}
func (n *NativeFnObj) Equal(o value.HeapObject) bool { return o == value.HeapObject(n) }
func (n *NativeFnObj) Size() uintptr                 { return uintptr(len(n.AppliedArgs))*24 + 32 }
