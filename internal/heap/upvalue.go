package heap

import "github.com/fusabi-lang/fusabi/internal/value"

// Upvalue is a shared reference cell a closure captures from an enclosing
// scope (spec.md §4.5). While Location >= 0 it is "open": it aliases the
// owning frame's stack slot at that index, and reads/writes go through the
// VM's stack. Once the owning frame returns, the VM "closes" it by copying
// the slot's current value into Closed and setting Location to -1;
// thereafter the upvalue owns that value independently. Sibling closures
// created in the same scope share the same *Upvalue by slot identity, so
// mutations through one are visible through the other while still open.
type Upvalue struct {
	Location int // stack index while open; -1 once closed
	Closed   value.Value
	Next     *Upvalue // intrusive list link used by the VM's open-upvalues chain, sorted by Location
}

// NewOpenUpvalue creates an upvalue aliasing stack slot at the given index.
func NewOpenUpvalue(stackIndex int) *Upvalue {
	return &Upvalue{Location: stackIndex}
}

// IsOpen reports whether this upvalue still aliases a live stack slot.
func (u *Upvalue) IsOpen() bool { return u.Location >= 0 }

// Close detaches the upvalue from the stack, freezing v as its owned value.
func (u *Upvalue) Close(v value.Value) {
	u.Closed = v
	u.Location = -1
}
