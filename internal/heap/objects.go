package heap

import (
	"fmt"
	"strings"

	"github.com/fusabi-lang/fusabi/internal/value"
)

// header implements the unexported accessor heap.go's headerOf uses to
// reach a Kind's embedded Object without a type switch over every Kind.
func (o *Object) header() *Object { return o }

// StringObj holds an immutable UTF-8 byte sequence (spec.md §3).
type StringObj struct {
	Object
	Data string
}

// NewString allocates a String object. Size is charged as the byte length
// plus a small fixed header overhead.
func NewString(s string) *StringObj {
	return &StringObj{Object: Object{kind: "String"}, Data: s}
}

func (s *StringObj) Kind() string               { return "String" }
func (s *StringObj) Inspect() string             { return s.Data }
func (s *StringObj) Children() []value.Value     { return nil }
func (s *StringObj) Equal(o value.HeapObject) bool {
	other, ok := o.(*StringObj)
	return ok && other.Data == s.Data
}
func (s *StringObj) Size() uintptr { return uintptr(len(s.Data)) + 16 }

// TupleObj holds a fixed-length heterogeneous sequence (spec.md §3).
type TupleObj struct {
	Object
	Elements []value.Value
}

func NewTuple(elems []value.Value) *TupleObj {
	return &TupleObj{Object: Object{kind: "Tuple"}, Elements: elems}
}

func (t *TupleObj) Kind() string           { return "Tuple" }
func (t *TupleObj) Children() []value.Value { return t.Elements }
func (t *TupleObj) Inspect() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.Display()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TupleObj) Equal(o value.HeapObject) bool {
	other, ok := o.(*TupleObj)
	if !ok || len(other.Elements) != len(t.Elements) {
		return false
	}
	for i := range t.Elements {
		if !t.Elements[i].Eq(other.Elements[i]) {
			return false
		}
	}
	return true
}
func (t *TupleObj) Size() uintptr { return uintptr(len(t.Elements))*24 + 16 }

// ListObj is an immutable cons-structured sequence (spec.md §3). Nil
// represents the empty list.
type ListObj struct {
	Object
	Head value.Value
	Tail *ListObj // nil for the empty list
	Len  int
}

// NilList returns a newly allocated empty list (Tail nil, Len 0). Each call
// allocates a fresh cell; no empty-list object is shared between calls.
func NilList() *ListObj {
	return &ListObj{Object: Object{kind: "List"}}
}

// Cons prepends value v onto tail, allocating a new cell (lists are
// immutable; "updates" always allocate, spec.md §3).
func Cons(v value.Value, tail *ListObj) *ListObj {
	length := 1
	if tail != nil {
		length = tail.Len + 1
	}
	return &ListObj{Object: Object{kind: "List"}, Head: v, Tail: tail, Len: length}
}

func (l *ListObj) Kind() string { return "List" }
func (l *ListObj) IsNil() bool  { return l.Tail == nil && l.Len == 0 }
func (l *ListObj) Children() []value.Value {
	if l.IsNil() {
		return nil
	}
	children := []value.Value{l.Head}
	if l.Tail != nil {
		children = append(children, value.ObjVal(l.Tail))
	}
	return children
}
func (l *ListObj) Inspect() string {
	var parts []string
	for cur := l; cur != nil && !cur.IsNil(); cur = cur.Tail {
		parts = append(parts, cur.Head.Display())
	}
	return "[" + strings.Join(parts, "; ") + "]"
}
func (l *ListObj) Equal(o value.HeapObject) bool {
	other, ok := o.(*ListObj)
	if !ok {
		return false
	}
	a, b := l, other
	for {
		aNil, bNil := a == nil || a.IsNil(), b == nil || b.IsNil()
		if aNil != bNil {
			return false
		}
		if aNil {
			return true
		}
		if !a.Head.Eq(b.Head) {
			return false
		}
		a, b = a.Tail, b.Tail
	}
}
func (l *ListObj) Size() uintptr { return 40 }

// ToSlice materializes a list into a Go slice, head-first.
func (l *ListObj) ToSlice() []value.Value {
	var out []value.Value
	for cur := l; cur != nil && !cur.IsNil(); cur = cur.Tail {
		out = append(out, cur.Head)
	}
	return out
}

// FromSlice builds a list from a Go slice, preserving order.
func FromSlice(elems []value.Value) *ListObj {
	list := NilList()
	for i := len(elems) - 1; i >= 0; i-- {
		list = Cons(elems[i], list)
	}
	return list
}

// ArrayObj is the only mutable aggregate (spec.md §3). Elements can alias a
// Closure that in turn captures the array, producing the cycle the GC must
// reclaim (spec.md §8 scenario 5).
type ArrayObj struct {
	Object
	Elements []value.Value
}

func NewArray(elems []value.Value) *ArrayObj {
	return &ArrayObj{Object: Object{kind: "Array"}, Elements: elems}
}

func (a *ArrayObj) Kind() string            { return "Array" }
func (a *ArrayObj) Children() []value.Value { return a.Elements }
func (a *ArrayObj) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.Display()
	}
	return "[|" + strings.Join(parts, "; ") + "|]"
}
func (a *ArrayObj) Equal(o value.HeapObject) bool { return o == value.HeapObject(a) }
func (a *ArrayObj) Size() uintptr                 { return uintptr(len(a.Elements))*24 + 16 }

// RecordObj maps field name to Value, preserving insertion order
// (spec.md §3). Updates (`{ r with f = e }`) allocate a new RecordObj.
type RecordObj struct {
	Object
	Names  []string
	Values []value.Value
}

func NewRecord(names []string, values []value.Value) *RecordObj {
	return &RecordObj{Object: Object{kind: "Record"}, Names: names, Values: values}
}

func (r *RecordObj) Kind() string            { return "Record" }
func (r *RecordObj) Children() []value.Value { return r.Values }
func (r *RecordObj) Get(name string) (value.Value, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Values[i], true
		}
	}
	return value.Value{}, false
}

// With returns a new RecordObj with field name set to v, allocating fresh
// backing slices (records are immutable).
func (r *RecordObj) With(name string, v value.Value) *RecordObj {
	names := make([]string, len(r.Names))
	copy(names, r.Names)
	values := make([]value.Value, len(r.Values))
	copy(values, r.Values)
	for i, n := range names {
		if n == name {
			values[i] = v
			return NewRecord(names, values)
		}
	}
	return NewRecord(append(names, name), append(values, v))
}
func (r *RecordObj) Inspect() string {
	parts := make([]string, len(r.Names))
	for i, n := range r.Names {
		parts[i] = fmt.Sprintf("%s = %s", n, r.Values[i].Display())
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}
func (r *RecordObj) Equal(o value.HeapObject) bool {
	other, ok := o.(*RecordObj)
	if !ok || len(other.Names) != len(r.Names) {
		return false
	}
	for i, n := range r.Names {
		ov, found := other.Get(n)
		if !found || !ov.Eq(r.Values[i]) {
			return false
		}
	}
	return true
}
func (r *RecordObj) Size() uintptr { return uintptr(len(r.Names))*32 + 16 }

// VariantObj is a discriminated-union value: a constructor tag and an
// optional payload (spec.md §3).
type VariantObj struct {
	Object
	Ctor    string
	Payload value.Value
	HasPayload bool
}

func NewVariant(ctor string, payload value.Value, hasPayload bool) *VariantObj {
	return &VariantObj{Object: Object{kind: "Variant"}, Ctor: ctor, Payload: payload, HasPayload: hasPayload}
}

func (v *VariantObj) Kind() string { return "Variant" }
func (v *VariantObj) Children() []value.Value {
	if v.HasPayload {
		return []value.Value{v.Payload}
	}
	return nil
}
func (v *VariantObj) Inspect() string {
	if v.HasPayload {
		return v.Ctor + " " + v.Payload.Display()
	}
	return v.Ctor
}
func (v *VariantObj) Equal(o value.HeapObject) bool {
	other, ok := o.(*VariantObj)
	if !ok || other.Ctor != v.Ctor || other.HasPayload != v.HasPayload {
		return false
	}
	if !v.HasPayload {
		return true
	}
	return v.Payload.Eq(other.Payload)
}
func (v *VariantObj) Size() uintptr { return 40 }
