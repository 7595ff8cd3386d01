// Package value defines the VM's tagged runtime value (spec.md §3). A Value
// is a small stack-allocated struct: primitive variants (Unit, Bool, Int,
// Float) carry no heap ownership and are copied by value; heap variants
// (String, Tuple, List, Array, Record, Variant, Closure, NativeFn) carry a
// handle into internal/heap and are shared by reference.
package value

import (
	"fmt"
	"math"
)

// Tag identifies which variant a Value holds.
type Tag uint8

const (
	Unit Tag = iota
	Bool
	Int
	Float
	Obj // heap.Object handle — String/Tuple/List/Array/Record/Variant/Closure/NativeFn
)

func (t Tag) String() string {
	switch t {
	case Unit:
		return "Unit"
	case Bool:
		return "Bool"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Obj:
		return "Obj"
	default:
		return "?"
	}
}

// HeapObject is the subset of internal/heap.Object that the value package
// needs, expressed as an interface so internal/value has no import of
// internal/heap (internal/heap depends on internal/value, not vice versa).
type HeapObject interface {
	// Kind returns the heap-level type name ("String", "Tuple", "List",
	// "Array", "Record", "Variant", "Closure", "NativeFn").
	Kind() string
	Inspect() string
	Equal(other HeapObject) bool
}

// Value is the VM's tagged union. Its size is fixed regardless of variant:
// copying a Value is always O(1), even for heap variants (only the handle
// is copied, per spec.md §3's "Primitive variants carry no heap ownership;
// copying is O(1)" and the handle-sharing rule for heap variants).
type Value struct {
	tag   Tag
	data  uint64 // bit pattern for Bool/Int/Float
	heap  HeapObject
}

func UnitVal() Value             { return Value{tag: Unit} }
func BoolVal(b bool) Value       { d := uint64(0); if b { d = 1 }; return Value{tag: Bool, data: d} }
func IntVal(i int64) Value       { return Value{tag: Int, data: uint64(i)} }
func FloatVal(f float64) Value   { return Value{tag: Float, data: math.Float64bits(f)} }
func ObjVal(h HeapObject) Value  { return Value{tag: Obj, heap: h} }

func (v Value) Tag() Tag { return v.tag }

func (v Value) IsUnit() bool  { return v.tag == Unit }
func (v Value) IsBool() bool  { return v.tag == Bool }
func (v Value) IsInt() bool   { return v.tag == Int }
func (v Value) IsFloat() bool { return v.tag == Float }
func (v Value) IsObj() bool   { return v.tag == Obj }

// TypeError is raised by an unchecked accessor when the caller has not
// verified the tag first (spec.md §4.1: "any typed accessor invoked on a
// mismatching tag must fail with TypeError, never return a sentinel").
type TypeError struct {
	Want Tag
	Got  Tag
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: expected %s, got %s", e.Want, e.Got)
}

// AsBool panics with *TypeError if the tag mismatches; the VM recovers this
// at instruction boundaries and converts it into a structured runtime error.
func (v Value) AsBool() bool {
	if v.tag != Bool {
		panic(&TypeError{Want: Bool, Got: v.tag})
	}
	return v.data == 1
}

func (v Value) AsInt() int64 {
	if v.tag != Int {
		panic(&TypeError{Want: Int, Got: v.tag})
	}
	return int64(v.data)
}

func (v Value) AsFloat() float64 {
	if v.tag != Float {
		panic(&TypeError{Want: Float, Got: v.tag})
	}
	return math.Float64frombits(v.data)
}

func (v Value) AsObj() HeapObject {
	if v.tag != Obj {
		panic(&TypeError{Want: Obj, Got: v.tag})
	}
	return v.heap
}

// Truthy is used by JumpIfFalse/JumpIfTrue and the short-circuit logical
// operators; only Bool is truthy-convertible (spec.md §4.3: "strict boolean
// semantics on Bool only").
func (v Value) Truthy() bool {
	return v.AsBool()
}

// Eq is deep-structural equality (spec.md §4.1). Physical (handle) equality
// short-circuits for heap variants; differing tags are never equal, so Int 1
// and Float 1.0 are unequal (the VM's OpEq/OpNe call Eq directly; only its
// ordering opcodes widen Int to Float) — Eq is a strict tag match for the
// two primitive numeric kinds and defers structural recursion to the heap
// object.
func (v Value) Eq(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case Unit:
		return true
	case Bool, Int:
		return v.data == other.data
	case Float:
		return v.data == other.data
	case Obj:
		if v.heap == other.heap {
			return true
		}
		if v.heap == nil || other.heap == nil {
			return false
		}
		return v.heap.Equal(other.heap)
	default:
		return false
	}
}

// Display renders a user-facing representation. Not guaranteed bit-stable
// across implementations (spec.md §4.1).
func (v Value) Display() string {
	switch v.tag {
	case Unit:
		return "()"
	case Bool:
		return fmt.Sprintf("%t", v.data == 1)
	case Int:
		return fmt.Sprintf("%d", int64(v.data))
	case Float:
		return fmt.Sprintf("%g", math.Float64frombits(v.data))
	case Obj:
		if v.heap == nil {
			return "<nil>"
		}
		return v.heap.Inspect()
	default:
		return "<?>"
	}
}
