package value

import "testing"

func TestPrimitiveRoundTrip(t *testing.T) {
	if IntVal(42).AsInt() != 42 {
		t.Fatalf("IntVal round-trip: got %d", IntVal(42).AsInt())
	}
	if FloatVal(3.5).AsFloat() != 3.5 {
		t.Fatalf("FloatVal round-trip: got %v", FloatVal(3.5).AsFloat())
	}
	if !BoolVal(true).AsBool() {
		t.Fatalf("BoolVal(true) round-trip failed")
	}
	if BoolVal(false).AsBool() {
		t.Fatalf("BoolVal(false) round-trip failed")
	}
	if !UnitVal().IsUnit() {
		t.Fatalf("UnitVal is not Unit")
	}
}

func TestAsIntPanicsOnWrongTag(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic calling AsInt on a Bool value")
		}
		if _, ok := r.(*TypeError); !ok {
			t.Fatalf("expected *TypeError panic, got %T", r)
		}
	}()
	BoolVal(true).AsInt()
}

func TestEqPrimitives(t *testing.T) {
	if !IntVal(7).Eq(IntVal(7)) {
		t.Fatalf("IntVal(7) should equal IntVal(7)")
	}
	if IntVal(7).Eq(IntVal(8)) {
		t.Fatalf("IntVal(7) should not equal IntVal(8)")
	}
	if IntVal(7).Eq(FloatVal(7)) {
		t.Fatalf("differing tags must never compare equal in Eq")
	}
}

type fakeHeapObject struct {
	tag string
}

func (f *fakeHeapObject) Kind() string       { return f.tag }
func (f *fakeHeapObject) Inspect() string    { return f.tag }
func (f *fakeHeapObject) Equal(o HeapObject) bool {
	other, ok := o.(*fakeHeapObject)
	return ok && other.tag == f.tag
}

func TestEqObjStructural(t *testing.T) {
	a := ObjVal(&fakeHeapObject{tag: "x"})
	b := ObjVal(&fakeHeapObject{tag: "x"})
	if !a.Eq(b) {
		t.Fatalf("distinct heap objects with Equal()==true should compare Eq")
	}
	c := ObjVal(&fakeHeapObject{tag: "y"})
	if a.Eq(c) {
		t.Fatalf("heap objects with Equal()==false should not compare Eq")
	}
}

func TestDisplay(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{UnitVal(), "()"},
		{BoolVal(true), "true"},
		{IntVal(-3), "-3"},
		{FloatVal(2.5), "2.5"},
	}
	for _, tc := range cases {
		if got := tc.v.Display(); got != tc.want {
			t.Errorf("Display() = %q, want %q", got, tc.want)
		}
	}
}
