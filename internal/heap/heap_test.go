package heap

import (
	"testing"

	"github.com/fusabi-lang/fusabi/internal/value"
)

func TestRegisterChargesAllocatedBytes(t *testing.T) {
	h := New()
	h.DisableAuto()

	s := NewString("hello")
	h.Register(s, s.Size(), func() []value.Value { return nil })

	if h.BytesAllocated() != s.Size() {
		t.Fatalf("BytesAllocated = %d, want %d", h.BytesAllocated(), s.Size())
	}
	if h.LiveObjects() != 1 {
		t.Fatalf("LiveObjects = %d, want 1", h.LiveObjects())
	}
}

func TestSetThresholdOverridesDefault(t *testing.T) {
	h := New()
	h.SetThreshold(64)

	s1 := NewString("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	h.Register(s1, s1.Size(), func() []value.Value { return nil })

	if h.Collections() != 1 {
		t.Fatalf("expected a collection to have run once threshold 64 was exceeded, got %d", h.Collections())
	}
}

func TestSetThresholdIgnoresNonPositive(t *testing.T) {
	h := New()
	before := MinThreshold
	h.SetThreshold(0)
	// threshold field is unexported; indirectly confirm via behavior: a
	// tiny allocation under MinThreshold must not trigger a collection.
	s := NewString("x")
	h.Register(s, s.Size(), func() []value.Value { return nil })
	if h.Collections() != 0 {
		t.Fatalf("small allocation under default %d-byte threshold should not collect", before)
	}
}

func TestCollectReclaimsUnreachable(t *testing.T) {
	h := New()
	h.DisableAuto()

	live := NewString("kept")
	h.Register(live, live.Size(), func() []value.Value { return nil })

	garbage := NewString("garbage")
	h.Register(garbage, garbage.Size(), func() []value.Value { return nil })

	if h.LiveObjects() != 2 {
		t.Fatalf("LiveObjects before collect = %d, want 2", h.LiveObjects())
	}

	h.Collect([]value.Value{value.ObjVal(live)})

	if h.LiveObjects() != 1 {
		t.Fatalf("LiveObjects after collect = %d, want 1 (garbage reclaimed)", h.LiveObjects())
	}
	if h.Collections() != 1 {
		t.Fatalf("Collections = %d, want 1", h.Collections())
	}
}

func TestCollectKeepsCyclicButReachableObjects(t *testing.T) {
	// An Array holding a Tuple that (indirectly, through Children) holds the
	// Array back is a reference cycle; both must survive if the Array is a
	// GC root, and both must die together once it isn't (spec.md §8 scenario 5).
	h := New()
	h.DisableAuto()

	arr := NewArray(nil)
	h.Register(arr, arr.Size(), func() []value.Value { return nil })

	tup := NewTuple([]value.Value{value.ObjVal(arr)})
	h.Register(tup, tup.Size(), func() []value.Value { return nil })

	arr.Elements = []value.Value{value.ObjVal(tup)}

	h.Collect([]value.Value{value.ObjVal(arr)})
	if h.LiveObjects() != 2 {
		t.Fatalf("cyclic but rooted pair should both survive, got %d live objects", h.LiveObjects())
	}

	h.Collect(nil)
	if h.LiveObjects() != 0 {
		t.Fatalf("unrooted cyclic pair should both be reclaimed, got %d live objects", h.LiveObjects())
	}
}

func TestRecordWithIsPersistent(t *testing.T) {
	r := NewRecord([]string{"a"}, []value.Value{value.IntVal(1)})
	r2 := r.With("a", value.IntVal(2))

	if v, _ := r.Get("a"); v.AsInt() != 1 {
		t.Fatalf("original record was mutated by With")
	}
	if v, _ := r2.Get("a"); v.AsInt() != 2 {
		t.Fatalf("With did not apply the update")
	}
}

func TestListConsAndEquality(t *testing.T) {
	l1 := FromSlice([]value.Value{value.IntVal(1), value.IntVal(2), value.IntVal(3)})
	l2 := Cons(value.IntVal(1), Cons(value.IntVal(2), Cons(value.IntVal(3), NilList())))

	if !l1.Equal(l2) {
		t.Fatalf("structurally identical lists should be Equal")
	}
	if l1.Len != 3 {
		t.Fatalf("Len = %d, want 3", l1.Len)
	}
}
