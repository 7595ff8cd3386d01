// Package heap implements the GC heap that owns every heap-resident Value
// variant (spec.md §4.2): a stop-the-world, non-moving mark-and-sweep
// allocator. No example in the retrieval pack hand-rolls a garbage
// collector — the teacher and its siblings all either embed a
// managed-language evaluator or lean on Go's own collector for Go-level
// objects — so this package is built directly from spec.md §4.2 and the
// "arenas+indices, not cycles" guidance in §9, rather than grounded on a
// pack file. See DESIGN.md.
package heap

import "github.com/fusabi-lang/fusabi/internal/value"

// MinThreshold is the smallest GC trigger threshold (spec.md §4.2).
const MinThreshold = 1 << 20 // 1 MiB

// Object is a GC-managed heap object: a type tag, a mark bit, and a set of
// Value children the mark phase must trace into. Each Kind (String, Tuple,
// List, Array, Record, Variant, Closure, NativeFn) embeds Object by value and
// implements value.HeapObject plus Children().
type Object struct {
	marked bool
	kind   string
	size   uintptr // approximate bytes charged against the allocation budget
}

// Kind returns the heap-level type name.
func (o *Object) Kind() string { return o.kind }

// Traceable is implemented by every heap-resident payload so the collector
// can discover outgoing Value references during the mark phase.
type Traceable interface {
	value.HeapObject
	Children() []value.Value
}

// Heap owns every allocated heap object and runs mark-and-sweep collection.
// It is not safe for concurrent use — spec.md §5 mandates single-threaded
// execution per Engine, so the heap takes no internal locks.
type Heap struct {
	objects   []Traceable // all live+dead-pending-sweep allocations
	allocated uintptr     // bytes_allocated
	threshold uintptr
	autoGC    bool
	collections int
}

// New creates an empty heap with automatic collection enabled.
func New() *Heap {
	return &Heap{
		threshold: MinThreshold,
		autoGC:    true,
	}
}

// SetThreshold overrides the starting collection threshold (Config's
// GCThresholdBytes in pkg/fusabi). A zero value is ignored.
func (h *Heap) SetThreshold(bytes uintptr) {
	if bytes > 0 {
		h.threshold = bytes
	}
}

// DisableAuto turns off the automatic collection trigger (debug/bench mode,
// spec.md §4.2: "a host may disable automatic collection").
func (h *Heap) DisableAuto() { h.autoGC = false }

// EnableAuto turns automatic collection back on.
func (h *Heap) EnableAuto() { h.autoGC = true }

// BytesAllocated reports the current allocation pressure.
func (h *Heap) BytesAllocated() uintptr { return h.allocated }

// LiveObjects reports the number of objects the heap currently owns
// (used by GC tests asserting live-count deltas, spec.md §8 scenario 5).
func (h *Heap) LiveObjects() int { return len(h.objects) }

// Register adopts a newly-constructed heap object into the arena, charges
// its size against the allocation budget, and (if automatic collection is
// enabled and the heap is over threshold) triggers a synchronous collection
// using the supplied roots. Register must be called with every Value the
// mutator can reach reachable from roots — the VM calls this immediately
// after constructing each heap object, before it could be clobbered by a
// nested allocation (spec.md §4.2 "Contract with the VM").
func (h *Heap) Register(obj Traceable, size uintptr, roots func() []value.Value) {
	h.objects = append(h.objects, obj)
	h.allocated += size
	if hdr := headerOf(obj); hdr != nil {
		hdr.size = size
	}
	if h.autoGC && h.allocated > h.threshold {
		h.Collect(roots())
	}
}

// Collect runs one full mark-and-sweep cycle rooted at roots.
func (h *Heap) Collect(roots []value.Value) {
	h.mark(roots)
	h.sweep()
	h.collections++
	h.threshold = h.allocated * 2
	if h.threshold < MinThreshold {
		h.threshold = MinThreshold
	}
}

// Collections reports how many completed GC cycles this heap has run.
func (h *Heap) Collections() int { return h.collections }

// mark seeds an explicit work queue with roots (iterative, not recursive,
// so arbitrarily deep structures never blow the Go call stack) and marks
// every transitively-reachable object.
func (h *Heap) mark(roots []value.Value) {
	var queue []value.Value
	queue = append(queue, roots...)

	seen := make(map[Traceable]bool)

	for len(queue) > 0 {
		v := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if !v.IsObj() {
			continue
		}
		ho := v.AsObj()
		tr, ok := ho.(Traceable)
		if !ok || ho == nil {
			continue
		}
		if seen[tr] {
			continue
		}
		seen[tr] = true
		markObject(tr)
		queue = append(queue, tr.Children()...)
	}
}

func markObject(t Traceable) {
	if o := headerOf(t); o != nil {
		o.marked = true
	}
}

// headerOf extracts the embedded Object header via the header() method
// every Kind gets by embedding Object.
func headerOf(t Traceable) *Object {
	if h, ok := t.(interface{ header() *Object }); ok {
		return h.header()
	}
	return nil
}

// sweep frees every unmarked object and clears the mark bit on survivors
// (spec.md §4.2 invariant: "After sweep, every surviving object has mark
// bit clear").
func (h *Heap) sweep() {
	survivors := h.objects[:0]
	var freedBytes uintptr
	for _, obj := range h.objects {
		hdr := headerOf(obj)
		if hdr == nil {
			survivors = append(survivors, obj)
			continue
		}
		if hdr.marked {
			hdr.marked = false
			survivors = append(survivors, obj)
		} else {
			freedBytes += hdr.size
		}
	}
	h.objects = survivors
	if freedBytes > h.allocated {
		h.allocated = 0
	} else {
		h.allocated -= freedBytes
	}
}
