package vm

import "github.com/fusabi-lang/fusabi/internal/heap"

// captureUpvalue finds or creates the open upvalue aliasing stack slot,
// inserting new ones into the descending-Location list so later closes only
// need to walk the prefix at or above a given base (grounded on the
// teacher's approach to sharing upvalue cells by slot identity across
// sibling closures, spec.md §4.5).
func (vm *VM) captureUpvalue(slot int) *heap.Upvalue {
	var prev *heap.Upvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Location > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.Location == slot {
		return cur
	}

	created := heap.NewOpenUpvalue(slot)
	created.Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue aliasing a slot at or above
// fromSlot, copying the slot's live value into the cell before the frame
// that owns it is popped.
func (vm *VM) closeUpvalues(fromSlot int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Location >= fromSlot {
		uv := vm.openUpvalues
		uv.Close(vm.Stack[uv.Location])
		vm.openUpvalues = uv.Next
	}
}
