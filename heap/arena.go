package heap

import "github.com/tinyjs/corevm/except"

// Arena is a growable slot table addressed by CP. It holds one T per live
// record and recycles released slots before growing, the same reuse
// discipline as the teacher's alloc.FastAllocator.freeCellPool — simplified
// to uniform, fixed-size Go-native slots since object headers here are not
// variable-length byte cells (spec §9 design notes: "wrap the arena in a
// single owner that lends out short-lived borrows").
//
// Slot 0 is permanently reserved so the zero CP can mean "null" throughout
// the system.
type Arena[T any] struct {
	slots []T
	live  []bool
	free  []CP
}

// NewArena creates an empty arena with slot 0 reserved as the null slot.
func NewArena[T any]() *Arena[T] {
	a := &Arena[T]{
		slots: make([]T, 1, 64),
		live:  make([]bool, 1, 64),
	}
	return a
}

// Alloc stores v in a free slot (or a freshly grown one) and returns its CP.
// It returns except.ErrOutOfMemory once the arena would exceed the 16-bit
// CP address space.
func (a *Arena[T]) Alloc(v T) (CP, error) {
	if n := len(a.free); n > 0 {
		cp := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[cp] = v
		a.live[cp] = true
		return cp, nil
	}
	if len(a.slots) >= maxObjectSlots {
		return NullCP, except.ErrOutOfMemory
	}
	a.slots = append(a.slots, v)
	a.live = append(a.live, true)
	return CP(len(a.slots) - 1), nil
}

// Free releases the slot named by cp, zeroing its contents so it holds no
// stale references past the point the GC (or a refcount) has decided the
// record is dead. A double-free or a free of an already-dead slot is a
// silent no-op: the sweep phase (gc package) and explicit release paths can
// race against each other on the same cp only through a bug elsewhere, and
// this arena does not assume any particular caller discipline.
func (a *Arena[T]) Free(cp CP) {
	if !a.IsLive(cp) {
		return
	}
	a.live[cp] = false
	var zero T
	a.slots[cp] = zero
	a.free = append(a.free, cp)
}

// Get returns a pointer to the slot named by cp for in-place mutation, and
// whether cp currently names a live record. The pointer is only valid
// until the next Free of the same cp; it must never be retained across a
// GC cycle in a form that outlives the record's lifetime.
func (a *Arena[T]) Get(cp CP) (*T, bool) {
	if !a.IsLive(cp) {
		return nil, false
	}
	return &a.slots[cp], true
}

// MustGet is Get without the ok return, for call sites that have already
// established liveness (e.g. immediately after Alloc).
func (a *Arena[T]) MustGet(cp CP) *T {
	return &a.slots[cp]
}

// IsLive reports whether cp names a currently allocated slot.
func (a *Arena[T]) IsLive(cp CP) bool {
	return !cp.IsNull() && int(cp) < len(a.live) && a.live[cp]
}

// Len returns the number of slots ever allocated (including freed ones),
// i.e. one past the highest CP the arena has issued.
func (a *Arena[T]) Len() int { return len(a.slots) }

// Each calls fn once for every currently live slot, in ascending CP order,
// the Go analogue of the teacher's allocator walking its all-cells index by
// offset. fn returning false stops the iteration early.
func (a *Arena[T]) Each(fn func(CP, *T) bool) {
	for i := 1; i < len(a.slots); i++ {
		if !a.live[i] {
			continue
		}
		if !fn(CP(i), &a.slots[i]) {
			return
		}
	}
}

// LiveCount returns the number of currently live slots.
func (a *Arena[T]) LiveCount() int {
	n := 0
	for _, v := range a.live {
		if v {
			n++
		}
	}
	return n
}
