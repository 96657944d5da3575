package heap

// CP is a compressed pointer: a 16-bit handle to a heap-resident record.
//
// The zero value, NullCP, denotes the absence of a reference. Unlike a
// native pointer, a CP is meaningless outside the Heap that issued it and
// carries no type information of its own — the object arena's slot header
// supplies the kind tag.
type CP uint16

// NullCP is the sentinel compressed pointer; it never names a live record.
const NullCP CP = 0

// IsNull reports whether cp is the null handle.
func (cp CP) IsNull() bool { return cp == NullCP }

// maxObjectSlots bounds the object arena so a CP always fits in 16 bits
// (slot index 0 is reserved for NullCP, so valid indices are 1..maxObjectSlots-1).
const maxObjectSlots = 1 << 16
