package strtab

import "github.com/tinyjs/corevm/value"

// value.StrID's low 2 bits select which of the string pool's three
// sub-spaces the rest of the id addresses into: the magic table, the heap
// string arena, or the symbol arena. value itself never inspects these
// bits — they are a private strtab encoding, the same way heap.CP's
// address math is private to package heap.
const (
	kindMagic uint32 = iota
	kindHeap
	kindSymbol
)

const idKindBits = 2
const idKindMask = (uint32(1) << idKindBits) - 1

func encodeID(kind uint32, payload uint32) value.StrID {
	return value.StrID((payload << idKindBits) | (kind & idKindMask))
}

func decodeID(id value.StrID) (kind uint32, payload uint32) {
	u := uint32(id)
	return u & idKindMask, u >> idKindBits
}
