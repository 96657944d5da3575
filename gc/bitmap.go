package gc

import "github.com/tinyjs/corevm/heap"

const bitsPerWord = 64

// Bitmap is an O(1)-per-object visited set over heap.CP, ported from the
// teacher's walker.Bitmap: a []uint64 bit array instead of a map[CP]bool,
// for the same reason the teacher adopted it over its predecessor — one
// bit per object instead of a map bucket per object is both smaller and
// faster for a traversal that touches most of the graph once.
//
// Unlike the teacher's Bitmap, which is sized once from a fixed hive byte
// size, this one grows on demand: the object arena's live slot count
// changes across collections, so there is no single capacity to size for
// up front.
type Bitmap struct {
	bits []uint64
}

// NewBitmap creates an empty bitmap.
func NewBitmap() *Bitmap { return &Bitmap{} }

// Set marks cp as visited.
func (b *Bitmap) Set(cp heap.CP) {
	word := int(cp) / bitsPerWord
	for word >= len(b.bits) {
		b.bits = append(b.bits, 0)
	}
	b.bits[word] |= 1 << (uint(cp) % bitsPerWord)
}

// IsSet reports whether cp has been visited.
func (b *Bitmap) IsSet(cp heap.CP) bool {
	word := int(cp) / bitsPerWord
	if word >= len(b.bits) {
		return false
	}
	return b.bits[word]&(1<<(uint(cp)%bitsPerWord)) != 0
}

// Reset clears every bit, keeping the underlying storage for reuse across
// collections.
func (b *Bitmap) Reset() {
	for i := range b.bits {
		b.bits[i] = 0
	}
}
