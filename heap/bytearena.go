package heap

import (
	"sort"

	"github.com/tinyjs/corevm/except"
)

// minByteBlock is the smallest span the byte arena will track as a
// reusable free block; a remainder smaller than this after a split is left
// attached to its neighbor instead of fragmenting further. Mirrors the
// teacher's minCellSize floor in alloc.fastalloc.go, which exists because
// the registry cell format has an 8-byte minimum; here the floor exists so
// split remainders are never too small to satisfy any real heap-string
// header.
const minByteBlock = int32(8)

// byteSizeClasses partitions allocation sizes the way
// alloc.ConfigBalanced does: linear 16-byte steps up to 512 bytes (heap
// strings and short bytecode literal blobs dominate this range), then
// exponential growth by 1.5x up to 16 KiB, with everything past that
// served from a single "large" bucket.
var byteSizeClasses = buildByteSizeClasses()

func buildByteSizeClasses() []int32 {
	var classes []int32
	for sz := int32(8); sz <= 512; sz += 16 {
		classes = append(classes, sz)
	}
	for sz := int32(512); sz < 16384; {
		classes = append(classes, sz)
		next := int32(float64(sz) * 1.5)
		if next <= sz {
			next = sz + 1
		}
		sz = next
	}
	classes = append(classes, 16384)
	return classes
}

// classIndex returns the index of the smallest size class that can hold n
// bytes, or len(byteSizeClasses) for the large bucket.
func classIndex(n int32) int {
	idx := sort.Search(len(byteSizeClasses), func(i int) bool {
		return byteSizeClasses[i] >= n
	})
	return idx
}

func align8(n int32) int32 {
	return (n + 7) &^ 7
}

// freeBlock describes a reclaimed, currently-unused byte span.
type freeBlock struct {
	off  int32
	size int32
}

// ByteArena is a segregated-free-list, first-fit allocator over a single
// contiguous []byte region. It is the byte-level analogue of the teacher's
// alloc.FastAllocator: requests are bucketed by size class, satisfied by
// scanning the free lists from the matching class upward (then the large
// bucket), and split when the found block
// is larger than needed. Unlike FastAllocator, coalescing here is done by
// a full offset-sort merge on Free rather than maintained incrementally via
// byOff/endIdx maps — an acceptable simplification given the heap sizes
// (tens to hundreds of KiB) this VM targets; see DESIGN.md.
type ByteArena struct {
	buf  []byte
	used int32 // bump-allocation watermark into buf for never-yet-carved space

	classes [][]freeBlock // free blocks bucketed by classIndex(size)
	large   []freeBlock   // free blocks at or above the largest size class

	live map[int32]int32 // off -> size, for every currently allocated span
}

// NewByteArena creates a byte arena backed by a freshly allocated region of
// the given size. size is rounded down to a multiple of 8 to preserve the
// 8-byte alignment invariant spec §3 assumes for compressed-pointer math.
func NewByteArena(size int32) *ByteArena {
	size = size &^ 7
	return &ByteArena{
		buf:     make([]byte, size),
		classes: make([][]freeBlock, len(byteSizeClasses)),
		live:    make(map[int32]int32),
	}
}

// Len reports the total capacity of the arena in bytes.
func (b *ByteArena) Len() int32 { return int32(len(b.buf)) }

// Used reports the number of bytes currently allocated to live spans.
func (b *ByteArena) Used() int32 {
	var total int32
	for _, sz := range b.live {
		total += sz
	}
	return total
}

// Alloc reserves n bytes and returns the region's starting offset together
// with a slice viewing it directly (no copy). The backing buffer is never
// reallocated, so the slice stays valid until the span is freed.
func (b *ByteArena) Alloc(n int32) (int32, []byte, error) {
	n = align8(n)
	if n < minByteBlock {
		n = minByteBlock
	}

	if off, ok := b.takeFromFreeList(n); ok {
		b.live[off] = n
		return off, b.buf[off : off+n], nil
	}

	if b.used+n > int32(len(b.buf)) {
		return 0, nil, except.ErrOutOfMemory
	}
	off := b.used
	b.used += n
	b.live[off] = n
	return off, b.buf[off : off+n], nil
}

// takeFromFreeList finds a free block of at least n bytes, removes it from
// its bucket, splits off any usable remainder back into the free lists,
// and returns the block's offset.
func (b *ByteArena) takeFromFreeList(n int32) (int32, bool) {
	for c := classIndex(n); c < len(b.classes); c++ {
		if off, size, ok := popFirstFit(&b.classes[c], n); ok {
			b.spliceRemainder(off, size, n)
			return off, true
		}
	}
	if off, size, ok := popFirstFit(&b.large, n); ok {
		b.spliceRemainder(off, size, n)
		return off, true
	}
	return 0, false
}

func popFirstFit(list *[]freeBlock, n int32) (int32, int32, bool) {
	for i, blk := range *list {
		if blk.size >= n {
			last := len(*list) - 1
			(*list)[i] = (*list)[last]
			*list = (*list)[:last]
			return blk.off, blk.size, true
		}
	}
	return 0, 0, false
}

func (b *ByteArena) spliceRemainder(off, size, taken int32) {
	if rem := size - taken; rem >= minByteBlock {
		b.insertFree(freeBlock{off: off + taken, size: rem})
	}
}

func (b *ByteArena) insertFree(blk freeBlock) {
	c := classIndex(blk.size)
	if c < len(b.classes) {
		b.classes[c] = append(b.classes[c], blk)
		return
	}
	b.large = append(b.large, blk)
}

// Free releases the span starting at off. It is a no-op if off does not
// name a currently live span (double-free protection mirrors Arena.Free).
func (b *ByteArena) Free(off int32) {
	size, ok := b.live[off]
	if !ok {
		return
	}
	delete(b.live, off)
	b.insertFree(freeBlock{off: off, size: size})
	b.coalesce()
}

// coalesce merges adjacent free blocks across every bucket. Run after every
// Free: collect all free blocks, sort by offset, merge runs of touching
// spans, and redistribute the merged result back into size-class buckets.
func (b *ByteArena) coalesce() {
	var all []freeBlock
	for _, list := range b.classes {
		all = append(all, list...)
	}
	all = append(all, b.large...)
	if len(all) < 2 {
		return
	}
	sort.Slice(all, func(i, j int) bool { return all[i].off < all[j].off })

	merged := all[:0:0]
	cur := all[0]
	for _, blk := range all[1:] {
		if cur.off+cur.size == blk.off {
			cur.size += blk.size
			continue
		}
		merged = append(merged, cur)
		cur = blk
	}
	merged = append(merged, cur)

	for i := range b.classes {
		b.classes[i] = b.classes[i][:0]
	}
	b.large = b.large[:0]
	for _, blk := range merged {
		b.insertFree(blk)
	}
}

// Bytes returns the full backing slice, for read-only inspection (e.g. a
// --mem-stats dump). The arena never reallocates it.
func (b *ByteArena) Bytes() []byte { return b.buf }

// View returns the n-byte slice starting at off, for reading a
// previously-allocated span back.
func (b *ByteArena) View(off, n int32) []byte {
	return b.buf[off : off+n]
}
