package heap

// DefaultByteArenaSize is a representative ROM/RAM-constrained default: 64
// KiB, the lower bound of spec §1's target device class.
const DefaultByteArenaSize = 64 * 1024

// ExhaustionHandler is invoked when a byte-arena allocation fails. It
// should run a GC pass (or otherwise reclaim space) and report whether
// enough room was freed to make retrying worthwhile. The heap package
// itself never triggers a GC — vm.NewContext installs the handler, which
// runs a gc.Collector pass — and that
// keeps this package, the lowest in the dependency order, free of any
// reference to the collector it serves (spec §7: "GC errors are impossible
// by construction; GC never allocates on its own").
type ExhaustionHandler func() bool

// Heap is the single owner of the byte arena backing heap strings and
// compiled-code blobs. Object arenas (one per object/lex-env record type)
// are separate Arena[T] instances owned by the object package, since their
// element type is defined there; Heap only owns the byte-granular region
// because that is the one resource every layer above it shares.
type Heap struct {
	Bytes *ByteArena

	onExhausted ExhaustionHandler
}

// New creates a Heap with a byte arena of the given size.
func New(byteArenaSize int32) *Heap {
	if byteArenaSize <= 0 {
		byteArenaSize = DefaultByteArenaSize
	}
	return &Heap{Bytes: NewByteArena(byteArenaSize)}
}

// NewWithMmapBacking creates a Heap whose byte arena is backed by a
// file-mapped region at path instead of a plain Go slice (see
// NewByteArenaMmap). The returned close func unmaps the region and must be
// called once the Heap is no longer in use; callers that don't need this
// (the common case) should use New instead.
func NewWithMmapBacking(path string, byteArenaSize int32) (*Heap, func() error, error) {
	if byteArenaSize <= 0 {
		byteArenaSize = DefaultByteArenaSize
	}
	arena, close, err := NewByteArenaMmap(path, byteArenaSize)
	if err != nil {
		return nil, nil, err
	}
	return &Heap{Bytes: arena}, close, nil
}

// SetExhaustionHandler installs the callback run when a byte allocation
// fails. Only one handler is supported; installing a new one replaces the
// old, matching the single-VM-context ownership model of spec §9.
func (h *Heap) SetExhaustionHandler(fn ExhaustionHandler) {
	h.onExhausted = fn
}

// AllocBytes reserves n bytes, retrying once via the exhaustion handler (if
// one is installed) after the first failure — this is the GC trigger path
// named in spec §4.1: "Exhaustion triggers a GC; persistent exhaustion
// after GC raises an OutOfMemory fatal."
func (h *Heap) AllocBytes(n int32) (int32, []byte, error) {
	off, buf, err := h.Bytes.Alloc(n)
	if err == nil {
		return off, buf, nil
	}
	if h.onExhausted != nil && h.onExhausted() {
		return h.Bytes.Alloc(n)
	}
	return 0, nil, err
}

// FreeBytes releases a previously allocated byte span.
func (h *Heap) FreeBytes(off int32) {
	h.Bytes.Free(off)
}

// Stats summarizes byte-arena occupancy.
type Stats struct {
	Capacity int32
	Used     int32
}

// Stats reports current byte-arena occupancy.
func (h *Heap) Stats() Stats {
	return Stats{Capacity: h.Bytes.Len(), Used: h.Bytes.Used()}
}
