package strtab

import (
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/value"
)

// heapStringRecord is a length-prefixed, ref-counted, immutable CESU-8
// byte sequence living in the heap's byte arena (spec §3's "heap string").
type heapStringRecord struct {
	off      int32
	length   int32
	refcount int32
}

// symbolRecord is the dedicated heap-string subtype backing a symbol
// value: a description (itself pool text) and a process-wide unique hash
// (spec §4.3).
type symbolRecord struct {
	desc       value.Value // the description, as produced by NewString
	uniqueHash uint64
	refcount   int32
}

// Pool owns the magic-string table, the heap-string arena, the symbol
// arena, and the intern table that lets content-identical heap strings
// share one allocation.
type Pool struct {
	h *heap.Heap

	strings *heap.Arena[heapStringRecord]
	symbols *heap.Arena[symbolRecord]

	intern map[string]value.StrID // CESU-8 bytes -> heap-string id
	decode *decodeCache

	wellKnown      map[string]value.Value // @@iterator etc.
	nextSymbolHash uint64
}

// NewPool creates a string pool backed by h's byte arena.
func NewPool(h *heap.Heap) *Pool {
	p := &Pool{
		h:         h,
		strings:   heap.NewArena[heapStringRecord](),
		symbols:   heap.NewArena[symbolRecord](),
		intern:    make(map[string]value.StrID),
		decode:    newDecodeCache(defaultDecodeCacheCapacity),
		wellKnown: make(map[string]value.Value),
	}
	p.internWellKnownSymbols()
	return p
}

var wellKnownSymbolNames = []string{
	"Symbol.iterator", "Symbol.asyncIterator", "Symbol.match",
	"Symbol.matchAll", "Symbol.replace", "Symbol.search", "Symbol.species",
	"Symbol.split", "Symbol.hasInstance", "Symbol.isConcatSpreadable",
	"Symbol.unscopables", "Symbol.toStringTag",
}

func (p *Pool) internWellKnownSymbols() {
	for _, name := range wellKnownSymbolNames {
		p.wellKnown[name] = p.newSymbolUnchecked(name)
	}
}

// WellKnownSymbol returns the interned well-known symbol with the given
// description (e.g. "Symbol.iterator"), or the zero Value and false if
// name does not name one.
func (p *Pool) WellKnownSymbol(name string) (value.Value, bool) {
	v, ok := p.wellKnown[name]
	return v, ok
}

// NewString constructs a string Value from Go text, choosing the cheapest
// representation spec §4.3 allows: inline direct storage, a magic-string
// id, or a refcounted heap string (deduplicated via the intern table).
func (p *Pool) NewString(s string) (value.Value, error) {
	if isShortASCII(s) {
		return value.DirectStr(s), nil
	}
	if id, ok := lookupMagic(s); ok {
		return value.Str(id), nil
	}
	return p.newHeapString(encodeCESU8(s))
}

// NewStringFromUTF16LE constructs a string Value from a little-endian
// UTF-16 byte buffer without a BOM, re-encoding it as CESU-8 for storage.
// The bytecode loader does not use it: literal-table strings are read as
// UTF-8 bytes and go through NewString.
func (p *Pool) NewStringFromUTF16LE(data []byte) (value.Value, error) {
	if cached, ok := p.decode.lookup(data); ok {
		return p.NewString(cached)
	}
	text := decodeUTF16LE(data)
	p.decode.store(data, text)
	return p.NewString(text)
}

// NewStringFromUTF16Auto is the embedder-facing counterpart used when the
// byte order and BOM presence of the input are not known in advance.
func (p *Pool) NewStringFromUTF16Auto(data []byte) (value.Value, error) {
	text, err := decodeUTF16Auto(data)
	if err != nil {
		return value.Value{}, err
	}
	return p.NewString(text)
}

func (p *Pool) newHeapString(cesu8 []byte) (value.Value, error) {
	if id, ok := p.intern[string(cesu8)]; ok {
		p.incRefByID(id)
		return value.Str(id), nil
	}

	off, buf, err := p.h.AllocBytes(int32(len(cesu8)))
	if err != nil {
		return value.Value{}, err
	}
	copy(buf, cesu8)

	cp, err := p.strings.Alloc(heapStringRecord{off: off, length: int32(len(cesu8)), refcount: 1})
	if err != nil {
		p.h.FreeBytes(off)
		return value.Value{}, err
	}

	id := encodeID(kindHeap, uint32(cp))
	p.intern[string(cesu8)] = id
	return value.Str(id), nil
}

// NewSymbol constructs a fresh, never-interned symbol with the given
// description text (two calls with the same description produce distinct
// symbols, per ECMAScript semantics).
func (p *Pool) NewSymbol(desc string) (value.Value, error) {
	descVal, err := p.NewString(desc)
	if err != nil {
		return value.Value{}, err
	}
	return p.newSymbolFromValue(descVal), nil
}

func (p *Pool) newSymbolUnchecked(desc string) value.Value {
	descVal, err := p.NewString(desc)
	if err != nil {
		panic("strtab: failed to intern well-known symbol description: " + err.Error())
	}
	return p.newSymbolFromValue(descVal)
}

func (p *Pool) newSymbolFromValue(descVal value.Value) value.Value {
	p.nextSymbolHash++
	cp, err := p.symbols.Alloc(symbolRecord{desc: descVal, uniqueHash: p.nextSymbolHash, refcount: 1})
	if err != nil {
		panic("strtab: symbol arena exhausted: " + err.Error())
	}
	id := encodeID(kindSymbol, uint32(cp))
	return value.Symbol(id)
}

// SymbolDescription returns the description Value of a symbol.
func (p *Pool) SymbolDescription(v value.Value) value.Value {
	kind, payload := decodeID(v.AsSymbol())
	if kind != kindSymbol {
		return value.Undefined()
	}
	rec, ok := p.symbols.Get(heap.CP(payload))
	if !ok {
		return value.Undefined()
	}
	return rec.desc
}

// Text resolves any string Value (direct, magic, or heap-backed) back to
// Go text.
func (p *Pool) Text(v value.Value) string {
	if v.IsDirectString() {
		return string(v.DirectStringBytes())
	}
	kind, payload := decodeID(v.AsString())
	switch kind {
	case kindMagic:
		return magicText(payload)
	case kindHeap:
		rec, ok := p.strings.Get(heap.CP(payload))
		if !ok {
			return ""
		}
		return decodeCESU8(p.h.Bytes.View(rec.off, rec.length))
	default:
		return ""
	}
}

// Equal implements spec invariant P4: two strings compare equal iff their
// content is identical, regardless of construction path or representation.
func (p *Pool) Equal(a, b value.Value) bool {
	if value.SameValue(a, b) {
		return true
	}
	if !a.IsString() || !b.IsString() {
		return false
	}
	return p.Text(a) == p.Text(b)
}

// Concat always produces a fresh flat buffer (spec §4.3: "never a rope
// representation").
func (p *Pool) Concat(a, b value.Value) (value.Value, error) {
	return p.NewString(p.Text(a) + p.Text(b))
}

// IncRef increments a heap string's or symbol's refcount. Magic and direct
// strings are no-ops: they own no heap storage (spec invariant I6 applies
// only to "shared non-GC data").
func (p *Pool) IncRef(v value.Value) {
	if v.IsString() && !v.IsDirectString() {
		p.incRefByID(v.AsString())
		return
	}
	if v.IsSymbol() {
		p.incRefSymbol(v.AsSymbol())
	}
}

func (p *Pool) incRefByID(id value.StrID) {
	kind, payload := decodeID(id)
	if kind != kindHeap {
		return
	}
	if rec, ok := p.strings.Get(heap.CP(payload)); ok {
		rec.refcount++
	}
}

func (p *Pool) incRefSymbol(id value.StrID) {
	kind, payload := decodeID(id)
	if kind != kindSymbol {
		return
	}
	if rec, ok := p.symbols.Get(heap.CP(payload)); ok {
		rec.refcount++
	}
}

// DecRef decrements a heap string's or symbol's refcount, releasing its
// storage immediately when it reaches zero (spec invariant I6).
func (p *Pool) DecRef(v value.Value) {
	if v.IsString() && !v.IsDirectString() {
		p.decRefString(v.AsString())
		return
	}
	if v.IsSymbol() {
		p.decRefSymbol(v.AsSymbol())
	}
}

func (p *Pool) decRefString(id value.StrID) {
	kind, payload := decodeID(id)
	if kind != kindHeap {
		return
	}
	cp := heap.CP(payload)
	rec, ok := p.strings.Get(cp)
	if !ok {
		return
	}
	rec.refcount--
	if rec.refcount > 0 {
		return
	}
	delete(p.intern, string(p.h.Bytes.View(rec.off, rec.length)))
	p.h.FreeBytes(rec.off)
	p.strings.Free(cp)
}

func (p *Pool) decRefSymbol(id value.StrID) {
	kind, payload := decodeID(id)
	if kind != kindSymbol {
		return
	}
	cp := heap.CP(payload)
	rec, ok := p.symbols.Get(cp)
	if !ok {
		return
	}
	rec.refcount--
	if rec.refcount > 0 {
		return
	}
	p.DecRef(rec.desc)
	p.symbols.Free(cp)
}
