package object

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

// LazyMaterializer produces a built-in property's value the first time it
// is asked for (spec §4.4's lazy-instantiable properties, e.g. Array.length
// on a prototype, or Function.name/length). It is registered per Kind+name
// by the objectops package, which owns the table of which built-ins are
// lazy; Store only knows how to call one and cache the result.
type LazyMaterializer func(r *Record, key Key) (value.Value, Attrs, bool)

// Store owns the arena of object/environment records and the property
// operations spec §4.4 assigns to the object model. It is the Go analogue
// of the teacher's index.pool combined with its node/subkey value chain:
// one arena, addressed by heap.CP, with a property chain per record.
type Store struct {
	arena     *heap.Arena[Record]
	pool      *strtab.Pool
	lazy      map[Kind]map[string]LazyMaterializer
	headAlloc heap.CP // head of the GC all-objects list (most recently allocated)
}

// NewStore creates an empty object store. pool resolves property-key
// string Values to Go text — needed because a property name's content
// equality (invariant P4) holds regardless of whether it was built as a
// direct, magic, or heap-backed string, and only strtab can answer that.
func NewStore(pool *strtab.Pool) *Store {
	return &Store{
		arena: heap.NewArena[Record](),
		pool:  pool,
		lazy:  make(map[Kind]map[string]LazyMaterializer),
	}
}

// Arena exposes the backing arena for the gc package's mark/sweep traversal.
func (s *Store) Arena() *heap.Arena[Record] { return s.arena }

// RegisterLazy installs a materializer for kind+name. Called once at VM
// bring-up by objectops while wiring each built-in prototype.
func (s *Store) RegisterLazy(kind Kind, name string, m LazyMaterializer) {
	if s.lazy[kind] == nil {
		s.lazy[kind] = make(map[string]LazyMaterializer)
	}
	s.lazy[kind][name] = m
}

// Create allocates a new record and threads it onto the all-objects list.
func (s *Store) Create(r Record) (heap.CP, error) {
	r.next = s.headAlloc
	cp, err := s.arena.Alloc(r)
	if err != nil {
		return heap.NullCP, err
	}
	s.headAlloc = cp
	return cp, nil
}

// Head returns the head of the all-objects list, for the gc package's
// sweep-phase traversal.
func (s *Store) Head() heap.CP { return s.headAlloc }

// Get returns the record named by cp.
func (s *Store) Get(cp heap.CP) (*Record, bool) { return s.arena.Get(cp) }

// SetPrototype installs proto as cp's [[Prototype]], rejecting cycles per
// invariant I5 by walking the would-be chain before committing.
func (s *Store) SetPrototype(cp heap.CP, proto heap.CP) error {
	for p := proto; !p.IsNull(); {
		if p == cp {
			return except.New(except.TypeError, "prototype chain would cycle")
		}
		rec, ok := s.arena.Get(p)
		if !ok {
			break
		}
		p = rec.Proto
	}
	rec, ok := s.arena.Get(cp)
	if !ok {
		return except.New(except.ReferenceError, "object does not exist")
	}
	rec.Proto = proto
	return nil
}

// findIndex returns the index into r.props holding key, using the hashmap
// accelerator once r has crossed hashThreshold entries.
func (s *Store) findIndex(r *Record, key Key) (int, bool) {
	if key.Kind == KeyIndex {
		return -1, false
	}
	if len(r.props) >= hashThreshold {
		if key.Kind == KeyString && r.strIndex != nil {
			if i, ok := r.strIndex[s.pool.Text(key.Str)]; ok && i < len(r.props) {
				return i, true
			}
			return -1, false
		}
		if key.Kind == KeySymbol && r.symIndex != nil {
			if i, ok := r.symIndex[symbolIdentity(key.Str)]; ok && i < len(r.props) {
				return i, true
			}
			return -1, false
		}
	}
	for i := range r.props {
		if s.keyEqual(r.props[i].Key, key) {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) keyEqual(a, b Key) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KeyIndex:
		return a.Index == b.Index
	case KeySymbol:
		return value.SameValue(a.Str, b.Str)
	default:
		return s.pool.Equal(a.Str, b.Str)
	}
}

// symbolIdentity returns a hashable key for a symbol Value's accelerator
// slot. A symbol's StrID is never shared across distinct symbols (strtab
// never interns them), so the id's integer form is already a valid
// identity hash.
func symbolIdentity(v value.Value) uint64 { return uint64(v.AsSymbol()) }

// reindex rebuilds the hashmap accelerator from scratch. Called whenever
// props grows past hashThreshold or shrinks via a splice-delete; spec §4.4
// only requires the accelerator and the chain stay coherent, not that the
// accelerator be updated incrementally.
func (s *Store) reindex(r *Record) {
	if len(r.props) < hashThreshold {
		r.strIndex, r.symIndex = nil, nil
		return
	}
	r.strIndex = make(map[string]int, len(r.props))
	r.symIndex = make(map[uint64]int, len(r.props))
	for i, p := range r.props {
		switch p.Key.Kind {
		case KeyString:
			r.strIndex[s.pool.Text(p.Key.Str)] = i
		case KeySymbol:
			r.symIndex[symbolIdentity(p.Key.Str)] = i
		}
	}
}

// GetOwnProperty returns cp's own property named key, materializing it
// from a registered LazyMaterializer on first access if necessary (spec
// §4.4, invariant I3: a lazy property tombstoned by Delete never comes
// back).
func (s *Store) GetOwnProperty(cp heap.CP, key Key) (Property, bool) {
	r, ok := s.arena.Get(cp)
	if !ok {
		return Property{}, false
	}
	if key.Kind == KeyIndex {
		if r.indexProps != nil {
			if p, ok := r.indexProps[key.Index]; ok {
				return *p, true
			}
		}
		if r.FastElems != nil && int(key.Index) < len(r.FastElems) {
			return Property{
				Key: key, Type: PropData, Value: r.FastElems[key.Index],
				Attrs: Attrs{Writable: true, Enumerable: true, Configurable: true},
			}, true
		}
		return Property{}, false
	}
	if i, ok := s.findIndex(r, key); ok {
		return r.props[i], true
	}
	if key.Kind == KeyString {
		name := s.pool.Text(key.Str)
		if !r.lazyDeleted[name] {
			if table := s.lazy[r.Kind]; table != nil {
				if m, ok := table[name]; ok {
					if v, attrs, ok := m(r, key); ok {
						p := Property{Key: key, Type: PropData, Value: v, Attrs: attrs, lazyKind: name}
						s.defineSlot(r, p)
						return p, true
					}
				}
			}
		}
	}
	return Property{}, false
}

// DefineOwnProperty installs or updates a property per desc's present
// fields, merging against any existing stored property (spec §6's
// OrdinaryDefineOwnProperty, simplified: full reject-on-non-configurable
// semantics live in objectops, which calls this only after validating).
func (s *Store) DefineOwnProperty(cp heap.CP, key Key, desc Descriptor) error {
	r, ok := s.arena.Get(cp)
	if !ok {
		return except.New(except.ReferenceError, "object does not exist")
	}
	if key.Kind == KeyIndex && r.FastElems != nil {
		s.defineFastIndex(r, key.Index, desc)
		return nil
	}
	if key.Kind == KeyIndex {
		if r.indexProps == nil {
			r.indexProps = make(map[uint32]*Property)
		}
		p := r.indexProps[key.Index]
		if p == nil {
			p = &Property{Key: key, Attrs: Attrs{Writable: true, Enumerable: true, Configurable: true}}
			r.indexProps[key.Index] = p
		}
		applyDescriptor(p, desc)
		if key.Index+1 > r.ArrayLength {
			r.ArrayLength = key.Index + 1
		}
		return nil
	}
	if i, ok := s.findIndex(r, key); ok {
		applyDescriptor(&r.props[i], desc)
		return nil
	}
	p := Property{Key: key, Attrs: Attrs{Writable: true, Enumerable: true, Configurable: true}}
	applyDescriptor(&p, desc)
	s.defineSlot(r, p)
	return nil
}

// defineFastIndex writes through a FastArray's dense backing, transitioning
// it to the slow (non-fast) Array representation the first time a write
// would violate the fast-array shape (a hole, a non-default attribute
// combination, or an index past the current dense length) — invariant P6:
// the transition is one-way.
func (s *Store) defineFastIndex(r *Record, idx uint32, desc Descriptor) {
	plain := (desc.Writable == nil || *desc.Writable) &&
		(desc.Enumerable == nil || *desc.Enumerable) &&
		(desc.Configurable == nil || *desc.Configurable) &&
		desc.Getter == nil && desc.Setter == nil

	if plain && int(idx) <= len(r.FastElems) {
		if int(idx) == len(r.FastElems) {
			r.FastElems = append(r.FastElems, value.Undefined())
		}
		if desc.Value != nil {
			r.FastElems[idx] = *desc.Value
		}
		if idx+1 > r.ArrayLength {
			r.ArrayLength = idx + 1
		}
		return
	}
	s.demoteFastArray(r)
	s.defineSlowIndex(r, idx, desc)
}

func (s *Store) defineSlowIndex(r *Record, idx uint32, desc Descriptor) {
	if r.indexProps == nil {
		r.indexProps = make(map[uint32]*Property)
	}
	p := r.indexProps[idx]
	if p == nil {
		p = &Property{Key: IndexKey(idx), Attrs: Attrs{Writable: true, Enumerable: true, Configurable: true}}
		r.indexProps[idx] = p
	}
	applyDescriptor(p, desc)
	if idx+1 > r.ArrayLength {
		r.ArrayLength = idx + 1
	}
}

// demoteFastArray converts a FastArray's dense slice into ordinary
// index-keyed properties, a one-way move per invariant P6.
func (s *Store) demoteFastArray(r *Record) {
	if r.FastElems == nil {
		return
	}
	r.Kind = KindArray
	if r.indexProps == nil {
		r.indexProps = make(map[uint32]*Property, len(r.FastElems))
	}
	for i, v := range r.FastElems {
		r.indexProps[uint32(i)] = &Property{
			Key: IndexKey(uint32(i)), Type: PropData, Value: v,
			Attrs: Attrs{Writable: true, Enumerable: true, Configurable: true},
		}
	}
	r.FastElems = nil
}

func applyDescriptor(p *Property, desc Descriptor) {
	if desc.Value != nil {
		p.Type = PropData
		p.Value = *desc.Value
	}
	if desc.Getter != nil {
		p.Type = PropAccessor
		p.Getter = *desc.Getter
	}
	if desc.Setter != nil {
		p.Type = PropAccessor
		p.Setter = *desc.Setter
	}
	if desc.Writable != nil {
		p.Attrs.Writable = *desc.Writable
	}
	if desc.Enumerable != nil {
		p.Attrs.Enumerable = *desc.Enumerable
	}
	if desc.Configurable != nil {
		p.Attrs.Configurable = *desc.Configurable
	}
}

// defineSlot appends p to r's property chain in creation order and
// refreshes the hashmap accelerator if active.
func (s *Store) defineSlot(r *Record, p Property) {
	r.props = append(r.props, p)
	if len(r.props) >= hashThreshold || r.strIndex != nil || r.symIndex != nil {
		s.reindex(r)
	}
}

// Delete removes cp's own property named key. Lazy properties are
// tombstoned rather than merely removed, so a later lookup does not
// re-materialize them (invariant I3).
func (s *Store) Delete(cp heap.CP, key Key) bool {
	r, ok := s.arena.Get(cp)
	if !ok {
		return false
	}
	if key.Kind == KeyIndex {
		if r.FastElems != nil {
			s.demoteFastArray(r)
		}
		if r.indexProps != nil {
			if _, ok := r.indexProps[key.Index]; ok {
				delete(r.indexProps, key.Index)
				return true
			}
		}
		return false
	}
	if i, ok := s.findIndex(r, key); ok {
		if r.props[i].lazyKind != "" {
			if r.lazyDeleted == nil {
				r.lazyDeleted = make(map[string]bool)
			}
			r.lazyDeleted[r.props[i].lazyKind] = true
		}
		r.props = append(r.props[:i], r.props[i+1:]...)
		s.reindex(r)
		return true
	}
	if key.Kind == KeyString {
		if r.lazyDeleted == nil {
			r.lazyDeleted = make(map[string]bool)
		}
		r.lazyDeleted[s.pool.Text(key.Str)] = true
	}
	return true
}

// OwnPropertyKeys returns cp's own keys in spec-mandated enumeration order
// (P5): ascending integer indices first, then string keys in creation
// order, then symbol keys in creation order.
func (s *Store) OwnPropertyKeys(cp heap.CP) []Key {
	r, ok := s.arena.Get(cp)
	if !ok {
		return nil
	}
	var keys []Key
	if r.FastElems != nil {
		for i := range r.FastElems {
			keys = append(keys, IndexKey(uint32(i)))
		}
	} else if r.indexProps != nil {
		idxs := make([]uint32, 0, len(r.indexProps))
		for idx := range r.indexProps {
			idxs = append(idxs, idx)
		}
		sortUint32(idxs)
		for _, idx := range idxs {
			keys = append(keys, IndexKey(idx))
		}
	}
	for _, p := range r.props {
		if p.Key.Kind == KeyString {
			keys = append(keys, p.Key)
		}
	}
	for _, p := range r.props {
		if p.Key.Kind == KeySymbol {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// --- GC support (consulted only by package gc) ---

// Next returns the all-objects-list successor of cp (spec §4.5's threaded
// list the sweep phase walks).
func (s *Store) Next(cp heap.CP) heap.CP {
	if r, ok := s.arena.Get(cp); ok {
		return r.next
	}
	return heap.NullCP
}

// SetNext rewrites cp's all-objects-list successor. The sweep phase uses
// this to relink survivors into a contiguous list once unmarked records
// are freed — freeing a record zeroes its own `next` field, so the list
// must be rebuilt rather than merely walked, or a freed interior node
// would sever every still-live node behind it.
func (s *Store) SetNext(cp heap.CP, next heap.CP) {
	if r, ok := s.arena.Get(cp); ok {
		r.next = next
	}
}

// SetHead overwrites the all-objects-list head pointer.
func (s *Store) SetHead(cp heap.CP) { s.headAlloc = cp }

// Marked reports cp's mark-phase visited bit.
func (s *Store) Marked(cp heap.CP) bool {
	if r, ok := s.arena.Get(cp); ok {
		return r.marked
	}
	return false
}

// SetMarked sets cp's mark-phase visited bit.
func (s *Store) SetMarked(cp heap.CP, marked bool) {
	if r, ok := s.arena.Get(cp); ok {
		r.marked = marked
	}
}

// Free releases cp's slot back to the arena. Called by the sweep phase on
// every unmarked record.
func (s *Store) Free(cp heap.CP) { s.arena.Free(cp) }

// VisitReferences calls visitObj for every other object-arena record cp
// directly references, and visitStr for every string/symbol Value cp owns
// outright (property keys, and string/symbol-valued properties and
// kind-specific fields). The mark phase uses visitObj to extend its
// frontier; the sweep phase uses visitStr to drop the refcounts an
// unmarked record was holding (spec invariant I6) before the slot is
// freed. Either callback may be nil.
func (s *Store) VisitReferences(cp heap.CP, visitObj func(heap.CP), visitStr func(value.Value)) {
	r, ok := s.arena.Get(cp)
	if !ok {
		return
	}
	obj := func(c heap.CP) {
		if visitObj != nil && !c.IsNull() {
			visitObj(c)
		}
	}
	str := func(v value.Value) {
		if visitStr != nil && (v.IsString() || v.IsSymbol()) {
			visitStr(v)
		}
	}
	val := func(v value.Value) {
		if v.IsObject() || v.IsBigInt() {
			obj(v.AsObject())
			return
		}
		str(v)
	}

	obj(r.Proto)
	obj(r.BoundTarget)
	obj(r.MappedEnv)
	obj(r.Outer)
	obj(r.BackingObject)
	obj(r.ProxyTarget)
	obj(r.ProxyHandler)
	obj(r.ClosureEnv)
	obj(r.SuperConstructor)
	val(r.BoundThis)

	for _, v := range r.BoundArgs {
		val(v)
	}
	for _, v := range r.FastElems {
		val(v)
	}
	for _, p := range r.indexProps {
		val(p.Value)
		val(p.Getter)
		val(p.Setter)
	}
	for _, p := range r.props {
		str(p.Key.Str)
		val(p.Value)
		val(p.Getter)
		val(p.Setter)
	}
	for _, v := range r.MappedNames {
		str(v)
	}
}
