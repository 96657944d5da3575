package object

import "github.com/tinyjs/corevm/value"

// PropType discriminates the four property storage forms spec §3 lists.
type PropType uint8

const (
	PropData PropType = iota
	PropAccessor
	PropBuiltIn  // lazy-instantiable
	PropInternal // hidden from enumeration and from the spec-level property list
)

// Attrs holds the three concrete attribute bits every stored data/accessor
// property carries.
type Attrs struct {
	Writable     bool // data properties only
	Enumerable   bool
	Configurable bool
}

// Descriptor is the "full descriptor record" spec §6 requires for
// DefineOwnProperty: a tri-state (present/absent) view of each field, so a
// partial descriptor only updates the fields it actually names.
type Descriptor struct {
	Value        *value.Value
	Getter       *value.Value
	Setter       *value.Value
	Writable     *bool
	Enumerable   *bool
	Configurable *bool
}

// Property is one stored property pair slot. Spec §3 describes storage as
// a chain of two-slot "property pairs"; that pairing is a C memory-layout
// optimization for the teacher's cell-based format (see DESIGN.md) and is
// not reproduced literally here — Property is simply one entry in the
// Record's property list, which a Go slice already stores at the density
// a pair-chain exists to approximate.
type Property struct {
	Key    Key
	Type   PropType
	Value  value.Value // PropData: the value. PropBuiltIn: materializer id, not yet used directly.
	Getter value.Value  // PropAccessor
	Setter value.Value  // PropAccessor
	Attrs  Attrs

	// lazyKind identifies which lazy-property materializer produced this
	// entry (e.g. "length", "callee"), so DeleteLazyProperty's tombstone
	// can be looked up again without re-deriving it from Key.
	lazyKind string
}
