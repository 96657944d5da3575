// Package value implements the tagged value described in spec §3/§4.2: a
// single type that uniformly represents every primitive and every heap
// object handle passed across an API boundary.
//
// spec §9's design notes ask for exactly this shape in a modern systems
// language: "a Value implementing a closed variant ... is the natural
// mapping; the compact on-heap encoding remains a private representation
// choice." Value is that closed variant — a tagged struct with exhaustive
// constructors and inspectors. No other package may construct a Value by
// any means other than the functions in this file, nor inspect one by any
// means other than the Is*/As* methods: that is what keeps the encoding an
// implementation detail, per spec invariant on the tagged-value API.
package value

import (
	"math"

	"github.com/tinyjs/corevm/heap"
)

// Tag discriminates the kind of payload a Value carries.
type Tag uint8

const (
	TagUndefined Tag = iota
	TagNull
	TagBool
	TagInt
	TagFloat
	TagString
	TagSymbol
	TagObject
	TagBigInt
	TagEmpty
)

func (t Tag) String() string {
	switch t {
	case TagUndefined:
		return "undefined"
	case TagNull:
		return "null"
	case TagBool:
		return "boolean"
	case TagInt, TagFloat:
		return "number"
	case TagString:
		return "string"
	case TagSymbol:
		return "symbol"
	case TagObject:
		return "object"
	case TagBigInt:
		return "bigint"
	case TagEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// StrID is an opaque handle into the string pool (package strtab). It may
// name a magic string, a direct (inline) short string, or a heap string;
// only strtab knows which, and only strtab may construct or dereference
// one — value merely carries it, exactly as a compressed pointer carries
// no type information of its own (heap.CP).
type StrID uint32

// Value is a 30-ish-byte tagged struct standing in for JerryScript's
// packed 32-bit word. The packed encoding is the private representation
// spec §9 says an implementation may choose freely; this one favors an
// exhaustive, impossible-to-misuse Go type over bit-packing, since nothing
// outside this package is allowed to look at the bits anyway.
type Value struct {
	tag Tag
	b   bool
	i   int32
	f   float64
	s   StrID
	obj heap.CP

	// direct/directLen/isDirect implement the "direct string" form of
	// spec §3's tagged-value encoding: a string of at most 7 all-ASCII
	// bytes, stored inline so that it never touches the heap. The real
	// packed 32-bit encoding fits this inside the tag word itself; since
	// this package uses a tagged struct instead (spec §9 design notes:
	// "the compact on-heap encoding remains a private representation
	// choice"), the inline bytes simply live in extra struct fields rather
	// than sharing bits with s/obj. Only strtab constructs these, via
	// DirectStr, once it has verified the length/ASCII constraints.
	direct    [7]byte
	directLen uint8
	isDirect  bool

	// errBit is the "error bit" of spec §3: when set, this Value is a
	// fallible operation's thrown-exception sentinel rather than a normal
	// result. Per invariant I2, it may appear only at API boundaries and in
	// the VM's completion slot — never pushed onto the operand stack or
	// stored into a property. Enforcing that is the VM's job (package vm);
	// this package only carries the bit faithfully through assignment.
	errBit bool
}

// Undefined returns the `undefined` singleton value.
func Undefined() Value { return Value{tag: TagUndefined} }

// Null returns the `null` singleton value.
func Null() Value { return Value{tag: TagNull} }

// Empty returns the internal-only `empty` sentinel (spec invariant I3: it
// must never become observable to user code).
func Empty() Value { return Value{tag: TagEmpty} }

// Bool constructs a boolean value.
func Bool(b bool) Value { return Value{tag: TagBool, b: b} }

// Int constructs a small-integer value. Per spec §3 this covers the range
// representable in ~30 bits of the packed word; Go's int32 is a superset,
// which is acceptable since this package does not replicate the packed
// bit-width limitation (see DESIGN.md).
func Int(i int32) Value { return Value{tag: TagInt, i: i} }

// Float constructs a double-precision number value, for magnitudes or
// fractional values outside the small-integer range.
func Float(f float64) Value { return Value{tag: TagFloat, f: f} }

// Str constructs a string value from a string-pool handle (a magic-string
// id or a heap-string handle; strtab decides which).
func Str(id StrID) Value { return Value{tag: TagString, s: id} }

// DirectStr constructs an inline direct-string value from at most 7 bytes
// of ASCII text. Callers (strtab) must have already verified
// len(s) <= 7 && isASCII(s); DirectStr truncates silently rather than
// erroring so that a caller bug shows up as wrong output, not a panic deep
// in the value layer.
func DirectStr(s string) Value {
	var v Value
	v.tag = TagString
	v.isDirect = true
	n := copy(v.direct[:], s)
	v.directLen = uint8(n)
	return v
}

// IsDirectString reports whether v is an inline direct string rather than
// a pool-backed one. Only meaningful when IsString() is also true.
func (v Value) IsDirectString() bool { return v.tag == TagString && v.isDirect }

// DirectStringBytes returns the inline bytes of a direct string; callers
// must have checked IsDirectString.
func (v Value) DirectStringBytes() []byte {
	return v.direct[:v.directLen]
}

// Symbol constructs a symbol value from a string-pool handle (symbols are
// a heap-string subtype per spec §4.3).
func Symbol(id StrID) Value { return Value{tag: TagSymbol, s: id} }

// Object constructs an object-reference value from a compressed pointer.
func Object(cp heap.CP) Value { return Value{tag: TagObject, obj: cp} }

// BigInt constructs a BigInt value; BigInt digits are stored in a heap
// record like any other object, referenced the same way.
func BigInt(cp heap.CP) Value { return Value{tag: TagBigInt, obj: cp} }

// Tag reports the discriminant, for callers (chiefly the VM's typeof and
// equality opcodes) that need to switch on kind directly.
func (v Value) Tag() Tag { return v.tag }

func (v Value) IsUndefined() bool { return v.tag == TagUndefined }
func (v Value) IsNull() bool      { return v.tag == TagNull }
func (v Value) IsEmpty() bool     { return v.tag == TagEmpty }
func (v Value) IsBool() bool      { return v.tag == TagBool }
func (v Value) IsInt() bool       { return v.tag == TagInt }
func (v Value) IsFloat() bool     { return v.tag == TagFloat }
func (v Value) IsNumber() bool    { return v.tag == TagInt || v.tag == TagFloat }
func (v Value) IsString() bool    { return v.tag == TagString }
func (v Value) IsSymbol() bool    { return v.tag == TagSymbol }
func (v Value) IsObject() bool    { return v.tag == TagObject }
func (v Value) IsBigInt() bool    { return v.tag == TagBigInt }

// IsNullish reports whether v is null or undefined, the predicate the
// nullish-coalescing and optional-chaining opcodes test.
func (v Value) IsNullish() bool { return v.tag == TagNull || v.tag == TagUndefined }

// AsBool returns the boolean payload; callers must have checked IsBool.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the small-integer payload; callers must have checked IsInt.
func (v Value) AsInt() int32 { return v.i }

// AsFloat returns the float payload; callers must have checked IsFloat.
func (v Value) AsFloat() float64 { return v.f }

// AsNumber returns the numeric payload as a float64 regardless of whether
// it is stored as TagInt or TagFloat, for arithmetic opcodes that do not
// care about the storage class.
func (v Value) AsNumber() float64 {
	if v.tag == TagInt {
		return float64(v.i)
	}
	return v.f
}

// AsString returns the string-pool handle; callers must have checked
// IsString.
func (v Value) AsString() StrID { return v.s }

// AsSymbol returns the string-pool handle backing a symbol; callers must
// have checked IsSymbol.
func (v Value) AsSymbol() StrID { return v.s }

// AsObject returns the compressed pointer; callers must have checked
// IsObject.
func (v Value) AsObject() heap.CP { return v.obj }

// AsBigInt returns the compressed pointer to the BigInt's digit storage;
// callers must have checked IsBigInt.
func (v Value) AsBigInt() heap.CP { return v.obj }

// WithError returns a copy of v with the error bit set, marking it as a
// thrown-exception sentinel (spec §3). v itself must already be an object
// reference to the thrown error value.
func (v Value) WithError() Value {
	v.errBit = true
	return v
}

// ClearError returns a copy of v with the error bit cleared.
func (v Value) ClearError() Value {
	v.errBit = false
	return v
}

// IsError reports whether the error bit is set.
func (v Value) IsError() bool { return v.errBit }

// SameValue implements the ES SameValue algorithm for the primitive tags
// this package owns; object identity is compared by CP equality (two
// Values refer to the "same" object iff their compressed pointers match —
// the GC never relocates a live CP, so this is stable for a record's
// entire lifetime).
func SameValue(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagUndefined, TagNull, TagEmpty:
		return true
	case TagBool:
		return a.b == b.b
	case TagInt:
		return a.i == b.i
	case TagFloat:
		// SameValue distinguishes +0/-0 and treats NaN as equal to itself,
		// unlike ===.
		if a.f != a.f && b.f != b.f {
			return true // both NaN
		}
		if a.f == 0 && b.f == 0 {
			return math.Signbit(a.f) == math.Signbit(b.f)
		}
		return a.f == b.f
	case TagString:
		if a.isDirect != b.isDirect {
			// A direct string and a pool-backed string might still hold
			// the same text; resolving that requires the string pool, so
			// SameValue only answers the cheap, representation-level
			// question. Use strtab.Pool.Equal for full content equality
			// (spec invariant P4).
			return false
		}
		if a.isDirect {
			return a.directLen == b.directLen && a.direct == b.direct
		}
		return a.s == b.s
	case TagSymbol:
		return a.s == b.s
	case TagObject, TagBigInt:
		return a.obj == b.obj
	default:
		return false
	}
}
