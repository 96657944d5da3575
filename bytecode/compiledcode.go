package bytecode

import "github.com/tinyjs/corevm/value"

// Flags carries the per-function status bits spec §4.8/§4.9 list: strict
// mode, arrow/generator/async shape, direct-eval permission, and whether
// this code was loaded from a snapshot as a static_function (skipping
// refcount maintenance on its literal table, since a snapshot's strings
// outlive any single VM run and need no per-call bookkeeping).
type Flags uint16

const (
	FlagStrict Flags = 1 << iota
	FlagArrow
	FlagGenerator
	FlagAsync
	FlagDirectEvalAllowed
	FlagMappedArguments
	FlagStaticFunction
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// RangeKind discriminates a ProtectedRange's handler shape (spec §4.10).
type RangeKind uint8

const (
	RangeCatch RangeKind = iota
	RangeFinally
	RangeCatchFinally
)

// ProtectedRange is one entry of a function's try/catch/finally table
// (spec §4.10): the dispatch loop scans for the innermost range covering
// the current ip on an error return.
type ProtectedRange struct {
	StartIP   uint32
	EndIP     uint32
	HandlerIP uint32
	Kind      RangeKind
}

// Covers reports whether ip falls within [StartIP, EndIP).
func (r ProtectedRange) Covers(ip uint32) bool { return ip >= r.StartIP && ip < r.EndIP }

// LineEntry maps a byte offset in Code to a 1-based source line, sparse:
// only offsets where the line changes from the previous entry are
// recorded (line-info is optional per spec §4.8 and absent from release
// snapshots).
type LineEntry struct {
	IP   uint32
	Line uint32
}

// CompiledCode is the immutable artifact spec §4.8 describes: a status-
// flags word, argument/register/stack-depth counts, a literal table, the
// opcode byte stream, an optional per-function protected-range table, and
// optional line info. It never mutates after loading; a ScriptedFunction
// object.Record just holds a heap.CP naming one (object cannot import
// this package, so the field there is untyped — see object.Record's
// CompiledCode field comment).
type CompiledCode struct {
	Name           string
	Flags          Flags
	ArgumentCount  uint16
	RegisterCount  uint16
	StackDepth     uint16
	Literals       []value.Value
	Functions      []*CompiledCode // nested function/arrow/class templates, referenced by index from OpCreateFunction/OpCreateArrow/OpCreateClass operands
	Code           []byte
	ProtectedRanges []ProtectedRange
	LineInfo       []LineEntry

	// IsDerivedClass and FieldInitializer describe a class constructor
	// template (spec §4.6, grounded on ecma_constructor_function_construct):
	// IsDerivedClass tells OpCreateClass to pop an already-evaluated
	// heritage expression off the stack and record it as the new
	// ConstructorFunction's SuperConstructor; FieldInitializer, when
	// non-nil, is the compiled implicit field-init function run against
	// the instance before the explicit constructor body (if any) executes.
	IsDerivedClass   bool
	FieldInitializer *CompiledCode
}

// LineFor returns the source line covering ip, or 0 if no LineInfo entry
// applies (e.g. a snapshot loaded without debug info).
func (c *CompiledCode) LineFor(ip uint32) uint32 {
	line := uint32(0)
	for _, e := range c.LineInfo {
		if e.IP > ip {
			break
		}
		line = e.Line
	}
	return line
}

// HandlerFor returns the innermost protected range covering ip, if any
// (spec §4.10: "scans the current frame's table for the innermost range
// covering the current ip"). Ranges are assumed loaded innermost-last, so
// scanning in reverse finds the innermost match first.
func (c *CompiledCode) HandlerFor(ip uint32) (ProtectedRange, bool) {
	for i := len(c.ProtectedRanges) - 1; i >= 0; i-- {
		if c.ProtectedRanges[i].Covers(ip) {
			return c.ProtectedRanges[i], true
		}
	}
	return ProtectedRange{}, false
}
