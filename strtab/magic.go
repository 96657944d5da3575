package strtab

import "github.com/tinyjs/corevm/value"

// magicStrings is the compile-time table of well-known identifiers: every
// property name the object model or a built-in routine needs to compare
// against falls into this table, so the comparison short-circuits to an
// integer-id compare instead of a byte-by-byte one (spec §4.3).
//
// The table is intentionally small relative to a full ECMAScript
// implementation's (spec §1 puts the built-in library itself out of
// scope); it covers the identifiers the execution core names directly —
// property keys the object model and VM reference by name, and the
// well-known symbol descriptions the symbol registry interns.
var magicStrings = []string{
	// Object model
	"length", "prototype", "constructor", "name", "message", "stack",
	"__proto__", "callee", "arguments", "this",
	// valueOf / toPrimitive family
	"valueOf", "toString", "toPrimitive", "Symbol.toPrimitive",
	// Error kinds (spec §7)
	"Error", "EvalError", "RangeError", "ReferenceError", "SyntaxError",
	"TypeError", "URIError", "AggregateError",
	// Well-known symbol descriptions (spec §4.3)
	"Symbol.iterator", "Symbol.asyncIterator", "Symbol.match",
	"Symbol.matchAll", "Symbol.replace", "Symbol.search", "Symbol.species",
	"Symbol.split", "Symbol.hasInstance", "Symbol.isConcatSpreadable",
	"Symbol.unscopables", "Symbol.toStringTag",
	// Generator/iterator protocol
	"next", "done", "value", "return", "throw",
	// Promise protocol
	"then", "resolve", "reject",
	// Empty string is magic id 0's cousin: the unnamed/default property key.
	"",
}

var magicIndex = buildMagicIndex()

func buildMagicIndex() map[string]value.StrID {
	m := make(map[string]value.StrID, len(magicStrings))
	for i, s := range magicStrings {
		m[s] = encodeID(kindMagic, uint32(i))
	}
	return m
}

// lookupMagic returns the magic-string id for s, if s is one of the
// well-known identifiers.
func lookupMagic(s string) (value.StrID, bool) {
	id, ok := magicIndex[s]
	return id, ok
}

// magicText returns the text a magic-string id names.
func magicText(payload uint32) string {
	return magicStrings[payload]
}

// Well-known magic-string ids exported for direct use by object/objectops
// without a text round-trip through NewString.
var (
	MagicLength      = mustMagic("length")
	MagicPrototype   = mustMagic("prototype")
	MagicConstructor = mustMagic("constructor")
	MagicName        = mustMagic("name")
	MagicMessage     = mustMagic("message")
	MagicStack       = mustMagic("stack")
	MagicProtoAccess = mustMagic("__proto__")
	MagicCallee      = mustMagic("callee")
	MagicArguments   = mustMagic("arguments")
)

func mustMagic(s string) value.Value {
	id, ok := lookupMagic(s)
	if !ok {
		panic("strtab: missing magic string " + s)
	}
	return value.Str(id)
}
