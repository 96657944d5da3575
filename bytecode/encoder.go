package bytecode

import (
	"math"
)

// Builder assembles a CompiledCode's on-wire byte form. Nothing in this
// package implements a JS parser (spec.md's scope starts at "the compiled-
// code header format produced by the parser"); Builder exists so tests and
// the embedder's own tooling (cmd/corevm's future bytecode assembler) can
// construct a loadable blob without a parser.
type Builder struct {
	name           string
	flags          Flags
	argCount       uint16
	regCount       uint16
	stackDepth     uint16
	literals       []builtLiteral
	functions      [][]byte
	code           []byte
	protected      []ProtectedRange
	lines          []LineEntry
}

type builtLiteral struct {
	tag byte
	num float64
	str string
	idx uint16
}

func NewBuilder(name string) *Builder { return &Builder{name: name} }

func (b *Builder) SetFlags(f Flags) *Builder         { b.flags = f; return b }
func (b *Builder) SetArgCount(n uint16) *Builder     { b.argCount = n; return b }
func (b *Builder) SetRegCount(n uint16) *Builder     { b.regCount = n; return b }
func (b *Builder) SetStackDepth(n uint16) *Builder   { b.stackDepth = n; return b }

func (b *Builder) AddUndefinedLiteral() uint8 {
	b.literals = append(b.literals, builtLiteral{tag: litUndefined})
	return uint8(len(b.literals) - 1)
}

func (b *Builder) AddNumberLiteral(f float64) uint8 {
	b.literals = append(b.literals, builtLiteral{tag: litNumber, num: f})
	return uint8(len(b.literals) - 1)
}

func (b *Builder) AddStringLiteral(s string) uint8 {
	b.literals = append(b.literals, builtLiteral{tag: litString, str: s})
	return uint8(len(b.literals) - 1)
}

func (b *Builder) AddFunctionLiteral(fnIndex uint16) uint8 {
	b.literals = append(b.literals, builtLiteral{tag: litFunction, idx: fnIndex})
	return uint8(len(b.literals) - 1)
}

// AddFunction embeds a nested function's already-built byte form (e.g.
// from another Builder's Bytes()) and returns its index for use with
// OpCreateFunction/OpCreateArrow/OpCreateClass operands.
func (b *Builder) AddFunction(encoded []byte) uint16 {
	b.functions = append(b.functions, encoded)
	return uint16(len(b.functions) - 1)
}

func (b *Builder) AddProtectedRange(r ProtectedRange) *Builder {
	b.protected = append(b.protected, r)
	return b
}

func (b *Builder) AddLine(ip, line uint32) *Builder {
	b.lines = append(b.lines, LineEntry{IP: ip, Line: line})
	return b
}

// Emit appends op followed by its raw operand bytes (already encoded by
// the caller via the put* helpers below) to the instruction stream.
func (b *Builder) Emit(op Op, operand ...byte) *Builder {
	b.code = append(b.code, byte(op))
	b.code = append(b.code, operand...)
	return b
}

func PutU8(v uint8) []byte { return []byte{v} }
func PutU16(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}
func PutI16(v int16) []byte { return PutU16(uint16(v)) }

// Bytes assembles the on-wire CompiledCode blob Load can parse back.
func (b *Builder) Bytes() []byte {
	var out []byte
	out = appendU16(out, uint16(len(b.name)))
	out = append(out, []byte(b.name)...)
	out = appendU16(out, uint16(b.flags))
	out = appendU16(out, b.argCount)
	out = appendU16(out, b.regCount)
	out = appendU16(out, b.stackDepth)
	out = appendU16(out, uint16(len(b.literals)))
	out = appendU16(out, uint16(len(b.functions)))
	out = appendU16(out, uint16(len(b.protected)))
	out = appendU16(out, uint16(len(b.lines)))
	out = appendU32(out, uint32(len(b.code)))

	for _, lit := range b.literals {
		out = append(out, lit.tag)
		switch lit.tag {
		case litNumber:
			out = appendU64(out, math.Float64bits(lit.num))
		case litString:
			out = appendU16(out, uint16(len(lit.str)))
			out = append(out, []byte(lit.str)...)
		case litFunction:
			out = appendU16(out, lit.idx)
		}
	}

	for _, fn := range b.functions {
		out = appendU32(out, uint32(len(fn)))
		out = append(out, fn...)
	}

	for _, r := range b.protected {
		out = appendU32(out, r.StartIP)
		out = appendU32(out, r.EndIP)
		out = appendU32(out, r.HandlerIP)
		out = append(out, byte(r.Kind))
	}

	for _, l := range b.lines {
		out = appendU32(out, l.IP)
		out = appendU32(out, l.Line)
	}

	out = append(out, b.code...)
	return out
}

func appendU16(dst []byte, v uint16) []byte { return append(dst, byte(v), byte(v>>8)) }
func appendU32(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func appendU64(dst []byte, v uint64) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}
