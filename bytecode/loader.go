package bytecode

import (
	"math"

	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

// Literal tags: the byte preceding each literal table entry's payload.
// bigint is deliberately not supported here (see DESIGN.md): a BigInt's
// digit storage lives in the object/heap layers, which this package
// cannot import without an acyclic-dependency violation, so bigint
// literals are materialized by the vm package after loading instead of
// by Load itself.
const (
	litUndefined byte = iota
	litNull
	litTrue
	litFalse
	litNumber
	litString
	litFunction
)

// Load parses a single CompiledCode record out of b, per spec §4.8: fixed
// header, literal table, opcode stream, protected-range table. pool
// resolves string literals into interned heap strings, since a literal
// table holds them as first-class value.Value entries, not raw bytes, by
// the time the VM consumes it.
//
// Load validates no structural invariant beyond bounds checks (spec
// §4.8: "the parser is trusted to produce well-formed code"); an
// out-of-range jump target or a literal index beyond ArgumentCount+
// RegisterCount's bound is a vm-time concern, not a loader-time one.
func Load(b []byte, pool *strtab.Pool) (*CompiledCode, error) {
	c := newCursor(b)
	return load(c, pool)
}

func load(c *cursor, pool *strtab.Pool) (*CompiledCode, error) {
	nameLen, err := c.u16()
	if err != nil {
		return nil, err
	}
	nameBytes, err := c.bytes(int(nameLen))
	if err != nil {
		return nil, err
	}

	flagsRaw, err := c.u16()
	if err != nil {
		return nil, err
	}
	argCount, err := c.u16()
	if err != nil {
		return nil, err
	}
	regCount, err := c.u16()
	if err != nil {
		return nil, err
	}
	stackDepth, err := c.u16()
	if err != nil {
		return nil, err
	}

	literalCount, err := c.u16()
	if err != nil {
		return nil, err
	}
	nestedCount, err := c.u16()
	if err != nil {
		return nil, err
	}
	rangeCount, err := c.u16()
	if err != nil {
		return nil, err
	}
	lineCount, err := c.u16()
	if err != nil {
		return nil, err
	}
	codeLen, err := c.u32()
	if err != nil {
		return nil, err
	}

	cc := &CompiledCode{
		Name:          string(nameBytes),
		Flags:         Flags(flagsRaw),
		ArgumentCount: argCount,
		RegisterCount: regCount,
		StackDepth:    stackDepth,
	}

	for i := uint16(0); i < literalCount; i++ {
		v, err := loadLiteral(c, pool)
		if err != nil {
			return nil, err
		}
		cc.Literals = append(cc.Literals, v)
	}

	for i := uint16(0); i < nestedCount; i++ {
		nestedLen, err := c.u32()
		if err != nil {
			return nil, err
		}
		nestedBytes, err := c.bytes(int(nestedLen))
		if err != nil {
			return nil, err
		}
		nested, err := Load(nestedBytes, pool)
		if err != nil {
			return nil, err
		}
		cc.Functions = append(cc.Functions, nested)
	}

	for i := uint16(0); i < rangeCount; i++ {
		start, err := c.u32()
		if err != nil {
			return nil, err
		}
		end, err := c.u32()
		if err != nil {
			return nil, err
		}
		handler, err := c.u32()
		if err != nil {
			return nil, err
		}
		kind, err := c.u8()
		if err != nil {
			return nil, err
		}
		cc.ProtectedRanges = append(cc.ProtectedRanges, ProtectedRange{
			StartIP: start, EndIP: end, HandlerIP: handler, Kind: RangeKind(kind),
		})
	}

	for i := uint16(0); i < lineCount; i++ {
		ip, err := c.u32()
		if err != nil {
			return nil, err
		}
		line, err := c.u32()
		if err != nil {
			return nil, err
		}
		cc.LineInfo = append(cc.LineInfo, LineEntry{IP: ip, Line: line})
	}

	code, err := c.bytes(int(codeLen))
	if err != nil {
		return nil, err
	}
	cc.Code = append([]byte(nil), code...)

	return cc, nil
}

func loadLiteral(c *cursor, pool *strtab.Pool) (value.Value, error) {
	tag, err := c.u8()
	if err != nil {
		return value.Value{}, err
	}
	switch tag {
	case litUndefined:
		return value.Undefined(), nil
	case litNull:
		return value.Null(), nil
	case litTrue:
		return value.Bool(true), nil
	case litFalse:
		return value.Bool(false), nil
	case litNumber:
		bits, err := c.bytes(8)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(decodeFloat64LE(bits)), nil
	case litString:
		n, err := c.u16()
		if err != nil {
			return value.Value{}, err
		}
		raw, err := c.bytes(int(n))
		if err != nil {
			return value.Value{}, err
		}
		return pool.NewString(string(raw))
	case litFunction:
		idx, err := c.u16()
		if err != nil {
			return value.Value{}, err
		}
		// A function-template literal just names its slot in Functions; the
		// vm fills in the actual heap.CP for the ScriptedFunction record at
		// OpCreateFunction time, since allocating that record is the vm's
		// job, not the loader's.
		return value.Int(int32(idx)), nil
	default:
		return value.Value{}, ErrTruncated
	}
}

func decodeFloat64LE(b []byte) float64 {
	bits := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	return math.Float64frombits(bits)
}
