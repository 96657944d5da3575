package vm

import (
	"math"
	"strconv"
	"strings"

	"github.com/tinyjs/corevm/bytecode"
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/objectops"
	"github.com/tinyjs/corevm/value"
)

// toBoolean implements ECMAScript ToBoolean (spec §4.2's abstract
// operations over value.Value): every value is truthy except undefined,
// null, false, +0/-0/NaN, and the empty string.
func toBoolean(v value.Value) bool {
	switch {
	case v.IsUndefined(), v.IsNull(), v.IsEmpty():
		return false
	case v.IsBool():
		return v.AsBool()
	case v.IsInt():
		return v.AsInt() != 0
	case v.IsFloat():
		f := v.AsFloat()
		return f == f && f != 0
	case v.IsString():
		// NewString stores "" as a zero-length direct string, so that is the
		// only representation the empty string has.
		return !(v.IsDirectString() && len(v.DirectStringBytes()) == 0)
	default:
		return true
	}
}

// toNumber implements ToNumber: numbers pass through, booleans become
// 0/1, null becomes 0, undefined becomes NaN, a string is parsed with
// leading/trailing whitespace trimmed (an unparsable string is NaN, not
// an error, matching ECMAScript's ToNumber rather than throwing), and a
// symbol is a TypeError (the one case ToNumber itself throws for).
func (c *Context) toNumber(v value.Value) (float64, error) {
	switch {
	case v.IsNumber():
		return v.AsNumber(), nil
	case v.IsBool():
		if v.AsBool() {
			return 1, nil
		}
		return 0, nil
	case v.IsNull():
		return 0, nil
	case v.IsUndefined():
		return math.NaN(), nil
	case v.IsString():
		text := strings.TrimSpace(c.Pool.Text(v))
		if text == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return f, nil
	case v.IsSymbol():
		return 0, except.New(except.TypeError, "cannot convert a Symbol value to a number")
	default:
		return math.NaN(), nil
	}
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(f))
}

func typeofString(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "object"
	case v.IsBool():
		return "boolean"
	case v.IsNumber():
		return "number"
	case v.IsString():
		return "string"
	case v.IsSymbol():
		return "symbol"
	case v.IsBigInt():
		return "bigint"
	case v.IsObject():
		return "object"
	default:
		return "undefined"
	}
}

// add implements the + operator: string concatenation (via the pool, so
// either operand's content is resolved regardless of direct/heap storage)
// when either side is a string, numeric addition otherwise.
func (c *Context) add(lhs, rhs value.Value) (value.Value, error) {
	if lhs.IsString() || rhs.IsString() {
		concatenated, err := c.Pool.Concat(lhs, rhs)
		if err != nil {
			return value.Value{}, err
		}
		return concatenated, nil
	}
	l, err := c.toNumber(lhs)
	if err != nil {
		return value.Value{}, err
	}
	r, err := c.toNumber(rhs)
	if err != nil {
		return value.Value{}, err
	}
	return value.Float(l + r), nil
}

// numericBinary implements every other binary arithmetic and bitwise
// operator; OpAdd is handled separately by (*Context).add since it alone
// branches on string operands.
func (c *Context) numericBinary(op bytecode.Op, lhs, rhs value.Value) (value.Value, error) {
	l, err := c.toNumber(lhs)
	if err != nil {
		return value.Value{}, err
	}
	r, err := c.toNumber(rhs)
	if err != nil {
		return value.Value{}, err
	}
	switch op {
	case bytecode.OpSub:
		return value.Float(l - r), nil
	case bytecode.OpMul:
		return value.Float(l * r), nil
	case bytecode.OpDiv:
		return value.Float(l / r), nil
	case bytecode.OpMod:
		return value.Float(math.Mod(l, r)), nil
	case bytecode.OpExponentiation:
		return value.Float(math.Pow(l, r)), nil
	case bytecode.OpBitAnd:
		return value.Int(toInt32(l) & toInt32(r)), nil
	case bytecode.OpBitOr:
		return value.Int(toInt32(l) | toInt32(r)), nil
	case bytecode.OpBitXor:
		return value.Int(toInt32(l) ^ toInt32(r)), nil
	case bytecode.OpShiftLeft:
		return value.Int(toInt32(l) << (uint32(toInt32(r)) & 31)), nil
	case bytecode.OpShiftRight:
		return value.Int(toInt32(l) >> (uint32(toInt32(r)) & 31)), nil
	case bytecode.OpShiftRightUnsigned:
		return value.Float(float64(uint32(toInt32(l)) >> (uint32(toInt32(r)) & 31))), nil
	default:
		return value.Value{}, except.New(except.SyntaxError, "not a numeric binary opcode: %s", op)
	}
}

// compare implements the equality and relational opcodes. Strict
// equality/inequality defer to value.SameValue's object-identity and
// same-tag rules except that, unlike SameValue, === treats +0 and -0 as
// equal and NaN as unequal to itself (ECMAScript's Strict Equality
// Comparison, not SameValue); loose equality additionally allows
// cross-tag numeric/string comparisons the way == does.
func (c *Context) compare(op bytecode.Op, lhs, rhs value.Value) (value.Value, error) {
	switch op {
	case bytecode.OpStrictEqual:
		return value.Bool(c.strictEqual(lhs, rhs)), nil
	case bytecode.OpStrictNotEqual:
		return value.Bool(!c.strictEqual(lhs, rhs)), nil
	case bytecode.OpEqual:
		return value.Bool(c.looseEqual(lhs, rhs)), nil
	case bytecode.OpNotEqual:
		return value.Bool(!c.looseEqual(lhs, rhs)), nil
	}
	l, err := c.toNumber(lhs)
	if err != nil {
		return value.Value{}, err
	}
	r, err := c.toNumber(rhs)
	if err != nil {
		return value.Value{}, err
	}
	switch op {
	case bytecode.OpLess:
		return value.Bool(l < r), nil
	case bytecode.OpGreater:
		return value.Bool(l > r), nil
	case bytecode.OpLessEqual:
		return value.Bool(l <= r), nil
	case bytecode.OpGreaterEqual:
		return value.Bool(l >= r), nil
	default:
		return value.Value{}, except.New(except.SyntaxError, "not a comparison opcode: %s", op)
	}
}

func (c *Context) strictEqual(lhs, rhs value.Value) bool {
	if lhs.Tag() != rhs.Tag() {
		return false
	}
	if lhs.IsNumber() {
		l, r := lhs.AsNumber(), rhs.AsNumber()
		return l == r // NaN != NaN, +0 == -0: exactly what == on float64 already gives
	}
	if lhs.IsString() {
		return c.Pool.Equal(lhs, rhs)
	}
	return value.SameValue(lhs, rhs)
}

func (c *Context) looseEqual(lhs, rhs value.Value) bool {
	if lhs.Tag() == rhs.Tag() {
		return c.strictEqual(lhs, rhs)
	}
	if lhs.IsNullish() && rhs.IsNullish() {
		return true
	}
	if lhs.IsNullish() || rhs.IsNullish() {
		return false
	}
	if lhs.IsNumber() && rhs.IsString() || lhs.IsString() && rhs.IsNumber() {
		l, err1 := c.toNumber(lhs)
		r, err2 := c.toNumber(rhs)
		if err1 != nil || err2 != nil {
			return false
		}
		return l == r
	}
	if lhs.IsBool() {
		return c.looseEqual(numberOfBool(lhs), rhs)
	}
	if rhs.IsBool() {
		return c.looseEqual(lhs, numberOfBool(rhs))
	}
	return false
}

func numberOfBool(v value.Value) value.Value {
	if v.AsBool() {
		return value.Int(1)
	}
	return value.Int(0)
}

// instanceOf implements the instanceof operator by walking lhs's
// prototype chain looking for rhs's "prototype" property value (the
// OrdinaryHasInstance algorithm; corevm does not yet support an
// overridden Symbol.hasInstance method).
func (c *Context) instanceOf(lhs, rhs value.Value) (value.Value, error) {
	if !rhs.IsObject() {
		return value.Value{}, except.New(except.TypeError, "right-hand side of 'instanceof' is not callable")
	}
	protoKey, err := c.Pool.NewString("prototype")
	if err != nil {
		return value.Value{}, err
	}
	ops, err := objectops.For(c.Ops, rhs.AsObject())
	if err != nil {
		return value.Value{}, err
	}
	target, err := ops.Get(c.Ops, rhs.AsObject(), object.StringKey(protoKey), rhs)
	if err != nil {
		return value.Value{}, err
	}
	if !target.IsObject() {
		return value.Value{}, except.New(except.TypeError, "'prototype' of right-hand side is not an object")
	}
	if !lhs.IsObject() {
		return value.Bool(false), nil
	}
	cur := lhs.AsObject()
	for {
		curOps, err := objectops.For(c.Ops, cur)
		if err != nil {
			return value.Value{}, err
		}
		proto, err := curOps.GetPrototypeOf(c.Ops, cur)
		if err != nil {
			return value.Value{}, err
		}
		if proto.IsNull() {
			return value.Bool(false), nil
		}
		if proto == target.AsObject() {
			return value.Bool(true), nil
		}
		cur = proto
	}
}
