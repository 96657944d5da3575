package bytecode

import "github.com/tinyjs/corevm/internal/buf"

// cursor is a bounds-checked forward-only byte reader built directly on
// internal/buf's Has/Slice bounds-checking and U16LE/U32LE little-endian
// decode helpers, rather than reimplementing either: spec §4.8 asks for a
// loader that "validates no structural invariants beyond bounds checks",
// which is exactly the guarantee buf.Slice/buf.Has already give one byte
// range at a time.
type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor { return &cursor{b: b} }

func (c *cursor) has(n int) bool {
	return buf.Has(c.b, c.pos, n)
}

func (c *cursor) u8() (byte, error) {
	s, ok := buf.Slice(c.b, c.pos, 1)
	if !ok {
		return 0, ErrTruncated
	}
	c.pos++
	return s[0], nil
}

func (c *cursor) u16() (uint16, error) {
	s, ok := buf.Slice(c.b, c.pos, 2)
	if !ok {
		return 0, ErrTruncated
	}
	c.pos += 2
	return buf.U16LE(s), nil
}

func (c *cursor) u32() (uint32, error) {
	s, ok := buf.Slice(c.b, c.pos, 4)
	if !ok {
		return 0, ErrTruncated
	}
	c.pos += 4
	return buf.U32LE(s), nil
}

func (c *cursor) i16() (int16, error) {
	v, err := c.u16()
	return int16(v), err
}

func (c *cursor) bytes(n int) ([]byte, error) {
	s, ok := buf.Slice(c.b, c.pos, n)
	if !ok {
		return nil, ErrTruncated
	}
	c.pos += n
	return s, nil
}

func (c *cursor) skip(n int) error {
	if !buf.Has(c.b, c.pos, n) {
		return ErrTruncated
	}
	c.pos += n
	return nil
}

func (c *cursor) remaining() []byte { return c.b[c.pos:] }
