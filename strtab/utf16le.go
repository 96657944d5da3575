package strtab

import "strings"

// decodeUTF16LE decodes a little-endian UTF-16 byte buffer to a Go string,
// ported from the teacher's internal/reader/utf16_opt.go: an ASCII fast
// path (every code unit is [byte, 0x00]) falls straight through to a byte
// copy, and the general path recombines surrogate pairs by hand rather
// than pulling in golang.org/x/text/encoding/unicode's full decoder, which
// allocates a Decoder and a Transformer per call — overkill for the
// typically-short identifiers this path decodes.
//
// This is the decode half of the embedder API's "construct a string value
// from a UTF-16 byte buffer" capability (spec §6).
func decodeUTF16LE(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	allASCII := len(data)%2 == 0
	if allASCII {
		for i := 0; i < len(data); i += 2 {
			if data[i+1] != 0 || data[i] >= 0x80 {
				allASCII = false
				break
			}
		}
	}

	if allASCII {
		var b strings.Builder
		b.Grow(len(data) / 2)
		for i := 0; i < len(data); i += 2 {
			b.WriteByte(data[i])
		}
		return b.String()
	}

	var b strings.Builder
	b.Grow(len(data))
	for i := 0; i+1 < len(data); i += 2 {
		r := rune(data[i]) | rune(data[i+1])<<8
		if r >= 0xD800 && r <= 0xDBFF && i+3 < len(data) {
			r2 := rune(data[i+2]) | rune(data[i+3])<<8
			if r2 >= 0xDC00 && r2 <= 0xDFFF {
				r = 0x10000 + ((r-0xD800)<<10 | (r2 - 0xDC00))
				i += 2
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
