package strtab

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// encodeCESU8 re-encodes a Go (UTF-8) string as CESU-8 (spec §3): BMP
// scalars are encoded exactly as in UTF-8, but supplementary code points
// (runes above U+FFFF) are split into a UTF-16 surrogate pair first, and
// each surrogate half is then encoded as its own three-byte UTF-8-shaped
// unit — six bytes total instead of the four standard UTF-8 would use.
//
// The ASCII fast path mirrors the teacher's decodeUTF16LE in
// internal/reader/utf16_opt.go: check up front whether the whole input is
// single-byte-safe, and if so skip rune decoding entirely.
func encodeCESU8(s string) []byte {
	if isASCII(s) {
		return []byte(s)
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/2)
	for _, r := range s {
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			for _, u := range [2]rune{hi, lo} {
				b.Write([]byte{byte(0xE0 | u>>12), byte(0x80 | u>>6&0x3F), byte(0x80 | u&0x3F)})
			}
			continue
		}
		b.WriteRune(r)
	}
	return []byte(b.String())
}

// decodeCESU8 decodes a CESU-8 byte buffer back to a Go (UTF-8) string,
// recombining surrogate-pair sequences into their supplementary code
// point.
func decodeCESU8(data []byte) string {
	if isASCIIBytes(data) {
		return string(data)
	}

	decodeUnit := func(p []byte) (rune, int) {
		if len(p) >= 3 && p[0] == 0xED && p[1] >= 0xA0 { // encoded surrogate half
			return 0xD000 | rune(p[1]&0x3F)<<6 | rune(p[2]&0x3F), 3
		}
		return utf8.DecodeRune(p)
	}
	var b strings.Builder
	b.Grow(len(data))
	for i := 0; i < len(data); {
		r, size := decodeUnit(data[i:])
		if size == 0 {
			break
		}
		if utf16.IsSurrogate(r) {
			r2, size2 := decodeUnit(data[i+size:])
			if size2 > 0 {
				if combined := utf16.DecodeRune(r, r2); combined != utf8.RuneError {
					b.WriteRune(combined)
					i += size + size2
					continue
				}
			}
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isASCIIBytes(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// isShortASCII reports whether s qualifies for inline direct-string
// storage: at most 7 bytes, every byte below 0x80 (spec §3).
func isShortASCII(s string) bool {
	return len(s) <= 7 && isASCII(s)
}
