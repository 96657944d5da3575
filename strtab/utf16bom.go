package strtab

import (
	"golang.org/x/text/encoding/unicode"
)

// decodeUTF16Auto decodes a UTF-16 byte buffer whose endianness and BOM
// presence are not known in advance — the shape host-supplied source text
// typically arrives in, versus NewStringFromUTF16LE's little-endian,
// BOM-less input (that goes through decodeUTF16LE, which assumes that
// fixed endianness and skips the BOM machinery entirely).
//
// golang.org/x/text/encoding/unicode's BOM-sniffing decoder does the
// general case properly; it is not used on the NewStringFromUTF16LE path
// because it allocates a Decoder and Transformer per call.
func decodeUTF16Auto(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder())
	out, err := decoder.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
