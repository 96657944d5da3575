package bytecode

import "github.com/tinyjs/corevm/strtab"

// snapshotMagic identifies a corevm bytecode snapshot (spec §4.8:
// "Snapshots are the same format, optionally marked as static_function").
// Grounded on hive/builder's multi-part assemble-then-flush shape: a
// snapshot bundles a magic+version header followed by N independently
// loadable CompiledCode blobs, each length-prefixed the same way
// hive/builder.Builder batches multiple registry ops before a single
// flush.
var snapshotMagic = [4]byte{'c', 'v', 'm', 's'}

const snapshotVersion uint16 = 1

// Snapshot is a versioned bundle of top-level CompiledCode programs,
// typically one per loaded script/module plus its nested functions
// (already embedded in each CompiledCode.Functions).
type Snapshot struct {
	Version uint16
	Codes   []*CompiledCode
}

// EncodeSnapshot assembles codes (already built via Builder.Bytes-derived
// blobs) into one snapshot buffer.
func EncodeSnapshot(encodedCodes [][]byte) []byte {
	var out []byte
	out = append(out, snapshotMagic[:]...)
	out = appendU16(out, snapshotVersion)
	out = appendU32(out, uint32(len(encodedCodes)))
	for _, code := range encodedCodes {
		out = appendU32(out, uint32(len(code)))
		out = append(out, code...)
	}
	return out
}

// LoadSnapshot parses a snapshot buffer, loading each contained
// CompiledCode via Load.
func LoadSnapshot(b []byte, pool *strtab.Pool) (*Snapshot, error) {
	c := newCursor(b)
	magic, err := c.bytes(4)
	if err != nil {
		return nil, err
	}
	for i := range magic {
		if magic[i] != snapshotMagic[i] {
			return nil, ErrSignatureMismatch
		}
	}
	version, err := c.u16()
	if err != nil {
		return nil, err
	}
	if version != snapshotVersion {
		return nil, ErrVersionMismatch
	}
	count, err := c.u32()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Version: version}
	for i := uint32(0); i < count; i++ {
		n, err := c.u32()
		if err != nil {
			return nil, err
		}
		raw, err := c.bytes(int(n))
		if err != nil {
			return nil, err
		}
		code, err := Load(raw, pool)
		if err != nil {
			return nil, err
		}
		snap.Codes = append(snap.Codes, code)
	}
	return snap, nil
}
