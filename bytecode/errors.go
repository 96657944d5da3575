package bytecode

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a
	// header or stream region.
	ErrTruncated = errors.New("bytecode: truncated buffer")
	// ErrSignatureMismatch indicates a snapshot's magic bytes did not match.
	ErrSignatureMismatch = errors.New("bytecode: signature mismatch")
	// ErrVersionMismatch indicates a snapshot was produced by an
	// incompatible loader version.
	ErrVersionMismatch = errors.New("bytecode: version mismatch")
)
