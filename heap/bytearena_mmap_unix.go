//go:build unix

package heap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// NewByteArenaMmap backs a ByteArena with a file-mapped region instead of a
// plain make([]byte, size) buffer, the "configurable at build" region
// spec.md §4.1 allows for a host that wants the heap's byte arena backed by
// a real file rather than process memory (e.g. to inspect or persist it
// externally, or to keep it out of the Go heap's own GC scan). path is
// created if missing and then truncated or extended to exactly size bytes.
//
// Grounded on internal/mmfile's Map (open, stat, mmap, return a cleanup
// closure), adapted from "map an existing file read-only" to "create and
// map a fixed-size read/write region a byte arena can carve spans out of",
// and rebuilt on golang.org/x/sys/unix instead of the standard syscall
// package (mmfile's own version calls syscall.Mmap directly) since
// SPEC_FULL.md's DOMAIN STACK section names golang.org/x/sys specifically
// for this role.
func NewByteArenaMmap(path string, size int32) (*ByteArena, func() error, error) {
	size = size &^ 7
	if size <= 0 {
		return nil, nil, fmt.Errorf("heap: mmap arena size must be positive, got %d", size)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // safe before return; the mapping keeps the pages alive

	if err := f.Truncate(int64(size)); err != nil {
		return nil, nil, err
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("heap: mmap %s: %w", path, err)
	}

	arena := &ByteArena{
		buf:     data,
		classes: make([][]freeBlock, len(byteSizeClasses)),
		live:    make(map[int32]int32),
	}

	cleanup := func() error {
		if data == nil {
			return nil
		}
		return unix.Munmap(data)
	}
	return arena, cleanup, nil
}
