package vm

import "github.com/tinyjs/corevm/heap"

// Config collects the construction-time knobs spec §4.1/§9 call out as
// "configurable at build or at startup": the byte-arena size backing heap
// strings and compiled code, and the native-stack-budget stand-in
// maxCallDepth guards against. internal/config translates CLI flags and
// environment into a slice of Option; nothing in this package needs to
// know about that translation.
type Config struct {
	HeapByteSize int32
	MaxCallDepth int

	// MmapBackingFile, when non-empty, backs the byte arena with a
	// file-mapped region at this path (heap.NewWithMmapBacking) instead of
	// a plain in-process slice. Unix-only; see heap/bytearena_mmap_*.go.
	MmapBackingFile string
}

// Option mutates a Config at NewContext time, the same functional-options
// shape the teacher's cmd/hivectl flag wiring builds on top of.
type Option func(*Config)

// WithHeapByteSize overrides the byte arena's size (default
// heap.DefaultByteArenaSize).
func WithHeapByteSize(n int32) Option {
	return func(c *Config) { c.HeapByteSize = n }
}

// WithMaxCallDepth overrides the call-stack depth guard (default
// maxCallDepth).
func WithMaxCallDepth(n int) Option {
	return func(c *Config) { c.MaxCallDepth = n }
}

// WithMmapBackingFile directs the byte arena to map path into memory
// instead of allocating a plain Go slice (unix-only — see
// heap.NewByteArenaMmap).
func WithMmapBackingFile(path string) Option {
	return func(c *Config) { c.MmapBackingFile = path }
}

func defaultConfig() Config {
	return Config{HeapByteSize: heap.DefaultByteArenaSize, MaxCallDepth: maxCallDepth}
}
