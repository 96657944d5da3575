// Package config holds the VM's build/startup configuration surface:
// heap size, call-depth guard, and the enabled-opcode-family switches
// spec.md §9's "configurable at build" language asks for, translated from
// CLI flags (cmd/corevm) or programmatic defaults into vm.Option values a
// bindings.Runtime hands straight to vm.NewContext.
package config

import "github.com/tinyjs/corevm/vm"

// OpcodeFamily names one of the optional opcode groups (generators, async)
// an embedder can list in VMConfig.DisabledFamilies.
type OpcodeFamily string

const (
	FamilyGenerators OpcodeFamily = "generators"
	FamilyAsync      OpcodeFamily = "async"
)

// VMConfig is the parsed form of every --mem-stats/--log-level-adjacent
// engine flag spec.md §6 lists, independent of cmd/corevm's cobra flag
// definitions so a non-CLI embedder can build one by hand.
type VMConfig struct {
	HeapByteSize int32
	MaxCallDepth int

	// MmapBackingFile, when set, backs the heap's byte arena with a
	// file-mapped region at this path instead of process memory (unix
	// only — see heap.NewByteArenaMmap).
	MmapBackingFile string

	// DisabledFamilies records the opcode families named via
	// WithDisabledFamily, as reported by FamilyDisabled. ToVMOptions does
	// not pass it on, so the VM still executes every implemented family
	// whatever this list holds.
	DisabledFamilies []OpcodeFamily
}

// Option configures a VMConfig via the same functional-options shape
// vm.Option uses, so WithX helpers compose the same way at both layers.
type Option func(*VMConfig)

func WithHeapByteSize(n int32) Option {
	return func(c *VMConfig) { c.HeapByteSize = n }
}

func WithMaxCallDepth(n int) Option {
	return func(c *VMConfig) { c.MaxCallDepth = n }
}

func WithDisabledFamily(f OpcodeFamily) Option {
	return func(c *VMConfig) { c.DisabledFamilies = append(c.DisabledFamilies, f) }
}

func WithMmapBackingFile(path string) Option {
	return func(c *VMConfig) { c.MmapBackingFile = path }
}

// New builds a VMConfig from opts, starting from the zero value — callers
// that want vm's own defaults should leave HeapByteSize/MaxCallDepth at 0
// and rely on ToVMOptions only emitting overrides for fields actually set.
func New(opts ...Option) VMConfig {
	var cfg VMConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ToVMOptions translates a VMConfig into the vm.Option slice vm.NewContext
// accepts, the one place this package is allowed to know vm's functional-
// options shape (kept separate from VMConfig itself so config stays a
// plain data type a CLI flag parser can populate field by field).
func (c VMConfig) ToVMOptions() []vm.Option {
	var opts []vm.Option
	if c.HeapByteSize > 0 {
		opts = append(opts, vm.WithHeapByteSize(c.HeapByteSize))
	}
	if c.MaxCallDepth > 0 {
		opts = append(opts, vm.WithMaxCallDepth(c.MaxCallDepth))
	}
	if c.MmapBackingFile != "" {
		opts = append(opts, vm.WithMmapBackingFile(c.MmapBackingFile))
	}
	return opts
}

// FamilyDisabled reports whether f was named via WithDisabledFamily.
func (c VMConfig) FamilyDisabled(f OpcodeFamily) bool {
	for _, d := range c.DisabledFamilies {
		if d == f {
			return true
		}
	}
	return false
}
