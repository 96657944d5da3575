package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinyjs/corevm/internal/config"
)

func TestNewAppliesOptions(t *testing.T) {
	cfg := config.New(
		config.WithHeapByteSize(1<<20),
		config.WithMaxCallDepth(128),
		config.WithDisabledFamily(config.FamilyGenerators),
	)

	assert.EqualValues(t, 1<<20, cfg.HeapByteSize)
	assert.Equal(t, 128, cfg.MaxCallDepth)
	assert.True(t, cfg.FamilyDisabled(config.FamilyGenerators))
	assert.False(t, cfg.FamilyDisabled(config.FamilyAsync))
}

func TestToVMOptionsOmitsUnsetFields(t *testing.T) {
	cfg := config.New()
	assert.Empty(t, cfg.ToVMOptions())
}

func TestToVMOptionsIncludesMmapBackingFile(t *testing.T) {
	cfg := config.New(config.WithMmapBackingFile("/tmp/arena.bin"))
	assert.Equal(t, "/tmp/arena.bin", cfg.MmapBackingFile)
	assert.Len(t, cfg.ToVMOptions(), 1)
}
