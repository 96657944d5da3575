//go:build unix

package heap_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/heap"
)

func TestByteArenaMmapAllocAndPersistAcrossClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.bin")

	h, closeFn, err := heap.NewWithMmapBacking(path, 4096)
	require.NoError(t, err)

	off, buf, err := h.AllocBytes(16)
	require.NoError(t, err)
	copy(buf, []byte("hello mmap"))

	require.NoError(t, closeFn())

	h2, closeFn2, err := heap.NewWithMmapBacking(path, 4096)
	require.NoError(t, err)
	defer closeFn2()

	assert.Equal(t, "hello mmap", string(h2.Bytes.View(off, 10)))
}

func TestByteArenaMmapRejectsNonPositiveSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.bin")
	_, _, err := heap.NewByteArenaMmap(path, 0)
	assert.Error(t, err)
}
