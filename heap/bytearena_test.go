package heap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
)

func TestByteArenaAllocWritesIntoDistinctSpans(t *testing.T) {
	b := heap.NewByteArena(4096)

	off1, buf1, err := b.Alloc(16)
	require.NoError(t, err)
	off2, buf2, err := b.Alloc(32)
	require.NoError(t, err)
	assert.NotEqual(t, off1, off2)

	copy(buf1, []byte("hello"))
	copy(buf2, []byte("world"))
	assert.Equal(t, "hello", string(b.View(off1, 5)))
	assert.Equal(t, "world", string(b.View(off2, 5)))
}

func TestByteArenaFreeAndCoalesceReclaimsSpace(t *testing.T) {
	b := heap.NewByteArena(64)

	off1, _, err := b.Alloc(24)
	require.NoError(t, err)
	off2, _, err := b.Alloc(24)
	require.NoError(t, err)

	b.Free(off1)
	b.Free(off2)

	// After coalescing the two adjacent freed spans, a single allocation
	// spanning both should succeed without growing past capacity.
	_, _, err = b.Alloc(40)
	require.NoError(t, err)
}

func TestByteArenaExhaustionReturnsOutOfMemory(t *testing.T) {
	b := heap.NewByteArena(16)
	_, _, err := b.Alloc(8)
	require.NoError(t, err)
	_, _, err = b.Alloc(64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, except.ErrOutOfMemory))
}

func TestHeapRetriesAfterExhaustionHandlerFreesSpace(t *testing.T) {
	h := heap.New(8)
	off, _, err := h.AllocBytes(8)
	require.NoError(t, err)

	called := false
	h.SetExhaustionHandler(func() bool {
		called = true
		h.FreeBytes(off)
		return true
	})

	_, _, err = h.AllocBytes(8)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestHeapStatsReflectUsage(t *testing.T) {
	h := heap.New(128)
	_, _, err := h.AllocBytes(16)
	require.NoError(t, err)
	stats := h.Stats()
	assert.Equal(t, int32(128), stats.Capacity)
	assert.GreaterOrEqual(t, stats.Used, int32(16))
}
