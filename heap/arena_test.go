package heap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/heap"
)

func TestArenaAllocReusesFreedSlots(t *testing.T) {
	a := heap.NewArena[int]()

	cp1, err := a.Alloc(11)
	require.NoError(t, err)
	cp2, err := a.Alloc(22)
	require.NoError(t, err)
	assert.NotEqual(t, cp1, cp2)

	a.Free(cp1)
	assert.False(t, a.IsLive(cp1))

	cp3, err := a.Alloc(33)
	require.NoError(t, err)
	assert.Equal(t, cp1, cp3, "freed slot should be recycled before growing")

	v, ok := a.Get(cp3)
	require.True(t, ok)
	assert.Equal(t, 33, *v)
}

func TestArenaNullCPNeverLive(t *testing.T) {
	a := heap.NewArena[int]()
	assert.False(t, a.IsLive(heap.NullCP))
	_, ok := a.Get(heap.NullCP)
	assert.False(t, ok)
}

func TestArenaEachVisitsOnlyLiveSlotsInOrder(t *testing.T) {
	a := heap.NewArena[string]()
	cp1, _ := a.Alloc("a")
	cp2, _ := a.Alloc("b")
	_, _ = a.Alloc("c")
	a.Free(cp2)

	var seen []heap.CP
	a.Each(func(cp heap.CP, v *string) bool {
		seen = append(seen, cp)
		return true
	})
	assert.Len(t, seen, 2)
	assert.Equal(t, cp1, seen[0])
}

func TestArenaEachStopsEarly(t *testing.T) {
	a := heap.NewArena[int]()
	for i := 0; i < 5; i++ {
		_, _ = a.Alloc(i)
	}
	count := 0
	a.Each(func(cp heap.CP, v *int) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestArenaFreeIsIdempotent(t *testing.T) {
	a := heap.NewArena[int]()
	cp, _ := a.Alloc(1)
	a.Free(cp)
	assert.NotPanics(t, func() { a.Free(cp) })
}
