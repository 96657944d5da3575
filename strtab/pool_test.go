package strtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

func newPool(t *testing.T) *strtab.Pool {
	t.Helper()
	return strtab.NewPool(heap.New(64 * 1024))
}

func TestShortASCIIIsStoredInline(t *testing.T) {
	p := newPool(t)
	v, err := p.NewString("abc")
	require.NoError(t, err)
	assert.True(t, v.IsDirectString())
	assert.Equal(t, "abc", p.Text(v))
}

func TestMagicStringAvoidsHeapAllocation(t *testing.T) {
	p := newPool(t)

	v, err := p.NewString("prototype")
	require.NoError(t, err)
	assert.False(t, v.IsDirectString())
	assert.Equal(t, "prototype", p.Text(v))
}

func TestLongStringIsHeapBackedAndInterned(t *testing.T) {
	p := newPool(t)
	long := "this-is-definitely-longer-than-seven-bytes"
	v1, err := p.NewString(long)
	require.NoError(t, err)
	v2, err := p.NewString(long)
	require.NoError(t, err)

	assert.False(t, v1.IsDirectString())
	assert.Equal(t, v1.AsString(), v2.AsString(), "identical content should be interned to the same id")
	assert.Equal(t, long, p.Text(v1))
}

func TestConcatProducesFreshFlatBuffer(t *testing.T) {
	p := newPool(t)
	a, err := p.NewString("hello-this-part-is-long")
	require.NoError(t, err)
	b, err := p.NewString("-world-also-long-enough")
	require.NoError(t, err)

	c, err := p.Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, "hello-this-part-is-long-world-also-long-enough", p.Text(c))
}

func TestEqualComparesContentAcrossRepresentations(t *testing.T) {
	p := newPool(t)
	direct, err := p.NewString("ab")
	require.NoError(t, err)

	concatenated, err := p.Concat(mustStr(t, p, "a"), mustStr(t, p, "b"))
	require.NoError(t, err)

	assert.True(t, p.Equal(direct, concatenated))
}

func TestHeapStringRefcountReleasesOnZero(t *testing.T) {
	p := newPool(t)
	long := "another-string-well-past-seven-bytes-long"
	v, err := p.NewString(long)
	require.NoError(t, err)

	p.IncRef(v)
	p.DecRef(v)
	// Still referenced once more (the original NewString's implicit ref).
	assert.Equal(t, long, p.Text(v))

	p.DecRef(v)
	// Fully released; re-interning the same text must succeed without reuse
	// of the stale id (a fresh allocation is fine, a crash is not).
	v2, err := p.NewString(long)
	require.NoError(t, err)
	assert.Equal(t, long, p.Text(v2))
}

func TestWellKnownSymbolsAreInterned(t *testing.T) {
	p := newPool(t)
	a, ok := p.WellKnownSymbol("Symbol.iterator")
	require.True(t, ok)
	b, ok := p.WellKnownSymbol("Symbol.iterator")
	require.True(t, ok)
	assert.Equal(t, a.AsSymbol(), b.AsSymbol())
	assert.Equal(t, "Symbol.iterator", p.Text(p.SymbolDescription(a)))
}

func TestNewSymbolProducesDistinctIdentities(t *testing.T) {
	p := newPool(t)
	a, err := p.NewSymbol("tag")
	require.NoError(t, err)
	b, err := p.NewSymbol("tag")
	require.NoError(t, err)
	assert.NotEqual(t, a.AsSymbol(), b.AsSymbol())
}

func TestNewStringFromUTF16LERoundTrips(t *testing.T) {
	p := newPool(t)
	// "hi" in UTF-16LE
	data := []byte{'h', 0, 'i', 0}
	v, err := p.NewStringFromUTF16LE(data)
	require.NoError(t, err)
	assert.Equal(t, "hi", p.Text(v))
}

func mustStr(t *testing.T, p *strtab.Pool, s string) value.Value {
	t.Helper()
	v, err := p.NewString(s)
	require.NoError(t, err)
	return v
}
