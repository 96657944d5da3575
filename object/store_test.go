package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

func newStore(t *testing.T) (*object.Store, *strtab.Pool) {
	t.Helper()
	pool := strtab.NewPool(heap.New(0))
	return object.NewStore(pool), pool
}

func mustKey(t *testing.T, pool *strtab.Pool, s string) object.Key {
	t.Helper()
	v, err := pool.NewString(s)
	require.NoError(t, err)
	return object.StringKey(v)
}

func TestDefineAndGetOwnProperty(t *testing.T) {
	store, pool := newStore(t)
	cp, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	key := mustKey(t, pool, "greeting")
	v, err := pool.NewString("hello")
	require.NoError(t, err)

	err = store.DefineOwnProperty(cp, key, object.Descriptor{Value: &v})
	require.NoError(t, err)

	got, ok := store.GetOwnProperty(cp, mustKey(t, pool, "greeting"))
	require.True(t, ok)
	require.True(t, value.SameValue(got.Value, v))
	require.True(t, got.Attrs.Writable)
	require.True(t, got.Attrs.Enumerable)
	require.True(t, got.Attrs.Configurable)
}

func TestGetOwnPropertyMissingReturnsFalse(t *testing.T) {
	store, pool := newStore(t)
	cp, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	_, ok := store.GetOwnProperty(cp, mustKey(t, pool, "nope"))
	require.False(t, ok)
}

func TestDeleteRemovesProperty(t *testing.T) {
	store, pool := newStore(t)
	cp, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	key := mustKey(t, pool, "x")
	v := value.Int(1)
	require.NoError(t, store.DefineOwnProperty(cp, key, object.Descriptor{Value: &v}))

	require.True(t, store.Delete(cp, mustKey(t, pool, "x")))
	_, ok := store.GetOwnProperty(cp, mustKey(t, pool, "x"))
	require.False(t, ok)
}

func TestHashmapAcceleratorKicksInPastThreshold(t *testing.T) {
	store, pool := newStore(t)
	cp, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		key := mustKey(t, pool, string(rune('a'+i)))
		v := value.Int(int32(i))
		require.NoError(t, store.DefineOwnProperty(cp, key, object.Descriptor{Value: &v}))
	}

	for i := 0; i < 12; i++ {
		got, ok := store.GetOwnProperty(cp, mustKey(t, pool, string(rune('a'+i))))
		require.True(t, ok)
		require.Equal(t, int32(i), got.Value.AsInt())
	}
}

func TestLazyPropertyMaterializesOnceAndTombstonesOnDelete(t *testing.T) {
	store, pool := newStore(t)
	calls := 0
	store.RegisterLazy(object.KindArray, "length", func(r *object.Record, key object.Key) (value.Value, object.Attrs, bool) {
		calls++
		return value.Int(0), object.Attrs{Writable: true}, true
	})

	cp, err := store.Create(object.Record{Kind: object.KindArray, Proto: heap.NullCP, Extensible: true})
	require.NoError(t, err)

	_, ok := store.GetOwnProperty(cp, mustKey(t, pool, "length"))
	require.True(t, ok)
	_, ok = store.GetOwnProperty(cp, mustKey(t, pool, "length"))
	require.True(t, ok)
	require.Equal(t, 1, calls, "materializer should run once; second lookup hits the cached property")

	require.True(t, store.Delete(cp, mustKey(t, pool, "length")))
	_, ok = store.GetOwnProperty(cp, mustKey(t, pool, "length"))
	require.False(t, ok, "a deleted lazy property must not be re-materialized")
}

func TestSetPrototypeRejectsCycle(t *testing.T) {
	store, _ := newStore(t)
	a, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)
	b, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	require.NoError(t, store.SetPrototype(b, a))
	err = store.SetPrototype(a, b)
	require.Error(t, err, "a->b->a would cycle the prototype chain")
}

func TestFastArrayPlainWritesStayFastThenDemoteOnHole(t *testing.T) {
	store, _ := newStore(t)
	cp, err := store.Create(object.Record{
		Kind: object.KindFastArray, Proto: heap.NullCP, Extensible: true,
		FastElems: []value.Value{},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		v := value.Int(int32(i * 10))
		require.NoError(t, store.DefineOwnProperty(cp, object.IndexKey(uint32(i)), object.Descriptor{Value: &v}))
	}
	rec, ok := store.Get(cp)
	require.True(t, ok)
	require.Equal(t, object.KindFastArray, rec.Kind, "sequential plain writes must not demote a fast array")
	require.Equal(t, uint32(3), rec.ArrayLength)

	v := value.Int(99)
	require.NoError(t, store.DefineOwnProperty(cp, object.IndexKey(10), object.Descriptor{Value: &v}))
	rec, ok = store.Get(cp)
	require.True(t, ok)
	require.Equal(t, object.KindArray, rec.Kind, "a write past the dense tail must demote to a slow array")
	require.Nil(t, rec.FastElems)

	got, ok := store.GetOwnProperty(cp, object.IndexKey(1))
	require.True(t, ok, "elements already written before demotion must survive it")
	require.Equal(t, int32(10), got.Value.AsInt())
}

func TestOwnPropertyKeysOrdersIndicesThenStringsThenSymbols(t *testing.T) {
	store, pool := newStore(t)
	cp, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	sym, err := pool.NewSymbol("tag")
	require.NoError(t, err)
	v := value.Int(0)

	require.NoError(t, store.DefineOwnProperty(cp, object.SymbolKey(sym), object.Descriptor{Value: &v}))
	require.NoError(t, store.DefineOwnProperty(cp, mustKey(t, pool, "b"), object.Descriptor{Value: &v}))
	require.NoError(t, store.DefineOwnProperty(cp, object.IndexKey(5), object.Descriptor{Value: &v}))
	require.NoError(t, store.DefineOwnProperty(cp, mustKey(t, pool, "a"), object.Descriptor{Value: &v}))
	require.NoError(t, store.DefineOwnProperty(cp, object.IndexKey(1), object.Descriptor{Value: &v}))

	keys := store.OwnPropertyKeys(cp)
	require.Len(t, keys, 5)
	require.Equal(t, object.KeyIndex, keys[0].Kind)
	require.Equal(t, uint32(1), keys[0].Index)
	require.Equal(t, object.KeyIndex, keys[1].Kind)
	require.Equal(t, uint32(5), keys[1].Index)
	require.Equal(t, object.KeyString, keys[2].Kind)
	require.Equal(t, "b", pool.Text(keys[2].Str))
	require.Equal(t, object.KeyString, keys[3].Kind)
	require.Equal(t, "a", pool.Text(keys[3].Str))
	require.Equal(t, object.KeySymbol, keys[4].Kind)
}
