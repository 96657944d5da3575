package gc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/gc"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

func newTestStore(t *testing.T) (*object.Store, *strtab.Pool) {
	t.Helper()
	pool := strtab.NewPool(heap.New(0))
	return object.NewStore(pool), pool
}

func TestBitmapSetAndGrow(t *testing.T) {
	b := gc.NewBitmap()
	require.False(t, b.IsSet(heap.CP(500)))
	b.Set(heap.CP(500))
	require.True(t, b.IsSet(heap.CP(500)))
	require.False(t, b.IsSet(heap.CP(1)))
	b.Reset()
	require.False(t, b.IsSet(heap.CP(500)))
}

func TestCollectFreesUnreachableObjects(t *testing.T) {
	store, pool := newTestStore(t)
	collector := gc.NewCollector(store, pool)

	root, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)
	garbage, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	_, live := store.Get(root)
	require.True(t, live)
	_, live = store.Get(garbage)
	require.True(t, live)

	freed := collector.Collect(func() []heap.CP { return []heap.CP{root} })
	require.Equal(t, 1, freed)

	_, live = store.Get(root)
	require.True(t, live, "rooted object must survive collection")
	_, live = store.Get(garbage)
	require.False(t, live, "unreachable object must be freed")
}

func TestCollectFollowsPropertyReferences(t *testing.T) {
	store, pool := newTestStore(t)
	collector := gc.NewCollector(store, pool)

	child, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)
	parent, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	key, err := pool.NewString("child")
	require.NoError(t, err)
	v := value.Object(child)
	require.NoError(t, store.DefineOwnProperty(parent, object.StringKey(key), object.Descriptor{Value: &v}))

	freed := collector.Collect(func() []heap.CP { return []heap.CP{parent} })
	require.Equal(t, 0, freed)

	_, live := store.Get(child)
	require.True(t, live, "an object reachable only via a property value must survive")
}

func TestCollectRelinksSurvivingChainAcrossMultiplePasses(t *testing.T) {
	store, pool := newTestStore(t)
	collector := gc.NewCollector(store, pool)

	a, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)
	b, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)
	c, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	// First pass frees only b (the interior node of the alloc-order chain
	// c -> b -> a). A naive sweep that keeps reading stale `next` pointers
	// off freed records would sever the link to `a` here.
	freed := collector.Collect(func() []heap.CP { return []heap.CP{a, c} })
	require.Equal(t, 1, freed)

	// Second pass must still be able to reach (and free, being unrooted)
	// both a and c by walking the relinked list.
	freed = collector.Collect(func() []heap.CP { return nil })
	require.Equal(t, 2, freed)

	_, live := store.Get(a)
	require.False(t, live)
	_, live = store.Get(c)
	require.False(t, live)
	_ = b
}

func TestWeakTableNullifiesOnCollection(t *testing.T) {
	store, pool := newTestStore(t)
	collector := gc.NewCollector(store, pool)

	target, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	cleared := false
	collector.Weak().Register(target, func() { cleared = true })

	collector.Collect(func() []heap.CP { return nil })
	require.True(t, cleared, "a weakly-held target must be nullified once unreachable")
}

func TestWeakTableSurvivesWhenTargetIsRooted(t *testing.T) {
	store, pool := newTestStore(t)
	collector := gc.NewCollector(store, pool)

	target, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	cleared := false
	collector.Weak().Register(target, func() { cleared = true })

	collector.Collect(func() []heap.CP { return []heap.CP{target} })
	require.False(t, cleared)
}
