package env_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/env"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/objectops"
	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

func newEnvs(t *testing.T) (*env.Environments, *object.Store, *strtab.Pool) {
	t.Helper()
	pool := strtab.NewPool(heap.New(0))
	store := object.NewStore(pool)
	ops := objectops.NewContext(store, pool, nil)
	return env.New(store, pool, ops), store, pool
}

func TestDeclarativeCreateInitializeGet(t *testing.T) {
	e, store, _ := newEnvs(t)
	cp, err := e.NewDeclarative(heap.NullCP)
	require.NoError(t, err)
	_ = store

	require.NoError(t, e.CreateMutableBinding(cp, "x"))
	require.NoError(t, e.InitializeBinding(cp, "x", value.Int(7)))

	got, err := e.GetBindingValue(cp, "x")
	require.NoError(t, err)
	require.Equal(t, int32(7), got.AsInt())
}

func TestDeclarativeReadBeforeInitializeIsTDZError(t *testing.T) {
	e, _, _ := newEnvs(t)
	cp, err := e.NewDeclarative(heap.NullCP)
	require.NoError(t, err)
	require.NoError(t, e.CreateMutableBinding(cp, "x"))

	_, err = e.GetBindingValue(cp, "x")
	require.Error(t, err)
}

func TestDeclarativeSetBeforeInitializeIsTDZError(t *testing.T) {
	e, _, _ := newEnvs(t)
	cp, err := e.NewDeclarative(heap.NullCP)
	require.NoError(t, err)
	require.NoError(t, e.CreateMutableBinding(cp, "x"))

	err = e.SetMutableBinding(cp, "x", value.Int(1))
	require.Error(t, err)
}

func TestConstReassignmentIsRejected(t *testing.T) {
	e, _, _ := newEnvs(t)
	cp, err := e.NewDeclarative(heap.NullCP)
	require.NoError(t, err)
	require.NoError(t, e.CreateImmutableBinding(cp, "c"))
	require.NoError(t, e.InitializeBinding(cp, "c", value.Int(1)))

	err = e.SetMutableBinding(cp, "c", value.Int(2))
	require.Error(t, err)

	got, err := e.GetBindingValue(cp, "c")
	require.NoError(t, err)
	require.Equal(t, int32(1), got.AsInt())
}

func TestScopeChainWalksOuterForUnresolvedBinding(t *testing.T) {
	e, _, _ := newEnvs(t)
	outer, err := e.NewDeclarative(heap.NullCP)
	require.NoError(t, err)
	require.NoError(t, e.CreateMutableBinding(outer, "y"))
	require.NoError(t, e.InitializeBinding(outer, "y", value.Int(42)))

	inner, err := e.NewDeclarative(outer)
	require.NoError(t, err)
	require.NoError(t, e.CreateMutableBinding(inner, "z"))
	require.NoError(t, e.InitializeBinding(inner, "z", value.Int(1)))

	got, err := e.GetBindingValue(inner, "y")
	require.NoError(t, err)
	require.Equal(t, int32(42), got.AsInt())
}

func TestUnresolvedBindingAtGlobalScopeIsReferenceError(t *testing.T) {
	e, _, _ := newEnvs(t)
	cp, err := e.NewDeclarative(heap.NullCP)
	require.NoError(t, err)

	_, err = e.GetBindingValue(cp, "nope")
	require.Error(t, err)
}

func TestObjectEnvironmentDelegatesToBackingObject(t *testing.T) {
	e, store, _ := newEnvs(t)
	backing, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	cp, err := e.NewObjectEnv(heap.NullCP, backing)
	require.NoError(t, err)

	require.NoError(t, e.CreateMutableBinding(cp, "w"))
	require.NoError(t, e.InitializeBinding(cp, "w", value.Int(5)))

	has, err := e.HasBinding(cp, "w")
	require.NoError(t, err)
	require.True(t, has)

	got, err := e.GetBindingValue(cp, "w")
	require.NoError(t, err)
	require.Equal(t, int32(5), got.AsInt())

	require.NoError(t, e.SetMutableBinding(cp, "w", value.Int(6)))
	got, err = e.GetBindingValue(cp, "w")
	require.NoError(t, err)
	require.Equal(t, int32(6), got.AsInt())
}

func TestGlobalEnvironmentDeleteBindingDelegatesToBackingObject(t *testing.T) {
	e, store, _ := newEnvs(t)
	backing, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	cp, err := e.NewGlobal(backing)
	require.NoError(t, err)

	require.NoError(t, e.CreateMutableBinding(cp, "g"))
	require.NoError(t, e.InitializeBinding(cp, "g", value.Int(1)))

	ok, err := e.DeleteBinding(cp, "g")
	require.NoError(t, err)
	require.True(t, ok)

	has, err := e.HasBinding(cp, "g")
	require.NoError(t, err)
	require.False(t, has)
}

func TestDeclarativeDeleteBindingAlwaysFails(t *testing.T) {
	e, _, _ := newEnvs(t)
	cp, err := e.NewDeclarative(heap.NullCP)
	require.NoError(t, err)
	require.NoError(t, e.CreateMutableBinding(cp, "x"))

	ok, err := e.DeleteBinding(cp, "x")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasBindingDoesNotWalkOuter(t *testing.T) {
	e, _, _ := newEnvs(t)
	outer, err := e.NewDeclarative(heap.NullCP)
	require.NoError(t, err)
	require.NoError(t, e.CreateMutableBinding(outer, "y"))

	inner, err := e.NewDeclarative(outer)
	require.NoError(t, err)

	has, err := e.HasBinding(inner, "y")
	require.NoError(t, err)
	require.False(t, has)
}
