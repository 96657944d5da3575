package objectops_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/objectops"
	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

func newCtx(t *testing.T) (*objectops.OpContext, *object.Store, *strtab.Pool) {
	t.Helper()
	pool := strtab.NewPool(heap.New(0))
	store := object.NewStore(pool)
	return objectops.NewContext(store, pool, nil), store, pool
}

func key(t *testing.T, pool *strtab.Pool, s string) object.Key {
	t.Helper()
	v, err := pool.NewString(s)
	require.NoError(t, err)
	return object.StringKey(v)
}

func TestGetWalksPrototypeChain(t *testing.T) {
	ctx, store, pool := newCtx(t)
	proto, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)
	child, err := store.Create(object.NewOrdinary(proto))
	require.NoError(t, err)

	v := value.Int(42)
	protoOps, err := objectops.For(ctx, proto)
	require.NoError(t, err)
	require.NoError(t, protoOps.DefineOwnProperty(ctx, proto, key(t, pool, "x"), object.Descriptor{Value: &v}))

	childOps, err := objectops.For(ctx, child)
	require.NoError(t, err)
	got, err := childOps.Get(ctx, child, key(t, pool, "x"), value.Object(child))
	require.NoError(t, err)
	require.Equal(t, int32(42), got.AsInt())
}

func TestSetOnNonExtensibleNewPropertyIsRejectedByDefine(t *testing.T) {
	ctx, store, pool := newCtx(t)
	cp, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)
	ops, err := objectops.For(ctx, cp)
	require.NoError(t, err)
	require.NoError(t, ops.PreventExtensions(ctx, cp))

	v := value.Int(1)
	err = ops.DefineOwnProperty(ctx, cp, key(t, pool, "y"), object.Descriptor{Value: &v})
	require.Error(t, err)
}

func TestDeleteRejectsNonConfigurable(t *testing.T) {
	ctx, store, pool := newCtx(t)
	cp, err := store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)
	ops, err := objectops.For(ctx, cp)
	require.NoError(t, err)

	v := value.Int(1)
	configurable := false
	require.NoError(t, ops.DefineOwnProperty(ctx, cp, key(t, pool, "z"), object.Descriptor{Value: &v, Configurable: &configurable}))

	ok, err := ops.Delete(ctx, cp, key(t, pool, "z"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArrayLengthUpdatesOnIndexWriteAndTruncatesOnShrink(t *testing.T) {
	ctx, store, _ := newCtx(t)
	cp, err := store.Create(object.Record{Kind: object.KindFastArray, Proto: heap.NullCP, Extensible: true})
	require.NoError(t, err)
	ops, err := objectops.For(ctx, cp)
	require.NoError(t, err)

	v := value.Int(7)
	require.NoError(t, ops.DefineOwnProperty(ctx, cp, object.IndexKey(3), object.Descriptor{Value: &v}))

	lengthKey := object.StringKey(mustStr(t, ctx))
	lp, ok, err := ops.GetOwnProperty(ctx, cp, lengthKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(4), lp.Value.AsInt())

	zero := value.Int(0)
	require.NoError(t, ops.DefineOwnProperty(ctx, cp, lengthKey, object.Descriptor{Value: &zero}))
	lp, ok, err = ops.GetOwnProperty(ctx, cp, lengthKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(0), lp.Value.AsInt())
}

func mustStr(t *testing.T, ctx *objectops.OpContext) value.Value {
	t.Helper()
	v, err := ctx.Pool.NewString("length")
	require.NoError(t, err)
	return v
}

func TestBoundFunctionCallPrependsArgsAndSubstitutesThis(t *testing.T) {
	ctx, store, _ := newCtx(t)

	var capturedThis value.Value
	var capturedArgs []value.Value
	targetCP, err := store.Create(object.Record{
		Kind: object.KindNativeFunction, Proto: heap.NullCP, Extensible: true,
		NativeCall: func(c any, this value.Value, args []value.Value, newTarget value.Value) (value.Value, error) {
			capturedThis = this
			capturedArgs = args
			return value.Undefined(), nil
		},
	})
	require.NoError(t, err)

	boundThis := value.Int(99)
	boundCP, err := store.Create(object.Record{
		Kind: object.KindBoundFunction, Proto: heap.NullCP, Extensible: true,
		BoundTarget: targetCP, BoundThis: boundThis, BoundArgs: []value.Value{value.Int(1), value.Int(2)},
	})
	require.NoError(t, err)

	ops, err := objectops.For(ctx, boundCP)
	require.NoError(t, err)
	_, err = ops.Call(ctx, boundCP, value.Undefined(), []value.Value{value.Int(3)})
	require.NoError(t, err)

	require.True(t, value.SameValue(boundThis, capturedThis))
	require.Len(t, capturedArgs, 3)
	require.Equal(t, int32(1), capturedArgs[0].AsInt())
	require.Equal(t, int32(2), capturedArgs[1].AsInt())
	require.Equal(t, int32(3), capturedArgs[2].AsInt())
}
