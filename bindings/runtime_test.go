package bindings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/bindings"
	"github.com/tinyjs/corevm/bytecode"
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/internal/config"
	"github.com/tinyjs/corevm/value"
)

func TestObjectOperations(t *testing.T) {
	rt := bindings.Init()

	obj, err := rt.NewObject(rt.Null())
	require.NoError(t, err)
	require.True(t, rt.IsObject(obj))

	name, err := rt.String("alice")
	require.NoError(t, err)
	require.NoError(t, rt.Set(obj, "name", name))

	has, err := rt.Has(obj, "name")
	require.NoError(t, err)
	assert.True(t, has)

	got, err := rt.Get(obj, "name")
	require.NoError(t, err)
	assert.Equal(t, "alice", rt.ToGoString(got))

	keys, err := rt.OwnPropertyKeys(obj)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "name", rt.ToGoString(keys[0]))

	deleted, err := rt.Delete(obj, "name")
	require.NoError(t, err)
	assert.True(t, deleted)
	has, err = rt.Has(obj, "name")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestArrayLengthBookkeeping(t *testing.T) {
	rt := bindings.Init()

	arr, err := rt.NewArray(rt.Null())
	require.NoError(t, err)

	require.NoError(t, rt.Set(arr, 0, rt.Number(10)))
	require.NoError(t, rt.Set(arr, 2, rt.Number(30)))

	length, err := rt.Get(arr, "length")
	require.NoError(t, err)
	assert.Equal(t, 3.0, rt.ToGoNumber(length))
}

func TestPrototypeChain(t *testing.T) {
	rt := bindings.Init()

	base, err := rt.NewObject(rt.Null())
	require.NoError(t, err)
	child, err := rt.NewObject(rt.Null())
	require.NoError(t, err)

	require.NoError(t, rt.SetPrototypeOf(child, base))
	proto, err := rt.GetPrototypeOf(child)
	require.NoError(t, err)
	assert.True(t, rt.IsObject(proto))
}

func TestDefineOwnPropertyNonEnumerable(t *testing.T) {
	rt := bindings.Init()

	obj, err := rt.NewObject(rt.Null())
	require.NoError(t, err)

	v := rt.Number(1)
	enumerable := false
	writable := true
	require.NoError(t, rt.DefineOwnProperty(obj, "hidden", bindings.PropertyDescriptor{
		Value: &v, Writable: &writable, Enumerable: &enumerable,
	}))

	// [[OwnPropertyKeys]] lists every own key regardless of enumerability
	// (enumerable filtering is a for-in/Object.keys-level concern, not
	// this internal method's) — the property still shows up here.
	keys, err := rt.OwnPropertyKeys(obj)
	require.NoError(t, err)
	assert.Contains(t, keysToStrings(rt, keys), "hidden")

	got, err := rt.Get(obj, "hidden")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rt.ToGoNumber(got))
}

func keysToStrings(rt *bindings.Runtime, keys []value.Value) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = rt.ToGoString(k)
	}
	return out
}

func TestRegisterNativeAndCallThroughGlobal(t *testing.T) {
	rt := bindings.Init()

	double, err := rt.RegisterNative(func(_ value.Value, args []value.Value) (value.Value, error) {
		return rt.Number(rt.ToGoNumber(args[0]) * 2), nil
	})
	require.NoError(t, err)
	require.NoError(t, rt.Set(rt.Global(), "double", double))

	got, err := rt.Get(rt.Global(), "double")
	require.NoError(t, err)

	result, err := rt.Call(got, rt.Undefined(), []value.Value{rt.Number(21)})
	require.NoError(t, err)
	assert.Equal(t, 42.0, rt.ToGoNumber(result))
}

func TestLoadBytecodeAndRun(t *testing.T) {
	rt := bindings.Init()

	b := bytecode.NewBuilder("entry")
	b.SetStackDepth(4)
	two := b.AddNumberLiteral(2)
	three := b.AddNumberLiteral(3)
	b.Emit(bytecode.OpPushLiteral, bytecode.PutU8(two)...)
	b.Emit(bytecode.OpPushLiteral, bytecode.PutU8(three)...)
	b.Emit(bytecode.OpAdd)
	b.Emit(bytecode.OpReturn)

	result, err := rt.Run(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 5.0, rt.ToGoNumber(result))
}

func TestAcquireKeepsValueAliveAcrossCollection(t *testing.T) {
	rt := bindings.Init()

	held, err := rt.NewObject(rt.Null())
	require.NoError(t, err)
	rt.Acquire(held)

	unrooted, err := rt.NewObject(rt.Null())
	require.NoError(t, err)

	rt.CollectGarbage()

	_, err = rt.Get(held, "anything")
	require.NoError(t, err, "an acquired value must survive a collection even though nothing in the script graph roots it")

	rt.Release(held)
	_ = unrooted
}

func TestAttachNativeFinalizerFiresOnCollection(t *testing.T) {
	rt := bindings.Init()

	obj, err := rt.NewObject(rt.Null())
	require.NoError(t, err)

	finalized := false
	rt.AttachNative(obj, "payload", func(any) { finalized = true })

	rt.CollectGarbage()
	assert.True(t, finalized, "an unrooted object's finalizer must run once GC reclaims it")
}

func TestExceptionSlot(t *testing.T) {
	rt := bindings.Init()

	assert.False(t, rt.HasException())
	msg, err := rt.String("boom")
	require.NoError(t, err)
	rt.RaiseException(msg)
	assert.True(t, rt.HasException())
	assert.Equal(t, "boom", rt.ToGoString(rt.Exception()))
	rt.ClearException()
	assert.False(t, rt.HasException())
}

func TestParseEvalAndMagicStringAreDocumentedUnsupported(t *testing.T) {
	rt := bindings.Init()

	_, err := rt.Parse("1 + 1")
	requireSyntaxError(t, err)

	_, err = rt.Eval("1 + 1")
	requireSyntaxError(t, err)

	_, err = rt.RegisterMagicString("@@myMagic")
	require.Error(t, err)
}

func requireSyntaxError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	ee, ok := err.(*except.ECMAError)
	require.True(t, ok)
	assert.Equal(t, except.SyntaxError, ee.Kind)
}

func TestInitHonorsConfigOptions(t *testing.T) {
	rt := bindings.Init(config.WithHeapByteSize(128*1024), config.WithMaxCallDepth(10))
	obj, err := rt.NewObject(rt.Null())
	require.NoError(t, err)
	assert.True(t, rt.IsObject(obj))
}
