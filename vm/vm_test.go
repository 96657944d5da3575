package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/bytecode"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/objectops"
	"github.com/tinyjs/corevm/value"
	"github.com/tinyjs/corevm/vm"
)

// load builds b into a *bytecode.CompiledCode against ctx's pool.
func load(t *testing.T, ctx *vm.Context, b *bytecode.Builder) *bytecode.CompiledCode {
	t.Helper()
	code, err := bytecode.Load(b.Bytes(), ctx.Pool)
	require.NoError(t, err)
	return code
}

// callTopLevel wraps code as a zero-argument closure over ctx's global
// environment and invokes it through the same [[Call]] path a scripted
// function reached from ECMAScript would go through.
func callTopLevel(t *testing.T, ctx *vm.Context, code *bytecode.CompiledCode, args ...value.Value) (value.Value, error) {
	t.Helper()
	fnCP, err := ctx.CreateFunction(code, ctx.GlobalEnv, heap.NullCP, false)
	require.NoError(t, err)
	ops, err := objectops.For(ctx.Ops, fnCP)
	require.NoError(t, err)
	return ops.Call(ctx.Ops, fnCP, value.Undefined(), args)
}

func TestArithmeticExpression(t *testing.T) {
	ctx := vm.NewContext()

	b := bytecode.NewBuilder("arith")
	b.SetStackDepth(4)
	two := b.AddNumberLiteral(2)
	three := b.AddNumberLiteral(3)
	b.Emit(bytecode.OpPushLiteral, bytecode.PutU8(two)...)
	b.Emit(bytecode.OpPushLiteral, bytecode.PutU8(three)...)
	b.Emit(bytecode.OpAdd)
	b.Emit(bytecode.OpReturn)

	result, err := callTopLevel(t, ctx, load(t, ctx, b))
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.AsNumber())
}

func TestFunctionCallRoundTrip(t *testing.T) {
	ctx := vm.NewContext()

	inner := bytecode.NewBuilder("double")
	inner.SetArgCount(1).SetStackDepth(4)
	argName := inner.AddStringLiteral("@arg0")
	two := inner.AddNumberLiteral(2)
	inner.Emit(bytecode.OpPushIdentReference, bytecode.PutU8(argName)...)
	inner.Emit(bytecode.OpPushLiteral, bytecode.PutU8(two)...)
	inner.Emit(bytecode.OpMul)
	inner.Emit(bytecode.OpReturn)

	outer := bytecode.NewBuilder("outer")
	outer.SetStackDepth(4)
	fnIdx := outer.AddFunction(inner.Bytes())
	arg := outer.AddNumberLiteral(21)
	outer.Emit(bytecode.OpCreateFunction, bytecode.PutU8(uint8(fnIdx))...)
	outer.Emit(bytecode.OpPushUndefined)
	outer.Emit(bytecode.OpPushLiteral, bytecode.PutU8(arg)...)
	outer.Emit(bytecode.OpCall1)
	outer.Emit(bytecode.OpReturn)

	result, err := callTopLevel(t, ctx, load(t, ctx, outer))
	require.NoError(t, err)
	assert.Equal(t, 42.0, result.AsNumber())
}

func TestClosureCapturesOuterBinding(t *testing.T) {
	ctx := vm.NewContext()

	inner := bytecode.NewBuilder("readX")
	inner.SetStackDepth(4)
	xName := inner.AddStringLiteral("x")
	inner.Emit(bytecode.OpPushIdentReference, bytecode.PutU8(xName)...)
	inner.Emit(bytecode.OpReturn)

	outer := bytecode.NewBuilder("outer")
	outer.SetStackDepth(4)
	ten := outer.AddNumberLiteral(10)
	xName2 := outer.AddStringLiteral("x")
	fnIdx := outer.AddFunction(inner.Bytes())
	outer.Emit(bytecode.OpPushLiteral, bytecode.PutU8(ten)...)
	outer.Emit(bytecode.OpInitLet, bytecode.PutU8(xName2)...)
	outer.Emit(bytecode.OpCreateFunction, bytecode.PutU8(uint8(fnIdx))...)
	outer.Emit(bytecode.OpReturn)

	closureVal, err := callTopLevel(t, ctx, load(t, ctx, outer))
	require.NoError(t, err)
	require.True(t, closureVal.IsObject(), "outer should return the created closure")

	innerOps, err := objectops.For(ctx.Ops, closureVal.AsObject())
	require.NoError(t, err)
	result, err := innerOps.Call(ctx.Ops, closureVal.AsObject(), value.Undefined(), nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.AsNumber(), "closure should observe the outer frame's binding by reference, not by copy")
}

func TestThrowCaughtByProtectedRange(t *testing.T) {
	ctx := vm.NewContext()

	b := bytecode.NewBuilder("trycatch")
	b.SetStackDepth(4)
	msg := b.AddStringLiteral("boom")
	caught := b.AddStringLiteral("e")
	b.Emit(bytecode.OpPushLiteral, bytecode.PutU8(msg)...) // ip 0..1
	b.Emit(bytecode.OpThrow)                               // ip 2
	b.Emit(bytecode.OpInitLet, bytecode.PutU8(caught)...)  // ip 3..4, catch handler entry
	b.Emit(bytecode.OpPushIdentReference, bytecode.PutU8(caught)...)
	b.Emit(bytecode.OpReturn)
	b.AddProtectedRange(bytecode.ProtectedRange{StartIP: 0, EndIP: 3, HandlerIP: 3, Kind: bytecode.RangeCatch})

	result, err := callTopLevel(t, ctx, load(t, ctx, b))
	require.NoError(t, err, "a caught throw must not escape as a Go error")
	assert.Equal(t, "boom", ctx.Pool.Text(result), "the catch binding should hold the thrown value itself")
}

func TestFinallyReplaysThrowCompletion(t *testing.T) {
	ctx := vm.NewContext()

	b := bytecode.NewBuilder("finallyrethrow")
	b.SetStackDepth(4)
	msg := b.AddStringLiteral("kaboom")
	b.Emit(bytecode.OpPushLiteral, bytecode.PutU8(msg)...) // ip 0..1
	b.Emit(bytecode.OpThrow)                               // ip 2
	b.Emit(bytecode.OpFinallyEnter, bytecode.PutU16(0)...) // ip 3..5, finally handler entry
	b.Emit(bytecode.OpFinallyExit, bytecode.PutU16(0)...)  // ip 6..8
	b.AddProtectedRange(bytecode.ProtectedRange{StartIP: 0, EndIP: 3, HandlerIP: 3, Kind: bytecode.RangeFinally})

	_, err := callTopLevel(t, ctx, load(t, ctx, b))
	require.Error(t, err, "finally_exit must replay the stashed throw once the finally block itself completes normally")
	assert.EqualError(t, err, "uncaught exception")
}

// TestGeneratorYieldsThenCompletes exercises the boxed-frame suspension
// scheme end to end: `function* g(){ yield 1; yield 2 }` is assembled
// directly as bytecode (no parser in scope), called, and driven through
// two "next" calls plus a third that observes completion.
func TestGeneratorYieldsThenCompletes(t *testing.T) {
	ctx := vm.NewContext()

	gen := bytecode.NewBuilder("g")
	gen.SetFlags(bytecode.FlagGenerator).SetStackDepth(4)
	one := gen.AddNumberLiteral(1)
	two := gen.AddNumberLiteral(2)
	gen.Emit(bytecode.OpPushLiteral, bytecode.PutU8(one)...)
	gen.Emit(bytecode.OpYield)
	gen.Emit(bytecode.OpPop)
	gen.Emit(bytecode.OpPushLiteral, bytecode.PutU8(two)...)
	gen.Emit(bytecode.OpYield)
	gen.Emit(bytecode.OpPop)
	gen.Emit(bytecode.OpPushUndefined)
	gen.Emit(bytecode.OpReturn)

	genVal, err := callTopLevel(t, ctx, load(t, ctx, gen))
	require.NoError(t, err)
	require.True(t, genVal.IsObject(), "calling a generator function must return a generator object, not run its body")

	next := func() (v value.Value, done bool) {
		ops, err := objectops.For(ctx.Ops, genVal.AsObject())
		require.NoError(t, err)
		nextKey, kerr := ctx.Pool.NewString("next")
		require.NoError(t, kerr)
		nextProp, ok, gerr := ops.GetOwnProperty(ctx.Ops, genVal.AsObject(), object.StringKey(nextKey))
		require.NoError(t, gerr)
		require.True(t, ok)

		fnOps, err := objectops.For(ctx.Ops, nextProp.Value.AsObject())
		require.NoError(t, err)
		result, err := fnOps.Call(ctx.Ops, nextProp.Value.AsObject(), genVal, nil)
		require.NoError(t, err)
		require.True(t, result.IsObject())

		resOps, err := objectops.For(ctx.Ops, result.AsObject())
		require.NoError(t, err)
		valueKey, kerr := ctx.Pool.NewString("value")
		require.NoError(t, kerr)
		doneKey, kerr := ctx.Pool.NewString("done")
		require.NoError(t, kerr)
		vProp, ok, gerr := resOps.GetOwnProperty(ctx.Ops, result.AsObject(), object.StringKey(valueKey))
		require.NoError(t, gerr)
		require.True(t, ok)
		dProp, ok, gerr := resOps.GetOwnProperty(ctx.Ops, result.AsObject(), object.StringKey(doneKey))
		require.NoError(t, gerr)
		require.True(t, ok)
		return vProp.Value, dProp.Value.AsBool()
	}

	v1, done1 := next()
	assert.Equal(t, 1.0, v1.AsNumber())
	assert.False(t, done1)

	v2, done2 := next()
	assert.Equal(t, 2.0, v2.AsNumber())
	assert.False(t, done2)

	_, done3 := next()
	assert.True(t, done3, "a third next() after the body runs to completion must report done:true")
}

func TestAllocationRetriesAfterGCReclaimsSpace(t *testing.T) {
	ctx := vm.NewContext()

	// Exhaust the object arena with garbage nothing roots, so the next
	// allocation can only succeed by collecting first.
	full := false
	for i := 0; i < 70000; i++ {
		if _, err := ctx.Store.Create(object.NewOrdinary(heap.NullCP)); err != nil {
			full = true
			break
		}
	}
	require.True(t, full, "test setup expects the object arena to actually fill")

	b := bytecode.NewBuilder("noop")
	b.SetStackDepth(1)
	b.Emit(bytecode.OpPushUndefined)
	b.Emit(bytecode.OpReturn)

	fnCP, err := ctx.CreateFunction(load(t, ctx, b), ctx.GlobalEnv, heap.NullCP, false)
	require.NoError(t, err, "allocating past a full arena should collect the unreachable garbage and retry once rather than failing permanently")
	_, live := ctx.Store.Get(fnCP)
	assert.True(t, live)
}

func TestGCPreservesLiveFrameStateAcrossACollectionMidCall(t *testing.T) {
	ctx := vm.NewContext()

	// garbage is reachable from nothing once created: no binding, no
	// frame slot, no global property. A correct collection run must
	// reclaim it.
	garbage, err := ctx.Store.Create(object.NewOrdinary(heap.NullCP))
	require.NoError(t, err)

	gcCP, err := ctx.Store.Create(object.Record{
		Kind: object.KindNativeFunction, Proto: heap.NullCP, Extensible: true,
		NativeCall: func(_ any, _ value.Value, _ []value.Value, _ value.Value) (value.Value, error) {
			ctx.GC.Collect(ctx.Roots)
			return value.Undefined(), nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, ctx.Env.CreateMutableBinding(ctx.GlobalEnv, "gc"))
	require.NoError(t, ctx.Env.InitializeBinding(ctx.GlobalEnv, "gc", value.Object(gcCP)))

	inner := bytecode.NewBuilder("noop")
	inner.SetStackDepth(1)
	inner.Emit(bytecode.OpPushUndefined)
	inner.Emit(bytecode.OpReturn)

	outer := bytecode.NewBuilder("makeAndCollect")
	outer.SetStackDepth(4)
	fnIdx := outer.AddFunction(inner.Bytes())
	gcName := outer.AddStringLiteral("gc")
	outer.Emit(bytecode.OpCreateFunction, bytecode.PutU8(uint8(fnIdx))...) // pushes F, stays live on the stack
	outer.Emit(bytecode.OpPushIdentReference, bytecode.PutU8(gcName)...)
	outer.Emit(bytecode.OpPushUndefined) // this
	outer.Emit(bytecode.OpCall0)         // runs the collection while F still sits on this frame's stack
	outer.Emit(bytecode.OpPop)           // discard gc()'s undefined result
	outer.Emit(bytecode.OpReturn)        // returns F

	result, err := callTopLevel(t, ctx, load(t, ctx, outer))
	require.NoError(t, err)
	require.True(t, result.IsObject())

	_, stillLive := ctx.Store.Get(result.AsObject())
	assert.True(t, stillLive, "an object referenced from a live frame's value stack must survive a collection run mid-call")

	_, garbageLive := ctx.Store.Get(garbage)
	assert.False(t, garbageLive, "an unreachable object must be reclaimed by the collection the test triggered")
}
