package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/bytecode"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/strtab"
)

func newPool(t *testing.T) *strtab.Pool {
	t.Helper()
	return strtab.NewPool(heap.New(0))
}

func TestLoadRoundTripsBuilderOutput(t *testing.T) {
	pool := newPool(t)
	b := bytecode.NewBuilder("add").SetArgCount(2).SetRegCount(2).SetStackDepth(4)
	numLit := b.AddNumberLiteral(3.5)
	strLit := b.AddStringLiteral("x")
	b.Emit(bytecode.OpPushNumber, bytecode.PutU8(numLit)...)
	b.Emit(bytecode.OpPushLiteral, bytecode.PutU8(strLit)...)
	b.Emit(bytecode.OpAdd)
	b.Emit(bytecode.OpReturn)

	cc, err := bytecode.Load(b.Bytes(), pool)
	require.NoError(t, err)
	require.Equal(t, "add", cc.Name)
	require.Equal(t, uint16(2), cc.ArgumentCount)
	require.Len(t, cc.Literals, 2)
	require.Equal(t, 3.5, cc.Literals[0].AsNumber())
	require.Equal(t, "x", pool.Text(cc.Literals[1]))
	require.NotEmpty(t, cc.Code)
}

func TestLoadTruncatedBufferErrors(t *testing.T) {
	pool := newPool(t)
	_, err := bytecode.Load([]byte{1, 2, 3}, pool)
	require.ErrorIs(t, err, bytecode.ErrTruncated)
}

func TestHandlerForFindsInnermostRange(t *testing.T) {
	cc := &bytecode.CompiledCode{
		ProtectedRanges: []bytecode.ProtectedRange{
			{StartIP: 0, EndIP: 100, HandlerIP: 90, Kind: bytecode.RangeCatch},
			{StartIP: 10, EndIP: 20, HandlerIP: 25, Kind: bytecode.RangeFinally},
		},
	}
	r, ok := cc.HandlerFor(15)
	require.True(t, ok)
	require.Equal(t, uint32(25), r.HandlerIP)

	r, ok = cc.HandlerFor(50)
	require.True(t, ok)
	require.Equal(t, uint32(90), r.HandlerIP)

	_, ok = cc.HandlerFor(200)
	require.False(t, ok)
}

func TestNestedFunctionLiteralRoundTrips(t *testing.T) {
	pool := newPool(t)
	inner := bytecode.NewBuilder("inner").Emit(bytecode.OpPushUndefined).Emit(bytecode.OpReturn).Bytes()

	outer := bytecode.NewBuilder("outer")
	fnIdx := outer.AddFunction(inner)
	lit := outer.AddFunctionLiteral(fnIdx)
	outer.Emit(bytecode.OpCreateFunction, bytecode.PutU8(lit)...)
	outer.Emit(bytecode.OpReturn)

	cc, err := bytecode.Load(outer.Bytes(), pool)
	require.NoError(t, err)
	require.Len(t, cc.Functions, 1)
	require.Equal(t, "inner", cc.Functions[0].Name)
}

func TestSnapshotRoundTrip(t *testing.T) {
	pool := newPool(t)
	a := bytecode.NewBuilder("a").Emit(bytecode.OpPushZero).Emit(bytecode.OpReturn).Bytes()
	b := bytecode.NewBuilder("b").Emit(bytecode.OpPushOne).Emit(bytecode.OpReturn).Bytes()

	snap := bytecode.EncodeSnapshot([][]byte{a, b})
	loaded, err := bytecode.LoadSnapshot(snap, pool)
	require.NoError(t, err)
	require.Len(t, loaded.Codes, 2)
	require.Equal(t, "a", loaded.Codes[0].Name)
	require.Equal(t, "b", loaded.Codes[1].Name)
}

func TestLoadSnapshotRejectsBadMagic(t *testing.T) {
	pool := newPool(t)
	_, err := bytecode.LoadSnapshot([]byte{0, 0, 0, 0, 1, 0, 0, 0, 0, 0}, pool)
	require.ErrorIs(t, err, bytecode.ErrSignatureMismatch)
}
