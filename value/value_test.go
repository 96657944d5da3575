package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/value"
)

func TestConstructorsRoundTrip(t *testing.T) {
	assert.True(t, value.Undefined().IsUndefined())
	assert.True(t, value.Null().IsNull())
	assert.True(t, value.Empty().IsEmpty())
	assert.True(t, value.Bool(true).AsBool())
	assert.Equal(t, int32(42), value.Int(42).AsInt())
	assert.Equal(t, 3.5, value.Float(3.5).AsFloat())
	assert.Equal(t, value.StrID(7), value.Str(7).AsString())
	assert.Equal(t, heap.CP(9), value.Object(heap.CP(9)).AsObject())
}

func TestIsNumberCoversBothStorageClasses(t *testing.T) {
	assert.True(t, value.Int(1).IsNumber())
	assert.True(t, value.Float(1.5).IsNumber())
	assert.False(t, value.Str(1).IsNumber())
}

func TestAsNumberNormalizesIntAndFloat(t *testing.T) {
	assert.Equal(t, 4.0, value.Int(4).AsNumber())
	assert.Equal(t, 4.5, value.Float(4.5).AsNumber())
}

func TestIsNullish(t *testing.T) {
	assert.True(t, value.Null().IsNullish())
	assert.True(t, value.Undefined().IsNullish())
	assert.False(t, value.Int(0).IsNullish())
}

func TestErrorBitRoundTrips(t *testing.T) {
	v := value.Object(heap.CP(3))
	assert.False(t, v.IsError())
	tagged := v.WithError()
	assert.True(t, tagged.IsError())
	assert.Equal(t, heap.CP(3), tagged.AsObject())
	assert.False(t, v.IsError(), "WithError must not mutate the receiver")

	cleared := tagged.ClearError()
	assert.False(t, cleared.IsError())
}

func TestSameValuePrimitives(t *testing.T) {
	assert.True(t, value.SameValue(value.Int(1), value.Int(1)))
	assert.False(t, value.SameValue(value.Int(1), value.Int(2)))
	assert.True(t, value.SameValue(value.Undefined(), value.Undefined()))
	assert.False(t, value.SameValue(value.Undefined(), value.Null()))
}

func TestSameValueDistinguishesZerosAndEqualsNaN(t *testing.T) {
	assert.True(t, value.SameValue(value.Float(0), value.Float(0)))
	assert.False(t, value.SameValue(value.Float(math.Copysign(0, 1)), value.Float(math.Copysign(0, -1))))
	assert.True(t, value.SameValue(value.Float(math.NaN()), value.Float(math.NaN())))
}

func TestSameValueObjectsCompareByCP(t *testing.T) {
	a := value.Object(heap.CP(5))
	b := value.Object(heap.CP(5))
	c := value.Object(heap.CP(6))
	assert.True(t, value.SameValue(a, b))
	assert.False(t, value.SameValue(a, c))
}

func TestSameValueDifferentTagsAreNotEqual(t *testing.T) {
	assert.False(t, value.SameValue(value.Int(0), value.Bool(false)))
}
