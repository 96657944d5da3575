package objectops

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// arrayOps overlays ordinaryOps with the one ECMAScript Array invariant
// that storage alone cannot enforce: writing "length" must truncate (or
// may extend) the element set, and writing past the current length must
// bump "length" to match (spec §6's ArraySetLength algorithm). The
// element-storage side of this (fast-array demotion on sparse writes) is
// already object.Store's job; this layer only adds the length
// bookkeeping OrdinaryDefineOwnProperty does not know about.
type arrayOps struct{ ordinaryOps }

func (a arrayOps) DefineOwnProperty(ctx *OpContext, cp heap.CP, key object.Key, desc object.Descriptor) error {
	if key.Kind == object.KeyString && ctx.Pool.Text(key.Str) == "length" {
		return a.setLength(ctx, cp, desc)
	}
	if err := a.ordinaryOps.DefineOwnProperty(ctx, cp, key, desc); err != nil {
		return err
	}
	if key.Kind == object.KeyIndex {
		rec, ok := ctx.Store.Get(cp)
		if ok && key.Index+1 > rec.ArrayLength {
			rec.ArrayLength = key.Index + 1
		}
	}
	return nil
}

func (arrayOps) setLength(ctx *OpContext, cp heap.CP, desc object.Descriptor) error {
	if desc.Value == nil {
		return nil
	}
	if !desc.Value.IsNumber() {
		return except.New(except.RangeError, "invalid array length")
	}
	n := desc.Value.AsNumber()
	if n < 0 || n != float64(uint32(n)) {
		return except.New(except.RangeError, "invalid array length")
	}
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return except.New(except.ReferenceError, "object does not exist")
	}
	newLen := uint32(n)
	if newLen < rec.ArrayLength {
		for i := newLen; i < rec.ArrayLength; i++ {
			ctx.Store.Delete(cp, object.IndexKey(i))
		}
	}
	rec.ArrayLength = newLen
	if rec.FastElems != nil && int(newLen) < len(rec.FastElems) {
		rec.FastElems = rec.FastElems[:newLen]
	}
	return nil
}

func (arrayOps) GetOwnProperty(ctx *OpContext, cp heap.CP, key object.Key) (object.Property, bool, error) {
	if key.Kind == object.KeyString && ctx.Pool.Text(key.Str) == "length" {
		rec, ok := ctx.Store.Get(cp)
		if !ok {
			return object.Property{}, false, except.New(except.ReferenceError, "object does not exist")
		}
		return object.Property{
			Key: key, Type: object.PropData, Value: value.Int(int32(rec.ArrayLength)),
			Attrs: object.Attrs{Writable: true},
		}, true, nil
	}
	p, ok := ctx.Store.GetOwnProperty(cp, key)
	return p, ok, nil
}
