package objectops

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// argumentsOps implements the mapped Arguments object's internal methods
// (spec §4.4/§4.6, ECMA-262 §10.4.4), grounded on ecma-arguments-object.c's
// ecma_arguments_object_get/_set/_define_own_property. A mapped index's
// Get/Set is a live alias into the captured lexical environment: reading
// or writing arguments[i] reads or writes the corresponding parameter
// binding directly, until DefineOwnProperty reconfigures that index (an
// accessor, or writable:false), which severs the mapping permanently by
// deleting it from Record.MappedNames (the Go analogue of the C source's
// ECMA_VALUE_ARGUMENT_NO_TRACK sentinel). An unmapped Arguments object
// (strict-mode or non-simple-parameter functions) never populates
// MappedNames, so every access falls straight through to ordinaryOps.
type argumentsOps struct {
	ordinaryOps
}

func (a argumentsOps) mappedName(ctx *OpContext, cp heap.CP, key object.Key) (heap.CP, string, bool) {
	if key.Kind != object.KeyIndex {
		return heap.NullCP, "", false
	}
	rec, ok := ctx.Store.Get(cp)
	if !ok || rec.MappedNames == nil {
		return heap.NullCP, "", false
	}
	name, tracked := rec.MappedNames[key.Index]
	if !tracked {
		return heap.NullCP, "", false
	}
	return rec.MappedEnv, ctx.Pool.Text(name), true
}

func (a argumentsOps) Get(ctx *OpContext, cp heap.CP, key object.Key, receiver value.Value) (value.Value, error) {
	if envCP, name, tracked := a.mappedName(ctx, cp, key); tracked {
		if ctx.GetBinding == nil {
			panic("objectops: BindingGetter not wired before a mapped Arguments Get")
		}
		return ctx.GetBinding(envCP, name)
	}
	return a.ordinaryOps.Get(ctx, cp, key, receiver)
}

func (a argumentsOps) Set(ctx *OpContext, cp heap.CP, key object.Key, v value.Value, receiver value.Value) error {
	if envCP, name, tracked := a.mappedName(ctx, cp, key); tracked {
		if ctx.SetBinding == nil {
			panic("objectops: BindingSetter not wired before a mapped Arguments Set")
		}
		return ctx.SetBinding(envCP, name, v)
	}
	return a.ordinaryOps.Set(ctx, cp, key, v, receiver)
}

func (a argumentsOps) DefineOwnProperty(ctx *OpContext, cp heap.CP, key object.Key, desc object.Descriptor) error {
	if err := a.ordinaryOps.DefineOwnProperty(ctx, cp, key, desc); err != nil {
		return err
	}
	envCP, name, tracked := a.mappedName(ctx, cp, key)
	if !tracked {
		return nil
	}
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return except.New(except.ReferenceError, "object does not exist")
	}
	if desc.Getter != nil || desc.Setter != nil || (desc.Writable != nil && !*desc.Writable) {
		delete(rec.MappedNames, key.Index)
		return nil
	}
	if desc.Value != nil {
		if ctx.SetBinding == nil {
			panic("objectops: BindingSetter not wired before a mapped Arguments DefineOwnProperty")
		}
		if err := ctx.SetBinding(envCP, name, *desc.Value); err != nil {
			return err
		}
	}
	return nil
}
