package objectops

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// ordinaryOps implements the ES "ordinary object" internal methods
// (spec §6: OrdinaryGetPrototypeOf, OrdinaryGet, OrdinarySet, …),
// grounded on internal/reader's kind-switch-then-delegate pattern: every
// other ops type embeds ordinaryOps and overrides only the handful of
// methods its kind actually changes.
type ordinaryOps struct{}

func (ordinaryOps) GetPrototypeOf(ctx *OpContext, cp heap.CP) (heap.CP, error) {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return heap.NullCP, except.New(except.ReferenceError, "object does not exist")
	}
	return rec.Proto, nil
}

func (ordinaryOps) SetPrototypeOf(ctx *OpContext, cp heap.CP, proto heap.CP) error {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return except.New(except.ReferenceError, "object does not exist")
	}
	if proto == rec.Proto {
		return nil
	}
	if !rec.Extensible {
		return except.New(except.TypeError, "object is not extensible")
	}
	return ctx.Store.SetPrototype(cp, proto)
}

func (ordinaryOps) IsExtensible(ctx *OpContext, cp heap.CP) (bool, error) {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return false, except.New(except.ReferenceError, "object does not exist")
	}
	return rec.Extensible, nil
}

func (ordinaryOps) PreventExtensions(ctx *OpContext, cp heap.CP) error {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return except.New(except.ReferenceError, "object does not exist")
	}
	rec.Extensible = false
	return nil
}

func (ordinaryOps) GetOwnProperty(ctx *OpContext, cp heap.CP, key object.Key) (object.Property, bool, error) {
	p, ok := ctx.Store.GetOwnProperty(cp, key)
	return p, ok, nil
}

// DefineOwnProperty implements a simplified OrdinaryDefineOwnProperty:
// spec §6's full validation (rejecting a write to a non-configurable,
// non-writable data property; rejecting a configurability downgrade on a
// non-configurable property; etc.) is the caller's (vm's property-
// definition opcodes') responsibility to check before calling here —
// this layer only ever needs to reject extending a non-extensible
// object with a brand-new property, the one invariant a storage-layer
// Define can't be trusted to skip.
func (o ordinaryOps) DefineOwnProperty(ctx *OpContext, cp heap.CP, key object.Key, desc object.Descriptor) error {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return except.New(except.ReferenceError, "object does not exist")
	}
	if _, exists, _ := o.GetOwnProperty(ctx, cp, key); !exists && !rec.Extensible {
		return except.New(except.TypeError, "cannot define property on a non-extensible object")
	}
	return ctx.Store.DefineOwnProperty(cp, key, desc)
}

func (o ordinaryOps) HasProperty(ctx *OpContext, cp heap.CP, key object.Key) (bool, error) {
	for c := cp; !c.IsNull(); {
		ops, err := For(ctx, c)
		if err != nil {
			return false, err
		}
		if _, ok, err := ops.GetOwnProperty(ctx, c, key); err != nil {
			return false, err
		} else if ok {
			return true, nil
		}
		proto, err := ops.GetPrototypeOf(ctx, c)
		if err != nil {
			return false, err
		}
		c = proto
	}
	return false, nil
}

func (o ordinaryOps) Get(ctx *OpContext, cp heap.CP, key object.Key, receiver value.Value) (value.Value, error) {
	for c := cp; !c.IsNull(); {
		ops, err := For(ctx, c)
		if err != nil {
			return value.Value{}, err
		}
		p, ok, err := ops.GetOwnProperty(ctx, c, key)
		if err != nil {
			return value.Value{}, err
		}
		if ok {
			if p.Type == object.PropAccessor {
				if p.Getter.IsUndefined() {
					return value.Undefined(), nil
				}
				getterOps, err := For(ctx, p.Getter.AsObject())
				if err != nil {
					return value.Value{}, err
				}
				return getterOps.Call(ctx, p.Getter.AsObject(), receiver, nil)
			}
			return p.Value, nil
		}
		proto, err := ops.GetPrototypeOf(ctx, c)
		if err != nil {
			return value.Value{}, err
		}
		c = proto
	}
	return value.Undefined(), nil
}

func (o ordinaryOps) Set(ctx *OpContext, cp heap.CP, key object.Key, v value.Value, receiver value.Value) error {
	p, ok, err := o.GetOwnProperty(ctx, cp, key)
	if err != nil {
		return err
	}
	if ok {
		if p.Type == object.PropAccessor {
			if p.Setter.IsUndefined() {
				return except.New(except.TypeError, "property has no setter")
			}
			setterOps, err := For(ctx, p.Setter.AsObject())
			if err != nil {
				return err
			}
			_, err = setterOps.Call(ctx, p.Setter.AsObject(), receiver, []value.Value{v})
			return err
		}
		if !p.Attrs.Writable {
			return except.New(except.TypeError, "property is not writable")
		}
		return ctx.Store.DefineOwnProperty(cp, key, object.Descriptor{Value: &v})
	}
	rec, ok2 := ctx.Store.Get(cp)
	if !ok2 {
		return except.New(except.ReferenceError, "object does not exist")
	}
	proto := rec.Proto
	if !proto.IsNull() {
		parentOps, err := For(ctx, proto)
		if err != nil {
			return err
		}
		if has, err := parentOps.HasProperty(ctx, proto, key); err != nil {
			return err
		} else if has {
			return parentOps.Set(ctx, proto, key, v, receiver)
		}
	}
	return ctx.Store.DefineOwnProperty(cp, key, object.Descriptor{Value: &v})
}

func (ordinaryOps) Delete(ctx *OpContext, cp heap.CP, key object.Key) (bool, error) {
	p, ok := ctx.Store.GetOwnProperty(cp, key)
	if ok && !p.Attrs.Configurable {
		return false, nil
	}
	return ctx.Store.Delete(cp, key), nil
}

func (ordinaryOps) OwnPropertyKeys(ctx *OpContext, cp heap.CP) ([]object.Key, error) {
	return ctx.Store.OwnPropertyKeys(cp), nil
}

func (ordinaryOps) Call(ctx *OpContext, cp heap.CP, this value.Value, args []value.Value) (value.Value, error) {
	return value.Value{}, except.ErrNotCallable
}

func (ordinaryOps) Construct(ctx *OpContext, cp heap.CP, args []value.Value, newTarget value.Value) (value.Value, error) {
	return value.Value{}, except.ErrNotConstructable
}
