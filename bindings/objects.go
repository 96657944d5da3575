package bindings

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// PropertyKey is any Go value an embedder can name a property by: a
// string, an int (treated as an array index when non-negative), or a
// value.Value already carrying a symbol. Object operations below accept
// this instead of object.Key directly so an embedder never has to import
// package object just to read or write a property.
type PropertyKey any

// toKey mirrors vm/dispatch.go's unexported toKey (ToPropertyKey, spec
// §4.7), re-expressed over PropertyKey's Go-native inputs instead of a
// value.Value already on the operand stack — this package's callers
// start from a Go string/int, not a pushed value, so reusing vm's
// unexported helper directly isn't an option (it is unexported, and
// bindings must not import vm's internals beyond vm.Context anyway).
func (r *Runtime) toKey(k PropertyKey) (object.Key, error) {
	switch v := k.(type) {
	case string:
		id, err := r.ctx.Pool.NewString(v)
		if err != nil {
			return object.Key{}, err
		}
		return object.StringKey(id), nil
	case int:
		if v < 0 {
			return object.Key{}, except.New(except.RangeError, "negative property index")
		}
		return object.IndexKey(uint32(v)), nil
	case value.Value:
		if v.IsSymbol() {
			return object.SymbolKey(v), nil
		}
		id, err := r.ctx.Pool.NewString(r.ctx.Pool.Text(v))
		if err != nil {
			return object.Key{}, err
		}
		return object.StringKey(id), nil
	default:
		return object.Key{}, except.New(except.TypeError, "unsupported property key type")
	}
}

// NewObject creates a plain Ordinary object with proto as its prototype
// (Null proto means "no prototype"), the object-construction half of
// spec.md §6's object-operations group.
func (r *Runtime) NewObject(proto value.Value) (value.Value, error) {
	protoCP := heap.NullCP
	if proto.IsObject() {
		protoCP = proto.AsObject()
	}
	cp, err := r.ctx.Store.Create(object.NewOrdinary(protoCP))
	if err != nil {
		return value.Value{}, err
	}
	return value.Object(cp), nil
}

// NewArray creates an empty Array object (spec.md §6's object-operations
// group names arrays explicitly as a distinct creatable kind from plain
// objects, per objectops/array.go's ArraySetLength-aware DefineOwnProperty
// overlay).
func (r *Runtime) NewArray(proto value.Value) (value.Value, error) {
	protoCP := heap.NullCP
	if proto.IsObject() {
		protoCP = proto.AsObject()
	}
	cp, err := r.ctx.Store.Create(object.Record{Kind: object.KindArray, Proto: protoCP, Extensible: true})
	if err != nil {
		return value.Value{}, err
	}
	return value.Object(cp), nil
}

// Get reads obj[key] through the registered ObjectOps for obj's kind
// (objectops.For), using obj itself as the receiver.
func (r *Runtime) Get(obj value.Value, key PropertyKey) (value.Value, error) {
	if !obj.IsObject() {
		return value.Value{}, except.New(except.TypeError, "Get target is not an object")
	}
	k, err := r.toKey(key)
	if err != nil {
		return value.Value{}, err
	}
	ops, err := r.objectOps(obj.AsObject())
	if err != nil {
		return value.Value{}, err
	}
	return ops.Get(r.ctx.Ops, obj.AsObject(), k, obj)
}

// Set writes obj[key] = v.
func (r *Runtime) Set(obj value.Value, key PropertyKey, v value.Value) error {
	if !obj.IsObject() {
		return except.New(except.TypeError, "Set target is not an object")
	}
	k, err := r.toKey(key)
	if err != nil {
		return err
	}
	ops, err := r.objectOps(obj.AsObject())
	if err != nil {
		return err
	}
	return ops.Set(r.ctx.Ops, obj.AsObject(), k, v, obj)
}

// Has reports whether obj (or a prototype) has key, per [[HasProperty]].
func (r *Runtime) Has(obj value.Value, key PropertyKey) (bool, error) {
	if !obj.IsObject() {
		return false, except.New(except.TypeError, "Has target is not an object")
	}
	k, err := r.toKey(key)
	if err != nil {
		return false, err
	}
	ops, err := r.objectOps(obj.AsObject())
	if err != nil {
		return false, err
	}
	return ops.HasProperty(r.ctx.Ops, obj.AsObject(), k)
}

// Delete removes key from obj, reporting whether the property was
// configurable and therefore actually removed.
func (r *Runtime) Delete(obj value.Value, key PropertyKey) (bool, error) {
	if !obj.IsObject() {
		return false, except.New(except.TypeError, "Delete target is not an object")
	}
	k, err := r.toKey(key)
	if err != nil {
		return false, err
	}
	ops, err := r.objectOps(obj.AsObject())
	if err != nil {
		return false, err
	}
	return ops.Delete(r.ctx.Ops, obj.AsObject(), k)
}

// PropertyDescriptor mirrors object.Descriptor's tri-state shape with Go
// pointer fields, letting an embedder define exactly the attributes it
// cares about and leave the rest untouched — the same partial-descriptor
// semantics DefineOwnProperty (spec §6) itself implements.
type PropertyDescriptor struct {
	Value        *value.Value
	Writable     *bool
	Enumerable   *bool
	Configurable *bool
}

// DefineOwnProperty installs (or updates) key on obj per desc.
func (r *Runtime) DefineOwnProperty(obj value.Value, key PropertyKey, desc PropertyDescriptor) error {
	if !obj.IsObject() {
		return except.New(except.TypeError, "DefineOwnProperty target is not an object")
	}
	k, err := r.toKey(key)
	if err != nil {
		return err
	}
	ops, err := r.objectOps(obj.AsObject())
	if err != nil {
		return err
	}
	return ops.DefineOwnProperty(r.ctx.Ops, obj.AsObject(), k, object.Descriptor{
		Value: desc.Value, Writable: desc.Writable,
		Enumerable: desc.Enumerable, Configurable: desc.Configurable,
	})
}

// OwnPropertyKeys lists obj's own property keys, rendered back as
// PropertyKey-compatible value.Values (strings/symbols as value.Value,
// indices as their string form) rather than object.Key, so a caller never
// needs package object to consume the result.
func (r *Runtime) OwnPropertyKeys(obj value.Value) ([]value.Value, error) {
	if !obj.IsObject() {
		return nil, except.New(except.TypeError, "OwnPropertyKeys target is not an object")
	}
	ops, err := r.objectOps(obj.AsObject())
	if err != nil {
		return nil, err
	}
	keys, err := ops.OwnPropertyKeys(r.ctx.Ops, obj.AsObject())
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, len(keys))
	for _, k := range keys {
		switch k.Kind {
		case object.KeyString, object.KeySymbol:
			out = append(out, k.Str)
		case object.KeyIndex:
			s, err := r.ctx.Pool.NewString(itoaKey(k.Index))
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// GetPrototypeOf returns obj's [[Prototype]], or Null() if it has none.
func (r *Runtime) GetPrototypeOf(obj value.Value) (value.Value, error) {
	if !obj.IsObject() {
		return value.Value{}, except.New(except.TypeError, "GetPrototypeOf target is not an object")
	}
	ops, err := r.objectOps(obj.AsObject())
	if err != nil {
		return value.Value{}, err
	}
	cp, err := ops.GetPrototypeOf(r.ctx.Ops, obj.AsObject())
	if err != nil {
		return value.Value{}, err
	}
	if cp.IsNull() {
		return value.Null(), nil
	}
	return value.Object(cp), nil
}

// SetPrototypeOf sets obj's [[Prototype]]; proto Null() clears it.
func (r *Runtime) SetPrototypeOf(obj value.Value, proto value.Value) error {
	if !obj.IsObject() {
		return except.New(except.TypeError, "SetPrototypeOf target is not an object")
	}
	protoCP := heap.NullCP
	if proto.IsObject() {
		protoCP = proto.AsObject()
	}
	ops, err := r.objectOps(obj.AsObject())
	if err != nil {
		return err
	}
	return ops.SetPrototypeOf(r.ctx.Ops, obj.AsObject(), protoCP)
}

func itoaKey(i uint32) string {
	if i == 0 {
		return "0"
	}
	var buf [10]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
