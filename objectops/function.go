package objectops

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// functionOps implements [[Call]] (and, when constructible, [[Construct]])
// for both native (Go-implemented) and scripted (bytecode) functions. The
// two are unified here because from the caller's side the dispatch is
// identical: check which of NativeCall/CompiledCode the record carries
// and route to the matching invocation path.
type functionOps struct {
	ordinaryOps
	constructible bool
}

func (f functionOps) Call(ctx *OpContext, cp heap.CP, this value.Value, args []value.Value) (value.Value, error) {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return value.Value{}, except.New(except.ReferenceError, "object does not exist")
	}
	if rec.NativeCall != nil {
		return rec.NativeCall(ctx, this, args, value.Undefined())
	}
	if rec.CompiledCode.IsNull() {
		return value.Value{}, except.ErrNotCallable
	}
	if ctx.Invoke == nil {
		panic("objectops: ScriptInvoker not wired before a scripted [[Call]]")
	}
	return ctx.Invoke(rec.CompiledCode, rec.ClosureEnv, this, value.Undefined(), args)
}

func (f functionOps) Construct(ctx *OpContext, cp heap.CP, args []value.Value, newTarget value.Value) (value.Value, error) {
	if !f.constructible {
		return value.Value{}, except.ErrNotConstructable
	}
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return value.Value{}, except.New(except.ReferenceError, "object does not exist")
	}
	// NativeFunction is always constructible at the Kind level; a
	// ScriptedFunction record additionally needs its own Constructible bit
	// set (arrow functions never are, spec §4.6).
	if rec.NativeCall == nil && !rec.Constructible {
		return value.Value{}, except.ErrNotConstructable
	}

	protoVal, err := f.Get(ctx, cp, object.StringKey(mustProtoKey(ctx)), value.Object(cp))
	if err != nil {
		return value.Value{}, err
	}
	proto := heap.NullCP
	if protoVal.IsObject() {
		proto = protoVal.AsObject()
	}
	instCP, err := ctx.Store.Create(object.NewOrdinary(proto))
	if err != nil {
		return value.Value{}, err
	}
	this := value.Object(instCP)

	if rec.NativeCall != nil {
		return rec.NativeCall(ctx, this, args, newTarget)
	}
	if rec.CompiledCode.IsNull() {
		return value.Value{}, except.ErrNotConstructable
	}
	if ctx.Invoke == nil {
		panic("objectops: ScriptInvoker not wired before a scripted [[Construct]]")
	}
	result, err := ctx.Invoke(rec.CompiledCode, rec.ClosureEnv, this, newTarget, args)
	if err != nil {
		return value.Value{}, err
	}
	if result.IsObject() {
		return result, nil
	}
	return this, nil
}

// mustProtoKey resolves the "prototype" magic string. Function objects
// always carry it as a non-enumerable data property set up when the
// function was created (bindings/objectops wiring, not this package), so
// this never allocates in the steady state.
func mustProtoKey(ctx *OpContext) value.Value {
	v, err := ctx.Pool.NewString("prototype")
	if err != nil {
		panic("objectops: failed to resolve \"prototype\": " + err.Error())
	}
	return v
}
