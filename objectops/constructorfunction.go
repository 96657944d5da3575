package objectops

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// constructorFunctionOps implements [[Call]]/[[Construct]] for class
// constructors (spec §4.6), grounded on ecma-constructor-function.c's two
// entry points. Unlike functionOps it is never shared with plain scripted
// functions: ecma_constructor_function_call unconditionally throws, and
// ecma_constructor_function_construct either creates the fresh instance
// (base class) or obtains it by chaining [[Construct]] to the recorded
// superclass (derived class), and only then runs the implicit
// field-initializer against it — behavior a plain ScriptedFunction's
// [[Call]]/[[Construct]] never exhibits.
type constructorFunctionOps struct {
	ordinaryOps
}

// Call matches ecma_constructor_function_call: invoking a class
// constructor without `new` is always a TypeError, scripted or not.
func (constructorFunctionOps) Call(ctx *OpContext, cp heap.CP, this value.Value, args []value.Value) (value.Value, error) {
	return value.Value{}, except.New(except.TypeError, "class constructor cannot be invoked without 'new'")
}

// Construct mirrors ecma_constructor_function_construct: resolve this
// (either a fresh instance for a base class, or the result of chaining to
// the superclass's own [[Construct]] for a derived one, passing the same
// newTarget down the chain so the most-derived prototype wins), run the
// implicit field initializer against it, then — if the class also carries
// an explicit constructor body — run that body with this already bound
// and use its return value when it is an object.
func (f constructorFunctionOps) Construct(ctx *OpContext, cp heap.CP, args []value.Value, newTarget value.Value) (value.Value, error) {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return value.Value{}, except.New(except.ReferenceError, "object does not exist")
	}

	var this value.Value
	if !rec.SuperConstructor.IsNull() {
		superOps, err := For(ctx, rec.SuperConstructor)
		if err != nil {
			return value.Value{}, err
		}
		this, err = superOps.Construct(ctx, rec.SuperConstructor, args, newTarget)
		if err != nil {
			return value.Value{}, err
		}
	} else {
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
		this = value.Object(instCP)
	}

	if !rec.FieldInitializer.IsNull() {
		if ctx.Invoke == nil {
			panic("objectops: ScriptInvoker not wired before a class field initializer runs")
		}
		if _, err := ctx.Invoke(rec.FieldInitializer, rec.ClosureEnv, this, value.Undefined(), nil); err != nil {
			return value.Value{}, err
		}
	}

	if rec.CompiledCode.IsNull() {
		return this, nil
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
