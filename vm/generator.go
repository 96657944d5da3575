package vm

import (
	"github.com/tinyjs/corevm/bytecode"
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// createGeneratorObject implements spec §4.9/§5/§9's boxed-frame generator
// model: a function* call never runs its body synchronously. It builds the
// call frame exactly as an ordinary invocation would (newFrame: fresh
// declarative environment, Arguments object, parameter bindings) but hands
// it to a generator object instead of to runFrame, so the body only
// executes once "next" is called. "next"/"return"/"throw" are plain
// NativeFunction properties whose closures capture frame and c directly,
// the same ctx-ignoring pattern bindings.RegisterNative uses — a
// generator's resumption state lives in the Go closure, not in any
// object.Record field, since object.Record carries no slot for an opaque
// *Frame (see ecma_op_generator_function_call / vm_run_generator in
// vm.c/ecma-iterator-object.c for the C source this frame-suspension
// scheme stands in for).
func (c *Context) createGeneratorObject(code *bytecode.CompiledCode, closureEnv heap.CP, this value.Value, newTarget value.Value, args []value.Value) (value.Value, error) {
	frame, err := c.newFrame(code, closureEnv, this, newTarget, args)
	if err != nil {
		return value.Value{}, err
	}

	genCP, err := c.allocCP(func() (heap.CP, error) {
		return c.Store.Create(object.NewOrdinary(c.prototypeOf(closureEnv)))
	})
	if err != nil {
		return value.Value{}, err
	}
	c.pin(genCP)
	defer c.unpin()

	started := false
	done := false

	runOrResume := func(resumeValue value.Value, isThrow bool) (value.Value, error) {
		if done {
			return c.iteratorResult(value.Undefined(), true)
		}
		if isThrow {
			done = true
			return value.Value{}, except.New(except.TypeError, resumeValueDescribeThrow())
		}

		var result value.Value
		var suspended bool
		var rerr error
		if !started {
			started = true
			result, suspended, rerr = c.runFrame(frame)
		} else {
			result, suspended, rerr = c.resumeFrame(frame, resumeValue)
		}
		if rerr != nil {
			done = true
			return value.Value{}, rerr
		}
		if !suspended {
			done = true
		}
		return c.iteratorResult(result, !suspended)
	}

	if err := c.defineNativeMethod(genCP, "next", func(_ any, _ value.Value, callArgs []value.Value, _ value.Value) (value.Value, error) {
		v := value.Undefined()
		if len(callArgs) > 0 {
			v = callArgs[0]
		}
		return runOrResume(v, false)
	}); err != nil {
		return value.Value{}, err
	}

	if err := c.defineNativeMethod(genCP, "return", func(_ any, _ value.Value, callArgs []value.Value, _ value.Value) (value.Value, error) {
		v := value.Undefined()
		if len(callArgs) > 0 {
			v = callArgs[0]
		}
		done = true
		return c.iteratorResult(v, true)
	}); err != nil {
		return value.Value{}, err
	}

	if err := c.defineNativeMethod(genCP, "throw", func(_ any, _ value.Value, callArgs []value.Value, _ value.Value) (value.Value, error) {
		v := value.Undefined()
		if len(callArgs) > 0 {
			v = callArgs[0]
		}
		return runOrResume(v, true)
	}); err != nil {
		return value.Value{}, err
	}

	return value.Object(genCP), nil
}

// resumeFrame re-enters a previously-suspended generator frame: the value
// passed to "next" becomes the result of the yield expression that
// suspended it, so it is pushed onto the frame's own value stack (the slot
// OpYield's pop emptied) before control re-enters runFrame at the saved ip.
func (c *Context) resumeFrame(frame *Frame, resumeValue value.Value) (value.Value, bool, error) {
	frame.push(resumeValue)
	return c.runFrame(frame)
}

// iteratorResult builds a plain { value, done } object (spec §4.9's
// "iterator result" shape, ECMA-262 §25.1.1.3's CreateIterResultObject).
func (c *Context) iteratorResult(v value.Value, done bool) (value.Value, error) {
	cp, err := c.allocCP(func() (heap.CP, error) {
		return c.Store.Create(object.NewOrdinary(heap.NullCP))
	})
	if err != nil {
		return value.Value{}, err
	}
	c.pin(cp)
	defer c.unpin()

	valueKey, err := c.Pool.NewString("value")
	if err != nil {
		return value.Value{}, err
	}
	writable, enumerable, configurable := true, true, true
	if err := c.Store.DefineOwnProperty(cp, object.StringKey(valueKey), object.Descriptor{
		Value: &v, Writable: &writable, Enumerable: &enumerable, Configurable: &configurable,
	}); err != nil {
		return value.Value{}, err
	}

	doneKey, err := c.Pool.NewString("done")
	if err != nil {
		return value.Value{}, err
	}
	doneVal := value.Bool(done)
	if err := c.Store.DefineOwnProperty(cp, object.StringKey(doneKey), object.Descriptor{
		Value: &doneVal, Writable: &writable, Enumerable: &enumerable, Configurable: &configurable,
	}); err != nil {
		return value.Value{}, err
	}
	return value.Object(cp), nil
}

// defineNativeMethod installs a NativeFunction property named name on
// the object at cp (spec §4.6/§6). A generator's "next"/"return"/"throw"
// would be non-enumerable prototype methods on a real %GeneratorPrototype%
// intrinsic; this build installs them as plain own properties directly on
// each generator instance instead, since `bindings` has not yet wired up
// that shared intrinsic (see vm's `prototypeOf` placeholder).
func (c *Context) defineNativeMethod(cp heap.CP, name string, fn object.NativeFunc) error {
	fnCP, err := c.allocCP(func() (heap.CP, error) {
		return c.Store.Create(object.Record{
			Kind: object.KindNativeFunction, Proto: c.prototypeOf(cp), Extensible: true,
			NativeCall: fn,
		})
	})
	if err != nil {
		return err
	}
	c.pin(fnCP)
	defer c.unpin()

	key, err := c.Pool.NewString(name)
	if err != nil {
		return err
	}
	v := value.Object(fnCP)
	writable, configurable := true, true
	return c.Store.DefineOwnProperty(cp, object.StringKey(key), object.Descriptor{
		Value: &v, Writable: &writable, Configurable: &configurable,
	})
}

// resumeValueDescribeThrow is the TypeError message for a generator
// "throw" call made before the generator has finished, whether or not it
// has started (a "throw" after completion returns {value: undefined,
// done: true} instead). corevm has no mechanism for injecting an
// exception at a live OpYield suspension point (that needs an unwind
// entry into the frame's own exception-handler table, not just a pushed
// value), so such a "throw" forces completion rather than resuming the
// body to its nearest catch.
func resumeValueDescribeThrow() string {
	return "generator throw() is not resumed into the suspended body in this build"
}
