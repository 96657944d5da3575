package vm

import (
	"github.com/tinyjs/corevm/bytecode"
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// Frame is one call's machine state (spec §4.9): the compiled code it is
// executing, its instruction pointer, its value stack, the lexical
// environment it runs against, its this-binding and new-target, and the
// strict/generator/async/arrow flags carried from the compiled code.
type Frame struct {
	Code *bytecode.CompiledCode
	IP   uint32

	stack []value.Value

	Env       heap.CP
	This      value.Value
	NewTarget value.Value

	// pending holds a completion record awaiting replay at the next
	// finally_exit (spec §4.10: "finally handlers record a completion
	// record ... re-raised on finally_exit").
	pending *Completion

	// Suspended and SuspendValue implement spec §4.9/§5's boxed-frame
	// generator suspension: OpYield sets both and signals step's done
	// return, which runFrame reads to tell a genuine completion (frame
	// popped for good) apart from a yield (frame kept alive, handed back
	// to the owning generator object for a later resumeFrame call that
	// restores the saved ip/stack/env exactly where it left off).
	Suspended    bool
	SuspendValue value.Value
}

func (c *Context) newFrame(code *bytecode.CompiledCode, outerEnv heap.CP, this value.Value, newTarget value.Value, args []value.Value) (*Frame, error) {
	callEnv, err := c.allocCP(func() (heap.CP, error) { return c.Env.NewDeclarative(outerEnv) })
	if err != nil {
		return nil, err
	}
	for i := uint16(0); i < code.ArgumentCount; i++ {
		name := argName(i)
		if err := c.Env.CreateMutableBinding(callEnv, name); err != nil {
			return nil, err
		}
		v := value.Undefined()
		if int(i) < len(args) {
			v = args[i]
		}
		if err := c.Env.InitializeBinding(callEnv, name, v); err != nil {
			return nil, err
		}
	}
	if err := c.bindArgumentsObject(code, callEnv, args); err != nil {
		return nil, err
	}
	return &Frame{
		Code:      code,
		Env:       callEnv,
		This:      this,
		NewTarget: newTarget,
		stack:     make([]value.Value, 0, code.StackDepth),
	}, nil
}

// bindArgumentsObject materializes the Arguments object (spec §4.4/§4.6,
// ECMA-262 §10.4.4) and binds it under "arguments" in callEnv. When
// code.Flags carries FlagMappedArguments (the compiler's decision: a
// non-strict function with simple, non-duplicated formal parameters —
// CBC_CODE_FLAGS_MAPPED_ARGUMENTS_NEEDED in ecma-arguments-object.c), each
// formal index below code.ArgumentCount is recorded in MappedNames so
// argumentsOps.Get/Set/DefineOwnProperty alias it to the live parameter
// binding in callEnv until reconfigured; every other function gets a
// plain unmapped Arguments object whose indices are ordinary data
// properties holding a snapshot of the call's actual arguments.
func (c *Context) bindArgumentsObject(code *bytecode.CompiledCode, callEnv heap.CP, args []value.Value) error {
	argsCP, err := c.allocCP(func() (heap.CP, error) {
		return c.Store.Create(object.Record{
			Kind: object.KindOrdinary, SubKind: object.SubArguments,
			Proto: c.prototypeOf(callEnv), Extensible: true,
		})
	})
	if err != nil {
		return err
	}
	c.pin(argsCP)
	defer c.unpin()

	savedArgCount := len(args)
	if int(code.ArgumentCount) > savedArgCount {
		savedArgCount = int(code.ArgumentCount)
	}
	for i := 0; i < savedArgCount; i++ {
		v := value.Undefined()
		if i < len(args) {
			v = args[i]
		}
		writable, enumerable, configurable := true, true, true
		if err := c.Store.DefineOwnProperty(argsCP, object.IndexKey(uint32(i)), object.Descriptor{
			Value: &v, Writable: &writable, Enumerable: &enumerable, Configurable: &configurable,
		}); err != nil {
			return err
		}
	}
	lengthKey, err := c.Pool.NewString("length")
	if err != nil {
		return err
	}
	lengthVal := value.Int(int32(len(args)))
	lengthWritable, lengthConfigurable := true, true
	if err := c.Store.DefineOwnProperty(argsCP, object.StringKey(lengthKey), object.Descriptor{
		Value: &lengthVal, Writable: &lengthWritable, Configurable: &lengthConfigurable,
	}); err != nil {
		return err
	}

	if code.Flags.Has(bytecode.FlagMappedArguments) {
		rec, ok := c.Store.Get(argsCP)
		if !ok {
			return except.New(except.ReferenceError, "object does not exist")
		}
		rec.FormalParamsNumber = uint32(code.ArgumentCount)
		rec.MappedEnv = callEnv
		rec.MappedNames = make(map[uint32]value.Value, code.ArgumentCount)
		for i := uint16(0); i < code.ArgumentCount; i++ {
			name, err := c.Pool.NewString(argName(i))
			if err != nil {
				return err
			}
			rec.MappedNames[uint32(i)] = name
		}
	}

	if err := c.Env.CreateMutableBinding(callEnv, "arguments"); err != nil {
		return err
	}
	return c.Env.InitializeBinding(callEnv, "arguments", value.Object(argsCP))
}

// argName derives a positional parameter's binding name. corevm's loader
// does not carry per-parameter source names (spec §4.8 only promises
// "argument counts"), so arguments bind under a synthetic name and the
// Arguments object (object.SubArguments, spec §4.7) is the only way
// scripted code observes them by position; a real parameter name is
// rebound over this one by an init_let/init_const the compiler emits at
// function entry when the source names it.
func argName(i uint16) string {
	return "@arg" + itoa(int(i))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

func (f *Frame) push(v value.Value) { f.stack = append(f.stack, v) }

func (f *Frame) pop() (value.Value, error) {
	n := len(f.stack)
	if n == 0 {
		return value.Value{}, except.New(except.Error, "stack underflow")
	}
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v, nil
}

func (f *Frame) peek() (value.Value, error) {
	n := len(f.stack)
	if n == 0 {
		return value.Value{}, except.New(except.Error, "stack underflow")
	}
	return f.stack[n-1], nil
}

func (f *Frame) truncate(depth int) {
	if depth < len(f.stack) {
		f.stack = f.stack[:depth]
	}
}

func (f *Frame) depth() int { return len(f.stack) }

func (f *Frame) readU8() (byte, error) {
	if int(f.IP) >= len(f.Code.Code) {
		return 0, except.New(except.Error, "ip out of range")
	}
	v := f.Code.Code[f.IP]
	f.IP++
	return v, nil
}

func (f *Frame) readU16() (uint16, error) {
	if int(f.IP)+2 > len(f.Code.Code) {
		return 0, except.New(except.Error, "ip out of range")
	}
	v := uint16(f.Code.Code[f.IP]) | uint16(f.Code.Code[f.IP+1])<<8
	f.IP += 2
	return v, nil
}

func (f *Frame) readI16() (int16, error) {
	v, err := f.readU16()
	return int16(v), err
}
