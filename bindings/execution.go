package bindings

import (
	"github.com/tinyjs/corevm/bytecode"
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// LoadBytecode loads a pre-compiled corevm bytecode blob (produced
// out-of-band — there is no JS source parser in this build, see Parse
// below) and returns it wrapped as a callable top-level function value,
// closed over the global environment exactly as a module's top-level
// function would be (spec.md §6's "load/run" execution-entry capability).
func (r *Runtime) LoadBytecode(b []byte) (value.Value, error) {
	r.enter()
	defer r.leave()
	code, err := bytecode.Load(b, r.ctx.Pool)
	if err != nil {
		return value.Value{}, err
	}
	fnCP, err := r.ctx.CreateFunction(code, r.ctx.GlobalEnv, heap.NullCP, false)
	if err != nil {
		return value.Value{}, err
	}
	return value.Object(fnCP), nil
}

// Run loads and immediately calls b as a zero-argument top-level script,
// the common case of spec.md §6's run capability.
func (r *Runtime) Run(b []byte) (value.Value, error) {
	fn, err := r.LoadBytecode(b)
	if err != nil {
		return value.Value{}, err
	}
	return r.Call(fn, value.Undefined(), nil)
}

// Call invokes fn as [[Call]](this, args), spec.md §6's call capability.
func (r *Runtime) Call(fn value.Value, this value.Value, args []value.Value) (value.Value, error) {
	r.enter()
	defer r.leave()
	if !fn.IsObject() {
		return value.Value{}, except.New(except.TypeError, "Call target is not an object")
	}
	ops, err := r.objectOps(fn.AsObject())
	if err != nil {
		return value.Value{}, err
	}
	return ops.Call(r.ctx.Ops, fn.AsObject(), this, args)
}

// Construct invokes fn as [[Construct]](args, fn), spec.md §6's construct
// capability — fn is its own new.target, the same default ordinary call
// expressions use.
func (r *Runtime) Construct(fn value.Value, args []value.Value) (value.Value, error) {
	r.enter()
	defer r.leave()
	if !fn.IsObject() {
		return value.Value{}, except.New(except.TypeError, "Construct target is not an object")
	}
	ops, err := r.objectOps(fn.AsObject())
	if err != nil {
		return value.Value{}, err
	}
	return ops.Construct(r.ctx.Ops, fn.AsObject(), args, fn)
}

// NativeFunc is the signature an embedder-registered native function is
// invoked through — Runtime's own callable form of object.NativeFunc,
// dropping the opaque ctx/newTarget parameters a host callback almost
// never needs so registering one doesn't require importing package
// object at all.
type NativeFunc func(this value.Value, args []value.Value) (value.Value, error)

// RegisterNative creates a callable NativeFunction object wrapping fn
// (spec.md §6's native-function registration capability), typically then
// installed as a global property via Set(r.Global(), name, fnVal).
func (r *Runtime) RegisterNative(fn NativeFunc) (value.Value, error) {
	cp, err := r.ctx.Store.Create(object.Record{
		Kind: object.KindNativeFunction, Proto: heap.NullCP, Extensible: true,
		NativeCall: func(_ any, this value.Value, args []value.Value, _ value.Value) (value.Value, error) {
			return fn(this, args)
		},
	})
	if err != nil {
		return value.Value{}, err
	}
	return value.Object(cp), nil
}

// Global returns the global object, the usual target for installing
// bindings RegisterNative produces.
func (r *Runtime) Global() value.Value { return value.Object(r.ctx.GlobalObject) }

// Parse is not supported by this build: corevm loads pre-compiled
// bytecode (see LoadBytecode) and carries no ECMAScript source parser, so
// there is nothing for Parse to lower source text into. It reports
// SyntaxError rather than disappearing silently, the same "recognized but
// unsupported" idiom vm/dispatch.go uses for opcode families this build
// does not implement.
func (r *Runtime) Parse(_ string) (value.Value, error) {
	return value.Value{}, except.New(except.SyntaxError, "Parse is not supported by this build: no source parser, load bytecode directly")
}

// Eval mirrors Parse's limitation: direct eval needs a parser this build
// does not carry.
func (r *Runtime) Eval(_ string) (value.Value, error) {
	return value.Value{}, except.New(except.SyntaxError, "Eval is not supported by this build: no source parser, load bytecode directly")
}

// RegisterMagicString is not supported by this build: strtab.Pool's
// magic-string table (spec.md §6's external-magic-string-registration
// capability) is a fixed table built once at NewPool time with no runtime
// extension hook, so there is no handle this method could hand back for
// later lookup. Embedder strings work the same as script strings instead
// — intern them with String and compare by value.Value equality.
func (r *Runtime) RegisterMagicString(_ string) (value.Value, error) {
	return value.Value{}, except.New(except.TypeError, "RegisterMagicString is not supported by this build: strtab's magic-string table has no runtime extension point, use String instead")
}
