package vm

import (
	"github.com/tinyjs/corevm/bytecode"
	"github.com/tinyjs/corevm/env"
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/gc"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/objectops"
	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

// maxCallDepth bounds mutually-recursive JS->native->JS call chains
// (spec §4.9: "before every call/new, a stack-usage check against a
// compile-time limit guards against native-stack overflow"). corevm's
// own Go call stack only grows by a small constant per nested [[Call]]/
// [[Construct]] (dispatch does not recurse per ECMAScript call, but
// Call/Construct/Invoke themselves do recurse through Go once per JS
// call), so this limit stands in for that native-stack budget directly.
const maxCallDepth = 2000

// Context is the single owner of everything a running script needs:
// the heap-backed object store and string pool, the environment and
// internal-method operation helpers, the garbage collector, the global
// object/environment pair, the compiled-code arena, and the current
// exception slot. Every vm operation takes a *Context rather than
// reaching through a package-level global.
type Context struct {
	Store *object.Store
	Pool  *strtab.Pool
	Ops   *objectops.OpContext
	Env   *env.Environments
	GC    *gc.Collector

	codes *heap.Arena[*bytecode.CompiledCode]

	GlobalObject heap.CP
	GlobalEnv    heap.CP

	frames []*Frame

	// pinned holds CPs allocated mid-construction (e.g. CreateFunction's
	// function record before its "prototype" property is wired up) that
	// aren't yet reachable from any frame or binding. Without this, a
	// retry collection triggered by a later allocation in the same
	// construction could reclaim an earlier one out from under it.
	pinned []heap.CP

	hasException bool
	exception    value.Value

	terminated bool

	maxCallDepth int

	// closeHeap releases the byte arena's backing storage, non-nil only
	// when NewContext was given WithMmapBackingFile. A plain in-process
	// arena needs no such cleanup, so Close is a no-op otherwise.
	closeHeap func() error
}

// Close releases any OS-level resources this Context's heap holds (an
// mmap-backed byte arena, when WithMmapBackingFile was used). It is a
// no-op for the default in-process arena.
func (c *Context) Close() error {
	if c.closeHeap == nil {
		return nil
	}
	return c.closeHeap()
}

// pin roots cp until unpin is called, for multi-step allocations where an
// intermediate CP isn't yet wired into anything a normal Roots() walk
// would find.
func (c *Context) pin(cp heap.CP) { c.pinned = append(c.pinned, cp) }

func (c *Context) unpin() { c.pinned = c.pinned[:len(c.pinned)-1] }

// NewContext brings up a fresh VM: heap, string pool, object store,
// object operations, environments, GC, and a global object/environment
// pair, wiring objectops.OpContext.Invoke to this Context's own
// interpreter entry point so [[Call]]/[[Construct]] on a scripted
// function routes back into dispatch rather than panicking. opts
// override the defaults in Config (heap size, call-depth guard); see
// internal/config for the CLI-flag-driven translation into Option.
func NewContext(opts ...Option) *Context {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var h *heap.Heap
	var closeHeap func() error
	if cfg.MmapBackingFile != "" {
		var err error
		h, closeHeap, err = heap.NewWithMmapBacking(cfg.MmapBackingFile, cfg.HeapByteSize)
		if err != nil {
			panic("vm: failed to create mmap-backed heap: " + err.Error())
		}
	} else {
		h = heap.New(cfg.HeapByteSize)
	}
	pool := strtab.NewPool(h)
	store := object.NewStore(pool)
	ops := objectops.NewContext(store, pool, nil)
	environments := env.New(store, pool, ops)

	ctx := &Context{
		Store:        store,
		Pool:         pool,
		Ops:          ops,
		Env:          environments,
		codes:        heap.NewArena[*bytecode.CompiledCode](),
		maxCallDepth: cfg.MaxCallDepth,
		closeHeap:    closeHeap,
	}
	ops.Invoke = ctx.invokeScripted
	ops.GetBinding = environments.GetBindingValue
	ops.SetBinding = environments.SetMutableBinding
	ctx.GC = gc.NewCollector(store, pool)

	// The byte arena's own exhaustion handler collects and asks the arena
	// to retry once, the same collect-once-and-retry discipline allocCP
	// applies to object-arena allocations (spec §4.1: "exhaustion triggers
	// a GC; persistent exhaustion after GC raises an OutOfMemory fatal").
	h.SetExhaustionHandler(func() bool {
		ctx.GC.Collect(ctx.Roots)
		return true
	})

	globalObj, err := store.Create(object.NewOrdinary(heap.NullCP))
	if err != nil {
		panic("vm: failed to allocate global object: " + err.Error())
	}
	globalEnv, err := environments.NewGlobal(globalObj)
	if err != nil {
		panic("vm: failed to allocate global environment: " + err.Error())
	}
	ctx.GlobalObject = globalObj
	ctx.GlobalEnv = globalEnv
	return ctx
}

// allocCP retries alloc once after a full mark-and-sweep collection if its
// first attempt fails with except.ErrOutOfMemory (spec §4.5: "an
// allocation failure triggers a collection and retries exactly once
// before raising a fatal OutOfMemory"). Any other error, or a second
// failure after collecting, propagates unchanged.
func (c *Context) allocCP(alloc func() (heap.CP, error)) (heap.CP, error) {
	cp, err := alloc()
	if err == nil || !isOutOfMemory(err) {
		return cp, err
	}
	c.GC.Collect(c.Roots)
	return alloc()
}

func isOutOfMemory(err error) bool {
	ee, ok := err.(*except.ECMAError)
	return ok && ee.Kind == except.OutOfMemory
}

// StoreCode installs a loaded CompiledCode into the code arena, returning
// the heap.CP an object.Record's CompiledCode/ClosureEnv-paired field
// names it by. Kept separate from bytecode.Load because the arena that
// owns compiled-code lifetime is a vm.Context concern, not a loader one.
func (c *Context) StoreCode(code *bytecode.CompiledCode) (heap.CP, error) {
	return c.codes.Alloc(code)
}

func (c *Context) code(cp heap.CP) *bytecode.CompiledCode {
	code, ok := c.codes.Get(cp)
	if !ok {
		return nil
	}
	return *code
}

// CreateFunction allocates a ScriptedFunction record for code, capturing
// closureEnv as its scope chain (spec §4.9's create_function/create_arrow
// opcodes). constructible is per-instance (spec §4.6: a plain function
// declaration/expression is constructible, an arrow never is) — both
// shapes share KindScriptedFunction, so this sets object.Record's
// Constructible field rather than diverting to a different Kind. Class
// constructors are a distinct shape entirely; see CreateClassConstructor.
func (c *Context) CreateFunction(code *bytecode.CompiledCode, closureEnv heap.CP, proto heap.CP, constructible bool) (heap.CP, error) {
	codeCP, err := c.StoreCode(code)
	if err != nil {
		return heap.NullCP, err
	}
	fnCP, err := c.allocCP(func() (heap.CP, error) {
		return c.Store.Create(object.Record{
			Kind: object.KindScriptedFunction, Proto: proto, Extensible: true,
			CompiledCode: codeCP, ClosureEnv: closureEnv,
			Constructible: constructible,
		})
	})
	if err != nil {
		return heap.NullCP, err
	}
	if constructible {
		c.pin(fnCP)
		defer c.unpin()
		protoObjCP, err := c.allocCP(func() (heap.CP, error) {
			return c.Store.Create(object.NewOrdinary(proto))
		})
		if err != nil {
			return heap.NullCP, err
		}
		protoKey, err := c.Pool.NewString("prototype")
		if err != nil {
			return heap.NullCP, err
		}
		v := value.Object(protoObjCP)
		writable := true
		if err := c.Store.DefineOwnProperty(fnCP, object.StringKey(protoKey), object.Descriptor{Value: &v, Writable: &writable}); err != nil {
			return heap.NullCP, err
		}
	}
	return fnCP, nil
}

// CreateClassConstructor allocates a ConstructorFunction record for a
// class body (spec §4.6/§4.9's create_class opcode), distinct from a
// plain constructible ScriptedFunction: it wires FieldInitializer (if the
// class declares instance fields) and, for a derived class, the
// superConstructor the new record's [[Construct]] chains to, plus chains
// the instance-prototype object's own [[Prototype]] to the superclass's
// "prototype" property so inherited methods resolve (spec §9.3's
// InitializeInstanceElements / OrdinaryCreateFromConstructor prototype
// wiring, grounded on ecma_constructor_function_construct).
func (c *Context) CreateClassConstructor(code *bytecode.CompiledCode, closureEnv heap.CP, proto heap.CP, superConstructor heap.CP) (heap.CP, error) {
	codeCP, err := c.StoreCode(code)
	if err != nil {
		return heap.NullCP, err
	}
	var fieldInitCP heap.CP
	if code.FieldInitializer != nil {
		fieldInitCP, err = c.StoreCode(code.FieldInitializer)
		if err != nil {
			return heap.NullCP, err
		}
	}

	fnCP, err := c.allocCP(func() (heap.CP, error) {
		return c.Store.Create(object.Record{
			Kind: object.KindConstructorFunction, Proto: proto, Extensible: true,
			CompiledCode: codeCP, ClosureEnv: closureEnv,
			SuperConstructor: superConstructor, FieldInitializer: fieldInitCP,
		})
	})
	if err != nil {
		return heap.NullCP, err
	}
	c.pin(fnCP)
	defer c.unpin()

	instProto := proto
	if !superConstructor.IsNull() {
		protoKey, kerr := c.Pool.NewString("prototype")
		if kerr != nil {
			return heap.NullCP, kerr
		}
		if superProto, ok := c.Store.GetOwnProperty(superConstructor, object.StringKey(protoKey)); ok && superProto.Value.IsObject() {
			instProto = superProto.Value.AsObject()
		}
	}
	protoObjCP, err := c.allocCP(func() (heap.CP, error) {
		return c.Store.Create(object.NewOrdinary(instProto))
	})
	if err != nil {
		return heap.NullCP, err
	}
	protoKey, err := c.Pool.NewString("prototype")
	if err != nil {
		return heap.NullCP, err
	}
	v := value.Object(protoObjCP)
	writable := false
	if err := c.Store.DefineOwnProperty(fnCP, object.StringKey(protoKey), object.Descriptor{Value: &v, Writable: &writable}); err != nil {
		return heap.NullCP, err
	}
	return fnCP, nil
}

// invokeScripted is the objectops.ScriptInvoker this Context wires in at
// construction: it resolves codeCP back to a *bytecode.CompiledCode,
// pushes a fresh call frame chained to closureEnv, and runs it to
// completion. A generator function (FlagGenerator, spec §4.9/§5) never
// runs its body here — it only builds the frame and hands it to a
// generator object whose "next"/"return"/"throw" methods drive it.
func (c *Context) invokeScripted(codeCP heap.CP, closureEnv heap.CP, this value.Value, newTarget value.Value, args []value.Value) (value.Value, error) {
	code := c.code(codeCP)
	if code == nil {
		return value.Value{}, except.New(except.ReferenceError, "compiled code does not exist")
	}
	if len(c.frames) >= c.maxCallDepth {
		return value.Value{}, except.New(except.RangeError, "call stack size exceeded")
	}
	if code.Flags.Has(bytecode.FlagGenerator) {
		return c.createGeneratorObject(code, closureEnv, this, newTarget, args)
	}
	frame, err := c.newFrame(code, closureEnv, this, newTarget, args)
	if err != nil {
		return value.Value{}, err
	}
	result, _, err := c.runFrame(frame)
	return result, err
}

// SetException records v as the pending exception, mirroring spec
// §4.10's "a thrown value sets the per-context exception slot".
func (c *Context) SetException(v value.Value) {
	c.hasException = true
	c.exception = v
}

func (c *Context) ClearException() {
	c.hasException = false
	c.exception = value.Value{}
}

func (c *Context) HasException() bool   { return c.hasException }
func (c *Context) Exception() value.Value { return c.exception }

// RequestTermination sets the VM-stop flag spec §5 describes: observed at
// backward branches and function entry, unwinding every frame without
// running finally blocks.
func (c *Context) RequestTermination() { c.terminated = true }

func (c *Context) Terminated() bool { return c.terminated }
