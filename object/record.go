package object

import (
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/value"
)

// hashThreshold is the property count at which a Record gets an
// accelerating hashmap prepended to its property chain (spec §4.4). Below
// this, lookup is a linear scan — cheaper in both time and space for the
// small objects that dominate a constrained-device workload.
const hashThreshold = 8

// NativeFunc is the signature a NativeFunction record's [[Call]]
// implementation is invoked through. ctx is an opaque handle to the owning
// vm.Context; it is typed any here (rather than *vm.Context) because
// package vm depends on package object, not the reverse — object cannot
// name vm's type without an import cycle. Callers in package vm type-
// assert it back.
type NativeFunc func(ctx any, this value.Value, args []value.Value, newTarget value.Value) (value.Value, error)

// Record is the object header: spec §3's "single header structure with a
// one-byte kind tag" plus "a union of kind-specific fields". Go has no
// union type, so the kind-specific fields are simply all present in one
// struct; only the fields matching Kind/SubKind are meaningful for a given
// record (see DESIGN.md for why this trade favors clarity over the
// teacher's packed-union C layout).
type Record struct {
	Kind    Kind
	SubKind SubKind

	Proto      heap.CP
	Extensible bool

	// Property storage: props holds string/symbol-keyed entries in
	// creation order (spec §3's enumeration-order invariant for those two
	// classes); indexProps holds integer-index entries separately so they
	// can always be enumerated in ascending numeric order regardless of
	// insertion order (spec P5).
	props      []Property
	indexProps map[uint32]*Property

	// strIndex/symIndex accelerate props lookup once len(props) crosses
	// hashThreshold; built lazily, invalidated on any structural mutation
	// below threshold by simply not being consulted (spec §4.4: "all
	// mutations keep the chain and the hashmap coherent" — coherence here
	// is achieved by treating the index as a cache that is rebuilt rather
	// than incrementally patched, trading a little mutation-time cost for
	// much simpler invariant maintenance).
	strIndex map[string]int
	symIndex map[uint64]int

	// lazyDeleted tombstones a lazy property name so GetOwnProperty never
	// re-materializes it after a Delete (spec §4.4).
	lazyDeleted map[string]bool

	// GC bookkeeping (spec §4.5): next threads the all-objects list the
	// sweep phase walks; marked is the mark-phase visited bit.
	next   heap.CP
	marked bool

	// --- kind-specific fields ---

	// Array / FastArray
	ArrayLength uint32
	FastElems   []value.Value // FastArray dense storage; nil once transitioned to Array

	// BoundFunction
	BoundTarget heap.CP
	BoundThis   value.Value
	BoundArgs   []value.Value

	// Proxy
	ProxyTarget  heap.CP
	ProxyHandler heap.CP

	// NativeFunction
	NativeCall NativeFunc

	// ScriptedFunction / ConstructorFunction: cp of the bytecode.CompiledCode
	// heap record. Typed as heap.CP rather than a bytecode-package type for
	// the same acyclic-dependency reason as NativeFunc.
	CompiledCode heap.CP
	// Constructible marks a ScriptedFunction record as usable with `new`
	// (spec §4.6: ordinary function declarations/expressions are, arrow
	// functions never are). Per-instance rather than per-Kind because both
	// shapes share KindScriptedFunction; ConstructorFunction and
	// NativeFunction records are always constructible regardless of this
	// field (see objectops.functionOps/constructorFunctionOps).
	Constructible bool
	// ClosureEnv is the lexical environment captured at function-creation
	// time (spec §4.9's "create_function ... capturing the current scope
	// chain"); a call pushes a fresh declarative environment chained to
	// this one, not to whatever environment happens to be active at the
	// call site.
	ClosureEnv heap.CP

	// ConstructorFunction only (spec §4.6, grounded on
	// ecma_constructor_function_construct): FieldInitializer names the
	// compiled implicit field-init function run against the new instance
	// before (base class) or after (derived class) the superclass chain
	// runs; heap.NullCP if the class declares no instance fields.
	// SuperConstructor, when non-null, marks this as a derived class's
	// constructor and names the ConstructorFunction/NativeFunction/
	// ScriptedFunction object to chain [[Construct]] to.
	FieldInitializer heap.CP
	SuperConstructor heap.CP

	// Arguments (SubArguments on an Ordinary object)
	FormalParamsNumber uint32
	MappedEnv          heap.CP             // the captured lexical environment mapped indices route through
	MappedNames        map[uint32]value.Value // formal index -> binding name in MappedEnv

	// LexicalEnv
	Outer      heap.CP
	EnvSubKind EnvSubKind
	// BindingStates records each declarative binding's mutability
	// (Mutable/Immutable), set once at CreateMutableBinding/
	// CreateImmutableBinding time and never changed afterward.
	BindingStates map[string]BindingState
	// TDZ marks a declarative binding as not yet initialized (spec §4.7's
	// temporal dead zone); InitializeBinding clears it. Kept separate from
	// BindingStates so a const's mutability classification survives TDZ
	// clearing undisturbed.
	TDZ           map[string]bool
	BackingObject heap.CP // EnvObject/EnvGlobal: the object whose properties are the bindings
}

// NewOrdinary returns a zero-valued Ordinary record with the given
// prototype, extensible by default (spec §4.4).
func NewOrdinary(proto heap.CP) Record {
	return Record{Kind: KindOrdinary, Proto: proto, Extensible: true}
}
