package object

// Kind discriminates an object record's representation, the one-byte
// header tag of spec §3's "Object record".
type Kind uint8

const (
	KindOrdinary Kind = iota
	KindArray
	KindFastArray
	KindBoundFunction
	KindScriptedFunction
	KindNativeFunction
	KindConstructorFunction
	KindProxy
	KindBuiltInGeneral
	KindBuiltInArray
	KindClass
	// KindLexicalEnv is not one of spec §3's listed object kinds, but spec
	// §3 itself says "a lexical environment is itself an object record
	// with kind LexicalEnv" — so it belongs in this enum, not a separate
	// one.
	KindLexicalEnv
)

func (k Kind) String() string {
	switch k {
	case KindOrdinary:
		return "Ordinary"
	case KindArray:
		return "Array"
	case KindFastArray:
		return "FastArray"
	case KindBoundFunction:
		return "BoundFunction"
	case KindScriptedFunction:
		return "ScriptedFunction"
	case KindNativeFunction:
		return "NativeFunction"
	case KindConstructorFunction:
		return "ConstructorFunction"
	case KindProxy:
		return "Proxy"
	case KindBuiltInGeneral:
		return "BuiltInGeneral"
	case KindBuiltInArray:
		return "BuiltInArray"
	case KindClass:
		return "Class"
	case KindLexicalEnv:
		return "LexicalEnv"
	default:
		return "UnknownKind"
	}
}

// IsCallable reports whether objects of this kind carry a [[Call]]
// internal method at all (the `typeof x === "function"` test, spec §4.6).
// A class constructor's [[Call]] unconditionally throws TypeError when
// invoked (see objectops.constructorFunctionOps.Call) but still counts as
// callable here — the method exists, it just always fails.
func (k Kind) IsCallable() bool {
	switch k {
	case KindBoundFunction, KindScriptedFunction, KindNativeFunction,
		KindConstructorFunction, KindProxy:
		return true
	default:
		return false
	}
}

// SubKind further discriminates KindClass records (spec §3's long list of
// Class subkinds), plus the Arguments subkind of ordinary objects.
type SubKind uint8

const (
	SubNone SubKind = iota
	SubArguments
	SubStringWrapper
	SubDate
	SubRegExp
	SubError
	SubPromise
	SubTypedArray
	SubArrayBuffer
	SubDataView
	SubSet
	SubMap
	SubWeakMap
	SubWeakSet
	SubWeakRef
	SubGenerator
	SubAsyncGenerator
	SubSymbolObject
	SubBigIntObject
	SubModule
	SubModuleNamespace
	SubIterator
)

// EnvSubKind discriminates a KindLexicalEnv record's three forms (spec
// §3's "Lexical environment").
type EnvSubKind uint8

const (
	EnvDeclarative EnvSubKind = iota
	EnvObject
	EnvGlobal
)

// BindingState records a declarative binding's mutability, fixed at
// CreateMutableBinding/CreateImmutableBinding time and never changed
// afterward. Initialization status (TDZ, spec §4.7, invariant P7) is
// tracked separately in Record.TDZ, since a const binding must remember
// it will become immutable while still uninitialized — one enum value
// per binding cannot carry both facts at once.
type BindingState uint8

const (
	BindingMutable BindingState = iota
	BindingImmutable
)
