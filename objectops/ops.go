package objectops

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/value"
)

// ObjectOps is the internal-method vtable spec §9's design notes ask for
// in place of the teacher's C function-pointer tables: "a Go interface,
// dispatched once per object.Kind, consulted on every operation."
type ObjectOps interface {
	GetPrototypeOf(ctx *OpContext, cp heap.CP) (heap.CP, error)
	SetPrototypeOf(ctx *OpContext, cp heap.CP, proto heap.CP) error
	IsExtensible(ctx *OpContext, cp heap.CP) (bool, error)
	PreventExtensions(ctx *OpContext, cp heap.CP) error
	GetOwnProperty(ctx *OpContext, cp heap.CP, key object.Key) (object.Property, bool, error)
	DefineOwnProperty(ctx *OpContext, cp heap.CP, key object.Key, desc object.Descriptor) error
	HasProperty(ctx *OpContext, cp heap.CP, key object.Key) (bool, error)
	Get(ctx *OpContext, cp heap.CP, key object.Key, receiver value.Value) (value.Value, error)
	Set(ctx *OpContext, cp heap.CP, key object.Key, v value.Value, receiver value.Value) error
	Delete(ctx *OpContext, cp heap.CP, key object.Key) (bool, error)
	OwnPropertyKeys(ctx *OpContext, cp heap.CP) ([]object.Key, error)
	Call(ctx *OpContext, cp heap.CP, this value.Value, args []value.Value) (value.Value, error)
	Construct(ctx *OpContext, cp heap.CP, args []value.Value, newTarget value.Value) (value.Value, error)
}

var dispatch = map[object.Kind]ObjectOps{}

func register(k object.Kind, ops ObjectOps) { dispatch[k] = ops }

func init() {
	ordinary := ordinaryOps{}
	register(object.KindOrdinary, ordinary)
	register(object.KindBuiltInGeneral, ordinary)
	register(object.KindClass, ordinary)
	register(object.KindLexicalEnv, ordinary)

	arr := arrayOps{ordinaryOps: ordinary}
	register(object.KindArray, arr)
	register(object.KindFastArray, arr)
	register(object.KindBuiltInArray, arr)

	register(object.KindScriptedFunction, functionOps{ordinaryOps: ordinary, constructible: true})
	register(object.KindConstructorFunction, constructorFunctionOps{ordinaryOps: ordinary})
	register(object.KindNativeFunction, functionOps{ordinaryOps: ordinary, constructible: true})
	register(object.KindBoundFunction, boundFunctionOps{ordinaryOps: ordinary})
	register(object.KindProxy, proxyOps{ordinaryOps: ordinary})
}

// argumentsOpsInstance is the single argumentsOps value every mapped or
// unmapped Arguments object dispatches through; SubArguments is a SubKind
// of KindOrdinary (spec §3), not its own Kind, so it cannot live in the
// Kind-keyed dispatch map below and is special-cased in For instead.
var argumentsOpsInstance = argumentsOps{ordinaryOps: ordinaryOps{}}

// For looks up the dispatch entry for cp's kind. Every Kind the object
// package defines is registered at init, so a miss here means cp names a
// dead/garbage slot, not an unhandled kind.
func For(ctx *OpContext, cp heap.CP) (ObjectOps, error) {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return nil, except.New(except.ReferenceError, "object does not exist")
	}
	if rec.Kind == object.KindOrdinary && rec.SubKind == object.SubArguments {
		return argumentsOpsInstance, nil
	}
	ops, ok := dispatch[rec.Kind]
	if !ok {
		return nil, except.New(except.TypeError, "no ObjectOps registered for kind "+rec.Kind.String())
	}
	return ops, nil
}
