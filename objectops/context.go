package objectops

import (
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

// ScriptInvoker runs a ScriptedFunction/ConstructorFunction record's
// compiled code against the lexical environment it closed over at
// creation time. It is supplied by package vm at VM bring-up rather than
// imported directly, preserving the one-directional dependency order
// (objectops must not import vm, or bytecode, which vm itself sits atop).
type ScriptInvoker func(code heap.CP, closureEnv heap.CP, this value.Value, newTarget value.Value, args []value.Value) (value.Value, error)

// BindingGetter and BindingSetter let a mapped Arguments object
// (object.SubArguments, spec §4.4/§4.6) route a tracked index's Get/Set
// through the lexical environment it closed over, without objectops
// importing package env (env already imports objectops — see
// ecma_op_get_binding_value/ecma_op_set_mutable_binding in
// ecma-arguments-object.c for the operation these stand in for).
type BindingGetter func(envCP heap.CP, name string) (value.Value, error)
type BindingSetter func(envCP heap.CP, name string, v value.Value) error

// OpContext bundles everything an ObjectOps method needs to act: the
// object store, the string pool (for key/content comparisons), and the
// script invoker. One OpContext is created per vm.Context and threaded
// through every call, mirroring spec §9's "bundle it into a single
// owner" guidance already applied to heap.Heap and object.Store
// themselves.
type OpContext struct {
	Store      *object.Store
	Pool       *strtab.Pool
	Invoke     ScriptInvoker
	GetBinding BindingGetter
	SetBinding BindingSetter
}

// NewContext creates an OpContext. invoke may be nil until package vm has
// finished bringing up its interpreter loop; calling [[Call]] on a
// ScriptedFunction before then panics deliberately rather than silently
// no-opping.
func NewContext(store *object.Store, pool *strtab.Pool, invoke ScriptInvoker) *OpContext {
	return &OpContext{Store: store, Pool: pool, Invoke: invoke}
}
