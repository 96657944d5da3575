package env

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/objectops"
	"github.com/tinyjs/corevm/strtab"
	"github.com/tinyjs/corevm/value"
)

// Environments owns the lexical-environment operations over a shared
// object.Store, mirroring objectops.OpContext's single-owner-per-
// vm.Context shape (spec §9).
type Environments struct {
	store *object.Store
	pool  *strtab.Pool
	ops   *objectops.OpContext
}

// New creates an Environments bound to store/pool/ops. ops is the same
// OpContext the vm package's object operations use, since an
// EnvObject/EnvGlobal record delegates binding access to its
// BackingObject's ordinary [[Get]]/[[Set]]/[[HasProperty]] (spec §4.7).
func New(store *object.Store, pool *strtab.Pool, ops *objectops.OpContext) *Environments {
	return &Environments{store: store, pool: pool, ops: ops}
}

// NewDeclarative creates a fresh declarative lexical environment chained
// to outer.
func (e *Environments) NewDeclarative(outer heap.CP) (heap.CP, error) {
	return e.store.Create(object.Record{
		Kind: object.KindLexicalEnv, EnvSubKind: object.EnvDeclarative, Outer: outer,
	})
}

// NewObjectEnv creates an object environment record backed by backing
// (spec §4.7: used for `with` statements and, with NewGlobal, the global
// environment's object-facing half).
func (e *Environments) NewObjectEnv(outer heap.CP, backing heap.CP) (heap.CP, error) {
	return e.store.Create(object.Record{
		Kind: object.KindLexicalEnv, EnvSubKind: object.EnvObject, Outer: outer, BackingObject: backing,
	})
}

// NewGlobal creates the global environment record backed by globalObject,
// with no outer (the global environment sits at the top of every scope
// chain).
func (e *Environments) NewGlobal(globalObject heap.CP) (heap.CP, error) {
	return e.store.Create(object.Record{
		Kind: object.KindLexicalEnv, EnvSubKind: object.EnvGlobal, Outer: heap.NullCP, BackingObject: globalObject,
	})
}

// CreateMutableBinding declares name as mutable in envCP. A `let` binding
// starts in the TDZ until InitializeBinding runs; a `var` binding should
// call InitializeBinding with undefined immediately afterward, since
// `var` has no TDZ (spec §4.7).
func (e *Environments) CreateMutableBinding(envCP heap.CP, name string) error {
	return e.declare(envCP, name, object.BindingMutable)
}

// CreateImmutableBinding declares name as an immutable (`const`) binding,
// starting uninitialized (TDZ) until InitializeBinding runs.
func (e *Environments) CreateImmutableBinding(envCP heap.CP, name string) error {
	return e.declare(envCP, name, object.BindingImmutable)
}

func (e *Environments) declare(envCP heap.CP, name string, kind object.BindingState) error {
	rec, ok := e.store.Get(envCP)
	if !ok {
		return except.New(except.ReferenceError, "environment does not exist")
	}
	switch rec.EnvSubKind {
	case object.EnvDeclarative:
		if rec.BindingStates == nil {
			rec.BindingStates = make(map[string]object.BindingState)
		}
		if rec.TDZ == nil {
			rec.TDZ = make(map[string]bool)
		}
		rec.BindingStates[name] = kind
		rec.TDZ[name] = true
		return nil
	case object.EnvObject, object.EnvGlobal:
		v := value.Undefined()
		writable := kind == object.BindingMutable
		return e.defineOnBacking(rec.BackingObject, name, object.Descriptor{Value: &v, Writable: &writable})
	default:
		return except.New(except.TypeError, "unknown environment subkind")
	}
}

// InitializeBinding supplies name's first value, clearing the TDZ.
func (e *Environments) InitializeBinding(envCP heap.CP, name string, v value.Value) error {
	rec, ok := e.store.Get(envCP)
	if !ok {
		return except.New(except.ReferenceError, "environment does not exist")
	}
	switch rec.EnvSubKind {
	case object.EnvDeclarative:
		if _, declared := rec.BindingStates[name]; !declared {
			return except.New(except.ReferenceError, "%s is not declared", name)
		}
		key, err := e.pool.NewString(name)
		if err != nil {
			return err
		}
		if err := e.store.DefineOwnProperty(envCP, object.StringKey(key), object.Descriptor{Value: &v}); err != nil {
			return err
		}
		delete(rec.TDZ, name)
		return nil
	case object.EnvObject, object.EnvGlobal:
		writable := true
		return e.defineOnBacking(rec.BackingObject, name, object.Descriptor{Value: &v, Writable: &writable})
	default:
		return except.New(except.TypeError, "unknown environment subkind")
	}
}

// GetBindingValue resolves name in envCP, walking outward through Outer
// if envCP itself does not bind it (spec §4.7's scope-chain lookup).
// Reading an uninitialized (TDZ) binding is a ReferenceError regardless
// of strict mode (invariant P7).
func (e *Environments) GetBindingValue(envCP heap.CP, name string) (value.Value, error) {
	key, err := e.pool.NewString(name)
	if err != nil {
		return value.Value{}, err
	}
	for c := envCP; !c.IsNull(); {
		rec, ok := e.store.Get(c)
		if !ok {
			return value.Value{}, except.New(except.ReferenceError, "environment does not exist")
		}
		switch rec.EnvSubKind {
		case object.EnvDeclarative:
			if _, declared := rec.BindingStates[name]; declared {
				if rec.TDZ[name] {
					return value.Value{}, except.New(except.ReferenceError, "cannot access %q before initialization", name)
				}
				p, _ := e.store.GetOwnProperty(c, object.StringKey(key))
				return p.Value, nil
			}
		case object.EnvObject, object.EnvGlobal:
			has, err := e.hasOnBacking(rec.BackingObject, name)
			if err != nil {
				return value.Value{}, err
			}
			if has {
				return e.getOnBacking(rec.BackingObject, name)
			}
		}
		c = rec.Outer
	}
	return value.Value{}, except.New(except.ReferenceError, "%s is not defined", name)
}

// SetMutableBinding assigns v to name, walking outward through Outer.
// Assigning an uninitialized (TDZ) or immutable binding is a
// ReferenceError/TypeError respectively.
func (e *Environments) SetMutableBinding(envCP heap.CP, name string, v value.Value) error {
	key, err := e.pool.NewString(name)
	if err != nil {
		return err
	}
	for c := envCP; !c.IsNull(); {
		rec, ok := e.store.Get(c)
		if !ok {
			return except.New(except.ReferenceError, "environment does not exist")
		}
		switch rec.EnvSubKind {
		case object.EnvDeclarative:
			if state, declared := rec.BindingStates[name]; declared {
				if rec.TDZ[name] {
					return except.New(except.ReferenceError, "cannot access %q before initialization", name)
				}
				if state == object.BindingImmutable {
					return except.New(except.TypeError, "assignment to constant variable %q", name)
				}
				return e.store.DefineOwnProperty(c, object.StringKey(key), object.Descriptor{Value: &v})
			}
		case object.EnvObject, object.EnvGlobal:
			has, err := e.hasOnBacking(rec.BackingObject, name)
			if err != nil {
				return err
			}
			if has {
				return e.setOnBacking(rec.BackingObject, name, v)
			}
		}
		c = rec.Outer
	}
	return except.New(except.ReferenceError, "%s is not defined", name)
}

// HasBinding reports whether name is bound in envCP itself (not outward).
func (e *Environments) HasBinding(envCP heap.CP, name string) (bool, error) {
	rec, ok := e.store.Get(envCP)
	if !ok {
		return false, except.New(except.ReferenceError, "environment does not exist")
	}
	switch rec.EnvSubKind {
	case object.EnvDeclarative:
		_, declared := rec.BindingStates[name]
		return declared, nil
	case object.EnvObject, object.EnvGlobal:
		return e.hasOnBacking(rec.BackingObject, name)
	default:
		return false, except.New(except.TypeError, "unknown environment subkind")
	}
}

// DeleteBinding removes name from envCP, only meaningful (and only ever
// true) for object/global environments: spec §4.7 forbids deleting a
// declarative binding entirely (a `let`/`const`/function declaration is
// never deletable), mirroring `delete` on a non-configurable property.
func (e *Environments) DeleteBinding(envCP heap.CP, name string) (bool, error) {
	rec, ok := e.store.Get(envCP)
	if !ok {
		return false, except.New(except.ReferenceError, "environment does not exist")
	}
	switch rec.EnvSubKind {
	case object.EnvDeclarative:
		return false, nil
	case object.EnvObject, object.EnvGlobal:
		ops, err := objectops.For(e.ops, rec.BackingObject)
		if err != nil {
			return false, err
		}
		key, err := e.pool.NewString(name)
		if err != nil {
			return false, err
		}
		return ops.Delete(e.ops, rec.BackingObject, object.StringKey(key))
	default:
		return false, except.New(except.TypeError, "unknown environment subkind")
	}
}

func (e *Environments) defineOnBacking(backing heap.CP, name string, desc object.Descriptor) error {
	ops, err := objectops.For(e.ops, backing)
	if err != nil {
		return err
	}
	key, err := e.pool.NewString(name)
	if err != nil {
		return err
	}
	return ops.DefineOwnProperty(e.ops, backing, object.StringKey(key), desc)
}

func (e *Environments) hasOnBacking(backing heap.CP, name string) (bool, error) {
	ops, err := objectops.For(e.ops, backing)
	if err != nil {
		return false, err
	}
	key, err := e.pool.NewString(name)
	if err != nil {
		return false, err
	}
	return ops.HasProperty(e.ops, backing, object.StringKey(key))
}

func (e *Environments) getOnBacking(backing heap.CP, name string) (value.Value, error) {
	ops, err := objectops.For(e.ops, backing)
	if err != nil {
		return value.Value{}, err
	}
	key, err := e.pool.NewString(name)
	if err != nil {
		return value.Value{}, err
	}
	return ops.Get(e.ops, backing, object.StringKey(key), value.Object(backing))
}

func (e *Environments) setOnBacking(backing heap.CP, name string, v value.Value) error {
	ops, err := objectops.For(e.ops, backing)
	if err != nil {
		return err
	}
	key, err := e.pool.NewString(name)
	if err != nil {
		return err
	}
	return ops.Set(e.ops, backing, object.StringKey(key), v, value.Object(backing))
}
