// Package env implements the lexical-environment operations spec §4.7
// describes: CreateMutableBinding, CreateImmutableBinding,
// InitializeBinding, SetMutableBinding, GetBindingValue, DeleteBinding,
// HasBinding, and the declarative/object/global environment record
// variants, including TDZ (temporal dead zone) detection for
// uninitialized bindings (invariant P7).
//
// A lexical environment is itself an object.Record of kind
// object.KindLexicalEnv (spec §3), chained via its Outer field exactly as
// pkg/ast.Node chains via Parent; env only adds the binding-lookup
// algorithms object.Store's generic property chain does not know about
// (TDZ, the object-environment delegation to objectops for EnvObject/
// EnvGlobal, and the outward scope-chain walk GetBindingValue needs).
package env
