// Package objectops implements ECMAScript's internal-method dispatch
// (spec §4.4 / §9): one method per internal method name ([[Get]],
// [[Set]], [[Call]], [[Construct]], …), dispatched per object.Kind
// through a table built once at init — the same "dispatch table built
// once, consulted per operation" shape as the teacher's
// internal/repair.module.go per-record-kind repair table, and its
// kind-switch-then-delegate pattern from internal/reader generalized
// from a byte-cell kind tag to object.Kind.
//
// This package sits above object (storage) and below vm (the opcode
// loop that drives it); it owns *behavior*, object owns *storage*.
package objectops
