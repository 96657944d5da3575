// Package vm implements the stack-machine interpreter spec §4.9
// describes: per-call Frame state (compiled code, instruction pointer,
// value stack, lexical environment, this/new-target, flags), a Context
// bundling every piece of process-wide state a frame's dispatch loop
// needs (heap, object store, string pool, environments, GC, the global
// object/environment, the current exception), and the opcode dispatch
// loop itself.
//
// Context is grounded on the teacher's hive.Hive: a single struct owning
// every subordinate resource, passed explicitly (never through package-
// level globals) to every operation that needs it — spec §9's own
// "bundle it into a single owner" guidance. The frame-push/execute/pop
// shape of a function call mirrors hive/tx.Manager's Begin/Apply/Commit
// staging: entering a call is a Begin, running its body is a sequence of
// Applies, returning is a Commit that folds the result back into the
// caller's frame.
//
// The dispatch loop never recurses through Go's call stack for an
// ECMAScript function call (spec §4.9's "strictly single-threaded" stack
// machine): Context.frames is an explicit slice the VM itself manages,
// the same iterative-traversal discipline gc.Collector's mark phase
// already uses instead of a recursive walk.
package vm
