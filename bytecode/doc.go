// Package bytecode implements the compiled-code loader spec §4.8
// describes: a fixed header (status flags, argument/register/stack-depth
// counts), a literal table, the opcode byte stream, and a per-function
// protected-range table for exception handling (spec §4.10). It also
// implements the snapshot container format that bundles several
// CompiledCode blobs together.
//
// The loader is a bounds-checked cursor reader in the style of
// internal/format's ParseHeader family (explicit length checks ahead of
// every multi-byte read) rather than a reflective decoder, since spec §4.8
// asks for a loader that "validates no structural invariants ... beyond
// bounds checks" and a hand-rolled cursor gives that control directly.
package bytecode
