// Package strtab implements the string pool described in spec §4.3: the
// magic-string table, heap-string construction and refcounting, and the
// symbol registry.
//
// Strings reach a Value in one of three forms, chosen by Pool.NewString so
// that callers never think about the distinction:
//
//   - very short (<=7 bytes), all-ASCII text is stored inline in the Value
//     itself via value.DirectStr — no heap allocation at all;
//   - a well-known identifier that matches an entry in the compile-time
//     magic table is represented by that entry's id, likewise with no heap
//     allocation;
//   - anything else is encoded as CESU-8 and stored in the heap's byte
//     arena as a refcounted heap string, deduplicated by an intern table so
//     identical content shares one allocation.
//
// Per spec invariant I6, heap strings are refcounted, not garbage
// collected: reaching a refcount of zero triggers immediate release of the
// backing byte-arena span. The gc package's sweep phase calls into this
// package to release the strings an unmarked object's properties were
// holding, the same way the teacher's allocator finalizes kind-specific
// state before returning a cell to the free list.
package strtab
