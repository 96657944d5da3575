// Package heap implements the compressed-pointer heap: the allocators that
// back every object record and heap string in the VM.
//
// Two kinds of arena live here:
//
//   - Arena[T], a growable slot table addressed by CP; the packages above
//     own their own instances (object for object/lexical-environment
//     records, strtab for heap-string and symbol records);
//   - the byte arena (ByteArena), a segregated free-list allocator over a
//     contiguous []byte region, holding heap-string and compiled-code byte
//     buffers. Heap is its single owner.
//
// An Arena record is named by a CP, a 16-bit handle, and CP 0 is the null
// handle; a byte-arena span is named by its int32 offset into the region.
// Handles and offsets, never raw addresses or slices, cross package
// boundaries. Nothing is relocated: storage is reclaimed in place.
package heap
