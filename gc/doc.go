// Package gc implements the mark-and-sweep collector described in spec
// §4.5: an iterative (explicit-stack, never recursive) depth-first mark
// over the live object graph using a bitmap visited-set, followed by a
// sweep that walks the object store's all-objects list and frees whatever
// the mark phase did not reach. Weak references are a side table
// nullified once the mark phase has run.
package gc
