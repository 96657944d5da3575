// Package object implements the object record and property store described
// in spec §4.4: one heap record per live object or lexical environment, a
// property chain (plus a threshold-gated hashmap accelerator) per record,
// the fast-array storage variant, and the arguments-object mapped-index
// machinery.
//
// The dispatch of ECMAScript's internal methods ([[Get]], [[Set]], …) onto
// these records lives one layer up, in package objectops; this package
// only owns storage and the primitive chain/hashmap/fast-array mechanics
// spec §4.4 assigns to "the object model".
package object
