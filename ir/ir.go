// Package ir provides a minimal, MLIR-flavored intermediate representation
// surface: a Module carrying an ordered attribute table, and a small closed
// set of attribute value types (see Attr).
//
// Among its features:
//
// - Attributes form a dynamically-tagged tree of dictionaries, arrays and
//   scalar values, inspected with type switches at each read site.
// - Every attribute renders itself in MLIR-flavored text, so a Module can be
//   dumped in a human-readable form.
// - Written purely in Go, no C/C++ external dependencies.
//
// The package intentionally implements only what compiler passes in this
// repository need; it is not a general MLIR binding.
package ir
