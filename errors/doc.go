// Package errors provides the contract violation type used across the boundary.
//
// Errors are categorized by Phase (where the violation was detected) and Kind
// (what was violated). The Error type carries the failing operation, the
// offending value and an optional cause chain.
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseBorrow, errors.KindNilPointer).
//		Op("contains_substring").
//		Detail("text pointer is null").
//		Build()
//
// Or the convenience constructors for common patterns:
//
//	err := errors.NilPointer(errors.PhaseBorrow, "store_query", "key")
//	err := errors.DoubleRelease("release_owned_text", ptr)
//
// Contract violations are not returned. Violate panics with the error so the
// call fails fast; at a C boundary that aborts the process, inside a wazero
// host function it traps the guest call. All errors implement the standard
// error interface and support errors.Is/As.
package errors
