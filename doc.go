// Package omnibus is a catalogue of foreign-function boundary operations for Go.
//
// Each operation is an independent leaf: it passes scalars, text, numeric
// buffers, fixed-layout pairs or an opaque handle across a boundary and states
// exactly who owns every value once the call returns. The root package holds
// the semantics; the boundary packages only marshal.
//
// # Architecture Overview
//
//	omnibus/             Root package: catalogue semantics, Memory and Allocator
//	├── cabi/            C ABI surface (cgo //export)
//	├── wasmhost/        WebAssembly host surface (wazero)
//	├── ledger/          Ownership ledger and allocation metrics
//	├── resource/        Handle table for opaque values
//	├── errors/          Contract violation types
//	├── internal/synth/  Core wasm module builder for test guests
//	└── cmd/libomnibus/  C library build entry point
//
// # Ownership
//
// Three kinds of values cross a boundary:
//
//   - Borrowed: text and buffers owned by the caller. Valid for one call,
//     never retained, never freed here.
//   - Transferred out: owned text and store handles. The caller must hand each
//     one back exactly once to its release operation.
//   - By value: scalars and the Tuple pair. Copied on every crossing.
//
// # Failure
//
// The catalogue has no recoverable error path. A null pointer, invalid UTF-8,
// an out-of-bounds region or a second release is a caller bug and fails fast
// with an *errors.Error panic. Absence is in-band: querying a missing key
// returns 0, indistinguishable from a key stored with 0.
//
// # Thread Safety
//
// Operations run to completion on the calling goroutine. Values reachable
// through a store handle are not synchronized; callers must not use one handle
// from two threads at once.
package omnibus
