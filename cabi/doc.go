// Package cabi exposes the omnibus catalogue as a C ABI through cgo.
//
// Build it into a library with cmd/libomnibus:
//
//	go build -buildmode=c-shared -o libomnibus.so ./cmd/libomnibus
//
// and include omnibus.h, which declares every exported symbol. Each one
// follows one of three ownership rules:
//
//	borrow       const char*, int32_t*/uint32_t* + size_t: read (or mutated in
//	             place) for the duration of the call, never retained or freed
//	transfer out produce_owned_text, store_new: the caller owns the result and
//	             must pass it to release_owned_text / store_free exactly once
//	by value     int32_t, omnibus_tuple
//
// A null pointer where one is not allowed, text that is not UTF-8, a second
// release, or a store used after store_free panics. A Go panic that reaches a C
// frame aborts the process, so contract violations fail fast. The release
// operations accept null as a no-op.
//
// The store handle is a runtime/cgo.Handle carried as uintptr_t; C code must
// treat it as opaque.
package cabi
