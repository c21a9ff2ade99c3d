// Package wasmhost exposes the omnibus catalogue to WebAssembly guests as a
// wazero host module.
//
// Guest pointers are i32 offsets into the calling module's exported memory.
// Text crosses NUL-terminated, so the same text rules apply as on the C
// boundary: a zero pointer is null, bytes must be UTF-8, and a region past the
// end of memory is a contract violation that traps the calling guest.
//
// Ownership:
//
//	borrowed   text, buffers     read for the duration of the call only
//	owned      produce_owned_text allocated with the guest's cabi_realloc,
//	                             recorded until release_owned_text
//	opaque     store handles     entries in a per-Host handle table
//
// Delegated operations call back into the same guest through its
// c_double_input and c_increment_int_array exports. BuildGuest produces a
// minimal guest that provides both, plus memory and cabi_realloc.
//
// A Host may be instantiated into several runtimes. Its handle table and
// ledger are safe for concurrent use; a single guest module is not.
package wasmhost
