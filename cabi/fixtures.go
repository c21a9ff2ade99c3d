package cabi

/*
#include <stdlib.h>
#include "omnibus_types.h"
#include "header_check.h"
*/
import "C"

import (
	"unsafe"

	omnibus "github.com/wippyai/ffi-omnibus"
)

// Test files cannot import "C". These helpers make the allocations a C caller
// would make so the exported functions can be driven from Go.

func cText(s string) *C.char {
	return C.CString(s)
}

// cRawText copies arbitrary bytes, including invalid UTF-8, into a
// NUL-terminated C string.
func cRawText(b []byte) *C.char {
	p := C.malloc(C.size_t(len(b) + 1))
	buf := unsafe.Slice((*byte)(p), len(b)+1)
	copy(buf, b)
	buf[len(b)] = 0
	return (*C.char)(p)
}

func goText(s *C.char) string {
	return C.GoString(s)
}

func cInt32s(vals []int32) *C.int32_t {
	p := C.malloc(C.size_t(max(len(vals), 1)) * C.size_t(unsafe.Sizeof(int32(0))))
	copy(unsafe.Slice((*int32)(p), len(vals)), vals)
	return (*C.int32_t)(p)
}

func goInt32s(p *C.int32_t, n int) []int32 {
	return append([]int32(nil), unsafe.Slice((*int32)(unsafe.Pointer(p)), n)...)
}

func cUint32s(vals []uint32) *C.uint32_t {
	p := C.malloc(C.size_t(max(len(vals), 1)) * C.size_t(unsafe.Sizeof(uint32(0))))
	copy(unsafe.Slice((*uint32)(p), len(vals)), vals)
	return (*C.uint32_t)(p)
}

func cFree[T any](p *T) {
	C.free(unsafe.Pointer(p))
}

func cSize(n int) C.size_t {
	return C.size_t(n)
}

func cInt32(v int32) C.int32_t {
	return C.int32_t(v)
}

func cTuple(t omnibus.Tuple) C.omnibus_tuple {
	return C.omnibus_tuple{x: C.uint32_t(t.X), y: C.uint32_t(t.Y)}
}

func goTuple(t C.omnibus_tuple) omnibus.Tuple {
	return omnibus.Tuple{X: uint32(t.x), Y: uint32(t.y)}
}

// cHeaderCheck runs a C caller compiled against omnibus.h.
func cHeaderCheck() int {
	return int(C.omnibus_header_check())
}
