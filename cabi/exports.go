package cabi

/*
#include <stdlib.h>
#include "omnibus_types.h"
#include "c_lib.h"
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"go.uber.org/zap"

	omnibus "github.com/wippyai/ffi-omnibus"
	"github.com/wippyai/ffi-omnibus/errors"
	"github.com/wippyai/ffi-omnibus/ledger"
)

// The exported names are the C symbols, so they keep C naming.

//export emit_greeting
func emit_greeting() {
	omnibus.PrintGreeting(stdout)
}

//export contains_substring
func contains_substring(s *C.char) C.bool {
	return C.bool(omnibus.ContainsHotdog(borrowText("contains_substring", s)))
}

//export increment_buffer
func increment_buffer(length C.size_t, array *C.int32_t) {
	omnibus.Increment(borrowInt32s("increment_buffer", array, length))
}

// increment_buffer_via_collaborator hands the caller's buffer straight to the
// C collaborator, which is trusted with the same borrow.
//
//export increment_buffer_via_collaborator
func increment_buffer_via_collaborator(length C.size_t, array *C.int32_t) {
	if array == nil {
		errors.Violate(errors.NilPointer(errors.PhaseBorrow, "increment_buffer_via_collaborator", "buffer"))
	}
	C.c_increment_int_array(length, array)
}

//export double_via_collaborator
func double_via_collaborator(input C.int32_t) C.int32_t {
	return C.c_double_input(input)
}

//export grapheme_count
func grapheme_count(s *C.char) C.uint32_t {
	return C.uint32_t(omnibus.CountGraphemes(borrowText("grapheme_count", s)))
}

//export byte_count
func byte_count(s *C.char) C.uint32_t {
	return C.uint32_t(omnibus.CountBytes(borrowText("byte_count", s)))
}

// produce_owned_text returns a malloc'd copy of the owned greeting. Only
// release_owned_text may free it.
//
//export produce_owned_text
func produce_owned_text() *C.char {
	s := C.CString(omnibus.OwnedGreeting)
	addr := uintptr(unsafe.Pointer(s))
	texts.Acquire(addr, ledger.KindText, uint32(len(omnibus.OwnedGreeting)+1))
	Logger().Debug("owned text produced", zap.Uintptr("ptr", addr))
	return s
}

// release_owned_text frees a string from produce_owned_text. NULL is ignored.
// Any other pointer, or the same pointer twice, aborts.
//
//export release_owned_text
func release_owned_text(s *C.char) {
	if s == nil {
		return
	}
	addr := uintptr(unsafe.Pointer(s))
	texts.Release("release_owned_text", addr)
	C.free(unsafe.Pointer(s))
	Logger().Debug("owned text released", zap.Uintptr("ptr", addr))
}

//export sum_of_even
func sum_of_even(n *C.uint32_t, length C.size_t) C.uint32_t {
	return C.uint32_t(omnibus.SumOfEven(borrowUint32s("sum_of_even", n, length)))
}

//export flip_pair
func flip_pair(t C.omnibus_tuple) C.omnibus_tuple {
	r := omnibus.FlipThingsAround(omnibus.Tuple{X: uint32(t.x), Y: uint32(t.y)})
	return C.omnibus_tuple{x: C.uint32_t(r.X), y: C.uint32_t(r.Y)}
}

//export store_new
func store_new() C.omnibus_store {
	h := cgo.NewHandle(omnibus.NewZipCodeDatabase())
	stores.Acquire(uintptr(h), ledger.KindStore, 0)
	Logger().Debug("store created", zap.Uintptr("handle", uintptr(h)))
	return C.omnibus_store(h)
}

// store_free destroys a store and everything in it. 0 is ignored.
//
//export store_free
func store_free(s C.omnibus_store) {
	if s == 0 {
		return
	}
	stores.Release("store_free", uintptr(s))
	h := cgo.Handle(s)
	h.Value().(*omnibus.ZipCodeDatabase).Drop()
	h.Delete()
	Logger().Debug("store destroyed", zap.Uintptr("handle", uintptr(s)))
}

//export store_populate
func store_populate(s C.omnibus_store) {
	lookupStore("store_populate", s).Populate()
}

//export store_query
func store_query(s C.omnibus_store, zip *C.char) C.uint32_t {
	db := lookupStore("store_query", s)
	return C.uint32_t(db.PopulationOf(borrowText("store_query", zip)))
}
