package cabi

/*
#include <string.h>
#include "omnibus_types.h"
*/
import "C"

import (
	"io"
	"os"
	"runtime/cgo"
	"unsafe"

	omnibus "github.com/wippyai/ffi-omnibus"
	"github.com/wippyai/ffi-omnibus/errors"
	"github.com/wippyai/ffi-omnibus/ledger"
)

var (
	stdout io.Writer = os.Stdout

	metrics, _ = ledger.NewMetrics(nil, boundaryName)

	// texts is keyed by the C address of each produced string.
	texts = ledger.New[uintptr](boundaryName, metrics)
	// stores is keyed by cgo.Handle value.
	stores = ledger.New[uintptr](boundaryName, metrics)
)

// Outstanding reports owned texts and stores handed to C and not yet released.
func Outstanding() (textCount, storeCount int) {
	return texts.Live(), stores.Live()
}

// Metrics returns the allocation metrics currently in effect.
func Metrics() *ledger.Metrics {
	return metrics
}

// borrowText views a NUL-terminated C string without copying. The result must
// not outlive the call.
func borrowText(op string, s *C.char) string {
	if s == nil {
		errors.Violate(errors.NilPointer(errors.PhaseBorrow, op, "text"))
	}
	n := int(C.strlen(s))
	return omnibus.ValidateText(op, unsafe.String((*byte)(unsafe.Pointer(s)), n))
}

func borrowInt32s(op string, p *C.int32_t, n C.size_t) []int32 {
	if p == nil {
		errors.Violate(errors.NilPointer(errors.PhaseBorrow, op, "buffer"))
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(p)), int(n))
}

func borrowUint32s(op string, p *C.uint32_t, n C.size_t) []uint32 {
	if p == nil {
		errors.Violate(errors.NilPointer(errors.PhaseBorrow, op, "buffer"))
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(p)), int(n))
}

func lookupStore(op string, s C.omnibus_store) *omnibus.ZipCodeDatabase {
	if s == 0 {
		errors.Violate(errors.NilPointer(errors.PhaseHandle, op, "store"))
	}
	stores.Check(op, uintptr(s))
	return cgo.Handle(s).Value().(*omnibus.ZipCodeDatabase)
}
