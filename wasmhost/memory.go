package wasmhost

import (
	"bytes"
	"context"

	"github.com/tetratelabs/wazero/api"

	omnibus "github.com/wippyai/ffi-omnibus"
	"github.com/wippyai/ffi-omnibus/errors"
)

var (
	_ omnibus.Memory      = (*guestMemory)(nil)
	_ omnibus.MemorySizer = (*guestMemory)(nil)
	_ omnibus.Allocator   = (*guestAllocator)(nil)
)

// guestMemory adapts a guest's exported memory. Every failure is an
// out-of-bounds *errors.Error.
type guestMemory struct {
	mem api.Memory
}

func (m *guestMemory) Size() uint32 {
	return m.mem.Size()
}

func (m *guestMemory) Read(offset, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds("", uint64(offset), uint64(length))
	}
	return data, nil
}

func (m *guestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds("", uint64(offset), uint64(len(data)))
	}
	return nil
}

func (m *guestMemory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return errors.OutOfBounds("", uint64(offset), 1)
	}
	return nil
}

// readCString returns a view of the NUL-terminated bytes at offset, without
// the terminator. The view aliases guest memory.
func readCString(m omnibus.Memory, size, offset uint32) ([]byte, error) {
	if offset >= size {
		return nil, errors.OutOfBounds("", uint64(offset), 1)
	}
	rest, err := m.Read(offset, size-offset)
	if err != nil {
		return nil, err
	}
	n := bytes.IndexByte(rest, 0)
	if n < 0 {
		e := errors.OutOfBounds("", uint64(offset), uint64(len(rest)))
		e.Detail = "text is not NUL-terminated before end of memory"
		return nil, e
	}
	return rest[:n], nil
}

// guestAllocator allocates through the guest's cabi_realloc export.
type guestAllocator struct {
	ctx context.Context
	fn  api.Function
}

func (a *guestAllocator) Alloc(size, align uint32) (uint32, error) {
	results, err := a.fn.Call(a.ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, errors.AllocationFailed("", size, align, err)
	}
	if len(results) == 0 || results[0] == 0 {
		return 0, errors.AllocationFailed("", size, align, nil)
	}
	return uint32(results[0]), nil
}

func (a *guestAllocator) Free(ptr, size, align uint32) error {
	if _, err := a.fn.Call(a.ctx, uint64(ptr), uint64(size), uint64(align), 0); err != nil {
		return errors.New(errors.PhaseTransfer, errors.KindAllocation).
			Value(ptr).
			Detail("failed to free %d bytes at %#x", size, ptr).
			Cause(err).
			Build()
	}
	return nil
}
