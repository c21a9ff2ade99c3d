package wasmhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/ffi-omnibus/errors"
)

func TestGuest_Exports(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, sig := range catalogue {
		assert.NotNil(t, env.guest.ExportedFunction(sig.name), sig.name)
	}
	for _, name := range []string{"cabi_realloc", "c_double_input", "c_increment_int_array"} {
		assert.NotNil(t, env.guest.ExportedFunction(name), name)
	}
	assert.Equal(t, uint32(guestMemoryPages*65536), env.guest.Memory().Size())
}

func TestGuest_Realloc(t *testing.T) {
	env := newTestEnv(t, Options{})

	a := uint32(env.mustCall("cabi_realloc", 0, 0, 1, 3)[0])
	assert.Equal(t, uint32(guestHeapBase), a)

	b := uint32(env.mustCall("cabi_realloc", 0, 0, 8, 16)[0])
	assert.Zero(t, b%8, "aligned")
	assert.GreaterOrEqual(t, b, a+3)

	assert.Zero(t, env.mustCall("cabi_realloc", api.EncodeU32(b), 16, 8, 0)[0], "free returns 0")

	_, err := env.call("cabi_realloc", 0, 0, 1, uint64(env.guest.Memory().Size()))
	assert.Error(t, err, "exhausting memory traps")
}

func TestGuestAllocator(t *testing.T) {
	env := newTestEnv(t, Options{})
	alloc := &guestAllocator{ctx: env.ctx, fn: env.guest.ExportedFunction("cabi_realloc")}

	ptr, err := alloc.Alloc(10, 4)
	require.NoError(t, err)
	assert.Zero(t, ptr%4)

	_, err = alloc.Alloc(0, 1)
	var v *errors.Error
	require.ErrorAs(t, err, &v)
	assert.Equal(t, errors.KindAllocation, v.Kind)

	assert.NoError(t, alloc.Free(ptr, 10, 4))
}

func TestGuestMemory(t *testing.T) {
	env := newTestEnv(t, Options{})
	m := &guestMemory{mem: env.guest.Memory()}
	size := m.Size()

	require.NoError(t, m.Write(64, []byte{0xbe, 0xba, 0xfe, 0xca}))
	raw, err := m.Read(64, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xcafebabe}, decodeUint32s(raw))

	require.NoError(t, m.WriteU8(64, 0x01))
	raw, err = m.Read(64, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, raw)

	_, err = m.Read(size-2, 4)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBorrow, Kind: errors.KindOutOfBounds})
	assert.Error(t, m.WriteU8(size, 1))
	assert.Error(t, m.Write(size-1, []byte{1, 2}))
	_, err = m.Read(size, 1)
	assert.Error(t, err)

	require.NoError(t, m.Write(128, []byte("hi\x00")))
	s, err := readCString(m, size, 128)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(s))
}
