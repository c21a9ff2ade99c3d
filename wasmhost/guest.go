package wasmhost

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/ffi-omnibus/internal/synth"
)

const (
	guestMemoryPages = 2
	guestHeapBase    = 1024
)

var (
	i32 = api.ValueTypeI32

	reallocSig = synth.Signature{Params: []api.ValueType{i32, i32, i32, i32}, Results: []api.ValueType{i32}}
	doubleSig  = synth.Signature{Params: []api.ValueType{i32}, Results: []api.ValueType{i32}}
	arraySig   = synth.Signature{Params: []api.ValueType{i32, i32}}
)

// BuildGuest returns a core module that imports the catalogue from
// hostModule and re-exports every function under the same name. It also
// exports memory, a bump cabi_realloc and the two collaborators with the same
// overflow guards as the C library.
func BuildGuest(hostModule string) []byte {
	b := synth.NewBuilder(hostModule)
	for _, sig := range catalogue {
		params, results, err := sig.coreTypes()
		if err != nil {
			panic(err)
		}
		b.Forward(sig.name, synth.Signature{Params: params, Results: results})
	}

	b.Memory("memory", guestMemoryPages)
	heap := b.Global(i32, true, guestHeapBase)

	b.Func("cabi_realloc", reallocSig, []api.ValueType{i32}, reallocBody(heap))
	b.Func("c_double_input", doubleSig, nil, doubleBody())
	b.Func("c_increment_int_array", arraySig, []api.ValueType{i32, i32, i32}, incrementBody())

	return b.Build()
}

// reallocBody bumps the heap global. A zero new size frees, which is a no-op.
// Reallocation never copies. Exhausting memory traps.
//
// params: 0 old_ptr, 1 old_size, 2 align, 3 new_size; local 4 ptr
func reallocBody(heap uint32) synth.Code {
	return synth.Code{}.
		LocalGet(3).Op(synth.OpI32Eqz, synth.OpIf, synth.BlockEmpty).
		I32Const(0).Op(synth.OpReturn).
		Op(synth.OpEnd).
		// ptr = (heap + align - 1) & -align
		GlobalGet(heap).LocalGet(2).Op(synth.OpI32Add).I32Const(1).Op(synth.OpI32Sub).
		I32Const(0).LocalGet(2).Op(synth.OpI32Sub).Op(synth.OpI32And).
		LocalTee(4).LocalGet(3).Op(synth.OpI32Add).GlobalSet(heap).
		GlobalGet(heap).MemorySize().I32Const(16).Op(synth.OpI32Shl).Op(synth.OpI32GtU).
		Op(synth.OpIf, synth.BlockEmpty, synth.OpUnreachable, synth.OpEnd).
		LocalGet(4)
}

// params: 0 input
func doubleBody() synth.Code {
	return synth.Code{}.
		LocalGet(0).I32Const(math.MaxInt32/2).Op(synth.OpI32GtS).
		Op(synth.OpIf, synth.ValType(i32)).
		I32Const(0).
		Op(synth.OpElse).
		LocalGet(0).I32Const(1).Op(synth.OpI32Shl).
		Op(synth.OpEnd)
}

// params: 0 len, 1 array; locals: 2 i, 3 addr, 4 value
func incrementBody() synth.Code {
	return synth.Code{}.
		Op(synth.OpBlock, synth.BlockEmpty, synth.OpLoop, synth.BlockEmpty).
		LocalGet(2).LocalGet(0).Op(synth.OpI32GeU).BrIf(1).
		LocalGet(1).LocalGet(2).I32Const(2).Op(synth.OpI32Shl).Op(synth.OpI32Add).LocalTee(3).
		I32Load().LocalTee(4).I32Const(math.MaxInt32 - 1).Op(synth.OpI32GeS).BrIf(1).
		LocalGet(3).LocalGet(4).I32Const(1).Op(synth.OpI32Add).I32Store().
		LocalGet(2).I32Const(1).Op(synth.OpI32Add).LocalSet(2).
		Br(0).
		Op(synth.OpEnd, synth.OpEnd)
}
