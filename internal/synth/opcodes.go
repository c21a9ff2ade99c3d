package synth

// Instruction opcodes used by hand-written bodies.
const (
	OpUnreachable = 0x00
	OpBlock       = 0x02
	OpLoop        = 0x03
	OpIf          = 0x04
	OpElse        = 0x05
	OpEnd         = 0x0b
	OpBr          = 0x0c
	OpBrIf        = 0x0d
	OpReturn      = 0x0f
	OpCall        = 0x10
	OpDrop        = 0x1a

	OpLocalGet  = 0x20
	OpLocalSet  = 0x21
	OpLocalTee  = 0x22
	OpGlobalGet = 0x23
	OpGlobalSet = 0x24

	OpI32Load    = 0x28
	OpI32Store   = 0x36
	OpMemorySize = 0x3f

	OpI32Const = 0x41
	OpI32Eqz   = 0x45
	OpI32GtS   = 0x4a
	OpI32GtU   = 0x4b
	OpI32GeS   = 0x4e
	OpI32GeU   = 0x4f
	OpI32Add   = 0x6a
	OpI32Sub   = 0x6b
	OpI32And   = 0x71
	OpI32Shl   = 0x74

	// BlockEmpty is the block type of a block, loop or if without results.
	BlockEmpty = 0x40
)

// Code accumulates an instruction sequence.
type Code []byte

// Op appends raw opcodes.
func (c Code) Op(ops ...byte) Code { return append(c, ops...) }

// LocalGet appends local.get idx.
func (c Code) LocalGet(idx uint32) Code { return append(append(c, OpLocalGet), ULEB128(idx)...) }

// LocalSet appends local.set idx.
func (c Code) LocalSet(idx uint32) Code { return append(append(c, OpLocalSet), ULEB128(idx)...) }

// LocalTee appends local.tee idx.
func (c Code) LocalTee(idx uint32) Code { return append(append(c, OpLocalTee), ULEB128(idx)...) }

// GlobalGet appends global.get idx.
func (c Code) GlobalGet(idx uint32) Code { return append(append(c, OpGlobalGet), ULEB128(idx)...) }

// GlobalSet appends global.set idx.
func (c Code) GlobalSet(idx uint32) Code { return append(append(c, OpGlobalSet), ULEB128(idx)...) }

// I32Const appends i32.const v.
func (c Code) I32Const(v int32) Code { return append(append(c, OpI32Const), SLEB128(v)...) }

// I32Load appends an aligned i32.load with offset 0.
func (c Code) I32Load() Code { return append(c, OpI32Load, 0x02, 0x00) }

// I32Store appends an aligned i32.store with offset 0.
func (c Code) I32Store() Code { return append(c, OpI32Store, 0x02, 0x00) }

// MemorySize appends memory.size for memory 0.
func (c Code) MemorySize() Code { return append(c, OpMemorySize, 0x00) }

// Br appends br depth.
func (c Code) Br(depth uint32) Code { return append(append(c, OpBr), ULEB128(depth)...) }

// BrIf appends br_if depth.
func (c Code) BrIf(depth uint32) Code { return append(append(c, OpBrIf), ULEB128(depth)...) }
