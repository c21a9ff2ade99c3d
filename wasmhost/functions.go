package wasmhost

import (
	"context"
	"encoding/binary"
	stderrors "errors"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	omnibus "github.com/wippyai/ffi-omnibus"
	"github.com/wippyai/ffi-omnibus/errors"
	"github.com/wippyai/ffi-omnibus/ledger"
	"github.com/wippyai/ffi-omnibus/resource"
)

func (h *Host) functions() map[string]api.GoModuleFunc {
	return map[string]api.GoModuleFunc{
		"emit_greeting":                     h.emitGreeting,
		"contains_substring":                h.containsSubstring,
		"increment_buffer":                  h.incrementBuffer,
		"increment_buffer_via_collaborator": h.incrementBufferViaCollaborator,
		"double_via_collaborator":           h.doubleViaCollaborator,
		"grapheme_count":                    h.graphemeCount,
		"byte_count":                        h.byteCount,
		"produce_owned_text":                h.produceOwnedText,
		"release_owned_text":                h.releaseOwnedText,
		"sum_of_even":                       h.sumOfEven,
		"flip_pair":                         h.flipPair,
		"store_new":                         h.storeNew,
		"store_free":                        h.storeFree,
		"store_populate":                    h.storePopulate,
		"store_query":                       h.storeQuery,
	}
}

// call carries one host function invocation. Its helpers violate instead of
// returning errors, which wazero surfaces to the guest as a trap.
type call struct {
	ctx context.Context
	mod api.Module
	op  string
}

func (c *call) check(err error) {
	if err == nil {
		return
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		if e.Op == "" {
			e.Op = c.op
		}
		errors.Violate(e)
	}
	panic(err)
}

func (c *call) memory() *guestMemory {
	mem := c.mod.Memory()
	if mem == nil {
		errors.Violate(errors.MissingExport(c.op, "memory"))
	}
	return &guestMemory{mem: mem}
}

func (c *call) export(name string) api.Function {
	fn := c.mod.ExportedFunction(name)
	if fn == nil {
		errors.Violate(errors.MissingExport(c.op, name))
	}
	return fn
}

func (c *call) invoke(name string, args ...uint64) []uint64 {
	res, err := c.export(name).Call(c.ctx, args...)
	if err != nil {
		errors.Violate(errors.CollaboratorFailed(c.op, name, err))
	}
	return res
}

func (c *call) allocator() *guestAllocator {
	return &guestAllocator{ctx: c.ctx, fn: c.export("cabi_realloc")}
}

// text copies the NUL-terminated UTF-8 text at ptr.
func (c *call) text(ptr uint32) string {
	if ptr == 0 {
		errors.Violate(errors.NilPointer(errors.PhaseBorrow, c.op, "text"))
	}
	m := c.memory()
	b, err := readCString(m, m.Size(), ptr)
	c.check(err)
	return omnibus.ValidateText(c.op, string(b))
}

// words returns a view of n 32-bit elements at ptr.
func (c *call) words(ptr, n uint32) []byte {
	if ptr == 0 {
		errors.Violate(errors.NilPointer(errors.PhaseBorrow, c.op, "buffer"))
	}
	m := c.memory()
	size := uint64(n) * 4
	if uint64(ptr)+size > uint64(m.Size()) {
		errors.Violate(errors.OutOfBounds(c.op, uint64(ptr), size))
	}
	raw, err := m.Read(ptr, uint32(size))
	c.check(err)
	return raw
}

func decodeInt32s(raw []byte) []int32 {
	out := make([]int32, len(raw)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out
}

func encodeInt32s(raw []byte, xs []int32) {
	for i, x := range xs {
		binary.LittleEndian.PutUint32(raw[4*i:], uint32(x))
	}
}

func decodeUint32s(raw []byte) []uint32 {
	out := make([]uint32, len(raw)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[4*i:])
	}
	return out
}

func encodeBool(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (h *Host) emitGreeting(_ context.Context, _ api.Module, _ []uint64) {
	omnibus.PrintGreeting(h.stdout)
}

func (h *Host) containsSubstring(ctx context.Context, mod api.Module, stack []uint64) {
	c := &call{ctx: ctx, mod: mod, op: "contains_substring"}
	stack[0] = encodeBool(omnibus.ContainsHotdog(c.text(api.DecodeU32(stack[0]))))
}

func (h *Host) incrementBuffer(ctx context.Context, mod api.Module, stack []uint64) {
	c := &call{ctx: ctx, mod: mod, op: "increment_buffer"}
	raw := c.words(api.DecodeU32(stack[1]), api.DecodeU32(stack[0]))
	xs := decodeInt32s(raw)
	omnibus.Increment(xs)
	encodeInt32s(raw, xs)
}

func (h *Host) incrementBufferViaCollaborator(ctx context.Context, mod api.Module, stack []uint64) {
	c := &call{ctx: ctx, mod: mod, op: "increment_buffer_via_collaborator"}
	n, ptr := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	if ptr == 0 {
		errors.Violate(errors.NilPointer(errors.PhaseBorrow, c.op, "buffer"))
	}
	c.invoke("c_increment_int_array", api.EncodeU32(n), api.EncodeU32(ptr))
}

func (h *Host) doubleViaCollaborator(ctx context.Context, mod api.Module, stack []uint64) {
	c := &call{ctx: ctx, mod: mod, op: "double_via_collaborator"}
	res := c.invoke("c_double_input", api.EncodeI32(api.DecodeI32(stack[0])))
	stack[0] = api.EncodeI32(api.DecodeI32(res[0]))
}

func (h *Host) graphemeCount(ctx context.Context, mod api.Module, stack []uint64) {
	c := &call{ctx: ctx, mod: mod, op: "grapheme_count"}
	stack[0] = api.EncodeU32(omnibus.CountGraphemes(c.text(api.DecodeU32(stack[0]))))
}

func (h *Host) byteCount(ctx context.Context, mod api.Module, stack []uint64) {
	c := &call{ctx: ctx, mod: mod, op: "byte_count"}
	stack[0] = api.EncodeU32(omnibus.CountBytes(c.text(api.DecodeU32(stack[0]))))
}

// produceOwnedText copies the owned greeting into memory allocated by the
// guest. The guest owns the bytes but must hand them back through
// release_owned_text.
func (h *Host) produceOwnedText(ctx context.Context, mod api.Module, stack []uint64) {
	c := &call{ctx: ctx, mod: mod, op: "produce_owned_text"}
	text := omnibus.OwnedGreeting
	size := uint32(len(text) + 1)

	ptr, err := c.allocator().Alloc(size, 1)
	c.check(err)

	m := c.memory()
	c.check(m.Write(ptr, []byte(text)))
	c.check(m.WriteU8(ptr+size-1, 0))

	addr := guestAddr{module: mod.Name(), ptr: ptr}
	h.texts.Acquire(addr, ledger.KindText, size)
	h.logger.Debug("owned text produced", zap.Stringer("addr", addr))

	stack[0] = api.EncodeU32(ptr)
}

func (h *Host) releaseOwnedText(ctx context.Context, mod api.Module, stack []uint64) {
	ptr := api.DecodeU32(stack[0])
	if ptr == 0 {
		return
	}
	c := &call{ctx: ctx, mod: mod, op: "release_owned_text"}
	alloc := c.allocator()

	addr := guestAddr{module: mod.Name(), ptr: ptr}
	a := h.texts.Release(c.op, addr)
	c.check(alloc.Free(ptr, a.Size, 1))
	h.logger.Debug("owned text released", zap.Stringer("addr", addr))
}

func (h *Host) sumOfEven(ctx context.Context, mod api.Module, stack []uint64) {
	c := &call{ctx: ctx, mod: mod, op: "sum_of_even"}
	raw := c.words(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
	stack[0] = api.EncodeU32(omnibus.SumOfEven(decodeUint32s(raw)))
}

func (h *Host) flipPair(_ context.Context, _ api.Module, stack []uint64) {
	r := omnibus.FlipThingsAround(omnibus.Tuple{
		X: api.DecodeU32(stack[0]),
		Y: api.DecodeU32(stack[1]),
	})
	stack[0], stack[1] = api.EncodeU32(r.X), api.EncodeU32(r.Y)
}

func (h *Host) storeNew(_ context.Context, _ api.Module, stack []uint64) {
	handle := h.stores.Insert(omnibus.NewZipCodeDatabase())
	if handle == 0 {
		errors.Violate(errors.New(errors.PhaseHandle, errors.KindAllocation).
			Op("store_new").
			Detail("host %s is closed or out of store handles", h.name).
			Build())
	}
	stack[0] = api.EncodeU32(uint32(handle))
}

// storeFree destroys a store. Handle 0 is ignored. Store handles are never
// reissued, so a stale handle cannot reach a newer store.
func (h *Host) storeFree(_ context.Context, _ api.Module, stack []uint64) {
	handle := resource.Handle(api.DecodeU32(stack[0]))
	if handle == 0 {
		return
	}
	if _, ok := h.stores.Remove(handle); !ok {
		errors.Violate(errors.InvalidHandle("store_free", handle))
	}
}

func (h *Host) lookupStore(op string, raw uint64) *omnibus.ZipCodeDatabase {
	handle := resource.Handle(api.DecodeU32(raw))
	if handle == 0 {
		errors.Violate(errors.NilPointer(errors.PhaseHandle, op, "store"))
	}
	db, ok := h.stores.Get(handle)
	if !ok {
		errors.Violate(errors.InvalidHandle(op, handle))
	}
	return db
}

func (h *Host) storePopulate(_ context.Context, _ api.Module, stack []uint64) {
	h.lookupStore("store_populate", stack[0]).Populate()
}

func (h *Host) storeQuery(ctx context.Context, mod api.Module, stack []uint64) {
	c := &call{ctx: ctx, mod: mod, op: "store_query"}
	db := h.lookupStore(c.op, stack[0])
	stack[0] = api.EncodeU32(db.PopulationOf(c.text(api.DecodeU32(stack[1]))))
}
