package omnibus

// Memory represents a caller's linear memory as seen from this side of the boundary
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	WriteU8(offset uint32, value uint8) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator allocates memory owned by the other side of the boundary
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32) error
}
