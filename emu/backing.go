package emu

// MemoryBacking adapts Memory to the icache backing store interface.
type MemoryBacking struct {
	memory *Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory.
func (m *MemoryBacking) Read(addr uint64, size int) []byte {
	return m.memory.ReadBytes(addr, size)
}
