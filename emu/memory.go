package emu

import "encoding/binary"

const memPageBits = 12

const memPageSize = 1 << memPageBits

// Memory is a sparse physical memory with a fixed byte order. Pages are
// allocated on first write; unwritten memory reads as zero.
type Memory struct {
	pages map[uint64]*[memPageSize]byte
	order binary.ByteOrder
}

// NewMemory creates an empty memory.
func NewMemory(bigEndian bool) *Memory {
	m := &Memory{pages: make(map[uint64]*[memPageSize]byte)}
	if bigEndian {
		m.order = binary.BigEndian
	} else {
		m.order = binary.LittleEndian
	}
	return m
}

// ByteOrder returns the memory's byte order.
func (m *Memory) ByteOrder() binary.ByteOrder {
	return m.order
}

// BigEndian reports whether multi-byte values are stored big-endian.
func (m *Memory) BigEndian() bool {
	return m.order == binary.BigEndian
}

func (m *Memory) page(addr uint64, create bool) *[memPageSize]byte {
	n := addr >> memPageBits
	p, ok := m.pages[n]
	if !ok && create {
		p = new([memPageSize]byte)
		m.pages[n] = p
	}
	return p
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint64) uint8 {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr&(memPageSize-1)]
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint64, value uint8) {
	m.page(addr, true)[addr&(memPageSize-1)] = value
}

// ReadBytes reads n bytes starting at addr. The range may span pages.
func (m *Memory) ReadBytes(addr uint64, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; {
		a := addr + uint64(i)
		off := a & (memPageSize - 1)
		chunk := min(n-i, int(memPageSize-off))
		if p := m.page(a, false); p != nil {
			copy(out[i:i+chunk], p[off:])
		}
		i += chunk
	}
	return out
}

// WriteBytes writes data starting at addr.
func (m *Memory) WriteBytes(addr uint64, data []byte) {
	for i := 0; i < len(data); {
		a := addr + uint64(i)
		off := a & (memPageSize - 1)
		chunk := min(len(data)-i, int(memPageSize-off))
		copy(m.page(a, true)[off:], data[i:i+chunk])
		i += chunk
	}
}

// LoadBytes copies a program image into memory.
func (m *Memory) LoadBytes(addr uint64, data []byte) {
	m.WriteBytes(addr, data)
}

// Read16 reads a halfword in the memory's byte order.
func (m *Memory) Read16(addr uint64) uint16 {
	return m.order.Uint16(m.ReadBytes(addr, 2))
}

// Write16 writes a halfword in the memory's byte order.
func (m *Memory) Write16(addr uint64, value uint16) {
	var b [2]byte
	m.order.PutUint16(b[:], value)
	m.WriteBytes(addr, b[:])
}

// Read32 reads a word in the memory's byte order.
func (m *Memory) Read32(addr uint64) uint32 {
	return m.order.Uint32(m.ReadBytes(addr, 4))
}

// Write32 writes a word in the memory's byte order.
func (m *Memory) Write32(addr uint64, value uint32) {
	var b [4]byte
	m.order.PutUint32(b[:], value)
	m.WriteBytes(addr, b[:])
}

// Read64 reads a doubleword in the memory's byte order.
func (m *Memory) Read64(addr uint64) uint64 {
	return m.order.Uint64(m.ReadBytes(addr, 8))
}

// Write64 writes a doubleword in the memory's byte order.
func (m *Memory) Write64(addr uint64, value uint64) {
	var b [8]byte
	m.order.PutUint64(b[:], value)
	m.WriteBytes(addr, b[:])
}
