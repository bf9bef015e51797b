// Package loader provides ELF binary loading for MIPS executables.
package loader

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/mipsdyn/emu"
	"github.com/sarchlab/mipsdyn/symbols"
)

// ErrUnmappedSegment is returned by LoadInto when a segment lies outside the
// directly mapped address windows.
var ErrUnmappedSegment = errors.New("segment is not in a mapped address window")

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	// Addresses from 32-bit files are sign-extended.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// EntryPoint is the virtual address where execution should begin.
	EntryPoint uint64
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
	// BigEndian is true for ELFDATA2MSB files.
	BigEndian bool
	// Is64Bit is true for ELFCLASS64 files.
	Is64Bit bool
	// Symbols holds the function and object symbols from .symtab.
	Symbols []symbols.Symbol
}

// Load parses a MIPS ELF binary and returns a Program struct ready for
// loading into the emulator's memory.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Machine != elf.EM_MIPS {
		return nil, fmt.Errorf("not a MIPS ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		BigEndian: f.Data == elf.ELFDATA2MSB,
		Is64Bit:   f.Class == elf.ELFCLASS64,
	}
	prog.EntryPoint = prog.addr(f.Entry)

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		seg, err := prog.readSegment(phdr)
		if err != nil {
			return nil, err
		}
		prog.Segments = append(prog.Segments, seg)
	}

	syms, err := f.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("failed to read symbols: %w", err)
	}
	for _, s := range syms {
		if !isCodeOrDataSymbol(s) {
			continue
		}
		prog.Symbols = append(prog.Symbols, symbols.Symbol{
			Name: s.Name,
			Addr: prog.addr(s.Value),
			Size: s.Size,
		})
	}

	return prog, nil
}

func (p *Program) readSegment(phdr *elf.Prog) (Segment, error) {
	vaddr := p.addr(phdr.Vaddr)

	data := make([]byte, phdr.Filesz)
	if phdr.Filesz > 0 {
		n, err := phdr.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return Segment{}, fmt.Errorf("failed to read segment at 0x%x: %w", vaddr, err)
		}
		if uint64(n) != phdr.Filesz {
			return Segment{}, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
				vaddr, n, phdr.Filesz)
		}
	}

	var flags SegmentFlags
	if phdr.Flags&elf.PF_X != 0 {
		flags |= SegmentFlagExecute
	}
	if phdr.Flags&elf.PF_W != 0 {
		flags |= SegmentFlagWrite
	}
	if phdr.Flags&elf.PF_R != 0 {
		flags |= SegmentFlagRead
	}

	return Segment{
		VirtAddr: vaddr,
		Data:     data,
		MemSize:  phdr.Memsz,
		Flags:    flags,
	}, nil
}

// addr sign-extends addresses from 32-bit files so that kseg0 code lands at
// 0xffffffff8xxxxxxx.
func (p *Program) addr(a uint64) uint64 {
	if p.Is64Bit {
		return a
	}
	return uint64(int64(int32(uint32(a))))
}

func isCodeOrDataSymbol(s elf.Symbol) bool {
	if s.Name == "" || s.Section == elf.SHN_UNDEF {
		return false
	}

	switch elf.ST_TYPE(s.Info) {
	case elf.STT_FUNC, elf.STT_OBJECT, elf.STT_NOTYPE:
		return true
	default:
		return false
	}
}

// LoadInto copies every segment into physical memory, zero-filling the part
// of each segment beyond its file data. Virtual addresses are mapped with
// emu.TranslateAddress using the given bit width.
func (p *Program) LoadInto(mem *emu.Memory, is32Bit bool) error {
	if mem.BigEndian() != p.BigEndian {
		return fmt.Errorf("program byte order does not match memory")
	}

	for _, seg := range p.Segments {
		if seg.MemSize == 0 && len(seg.Data) == 0 {
			continue
		}

		size := max(seg.MemSize, uint64(len(seg.Data)))
		start, _, ok := emu.TranslateAddress(seg.VirtAddr, is32Bit)
		if !ok {
			return fmt.Errorf("%w: 0x%x", ErrUnmappedSegment, seg.VirtAddr)
		}
		last, _, ok := emu.TranslateAddress(seg.VirtAddr+size-1, is32Bit)
		if !ok || last-start != size-1 {
			return fmt.Errorf("%w: 0x%x+0x%x", ErrUnmappedSegment, seg.VirtAddr, size)
		}

		mem.LoadBytes(start, seg.Data)
		if fill := size - uint64(len(seg.Data)); fill > 0 {
			mem.WriteBytes(start+uint64(len(seg.Data)), make([]byte, fill))
		}
	}

	return nil
}

// AddSymbols registers the program's symbols.
func (p *Program) AddSymbols(r *symbols.Registry) {
	for _, s := range p.Symbols {
		r.Add(s.Name, s.Addr, s.Size)
	}
}
