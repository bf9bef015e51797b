package insts

// Instruction is a decoded MIPS instruction word. It only holds the raw
// fields; what they mean is decided by the consumer (translator or
// disassembler) from Op and, for the SPECIAL group, Special.
type Instruction struct {
	Word uint32 // Raw instruction word (or halfword in compressed mode)
	Addr uint64 // Virtual address the word was fetched from

	// Compressed is true for MIPS16 halfwords. None of the fields below are
	// decoded for them.
	Compressed bool

	Op      uint8 // bits [31:26]
	RS      uint8 // bits [25:21]
	RT      uint8 // bits [20:16]
	RD      uint8 // bits [15:11]
	SA      uint8 // bits [10:6]
	Special uint8 // bits [5:0], meaningful when Op == Hi6Special

	Imm    uint16 // bits [15:0]
	Target uint32 // bits [25:0]
}

// SImm returns the 16-bit immediate sign-extended.
func (i *Instruction) SImm() int64 {
	return int64(int16(i.Imm))
}

// UImm returns the 16-bit immediate zero-extended.
func (i *Instruction) UImm() uint64 {
	return uint64(i.Imm)
}

// BranchTarget returns the target of a PC-relative branch:
// addr + 4 + (simm << 2).
func (i *Instruction) BranchTarget() uint64 {
	return i.Addr + 4 + uint64(i.SImm()<<2)
}

// JumpTarget returns the target of j/jal: the top bits of addr+4 combined
// with the 26-bit field shifted left by 2.
func (i *Instruction) JumpTarget() uint64 {
	return ((i.Addr + 4) &^ (1<<28 - 1)) | uint64(i.Target)<<2
}

// HazardBarrier reports the .hb hint bit (bit 10) of jr/jalr.
func (i *Instruction) HazardBarrier() bool {
	return (i.Word>>10)&1 == 1
}

// Code returns the 20-bit code field of syscall/break (bits [25:6]).
func (i *Instruction) Code() uint32 {
	return (i.Word >> 6) & 0xfffff
}

// Decoder decodes MIPS machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new MIPS instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode splits a 32-bit instruction word, already in host byte order, into
// its fields. It never fails: every word has a primary opcode, and deciding
// whether that opcode is implemented is left to the caller.
func (d *Decoder) Decode(word uint32, addr uint64) *Instruction {
	return &Instruction{
		Word:    word,
		Addr:    addr,
		Op:      uint8(word >> 26),
		RS:      uint8((word >> 21) & 0x1f),
		RT:      uint8((word >> 16) & 0x1f),
		RD:      uint8((word >> 11) & 0x1f),
		SA:      uint8((word >> 6) & 0x1f),
		Special: uint8(word & 0x3f),
		Imm:     uint16(word),
		Target:  word & 0x03ffffff,
	}
}

// Decode16 handles a MIPS16 halfword. The compressed encoding is not
// implemented; the result only carries the raw halfword and address.
func (d *Decoder) Decode16(hw uint16, addr uint64) *Instruction {
	return &Instruction{
		Word:       uint32(hw),
		Addr:       addr,
		Compressed: true,
	}
}

// IsCompressedAddr reports whether addr selects MIPS16 mode (low bit set).
func IsCompressedAddr(addr uint64) bool {
	return addr&1 == 1
}

// Size returns the encoding size in bytes for an address: 2 in MIPS16 mode,
// 4 otherwise.
func Size(addr uint64) int {
	if IsCompressedAddr(addr) {
		return 2
	}
	return 4
}
