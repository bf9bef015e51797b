// Package emu provides the MIPS CPU core: register file, address
// translation, dynamic translation into instruction cells and the execution
// driver that ties them together.
package emu

import (
	"fmt"
	"strings"

	"github.com/sarchlab/mipsdyn/insts"
	"github.com/sarchlab/mipsdyn/symbols"
)

const (
	// InitialPC is the reset vector all MIPS CPUs start at.
	InitialPC uint64 = 0xffffffffbfc00000

	// InitialSP is the stack pointer set on reset.
	InitialSP uint64 = 0xffffffffa0007f00

	// PageSize is the native page size.
	PageSize uint64 = 4096
)

// RegFile represents the MIPS register file.
type RegFile struct {
	// GPR holds the general-purpose registers. GPR[0] must read as zero at
	// every instruction boundary.
	GPR [insts.NumGPRs]uint64

	// Hi and Lo hold multiply/divide results.
	Hi uint64
	Lo uint64

	// PC is the program counter. Bit 0 selects MIPS16 mode and is not part
	// of the address.
	PC uint64

	// PageSize is the page size in bytes.
	PageSize uint64

	// BigEndian is fixed per CPU and survives Reset.
	BigEndian bool
}

// NewRegFile creates a register file in its reset state.
func NewRegFile(bigEndian bool) *RegFile {
	r := &RegFile{BigEndian: bigEndian}
	r.Reset()
	return r
}

// Reset zeroes all registers in place and loads the reset vector and the
// initial stack pointer.
func (r *RegFile) Reset() {
	r.GPR = [insts.NumGPRs]uint64{}
	r.Hi = 0
	r.Lo = 0
	r.PC = InitialPC
	r.PageSize = PageSize
	r.GPR[insts.RegSP] = InitialSP
}

// ReadReg reads a GPR. Only the low 5 bits of reg are used.
func (r *RegFile) ReadReg(reg uint8) uint64 {
	return r.GPR[reg&31]
}

// ReadSigned reads a GPR as a signed value.
func (r *RegFile) ReadSigned(reg uint8) int64 {
	return int64(r.GPR[reg&31])
}

// WriteReg writes a GPR. Writes to the zero register are discarded.
func (r *RegFile) WriteReg(reg uint8, value uint64) {
	reg &= 31
	if reg == insts.RegZero {
		return
	}
	r.GPR[reg] = value
}

// WriteSigned32 writes the sign extension of a 32-bit result.
func (r *RegFile) WriteSigned32(reg uint8, value uint32) {
	r.WriteReg(reg, uint64(int64(int32(value))))
}

// Compressed reports whether the PC selects MIPS16 mode.
func (r *RegFile) Compressed() bool {
	return insts.IsCompressedAddr(r.PC)
}

// Format renders the registers the way the debugger's register dump shows
// them: 8 hex digits per register in 32-bit mode, 16 otherwise, with the
// symbol at pc (if any) after the pc value.
func (r *RegFile) Format(is32Bit bool, syms symbols.Resolver) string {
	var sb strings.Builder

	hex := func(v uint64) string {
		if is32Bit {
			return fmt.Sprintf("%08x", uint32(v))
		}
		return fmt.Sprintf("%016x", v)
	}

	sb.WriteString("pc=" + hex(r.PC))
	if syms != nil {
		pc := r.PC
		if is32Bit {
			pc = uint64(int64(int32(pc)))
		}
		if name, ok := syms.LookupAddress(pc, true); ok {
			sb.WriteString(" <" + name + ">")
		}
	}
	sb.WriteString("\n")

	sb.WriteString("hi=" + hex(r.Hi) + " lo=" + hex(r.Lo) + "\n")

	for i := 0; i < insts.NumGPRs; i++ {
		sb.WriteString(insts.RegName(uint8(i)) + "=" + hex(r.GPR[i]))
		if i&3 == 3 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}

	return sb.String()
}
