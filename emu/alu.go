package emu

import "math/bits"

// ALU implements MIPS integer arithmetic and logic operations. 32-bit
// results are sign-extended to 64 bits, as on a 64-bit CPU running 32-bit
// code.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// AddImmTrunc32 performs addiu: rt = sext32(rs + imm)
func (a *ALU) AddImmTrunc32(rt, rs uint8, imm int64) {
	result := a.regFile.ReadReg(rs) + uint64(imm)
	a.regFile.WriteSigned32(rt, uint32(result))
}

// AddImm64 performs daddiu: rt = rs + imm
func (a *ALU) AddImm64(rt, rs uint8, imm int64) {
	a.regFile.WriteReg(rt, a.regFile.ReadReg(rs)+uint64(imm))
}

// AndImm performs andi: rt = rs & imm
func (a *ALU) AndImm(rt, rs uint8, imm uint64) {
	a.regFile.WriteReg(rt, a.regFile.ReadReg(rs)&imm)
}

// OrImm performs ori: rt = rs | imm
func (a *ALU) OrImm(rt, rs uint8, imm uint64) {
	a.regFile.WriteReg(rt, a.regFile.ReadReg(rs)|imm)
}

// XorImm performs xori: rt = rs ^ imm
func (a *ALU) XorImm(rt, rs uint8, imm uint64) {
	a.regFile.WriteReg(rt, a.regFile.ReadReg(rs)^imm)
}

// AddTrunc32 performs addu: rd = sext32(rs + rt)
func (a *ALU) AddTrunc32(rd, rs, rt uint8) {
	result := uint32(a.regFile.ReadReg(rs)) + uint32(a.regFile.ReadReg(rt))
	a.regFile.WriteSigned32(rd, result)
}

// SubTrunc32 performs subu: rd = sext32(rs - rt)
func (a *ALU) SubTrunc32(rd, rs, rt uint8) {
	result := uint32(a.regFile.ReadReg(rs)) - uint32(a.regFile.ReadReg(rt))
	a.regFile.WriteSigned32(rd, result)
}

// Add64 performs daddu: rd = rs + rt
func (a *ALU) Add64(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)+a.regFile.ReadReg(rt))
}

// Sub64 performs dsubu: rd = rs - rt
func (a *ALU) Sub64(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)-a.regFile.ReadReg(rt))
}

// And performs and: rd = rs & rt
func (a *ALU) And(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)&a.regFile.ReadReg(rt))
}

// Or performs or: rd = rs | rt
func (a *ALU) Or(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)|a.regFile.ReadReg(rt))
}

// Xor performs xor: rd = rs ^ rt
func (a *ALU) Xor(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)^a.regFile.ReadReg(rt))
}

// Nor performs nor: rd = ^(rs | rt)
func (a *ALU) Nor(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, ^(a.regFile.ReadReg(rs) | a.regFile.ReadReg(rt)))
}

// SetLessThan performs slt: rd = (rs < rt) signed
func (a *ALU) SetLessThan(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, boolToUint64(a.regFile.ReadSigned(rs) < a.regFile.ReadSigned(rt)))
}

// SetLessThanUnsigned performs sltu: rd = (rs < rt) unsigned
func (a *ALU) SetLessThanUnsigned(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, boolToUint64(a.regFile.ReadReg(rs) < a.regFile.ReadReg(rt)))
}

// MoveIf performs movz (ifZero) or movn: rd = rs when rt matches.
func (a *ALU) MoveIf(rd, rs, rt uint8, ifZero bool) {
	if (a.regFile.ReadReg(rt) == 0) == ifZero {
		a.regFile.WriteReg(rd, a.regFile.ReadReg(rs))
	}
}

// Shift32 performs a 32-bit shift or rotate of rt by the low 5 bits of
// amount. The result is sign-extended.
func (a *ALU) Shift32(op OperationID, rd, rt uint8, amount uint) {
	v := uint32(a.regFile.ReadReg(rt))
	amount &= 31

	var result uint32
	switch op {
	case OpShiftLeft32:
		result = v << amount
	case OpShiftRightLogical32:
		result = v >> amount
	case OpShiftRightArith32:
		result = uint32(int32(v) >> amount)
	case OpRotateRight32:
		result = bits.RotateLeft32(v, -int(amount))
	}

	a.regFile.WriteSigned32(rd, result)
}

// Shift64 performs a 64-bit shift or rotate of rt by the low 6 bits of
// amount.
func (a *ALU) Shift64(op OperationID, rd, rt uint8, amount uint) {
	v := a.regFile.ReadReg(rt)
	amount &= 63

	var result uint64
	switch op {
	case OpShiftLeft64:
		result = v << amount
	case OpShiftRightLogical64:
		result = v >> amount
	case OpShiftRightArith64:
		result = uint64(int64(v) >> amount)
	case OpRotateRight64:
		result = bits.RotateLeft64(v, -int(amount))
	}

	a.regFile.WriteReg(rd, result)
}

// Mult32 performs mult: hi:lo = rs * rt (signed 32x32)
func (a *ALU) Mult32(rs, rt uint8) {
	p := int64(int32(a.regFile.ReadReg(rs))) * int64(int32(a.regFile.ReadReg(rt)))
	a.setHiLo32(uint32(p>>32), uint32(p))
}

// MultU32 performs multu: hi:lo = rs * rt (unsigned 32x32)
func (a *ALU) MultU32(rs, rt uint8) {
	p := uint64(uint32(a.regFile.ReadReg(rs))) * uint64(uint32(a.regFile.ReadReg(rt)))
	a.setHiLo32(uint32(p>>32), uint32(p))
}

// Div32 performs div: lo = rs / rt, hi = rs % rt (signed 32-bit). A zero
// divisor leaves hi and lo unchanged.
func (a *ALU) Div32(rs, rt uint8) {
	n := int32(a.regFile.ReadReg(rs))
	d := int32(a.regFile.ReadReg(rt))
	if d == 0 {
		return
	}
	if d == -1 {
		a.setHiLo32(0, uint32(-n))
		return
	}
	a.setHiLo32(uint32(n%d), uint32(n/d))
}

// DivU32 performs divu: lo = rs / rt, hi = rs % rt (unsigned 32-bit).
func (a *ALU) DivU32(rs, rt uint8) {
	n := uint32(a.regFile.ReadReg(rs))
	d := uint32(a.regFile.ReadReg(rt))
	if d == 0 {
		return
	}
	a.setHiLo32(n%d, n/d)
}

// Mult64 performs dmult: hi:lo = rs * rt (signed 64x64)
func (a *ALU) Mult64(rs, rt uint8) {
	x := a.regFile.ReadReg(rs)
	y := a.regFile.ReadReg(rt)
	hi, lo := bits.Mul64(x, y)

	// Signed correction of the unsigned high word.
	if int64(x) < 0 {
		hi -= y
	}
	if int64(y) < 0 {
		hi -= x
	}

	a.regFile.Hi = hi
	a.regFile.Lo = lo
}

// MultU64 performs dmultu: hi:lo = rs * rt (unsigned 64x64)
func (a *ALU) MultU64(rs, rt uint8) {
	a.regFile.Hi, a.regFile.Lo = bits.Mul64(a.regFile.ReadReg(rs), a.regFile.ReadReg(rt))
}

// Div64 performs ddiv: lo = rs / rt, hi = rs % rt (signed 64-bit).
func (a *ALU) Div64(rs, rt uint8) {
	n := a.regFile.ReadSigned(rs)
	d := a.regFile.ReadSigned(rt)
	if d == 0 {
		return
	}
	if d == -1 {
		a.regFile.Lo = uint64(-n)
		a.regFile.Hi = 0
		return
	}
	a.regFile.Lo = uint64(n / d)
	a.regFile.Hi = uint64(n % d)
}

// DivU64 performs ddivu: lo = rs / rt, hi = rs % rt (unsigned 64-bit).
func (a *ALU) DivU64(rs, rt uint8) {
	n := a.regFile.ReadReg(rs)
	d := a.regFile.ReadReg(rt)
	if d == 0 {
		return
	}
	a.regFile.Lo = n / d
	a.regFile.Hi = n % d
}

func (a *ALU) setHiLo32(hi, lo uint32) {
	a.regFile.Hi = uint64(int64(int32(hi)))
	a.regFile.Lo = uint64(int64(int32(lo)))
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
