package emu

import (
	"errors"
	"fmt"
)

// ErrUnimplementedInstruction is returned when an invalid cell is executed.
var ErrUnimplementedInstruction = errors.New("unimplemented instruction")

// OperationID names the primitive an instruction cell executes. The set is
// closed; OpInvalid is the zero value so a zeroed Cell is never executable.
type OperationID uint8

// Operations.
const (
	OpInvalid OperationID = iota
	OpNop

	// Immediate forms. Args: dest, source, immediate.
	OpAddImmTrunc32 // 64-bit add, result truncated to 32 bits and sign-extended
	OpAddImm64
	OpAndImm
	OpOrImm
	OpXorImm
	OpSetImm // Args: dest, immediate

	// Three-register forms. Args: dest, source, source.
	OpAddTrunc32
	OpSubTrunc32
	OpAdd64
	OpSub64
	OpAnd
	OpOr
	OpXor
	OpNor
	OpSetLessThan
	OpSetLessThanUnsigned
	OpMoveIfZero    // Args: dest, source, condition
	OpMoveIfNotZero // Args: dest, source, condition

	// Shifts by a constant. Args: dest, source, amount.
	OpShiftLeft32
	OpShiftRightLogical32
	OpShiftRightArith32
	OpRotateRight32
	OpShiftLeft64
	OpShiftRightLogical64
	OpShiftRightArith64
	OpRotateRight64

	// Shifts by a register. Args: dest, source, amount register.
	OpShiftLeftVar32
	OpShiftRightLogicalVar32
	OpShiftRightArithVar32
	OpRotateRightVar32
	OpShiftLeftVar64
	OpShiftRightLogicalVar64
	OpShiftRightArithVar64
	OpRotateRightVar64

	// hi/lo transfers. Args: the GPR.
	OpMoveFromHi
	OpMoveFromLo
	OpMoveToHi
	OpMoveToLo

	// Multiply/divide into hi/lo. Args: source, source.
	OpMult32
	OpMultU32
	OpDiv32
	OpDivU32
	OpMult64
	OpMultU64
	OpDiv64
	OpDivU64

	// R5900 three-operand multiply: hi/lo as OpMult32/OpMultU32, lo also
	// copied to dest. Args: dest, source, source.
	OpMult32ToGPR
	OpMultU32ToGPR

	numOperations
)

var operationNames = [numOperations]string{
	OpInvalid:                "invalid",
	OpNop:                    "nop",
	OpAddImmTrunc32:          "add-imm-trunc32",
	OpAddImm64:               "add-imm64",
	OpAndImm:                 "and-imm",
	OpOrImm:                  "or-imm",
	OpXorImm:                 "xor-imm",
	OpSetImm:                 "set-imm",
	OpAddTrunc32:             "add-trunc32",
	OpSubTrunc32:             "sub-trunc32",
	OpAdd64:                  "add64",
	OpSub64:                  "sub64",
	OpAnd:                    "and",
	OpOr:                     "or",
	OpXor:                    "xor",
	OpNor:                    "nor",
	OpSetLessThan:            "set-less-than",
	OpSetLessThanUnsigned:    "set-less-than-unsigned",
	OpMoveIfZero:             "move-if-zero",
	OpMoveIfNotZero:          "move-if-not-zero",
	OpShiftLeft32:            "shl32",
	OpShiftRightLogical32:    "shr32",
	OpShiftRightArith32:      "sar32",
	OpRotateRight32:          "ror32",
	OpShiftLeft64:            "shl64",
	OpShiftRightLogical64:    "shr64",
	OpShiftRightArith64:      "sar64",
	OpRotateRight64:          "ror64",
	OpShiftLeftVar32:         "shl32-var",
	OpShiftRightLogicalVar32: "shr32-var",
	OpShiftRightArithVar32:   "sar32-var",
	OpRotateRightVar32:       "ror32-var",
	OpShiftLeftVar64:         "shl64-var",
	OpShiftRightLogicalVar64: "shr64-var",
	OpShiftRightArithVar64:   "sar64-var",
	OpRotateRightVar64:       "ror64-var",
	OpMoveFromHi:             "move-from-hi",
	OpMoveFromLo:             "move-from-lo",
	OpMoveToHi:               "move-to-hi",
	OpMoveToLo:               "move-to-lo",
	OpMult32:                 "mult32",
	OpMultU32:                "multu32",
	OpDiv32:                  "div32",
	OpDivU32:                 "divu32",
	OpMult64:                 "mult64",
	OpMultU64:                "multu64",
	OpDiv64:                  "div64",
	OpDivU64:                 "divu64",
	OpMult32ToGPR:            "mult32-gpr",
	OpMultU32ToGPR:           "multu32-gpr",
}

func (op OperationID) String() string {
	if op < numOperations {
		return operationNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// OperandKind says how an Operand is interpreted.
type OperandKind uint8

// Operand kinds.
const (
	OperandNone OperandKind = iota
	OperandReg
	OperandSigned
	OperandUnsigned
)

// Operand is one bound argument of a cell: a GPR index or an immediate.
type Operand struct {
	Kind  OperandKind
	Value uint64
}

// Reg binds a GPR.
func Reg(r uint8) Operand {
	return Operand{Kind: OperandReg, Value: uint64(r & 31)}
}

// Signed binds a signed immediate.
func Signed(v int64) Operand {
	return Operand{Kind: OperandSigned, Value: uint64(v)}
}

// Unsigned binds an unsigned immediate.
func Unsigned(v uint64) Operand {
	return Operand{Kind: OperandUnsigned, Value: v}
}

// Register returns the GPR index of a register operand.
func (o Operand) Register() uint8 {
	return uint8(o.Value & 31)
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandReg:
		return fmt.Sprintf("r%d", o.Value)
	case OperandSigned:
		return fmt.Sprintf("%d", int64(o.Value))
	case OperandUnsigned:
		return fmt.Sprintf("0x%x", o.Value)
	default:
		return "-"
	}
}

// Cell is a pre-decoded, directly executable form of one instruction: an
// operation plus up to three bound arguments.
type Cell struct {
	Op   OperationID
	Args [3]Operand

	// Reason explains why Op is OpInvalid.
	Reason string
}

// Valid reports whether the cell can be executed.
func (c *Cell) Valid() bool {
	return c.Op != OpInvalid
}

func (c Cell) String() string {
	if c.Op == OpInvalid {
		return "invalid: " + c.Reason
	}

	s := c.Op.String()
	for _, a := range c.Args {
		if a.Kind == OperandNone {
			break
		}
		s += " " + a.String()
	}
	return s
}

// Execute applies the cell to the register file. It does not advance the
// PC. Executing an invalid cell returns ErrUnimplementedInstruction and
// leaves the registers untouched.
func (c *Cell) Execute(r *RegFile) error {
	alu := ALU{regFile: r}
	a := c.Args

	switch c.Op {
	case OpInvalid:
		if c.Reason == "" {
			return ErrUnimplementedInstruction
		}
		return fmt.Errorf("%w: %s", ErrUnimplementedInstruction, c.Reason)
	case OpNop:
	case OpAddImmTrunc32:
		alu.AddImmTrunc32(a[0].Register(), a[1].Register(), int64(a[2].Value))
	case OpAddImm64:
		alu.AddImm64(a[0].Register(), a[1].Register(), int64(a[2].Value))
	case OpAndImm:
		alu.AndImm(a[0].Register(), a[1].Register(), a[2].Value)
	case OpOrImm:
		alu.OrImm(a[0].Register(), a[1].Register(), a[2].Value)
	case OpXorImm:
		alu.XorImm(a[0].Register(), a[1].Register(), a[2].Value)
	case OpSetImm:
		r.WriteReg(a[0].Register(), a[1].Value)
	case OpAddTrunc32:
		alu.AddTrunc32(a[0].Register(), a[1].Register(), a[2].Register())
	case OpSubTrunc32:
		alu.SubTrunc32(a[0].Register(), a[1].Register(), a[2].Register())
	case OpAdd64:
		alu.Add64(a[0].Register(), a[1].Register(), a[2].Register())
	case OpSub64:
		alu.Sub64(a[0].Register(), a[1].Register(), a[2].Register())
	case OpAnd:
		alu.And(a[0].Register(), a[1].Register(), a[2].Register())
	case OpOr:
		alu.Or(a[0].Register(), a[1].Register(), a[2].Register())
	case OpXor:
		alu.Xor(a[0].Register(), a[1].Register(), a[2].Register())
	case OpNor:
		alu.Nor(a[0].Register(), a[1].Register(), a[2].Register())
	case OpSetLessThan:
		alu.SetLessThan(a[0].Register(), a[1].Register(), a[2].Register())
	case OpSetLessThanUnsigned:
		alu.SetLessThanUnsigned(a[0].Register(), a[1].Register(), a[2].Register())
	case OpMoveIfZero:
		alu.MoveIf(a[0].Register(), a[1].Register(), a[2].Register(), true)
	case OpMoveIfNotZero:
		alu.MoveIf(a[0].Register(), a[1].Register(), a[2].Register(), false)
	default:
		return c.executeShiftOrMultiply(&alu)
	}

	return nil
}

func (c *Cell) executeShiftOrMultiply(alu *ALU) error {
	a := c.Args
	r := alu.regFile

	switch c.Op {
	case OpShiftLeft32, OpShiftRightLogical32, OpShiftRightArith32, OpRotateRight32:
		alu.Shift32(c.Op, a[0].Register(), a[1].Register(), uint(a[2].Value))
	case OpShiftLeft64, OpShiftRightLogical64, OpShiftRightArith64, OpRotateRight64:
		alu.Shift64(c.Op, a[0].Register(), a[1].Register(), uint(a[2].Value))
	case OpShiftLeftVar32:
		alu.Shift32(OpShiftLeft32, a[0].Register(), a[1].Register(), uint(r.ReadReg(a[2].Register())))
	case OpShiftRightLogicalVar32:
		alu.Shift32(OpShiftRightLogical32, a[0].Register(), a[1].Register(), uint(r.ReadReg(a[2].Register())))
	case OpShiftRightArithVar32:
		alu.Shift32(OpShiftRightArith32, a[0].Register(), a[1].Register(), uint(r.ReadReg(a[2].Register())))
	case OpRotateRightVar32:
		alu.Shift32(OpRotateRight32, a[0].Register(), a[1].Register(), uint(r.ReadReg(a[2].Register())))
	case OpShiftLeftVar64:
		alu.Shift64(OpShiftLeft64, a[0].Register(), a[1].Register(), uint(r.ReadReg(a[2].Register())))
	case OpShiftRightLogicalVar64:
		alu.Shift64(OpShiftRightLogical64, a[0].Register(), a[1].Register(), uint(r.ReadReg(a[2].Register())))
	case OpShiftRightArithVar64:
		alu.Shift64(OpShiftRightArith64, a[0].Register(), a[1].Register(), uint(r.ReadReg(a[2].Register())))
	case OpRotateRightVar64:
		alu.Shift64(OpRotateRight64, a[0].Register(), a[1].Register(), uint(r.ReadReg(a[2].Register())))
	case OpMoveFromHi:
		r.WriteReg(a[0].Register(), r.Hi)
	case OpMoveFromLo:
		r.WriteReg(a[0].Register(), r.Lo)
	case OpMoveToHi:
		r.Hi = r.ReadReg(a[0].Register())
	case OpMoveToLo:
		r.Lo = r.ReadReg(a[0].Register())
	case OpMult32:
		alu.Mult32(a[0].Register(), a[1].Register())
	case OpMultU32:
		alu.MultU32(a[0].Register(), a[1].Register())
	case OpDiv32:
		alu.Div32(a[0].Register(), a[1].Register())
	case OpDivU32:
		alu.DivU32(a[0].Register(), a[1].Register())
	case OpMult64:
		alu.Mult64(a[0].Register(), a[1].Register())
	case OpMultU64:
		alu.MultU64(a[0].Register(), a[1].Register())
	case OpDiv64:
		alu.Div64(a[0].Register(), a[1].Register())
	case OpDivU64:
		alu.DivU64(a[0].Register(), a[1].Register())
	case OpMult32ToGPR:
		alu.Mult32(a[1].Register(), a[2].Register())
		r.WriteReg(a[0].Register(), r.Lo)
	case OpMultU32ToGPR:
		alu.MultU32(a[1].Register(), a[2].Register())
		r.WriteReg(a[0].Register(), r.Lo)
	default:
		return fmt.Errorf("%w: unknown operation %s", ErrUnimplementedInstruction, c.Op)
	}

	return nil
}
