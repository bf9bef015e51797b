package emu

import (
	"fmt"
	"strings"

	"github.com/sarchlab/mipsdyn/insts"
	"github.com/sarchlab/mipsdyn/model"
	"github.com/sarchlab/mipsdyn/ui"
)

// requirement is the ISA an operation needs.
type requirement struct {
	level    int  // minimum ISA level (1-4, 32 or 64)
	revision int  // minimum MIPS32/64 revision, 1 if none
	wide     bool // 64-bit only; never valid on a 32-bit CPU
}

var (
	needISA1     = requirement{level: 1, revision: 1}
	needISA3     = requirement{level: 3, revision: 1, wide: true}
	needISA4     = requirement{level: 4, revision: 1}
	needMIPS32R2 = requirement{level: 32, revision: 2}
	needMIPS64R2 = requirement{level: 64, revision: 2, wide: true}
)

// shape says which instruction fields become cell arguments.
type shape uint8

const (
	shapeRtRsSImm shape = iota // rt, rs, signed imm
	shapeRtRsUImm              // rt, rs, unsigned imm
	shapeRtUpper               // rt, imm << 16 sign-extended
	shapeRdRsRt                // rd, rs, rt
	shapeRdRtSa                // rd, rt, sa
	shapeRdRtSa32              // rd, rt, sa + 32
	shapeRdRtRs                // rd, rt, rs
	shapeRd                    // rd
	shapeRs                    // rs
	shapeRsRt                  // rs, rt
)

// dest returns the GPR a shape writes, if any.
func (s shape) dest(inst *insts.Instruction) (uint8, bool) {
	switch s {
	case shapeRtRsSImm, shapeRtRsUImm, shapeRtUpper:
		return inst.RT, true
	case shapeRs, shapeRsRt:
		return 0, false
	default:
		return inst.RD, true
	}
}

type opSpec struct {
	op    OperationID
	shape shape
	need  requirement
}

var primaryOps = map[uint8]opSpec{
	insts.Hi6ADDIU:  {OpAddImmTrunc32, shapeRtRsSImm, needISA1},
	insts.Hi6DADDIU: {OpAddImm64, shapeRtRsSImm, needISA3},
	insts.Hi6ANDI:   {OpAndImm, shapeRtRsUImm, needISA1},
	insts.Hi6ORI:    {OpOrImm, shapeRtRsUImm, needISA1},
	insts.Hi6XORI:   {OpXorImm, shapeRtRsUImm, needISA1},
	insts.Hi6LUI:    {OpSetImm, shapeRtUpper, needISA1},
}

// specialOps are SPECIAL functions in their plain (sub-field 0) form.
var specialOps = map[uint8]opSpec{
	insts.SpecialSLL:    {OpShiftLeft32, shapeRdRtSa, needISA1},
	insts.SpecialSRL:    {OpShiftRightLogical32, shapeRdRtSa, needISA1},
	insts.SpecialSRA:    {OpShiftRightArith32, shapeRdRtSa, needISA1},
	insts.SpecialSLLV:   {OpShiftLeftVar32, shapeRdRtRs, needISA1},
	insts.SpecialSRLV:   {OpShiftRightLogicalVar32, shapeRdRtRs, needISA1},
	insts.SpecialSRAV:   {OpShiftRightArithVar32, shapeRdRtRs, needISA1},
	insts.SpecialMOVZ:   {OpMoveIfZero, shapeRdRsRt, needISA4},
	insts.SpecialMOVN:   {OpMoveIfNotZero, shapeRdRsRt, needISA4},
	insts.SpecialMFHI:   {OpMoveFromHi, shapeRd, needISA1},
	insts.SpecialMTHI:   {OpMoveToHi, shapeRs, needISA1},
	insts.SpecialMFLO:   {OpMoveFromLo, shapeRd, needISA1},
	insts.SpecialMTLO:   {OpMoveToLo, shapeRs, needISA1},
	insts.SpecialDSLLV:  {OpShiftLeftVar64, shapeRdRtRs, needISA3},
	insts.SpecialDSRLV:  {OpShiftRightLogicalVar64, shapeRdRtRs, needISA3},
	insts.SpecialDSRAV:  {OpShiftRightArithVar64, shapeRdRtRs, needISA3},
	insts.SpecialMULT:   {OpMult32, shapeRsRt, needISA1},
	insts.SpecialMULTU:  {OpMultU32, shapeRsRt, needISA1},
	insts.SpecialDIV:    {OpDiv32, shapeRsRt, needISA1},
	insts.SpecialDIVU:   {OpDivU32, shapeRsRt, needISA1},
	insts.SpecialDMULT:  {OpMult64, shapeRsRt, needISA3},
	insts.SpecialDMULTU: {OpMultU64, shapeRsRt, needISA3},
	insts.SpecialDDIV:   {OpDiv64, shapeRsRt, needISA3},
	insts.SpecialDDIVU:  {OpDivU64, shapeRsRt, needISA3},
	insts.SpecialADDU:   {OpAddTrunc32, shapeRdRsRt, needISA1},
	insts.SpecialSUBU:   {OpSubTrunc32, shapeRdRsRt, needISA1},
	insts.SpecialAND:    {OpAnd, shapeRdRsRt, needISA1},
	insts.SpecialOR:     {OpOr, shapeRdRsRt, needISA1},
	insts.SpecialXOR:    {OpXor, shapeRdRsRt, needISA1},
	insts.SpecialNOR:    {OpNor, shapeRdRsRt, needISA1},
	insts.SpecialSLT:    {OpSetLessThan, shapeRdRsRt, needISA1},
	insts.SpecialSLTU:   {OpSetLessThanUnsigned, shapeRdRsRt, needISA1},
	insts.SpecialDADDU:  {OpAdd64, shapeRdRsRt, needISA3},
	insts.SpecialDSUBU:  {OpSub64, shapeRdRsRt, needISA3},
	insts.SpecialDSLL:   {OpShiftLeft64, shapeRdRtSa, needISA3},
	insts.SpecialDSRL:   {OpShiftRightLogical64, shapeRdRtSa, needISA3},
	insts.SpecialDSRA:   {OpShiftRightArith64, shapeRdRtSa, needISA3},
	insts.SpecialDSLL32: {OpShiftLeft64, shapeRdRtSa32, needISA3},
	insts.SpecialDSRL32: {OpShiftRightLogical64, shapeRdRtSa32, needISA3},
	insts.SpecialDSRA32: {OpShiftRightArith64, shapeRdRtSa32, needISA3},
}

// rotateOps are the shift functions with sub-field 1.
var rotateOps = map[uint8]opSpec{
	insts.SpecialSRL:    {OpRotateRight32, shapeRdRtSa, needMIPS32R2},
	insts.SpecialSRLV:   {OpRotateRightVar32, shapeRdRtRs, needMIPS32R2},
	insts.SpecialDSRL:   {OpRotateRight64, shapeRdRtSa, needMIPS64R2},
	insts.SpecialDSRL32: {OpRotateRight64, shapeRdRtSa32, needMIPS64R2},
	insts.SpecialDSRLV:  {OpRotateRightVar64, shapeRdRtRs, needMIPS64R2},
}

// Translator turns instruction words into cells for one CPU model. Every
// rejection is reported to the sink, attributed to the owning component.
type Translator struct {
	name    string
	model   model.Model
	sink    ui.Sink
	decoder *insts.Decoder
}

// NewTranslator creates a translator. sink may be nil.
func NewTranslator(name string, m model.Model, sink ui.Sink) *Translator {
	return &Translator{
		name:    name,
		model:   m,
		sink:    sink,
		decoder: insts.NewDecoder(),
	}
}

// Model returns the model translations are validated against.
func (t *Translator) Model() model.Model {
	return t.model
}

// Translate converts a 32-bit instruction word fetched from addr. It never
// fails: anything that cannot run on this model comes back as an OpInvalid
// cell whose Reason holds the diagnostics. An odd addr selects MIPS16 mode
// and is handed to Translate16 with the low halfword of word.
func (t *Translator) Translate(word uint32, addr uint64) Cell {
	if insts.IsCompressedAddr(addr) {
		return t.Translate16(uint16(word), addr)
	}

	inst := t.decoder.Decode(word, addr)

	spec, ok := t.lookup(inst)
	if !ok {
		name, _ := insts.Resolve(inst.Op, inst.Special, t.model.Variant)
		return t.reject(fmt.Sprintf(
			"unimplemented opcode 0x%x (%s) at 0x%x", inst.Op, name, addr))
	}

	cell := bind(spec, inst)

	// Zero-register destinations are turned into nops before validation so
	// an ISA violation still wins.
	if dst, ok := spec.shape.dest(inst); ok && dst == insts.RegZero {
		cell = Cell{Op: OpNop}
	}

	if reasons := t.check(spec.need, addr); len(reasons) > 0 {
		return Cell{Op: OpInvalid, Reason: strings.Join(reasons, "; ")}
	}

	return cell
}

// Translate16 handles a MIPS16 halfword. The compressed encoding is not
// translated, so the result is always invalid.
func (t *Translator) Translate16(hw uint16, addr uint64) Cell {
	inst := t.decoder.Decode16(hw, addr)
	return t.reject(fmt.Sprintf(
		"unimplemented MIPS16 instruction 0x%04x at 0x%x", inst.Word, addr))
}

func (t *Translator) lookup(inst *insts.Instruction) (opSpec, bool) {
	if inst.Op != insts.Hi6Special {
		spec, ok := primaryOps[inst.Op]
		return spec, ok
	}

	if t.model.Variant == model.VariantR5900 && inst.RD != insts.RegZero {
		switch inst.Special {
		case insts.SpecialMULT:
			return opSpec{OpMult32ToGPR, shapeRdRsRt, needISA1}, true
		case insts.SpecialMULTU:
			return opSpec{OpMultU32ToGPR, shapeRdRsRt, needISA1}, true
		}
	}

	spec, ok := specialOps[inst.Special]
	if !ok {
		return opSpec{}, false
	}

	// Shifts carry a sub-field selecting the rotate form: rs for shifts by
	// a constant, sa for shifts by a register.
	var sub uint8
	switch spec.shape {
	case shapeRdRtSa, shapeRdRtSa32:
		sub = inst.RS
	case shapeRdRtRs:
		sub = inst.SA
	default:
		return spec, true
	}

	switch sub {
	case 0:
		return spec, true
	case 1:
		rot, ok := rotateOps[inst.Special]
		return rot, ok
	default:
		return opSpec{}, false
	}
}

func bind(spec opSpec, inst *insts.Instruction) Cell {
	c := Cell{Op: spec.op}

	switch spec.shape {
	case shapeRtRsSImm:
		c.Args = [3]Operand{Reg(inst.RT), Reg(inst.RS), Signed(inst.SImm())}
	case shapeRtRsUImm:
		c.Args = [3]Operand{Reg(inst.RT), Reg(inst.RS), Unsigned(inst.UImm())}
	case shapeRtUpper:
		c.Args[0] = Reg(inst.RT)
		c.Args[1] = Signed(int64(int32(uint32(inst.Imm) << 16)))
	case shapeRdRsRt:
		c.Args = [3]Operand{Reg(inst.RD), Reg(inst.RS), Reg(inst.RT)}
	case shapeRdRtSa:
		c.Args = [3]Operand{Reg(inst.RD), Reg(inst.RT), Unsigned(uint64(inst.SA))}
	case shapeRdRtSa32:
		c.Args = [3]Operand{Reg(inst.RD), Reg(inst.RT), Unsigned(uint64(inst.SA) + 32)}
	case shapeRdRtRs:
		c.Args = [3]Operand{Reg(inst.RD), Reg(inst.RT), Reg(inst.RS)}
	case shapeRd:
		c.Args[0] = Reg(inst.RD)
	case shapeRs:
		c.Args[0] = Reg(inst.RS)
	case shapeRsRt:
		c.Args[0] = Reg(inst.RS)
		c.Args[1] = Reg(inst.RT)
	}

	return c
}

// check validates an operation's requirement against the model. The three
// checks are independent; each failure produces its own diagnostic.
func (t *Translator) check(need requirement, addr uint64) []string {
	var reasons []string

	if need.level > t.model.ISALevel {
		reasons = append(reasons, fmt.Sprintf(
			"instruction at 0x%x requires ISA level %d; this cpu supports only ISA level %d",
			addr, need.level, t.model.ISALevel))
	}

	if need.wide && t.model.Is32Bit() {
		reasons = append(reasons, fmt.Sprintf(
			"instruction at 0x%x is a 64-bit instruction, which cannot be executed on this CPU",
			addr))
	}

	if need.revision > 1 && t.model.ISARevision < need.revision {
		reasons = append(reasons, fmt.Sprintf(
			"instruction at 0x%x is a MIPS32/64 revision %d instruction; this cpu supports only revision %d",
			addr, need.revision, t.model.ISARevision))
	}

	for _, r := range reasons {
		t.report(r)
	}

	return reasons
}

func (t *Translator) reject(reason string) Cell {
	t.report(reason)
	return Cell{Op: OpInvalid, Reason: reason}
}

func (t *Translator) report(msg string) {
	if t.sink != nil {
		t.sink.ShowDebugMessage(t.name, msg)
	}
}
