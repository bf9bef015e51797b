// Package disasm renders MIPS machine code as text.
//
// Each instruction becomes a list of tokens: the raw encoding in hex, the
// mnemonic and, when there are any, the operands as one comma-separated
// string. Branch and jump targets resolved to a symbol get a trailing
// "; <name>" token.
//
//	d := disasm.New(model.Default(), true, nil)
//	n, tokens, err := d.Disassemble(0x12345678, []byte{0x27, 0xbd, 0xff, 0xd8})
//	// n == 4, tokens == ["27bdffd8", "addiu", "sp,sp,-40"]
package disasm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sarchlab/mipsdyn/insts"
	"github.com/sarchlab/mipsdyn/model"
	"github.com/sarchlab/mipsdyn/symbols"
)

// ErrShortBuffer is returned when fewer bytes are available than the
// instruction at the address needs.
var ErrShortBuffer = errors.New("disasm: buffer too short")

// Disassembler renders instructions for one CPU model and byte order.
type Disassembler struct {
	model   model.Model
	order   binary.ByteOrder
	symbols symbols.Resolver
	decoder *insts.Decoder
}

// New creates a disassembler. syms may be nil.
func New(m model.Model, bigEndian bool, syms symbols.Resolver) *Disassembler {
	d := &Disassembler{
		model:   m,
		order:   binary.LittleEndian,
		symbols: syms,
		decoder: insts.NewDecoder(),
	}
	if bigEndian {
		d.order = binary.BigEndian
	}
	return d
}

// Disassemble renders the instruction at vaddr from buf and returns the
// number of bytes it occupies along with its tokens. An odd vaddr selects
// MIPS16 mode.
func (d *Disassembler) Disassemble(vaddr uint64, buf []byte) (int, []string, error) {
	size := insts.Size(vaddr)
	if len(buf) < size {
		return 0, nil, fmt.Errorf("%w: need %d bytes at 0x%x, have %d",
			ErrShortBuffer, size, vaddr, len(buf))
	}

	if size == 2 {
		hw := d.order.Uint16(buf)
		return size, []string{
			fmt.Sprintf("%04x", hw),
			"unimplemented MIPS16 instruction",
		}, nil
	}

	word := d.order.Uint32(buf)
	inst := d.decoder.Decode(word, vaddr)

	tokens := []string{fmt.Sprintf("%08x", word)}
	tokens = append(tokens, d.render(inst)...)

	return size, tokens, nil
}

func (d *Disassembler) render(inst *insts.Instruction) []string {
	switch inst.Op {
	case insts.Hi6Special:
		return d.renderSpecial(inst)
	case insts.Hi6Regimm:
		return d.renderRegimm(inst)
	case insts.Hi6BEQ, insts.Hi6BEQL, insts.Hi6BNE, insts.Hi6BNEL:
		return d.renderBranch2(inst)
	case insts.Hi6BLEZ, insts.Hi6BLEZL, insts.Hi6BGTZ, insts.Hi6BGTZL:
		return d.renderBranch1(inst, insts.Hi6Name(inst.Op))
	case insts.Hi6ADDI, insts.Hi6ADDIU, insts.Hi6DADDI, insts.Hi6DADDIU,
		insts.Hi6SLTI, insts.Hi6SLTIU:
		return []string{
			insts.Hi6Name(inst.Op),
			fmt.Sprintf("%s,%s,%d", reg(inst.RT), reg(inst.RS), inst.SImm()),
		}
	case insts.Hi6ANDI, insts.Hi6ORI, insts.Hi6XORI:
		return []string{
			insts.Hi6Name(inst.Op),
			fmt.Sprintf("%s,%s,%s", reg(inst.RT), reg(inst.RS), hexImm(inst.UImm())),
		}
	case insts.Hi6LUI:
		return []string{
			insts.Hi6Name(inst.Op),
			fmt.Sprintf("%s,%s", reg(inst.RT), hexImm(inst.UImm())),
		}
	case insts.Hi6J, insts.Hi6JAL:
		return d.withSymbol([]string{
			insts.Hi6Name(inst.Op),
			hexImm(inst.JumpTarget()),
		}, inst.JumpTarget())
	case insts.Hi6LQMDMX, insts.Hi6SQSpecial3:
		name, ok := insts.Resolve(inst.Op, 0, d.model.Variant)
		if !ok {
			return []string{name + " (UNIMPLEMENTED)"}
		}
		return memoryOperands(name, reg(inst.RT), inst)
	case insts.Hi6LWC3:
		if d.model.ISALevel >= 4 {
			return []string{
				"pref",
				fmt.Sprintf("%d,%d(%s)", inst.RT, inst.SImm(), reg(inst.RS)),
			}
		}
		return memoryOperands(insts.Hi6Name(inst.Op), coprocReg(inst.RT), inst)
	case insts.Hi6LWC1, insts.Hi6LWC2, insts.Hi6LDC1, insts.Hi6LDC2,
		insts.Hi6SWC1, insts.Hi6SWC2, insts.Hi6SWC3, insts.Hi6SDC1, insts.Hi6SDC2:
		return memoryOperands(insts.Hi6Name(inst.Op), coprocReg(inst.RT), inst)
	case insts.Hi6LB, insts.Hi6LH, insts.Hi6LWL, insts.Hi6LW, insts.Hi6LBU,
		insts.Hi6LHU, insts.Hi6LWR, insts.Hi6LWU, insts.Hi6SB, insts.Hi6SH,
		insts.Hi6SWL, insts.Hi6SW, insts.Hi6SDL, insts.Hi6SDR, insts.Hi6SWR,
		insts.Hi6LL, insts.Hi6LLD, insts.Hi6LD, insts.Hi6SC, insts.Hi6SCD,
		insts.Hi6SD, insts.Hi6LDL, insts.Hi6LDR:
		return memoryOperands(insts.Hi6Name(inst.Op), reg(inst.RT), inst)
	default:
		return unimplemented(insts.Hi6Name(inst.Op))
	}
}

func (d *Disassembler) renderSpecial(inst *insts.Instruction) []string {
	fn := inst.Special
	name := insts.SpecialName(fn)

	switch fn {
	case insts.SpecialSLL, insts.SpecialSRL, insts.SpecialSRA,
		insts.SpecialDSLL, insts.SpecialDSRL, insts.SpecialDSRA,
		insts.SpecialDSLL32, insts.SpecialDSRL32, insts.SpecialDSRA32:
		if fn == insts.SpecialSLL && inst.RD == insts.RegZero {
			return []string{sllIdiom(inst)}
		}
		mnemonic, ok := shiftName(fn, inst.RS)
		if !ok {
			return []string{mnemonic}
		}
		return []string{mnemonic, fmt.Sprintf("%s,%s,%d", reg(inst.RD), reg(inst.RT), inst.SA)}

	case insts.SpecialSLLV, insts.SpecialSRLV, insts.SpecialSRAV,
		insts.SpecialDSLLV, insts.SpecialDSRLV, insts.SpecialDSRAV:
		mnemonic, ok := shiftName(fn, inst.SA)
		if !ok {
			return []string{mnemonic}
		}
		return []string{mnemonic, fmt.Sprintf("%s,%s,%s", reg(inst.RD), reg(inst.RT), reg(inst.RS))}

	case insts.SpecialJR, insts.SpecialJALR:
		if inst.HazardBarrier() {
			name += ".hb"
		}
		if fn == insts.SpecialJALR {
			return []string{name, fmt.Sprintf("%s,%s", reg(inst.RD), reg(inst.RS))}
		}
		return []string{name, reg(inst.RS)}

	case insts.SpecialMFHI, insts.SpecialMFLO:
		return []string{name, reg(inst.RD)}

	case insts.SpecialMTHI, insts.SpecialMTLO:
		return []string{name, reg(inst.RS)}

	case insts.SpecialADD, insts.SpecialADDU, insts.SpecialSUB, insts.SpecialSUBU,
		insts.SpecialAND, insts.SpecialOR, insts.SpecialXOR, insts.SpecialNOR,
		insts.SpecialSLT, insts.SpecialSLTU, insts.SpecialDADD, insts.SpecialDADDU,
		insts.SpecialDSUB, insts.SpecialDSUBU, insts.SpecialMOVZ, insts.SpecialMOVN:
		return []string{name, fmt.Sprintf("%s,%s,%s", reg(inst.RD), reg(inst.RS), reg(inst.RT))}

	case insts.SpecialMULT, insts.SpecialMULTU, insts.SpecialDMULT, insts.SpecialDMULTU,
		insts.SpecialDIV, insts.SpecialDIVU, insts.SpecialDDIV, insts.SpecialDDIVU,
		insts.SpecialTGE, insts.SpecialTGEU, insts.SpecialTLT, insts.SpecialTLTU,
		insts.SpecialTEQ, insts.SpecialTNE:
		ops := ""
		if inst.RD != insts.RegZero {
			if d.model.Variant == model.VariantR5900 &&
				(fn == insts.SpecialMULT || fn == insts.SpecialMULTU) {
				ops = reg(inst.RD) + ","
			} else {
				ops = "WEIRD_R5900_RD,"
			}
		}
		ops += fmt.Sprintf("%s,%s", reg(inst.RS), reg(inst.RT))
		return []string{name, ops}

	case insts.SpecialSYNC:
		return []string{name, fmt.Sprintf("%d", inst.SA)}

	case insts.SpecialSYSCALL, insts.SpecialBREAK:
		if code := inst.Code(); code != 0 {
			return []string{name, fmt.Sprintf("%d", code)}
		}
		return []string{name}

	case insts.SpecialMFSA, insts.SpecialMTSA:
		resolved, ok := insts.Resolve(inst.Op, fn, d.model.Variant)
		if !ok {
			return []string{fmt.Sprintf("unimplemented special 0x%02x", fn)}
		}
		if fn == insts.SpecialMFSA {
			return []string{resolved, reg(inst.RD)}
		}
		return []string{resolved, reg(inst.RS)}

	default:
		return unimplemented(name)
	}
}

// sllIdiom names the sll encodings with a zero destination.
func sllIdiom(inst *insts.Instruction) string {
	switch inst.SA {
	case 0:
		return "nop"
	case 1:
		return "ssnop"
	case 3:
		return "ehb"
	default:
		return fmt.Sprintf("nop (weird, sa=%d)", inst.SA)
	}
}

// shiftName picks the mnemonic from a shift's sub-field: 0 is the plain
// shift, 1 the rotate. ok is false when the result is a placeholder.
func shiftName(fn, sub uint8) (string, bool) {
	switch sub {
	case 0:
		return insts.SpecialName(fn), true
	case 1:
		if rot := insts.SpecialRotName(fn); rot != "" {
			return rot, true
		}
	}
	return fmt.Sprintf("unimplemented special, sub=%d", sub), false
}

func (d *Disassembler) renderRegimm(inst *insts.Instruction) []string {
	name, ok := insts.ResolveRegimm(inst.RT, d.model.Variant)

	switch inst.RT {
	case insts.RegimmBLTZ, insts.RegimmBGEZ, insts.RegimmBLTZL, insts.RegimmBGEZL,
		insts.RegimmBLTZAL, insts.RegimmBGEZAL, insts.RegimmBLTZALL, insts.RegimmBGEZALL:
		return d.renderBranch1(inst, name)
	case insts.RegimmSYNCI:
		return []string{name, fmt.Sprintf("%d(%s)", inst.SImm(), reg(inst.RS))}
	case insts.RegimmMTSAB, insts.RegimmMTSAH:
		if ok {
			return []string{name, fmt.Sprintf("%s,%d", reg(inst.RS), inst.SImm())}
		}
	}

	return unimplemented(name)
}

// renderBranch2 renders beq/bne and their likely forms: rt,rs,target.
func (d *Disassembler) renderBranch2(inst *insts.Instruction) []string {
	target := inst.BranchTarget()

	if inst.Op == insts.Hi6BEQ && inst.RS == insts.RegZero && inst.RT == insts.RegZero {
		return d.withSymbol([]string{"b", hexImm(target)}, target)
	}

	return d.withSymbol([]string{
		insts.Hi6Name(inst.Op),
		fmt.Sprintf("%s,%s,%s", reg(inst.RT), reg(inst.RS), hexImm(target)),
	}, target)
}

// renderBranch1 renders single-register branches: rs,target.
func (d *Disassembler) renderBranch1(inst *insts.Instruction, name string) []string {
	target := inst.BranchTarget()
	return d.withSymbol([]string{
		name,
		fmt.Sprintf("%s,%s", reg(inst.RS), hexImm(target)),
	}, target)
}

func (d *Disassembler) withSymbol(tokens []string, addr uint64) []string {
	if d.symbols == nil {
		return tokens
	}
	if name, ok := d.symbols.LookupAddress(addr, true); ok {
		tokens = append(tokens, "; <"+name+">")
	}
	return tokens
}

func memoryOperands(name, rt string, inst *insts.Instruction) []string {
	return []string{name, fmt.Sprintf("%s,%d(%s)", rt, inst.SImm(), reg(inst.RS))}
}

func unimplemented(name string) []string {
	return []string{"unimplemented instruction: " + name}
}

func reg(r uint8) string {
	return insts.RegName(r)
}

func coprocReg(r uint8) string {
	return fmt.Sprintf("r%d", r)
}

// hexImm prints v with a 0x prefix, except zero which prints as "0".
func hexImm(v uint64) string {
	if v == 0 {
		return "0"
	}
	return fmt.Sprintf("0x%x", v)
}
