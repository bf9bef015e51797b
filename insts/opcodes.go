package insts

import (
	"fmt"

	"github.com/sarchlab/mipsdyn/model"
)

// Primary opcode field values (bits 31-26).
const (
	Hi6Special    uint8 = 0x00
	Hi6Regimm     uint8 = 0x01
	Hi6J          uint8 = 0x02
	Hi6JAL        uint8 = 0x03
	Hi6BEQ        uint8 = 0x04
	Hi6BNE        uint8 = 0x05
	Hi6BLEZ       uint8 = 0x06
	Hi6BGTZ       uint8 = 0x07
	Hi6ADDI       uint8 = 0x08
	Hi6ADDIU      uint8 = 0x09
	Hi6SLTI       uint8 = 0x0a
	Hi6SLTIU      uint8 = 0x0b
	Hi6ANDI       uint8 = 0x0c
	Hi6ORI        uint8 = 0x0d
	Hi6XORI       uint8 = 0x0e
	Hi6LUI        uint8 = 0x0f
	Hi6COP0       uint8 = 0x10
	Hi6COP1       uint8 = 0x11
	Hi6COP2       uint8 = 0x12
	Hi6COP3       uint8 = 0x13
	Hi6BEQL       uint8 = 0x14
	Hi6BNEL       uint8 = 0x15
	Hi6BLEZL      uint8 = 0x16
	Hi6BGTZL      uint8 = 0x17
	Hi6DADDI      uint8 = 0x18
	Hi6DADDIU     uint8 = 0x19
	Hi6LDL        uint8 = 0x1a
	Hi6LDR        uint8 = 0x1b
	Hi6Special2   uint8 = 0x1c
	Hi6JALX       uint8 = 0x1d
	Hi6LQMDMX     uint8 = 0x1e // lq on R5900, MDMX elsewhere
	Hi6SQSpecial3 uint8 = 0x1f // sq on R5900, SPECIAL3 elsewhere
	Hi6LB         uint8 = 0x20
	Hi6LH         uint8 = 0x21
	Hi6LWL        uint8 = 0x22
	Hi6LW         uint8 = 0x23
	Hi6LBU        uint8 = 0x24
	Hi6LHU        uint8 = 0x25
	Hi6LWR        uint8 = 0x26
	Hi6LWU        uint8 = 0x27
	Hi6SB         uint8 = 0x28
	Hi6SH         uint8 = 0x29
	Hi6SWL        uint8 = 0x2a
	Hi6SW         uint8 = 0x2b
	Hi6SDL        uint8 = 0x2c
	Hi6SDR        uint8 = 0x2d
	Hi6SWR        uint8 = 0x2e
	Hi6CACHE      uint8 = 0x2f
	Hi6LL         uint8 = 0x30
	Hi6LWC1       uint8 = 0x31
	Hi6LWC2       uint8 = 0x32
	Hi6LWC3       uint8 = 0x33 // pref on ISA IV and later
	Hi6LLD        uint8 = 0x34
	Hi6LDC1       uint8 = 0x35
	Hi6LDC2       uint8 = 0x36
	Hi6LD         uint8 = 0x37
	Hi6SC         uint8 = 0x38
	Hi6SWC1       uint8 = 0x39
	Hi6SWC2       uint8 = 0x3a
	Hi6SWC3       uint8 = 0x3b
	Hi6SCD        uint8 = 0x3c
	Hi6SDC1       uint8 = 0x3d
	Hi6SDC2       uint8 = 0x3e
	Hi6SD         uint8 = 0x3f
)

// SPECIAL group function field values (bits 5-0).
const (
	SpecialSLL     uint8 = 0x00
	SpecialMOVCI   uint8 = 0x01
	SpecialSRL     uint8 = 0x02
	SpecialSRA     uint8 = 0x03
	SpecialSLLV    uint8 = 0x04
	SpecialSRLV    uint8 = 0x06
	SpecialSRAV    uint8 = 0x07
	SpecialJR      uint8 = 0x08
	SpecialJALR    uint8 = 0x09
	SpecialMOVZ    uint8 = 0x0a
	SpecialMOVN    uint8 = 0x0b
	SpecialSYSCALL uint8 = 0x0c
	SpecialBREAK   uint8 = 0x0d
	SpecialSYNC    uint8 = 0x0f
	SpecialMFHI    uint8 = 0x10
	SpecialMTHI    uint8 = 0x11
	SpecialMFLO    uint8 = 0x12
	SpecialMTLO    uint8 = 0x13
	SpecialDSLLV   uint8 = 0x14
	SpecialDSRLV   uint8 = 0x16
	SpecialDSRAV   uint8 = 0x17
	SpecialMULT    uint8 = 0x18
	SpecialMULTU   uint8 = 0x19
	SpecialDIV     uint8 = 0x1a
	SpecialDIVU    uint8 = 0x1b
	SpecialDMULT   uint8 = 0x1c
	SpecialDMULTU  uint8 = 0x1d
	SpecialDDIV    uint8 = 0x1e
	SpecialDDIVU   uint8 = 0x1f
	SpecialADD     uint8 = 0x20
	SpecialADDU    uint8 = 0x21
	SpecialSUB     uint8 = 0x22
	SpecialSUBU    uint8 = 0x23
	SpecialAND     uint8 = 0x24
	SpecialOR      uint8 = 0x25
	SpecialXOR     uint8 = 0x26
	SpecialNOR     uint8 = 0x27
	SpecialMFSA    uint8 = 0x28 // R5900 only
	SpecialMTSA    uint8 = 0x29 // R5900 only
	SpecialSLT     uint8 = 0x2a
	SpecialSLTU    uint8 = 0x2b
	SpecialDADD    uint8 = 0x2c
	SpecialDADDU   uint8 = 0x2d
	SpecialDSUB    uint8 = 0x2e
	SpecialDSUBU   uint8 = 0x2f
	SpecialTGE     uint8 = 0x30
	SpecialTGEU    uint8 = 0x31
	SpecialTLT     uint8 = 0x32
	SpecialTLTU    uint8 = 0x33
	SpecialTEQ     uint8 = 0x34
	SpecialTNE     uint8 = 0x36
	SpecialDSLL    uint8 = 0x38
	SpecialDSRL    uint8 = 0x3a
	SpecialDSRA    uint8 = 0x3b
	SpecialDSLL32  uint8 = 0x3c
	SpecialDSRL32  uint8 = 0x3e
	SpecialDSRA32  uint8 = 0x3f
)

// REGIMM group rt field values (bits 20-16).
const (
	RegimmBLTZ    uint8 = 0x00
	RegimmBGEZ    uint8 = 0x01
	RegimmBLTZL   uint8 = 0x02
	RegimmBGEZL   uint8 = 0x03
	RegimmTGEI    uint8 = 0x08
	RegimmTGEIU   uint8 = 0x09
	RegimmTLTI    uint8 = 0x0a
	RegimmTLTIU   uint8 = 0x0b
	RegimmTEQI    uint8 = 0x0c
	RegimmTNEI    uint8 = 0x0e
	RegimmBLTZAL  uint8 = 0x10
	RegimmBGEZAL  uint8 = 0x11
	RegimmBLTZALL uint8 = 0x12
	RegimmBGEZALL uint8 = 0x13
	RegimmMTSAB   uint8 = 0x18 // R5900 only
	RegimmMTSAH   uint8 = 0x19 // R5900 only
	RegimmSYNCI   uint8 = 0x1f
)

// Hi6Name returns the mnemonic of a primary opcode value. Encodings whose
// meaning depends on the processor variant get their generic name here; use
// Resolve for the variant-specific one.
func Hi6Name(hi6 uint8) string {
	switch hi6 {
	case Hi6Special:
		return "special"
	case Hi6Regimm:
		return "regimm"
	case Hi6J:
		return "j"
	case Hi6JAL:
		return "jal"
	case Hi6BEQ:
		return "beq"
	case Hi6BNE:
		return "bne"
	case Hi6BLEZ:
		return "blez"
	case Hi6BGTZ:
		return "bgtz"
	case Hi6ADDI:
		return "addi"
	case Hi6ADDIU:
		return "addiu"
	case Hi6SLTI:
		return "slti"
	case Hi6SLTIU:
		return "sltiu"
	case Hi6ANDI:
		return "andi"
	case Hi6ORI:
		return "ori"
	case Hi6XORI:
		return "xori"
	case Hi6LUI:
		return "lui"
	case Hi6COP0:
		return "cop0"
	case Hi6COP1:
		return "cop1"
	case Hi6COP2:
		return "cop2"
	case Hi6COP3:
		return "cop3"
	case Hi6BEQL:
		return "beql"
	case Hi6BNEL:
		return "bnel"
	case Hi6BLEZL:
		return "blezl"
	case Hi6BGTZL:
		return "bgtzl"
	case Hi6DADDI:
		return "daddi"
	case Hi6DADDIU:
		return "daddiu"
	case Hi6LDL:
		return "ldl"
	case Hi6LDR:
		return "ldr"
	case Hi6Special2:
		return "special2"
	case Hi6JALX:
		return "jalx"
	case Hi6LQMDMX:
		return "lq_mdmx"
	case Hi6SQSpecial3:
		return "sq_special3"
	case Hi6LB:
		return "lb"
	case Hi6LH:
		return "lh"
	case Hi6LWL:
		return "lwl"
	case Hi6LW:
		return "lw"
	case Hi6LBU:
		return "lbu"
	case Hi6LHU:
		return "lhu"
	case Hi6LWR:
		return "lwr"
	case Hi6LWU:
		return "lwu"
	case Hi6SB:
		return "sb"
	case Hi6SH:
		return "sh"
	case Hi6SWL:
		return "swl"
	case Hi6SW:
		return "sw"
	case Hi6SDL:
		return "sdl"
	case Hi6SDR:
		return "sdr"
	case Hi6SWR:
		return "swr"
	case Hi6CACHE:
		return "cache"
	case Hi6LL:
		return "ll"
	case Hi6LWC1:
		return "lwc1"
	case Hi6LWC2:
		return "lwc2"
	case Hi6LWC3:
		return "lwc3"
	case Hi6LLD:
		return "lld"
	case Hi6LDC1:
		return "ldc1"
	case Hi6LDC2:
		return "ldc2"
	case Hi6LD:
		return "ld"
	case Hi6SC:
		return "sc"
	case Hi6SWC1:
		return "swc1"
	case Hi6SWC2:
		return "swc2"
	case Hi6SWC3:
		return "swc3"
	case Hi6SCD:
		return "scd"
	case Hi6SDC1:
		return "sdc1"
	case Hi6SDC2:
		return "sdc2"
	case Hi6SD:
		return "sd"
	default:
		return fmt.Sprintf("hi6_%02x", hi6)
	}
}

// SpecialName returns the mnemonic of a SPECIAL function value.
func SpecialName(special uint8) string {
	switch special {
	case SpecialSLL:
		return "sll"
	case SpecialMOVCI:
		return "movci"
	case SpecialSRL:
		return "srl"
	case SpecialSRA:
		return "sra"
	case SpecialSLLV:
		return "sllv"
	case SpecialSRLV:
		return "srlv"
	case SpecialSRAV:
		return "srav"
	case SpecialJR:
		return "jr"
	case SpecialJALR:
		return "jalr"
	case SpecialMOVZ:
		return "movz"
	case SpecialMOVN:
		return "movn"
	case SpecialSYSCALL:
		return "syscall"
	case SpecialBREAK:
		return "break"
	case SpecialSYNC:
		return "sync"
	case SpecialMFHI:
		return "mfhi"
	case SpecialMTHI:
		return "mthi"
	case SpecialMFLO:
		return "mflo"
	case SpecialMTLO:
		return "mtlo"
	case SpecialDSLLV:
		return "dsllv"
	case SpecialDSRLV:
		return "dsrlv"
	case SpecialDSRAV:
		return "dsrav"
	case SpecialMULT:
		return "mult"
	case SpecialMULTU:
		return "multu"
	case SpecialDIV:
		return "div"
	case SpecialDIVU:
		return "divu"
	case SpecialDMULT:
		return "dmult"
	case SpecialDMULTU:
		return "dmultu"
	case SpecialDDIV:
		return "ddiv"
	case SpecialDDIVU:
		return "ddivu"
	case SpecialADD:
		return "add"
	case SpecialADDU:
		return "addu"
	case SpecialSUB:
		return "sub"
	case SpecialSUBU:
		return "subu"
	case SpecialAND:
		return "and"
	case SpecialOR:
		return "or"
	case SpecialXOR:
		return "xor"
	case SpecialNOR:
		return "nor"
	case SpecialSLT:
		return "slt"
	case SpecialSLTU:
		return "sltu"
	case SpecialDADD:
		return "dadd"
	case SpecialDADDU:
		return "daddu"
	case SpecialDSUB:
		return "dsub"
	case SpecialDSUBU:
		return "dsubu"
	case SpecialTGE:
		return "tge"
	case SpecialTGEU:
		return "tgeu"
	case SpecialTLT:
		return "tlt"
	case SpecialTLTU:
		return "tltu"
	case SpecialTEQ:
		return "teq"
	case SpecialTNE:
		return "tne"
	case SpecialDSLL:
		return "dsll"
	case SpecialDSRL:
		return "dsrl"
	case SpecialDSRA:
		return "dsra"
	case SpecialDSLL32:
		return "dsll32"
	case SpecialDSRL32:
		return "dsrl32"
	case SpecialDSRA32:
		return "dsra32"
	default:
		return fmt.Sprintf("special_%02x", special)
	}
}

// SpecialRotName returns the rotate mnemonic that a shift function value
// takes when its sub-field is 1 (MIPS32/64 revision 2). It returns "" for
// functions that have no rotate form.
func SpecialRotName(special uint8) string {
	switch special {
	case SpecialSRL:
		return "rotr"
	case SpecialSRLV:
		return "rotrv"
	case SpecialDSRL:
		return "drotr"
	case SpecialDSRLV:
		return "drotrv"
	case SpecialDSRL32:
		return "drotr32"
	default:
		return ""
	}
}

// RegimmName returns the mnemonic of a REGIMM rt value.
func RegimmName(regimm uint8) string {
	switch regimm {
	case RegimmBLTZ:
		return "bltz"
	case RegimmBGEZ:
		return "bgez"
	case RegimmBLTZL:
		return "bltzl"
	case RegimmBGEZL:
		return "bgezl"
	case RegimmTGEI:
		return "tgei"
	case RegimmTGEIU:
		return "tgeiu"
	case RegimmTLTI:
		return "tlti"
	case RegimmTLTIU:
		return "tltiu"
	case RegimmTEQI:
		return "teqi"
	case RegimmTNEI:
		return "tnei"
	case RegimmBLTZAL:
		return "bltzal"
	case RegimmBGEZAL:
		return "bgezal"
	case RegimmBLTZALL:
		return "bltzall"
	case RegimmBGEZALL:
		return "bgezall"
	case RegimmMTSAB:
		return "mtsab"
	case RegimmMTSAH:
		return "mtsah"
	case RegimmSYNCI:
		return "synci"
	default:
		return fmt.Sprintf("regimm_%02x", regimm)
	}
}

// Resolve returns the mnemonic a primary/SPECIAL encoding has on the given
// processor variant. special is only consulted when hi6 is Hi6Special. ok is
// false when the encoding has no meaning on that variant; name then still
// identifies what was attempted.
func Resolve(hi6, special uint8, v model.Variant) (name string, ok bool) {
	r5900 := v == model.VariantR5900

	switch hi6 {
	case Hi6LQMDMX:
		if r5900 {
			return "lq", true
		}
		return "mdmx", false
	case Hi6SQSpecial3:
		if r5900 {
			return "sq", true
		}
		return "special3", false
	case Hi6Special:
		switch special {
		case SpecialMFSA:
			if r5900 {
				return "mfsa", true
			}
			return SpecialName(special), false
		case SpecialMTSA:
			if r5900 {
				return "mtsa", true
			}
			return SpecialName(special), false
		}
		return SpecialName(special), true
	}

	return Hi6Name(hi6), true
}

// ResolveRegimm is Resolve for the REGIMM group.
func ResolveRegimm(regimm uint8, v model.Variant) (name string, ok bool) {
	switch regimm {
	case RegimmMTSAB, RegimmMTSAH:
		return RegimmName(regimm), v == model.VariantR5900
	}
	return RegimmName(regimm), true
}
