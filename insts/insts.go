// Package insts provides MIPS instruction definitions and decoding.
//
// This package splits 32-bit MIPS instruction words into their fields and
// names the opcodes found in them. It supports:
//   - The primary opcode field and the SPECIAL and REGIMM sub-groups
//   - Register, shift-amount, immediate and jump-target fields
//   - Variant-specific opcode meanings (R5900 lq/sq, mfsa/mtsa, mtsab/mtsah)
//   - A placeholder for the 16-bit MIPS16 encoding
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x27bdffd8, 0x80001000) // addiu sp,sp,-40
//	fmt.Printf("op=%s rt=%s rs=%s imm=%d\n",
//		insts.Hi6Name(inst.Op), insts.RegName(inst.RT), insts.RegName(inst.RS), inst.SImm())
package insts
