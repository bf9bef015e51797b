package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsdyn/emu"
)

var _ = Describe("Cell execution", func() {
	var r *emu.RegFile

	BeforeEach(func() {
		r = emu.NewRegFile(true)
	})

	run := func(op emu.OperationID, args ...emu.Operand) {
		cell := emu.Cell{Op: op}
		copy(cell.Args[:], args)
		Expect(cell.Execute(r)).To(Succeed())
	}

	rrr := func(op emu.OperationID, d, s, t uint8) {
		run(op, emu.Reg(d), emu.Reg(s), emu.Reg(t))
	}

	Describe("immediates", func() {
		It("should truncate addiu to 32 bits and sign-extend", func() {
			r.GPR[4] = 0x7fffffff
			run(emu.OpAddImmTrunc32, emu.Reg(5), emu.Reg(4), emu.Signed(1))
			Expect(r.GPR[5]).To(Equal(uint64(0xffffffff80000000)))
		})

		It("should compute the stack adjustment from reset", func() {
			run(emu.OpAddImmTrunc32, emu.Reg(29), emu.Reg(29), emu.Signed(-40))
			Expect(r.GPR[29]).To(Equal(uint64(0xffffffffa0007ed8)))
		})

		It("should add 64-bit immediates without truncation", func() {
			r.GPR[4] = 0x7fffffff
			run(emu.OpAddImm64, emu.Reg(5), emu.Reg(4), emu.Signed(1))
			Expect(r.GPR[5]).To(Equal(uint64(0x80000000)))

			run(emu.OpAddImm64, emu.Reg(5), emu.Reg(0), emu.Signed(-1))
			Expect(r.GPR[5]).To(Equal(^uint64(0)))
		})

		It("should apply logical immediates", func() {
			r.GPR[4] = 0xffffffffffff00f0
			run(emu.OpAndImm, emu.Reg(5), emu.Reg(4), emu.Unsigned(0xff))
			Expect(r.GPR[5]).To(Equal(uint64(0xf0)))
			run(emu.OpOrImm, emu.Reg(5), emu.Reg(4), emu.Unsigned(0x0f))
			Expect(r.GPR[5]).To(Equal(uint64(0xffffffffffff00ff)))
			run(emu.OpXorImm, emu.Reg(5), emu.Reg(4), emu.Unsigned(0xffff))
			Expect(r.GPR[5]).To(Equal(uint64(0xffffffffffffff0f)))
		})

		It("should set constants", func() {
			run(emu.OpSetImm, emu.Reg(8), emu.Signed(-0x80000000))
			Expect(r.GPR[8]).To(Equal(uint64(0xffffffff80000000)))
		})
	})

	Describe("three-register arithmetic", func() {
		BeforeEach(func() {
			r.GPR[4] = 0xffffffff
			r.GPR[5] = 1
		})

		It("should wrap addu at 32 bits", func() {
			rrr(emu.OpAddTrunc32, 6, 4, 5)
			Expect(r.GPR[6]).To(BeZero())
		})

		It("should sign-extend subu", func() {
			rrr(emu.OpSubTrunc32, 6, 0, 5)
			Expect(r.GPR[6]).To(Equal(^uint64(0)))
		})

		It("should not wrap daddu and dsubu", func() {
			rrr(emu.OpAdd64, 6, 4, 5)
			Expect(r.GPR[6]).To(Equal(uint64(0x100000000)))
			rrr(emu.OpSub64, 6, 0, 5)
			Expect(r.GPR[6]).To(Equal(^uint64(0)))
		})

		It("should compute nor", func() {
			rrr(emu.OpNor, 6, 4, 5)
			Expect(r.GPR[6]).To(Equal(uint64(0xffffffff00000000)))
		})

		It("should compare signed and unsigned", func() {
			r.GPR[4] = ^uint64(0) // -1
			rrr(emu.OpSetLessThan, 6, 4, 5)
			Expect(r.GPR[6]).To(Equal(uint64(1)))
			rrr(emu.OpSetLessThanUnsigned, 6, 4, 5)
			Expect(r.GPR[6]).To(BeZero())
		})

		It("should move conditionally", func() {
			r.GPR[6] = 9
			rrr(emu.OpMoveIfZero, 6, 4, 5)
			Expect(r.GPR[6]).To(Equal(uint64(9)))
			rrr(emu.OpMoveIfNotZero, 6, 4, 5)
			Expect(r.GPR[6]).To(Equal(uint64(0xffffffff)))
			rrr(emu.OpMoveIfZero, 7, 5, 0)
			Expect(r.GPR[7]).To(Equal(uint64(1)))
		})
	})

	Describe("shifts", func() {
		DescribeTable("by a constant",
			func(op emu.OperationID, in uint64, amount uint64, want uint64) {
				r.GPR[5] = in
				run(op, emu.Reg(6), emu.Reg(5), emu.Unsigned(amount))
				Expect(r.GPR[6]).To(Equal(want))
			},
			Entry("sll sign-extends", emu.OpShiftLeft32, uint64(1), uint64(31), uint64(0xffffffff80000000)),
			Entry("srl ignores upper bits", emu.OpShiftRightLogical32, ^uint64(0), uint64(4), uint64(0x0fffffff)),
			Entry("sra", emu.OpShiftRightArith32, uint64(0x80000000), uint64(4), uint64(0xfffffffff8000000)),
			Entry("rotr", emu.OpRotateRight32, uint64(0x12345678), uint64(8), uint64(0x78123456)),
			Entry("dsll32", emu.OpShiftLeft64, uint64(1), uint64(36), uint64(1)<<36),
			Entry("dsrl", emu.OpShiftRightLogical64, ^uint64(0), uint64(60), uint64(0xf)),
			Entry("dsra32", emu.OpShiftRightArith64, uint64(0x8000000000000000), uint64(63), ^uint64(0)),
			Entry("drotr", emu.OpRotateRight64, uint64(0x0123456789abcdef), uint64(16), uint64(0xcdef0123456789ab)),
		)

		It("should use the low bits of a shift register", func() {
			r.GPR[4] = 33
			r.GPR[5] = 1
			run(emu.OpShiftLeftVar32, emu.Reg(6), emu.Reg(5), emu.Reg(4))
			Expect(r.GPR[6]).To(Equal(uint64(2)))

			r.GPR[4] = 65
			run(emu.OpShiftLeftVar64, emu.Reg(6), emu.Reg(5), emu.Reg(4))
			Expect(r.GPR[6]).To(Equal(uint64(2)))

			r.GPR[4] = 4
			r.GPR[5] = 0xf0
			run(emu.OpRotateRightVar32, emu.Reg(6), emu.Reg(5), emu.Reg(4))
			Expect(r.GPR[6]).To(Equal(uint64(0xf)))
		})
	})

	Describe("multiply and divide", func() {
		It("should write signed 32-bit products to hi/lo", func() {
			r.GPR[4] = uint64(0xfffffffffffffffe) // -2
			r.GPR[5] = 3
			run(emu.OpMult32, emu.Reg(4), emu.Reg(5))
			Expect(r.Lo).To(Equal(uint64(0xfffffffffffffffa)))
			Expect(r.Hi).To(Equal(^uint64(0)))
		})

		It("should write unsigned 32-bit products to hi/lo", func() {
			r.GPR[4] = 0xffffffff
			r.GPR[5] = 0xffffffff
			run(emu.OpMultU32, emu.Reg(4), emu.Reg(5))
			Expect(r.Lo).To(Equal(uint64(1)))
			Expect(r.Hi).To(Equal(uint64(0xfffffffffffffffe)))
		})

		It("should divide with remainder", func() {
			r.GPR[4] = uint64(0xfffffffffffffff9) // -7
			r.GPR[5] = 2
			run(emu.OpDiv32, emu.Reg(4), emu.Reg(5))
			Expect(int64(r.Lo)).To(Equal(int64(-3)))
			Expect(int64(r.Hi)).To(Equal(int64(-1)))

			run(emu.OpDivU32, emu.Reg(4), emu.Reg(5))
			Expect(r.Lo).To(Equal(uint64(0x7ffffffc)))
			Expect(r.Hi).To(Equal(uint64(1)))
		})

		It("should leave hi/lo alone on division by zero", func() {
			r.Hi, r.Lo = 11, 22
			r.GPR[4] = 5
			for _, op := range []emu.OperationID{emu.OpDiv32, emu.OpDivU32, emu.OpDiv64, emu.OpDivU64} {
				run(op, emu.Reg(4), emu.Reg(0))
			}
			Expect(r.Hi).To(Equal(uint64(11)))
			Expect(r.Lo).To(Equal(uint64(22)))
		})

		It("should not trap on the most negative quotient", func() {
			r.GPR[4] = 0xffffffff80000000
			r.GPR[5] = ^uint64(0)
			run(emu.OpDiv32, emu.Reg(4), emu.Reg(5))
			Expect(r.Lo).To(Equal(uint64(0xffffffff80000000)))
			Expect(r.Hi).To(BeZero())
		})

		It("should compute 128-bit products", func() {
			r.GPR[4] = ^uint64(0)
			r.GPR[5] = 2
			run(emu.OpMult64, emu.Reg(4), emu.Reg(5))
			Expect(r.Hi).To(Equal(^uint64(0)))
			Expect(r.Lo).To(Equal(uint64(0xfffffffffffffffe)))

			run(emu.OpMult64, emu.Reg(4), emu.Reg(4))
			Expect(r.Hi).To(BeZero())
			Expect(r.Lo).To(Equal(uint64(1)))

			run(emu.OpMultU64, emu.Reg(4), emu.Reg(5))
			Expect(r.Hi).To(Equal(uint64(1)))
			Expect(r.Lo).To(Equal(uint64(0xfffffffffffffffe)))
		})

		It("should divide 64-bit values", func() {
			r.GPR[4] = uint64(0xfffffffffffffff9) // -7
			r.GPR[5] = 2
			run(emu.OpDiv64, emu.Reg(4), emu.Reg(5))
			Expect(int64(r.Lo)).To(Equal(int64(-3)))
			Expect(int64(r.Hi)).To(Equal(int64(-1)))

			run(emu.OpDivU64, emu.Reg(4), emu.Reg(5))
			Expect(r.Lo).To(Equal(uint64(0x7ffffffffffffffc)))
			Expect(r.Hi).To(Equal(uint64(1)))
		})

		It("should transfer hi and lo", func() {
			r.GPR[4] = 0x55
			run(emu.OpMoveToHi, emu.Reg(4))
			run(emu.OpMoveToLo, emu.Reg(0))
			run(emu.OpMoveFromHi, emu.Reg(7))
			Expect(r.GPR[7]).To(Equal(uint64(0x55)))
			Expect(r.Lo).To(BeZero())
		})

		It("should copy lo to rd for three-operand multiplies", func() {
			r.GPR[4] = 6
			r.GPR[5] = 7
			rrr(emu.OpMult32ToGPR, 8, 4, 5)
			Expect(r.GPR[8]).To(Equal(uint64(42)))
			Expect(r.Lo).To(Equal(uint64(42)))
			Expect(r.Hi).To(BeZero())
		})
	})

	Describe("invalid cells", func() {
		It("should fail without touching state", func() {
			before := *r
			cell := emu.Cell{Reason: "unimplemented opcode 0x4"}

			err := cell.Execute(r)

			Expect(err).To(MatchError(emu.ErrUnimplementedInstruction))
			Expect(err.Error()).To(ContainSubstring("unimplemented opcode 0x4"))
			Expect(*r).To(Equal(before))
		})

		It("should treat the zero value as invalid", func() {
			var cell emu.Cell
			Expect(cell.Valid()).To(BeFalse())
			Expect(cell.Execute(r)).To(MatchError(emu.ErrUnimplementedInstruction))
		})
	})

	It("should never write the zero register", func() {
		r.GPR[4] = 5
		run(emu.OpAddImm64, emu.Reg(0), emu.Reg(4), emu.Signed(1))
		rrr(emu.OpOr, 0, 4, 4)
		Expect(r.GPR[0]).To(BeZero())
	})

	It("should describe cells", func() {
		cell := emu.Cell{Op: emu.OpAddImmTrunc32, Args: [3]emu.Operand{
			emu.Reg(29), emu.Reg(29), emu.Signed(-40),
		}}
		Expect(cell.String()).To(Equal("add-imm-trunc32 r29 r29 -40"))
		Expect(emu.Cell{Op: emu.OpNop}.String()).To(Equal("nop"))
		Expect(emu.Cell{Reason: "x"}.String()).To(Equal("invalid: x"))
		Expect(emu.OperationID(250).String()).To(Equal("op(250)"))
	})
})
