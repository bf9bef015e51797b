package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsdyn/insts"
	"github.com/sarchlab/mipsdyn/model"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("I-type fields", func() {
		// addiu sp,sp,-40 -> 0x27bdffd8
		It("should decode addiu sp,sp,-40", func() {
			inst := decoder.Decode(0x27bdffd8, 0x12345678)

			Expect(inst.Op).To(Equal(insts.Hi6ADDIU))
			Expect(inst.RS).To(Equal(insts.RegSP))
			Expect(inst.RT).To(Equal(insts.RegSP))
			Expect(inst.Imm).To(Equal(uint16(0xffd8)))
			Expect(inst.SImm()).To(Equal(int64(-40)))
			Expect(inst.UImm()).To(Equal(uint64(0xffd8)))
			Expect(inst.Addr).To(Equal(uint64(0x12345678)))
			Expect(inst.Compressed).To(BeFalse())
		})

		// lui t0,0x8000 -> 0x3c088000
		It("should decode lui t0,0x8000", func() {
			inst := decoder.Decode(0x3c088000, 0)

			Expect(inst.Op).To(Equal(insts.Hi6LUI))
			Expect(inst.RT).To(Equal(uint8(8)))
			Expect(inst.UImm()).To(Equal(uint64(0x8000)))
		})
	})

	Describe("R-type fields", func() {
		// addu v0,a0,a1 -> 0x00851021
		It("should decode addu v0,a0,a1", func() {
			inst := decoder.Decode(0x00851021, 0)

			Expect(inst.Op).To(Equal(insts.Hi6Special))
			Expect(inst.Special).To(Equal(insts.SpecialADDU))
			Expect(inst.RS).To(Equal(uint8(4)))
			Expect(inst.RT).To(Equal(uint8(5)))
			Expect(inst.RD).To(Equal(uint8(2)))
			Expect(inst.SA).To(Equal(uint8(0)))
		})

		// sll t1,t2,4 -> 0x000a4900
		It("should decode the shift amount", func() {
			inst := decoder.Decode(0x000a4900, 0)

			Expect(inst.Special).To(Equal(insts.SpecialSLL))
			Expect(inst.RT).To(Equal(uint8(10)))
			Expect(inst.RD).To(Equal(uint8(9)))
			Expect(inst.SA).To(Equal(uint8(4)))
		})

		// jr.hb ra -> 0x03e00408
		It("should expose the hazard barrier hint", func() {
			Expect(decoder.Decode(0x03e00408, 0).HazardBarrier()).To(BeTrue())
			Expect(decoder.Decode(0x03e00008, 0).HazardBarrier()).To(BeFalse())
		})

		It("should expose the syscall code", func() {
			// syscall 0x12345
			word := uint32(0x12345)<<6 | uint32(insts.SpecialSYSCALL)
			Expect(decoder.Decode(word, 0).Code()).To(Equal(uint32(0x12345)))
		})
	})

	Describe("Targets", func() {
		It("should compute backward branch targets", func() {
			// beq zr,zr,-1 at 0x80001000 -> 0x80001000
			inst := decoder.Decode(0x1000ffff, 0xffffffff80001000)
			Expect(inst.BranchTarget()).To(Equal(uint64(0xffffffff80001000)))
		})

		It("should compute forward branch targets", func() {
			inst := decoder.Decode(0x10000004, 0x1000)
			Expect(inst.BranchTarget()).To(Equal(uint64(0x1014)))
		})

		It("should keep the top bits of pc+4 for jumps", func() {
			// j 0x0fffffc at 0xffffffffbfc00000
			inst := decoder.Decode(0x0bffffff, 0xffffffffbfc00000)
			Expect(inst.Target).To(Equal(uint32(0x03ffffff)))
			Expect(inst.JumpTarget()).To(Equal(uint64(0xffffffffbffffffc)))
		})
	})

	Describe("Compressed mode", func() {
		It("should produce a placeholder for MIPS16 halfwords", func() {
			inst := decoder.Decode16(0x6500, 0x80001001)
			Expect(inst.Compressed).To(BeTrue())
			Expect(inst.Word).To(Equal(uint32(0x6500)))
			Expect(inst.Op).To(BeZero())
		})

		It("should size encodings by the address low bit", func() {
			Expect(insts.IsCompressedAddr(0x1001)).To(BeTrue())
			Expect(insts.Size(0x1001)).To(Equal(2))
			Expect(insts.Size(0x1000)).To(Equal(4))
		})
	})

	It("should be total over the primary opcode field", func() {
		for hi6 := uint32(0); hi6 < 64; hi6++ {
			inst := decoder.Decode(hi6<<26|0x03ffffff, 0)
			Expect(inst.Op).To(Equal(uint8(hi6)))
			Expect(insts.Hi6Name(inst.Op)).NotTo(BeEmpty())
		}
	})
})

var _ = Describe("Names", func() {
	It("should name registers", func() {
		Expect(insts.RegName(0)).To(Equal("zr"))
		Expect(insts.RegName(29)).To(Equal("sp"))
		Expect(insts.RegName(31)).To(Equal("ra"))

		idx, ok := insts.RegIndex("gp")
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(insts.RegGP))

		_, ok = insts.RegIndex("x0")
		Expect(ok).To(BeFalse())
	})

	It("should name unassigned encodings explicitly", func() {
		Expect(insts.SpecialName(0x05)).To(Equal("special_05"))
		Expect(insts.RegimmName(0x04)).To(Equal("regimm_04"))
	})

	It("should only give rotate names to right-shift functions", func() {
		Expect(insts.SpecialRotName(insts.SpecialSRL)).To(Equal("rotr"))
		Expect(insts.SpecialRotName(insts.SpecialSRLV)).To(Equal("rotrv"))
		Expect(insts.SpecialRotName(insts.SpecialDSRL32)).To(Equal("drotr32"))
		Expect(insts.SpecialRotName(insts.SpecialSLL)).To(BeEmpty())
	})

	Describe("Resolve", func() {
		DescribeTable("variant-dependent encodings",
			func(hi6, special uint8, v model.Variant, name string, ok bool) {
				gotName, gotOK := insts.Resolve(hi6, special, v)
				Expect(gotName).To(Equal(name))
				Expect(gotOK).To(Equal(ok))
			},
			Entry("lq on R5900", insts.Hi6LQMDMX, uint8(0), model.VariantR5900, "lq", true),
			Entry("mdmx elsewhere", insts.Hi6LQMDMX, uint8(0), model.VariantStandard, "mdmx", false),
			Entry("sq on R5900", insts.Hi6SQSpecial3, uint8(0), model.VariantR5900, "sq", true),
			Entry("special3 elsewhere", insts.Hi6SQSpecial3, uint8(0), model.VariantStandard, "special3", false),
			Entry("mfsa on R5900", insts.Hi6Special, insts.SpecialMFSA, model.VariantR5900, "mfsa", true),
			Entry("mfsa elsewhere", insts.Hi6Special, insts.SpecialMFSA, model.VariantStandard, "special_28", false),
			Entry("mtsa elsewhere", insts.Hi6Special, insts.SpecialMTSA, model.VariantStandard, "special_29", false),
			Entry("addu anywhere", insts.Hi6Special, insts.SpecialADDU, model.VariantStandard, "addu", true),
			Entry("addiu anywhere", insts.Hi6ADDIU, uint8(0), model.VariantR5900, "addiu", true),
		)

		It("should resolve R5900-only REGIMM encodings", func() {
			name, ok := insts.ResolveRegimm(insts.RegimmMTSAB, model.VariantStandard)
			Expect(name).To(Equal("mtsab"))
			Expect(ok).To(BeFalse())

			_, ok = insts.ResolveRegimm(insts.RegimmMTSAB, model.VariantR5900)
			Expect(ok).To(BeTrue())

			_, ok = insts.ResolveRegimm(insts.RegimmBLTZ, model.VariantStandard)
			Expect(ok).To(BeTrue())
		})
	})
})
