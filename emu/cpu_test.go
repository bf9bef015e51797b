package emu_test

import (
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsdyn/emu"
	"github.com/sarchlab/mipsdyn/icache"
	"github.com/sarchlab/mipsdyn/insts"
	"github.com/sarchlab/mipsdyn/model"
	"github.com/sarchlab/mipsdyn/symbols"
	"github.com/sarchlab/mipsdyn/ui"
	"github.com/sarchlab/mipsdyn/vars"
)

// resetPhys is the physical address the reset vector maps to.
const resetPhys = 0x1fc00000

var _ = Describe("CPU", func() {
	var (
		cpu *emu.CPU
		rec *ui.Recorder
	)

	load := func(words ...uint32) {
		for i, w := range words {
			cpu.Memory().Write32(resetPhys+uint64(4*i), w)
		}
	}

	BeforeEach(func() {
		rec = &ui.Recorder{}
		var err error
		cpu, err = emu.NewCPU(emu.WithSink(rec))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewCPU", func() {
		It("should default to the 5KE", func() {
			Expect(cpu.Model().Name).To(Equal("5KE"))
			Expect(cpu.Model().ISALevel).To(Equal(64))
			Expect(cpu.Model().ISARevision).To(Equal(2))
			Expect(cpu.Name()).To(Equal(emu.DefaultName))
		})

		It("should start in the reset state", func() {
			Expect(cpu.RegFile().PC).To(Equal(uint64(0xffffffffbfc00000)))
			Expect(cpu.RegFile().GPR[insts.RegSP]).To(Equal(uint64(0xffffffffa0007f00)))
			Expect(cpu.RegFile().PageSize).To(Equal(uint64(4096)))
			Expect(cpu.RegFile().BigEndian).To(BeTrue())
		})

		It("should fail for unknown models", func() {
			c, err := emu.NewCPU(emu.WithModel("Z80"))
			Expect(err).To(MatchError(model.ErrUnknownModel))
			Expect(c).To(BeNil())
		})

		It("should reject memory with the wrong byte order", func() {
			c, err := emu.NewCPU(emu.WithMemory(emu.NewMemory(false)))
			Expect(err).To(HaveOccurred())
			Expect(c).To(BeNil())
		})

		It("should reject bad icache geometry", func() {
			_, err := emu.NewCPU(emu.WithICache(icache.Config{Size: 100, Associativity: 3, BlockSize: 6}))
			Expect(err).To(MatchError(icache.ErrInvalidConfig))
		})
	})

	Describe("PreRunCheck", func() {
		It("should pass after reset", func() {
			Expect(cpu.PreRunCheck()).To(Succeed())
			Expect(rec.Messages()).To(BeEmpty())
		})

		It("should fail when zr is not zero", func() {
			cpu.RegFile().GPR[0] = 1

			Expect(cpu.PreRunCheck()).To(MatchError(emu.ErrZeroRegister))
			Expect(rec.Messages()).To(Equal([]ui.Message{{
				Source: "cpu0",
				Text:   "the zero register (zr) must contain the value 0.",
			}}))

			n, err := cpu.Execute(1)
			Expect(n).To(BeZero())
			Expect(err).To(MatchError(emu.ErrZeroRegister))
		})
	})

	Describe("Execute", func() {
		It("should run straight-line code", func() {
			load(
				iType(insts.Hi6LUI, 0, 8, 0x1234),
				iType(insts.Hi6ORI, 8, 8, 0x5678),
				iType(insts.Hi6ADDIU, 8, 9, 1),
				0, // nop
			)

			n, err := cpu.Execute(4)

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(4))
			Expect(cpu.RegFile().GPR[8]).To(Equal(uint64(0x12345678)))
			Expect(cpu.RegFile().GPR[9]).To(Equal(uint64(0x12345679)))
			Expect(cpu.RegFile().PC).To(Equal(emu.InitialPC + 16))
			Expect(cpu.InstructionCount()).To(Equal(uint64(4)))
			Expect(cpu.TranslationCache().Len()).To(Equal(4))
		})

		It("should stop at an unimplemented instruction", func() {
			load(
				iType(insts.Hi6ADDIU, 0, 8, 1),
				iType(insts.Hi6BEQ, 0, 0, 0),
			)

			n, err := cpu.Execute(5)

			Expect(n).To(Equal(1))
			Expect(err).To(MatchError(emu.ErrUnimplementedInstruction))
			Expect(cpu.RegFile().PC).To(Equal(emu.InitialPC + 4))
			Expect(rec.Texts()).To(ContainElement(ContainSubstring("unimplemented opcode 0x4")))
		})

		It("should reuse cached translations until invalidated", func() {
			load(iType(insts.Hi6ADDIU, 0, 8, 1))
			_, err := cpu.Execute(1)
			Expect(err).NotTo(HaveOccurred())

			load(iType(insts.Hi6ADDIU, 0, 8, 2))
			cpu.RegFile().PC = emu.InitialPC
			_, err = cpu.Execute(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.RegFile().GPR[8]).To(Equal(uint64(1)))

			Expect(cpu.InvalidateCode(emu.InitialPC, emu.InitialPC+4)).To(Equal(1))
			cpu.RegFile().PC = emu.InitialPC
			_, err = cpu.Execute(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.RegFile().GPR[8]).To(Equal(uint64(2)))
		})

		It("should report unmapped program counters", func() {
			cpu.RegFile().PC = 0x1000
			_, err := cpu.Execute(1)
			Expect(err).To(MatchError(emu.ErrAddressMiss))
		})

		It("should refuse 64-bit code on a 32-bit model", func() {
			c, err := emu.NewCPU(emu.WithModel("R3000"), emu.WithSink(rec))
			Expect(err).NotTo(HaveOccurred())
			c.Memory().Write32(resetPhys, iType(insts.Hi6DADDIU, 0, 8, 1))

			_, err = c.Execute(1)

			Expect(err).To(MatchError(emu.ErrUnimplementedInstruction))
			Expect(rec.Texts()).To(ContainElement(
				"instruction at 0xffffffffbfc00000 requires ISA level 3; this cpu supports only ISA level 1"))
		})

		It("should not translate MIPS16 code", func() {
			cpu.RegFile().PC = emu.InitialPC | 1
			_, err := cpu.Execute(1)
			Expect(err).To(MatchError(emu.ErrUnimplementedInstruction))
			Expect(err.Error()).To(ContainSubstring("MIPS16"))
		})

		It("should run little-endian code", func() {
			c, err := emu.NewCPU(emu.WithLittleEndian(), emu.WithSink(rec))
			Expect(err).NotTo(HaveOccurred())
			c.Memory().LoadBytes(resetPhys, []byte{0x01, 0x00, 0x08, 0x24}) // addiu t0,zr,1

			_, err = c.Execute(1)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.RegFile().GPR[8]).To(Equal(uint64(1)))
		})

		It("should fetch through the instruction cache", func() {
			c, err := emu.NewCPU(emu.WithICache(icache.DefaultConfig()), emu.WithSink(rec))
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 8; i++ {
				c.Memory().Write32(resetPhys+uint64(4*i), iType(insts.Hi6ADDIU, 8, 8, 1))
			}

			_, err = c.Execute(8)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.RegFile().GPR[8]).To(Equal(uint64(8)))
			stats := c.ICache().Stats()
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(7)))
			Expect(c.Cycles()).To(Equal(uint64(20 + 7 + 8)))
		})

		It("should count cycles with a latency model", func() {
			c, err := emu.NewCPU(emu.WithLatency(fixedLatency(3)), emu.WithSink(rec))
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 4; i++ {
				c.Memory().Write32(resetPhys+uint64(4*i), iType(insts.Hi6ADDIU, 8, 8, 1))
			}

			_, err = c.Execute(4)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.Cycles()).To(Equal(uint64(12)))

			c.Reset()
			Expect(c.Cycles()).To(BeZero())
		})

		It("should trace executed cells at trace level", func() {
			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.TraceLevel)
			c, err := emu.NewCPU(emu.WithLogger(logger), emu.WithSink(rec))
			Expect(err).NotTo(HaveOccurred())

			_, err = c.Execute(1)

			Expect(err).NotTo(HaveOccurred())
			Expect(hook.LastEntry()).NotTo(BeNil())
			Expect(hook.LastEntry().Data).To(HaveKeyWithValue("cell", "nop"))
			Expect(hook.LastEntry().Data).To(HaveKeyWithValue("component", "cpu0"))
		})

		It("should follow logger level changes made after construction", func() {
			logger, hook := test.NewNullLogger()
			c, err := emu.NewCPU(emu.WithLogger(logger), emu.WithSink(rec))
			Expect(err).NotTo(HaveOccurred())

			Expect(c.Step()).To(Succeed())
			Expect(hook.Entries).To(BeEmpty())

			logger.SetLevel(logrus.TraceLevel)
			Expect(c.Step()).To(Succeed())
			Expect(hook.Entries).To(HaveLen(1))
			Expect(hook.LastEntry().Level).To(Equal(logrus.TraceLevel))
		})
	})

	Describe("Reset", func() {
		It("should restore registers and drop translations", func() {
			load(iType(insts.Hi6ADDIU, 0, 8, 1))
			_, err := cpu.Execute(1)
			Expect(err).NotTo(HaveOccurred())

			cpu.Reset()

			Expect(cpu.RegFile().PC).To(Equal(emu.InitialPC))
			Expect(cpu.RegFile().GPR[8]).To(BeZero())
			Expect(cpu.TranslationCache().Len()).To(BeZero())
			Expect(cpu.TranslationCache().Stats()).To(Equal(emu.TranslationCacheStats{}))
			Expect(cpu.InstructionCount()).To(BeZero())
			Expect(cpu.Memory().Read32(resetPhys)).To(Equal(iType(insts.Hi6ADDIU, 0, 8, 1)))
		})
	})

	Describe("Variables", func() {
		It("should expose model, pc, hi, lo and the GPRs", func() {
			names := cpu.Variables().Names()
			Expect(names[:5]).To(Equal([]string{"model", "pc", "hi", "lo", "zr"}))
			Expect(names).To(HaveLen(4 + insts.NumGPRs))
		})

		It("should read and write live state", func() {
			v := cpu.Variables()

			Expect(v.Get("pc")).To(Equal("0xffffffffbfc00000"))
			Expect(v.Get("model")).To(Equal("5KE"))

			Expect(v.Set("t0", "0x10")).To(Succeed())
			Expect(cpu.RegFile().GPR[8]).To(Equal(uint64(0x10)))

			Expect(v.Set("model", "R3000")).To(MatchError(vars.ErrReadOnly))
		})

		It("should stay bound across reset", func() {
			cpu.Reset()
			Expect(cpu.Variables().Set("hi", "-1")).To(Succeed())
			Expect(cpu.RegFile().Hi).To(Equal(^uint64(0)))
		})
	})

	Describe("Disassemble", func() {
		It("should render instructions", func() {
			n, tokens, err := cpu.Disassemble(0x12345678, []byte{0x27, 0xbd, 0xff, 0xd8})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(4))
			Expect(tokens).To(Equal([]string{"27bdffd8", "addiu", "sp,sp,-40"}))
		})

		It("should fetch from memory", func() {
			load(0x27bdffd8)
			n, tokens, err := cpu.DisassembleAt(emu.InitialPC)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(4))
			Expect(tokens[1]).To(Equal("addiu"))
		})

		It("should annotate with the cpu's symbols", func() {
			syms := symbols.NewRegistry()
			syms.Add("start", 0xffffffffbfc00100, 0)
			c, err := emu.NewCPU(emu.WithSymbols(syms), emu.WithSink(rec))
			Expect(err).NotTo(HaveOccurred())

			// j 0xffffffffbfc00100
			_, tokens, err := c.Disassemble(emu.InitialPC, []byte{0x0b, 0xf0, 0x00, 0x40})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens).To(Equal([]string{"0bf00040", "j", "0xffffffffbfc00100", "; <start>"}))
		})
	})

	Describe("ShowRegisters", func() {
		It("should send the dump to the sink", func() {
			s := cpu.ShowRegisters()
			Expect(s).To(HavePrefix("pc=ffffffffbfc00000"))
			Expect(rec.Texts()).To(Equal([]string{s}))
		})

		It("should use 32-bit formatting on 32-bit models", func() {
			c, err := emu.NewCPU(emu.WithModel("4KEc"), emu.WithSink(rec))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ShowRegisters()).To(HavePrefix("pc=bfc00000\n"))
		})
	})

	Describe("TranslateAddress", func() {
		It("should use the model's bit width", func() {
			c, err := emu.NewCPU(emu.WithModel("R3000"), emu.WithSink(rec))
			Expect(err).NotTo(HaveOccurred())

			_, _, ok := c.TranslateAddress(0x80001000)
			Expect(ok).To(BeTrue())
			_, _, ok = cpu.TranslateAddress(0x80001000)
			Expect(ok).To(BeFalse())
		})
	})
})

type fixedLatency uint64

func (l fixedLatency) GetLatency(emu.Cell) uint64 {
	return uint64(l)
}
