package emu

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsdyn/disasm"
	"github.com/sarchlab/mipsdyn/icache"
	"github.com/sarchlab/mipsdyn/insts"
	"github.com/sarchlab/mipsdyn/model"
	"github.com/sarchlab/mipsdyn/symbols"
	"github.com/sarchlab/mipsdyn/ui"
	"github.com/sarchlab/mipsdyn/vars"
)

// Errors returned by the CPU.
var (
	// ErrZeroRegister is returned by PreRunCheck when zr is not zero.
	ErrZeroRegister = errors.New("the zero register (zr) must contain the value 0")

	// ErrAddressMiss is returned when the PC does not translate to a
	// physical address.
	ErrAddressMiss = errors.New("address translation miss")
)

// DefaultName is the component name used in diagnostics.
const DefaultName = "cpu0"

// LatencyModel gives the execution cost of a cell in cycles.
type LatencyModel interface {
	GetLatency(cell Cell) uint64
}

// CPU is a MIPS processor core executing translated instruction cells.
type CPU struct {
	name  string
	model model.Model

	regFile    *RegFile
	memory     *Memory
	translator *Translator
	tcache     *TranslationCache
	icache     *icache.Cache
	disasm     *disasm.Disassembler
	vars       *vars.Registry
	latency    LatencyModel

	sink    ui.Sink
	symbols *symbols.Registry
	logger  logrus.FieldLogger
	log     *logrus.Entry

	// Options
	modelName string
	bigEndian bool
	icacheCfg *icache.Config

	instructionCount uint64
	cycles           uint64
}

// CPUOption is a functional option for configuring the CPU.
type CPUOption func(*CPU)

// WithName sets the component name diagnostics are attributed to.
func WithName(name string) CPUOption {
	return func(c *CPU) {
		c.name = name
	}
}

// WithModel selects the processor model by catalog name.
func WithModel(name string) CPUOption {
	return func(c *CPU) {
		c.modelName = name
	}
}

// WithLittleEndian makes the CPU little-endian. The default is big-endian.
func WithLittleEndian() CPUOption {
	return func(c *CPU) {
		c.bigEndian = false
	}
}

// WithSink sets where diagnostics are sent.
func WithSink(sink ui.Sink) CPUOption {
	return func(c *CPU) {
		c.sink = sink
	}
}

// WithSymbols sets the symbol registry used for disassembly and register
// dumps.
func WithSymbols(syms *symbols.Registry) CPUOption {
	return func(c *CPU) {
		c.symbols = syms
	}
}

// WithMemory uses an existing physical memory instead of a fresh one. Its
// byte order must match the CPU's.
func WithMemory(mem *Memory) CPUOption {
	return func(c *CPU) {
		c.memory = mem
	}
}

// WithICache puts an instruction cache in front of memory.
func WithICache(cfg icache.Config) CPUOption {
	return func(c *CPU) {
		c.icacheCfg = &cfg
	}
}

// WithLogger sets the logger used for execution tracing. Cells are traced
// while the logger's level is Trace; the level is checked on every step.
func WithLogger(log logrus.FieldLogger) CPUOption {
	return func(c *CPU) {
		c.logger = log
	}
}

// WithLatency enables cycle accounting with the given latency model.
// Without one every executed instruction costs a single cycle.
func WithLatency(m LatencyModel) CPUOption {
	return func(c *CPU) {
		c.latency = m
	}
}

// NewCPU creates a CPU in its reset state. It fails if the model is unknown
// or the options are inconsistent; no CPU is returned in that case.
func NewCPU(opts ...CPUOption) (*CPU, error) {
	c := &CPU{
		name:      DefaultName,
		modelName: model.DefaultName,
		bigEndian: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	m, err := model.Lookup(c.modelName)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.name, err)
	}
	c.model = m

	if c.symbols == nil {
		c.symbols = symbols.NewRegistry()
	}

	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	c.log = c.logger.WithField("component", c.name)

	if c.sink == nil {
		c.sink = ui.NewLogSink(c.log)
	}

	if c.memory == nil {
		c.memory = NewMemory(c.bigEndian)
	} else if c.memory.BigEndian() != c.bigEndian {
		return nil, fmt.Errorf("creating %s: memory byte order does not match the cpu", c.name)
	}

	if c.icacheCfg != nil {
		if err := c.icacheCfg.Validate(); err != nil {
			return nil, fmt.Errorf("creating %s: %w", c.name, err)
		}
		c.icache = icache.New(*c.icacheCfg, NewMemoryBacking(c.memory))
	}

	c.regFile = NewRegFile(c.bigEndian)
	c.translator = NewTranslator(c.name, m, c.sink)
	c.tcache = NewTranslationCache()
	c.disasm = disasm.New(m, c.bigEndian, c.symbols)
	c.vars = c.newVariables()

	return c, nil
}

func (c *CPU) newVariables() *vars.Registry {
	r := vars.NewRegistry()

	// Names are unique by construction, so Add cannot fail here.
	_ = r.Add("model", vars.ReadOnlyString(c.model.Name))
	_ = r.Add("pc", vars.NewUint64(&c.regFile.PC))
	_ = r.Add("hi", vars.NewUint64(&c.regFile.Hi))
	_ = r.Add("lo", vars.NewUint64(&c.regFile.Lo))
	for i := 0; i < insts.NumGPRs; i++ {
		_ = r.Add(insts.RegName(uint8(i)), vars.NewUint64(&c.regFile.GPR[i]))
	}

	return r
}

// Name returns the component name.
func (c *CPU) Name() string {
	return c.name
}

// Model returns the processor model.
func (c *CPU) Model() model.Model {
	return c.model
}

// RegFile returns the CPU's register file.
func (c *CPU) RegFile() *RegFile {
	return c.regFile
}

// Memory returns the CPU's physical memory.
func (c *CPU) Memory() *Memory {
	return c.memory
}

// ICache returns the instruction cache, or nil if there is none.
func (c *CPU) ICache() *icache.Cache {
	return c.icache
}

// TranslationCache returns the cache of translated cells.
func (c *CPU) TranslationCache() *TranslationCache {
	return c.tcache
}

// Symbols returns the symbol registry.
func (c *CPU) Symbols() *symbols.Registry {
	return c.symbols
}

// Variables returns the CPU's named variables: model, pc, hi, lo and one per
// GPR. They stay bound to the live registers across Reset.
func (c *CPU) Variables() *vars.Registry {
	return c.vars
}

// InstructionCount returns the number of instructions executed since the
// last reset.
func (c *CPU) InstructionCount() uint64 {
	return c.instructionCount
}

// Cycles returns the estimated cycle count since the last reset: the
// execution latency of every instruction plus the instruction cache latency
// of every fetch made for translation.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Reset puts the registers in their reset state and drops all cached
// translations. Memory is left alone.
func (c *CPU) Reset() {
	c.regFile.Reset()
	c.tcache.Clear()
	if c.icache != nil {
		c.icache.Reset()
	}
	c.instructionCount = 0
	c.cycles = 0
}

// PreRunCheck verifies the state is sane before a run.
func (c *CPU) PreRunCheck() error {
	if c.regFile.GPR[insts.RegZero] != 0 {
		c.sink.ShowDebugMessage(c.name, ErrZeroRegister.Error()+".")
		return ErrZeroRegister
	}
	return nil
}

// TranslateAddress maps a virtual address using the CPU's bit width.
func (c *CPU) TranslateAddress(vaddr uint64) (paddr uint64, writable bool, ok bool) {
	return TranslateAddress(vaddr, c.model.Is32Bit())
}

// Disassemble renders the instruction at vaddr from buf.
func (c *CPU) Disassemble(vaddr uint64, buf []byte) (int, []string, error) {
	return c.disasm.Disassemble(vaddr, buf)
}

// DisassembleAt fetches and renders the instruction at vaddr. The fetch
// bypasses the instruction cache.
func (c *CPU) DisassembleAt(vaddr uint64) (int, []string, error) {
	paddr, _, ok := c.TranslateAddress(vaddr &^ 1)
	if !ok {
		return 0, nil, fmt.Errorf("%w: 0x%x", ErrAddressMiss, vaddr)
	}
	return c.Disassemble(vaddr, c.memory.ReadBytes(paddr, insts.Size(vaddr)))
}

// InvalidateCode drops cached translations and instruction cache lines for
// the virtual range [start, end). Call it after modifying code in memory.
func (c *CPU) InvalidateCode(start, end uint64) int {
	n := c.tcache.InvalidateRange(start, end)

	if c.icache != nil && end > start {
		if pstart, _, ok := c.TranslateAddress(start); ok {
			c.icache.InvalidateRange(pstart, pstart+(end-start))
		}
	}

	return n
}

// Step executes one instruction. The PC only advances when the instruction
// executed.
func (c *CPU) Step() error {
	pc := c.regFile.PC

	cell, ok := c.tcache.Lookup(pc)
	if !ok {
		var err error
		cell, err = c.translate(pc)
		if err != nil {
			return err
		}
		c.tcache.Store(pc, cell)
	}

	if err := cell.Execute(c.regFile); err != nil {
		return fmt.Errorf("pc=0x%x: %w", pc, err)
	}

	if c.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		c.log.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%x", pc),
			"cell": cell.String(),
		}).Trace("executed")
	}

	c.regFile.PC = pc + uint64(insts.Size(pc))
	c.instructionCount++
	if c.latency != nil {
		c.cycles += c.latency.GetLatency(cell)
	} else {
		c.cycles++
	}

	return nil
}

// Execute runs up to n instructions and returns how many completed. It
// stops at the first error.
func (c *CPU) Execute(n int) (int, error) {
	if err := c.PreRunCheck(); err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			return i, err
		}
	}

	return n, nil
}

func (c *CPU) translate(pc uint64) (Cell, error) {
	data, err := c.fetch(pc)
	if err != nil {
		return Cell{}, err
	}

	if insts.IsCompressedAddr(pc) {
		return c.translator.Translate16(c.memory.ByteOrder().Uint16(data), pc), nil
	}

	return c.translator.Translate(c.memory.ByteOrder().Uint32(data), pc), nil
}

func (c *CPU) fetch(pc uint64) ([]byte, error) {
	vaddr := pc &^ 1

	paddr, _, ok := c.TranslateAddress(vaddr)
	if !ok {
		return nil, fmt.Errorf("%w: pc=0x%x", ErrAddressMiss, pc)
	}

	size := insts.Size(pc)
	if c.icache != nil {
		result := c.icache.Read(paddr, size)
		c.cycles += result.Latency
		return result.Data, nil
	}

	return c.memory.ReadBytes(paddr, size), nil
}

// ShowRegisters sends a register dump to the sink and returns it.
func (c *CPU) ShowRegisters() string {
	s := c.regFile.Format(c.model.Is32Bit(), c.symbols)
	c.sink.ShowDebugMessage(c.name, s)
	return s
}
