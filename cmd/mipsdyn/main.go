// Package main provides the mipsdyn command line driver. It loads a MIPS ELF
// executable and either disassembles it or runs it on the translating core.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	getopt "github.com/pborman/getopt/v2"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsdyn/config"
	"github.com/sarchlab/mipsdyn/emu"
	"github.com/sarchlab/mipsdyn/loader"
	"github.com/sarchlab/mipsdyn/symbols"
)

type options struct {
	configPath  string
	modelName   string
	disassemble int
	cycles      int
	verbose     bool
	program     string
}

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Machine configuration JSON file")
	optModel := getopt.StringLong("model", 'm', "", "Processor model (overrides the config file)")
	optDisasm := getopt.IntLong("disassemble", 'd', 0, "Disassemble N instructions from the entry point")
	optCycles := getopt.IntLong("cycles", 'n', 1000, "Run at most N instructions")
	optVerbose := getopt.BoolLong("verbose", 'v', "Trace every executed instruction")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("program.elf")
	getopt.Parse()

	if *optHelp || getopt.NArgs() != 1 {
		getopt.Usage()
		os.Exit(1)
	}

	opts := options{
		configPath:  *optConfig,
		modelName:   *optModel,
		disassemble: *optDisasm,
		cycles:      *optCycles,
		verbose:     *optVerbose,
		program:     getopt.Arg(0),
	}

	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "mipsdyn: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, out, logOut io.Writer) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(logOut)
	log.SetLevel(cfg.Level())

	prog, err := loader.Load(opts.program)
	if err != nil {
		return fmt.Errorf("loading %s: %w", opts.program, err)
	}

	log.WithFields(logrus.Fields{
		"entry":    fmt.Sprintf("0x%x", prog.EntryPoint),
		"segments": len(prog.Segments),
		"symbols":  len(prog.Symbols),
	}).Info("loaded program")

	if prog.BigEndian != cfg.BigEndian {
		log.Warn("using the program's byte order instead of the configured one")
		cfg.BigEndian = prog.BigEndian
	}

	cpu, err := newCPU(cfg, prog, log)
	if err != nil {
		return err
	}

	if opts.disassemble > 0 {
		return disassemble(cpu, prog.EntryPoint, opts.disassemble, out)
	}

	runErr := execute(cpu, opts.cycles, out)
	printStats(cpu, out)

	return runErr
}

func buildConfig(opts options) (*config.MachineConfig, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.modelName != "" {
		cfg.Model = opts.modelName
	}
	if opts.verbose {
		cfg.LogLevel = logrus.TraceLevel.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine config: %w", err)
	}

	return cfg, nil
}

func newCPU(cfg *config.MachineConfig, prog *loader.Program, log logrus.FieldLogger) (*emu.CPU, error) {
	syms := symbols.NewRegistry()
	prog.AddSymbols(syms)

	mem := emu.NewMemory(cfg.BigEndian)

	opts := append(cfg.CPUOptions(),
		emu.WithMemory(mem),
		emu.WithSymbols(syms),
		emu.WithLogger(log),
	)

	cpu, err := emu.NewCPU(opts...)
	if err != nil {
		return nil, err
	}

	if err := prog.LoadInto(mem, cpu.Model().Is32Bit()); err != nil {
		return nil, err
	}

	cpu.RegFile().PC = prog.EntryPoint

	return cpu, nil
}

func disassemble(cpu *emu.CPU, start uint64, n int, out io.Writer) error {
	addrFormat := "%016x"
	if cpu.Model().Is32Bit() {
		addrFormat = "%08x"
	}

	pc := start
	for i := 0; i < n; i++ {
		size, tokens, err := cpu.DisassembleAt(pc)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, addrFormat+":  %s\n", pc&addrMask(cpu), strings.Join(tokens, "\t"))
		pc += uint64(size)
	}

	return nil
}

func addrMask(cpu *emu.CPU) uint64 {
	if cpu.Model().Is32Bit() {
		return 0xffffffff
	}
	return ^uint64(0)
}

// execute runs the program and reports why it stopped. Reaching an
// untranslated instruction is a normal way for a run to end.
func execute(cpu *emu.CPU, n int, out io.Writer) error {
	done, err := cpu.Execute(n)

	switch {
	case err == nil:
		fmt.Fprintf(out, "stopped after %d instructions\n", done)
	case errors.Is(err, emu.ErrUnimplementedInstruction):
		fmt.Fprintf(out, "stopped after %d instructions: %v\n", done, err)
		err = nil
	default:
		return err
	}

	fmt.Fprint(out, cpu.RegFile().Format(cpu.Model().Is32Bit(), cpu.Symbols()))

	return err
}

func printStats(cpu *emu.CPU, out io.Writer) {
	fmt.Fprintf(out, "\nInstructions executed: %d\n", cpu.InstructionCount())
	fmt.Fprintf(out, "Estimated cycles: %d\n", cpu.Cycles())

	tc := cpu.TranslationCache().Stats()
	fmt.Fprintf(out, "Translation cache: %d cells, %d hits, %d misses\n", tc.Entries, tc.Hits, tc.Misses)

	if ic := cpu.ICache(); ic != nil {
		s := ic.Stats()
		fmt.Fprintf(out, "Instruction cache: %d reads, %d hits, %d misses, %d evictions\n",
			s.Reads, s.Hits, s.Misses, s.Evictions)
	}
}
