// Package model describes the MIPS processor models the CPU core can emulate.
//
// A Model is looked up once, by name, from a fixed catalog when a CPU is
// constructed and never changes afterwards. It decides which instructions may
// legally be translated (ISA level and revision), whether the CPU runs in
// 32-bit or 64-bit mode, and which variant-specific opcode meanings apply.
//
// Usage:
//
//	m, err := model.Lookup("R4400")
//	if err != nil { ... }
//	fmt.Println(m.ISALevel, m.Is32Bit())
package model

import (
	"errors"
	"fmt"
)

// DefaultName is the model used when none is configured. 5KE implements
// MIPS64 revision 2.
const DefaultName = "5KE"

// ErrUnknownModel is returned when a model name is not in the catalog.
var ErrUnknownModel = errors.New("unknown MIPS model")

// Variant selects alternate meanings for encodings that some processor
// families reuse.
type Variant uint8

// Processor variants.
const (
	VariantStandard Variant = iota
	VariantR5900            // Emotion Engine: lq/sq, mfsa/mtsa, 3-operand mult
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantStandard:
		return "standard"
	case VariantR5900:
		return "R5900"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

// Model is one catalog record.
type Model struct {
	Name        string
	ISALevel    int // 1, 2, 3, 4, 32 or 64
	ISARevision int // 1 or 2; meaningful for MIPS32/MIPS64
	Variant     Variant
}

// Is32Bit reports whether the model only has 32-bit registers.
func (m Model) Is32Bit() bool {
	return m.ISALevel == 32 || m.ISALevel <= 2
}

// Is64Bit reports whether the model has 64-bit registers.
func (m Model) Is64Bit() bool {
	return !m.Is32Bit()
}

// String returns a short human-readable description of the model.
func (m Model) String() string {
	switch m.ISALevel {
	case 32, 64:
		return fmt.Sprintf("%s (MIPS%d rev %d)", m.Name, m.ISALevel, m.ISARevision)
	default:
		return fmt.Sprintf("%s (MIPS %s)", m.Name, roman(m.ISALevel))
	}
}

func roman(level int) string {
	switch level {
	case 1:
		return "I"
	case 2:
		return "II"
	case 3:
		return "III"
	case 4:
		return "IV"
	default:
		return fmt.Sprint(level)
	}
}

var catalog = []Model{
	{"R2000", 1, 1, VariantStandard},
	{"R2000A", 1, 1, VariantStandard},
	{"R3000", 1, 1, VariantStandard},
	{"R3000A", 1, 1, VariantStandard},
	{"TX3920", 1, 1, VariantStandard},
	{"R6000", 2, 1, VariantStandard},
	{"R4000", 3, 1, VariantStandard},
	{"R4000PC", 3, 1, VariantStandard},
	{"R4200", 3, 1, VariantStandard},
	{"R4300", 3, 1, VariantStandard},
	{"R4400", 3, 1, VariantStandard},
	{"R4600", 3, 1, VariantStandard},
	{"R4650", 3, 1, VariantStandard},
	{"R4700", 3, 1, VariantStandard},
	{"VR4102", 3, 1, VariantStandard},
	{"VR4121", 3, 1, VariantStandard},
	{"VR4122", 3, 1, VariantStandard},
	{"VR4131", 3, 1, VariantStandard},
	{"VR4181", 3, 1, VariantStandard},
	{"R5900", 3, 1, VariantR5900},
	{"R5000", 4, 1, VariantStandard},
	{"R8000", 4, 1, VariantStandard},
	{"R10000", 4, 1, VariantStandard},
	{"R12000", 4, 1, VariantStandard},
	{"R14000", 4, 1, VariantStandard},
	{"VR5432", 4, 1, VariantStandard},
	{"RM5200", 4, 1, VariantStandard},
	{"RM7000", 4, 1, VariantStandard},
	{"RM9000", 4, 1, VariantStandard},
	{"4Kc", 32, 1, VariantStandard},
	{"4KEc", 32, 2, VariantStandard},
	{"BCM4710", 32, 1, VariantStandard},
	{"BCM4712", 32, 1, VariantStandard},
	{"AU1000", 32, 1, VariantStandard},
	{"AU1500", 32, 1, VariantStandard},
	{"5Kc", 64, 1, VariantStandard},
	{"5KE", 64, 2, VariantStandard},
	{"20Kc", 64, 1, VariantStandard},
	{"SB1", 64, 1, VariantStandard},
}

// Catalog returns a copy of the ordered model catalog.
func Catalog() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a model by exact name.
func Lookup(name string) (Model, error) {
	for _, m := range catalog {
		if m.Name == name {
			return m, nil
		}
	}
	return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

// Default returns the catalog entry for DefaultName.
func Default() Model {
	m, err := Lookup(DefaultName)
	if err != nil {
		panic(err)
	}
	return m
}
