// Package latency provides per-operation timing for translated cells.
//
// The latency values can be configured via TimingConfig. A Table plugs into
// the CPU with emu.WithLatency.
package latency

import (
	"github.com/sarchlab/mipsdyn/emu"
)

// Table provides cell latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given cell.
// Invalid cells never execute and cost nothing.
func (t *Table) GetLatency(cell emu.Cell) uint64 {
	switch {
	case !cell.Valid():
		return 0
	case t.IsDivideOp(cell):
		if is64(cell.Op) {
			return t.config.Divide64Latency
		}
		return t.config.DivideLatency
	case t.IsMultiplyOp(cell):
		if is64(cell.Op) {
			return t.config.Multiply64Latency
		}
		return t.config.MultiplyLatency
	case t.IsHiLoOp(cell):
		return t.config.HiLoLatency
	case t.IsShiftOp(cell):
		return t.config.ShiftLatency
	default:
		return t.config.ALULatency
	}
}

// IsMultiplyOp returns true for multiplies, including the R5900 forms.
func (t *Table) IsMultiplyOp(cell emu.Cell) bool {
	switch cell.Op {
	case emu.OpMult32, emu.OpMultU32, emu.OpMult64, emu.OpMultU64,
		emu.OpMult32ToGPR, emu.OpMultU32ToGPR:
		return true
	default:
		return false
	}
}

// IsDivideOp returns true for divides.
func (t *Table) IsDivideOp(cell emu.Cell) bool {
	switch cell.Op {
	case emu.OpDiv32, emu.OpDivU32, emu.OpDiv64, emu.OpDivU64:
		return true
	default:
		return false
	}
}

// IsHiLoOp returns true for transfers to and from hi/lo.
func (t *Table) IsHiLoOp(cell emu.Cell) bool {
	switch cell.Op {
	case emu.OpMoveFromHi, emu.OpMoveFromLo, emu.OpMoveToHi, emu.OpMoveToLo:
		return true
	default:
		return false
	}
}

// IsShiftOp returns true for shifts and rotates.
func (t *Table) IsShiftOp(cell emu.Cell) bool {
	return cell.Op >= emu.OpShiftLeft32 && cell.Op <= emu.OpRotateRightVar64
}

func is64(op emu.OperationID) bool {
	switch op {
	case emu.OpMult64, emu.OpMultU64, emu.OpDiv64, emu.OpDivU64:
		return true
	default:
		return false
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
