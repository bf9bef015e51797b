package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for the translated operation classes.
// Values follow a classic in-order MIPS pipeline.
type TimingConfig struct {
	// ALULatency is the execution latency for add, logical and set
	// operations. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// ShiftLatency is the latency for shifts and rotates. Default: 1 cycle.
	ShiftLatency uint64 `json:"shift_latency"`

	// HiLoLatency is the latency for mfhi/mflo/mthi/mtlo. Default: 1 cycle.
	HiLoLatency uint64 `json:"hilo_latency"`

	// MultiplyLatency is the latency for 32-bit multiplies. Default: 5 cycles.
	MultiplyLatency uint64 `json:"multiply_latency"`

	// Multiply64Latency is the latency for dmult/dmultu. Default: 9 cycles.
	Multiply64Latency uint64 `json:"multiply64_latency"`

	// DivideLatency is the latency for 32-bit divides. Default: 36 cycles.
	DivideLatency uint64 `json:"divide_latency"`

	// Divide64Latency is the latency for ddiv/ddivu. Default: 68 cycles.
	Divide64Latency uint64 `json:"divide64_latency"`
}

// DefaultTimingConfig returns a TimingConfig with default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:        1,
		ShiftLatency:      1,
		HiLoLatency:       1,
		MultiplyLatency:   5,
		Multiply64Latency: 9,
		DivideLatency:     36,
		Divide64Latency:   68,
	}
}

// LoadConfig loads a TimingConfig from a JSON file.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.ShiftLatency == 0 {
		return fmt.Errorf("shift_latency must be > 0")
	}
	if c.HiLoLatency == 0 {
		return fmt.Errorf("hilo_latency must be > 0")
	}
	if c.MultiplyLatency == 0 || c.Multiply64Latency == 0 {
		return fmt.Errorf("multiply latencies must be > 0")
	}
	if c.DivideLatency == 0 || c.Divide64Latency == 0 {
		return fmt.Errorf("divide latencies must be > 0")
	}
	if c.MultiplyLatency > c.Multiply64Latency {
		return fmt.Errorf("multiply_latency must be <= multiply64_latency")
	}
	if c.DivideLatency > c.Divide64Latency {
		return fmt.Errorf("divide_latency must be <= divide64_latency")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
