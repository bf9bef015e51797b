// Package config holds the machine configuration used to build a CPU.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsdyn/emu"
	"github.com/sarchlab/mipsdyn/icache"
	"github.com/sarchlab/mipsdyn/model"
	"github.com/sarchlab/mipsdyn/timing/latency"
)

// MachineConfig describes the CPU to build.
type MachineConfig struct {
	// Model is the processor model name, e.g. "5KE" or "R4400".
	// Default: 5KE.
	Model string `json:"model"`

	// BigEndian selects the byte order. Default: true.
	BigEndian bool `json:"big_endian"`

	// ICache configures the instruction cache. Nil disables it.
	ICache *icache.Config `json:"icache,omitempty"`

	// Timing enables cycle accounting with these latencies. Nil counts one
	// cycle per instruction.
	Timing *latency.TimingConfig `json:"timing,omitempty"`

	// LogLevel is a logrus level name. Default: "info".
	LogLevel string `json:"log_level"`
}

// Default returns the default machine configuration.
func Default() *MachineConfig {
	return &MachineConfig{
		Model:     model.DefaultName,
		BigEndian: true,
		LogLevel:  logrus.InfoLevel.String(),
	}
}

// LoadConfig loads a MachineConfig from a JSON file. Fields missing from the
// file keep their defaults.
func LoadConfig(path string) (*MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse machine config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration to a JSON file.
func (c *MachineConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize machine config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write machine config file: %w", err)
	}

	return nil
}

// Validate checks every section of the configuration.
func (c *MachineConfig) Validate() error {
	if _, err := model.Lookup(c.Model); err != nil {
		return err
	}
	if c.ICache != nil {
		if err := c.ICache.Validate(); err != nil {
			return err
		}
	}
	if c.Timing != nil {
		if err := c.Timing.Validate(); err != nil {
			return fmt.Errorf("timing: %w", err)
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the parsed log level, or info if it does not parse.
func (c *MachineConfig) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Clone returns a deep copy of the MachineConfig.
func (c *MachineConfig) Clone() *MachineConfig {
	clone := *c
	if c.ICache != nil {
		ic := *c.ICache
		clone.ICache = &ic
	}
	if c.Timing != nil {
		clone.Timing = c.Timing.Clone()
	}
	return &clone
}

// CPUOptions translates the configuration into CPU options.
func (c *MachineConfig) CPUOptions() []emu.CPUOption {
	opts := []emu.CPUOption{emu.WithModel(c.Model)}
	if !c.BigEndian {
		opts = append(opts, emu.WithLittleEndian())
	}
	if c.ICache != nil {
		opts = append(opts, emu.WithICache(*c.ICache))
	}
	if c.Timing != nil {
		opts = append(opts, emu.WithLatency(latency.NewTableWithConfig(c.Timing.Clone())))
	}
	return opts
}
