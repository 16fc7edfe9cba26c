package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds execute-stage latency values for the operation
// classes of the floating-point unit.
type TimingConfig struct {
	// AddLatency is the latency for add and subtract operations.
	// Default: 3 ticks (align, add, normalize/round).
	AddLatency uint64 `json:"add_latency"`

	// FMALatency is the latency for fused multiply-add operations.
	// Default: 4 ticks (multiply array adds one stage over add).
	FMALatency uint64 `json:"fma_latency"`

	// CvtLatency is the latency for format conversion operations.
	// Default: 2 ticks.
	CvtLatency uint64 `json:"cvt_latency"`

	// SgnJLatency is the latency for sign-injection operations.
	// Default: 1 tick.
	SgnJLatency uint64 `json:"sgnj_latency"`
}

// DefaultTimingConfig returns a TimingConfig with default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		AddLatency:  3,
		FMALatency:  4,
		CvtLatency:  2,
		SgnJLatency: 1,
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
	if c.AddLatency == 0 {
		return fmt.Errorf("add_latency must be > 0")
	}
	if c.FMALatency == 0 {
		return fmt.Errorf("fma_latency must be > 0")
	}
	if c.CvtLatency == 0 {
		return fmt.Errorf("cvt_latency must be > 0")
	}
	if c.SgnJLatency == 0 {
		return fmt.Errorf("sgnj_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	return &TimingConfig{
		AddLatency:  c.AddLatency,
		FMALatency:  c.FMALatency,
		CvtLatency:  c.CvtLatency,
		SgnJLatency: c.SgnJLatency,
	}
}
