// Package latency provides per-operation timing models for the
// floating-point pipeline.
//
// The latency values are abstract pipeline-depth estimates and can be
// configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/fpsim/arith"
)

// Table provides operation latency lookups.
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

// GetLatency returns the execute-stage latency in ticks for the given
// operation.
func (t *Table) GetLatency(op arith.Opcode) uint64 {
	switch op {
	case arith.OpAdd, arith.OpSub:
		return t.config.AddLatency

	case arith.OpFMAdd, arith.OpFMSub, arith.OpFNMSub, arith.OpFNMAdd:
		return t.config.FMALatency

	case arith.OpCvt:
		return t.config.CvtLatency

	case arith.OpSgnJ, arith.OpSgnJN, arith.OpSgnJX:
		return t.config.SgnJLatency

	default:
		return 1
	}
}

// IsFusedOp returns true if the operation uses the multiplier array.
func (t *Table) IsFusedOp(op arith.Opcode) bool {
	switch op {
	case arith.OpFMAdd, arith.OpFMSub, arith.OpFNMSub, arith.OpFNMAdd:
		return true
	default:
		return false
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
