// Package latency provides the execution latency of every instruction kind.
//
// The default values are the classic textbook scoreboard latencies and can
// be configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/scoreboard/insts"
)

// Table provides instruction latency lookups.
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

// GetLatency returns the execution latency in cycles for the given op.
// Unknown ops take 1 cycle.
func (t *Table) GetLatency(op insts.Op) uint64 {
	switch op {
	case insts.OpLD:
		return t.config.LoadLatency
	case insts.OpSD:
		return t.config.StoreLatency
	case insts.OpDADD:
		return t.config.IntegerAddLatency
	case insts.OpDSUB:
		return t.config.IntegerSubLatency
	case insts.OpAND, insts.OpOR, insts.OpXOR:
		return t.config.LogicLatency
	case insts.OpADDD:
		return t.config.FPAddLatency
	case insts.OpSUBD:
		return t.config.FPSubLatency
	case insts.OpMULTD:
		return t.config.FPMultiplyLatency
	case insts.OpDIVD:
		return t.config.FPDivideLatency
	default:
		return 1
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
