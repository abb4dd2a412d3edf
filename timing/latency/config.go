package latency

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// TimingConfig holds the execution latency, in cycles, of every
// instruction kind. The latency is the number of cycles a functional unit
// counts down after reading operands before execution can complete.
type TimingConfig struct {
	// LoadLatency is the latency of LD. Default: 1 cycle.
	LoadLatency uint64 `json:"load_latency" yaml:"load_latency"`

	// StoreLatency is the latency of SD. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency" yaml:"store_latency"`

	// IntegerAddLatency is the latency of DADD. Default: 1 cycle.
	IntegerAddLatency uint64 `json:"integer_add_latency" yaml:"integer_add_latency"`

	// IntegerSubLatency is the latency of DSUB. Default: 1 cycle.
	IntegerSubLatency uint64 `json:"integer_sub_latency" yaml:"integer_sub_latency"`

	// LogicLatency is the latency of AND, OR and XOR. Default: 1 cycle.
	LogicLatency uint64 `json:"logic_latency" yaml:"logic_latency"`

	// FPAddLatency is the latency of ADDD. Default: 2 cycles.
	FPAddLatency uint64 `json:"fp_add_latency" yaml:"fp_add_latency"`

	// FPSubLatency is the latency of SUBD. Default: 2 cycles.
	FPSubLatency uint64 `json:"fp_sub_latency" yaml:"fp_sub_latency"`

	// FPMultiplyLatency is the latency of MULTD. Default: 10 cycles.
	FPMultiplyLatency uint64 `json:"fp_multiply_latency" yaml:"fp_multiply_latency"`

	// FPDivideLatency is the latency of DIVD. Default: 40 cycles.
	FPDivideLatency uint64 `json:"fp_divide_latency" yaml:"fp_divide_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the classic textbook
// latencies.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		LoadLatency:       1,
		StoreLatency:      1,
		IntegerAddLatency: 1,
		IntegerSubLatency: 1,
		LogicLatency:      1,
		FPAddLatency:      2,
		FPSubLatency:      2,
		FPMultiplyLatency: 10,
		FPDivideLatency:   40,
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig loads a TimingConfig from a JSON or YAML file. The format is
// chosen by file extension. Fields missing from the file keep their
// defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON or YAML file.
func (c *TimingConfig) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
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
	checks := []struct {
		name  string
		value uint64
	}{
		{"load_latency", c.LoadLatency},
		{"store_latency", c.StoreLatency},
		{"integer_add_latency", c.IntegerAddLatency},
		{"integer_sub_latency", c.IntegerSubLatency},
		{"logic_latency", c.LogicLatency},
		{"fp_add_latency", c.FPAddLatency},
		{"fp_sub_latency", c.FPSubLatency},
		{"fp_multiply_latency", c.FPMultiplyLatency},
		{"fp_divide_latency", c.FPDivideLatency},
	}
	for _, check := range checks {
		if check.value == 0 {
			return fmt.Errorf("%s must be > 0", check.name)
		}
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
