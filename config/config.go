// Package config carries the compiler's configuration as a value injected
// into the Frontend, ModelModifier, and Synthesizer (never a global).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Target selects the emitted code's execution model.
type Target string

const (
	TargetScalar Target = "scalar"
	TargetCUDA   Target = "cuda"
)

// Config is the CLI-flag carrier described in spec §6.
type Config struct {
	InputPath                string `yaml:"inputPath"`
	HeaderOutputPath         string `yaml:"headerOutputPath"`
	ImplementationOutputPath string `yaml:"implementationOutputPath"`
	Target                   Target `yaml:"target"`
	Verbose                  bool   `yaml:"verbose"`
	UseSharedMemory          bool   `yaml:"useSharedMemory"`
	WatchdogTimeout          bool   `yaml:"watchdogTimeout"`
	DumpPath                 string `yaml:"dumpPath"`

	// ExperimentalPipelineStages gates the pipeline-stage segregation pass
	// (spec §4.2's "(experimental)" bullet / §9's SynthesizerExperimental).
	ExperimentalPipelineStages bool `yaml:"experimentalPipelineStages"`
}

// DefaultConfig mirrors inspector/info.DefaultConfig's role: sane baseline
// values a caller can selectively override.
func DefaultConfig() *Config {
	return &Config{
		Target: TargetScalar,
	}
}

// Load reads YAML defaults from path (if non-empty) into a fresh Config
// seeded from DefaultConfig. CLI flags are expected to be applied by the
// caller on top of the returned Config, so flags always win over the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
