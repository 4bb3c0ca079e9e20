package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioConfig overrides the run-mlda scenario's built-in damped-oscillator
// defaults from a YAML file, mirroring a calibration file a practitioner
// would hand-tune per inverse problem instead of recompiling the binary.
type ScenarioConfig struct {
	PriorMean      []float64 `yaml:"prior_mean"`
	PriorVariance  float64   `yaml:"prior_variance"`
	Data           []float64 `yaml:"data"`
	NoiseVariance  float64   `yaml:"noise_variance"`
	ObservationDts []float64 `yaml:"observation_times"`
	CoarseStep     float64   `yaml:"coarse_step"`
	FineStep       float64   `yaml:"fine_step"`
}

// loadScenarioConfig parses a scenario file with strict field checking: an
// unrecognized key is a typo, not a silently-ignored override.
func loadScenarioConfig(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario config %q: %w", path, err)
	}

	var cfg ScenarioConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario config %q: %w", path, err)
	}
	return &cfg, nil
}
