package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/evolution"
)

// Settings is the full configuration for an evolution run: the engine
// parameters, the convergence policy and the ambient concerns around them.
type Settings struct {
	Engine      evolution.Config  `yaml:"engine" json:"engine"`
	Convergence ConvergenceConfig `yaml:"convergence" json:"convergence"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
	Storage     StorageConfig     `yaml:"storage" json:"storage"`
}

// ConvergenceConfig controls when an evolution run stops.
type ConvergenceConfig struct {
	MaxGenerations   int     `yaml:"max_generations" json:"max_generations" validate:"min=1"`
	FitnessThreshold float64 `yaml:"fitness_threshold" json:"fitness_threshold"`
	Patience         int     `yaml:"patience" json:"patience" validate:"min=1"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`
	Color bool   `yaml:"color" json:"color"`
}

// StorageConfig controls report archiving. An empty path disables it.
type StorageConfig struct {
	Path string `yaml:"path" json:"path"`
}

// DefaultSettings returns a runnable configuration: default engine
// parameters, a 50-generation cap with patience 10, INFO logging and no
// report archive.
func DefaultSettings() *Settings {
	return &Settings{
		Engine: *evolution.DefaultConfig(),
		Convergence: ConvergenceConfig{
			MaxGenerations:   50,
			FitnessThreshold: 0.95,
			Patience:         10,
		},
		Logging: LoggingConfig{
			Level: "INFO",
			Color: true,
		},
	}
}

// Load reads settings from a YAML file, merges them over the defaults and
// validates the result.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path})
	}
	return Parse(data)
}

// Parse decodes YAML settings, merges them over the defaults and validates
// the result.
func Parse(data []byte) (*Settings, error) {
	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to parse config")
	}

	if err := Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}
