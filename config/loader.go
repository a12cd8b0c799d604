package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix prefixes every environment variable read by the loaders
const DefaultEnvPrefix = "TURBOHTTP_"

// SimpleLoader reads defaults, then a YAML file, then the environment. It
// needs nothing beyond yaml.v3 and suits tests and embedded use.
type SimpleLoader struct {
	yamlFile  string
	envPrefix string
}

// NewSimpleLoader creates a loader using DefaultEnvPrefix
func NewSimpleLoader() *SimpleLoader {
	return &SimpleLoader{envPrefix: DefaultEnvPrefix}
}

// WithYAMLFile sets the YAML file. A missing file is skipped.
func (l *SimpleLoader) WithYAMLFile(path string) *SimpleLoader {
	l.yamlFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix
func (l *SimpleLoader) WithEnvPrefix(prefix string) *SimpleLoader {
	l.envPrefix = prefix
	return l
}

// Load fills cfg and validates it
func (l *SimpleLoader) Load(cfg *Config) error {
	*cfg = *DefaultConfig()

	if l.yamlFile != "" {
		data, err := os.ReadFile(l.yamlFile)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return fmt.Errorf("failed to read YAML config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}

	if err := applyEnv(cfg, l.envPrefix); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	return cfg.Validate()
}
