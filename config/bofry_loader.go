package config

import (
	"fmt"
	"os"
	"strings"

	bofryconfig "github.com/Bofry/config"
)

// BofryLoader loads configuration through Bofry/config. Sources are applied
// in order: defaults, YAML file, .env file, environment. Missing files are
// skipped.
type BofryLoader struct {
	yamlFile   string
	dotEnvFile string
	envPrefix  string
}

// NewBofryLoader creates a new Bofry configuration loader
func NewBofryLoader() *BofryLoader {
	return &BofryLoader{
		envPrefix: DefaultEnvPrefix,
	}
}

// WithYAMLFile sets the YAML configuration file path
func (l *BofryLoader) WithYAMLFile(path string) *BofryLoader {
	l.yamlFile = path
	return l
}

// WithDotEnvFile sets the .env file path
func (l *BofryLoader) WithDotEnvFile(path string) *BofryLoader {
	l.dotEnvFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix
func (l *BofryLoader) WithEnvPrefix(prefix string) *BofryLoader {
	l.envPrefix = prefix
	return l
}

// Load fills cfg and validates it
func (l *BofryLoader) Load(cfg *Config) error {
	*cfg = *DefaultConfig()

	if err := l.loadSources(cfg); err != nil {
		return err
	}

	// Bofry only resolves flat names; nested sections are bound explicitly
	if err := applyEnv(cfg, l.envPrefix); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	return cfg.Validate()
}

// loadSources runs the configuration service over the files and the
// environment. The service reports failures by panicking.
func (l *BofryLoader) loadSources(cfg *Config) (err error) {
	yamlFile, err := existingFile(l.yamlFile)
	if err != nil {
		return err
	}
	dotEnvFile, err := existingFile(l.dotEnvFile)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if cause, ok := r.(error); ok {
				err = fmt.Errorf("failed to load configuration: %w", cause)
			} else {
				err = fmt.Errorf("failed to load configuration: %v", r)
			}
		}
	}()

	svc := bofryconfig.NewConfigurationService(cfg)
	if yamlFile != "" {
		svc.LoadYamlFile(yamlFile)
	}
	if dotEnvFile != "" {
		svc.LoadDotEnvFile(dotEnvFile)
	}
	svc.LoadEnvironmentVariables(strings.TrimSuffix(l.envPrefix, "_"))
	return nil
}

// existingFile returns path when it exists and "" when it does not
func existingFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to check %s: %w", path, err)
	}
	return path, nil
}
