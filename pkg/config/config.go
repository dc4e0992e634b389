// Package config provides YAML-based configuration loading with environment
// variable expansion and prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	if err := decode(filename, target); err != nil {
		return err
	}
	return validate(target)
}

// LoadOptional is Load for a file that may be absent, in which case target
// keeps its current values. Variables named PREFIX_SECTION_FIELD are applied
// on top of the file when prefix is not empty.
func LoadOptional[T any](filename, prefix string, target *T) error {
	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if err := decode(filename, target); err != nil {
				return err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat config file %s: %w", filename, err)
		}
	}
	if prefix != "" {
		if err := envconfig.Process(prefix, target); err != nil {
			return fmt.Errorf("failed to apply %s_* environment: %w", prefix, err)
		}
	}
	return validate(target)
}

func decode[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

func validate[T any](target *T) error {
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
