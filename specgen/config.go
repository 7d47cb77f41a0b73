package specgen

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = ".tspec.yaml"

// Config is the generator configuration file.
type Config struct {
	Name string `yaml:"name"`
	// Omit maps a function id to the names left out of its post-condition.
	// "this" and "ret" name the receiver and the return value.
	Omit map[string][]string `yaml:"omit"`
	// Globals are identifiers accepted by capture analysis without a declaration.
	Globals []string `yaml:"globals"`
}

func DefaultConfig() Config {
	return Config{
		Name:    "tspec",
		Omit:    map[string][]string{},
		Globals: []string{},
	}
}

// ParseConfig reads the configuration at path. An empty path, or a missing
// file at the default path, yields the default configuration.
func ParseConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}
	if config.Omit == nil {
		config.Omit = map[string][]string{}
	}
	return config, nil
}

// WriteConfig writes a configuration skeleton to path.
func WriteConfig(path string) error {
	if path == "" {
		path = DefaultConfigPath
	}
	d, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
