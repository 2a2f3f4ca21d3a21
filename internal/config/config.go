// Package config loads the dataprobe YAML file and resolves the connection
// string from an ordered chain of providers.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
)

// DefaultFile is picked up from the working directory when --config is not given.
const DefaultFile = "dataprobe.yaml"

// SourceTypes are the accepted values of source.type.
var SourceTypes = []string{"mysql", "postgres", "pq", "sqlite"}

type Config struct {
	Source SourceConfig  `yaml:"source"`
	Sample SampleConfig  `yaml:"sample"`
	Tables []TableConfig `yaml:"tables"`
}

type SourceConfig struct {
	Type    string        `yaml:"type"`
	DSN     string        `yaml:"dsn"`
	Schema  string        `yaml:"schema"`
	Timeout time.Duration `yaml:"timeout"`
}

type SampleConfig struct {
	Table string `yaml:"table"`
	Limit int    `yaml:"limit"`
}

// TableConfig is an expectation checked by `dataprobe check`: the table must
// exist and carry at least the listed columns.
type TableConfig struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: config path is required", source.ErrConfiguration)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config file: %w", source.ErrConfiguration, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse config: %w", source.ErrConfiguration, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", source.ErrConfiguration, path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Source.Type != "" && !slices.Contains(SourceTypes, c.Source.Type) {
		return fmt.Errorf("source.type must be one of %v, got %q", SourceTypes, c.Source.Type)
	}
	if c.Source.Timeout < 0 {
		return errors.New("source.timeout must not be negative")
	}
	if c.Sample.Limit < 0 {
		return errors.New("sample.limit must not be negative")
	}
	seen := make(map[string]bool, len(c.Tables))
	for _, table := range c.Tables {
		if table.Name == "" {
			return errors.New("table.name is required")
		}
		if seen[table.Name] {
			return fmt.Errorf("table %s is listed twice", table.Name)
		}
		seen[table.Name] = true
		for _, col := range table.Columns {
			if col == "" {
				return fmt.Errorf("table %s has an empty column name", table.Name)
			}
		}
	}
	return nil
}
