// Package config provides configuration loading and management for saladbar.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Tezigudo/SaladBarOntology/aggregate"
	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/query"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// Config represents the complete saladbar configuration
type Config struct {
	Ontology     OntologyConfig  `yaml:"ontology"`
	Declarations []string        `yaml:"declarations"`
	Aggregate    AggregateConfig `yaml:"aggregate"`
	Repair       RepairConfig    `yaml:"repair"`
	Query        QueryConfig     `yaml:"query"`
	Metrics      MetricsConfig   `yaml:"metrics"`
	Log          LogConfig       `yaml:"log"`
}

// OntologyConfig locates the graph file
type OntologyConfig struct {
	// Path is the ontology file to read
	Path string `yaml:"path"`
	// Format is the input format (empty = detect from extension)
	Format string `yaml:"format"`
	// Output is where the updated graph is written (empty = Path when writable)
	Output string `yaml:"output"`
	// OutputFormat is the output format (default: turtle)
	OutputFormat string `yaml:"output_format"`
	// Namespace is the base IRI used when exporting
	Namespace string `yaml:"namespace"`
}

// AggregateConfig configures nutrient aggregation
type AggregateConfig struct {
	// UnknownUnitPolicy is scale-one or skip
	UnknownUnitPolicy string `yaml:"unknown_unit_policy"`
}

// RepairConfig configures the unit repair stage
type RepairConfig struct {
	NormalizeUnits bool `yaml:"normalize_units"`
}

// QueryConfig configures the competency questions
type QueryConfig struct {
	// Thresholds override the built-in per-substance level thresholds
	Thresholds map[string]ThresholdConfig `yaml:"thresholds"`
}

// ThresholdConfig is the High/Low boundary of one substance total
type ThresholdConfig struct {
	High float64 `yaml:"high"`
	Low  float64 `yaml:"low"`
}

// MetricsConfig configures the prometheus textfile
type MetricsConfig struct {
	// File is the textfile path (empty = disabled)
	File string `yaml:"file"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ontology: OntologyConfig{
			Path:         "salad-bar-ontology.rdf",
			OutputFormat: string(graph.FormatTurtle),
			Namespace:    salad.Namespace,
		},
		Aggregate: AggregateConfig{
			UnknownUnitPolicy: string(aggregate.PolicyScaleOne),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Ontology.Path == "" {
		return fmt.Errorf("ontology.path is required")
	}
	if c.Ontology.Namespace == "" {
		return fmt.Errorf("ontology.namespace is required")
	}
	if c.Ontology.Format != "" {
		if _, err := graph.ParseFormat(c.Ontology.Format); err != nil {
			return fmt.Errorf("ontology.format: %w", err)
		}
	}
	if c.Ontology.OutputFormat != "" {
		f, err := graph.ParseFormat(c.Ontology.OutputFormat)
		if err != nil {
			return fmt.Errorf("ontology.output_format: %w", err)
		}
		if !f.Writable() {
			return fmt.Errorf("ontology.output_format %s is read-only", f)
		}
	}
	if _, err := aggregate.ParseUnitPolicy(c.Aggregate.UnknownUnitPolicy); err != nil {
		return fmt.Errorf("aggregate.unknown_unit_policy: %w", err)
	}
	for name, th := range c.Query.Thresholds {
		if th.Low > th.High {
			return fmt.Errorf("query.thresholds.%s: low %g exceeds high %g", name, th.Low, th.High)
		}
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// Thresholds returns the built-in thresholds with the configured overrides
// applied.
func (c *Config) Thresholds() map[string]query.Threshold {
	out := query.DefaultThresholds()
	for name, th := range c.Query.Thresholds {
		out[name] = query.Threshold{High: th.High, Low: th.Low}
	}
	return out
}

// UnitPolicy returns the parsed aggregation policy.
func (c *Config) UnitPolicy() aggregate.UnitPolicy {
	p, err := aggregate.ParseUnitPolicy(c.Aggregate.UnknownUnitPolicy)
	if err != nil {
		return aggregate.PolicyScaleOne
	}
	return p
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// loadLayer reads one configuration layer without defaults, so merging it
// only overrides the values the file sets.
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	layer := &Config{}
	if err := yaml.Unmarshal(data, layer); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return layer, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Ontology
	if other.Ontology.Path != "" {
		c.Ontology.Path = other.Ontology.Path
	}
	if other.Ontology.Format != "" {
		c.Ontology.Format = other.Ontology.Format
	}
	if other.Ontology.Output != "" {
		c.Ontology.Output = other.Ontology.Output
	}
	if other.Ontology.OutputFormat != "" {
		c.Ontology.OutputFormat = other.Ontology.OutputFormat
	}
	if other.Ontology.Namespace != "" {
		c.Ontology.Namespace = other.Ontology.Namespace
	}

	if len(other.Declarations) > 0 {
		c.Declarations = other.Declarations
	}
	if other.Aggregate.UnknownUnitPolicy != "" {
		c.Aggregate.UnknownUnitPolicy = other.Aggregate.UnknownUnitPolicy
	}
	// Repair can only be switched on by a later layer.
	if other.Repair.NormalizeUnits {
		c.Repair.NormalizeUnits = true
	}

	// Thresholds merge per substance
	for name, th := range other.Query.Thresholds {
		if c.Query.Thresholds == nil {
			c.Query.Thresholds = make(map[string]ThresholdConfig)
		}
		c.Query.Thresholds[name] = th
	}

	if other.Metrics.File != "" {
		c.Metrics.File = other.Metrics.File
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
