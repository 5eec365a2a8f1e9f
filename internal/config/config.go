// Package config loads pipeline settings from environment variables with
// the GLEANER_ prefix, layered under explicit flag overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Version is the build version, overridable at link time.
var Version = "0.3.0"

// envPrefix namespaces every variable the pipeline reads.
const envPrefix = "GLEANER_"

// Config holds every tunable of an aggregation run.
type Config struct {
	// Root is the artifact tree produced by a maintenance run. data/,
	// logs/ and processed/ live underneath it.
	Root string `koanf:"root" validate:"required"`

	// OutputDir overrides the default <root>/processed export location.
	OutputDir string `koanf:"output_dir"`

	// BatchSize caps how many artifacts one batch submits at a time.
	BatchSize int `koanf:"batch_size" validate:"gt=0"`

	// Workers bounds concurrent artifact analysis.
	Workers int `koanf:"workers" validate:"gt=0"`

	// Timeout bounds the whole run.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	Quiet    bool   `koanf:"quiet"`

	// Pretty indents exported JSON documents.
	Pretty bool `koanf:"pretty"`

	// EmitMetrics writes a Prometheus textfile alongside the JSON exports.
	EmitMetrics bool `koanf:"emit_metrics"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Root:        ".",
		BatchSize:   50,
		Workers:     4,
		Timeout:     2 * time.Minute,
		LogLevel:    "info",
		EmitMetrics: true,
	}
}

// Load builds a Config from defaults overlaid with GLEANER_* environment
// variables. Flag overrides are applied by the caller before Validate.
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Validate checks the assembled configuration once all overrides are in.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DataDir is where module audit snapshots are read from.
func (c *Config) DataDir() string { return filepath.Join(c.Root, "data") }

// LogsDir is where module execution logs are read from.
func (c *Config) LogsDir() string { return filepath.Join(c.Root, "logs") }

// ProcessedDir is where exported documents are written.
func (c *Config) ProcessedDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return filepath.Join(c.Root, "processed")
}
