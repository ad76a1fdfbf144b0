// Package config provides configuration management for ghaworkflow with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithFlags)
//  2. Environment variables (GHAWORKFLOW_* prefix)
//  3. Project config (.ghaworkflow/config.yaml)
//  4. Global config (~/.ghaworkflow/config.yaml, or $GHAWORKFLOW_HOME/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants, internal/errors and
// internal/decode, but MUST NOT import internal/workflow or the CLI.
package config

import "github.com/mrz1836/ghaworkflow/internal/decode"

// Config is the root configuration structure for ghaworkflow.
type Config struct {
	// Decode contains the settings passed to every workflow decode.
	Decode DecodeConfig `yaml:"decode" mapstructure:"decode"`

	// Log contains settings for the CLI log sinks.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Concurrency is how many workflow files are decoded at once.
	// Default: 8, Valid range: 1-256
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// DecodeConfig contains decoder settings.
type DecodeConfig struct {
	// UnknownFields selects what happens to keys a workflow schema does not
	// declare: "strict" fails the decode, "lenient" ignores them.
	// Default: strict
	UnknownFields decode.Policy `yaml:"unknown_fields" mapstructure:"unknown_fields"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// File enables the rotating log file under the ghaworkflow home directory.
	// Default: false
	File bool `yaml:"file" mapstructure:"file"`
}

// DecodeOptions returns the options for decode calls.
func (c *Config) DecodeOptions() decode.Options {
	return decode.Options{UnknownFields: c.Decode.UnknownFields}
}
