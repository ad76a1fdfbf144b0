package config

import (
	"github.com/mrz1836/ghaworkflow/internal/constants"
	"github.com/mrz1836/ghaworkflow/internal/decode"
)

// DefaultConfig returns a new Config with default values. These are the
// base layer that config files, environment variables and flags override.
func DefaultConfig() *Config {
	return &Config{
		Decode: DecodeConfig{
			UnknownFields: decode.Strict,
		},
		Log: LogConfig{
			File: false,
		},
		Concurrency: constants.DefaultConcurrency,
	}
}
