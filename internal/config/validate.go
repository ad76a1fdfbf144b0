package config

import (
	"github.com/mrz1836/ghaworkflow/internal/constants"
	"github.com/mrz1836/ghaworkflow/internal/decode"
	"github.com/mrz1836/ghaworkflow/internal/errors"
)

// Validate checks the configuration for invalid values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - decode.unknown_fields must be strict or lenient
//   - concurrency must be between 1 and 256
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	switch cfg.Decode.UnknownFields {
	case decode.Strict, decode.Lenient:
	default:
		return errors.Wrapf(errors.ErrInvalidPolicy,
			"decode.unknown_fields must be strict or lenient, got %s", cfg.Decode.UnknownFields)
	}

	if cfg.Concurrency < 1 || cfg.Concurrency > constants.MaxConcurrency {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"concurrency must be between 1 and %d, got %d", constants.MaxConcurrency, cfg.Concurrency)
	}

	return nil
}
