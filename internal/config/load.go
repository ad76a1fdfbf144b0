package config

import (
	"context"
	stderrors "errors"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mrz1836/ghaworkflow/internal/constants"
	"github.com/mrz1836/ghaworkflow/internal/decode"
	"github.com/mrz1836/ghaworkflow/internal/errors"
)

// flagKeys maps CLI flag names to configuration keys.
//
//nolint:gochecknoglobals // Read-only lookup table
var flagKeys = map[string]string{
	"unknown-fields": "decode.unknown_fields",
	"concurrency":    "concurrency",
	"log-file":       "log.file",
}

// newViperInstance creates a new Viper instance with the standard
// environment prefix (GHAWORKFLOW_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (GHAWORKFLOW_* prefix)
//  2. Project config (.ghaworkflow/config.yaml)
//  3. Global config (~/.ghaworkflow/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	return LoadWithFlags(ctx, nil)
}

// LoadWithFlags loads configuration like Load and lets the changed flags
// of fs take precedence over every other source. fs may be nil.
func LoadWithFlags(ctx context.Context, fs *pflag.FlagSet) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}
	if err := bindFlags(v, fs); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Stringer("decode.unknown_fields", cfg.Decode.UnknownFields).
		Int("concurrency", cfg.Concurrency).
		Bool("log.file", cfg.Log.File).
		Str("config_file", v.ConfigFileUsed()).
		Msg("configuration loaded")

	return cfg, nil
}

// bindFlags binds the known flags of fs to their configuration keys.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "failed to bind flag %s", name)
		}
	}
	return nil
}

// loadGlobalConfig attempts to load the global config file.
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil || !fileExists(globalConfigPath) {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig attempts to load the project config file (.ghaworkflow/config.yaml).
// Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
//
// projectConfigPath is the path to project-level config (higher priority).
// globalConfigPath is the path to global config (lower priority).
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("decode.unknown_fields", def.Decode.UnknownFields.String())
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("concurrency", def.Concurrency)
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// Policy is the only field that needs a hook; numbers and booleans from
// env vars go through mapstructure's weak typing.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(StringToPolicyHookFunc())
}

// StringToPolicyHookFunc returns a mapstructure decode hook that converts
// "strict" and "lenient" into a decode.Policy.
func StringToPolicyHookFunc() mapstructure.DecodeHookFuncType {
	policyType := reflect.TypeFor[decode.Policy]()
	return func(f, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != policyType {
			return data, nil
		}
		s, _ := data.(string)
		return decode.ParsePolicy(s)
	}
}
