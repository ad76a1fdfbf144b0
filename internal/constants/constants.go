// Package constants provides centralized constant values used throughout ghaworkflow.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

// Directory names and paths used by ghaworkflow.
const (
	// AppHome is the hidden directory that holds configuration and logs.
	// It exists in the user's home directory and, optionally, in a project root.
	AppHome = ".ghaworkflow"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// WorkflowsDir is where GitHub looks for workflow files in a repository.
	WorkflowsDir = ".github/workflows"
)

// Environment variables.
const (
	// EnvPrefix is the prefix viper uses to map environment variables to config keys.
	EnvPrefix = "GHAWORKFLOW"

	// HomeEnvVar overrides the location of AppHome.
	HomeEnvVar = "GHAWORKFLOW_HOME"
)

// Loader defaults.
const (
	// DefaultConcurrency is how many workflow files are decoded at once.
	DefaultConcurrency = 8

	// MaxConcurrency caps the configured concurrency.
	MaxConcurrency = 256

	// MaxWorkflowFileSize is the largest workflow file the loader reads, in bytes.
	MaxWorkflowFileSize = 4 << 20
)

// WorkflowExtensions lists the file extensions recognized as workflow files.
//
//nolint:gochecknoglobals // Read-only lookup table
var WorkflowExtensions = []string{".yml", ".yaml", ".json"}
