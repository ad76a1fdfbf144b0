// Package logging builds the ghaworkflow logger and keeps secrets out of it.
//
// Workflow files routinely carry credentials in env blocks, container
// credentials and `with:` inputs. Anything that reaches a log sink passes
// through the redaction rules in this file first.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns match token and credential formats inside free text.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_) and fine-grained PATs
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{22,}`),

	// AWS access key IDs
	regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),

	// key=value pairs whose key names a credential
	regexp.MustCompile(`(?i)(api[_-]?key|secret|password|passwd|token|credential)\s*[:=]\s*["']?[^\s"'$]{8,}["']?`),

	// PEM private keys
	regexp.MustCompile(`-----BEGIN[A-Z\s]+PRIVATE KEY-----`),
}

// sensitiveKeyParts are substrings of env and input names whose values
// are never logged. Matching is case-insensitive.
var sensitiveKeyParts = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"secret",
	"token",
	"password",
	"passwd",
	"credential",
	"private_key",
	"private-key",
	"api_key",
	"api-key",
	"apikey",
	"access_key",
	"authorization",
}

// SensitiveDataHook flags log events whose message matches a sensitive
// pattern. zerolog hooks cannot rewrite the message; the FilteringWriter
// on the file sink does the actual redaction.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every sensitive match in value with [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveKey reports whether an env or input name suggests its value
// is a credential.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// RedactEnvValue returns the value to log for an env entry. Values of
// sensitive keys are replaced outright. Expressions are kept since they
// only name where a secret comes from, e.g. ${{ secrets.NPM_TOKEN }}.
func RedactEnvValue(key, value string) string {
	if strings.HasPrefix(strings.TrimSpace(value), "${{") {
		return value
	}
	if IsSensitiveKey(key) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// RedactEnv applies RedactEnvValue to every entry of env.
func RedactEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = RedactEnvValue(k, v)
	}
	return out
}

// FilteringWriter redacts sensitive data before it reaches the wrapped writer.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports the length of p, not of the
// filtered bytes, so callers never see a short write.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
