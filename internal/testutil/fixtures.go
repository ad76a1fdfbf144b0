package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ghaworkflow/internal/value"
)

// MustParse parses a YAML or JSON document or fails the test.
// Leading tab indentation is not stripped; write fixtures with spaces.
func MustParse(t testing.TB, doc string) *value.Node {
	t.Helper()
	n, err := value.Parse([]byte(doc))
	require.NoError(t, err)
	return n
}

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// Lines joins lines with newlines and adds a trailing one, for building
// small YAML documents without raw-string indentation noise.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
