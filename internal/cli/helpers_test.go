package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ghaworkflow/internal/constants"
	"github.com/mrz1836/ghaworkflow/internal/testutil"
)

const ciWorkflow = `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - run: make
  deploy:
    needs: build
    uses: ./.github/workflows/deploy.yml
    secrets: inherit
`

const unknownFieldWorkflow = `on: push
jobs:
  build:
    runs-on: ubuntu-latest
    bogus: true
`

// sandbox isolates a CLI test from the user's config and environment and
// returns the working directory it switched to.
func sandbox(t *testing.T) string {
	t.Helper()
	for _, kv := range os.Environ() {
		if key, _, _ := strings.Cut(kv, "="); strings.HasPrefix(key, constants.EnvPrefix+"_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
	t.Setenv(constants.HomeEnvVar, t.TempDir())
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeWorkflow(t *testing.T, dir, name, content string) {
	t.Helper()
	testutil.WriteFile(t, dir, name, content)
}

// run executes the CLI with args and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), BuildInfo{Version: "test"}, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}
