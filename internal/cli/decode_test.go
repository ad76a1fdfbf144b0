package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/ghaworkflow/internal/constants"
	"github.com/mrz1836/ghaworkflow/internal/errors"
)

func TestDecode_Text(t *testing.T) {
	dir := sandbox(t)
	writeWorkflow(t, dir, "ci.yml", ciWorkflow)

	stdout, _, err := run(t, "decode", "ci.yml")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ ci.yml (CI)")
	assert.Contains(t, stdout, "ℹ on: push")
	assert.Contains(t, stdout, "JOB")
	assert.Contains(t, stdout, "ubuntu-latest")
	assert.Contains(t, stdout, "./.github/workflows/deploy.yml")
}

func TestDecode_JSON(t *testing.T) {
	dir := sandbox(t)
	writeWorkflow(t, dir, "ci.yml", ciWorkflow)

	stdout, _, err := run(t, "decode", "-o", "json", "ci.yml")
	require.NoError(t, err)

	var got []struct {
		File     string         `json:"file"`
		Workflow map[string]any `json:"workflow"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "ci.yml", got[0].File)
	assert.Equal(t, "CI", got[0].Workflow["name"])
	assert.Equal(t, "push", got[0].Workflow["on"])

	jobs, ok := got[0].Workflow["jobs"].(map[string]any)
	require.True(t, ok)
	build, ok := jobs["build"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ubuntu-latest", build["runs-on"])
	deploy, ok := jobs["deploy"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "inherit", deploy["secrets"])
}

func TestDecode_YAML(t *testing.T) {
	dir := sandbox(t)
	writeWorkflow(t, dir, "a.yml", ciWorkflow)
	writeWorkflow(t, dir, "b.yml", "on: [push, pull_request]\njobs: {}\n")

	stdout, _, err := run(t, "decode", "-o", "yaml", "a.yml", "b.yml")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "---\n# a.yml\n"), stdout)
	assert.Contains(t, stdout, "---\n# b.yml\n")

	dec := yaml.NewDecoder(strings.NewReader(stdout))
	var docs []map[string]any
	for {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			break
		}
		docs = append(docs, doc)
	}
	require.Len(t, docs, 2)
	assert.Equal(t, "CI", docs[0]["name"])
	assert.Equal(t, []any{"push", "pull_request"}, docs[1]["on"])
}

func TestDecode_DiscoversWorkflowsDir(t *testing.T) {
	dir := sandbox(t)
	writeWorkflow(t, dir, filepath.Join(constants.WorkflowsDir, "ci.yml"), ciWorkflow)

	stdout, _, err := run(t, "decode")
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(constants.WorkflowsDir, "ci.yml"))
}

func TestDecode_UnknownFieldPolicy(t *testing.T) {
	dir := sandbox(t)
	writeWorkflow(t, dir, "ci.yml", unknownFieldWorkflow)

	_, stderr, err := run(t, "decode", "ci.yml")
	require.ErrorIs(t, err, errors.ErrUnknownField)
	assert.Equal(t, ExitError, ExitCodeForError(err))
	assert.Contains(t, stderr, "ci.yml: jobs.build.bogus")
	assert.Contains(t, stderr, "Try:")

	_, _, err = run(t, "decode", "--unknown-fields", "lenient", "ci.yml")
	require.NoError(t, err)
}

func TestDecode_PolicyFromEnvAndConfig(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		dir := sandbox(t)
		writeWorkflow(t, dir, "ci.yml", unknownFieldWorkflow)
		t.Setenv("GHAWORKFLOW_DECODE_UNKNOWN_FIELDS", "lenient")

		_, _, err := run(t, "decode", "ci.yml")
		require.NoError(t, err)
	})

	t.Run("project config", func(t *testing.T) {
		dir := sandbox(t)
		writeWorkflow(t, dir, "ci.yml", unknownFieldWorkflow)
		writeWorkflow(t, dir, filepath.Join(".ghaworkflow", "config.yaml"), "decode:\n  unknown_fields: lenient\n")

		_, _, err := run(t, "decode", "ci.yml")
		require.NoError(t, err)
	})

	t.Run("flag beats config", func(t *testing.T) {
		dir := sandbox(t)
		writeWorkflow(t, dir, "ci.yml", unknownFieldWorkflow)
		writeWorkflow(t, dir, filepath.Join(".ghaworkflow", "config.yaml"), "decode:\n  unknown_fields: lenient\n")

		_, _, err := run(t, "decode", "--unknown-fields", "strict", "ci.yml")
		require.ErrorIs(t, err, errors.ErrUnknownField)
	})
}

func TestDecode_NoFiles(t *testing.T) {
	sandbox(t)

	_, _, err := run(t, "decode")
	require.ErrorIs(t, err, errors.ErrWorkflowFileMissing)
}
