package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wferrors "github.com/mrz1836/ghaworkflow/internal/errors"
)

func TestNewOutput(t *testing.T) {
	var buf bytes.Buffer
	assert.IsType(t, &JSONOutput{}, NewOutput(&buf, FormatJSON))
	assert.IsType(t, &TTYOutput{}, NewOutput(&buf, FormatText))
	assert.IsType(t, &TTYOutput{}, NewOutput(&buf, "yaml"))
}

func TestTTYOutput_Messages(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)
	out.Success("ci.yml")
	out.Warning("no files")
	out.Info("2 files")

	output := buf.String()
	assert.Contains(t, output, "✓ ci.yml")
	assert.Contains(t, output, "⚠ no files")
	assert.Contains(t, output, "ℹ 2 files")
}

func TestTTYOutput_Error(t *testing.T) {
	t.Run("known error shows remedy", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewTTYOutput(&buf)
		out.Error(fmt.Errorf("ci.yml: jobs.build.bogus: %w", wferrors.ErrUnknownField))

		output := buf.String()
		assert.Contains(t, output, "✗ ci.yml: jobs.build.bogus: unknown field")
		assert.Contains(t, output, "▸ Try: Remove or rename the key")
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewTTYOutput(&buf)
		out.Error(fmt.Errorf("boom")) //nolint:err113 // Test-only error

		assert.Contains(t, buf.String(), "✗ boom")
		assert.NotContains(t, buf.String(), "Try:")
	})
}

func TestTTYOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)
	out.Table([]string{"FILE", "STATUS"}, [][]string{
		{"ci.yml", "ok"},
		{"release-long-name.yml", "failed"},
		{"short"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "FILE")
	assert.Equal(t, strings.Index(lines[1], "ok"), strings.Index(lines[2], "failed"), "columns align")
	assert.Equal(t, "short", lines[3])
}

func TestTTYOutput_TableNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTTYOutput(&buf).Table(nil, [][]string{{"x"}})
	assert.Empty(t, buf.String())
}

func TestTTYOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTTYOutput(&buf).JSON(map[string]string{"key": "value"}))
	assert.Equal(t, "{\n  \"key\": \"value\"\n}\n", buf.String())
}

func TestJSONOutput_Messages(t *testing.T) {
	tests := []struct {
		name  string
		write func(o *JSONOutput)
		want  jsonMessage
	}{
		{"success", func(o *JSONOutput) { o.Success("ok") }, jsonMessage{Type: "success", Message: "ok"}},
		{"warning", func(o *JSONOutput) { o.Warning("hm") }, jsonMessage{Type: "warning", Message: "hm"}},
		{"info", func(o *JSONOutput) { o.Info("fyi") }, jsonMessage{Type: "info", Message: "fyi"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.write(NewJSONOutput(&buf))

			var got jsonMessage
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJSONOutput_Error(t *testing.T) {
	t.Run("sentinel", func(t *testing.T) {
		var buf bytes.Buffer
		NewJSONOutput(&buf).Error(wferrors.ErrNoInputFiles)

		var got jsonError
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "error", got.Type)
		assert.Equal(t, "no workflow files given", got.Message)
		assert.Empty(t, got.Details)
		assert.NotEmpty(t, got.Suggestion)
	})

	t.Run("wrapped error includes details", func(t *testing.T) {
		var buf bytes.Buffer
		NewJSONOutput(&buf).Error(fmt.Errorf("ci.yml: %w", wferrors.ErrDocumentParse))

		var got jsonError
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "ci.yml: document parse error", got.Message)
		assert.Equal(t, "document parse error", got.Details)
		assert.Equal(t, "Fix the syntax error at the reported line.", got.Suggestion)
	})
}

func TestJSONOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	NewJSONOutput(&buf).Table([]string{"file", "status"}, [][]string{
		{"ci.yml", "ok"},
		{"bad.yml"},
	})

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{
		{"file": "ci.yml", "status": "ok"},
		{"file": "bad.yml", "status": ""},
	}, got)

	buf.Reset()
	NewJSONOutput(&buf).Table(nil, nil)
	assert.Equal(t, "[]\n", buf.String())
}
