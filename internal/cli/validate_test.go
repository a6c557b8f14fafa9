package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHarnessScenarios(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{harnessScenarios})

	err := cmd.Execute()
	require.NoError(t, err, buf.String())

	output := buf.String()
	assert.Contains(t, output, "short_click.yaml (scenario)")
	assert.Contains(t, output, "✓ All files valid")
}

func TestValidateSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.cue")
	require.NoError(t, os.WriteFile(path, []byte("gesturesEnabled: false\n"), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Files, 1)

	fv := resp.Data.Files[0]
	assert.Equal(t, KindSettings, fv.Kind)
	assert.True(t, fv.Valid)
	require.NotNil(t, fv.Values)
	assert.False(t, fv.Values.GesturesEnabled)
	assert.False(t, fv.Values.DebugLogging)
}

func TestValidateInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "typo.cue")
	require.NoError(t, os.WriteFile(path, []byte("gesturesEnable: false\n"), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✗ "+path+" (settings)")
	assert.Contains(t, output, ErrCodeInvalidSettings)
	assert.Contains(t, output, "✗ Validation failed")
}

func TestValidateInvalidScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "typo.yaml"), []byte(`name: typo
description: "misspelled key"
steps:
  - press: { x: 1, y: 1 }
    expects: { mode: pressed }
`), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidScenario, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "expects")
	assert.False(t, resp.Data.Valid)
}

func TestValidateMixedDirectory(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "quick_click.yaml", quickClickScenario)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.cue"), []byte("debugLogging: true\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	files, err := collectValidateFiles([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "quick_click.yaml"),
		filepath.Join(dir, "settings.cue"),
	}, files)
}

func TestValidateNonExistentPath(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E_NOT_FOUND]")
}

func TestValidateEmptyDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestFileKind(t *testing.T) {
	assert.Equal(t, KindSettings, fileKind("a/settings.cue"))
	assert.Equal(t, KindSettings, fileKind("SETTINGS.CUE"))
	assert.Equal(t, KindScenario, fileKind("a/b.yaml"))
	assert.Equal(t, KindScenario, fileKind("a/b.yml"))
}
