package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rightstroke/internal/gesture"
)

func TestRecognizeCloseTab(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRecognizeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--points", "100,100 100,160 160,160"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Points:     3")
	assert.Contains(t, output, "Directions: down right")
	assert.Contains(t, output, "Pattern:    down-right")
	assert.Contains(t, output, "Action:     close (Close tab)")
}

func TestRecognizeReloadJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewRecognizeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--points", "0,0 0,-80 0,0"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string          `json:"status"`
		Data   RecognizeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"up", "down"}, resp.Data.Directions)
	assert.Equal(t, "up-down", resp.Data.Pattern)
	assert.Equal(t, string(gesture.ActionReload), resp.Data.Action)
	assert.Equal(t, "Reload", resp.Data.Label)
	assert.True(t, resp.Data.Matched)
}

func TestRecognizeNoMatch(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRecognizeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--points", "0,0 80,0"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Pattern:    right")
	assert.Contains(t, output, "Action:     none")
}

func TestRecognizeShortStroke(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRecognizeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--points", "0,0 10,10"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Directions: (none)")
	assert.NotContains(t, output, "Pattern:")
	assert.Contains(t, output, "Action:     none")
}

func TestRecognizeMinDistance(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRecognizeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--points", "0,0 -20,0", "--min-distance", "10"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Action:     back (Back)")
}

func TestRecognizeInvalidPoints(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRecognizeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--points", "1,2 3"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E_INVALID_POINTS]")
	assert.Contains(t, buf.String(), `point 2: expected x,y, got "3"`)
}

func TestRecognizeNonPositiveMinDistance(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewRecognizeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--points", "0,0 1,1", "--min-distance", "0"})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidPoints, resp.Error.Code)
}

func TestRecognizeMissingPoints(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRecognizeCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestParsePoints(t *testing.T) {
	testCases := []struct {
		input   string
		want    []gesture.Point
		wantErr string
	}{
		{input: "1,2", want: []gesture.Point{{X: 1, Y: 2}}},
		{input: " 1.5,-2  3,4 ", want: []gesture.Point{{X: 1.5, Y: -2}, {X: 3, Y: 4}}},
		{input: "", wantErr: "no points given"},
		{input: "a,1", wantErr: `point 1: invalid x "a"`},
		{input: "1,1 2,b", wantErr: `point 2: invalid y "b"`},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := parsePoints(tc.input)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
