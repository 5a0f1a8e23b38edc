package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	return resp
}

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]string{"root": "abc"}))

	resp := decodeResponse(t, buf)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"root": "abc"}, resp.Data)
	assert.Empty(t, resp.SnapshotID)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_SuccessFor(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.SuccessFor("snap-1", "done"))
	assert.Equal(t, "snap-1", decodeResponse(t, buf).SnapshotID)

	text := &bytes.Buffer{}
	f = &OutputFormatter{Format: "text", Writer: text}
	require.NoError(t, f.SuccessFor("snap-1", "done"))
	assert.Equal(t, "done\n", text.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error(ErrCodeManifest, "manifest invalid", []string{"projects[0].id: required"}))

	resp := decodeResponse(t, buf)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeManifest, resp.Error.Code)
	assert.Equal(t, "manifest invalid", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, f.Error(ErrCodeDatabase, "database not found", "snapsum.db"))
			assert.Contains(t, buf.String(), "Error [E003]: database not found")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: snapsum.db")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}
		f.VerboseLog("loading %s", "ws.yaml")
		assert.Empty(t, buf.String())
	})

	t.Run("falls back to writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}
		f.VerboseLog("loading %s", "ws.yaml")
		assert.Equal(t, "loading ws.yaml\n", buf.String())
	})

	t.Run("prefers err writer", func(t *testing.T) {
		out, diag := &bytes.Buffer{}, &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}
		f.VerboseLog("loading %s", "ws.yaml")
		assert.Empty(t, out.String())
		assert.Equal(t, "loading ws.yaml\n", diag.String())
	})
}

func TestGetExitCode(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(cause))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad args")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitCommandError, "load", cause))))
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to load manifest", cause)

	assert.Equal(t, "failed to load manifest: no such file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad args", NewExitError(ExitCommandError, "bad args").Error())
}
