package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "single workspace"
manifests:
  base:
    name: demo
    projects:
      - id: api
        kind: go
assertions:
  - type: cone
    manifest: base
    root: api
    members: [api]
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", scenario.Name)
	assert.Equal(t, "single workspace", scenario.Description)
	require.Contains(t, scenario.Manifests, "base")
	assert.Equal(t, "api", scenario.Manifests["base"].Projects[0].ID)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertCone, scenario.Assertions[0].Type)
	assert.Equal(t, []string{"api"}, scenario.Assertions[0].Members)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, minimalScenario+"assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_ResolvesFilesRelativeToScenario(t *testing.T) {
	path := writeScenario(t, `
name: files
description: "on-disk workspace"
files:
  disk: manifests/ws.yaml
assertions:
  - type: children
    manifest: disk
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "manifests", "ws.yaml"), scenario.Files["disk"])
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	path := writeScenario(t, `
name: files
description: "on-disk workspace"
files:
  disk: ws.yaml
assertions:
  - type: children
    manifest: disk
`)
	scenario, err := LoadScenarioWithBasePath(path, "/srv/manifests")
	require.NoError(t, err)
	assert.Equal(t, "/srv/manifests/ws.yaml", scenario.Files["disk"])
}

func TestValidateScenario(t *testing.T) {
	base := func() *Scenario {
		s, err := LoadScenario(writeScenario(t, minimalScenario))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		mutate  func(s *Scenario)
		wantErr string
	}{
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"no workspaces", func(s *Scenario) { s.Manifests = nil }, "at least one manifest"},
		{"no assertions", func(s *Scenario) { s.Assertions = nil }, "assertions list is required"},
		{"duplicate workspace", func(s *Scenario) { s.Files = map[string]string{"base": "x.yaml"} }, "declared in both"},
		{"unknown type", func(s *Scenario) { s.Assertions[0].Type = "trace_order" }, `unknown assertion type "trace_order"`},
		{"cone without root", func(s *Scenario) { s.Assertions[0].Root = "" }, "cone requires root"},
		{"unknown manifest", func(s *Scenario) { s.Assertions[0].Manifest = "other" }, `unknown manifest "other"`},
		{"missing manifest", func(s *Scenario) { s.Assertions[0].Manifest = "" }, "manifest is required"},
		{
			"comparison needs two manifests",
			func(s *Scenario) { s.Assertions[0] = Assertion{Type: AssertSameChecksum, Manifests: []string{"base"}} },
			"exactly two manifests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			err := validateScenario(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.NoError(t, validateScenario(base()))
}
