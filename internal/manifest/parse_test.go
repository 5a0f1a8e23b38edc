package manifest

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_YAML(t *testing.T) {
	data, err := os.ReadFile("testdata/workspace.yaml")
	require.NoError(t, err)

	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "shop", m.Name)
	assert.Equal(t, []string{"go", "ts"}, m.SupportedKinds)
	assert.Equal(t, []string{"github.com/acme/lib@v1.2.0"}, m.ExternalReferences)
	require.Len(t, m.Projects, 5)
	assert.Equal(t, "api", m.Projects[0].ID)
	assert.Equal(t, []string{"model", "util"}, m.Projects[0].References)
	assert.Equal(t, "shop/api", m.Projects[0].Properties["module"])
	assert.Equal(t, "package main\n", m.Projects[0].Documents[0].Text)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"top level", "name: x\nprojectz: []\n"},
		{"project", "name: x\nprojects:\n  - id: a\n    kind: go\n    deps: [b]\n"},
		{"document", "name: x\nprojects:\n  - id: a\n    kind: go\n    documents:\n      - path: a\n        body: b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "manifest", merr.Field)
}

func TestParseCUE(t *testing.T) {
	src, err := os.ReadFile("testdata/workspace.cue")
	require.NoError(t, err)

	m, err := ParseCUE("workspace.cue", src)
	require.NoError(t, err)

	assert.Equal(t, "shop", m.Name)
	require.Len(t, m.Projects, 5)
	assert.Equal(t, "go", m.Projects[0].Kind)
	assert.Equal(t, []string{"model", "util"}, m.Projects[0].References)
	assert.Equal(t, "markdown", m.Projects[4].Kind)
}

func TestParseCUE_UnknownField(t *testing.T) {
	_, err := ParseCUE("bad.cue", []byte(`
name: "x"
owners: ["me"]
projects: []
`))
	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "owners", merr.Field)
	assert.True(t, merr.Pos.IsValid())
}

func TestParseCUE_SyntaxErrorHasPosition(t *testing.T) {
	_, err := ParseCUE("broken.cue", []byte(`name: "x"
projects: [
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestParseCUE_ConflictingValues(t *testing.T) {
	_, err := ParseCUE("conflict.cue", []byte(`
name: "x"
name: "y"
projects: []
`))
	assert.Error(t, err)
}
