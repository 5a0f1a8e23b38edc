package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snapsum/internal/manifest"
)

func project(id string, refs ...string) manifest.ProjectSpec {
	return manifest.ProjectSpec{
		ID:         id,
		Kind:       "go",
		References: refs,
		Documents:  []manifest.Document{{Path: id + ".go", Text: "package " + id + "\n"}},
	}
}

func twoWorkspaces() map[string]manifest.Manifest {
	edited := project("tool", "model")
	edited.Documents[0].Text = "package tool // edited\n"
	return map[string]manifest.Manifest{
		"base": {Name: "demo", Projects: []manifest.ProjectSpec{
			project("api", "model"), project("model"), project("tool", "model"),
		}},
		"edited": {Name: "demo", Projects: []manifest.ProjectSpec{
			project("api", "model"), project("model"), edited,
		}},
	}
}

func TestRun_PassingScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "passing",
		Description: "cone unaffected by sibling edit",
		Manifests:   twoWorkspaces(),
		Assertions: []Assertion{
			{Type: AssertCone, Manifest: "base", Root: "api", Members: []string{"model", "api"}},
			{Type: AssertSameChecksum, Manifests: []string{"base", "edited"}, Root: "api"},
			{Type: AssertDifferentChecksum, Manifests: []string{"base", "edited"}, Root: "tool"},
			{Type: AssertChildren, Manifest: "edited", Children: []string{"api", "model", "tool"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	// base/api, edited/api, base/tool, edited/tool, edited/*
	require.Len(t, result.Trees, 5)
	assert.Equal(t, "base", result.Trees[0].Manifest)
	assert.Equal(t, "api", result.Trees[0].Tree.Scope.String())
	assert.Equal(t, result.Trees[0].Tree.Root, result.Trees[1].Tree.Root)
	assert.NotEqual(t, result.Trees[2].Tree.Root, result.Trees[3].Tree.Root)
	assert.Equal(t, "*", result.Trees[4].Tree.Scope.String())
}

func TestRun_FailingAssertionsAreCollected(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "every assertion is wrong",
		Manifests:   twoWorkspaces(),
		Assertions: []Assertion{
			{Type: AssertCone, Manifest: "base", Root: "api", Members: []string{"api"}},
			{Type: AssertSameChecksum, Manifests: []string{"base", "edited"}},
			{Type: AssertDifferentChecksum, Manifests: []string{"base", "edited"}, Root: "model"},
			{Type: AssertChildren, Manifest: "base", Root: "api", Children: []string{"model", "api"}},
			{Type: AssertJournalMatches, Manifest: "base", Matches: []string{"base", "edited"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "assertion[0]: cone: expected cone(api) = [api], got [api model]")
	assert.Contains(t, result.Errors[1], "assertion[1]: same_checksum: expected equal roots")
	assert.Contains(t, result.Errors[2], "assertion[2]: different_checksum: expected different roots")
	assert.Contains(t, result.Errors[3], "got [api model]")
	assert.Contains(t, result.Errors[4], "got [base]")
}

func TestRun_JournalMatches(t *testing.T) {
	workspaces := twoWorkspaces()
	workspaces["copy"] = workspaces["base"]

	scenario := &Scenario{
		Name:        "journal",
		Description: "journal groups identical workspaces",
		Manifests:   workspaces,
		Assertions: []Assertion{
			{Type: AssertJournalMatches, Manifest: "base", Matches: []string{"base", "copy"}},
			{Type: AssertJournalMatches, Manifest: "edited", Matches: []string{"edited"}},
			{Type: AssertJournalMatches, Manifest: "edited", Root: "model", Matches: []string{"base", "copy", "edited"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	// three workspaces, two scopes
	assert.Len(t, result.Trees, 6)
}

func TestRun_InvalidManifest(t *testing.T) {
	scenario := &Scenario{
		Name:        "invalid",
		Description: "manifest fails validation",
		Manifests: map[string]manifest.Manifest{
			"bad": {Projects: []manifest.ProjectSpec{project("api")}},
		},
		Assertions: []Assertion{{Type: AssertChildren, Manifest: "bad"}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `manifest "bad"`)
}

func TestRun_MissingFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing",
		Description: "file does not exist",
		Files:       map[string]string{"disk": filepath.Join(t.TempDir(), "absent.yaml")},
		Assertions:  []Assertion{{Type: AssertChildren, Manifest: "disk"}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `file "disk"`)
}

func TestRun_ScenarioFiles(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestHarness_TreeIsMemoizedPerScope(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "memo",
		Description: "repeat assertions reuse trees",
		Manifests:   twoWorkspaces(),
		Assertions: []Assertion{
			{Type: AssertChildren, Manifest: "base", Root: "api", Children: []string{"api", "model"}},
			{Type: AssertChildren, Manifest: "base", Root: "api", Children: []string{"api", "model"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Len(t, result.Trees, 1)
}

func TestScopeFor(t *testing.T) {
	assert.False(t, scopeFor("").Scoped)
	assert.Equal(t, "api", scopeFor("api").String())
}
