package harness

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// checksumPattern matches a hex-encoded SHA-256 checksum.
var checksumPattern = regexp.MustCompile(`\b[0-9a-f]{64}\b`)

// RunWithGolden executes a scenario and compares its rendered trees against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot be executed. A failing assertion is
// reported through t.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, []byte(Render(scenarioName, result)))
	return nil
}

// Render formats every tree in result, with checksums replaced by labels in
// order of first appearance.
func Render(scenarioName string, result *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s\n", scenarioName)
	for _, e := range result.Trees {
		fmt.Fprintf(&b, "\n== %s %s\n", e.Manifest, e.Tree.Scope)
		b.WriteString(e.Tree.Render())
	}

	b.WriteString("\n")
	if result.Pass {
		b.WriteString("result pass\n")
	} else {
		b.WriteString("result fail\n")
		for _, msg := range result.Errors {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}

	return normalize(b.String())
}

// normalize replaces each distinct checksum with #N.
func normalize(s string) string {
	labels := make(map[string]string)
	return checksumPattern.ReplaceAllStringFunc(s, func(sum string) string {
		label, ok := labels[sum]
		if !ok {
			label = fmt.Sprintf("#%d", len(labels)+1)
			labels[sum] = label
		}
		return label
	})
}
