package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snapsum/internal/checksum"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	for _, name := range []string{"cone_isolation", "unsupported_kinds", "cue_yaml_equivalence"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestNormalize_LabelsByFirstAppearance(t *testing.T) {
	a := checksum.Of(checksum.DomainEntity, []byte("a")).String()
	b := checksum.Of(checksum.DomainEntity, []byte("b")).String()

	got := normalize(strings.Join([]string{"root " + b, "x " + a, "y " + b, "short " + a[:12]}, "\n"))
	assert.Equal(t, "root #1\nx #2\ny #1\nshort "+a[:12], got)
}

func TestRender_FailedResult(t *testing.T) {
	result := NewResult()
	result.AddError("assertion[0]: cone: expected cone(api) = [api], got [api model]")

	out := Render("broken", result)
	assert.Equal(t, "scenario broken\n\nresult fail\n  assertion[0]: cone: expected cone(api) = [api], got [api model]\n", out)
}
