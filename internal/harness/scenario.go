package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/snapsum/internal/manifest"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Manifests declares workspaces inline, keyed by the name assertions use.
	Manifests map[string]manifest.Manifest `yaml:"manifests,omitempty"`

	// Files declares workspaces stored on disk, keyed the same way.
	// Paths are relative to the scenario file location.
	Files map[string]string `yaml:"files,omitempty"`

	// Assertions validate the assembled trees.
	// Supported types: cone, children, same_checksum, different_checksum, journal_matches
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion represents a single check on the computed trees.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Manifest names the workspace for single-manifest assertions.
	Manifest string `yaml:"manifest,omitempty"`

	// Manifests names the two workspaces compared by same_checksum and
	// different_checksum.
	Manifests []string `yaml:"manifests,omitempty"`

	// Root selects the cone; empty means the whole snapshot.
	Root string `yaml:"root,omitempty"`

	// Members is the expected cone membership (any order).
	Members []string `yaml:"members,omitempty"`

	// Children is the expected child id sequence of the tree.
	Children []string `yaml:"children,omitempty"`

	// Matches is the expected set of manifests whose journaled tree shares
	// the root checksum of Manifest's tree.
	Matches []string `yaml:"matches,omitempty"`
}

// Assertion types.
const (
	AssertCone              = "cone"
	AssertChildren          = "children"
	AssertSameChecksum      = "same_checksum"
	AssertDifferentChecksum = "different_checksum"
	AssertJournalMatches    = "journal_matches"
)

// LoadScenario reads and parses a scenario YAML file. File paths are
// resolved relative to the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving manifest file paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for name, p := range scenario.Files {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Files[name] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks structure only; manifests are validated when built.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Manifests)+len(s.Files) == 0 {
		return fmt.Errorf("at least one manifest or file is required")
	}

	for name := range s.Files {
		if _, dup := s.Manifests[name]; dup {
			return fmt.Errorf("workspace %q declared in both manifests and files", name)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(s, a); err != nil {
			return fmt.Errorf("assertion[%d]: %w", i, err)
		}
	}

	return nil
}

func validateAssertion(s *Scenario, a Assertion) error {
	switch a.Type {
	case AssertCone:
		if a.Root == "" {
			return fmt.Errorf("cone requires root")
		}
		return requireWorkspace(s, a.Manifest)
	case AssertChildren, AssertJournalMatches:
		return requireWorkspace(s, a.Manifest)
	case AssertSameChecksum, AssertDifferentChecksum:
		if len(a.Manifests) != 2 {
			return fmt.Errorf("%s requires exactly two manifests, got %d", a.Type, len(a.Manifests))
		}
		for _, name := range a.Manifests {
			if err := requireWorkspace(s, name); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func requireWorkspace(s *Scenario, name string) error {
	if name == "" {
		return fmt.Errorf("manifest is required")
	}
	if _, ok := s.Manifests[name]; ok {
		return nil
	}
	if _, ok := s.Files[name]; ok {
		return nil
	}
	return fmt.Errorf("unknown manifest %q", name)
}
