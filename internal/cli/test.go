package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/snapsum/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run checksum scenarios with the conformance harness.

Each scenario file is executed and its assertions checked. When
<scenarios-dir>/golden/<file>.golden exists, the rendered trees must match it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  snapsum test ./scenarios
  snapsum test ./scenarios --filter "cone-*"
  snapsum test ./scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return fail(f, NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir)))
	}

	files, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return fail(f, WrapExitError(ExitCommandError, "failed to find scenarios", err))
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	var progress io.Writer = cmd.OutOrStdout()
	if opts.Format == "json" {
		progress = io.Discard
	}

	for _, file := range files {
		sr := runScenario(file, opts.Update)
		printScenario(progress, sr, opts.Update)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else if result.Total == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// findScenarioFiles finds all YAML scenario files directly in dir, sorted.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	for _, ext := range []string{".yaml", ".yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		for _, path := range matches {
			if filter != "" {
				name := strings.TrimSuffix(filepath.Base(path), ext)
				ok, err := filepath.Match(filter, name)
				if err != nil {
					return nil, fmt.Errorf("invalid filter pattern: %w", err)
				}
				if !ok {
					continue
				}
			}
			files = append(files, path)
		}
	}
	return files, nil
}

// runScenario executes one scenario file and checks or updates its golden.
func runScenario(file string, update bool) ScenarioResult {
	name := filepath.Base(file)
	failed := func(format string, args ...any) ScenarioResult {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf(format, args...)}}
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return failed("failed to load scenario: %v", err)
	}
	name = scenario.Name

	result, err := harness.Run(scenario)
	if err != nil {
		return failed("execution failed: %v", err)
	}
	rendered := []byte(harness.Render(scenario.Name, result))
	goldenPath := goldenFilePath(file)

	if update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			return failed("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, rendered, 0o644); err != nil {
			return failed("failed to write golden file: %v", err)
		}
		return ScenarioResult{Name: name, Pass: result.Pass, Errors: result.Errors}
	}

	want, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
		// assertions only
	case err != nil:
		return failed("failed to read golden file: %v", err)
	case !bytes.Equal(want, rendered):
		return ScenarioResult{
			Name:   name,
			Errors: append(result.Errors, "trees do not match golden file (run with --update to regenerate)"),
		}
	}

	return ScenarioResult{Name: name, Pass: result.Pass, Errors: result.Errors}
}

func printScenario(w io.Writer, sr ScenarioResult, updated bool) {
	switch {
	case sr.Pass && updated:
		fmt.Fprintf(w, "✓ %s (golden updated)\n", sr.Name)
	case sr.Pass:
		fmt.Fprintf(w, "✓ %s\n", sr.Name)
	default:
		fmt.Fprintf(w, "✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

// goldenFilePath returns the path to the golden file for a scenario file.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}
