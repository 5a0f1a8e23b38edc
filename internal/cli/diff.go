package cli

import (
	"context"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/roach88/snapsum/internal/checksum"
	"github.com/roach88/snapsum/internal/manifest"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Root string
}

// DiffResult is the JSON payload of the diff command.
type DiffResult struct {
	Equal   bool          `json:"equal"`
	Scope   string        `json:"scope"`
	RootA   string        `json:"root_a"`
	RootB   string        `json:"root_b"`
	Changes []ChildChange `json:"changes"`
}

// ChildChange describes one child whose checksum differs between two trees.
// A is empty for added children, B for removed ones.
type ChildChange struct {
	ID string `json:"id"`
	A  string `json:"a,omitempty"`
	B  string `json:"b,omitempty"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff <manifest-a> <manifest-b>",
		Short: "Compare the checksum trees of two manifests",
		Long: `Compute the checksum tree of both manifests and print a unified diff of
their renderings. Exits with status 1 when the trees differ.

Example:
  snapsum diff before.yaml after.yaml
  snapsum diff before.yaml after.yaml --root api`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", "", "cone root project id (default: whole workspace)")

	return cmd
}

func runDiff(ctx context.Context, opts *DiffOptions, pathA, pathB string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())
	eng := opts.engine(logger)
	loader := manifest.NewLoader(logger)
	scope := scopeFor(opts.Root)

	a, err := computeTree(ctx, loader, eng, pathA, scope)
	if err != nil {
		return fail(f, err)
	}
	b, err := computeTree(ctx, loader, eng, pathB, scope)
	if err != nil {
		return fail(f, err)
	}

	equal := a.Tree.Root == b.Tree.Root
	if opts.Format == "json" {
		if err := f.Success(DiffResult{
			Equal:   equal,
			Scope:   scope.String(),
			RootA:   a.Tree.Root.String(),
			RootB:   b.Tree.Root.String(),
			Changes: childChanges(a.Tree, b.Tree),
		}); err != nil {
			return err
		}
	} else if equal {
		fmt.Fprintf(cmd.OutOrStdout(), "identical  %s\n", a.Tree.Root)
	} else {
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(a.Tree.Render()),
			B:        difflib.SplitLines(b.Tree.Render()),
			FromFile: pathA,
			ToFile:   pathB,
			Context:  3,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render diff", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
	}

	if !equal {
		return NewExitError(ExitFailure, fmt.Sprintf("checksum trees differ (%s vs %s)", a.Tree.Root.Short(), b.Tree.Root.Short()))
	}
	return nil
}

// childChanges lists children that were added, removed or changed, ordered
// by id.
func childChanges(a, b checksum.Tree) []ChildChange {
	changes := []ChildChange{}
	i, j := 0, 0
	for i < len(a.ChildIDs) || j < len(b.ChildIDs) {
		switch {
		case j >= len(b.ChildIDs) || (i < len(a.ChildIDs) && a.ChildIDs[i] < b.ChildIDs[j]):
			changes = append(changes, ChildChange{ID: a.ChildIDs[i], A: a.Children.At(i).String()})
			i++
		case i >= len(a.ChildIDs) || b.ChildIDs[j] < a.ChildIDs[i]:
			changes = append(changes, ChildChange{ID: b.ChildIDs[j], B: b.Children.At(j).String()})
			j++
		default:
			if sa, sb := a.Children.At(i), b.Children.At(j); sa != sb {
				changes = append(changes, ChildChange{ID: a.ChildIDs[i], A: sa.String(), B: sb.String()})
			}
			i++
			j++
		}
	}
	return changes
}
