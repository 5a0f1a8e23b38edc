package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/snapsum/internal/manifest"
	"github.com/roach88/snapsum/internal/workspace"
)

// ConeResult is the JSON payload of the cone command.
type ConeResult struct {
	Root    string       `json:"root"`
	Members []ConeMember `json:"members"`
}

// ConeMember is one project of a cone.
type ConeMember struct {
	ID           string `json:"id"`
	Kind         string `json:"kind,omitempty"`
	Participates bool   `json:"participates"`
}

// NewConeCommand creates the cone command.
func NewConeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cone <manifest> <root>",
		Short: "List the projects in a project's dependency cone",
		Long: `List every project reachable from <root> through references, including
<root> itself. Projects whose kind is not supported are listed but do not
contribute to checksums.

Example:
  snapsum cone workspace.yaml web`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCone(cmd.Context(), rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runCone(ctx context.Context, opts *RootOptions, path, root string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	snap, _, err := manifest.NewLoader(logger).LoadSnapshot(ctx, path)
	if err != nil {
		return fail(f, WrapExitError(ExitCommandError, "failed to load manifest", err))
	}

	cone := workspace.BuildCone(workspace.EntityID(root), snap)
	members := make([]ConeMember, 0, cone.Members.Len())
	for _, id := range snap.Orderer().Order(cone.Members) {
		m := ConeMember{ID: string(id), Participates: snap.Participates(id)}
		if e, ok := snap.Entity(id); ok {
			m.Kind = string(e.Kind())
		}
		members = append(members, m)
	}

	if opts.Format == "json" {
		return f.Success(ConeResult{Root: root, Members: members})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "cone %s (%d projects)\n", root, len(members))
	for _, m := range members {
		mark := " "
		if !m.Participates {
			mark = "-"
		}
		fmt.Fprintf(w, "%s %s [%s]\n", mark, m.ID, m.Kind)
	}
	return nil
}
