package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/snapsum/internal/checksum"
	"github.com/roach88/snapsum/internal/manifest"
	"github.com/roach88/snapsum/internal/store"
)

// SumOptions holds flags for the sum command.
type SumOptions struct {
	*RootOptions
	Root     string
	Tree     bool
	Database string
}

// SumResult is the JSON payload of the sum command.
type SumResult struct {
	Manifest   string         `json:"manifest"`
	SnapshotID string         `json:"snapshot_id"`
	Scope      string         `json:"scope"`
	Root       string         `json:"root"`
	Tree       *checksum.Tree `json:"tree,omitempty"`
	Recorded   bool           `json:"recorded,omitempty"`
}

// NewSumCommand creates the sum command.
func NewSumCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SumOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sum <manifest>",
		Short: "Print the root checksum of a workspace or cone",
		Long: `Compute the root checksum of a workspace manifest.

With --root, the checksum covers only the cone of that project: the project
and everything it transitively references. With --tree, every child checksum
is printed as well. With --db (or $SNAPSUM_DB), the tree is recorded in the
checksum journal.

Example:
  snapsum sum workspace.yaml
  snapsum sum workspace.cue --root api --tree
  snapsum sum workspace.yaml --db ./snapsum.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSum(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", "", "cone root project id (default: whole workspace)")
	cmd.Flags().BoolVar(&opts.Tree, "tree", false, "print every child checksum")
	cmd.Flags().StringVar(&opts.Database, "db", os.Getenv(EnvDatabase), "record the tree in this journal database")

	return cmd
}

func runSum(ctx context.Context, opts *SumOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())
	eng := opts.engine(logger)

	res, err := computeTree(ctx, manifest.NewLoader(logger), eng, path, scopeFor(opts.Root))
	if err != nil {
		return fail(f, err)
	}
	if opts.Root != "" && res.Cone.Members.Len() == 0 {
		f.VerboseLog("warning: %s is not a project of %s; the cone is empty", opts.Root, path)
	}

	recorded := false
	if opts.Database != "" {
		recorded, err = record(ctx, opts.Database, res)
		if err != nil {
			return fail(f, err)
		}
		f.VerboseLog("journal %s: recorded=%t", opts.Database, recorded)
	}

	if opts.Format == "json" {
		out := SumResult{
			Manifest:   path,
			SnapshotID: res.Snapshot.ID(),
			Scope:      res.Tree.Scope.String(),
			Root:       res.Tree.Root.String(),
			Recorded:   recorded,
		}
		if opts.Tree {
			out.Tree = &res.Tree
		}
		return f.SuccessFor(out.SnapshotID, out)
	}

	w := cmd.OutOrStdout()
	if opts.Tree {
		fmt.Fprint(w, res.Tree.Render())
		return nil
	}
	fmt.Fprintf(w, "%s  %s\n", res.Tree.Root, res.Tree.Scope)
	return nil
}

// record appends the computed tree to the journal at dbPath.
func record(ctx context.Context, dbPath string, res *computed) (bool, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return false, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ok, err := st.RecordTree(ctx, res.Snapshot.ID(), res.Path, res.Tree)
	if err != nil {
		return false, WrapExitError(ExitCommandError, "failed to record tree", err)
	}
	return ok, nil
}
