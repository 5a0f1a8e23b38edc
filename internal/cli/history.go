package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/snapsum/internal/checksum"
	"github.com/roach88/snapsum/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Root     string
}

// HistoryEntry is one journaled tree in JSON output.
type HistoryEntry struct {
	Seq        int64  `json:"seq"`
	SnapshotID string `json:"snapshot_id"`
	Scope      string `json:"scope"`
	Root       string `json:"root"`
	Children   int    `json:"children"`
	Source     string `json:"source,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled checksum trees",
		Long: `List trees recorded by 'snapsum sum --db' and 'snapsum watch', oldest first.

With --root, only trees whose root checksum matches are listed; this answers
"which snapshots had exactly this content?".

Example:
  snapsum history --db ./snapsum.db --limit 20
  snapsum history --db ./snapsum.db --root 3f2a...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", os.Getenv(EnvDatabase), "path to journal database (default $"+EnvDatabase+")")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "show at most this many recent trees (0 = all)")
	cmd.Flags().StringVar(&opts.Root, "root", "", "only trees with this root checksum")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	if opts.Database == "" {
		return fail(f, NewExitError(ExitCommandError, "no database: pass --db or set "+EnvDatabase))
	}
	if _, err := os.Stat(opts.Database); err != nil {
		return fail(f, WrapExitError(ExitCommandError, "database not found", err))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(f, WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	var records []store.TreeRecord
	if opts.Root != "" {
		root, perr := checksum.Parse(opts.Root)
		if perr != nil {
			return fail(f, WrapExitError(ExitCommandError, "invalid --root checksum", perr))
		}
		records, err = st.FindByRoot(ctx, root)
	} else {
		records, err = st.ListTrees(ctx, opts.Limit)
	}
	if err != nil {
		return fail(f, WrapExitError(ExitCommandError, "failed to read journal", err))
	}

	entries := make([]HistoryEntry, len(records))
	for i, rec := range records {
		entries[i] = HistoryEntry{
			Seq:        rec.Seq,
			SnapshotID: rec.SnapshotID,
			Scope:      rec.Scope.String(),
			Root:       rec.Root.String(),
			Children:   rec.ChildCount,
			Source:     rec.Source,
		}
	}

	if opts.Format == "json" {
		return f.Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No trees recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSNAPSHOT\tSCOPE\tROOT\tCHILDREN\tSOURCE")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			e.Seq, e.SnapshotID, e.Scope, shortOrZero(records[i].Root), e.Children, e.Source)
	}
	return tw.Flush()
}
