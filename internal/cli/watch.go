package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/roach88/snapsum/internal/engine"
	"github.com/roach88/snapsum/internal/manifest"
	"github.com/roach88/snapsum/internal/store"
	"github.com/roach88/snapsum/internal/workspace"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Database    string
	MetricsAddr string
	Root        string
	Debounce    time.Duration

	// OnTree, when set, is called after every computed tree (for testing).
	OnTree func(snapshotID string, root string)
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <manifest>",
		Short: "Recompute checksums whenever a manifest changes",
		Long: `Watch a manifest file. Every change builds a fresh snapshot, computes its
root checksum and logs it; with --db the tree is also journaled.

With --metrics-addr, Prometheus metrics are served at /metrics.

Example:
  snapsum watch workspace.yaml --db ./snapsum.db
  snapsum watch workspace.yaml --metrics-addr :9464 --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use command's context if available (for testing), otherwise create one
			parentCtx := cmd.Context()
			if parentCtx == nil {
				parentCtx = context.Background()
			}
			ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", os.Getenv(EnvDatabase), "record every tree in this journal database")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&opts.Root, "root", "", "cone root project id (default: whole workspace)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 100*time.Millisecond, "wait this long after a change before recomputing")

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	eng := opts.engine(logger, engine.WithMetrics(engine.NewMetrics(reg)))

	var st *store.Store
	if opts.Database != "" {
		var err error
		if st, err = store.Open(opts.Database); err != nil {
			return fail(f, WrapExitError(ExitCommandError, "failed to open database", err))
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	if opts.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              opts.MetricsAddr,
			Handler:           metricsMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", opts.MetricsAddr, "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", opts.MetricsAddr)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fail(f, WrapExitError(ExitCommandError, "failed to create watcher", err))
	}
	defer watcher.Close()

	// Editors often replace files on save, so watch the directory
	abs, err := filepath.Abs(path)
	if err != nil {
		return fail(f, WrapExitError(ExitCommandError, "invalid manifest path", err))
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fail(f, WrapExitError(ExitCommandError, "failed to watch manifest", err))
	}

	w := &watchLoop{
		opts:   opts,
		path:   path,
		engine: eng,
		loader: manifest.NewLoader(logger),
		store:  st,
		logger: logger,
		scope:  scopeFor(opts.Root),
	}

	logger.Info("watching manifest", "path", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s. Press Ctrl-C to stop.\n", path)
	w.recompute(ctx)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("manifest changed", "op", ev.Op.String())
			debounce = time.After(opts.Debounce)

		case <-debounce:
			debounce = nil
			w.recompute(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		}
	}
}

// metricsMux serves reg at /metrics.
func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

// watchLoop holds the state shared across recomputations.
type watchLoop struct {
	opts   *WatchOptions
	path   string
	engine *engine.Engine
	loader *manifest.Loader
	store  *store.Store
	logger *slog.Logger
	scope  workspace.ScopeKey
}

// recompute builds a fresh snapshot of the manifest and computes its root.
// Failures are logged; the watch keeps running.
func (w *watchLoop) recompute(ctx context.Context) {
	res, err := computeTree(ctx, w.loader, w.engine, w.path, w.scope)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("checksum failed", "path", w.path, "error", err)
		}
		return
	}

	w.logger.Info("checksum computed",
		"snapshot", res.Snapshot.ID(),
		"scope", res.Tree.Scope.String(),
		"root", res.Tree.Root.String(),
		"children", res.Tree.Children.Len(),
	)

	if w.store != nil {
		recorded, err := w.store.RecordTree(ctx, res.Snapshot.ID(), w.path, res.Tree)
		if err != nil {
			w.logger.Error("failed to record tree", "error", err)
		} else {
			w.logger.Debug("tree recorded", "recorded", recorded)
		}
	}

	if w.opts.OnTree != nil {
		w.opts.OnTree(res.Snapshot.ID(), res.Tree.Root.String())
	}
}
