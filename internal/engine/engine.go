package engine

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/roach88/snapsum/internal/checksum"
	"github.com/roach88/snapsum/internal/workspace"
)

// Engine computes and caches checksum trees over snapshots.
//
// The Engine itself is stateless apart from configuration; every cache lives
// on the Snapshot. One Engine may serve any number of snapshots.
//
// Thread-safety: all methods are safe for concurrent use.
type Engine struct {
	parallelism int
	reporter    FatalReporter
	metrics     *Metrics
	logger      *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithParallelism bounds how many per-entity checksums run at once.
//
// Default: runtime.GOMAXPROCS(0)
// Use WithParallelism(1) to serialize owner calls (e.g. non-reentrant owners).
// Non-positive values remove the bound.
func WithParallelism(n int) EngineOption {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithFatalReporter sets the hook invoked for invariant violations.
// Default: LogReporter using the engine logger.
func WithFatalReporter(r FatalReporter) EngineOption {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the structured logger (default: slog.Default()).
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		parallelism: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.reporter == nil {
		e.reporter = LogReporter{Logger: e.logger}
	}
	return e
}

// TryPeekChecksum returns the root checksum for scope only if it has already
// been computed for snap. Never blocks and never triggers computation.
func (e *Engine) TryPeekChecksum(snap *workspace.Snapshot, scope workspace.ScopeKey) (checksum.Checksum, bool) {
	res, ok := snap.Trees().Peek(scope)
	e.metrics.observePeek(ok)
	if !ok {
		return checksum.Zero, false
	}
	return res.Tree.Root, true
}

// GetChecksum returns the root checksum for scope, computing it if needed.
func (e *Engine) GetChecksum(ctx context.Context, snap *workspace.Snapshot, scope workspace.ScopeKey) (checksum.Checksum, error) {
	tree, _, err := e.GetChecksumTree(ctx, snap, scope)
	if err != nil {
		return checksum.Zero, err
	}
	return tree.Root, nil
}

// GetChecksumTree returns the checksum tree for scope together with the cone
// it covers (nil for workspace.WholeSnapshot), computing it if needed.
//
// Concurrent calls for the same (snap, scope) share one computation. The
// computation is bound to the Engine that first requested the key.
func (e *Engine) GetChecksumTree(ctx context.Context, snap *workspace.Snapshot, scope workspace.ScopeKey) (checksum.Tree, *workspace.Cone, error) {
	res, err := snap.Trees().GetOrCompute(ctx, scope, func(ctx context.Context) (workspace.ScopedTree, error) {
		return e.Assemble(ctx, snap, scope)
	})
	if err != nil {
		return checksum.Tree{}, nil, err
	}
	return res.Tree, res.Cone, nil
}
