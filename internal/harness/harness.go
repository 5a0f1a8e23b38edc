package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/snapsum/internal/checksum"
	"github.com/roach88/snapsum/internal/engine"
	"github.com/roach88/snapsum/internal/manifest"
	"github.com/roach88/snapsum/internal/store"
	"github.com/roach88/snapsum/internal/workspace"
)

// treeKey identifies one computed tree within a scenario run.
type treeKey struct {
	manifest string
	scope    workspace.ScopeKey
}

// Harness executes scenarios against the engine with an in-memory journal.
type Harness struct {
	engine    *engine.Engine
	store     *store.Store
	snapshots map[string]*workspace.Snapshot
	trees     map[treeKey]checksum.Tree
	result    *Result
}

// Run executes a scenario and returns the result.
//
// Each workspace gets a fixed snapshot id equal to its name, so journal
// contents are reproducible. Assertion failures are collected in the result;
// the returned error is reserved for scenarios that cannot be executed at all
// (invalid manifests, unreadable files, engine failures).
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	result := NewResult()
	logger := slog.New(slog.DiscardHandler)
	h := &Harness{
		engine: engine.New(
			engine.WithLogger(logger),
			engine.WithFatalReporter(engine.ReporterFunc(func(err error) {
				result.AddError(fmt.Sprintf("fatal: %v", err))
			})),
		),
		store:     st,
		snapshots: make(map[string]*workspace.Snapshot),
		trees:     make(map[treeKey]checksum.Tree),
		result:    result,
	}

	if err := h.buildSnapshots(ctx, scenario, manifest.NewLoader(logger)); err != nil {
		return nil, err
	}

	for i, a := range scenario.Assertions {
		if err := h.evaluate(ctx, a); err != nil {
			var ae *AssertionError
			if errors.As(err, &ae) {
				result.AddError(fmt.Sprintf("assertion[%d]: %s", i, ae.Error()))
				continue
			}
			return nil, fmt.Errorf("assertion[%d]: %w", i, err)
		}
	}

	return result, nil
}

// buildSnapshots builds every declared workspace in name order.
func (h *Harness) buildSnapshots(ctx context.Context, s *Scenario, loader *manifest.Loader) error {
	for _, name := range slices.Sorted(maps.Keys(s.Manifests)) {
		m := s.Manifests[name]
		snap, err := manifest.Build(&m, workspace.WithID(name))
		if err != nil {
			return fmt.Errorf("manifest %q: %w", name, err)
		}
		h.snapshots[name] = snap
	}
	for _, name := range slices.Sorted(maps.Keys(s.Files)) {
		snap, _, err := loader.LoadSnapshot(ctx, s.Files[name], workspace.WithID(name))
		if err != nil {
			return fmt.Errorf("file %q: %w", name, err)
		}
		h.snapshots[name] = snap
	}
	return nil
}

// tree returns the tree for (name, scope), assembling and journaling it on
// first use.
func (h *Harness) tree(ctx context.Context, name string, scope workspace.ScopeKey) (checksum.Tree, error) {
	key := treeKey{manifest: name, scope: scope}
	if t, ok := h.trees[key]; ok {
		return t, nil
	}

	snap, ok := h.snapshots[name]
	if !ok {
		return checksum.Tree{}, fmt.Errorf("unknown manifest %q", name)
	}
	t, _, err := h.engine.GetChecksumTree(ctx, snap, scope)
	if err != nil {
		return checksum.Tree{}, fmt.Errorf("manifest %q scope %s: %w", name, scope, err)
	}
	if _, err := h.store.RecordTree(ctx, snap.ID(), name, t); err != nil {
		return checksum.Tree{}, fmt.Errorf("failed to journal tree: %w", err)
	}

	h.trees[key] = t
	h.result.AddTree(name, t)
	return t, nil
}

func scopeFor(root string) workspace.ScopeKey {
	if root == "" {
		return workspace.WholeSnapshot
	}
	return workspace.ConeOf(workspace.EntityID(root))
}
