package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/snapsum/internal/checksum"
	"github.com/roach88/snapsum/internal/flight"
	"github.com/roach88/snapsum/internal/workspace"
)

var tracer = otel.Tracer("snapsum.engine")

const (
	outcomeOK        = "ok"
	outcomeCancelled = "cancelled"
	outcomeFailed    = "failed"
)

// Assemble computes the checksum tree for scope without consulting or
// populating the snapshot's cache. Most callers want GetChecksumTree.
//
// Errors are either a cancellation (wrapping ctx.Err()) or an
// *InvariantError that has already been passed to the FatalReporter.
func (e *Engine) Assemble(ctx context.Context, snap *workspace.Snapshot, scope workspace.ScopeKey) (workspace.ScopedTree, error) {
	ctx, span := tracer.Start(ctx, "engine.Assemble", trace.WithAttributes(
		attribute.String("snapsum.snapshot", snap.ID()),
		attribute.String("snapsum.scope", scope.String()),
	))
	defer span.End()
	start := time.Now()

	// Step 1: resolve the id set in scope
	var cone *workspace.Cone
	set := snap.AllIDs()
	if scope.Scoped {
		cone = workspace.BuildCone(scope.Root, snap)
		set = cone.Members
	}

	// Step 2: fix the order before any fan-out
	ids, entities := e.participants(snap, set)
	span.SetAttributes(attribute.Int("snapsum.children", len(ids)))

	e.logger.Debug("assembling checksum tree",
		"snapshot", snap.ID(),
		"scope", scope.String(),
		"children", len(ids),
	)

	// Steps 3 and 5: per-entity and attribute checksums, concurrently
	sums, attrs, err := e.fanOut(ctx, snap, scope, ids, entities)
	if err != nil {
		outcome := outcomeFailed
		if !IsInvariantError(err) {
			outcome = outcomeCancelled
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "checksum assembly failed")
		}
		e.metrics.observeAssembly(scope.Scoped, outcome, time.Since(start), len(ids))
		return workspace.ScopedTree{}, err
	}

	// Steps 4 and 6: collection in fixed order, then the root
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	tree, err := checksum.NewTree(names, sums, scope.Checksum(), attrs)
	if err != nil {
		ie := &InvariantError{
			Code:       ErrCodeTreeAssembly,
			SnapshotID: snap.ID(),
			Scope:      scope.String(),
			Err:        err,
		}
		e.reporter.ReportFatal(ie)
		e.metrics.observeAssembly(scope.Scoped, outcomeFailed, time.Since(start), len(ids))
		return workspace.ScopedTree{}, ie
	}

	span.SetAttributes(attribute.String("snapsum.root", tree.Root.String()))
	e.metrics.observeAssembly(scope.Scoped, outcomeOK, time.Since(start), len(ids))
	e.logger.Debug("checksum tree assembled",
		"snapshot", snap.ID(),
		"scope", scope.String(),
		"root", tree.Root.Short(),
		"duration", time.Since(start),
	)

	return workspace.ScopedTree{Tree: tree, Cone: cone}, nil
}

// participants returns the ordered, present, supported-kind ids of set with
// their entities, index for index.
func (e *Engine) participants(snap *workspace.Snapshot, set *workspace.IDSet) ([]workspace.EntityID, []workspace.Entity) {
	ordered := snap.Orderer().Order(set)
	ids := ordered[:0]
	entities := make([]workspace.Entity, 0, len(ordered))
	for _, id := range ordered {
		entity, ok := snap.Entity(id)
		if !ok || !snap.IsSupported(entity.Kind()) {
			continue
		}
		ids = append(ids, id)
		entities = append(entities, entity)
	}
	return ids, entities
}

// fanOut computes every child checksum plus the attribute checksum.
//
// Results are written by index, so the returned slice follows ids no matter
// which goroutine finishes first. The first failure cancels the rest.
func (e *Engine) fanOut(
	ctx context.Context,
	snap *workspace.Snapshot,
	scope workspace.ScopeKey,
	ids []workspace.EntityID,
	entities []workspace.Entity,
) ([]checksum.Checksum, checksum.Checksum, error) {
	sums := make([]checksum.Checksum, len(ids))
	var attrs checksum.Checksum

	// Scoped trees reuse per-entity checksums from a completed whole-snapshot
	// tree. Snapshots are immutable, so those values are still exact.
	pending := make([]bool, len(ids))
	reused := 0
	var (
		whole     workspace.ScopedTree
		haveWhole bool
	)
	if scope.Scoped {
		whole, haveWhole = snap.Trees().Peek(workspace.WholeSnapshot)
	}
	var index map[string]int
	if haveWhole {
		index = make(map[string]int, len(whole.Tree.ChildIDs))
		for i, id := range whole.Tree.ChildIDs {
			index[id] = i
		}
	}
	for i, id := range ids {
		if j, ok := index[string(id)]; ok {
			sums[i] = whole.Tree.Children.At(j)
			reused++
			continue
		}
		pending[i] = true
	}
	e.metrics.observeReused(reused)

	g, gctx := errgroup.WithContext(ctx)
	if e.parallelism > 0 {
		g.SetLimit(e.parallelism)
	}

	g.Go(func() error {
		sum, err := guard(func() (checksum.Checksum, error) {
			return snap.Attributes().Checksum(gctx)
		})
		if err != nil {
			return &sourceError{attribute: true, err: err}
		}
		attrs = sum
		return nil
	})

	for i := range ids {
		if !pending[i] {
			continue
		}
		g.Go(func() error {
			e.metrics.observeEntityChecksum()
			sum, err := guard(func() (checksum.Checksum, error) {
				return entities[i].Checksum(gctx)
			})
			if err != nil {
				return &sourceError{entity: string(ids[i]), err: err}
			}
			sums[i] = sum
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, checksum.Zero, e.classify(ctx, snap, scope, err)
	}
	return sums, attrs, nil
}

// guard runs an owner checksum, converting a panic into a *flight.PanicError.
// errgroup goroutines do not recover panics themselves.
func guard(fn func() (checksum.Checksum, error)) (sum checksum.Checksum, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &flight.PanicError{Value: r}
		}
	}()
	return fn()
}

// classify separates cancellation (returned as is, never reported) from
// invariant violations (reported, then returned as *InvariantError).
//
// Only ctx being done counts as cancellation. An owner error that wraps
// context.Canceled or context.DeadlineExceeded while ctx is live is the
// owner's own failure.
func (e *Engine) classify(ctx context.Context, snap *workspace.Snapshot, scope workspace.ScopeKey, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("assemble %s: %w", scope, ctxErr)
	}

	ie := &InvariantError{
		Code:       ErrCodeEntityChecksum,
		SnapshotID: snap.ID(),
		Scope:      scope.String(),
		Err:        err,
	}
	var se *sourceError
	if errors.As(err, &se) {
		ie.Err = se.err
		ie.Entity = se.entity
		if se.attribute {
			ie.Code = ErrCodeAttributeChecksum
		}
	}

	e.reporter.ReportFatal(ie)
	return ie
}
