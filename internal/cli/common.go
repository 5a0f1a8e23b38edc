package cli

import (
	"context"
	"errors"

	"github.com/roach88/snapsum/internal/checksum"
	"github.com/roach88/snapsum/internal/engine"
	"github.com/roach88/snapsum/internal/manifest"
	"github.com/roach88/snapsum/internal/workspace"
)

// scopeFor maps the --root flag to a scope key.
func scopeFor(root string) workspace.ScopeKey {
	if root == "" {
		return workspace.WholeSnapshot
	}
	return workspace.ConeOf(workspace.EntityID(root))
}

// computed is one manifest's tree for one scope.
type computed struct {
	Path     string
	Manifest *manifest.Manifest
	Snapshot *workspace.Snapshot
	Tree     checksum.Tree
	Cone     *workspace.Cone
}

// computeTree loads path and assembles the tree for scope.
func computeTree(ctx context.Context, loader *manifest.Loader, eng *engine.Engine, path string, scope workspace.ScopeKey) (*computed, error) {
	snap, m, err := loader.LoadSnapshot(ctx, path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load manifest", err)
	}

	tree, cone, err := eng.GetChecksumTree(ctx, snap, scope)
	if err != nil {
		return nil, checksumExitError(err)
	}

	return &computed{
		Path:     path,
		Manifest: m,
		Snapshot: snap,
		Tree:     tree,
		Cone:     cone,
	}, nil
}

// checksumExitError maps an engine error to an exit error.
func checksumExitError(err error) *ExitError {
	if errors.Is(err, engine.ErrInvariant) {
		return WrapExitError(ExitFailure, "checksum invariant violated", err)
	}
	return WrapExitError(ExitCommandError, "checksum computation interrupted", err)
}

// errorCode picks the CLI response code for err.
func errorCode(err error) string {
	var merr *manifest.Error
	var verrs manifest.ValidationErrors
	switch {
	case errors.Is(err, engine.ErrInvariant):
		return ErrCodeInvariant
	case errors.As(err, &merr), errors.As(err, &verrs):
		return ErrCodeManifest
	default:
		return ErrCodeGeneric
	}
}

// fail reports err through the formatter and returns it unchanged so RunE
// can propagate the exit code.
func fail(f *OutputFormatter, err error) error {
	_ = f.Error(errorCode(err), err.Error(), nil)
	return err
}

func shortOrZero(sum checksum.Checksum) string {
	if sum.IsZero() {
		return "-"
	}
	return sum.Short()
}
