package harness

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/snapsum/internal/workspace"
)

// AssertionError is returned when an assertion does not hold.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// evaluate checks one assertion. An *AssertionError means the assertion
// failed; any other error means it could not be evaluated.
func (h *Harness) evaluate(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertCone:
		return h.assertCone(a)
	case AssertChildren:
		return h.assertChildren(ctx, a)
	case AssertSameChecksum, AssertDifferentChecksum:
		return h.assertChecksumRelation(ctx, a)
	case AssertJournalMatches:
		return h.assertJournalMatches(ctx, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (h *Harness) assertCone(a Assertion) error {
	snap, ok := h.snapshots[a.Manifest]
	if !ok {
		return fmt.Errorf("unknown manifest %q", a.Manifest)
	}

	cone := workspace.BuildCone(workspace.EntityID(a.Root), snap)
	actual := make([]string, 0, cone.Members.Len())
	for _, id := range cone.Members.Sorted() {
		actual = append(actual, string(id))
	}

	expected := slices.Clone(a.Members)
	slices.Sort(expected)
	if !slices.Equal(expected, actual) {
		return &AssertionError{
			Type:     AssertCone,
			Expected: fmt.Sprintf("cone(%s) = %s", a.Root, list(expected)),
			Actual:   list(actual),
		}
	}
	return nil
}

func (h *Harness) assertChildren(ctx context.Context, a Assertion) error {
	t, err := h.tree(ctx, a.Manifest, scopeFor(a.Root))
	if err != nil {
		return err
	}
	if !slices.Equal(a.Children, t.ChildIDs) {
		return &AssertionError{
			Type:     AssertChildren,
			Expected: fmt.Sprintf("%s children %s", t.Scope, list(a.Children)),
			Actual:   list(t.ChildIDs),
		}
	}
	return nil
}

func (h *Harness) assertChecksumRelation(ctx context.Context, a Assertion) error {
	scope := scopeFor(a.Root)
	left, err := h.tree(ctx, a.Manifests[0], scope)
	if err != nil {
		return err
	}
	right, err := h.tree(ctx, a.Manifests[1], scope)
	if err != nil {
		return err
	}

	want := a.Type == AssertSameChecksum
	if (left.Root == right.Root) == want {
		return nil
	}

	relation := "equal"
	if !want {
		relation = "different"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s roots for %s and %s at %s", relation, a.Manifests[0], a.Manifests[1], scope),
		Actual:   fmt.Sprintf("%s vs %s", left.Root.Short(), right.Root.Short()),
	}
}

// assertJournalMatches assembles the scope for every workspace, then asks the
// journal which of them recorded the same root as a.Manifest.
func (h *Harness) assertJournalMatches(ctx context.Context, a Assertion) error {
	scope := scopeFor(a.Root)
	target, err := h.tree(ctx, a.Manifest, scope)
	if err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(h.snapshots)) {
		if _, err := h.tree(ctx, name, scope); err != nil {
			return err
		}
	}

	records, err := h.store.FindByRoot(ctx, target.Root)
	if err != nil {
		return fmt.Errorf("failed to query journal: %w", err)
	}
	actual := make([]string, 0, len(records))
	for _, r := range records {
		actual = append(actual, r.Source)
	}
	slices.Sort(actual)
	actual = slices.Compact(actual)

	expected := slices.Clone(a.Matches)
	slices.Sort(expected)
	if !slices.Equal(expected, actual) {
		return &AssertionError{
			Type:     AssertJournalMatches,
			Expected: fmt.Sprintf("root of %s at %s shared by %s", a.Manifest, scope, list(expected)),
			Actual:   list(actual),
		}
	}
	return nil
}

func list(ids []string) string {
	return "[" + strings.Join(ids, " ") + "]"
}
