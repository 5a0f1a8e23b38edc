package workspace

import (
	"context"

	"github.com/roach88/snapsum/internal/checksum"
)

// EntityID identifies a project-like unit. Ids order lexicographically by
// their bytes.
type EntityID string

// Kind is the language/kind tag of an entity.
type Kind string

// KindFilter decides whether entities of a kind participate in checksum
// synchronization.
type KindFilter func(Kind) bool

// AnyKind accepts every non-empty kind.
func AnyKind(k Kind) bool {
	return k != ""
}

// Kinds returns a filter accepting exactly the given kinds.
func Kinds(kinds ...Kind) KindFilter {
	set := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return func(k Kind) bool {
		_, ok := set[k]
		return ok
	}
}

// Entity is the owner-provided state of a project-like unit.
//
// Implementations must be safe for concurrent use and must return the same
// checksum for the lifetime of the snapshot holding them.
type Entity interface {
	// Kind returns the language/kind tag.
	Kind() Kind

	// References returns outgoing reference edges in declaration order.
	// Targets need not exist in the snapshot.
	References() []EntityID

	// Checksum returns the entity's own checksum. May be expensive and may be
	// memoized by the owner.
	Checksum(ctx context.Context) (checksum.Checksum, error)
}

// AttributeSource provides the checksum of snapshot-level state not owned by
// any entity (e.g. external resource references).
type AttributeSource interface {
	Checksum(ctx context.Context) (checksum.Checksum, error)
}

// NoAttributes is the AttributeSource of a snapshot without global state.
type NoAttributes struct{}

// Checksum returns the checksum of the empty attribute set.
func (NoAttributes) Checksum(context.Context) (checksum.Checksum, error) {
	return checksum.Of(checksum.DomainAttributes, nil), nil
}

// ScopeKey selects what a checksum covers: the whole snapshot or the cone
// rooted at one entity. The zero value is WholeSnapshot.
type ScopeKey struct {
	Root   EntityID
	Scoped bool
}

// WholeSnapshot is the universal scope.
var WholeSnapshot = ScopeKey{}

// ConeOf returns the scope of the cone rooted at id.
func ConeOf(id EntityID) ScopeKey {
	return ScopeKey{Root: id, Scoped: true}
}

// Checksum converts the key into the scope recorded in a checksum tree.
func (k ScopeKey) Checksum() checksum.Scope {
	if !k.Scoped {
		return checksum.Whole
	}
	return checksum.Rooted(string(k.Root))
}

// String returns "*" for the whole snapshot and the root id otherwise.
func (k ScopeKey) String() string {
	return k.Checksum().String()
}

// ScopedTree is the memoized result for one scope: the checksum tree plus the
// cone that produced it (nil for the whole snapshot).
type ScopedTree struct {
	Tree checksum.Tree
	Cone *Cone
}
