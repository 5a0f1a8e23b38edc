package checksum

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Scope identifies what a Tree covers: the whole snapshot, or the cone rooted
// at a single entity.
type Scope struct {
	// Root is the cone root id. Ignored unless Scoped is true.
	Root string

	// Scoped is false for the universal (whole snapshot) scope.
	Scoped bool
}

// Whole is the universal scope.
var Whole = Scope{}

// Rooted returns the scope of the cone rooted at id.
func Rooted(id string) Scope {
	return Scope{Root: id, Scoped: true}
}

// String returns "*" for the universal scope and the root id otherwise.
func (s Scope) String() string {
	if !s.Scoped {
		return "*"
	}
	return s.Root
}

// encode returns the scope tag used in the root combination rule:
// 0x00 for universal, 0x01 + uint64be(len) + id bytes for scoped.
func (s Scope) encode() []byte {
	if !s.Scoped {
		return []byte{0x00}
	}
	buf := make([]byte, 9, 9+len(s.Root))
	buf[0] = 0x01
	binary.BigEndian.PutUint64(buf[1:], uint64(len(s.Root)))
	return append(buf, s.Root...)
}

// Tree is the checksum tree of a (possibly scoped) snapshot.
// Trees are immutable once built.
type Tree struct {
	// Root combines the children aggregate, the scope and the attributes.
	Root Checksum

	// Children holds per-entity checksums in deterministic id order.
	Children Collection

	// ChildIDs names each entry of Children, index for index.
	ChildIDs []string

	// Attributes is the checksum of snapshot-level state not owned by any entity.
	Attributes Checksum

	Scope Scope
}

// RootOf applies the fixed, order-significant combination rule:
//
//	SHA256(DomainTree + 0x00 + aggregate + scopeTag + attributes)
func RootOf(aggregate Checksum, scope Scope, attributes Checksum) Checksum {
	tag := scope.encode()
	buf := make([]byte, 0, Size+len(tag)+Size)
	buf = append(buf, aggregate[:]...)
	buf = append(buf, tag...)
	buf = append(buf, attributes[:]...)
	return Of(DomainTree, buf)
}

// NewTree assembles a Tree. ids and sums must be the same length and already in
// deterministic order; NewTree never re-sorts.
func NewTree(ids []string, sums []Checksum, scope Scope, attributes Checksum) (Tree, error) {
	if len(ids) != len(sums) {
		return Tree{}, fmt.Errorf("checksum: %d ids but %d checksums", len(ids), len(sums))
	}
	children := NewCollection(sums)
	return Tree{
		Root:       RootOf(children.Aggregate(), scope, attributes),
		Children:   children,
		ChildIDs:   slices.Clone(ids),
		Attributes: attributes,
		Scope:      scope,
	}, nil
}

// Lookup returns the checksum recorded for child id.
func (t Tree) Lookup(id string) (Checksum, bool) {
	i := slices.Index(t.ChildIDs, id)
	if i < 0 {
		return Zero, false
	}
	return t.Children.At(i), true
}

// Render produces a stable, line-oriented text form of the tree.
// Used for CLI output, diffs and golden files.
func (t Tree) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scope %s\n", t.Scope)
	fmt.Fprintf(&b, "root %s\n", t.Root)
	fmt.Fprintf(&b, "attributes %s\n", t.Attributes)
	fmt.Fprintf(&b, "children %d %s\n", t.Children.Len(), t.Children.Aggregate())
	for i, id := range t.ChildIDs {
		fmt.Fprintf(&b, "  %s %s\n", t.Children.At(i), id)
	}
	return b.String()
}

type treeChildJSON struct {
	ID       string   `json:"id"`
	Checksum Checksum `json:"checksum"`
}

type treeJSON struct {
	Scope      string          `json:"scope"`
	Root       Checksum        `json:"root"`
	Aggregate  Checksum        `json:"aggregate"`
	Attributes Checksum        `json:"attributes"`
	Children   []treeChildJSON `json:"children"`
}

// MarshalJSON encodes the tree with snake_case keys and hex checksums.
func (t Tree) MarshalJSON() ([]byte, error) {
	out := treeJSON{
		Scope:      t.Scope.String(),
		Root:       t.Root,
		Aggregate:  t.Children.Aggregate(),
		Attributes: t.Attributes,
		Children:   make([]treeChildJSON, len(t.ChildIDs)),
	}
	for i, id := range t.ChildIDs {
		out.Children[i] = treeChildJSON{ID: id, Checksum: t.Children.At(i)}
	}
	return json.Marshal(out)
}
