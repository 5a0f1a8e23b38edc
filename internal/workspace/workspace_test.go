package workspace

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snapsum/internal/checksum"
)

// stubEntity is a minimal Entity for graph tests.
type stubEntity struct {
	kind Kind
	refs []EntityID
}

func (e stubEntity) Kind() Kind { return e.kind }
func (e stubEntity) References() []EntityID { return e.refs }
func (e stubEntity) Checksum(context.Context) (checksum.Checksum, error) {
	return checksum.Of(checksum.DomainEntity, []byte(e.kind)), nil
}

// graph builds a snapshot from an adjacency list; every node has kind "go".
func graph(t *testing.T, edges map[EntityID][]EntityID, opts ...Option) *Snapshot {
	t.Helper()
	entities := make(map[EntityID]Entity, len(edges))
	for id, refs := range edges {
		entities[id] = stubEntity{kind: "go", refs: refs}
	}
	snap, err := New(entities, append([]Option{WithID("test")}, opts...)...)
	require.NoError(t, err)
	return snap
}

func TestSnapshot_New(t *testing.T) {
	snap := graph(t, map[EntityID][]EntityID{"a": nil, "b": {"a"}})

	assert.Equal(t, "test", snap.ID())
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, 2, snap.AllIDs().Len())
	assert.Same(t, snap.AllIDs(), snap.AllIDs(), "AllIDs must return a stable identity")
	assert.NotNil(t, snap.Trees())
	assert.NotNil(t, snap.Orderer())

	_, ok := snap.Entity("b")
	assert.True(t, ok)
	_, ok = snap.Entity("zzz")
	assert.False(t, ok)
}

func TestSnapshot_NilEntityRejected(t *testing.T) {
	_, err := New(map[EntityID]Entity{"a": nil})
	assert.Error(t, err)
}

func TestSnapshot_CopiesEntityMap(t *testing.T) {
	entities := map[EntityID]Entity{"a": stubEntity{kind: "go"}}
	snap, err := New(entities, WithID("s"))
	require.NoError(t, err)

	entities["b"] = stubEntity{kind: "go"}
	assert.Equal(t, 1, snap.Len(), "snapshot must not observe caller mutation")
}

func TestSnapshot_GeneratedIDs(t *testing.T) {
	gen := NewFixedGenerator("snap-1", "snap-2")
	a, err := New(nil, WithIDGenerator(gen))
	require.NoError(t, err)
	b, err := New(nil, WithIDGenerator(gen))
	require.NoError(t, err)

	assert.Equal(t, "snap-1", a.ID())
	assert.Equal(t, "snap-2", b.ID())
	assert.Panics(t, func() { gen.Generate() })

	c, err := New(nil)
	require.NoError(t, err)
	assert.Len(t, c.ID(), 36, "default ids are hyphenated UUIDs")
}

func TestSnapshot_SupportedKinds(t *testing.T) {
	snap, err := New(map[EntityID]Entity{
		"go":   stubEntity{kind: "go"},
		"docs": stubEntity{kind: "markdown"},
		"anon": stubEntity{kind: ""},
	}, WithSupportedKinds(Kinds("go")))
	require.NoError(t, err)

	assert.True(t, snap.Participates("go"))
	assert.False(t, snap.Participates("docs"))
	assert.False(t, snap.Participates("missing"))
	assert.True(t, snap.IsSupported("go"))

	def, err := New(map[EntityID]Entity{"anon": stubEntity{kind: ""}})
	require.NoError(t, err)
	assert.False(t, def.Participates("anon"), "AnyKind rejects the empty kind")
}

func TestSnapshot_DefaultAttributes(t *testing.T) {
	snap := graph(t, nil)
	sum, err := snap.Attributes().Checksum(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checksum.Of(checksum.DomainAttributes, nil), sum)
}

func TestScopeKey(t *testing.T) {
	assert.Equal(t, "*", WholeSnapshot.String())
	assert.Equal(t, "b", ConeOf("b").String())
	assert.Equal(t, checksum.Rooted("b"), ConeOf("b").Checksum())
	assert.Equal(t, checksum.Whole, ScopeKey{}.Checksum())
	assert.NotEqual(t, WholeSnapshot, ConeOf(""))
}

func TestIDSet(t *testing.T) {
	s := NewIDSet("b", "a", "b")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.Equal(t, []EntityID{"a", "b"}, s.Sorted())

	var nilSet *IDSet
	assert.Equal(t, 0, nilSet.Len())
	assert.False(t, nilSet.Contains("a"))
	assert.Equal(t, []EntityID{}, nilSet.Sorted())
}

func TestSortIDs(t *testing.T) {
	in := []EntityID{"c", "a", "B"}
	out := SortIDs(in)
	assert.Equal(t, []EntityID{"B", "a", "c"}, out, "byte order: uppercase first")
	assert.Equal(t, []EntityID{"c", "a", "B"}, in, "input must not be modified")
	assert.Equal(t, []EntityID{}, SortIDs(nil))
}

func TestFixedGenerator_Order(t *testing.T) {
	gen := NewFixedGenerator(fmt.Sprint(1), fmt.Sprint(2))
	assert.Equal(t, "1", gen.Generate())
	assert.Equal(t, "2", gen.Generate())
}
