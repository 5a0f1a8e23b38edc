package testutil

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/snapsum/internal/workspace"
)

// Graph is a set of test entities keyed by id.
type Graph map[workspace.EntityID]*Entity

// NewGraph builds a Graph from an adjacency list. Every node gets kind "go"
// and content equal to its id.
func NewGraph(edges map[workspace.EntityID][]workspace.EntityID) Graph {
	g := make(Graph, len(edges))
	for id, refs := range edges {
		g[id] = &Entity{EntityKind: "go", Refs: refs, Content: string(id)}
	}
	return g
}

// Snapshot builds a snapshot with the fixed id "test-snapshot" unless opts
// override it.
func (g Graph) Snapshot(t testing.TB, opts ...workspace.Option) *workspace.Snapshot {
	t.Helper()
	entities := make(map[workspace.EntityID]workspace.Entity, len(g))
	for id, e := range g {
		entities[id] = e
	}
	all := append([]workspace.Option{workspace.WithID("test-snapshot")}, opts...)
	snap, err := workspace.New(entities, all...)
	require.NoError(t, err)
	return snap
}

// TotalCalls sums Checksum invocations across the graph.
func (g Graph) TotalCalls() int {
	n := 0
	for _, e := range g {
		n += e.Calls()
	}
	return n
}

// Chain returns an adjacency list n0 -> n1 -> ... -> n(length-1).
func Chain(prefix string, length int) map[workspace.EntityID][]workspace.EntityID {
	edges := make(map[workspace.EntityID][]workspace.EntityID, length)
	for i := 0; i < length; i++ {
		id := workspace.EntityID(prefix + strconv.Itoa(i))
		if i+1 < length {
			edges[id] = []workspace.EntityID{workspace.EntityID(prefix + strconv.Itoa(i+1))}
		} else {
			edges[id] = nil
		}
	}
	return edges
}
