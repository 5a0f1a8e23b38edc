// Package workspace models immutable workspace snapshots for checksum
// synchronization.
//
// A Snapshot maps entity ids to owner-provided entities and carries the
// snapshot-level attributes that no entity owns. Snapshots are never mutated;
// a new workspace state is a new Snapshot with its own caches.
//
// This package also hosts the two graph services the checksum engine relies on:
//
//   - Orderer: deterministic (lexicographic) ordering of id sets, memoized by
//     set identity in a bounded cache owned by the Snapshot
//   - BuildCone: iterative transitive closure over reference edges, tolerant of
//     cycles and dangling references
package workspace
