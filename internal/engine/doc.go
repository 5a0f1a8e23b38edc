// Package engine implements the snapsum checksum tree engine.
//
// The engine answers two questions about an immutable workspace.Snapshot:
// "what is the checksum of this snapshot (or of this entity's cone)?" and
// "which checksums make up that answer?".
//
// ARCHITECTURE:
//
// Memoized per Snapshot and Scope:
// Every Snapshot owns a flight.Table keyed by workspace.ScopeKey. The first
// request for a key starts Assemble; concurrent and later requests share the
// result. Cached trees live exactly as long as the Snapshot.
//
// Assembly Flow:
//  1. Scoped requests build the cone (workspace.BuildCone); whole-snapshot
//     requests use every entity
//  2. Ids are ordered by the Snapshot's Orderer and filtered to present,
//     supported-kind entities
//  3. Per-entity checksums fan out concurrently (errgroup, bounded)
//  4. Results fill a pre-sized slice by index, so completion order never
//     affects the outcome
//  5. The attribute checksum is computed in the same fan-out
//  6. checksum.NewTree combines aggregate, scope and attributes into the root
//
// CRITICAL PATTERNS:
//
// Deterministic Order:
// The order of children is fixed before fan-out and never re-sorted.
//
// Fail-Fast:
// An unexpected entity or attribute failure is reported through the
// FatalReporter and surfaces as *InvariantError. A partial checksum is never
// returned.
//
// Cancellation Is Not Failure:
// A cancelled caller unwinds with ctx.Err(); nothing is reported and the shared
// cache entry is untouched for other waiters (see package flight).
package engine
