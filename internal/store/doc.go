// Package store provides a SQLite-backed journal of assembled checksum trees.
//
// The journal records, per (snapshot, scope), the root checksum, the ordered
// child checksums that produced it, and the manifest it was built from. It is
// what `snapsum history` reads and what `snapsum watch` appends to.
//
// # Critical Patterns
//
// Idempotent Writes
//   - UNIQUE(snapshot_id, scoped, scope_root) constraint
//   - Recording the same tree twice is a no-op
//
// Logical Ordering
//   - All ordering uses seq INTEGER, NEVER timestamps
//   - Children keep the exact position they had in the tree
//
// Deterministic Query Results
//   - All queries include ORDER BY seq ASC (and position ASC for children)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
