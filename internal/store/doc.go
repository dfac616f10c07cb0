// Package store provides the SQLite-backed publish-session ledger.
//
// The ledger is append-only:
//   - Sessions: one collector run over a source document
//   - Shots: instance data collected for a clip, stored as canonical JSON
//   - Skipped clips: clips the engine could not resolve, with their error code
//
// # Ordering
//
// All records carry a seq INTEGER from a logical clock, never a timestamp.
// Queries order by seq ASC, id ASC COLLATE BINARY so listings are stable.
//
// # Idempotency
//
// Shots are unique per (session_id, instance_hash). The instance hash is
// the domain-separated SHA-256 of the shot data's RFC 8785 canonical JSON
// (see internal/canon), so recording identical data twice stores it once.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
