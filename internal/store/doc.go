// Package store keeps a history of harness runs in SQLite.
//
// Each run is one row in runs plus one row per evaluated case in outcomes.
// A run is identified by a UUIDv7 and ordered by a logical sequence number
// assigned at write time:
//
//   - runs.seq is the previous maximum plus one, so ListRuns can return the
//     newest run first without consulting timestamps
//   - outcomes.seq is the case's position in the report, so ReadOutcomes
//     returns cases in the order they ran
//   - runs.digest is the report snapshot digest (see harness.Digest); two
//     runs with equal digests reached identical verdicts
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
