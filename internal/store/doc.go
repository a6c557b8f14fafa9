// Package store provides SQLite-backed durable storage for the interaction
// log.
//
// The log is append-only with two tables:
//   - cycles: one row per finished press-to-release cycle
//   - executions: one row per executed gesture action
//
// # Ordering
//
// Every row carries a seq from the engine's counter. All reads use
// ORDER BY seq ASC followed by a binary-collated tiebreaker, so results are
// identical across runs. Wall-clock times are stored for display only.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING: writing the same cycle (session,
// cycle_id) or the same execution twice is a silent no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The schema version lives in PRAGMA user_version; Open refuses a log with
// a newer version than this build writes.
package store
