// Package store provides SQLite-backed durable storage for monitor state.
//
// Three groups of state survive process restarts:
//   - bis_status: last-known counts and BIN per monitored address
//   - complaints_311: the append-only dedup ledger of seen 311 incidents
//   - owners / address_owners: recipients and the many-to-many
//     address assignment relation
//
// Key invariants:
//   - bis_status rows exist only after a successful BIS fetch; absence
//     means "never checked", not "zero violations"
//   - complaints_311 inserts are idempotent via UNIQUE(incident_id);
//     re-inserting a seen incident is a no-op, never an error
//   - schema changes are additive, applied as ordered, idempotent
//     migrations tracked in PRAGMA user_version
//
// The engine opens one store per run and bulk-reads statuses and incident
// IDs once up front rather than querying per address.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
