// Package store executes compiled plans and keeps a catalog of saved
// queries in SQLite.
//
// # Execution
//
// Executor renders a queryir.Plan with querysql for its dialect and runs it
// through database/sql. Open registers the "sqlite3_fql" driver, which adds
// a regexp(pattern, value) function so REGEXP predicates work on SQLite.
// Connect wraps any other registered driver (pgx, mysql).
//
// # Saved queries
//
// A saved query is stored as canonical JSON of its serialized expression
// together with its fingerprint:
//   - Saving under an existing name replaces the expression
//   - Reads decode through the serde codec and recheck the fingerprint, so
//     a corrupt row surfaces as an error instead of a wrong expression
//   - Listing orders by seq (a logical clock), never by wall time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
