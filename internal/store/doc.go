// Package store is the relational storage collaborator of the booking engine.
//
// It owns four tables:
//   - users: credentials and account balance
//   - flights: immutable flight rows, read-only to the engine
//   - reservations: one row per booked itinerary (flight2 NULL when direct)
//   - reservation_counter: singleton row holding the next reservation id
//
// # Transactions
//
// Every read-then-write runs inside InTx, which opens a SERIALIZABLE
// transaction, hands a *Tx to the callback, commits when the callback returns
// nil and rolls back otherwise. Callers never issue BEGIN/COMMIT themselves.
//
// IsTransient separates "this transaction lost a race, run it again" from
// real failures. The booking engine retries the whole operation on the
// former; see internal/retry.
//
// # Backends
//
//   - sqlite (default): mattn/go-sqlite3, WAL journal, busy timeout, and
//     BEGIN IMMEDIATE so that every transaction takes the write lock up front.
//     SQLite executes write transactions one at a time, which is serializable.
//   - postgres: jackc/pgx through database/sql, ISOLATION LEVEL SERIALIZABLE.
//     Serialization failures (40001) and deadlocks (40P01) are transient.
//
// Queries are written once with ? placeholders and rebound per dialect.
package store
