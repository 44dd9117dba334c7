package store

import (
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUserExists is returned when a username is already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrAllocationFailure is returned when the reservation counter row is
	// missing. The surrounding transaction must be abandoned.
	ErrAllocationFailure = errors.New("reservation id allocation failed")
)

// Postgres SQLSTATE codes.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// IsTransient reports whether err means the transaction lost a race with a
// concurrent one (or the connection dropped before doing any work) and the
// whole operation can be run again from the start.
//
// Transient:
//   - SQLite SQLITE_BUSY / SQLITE_LOCKED (busy timeout elapsed)
//   - Postgres serialization_failure (40001) and deadlock_detected (40P01)
//   - pgconn errors that declare themselves safe to retry
//   - driver.ErrBadConn
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	return pgconn.SafeToRetry(err)
}

// isUniqueViolation reports a primary key or unique constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return false
}
