package store

import (
	"context"
	"database/sql"
	"fmt"
)

// TxOptions configures InTx.
type TxOptions struct {
	// ReadOnly marks transactions that never write. Postgres enforces it.
	// SQLite ignores it: every SQLite transaction, read-only or not, begins
	// with BEGIN IMMEDIATE and holds the database write lock until it ends,
	// so searches and listings queue behind bookings from any process.
	ReadOnly bool
}

// Tx is an open serializable transaction. It is only valid inside the
// callback passed to InTx.
type Tx struct {
	tx      *sql.Tx
	dialect dialect
}

// InTx runs fn inside one SERIALIZABLE transaction. The transaction commits
// when fn returns nil and rolls back on any error or panic. Errors from fn
// are returned unwrapped so callers can match sentinels and IsTransient;
// begin and commit failures are wrapped.
func (s *Store) InTx(ctx context.Context, opts TxOptions, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
		ReadOnly:  opts.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&Tx{tx: tx, dialect: s.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.rebind(query), args...)
}

func (t *Tx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.dialect.rebind(query), args...)
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.rebind(query), args...)
}
