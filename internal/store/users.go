package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// User is a row of the users table.
type User struct {
	Username string
	Hash     []byte
	Salt     []byte
	Balance  int64
}

// UserCredentials returns the stored hash and salt for username.
// Returns ErrNotFound if the user does not exist.
func (t *Tx) UserCredentials(ctx context.Context, username string) (User, error) {
	var u User
	err := t.queryRow(ctx, `
		SELECT username, pw_hash, pw_salt, balance
		FROM users
		WHERE username = ?
	`, username).Scan(&u.Username, &u.Hash, &u.Salt, &u.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("read credentials: %w", err)
	}
	return u, nil
}

// CreateUser inserts a new account.
// Returns ErrUserExists if the username is taken.
func (t *Tx) CreateUser(ctx context.Context, u User) error {
	_, err := t.exec(ctx, `
		INSERT INTO users (username, pw_hash, pw_salt, balance)
		VALUES (?, ?, ?, ?)
	`, u.Username, u.Hash, u.Salt, u.Balance)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Balance returns the account balance of username.
func (t *Tx) Balance(ctx context.Context, username string) (int64, error) {
	var balance int64
	err := t.queryRow(ctx, `SELECT balance FROM users WHERE username = ?`, username).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

// SetBalance overwrites the balance of username.
func (t *Tx) SetBalance(ctx context.Context, username string, balance int64) error {
	if _, err := t.exec(ctx, `UPDATE users SET balance = ? WHERE username = ?`, balance, username); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

// AddBalance credits delta to the balance of username.
func (t *Tx) AddBalance(ctx context.Context, username string, delta int64) error {
	if _, err := t.exec(ctx, `UPDATE users SET balance = balance + ? WHERE username = ?`, delta, username); err != nil {
		return fmt.Errorf("add balance: %w", err)
	}
	return nil
}
