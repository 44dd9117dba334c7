package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// NextReservationID allocates a reservation id. It must run inside the same
// transaction that inserts the reservation: the read and the increment commit
// or roll back together, so serializable isolation keeps two concurrent
// bookings from observing the same value. Ids consumed by a rolled-back
// transaction are returned to the counter; ids of canceled reservations are
// not.
//
// Returns ErrAllocationFailure if the counter row is missing.
func (t *Tx) NextReservationID(ctx context.Context) (int64, error) {
	var next int64
	err := t.queryRow(ctx, `SELECT next_rid FROM reservation_counter WHERE id = 1`).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAllocationFailure
	}
	if err != nil {
		return 0, fmt.Errorf("read reservation counter: %w", err)
	}

	if _, err := t.exec(ctx, `UPDATE reservation_counter SET next_rid = next_rid + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("advance reservation counter: %w", err)
	}
	return next, nil
}

// PeekReservationID returns the id the next booking would receive without
// consuming it.
func (t *Tx) PeekReservationID(ctx context.Context) (int64, error) {
	var next int64
	err := t.queryRow(ctx, `SELECT next_rid FROM reservation_counter WHERE id = 1`).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAllocationFailure
	}
	if err != nil {
		return 0, fmt.Errorf("read reservation counter: %w", err)
	}
	return next, nil
}
