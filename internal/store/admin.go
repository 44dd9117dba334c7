package store

import (
	"context"
	"fmt"

	"github.com/roach88/flightbook/internal/flight"
)

// Clear deletes every reservation and user and resets the reservation
// counter to 1. Flights are left untouched.
func (s *Store) Clear(ctx context.Context) error {
	return s.InTx(ctx, TxOptions{}, func(tx *Tx) error {
		for _, stmt := range []string{
			`DELETE FROM reservations`,
			`DELETE FROM users`,
			`UPDATE reservation_counter SET next_rid = 1 WHERE id = 1`,
		} {
			if _, err := tx.exec(ctx, stmt); err != nil {
				return fmt.Errorf("clear tables: %w", err)
			}
		}
		return nil
	})
}

// LoadFlights inserts flights, replacing any existing row with the same fid.
// All flights are validated before anything is written.
func (s *Store) LoadFlights(ctx context.Context, flights []flight.Flight) error {
	for i, f := range flights {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("flight %d: %w", i, err)
		}
	}

	return s.InTx(ctx, TxOptions{}, func(tx *Tx) error {
		for _, f := range flights {
			_, err := tx.exec(ctx, `
				INSERT INTO flights (`+flightColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (fid) DO UPDATE SET
					day_of_month = excluded.day_of_month,
					carrier_id   = excluded.carrier_id,
					flight_num   = excluded.flight_num,
					origin_city  = excluded.origin_city,
					dest_city    = excluded.dest_city,
					actual_time  = excluded.actual_time,
					capacity     = excluded.capacity,
					price        = excluded.price,
					canceled     = excluded.canceled
			`, f.ID, f.DayOfMonth, f.CarrierID, f.FlightNum,
				flight.NormalizeCity(f.OriginCity), flight.NormalizeCity(f.DestCity),
				f.Duration, f.Capacity, f.Price, f.Canceled)
			if err != nil {
				return fmt.Errorf("load flight %d: %w", f.ID, err)
			}
		}
		return nil
	})
}

// FlightCount returns the number of rows in the flights table.
func (s *Store) FlightCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flights`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flights: %w", err)
	}
	return n, nil
}
