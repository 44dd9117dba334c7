package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/flightbook/internal/flight"
)

// Reservation is a booked itinerary joined with its flights.
type Reservation struct {
	ID       int64
	Username string
	Paid     bool
	Flight1  flight.Flight
	Flight2  *flight.Flight
}

// Leg is one flight of a reservation as seen by cancellation.
type Leg struct {
	Paid  bool
	Price int64
}

// SameDayCount counts reservations held by username whose first flight falls
// on the same day of month as flight fid. Both legs of a reservation share a
// day, so the first leg stands for the whole reservation.
func (t *Tx) SameDayCount(ctx context.Context, username string, fid int64) (int, error) {
	var n int
	err := t.queryRow(ctx, `
		SELECT COUNT(*)
		FROM reservations r
		JOIN flights held ON held.fid = r.flight1
		JOIN flights wanted ON wanted.fid = ?
		WHERE r.username = ? AND held.day_of_month = wanted.day_of_month
	`, fid, username).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count same-day reservations: %w", err)
	}
	return n, nil
}

// RemainingSeats returns capacity minus the number of reservations that
// reference fid as either leg. Returns ErrNotFound for an unknown flight.
func (t *Tx) RemainingSeats(ctx context.Context, fid int64) (int, error) {
	var remaining sql.NullInt64
	err := t.queryRow(ctx, `
		SELECT f.capacity - (
			SELECT COUNT(*) FROM reservations r WHERE r.flight1 = ? OR r.flight2 = ?
		)
		FROM flights f
		WHERE f.fid = ?
	`, fid, fid, fid).Scan(&remaining)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read remaining seats for flight %d: %w", fid, err)
	}
	return int(remaining.Int64), nil
}

// InsertReservation writes an unpaid reservation. flight2 is nil for a
// direct itinerary.
func (t *Tx) InsertReservation(ctx context.Context, rid int64, username string, flight1 int64, flight2 *int64) error {
	var second sql.NullInt64
	if flight2 != nil {
		second = sql.NullInt64{Int64: *flight2, Valid: true}
	}

	_, err := t.exec(ctx, `
		INSERT INTO reservations (rid, paid, username, flight1, flight2)
		VALUES (?, ?, ?, ?, ?)
	`, rid, false, username, flight1, second)
	if err != nil {
		return fmt.Errorf("insert reservation %d: %w", rid, err)
	}
	return nil
}

// UnpaidCost returns the summed leg prices of the unpaid reservation rid held
// by username, together with the user's balance.
// Returns ErrNotFound when no such unpaid reservation exists.
func (t *Tx) UnpaidCost(ctx context.Context, username string, rid int64) (cost, balance int64, err error) {
	err = t.queryRow(ctx, `
		SELECT u.balance, SUM(f.price)
		FROM users u
		JOIN reservations r ON r.username = u.username
		JOIN flights f ON f.fid = r.flight1 OR f.fid = r.flight2
		WHERE u.username = ? AND r.rid = ? AND r.paid = ?
		GROUP BY u.balance
	`, username, rid, false).Scan(&balance, &cost)
	if err == sql.ErrNoRows {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read reservation cost: %w", err)
	}
	return cost, balance, nil
}

// MarkPaid flips the paid flag of reservation rid.
func (t *Tx) MarkPaid(ctx context.Context, rid int64) error {
	if _, err := t.exec(ctx, `UPDATE reservations SET paid = ? WHERE rid = ?`, true, rid); err != nil {
		return fmt.Errorf("mark reservation %d paid: %w", rid, err)
	}
	return nil
}

// Reservations returns every reservation of username in ascending id order.
func (t *Tx) Reservations(ctx context.Context, username string) ([]Reservation, error) {
	rows, err := t.query(ctx, `
		SELECT r.rid, r.username, r.paid,
			f1.fid, f1.day_of_month, f1.carrier_id, f1.flight_num, f1.origin_city, f1.dest_city,
			f1.actual_time, f1.capacity, f1.price, f1.canceled,
			f2.fid, f2.day_of_month, f2.carrier_id, f2.flight_num, f2.origin_city, f2.dest_city,
			f2.actual_time, f2.capacity, f2.price, f2.canceled
		FROM reservations r
		JOIN flights f1 ON f1.fid = r.flight1
		LEFT JOIN flights f2 ON f2.fid = r.flight2
		WHERE r.username = ?
		ORDER BY r.rid ASC
	`, username)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var (
			r  Reservation
			f1 = &r.Flight1
			f2 nullableFlight
		)
		err := rows.Scan(&r.ID, &r.Username, &r.Paid,
			&f1.ID, &f1.DayOfMonth, &f1.CarrierID, &f1.FlightNum, &f1.OriginCity, &f1.DestCity,
			&f1.Duration, &f1.Capacity, &f1.Price, &f1.Canceled,
			&f2.ID, &f2.DayOfMonth, &f2.CarrierID, &f2.FlightNum, &f2.OriginCity, &f2.DestCity,
			&f2.Duration, &f2.Capacity, &f2.Price, &f2.Canceled,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		r.Flight2 = f2.flight()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}

	// Return empty slice instead of nil
	if out == nil {
		out = []Reservation{}
	}
	return out, nil
}

// CancelLegs returns the paid flag and price of every leg of reservation rid
// held by username. An empty result means the reservation does not exist or
// belongs to someone else.
func (t *Tx) CancelLegs(ctx context.Context, username string, rid int64) ([]Leg, error) {
	rows, err := t.query(ctx, `
		SELECT r.paid, f.price
		FROM reservations r
		JOIN flights f ON f.fid = r.flight1 OR f.fid = r.flight2
		WHERE r.username = ? AND r.rid = ?
	`, username, rid)
	if err != nil {
		return nil, fmt.Errorf("query reservation legs: %w", err)
	}
	defer rows.Close()

	var legs []Leg
	for rows.Next() {
		var l Leg
		if err := rows.Scan(&l.Paid, &l.Price); err != nil {
			return nil, fmt.Errorf("scan reservation leg: %w", err)
		}
		legs = append(legs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation legs: %w", err)
	}
	return legs, nil
}

// DeleteReservation removes reservation rid. Its id stays consumed.
func (t *Tx) DeleteReservation(ctx context.Context, rid int64) error {
	if _, err := t.exec(ctx, `DELETE FROM reservations WHERE rid = ?`, rid); err != nil {
		return fmt.Errorf("delete reservation %d: %w", rid, err)
	}
	return nil
}

// nullableFlight scans the LEFT JOINed second leg.
type nullableFlight struct {
	ID         sql.NullInt64
	DayOfMonth sql.NullInt64
	CarrierID  sql.NullString
	FlightNum  sql.NullString
	OriginCity sql.NullString
	DestCity   sql.NullString
	Duration   sql.NullInt64
	Capacity   sql.NullInt64
	Price      sql.NullInt64
	Canceled   sql.NullBool
}

func (n nullableFlight) flight() *flight.Flight {
	if !n.ID.Valid {
		return nil
	}
	return &flight.Flight{
		ID:         n.ID.Int64,
		DayOfMonth: int(n.DayOfMonth.Int64),
		CarrierID:  n.CarrierID.String,
		FlightNum:  n.FlightNum.String,
		OriginCity: n.OriginCity.String,
		DestCity:   n.DestCity.String,
		Duration:   int(n.Duration.Int64),
		Capacity:   int(n.Capacity.Int64),
		Price:      int(n.Price.Int64),
		Canceled:   n.Canceled.Bool,
	}
}
