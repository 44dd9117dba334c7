package store

import (
	"context"
	"fmt"

	"github.com/roach88/flightbook/internal/flight"
)

const flightColumns = `fid, day_of_month, carrier_id, flight_num, origin_city, dest_city, actual_time, capacity, price, canceled`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(row rowScanner) (flight.Flight, error) {
	var f flight.Flight
	err := row.Scan(&f.ID, &f.DayOfMonth, &f.CarrierID, &f.FlightNum,
		&f.OriginCity, &f.DestCity, &f.Duration, &f.Capacity, &f.Price, &f.Canceled)
	return f, err
}

// DirectFlights returns up to limit non-canceled origin→dest flights on day,
// ordered by duration then fid.
func (t *Tx) DirectFlights(ctx context.Context, origin, dest string, day, limit int) ([]flight.Flight, error) {
	rows, err := t.query(ctx, `
		SELECT `+flightColumns+`
		FROM flights
		WHERE origin_city = ? AND dest_city = ? AND day_of_month = ? AND canceled = ?
		ORDER BY actual_time ASC, fid ASC
		LIMIT ?
	`, origin, dest, day, false, limit)
	if err != nil {
		return nil, fmt.Errorf("query direct flights: %w", err)
	}
	defer rows.Close()

	var flights []flight.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan direct flight: %w", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate direct flights: %w", err)
	}
	return flights, nil
}

// ConnectingFlights returns up to limit same-day two-leg itineraries
// origin→X→dest with both legs non-canceled, ordered by combined duration,
// then first leg fid, then second leg fid.
func (t *Tx) ConnectingFlights(ctx context.Context, origin, dest string, day, limit int) ([]flight.Itinerary, error) {
	rows, err := t.query(ctx, `
		SELECT
			f1.fid, f1.day_of_month, f1.carrier_id, f1.flight_num, f1.origin_city, f1.dest_city,
			f1.actual_time, f1.capacity, f1.price, f1.canceled,
			f2.fid, f2.day_of_month, f2.carrier_id, f2.flight_num, f2.origin_city, f2.dest_city,
			f2.actual_time, f2.capacity, f2.price, f2.canceled
		FROM flights f1
		JOIN flights f2 ON f2.origin_city = f1.dest_city
		WHERE f1.origin_city = ? AND f2.dest_city = ?
		  AND f1.day_of_month = ? AND f2.day_of_month = ?
		  AND f1.canceled = ? AND f2.canceled = ?
		ORDER BY f1.actual_time + f2.actual_time ASC, f1.fid ASC, f2.fid ASC
		LIMIT ?
	`, origin, dest, day, day, false, false, limit)
	if err != nil {
		return nil, fmt.Errorf("query connecting flights: %w", err)
	}
	defer rows.Close()

	var itineraries []flight.Itinerary
	for rows.Next() {
		var a, b flight.Flight
		err := rows.Scan(
			&a.ID, &a.DayOfMonth, &a.CarrierID, &a.FlightNum, &a.OriginCity, &a.DestCity,
			&a.Duration, &a.Capacity, &a.Price, &a.Canceled,
			&b.ID, &b.DayOfMonth, &b.CarrierID, &b.FlightNum, &b.OriginCity, &b.DestCity,
			&b.Duration, &b.Capacity, &b.Price, &b.Canceled,
		)
		if err != nil {
			return nil, fmt.Errorf("scan connecting flight: %w", err)
		}
		itineraries = append(itineraries, flight.Connecting(a, b))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connecting flights: %w", err)
	}
	return itineraries, nil
}
