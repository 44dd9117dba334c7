// Package testutil provides fixtures shared by tests and the scenario
// harness: temporary stores, flight rows, and deterministic session ids.
package testutil

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/roach88/flightbook/internal/flight"
	"github.com/roach88/flightbook/internal/store"
)

// NewStore opens a fresh SQLite store in a temporary directory that is
// removed when the test ends.
func NewStore(tb testing.TB) *store.Store {
	tb.Helper()
	return OpenStore(tb, filepath.Join(tb.TempDir(), "flightbook.db"))
}

// OpenStore opens (or reopens) the SQLite store at path and closes it when
// the test ends. Several stores on one path behave like separate processes.
func OpenStore(tb testing.TB, path string) *store.Store {
	tb.Helper()
	st, err := store.Open(path)
	if err != nil {
		tb.Fatalf("open store %s: %v", path, err)
	}
	tb.Cleanup(func() { st.Close() })
	return st
}

// Flight builds a flight row with carrier "AS" and flight number equal to
// the id.
func Flight(id int64, day int, origin, dest string, duration, capacity, price int) flight.Flight {
	return flight.Flight{
		ID:         id,
		DayOfMonth: day,
		CarrierID:  "AS",
		FlightNum:  strconv.FormatInt(id, 10),
		OriginCity: origin,
		DestCity:   dest,
		Duration:   duration,
		Capacity:   capacity,
		Price:      price,
	}
}

// LoadFlights inserts flights or fails the test.
func LoadFlights(tb testing.TB, st *store.Store, flights ...flight.Flight) {
	tb.Helper()
	if err := st.LoadFlights(context.Background(), flights); err != nil {
		tb.Fatalf("load flights: %v", err)
	}
}
