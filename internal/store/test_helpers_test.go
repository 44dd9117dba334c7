package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/flightbook/internal/flight"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testFlight builds a flight on day 10 with capacity 3 and price 100.
func testFlight(id int64, origin, dest string, duration int) flight.Flight {
	return flight.Flight{
		ID:         id,
		DayOfMonth: 10,
		CarrierID:  "AS",
		FlightNum:  "100",
		OriginCity: origin,
		DestCity:   dest,
		Duration:   duration,
		Capacity:   3,
		Price:      100,
	}
}

func mustLoad(t *testing.T, s *Store, flights ...flight.Flight) {
	t.Helper()
	if err := s.LoadFlights(context.Background(), flights); err != nil {
		t.Fatalf("LoadFlights() failed: %v", err)
	}
}

func mustCreateUser(t *testing.T, s *Store, username string, balance int64) {
	t.Helper()
	err := s.InTx(context.Background(), TxOptions{}, func(tx *Tx) error {
		return tx.CreateUser(context.Background(), User{
			Username: username,
			Hash:     []byte("hash"),
			Salt:     []byte("salt"),
			Balance:  balance,
		})
	})
	if err != nil {
		t.Fatalf("CreateUser(%q) failed: %v", username, err)
	}
}

// mustBook inserts a reservation with a freshly allocated id.
func mustBook(t *testing.T, s *Store, username string, flight1 int64, flight2 *int64) int64 {
	t.Helper()
	ctx := context.Background()
	var rid int64
	err := s.InTx(ctx, TxOptions{}, func(tx *Tx) error {
		var err error
		if rid, err = tx.NextReservationID(ctx); err != nil {
			return err
		}
		return tx.InsertReservation(ctx, rid, username, flight1, flight2)
	})
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	return rid
}

func int64Ptr(v int64) *int64 { return &v }

// Flight reads a single flight by id, returning ErrNotFound if it is absent.
func (t *Tx) Flight(ctx context.Context, fid int64) (flight.Flight, error) {
	f, err := scanFlight(t.queryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE fid = ?`, fid))
	if errors.Is(err, sql.ErrNoRows) {
		return flight.Flight{}, ErrNotFound
	}
	if err != nil {
		return flight.Flight{}, fmt.Errorf("read flight %d: %w", fid, err)
	}
	return f, nil
}
