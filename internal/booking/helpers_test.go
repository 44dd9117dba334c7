package booking

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/flightbook/internal/flight"
	"github.com/roach88/flightbook/internal/ranking"
	"github.com/roach88/flightbook/internal/retry"
	"github.com/roach88/flightbook/internal/store"
	"github.com/roach88/flightbook/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, st *store.Store) *Service {
	t.Helper()
	return NewService(st, Options{
		Logger:     quietLogger(),
		Retry:      retry.Policy{Limiter: retry.NewLimiter(0, 0)},
		SessionIDs: testutil.NewSequentialSessionIDs("test"),
	})
}

// seededService opens a fresh store holding flights.
func seededService(t *testing.T, flights ...flight.Flight) (*Service, *store.Store) {
	t.Helper()
	st := testutil.NewStore(t)
	testutil.LoadFlights(t, st, flights...)
	return newTestService(t, st), st
}

// loggedIn creates username with balance and returns a session logged in as
// that user.
func loggedIn(t *testing.T, svc *Service, username string, balance int64) *Session {
	t.Helper()
	ctx := context.Background()
	s := svc.NewSession()
	require.NoError(t, s.CreateAccount(ctx, username, "pw-"+username, balance))
	_, err := s.Login(ctx, username, "pw-"+username)
	require.NoError(t, err)
	return s
}

func directQuery(origin, dest string, day, count int) ranking.Query {
	return ranking.Query{Origin: origin, Dest: dest, Day: day, DirectOnly: true, Count: count}
}

func anyQuery(origin, dest string, day, count int) ranking.Query {
	return ranking.Query{Origin: origin, Dest: dest, Day: day, Count: count}
}

// searchAndBook runs a search and books itinerary 0.
func searchAndBook(t *testing.T, s *Session, q ranking.Query) (int64, error) {
	t.Helper()
	ctx := context.Background()
	_, err := s.Search(ctx, q)
	require.NoError(t, err)
	return s.Book(ctx, 0)
}

func reservationIsPaid(t *testing.T, s *Session, rid int64) bool {
	t.Helper()
	list, err := s.Reservations(context.Background())
	require.NoError(t, err)
	for _, r := range list {
		if r.ID == rid {
			return r.Paid
		}
	}
	t.Fatalf("reservation %d not listed", rid)
	return false
}
