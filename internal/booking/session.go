package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/flightbook/internal/credential"
	"github.com/roach88/flightbook/internal/flight"
	"github.com/roach88/flightbook/internal/ranking"
	"github.com/roach88/flightbook/internal/store"
)

// Reservation is a booked itinerary as listed to its owner.
type Reservation struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Paid     bool            `json:"paid"`
	Flights  []flight.Flight `json:"flights"`
}

// Session is one client's view of the engine: an optional logged-in user and
// the itineraries of the last search, which Book indexes into.
type Session struct {
	svc    *Service
	id     string
	logger *slog.Logger

	username    string
	itineraries []flight.Itinerary
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Username returns the logged-in user, or "" before login.
func (s *Session) Username() string { return s.username }

// Itineraries returns a copy of the last search result.
func (s *Session) Itineraries() []flight.Itinerary { return slices.Clone(s.itineraries) }

// Login authenticates the session. Usernames are case-insensitive.
func (s *Session) Login(ctx context.Context, username, password string) (string, error) {
	if s.username != "" {
		return "", ErrAlreadyLoggedIn
	}
	name := normalizeUsername(username)
	if name == "" {
		return "", ErrLoginFailed
	}

	var (
		user  store.User
		found bool
	)
	err := s.run(ctx, "login", store.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *store.Tx) error {
		found = false
		u, err := tx.UserCredentials(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		user, found = u, true
		return nil
	})
	if err != nil {
		return "", &Error{Code: CodeLoginFailed, Message: "login failed", Err: err}
	}
	if !found || !credential.Verify(password, user.Salt, user.Hash) {
		s.logger.Info("login rejected", "user", name)
		return "", ErrLoginFailed
	}

	s.username = user.Username
	s.itineraries = nil
	s.logger = s.svc.logger.With("session", s.id, "user", s.username)
	s.logger.Info("logged in")
	return s.username, nil
}

// CreateAccount registers a user with an initial balance. It does not log the
// session in.
func (s *Session) CreateAccount(ctx context.Context, username, password string, balance int64) error {
	if balance < 0 {
		return newError(CodeInvalidInput, "initial balance must be non-negative, got %d", balance)
	}
	name := normalizeUsername(username)
	if name == "" {
		return newError(CodeInvalidInput, "username is required")
	}

	salt, err := credential.NewSalt()
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	user := store.User{
		Username: name,
		Hash:     credential.Hash(password, salt),
		Salt:     salt,
		Balance:  balance,
	}

	err = s.run(ctx, "create_account", store.TxOptions{}, func(ctx context.Context, tx *store.Tx) error {
		return tx.CreateUser(ctx, user)
	})
	if errors.Is(err, store.ErrUserExists) {
		return newError(CodeAlreadyExists, "user %s already exists", name)
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account created", "user", name, "balance", balance)
	return nil
}

// Search ranks itineraries for q and makes them the session's booking
// candidates. The previous candidates are discarded even when the search
// fails or matches nothing. Login is not required.
func (s *Session) Search(ctx context.Context, q ranking.Query) ([]flight.Itinerary, error) {
	s.itineraries = nil

	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, &Error{Code: CodeInvalidInput, Message: err.Error(), Err: err}
	}

	results, err := s.svc.search(ctx, q)
	if err != nil {
		return nil, &Error{Code: CodeSearchFailed, Message: "search failed", Err: err}
	}

	s.itineraries = results
	s.logger.Debug("search",
		"origin", q.Origin,
		"dest", q.Dest,
		"day", q.Day,
		"direct_only", q.DirectOnly,
		"count", q.Count,
		"results", len(results),
	)
	if len(results) == 0 {
		return nil, ErrNoMatches
	}
	return slices.Clone(results), nil
}

// Book reserves itinerary index of the last search and returns the new
// reservation id.
func (s *Session) Book(ctx context.Context, index int) (int64, error) {
	if s.username == "" {
		return 0, ErrNotLoggedIn
	}
	if index < 0 || index >= len(s.itineraries) {
		return 0, newError(CodeNoSuchItinerary, "no such itinerary %d", index)
	}
	it := s.itineraries[index]

	var (
		rid     int64
		outcome *Error
	)
	err := s.run(ctx, "book", store.TxOptions{}, func(ctx context.Context, tx *store.Tx) error {
		rid, outcome = 0, nil

		held, err := tx.SameDayCount(ctx, s.username, it.Flight1.ID)
		if err != nil {
			return err
		}
		if held > 0 {
			outcome = ErrSameDayConflict
			return nil
		}

		for _, f := range it.Flights() {
			seats, err := tx.RemainingSeats(ctx, f.ID)
			if errors.Is(err, store.ErrNotFound) {
				outcome = newError(CodeBookingFailed, "flight %d no longer exists", f.ID)
				return nil
			}
			if err != nil {
				return err
			}
			if seats <= 0 {
				outcome = newError(CodeBookingFailed, "flight %d is full", f.ID)
				return nil
			}
		}

		id, err := tx.NextReservationID(ctx)
		if err != nil {
			return err
		}

		var second *int64
		if it.Flight2 != nil {
			fid := it.Flight2.ID
			second = &fid
		}
		if err := tx.InsertReservation(ctx, id, s.username, it.Flight1.ID, second); err != nil {
			return err
		}
		rid = id
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("book itinerary %d: %w", index, err)
	}
	if outcome != nil {
		s.logger.Info("booking rejected", "itinerary", index, "code", outcome.Code)
		return 0, outcome
	}

	s.logger.Info("booked", "reservation", rid, "itinerary", index)
	return rid, nil
}

// Pay settles reservation rid from the user's balance and returns the
// remaining balance.
func (s *Session) Pay(ctx context.Context, rid int64) (int64, error) {
	if s.username == "" {
		return 0, ErrNotLoggedIn
	}

	var (
		remaining int64
		outcome   *Error
	)
	err := s.run(ctx, "pay", store.TxOptions{}, func(ctx context.Context, tx *store.Tx) error {
		remaining, outcome = 0, nil

		cost, balance, err := tx.UnpaidCost(ctx, s.username, rid)
		if errors.Is(err, store.ErrNotFound) {
			outcome = newError(CodeReservationNotFound, "no unpaid reservation %d under user %s", rid, s.username)
			return nil
		}
		if err != nil {
			return err
		}
		if cost > balance {
			outcome = NewInsufficientFundsError(cost, balance)
			return nil
		}

		if err := tx.MarkPaid(ctx, rid); err != nil {
			return err
		}
		if err := tx.SetBalance(ctx, s.username, balance-cost); err != nil {
			return err
		}
		remaining = balance - cost
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("pay reservation %d: %w", rid, err)
	}
	if outcome != nil {
		s.logger.Info("payment rejected", "reservation", rid, "code", outcome.Code)
		return 0, outcome
	}

	s.logger.Info("paid", "reservation", rid, "balance", remaining)
	return remaining, nil
}

// Reservations lists the user's reservations in ascending id order. An empty
// list is not an error.
func (s *Session) Reservations(ctx context.Context) ([]Reservation, error) {
	if s.username == "" {
		return nil, ErrNotLoggedIn
	}

	var rows []store.Reservation
	err := s.run(ctx, "reservations", store.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *store.Tx) error {
		var err error
		rows, err = tx.Reservations(ctx, s.username)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	out := make([]Reservation, 0, len(rows))
	for _, r := range rows {
		res := Reservation{
			ID:       r.ID,
			Username: r.Username,
			Paid:     r.Paid,
			Flights:  []flight.Flight{r.Flight1},
		}
		if r.Flight2 != nil {
			res.Flights = append(res.Flights, *r.Flight2)
		}
		out = append(out, res)
	}
	return out, nil
}

// Cancel deletes reservation rid and returns the amount refunded, which is
// the itinerary cost if it was paid and zero otherwise. The id is never
// handed out again.
func (s *Session) Cancel(ctx context.Context, rid int64) (int64, error) {
	if s.username == "" {
		return 0, ErrNotLoggedIn
	}

	var (
		refund  int64
		outcome *Error
	)
	err := s.run(ctx, "cancel", store.TxOptions{}, func(ctx context.Context, tx *store.Tx) error {
		refund, outcome = 0, nil

		legs, err := tx.CancelLegs(ctx, s.username, rid)
		if err != nil {
			return err
		}
		if len(legs) == 0 {
			outcome = newError(CodeReservationNotFound, "no reservation %d under user %s", rid, s.username)
			return nil
		}

		if legs[0].Paid {
			for _, l := range legs {
				refund += l.Price
			}
		}

		if err := tx.DeleteReservation(ctx, rid); err != nil {
			return err
		}
		if refund > 0 {
			return tx.AddBalance(ctx, s.username, refund)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cancel reservation %d: %w", rid, err)
	}
	if outcome != nil {
		s.logger.Info("cancel rejected", "reservation", rid, "code", outcome.Code)
		return 0, outcome
	}

	s.logger.Info("canceled", "reservation", rid, "refund", refund)
	return refund, nil
}

// Balance returns the logged-in user's account balance.
func (s *Session) Balance(ctx context.Context) (int64, error) {
	if s.username == "" {
		return 0, ErrNotLoggedIn
	}

	var balance int64
	err := s.run(ctx, "balance", store.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *store.Tx) error {
		var err error
		balance, err = tx.Balance(ctx, s.username)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

// run executes fn in one transaction, re-running the whole transaction on
// transient conflicts.
func (s *Session) run(ctx context.Context, op string, opts store.TxOptions, fn func(context.Context, *store.Tx) error) error {
	attempts, err := s.svc.retry.Do(ctx, op, func(ctx context.Context) error {
		return s.svc.store.InTx(ctx, opts, func(tx *store.Tx) error {
			if err := fn(ctx, tx); err != nil {
				return err
			}
			if s.svc.txHook != nil {
				return s.svc.txHook(ctx, op, tx)
			}
			return nil
		})
	})
	if attempts > 1 {
		s.logger.Debug("operation retried", "op", op, "attempts", attempts)
	}
	return err
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
