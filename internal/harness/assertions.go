package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/flightbook/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against st in one read-only
// transaction and returns a message per failure.
func EvaluateAssertions(ctx context.Context, st *store.Store, assertions []Assertion) []string {
	if len(assertions) == 0 {
		return nil
	}

	var failures []string
	err := st.InTx(ctx, store.TxOptions{ReadOnly: true}, func(tx *store.Tx) error {
		for i, a := range assertions {
			if err := evaluate(ctx, tx, a); err != nil {
				failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
			}
		}
		return nil
	})
	if err != nil {
		failures = append(failures, fmt.Sprintf("evaluate assertions: %v", err))
	}
	return failures
}

func evaluate(ctx context.Context, tx *store.Tx, a Assertion) error {
	switch a.Type {
	case AssertBalance:
		return assertBalance(ctx, tx, a)
	case AssertSeats:
		return assertSeats(ctx, tx, a)
	case AssertReservations, AssertPaid:
		return assertReservations(ctx, tx, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertBalance(ctx context.Context, tx *store.Tx, a Assertion) error {
	balance, err := tx.Balance(ctx, strings.ToLower(a.User))
	if errors.Is(err, store.ErrNotFound) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("user %s with balance %d", a.User, a.Value),
			Actual:   "user not found",
		}
	}
	if err != nil {
		return err
	}
	if balance != a.Value {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("balance of %s = %d", a.User, a.Value),
			Actual:   fmt.Sprintf("%d", balance),
		}
	}
	return nil
}

func assertSeats(ctx context.Context, tx *store.Tx, a Assertion) error {
	remaining, err := tx.RemainingSeats(ctx, a.Flight)
	if errors.Is(err, store.ErrNotFound) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("flight %d", a.Flight),
			Actual:   "flight not found",
		}
	}
	if err != nil {
		return err
	}
	if int64(remaining) != a.Value {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d seats left on flight %d", a.Value, a.Flight),
			Actual:   fmt.Sprintf("%d", remaining),
		}
	}
	return nil
}

// assertReservations counts all reservations of a user, or only the paid ones.
func assertReservations(ctx context.Context, tx *store.Tx, a Assertion) error {
	list, err := tx.Reservations(ctx, strings.ToLower(a.User))
	if err != nil {
		return err
	}

	var n int64
	kind := ""
	for _, r := range list {
		if a.Type == AssertReservations || r.Paid {
			n++
		}
	}
	if a.Type == AssertPaid {
		kind = "paid "
	}
	if n != a.Value {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d %sreservations for %s", a.Value, kind, a.User),
			Actual:   fmt.Sprintf("%d", n),
		}
	}
	return nil
}
