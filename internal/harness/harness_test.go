package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flightbook/internal/flight"
	"github.com/roach88/flightbook/internal/testutil"
)

func strPtr(s string) *string { return &s }

func oneFlight() []flight.Flight {
	return []flight.Flight{testutil.Flight(1, 10, "Seattle WA", "Boston MA", 300, 2, 500)}
}

func TestRun_Passes(t *testing.T) {
	scenario := &Scenario{
		Name:        "passes",
		Description: "book and pay",
		Flights:     oneFlight(),
		Steps: []Step{
			{Command: "create alice pw 600", Expect: strPtr("Created user alice")},
			{Command: "login alice pw"},
			{Command: `search "Seattle WA" "Boston MA" 1 10 1`, Contains: "300 minutes"},
			{Command: "book 0", Expect: strPtr("Booked flight(s), reservation ID: 1")},
			{Command: "pay 1", Expect: strPtr("Paid reservation: 1 remaining balance: 100")},
		},
		Assertions: []Assertion{
			{Type: AssertBalance, User: "alice", Value: 100},
			{Type: AssertSeats, Flight: 1, Value: 1},
			{Type: AssertReservations, User: "alice", Value: 1},
			{Type: AssertPaid, User: "alice", Value: 1},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Transcript, 5)
	assert.Equal(t, DefaultSession, result.Transcript[0].Session)
	assert.Equal(t, "create alice pw 600", result.Transcript[0].Command)
	assert.Equal(t, "Created user alice\n", result.Transcript[0].Output)
}

func TestRun_ExpectMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong expectation",
		Steps: []Step{
			{Command: "book 0", Expect: strPtr("Booked flight(s), reservation ID: 1")},
			{Command: "help", Contains: "no such text"},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[0] default> book 0")
	assert.Contains(t, result.Errors[0], "Cannot book reservations, not logged in")
	assert.Contains(t, result.Errors[1], `Expected output containing: "no such text"`)
}

func TestRun_AssertionFailures(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertions",
		Description: "every assertion type can fail",
		Flights:     oneFlight(),
		Steps:       []Step{{Command: "create alice pw 10"}},
		Assertions: []Assertion{
			{Type: AssertBalance, User: "alice", Value: 11},
			{Type: AssertBalance, User: "nobody", Value: 0},
			{Type: AssertSeats, Flight: 1, Value: 0},
			{Type: AssertSeats, Flight: 99, Value: 0},
			{Type: AssertReservations, User: "alice", Value: 1},
			{Type: AssertPaid, User: "alice", Value: 1},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], "balance of alice = 11")
	assert.Contains(t, result.Errors[1], "user not found")
	assert.Contains(t, result.Errors[2], "0 seats left on flight 1")
	assert.Contains(t, result.Errors[3], "flight not found")
	assert.Contains(t, result.Errors[4], "1 reservations for alice")
	assert.Contains(t, result.Errors[5], "1 paid reservations for alice")
}

func TestRun_SessionsAreIndependent(t *testing.T) {
	scenario := &Scenario{
		Name:        "sessions",
		Description: "login state is per session",
		Steps: []Step{
			{Session: "a", Command: "create alice pw 10"},
			{Session: "a", Command: "login alice pw", Expect: strPtr("Logged in as alice")},
			{Session: "b", Command: "reservations", Expect: strPtr("Cannot view reservations, not logged in")},
			{Session: "b", Command: "login alice pw", Expect: strPtr("Logged in as alice")},
			{Session: "a", Command: "login alice pw", Expect: strPtr("User already logged in")},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_QuitStartsFreshSession(t *testing.T) {
	scenario := &Scenario{
		Name:        "quit",
		Description: "quit drops the session",
		Steps: []Step{
			{Command: "create alice pw 10"},
			{Command: "login alice pw"},
			{Command: "quit", Expect: strPtr("Goodbye")},
			{Command: "login alice pw", Expect: strPtr("Logged in as alice")},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_IsolatedStores(t *testing.T) {
	scenario := &Scenario{
		Name:        "isolated",
		Description: "each run starts empty",
		Steps:       []Step{{Command: "create alice pw 10", Expect: strPtr("Created user alice")}},
	}

	for i := 0; i < 2; i++ {
		result, err := Run(context.Background(), scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d: %v", i, result.Errors)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &Scenario{
		Name:        "canceled",
		Description: "no steps run",
		Steps:       []Step{{Command: "help"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
