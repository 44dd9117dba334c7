package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/flightbook/internal/booking"
	"github.com/roach88/flightbook/internal/shell"
	"github.com/roach88/flightbook/internal/store"
	"github.com/roach88/flightbook/internal/testutil"
)

// Harness is the scenario execution engine for one run.
type Harness struct {
	store    *store.Store
	service  *booking.Service
	sessions map[string]*shell.Interpreter
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create fresh in-memory database and load the flight table
//  2. Execute steps in order, checking expect and contains clauses
//  3. Evaluate assertions against the final state
//
// An error is returned only when the run itself could not proceed. Failed
// expectations are reported through Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if len(scenario.Flights) > 0 {
		if err := st.LoadFlights(ctx, scenario.Flights); err != nil {
			return nil, fmt.Errorf("failed to load flights: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store: st,
		service: booking.NewService(st, booking.Options{
			Logger:     logger,
			SessionIDs: testutil.NewSequentialSessionIDs("scenario"),
		}),
		sessions: make(map[string]*shell.Interpreter),
		logger:   logger,
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, msg := range EvaluateAssertions(ctx, st, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSteps runs every step through its session's interpreter.
//
// A session that quits is dropped; its next step starts a fresh, logged-out
// session under the same name.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := step.SessionName()
		in := h.interpreter(name)
		output, quit := in.Execute(ctx, step.Command)
		if quit {
			delete(h.sessions, name)
		}
		result.AddStep(name, step.Command, output)

		got := strings.TrimRight(output, "\n")
		if step.Expect != nil && got != *step.Expect {
			result.AddError(fmt.Sprintf("steps[%d] %s> %s\n  Expected: %q\n  Actual: %q",
				i, name, step.Command, *step.Expect, got))
		}
		if step.Contains != "" && !strings.Contains(output, step.Contains) {
			result.AddError(fmt.Sprintf("steps[%d] %s> %s\n  Expected output containing: %q\n  Actual: %q",
				i, name, step.Command, step.Contains, got))
		}
	}
	return nil
}

func (h *Harness) interpreter(name string) *shell.Interpreter {
	if in, ok := h.sessions[name]; ok {
		return in
	}
	in := shell.New(h.service.NewSession(), h.logger.With("scenario_session", name))
	h.sessions[name] = in
	return in
}
