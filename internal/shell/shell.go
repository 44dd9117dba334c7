// Package shell is the line-oriented command interpreter in front of one
// booking session.
//
// Each command produces exactly one response block ending in a newline.
// Business outcomes are rendered as fixed sentences ("Booking failed",
// "No such itinerary 3", ...); unexpected storage errors are logged and
// rendered as the command's generic failure sentence.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/flightbook/internal/booking"
	"github.com/roach88/flightbook/internal/ranking"
)

// Usage lists the accepted commands.
const Usage = `commands:
  create <username> <password> <initial amount>
  login <username> <password>
  search <origin city> <destination city> <direct 0|1> <day of month> <count>
  book <itinerary id>
  pay <reservation id>
  reservations
  cancel <reservation id>
  quit
`

// Interpreter executes commands against one session.
type Interpreter struct {
	session *booking.Session
	logger  *slog.Logger
}

// New creates an interpreter for session. A nil logger uses slog.Default().
func New(session *booking.Session, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{
		session: session,
		logger:  logger.With("session", session.ID()),
	}
}

// Session returns the session commands run against.
func (in *Interpreter) Session() *booking.Session {
	return in.session
}

// Execute runs one command line and returns its response. quit reports
// whether the line asked to end the session. Blank lines return "".
func (in *Interpreter) Execute(ctx context.Context, line string) (response string, quit bool) {
	tokens, err := Tokenize(line)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err), false
	}
	if len(tokens) == 0 {
		return "", false
	}

	cmd, args := strings.ToLower(tokens[0]), tokens[1:]
	switch cmd {
	case "create":
		return in.create(ctx, args), false
	case "login":
		return in.login(ctx, args), false
	case "search":
		return in.search(ctx, args), false
	case "book":
		return in.book(ctx, args), false
	case "pay":
		return in.pay(ctx, args), false
	case "reservations":
		return in.reservations(ctx, args), false
	case "cancel":
		return in.cancel(ctx, args), false
	case "quit", "exit":
		return "Goodbye\n", true
	case "help":
		return Usage, false
	default:
		return fmt.Sprintf("Error: unrecognized command '%s'\n", tokens[0]), false
	}
}

// Run reads commands from r until EOF or quit, writing each response to w.
// A non-empty prompt is written before every command.
func (in *Interpreter) Run(ctx context.Context, r io.Reader, w io.Writer, prompt string) error {
	scanner := bufio.NewScanner(r)
	for {
		if prompt != "" {
			if _, err := io.WriteString(w, prompt); err != nil {
				return err
			}
		}
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		response, quit := in.Execute(ctx, scanner.Text())
		if _, err := io.WriteString(w, response); err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

func (in *Interpreter) create(ctx context.Context, args []string) string {
	if len(args) != 3 {
		return "Error: usage: create <username> <password> <initial amount>\n"
	}
	amount, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return "Failed to create user\n"
	}

	if err := in.session.CreateAccount(ctx, args[0], args[1], amount); err != nil {
		in.logUnexpected("create", err)
		return "Failed to create user\n"
	}
	return fmt.Sprintf("Created user %s\n", args[0])
}

func (in *Interpreter) login(ctx context.Context, args []string) string {
	if len(args) != 2 {
		return "Error: usage: login <username> <password>\n"
	}

	name, err := in.session.Login(ctx, args[0], args[1])
	switch {
	case err == nil:
		return fmt.Sprintf("Logged in as %s\n", name)
	case errors.Is(err, booking.ErrAlreadyLoggedIn):
		return "User already logged in\n"
	default:
		in.logUnexpected("login", err)
		return "Login failed\n"
	}
}

func (in *Interpreter) search(ctx context.Context, args []string) string {
	if len(args) != 5 {
		return "Error: usage: search <origin city> <destination city> <direct 0|1> <day of month> <count>\n"
	}
	direct, err1 := strconv.Atoi(args[2])
	day, err2 := strconv.Atoi(args[3])
	count, err3 := strconv.Atoi(args[4])
	if err := errors.Join(err1, err2, err3); err != nil {
		return "Failed to search\n"
	}

	itineraries, err := in.session.Search(ctx, ranking.Query{
		Origin:     args[0],
		Dest:       args[1],
		Day:        day,
		DirectOnly: direct == 1,
		Count:      count,
	})
	switch {
	case err == nil:
		var sb strings.Builder
		for i, it := range itineraries {
			sb.WriteString(it.Format(i))
		}
		return sb.String()
	case errors.Is(err, booking.ErrNoMatches):
		return "No flights match your selection\n"
	default:
		in.logUnexpected("search", err)
		return "Failed to search\n"
	}
}

func (in *Interpreter) book(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Error: usage: book <itinerary id>\n"
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Sprintf("No such itinerary %s\n", args[0])
	}

	rid, err := in.session.Book(ctx, index)
	switch {
	case err == nil:
		return fmt.Sprintf("Booked flight(s), reservation ID: %d\n", rid)
	case errors.Is(err, booking.ErrNotLoggedIn):
		return "Cannot book reservations, not logged in\n"
	case errors.Is(err, booking.ErrNoSuchItinerary):
		return fmt.Sprintf("No such itinerary %d\n", index)
	case errors.Is(err, booking.ErrSameDayConflict):
		return "You cannot book two flights in the same day\n"
	default:
		in.logUnexpected("book", err)
		return "Booking failed\n"
	}
}

func (in *Interpreter) pay(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Error: usage: pay <reservation id>\n"
	}
	rid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Sprintf("Failed to pay for reservation %s\n", args[0])
	}

	remaining, err := in.session.Pay(ctx, rid)
	var be *booking.Error
	switch {
	case err == nil:
		return fmt.Sprintf("Paid reservation: %d remaining balance: %d\n", rid, remaining)
	case errors.Is(err, booking.ErrNotLoggedIn):
		return "Cannot pay, not logged in\n"
	case errors.Is(err, booking.ErrReservationNotFound):
		return fmt.Sprintf("Cannot find unpaid reservation %d under user: %s\n", rid, in.session.Username())
	case errors.As(err, &be) && be.Code == booking.CodeInsufficientFunds:
		return fmt.Sprintf("User has only %d in account but itinerary costs %d\n", be.Available, be.Required)
	default:
		in.logUnexpected("pay", err)
		return fmt.Sprintf("Failed to pay for reservation %d\n", rid)
	}
}

func (in *Interpreter) reservations(ctx context.Context, args []string) string {
	if len(args) != 0 {
		return "Error: usage: reservations\n"
	}

	list, err := in.session.Reservations(ctx)
	switch {
	case err == nil && len(list) == 0:
		return "No reservations found\n"
	case err == nil:
		return FormatReservations(list)
	case errors.Is(err, booking.ErrNotLoggedIn):
		return "Cannot view reservations, not logged in\n"
	default:
		in.logUnexpected("reservations", err)
		return "Failed to retrieve reservations\n"
	}
}

func (in *Interpreter) cancel(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Error: usage: cancel <reservation id>\n"
	}
	rid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Sprintf("Failed to cancel reservation %s\n", args[0])
	}

	_, err = in.session.Cancel(ctx, rid)
	switch {
	case err == nil:
		return fmt.Sprintf("Canceled reservation %d\n", rid)
	case errors.Is(err, booking.ErrNotLoggedIn):
		return "Cannot cancel reservations, not logged in\n"
	default:
		in.logUnexpected("cancel", err)
		return fmt.Sprintf("Failed to cancel reservation %d\n", rid)
	}
}

// FormatReservations renders reservations in id order:
//
//	Reservation 1 paid: false:
//	ID: 2 Day: 10 ...
func FormatReservations(list []booking.Reservation) string {
	var sb strings.Builder
	for _, r := range list {
		fmt.Fprintf(&sb, "Reservation %d paid: %t:\n", r.ID, r.Paid)
		for _, f := range r.Flights {
			sb.WriteString(f.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// logUnexpected logs storage failures. Plain business outcomes are already
// logged by the session.
func (in *Interpreter) logUnexpected(cmd string, err error) {
	var be *booking.Error
	if errors.As(err, &be) && be.Err == nil {
		return
	}
	in.logger.Error("command failed", "command", cmd, "error", err)
}
