package booking

import (
	"errors"
	"fmt"
)

// Error is a typed business outcome. Operations return it for every
// non-success result the caller is expected to handle; anything else is an
// unexpected storage failure.
type Error struct {
	// Code identifies the outcome.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Required and Available carry the cost and balance for
	// INSUFFICIENT_FUNDS.
	Required  int64
	Available int64

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes business outcomes.
type ErrorCode string

const (
	CodeNotLoggedIn         ErrorCode = "NOT_LOGGED_IN"
	CodeAlreadyLoggedIn     ErrorCode = "ALREADY_LOGGED_IN"
	CodeLoginFailed         ErrorCode = "LOGIN_FAILED"
	CodeInvalidInput        ErrorCode = "INVALID_INPUT"
	CodeAlreadyExists       ErrorCode = "ALREADY_EXISTS"
	CodeNoMatches           ErrorCode = "NO_MATCHES"
	CodeSearchFailed        ErrorCode = "SEARCH_FAILED"
	CodeNoSuchItinerary     ErrorCode = "NO_SUCH_ITINERARY"
	CodeSameDayConflict     ErrorCode = "SAME_DAY_CONFLICT"
	CodeBookingFailed       ErrorCode = "BOOKING_FAILED"
	CodeReservationNotFound ErrorCode = "RESERVATION_NOT_FOUND"
	CodeInsufficientFunds   ErrorCode = "INSUFFICIENT_FUNDS"
)

// Sentinels for errors.Is. Matching compares codes only, so a returned
// *Error with extra detail still matches its sentinel.
var (
	ErrNotLoggedIn         = &Error{Code: CodeNotLoggedIn, Message: "not logged in"}
	ErrAlreadyLoggedIn     = &Error{Code: CodeAlreadyLoggedIn, Message: "user already logged in"}
	ErrLoginFailed         = &Error{Code: CodeLoginFailed, Message: "login failed"}
	ErrInvalidInput        = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrAlreadyExists       = &Error{Code: CodeAlreadyExists, Message: "user already exists"}
	ErrNoMatches           = &Error{Code: CodeNoMatches, Message: "no flights match the selection"}
	ErrSearchFailed        = &Error{Code: CodeSearchFailed, Message: "search failed"}
	ErrNoSuchItinerary     = &Error{Code: CodeNoSuchItinerary, Message: "no such itinerary"}
	ErrSameDayConflict     = &Error{Code: CodeSameDayConflict, Message: "cannot book two flights on the same day"}
	ErrBookingFailed       = &Error{Code: CodeBookingFailed, Message: "booking failed"}
	ErrReservationNotFound = &Error{Code: CodeReservationNotFound, Message: "reservation not found"}
	ErrInsufficientFunds   = &Error{Code: CodeInsufficientFunds, Message: "insufficient funds"}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) ErrorCode {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientFundsError reports a payment of required against a balance
// of available.
func NewInsufficientFundsError(required, available int64) *Error {
	return &Error{
		Code:      CodeInsufficientFunds,
		Message:   fmt.Sprintf("balance %d is less than cost %d", available, required),
		Required:  required,
		Available: available,
	}
}
