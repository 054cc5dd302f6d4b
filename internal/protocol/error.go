package protocol

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when encoding a batch with no measurements.
var ErrEmptyBatch = errors.New("empty batch")

type ErrorCode string

const (
	ErrCodeBadFormat = ErrorCode("ERR_BAD_FORMAT")
	ErrCodeLimits    = ErrorCode("ERR_LIMITS")
)

// Error is a malformed or oversized request.
// Protocol errors are never written back to the peer; the session is closed instead.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

func BadFormatErrorf(format string, args ...any) Error {
	return Error{Code: ErrCodeBadFormat, Message: fmt.Sprintf(format, args...)}
}

func LimitsErrorf(format string, args ...any) Error {
	return Error{Code: ErrCodeLimits, Message: fmt.Sprintf(format, args...)}
}

func IsProtocolError(err error) (Error, bool) {
	var e Error
	if errors.As(err, &e) {
		return e, true
	}
	return Error{}, false
}

// TransportError is a send or receive failure on an established connection.
// It is fatal to the connection but never affects what is already in the log.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnexpectedTokenError is returned when the peer sends something other than the expected token.
type UnexpectedTokenError struct {
	Want string
	Got  string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token: want %q, got %q", e.Want, e.Got)
}
