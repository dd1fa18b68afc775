// Package apperr holds the domain error taxonomy. Services return these as
// typed results; the HTTP layer maps them to status codes and never lets a
// raw persistence error reach the client.
package apperr

import "errors"

var (
	// ErrConflict is a uniqueness or state violation (duplicate ISBN,
	// deleting an entity with open loans).
	ErrConflict = errors.New("conflict")
	// ErrNotFound is a missing id or no matching open loan.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a failed credential check.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState is a business-rule violation such as issuing a loan
	// with no available copies.
	ErrInvalidState = errors.New("invalid state")
)

// Error carries a caller-facing message on top of one of the sentinels so
// errors.Is still matches the kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func Conflict(msg string) error     { return &Error{kind: ErrConflict, msg: msg} }
func NotFound(msg string) error     { return &Error{kind: ErrNotFound, msg: msg} }
func Unauthorized(msg string) error { return &Error{kind: ErrUnauthorized, msg: msg} }
func InvalidState(msg string) error { return &Error{kind: ErrInvalidState, msg: msg} }
