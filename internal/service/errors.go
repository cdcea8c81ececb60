package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by every service operation. The HTTP layer maps
// them to status codes with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidAmount     = errors.New("invalid final amount")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCartChanged       = errors.New("cart changed during checkout")
	ErrConflict          = errors.New("conflict")
)

// Error carries a client-facing message and the sentinel it belongs to.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
