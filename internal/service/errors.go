// Package service holds the business rules of the marketplace: credentials
// and sessions, the catalog, the booking lifecycle, payouts and the
// reporting built on the shared revenue split.  Services depend on small
// store interfaces so they can run against MySQL or an in-memory store.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/gymhub/internal/repository"
)

// Error kinds.  Handlers map them onto HTTP statuses with errors.Is.
var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("not found")
	ErrAuthFailed          = errors.New("authentication failed")
	ErrConflict            = errors.New("conflict")
	ErrTooManyRequests     = errors.New("too many requests")
)

// Error is a client-facing failure: Kind selects the status, Msg is the
// message shown to the user.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// fromStore translates repository sentinels into service errors.  Other
// errors are wrapped with op and surface as internal failures.
func fromStore(err error, op, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fail(ErrNotFound, "%s not found", what)
	case errors.Is(err, repository.ErrEmailExists):
		return fail(ErrConflict, "email already exists")
	case errors.Is(err, repository.ErrConflict):
		return fail(ErrConflict, "%s conflicts with existing state", what)
	}
	return fmt.Errorf("%s: %w", op, err)
}
