// Package apperrors holds the error taxonomy shared by models, repositories,
// services and handlers. Callers wrap these sentinels with fmt.Errorf("...: %w")
// and the HTTP layer maps them to status codes with errors.Is.
package apperrors

import "errors"

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidState     = errors.New("invalid state")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyFinalized = errors.New("checkout already finalized")
	ErrNotPaid          = errors.New("checkout is not paid")
	ErrConflict         = errors.New("conflict")
)

// Code returns the machine readable code for err, or "internal" when err does
// not belong to the taxonomy.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrAlreadyFinalized):
		return "already_finalized"
	case errors.Is(err, ErrNotPaid):
		return "not_paid"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
