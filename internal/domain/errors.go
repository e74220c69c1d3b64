package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the store, service and transport layers.
// Wrap them with context and classify with errors.Is.
var (
	// ErrValidation indicates bad or missing input, detected before any remote call.
	ErrValidation = errors.New("validation failed")

	// ErrPermission indicates there is no authenticated user.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates the referenced entity vanished between read and write.
	ErrNotFound = errors.New("not found")

	// ErrTransport indicates a network or remote store failure.
	ErrTransport = errors.New("transport failure")

	// ErrNoOp indicates an empty selection or a rejected move. Never fatal.
	ErrNoOp = errors.New("nothing to do")

	// ErrStaleRevision indicates a fenced batch was planned on a snapshot
	// that another commit has since replaced. Callers re-plan.
	ErrStaleRevision = errors.New("store revision moved")
)

// Validationf returns an ErrValidation wrapped with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf returns an ErrNotFound wrapped with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// NoOpf returns an ErrNoOp wrapped with a formatted message.
func NoOpf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNoOp, fmt.Sprintf(format, args...))
}

// Transport wraps err as a transport failure. A nil err stays nil.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}

// ErrorKind returns the taxonomy name of err, or "internal" when it is unclassified.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPermission):
		return "permission"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoOp):
		return "noop"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "internal"
	}
}
