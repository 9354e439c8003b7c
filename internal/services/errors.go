package services

import (
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// ErrNotFound matches any *NotFoundError via errors.Is.
var ErrNotFound = errors.New("record not found")

// ServiceError reports a failed record operation. Message is safe to show
// to users; Err holds the underlying store error for diagnostics.
type ServiceError struct {
	Op      string
	Kind    core.Kind
	ID      int64
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NotFoundError is the ServiceError returned when no record has the
// requested id. errors.As with a **ServiceError target also matches it.
type NotFoundError struct {
	ServiceError
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) As(target any) bool {
	if t, ok := target.(**ServiceError); ok {
		*t = &e.ServiceError
		return true
	}
	return false
}

func newNotFound(op string, kind core.Kind, id int64) *NotFoundError {
	return &NotFoundError{ServiceError{
		Op:      op,
		Kind:    kind,
		ID:      id,
		Message: fmt.Sprintf("%s with id %d not found", kind, id),
	}}
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Outcome is the closed set of results a record operation can have.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "failure"
	}
}

// Classify maps an operation error onto an Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case IsNotFound(err):
		return OutcomeNotFound
	default:
		return OutcomeFailure
	}
}
