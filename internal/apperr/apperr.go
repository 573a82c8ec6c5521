// Package apperr carries the failure taxonomy shared by every component:
// storage and network errors are converted at component boundaries into one
// of these kinds so callers can tell retryable from fatal outcomes.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Network covers transient transport failures; safe to retry.
	Network Kind = iota + 1
	// Validation covers malformed or missing input; retry needs correction.
	Validation
	// NotFound covers missing sellers, orders or products.
	NotFound
	// ProcessorRejection means the payment processor declined or errored.
	ProcessorRejection
	// ConflictExhausted means an earnings transaction could not converge.
	ConflictExhausted
	// PartialCommit means the order exists but the earnings update failed.
	PartialCommit
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "network failure"
	case Validation:
		return "validation failure"
	case NotFound:
		return "not found"
	case ProcessorRejection:
		return "processor rejection"
	case ConflictExhausted:
		return "transaction conflict exhausted"
	case PartialCommit:
		return "partial commit"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with an operation name and a kind.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// kinder is implemented by errors that know their own kind, such as the
// orders package's earnings-update error.
type kinder interface {
	ErrKind() Kind
}

func (e *Error) ErrKind() Kind { return e.Kind }

// KindOf walks the error chain and reports the first kind found, or 0.
func KindOf(err error) Kind {
	var k kinder
	if errors.As(err, &k) {
		return k.ErrKind()
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
