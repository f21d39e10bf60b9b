package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error taxonomy. Callers wrap these with context and test with errors.Is.
var (
	// ErrNotFound means the session or message does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the input was malformed or rejected by policy.
	ErrValidation = errors.New("validation failed")
	// ErrStoreRead means reading from the conversation store failed.
	ErrStoreRead = errors.New("store read failed")
	// ErrStoreWrite means writing to the conversation store failed.
	// Retrying after a failed user-message write is safe.
	ErrStoreWrite = errors.New("store write failed")
	// ErrGateway means the model provider call failed. The user message is
	// already stored; retry with the same idempotency key to avoid duplicates.
	ErrGateway = errors.New("model gateway call failed")
)

// Error is a classified failure. Kind is one of the sentinels above, Msg is
// safe to show to clients and Cause, if any, is the underlying error.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

// Wrap classifies cause (which may be nil) under kind.
func Wrap(kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// IsStoreFailure reports whether err is a read or write failure of the store.
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreRead) || errors.Is(err, ErrStoreWrite)
}

// ClientMessage returns the client-facing text of err: the Msg of the
// outermost *Error, or err's own text otherwise.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}
