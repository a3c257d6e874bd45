package errors

import (
	stderrors "errors"
	"fmt"
)

// BeetleError is the structured error type used across the engine.
type BeetleError struct {
	// Kind is the failure classification.
	Kind Kind

	// Message is the human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface. The kind is kept as a prefix token
// so flattened string messages remain machine-matchable.
func (e *BeetleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *BeetleError) Unwrap() error {
	return e.Cause
}

// Is matches by kind, enabling errors.Is against sentinel kinds.
func (e *BeetleError) Is(target error) bool {
	if t, ok := target.(*BeetleError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a BeetleError with the given kind and message.
func New(kind Kind, format string, args ...any) *BeetleError {
	return &BeetleError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a BeetleError around an existing error. Returns nil when err
// is nil so call sites can wrap unconditionally.
func Wrap(kind Kind, err error, format string, args ...any) *BeetleError {
	if err == nil {
		return nil
	}
	return &BeetleError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// NotFound creates a NotFound error for the named index.
func NotFound(name string) *BeetleError {
	return New(KindNotFound, "index %q does not exist", name)
}

// AlreadyExists creates an AlreadyExists error for the named index.
func AlreadyExists(name string) *BeetleError {
	return New(KindAlreadyExists, "index %q already exists", name)
}

// TargetMissing creates a TargetMissing error for the given path.
func TargetMissing(path string) *BeetleError {
	return New(KindTargetMissing, "target path %q does not exist", path)
}

// WriterBusy creates a WriterBusy error for the named index.
func WriterBusy(name string) *BeetleError {
	return New(KindWriterBusy, "another writer holds the lock for index %q", name)
}

// KindOf extracts the kind from an error chain. Errors that carry no
// BeetleError report KindBackend.
func KindOf(err error) Kind {
	var be *BeetleError
	if stderrors.As(err, &be) {
		return be.Kind
	}
	return KindBackend
}

// IsKind reports whether the first BeetleError in the chain carries the
// given kind. BeetleErrors wrapped further down the chain are not checked.
func IsKind(err error, kind Kind) bool {
	var be *BeetleError
	if stderrors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// Retryable reports whether the error's kind is retryable.
func Retryable(err error) bool {
	return KindOf(err).Retryable()
}
