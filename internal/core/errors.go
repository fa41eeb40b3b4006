package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a sync failure for the audit trail. Every failed
// SyncRun carries exactly one kind.
type ErrorKind string

const (
	ErrorKindAuth                ErrorKind = "auth"
	ErrorKindNetwork             ErrorKind = "network"
	ErrorKindRateLimit           ErrorKind = "rate_limit"
	ErrorKindParse               ErrorKind = "parse"
	ErrorKindUnsupportedProvider ErrorKind = "unsupported_provider"
	ErrorKindValidation          ErrorKind = "validation"
	ErrorKindStorage             ErrorKind = "storage"
	ErrorKindUnknown             ErrorKind = "unknown"
)

// Error is a classified sync error. Adapters and the engine wrap everything
// that can fail during a sync attempt in one of these so the recorded
// SyncRun can carry a stable classification.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewAuthError reports a missing or invalid credential
func NewAuthError(message string) *Error {
	return &Error{Kind: ErrorKindAuth, Message: message}
}

// NewNetworkError reports a transport-level failure
func NewNetworkError(message string, err error) *Error {
	return &Error{Kind: ErrorKindNetwork, Message: message, Err: err}
}

// NewRateLimitError reports provider throttling
func NewRateLimitError(message string) *Error {
	return &Error{Kind: ErrorKindRateLimit, Message: message}
}

// NewParseError reports a malformed provider response
func NewParseError(message string, err error) *Error {
	return &Error{Kind: ErrorKindParse, Message: message, Err: err}
}

// NewUnsupportedProviderError reports an account whose provider has no
// registered adapter
func NewUnsupportedProviderError(provider Provider) *Error {
	return &Error{Kind: ErrorKindUnsupportedProvider, Message: fmt.Sprintf("no adapter registered for provider %q", provider)}
}

// NewValidationError reports a domain invariant violation
func NewValidationError(err error) *Error {
	return &Error{Kind: ErrorKindValidation, Message: "invalid value", Err: err}
}

// NewStorageError reports a persistence failure
func NewStorageError(message string, err error) *Error {
	return &Error{Kind: ErrorKindStorage, Message: message, Err: err}
}

// Classify returns the error kind for any error, falling back to "unknown"
// for errors that were not produced through this taxonomy.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnknown
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return ErrorKindUnknown
}
