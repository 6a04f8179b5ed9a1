package aichat

import (
	"errors"
	"fmt"
)

// LLMErrorKind classifies provider failures so callers can react without
// inspecting vendor error hierarchies.
type LLMErrorKind int

const (
	// ErrorKindTransport covers network and other vendor-side failures that
	// carry no more specific meaning for the caller.
	ErrorKindTransport LLMErrorKind = iota

	// ErrorKindCredentialsRejected means the vendor rejected the API key for
	// this provider. Not retried; the user must supply a different key or
	// switch providers.
	ErrorKindCredentialsRejected

	// ErrorKindInvalidResponse means the vendor returned a response the
	// provider could not interpret.
	ErrorKindInvalidResponse
)

// String returns a short identifier for the error kind.
func (k LLMErrorKind) String() string {
	switch k {
	case ErrorKindCredentialsRejected:
		return "credentials_rejected"
	case ErrorKindInvalidResponse:
		return "invalid_response"
	default:
		return "transport"
	}
}

// LLMError is the domain error type returned by providers. It wraps the
// underlying vendor error, when there is one, so the full chain stays
// available via errors.Unwrap.
type LLMError struct {
	Kind    LLMErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LLMError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying vendor error.
func (e *LLMError) Unwrap() error {
	return e.Err
}

// IsCredentialsRejected reports whether err, anywhere in its chain, is a
// provider credential rejection.
func IsCredentialsRejected(err error) bool {
	var llmErr *LLMError
	return errors.As(err, &llmErr) && llmErr.Kind == ErrorKindCredentialsRejected
}
