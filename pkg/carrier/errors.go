package carrier

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error represents an error from a freight provider.
type Error struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Details    json.RawMessage // raw upstream error payload, if any
	Cause      error
	sentinel   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e.sentinel != nil {
		return e.sentinel
	}
	return e.Cause
}

// Is implements errors.Is for Error.
func (e *Error) Is(target error) bool {
	if e.sentinel != nil && errors.Is(e.sentinel, target) {
		return true
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new provider Error.
func NewError(carrier, code, message string) *Error {
	return &Error{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *Error) WithStatusCode(code int) *Error {
	e.StatusCode = code
	return e
}

// WithDetails attaches the raw upstream error payload.
func (e *Error) WithDetails(details json.RawMessage) *Error {
	e.Details = details
	return e
}

// WithSentinel marks the error so errors.Is matches the given sentinel.
func (e *Error) WithSentinel(err error) *Error {
	e.sentinel = err
	return e
}

// Sentinel errors for common provider scenarios.
var (
	// ErrInvalidRequest indicates a quote or label request is incomplete.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAuthenticationFailed indicates every credential mode of a provider failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrProviderNotFound indicates the requested provider is not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrObjectNotFound indicates the provider does not know the referenced object.
	ErrObjectNotFound = errors.New("object not found")
)

// UpstreamDetails extracts the raw upstream payload from a provider error,
// falling back to the error message when none was captured.
func UpstreamDetails(err error) json.RawMessage {
	var provErr *Error
	if errors.As(err, &provErr) && len(provErr.Details) > 0 {
		return provErr.Details
	}
	details, _ := json.Marshal(err.Error())
	return details
}
