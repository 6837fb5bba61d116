package overseerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid overseerr configuration")
	// ErrNoConnection indicates connection failure
	ErrNoConnection = errors.New("failed to connect to overseerr")
	// ErrTimeout indicates the request deadline expired before a response arrived
	ErrTimeout = errors.New("overseerr request timed out")
	// ErrCanceled indicates the caller canceled the request's context
	ErrCanceled = errors.New("overseerr request canceled")
	// ErrUnauthorized indicates authentication failure
	ErrUnauthorized = errors.New("unauthorized: invalid API key or session")
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidParameter indicates a caller-supplied argument was rejected before any request was sent
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDecode indicates a response did not match the expected shape
	ErrDecode = errors.New("unexpected overseerr response")
	// ErrEmptyResponse indicates a successful response without a body
	ErrEmptyResponse = errors.New("empty response body")
)

// ErrorDetail is a single entry of the error envelope
type ErrorDetail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope returned by Overseerr for any failed call.
// It is handed back to callers as a value inside Result unless the call asked
// for errors to be raised.
type ErrorResponse struct {
	StatusCode int           `json:"-"`
	Message    string        `json:"message"`
	Errors     []ErrorDetail `json:"errors"`
}

// Error implements the error interface
func (e *ErrorResponse) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	details := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		if d.Path != "" {
			details = append(details, d.Path+": "+d.Message)
		} else {
			details = append(details, d.Message)
		}
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(details, "; "))
}

// UnmarshalJSON decodes the envelope, treating a missing errors array as empty
func (e *ErrorResponse) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	type plain ErrorResponse
	if err := json.Unmarshal(data, (*plain)(e)); err != nil {
		return err
	}
	if e.Errors == nil {
		e.Errors = []ErrorDetail{}
	}
	return nil
}

// APIError represents an Overseerr API error surfaced as a hard failure,
// either because the call asked for errors to be raised or because the
// response body was not an error envelope.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
	Response   *ErrorResponse
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("overseerr API error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the error envelope, if any
func (e *APIError) Unwrap() error {
	if e.Response == nil {
		return nil
	}
	return e.Response
}

// Is matches ErrNotFound and ErrUnauthorized by status code
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.IsNotFound()
	case ErrUnauthorized:
		return e.IsUnauthorized()
	}
	return false
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ValidationError reports an argument rejected before any network call
type ValidationError struct {
	Param   string
	Value   any
	Allowed []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("invalid %s %q: must be one of %s", e.Param, fmt.Sprint(e.Value), strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("invalid %s %v: %s", e.Param, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidParameter
}

// TransportError reports a request that did not complete: a network-level
// failure (DNS, refused, reset), a timeout, or a canceled context
type TransportError struct {
	Method   string
	URL      string
	Timeout  bool
	Canceled bool
	Err      error
}

func (e *TransportError) Error() string {
	kind := "request failed"
	switch {
	case e.Timeout:
		kind = "request timed out"
	case e.Canceled:
		kind = "request canceled"
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTimeout for deadline failures, ErrCanceled for canceled
// contexts and ErrNoConnection otherwise
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Timeout
	case ErrCanceled:
		return e.Canceled
	case ErrNoConnection:
		return !e.Timeout && !e.Canceled
	}
	return false
}

// DecodeError reports a response that could not be loaded into its declared type
type DecodeError struct {
	Type string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// MissingFieldError reports a required wire field that was absent or null
type MissingFieldError struct {
	Object string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Object, e.Field)
}

// EnumError reports a wire value outside its defined set
type EnumError struct {
	Field   string
	Value   any
	Allowed []string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("%s: unexpected value %v (allowed: %s)", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}
