package overseerr

import (
	"context"
	"encoding/json"
	"reflect"
)

// Result is the outcome of an API call that reached the Service. Exactly one
// of Value and Error is set: Error carries the Service's error envelope,
// Value the decoded payload.
type Result[T any] struct {
	Value T
	Error *ErrorResponse
}

// OK reports whether the Service answered successfully
func (r Result[T]) OK() bool {
	return r.Error == nil
}

// Get converts the result into a conventional value/error pair
func (r Result[T]) Get() (T, error) {
	if r.Error != nil {
		var zero T
		return zero, r.Error
	}
	return r.Value, nil
}

// CallOption adjusts the behaviour of a single API call
type CallOption func(*callConfig)

type callConfig struct {
	raiseForError bool
}

// RaiseForError turns a Service error envelope into an *APIError for this call
func RaiseForError() CallOption {
	return func(cc *callConfig) {
		cc.raiseForError = true
	}
}

// ReturnErrors hands a Service error envelope back inside Result for this call,
// overriding a client created WithRaiseForError(true)
func ReturnErrors() CallOption {
	return func(cc *callConfig) {
		cc.raiseForError = false
	}
}

// fetch performs cl and loads the response into T. It is the only place where
// a response is classified as success or Service error.
func fetch[T any](ctx context.Context, c *Client, cl call, opts []CallOption) (Result[T], error) {
	cfg := callConfig{raiseForError: c.raiseForError}
	for _, opt := range opts {
		opt(&cfg)
	}

	resp, err := c.do(ctx, cl)
	if err != nil {
		return Result[T]{}, err
	}

	if resp.failure != nil {
		if cfg.raiseForError {
			return Result[T]{}, &APIError{
				StatusCode: resp.status,
				Message:    resp.failure.Message,
				Response:   resp.failure,
			}
		}
		return Result[T]{Error: resp.failure}, nil
	}

	if isNull(resp.body) {
		return Result[T]{}, &DecodeError{Type: typeName[T](), Err: ErrEmptyResponse}
	}

	var value T
	if err := json.Unmarshal(resp.body, &value); err != nil {
		return Result[T]{}, &DecodeError{Type: typeName[T](), Err: err}
	}
	return Result[T]{Value: value}, nil
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
