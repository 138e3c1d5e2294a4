package weberr

import (
	"net/http"

	"github.com/irsalhamdi/course-catalog/validate"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResponse lists every violation found in a request payload.
type ValidationResponse struct {
	Error      string               `json:"error"`
	Violations []validate.Violation `json:"violations"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{msg},
		status,
	))

	return Wrap(e, opts...)
}

func NotFound(err error, opts ...Opt) error {
	return NewError(
		err,
		"the resource could not be found",
		http.StatusNotFound,
		opts...,
	)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(
		err,
		"the server encountered a problem and could not process your request",
		http.StatusInternalServerError,
		opts...,
	)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(
		err,
		"bad request",
		http.StatusBadRequest,
		opts...,
	)
}

func Conflict(err error, opts ...Opt) error {
	return NewError(
		err,
		"the resource was modified by another request, retry with fresh data",
		http.StatusConflict,
		opts...,
	)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(
		err,
		"rate limit exceeded",
		http.StatusTooManyRequests,
		opts...,
	)
}

// Invalid reports a payload that failed validation. The response carries
// every violation, not just the first one.
func Invalid(fe validate.FieldErrors, opts ...Opt) error {
	e := &RequestError{Err: fe}
	opts = append(opts,
		WithFields(fe.Fields()),
		WithResponse(
			&ValidationResponse{Error: "validation failed", Violations: fe},
			http.StatusBadRequest,
		),
	)

	return Wrap(e, opts...)
}
