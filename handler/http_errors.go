package handler

import "net/http"

// HTTPError is an error with an HTTP status and a stable key used as the
// response error code. Wrap attaches the underlying cause.
type HTTPError struct {
	Code int
	Key  string

	cause error
}

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnprocessableEntity = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
)

func (e HTTPError) Error() string {
	if e.cause != nil {
		return e.Key + ": " + e.cause.Error()
	}
	return e.Key
}

func (e HTTPError) Unwrap() error     { return e.cause }
func (e HTTPError) HTTPStatus() int   { return e.Code }
func (e HTTPError) ErrorCode() string { return e.Key }

// Is matches any HTTPError with the same status and key.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	return ok && t.Code == e.Code && t.Key == e.Key
}

// Wrap returns a copy of e caused by err. The response message is the cause's text.
func (e HTTPError) Wrap(err error) HTTPError {
	e.cause = err
	return e
}
