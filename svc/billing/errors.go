package billing

import (
	"errors"
	"net/http"
)

// Error is a failure kind with a stable code. Values returned by WithData and
// Wrap match their sentinel with errors.Is because comparison is by code.
type Error struct {
	Code    string
	Status  int
	Message string
	Data    any

	cause error
}

var (
	ErrPlanNotFound         = &Error{Code: "GSERR001", Status: http.StatusNotFound, Message: "plan not found"}
	ErrCustomerNotFound     = &Error{Code: "GSERR002", Status: http.StatusNotFound, Message: "customer not found"}
	ErrSubscriptionNotFound = &Error{Code: "GSERR003", Status: http.StatusNotFound, Message: "subscription not found"}
	ErrCardNotFound         = &Error{Code: "GSERR004", Status: http.StatusNotFound, Message: "card not found"}
	ErrPaymentFailed        = &Error{Code: "GSERR005", Status: http.StatusPaymentRequired, Message: "payment failed"}
)

var (
	ErrProcessor        = errors.New("billing: payment processor request failed")
	ErrMissingSecretKey = errors.New("billing: processor secret key is required")
)

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithData returns a copy of e carrying diagnostic data such as the offending id.
func (e *Error) WithData(data any) *Error {
	c := *e
	c.Data = data
	return &c
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

func (e *Error) HTTPStatus() int      { return e.Status }
func (e *Error) ErrorCode() string    { return e.Code }
func (e *Error) ErrorData() any       { return e.Data }
func (e *Error) ErrorMessage() string { return e.Message }

// IsNotFound reports whether err is one of the NotFound kinds.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}
