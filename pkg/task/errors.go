package task

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySequence    = errors.New("task: empty sequence")
	ErrAlreadyRun       = errors.New("task: task has already been run")
	ErrMissingField     = errors.New("task: missing required input field")
	ErrUnexpectedResult = errors.New("task: unexpected result type")
)

// MissingFieldError reports a required input field that was empty when the
// task was about to run. Cause holds the validator failures it was derived
// from, if any.
type MissingFieldError struct {
	Task  string
	Field string
	Cause error
}

func (e *MissingFieldError) Error() string {
	if e.Task == "" {
		return fmt.Sprintf("task: missing required input field %q", e.Field)
	}
	return fmt.Sprintf("task %s: missing required input field %q", e.Task, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

func (e *MissingFieldError) Unwrap() error { return e.Cause }

// ResolvedInputError reports a validation failure of an input computed by
// a Resolver from earlier results. The caller supplied nothing wrong, so the
// sequence wiring is at fault.
type ResolvedInputError struct {
	Task string
	Err  error
}

func (e *ResolvedInputError) Error() string {
	return fmt.Sprintf("task %s: resolved input rejected: %v", e.Task, e.Err)
}

func (e *ResolvedInputError) Unwrap() error { return e.Err }
