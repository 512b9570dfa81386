package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/subscriptions/pkg/validator"
)

// Actor identifies the member on whose behalf a task runs.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// IsZero reports whether the actor carries no identity.
func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil
}

// Operation is the single external call a task performs.
// The tx argument is nil when the operation talks to a remote service only.
type Operation[I, R any] func(ctx context.Context, tx pgx.Tx, actor Actor, in I) (R, error)

// Option configures a Task.
type Option[I any] func(*options[I])

type options[I any] struct {
	validators []func(I) error
	message    string
}

// WithValidator registers an input check that runs once before the operation.
// Validators usually return validator.Apply; required-rule failures surface
// as *MissingFieldError.
func WithValidator[I any](fn func(I) error) Option[I] {
	return func(o *options[I]) {
		if fn != nil {
			o.validators = append(o.validators, fn)
		}
	}
}

// WithMessage sets a human readable message describing the task outcome.
func WithMessage[I any](msg string) Option[I] {
	return func(o *options[I]) {
		o.message = msg
	}
}

// Task is a single-use unit of work with a typed input and result.
type Task[I, R any] struct {
	name   string
	actor  Actor
	input  I
	op     Operation[I, R]
	opts   options[I]
	status Status
	result R
	skip   bool
	err    error

	// resolved is set once a Resolver produced the input.
	resolved bool
}

// New builds a task. It panics if op is nil.
func New[I, R any](name string, actor Actor, input I, op Operation[I, R], opts ...Option[I]) *Task[I, R] {
	if op == nil {
		panic("task: operation cannot be nil")
	}
	if name == "" {
		panic("task: name cannot be empty")
	}
	t := &Task[I, R]{
		name:   name,
		actor:  actor,
		input:  input,
		op:     op,
		status: StatusNew,
	}
	for _, opt := range opts {
		opt(&t.opts)
	}
	return t
}

func (t *Task[I, R]) Name() string    { return t.name }
func (t *Task[I, R]) Actor() Actor    { return t.actor }
func (t *Task[I, R]) Input() I        { return t.input }
func (t *Task[I, R]) Status() Status  { return t.status }
func (t *Task[I, R]) Message() string { return t.opts.message }
func (t *Task[I, R]) Skipped() bool   { return t.skip }
func (t *Task[I, R]) Err() error      { return t.err }

// Result returns the value produced by the operation.
// It is the zero value until the task finished with StatusOK.
func (t *Task[I, R]) Result() R {
	return t.result
}

func (t *Task[I, R]) validate() error {
	for _, v := range t.opts.validators {
		err := v(t.input)
		if err == nil {
			continue
		}
		if ve := validator.ExtractValidationErrors(err); ve != nil {
			if field, ok := ve.FirstRequired(); ok {
				err = &MissingFieldError{Field: field, Cause: err}
			}
		}
		var mf *MissingFieldError
		if errors.As(err, &mf) && mf.Task == "" {
			mf.Task = t.name
		}
		if t.resolved {
			return &ResolvedInputError{Task: t.name, Err: err}
		}
		return err
	}
	return nil
}

// run executes the task once. Hooks fire around the operation so that
// their failure fails the task.
func (t *Task[I, R]) run(ctx context.Context, tx pgx.Tx, hooks *Hooks) error {
	if t.status != StatusNew {
		return ErrAlreadyRun
	}
	t.status = StatusRunning

	err := t.exec(ctx, tx, hooks)
	if err != nil {
		t.status = StatusFailed
		t.err = err
		return err
	}
	t.status = StatusOK
	return nil
}

func (t *Task[I, R]) exec(ctx context.Context, tx pgx.Tx, hooks *Hooks) error {
	if err := hooks.runBefore(ctx, tx, t.name, t.actor, t.input); err != nil {
		return err
	}
	if err := t.validate(); err != nil {
		return err
	}
	res, err := t.op(ctx, tx, t.actor, t.input)
	if err != nil {
		return err
	}
	t.result = res
	return hooks.runAfter(ctx, tx, t.name, t.actor, res)
}

func (t *Task[I, R]) resolve() error { return nil }
func (t *Task[I, R]) value() any     { return t.result }
