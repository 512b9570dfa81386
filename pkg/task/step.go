package task

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Step is an entry of a sequence: a Task, or a Task wrapped by Defer.
type Step interface {
	Name() string
	Status() Status
	Skipped() bool
	Err() error

	resolve() error
	run(ctx context.Context, tx pgx.Tx, hooks *Hooks) error
	value() any
}

// Resolver computes the final input of a deferred step from the input it was
// built with. Returning skip=true makes the runner pass over the step.
type Resolver[I any] func(in I) (merged I, skip bool, err error)

type deferred[I, R any] struct {
	*Task[I, R]
	resolver Resolver[I]
}

// Defer attaches a resolver to t. The runner calls it right before t runs,
// once every earlier step of the sequence has finished or been skipped.
func Defer[I, R any](t *Task[I, R], resolver Resolver[I]) Step {
	if t == nil {
		panic("task: deferred task cannot be nil")
	}
	if resolver == nil {
		return t
	}
	return &deferred[I, R]{Task: t, resolver: resolver}
}

// Skip returns a step that is always passed over. It is a shorthand for a
// resolver that unconditionally skips.
func Skip[I, R any](t *Task[I, R]) Step {
	return Defer(t, func(in I) (I, bool, error) { return in, true, nil })
}

func (d *deferred[I, R]) resolve() error {
	if d.status != StatusNew {
		return ErrAlreadyRun
	}
	in, skip, err := d.resolver(d.input)
	if err != nil {
		return err
	}
	d.input = in
	d.skip = skip
	d.resolved = true
	return nil
}
