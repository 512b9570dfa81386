package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/subscriptions/pkg/logger"
)

// Transactor opens a transaction, runs fn in it and commits when fn returns nil.
// Any error returned by fn must roll the transaction back and be returned unchanged.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for step lifecycle records.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithHooks sets the hook registry consulted for every task.
func WithHooks(h *Hooks) RunnerOption {
	return func(r *Runner) {
		r.hooks = h
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// Runner executes sequences of steps strictly in order.
type Runner struct {
	tx      Transactor
	log     *slog.Logger
	hooks   *Hooks
	metrics *Metrics
}

// NewRunner creates a Runner. It panics if tx is nil.
func NewRunner(tx Transactor, opts ...RunnerOption) *Runner {
	if tx == nil {
		panic("task: transactor cannot be nil")
	}
	r := &Runner{
		tx:  tx,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hooks returns the registry the runner consults. It may be nil.
func (r *Runner) Hooks() *Hooks {
	return r.hooks
}

// RunSingle runs one step in its own transaction and returns its result.
func (r *Runner) RunSingle(ctx context.Context, step Step) (any, error) {
	return r.RunSequence(ctx, step)
}

// RunSequence runs steps in one transaction. The first failing step aborts the
// sequence, rolls the transaction back and its error is returned unchanged.
// The result is the value of the last step that was not skipped, or nil when
// every step was skipped.
func (r *Runner) RunSequence(ctx context.Context, steps ...Step) (any, error) {
	if len(steps) == 0 {
		return nil, ErrEmptySequence
	}
	var res any
	err := r.tx.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		res, err = r.run(ctx, tx, steps)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RunInline runs steps inside a transaction owned by the caller.
// It never begins, commits or rolls back tx.
func (r *Runner) RunInline(ctx context.Context, tx pgx.Tx, steps ...Step) (any, error) {
	if len(steps) == 0 {
		return nil, ErrEmptySequence
	}
	return r.run(ctx, tx, steps)
}

func (r *Runner) run(ctx context.Context, tx pgx.Tx, steps []Step) (any, error) {
	var (
		res  any
		seen bool
	)
	for i, step := range steps {
		if step == nil {
			return nil, fmt.Errorf("task: step %d is nil", i)
		}
		log := r.log.With(logger.Task(step.Name()), logger.Step(i))

		if err := step.resolve(); err != nil {
			log.WarnContext(ctx, "step input resolution failed", logger.Error(err))
			r.metrics.observe(step.Name(), StatusFailed, 0)
			return nil, err
		}
		if step.Skipped() {
			log.DebugContext(ctx, "step skipped")
			r.metrics.skipped(step.Name())
			continue
		}

		start := time.Now()
		err := step.run(ctx, tx, r.hooks)
		elapsed := time.Since(start)
		r.metrics.observe(step.Name(), step.Status(), elapsed)

		if err != nil {
			log.WarnContext(ctx, "step failed", logger.Status(step.Status()), logger.Duration(elapsed), logger.Error(err))
			return nil, err
		}
		log.DebugContext(ctx, "step completed", logger.Status(step.Status()), logger.Duration(elapsed))
		res, seen = step.value(), true
	}
	if !seen {
		return nil, nil
	}
	return res, nil
}

// As converts a runner result to R. It passes err through untouched.
func As[R any](v any, err error) (R, error) {
	var zero R
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	r, ok := v.(R)
	if !ok {
		return zero, fmt.Errorf("%w: want %T, got %T", ErrUnexpectedResult, zero, v)
	}
	return r, nil
}
