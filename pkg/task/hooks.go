package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// PreHook runs before the named task validates its input.
type PreHook func(ctx context.Context, tx pgx.Tx, actor Actor, input any) error

// PostHook runs right after the named task succeeded, in the same transaction.
type PostHook func(ctx context.Context, tx pgx.Tx, actor Actor, result any) error

// Hooks is a registry of lifecycle callbacks keyed by task name.
// It is safe to register hooks concurrently with running sequences.
type Hooks struct {
	mu     sync.RWMutex
	before map[string][]PreHook
	after  map[string][]PostHook
}

func NewHooks() *Hooks {
	return &Hooks{
		before: make(map[string][]PreHook),
		after:  make(map[string][]PostHook),
	}
}

// Before registers fn to run before every task named name.
func (h *Hooks) Before(name string, fn PreHook) {
	if fn == nil {
		panic("task: pre hook cannot be nil")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.before[name] = append(h.before[name], fn)
}

// After registers fn to run after every successful task named name.
func (h *Hooks) After(name string, fn PostHook) {
	if fn == nil {
		panic("task: post hook cannot be nil")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.after[name] = append(h.after[name], fn)
}

// AfterResult registers a post hook receiving the task result as R.
// A result of another type fails the task with ErrUnexpectedResult.
func AfterResult[R any](h *Hooks, name string, fn func(ctx context.Context, tx pgx.Tx, actor Actor, result R) error) {
	h.After(name, func(ctx context.Context, tx pgx.Tx, actor Actor, result any) error {
		r, ok := result.(R)
		if !ok {
			return fmt.Errorf("%w: hook on %s got %T", ErrUnexpectedResult, name, result)
		}
		return fn(ctx, tx, actor, r)
	})
}

func (h *Hooks) runBefore(ctx context.Context, tx pgx.Tx, name string, actor Actor, input any) error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	hooks := h.before[name]
	h.mu.RUnlock()

	for _, fn := range hooks {
		if err := fn(ctx, tx, actor, input); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) runAfter(ctx context.Context, tx pgx.Tx, name string, actor Actor, result any) error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	hooks := h.after[name]
	h.mu.RUnlock()

	for _, fn := range hooks {
		if err := fn(ctx, tx, actor, result); err != nil {
			return err
		}
	}
	return nil
}
