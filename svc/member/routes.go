package member

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subscriptions/binder"
	"github.com/dmitrymomot/subscriptions/handler"
	"github.com/dmitrymomot/subscriptions/pkg/task"
)

// Routes mounts member registration. Hooks registered on the runner for
// CreateTaskName run inside the registration transaction.
func Routes(runner *task.Runner, tasks *Tasks, log *slog.Logger) func(chi.Router) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	create := func(ctx handler.Context, req CreateInput) handler.Response {
		m, err := task.As[Member](runner.RunSingle(ctx, tasks.NewCreate(task.Actor{Name: req.Name, Email: req.Email}, req)))
		if err != nil {
			return handler.Error(httpError(err), log)
		}
		return handler.JSON(m, handler.WithStatus(http.StatusCreated))
	}

	return func(r chi.Router) {
		r.Post("/members", handler.Wrap(handler.HandlerFunc[handler.Context, CreateInput](create),
			handler.WithBinders[handler.Context, CreateInput](binder.JSON()),
			handler.WithLogger[handler.Context, CreateInput](log),
		))
	}
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return handler.ErrConflict.Wrap(ErrEmailTaken)
	}
	return err
}
