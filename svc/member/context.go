package member

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subscriptions/pkg/logger"
	"github.com/dmitrymomot/subscriptions/pkg/task"
)

type contextKey struct{}

func WithMember(ctx context.Context, m Member) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

func FromContext(ctx context.Context) (Member, bool) {
	m, ok := ctx.Value(contextKey{}).(Member)
	return m, ok && m.ID != uuid.Nil
}

func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	m, ok := FromContext(ctx)
	return m.ID, ok
}

// ActorFromContext returns the member of the request as a task actor.
func ActorFromContext(ctx context.Context) (task.Actor, bool) {
	m, ok := FromContext(ctx)
	if !ok {
		return task.Actor{}, false
	}
	return m.Actor(), true
}

// LoggerExtractor enriches log records with the member id.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return logger.MemberID(id), true
		}
		return slog.Attr{}, false
	}
}
