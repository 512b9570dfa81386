package subscriptions

import (
	"log/slog"

	"github.com/dmitrymomot/subscriptions/pkg/email"
	"github.com/dmitrymomot/subscriptions/pkg/logger"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/svc/billing"
	"github.com/dmitrymomot/subscriptions/svc/subscription"
)

// Plugin runs the billing sequences of members.
type Plugin struct {
	cfg     Config
	runner  *task.Runner
	billing *billing.Tasks
	subs    *subscription.Tasks
	mailer  email.Sender
	log     *slog.Logger
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithMailer sets the sender of plan change notifications.
// Without it notifications are only logged.
func WithMailer(s email.Sender) Option {
	return func(p *Plugin) {
		if s != nil {
			p.mailer = s
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a Plugin. It panics if runner or a task factory is nil.
func New(cfg Config, runner *task.Runner, b *billing.Tasks, s *subscription.Tasks, opts ...Option) *Plugin {
	if runner == nil {
		panic("subscriptions: nil runner")
	}
	if b == nil || s == nil {
		panic("subscriptions: nil task factory")
	}

	p := &Plugin{
		cfg:     cfg,
		runner:  runner,
		billing: b,
		subs:    s,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(logger.Component("subscriptions"))
	if p.mailer == nil {
		p.mailer = email.NewLogSender(p.log)
	}
	return p
}
