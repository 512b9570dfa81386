// Package logger builds *slog.Logger values for the service.
//
// New takes functional options for format, level and static attributes, and
// wraps the handler with LogHandlerDecorator so that values carried by the
// context (request id, acting member) are added to every record logged with
// a *Context method:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
//		logger.WithLevelName(cfg.LogLevel),
//		logger.WithContextExtractors(handler.RequestIDExtractor(), member.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "plan changed", logger.PlanID(plan.ID), logger.SubscriptionID(subID))
//
// The attribute helpers in attr.go keep key names consistent; Error and
// friends return an empty attribute for nil values so call sites need no
// checks.
package logger
