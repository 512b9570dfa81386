// Package subscriptions exposes member billing over HTTP: plan listing,
// plan changes with proration previews, payment cards and setup intents.
//
// Every endpoint runs a short sequence of tasks from svc/billing and
// svc/subscription on a task.Runner. Each sequence shares one database
// transaction, stops at the first failing step and returns the typed error
// of that step unchanged. Later steps read the results of earlier ones
// through deferred resolvers and may be skipped by them.
//
// Member onboarding is the exception: the plugin hooks into member
// creation and links the new member to the default plan inside the
// member's own transaction, so the row is visible before it commits.
//
//	runner := task.NewRunner(pg.NewTransactor(pool), task.WithHooks(task.NewHooks()))
//	p := subscriptions.New(cfg, runner, billingTasks, subscriptionTasks,
//		subscriptions.WithMailer(sender),
//	)
//	p.RegisterOnboarding(memberTasks.CreateTaskName())
//	r.Group(p.Routes)
package subscriptions
