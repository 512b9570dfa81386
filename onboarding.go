package subscriptions

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/subscriptions/pkg/logger"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/svc/billing"
	"github.com/dmitrymomot/subscriptions/svc/member"
	"github.com/dmitrymomot/subscriptions/svc/subscription"
)

// RegisterOnboarding links every member created by the task named
// createTaskName to the default plan. A failure fails member creation.
func (p *Plugin) RegisterOnboarding(createTaskName string) {
	task.AfterResult(p.runner.Hooks(), createTaskName,
		func(ctx context.Context, tx pgx.Tx, _ task.Actor, m member.Member) error {
			log := p.log.With(logger.Event("member.onboarded"), logger.MemberID(m.ID))
			rec, err := p.Onboard(ctx, tx, m.Actor())
			if err != nil {
				log.ErrorContext(ctx, "member onboarding failed", logger.Error(err))
				return err
			}
			log.InfoContext(ctx, "member linked to default plan", logger.PlanID(rec.GetPlanID()))
			return nil
		},
	)
}

// Onboard creates the record of actor on the default plan inside tx.
// The record has no processor customer or subscription yet.
func (p *Plugin) Onboard(ctx context.Context, tx pgx.Tx, actor task.Actor) (subscription.Subscription, error) {
	plan := p.billing.NewGetPlan(actor, billing.GetPlanInput{ProductID: p.cfg.DefaultPlanProductID})
	create := p.subs.NewCreateDefaultSubscription(actor, subscription.CreateDefaultInput{MemberID: actor.ID})

	return task.As[subscription.Subscription](p.runner.RunInline(ctx, tx,
		plan,
		task.Defer(create, func(in subscription.CreateDefaultInput) (subscription.CreateDefaultInput, bool, error) {
			in.PlanID = plan.Result().ID
			return in, false, nil
		}),
	))
}
