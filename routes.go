package subscriptions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subscriptions/binder"
	"github.com/dmitrymomot/subscriptions/handler"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/svc/billing"
	"github.com/dmitrymomot/subscriptions/svc/member"
)

type (
	noRequest   struct{}
	planRequest struct {
		PlanID string `path:"planId" json:"-"`
	}
	changePlanRequest struct {
		PlanID string `path:"planId" json:"-"`
		CardID string `json:"cardId"`
	}
	cardRequest struct {
		CardID string `path:"cardId" json:"-"`
	}
)

// Routes registers the billing endpoints on r. Every endpoint requires the
// member resolved by member.Middleware and answers 401 without one.
func (p *Plugin) Routes(r chi.Router) {
	r.Get("/plans", wrap(p, func(ctx handler.Context, actor task.Actor, _ noRequest) ([]billing.Plan, error) {
		return p.Plans(ctx, actor)
	}))
	// Registered before /plans/{planId} so that "own" is not taken for an id.
	r.Get("/plans/own", wrap(p, func(ctx handler.Context, actor task.Actor, _ noRequest) (billing.Plan, error) {
		return p.OwnPlan(ctx, actor)
	}))
	r.Get("/plans/{planId}", wrap(p, func(ctx handler.Context, actor task.Actor, req planRequest) (billing.Plan, error) {
		return p.Plan(ctx, actor, req.PlanID)
	}, binder.Path(chi.URLParam)))
	r.Patch("/plans/{planId}", wrap(p, func(ctx handler.Context, actor task.Actor, req changePlanRequest) (billing.Plan, error) {
		return p.ChangePlan(ctx, actor, req.PlanID, req.CardID)
	}, binder.Path(chi.URLParam), binder.JSON()))
	r.Get("/plans/{planId}/proration-preview", wrap(p, func(ctx handler.Context, actor task.Actor, req planRequest) (billing.Invoice, error) {
		return p.ProrationPreview(ctx, actor, req.PlanID)
	}, binder.Path(chi.URLParam)))
	r.Post("/setup-intent", wrap(p, func(ctx handler.Context, actor task.Actor, _ noRequest) (billing.Intent, error) {
		return p.SetupIntent(ctx, actor)
	}))
	r.Get("/cards", wrap(p, func(ctx handler.Context, actor task.Actor, _ noRequest) ([]billing.Card, error) {
		return p.Cards(ctx, actor)
	}))
	r.Patch("/cards/{cardId}/default", wrap(p, func(ctx handler.Context, actor task.Actor, req cardRequest) (billing.Card, error) {
		return p.SetDefaultCard(ctx, actor, req.CardID)
	}, binder.Path(chi.URLParam)))
	r.Get("/customer/current", wrap(p, func(ctx handler.Context, actor task.Actor, _ noRequest) (billing.Customer, error) {
		return p.CurrentCustomer(ctx, actor)
	}))
}

func wrap[R, T any](p *Plugin, fn func(ctx handler.Context, actor task.Actor, req R) (T, error), binders ...handler.Bind) http.HandlerFunc {
	h := func(ctx handler.Context, req R) handler.Response {
		actor, ok := member.ActorFromContext(ctx)
		if !ok {
			return handler.Error(handler.ErrUnauthorized, p.log)
		}
		v, err := fn(ctx, actor, req)
		if err != nil {
			return handler.Error(err, p.log)
		}
		return handler.JSON(v)
	}
	return handler.Wrap(handler.HandlerFunc[handler.Context, R](h),
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithLogger[handler.Context, R](p.log),
	)
}
