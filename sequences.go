package subscriptions

import (
	"cmp"
	"context"

	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/pkg/validator"
	"github.com/dmitrymomot/subscriptions/svc/billing"
	"github.com/dmitrymomot/subscriptions/svc/subscription"
)

// Id prefixes accepted from callers. Stripe still honours legacy plan and
// card ids where a price or payment method is expected.
var (
	pricePrefixes = []string{"price_", "plan_"}
	cardPrefixes  = []string{"pm_", "card_", "src_"}
)

// Plans lists the catalog plans.
func (p *Plugin) Plans(ctx context.Context, actor task.Actor) ([]billing.Plan, error) {
	return task.As[[]billing.Plan](p.runner.RunSingle(ctx,
		p.billing.NewGetPlans(actor, billing.GetPlansInput{}),
	))
}

// Plan returns the plan of a catalog product.
func (p *Plugin) Plan(ctx context.Context, actor task.Actor, planID string) (billing.Plan, error) {
	return task.As[billing.Plan](p.runner.RunSingle(ctx,
		p.billing.NewGetPlan(actor, billing.GetPlanInput{ProductID: planID}),
	))
}

// OwnPlan returns the plan the actor pays for. Members without a processor
// subscription get the plan stored on their record.
func (p *Plugin) OwnPlan(ctx context.Context, actor task.Actor) (billing.Plan, error) {
	get := p.subs.NewGetSubscription(actor, subscription.GetInput{})
	own := p.billing.NewGetOwnPlan(actor, billing.GetOwnPlanInput{})
	stored := p.billing.NewGetPlan(actor, billing.GetPlanInput{})

	return task.As[billing.Plan](p.runner.RunSequence(ctx,
		get,
		task.Defer(own, func(in billing.GetOwnPlanInput) (billing.GetOwnPlanInput, bool, error) {
			rec := get.Result()
			if !rec.HasProcessorSubscription() {
				return in, true, nil
			}
			in.SubscriptionID = rec.GetSubscriptionID()
			return in, false, nil
		}),
		task.Defer(stored, func(in billing.GetPlanInput) (billing.GetPlanInput, bool, error) {
			if !own.Skipped() {
				return in, true, nil
			}
			rec := get.Result()
			if rec.GetPlanID() == "" {
				return in, false, billing.ErrPlanNotFound.WithData(map[string]string{"memberId": rec.MemberID.String()})
			}
			in.ProductID = rec.GetPlanID()
			return in, false, nil
		}),
	))
}

// ChangePlan moves the actor to priceID and returns the resulting plan.
// A processor subscription is created with cardID when the member has none
// yet, then updated to the price in every case. The record keeps the
// processor subscription id and the new plan id.
func (p *Plugin) ChangePlan(ctx context.Context, actor task.Actor, priceID, cardID string) (billing.Plan, error) {
	if err := validator.Apply(
		validator.RequiredString("priceId", priceID),
		validator.ProcessorID("priceId", priceID, pricePrefixes...),
		validator.ProcessorID("cardId", cardID, cardPrefixes...),
	); err != nil {
		return billing.Plan{}, err
	}
	if _, err := p.EnsureCustomer(ctx, actor); err != nil {
		return billing.Plan{}, err
	}

	get := p.subs.NewGetSubscription(actor, subscription.GetInput{})
	create := p.billing.NewCreateSubscription(actor, billing.CreateSubscriptionInput{PriceID: priceID, CardID: cardID})
	update := p.billing.NewUpdateSubscription(actor, billing.UpdateSubscriptionInput{PriceID: priceID, CardID: cardID})
	plan := p.billing.NewGetPlanByPrice(actor, billing.GetPlanByPriceInput{})
	save := p.subs.NewUpdateSubscription(actor, subscription.UpdateInput{})

	_, err := p.runner.RunSequence(ctx,
		get,
		task.Defer(create, func(in billing.CreateSubscriptionInput) (billing.CreateSubscriptionInput, bool, error) {
			rec := get.Result()
			if rec.HasProcessorSubscription() {
				return in, true, nil
			}
			customerID, err := customerOf(rec)
			if err != nil {
				return in, false, err
			}
			in.CustomerID = customerID
			return in, false, nil
		}),
		task.Defer(update, func(in billing.UpdateSubscriptionInput) (billing.UpdateSubscriptionInput, bool, error) {
			if create.Skipped() {
				in.SubscriptionID = get.Result().GetSubscriptionID()
			} else {
				in.SubscriptionID = create.Result().ID
			}
			return in, false, nil
		}),
		task.Defer(plan, func(in billing.GetPlanByPriceInput) (billing.GetPlanByPriceInput, bool, error) {
			in.PriceID = cmp.Or(update.Result().PriceID, priceID)
			return in, false, nil
		}),
		task.Defer(save, func(in subscription.UpdateInput) (subscription.UpdateInput, bool, error) {
			subID, planID := update.Result().ID, plan.Result().ID
			in.ID = get.Result().ID
			in.SubscriptionID = &subID
			in.PlanID = &planID
			return in, false, nil
		}),
	)
	if err != nil {
		return billing.Plan{}, err
	}

	res := plan.Result()
	p.notifyPlanChanged(ctx, actor, res)
	return res, nil
}

// ProrationPreview previews the invoice of moving the actor to priceID now.
func (p *Plugin) ProrationPreview(ctx context.Context, actor task.Actor, priceID string) (billing.Invoice, error) {
	if err := validator.Apply(
		validator.RequiredString("priceId", priceID),
		validator.ProcessorID("priceId", priceID, pricePrefixes...),
	); err != nil {
		return billing.Invoice{}, err
	}
	get := p.subs.NewGetSubscription(actor, subscription.GetInput{})
	preview := p.billing.NewGetProrationPreview(actor, billing.ProrationPreviewInput{PriceID: priceID})

	return task.As[billing.Invoice](p.runner.RunSequence(ctx,
		get,
		task.Defer(preview, func(in billing.ProrationPreviewInput) (billing.ProrationPreviewInput, bool, error) {
			rec := get.Result()
			customerID, err := customerOf(rec)
			if err != nil {
				return in, false, err
			}
			if !rec.HasProcessorSubscription() {
				return in, false, billing.ErrSubscriptionNotFound.WithData(map[string]string{"memberId": rec.MemberID.String()})
			}
			in.CustomerID = customerID
			in.SubscriptionID = rec.GetSubscriptionID()
			return in, false, nil
		}),
	))
}

// EnsureCustomer returns the processor customer id of the actor, registering
// the actor with the processor and storing the id on first use.
func (p *Plugin) EnsureCustomer(ctx context.Context, actor task.Actor) (string, error) {
	get := p.subs.NewGetSubscription(actor, subscription.GetInput{})
	create := p.billing.NewCreateCustomer(actor, billing.CreateCustomerInput{})
	save := p.subs.NewUpdateSubscription(actor, subscription.UpdateInput{})

	_, err := p.runner.RunSequence(ctx,
		get,
		task.Defer(create, func(in billing.CreateCustomerInput) (billing.CreateCustomerInput, bool, error) {
			return in, get.Result().HasCustomer(), nil
		}),
		task.Defer(save, func(in subscription.UpdateInput) (subscription.UpdateInput, bool, error) {
			if create.Skipped() {
				return in, true, nil
			}
			customerID := create.Result()
			in.ID = get.Result().ID
			in.CustomerID = &customerID
			return in, false, nil
		}),
	)
	if err != nil {
		return "", err
	}
	if create.Skipped() {
		return get.Result().GetCustomerID(), nil
	}
	return create.Result(), nil
}

// Cards lists the saved cards of the actor.
func (p *Plugin) Cards(ctx context.Context, actor task.Actor) ([]billing.Card, error) {
	customerID, err := p.EnsureCustomer(ctx, actor)
	if err != nil {
		return nil, err
	}
	return task.As[[]billing.Card](p.runner.RunSingle(ctx,
		p.billing.NewGetCards(actor, billing.CustomerInput{CustomerID: customerID}),
	))
}

// SetupIntent starts saving a new card for the actor.
func (p *Plugin) SetupIntent(ctx context.Context, actor task.Actor) (billing.Intent, error) {
	customerID, err := p.EnsureCustomer(ctx, actor)
	if err != nil {
		return billing.Intent{}, err
	}
	return task.As[billing.Intent](p.runner.RunSingle(ctx,
		p.billing.NewCreateSetupIntent(actor, billing.CustomerInput{CustomerID: customerID}),
	))
}

// SetDefaultCard makes cardID the card future invoices are charged to.
func (p *Plugin) SetDefaultCard(ctx context.Context, actor task.Actor, cardID string) (billing.Card, error) {
	if err := validator.Apply(
		validator.RequiredString("cardId", cardID),
		validator.ProcessorID("cardId", cardID, cardPrefixes...),
	); err != nil {
		return billing.Card{}, err
	}
	get := p.subs.NewGetSubscription(actor, subscription.GetInput{})
	set := p.billing.NewSetDefaultCard(actor, billing.SetDefaultCardInput{CardID: cardID})

	return task.As[billing.Card](p.runner.RunSequence(ctx,
		get,
		task.Defer(set, func(in billing.SetDefaultCardInput) (billing.SetDefaultCardInput, bool, error) {
			customerID, err := customerOf(get.Result())
			in.CustomerID = customerID
			return in, false, err
		}),
	))
}

// CurrentCustomer returns the processor customer of the actor.
func (p *Plugin) CurrentCustomer(ctx context.Context, actor task.Actor) (billing.Customer, error) {
	get := p.subs.NewGetSubscription(actor, subscription.GetInput{})
	customer := p.billing.NewGetCustomer(actor, billing.CustomerInput{})

	return task.As[billing.Customer](p.runner.RunSequence(ctx,
		get,
		task.Defer(customer, func(in billing.CustomerInput) (billing.CustomerInput, bool, error) {
			customerID, err := customerOf(get.Result())
			in.CustomerID = customerID
			return in, false, err
		}),
	))
}

func customerOf(rec subscription.Subscription) (string, error) {
	if !rec.HasCustomer() {
		return "", billing.ErrCustomerNotFound.WithData(map[string]string{"memberId": rec.MemberID.String()})
	}
	return rec.GetCustomerID(), nil
}
