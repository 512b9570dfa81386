package billing

import (
	"cmp"
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/subscriptions/pkg/sanitizer"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/pkg/validator"
)

const (
	getPlansTaskName            = "billing.GetPlans"
	getPlanTaskName             = "billing.GetPlan"
	getPlanByPriceTaskName      = "billing.GetPlanByPrice"
	getOwnPlanTaskName          = "billing.GetOwnPlan"
	createCustomerTaskName      = "billing.CreateCustomer"
	getCustomerTaskName         = "billing.GetCustomer"
	createSubscriptionTaskName  = "billing.CreateSubscription"
	updateSubscriptionTaskName  = "billing.UpdateSubscription"
	getProrationPreviewTaskName = "billing.GetProrationPreview"
	createSetupIntentTaskName   = "billing.CreateSetupIntent"
	getCardsTaskName            = "billing.GetCards"
	setDefaultCardTaskName      = "billing.SetDefaultCard"
)

type (
	GetPlansInput struct {
		ProductID string
	}
	GetPlanInput struct {
		ProductID string
	}
	GetPlanByPriceInput struct {
		PriceID string
	}
	GetOwnPlanInput struct {
		SubscriptionID string
	}
	// CreateCustomerInput falls back to the actor's name and email.
	CreateCustomerInput struct {
		Name  string
		Email string
	}
	CustomerInput struct {
		CustomerID string
	}
	CreateSubscriptionInput struct {
		CustomerID string
		PriceID    string
		CardID     string
	}
	UpdateSubscriptionInput struct {
		SubscriptionID string
		PriceID        string
		CardID         string
	}
	ProrationPreviewInput struct {
		CustomerID     string
		SubscriptionID string
		PriceID        string
	}
	SetDefaultCardInput struct {
		CustomerID string
		CardID     string
	}
)

// TasksOption configures Tasks.
type TasksOption func(*Tasks)

// WithCatalog replaces the processor-backed catalog, typically with a
// CachedCatalog.
func WithCatalog(c Catalog) TasksOption {
	return func(t *Tasks) {
		if c != nil {
			t.catalog = c
		}
	}
}

// WithClock sets the time source used for proration dates.
func WithClock(now func() time.Time) TasksOption {
	return func(t *Tasks) {
		if now != nil {
			t.now = now
		}
	}
}

// Tasks builds processor tasks. Each task performs exactly one processor
// call and never touches the database transaction.
type Tasks struct {
	processor Processor
	catalog   Catalog
	now       func() time.Time
}

// NewTasks returns a factory over p. Plans are listed for family unless a
// catalog is supplied.
func NewTasks(p Processor, family string, opts ...TasksOption) *Tasks {
	if p == nil {
		panic("billing: nil processor")
	}
	t := &Tasks{
		processor: p,
		catalog:   NewProcessorCatalog(p, family),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (f *Tasks) GetPlansTaskName() string            { return getPlansTaskName }
func (f *Tasks) GetPlanTaskName() string             { return getPlanTaskName }
func (f *Tasks) GetPlanByPriceTaskName() string      { return getPlanByPriceTaskName }
func (f *Tasks) GetOwnPlanTaskName() string          { return getOwnPlanTaskName }
func (f *Tasks) CreateCustomerTaskName() string      { return createCustomerTaskName }
func (f *Tasks) GetCustomerTaskName() string         { return getCustomerTaskName }
func (f *Tasks) CreateSubscriptionTaskName() string  { return createSubscriptionTaskName }
func (f *Tasks) UpdateSubscriptionTaskName() string  { return updateSubscriptionTaskName }
func (f *Tasks) GetProrationPreviewTaskName() string { return getProrationPreviewTaskName }
func (f *Tasks) CreateSetupIntentTaskName() string   { return createSetupIntentTaskName }
func (f *Tasks) GetCardsTaskName() string            { return getCardsTaskName }
func (f *Tasks) SetDefaultCardTaskName() string      { return setDefaultCardTaskName }

// NewGetPlans lists the plans of the configured family, optionally narrowed
// to one product.
func (f *Tasks) NewGetPlans(actor task.Actor, in GetPlansInput) *task.Task[GetPlansInput, []Plan] {
	return task.New(getPlansTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in GetPlansInput) ([]Plan, error) {
			return f.catalog.Plans(ctx, in.ProductID)
		},
	)
}

// NewGetPlan returns the plan of one product.
func (f *Tasks) NewGetPlan(actor task.Actor, in GetPlanInput) *task.Task[GetPlanInput, Plan] {
	return task.New(getPlanTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in GetPlanInput) (Plan, error) {
			plans, err := f.catalog.Plans(ctx, in.ProductID)
			if err != nil {
				return Plan{}, err
			}
			for _, p := range plans {
				if p.ID == in.ProductID {
					return p, nil
				}
			}
			return Plan{}, ErrPlanNotFound.WithData(map[string]string{"planId": in.ProductID})
		},
		task.WithValidator(func(in GetPlanInput) error {
			return validator.Apply(validator.RequiredString("planId", in.ProductID))
		}),
	)
}

// NewGetPlanByPrice returns the plan a price belongs to, carrying only that price.
func (f *Tasks) NewGetPlanByPrice(actor task.Actor, in GetPlanByPriceInput) *task.Task[GetPlanByPriceInput, Plan] {
	return task.New(getPlanByPriceTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in GetPlanByPriceInput) (Plan, error) {
			price, err := f.processor.GetPrice(ctx, in.PriceID)
			if err != nil {
				return Plan{}, err
			}
			if price.ProductID == "" {
				return Plan{}, ErrPlanNotFound.WithData(map[string]string{"priceId": in.PriceID})
			}
			return planOf(price), nil
		},
		task.WithValidator(func(in GetPlanByPriceInput) error {
			return validator.Apply(validator.RequiredString("priceId", in.PriceID))
		}),
	)
}

// NewGetOwnPlan returns the plan of the processor subscription's first item.
func (f *Tasks) NewGetOwnPlan(actor task.Actor, in GetOwnPlanInput) *task.Task[GetOwnPlanInput, Plan] {
	return task.New(getOwnPlanTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in GetOwnPlanInput) (Plan, error) {
			price, err := f.processor.GetSubscriptionPrice(ctx, in.SubscriptionID)
			if err != nil {
				return Plan{}, err
			}
			return planOf(price), nil
		},
		task.WithValidator(func(in GetOwnPlanInput) error {
			return validator.Apply(validator.RequiredString("subscriptionId", in.SubscriptionID))
		}),
	)
}

// NewCreateCustomer registers the actor as a processor customer and returns its id.
func (f *Tasks) NewCreateCustomer(actor task.Actor, in CreateCustomerInput) *task.Task[CreateCustomerInput, string] {
	return task.New(createCustomerTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, actor task.Actor, in CreateCustomerInput) (string, error) {
			name := sanitizer.SingleLine(cmp.Or(in.Name, actor.Name))
			email := sanitizer.NormalizeEmail(cmp.Or(in.Email, actor.Email))
			c, err := f.processor.CreateCustomer(ctx, name, email)
			if err != nil {
				return "", err
			}
			return c.ID, nil
		},
		task.WithValidator(func(in CreateCustomerInput) error {
			return validator.Apply(
				validator.RequiredOneOf("email", in.Email, actor.Email),
				validator.ValidEmail("email", sanitizer.NormalizeEmail(cmp.Or(in.Email, actor.Email))),
			)
		}),
	)
}

func (f *Tasks) NewGetCustomer(actor task.Actor, in CustomerInput) *task.Task[CustomerInput, Customer] {
	return task.New(getCustomerTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in CustomerInput) (Customer, error) {
			return f.processor.GetCustomer(ctx, in.CustomerID)
		},
		task.WithValidator(requireCustomer),
	)
}

// NewCreateSubscription subscribes a customer to a price, charged
// automatically. Any processor rejection is ErrPaymentFailed.
func (f *Tasks) NewCreateSubscription(actor task.Actor, in CreateSubscriptionInput) *task.Task[CreateSubscriptionInput, ProcessorSubscription] {
	return task.New(createSubscriptionTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, actor task.Actor, in CreateSubscriptionInput) (ProcessorSubscription, error) {
			return f.processor.CreateSubscription(ctx, CreateSubscriptionParams{
				CustomerID: in.CustomerID,
				PriceID:    in.PriceID,
				CardID:     in.CardID,
				MemberID:   actor.ID,
			})
		},
		task.WithValidator(func(in CreateSubscriptionInput) error {
			return validator.Apply(
				validator.RequiredString("customerId", in.CustomerID),
				validator.RequiredString("priceId", in.PriceID),
			)
		}),
		task.WithMessage[CreateSubscriptionInput]("subscribe customer to price"),
	)
}

// NewUpdateSubscription moves an existing processor subscription to another price.
func (f *Tasks) NewUpdateSubscription(actor task.Actor, in UpdateSubscriptionInput) *task.Task[UpdateSubscriptionInput, ProcessorSubscription] {
	return task.New(updateSubscriptionTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in UpdateSubscriptionInput) (ProcessorSubscription, error) {
			return f.processor.UpdateSubscription(ctx, UpdateSubscriptionParams(in))
		},
		task.WithValidator(func(in UpdateSubscriptionInput) error {
			return validator.Apply(
				validator.RequiredString("subscriptionId", in.SubscriptionID),
				validator.RequiredString("priceId", in.PriceID),
			)
		}),
		task.WithMessage[UpdateSubscriptionInput]("change subscription price"),
	)
}

// NewGetProrationPreview previews the invoice of switching to another price now.
func (f *Tasks) NewGetProrationPreview(actor task.Actor, in ProrationPreviewInput) *task.Task[ProrationPreviewInput, Invoice] {
	return task.New(getProrationPreviewTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in ProrationPreviewInput) (Invoice, error) {
			return f.processor.PreviewProration(ctx, ProrationParams{
				CustomerID:     in.CustomerID,
				SubscriptionID: in.SubscriptionID,
				PriceID:        in.PriceID,
				ProrationDate:  f.now(),
			})
		},
		task.WithValidator(func(in ProrationPreviewInput) error {
			return validator.Apply(
				validator.RequiredString("customerId", in.CustomerID),
				validator.RequiredString("subscriptionId", in.SubscriptionID),
				validator.RequiredString("priceId", in.PriceID),
			)
		}),
	)
}

func (f *Tasks) NewCreateSetupIntent(actor task.Actor, in CustomerInput) *task.Task[CustomerInput, Intent] {
	return task.New(createSetupIntentTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in CustomerInput) (Intent, error) {
			return f.processor.CreateSetupIntent(ctx, in.CustomerID)
		},
		task.WithValidator(requireCustomer),
	)
}

func (f *Tasks) NewGetCards(actor task.Actor, in CustomerInput) *task.Task[CustomerInput, []Card] {
	return task.New(getCardsTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in CustomerInput) ([]Card, error) {
			return f.processor.ListCards(ctx, in.CustomerID)
		},
		task.WithValidator(requireCustomer),
	)
}

func (f *Tasks) NewSetDefaultCard(actor task.Actor, in SetDefaultCardInput) *task.Task[SetDefaultCardInput, Card] {
	return task.New(setDefaultCardTaskName, actor, in,
		func(ctx context.Context, _ pgx.Tx, _ task.Actor, in SetDefaultCardInput) (Card, error) {
			return f.processor.SetDefaultCard(ctx, in.CustomerID, in.CardID)
		},
		task.WithValidator(func(in SetDefaultCardInput) error {
			return validator.Apply(
				validator.RequiredString("customerId", in.CustomerID),
				validator.RequiredString("cardId", in.CardID),
			)
		}),
	)
}

func requireCustomer(in CustomerInput) error {
	return validator.Apply(validator.RequiredString("customerId", in.CustomerID))
}
