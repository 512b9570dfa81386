package billing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/dmitrymomot/subscriptions/pkg/logger"
)

const (
	paymentBehaviorErrorIfIncomplete = "error_if_incomplete"
	prorationBehaviorAlwaysInvoice   = "always_invoice"
	paymentMethodTypeCard            = "card"
)

// StripeOption configures the Stripe processor.
type StripeOption func(*stripeConfig)

type stripeConfig struct {
	url    string
	logger *slog.Logger
}

// WithStripeURL points the client at another API host, such as stripe-mock.
func WithStripeURL(url string) StripeOption {
	return func(c *stripeConfig) {
		c.url = url
	}
}

// WithStripeLogger sets the logger for rejected subscription changes.
func WithStripeLogger(l *slog.Logger) StripeOption {
	return func(c *stripeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// StripeProcessor implements Processor on top of the Stripe API.
type StripeProcessor struct {
	api    *client.API
	logger *slog.Logger
}

var _ Processor = (*StripeProcessor)(nil)

// NewStripeProcessor builds a processor authenticated with secretKey.
func NewStripeProcessor(secretKey string, opts ...StripeOption) (*StripeProcessor, error) {
	if secretKey == "" {
		return nil, ErrMissingSecretKey
	}

	cfg := stripeConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	bc := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if cfg.url != "" {
		bc.URL = stripe.String(cfg.url)
	}

	return &StripeProcessor{
		api:    client.New(secretKey, stripe.NewBackendsWithConfig(bc)),
		logger: cfg.logger,
	}, nil
}

func (p *StripeProcessor) ListPrices(ctx context.Context, productID string) ([]CatalogPrice, error) {
	params := &stripe.PriceListParams{}
	params.Context = ctx
	if productID != "" {
		params.Product = stripe.String(productID)
	}
	params.AddExpand("data.product")

	var prices []CatalogPrice
	it := p.api.Prices.List(params)
	for it.Next() {
		prices = append(prices, catalogPrice(it.Price()))
	}
	if err := it.Err(); err != nil {
		return nil, processorError(err)
	}
	return prices, nil
}

func (p *StripeProcessor) GetPrice(ctx context.Context, priceID string) (CatalogPrice, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	params.AddExpand("product")

	pr, err := p.api.Prices.Get(priceID, params)
	if err != nil {
		if isMissing(err) {
			return CatalogPrice{}, ErrPlanNotFound.WithData(map[string]string{"priceId": priceID}).Wrap(err)
		}
		return CatalogPrice{}, processorError(err)
	}
	return catalogPrice(pr), nil
}

func (p *StripeProcessor) GetSubscriptionPrice(ctx context.Context, subscriptionID string) (CatalogPrice, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("items.data.price.product")

	sub, err := p.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		if isMissing(err) {
			return CatalogPrice{}, ErrSubscriptionNotFound.WithData(map[string]string{"subscriptionId": subscriptionID}).Wrap(err)
		}
		return CatalogPrice{}, processorError(err)
	}

	item := firstItem(sub)
	if item == nil || item.Price == nil {
		return CatalogPrice{}, ErrPlanNotFound.WithData(map[string]string{"subscriptionId": subscriptionID})
	}
	return catalogPrice(item.Price), nil
}

func (p *StripeProcessor) CreateCustomer(ctx context.Context, name, email string) (Customer, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
	}
	params.Context = ctx

	c, err := p.api.Customers.New(params)
	if err != nil {
		return Customer{}, processorError(err)
	}
	return customerOf(c), nil
}

func (p *StripeProcessor) GetCustomer(ctx context.Context, customerID string) (Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	c, err := p.api.Customers.Get(customerID, params)
	if err != nil {
		if isMissing(err) {
			return Customer{}, customerNotFound(customerID).Wrap(err)
		}
		return Customer{}, processorError(err)
	}
	if c.Deleted {
		return Customer{}, customerNotFound(customerID)
	}
	return customerOf(c), nil
}

func (p *StripeProcessor) CreateSubscription(ctx context.Context, in CreateSubscriptionParams) (ProcessorSubscription, error) {
	params := &stripe.SubscriptionParams{
		Customer:         stripe.String(in.CustomerID),
		CollectionMethod: stripe.String(string(stripe.SubscriptionCollectionMethodChargeAutomatically)),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(in.PriceID)},
		},
	}
	if in.CardID != "" {
		params.DefaultPaymentMethod = stripe.String(in.CardID)
	}
	if in.MemberID != uuid.Nil {
		params.AddMetadata("member_id", in.MemberID.String())
	}
	params.Context = ctx

	sub, err := p.api.Subscriptions.New(params)
	if err != nil {
		p.logger.WarnContext(ctx, "processor rejected subscription",
			logger.CustomerID(in.CustomerID),
			logger.PlanID(in.PriceID),
			logger.Error(err))
		return ProcessorSubscription{}, ErrPaymentFailed.WithData(map[string]string{"priceId": in.PriceID}).Wrap(err)
	}
	return subscriptionOf(sub), nil
}

// UpdateSubscription swaps the price of the first subscription item. The
// billing anchor is kept, the change is invoiced immediately and rejected
// when the payment cannot complete.
func (p *StripeProcessor) UpdateSubscription(ctx context.Context, in UpdateSubscriptionParams) (ProcessorSubscription, error) {
	getParams := &stripe.SubscriptionParams{}
	getParams.Context = ctx

	current, err := p.api.Subscriptions.Get(in.SubscriptionID, getParams)
	if err != nil {
		if isMissing(err) {
			return ProcessorSubscription{}, ErrSubscriptionNotFound.WithData(map[string]string{"subscriptionId": in.SubscriptionID}).Wrap(err)
		}
		return ProcessorSubscription{}, processorError(err)
	}
	item := firstItem(current)
	if item == nil {
		return ProcessorSubscription{}, ErrSubscriptionNotFound.WithData(map[string]string{"subscriptionId": in.SubscriptionID})
	}

	params := &stripe.SubscriptionParams{
		BillingCycleAnchorUnchanged: stripe.Bool(true),
		PaymentBehavior:             stripe.String(paymentBehaviorErrorIfIncomplete),
		ProrationBehavior:           stripe.String(prorationBehaviorAlwaysInvoice),
		Items: []*stripe.SubscriptionItemsParams{
			{ID: stripe.String(item.ID), Price: stripe.String(in.PriceID)},
		},
	}
	if in.CardID != "" {
		params.DefaultPaymentMethod = stripe.String(in.CardID)
	}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Update(in.SubscriptionID, params)
	if err != nil {
		p.logger.WarnContext(ctx, "processor rejected subscription change",
			logger.SubscriptionID(in.SubscriptionID),
			logger.PlanID(in.PriceID),
			logger.Error(err))
		return ProcessorSubscription{}, ErrPaymentFailed.WithData(map[string]string{"priceId": in.PriceID}).Wrap(err)
	}
	return subscriptionOf(sub), nil
}

func (p *StripeProcessor) PreviewProration(ctx context.Context, in ProrationParams) (Invoice, error) {
	getParams := &stripe.SubscriptionParams{}
	getParams.Context = ctx

	current, err := p.api.Subscriptions.Get(in.SubscriptionID, getParams)
	if err != nil {
		if isMissing(err) {
			return Invoice{}, ErrSubscriptionNotFound.WithData(map[string]string{"subscriptionId": in.SubscriptionID}).Wrap(err)
		}
		return Invoice{}, processorError(err)
	}
	item := firstItem(current)
	if item == nil {
		return Invoice{}, ErrSubscriptionNotFound.WithData(map[string]string{"subscriptionId": in.SubscriptionID})
	}

	params := &stripe.InvoiceCreatePreviewParams{
		Customer:     stripe.String(in.CustomerID),
		Subscription: stripe.String(in.SubscriptionID),
		SubscriptionDetails: &stripe.InvoiceCreatePreviewSubscriptionDetailsParams{
			ProrationDate: stripe.Int64(in.ProrationDate.Unix()),
			Items: []*stripe.InvoiceCreatePreviewSubscriptionDetailsItemParams{
				{ID: stripe.String(item.ID), Price: stripe.String(in.PriceID)},
			},
		},
	}
	params.Context = ctx

	inv, err := p.api.Invoices.CreatePreview(params)
	if err != nil {
		if isMissing(err) {
			return Invoice{}, ErrPlanNotFound.WithData(map[string]string{"priceId": in.PriceID}).Wrap(err)
		}
		return Invoice{}, processorError(err)
	}
	return Invoice{ID: inv.ID, AmountDue: inv.AmountDue, Currency: string(inv.Currency)}, nil
}

func (p *StripeProcessor) CreateSetupIntent(ctx context.Context, customerID string) (Intent, error) {
	params := &stripe.SetupIntentParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	si, err := p.api.SetupIntents.New(params)
	if err != nil {
		if isMissing(err) {
			return Intent{}, customerNotFound(customerID).Wrap(err)
		}
		return Intent{}, processorError(err)
	}
	return Intent{ClientSecret: si.ClientSecret}, nil
}

func (p *StripeProcessor) ListCards(ctx context.Context, customerID string) ([]Card, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(paymentMethodTypeCard),
	}
	params.Context = ctx

	cards := []Card{}
	it := p.api.PaymentMethods.List(params)
	for it.Next() {
		cards = append(cards, cardOf(it.PaymentMethod()))
	}
	if err := it.Err(); err != nil {
		if isMissing(err) {
			return nil, customerNotFound(customerID).Wrap(err)
		}
		return nil, processorError(err)
	}
	return cards, nil
}

// SetDefaultCard makes cardID the invoice default of the customer. A card
// attached to another customer is reported as not found.
func (p *StripeProcessor) SetDefaultCard(ctx context.Context, customerID, cardID string) (Card, error) {
	pmParams := &stripe.PaymentMethodParams{}
	pmParams.Context = ctx

	pm, err := p.api.PaymentMethods.Get(cardID, pmParams)
	if err != nil {
		if isMissing(err) {
			return Card{}, cardNotFound(cardID).Wrap(err)
		}
		return Card{}, processorError(err)
	}
	if pm.Customer != nil && pm.Customer.ID != "" && pm.Customer.ID != customerID {
		return Card{}, cardNotFound(cardID)
	}

	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(pm.ID),
		},
	}
	params.Context = ctx

	if _, err := p.api.Customers.Update(customerID, params); err != nil {
		if isMissing(err) {
			return Card{}, customerNotFound(customerID).Wrap(err)
		}
		return Card{}, processorError(err)
	}
	return cardOf(pm), nil
}

func customerNotFound(id string) *Error {
	return ErrCustomerNotFound.WithData(map[string]string{"customerId": id})
}

func cardNotFound(id string) *Error {
	return ErrCardNotFound.WithData(map[string]string{"cardId": id})
}

// isMissing reports whether the API answered that the object does not exist.
func isMissing(err error) bool {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == stripe.ErrorCodeResourceMissing || se.HTTPStatusCode == http.StatusNotFound
}

func processorError(err error) error {
	return errors.Join(ErrProcessor, err)
}

func firstItem(sub *stripe.Subscription) *stripe.SubscriptionItem {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	return sub.Items.Data[0]
}

func catalogPrice(p *stripe.Price) CatalogPrice {
	cp := CatalogPrice{
		ID:       p.ID,
		Currency: string(p.Currency),
	}
	if p.UnitAmount != 0 {
		v := p.UnitAmount
		cp.UnitAmount = &v
	}
	if p.Recurring != nil {
		cp.Interval = string(p.Recurring.Interval)
	}
	if p.Product != nil {
		cp.ProductID = p.Product.ID
		cp.ProductName = p.Product.Name
		cp.ProductDescription = p.Product.Description
		cp.ProductMetadata = p.Product.Metadata
	}
	return cp
}

func customerOf(c *stripe.Customer) Customer {
	out := Customer{ID: c.ID, Name: c.Name, Email: c.Email}
	if c.InvoiceSettings != nil && c.InvoiceSettings.DefaultPaymentMethod != nil {
		out.DefaultCard = c.InvoiceSettings.DefaultPaymentMethod.ID
	}
	return out
}

func subscriptionOf(s *stripe.Subscription) ProcessorSubscription {
	out := ProcessorSubscription{ID: s.ID, Status: string(s.Status)}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if item := firstItem(s); item != nil && item.Price != nil {
		out.PriceID = item.Price.ID
	}
	return out
}

func cardOf(pm *stripe.PaymentMethod) Card {
	c := Card{ID: pm.ID}
	if pm.Card != nil {
		c.Brand = string(pm.Card.Brand)
		c.LastFourDigits = pm.Card.Last4
	}
	return c
}
