package billing

import "context"

// Processor is the port to the payment processor. Implementations translate
// missing objects into the NotFound kinds and rejected subscription changes
// into ErrPaymentFailed.
type Processor interface {
	ListPrices(ctx context.Context, productID string) ([]CatalogPrice, error)
	GetPrice(ctx context.Context, priceID string) (CatalogPrice, error)
	GetSubscriptionPrice(ctx context.Context, subscriptionID string) (CatalogPrice, error)

	CreateCustomer(ctx context.Context, name, email string) (Customer, error)
	GetCustomer(ctx context.Context, customerID string) (Customer, error)

	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (ProcessorSubscription, error)
	UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) (ProcessorSubscription, error)
	PreviewProration(ctx context.Context, params ProrationParams) (Invoice, error)

	CreateSetupIntent(ctx context.Context, customerID string) (Intent, error)
	ListCards(ctx context.Context, customerID string) ([]Card, error)
	SetDefaultCard(ctx context.Context, customerID, cardID string) (Card, error)
}
