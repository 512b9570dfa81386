package billing_test

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/svc/billing"
)

type processorMock struct {
	mock.Mock
}

var _ billing.Processor = (*processorMock)(nil)

func (m *processorMock) ListPrices(ctx context.Context, productID string) ([]billing.CatalogPrice, error) {
	args := m.Called(ctx, productID)
	prices, _ := args.Get(0).([]billing.CatalogPrice)
	return prices, args.Error(1)
}

func (m *processorMock) GetPrice(ctx context.Context, priceID string) (billing.CatalogPrice, error) {
	args := m.Called(ctx, priceID)
	return args.Get(0).(billing.CatalogPrice), args.Error(1)
}

func (m *processorMock) GetSubscriptionPrice(ctx context.Context, subscriptionID string) (billing.CatalogPrice, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(billing.CatalogPrice), args.Error(1)
}

func (m *processorMock) CreateCustomer(ctx context.Context, name, email string) (billing.Customer, error) {
	args := m.Called(ctx, name, email)
	return args.Get(0).(billing.Customer), args.Error(1)
}

func (m *processorMock) GetCustomer(ctx context.Context, customerID string) (billing.Customer, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(billing.Customer), args.Error(1)
}

func (m *processorMock) CreateSubscription(ctx context.Context, params billing.CreateSubscriptionParams) (billing.ProcessorSubscription, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(billing.ProcessorSubscription), args.Error(1)
}

func (m *processorMock) UpdateSubscription(ctx context.Context, params billing.UpdateSubscriptionParams) (billing.ProcessorSubscription, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(billing.ProcessorSubscription), args.Error(1)
}

func (m *processorMock) PreviewProration(ctx context.Context, params billing.ProrationParams) (billing.Invoice, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(billing.Invoice), args.Error(1)
}

func (m *processorMock) CreateSetupIntent(ctx context.Context, customerID string) (billing.Intent, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(billing.Intent), args.Error(1)
}

func (m *processorMock) ListCards(ctx context.Context, customerID string) ([]billing.Card, error) {
	args := m.Called(ctx, customerID)
	cards, _ := args.Get(0).([]billing.Card)
	return cards, args.Error(1)
}

func (m *processorMock) SetDefaultCard(ctx context.Context, customerID, cardID string) (billing.Card, error) {
	args := m.Called(ctx, customerID, cardID)
	return args.Get(0).(billing.Card), args.Error(1)
}

type catalogMock struct {
	mock.Mock
}

func (m *catalogMock) Plans(ctx context.Context, productID string) ([]billing.Plan, error) {
	args := m.Called(ctx, productID)
	plans, _ := args.Get(0).([]billing.Plan)
	return plans, args.Error(1)
}

// directTx runs every sequence without a database.
type directTx struct{}

func (directTx) InTx(_ context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}

func newRunner() *task.Runner {
	return task.NewRunner(directTx{})
}

var member = task.Actor{Name: "Anna", Email: "anna@example.com"}

func int64p(v int64) *int64 { return &v }

func standardPrice() billing.CatalogPrice {
	return billing.CatalogPrice{
		ID:                 "price_priceId",
		UnitAmount:         int64p(1500),
		Currency:           "chf",
		Interval:           "month",
		ProductID:          "prod_productId",
		ProductName:        "Standard Plan",
		ProductDescription: "For individuals",
		ProductMetadata:    map[string]string{"type": "individual", "level": "1"},
	}
}
