package subscriptions_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/subscriptions"
	"github.com/dmitrymomot/subscriptions/pkg/email"
	"github.com/dmitrymomot/subscriptions/pkg/pg"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/svc/billing"
	"github.com/dmitrymomot/subscriptions/svc/member"
	"github.com/dmitrymomot/subscriptions/svc/subscription"
)

const defaultPlanID = "prod_free"

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

// memStore keeps records in memory and applies updates the way the
// Postgres store does: nil fields keep their value.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]subscription.Subscription
	dbs     []pg.DBTX
}

var _ subscription.Store = (*memStore)(nil)

func newMemStore(recs ...subscription.Subscription) *memStore {
	s := &memStore{records: make(map[uuid.UUID]subscription.Subscription)}
	for _, r := range recs {
		s.records[r.ID] = r
	}
	return s
}

func (s *memStore) Create(_ context.Context, db pg.DBTX, memberID uuid.UUID, planID string) (subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbs = append(s.dbs, db)

	now := time.Now()
	rec := subscription.Subscription{
		ID:        uuid.New(),
		MemberID:  memberID,
		PlanID:    &planID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *memStore) Get(_ context.Context, db pg.DBTX, id uuid.UUID) (subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbs = append(s.dbs, db)

	rec, ok := s.records[id]
	if !ok {
		return subscription.Subscription{}, billing.ErrSubscriptionNotFound
	}
	return rec, nil
}

func (s *memStore) GetByMemberID(_ context.Context, db pg.DBTX, memberID uuid.UUID) (subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbs = append(s.dbs, db)

	for _, rec := range s.records {
		if rec.MemberID == memberID {
			return rec, nil
		}
	}
	return subscription.Subscription{}, billing.ErrSubscriptionNotFound
}

func (s *memStore) Update(_ context.Context, db pg.DBTX, id uuid.UUID, params subscription.UpdateParams) (subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbs = append(s.dbs, db)

	if params.IsEmpty() {
		return subscription.Subscription{}, subscription.ErrNothingToUpdate
	}
	rec, ok := s.records[id]
	if !ok {
		return subscription.Subscription{}, billing.ErrSubscriptionNotFound
	}
	if params.CustomerID != nil {
		rec.CustomerID = params.CustomerID
	}
	if params.SubscriptionID != nil {
		rec.SubscriptionID = params.SubscriptionID
	}
	if params.PlanID != nil {
		rec.PlanID = params.PlanID
	}
	rec.UpdatedAt = time.Now()
	s.records[id] = rec
	return rec, nil
}

func (s *memStore) record(id uuid.UUID) subscription.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

func (s *memStore) byMember(memberID uuid.UUID) (subscription.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.MemberID == memberID {
			return rec, true
		}
	}
	return subscription.Subscription{}, false
}

// usedDBs returns every handle the store was called with.
func (s *memStore) usedDBs() []pg.DBTX {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pg.DBTX(nil), s.dbs...)
}

type memberStore struct {
	mu  sync.Mutex
	dbs []pg.DBTX
}

func (s *memberStore) Create(_ context.Context, db pg.DBTX, name, email string) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbs = append(s.dbs, db)
	return member.Member{ID: uuid.New(), Name: name, Email: email, CreatedAt: time.Now()}, nil
}

func (s *memberStore) Get(context.Context, pg.DBTX, uuid.UUID) (member.Member, error) {
	return member.Member{}, member.ErrMemberNotFound
}

type mailerStub struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (m *mailerStub) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mailerStub) messages() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Message(nil), m.sent...)
}

// txStub is the transaction handed to every sequence.
type txStub struct {
	pgx.Tx
}

type stubTransactor struct {
	tx pgx.Tx
}

func (s stubTransactor) InTx(_ context.Context, fn func(pgx.Tx) error) error {
	return fn(s.tx)
}

type fixture struct {
	plugin *subscriptions.Plugin
	runner *task.Runner
	proc   *processorMock
	store  *memStore
	mailer *mailerStub
	tx     *txStub
}

func newFixture(t *testing.T, recs ...subscription.Subscription) *fixture {
	t.Helper()

	f := &fixture{
		proc:   &processorMock{},
		store:  newMemStore(recs...),
		mailer: &mailerStub{},
		tx:     &txStub{},
	}
	f.runner = task.NewRunner(stubTransactor{tx: f.tx}, task.WithHooks(task.NewHooks()))
	f.plugin = subscriptions.New(
		subscriptions.Config{DefaultPlanProductID: defaultPlanID, PlanFamily: billing.PlanFamilyIndividual},
		f.runner,
		billing.NewTasks(f.proc, billing.PlanFamilyIndividual),
		subscription.NewTasks(f.store),
		subscriptions.WithMailer(f.mailer),
	)
	return f
}

func newActor() task.Actor {
	return task.Actor{ID: uuid.New(), Name: "Jane Doe", Email: "jane@example.com"}
}

func ptr(s string) *string { return &s }

func int64p(n int64) *int64 { return &n }

func catalogPrice(priceID, productID, name, level string, amount int64) billing.CatalogPrice {
	return billing.CatalogPrice{
		ID:          priceID,
		UnitAmount:  int64p(amount),
		Currency:    "usd",
		Interval:    "month",
		ProductID:   productID,
		ProductName: name,
		ProductMetadata: map[string]string{
			"type":  billing.PlanFamilyIndividual,
			"level": level,
		},
	}
}
