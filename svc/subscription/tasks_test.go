package subscription_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subscriptions/pkg/pg"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/svc/billing"
	"github.com/dmitrymomot/subscriptions/svc/subscription"
)

type storeMock struct {
	mock.Mock
}

var _ subscription.Store = (*storeMock)(nil)

func (m *storeMock) Create(ctx context.Context, db pg.DBTX, memberID uuid.UUID, planID string) (subscription.Subscription, error) {
	args := m.Called(ctx, db, memberID, planID)
	return args.Get(0).(subscription.Subscription), args.Error(1)
}

func (m *storeMock) Get(ctx context.Context, db pg.DBTX, id uuid.UUID) (subscription.Subscription, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(subscription.Subscription), args.Error(1)
}

func (m *storeMock) GetByMemberID(ctx context.Context, db pg.DBTX, memberID uuid.UUID) (subscription.Subscription, error) {
	args := m.Called(ctx, db, memberID)
	return args.Get(0).(subscription.Subscription), args.Error(1)
}

func (m *storeMock) Update(ctx context.Context, db pg.DBTX, id uuid.UUID, params subscription.UpdateParams) (subscription.Subscription, error) {
	args := m.Called(ctx, db, id, params)
	return args.Get(0).(subscription.Subscription), args.Error(1)
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

func TestTasks_Names(t *testing.T) {
	t.Parallel()

	f := subscription.NewTasks(&storeMock{})
	actor := task.Actor{ID: uuid.New()}

	assert.Equal(t, f.GetSubscriptionTaskName(), f.NewGetSubscription(actor, subscription.GetInput{}).Name())
	assert.Equal(t, f.CreateDefaultSubscriptionTaskName(), f.NewCreateDefaultSubscription(actor, subscription.CreateDefaultInput{}).Name())
	assert.Equal(t, f.UpdateSubscriptionTaskName(), f.NewUpdateSubscription(actor, subscription.UpdateInput{}).Name())
	assert.Panics(t, func() { subscription.NewTasks(nil) })
}

func TestTasks_GetSubscription(t *testing.T) {
	t.Parallel()

	actor := task.Actor{ID: uuid.New()}

	t.Run("defaults to the actor and uses the sequence tx", func(t *testing.T) {
		t.Parallel()

		tx := &txStub{}
		want := subscription.Subscription{ID: uuid.New(), MemberID: actor.ID, PlanID: ptr("prod_productId")}
		store := &storeMock{}
		store.On("GetByMemberID", mock.Anything, tx, actor.ID).Return(want, nil)
		f := subscription.NewTasks(store)

		got, err := task.As[subscription.Subscription](task.NewRunner(stubTransactor{tx: tx}).
			RunSingle(context.Background(), f.NewGetSubscription(actor, subscription.GetInput{})))
		require.NoError(t, err)
		assert.Equal(t, want, got)
		store.AssertExpectations(t)
	})

	t.Run("not found keeps its kind", func(t *testing.T) {
		t.Parallel()

		notFound := billing.ErrSubscriptionNotFound.WithData(map[string]string{"memberId": actor.ID.String()})
		store := &storeMock{}
		store.On("GetByMemberID", mock.Anything, mock.Anything, actor.ID).Return(subscription.Subscription{}, notFound)
		f := subscription.NewTasks(store)

		_, err := task.NewRunner(stubTransactor{}).RunSingle(context.Background(), f.NewGetSubscription(actor, subscription.GetInput{}))
		assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
	})

	t.Run("anonymous actor", func(t *testing.T) {
		t.Parallel()

		f := subscription.NewTasks(&storeMock{})

		_, err := task.NewRunner(stubTransactor{}).RunSingle(context.Background(), f.NewGetSubscription(task.Actor{}, subscription.GetInput{}))
		assert.ErrorIs(t, err, task.ErrMissingField)
	})
}

func TestTasks_CreateDefaultSubscription(t *testing.T) {
	t.Parallel()

	t.Run("creates the record with null processor ids", func(t *testing.T) {
		t.Parallel()

		memberID := uuid.New()
		want := subscription.Subscription{ID: uuid.New(), MemberID: memberID, PlanID: ptr("prod_productId")}
		store := &storeMock{}
		store.On("Create", mock.Anything, mock.Anything, memberID, "prod_productId").Return(want, nil)
		f := subscription.NewTasks(store)

		tk := f.NewCreateDefaultSubscription(task.Actor{}, subscription.CreateDefaultInput{MemberID: memberID, PlanID: "prod_productId"})
		got, err := task.As[subscription.Subscription](task.NewRunner(stubTransactor{}).RunSingle(context.Background(), tk))
		require.NoError(t, err)
		assert.Nil(t, got.CustomerID)
		assert.Nil(t, got.SubscriptionID)
		assert.Equal(t, task.StatusOK, tk.Status())
	})

	t.Run("requires a plan", func(t *testing.T) {
		t.Parallel()

		f := subscription.NewTasks(&storeMock{})

		_, err := task.NewRunner(stubTransactor{}).RunSingle(context.Background(),
			f.NewCreateDefaultSubscription(task.Actor{ID: uuid.New()}, subscription.CreateDefaultInput{}))
		var mf *task.MissingFieldError
		require.ErrorAs(t, err, &mf)
		assert.Equal(t, "planId", mf.Field)
	})
}

func TestTasks_UpdateSubscription(t *testing.T) {
	t.Parallel()

	t.Run("passes the params through", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		params := subscription.UpdateParams{SubscriptionID: ptr("sub_1"), PlanID: ptr("prod_pro")}
		store := &storeMock{}
		store.On("Update", mock.Anything, mock.Anything, id, params).
			Return(subscription.Subscription{ID: id, SubscriptionID: ptr("sub_1"), PlanID: ptr("prod_pro")}, nil)
		f := subscription.NewTasks(store)

		got, err := task.As[subscription.Subscription](task.NewRunner(stubTransactor{}).RunSingle(context.Background(),
			f.NewUpdateSubscription(task.Actor{}, subscription.UpdateInput{ID: id, UpdateParams: params})))
		require.NoError(t, err)
		assert.Equal(t, "prod_pro", got.GetPlanID())
	})

	t.Run("requires an id", func(t *testing.T) {
		t.Parallel()

		f := subscription.NewTasks(&storeMock{})

		_, err := task.NewRunner(stubTransactor{}).RunSingle(context.Background(),
			f.NewUpdateSubscription(task.Actor{}, subscription.UpdateInput{}))
		assert.ErrorIs(t, err, task.ErrMissingField)
	})
}
