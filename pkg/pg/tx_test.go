package pg_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subscriptions/pkg/pg"
)

type mockTx struct {
	pgx.Tx
	mock.Mock
}

func (m *mockTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockBeginner struct {
	mock.Mock
}

func (m *mockBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(pgx.Tx), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestTransactor_Commit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tx := &mockTx{}
	tx.On("Commit", ctx).Return(nil).Once()
	db := &mockBeginner{}
	db.On("Begin", ctx).Return(tx, nil).Once()

	var got pgx.Tx
	err := pg.NewTransactor(db).InTx(ctx, func(t pgx.Tx) error {
		got = t
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, tx, got)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestTransactor_RollbackKeepsError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("payment failed")
	tx := &mockTx{}
	tx.On("Rollback", ctx).Return(nil).Once()
	db := &mockBeginner{}
	db.On("Begin", ctx).Return(tx, nil).Once()

	err := pg.NewTransactor(db).InTx(ctx, func(pgx.Tx) error { return boom })
	assert.Same(t, boom, err)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestTransactor_RollbackFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("boom")
	rbErr := errors.New("conn lost")
	tx := &mockTx{}
	tx.On("Rollback", ctx).Return(rbErr).Once()
	db := &mockBeginner{}
	db.On("Begin", ctx).Return(tx, nil).Once()

	err := pg.NewTransactor(db).InTx(ctx, func(pgx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, rbErr)
}

func TestTransactor_BeginAndCommitErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	db := &mockBeginner{}
	db.On("Begin", ctx).Return(nil, errors.New("no conn")).Once()
	called := false
	err := pg.NewTransactor(db).InTx(ctx, func(pgx.Tx) error { called = true; return nil })
	assert.ErrorIs(t, err, pg.ErrFailedToBeginTx)
	assert.False(t, called)

	tx := &mockTx{}
	tx.On("Commit", ctx).Return(errors.New("serialization failure")).Once()
	db2 := &mockBeginner{}
	db2.On("Begin", ctx).Return(tx, nil).Once()
	err = pg.NewTransactor(db2).InTx(ctx, func(pgx.Tx) error { return nil })
	assert.ErrorIs(t, err, pg.ErrFailedToCommitTx)
}

func TestNewTransactorPanicsOnNil(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { pg.NewTransactor(nil) })
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(errors.Join(errors.New("get"), pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.True(t, pg.IsTxClosedError(pgx.ErrTxClosed))
	assert.True(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, pg.IsForeignKeyViolationError(&pgconn.PgError{Code: "23503"}))
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ok := pg.Healthcheck(pingFunc(func(context.Context) error { return nil }))
	require.NoError(t, ok(context.Background()))

	bad := pg.Healthcheck(pingFunc(func(context.Context) error { return errors.New("down") }))
	require.ErrorIs(t, bad(context.Background()), pg.ErrHealthcheckFailed)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestConnect_EmptyConnectionString(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	require.ErrorIs(t, err, pg.ErrEmptyConnectionString)
}
