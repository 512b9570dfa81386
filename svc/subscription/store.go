package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subscriptions/pkg/pg"
	"github.com/dmitrymomot/subscriptions/svc/billing"
)

// Store persists subscription records.
type Store interface {
	Create(ctx context.Context, db pg.DBTX, memberID uuid.UUID, planID string) (Subscription, error)
	Get(ctx context.Context, db pg.DBTX, id uuid.UUID) (Subscription, error)
	GetByMemberID(ctx context.Context, db pg.DBTX, memberID uuid.UUID) (Subscription, error)
	Update(ctx context.Context, db pg.DBTX, id uuid.UUID, params UpdateParams) (Subscription, error)
}

const columns = `id, member_id, customer_id, subscription_id, plan_id, created_at, updated_at`

// PGStore is the PostgreSQL Store over the member_plan table.
type PGStore struct{}

var _ Store = PGStore{}

func NewStore() PGStore {
	return PGStore{}
}

// Create inserts the record of a member with no processor objects yet.
// Callers ensure a member gets a single record.
func (PGStore) Create(ctx context.Context, db pg.DBTX, memberID uuid.UUID, planID string) (Subscription, error) {
	var plan *string
	if planID != "" {
		plan = &planID
	}

	s, err := scan(db.QueryRow(ctx,
		`INSERT INTO member_plan (member_id, plan_id) VALUES ($1, $2) RETURNING `+columns,
		memberID, plan))
	switch {
	case pg.IsForeignKeyViolationError(err):
		return Subscription{}, errors.Join(ErrMemberNotFound, err)
	case err != nil:
		return Subscription{}, errors.Join(ErrFailedToCreate, err)
	}
	return s, nil
}

func (PGStore) Get(ctx context.Context, db pg.DBTX, id uuid.UUID) (Subscription, error) {
	s, err := scan(db.QueryRow(ctx, `SELECT `+columns+` FROM member_plan WHERE id = $1`, id))
	if err != nil {
		return Subscription{}, lookupError(err, map[string]string{"id": id.String()})
	}
	return s, nil
}

func (PGStore) GetByMemberID(ctx context.Context, db pg.DBTX, memberID uuid.UUID) (Subscription, error) {
	s, err := scan(db.QueryRow(ctx, `SELECT `+columns+` FROM member_plan WHERE member_id = $1 ORDER BY created_at LIMIT 1`, memberID))
	if err != nil {
		return Subscription{}, lookupError(err, map[string]string{"memberId": memberID.String()})
	}
	return s, nil
}

// Update sets the non-nil fields of params and bumps updated_at.
func (PGStore) Update(ctx context.Context, db pg.DBTX, id uuid.UUID, params UpdateParams) (Subscription, error) {
	if params.IsEmpty() {
		return Subscription{}, ErrNothingToUpdate
	}

	s, err := scan(db.QueryRow(ctx, `
		UPDATE member_plan SET
			customer_id = COALESCE($2, customer_id),
			subscription_id = COALESCE($3, subscription_id),
			plan_id = COALESCE($4, plan_id),
			updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		id, params.CustomerID, params.SubscriptionID, params.PlanID))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Subscription{}, billing.ErrSubscriptionNotFound.WithData(map[string]string{"id": id.String()})
		}
		return Subscription{}, errors.Join(ErrFailedToUpdate, err)
	}
	return s, nil
}

type row interface {
	Scan(dest ...any) error
}

func scan(r row) (Subscription, error) {
	var s Subscription
	err := r.Scan(&s.ID, &s.MemberID, &s.CustomerID, &s.SubscriptionID, &s.PlanID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func lookupError(err error, data map[string]string) error {
	if pg.IsNotFoundError(err) {
		return billing.ErrSubscriptionNotFound.WithData(data)
	}
	return errors.Join(ErrFailedToGet, err)
}
