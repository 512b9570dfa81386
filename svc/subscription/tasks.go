package subscription

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/pkg/validator"
)

const (
	getSubscriptionTaskName           = "subscription.GetSubscription"
	createDefaultSubscriptionTaskName = "subscription.CreateDefaultSubscription"
	updateSubscriptionTaskName        = "subscription.UpdateSubscription"
)

// GetInput selects the record of a member. A nil MemberID means the actor.
type GetInput struct {
	MemberID uuid.UUID
}

// CreateDefaultInput links a member to the default plan. A nil MemberID
// means the actor.
type CreateDefaultInput struct {
	MemberID uuid.UUID
	PlanID   string
}

type UpdateInput struct {
	ID uuid.UUID
	UpdateParams
}

// Tasks builds the tasks over a Store.
type Tasks struct {
	store Store
}

func NewTasks(store Store) *Tasks {
	if store == nil {
		panic("subscription: nil store")
	}
	return &Tasks{store: store}
}

func (f *Tasks) GetSubscriptionTaskName() string           { return getSubscriptionTaskName }
func (f *Tasks) CreateDefaultSubscriptionTaskName() string { return createDefaultSubscriptionTaskName }
func (f *Tasks) UpdateSubscriptionTaskName() string        { return updateSubscriptionTaskName }

func (f *Tasks) NewGetSubscription(actor task.Actor, in GetInput) *task.Task[GetInput, Subscription] {
	return task.New(getSubscriptionTaskName, actor, in,
		func(ctx context.Context, tx pgx.Tx, actor task.Actor, in GetInput) (Subscription, error) {
			return f.store.GetByMemberID(ctx, tx, memberOr(in.MemberID, actor))
		},
		task.WithValidator(func(in GetInput) error {
			return validator.Apply(validator.RequiredComparable("memberId", memberOr(in.MemberID, actor)))
		}),
	)
}

// NewCreateDefaultSubscription inserts the record of a freshly created member.
func (f *Tasks) NewCreateDefaultSubscription(actor task.Actor, in CreateDefaultInput) *task.Task[CreateDefaultInput, Subscription] {
	return task.New(createDefaultSubscriptionTaskName, actor, in,
		func(ctx context.Context, tx pgx.Tx, actor task.Actor, in CreateDefaultInput) (Subscription, error) {
			return f.store.Create(ctx, tx, memberOr(in.MemberID, actor), in.PlanID)
		},
		task.WithValidator(func(in CreateDefaultInput) error {
			return validator.Apply(
				validator.RequiredComparable("memberId", memberOr(in.MemberID, actor)),
				validator.RequiredString("planId", in.PlanID),
			)
		}),
		task.WithMessage[CreateDefaultInput]("link member to the default plan"),
	)
}

func (f *Tasks) NewUpdateSubscription(actor task.Actor, in UpdateInput) *task.Task[UpdateInput, Subscription] {
	return task.New(updateSubscriptionTaskName, actor, in,
		func(ctx context.Context, tx pgx.Tx, _ task.Actor, in UpdateInput) (Subscription, error) {
			return f.store.Update(ctx, tx, in.ID, in.UpdateParams)
		},
		task.WithValidator(func(in UpdateInput) error {
			return validator.Apply(validator.RequiredComparable("id", in.ID))
		}),
	)
}

func memberOr(id uuid.UUID, actor task.Actor) uuid.UUID {
	if id != uuid.Nil {
		return id
	}
	return actor.ID
}
