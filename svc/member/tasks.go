package member

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/subscriptions/pkg/sanitizer"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/pkg/validator"
)

const createTaskName = "member.Create"

// MaxNameLength bounds member names; longer names are cut.
const MaxNameLength = 100

var cleanName = sanitizer.Compose(
	sanitizer.RemoveControlChars,
	sanitizer.SingleLine,
	sanitizer.MaxLength(MaxNameLength),
)

type CreateInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Tasks struct {
	store Store
}

func NewTasks(store Store) *Tasks {
	if store == nil {
		panic("member: nil store")
	}
	return &Tasks{store: store}
}

// CreateTaskName is the name post hooks register under to react to new members.
func (f *Tasks) CreateTaskName() string { return createTaskName }

// NewCreate inserts a member. Post hooks registered for CreateTaskName run
// in the same transaction and receive the new Member.
func (f *Tasks) NewCreate(actor task.Actor, in CreateInput) *task.Task[CreateInput, Member] {
	in.Name = cleanName(in.Name)
	in.Email = sanitizer.NormalizeEmail(in.Email)

	return task.New(createTaskName, actor, in,
		func(ctx context.Context, tx pgx.Tx, _ task.Actor, in CreateInput) (Member, error) {
			return f.store.Create(ctx, tx, in.Name, in.Email)
		},
		task.WithValidator(func(in CreateInput) error {
			return validator.Apply(
				validator.RequiredString("name", in.Name),
				validator.RequiredString("email", in.Email),
				validator.ValidEmail("email", in.Email),
			)
		}),
		task.WithMessage[CreateInput]("create member"),
	)
}
