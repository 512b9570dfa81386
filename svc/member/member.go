package member

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subscriptions/pkg/task"
)

type Member struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Actor is the identity the member acts with in task sequences.
func (m Member) Actor() task.Actor {
	return task.Actor{ID: m.ID, Name: m.Name, Email: m.Email}
}
