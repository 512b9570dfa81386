package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Subscription links a member to its processor objects. The processor ids
// stay nil until the member first subscribes to a paid plan.
type Subscription struct {
	ID             uuid.UUID `json:"id"`
	MemberID       uuid.UUID `json:"memberId"`
	CustomerID     *string   `json:"customerId"`
	SubscriptionID *string   `json:"subscriptionId"`
	PlanID         *string   `json:"planId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (s Subscription) GetCustomerID() string     { return deref(s.CustomerID) }
func (s Subscription) GetSubscriptionID() string { return deref(s.SubscriptionID) }
func (s Subscription) GetPlanID() string         { return deref(s.PlanID) }

func (s Subscription) HasCustomer() bool {
	return s.GetCustomerID() != ""
}

// HasProcessorSubscription reports whether the member already pays through
// a processor subscription, as opposed to sitting on the default plan.
func (s Subscription) HasProcessorSubscription() bool {
	return s.GetSubscriptionID() != ""
}

// UpdateParams lists the columns to change. Nil fields are left untouched.
type UpdateParams struct {
	CustomerID     *string
	SubscriptionID *string
	PlanID         *string
}

func (p UpdateParams) IsEmpty() bool {
	return p.CustomerID == nil && p.SubscriptionID == nil && p.PlanID == nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
