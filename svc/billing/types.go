package billing

import (
	"time"

	"github.com/google/uuid"
)

// PlanFamilyIndividual is the product metadata "type" of member plans.
const PlanFamilyIndividual = "individual"

// DefaultPrice is exposed when the processor returns no unit amount.
const DefaultPrice = 0.0

type Price struct {
	ID       string  `json:"id"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
}

type Plan struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Prices      []Price `json:"prices"`
	Description string  `json:"description"`
	Level       int     `json:"level"`
}

type Card struct {
	ID             string `json:"id"`
	Brand          string `json:"brand"`
	LastFourDigits string `json:"lastFourDigits"`
}

type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	DefaultCard string `json:"defaultCard,omitempty"`
}

// Invoice is a proration preview. AmountDue is in minor currency units.
type Invoice struct {
	ID        string `json:"id"`
	AmountDue int64  `json:"amountDue"`
	Currency  string `json:"currency"`
}

type Intent struct {
	ClientSecret string `json:"clientSecret"`
}

// ProcessorSubscription is the processor-side subscription of a customer.
type ProcessorSubscription struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	PriceID    string `json:"priceId"`
	Status     string `json:"status,omitempty"`
}

// CatalogPrice is a processor price with its product expanded, as consumed
// by the catalog projection.
type CatalogPrice struct {
	ID                 string
	UnitAmount         *int64
	Currency           string
	Interval           string
	ProductID          string
	ProductName        string
	ProductDescription string
	ProductMetadata    map[string]string
}

type CreateSubscriptionParams struct {
	CustomerID string
	PriceID    string
	CardID     string
	MemberID   uuid.UUID
}

type UpdateSubscriptionParams struct {
	SubscriptionID string
	PriceID        string
	CardID         string
}

type ProrationParams struct {
	CustomerID     string
	SubscriptionID string
	PriceID        string
	ProrationDate  time.Time
}

// amount converts minor currency units to major units.
func amount(minor *int64) float64 {
	if minor == nil {
		return DefaultPrice
	}
	return float64(*minor) / 100
}
