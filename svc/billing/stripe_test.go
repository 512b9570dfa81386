package billing_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subscriptions/svc/billing"
)

const (
	standardProduct = `{"id":"prod_productId","object":"product","name":"Standard Plan","description":"For individuals","metadata":{"type":"individual","level":"1"}}`
	standardPriceJS = `{"id":"price_priceId","object":"price","currency":"chf","unit_amount":1500,"recurring":{"interval":"month"},"product":` + standardProduct + `}`
	subscriptionJS  = `{"id":"sub_1","object":"subscription","status":"active","customer":"cus_AnnaStipeId","items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":` + standardPriceJS + `}]}}`
	mastercardJS    = `{"id":"pm_mastercardId","object":"payment_method","type":"card","customer":"cus_AnnaStipeId","card":{"brand":"mastercard","last4":"4444"}}`
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func missing(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, `{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such object"}}`)
}

// fakeStripe serves the handful of endpoints the processor uses and records
// the last form body it received per route.
type fakeStripe struct {
	mu    sync.Mutex
	forms map[string]map[string]string
}

func (f *fakeStripe) form(route string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[route]
}

func newStripe(t *testing.T) (*billing.StripeProcessor, *fakeStripe) {
	t.Helper()

	fs := &fakeStripe{forms: map[string]map[string]string{}}
	mux := http.NewServeMux()

	record := func(route string, r *http.Request) {
		_ = r.ParseForm()
		values := map[string]string{}
		for k, v := range r.Form {
			values[k] = v[0]
		}
		fs.mu.Lock()
		fs.forms[route] = values
		fs.mu.Unlock()
	}

	mux.HandleFunc("GET /v1/prices", func(w http.ResponseWriter, r *http.Request) {
		record("prices.list", r)
		writeJSON(w, http.StatusOK, `{"object":"list","url":"/v1/prices","has_more":false,"data":[`+standardPriceJS+`]}`)
	})
	mux.HandleFunc("GET /v1/prices/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "price_priceId" {
			missing(w)
			return
		}
		writeJSON(w, http.StatusOK, standardPriceJS)
	})
	mux.HandleFunc("GET /v1/subscriptions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "sub_1" {
			missing(w)
			return
		}
		writeJSON(w, http.StatusOK, subscriptionJS)
	})
	mux.HandleFunc("POST /v1/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		record("subscriptions.create", r)
		if r.PostForm.Get("customer") == "cus_declined" {
			writeJSON(w, http.StatusPaymentRequired, `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)
			return
		}
		writeJSON(w, http.StatusOK, subscriptionJS)
	})
	mux.HandleFunc("POST /v1/subscriptions/{id}", func(w http.ResponseWriter, r *http.Request) {
		record("subscriptions.update", r)
		if r.PostForm.Get("items[0][price]") == "price_declined" {
			writeJSON(w, http.StatusPaymentRequired, `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)
			return
		}
		writeJSON(w, http.StatusOK, subscriptionJS)
	})
	mux.HandleFunc("POST /v1/invoices/create_preview", func(w http.ResponseWriter, r *http.Request) {
		record("invoices.preview", r)
		writeJSON(w, http.StatusOK, `{"id":"upcoming_in_1","object":"invoice","amount_due":1234,"currency":"chf"}`)
	})
	mux.HandleFunc("POST /v1/setup_intents", func(w http.ResponseWriter, r *http.Request) {
		record("setup_intents.create", r)
		writeJSON(w, http.StatusOK, `{"id":"seti_1","object":"setup_intent","client_secret":"seti_1_secret"}`)
	})
	mux.HandleFunc("GET /v1/payment_methods", func(w http.ResponseWriter, r *http.Request) {
		record("payment_methods.list", r)
		if r.Form.Get("customer") != "cus_AnnaStipeId" {
			missing(w)
			return
		}
		writeJSON(w, http.StatusOK, `{"object":"list","url":"/v1/payment_methods","has_more":false,"data":[`+mastercardJS+`]}`)
	})
	mux.HandleFunc("GET /v1/payment_methods/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "pm_mastercardId" {
			missing(w)
			return
		}
		writeJSON(w, http.StatusOK, mastercardJS)
	})
	mux.HandleFunc("POST /v1/customers", func(w http.ResponseWriter, r *http.Request) {
		record("customers.create", r)
		writeJSON(w, http.StatusOK, `{"id":"cus_AnnaStipeId","object":"customer","name":"`+r.PostForm.Get("name")+`","email":"`+r.PostForm.Get("email")+`"}`)
	})
	mux.HandleFunc("GET /v1/customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "cus_AnnaStipeId":
			writeJSON(w, http.StatusOK, `{"id":"cus_AnnaStipeId","object":"customer","name":"Anna","email":"anna@example.com","invoice_settings":{"default_payment_method":"pm_mastercardId"}}`)
		case "cus_deleted":
			writeJSON(w, http.StatusOK, `{"id":"cus_deleted","object":"customer","deleted":true}`)
		default:
			missing(w)
		}
	})
	mux.HandleFunc("POST /v1/customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		record("customers.update", r)
		writeJSON(w, http.StatusOK, `{"id":"`+r.PathValue("id")+`","object":"customer"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p, err := billing.NewStripeProcessor("sk_test_123", billing.WithStripeURL(srv.URL))
	require.NoError(t, err)
	return p, fs
}

func TestNewStripeProcessor(t *testing.T) {
	t.Parallel()

	_, err := billing.NewStripeProcessor("")
	assert.ErrorIs(t, err, billing.ErrMissingSecretKey)
}

func TestStripeProcessor_Catalog(t *testing.T) {
	t.Parallel()
	p, fs := newStripe(t)
	ctx := context.Background()

	prices, err := p.ListPrices(ctx, "prod_productId")
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "prod_productId", fs.form("prices.list")["product"])
	assert.Equal(t, "data.product", fs.form("prices.list")["expand[0]"])

	plans := billing.ProjectPlans(prices, billing.PlanFamilyIndividual)
	require.Len(t, plans, 1)
	assert.Equal(t, billing.Plan{
		ID:          "prod_productId",
		Name:        "Standard Plan",
		Description: "For individuals",
		Level:       1,
		Prices:      []billing.Price{{ID: "price_priceId", Price: 15, Currency: "chf", Interval: "month"}},
	}, plans[0])

	price, err := p.GetPrice(ctx, "price_priceId")
	require.NoError(t, err)
	assert.Equal(t, "Standard Plan", price.ProductName)

	_, err = p.GetPrice(ctx, "price_unknown")
	assert.ErrorIs(t, err, billing.ErrPlanNotFound)

	own, err := p.GetSubscriptionPrice(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "price_priceId", own.ID)

	_, err = p.GetSubscriptionPrice(ctx, "sub_unknown")
	assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
}

func TestStripeProcessor_Subscriptions(t *testing.T) {
	t.Parallel()
	p, fs := newStripe(t)
	ctx := context.Background()
	memberID := uuid.New()

	sub, err := p.CreateSubscription(ctx, billing.CreateSubscriptionParams{
		CustomerID: "cus_AnnaStipeId", PriceID: "price_priceId", CardID: "pm_mastercardId", MemberID: memberID,
	})
	require.NoError(t, err)
	assert.Equal(t, billing.ProcessorSubscription{ID: "sub_1", CustomerID: "cus_AnnaStipeId", PriceID: "price_priceId", Status: "active"}, sub)

	form := fs.form("subscriptions.create")
	assert.Equal(t, "charge_automatically", form["collection_method"])
	assert.Equal(t, "price_priceId", form["items[0][price]"])
	assert.Equal(t, "pm_mastercardId", form["default_payment_method"])
	assert.Equal(t, memberID.String(), form["metadata[member_id]"])

	_, err = p.CreateSubscription(ctx, billing.CreateSubscriptionParams{CustomerID: "cus_declined", PriceID: "price_priceId"})
	assert.ErrorIs(t, err, billing.ErrPaymentFailed)

	_, err = p.UpdateSubscription(ctx, billing.UpdateSubscriptionParams{SubscriptionID: "sub_1", PriceID: "price_pro"})
	require.NoError(t, err)
	form = fs.form("subscriptions.update")
	assert.Equal(t, "si_1", form["items[0][id]"])
	assert.Equal(t, "price_pro", form["items[0][price]"])
	assert.Equal(t, "unchanged", form["billing_cycle_anchor"])
	assert.Equal(t, "error_if_incomplete", form["payment_behavior"])
	assert.Equal(t, "always_invoice", form["proration_behavior"])

	_, err = p.UpdateSubscription(ctx, billing.UpdateSubscriptionParams{SubscriptionID: "sub_1", PriceID: "price_declined"})
	assert.ErrorIs(t, err, billing.ErrPaymentFailed)

	_, err = p.UpdateSubscription(ctx, billing.UpdateSubscriptionParams{SubscriptionID: "sub_gone", PriceID: "price_pro"})
	assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
}

func TestStripeProcessor_PreviewProration(t *testing.T) {
	t.Parallel()
	p, fs := newStripe(t)
	at := time.Unix(1767225600, 0)

	inv, err := p.PreviewProration(context.Background(), billing.ProrationParams{
		CustomerID: "cus_AnnaStipeId", SubscriptionID: "sub_1", PriceID: "price_pro", ProrationDate: at,
	})
	require.NoError(t, err)
	assert.Equal(t, billing.Invoice{ID: "upcoming_in_1", AmountDue: 1234, Currency: "chf"}, inv)

	form := fs.form("invoices.preview")
	assert.Equal(t, "sub_1", form["subscription"])
	assert.Equal(t, "1767225600", form["subscription_details[proration_date]"])
	assert.Equal(t, "si_1", form["subscription_details[items][0][id]"])
	assert.Equal(t, "price_pro", form["subscription_details[items][0][price]"])
}

func TestStripeProcessor_Customers(t *testing.T) {
	t.Parallel()
	p, fs := newStripe(t)
	ctx := context.Background()

	c, err := p.CreateCustomer(ctx, "Anna", "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cus_AnnaStipeId", c.ID)
	assert.Equal(t, "anna@example.com", fs.form("customers.create")["email"])

	c, err = p.GetCustomer(ctx, "cus_AnnaStipeId")
	require.NoError(t, err)
	assert.Equal(t, billing.Customer{ID: "cus_AnnaStipeId", Name: "Anna", Email: "anna@example.com", DefaultCard: "pm_mastercardId"}, c)

	_, err = p.GetCustomer(ctx, "cus_unknown")
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)

	_, err = p.GetCustomer(ctx, "cus_deleted")
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)

	intent, err := p.CreateSetupIntent(ctx, "cus_AnnaStipeId")
	require.NoError(t, err)
	assert.Equal(t, "seti_1_secret", intent.ClientSecret)
}

func TestStripeProcessor_Cards(t *testing.T) {
	t.Parallel()
	p, fs := newStripe(t)
	ctx := context.Background()

	cards, err := p.ListCards(ctx, "cus_AnnaStipeId")
	require.NoError(t, err)
	assert.Equal(t, []billing.Card{{ID: "pm_mastercardId", Brand: "mastercard", LastFourDigits: "4444"}}, cards)
	assert.Equal(t, "card", fs.form("payment_methods.list")["type"])

	_, err = p.ListCards(ctx, "cus_unknown")
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)

	card, err := p.SetDefaultCard(ctx, "cus_AnnaStipeId", "pm_mastercardId")
	require.NoError(t, err)
	assert.Equal(t, "4444", card.LastFourDigits)
	assert.Equal(t, "pm_mastercardId", fs.form("customers.update")["invoice_settings[default_payment_method]"])

	_, err = p.SetDefaultCard(ctx, "cus_AnnaStipeId", "pm_unknown")
	assert.ErrorIs(t, err, billing.ErrCardNotFound)

	_, err = p.SetDefaultCard(ctx, "cus_someoneElse", "pm_mastercardId")
	assert.ErrorIs(t, err, billing.ErrCardNotFound)
}
