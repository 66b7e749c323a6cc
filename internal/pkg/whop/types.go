package whop

import "fmt"

// Plan is a provider pricing plan. Checkout only ever creates hidden
// one-time plans priced at the exact computed total of a single purchase
// attempt; plans are never reused across checkouts.
type Plan struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	PlanType      string  `json:"plan_type"`
	ReleaseMethod string  `json:"release_method"`
	Visibility    string  `json:"visibility"`
	InitialPrice  float64 `json:"initial_price"`
	BaseCurrency  string  `json:"base_currency"`
	DirectLink    string  `json:"direct_link"`
}

// CheckoutSession is a provider-hosted, time-boxed purchase attempt tied to
// one plan.
type CheckoutSession struct {
	ID          string `json:"id"`
	PlanID      string `json:"plan_id"`
	PurchaseURL string `json:"purchase_url"`
	RedirectURL string `json:"redirect_url"`
}

// CreatePlanInput carries the parameters for a dynamic one-time plan.
type CreatePlanInput struct {
	ProductID    string
	Amount       float64
	BaseCurrency string
	Metadata     map[string]interface{}
}

// CreateCheckoutSessionInput carries the parameters for a hosted checkout
// session against an existing plan.
type CreateCheckoutSessionInput struct {
	PlanID      string
	RedirectURL string
	Metadata    map[string]interface{}
}

// WebhookEvent is the provider's signed event envelope as delivered to the
// payment webhook endpoint. Only payment.succeeded drives fulfillment; every
// other event type is accepted and ignored.
type WebhookEvent struct {
	Type string           `json:"type"`
	Data WebhookEventData `json:"data"`
}

// WebhookEventData is the payload section of a webhook event. Metadata is
// kept raw here: the provider may echo back all, part, or none of the
// metadata attached at checkout creation, and the fulfillment engine fills
// the gaps from the locally stored snapshot.
type WebhookEventData struct {
	ID                string                 `json:"id"`
	CheckoutSessionID string                 `json:"checkout_session_id"`
	PlanID            string                 `json:"plan_id"`
	Email             string                 `json:"email"`
	FinalAmount       float64                `json:"final_amount"`
	Currency          string                 `json:"currency"`
	Metadata          map[string]interface{} `json:"metadata"`
}

// APIError is a non-2xx answer from the provider API, preserving the
// provider's own message and HTTP status where they were parseable.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whop api error: status=%d message=%s", e.Status, e.Message)
}

const EventPaymentSucceeded = "payment.succeeded"
