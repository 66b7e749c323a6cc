package checkout

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Addon is a purchasable extra attached to a cart (gift wrap, rush
// delivery). Its price is part of the computed total and is preserved
// verbatim through to the order.
type Addon struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

// CartSnapshot is the typed cart-contents contract persisted with every
// checkout session. It is the durable source of truth for what was bought:
// the provider's webhook is not guaranteed to echo metadata back, so
// fulfillment hydrates gaps from this snapshot.
type CartSnapshot struct {
	ProductID    uint      `json:"product_id" validate:"required"`
	ProductTitle string    `json:"product_title"`
	Addons       []Addon   `json:"addons" validate:"dive"`
	Email        string    `json:"email" validate:"omitempty,email"`
	Amount       float64   `json:"amount" validate:"gte=0"`
	CreatedAt    time.Time `json:"created_at"`
}

var validate = validator.New()

// Validate checks the snapshot at the hydration boundary.
func (s *CartSnapshot) Validate() error {
	return validate.Struct(s)
}

// ToJSON serializes the snapshot for the session row's metadata column.
func (s *CartSnapshot) ToJSON() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SnapshotFromJSON parses a stored metadata column. Malformed JSON yields an
// error; callers decide whether that degrades to "no snapshot" or aborts.
func SnapshotFromJSON(raw string) (*CartSnapshot, error) {
	var s CartSnapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateCheckoutInput is the server-side view of the client's checkout
// intent. Every field is untrusted: amount and addons are revalidated and
// the catalog price is substituted when the supplied amount is unusable.
type CreateCheckoutInput struct {
	ProductID           uint    `json:"product_id" validate:"required"`
	Amount              float64 `json:"amount"`
	Email               string  `json:"email" validate:"omitempty,email"`
	Addons              []Addon `json:"addons" validate:"dive"`
	DeliveryTimeMinutes int     `json:"deliveryTimeMinutes"`
	CouponCode          string  `json:"couponCode"`
	RedirectOrigin      string  `json:"redirect_origin"`
}

// CheckoutResult is what the orchestrator hands back to the HTTP layer.
// When hosted-session creation failed after the plan was committed,
// CheckoutURL is empty and CheckoutID still carries the placeholder id; the
// caller can retry hosted checkout or fall back to another payment method.
type CheckoutResult struct {
	PlanID      string
	CheckoutID  string
	CheckoutURL string
	ProductID   uint
	Email       string
	Snapshot    CartSnapshot
}

// OrderData is the JSON payload stored in orders.encrypted_data. Amount and
// addons are copied from the reconciled snapshot, never recomputed from the
// live catalog.
type OrderData struct {
	Email             string  `json:"email"`
	Name              string  `json:"name,omitempty"`
	Amount            float64 `json:"amount"`
	Addons            []Addon `json:"addons"`
	ProductTitle      string  `json:"product_title"`
	CheckoutSessionID string  `json:"checkout_session_id"`
	PaymentID         string  `json:"payment_id,omitempty"`
}

// PlaceholderCheckoutID builds the provisional session key used between plan
// creation and hosted-session creation.
func PlaceholderCheckoutID(planID string) string {
	return "plan_" + planID
}

const orderIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateOrderID produces a globally unique order id of the form
// WHOP-<epochMillis>-<rand9>.
func GenerateOrderID() string {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// degrade to a timestamp-only suffix rather than panicking mid-webhook.
		return fmt.Sprintf("WHOP-%d-%09d", time.Now().UnixMilli(), time.Now().Nanosecond())
	}
	for i := range b {
		b[i] = orderIDAlphabet[int(b[i])%len(orderIDAlphabet)]
	}
	return fmt.Sprintf("WHOP-%d-%s", time.Now().UnixMilli(), string(b))
}
