package checkout

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wishclip/wishclip/app/models"
	"github.com/wishclip/wishclip/app/repository"
	"github.com/wishclip/wishclip/internal/pkg/env"
	"github.com/wishclip/wishclip/internal/pkg/notify"
	"github.com/wishclip/wishclip/internal/pkg/whop"
)

// BackgroundEnqueuer hands best-effort side work (remote resource cleanup,
// order notification) to the job queue. Enqueue failures never fail the
// webhook: cleanup is resource hygiene, not correctness.
type BackgroundEnqueuer interface {
	EnqueueRemoteCleanup(checkoutSessionID, planID string) error
	EnqueueOrderNotification(n notify.OrderNotification) error
}

// FulfillmentEngine reconciles the provider's asynchronous payment
// confirmation against the local checkout session store and creates the
// authoritative order record.
type FulfillmentEngine struct {
	sessions repository.CheckoutSessionRepository
	orders   repository.OrderRepository
	jobs     BackgroundEnqueuer
}

// NewFulfillmentEngine creates the webhook fulfillment engine.
func NewFulfillmentEngine(sessions repository.CheckoutSessionRepository, orders repository.OrderRepository, jobs BackgroundEnqueuer) *FulfillmentEngine {
	return &FulfillmentEngine{
		sessions: sessions,
		orders:   orders,
		jobs:     jobs,
	}
}

// FulfillmentResult reports what one webhook delivery amounted to.
type FulfillmentResult struct {
	// Outcome is one of "ignored" (not a fulfilling event type), "dropped"
	// (fulfilling event without a usable product reference) or "fulfilled".
	Outcome   string
	OrderID   string
	ProductID uint
}

const (
	OutcomeIgnored   = "ignored"
	OutcomeDropped   = "dropped"
	OutcomeFulfilled = "fulfilled"
)

// ProcessPaymentEvent runs the fulfillment state machine for one webhook
// delivery. A nil error means the provider gets {received:true}; an error
// means a 500 so the provider retries. Events that are not
// payment.succeeded, and succeeded events whose metadata has no product id
// even after hydration, are accepted and dropped rather than failed.
//
// Duplicate-delivery note: session completion and remote cleanup are
// idempotent, order insertion is not. A duplicate payment.succeeded for the
// same checkout session will insert a second order unless the schema adds a
// uniqueness constraint; this mirrors the known gap in the pipeline design.
func (e *FulfillmentEngine) ProcessPaymentEvent(ctx context.Context, evt *whop.WebhookEvent) (*FulfillmentResult, error) {
	if evt == nil || evt.Type != whop.EventPaymentSucceeded {
		// Providers send many event kinds; everything else is acknowledged
		// and ignored.
		return &FulfillmentResult{Outcome: OutcomeIgnored}, nil
	}

	sessionID := strings.TrimSpace(evt.Data.CheckoutSessionID)
	if sessionID == "" {
		log.Warnf("[Fulfillment] payment.succeeded without checkout_session_id, dropping (payment=%s)", evt.Data.ID)
		return &FulfillmentResult{Outcome: OutcomeDropped}, nil
	}

	// Step A: metadata hydration. The stored snapshot fills gaps the
	// provider did not echo back; payload-supplied fields always win.
	var stored *CartSnapshot
	var storedPlanID string
	session, err := e.sessions.GetByCheckoutID(sessionID)
	if err != nil {
		log.Warnf("[Fulfillment] no checkout session for %s: %v", sessionID, err)
	} else {
		storedPlanID = session.PlanID
		stored, err = SnapshotFromJSON(session.Metadata)
		if err != nil {
			log.Errorf("[Fulfillment] stored metadata for %s is malformed: %v", sessionID, err)
			stored = nil
		}
	}
	snapshot, buyerName := hydrateSnapshot(evt.Data, stored)

	// Step B: idempotent session completion.
	if session != nil {
		if err := e.sessions.MarkCompleted(sessionID, time.Now()); err != nil {
			// Transient store errors must bubble up as a 500 so the
			// provider retries instead of silently dropping a paid order.
			return nil, err
		}
	}

	// Step C: best-effort remote cleanup of the ephemeral session and, when
	// the session still references one, its plan. Fire-and-forget.
	if e.jobs != nil {
		if err := e.jobs.EnqueueRemoteCleanup(sessionID, storedPlanID); err != nil {
			log.Errorf("[Fulfillment] could not enqueue remote cleanup for %s: %v", sessionID, err)
		}
	}

	// Step D: order creation. The product id is the only hard gate; every
	// other snapshot field is cosmetic for a payment that already happened,
	// so invalid values are degraded, never grounds to drop a paid event.
	if snapshot.ProductID == 0 {
		log.Warnf("[Fulfillment] dropping payment %s: no product_id after hydration", evt.Data.ID)
		return &FulfillmentResult{Outcome: OutcomeDropped}, nil
	}
	sanitizeSnapshot(&snapshot, evt.Data.ID)

	if prior, err := e.orders.CountByCheckoutSessionID(sessionID); err == nil && prior > 0 {
		// No dedup ledger exists, so a redelivered event still inserts a
		// second order; make the duplicate at least visible in the logs.
		log.Warnf("[Fulfillment] session %s already has %d order(s), payment %s looks like a duplicate delivery", sessionID, prior, evt.Data.ID)
	}

	orderData := OrderData{
		Email:             snapshot.Email,
		Name:              buyerName,
		Amount:            snapshot.Amount,
		Addons:            snapshot.Addons,
		ProductTitle:      snapshot.ProductTitle,
		CheckoutSessionID: sessionID,
		PaymentID:         evt.Data.ID,
	}
	rawData, err := json.Marshal(orderData)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderID:       GenerateOrderID(),
		ProductID:     snapshot.ProductID,
		EncryptedData: string(rawData),
		Status:        models.OrderStatusCompleted,
	}
	if err := e.orders.Create(order); err != nil {
		return nil, err
	}
	log.Infof("[Fulfillment] created order %s for session %s (amount=%.2f)", order.OrderID, sessionID, snapshot.Amount)

	// Step E: notification, fire-and-forget.
	if e.jobs != nil {
		origin := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
		notification := notify.OrderNotification{
			OrderID:   order.OrderID,
			ProductID: order.ProductID,
			Email:     snapshot.Email,
			Name:      buyerName,
			Amount:    snapshot.Amount,
			Status:    order.Status,
			Origin:    origin,
			OrderURL:  origin + "/order/" + order.OrderID,
		}
		if err := e.jobs.EnqueueOrderNotification(notification); err != nil {
			log.Errorf("[Fulfillment] could not enqueue notification for order %s: %v", order.OrderID, err)
		}
	}

	return &FulfillmentResult{
		Outcome:   OutcomeFulfilled,
		OrderID:   order.OrderID,
		ProductID: order.ProductID,
	}, nil
}

// sanitizeSnapshot degrades invalid optional fields in place. The payment
// already happened, so a typo'd email or a malformed addon must never cost
// the buyer the order; the offending field is logged and cleared instead.
func sanitizeSnapshot(s *CartSnapshot, paymentID string) {
	if err := s.Validate(); err == nil {
		return
	}
	if s.Email != "" {
		if err := validate.Var(s.Email, "email"); err != nil {
			log.Warnf("[Fulfillment] payment %s: discarding invalid email %q", paymentID, s.Email)
			s.Email = ""
		}
	}
	if s.Amount < 0 || math.IsNaN(s.Amount) || math.IsInf(s.Amount, 0) {
		log.Warnf("[Fulfillment] payment %s: resetting invalid amount %v", paymentID, s.Amount)
		s.Amount = 0
	}
	if len(s.Addons) > 0 {
		kept := make([]Addon, 0, len(s.Addons))
		for _, a := range s.Addons {
			if strings.TrimSpace(a.Name) == "" || a.Price < 0 {
				log.Warnf("[Fulfillment] payment %s: discarding malformed addon %+v", paymentID, a)
				continue
			}
			kept = append(kept, a)
		}
		s.Addons = kept
	}
}

// hydrateSnapshot merges the payload's embedded metadata with the stored
// snapshot, filling gaps only: a field the payload supplied is never
// overwritten by the stored value. The buyer name travels only in payload
// metadata and is returned separately.
func hydrateSnapshot(data whop.WebhookEventData, stored *CartSnapshot) (CartSnapshot, string) {
	if stored == nil {
		stored = &CartSnapshot{}
	}
	md := data.Metadata

	merged := CartSnapshot{CreatedAt: stored.CreatedAt}

	if id, ok := metadataUint(md, "product_id"); ok {
		merged.ProductID = id
	} else {
		merged.ProductID = stored.ProductID
	}

	if title, ok := metadataString(md, "product_title"); ok {
		merged.ProductTitle = title
	} else {
		merged.ProductTitle = stored.ProductTitle
	}

	if addons, ok := metadataAddons(md); ok {
		merged.Addons = addons
	} else {
		merged.Addons = stored.Addons
	}

	if email, ok := metadataString(md, "email"); ok {
		merged.Email = email
	} else if v := strings.TrimSpace(data.Email); v != "" {
		merged.Email = v
	} else {
		merged.Email = stored.Email
	}

	if amount, ok := metadataFloat(md, "amount"); ok {
		merged.Amount = amount
	} else if stored.Amount > 0 {
		merged.Amount = stored.Amount
	} else {
		merged.Amount = data.FinalAmount
	}

	name, _ := metadataString(md, "name")
	return merged, name
}

func metadataString(md map[string]interface{}, key string) (string, bool) {
	if md == nil {
		return "", false
	}
	raw, ok := md[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func metadataFloat(md map[string]interface{}, key string) (float64, bool) {
	if md == nil {
		return 0, false
	}
	raw, ok := md[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		var f float64
		if err := json.Unmarshal([]byte(v), &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func metadataUint(md map[string]interface{}, key string) (uint, bool) {
	f, ok := metadataFloat(md, key)
	if !ok || f <= 0 {
		return 0, false
	}
	return uint(f), true
}

func metadataAddons(md map[string]interface{}) ([]Addon, bool) {
	if md == nil {
		return nil, false
	}
	raw, ok := md["addons"]
	if !ok || raw == nil {
		return nil, false
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	var addons []Addon
	if err := json.Unmarshal(encoded, &addons); err != nil {
		return nil, false
	}
	return addons, true
}
