package controllers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/wishclip/wishclip/internal/pkg/checkout"
	"github.com/wishclip/wishclip/internal/pkg/metrics/counter"
	"github.com/wishclip/wishclip/internal/pkg/whop"
)

var (
	fulfillmentEngine *checkout.FulfillmentEngine
	webhookSecrets    *checkout.SecretResolver
)

// InitializeWebhookController wires the fulfillment engine and the secret
// resolver used for signature verification.
func InitializeWebhookController(engine *checkout.FulfillmentEngine, secrets *checkout.SecretResolver) {
	fulfillmentEngine = engine
	webhookSecrets = secrets
}

// HandlePaymentWebhook receives the provider's asynchronous payment events:
// POST /api/webhook/payment. Processing failures always answer 500 so the
// provider retries; a 4xx would stop retries and silently drop a paid
// order.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	// Signature verification applies only when a webhook secret is
	// configured; deployments without one (legacy settings era) process
	// events unverified.
	if secret := webhookSecrets.Resolve(checkout.SecretWebhookSecret); secret != "" {
		signature := strings.TrimSpace(c.Get("X-Whop-Signature"))
		if !whop.VerifyWebhookSignature(rawBody, signature, secret) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
		}
	}

	var event whop.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		// An unreadable envelope will not parse on redelivery either, but
		// a 500 keeps the provider retrying in case this was a transport
		// truncation rather than a malformed payload.
		log.Errorf("[Webhook] unparseable payload: %v", err)
		return respondWebhookFailure(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := processPaymentEvent(ctx, &event)
	if err != nil {
		log.Errorf("[Webhook] processing failed for event %s: %v", event.Data.ID, err)
		return respondWebhookFailure(c)
	}

	if result.Outcome == checkout.OutcomeFulfilled {
		if err := counter.AddOrderFulfilled(result.ProductID); err != nil {
			log.Debugf("[Webhook] counter increment failed: %v", err)
		}
	}

	return c.JSON(fiber.Map{"received": true})
}

// processPaymentEvent shields the response path from panics inside the
// pipeline: an internal crash must become a retryable 500, never an
// unhandled error bubbling out of the handler.
func processPaymentEvent(ctx context.Context, event *whop.WebhookEvent) (result *checkout.FulfillmentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Webhook] panic while processing event: %v", r)
			result = nil
			err = fiber.ErrInternalServerError
		}
	}()
	return fulfillmentEngine.ProcessPaymentEvent(ctx, event)
}

func respondWebhookFailure(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook processing failed"})
}
