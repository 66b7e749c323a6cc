package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/wishclip/wishclip/internal/pkg/checkout"
	"github.com/wishclip/wishclip/internal/pkg/metrics/counter"
	"github.com/wishclip/wishclip/internal/pkg/whop"
)

var checkoutService *checkout.Service

// InitializeCheckoutController wires the orchestrator used by the checkout
// endpoints. Called once from the router during startup; tests inject their
// own service.
func InitializeCheckoutController(svc *checkout.Service) {
	checkoutService = svc
}

// createCheckoutRequest mirrors the client's checkout intent. Every field
// is untrusted input revalidated server-side.
type createCheckoutRequest struct {
	ProductID uint    `json:"product_id"`
	Amount    float64 `json:"amount"`
	Email     string  `json:"email"`
	Metadata  struct {
		Addons              []checkout.Addon `json:"addons"`
		DeliveryTimeMinutes int              `json:"deliveryTimeMinutes"`
		CouponCode          string           `json:"couponCode"`
	} `json:"metadata"`
}

// HandleCheckoutCreate creates the dynamic plan + hosted checkout session
// for one purchase attempt: POST /api/checkout/create.
func HandleCheckoutCreate(c *fiber.Ctx) error {
	var req createCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ProductID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product_id is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := checkoutService.CreateDynamicCheckout(ctx, checkout.CreateCheckoutInput{
		ProductID:           req.ProductID,
		Amount:              req.Amount,
		Email:               strings.TrimSpace(req.Email),
		Addons:              req.Metadata.Addons,
		DeliveryTimeMinutes: req.Metadata.DeliveryTimeMinutes,
		CouponCode:          req.Metadata.CouponCode,
		RedirectOrigin:      c.Get(fiber.HeaderOrigin),
	})
	if err != nil {
		return respondCheckoutError(c, err)
	}

	if err := counter.AddCheckoutCreated(result.ProductID); err != nil {
		log.Debugf("[Checkout] counter increment failed: %v", err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"plan_id":      result.PlanID,
		"checkout_id":  result.CheckoutID,
		"checkout_url": result.CheckoutURL,
		"product_id":   result.ProductID,
		"email":        result.Email,
		"metadata":     result.Snapshot,
		"expires_in":   "15 minutes",
	})
}

// respondCheckoutError maps orchestrator failures onto the API's error
// taxonomy: 4xx for client-input problems, 5xx for configuration and
// provider problems, reusing the provider's own message and status where
// sensible.
func respondCheckoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, checkout.ErrInvalidInput),
		errors.Is(err, checkout.ErrProductNotFound),
		errors.Is(err, checkout.ErrProviderProductNotConfigured):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, checkout.ErrNotConfigured),
		errors.Is(err, checkout.ErrCompanyNotConfigured):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var apiErr *whop.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < http.StatusBadRequest {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{"error": apiErr.Message})
	}

	log.Errorf("[Checkout] create failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create checkout"})
}
