package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wishclip/wishclip/app/models"
	"github.com/wishclip/wishclip/app/repository"
	"github.com/wishclip/wishclip/internal/pkg/env"
	"github.com/wishclip/wishclip/internal/pkg/whop"
)

var (
	// ErrInvalidInput means the client's checkout intent failed validation.
	ErrInvalidInput = errors.New("invalid checkout input")
	// ErrProductNotFound means the requested product does not exist locally.
	ErrProductNotFound = errors.New("product not found")
	// ErrProviderProductNotConfigured means neither the product nor the
	// global default carries a provider product id.
	ErrProviderProductNotConfigured = errors.New("no whop product id configured for this product")
	// ErrNotConfigured means no provider API key could be resolved through
	// any tier.
	ErrNotConfigured = errors.New("whop is not configured: no api key resolvable")
	// ErrCompanyNotConfigured means no provider company/account id could be
	// resolved.
	ErrCompanyNotConfigured = errors.New("whop is not configured: no company id resolvable")
)

// ProviderClient is the provider API surface the orchestrator and the
// cleanup worker depend on. *whop.Client satisfies it.
type ProviderClient interface {
	CreatePlan(ctx context.Context, in whop.CreatePlanInput) (*whop.Plan, error)
	CreateCheckoutSession(ctx context.Context, in whop.CreateCheckoutSessionInput) (*whop.CheckoutSession, error)
	DeletePlan(ctx context.Context, planID string) error
	DeleteCheckoutSession(ctx context.Context, checkoutSessionID string) error
	AllowRepeatPurchases(ctx context.Context, productID string) error
}

// ClientFactory builds a provider client for resolved credentials. Tests
// substitute a fake.
type ClientFactory func(apiKey, companyID string) ProviderClient

// DefaultClientFactory returns the production Whop client.
func DefaultClientFactory(apiKey, companyID string) ProviderClient {
	return whop.NewClient(apiKey, companyID)
}

// Service is the plan/checkout orchestrator: it creates the remote
// ephemeral pricing resources for one purchase attempt and tracks them in
// the local checkout session store.
type Service struct {
	products  repository.ProductRepository
	sessions  repository.CheckoutSessionRepository
	secrets   *SecretResolver
	newClient ClientFactory
}

// NewService creates an orchestrator over injected collaborators.
func NewService(products repository.ProductRepository, sessions repository.CheckoutSessionRepository, secrets *SecretResolver, factory ClientFactory) *Service {
	if factory == nil {
		factory = DefaultClientFactory
	}
	return &Service{
		products:  products,
		sessions:  sessions,
		secrets:   secrets,
		newClient: factory,
	}
}

// CreateDynamicCheckout creates a one-time plan priced at the computed total
// and a hosted checkout session against it, persisting the session row with
// the full cart snapshot before the hosted session exists so an early
// webhook always finds metadata to hydrate from.
func (s *Service) CreateDynamicCheckout(ctx context.Context, in CreateCheckoutInput) (*CheckoutResult, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	product, err := s.products.GetByID(in.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	amount := in.Amount
	// A missing or garbled client amount must not block checkout; fall back
	// to the catalog price. Addons can legitimately push the amount above
	// catalog price, so a larger value passes through untouched.
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = product.EffectivePrice()
	}

	whopProductID := strings.TrimSpace(product.WhopProductID)
	if whopProductID == "" {
		whopProductID = strings.TrimSpace(env.GetEnv("WHOP_DEFAULT_PRODUCT_ID", ""))
	}
	if whopProductID == "" {
		return nil, ErrProviderProductNotConfigured
	}

	apiKey := s.secrets.Resolve(SecretAPIKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	companyID := s.secrets.Resolve(SecretCompanyID)
	if companyID == "" {
		return nil, ErrCompanyNotConfigured
	}
	client := s.newClient(apiKey, companyID)

	// Convenience call so repeat buyers are not blocked provider-side.
	// Failure is logged, never fatal.
	if err := client.AllowRepeatPurchases(ctx, whopProductID); err != nil {
		log.Warnf("[Checkout] could not relax repeat-purchase config for %s: %v", whopProductID, err)
	}

	snapshot := CartSnapshot{
		ProductID:    product.ID,
		ProductTitle: product.Title,
		Addons:       in.Addons,
		Email:        strings.TrimSpace(in.Email),
		Amount:       amount,
		CreatedAt:    time.Now().UTC(),
	}

	plan, err := client.CreatePlan(ctx, whop.CreatePlanInput{
		ProductID: whopProductID,
		Amount:    amount,
		Metadata: map[string]interface{}{
			"product_id": product.ID,
			"email":      snapshot.Email,
		},
	})
	if err != nil {
		// No plan means no checkout; this one is terminal for the request.
		return nil, err
	}

	metadataJSON, err := snapshot.ToJSON()
	if err != nil {
		return nil, err
	}

	placeholder := PlaceholderCheckoutID(plan.ID)
	session := &models.CheckoutSession{
		CheckoutID: placeholder,
		ProductID:  product.ID,
		PlanID:     plan.ID,
		Metadata:   metadataJSON,
		ExpiresAt:  time.Now().Add(models.CheckoutSessionTTL),
		Status:     models.CheckoutSessionStatusPending,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		PlanID:     plan.ID,
		CheckoutID: placeholder,
		ProductID:  product.ID,
		Email:      snapshot.Email,
		Snapshot:   snapshot,
	}

	hosted, err := client.CreateCheckoutSession(ctx, whop.CreateCheckoutSessionInput{
		PlanID:      plan.ID,
		RedirectURL: buildRedirectURL(in.RedirectOrigin),
		Metadata: map[string]interface{}{
			"product_id": product.ID,
		},
	})
	if err != nil {
		// The plan is already committed and the session row holds the
		// snapshot, so the caller can still retry hosted checkout or use
		// another payment method. Best-effort response, not an error.
		log.Errorf("[Checkout] hosted session creation failed for plan %s: %v", plan.ID, err)
		return result, nil
	}

	if err := s.sessions.RenameCheckoutID(placeholder, hosted.ID); err != nil {
		// The hosted session exists either way; keep serving it and let
		// hydration fall back to the placeholder row.
		log.Errorf("[Checkout] could not rewrite session id %s -> %s: %v", placeholder, hosted.ID, err)
	} else {
		result.CheckoutID = hosted.ID
	}
	result.CheckoutURL = hosted.PurchaseURL

	return result, nil
}

func buildRedirectURL(origin string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		origin = strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	}
	if origin == "" {
		return ""
	}
	return origin + "/checkout/thank-you"
}
