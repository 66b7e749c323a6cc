package whop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wishclip/wishclip/internal/pkg/env"
)

const defaultWhopAPIBaseURL = "https://api.whop.com/api/v2"

// Client talks to the Whop v2 API. The base URL and HTTP client are
// overridable for tests.
type Client struct {
	APIKey    string
	CompanyID string

	APIBaseURL string

	HTTPClient *http.Client
}

// NewClient creates a provider client for the given credentials. The base
// URL can be overridden with WHOP_API_BASE_URL.
func NewClient(apiKey, companyID string) *Client {
	return &Client{
		APIKey:     strings.TrimSpace(apiKey),
		CompanyID:  strings.TrimSpace(companyID),
		APIBaseURL: strings.TrimSpace(env.GetEnv("WHOP_API_BASE_URL", defaultWhopAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreatePlan creates a hidden one-time plan priced at the exact computed
// total of a single purchase attempt.
func (c *Client) CreatePlan(ctx context.Context, in CreatePlanInput) (*Plan, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("whop api key is required")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, errors.New("provider product id is required")
	}
	currency := strings.TrimSpace(in.BaseCurrency)
	if currency == "" {
		currency = "usd"
	}

	body := map[string]interface{}{
		"plan_type":      "one_time",
		"release_method": "buy_now",
		"visibility":     "hidden",
		"product_id":     in.ProductID,
		"initial_price":  in.Amount,
		"base_currency":  currency,
	}
	if c.CompanyID != "" {
		body["company_id"] = c.CompanyID
	}
	if len(in.Metadata) > 0 {
		body["metadata"] = in.Metadata
	}

	var plan Plan
	if err := c.do(ctx, http.MethodPost, "/plans", body, &plan); err != nil {
		return nil, err
	}
	if strings.TrimSpace(plan.ID) == "" {
		return nil, errors.New("whop plan response missing id")
	}
	return &plan, nil
}

// CreateCheckoutSession creates a hosted checkout session against a plan.
func (c *Client) CreateCheckoutSession(ctx context.Context, in CreateCheckoutSessionInput) (*CheckoutSession, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("whop api key is required")
	}
	if strings.TrimSpace(in.PlanID) == "" {
		return nil, errors.New("plan id is required")
	}

	body := map[string]interface{}{
		"plan_id": in.PlanID,
	}
	if strings.TrimSpace(in.RedirectURL) != "" {
		body["redirect_url"] = in.RedirectURL
	}
	if len(in.Metadata) > 0 {
		body["metadata"] = in.Metadata
	}

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/checkout_sessions", body, &session); err != nil {
		return nil, err
	}
	if strings.TrimSpace(session.ID) == "" {
		return nil, errors.New("whop checkout session response missing id")
	}
	return &session, nil
}

// DeletePlan removes an ephemeral plan. A 404 counts as success so cleanup
// stays idempotent across duplicate webhook deliveries.
func (c *Client) DeletePlan(ctx context.Context, planID string) error {
	if strings.TrimSpace(planID) == "" {
		return errors.New("plan id is required")
	}
	err := c.do(ctx, http.MethodDelete, "/plans/"+planID, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil
	}
	return err
}

// DeleteCheckoutSession removes an ephemeral hosted checkout session. A 404
// counts as success.
func (c *Client) DeleteCheckoutSession(ctx context.Context, checkoutSessionID string) error {
	if strings.TrimSpace(checkoutSessionID) == "" {
		return errors.New("checkout session id is required")
	}
	err := c.do(ctx, http.MethodDelete, "/checkout_sessions/"+checkoutSessionID, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil
	}
	return err
}

// AllowRepeatPurchases relaxes the provider-side product configuration so a
// buyer can purchase the same product again. Callers treat failures as
// non-fatal; this is a convenience call, not part of the correctness
// contract.
func (c *Client) AllowRepeatPurchases(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return errors.New("provider product id is required")
	}
	body := map[string]interface{}{
		"allow_multiple_purchases": true,
	}
	return c.do(ctx, http.MethodPost, "/products/"+productID, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: parseAPIErrorMessage(respBody, method, path),
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// parseAPIErrorMessage prefers the provider's own error message when the
// error body is parseable, otherwise falls back to a generic description.
func parseAPIErrorMessage(body []byte, method, path string) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := strings.TrimSpace(envelope.Error.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(envelope.Message); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("request %s %s failed", method, path)
}
