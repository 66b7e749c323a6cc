package whop

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("test-key", "biz_123")
	c.APIBaseURL = srv.URL
	c.HTTPClient = srv.Client()
	return c
}

func TestCreatePlan(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/plans" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "plan_abc",
			"product_id":    "prod_1",
			"initial_price": 47.0,
		})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	plan, err := c.CreatePlan(context.Background(), CreatePlanInput{
		ProductID: "prod_1",
		Amount:    47.0,
		Metadata:  map[string]interface{}{"product_id": 7},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.ID != "plan_abc" {
		t.Fatalf("unexpected plan id: %q", plan.ID)
	}

	if gotBody["plan_type"] != "one_time" {
		t.Fatalf("expected plan_type one_time, got %v", gotBody["plan_type"])
	}
	if gotBody["release_method"] != "buy_now" {
		t.Fatalf("expected release_method buy_now, got %v", gotBody["release_method"])
	}
	if gotBody["visibility"] != "hidden" {
		t.Fatalf("expected visibility hidden, got %v", gotBody["visibility"])
	}
	if gotBody["base_currency"] != "usd" {
		t.Fatalf("expected default currency usd, got %v", gotBody["base_currency"])
	}
	if gotBody["company_id"] != "biz_123" {
		t.Fatalf("expected company id to be forwarded, got %v", gotBody["company_id"])
	}
	if gotBody["initial_price"] != 47.0 {
		t.Fatalf("expected initial_price 47, got %v", gotBody["initial_price"])
	}
}

func TestCreatePlan_RequiresAPIKey(t *testing.T) {
	c := NewClient("", "")
	if _, err := c.CreatePlan(context.Background(), CreatePlanInput{ProductID: "prod_1", Amount: 10}); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestCreatePlan_MissingIDInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"product_id": "prod_1"})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if _, err := c.CreatePlan(context.Background(), CreatePlanInput{ProductID: "prod_1", Amount: 10}); err == nil {
		t.Fatalf("expected error when response omits plan id")
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout_sessions" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["plan_id"] != "plan_abc" {
			t.Fatalf("expected plan_id in body, got %v", body["plan_id"])
		}
		if body["redirect_url"] != "https://shop.example/checkout/thank-you" {
			t.Fatalf("unexpected redirect_url: %v", body["redirect_url"])
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":           "ch_xyz",
			"plan_id":      "plan_abc",
			"purchase_url": "https://whop.com/checkout/ch_xyz",
		})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	session, err := c.CreateCheckoutSession(context.Background(), CreateCheckoutSessionInput{
		PlanID:      "plan_abc",
		RedirectURL: "https://shop.example/checkout/thank-you",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID != "ch_xyz" || session.PurchaseURL != "https://whop.com/checkout/ch_xyz" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestDelete_404IsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if err := c.DeletePlan(context.Background(), "plan_gone"); err != nil {
		t.Fatalf("expected 404 plan delete to be treated as success, got %v", err)
	}
	if err := c.DeleteCheckoutSession(context.Background(), "ch_gone"); err != nil {
		t.Fatalf("expected 404 session delete to be treated as success, got %v", err)
	}
}

func TestDelete_OtherErrorsPropagate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"insufficient permissions"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	err := c.DeletePlan(context.Background(), "plan_abc")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", apiErr.Status)
	}
	if apiErr.Message != "insufficient permissions" {
		t.Fatalf("expected provider message to be preserved, got %q", apiErr.Message)
	}
}

func TestAPIErrorMessageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream gone</html>"))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.CreatePlan(context.Background(), CreatePlanInput{ProductID: "prod_1", Amount: 10})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", apiErr.Status)
	}
	if apiErr.Message == "" {
		t.Fatalf("expected a fallback message")
	}
}

func TestAllowRepeatPurchases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/products/prod_1" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["allow_multiple_purchases"] != true {
			t.Fatalf("expected allow_multiple_purchases=true, got %v", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if err := c.AllowRepeatPurchases(context.Background(), "prod_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
