package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wishclip/wishclip/app/models"
	"github.com/wishclip/wishclip/internal/pkg/checkout"
)

type stubSessionRepo struct {
	sessions map[string]*models.CheckoutSession
	markErr  error
}

func (s *stubSessionRepo) Create(session *models.CheckoutSession) error {
	s.sessions[session.CheckoutID] = session
	return nil
}

func (s *stubSessionRepo) GetByCheckoutID(checkoutID string) (*models.CheckoutSession, error) {
	row, ok := s.sessions[checkoutID]
	if !ok {
		return nil, errors.New("record not found")
	}
	return row, nil
}

func (s *stubSessionRepo) RenameCheckoutID(oldID, newID string) error {
	row, ok := s.sessions[oldID]
	if !ok {
		return errors.New("record not found")
	}
	delete(s.sessions, oldID)
	row.CheckoutID = newID
	s.sessions[newID] = row
	return nil
}

func (s *stubSessionRepo) MarkCompleted(checkoutID string, completedAt time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	if row, ok := s.sessions[checkoutID]; ok {
		row.Status = models.CheckoutSessionStatusCompleted
		row.CompletedAt = &completedAt
	}
	return nil
}

type stubOrderRepo struct {
	orders    []*models.Order
	createErr error
}

func (s *stubOrderRepo) Create(order *models.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.orders = append(s.orders, order)
	return nil
}

func (s *stubOrderRepo) GetByOrderID(orderID string) (*models.Order, error) {
	for _, o := range s.orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) CountByCheckoutSessionID(checkoutSessionID string) (int64, error) {
	return int64(len(s.orders)), nil
}

func newWebhookTestApp(t *testing.T, sessions *stubSessionRepo, orders *stubOrderRepo) *fiber.App {
	t.Helper()
	if sessions == nil {
		sessions = &stubSessionRepo{sessions: make(map[string]*models.CheckoutSession)}
	}
	if orders == nil {
		orders = &stubOrderRepo{}
	}
	secrets := checkout.NewSecretResolver(nil, nil, checkout.NewTTLSecretCache(time.Minute))
	InitializeWebhookController(checkout.NewFulfillmentEngine(sessions, orders, nil), secrets)

	app := fiber.New()
	app.Post("/api/webhook/payment", HandlePaymentWebhook)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHandlePaymentWebhook_IgnoredEventIsAcknowledged(t *testing.T) {
	app := newWebhookTestApp(t, nil, nil)

	resp := postWebhook(t, app, []byte(`{"type":"membership.went_valid","data":{"id":"m_1"}}`), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["received"])
}

func TestHandlePaymentWebhook_UnparseablePayloadIs500(t *testing.T) {
	app := newWebhookTestApp(t, nil, nil)

	resp := postWebhook(t, app, []byte(`{truncated`), nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandlePaymentWebhook_ProcessingFailureIs500(t *testing.T) {
	sessions := &stubSessionRepo{
		sessions: map[string]*models.CheckoutSession{
			"ch_xyz": {
				CheckoutID: "ch_xyz",
				PlanID:     "plan_abc",
				Metadata:   `{"product_id":7,"amount":10}`,
				Status:     models.CheckoutSessionStatusPending,
			},
		},
		markErr: errors.New("deadlock"),
	}
	app := newWebhookTestApp(t, sessions, nil)

	resp := postWebhook(t, app, []byte(`{"type":"payment.succeeded","data":{"id":"pay_1","checkout_session_id":"ch_xyz"}}`), nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandlePaymentWebhook_SignatureRequiredWhenSecretConfigured(t *testing.T) {
	t.Setenv("WHOP_WEBHOOK_SECRET", "hook-secret")
	app := newWebhookTestApp(t, nil, nil)

	payload := []byte(`{"type":"membership.went_valid","data":{"id":"m_1"}}`)

	// Missing signature
	resp := postWebhook(t, app, payload, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Wrong signature
	resp = postWebhook(t, app, payload, map[string]string{"X-Whop-Signature": "deadbeef"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Correct signature
	mac := hmac.New(sha256.New, []byte("hook-secret"))
	mac.Write(payload)
	sig := hex.EncodeToString(mac.Sum(nil))
	resp = postWebhook(t, app, payload, map[string]string{"X-Whop-Signature": sig})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandlePaymentWebhook_NoSecretProcessesUnverified(t *testing.T) {
	app := newWebhookTestApp(t, nil, nil)

	resp := postWebhook(t, app, []byte(`{"type":"membership.went_valid","data":{"id":"m_1"}}`), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
