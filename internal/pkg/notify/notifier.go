package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wishclip/wishclip/internal/pkg/env"
)

// OrderNotification is the fixed payload shape of the notifyOrderCreated
// collaborator. The pipeline fills it and fires it; no return value is
// consumed.
type OrderNotification struct {
	OrderID   string  `json:"order_id"`
	ProductID uint    `json:"product_id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	Origin    string  `json:"origin"`
	OrderURL  string  `json:"order_url"`
}

// Notifier delivers order-created notifications to the external sender.
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, n OrderNotification) error
}

// WebhookNotifier posts notifications to the URL in NOTIFY_WEBHOOK_URL.
type WebhookNotifier struct {
	URL        string
	HTTPClient *http.Client
}

// NewWebhookNotifierFromEnv builds the production notifier.
func NewWebhookNotifierFromEnv() *WebhookNotifier {
	return &WebhookNotifier{
		URL: strings.TrimSpace(env.GetEnv("NOTIFY_WEBHOOK_URL", "")),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyOrderCreated fires the notification. An unset URL is not an error:
// the collaborator is optional and deployments without it just log.
func (w *WebhookNotifier) NotifyOrderCreated(ctx context.Context, n OrderNotification) error {
	if w.URL == "" {
		log.Infof("[Notify] NOTIFY_WEBHOOK_URL not set, skipping notification for order %s", n.OrderID)
		return nil
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notify endpoint answered status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
