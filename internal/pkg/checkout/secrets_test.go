package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/wishclip/wishclip/app/models"
)

type fakeGatewayRepo struct {
	gateway *models.PaymentGateway
	err     error
	calls   int
}

func (f *fakeGatewayRepo) GetNewestEnabled(gatewayType string) (*models.PaymentGateway, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.gateway == nil {
		return nil, errors.New("record not found")
	}
	return f.gateway, nil
}

type fakeSettingRepo struct {
	values map[string]string
	err    error
}

func (f *fakeSettingRepo) GetValue(key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.values[key], nil
}

func (f *fakeSettingRepo) SetValue(key, value string) error {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
	return nil
}

func TestSecretResolver_EnvWinsOverStores(t *testing.T) {
	t.Setenv("WHOP_API_KEY", "env-key")

	gateways := &fakeGatewayRepo{gateway: &models.PaymentGateway{APIKey: "db-key", Enabled: true}}
	r := NewSecretResolver(gateways, &fakeSettingRepo{}, NewTTLSecretCache(time.Minute))

	if got := r.Resolve(SecretAPIKey); got != "env-key" {
		t.Fatalf("expected env tier to win, got %q", got)
	}
	if gateways.calls != 0 {
		t.Fatalf("gateway table should not be consulted when env is set")
	}
}

func TestSecretResolver_GatewayTableTier(t *testing.T) {
	gateways := &fakeGatewayRepo{gateway: &models.PaymentGateway{
		GatewayType:   models.GatewayTypeWhop,
		Enabled:       true,
		APIKey:        "db-key",
		WebhookSecret: "db-secret",
		CompanyID:     "biz_db",
	}}
	r := NewSecretResolver(gateways, &fakeSettingRepo{}, NewTTLSecretCache(time.Minute))

	if got := r.Resolve(SecretAPIKey); got != "db-key" {
		t.Fatalf("expected api key from gateway table, got %q", got)
	}
	if got := r.Resolve(SecretWebhookSecret); got != "db-secret" {
		t.Fatalf("expected webhook secret from gateway table, got %q", got)
	}
	if got := r.Resolve(SecretCompanyID); got != "biz_db" {
		t.Fatalf("expected company id from gateway table, got %q", got)
	}
}

func TestSecretResolver_LegacySettingsTier(t *testing.T) {
	settings := &fakeSettingRepo{values: map[string]string{
		models.SettingKeyPaymentGatewayConfig: `{"whop":{"api_key":"legacy-key","company_id":"biz_legacy"}}`,
	}}
	r := NewSecretResolver(&fakeGatewayRepo{}, settings, NewTTLSecretCache(time.Minute))

	if got := r.Resolve(SecretAPIKey); got != "legacy-key" {
		t.Fatalf("expected api key from legacy settings, got %q", got)
	}
	if got := r.Resolve(SecretCompanyID); got != "biz_legacy" {
		t.Fatalf("expected company id from legacy settings, got %q", got)
	}
	if got := r.Resolve(SecretWebhookSecret); got != "" {
		t.Fatalf("expected missing blob field to resolve empty, got %q", got)
	}
}

func TestSecretResolver_StorageErrorsDegradeToAbsent(t *testing.T) {
	gateways := &fakeGatewayRepo{err: errors.New("connection refused")}
	settings := &fakeSettingRepo{err: errors.New("connection refused")}
	r := NewSecretResolver(gateways, settings, NewTTLSecretCache(time.Minute))

	if got := r.Resolve(SecretAPIKey); got != "" {
		t.Fatalf("expected storage errors to resolve empty, got %q", got)
	}
}

func TestSecretResolver_MalformedLegacyBlob(t *testing.T) {
	settings := &fakeSettingRepo{values: map[string]string{
		models.SettingKeyPaymentGatewayConfig: `{not json`,
	}}
	r := NewSecretResolver(&fakeGatewayRepo{}, settings, NewTTLSecretCache(time.Minute))

	if got := r.Resolve(SecretAPIKey); got != "" {
		t.Fatalf("expected malformed blob to resolve empty, got %q", got)
	}
}

func TestSecretResolver_CachesResolvedValues(t *testing.T) {
	gateways := &fakeGatewayRepo{gateway: &models.PaymentGateway{APIKey: "db-key", Enabled: true}}
	r := NewSecretResolver(gateways, &fakeSettingRepo{}, NewTTLSecretCache(time.Minute))

	if got := r.Resolve(SecretAPIKey); got != "db-key" {
		t.Fatalf("expected db-key, got %q", got)
	}
	if got := r.Resolve(SecretAPIKey); got != "db-key" {
		t.Fatalf("expected cached db-key, got %q", got)
	}
	if gateways.calls != 1 {
		t.Fatalf("expected exactly one gateway lookup, got %d", gateways.calls)
	}
}

func TestSecretResolver_EmptyResultsAreNotCached(t *testing.T) {
	gateways := &fakeGatewayRepo{}
	r := NewSecretResolver(gateways, &fakeSettingRepo{}, NewTTLSecretCache(time.Minute))

	if got := r.Resolve(SecretAPIKey); got != "" {
		t.Fatalf("expected empty resolution, got %q", got)
	}
	gateways.gateway = &models.PaymentGateway{APIKey: "late-key", Enabled: true}
	if got := r.Resolve(SecretAPIKey); got != "late-key" {
		t.Fatalf("expected resolution to retry after config appears, got %q", got)
	}
}

func TestTTLSecretCache_Expiry(t *testing.T) {
	c := NewTTLSecretCache(10 * time.Millisecond)
	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("expected fresh entry to be served, got %q %v", v, ok)
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected entry to expire")
	}
}
