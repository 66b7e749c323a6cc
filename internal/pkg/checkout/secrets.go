package checkout

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wishclip/wishclip/app/models"
	"github.com/wishclip/wishclip/app/repository"
	"github.com/wishclip/wishclip/internal/pkg/env"
)

// SecretKind selects which provider credential to resolve.
type SecretKind string

const (
	SecretAPIKey        SecretKind = "api_key"
	SecretWebhookSecret SecretKind = "webhook_secret"
	SecretCompanyID     SecretKind = "company_id"
)

var secretEnvKeys = map[SecretKind]string{
	SecretAPIKey:        "WHOP_API_KEY",
	SecretWebhookSecret: "WHOP_WEBHOOK_SECRET",
	SecretCompanyID:     "WHOP_COMPANY_ID",
}

// SecretCache holds resolved secrets between requests. It is an explicit
// dependency of the resolver (not a process-global) so tests can supply a
// fresh instance without cross-test pollution.
type SecretCache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

type ttlCacheEntry struct {
	value     string
	expiresAt time.Time
}

// TTLSecretCache is an in-memory SecretCache with per-entry expiry.
type TTLSecretCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]ttlCacheEntry
}

// NewTTLSecretCache creates a cache whose entries expire after ttl.
func NewTTLSecretCache(ttl time.Duration) *TTLSecretCache {
	return &TTLSecretCache{
		ttl:     ttl,
		entries: make(map[string]ttlCacheEntry),
	}
}

func (c *TTLSecretCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (c *TTLSecretCache) Set(key, value string) {
	c.mu.Lock()
	c.entries[key] = ttlCacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// SecretResolver resolves provider credentials through a strict priority
// chain: process environment, then the structured payment_gateways table,
// then the legacy single-row settings blob. Later tiers are only consulted
// when earlier ones are silent, and a storage error inside a tier degrades
// to "absent" instead of aborting resolution.
type SecretResolver struct {
	gateways repository.PaymentGatewayRepository
	settings repository.SettingRepository
	cache    SecretCache
}

// NewSecretResolver creates a resolver over the given configuration sources.
func NewSecretResolver(gateways repository.PaymentGatewayRepository, settings repository.SettingRepository, cache SecretCache) *SecretResolver {
	return &SecretResolver{
		gateways: gateways,
		settings: settings,
		cache:    cache,
	}
}

// Resolve returns the first non-empty value for the given kind, or "" when
// no tier can supply one.
func (r *SecretResolver) Resolve(kind SecretKind) string {
	cacheKey := models.GatewayTypeWhop + ":" + string(kind)
	if r.cache != nil {
		if v, ok := r.cache.Get(cacheKey); ok {
			return v
		}
	}

	value := r.resolveUncached(kind)
	if value != "" && r.cache != nil {
		r.cache.Set(cacheKey, value)
	}
	return value
}

func (r *SecretResolver) resolveUncached(kind SecretKind) string {
	// Tier 1: process environment, authoritative and I/O-free.
	if envKey, ok := secretEnvKeys[kind]; ok {
		if v := strings.TrimSpace(env.GetEnv(envKey, "")); v != "" {
			return v
		}
	}

	// Tier 2: structured gateway configuration.
	if v := r.fromGatewayTable(kind); v != "" {
		return v
	}

	// Tier 3: legacy settings blob.
	return r.fromLegacySettings(kind)
}

func (r *SecretResolver) fromGatewayTable(kind SecretKind) string {
	if r.gateways == nil {
		return ""
	}
	gateway, err := r.gateways.GetNewestEnabled(models.GatewayTypeWhop)
	if err != nil {
		// Missing row or a storage error both mean this tier is silent.
		log.Debugf("[SecretResolver] gateway table lookup failed: %v", err)
		return ""
	}
	switch kind {
	case SecretAPIKey:
		return strings.TrimSpace(gateway.APIKey)
	case SecretWebhookSecret:
		return strings.TrimSpace(gateway.WebhookSecret)
	case SecretCompanyID:
		return strings.TrimSpace(gateway.CompanyID)
	}
	return ""
}

func (r *SecretResolver) fromLegacySettings(kind SecretKind) string {
	if r.settings == nil {
		return ""
	}
	raw, err := r.settings.GetValue(models.SettingKeyPaymentGatewayConfig)
	if err != nil {
		log.Debugf("[SecretResolver] legacy settings lookup failed: %v", err)
		return ""
	}
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	// Malformed JSON or a missing field means absent, not an error.
	var blob map[string]map[string]string
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		log.Debugf("[SecretResolver] legacy settings blob is malformed: %v", err)
		return ""
	}
	gateway, ok := blob[models.GatewayTypeWhop]
	if !ok {
		return ""
	}
	return strings.TrimSpace(gateway[string(kind)])
}
