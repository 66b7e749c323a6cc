package whop

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"payment.succeeded","data":{"id":"pay_1"}}`)
	secret := "top-secret"
	validSig := signPayload(payload, secret)

	if !VerifyWebhookSignature(payload, validSig, secret) {
		t.Fatalf("expected signature to validate")
	}
	if !VerifyWebhookSignature(payload, "sha256="+validSig, secret) {
		t.Fatalf("expected prefixed signature to validate")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifyWebhookSignature(payload, validSig, "other-secret") {
		t.Fatalf("expected wrong secret to fail")
	}
	if VerifyWebhookSignature([]byte(`{"tampered":true}`), validSig, secret) {
		t.Fatalf("expected tampered payload to fail")
	}
}

func TestVerifyWebhookSignature_EmptyInputs(t *testing.T) {
	payload := []byte(`{}`)
	if VerifyWebhookSignature(payload, "", "secret") {
		t.Fatalf("expected empty signature to fail")
	}
	if VerifyWebhookSignature(payload, signPayload(payload, "secret"), "") {
		t.Fatalf("expected empty secret to fail")
	}
	if VerifyWebhookSignature(payload, "not-hex!", "secret") {
		t.Fatalf("expected non-hex signature to fail")
	}
}
