package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"subscription.updated","data":{"id":"sub_1"}}`)
	secret := "whsec_test"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	sum := mac.Sum(nil)

	if !VerifyWebhookSignature(payload, hex.EncodeToString(sum), secret) {
		t.Fatalf("expected hex signature to validate")
	}
	if !VerifyWebhookSignature(payload, "v1,"+base64.StdEncoding.EncodeToString(sum), secret) {
		t.Fatalf("expected versioned base64 signature to validate")
	}
	if !VerifyWebhookSignature(payload, "v1,deadbeef v1,"+base64.StdEncoding.EncodeToString(sum), secret) {
		t.Fatalf("expected any matching entry to validate")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifyWebhookSignature(payload, hex.EncodeToString(sum), "") {
		t.Fatalf("expected empty secret to fail")
	}
	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatalf("expected empty signature to fail")
	}
}
