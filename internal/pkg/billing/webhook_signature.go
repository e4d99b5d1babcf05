package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// VerifyWebhookSignature checks a delivery's HMAC-SHA256 signature against
// the shared webhook secret. The header may carry several space-separated
// entries, each optionally prefixed with a scheme version ("v1,<sig>");
// signatures are accepted in hex or base64 encoding. Any matching entry
// validates the delivery.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	header := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if header == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, entry := range strings.Fields(header) {
		sig := entry
		if idx := strings.IndexByte(entry, ','); idx >= 0 {
			sig = entry[idx+1:]
		}
		if decoded, err := hex.DecodeString(strings.ToLower(sig)); err == nil {
			if hmac.Equal(expected, decoded) {
				return true
			}
		}
		if decoded, err := base64.StdEncoding.DecodeString(sig); err == nil {
			if hmac.Equal(expected, decoded) {
				return true
			}
		}
	}
	return false
}
