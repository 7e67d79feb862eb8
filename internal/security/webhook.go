package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const HeaderLineSignature = "X-Line-Signature"

var ErrInvalidSignature = errors.New("invalid signature")

// ComputeWebhookSignature returns base64(HMAC-SHA256(secret, body)), the
// value LINE puts in X-Line-Signature.
func ComputeWebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func ValidateWebhookSignature(secret string, signature string, body []byte) error {
	if signature == "" {
		return ErrInvalidSignature
	}
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(decoded, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}
