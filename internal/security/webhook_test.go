package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebhookSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"destination":"U0","events":[]}`)
	signature := ComputeWebhookSignature("channel-secret", body)

	assert.NoError(t, ValidateWebhookSignature("channel-secret", signature, body))
}

func TestWebhookSignatureRejectsTampering(t *testing.T) {
	body := []byte(`{"events":[]}`)
	signature := ComputeWebhookSignature("channel-secret", body)

	assert.ErrorIs(t, ValidateWebhookSignature("channel-secret", signature, []byte(`{"events":[{}]}`)), ErrInvalidSignature)
	assert.ErrorIs(t, ValidateWebhookSignature("other-secret", signature, body), ErrInvalidSignature)
	assert.ErrorIs(t, ValidateWebhookSignature("channel-secret", "", body), ErrInvalidSignature)
	assert.ErrorIs(t, ValidateWebhookSignature("channel-secret", "%%not-base64%%", body), ErrInvalidSignature)
}

func TestWebhookSignatureKnownVector(t *testing.T) {
	// echo -n 'hello' | openssl dgst -sha256 -hmac 'secret' -binary | base64
	assert.Equal(t, "iKqz7ejTrflNJquQ07r9SiCDBww7zOnAFO4EpEOEfAs=", ComputeWebhookSignature("secret", []byte("hello")))
}
