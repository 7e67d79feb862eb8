package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pipi/internal/chat"
	"pipi/internal/security"
)

// Callback receives LINE webhook deliveries. Once the signature checks out
// the response is always 200 "OK"; per-event failures are only logged.
func (h HandlerSet) Callback(c *gin.Context) {
	log := zerolog.Ctx(c.Request.Context())

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warn().Err(err).Msg("read webhook body failed")
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	signature := c.GetHeader(security.HeaderLineSignature)
	if err := security.ValidateWebhookSignature(h.cfg.LINE.ChannelSecret, signature, body); err != nil {
		log.Warn().Err(err).Msg("webhook rejected")
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	events, err := chat.ParseEvents(body)
	if err != nil {
		log.Warn().Err(err).Msg("webhook body malformed")
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	h.dispatcher.DispatchAll(c.Request.Context(), events)

	c.String(http.StatusOK, "OK")
}
