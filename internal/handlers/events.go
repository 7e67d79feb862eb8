package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const eventsKeepAlive = 25 * time.Second

// Events streams image notifications to the browser as server-sent events
// named "notify". A missed signal only delays the next refresh.
func (h HandlerSet) Events(c *gin.Context) {
	signals, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Content-Type", "text/event-stream")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(eventsKeepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-signals:
			if !ok {
				return
			}
			c.SSEvent("notify", msg)
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": keep-alive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
