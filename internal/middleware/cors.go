package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS lets the slideshow page be embedded from other origins. An empty list
// or "*" allows any origin; credentials are only allowed for listed origins.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAny := len(allowedOrigins) == 0
	listed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAny = true
			continue
		}
		listed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		header := c.Writer.Header()
		if origin := c.GetHeader("Origin"); origin != "" {
			header.Add("Vary", "Origin")
			if _, ok := listed[origin]; ok {
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Credentials", "true")
			} else if allowAny {
				header.Set("Access-Control-Allow-Origin", "*")
			}
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}

		header.Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
		header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		header.Set("Access-Control-Max-Age", "600")
		c.AbortWithStatus(http.StatusNoContent)
	}
}
