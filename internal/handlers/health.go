package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Subscribers int    `json:"subscribers"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"

	dbStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "error"
		status = "degraded"
		h.log.Error().Err(err).Msg("database ping failed")
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "ok"
		if err := h.cache.Ping(ctx).Err(); err != nil {
			cacheStatus = "error"
			status = "degraded"
			h.log.Error().Err(err).Msg("redis ping failed")
		}
	}

	code := http.StatusOK
	if dbStatus != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, healthResponse{
		Status:      status,
		Database:    dbStatus,
		Cache:       cacheStatus,
		Subscribers: h.hub.Subscribers(),
		Environment: h.cfg.Environment,
	})
}
